package reader

import (
	"context"
	"errors"

	"github.com/five82/herald/internal/api"
	"github.com/five82/herald/internal/content"
	"github.com/five82/herald/internal/feed"
)

// Debrief is the weekly digest screen. A device without a debrief this week
// sees an empty result, not a failure.
type Debrief struct {
	*feed.Controller[content.Debrief]
	deps Deps
}

// NewDebrief builds the debrief screen.
func NewDebrief(d Deps) *Debrief {
	d = d.withDefaults()
	return &Debrief{
		Controller: feed.New(feed.Options[content.Debrief]{
			Key: "debrief",
			Fetch: func(ctx context.Context, _ string) (feed.Page[content.Debrief], error) {
				debrief, err := d.Queries.WeeklyDebrief(ctx, d.Cache.DeviceID())
				if errors.Is(err, api.ErrNotFound) {
					return feed.Page[content.Debrief]{}, nil
				}
				if err != nil {
					return feed.Page[content.Debrief]{}, err
				}
				return feed.Page[content.Debrief]{Items: []content.Debrief{debrief}}, nil
			},
			Failures: d.Failures,
			Logger:   d.Logger,
		}),
		deps: d,
	}
}

// Current returns the loaded debrief if it has not expired.
func (d *Debrief) Current() (content.Debrief, bool) {
	items := d.State().Items
	if len(items) == 0 || items[0].Expired(d.deps.Now()) {
		return content.Debrief{}, false
	}
	return items[0], true
}

// ReadRows returns the decorated articles read during the week.
func (d *Debrief) ReadRows() []Row {
	current, ok := d.Current()
	if !ok {
		return nil
	}
	return Rows(d.deps.Cache, current.ReadArticles)
}

// RandomRows returns the decorated suggested articles.
func (d *Debrief) RandomRows() []Row {
	current, ok := d.Current()
	if !ok {
		return nil
	}
	return Rows(d.deps.Cache, current.RandomArticles)
}
