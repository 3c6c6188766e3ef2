package reader

import (
	"context"

	"github.com/five82/herald/internal/content"
	"github.com/five82/herald/internal/feed"
)

// PastFlyerLimit caps the past-events section.
const PastFlyerLimit = 20

// Flyers shows upcoming events soonest first and past events most recent
// first.
type Flyers struct {
	Upcoming *feed.Controller[content.Flyer]
	Past     *feed.Controller[content.Flyer]

	deps Deps
	all  *feed.Composite
}

// NewFlyers builds the flyer board.
func NewFlyers(d Deps) *Flyers {
	d = d.withDefaults()
	f := &Flyers{deps: d}
	f.Upcoming = feed.New(feed.Options[content.Flyer]{
		Key: "flyers/upcoming",
		Fetch: func(ctx context.Context, _ string) (feed.Page[content.Flyer], error) {
			items, err := d.Queries.UpcomingFlyers(ctx, d.Now())
			content.SortUpcoming(items)
			return feed.Page[content.Flyer]{Items: items}, err
		},
		ID:       itemID[content.Flyer],
		Failures: d.Failures,
		Logger:   d.Logger,
	})
	f.Past = feed.New(feed.Options[content.Flyer]{
		Key: "flyers/past",
		Fetch: func(ctx context.Context, _ string) (feed.Page[content.Flyer], error) {
			items, err := d.Queries.PastFlyers(ctx, d.Now(), PastFlyerLimit)
			content.SortPast(items)
			return feed.Page[content.Flyer]{Items: items}, err
		},
		ID:       itemID[content.Flyer],
		Failures: d.Failures,
		Logger:   d.Logger,
	})
	f.all = feed.NewComposite(f.Upcoming, f.Past)
	return f
}

func (f *Flyers) Start(ctx context.Context) int   { return f.all.Start(ctx) }
func (f *Flyers) Refresh(ctx context.Context) int { return f.all.Reload(ctx) }
func (f *Flyers) Loaded() bool                    { return f.all.Loaded() }

// StartOrReload retries sections that never loaded and reloads the rest.
func (f *Flyers) StartOrReload(ctx context.Context) int { return f.all.StartOrReload(ctx) }

// Rows returns upcoming flyers followed by past ones.
func (f *Flyers) Rows() []Row {
	rows := Rows(f.deps.Cache, f.Upcoming.State().Items)
	return append(rows, Rows(f.deps.Cache, f.Past.State().Items)...)
}
