package reader

import (
	"context"

	"github.com/five82/herald/internal/content"
	"github.com/five82/herald/internal/feed"
)

// Magazines is the paginated magazine shelf.
type Magazines struct {
	*feed.Controller[content.Magazine]
	deps Deps
}

// NewMagazines builds the magazine screen.
func NewMagazines(d Deps) *Magazines {
	d = d.withDefaults()
	return &Magazines{
		Controller: feed.New(feed.Options[content.Magazine]{
			Key:       "magazines",
			Fetch:     d.Queries.Magazines,
			ID:        itemID[content.Magazine],
			Failures:  d.Failures,
			Logger:    d.Logger,
			OnResults: reconcileItems[content.Magazine](d.Cache),
		}),
		deps: d,
	}
}

// Rows returns the decorated magazines loaded so far.
func (m *Magazines) Rows() []Row { return Rows(m.deps.Cache, m.State().Items) }

// More asks for the page after the trailing magazine afterID.
func (m *Magazines) More(ctx context.Context, afterID string) bool {
	return m.FetchNextPage(ctx, afterID)
}
