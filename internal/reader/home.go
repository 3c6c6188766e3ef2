package reader

import (
	"context"

	"github.com/five82/herald/internal/content"
	"github.com/five82/herald/internal/feed"
)

// TrendingLimit is how many trending articles the home screen requests.
const TrendingLimit = 10

// Home shows trending articles and a paginated feed from followed
// publications.
type Home struct {
	Trending  *feed.Controller[content.Article]
	Following *feed.Controller[content.Article]

	deps Deps
	all  *feed.Composite
}

// NewHome builds the home screen.
func NewHome(d Deps) *Home {
	d = d.withDefaults()
	h := &Home{deps: d}
	h.Trending = feed.New(feed.Options[content.Article]{
		Key: "home/trending",
		Fetch: func(ctx context.Context, _ string) (feed.Page[content.Article], error) {
			items, err := d.Queries.TrendingArticles(ctx, TrendingLimit)
			return feed.Page[content.Article]{Items: items}, err
		},
		ID:        itemID[content.Article],
		Failures:  d.Failures,
		Logger:    d.Logger,
		OnResults: reconcileItems[content.Article](d.Cache),
	})
	h.Following = feed.New(feed.Options[content.Article]{
		Key: "home/following",
		Fetch: func(ctx context.Context, cursor string) (feed.Page[content.Article], error) {
			return d.Queries.ArticlesByPublications(ctx, d.Cache.Followed(content.OwnerPublication), cursor)
		},
		ID:        itemID[content.Article],
		Failures:  d.Failures,
		Logger:    d.Logger,
		OnResults: reconcileItems[content.Article](d.Cache),
	})
	h.all = feed.NewComposite(h.Trending, h.Following)
	return h
}

// Start issues both initial fetches.
func (h *Home) Start(ctx context.Context) int { return h.all.Start(ctx) }

// Refresh reloads both sections, keeping current articles visible.
func (h *Home) Refresh(ctx context.Context) int { return h.all.Reload(ctx) }

// StartOrReload retries sections that never loaded and reloads the rest.
func (h *Home) StartOrReload(ctx context.Context) int { return h.all.StartOrReload(ctx) }

// Loaded reports whether both sections hold results.
func (h *Home) Loaded() bool { return h.all.Loaded() }

// ResetFollowing discards the following feed after the followed set
// changed, so the next Start loads it from scratch.
func (h *Home) ResetFollowing() { h.Following.Reset() }

// TrendingRows returns the decorated trending articles.
func (h *Home) TrendingRows() []Row { return Rows(h.deps.Cache, h.Trending.State().Items) }

// FollowingRows returns the decorated following feed.
func (h *Home) FollowingRows() []Row { return Rows(h.deps.Cache, h.Following.State().Items) }

// MoreFollowing asks for the page after the trailing article afterID.
func (h *Home) MoreFollowing(ctx context.Context, afterID string) bool {
	return h.Following.FetchNextPage(ctx, afterID)
}
