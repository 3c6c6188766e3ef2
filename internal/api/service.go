package api

import (
	"context"
	"time"

	"github.com/five82/herald/internal/content"
	"github.com/five82/herald/internal/feed"
)

// Service defines the queries and mutations the client issues against the
// backend. It is implemented by *Client and can be faked in tests.
type Service interface {
	Queries
	Mutations
}

// Queries are the read side of Service.
type Queries interface {
	TrendingArticles(ctx context.Context, limit int) ([]content.Article, error)
	ArticlesByPublications(ctx context.Context, slugs []string, cursor string) (feed.Page[content.Article], error)
	Article(ctx context.Context, id string) (content.Article, error)
	Publications(ctx context.Context) ([]content.Publication, error)
	Organizations(ctx context.Context) ([]content.Organization, error)
	Magazines(ctx context.Context, cursor string) (feed.Page[content.Magazine], error)
	Magazine(ctx context.Context, id string) (content.Magazine, error)
	UpcomingFlyers(ctx context.Context, since time.Time) ([]content.Flyer, error)
	PastFlyers(ctx context.Context, before time.Time, limit int) ([]content.Flyer, error)
	SearchArticles(ctx context.Context, query string) ([]content.Article, error)
	SearchMagazines(ctx context.Context, query string) ([]content.Magazine, error)
	SearchFlyers(ctx context.Context, query string) ([]content.Flyer, error)
	WeeklyDebrief(ctx context.Context, deviceID string) (content.Debrief, error)
	FollowedPublications(ctx context.Context, deviceID string) ([]string, error)
	FollowedOrganizations(ctx context.Context, deviceID string) ([]string, error)
}

// Mutations are the write side of Service. They carry no payload beyond
// success or failure.
type Mutations interface {
	SetFollow(ctx context.Context, owner content.OwnerKind, slug, deviceID string, follow bool) error
	SetBookmark(ctx context.Context, ref content.Ref, deviceID string, saved bool) error
	IncrementShoutout(ctx context.Context, ref content.Ref, deviceID string) error
	RecordFlyerClick(ctx context.Context, id string) error
}

// Ensure Client implements Service at compile time.
var _ Service = (*Client)(nil)
