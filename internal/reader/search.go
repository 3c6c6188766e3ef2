package reader

import (
	"context"
	"strings"
	"sync"

	"github.com/five82/herald/internal/content"
	"github.com/five82/herald/internal/feed"
)

// Search runs one query across articles, magazines and flyers. Each kind is
// an independent section and may finish in any order.
type Search struct {
	Articles  *feed.Controller[content.Article]
	Magazines *feed.Controller[content.Magazine]
	Flyers    *feed.Controller[content.Flyer]

	deps Deps
	all  *feed.Composite

	mu    sync.Mutex
	query string
}

// NewSearch builds the search screen.
func NewSearch(d Deps) *Search {
	d = d.withDefaults()
	s := &Search{deps: d}
	s.Articles = feed.New(feed.Options[content.Article]{
		Key:       "search/articles",
		Fetch:     searchFetcher(s, d.Queries.SearchArticles),
		ID:        itemID[content.Article],
		Failures:  d.Failures,
		Logger:    d.Logger,
		OnResults: reconcileItems[content.Article](d.Cache),
	})
	s.Magazines = feed.New(feed.Options[content.Magazine]{
		Key:       "search/magazines",
		Fetch:     searchFetcher(s, d.Queries.SearchMagazines),
		ID:        itemID[content.Magazine],
		Failures:  d.Failures,
		Logger:    d.Logger,
		OnResults: reconcileItems[content.Magazine](d.Cache),
	})
	s.Flyers = feed.New(feed.Options[content.Flyer]{
		Key:      "search/flyers",
		Fetch:    searchFetcher(s, d.Queries.SearchFlyers),
		ID:       itemID[content.Flyer],
		Failures: d.Failures,
		Logger:   d.Logger,
	})
	s.all = feed.NewComposite(s.Articles, s.Magazines, s.Flyers)
	return s
}

func searchFetcher[T any](s *Search, query func(context.Context, string) ([]T, error)) feed.Fetcher[T] {
	return func(ctx context.Context, _ string) (feed.Page[T], error) {
		q := s.Query()
		if q == "" {
			return feed.Page[T]{}, nil
		}
		items, err := query(ctx, q)
		return feed.Page[T]{Items: items}, err
	}
}

// Query returns the query the sections are showing results for.
func (s *Search) Query() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.query
}

// Submit records query as a recent search and reloads every section for it.
// A blank query does nothing and returns 0.
func (s *Search) Submit(ctx context.Context, query string) int {
	query = strings.TrimSpace(query)
	if query == "" {
		return 0
	}
	s.deps.Cache.AddRecentSearch(query)
	s.mu.Lock()
	s.query = query
	s.mu.Unlock()
	return s.all.Refresh(ctx)
}

// Refresh reissues the current query in every section.
func (s *Search) Refresh(ctx context.Context) int { return s.all.Refresh(ctx) }

// Loaded reports whether every section holds results.
func (s *Search) Loaded() bool { return s.all.Loaded() }

// Recent returns recent queries, most recent first.
func (s *Search) Recent() []string { return s.deps.Cache.RecentSearches() }

// Forget removes query from the recent searches.
func (s *Search) Forget(query string) { s.deps.Cache.RemoveRecentSearch(query) }

// Rows returns the decorated results of every section in display order.
func (s *Search) Rows() []Row {
	cache := s.deps.Cache
	rows := Rows(cache, s.Articles.State().Items)
	rows = append(rows, Rows(cache, s.Magazines.State().Items)...)
	return append(rows, Rows(cache, s.Flyers.State().Items)...)
}
