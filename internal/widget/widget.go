// Package widget builds home-screen widget timelines. It fetches on its own
// and never reads or writes the preference cache.
package widget

import (
	"context"
	"fmt"
	"time"

	"github.com/five82/herald/internal/content"
)

// DefaultLimit caps the entries of one timeline.
const DefaultLimit = 10

// Source is the slice of the query layer the widget uses.
type Source interface {
	TrendingArticles(ctx context.Context, limit int) ([]content.Article, error)
	UpcomingFlyers(ctx context.Context, since time.Time) ([]content.Flyer, error)
	PastFlyers(ctx context.Context, before time.Time, limit int) ([]content.Flyer, error)
}

// Entry is one timeline slot.
type Entry struct {
	Date time.Time
	Item content.Item
}

// Provider produces timelines.
type Provider struct {
	src   Source
	now   func() time.Time
	limit int
}

// NewProvider builds a Provider. A nil now uses the wall clock; a
// non-positive limit uses DefaultLimit.
func NewProvider(src Source, now func() time.Time, limit int) *Provider {
	if now == nil {
		now = time.Now
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Provider{src: src, now: now, limit: limit}
}

// Articles returns one entry per trending article, an hour apart starting now.
func (p *Provider) Articles(ctx context.Context) ([]Entry, error) {
	articles, err := p.src.TrendingArticles(ctx, p.limit)
	if err != nil {
		return nil, fmt.Errorf("trending articles: %w", err)
	}
	items := make([]content.Item, 0, len(articles))
	for _, a := range articles {
		items = append(items, a)
	}
	return p.entries(items), nil
}

// Flyers returns upcoming flyers soonest first followed by past flyers most
// recent first, one entry per flyer an hour apart starting now.
func (p *Provider) Flyers(ctx context.Context) ([]Entry, error) {
	now := p.now()
	upcoming, err := p.src.UpcomingFlyers(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("upcoming flyers: %w", err)
	}
	past, err := p.src.PastFlyers(ctx, now, p.limit)
	if err != nil {
		return nil, fmt.Errorf("past flyers: %w", err)
	}
	content.SortUpcoming(upcoming)
	content.SortPast(past)

	items := make([]content.Item, 0, len(upcoming)+len(past))
	for _, f := range upcoming {
		items = append(items, f)
	}
	for _, f := range past {
		items = append(items, f)
	}
	return p.entries(items), nil
}

func (p *Provider) entries(items []content.Item) []Entry {
	if len(items) > p.limit {
		items = items[:p.limit]
	}
	start := p.now()
	out := make([]Entry, len(items))
	for i, item := range items {
		out[i] = Entry{Date: start.Add(time.Duration(i) * time.Hour), Item: item}
	}
	return out
}
