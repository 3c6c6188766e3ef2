package widget

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/five82/herald/internal/content"
)

var now = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

type fakeSource struct {
	articles []content.Article
	upcoming []content.Flyer
	past     []content.Flyer
	err      error
}

func (f fakeSource) TrendingArticles(ctx context.Context, limit int) ([]content.Article, error) {
	return f.articles, f.err
}

func (f fakeSource) UpcomingFlyers(ctx context.Context, since time.Time) ([]content.Flyer, error) {
	return append([]content.Flyer(nil), f.upcoming...), f.err
}

func (f fakeSource) PastFlyers(ctx context.Context, before time.Time, limit int) ([]content.Flyer, error) {
	return append([]content.Flyer(nil), f.past...), f.err
}

func ids(entries []Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Item.Ref().ID
	}
	return out
}

func TestArticles_HourSpacedEntries(t *testing.T) {
	p := NewProvider(fakeSource{articles: []content.Article{{ID: "a1"}, {ID: "a2"}, {ID: "a3"}}}, func() time.Time { return now }, 0)

	entries, err := p.Articles(context.Background())
	if err != nil {
		t.Fatalf("Articles returned error: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("entries = %d, want 3", len(entries))
	}
	for i, e := range entries {
		want := now.Add(time.Duration(i) * time.Hour)
		if !e.Date.Equal(want) {
			t.Fatalf("entry %d date = %v, want %v", i, e.Date, want)
		}
	}
}

func TestFlyers_UpcomingThenPast(t *testing.T) {
	src := fakeSource{
		upcoming: []content.Flyer{
			{ID: "next-week", StartDate: now.AddDate(0, 0, 7)},
			{ID: "tomorrow", StartDate: now.AddDate(0, 0, 1)},
		},
		past: []content.Flyer{
			{ID: "last-month", StartDate: now.AddDate(0, -1, 0)},
			{ID: "yesterday", StartDate: now.AddDate(0, 0, -1)},
		},
	}
	p := NewProvider(src, func() time.Time { return now }, 3)

	entries, err := p.Flyers(context.Background())
	if err != nil {
		t.Fatalf("Flyers returned error: %v", err)
	}
	got := ids(entries)
	want := []string{"tomorrow", "next-week", "yesterday"}
	if len(got) != len(want) {
		t.Fatalf("flyers = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("flyers = %v, want %v", got, want)
		}
	}
	if !entries[2].Date.Equal(now.Add(2 * time.Hour)) {
		t.Fatalf("third entry date = %v", entries[2].Date)
	}
}

func TestProvider_FetchErrorPropagates(t *testing.T) {
	p := NewProvider(fakeSource{err: errors.New("offline")}, nil, 0)
	if _, err := p.Articles(context.Background()); err == nil {
		t.Fatal("Articles returned nil error")
	}
	if _, err := p.Flyers(context.Background()); err == nil {
		t.Fatal("Flyers returned nil error")
	}
}
