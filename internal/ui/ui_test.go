package ui

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/herald/internal/api"
	"github.com/five82/herald/internal/content"
	"github.com/five82/herald/internal/engage"
	"github.com/five82/herald/internal/feed"
	"github.com/five82/herald/internal/prefs"
	"github.com/five82/herald/internal/reader"
	"github.com/five82/herald/internal/state"
)

// fakeBackend serves a fixed data set and records mutations.
type fakeBackend struct {
	mu          sync.Mutex
	magazineReq []string
	searches    []string
	mutations   []string
}

var _ api.Service = (*fakeBackend)(nil)

func article(id, title string) content.Article {
	return content.Article{ID: id, Headline: title, Publication: content.OwnerSummary{Slug: "daily-sun"}}
}

func magazine(id string) content.Magazine {
	return content.Magazine{ID: id, Headline: "Issue " + id, Publication: content.OwnerSummary{Slug: "review"}}
}

func (f *fakeBackend) TrendingArticles(context.Context, int) ([]content.Article, error) {
	return []content.Article{article("a1", "Dining hall review")}, nil
}

func (f *fakeBackend) ArticlesByPublications(context.Context, []string, string) (feed.Page[content.Article], error) {
	return feed.Page[content.Article]{}, nil
}

func (f *fakeBackend) Article(_ context.Context, id string) (content.Article, error) {
	return article(id, "Pushed"), nil
}

func (f *fakeBackend) Publications(context.Context) ([]content.Publication, error) {
	return []content.Publication{{Slug: "daily-sun", Name: "The Daily Sun"}}, nil
}

func (f *fakeBackend) Organizations(context.Context) ([]content.Organization, error) {
	return nil, nil
}

func (f *fakeBackend) Magazines(_ context.Context, cursor string) (feed.Page[content.Magazine], error) {
	f.mu.Lock()
	f.magazineReq = append(f.magazineReq, cursor)
	f.mu.Unlock()
	if cursor == "" {
		return feed.Page[content.Magazine]{Items: []content.Magazine{magazine("m1"), magazine("m2")}, Cursor: "2", HasMore: true}, nil
	}
	return feed.Page[content.Magazine]{Items: []content.Magazine{magazine("m3")}, Cursor: "3"}, nil
}

func (f *fakeBackend) Magazine(_ context.Context, id string) (content.Magazine, error) {
	return magazine(id), nil
}

func (f *fakeBackend) UpcomingFlyers(context.Context, time.Time) ([]content.Flyer, error) {
	return nil, nil
}

func (f *fakeBackend) PastFlyers(context.Context, time.Time, int) ([]content.Flyer, error) {
	return nil, nil
}

func (f *fakeBackend) SearchArticles(_ context.Context, query string) ([]content.Article, error) {
	f.mu.Lock()
	f.searches = append(f.searches, query)
	f.mu.Unlock()
	return []content.Article{article("s1", "Result for "+query)}, nil
}

func (f *fakeBackend) SearchMagazines(context.Context, string) ([]content.Magazine, error) {
	return nil, nil
}

func (f *fakeBackend) SearchFlyers(context.Context, string) ([]content.Flyer, error) {
	return nil, nil
}

func (f *fakeBackend) WeeklyDebrief(context.Context, string) (content.Debrief, error) {
	return content.Debrief{}, api.ErrNotFound
}

func (f *fakeBackend) FollowedPublications(context.Context, string) ([]string, error) {
	return nil, nil
}

func (f *fakeBackend) FollowedOrganizations(context.Context, string) ([]string, error) {
	return nil, nil
}

func (f *fakeBackend) record(s string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.mutations = append(f.mutations, s)
	return nil
}

func (f *fakeBackend) SetFollow(_ context.Context, owner content.OwnerKind, slug, _ string, follow bool) error {
	return f.record("follow " + owner.String() + " " + slug)
}

func (f *fakeBackend) SetBookmark(_ context.Context, ref content.Ref, _ string, saved bool) error {
	return f.record("bookmark " + ref.String())
}

func (f *fakeBackend) IncrementShoutout(_ context.Context, ref content.Ref, _ string) error {
	return f.record("shoutout " + ref.String())
}

func (f *fakeBackend) RecordFlyerClick(_ context.Context, id string) error {
	return f.record("click " + id)
}

type harness struct {
	backend    *fakeBackend
	cache      *prefs.Cache
	failures   *state.Board
	reconciler *engage.Reconciler
	model      Model
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	cache, err := prefs.Open(context.Background(), prefs.Options{NewDeviceID: func() string { return "device-1" }})
	if err != nil {
		t.Fatalf("prefs.Open returned error: %v", err)
	}
	backend := &fakeBackend{}
	failures := &state.Board{}
	reconciler := engage.New(engage.Options{Cache: cache, Remote: backend})
	screens := reader.NewScreens(reader.Deps{Queries: backend, Cache: cache, Failures: failures})

	m := New(Options{Screens: screens, Reconciler: reconciler, Cache: cache, Failures: failures})
	h := &harness{backend: backend, cache: cache, failures: failures, reconciler: reconciler, model: m}
	h.update(tea.WindowSizeMsg{Width: 200, Height: 40})
	h.exec(m.appear(tabHome))
	return h
}

// update feeds msg to the model and returns the resulting command.
func (h *harness) update(msg tea.Msg) tea.Cmd {
	next, cmd := h.model.Update(msg)
	h.model = next.(Model)
	return cmd
}

// exec runs cmd synchronously and feeds its message back.
func (h *harness) exec(cmd tea.Cmd) {
	if cmd == nil {
		return
	}
	if msg := cmd(); msg != nil {
		h.exec(h.update(msg))
	}
}

func (h *harness) press(keys string) {
	for _, r := range keys {
		h.exec(h.update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}))
	}
}

func TestModel_HomeShowsTrendingAfterInitialFetch(t *testing.T) {
	h := newHarness(t)
	view := h.model.View()
	if !strings.Contains(view, "Dining hall review") {
		t.Fatalf("view missing trending article:\n%s", view)
	}
}

func TestModel_BookmarkAppliesImmediately(t *testing.T) {
	h := newHarness(t)
	ref := content.Ref{ID: "a1", Kind: content.KindArticle}

	h.press("b")
	if !h.cache.IsSaved(ref) {
		t.Fatal("bookmark not applied to cache")
	}
	h.reconciler.Wait()
	if len(h.backend.mutations) != 1 || h.backend.mutations[0] != "bookmark "+ref.String() {
		t.Fatalf("mutations = %v", h.backend.mutations)
	}
}

func TestModel_ShoutoutIsOneShot(t *testing.T) {
	h := newHarness(t)
	h.press("s")
	h.press("s")
	h.reconciler.Wait()
	if len(h.backend.mutations) != 1 {
		t.Fatalf("mutations = %v, want a single shout-out", h.backend.mutations)
	}
	if !strings.Contains(h.model.status, "already") {
		t.Fatalf("status = %q, want already shouted out", h.model.status)
	}
}

func TestModel_BannerOnlyOnFailingTab(t *testing.T) {
	h := newHarness(t)
	h.failures.Record("magazines", errors.New("offline"))

	if strings.Contains(h.model.View(), "Couldn't reach") {
		t.Fatal("home shows the magazines failure")
	}
	h.exec(h.update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("3")}))
	h.failures.Record("magazines", errors.New("offline"))
	h.failures.Record("magazines", errors.New("offline"))
	if view := h.model.View(); !strings.Contains(view, "Still offline") {
		t.Fatalf("magazines view missing banner:\n%s", view)
	}
}

func TestModel_TrailingMagazineRequestsNextPage(t *testing.T) {
	h := newHarness(t)
	h.press("3")
	if got := len(h.model.entries()); got != 2 {
		t.Fatalf("entries = %d, want 2", got)
	}

	h.press("G")
	if got := len(h.model.entries()); got != 3 {
		t.Fatalf("entries after paging = %d, want 3", got)
	}
	if got := h.backend.magazineReq; len(got) != 2 || got[1] != "2" {
		t.Fatalf("magazine requests = %q, want [\"\" \"2\"]", got)
	}
}

func TestModel_SearchSubmitRecordsRecent(t *testing.T) {
	h := newHarness(t)
	h.press("/")
	if !h.model.searching {
		t.Fatal("/ did not open the search input")
	}
	h.press("quad")
	h.exec(h.update(tea.KeyMsg{Type: tea.KeyEnter}))

	if recent := h.cache.RecentSearches(); len(recent) != 1 || recent[0] != "quad" {
		t.Fatalf("recent = %v, want [quad]", recent)
	}
	if view := h.model.View(); !strings.Contains(view, "Result for quad") {
		t.Fatalf("view missing search result:\n%s", view)
	}
}

func TestModel_PushOpensArticle(t *testing.T) {
	h := newHarness(t)
	a := article("p1", "Pushed story")
	h.update(pushMsg(Push{Article: &a}))
	if h.model.opened == nil || h.model.opened.Item.Ref().ID != "p1" {
		t.Fatalf("opened = %+v, want p1", h.model.opened)
	}
	if !strings.Contains(h.model.View(), "Pushed story") {
		t.Fatal("detail pane missing pushed article")
	}
}

func TestNextTheme(t *testing.T) {
	if got := NextTheme("Dracula"); got != "Slate" {
		t.Fatalf("NextTheme(Dracula) = %q, want Slate", got)
	}
	if got := NextTheme("Slate"); got != "Dracula" {
		t.Fatalf("NextTheme(Slate) = %q, want Dracula", got)
	}
	if got := NextTheme("missing"); got != "Dracula" {
		t.Fatalf("NextTheme(missing) = %q, want Dracula", got)
	}
	if names := ThemeNames(); len(names) != 2 {
		t.Fatalf("ThemeNames() = %v", names)
	}
}
