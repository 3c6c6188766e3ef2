package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/five82/herald/internal/content"
)

type recordedRequest struct {
	Query     string
	Variables map[string]any
	UserAgent string
}

// graphQLServer answers every request with the body produced by respond and
// records what it received.
func graphQLServer(t *testing.T, respond func(req recordedRequest) string) (*Client, func() []recordedRequest) {
	t.Helper()
	var (
		mu   sync.Mutex
		seen []recordedRequest
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method", http.StatusMethodNotAllowed)
			return
		}
		body, _ := io.ReadAll(r.Body)
		var req request
		if err := json.Unmarshal(body, &req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		rec := recordedRequest{Query: req.Query, Variables: req.Variables, UserAgent: r.Header.Get("User-Agent")}
		mu.Lock()
		seen = append(seen, rec)
		mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, respond(rec))
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(Options{Endpoint: server.URL + "/graphql", RequestsPerSecond: 1000, PageSize: 2})
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	return c, func() []recordedRequest {
		mu.Lock()
		defer mu.Unlock()
		return append([]recordedRequest(nil), seen...)
	}
}

func testContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func TestParseEndpoint_DefaultsAndNormalizes(t *testing.T) {
	u, err := parseEndpoint("")
	if err != nil {
		t.Fatalf("parseEndpoint returned error: %v", err)
	}
	if u.String() != defaultEndpoint {
		t.Fatalf("endpoint = %q, want %q", u.String(), defaultEndpoint)
	}

	u, err = parseEndpoint("example.com:8080/graphql?x=1#frag")
	if err != nil {
		t.Fatalf("parseEndpoint returned error: %v", err)
	}
	if u.Scheme != "http" || u.Path != "/graphql" || u.RawQuery != "" || u.Fragment != "" {
		t.Fatalf("endpoint not normalized: %q", u.String())
	}
}

func TestTrendingArticles_DropsInvalidItems(t *testing.T) {
	c, requests := graphQLServer(t, func(recordedRequest) string {
		return `{"data":{"getTrendingArticles":[
			{"id":"a1","title":"One","shoutouts":3,"publication":{"slug":"sun","shoutouts":40}},
			{"id":"","title":"No id","publication":{"slug":"sun"}},
			{"id":"a3","title":"No publication"},
			{"id":42},
			{"id":"a5","title":"Five","publication":{"slug":"zine"}}
		]}}`
	})

	got, err := c.TrendingArticles(testContext(t), 10)
	if err != nil {
		t.Fatalf("TrendingArticles returned error: %v", err)
	}
	if len(got) != 2 || got[0].ID != "a1" || got[1].ID != "a5" {
		t.Fatalf("TrendingArticles = %+v, want a1 and a5", got)
	}
	if got[0].Publication.Shoutouts != 40 {
		t.Fatalf("publication shoutouts = %d, want 40", got[0].Publication.Shoutouts)
	}

	reqs := requests()
	if len(reqs) != 1 {
		t.Fatalf("requests = %d, want 1", len(reqs))
	}
	if !strings.Contains(reqs[0].Query, "getTrendingArticles") {
		t.Fatalf("query = %q, want getTrendingArticles", reqs[0].Query)
	}
	if reqs[0].Variables["limit"] != float64(10) {
		t.Fatalf("limit = %v, want 10", reqs[0].Variables["limit"])
	}
	if reqs[0].UserAgent != defaultUserAgent {
		t.Fatalf("user agent = %q, want %q", reqs[0].UserAgent, defaultUserAgent)
	}
}

func TestMagazines_PaginatesWithOffsetCursor(t *testing.T) {
	c, requests := graphQLServer(t, func(req recordedRequest) string {
		if req.Variables["offset"] == float64(0) {
			return `{"data":{"getAllMagazines":[
				{"id":"m1","publication":{"slug":"sun"}},
				{"id":"","publication":{"slug":"sun"}}
			]}}`
		}
		return `{"data":{"getAllMagazines":[{"id":"m3","publication":{"slug":"sun"}}]}}`
	})
	ctx := testContext(t)

	first, err := c.Magazines(ctx, "")
	if err != nil {
		t.Fatalf("Magazines returned error: %v", err)
	}
	if len(first.Items) != 1 || !first.HasMore || first.Cursor != "2" {
		t.Fatalf("first page = %+v, want one item, more, cursor 2", first)
	}

	second, err := c.Magazines(ctx, first.Cursor)
	if err != nil {
		t.Fatalf("Magazines returned error: %v", err)
	}
	if len(second.Items) != 1 || second.HasMore || second.Items[0].ID != "m3" {
		t.Fatalf("second page = %+v, want m3 and no more", second)
	}
	if got := requests()[1].Variables["offset"]; got != float64(2) {
		t.Fatalf("second offset = %v, want 2", got)
	}

	if _, err := c.Magazines(ctx, "bogus"); err == nil {
		t.Fatal("Magazines accepted an invalid cursor")
	}
}

func TestArticlesByPublications_NoSlugsSkipsRequest(t *testing.T) {
	c, requests := graphQLServer(t, func(recordedRequest) string { return `{"data":{}}` })

	got, err := c.ArticlesByPublications(testContext(t), nil, "")
	if err != nil {
		t.Fatalf("ArticlesByPublications returned error: %v", err)
	}
	if len(got.Items) != 0 || got.HasMore {
		t.Fatalf("page = %+v, want empty", got)
	}
	if len(requests()) != 0 {
		t.Fatal("request issued without slugs")
	}
}

func TestArticle_NullIsNotFound(t *testing.T) {
	c, _ := graphQLServer(t, func(recordedRequest) string { return `{"data":{"getArticleByID":null}}` })

	_, err := c.Article(testContext(t), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("Article error = %v, want ErrNotFound", err)
	}
}

func TestDo_GraphQLErrorsSurfaceAsError(t *testing.T) {
	c, _ := graphQLServer(t, func(recordedRequest) string {
		return `{"data":null,"errors":[{"message":"slug not found"},{"message":"try again"}]}`
	})

	err := c.SetFollow(testContext(t), content.OwnerPublication, "sun", "dev", true)
	var gqlErr *Error
	if !errors.As(err, &gqlErr) {
		t.Fatalf("SetFollow error = %v, want *Error", err)
	}
	if len(gqlErr.Messages) != 2 || gqlErr.Messages[0] != "slug not found" {
		t.Fatalf("messages = %v", gqlErr.Messages)
	}
}

func TestDo_HTTPStatusFails(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	t.Cleanup(server.Close)
	c, err := NewClient(Options{Endpoint: server.URL, RequestsPerSecond: 1000})
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}

	_, err = c.Publications(testContext(t))
	if err == nil || !strings.Contains(err.Error(), "502") {
		t.Fatalf("Publications error = %v, want status 502", err)
	}
}

func TestMutations_SelectDocumentsAndVariables(t *testing.T) {
	c, requests := graphQLServer(t, func(recordedRequest) string { return `{"data":{}}` })
	ctx := testContext(t)

	if err := c.SetFollow(ctx, content.OwnerOrganization, "club", "dev", false); err != nil {
		t.Fatalf("SetFollow returned error: %v", err)
	}
	if err := c.SetBookmark(ctx, content.Ref{ID: "m1", Kind: content.KindMagazine}, "dev", true); err != nil {
		t.Fatalf("SetBookmark returned error: %v", err)
	}
	if err := c.IncrementShoutout(ctx, content.Ref{ID: "a1", Kind: content.KindArticle}, "dev"); err != nil {
		t.Fatalf("IncrementShoutout returned error: %v", err)
	}
	if err := c.RecordFlyerClick(ctx, "f1"); err != nil {
		t.Fatalf("RecordFlyerClick returned error: %v", err)
	}
	if err := c.IncrementShoutout(ctx, content.Ref{ID: "f1", Kind: content.KindFlyer}, "dev"); err == nil {
		t.Fatal("IncrementShoutout accepted a flyer")
	}

	reqs := requests()
	if len(reqs) != 4 {
		t.Fatalf("requests = %d, want 4", len(reqs))
	}
	wants := []string{"unfollowOrganization", "bookmarkMagazine", "incrementShoutouts", "incrementTimesClicked"}
	for i, want := range wants {
		if !strings.Contains(reqs[i].Query, want+"(") {
			t.Fatalf("request %d query = %q, want %s", i, reqs[i].Query, want)
		}
	}
	if reqs[0].Variables["slug"] != "club" || reqs[0].Variables["uuid"] != "dev" {
		t.Fatalf("follow variables = %v", reqs[0].Variables)
	}
}

func TestWeeklyDebrief_DecodesAndFiltersArticles(t *testing.T) {
	c, _ := graphQLServer(t, func(recordedRequest) string {
		return `{"data":{"getUserByUUID":{"weeklyDebrief":{
			"creationDate":"2026-03-01T00:00:00Z","expirationDate":"2026-03-08T00:00:00Z",
			"numShoutouts":4,"numBookmarkedArticles":2,"numReadArticles":9,
			"readArticles":[{"id":"a1","publication":{"slug":"sun"}},{"id":"a2"}],
			"randomArticles":[]}}}}`
	})

	d, err := c.WeeklyDebrief(testContext(t), "dev")
	if err != nil {
		t.Fatalf("WeeklyDebrief returned error: %v", err)
	}
	if d.NumRead != 9 || len(d.ReadArticles) != 1 || d.ReadArticles[0].ID != "a1" {
		t.Fatalf("debrief = %+v", d)
	}
}

func TestWeeklyDebrief_DropsUndecodableArticles(t *testing.T) {
	c, _ := graphQLServer(t, func(recordedRequest) string {
		return `{"data":{"getUserByUUID":{"weeklyDebrief":{
			"numReadArticles":2,
			"readArticles":[{"id":"a1","publication":{"slug":"sun"}},{"id":"a2","date":"yesterday","publication":{"slug":"sun"}}],
			"randomArticles":[{"id":"r1","shoutouts":"many","publication":{"slug":"sun"}},{"id":"r2","publication":{"slug":"sun"}}]}}}}`
	})

	d, err := c.WeeklyDebrief(testContext(t), "dev")
	if err != nil {
		t.Fatalf("WeeklyDebrief returned error: %v", err)
	}
	if len(d.ReadArticles) != 1 || d.ReadArticles[0].ID != "a1" {
		t.Fatalf("read articles = %+v, want [a1]", d.ReadArticles)
	}
	if len(d.RandomArticles) != 1 || d.RandomArticles[0].ID != "r2" {
		t.Fatalf("random articles = %+v, want [r2]", d.RandomArticles)
	}
	if d.NumRead != 2 {
		t.Fatalf("NumRead = %d, want 2", d.NumRead)
	}
}

func TestFollowedPublications(t *testing.T) {
	c, _ := graphQLServer(t, func(recordedRequest) string {
		return `{"data":{"getUserByUUID":{"followedPublications":[{"slug":"sun"},{"slug":""},{"slug":"zine"}]}}}`
	})

	got, err := c.FollowedPublications(testContext(t), "dev")
	if err != nil {
		t.Fatalf("FollowedPublications returned error: %v", err)
	}
	if len(got) != 2 || got[0] != "sun" || got[1] != "zine" {
		t.Fatalf("FollowedPublications = %v, want [sun zine]", got)
	}
}

func TestFollowedOrganizations(t *testing.T) {
	c, _ := graphQLServer(t, func(recordedRequest) string {
		return `{"data":{"getUserByUUID":{"followedOrganizations":[{"slug":"club"}]}}}`
	})

	got, err := c.FollowedOrganizations(testContext(t), "dev")
	if err != nil {
		t.Fatalf("FollowedOrganizations returned error: %v", err)
	}
	if len(got) != 1 || got[0] != "club" {
		t.Fatalf("FollowedOrganizations = %v, want [club]", got)
	}
}
