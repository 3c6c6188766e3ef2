package notify

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

type fakeRouter struct {
	articles []string
	debriefs int
	err      error
}

func (f *fakeRouter) OpenArticle(ctx context.Context, id string) error {
	f.articles = append(f.articles, id)
	return f.err
}

func (f *fakeRouter) OpenDebrief(ctx context.Context) error {
	f.debriefs++
	return f.err
}

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    Route
		wantErr error
	}{
		{"article", `{"notificationType":"new_article","articleID":" a1 "}`, Route{Type: TypeNewArticle, ArticleID: "a1"}, nil},
		{"debrief", `{"notificationType":"weekly_debrief"}`, Route{Type: TypeWeeklyDebrief}, nil},
		{"article without id", `{"notificationType":"new_article"}`, Route{}, ErrMissingArticle},
		{"unknown", `{"notificationType":"flyer_reminder"}`, Route{}, ErrUnknownType},
		{"missing type", `{}`, Route{}, ErrUnknownType},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse([]byte(tt.payload))
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Parse error = %v, want %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Fatalf("Parse = %+v, want %+v", got, tt.want)
			}
		})
	}

	if _, err := Parse([]byte("not json")); err == nil {
		t.Fatal("Parse accepted invalid JSON")
	}
}

func TestDispatch_RoutesByType(t *testing.T) {
	router := &fakeRouter{}
	ctx := context.Background()

	if _, err := Dispatch(ctx, []byte(`{"notificationType":"new_article","articleID":"a9"}`), router); err != nil {
		t.Fatalf("Dispatch returned error: %v", err)
	}
	if _, err := Dispatch(ctx, []byte(`{"notificationType":"weekly_debrief"}`), router); err != nil {
		t.Fatalf("Dispatch returned error: %v", err)
	}
	if len(router.articles) != 1 || router.articles[0] != "a9" || router.debriefs != 1 {
		t.Fatalf("router = %+v", router)
	}

	router.err = errors.New("gone")
	route, err := Dispatch(ctx, []byte(`{"notificationType":"weekly_debrief"}`), router)
	if err == nil || route.Type != TypeWeeklyDebrief {
		t.Fatalf("Dispatch = %+v, %v; want route with error", route, err)
	}
}

func TestHandler(t *testing.T) {
	router := &fakeRouter{}
	server := httptest.NewServer(NewHandler(router, nil))
	t.Cleanup(server.Close)

	resp, err := http.Get(server.URL + "/healthz")
	if err != nil {
		t.Fatalf("GET /healthz: %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("healthz status = %d, want 200", resp.StatusCode)
	}

	resp, err = http.Post(server.URL+"/push", "application/json",
		strings.NewReader(`{"notificationType":"new_article","articleID":"a1"}`))
	if err != nil {
		t.Fatalf("POST /push: %v", err)
	}
	var route Route
	if err := json.NewDecoder(resp.Body).Decode(&route); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusAccepted || route.ArticleID != "a1" {
		t.Fatalf("push = %d %+v, want 202 a1", resp.StatusCode, route)
	}

	resp, err = http.Post(server.URL+"/push", "application/json", strings.NewReader(`{"notificationType":"nope"}`))
	if err != nil {
		t.Fatalf("POST /push: %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("bad push status = %d, want 400", resp.StatusCode)
	}

	router.err = errors.New("offline")
	resp, err = http.Post(server.URL+"/push", "application/json", strings.NewReader(`{"notificationType":"weekly_debrief"}`))
	if err != nil {
		t.Fatalf("POST /push: %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("failed route status = %d, want 500", resp.StatusCode)
	}

	resp, err = http.Get(server.URL + "/push")
	if err != nil {
		t.Fatalf("GET /push: %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Fatalf("GET /push status = %d, want 405", resp.StatusCode)
	}
}
