package storage

import (
	"context"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/five82/herald/internal/content"
	"github.com/five82/herald/internal/prefs"
)

func openTestDB(t *testing.T, path string) *DB {
	t.Helper()
	db, err := Open(path)
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestLoad_EmptyDatabase(t *testing.T) {
	db := openTestDB(t, filepath.Join(t.TempDir(), "cache.db"))

	snap, err := db.Load(context.Background())
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !reflect.DeepEqual(snap, prefs.Snapshot{}) {
		t.Fatalf("Load = %#v, want empty snapshot", snap)
	}
}

func TestOpen_SetsWALAndBusyTimeout(t *testing.T) {
	db := openTestDB(t, filepath.Join(t.TempDir(), "cache.db"))

	var mode string
	if err := db.conn.QueryRow("PRAGMA journal_mode").Scan(&mode); err != nil {
		t.Fatalf("journal_mode: %v", err)
	}
	if mode != "wal" {
		t.Fatalf("journal_mode = %q, want wal", mode)
	}
	var timeout int
	if err := db.conn.QueryRow("PRAGMA busy_timeout").Scan(&timeout); err != nil {
		t.Fatalf("busy_timeout: %v", err)
	}
	if timeout != 5000 {
		t.Fatalf("busy_timeout = %d, want 5000", timeout)
	}
}

func TestSave_ReplacesPreviousSnapshot(t *testing.T) {
	db := openTestDB(t, filepath.Join(t.TempDir(), "cache.db"))
	ctx := context.Background()

	first := prefs.Snapshot{
		DeviceID:       "dev-1",
		Followed:       []string{"old"},
		Saved:          map[string][]string{"flyer": {"f1"}},
		RecentSearches: []string{"stale"},
	}
	if err := db.Save(ctx, first); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}

	want := prefs.Snapshot{
		DeviceID:       "dev-1",
		Followed:       []string{"review", "sun"},
		FollowedOrgs:   []string{"club"},
		Saved:          map[string][]string{"article": {"a1", "a2"}, "magazine": {"m1"}},
		ItemShoutouts:  map[string]int{"a1": 6},
		OwnerShoutouts: map[string]int{"sun": 12},
		Shouted:        []string{"a1"},
		RecentSearches: []string{"zebra", "apple"},
		Drift:          []string{"follow:sun"},
	}
	if err := db.Save(ctx, want); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}

	got, err := db.Load(ctx)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Load = %#v, want %#v", got, want)
	}
}

func TestOpen_ReopenKeepsDataAndSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "cache.db")
	db, err := Open(path)
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	if err := db.Save(context.Background(), prefs.Snapshot{DeviceID: "dev-2", Shouted: []string{"x"}}); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	if err := db.Close(); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}

	again := openTestDB(t, path)
	snap, err := again.Load(context.Background())
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if snap.DeviceID != "dev-2" || !reflect.DeepEqual(snap.Shouted, []string{"x"}) {
		t.Fatalf("Load = %#v, want device dev-2 with guard x", snap)
	}
}

func TestDB_BacksPreferenceCache(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.db")
	db := openTestDB(t, path)
	ctx := context.Background()

	cache, err := prefs.Open(ctx, prefs.Options{Store: db, NewDeviceID: func() string { return "dev-3" }})
	if err != nil {
		t.Fatalf("prefs.Open returned error: %v", err)
	}
	cache.ToggleFollowed(content.OwnerPublication, "sun")
	cache.ToggleFollowed(content.OwnerOrganization, "club")
	cache.IncrementShoutout(content.Article{ID: "a1", Shoutouts: 4, Publication: content.OwnerSummary{Slug: "sun", Shoutouts: 20}})
	if err := cache.Close(ctx); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}

	reopened, err := prefs.Open(ctx, prefs.Options{Store: db})
	if err != nil {
		t.Fatalf("prefs.Open returned error: %v", err)
	}
	if reopened.DeviceID() != "dev-3" {
		t.Fatalf("DeviceID = %q, want dev-3", reopened.DeviceID())
	}
	if !reopened.IsFollowed(content.OwnerPublication, "sun") || reopened.CanIncrementShoutout("a1") {
		t.Fatal("reopened cache lost follow or shout-out guard")
	}
	if !reopened.IsFollowed(content.OwnerOrganization, "club") || reopened.IsFollowed(content.OwnerOrganization, "sun") {
		t.Fatal("organization follows not kept apart from publications")
	}
	if got := reopened.EffectiveShoutouts("a1", 4); got != 5 {
		t.Fatalf("EffectiveShoutouts = %d, want 5", got)
	}
}
