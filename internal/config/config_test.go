package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestLoad_MissingConfigFallsBackToDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg, err := Load(filepath.Join(home, "does-not-exist.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Endpoint != defaultEndpoint {
		t.Fatalf("Endpoint = %q, want %q", cfg.Endpoint, defaultEndpoint)
	}
	if cfg.CacheBackend != BackendTOML {
		t.Fatalf("CacheBackend = %q, want %q", cfg.CacheBackend, BackendTOML)
	}
	wantCache, err := expandPath(defaultTOMLCachePath)
	if err != nil {
		t.Fatalf("expandPath returned error: %v", err)
	}
	if cfg.CachePath != wantCache {
		t.Fatalf("CachePath = %q, want %q", cfg.CachePath, wantCache)
	}
	if cfg.RecentSearchLimit != 10 || cfg.SaveDelay != time.Second || cfg.RequestsPerSecond != 5 {
		t.Fatalf("defaults = %+v", cfg)
	}
	if cfg.LogLevel != slog.LevelInfo || cfg.LogFile != "" || cfg.AnalyticsJournal != "" {
		t.Fatalf("logging defaults = %+v", cfg)
	}
}

func TestLoad_ParsesAndTrimsConfig(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	path := writeConfig(t, `
endpoint = "  https://api.example.org/graphql  "
cache_backend = " SQLite "
cache_path = "  ~/herald/cache.db  "
recent_search_limit = 25
save_delay = "250ms"
requests_per_second = 2.5
log_level = "debug"
log_file = "~/herald/herald.log"
analytics_journal = "~/herald/events.jsonl"
push_listen = "0.0.0.0:9000"
poll_interval = "90s"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Endpoint != "https://api.example.org/graphql" {
		t.Fatalf("Endpoint = %q", cfg.Endpoint)
	}
	if cfg.CacheBackend != BackendSQLite {
		t.Fatalf("CacheBackend = %q, want sqlite", cfg.CacheBackend)
	}
	if cfg.CachePath != filepath.Join(home, "herald", "cache.db") {
		t.Fatalf("CachePath = %q", cfg.CachePath)
	}
	if cfg.RecentSearchLimit != 25 || cfg.SaveDelay != 250*time.Millisecond || cfg.RequestsPerSecond != 2.5 {
		t.Fatalf("numbers = %+v", cfg)
	}
	if cfg.LogLevel != slog.LevelDebug {
		t.Fatalf("LogLevel = %v, want debug", cfg.LogLevel)
	}
	for _, p := range []string{cfg.LogFile, cfg.AnalyticsJournal} {
		if !strings.HasPrefix(p, home) {
			t.Fatalf("path %q not under HOME %q", p, home)
		}
	}
	if cfg.PushListen != "0.0.0.0:9000" || cfg.PollInterval != 90*time.Second {
		t.Fatalf("push/poll = %q %v", cfg.PushListen, cfg.PollInterval)
	}
}

func TestLoad_SQLiteBackendUsesItsOwnDefaultPath(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load(writeConfig(t, `cache_backend = "sqlite"`))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	want, err := expandPath(defaultSQLiteCachePath)
	if err != nil {
		t.Fatalf("expandPath returned error: %v", err)
	}
	if cfg.CachePath != want {
		t.Fatalf("CachePath = %q, want %q", cfg.CachePath, want)
	}
}

func TestLoad_EmptyValuesUseDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load(writeConfig(t, `
endpoint = "   "
cache_backend = ""
save_delay = ""
log_level = " "
`))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	def := Default()
	if cfg != def {
		t.Fatalf("Load = %+v, want %+v", cfg, def)
	}
}

func TestLoad_RejectsInvalidValues(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	tests := []struct {
		name string
		body string
		want string
	}{
		{"backend", `cache_backend = "redis"`, "cache_backend"},
		{"save delay", `save_delay = "soon"`, "save_delay"},
		{"negative poll", `poll_interval = "-1m"`, "poll_interval"},
		{"log level", `log_level = "loud"`, "log_level"},
		{"recent limit", `recent_search_limit = -1`, "recent_search_limit"},
		{"syntax", `endpoint = `, "parse config"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("Load error = %v, want it to mention %q", err, tt.want)
			}
		})
	}
}

func TestExpandPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	got, err := expandPath("~/herald")
	if err != nil {
		t.Fatalf("expandPath returned error: %v", err)
	}
	if got != filepath.Join(home, "herald") {
		t.Fatalf("expandPath = %q", got)
	}
	if _, err := expandPath("   "); err == nil {
		t.Fatal("expandPath accepted a blank path")
	}
}
