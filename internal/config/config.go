package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Cache backends.
const (
	BackendTOML   = "toml"
	BackendSQLite = "sqlite"
)

// Config is the client configuration.
type Config struct {
	Endpoint          string
	CacheBackend      string
	CachePath         string
	RecentSearchLimit int
	SaveDelay         time.Duration
	RequestsPerSecond float64
	LogLevel          slog.Level
	LogFile           string
	AnalyticsJournal  string
	PushListen        string
	PollInterval      time.Duration
}

const (
	defaultConfigPath        = "~/.config/herald/config.toml"
	defaultEndpoint          = "http://127.0.0.1:8000/graphql"
	defaultTOMLCachePath     = "~/.config/herald/cache.toml"
	defaultSQLiteCachePath   = "~/.local/share/herald/cache.db"
	defaultRecentSearchLimit = 10
	defaultSaveDelay         = time.Second
	defaultRequestsPerSecond = 5
	defaultPushListen        = "127.0.0.1:7490"
	defaultPollInterval      = 5 * time.Minute
)

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		Endpoint:          defaultEndpoint,
		CacheBackend:      BackendTOML,
		CachePath:         mustExpand(defaultTOMLCachePath),
		RecentSearchLimit: defaultRecentSearchLimit,
		SaveDelay:         defaultSaveDelay,
		RequestsPerSecond: defaultRequestsPerSecond,
		LogLevel:          slog.LevelInfo,
		PushListen:        defaultPushListen,
		PollInterval:      defaultPollInterval,
	}
}

type rawConfig struct {
	Endpoint          string  `toml:"endpoint"`
	CacheBackend      string  `toml:"cache_backend"`
	CachePath         string  `toml:"cache_path"`
	RecentSearchLimit int     `toml:"recent_search_limit"`
	SaveDelay         string  `toml:"save_delay"`
	RequestsPerSecond float64 `toml:"requests_per_second"`
	LogLevel          string  `toml:"log_level"`
	LogFile           string  `toml:"log_file"`
	AnalyticsJournal  string  `toml:"analytics_journal"`
	PushListen        string  `toml:"push_listen"`
	PollInterval      string  `toml:"poll_interval"`
}

// Load reads the config at path (or the default location when blank). A
// missing file yields Default; blank fields keep their defaults.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var raw rawConfig
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	return raw.apply(Default())
}

func (raw rawConfig) apply(cfg Config) (Config, error) {
	if v := strings.TrimSpace(raw.Endpoint); v != "" {
		cfg.Endpoint = v
	}

	switch backend := strings.ToLower(strings.TrimSpace(raw.CacheBackend)); backend {
	case "", BackendTOML:
	case BackendSQLite:
		cfg.CacheBackend = BackendSQLite
		cfg.CachePath = mustExpand(defaultSQLiteCachePath)
	default:
		return Config{}, fmt.Errorf("cache_backend %q: want %q or %q", backend, BackendTOML, BackendSQLite)
	}
	if v := strings.TrimSpace(raw.CachePath); v != "" {
		cfg.CachePath = mustExpand(v)
	}

	if raw.RecentSearchLimit < 0 {
		return Config{}, fmt.Errorf("recent_search_limit must not be negative")
	}
	if raw.RecentSearchLimit > 0 {
		cfg.RecentSearchLimit = raw.RecentSearchLimit
	}
	if raw.RequestsPerSecond < 0 {
		return Config{}, fmt.Errorf("requests_per_second must not be negative")
	}
	if raw.RequestsPerSecond > 0 {
		cfg.RequestsPerSecond = raw.RequestsPerSecond
	}

	var err error
	if cfg.SaveDelay, err = parseDuration("save_delay", raw.SaveDelay, cfg.SaveDelay); err != nil {
		return Config{}, err
	}
	if cfg.PollInterval, err = parseDuration("poll_interval", raw.PollInterval, cfg.PollInterval); err != nil {
		return Config{}, err
	}

	if v := strings.TrimSpace(raw.LogLevel); v != "" {
		if err := cfg.LogLevel.UnmarshalText([]byte(v)); err != nil {
			return Config{}, fmt.Errorf("log_level: %w", err)
		}
	}
	if v := strings.TrimSpace(raw.LogFile); v != "" {
		cfg.LogFile = mustExpand(v)
	}
	if v := strings.TrimSpace(raw.AnalyticsJournal); v != "" {
		cfg.AnalyticsJournal = mustExpand(v)
	}
	if v := strings.TrimSpace(raw.PushListen); v != "" {
		cfg.PushListen = v
	}
	return cfg, nil
}

func parseDuration(field, value string, fallback time.Duration) (time.Duration, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", field, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%s must not be negative", field)
	}
	return d, nil
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
