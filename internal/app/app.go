package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/five82/herald/internal/analytics"
	"github.com/five82/herald/internal/api"
	"github.com/five82/herald/internal/config"
	"github.com/five82/herald/internal/engage"
	"github.com/five82/herald/internal/notify"
	"github.com/five82/herald/internal/prefs"
	"github.com/five82/herald/internal/reader"
	"github.com/five82/herald/internal/state"
	"github.com/five82/herald/internal/storage"
	"github.com/five82/herald/internal/ui"
)

// Options configure the Herald application.
type Options struct {
	ConfigPath string
	// Endpoint, LogLevel and PollEvery override the config file when set.
	Endpoint  string
	LogLevel  string
	PollEvery int // seconds
	// LogOutput receives logs when the config names no log file. Nil
	// discards them.
	LogOutput io.Writer
}

// App holds the long-lived collaborators of one client process.
type App struct {
	Config     config.Config
	Logger     *slog.Logger
	Cache      *prefs.Cache
	Client     *api.Client
	Failures   *state.Board
	Reconciler *engage.Reconciler
	Screens    reader.Screens

	pushes  chan ui.Push
	closers []func(context.Context) error
}

var _ notify.Router = (*App)(nil)

// New loads the configuration and builds every component. Close releases
// what New opened.
func New(ctx context.Context, opts Options) (*App, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, err
	}

	a := &App{Config: cfg, Failures: &state.Board{}, pushes: make(chan ui.Push, 8)}
	fail := func(err error) (*App, error) {
		_ = a.closeAll(ctx)
		return nil, err
	}

	logger, closeLog, err := newLogger(cfg, opts.LogOutput)
	if err != nil {
		return nil, err
	}
	a.Logger = logger
	a.onClose(closeLog)

	store, err := a.openStore()
	if err != nil {
		return fail(err)
	}
	a.Cache, err = prefs.Open(ctx, prefs.Options{
		Store:     store,
		SaveDelay: cfg.SaveDelay,
		MaxRecent: cfg.RecentSearchLimit,
		Logger:    logger,
	})
	if err != nil {
		return fail(err)
	}
	a.closers = append(a.closers, a.Cache.Close)

	a.Client, err = newClient(cfg, logger)
	if err != nil {
		return fail(err)
	}

	sinks := analytics.Multi{analytics.NewLogSink(logger)}
	if cfg.AnalyticsJournal != "" {
		journal, err := analytics.OpenJournal(cfg.AnalyticsJournal, logger)
		if err != nil {
			return fail(err)
		}
		a.onClose(journal.Close)
		sinks = append(sinks, journal)
	}

	a.Reconciler = engage.New(engage.Options{
		Cache:  a.Cache,
		Remote: a.Client,
		Sink:   sinks,
		Logger: logger,
	})
	a.Screens = reader.NewScreens(reader.Deps{
		Queries:  a.Client,
		Cache:    a.Cache,
		Failures: a.Failures,
		Logger:   logger,
	})

	logger.Info("herald started",
		"endpoint", cfg.Endpoint,
		"cache_backend", cfg.CacheBackend,
		"cache_path", cfg.CachePath,
		"device_id", a.Cache.DeviceID(),
	)
	return a, nil
}

// Close waits for in-flight mutations, flushes the cache and closes the
// backing files.
func (a *App) Close(ctx context.Context) error {
	a.Reconciler.Wait()
	return a.closeAll(ctx)
}

func (a *App) onClose(fn func() error) {
	a.closers = append(a.closers, func(context.Context) error { return fn() })
}

// closeAll releases resources in reverse order of acquisition, so the cache
// flushes before its store closes.
func (a *App) closeAll(ctx context.Context) error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

// Pushes delivers destinations opened by push notifications.
func (a *App) Pushes() <-chan ui.Push {
	return a.pushes
}

// OpenArticle loads the article a notification points at and records the
// open.
func (a *App) OpenArticle(ctx context.Context, id string) error {
	article, err := a.Client.Article(ctx, id)
	if err != nil {
		return fmt.Errorf("load article %s: %w", id, err)
	}
	a.Reconciler.Open(article, analytics.SourcePush)
	a.deliver(ui.Push{Article: &article})
	return nil
}

// OpenDebrief loads (or reloads) this week's debrief.
func (a *App) OpenDebrief(ctx context.Context) error {
	d := a.Screens.Debrief
	if !d.StartInitialFetch(ctx) {
		d.Refresh(ctx)
	}
	if f := d.Failure(); f.Failed() {
		return fmt.Errorf("load debrief: %w", f.LastError)
	}
	a.deliver(ui.Push{Debrief: true})
	return nil
}

func (a *App) deliver(p ui.Push) {
	select {
	case a.pushes <- p:
	default:
		a.Logger.Debug("push dropped; no reader", "article", p.Article != nil, "debrief", p.Debrief)
	}
}

// refreshHome loads each home section, or reloads it once loaded, and
// reports the first failing section.
func (a *App) refreshHome(ctx context.Context) error {
	home := a.Screens.Home
	home.StartOrReload(ctx)
	for _, f := range []state.Failure{home.Trending.Failure(), home.Following.Failure()} {
		if f.Failed() {
			return f.LastError
		}
	}
	return nil
}

func (a *App) openStore() (prefs.Persister, error) {
	switch a.Config.CacheBackend {
	case config.BackendSQLite:
		db, err := storage.Open(a.Config.CachePath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite cache: %w", err)
		}
		a.onClose(db.Close)
		return db, nil
	default:
		store, err := prefs.NewFileStore(a.Config.CachePath)
		if err != nil {
			return nil, err
		}
		return store, nil
	}
}

func loadConfig(opts Options) (config.Config, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}
	if v := strings.TrimSpace(opts.Endpoint); v != "" {
		cfg.Endpoint = v
	}
	if v := strings.TrimSpace(opts.LogLevel); v != "" {
		if err := cfg.LogLevel.UnmarshalText([]byte(v)); err != nil {
			return config.Config{}, fmt.Errorf("log level: %w", err)
		}
	}
	if opts.PollEvery > 0 {
		cfg.PollInterval = secondsToDuration(opts.PollEvery)
	}
	return cfg, nil
}

func newClient(cfg config.Config, logger *slog.Logger) (*api.Client, error) {
	client, err := api.NewClient(api.Options{
		Endpoint:          cfg.Endpoint,
		RequestsPerSecond: cfg.RequestsPerSecond,
		Logger:            logger,
	})
	if err != nil {
		return nil, fmt.Errorf("init api client: %w", err)
	}
	return client, nil
}

func newLogger(cfg config.Config, fallback io.Writer) (*slog.Logger, func() error, error) {
	out := fallback
	closer := func() error { return nil }
	if cfg.LogFile != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.LogFile), 0o755); err != nil {
			return nil, nil, fmt.Errorf("create log dir: %w", err)
		}
		file, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		out, closer = file, file.Close
	}
	if out == nil {
		out = io.Discard
	}
	handler := slog.NewTextHandler(out, &slog.HandlerOptions{Level: cfg.LogLevel})
	return slog.New(handler), closer, nil
}
