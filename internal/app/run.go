package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/five82/herald/internal/analytics"
	"github.com/five82/herald/internal/notify"
	"github.com/five82/herald/internal/ui"
	"github.com/five82/herald/internal/widget"
)

const shutdownTimeout = 5 * time.Second

// RunTUI boots the terminal reader until the user quits or ctx is
// cancelled. With listenPush set the push receiver runs alongside it.
func RunTUI(ctx context.Context, opts Options, listenPush bool) (err error) {
	a, err := New(ctx, opts)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := a.Close(context.Background()); err == nil {
			err = cerr
		}
	}()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	Poller{Interval: a.Config.PollInterval, Refresh: a.refreshHome, Logger: a.Logger}.Start(ctx)

	if listenPush {
		go func() {
			if err := a.ServePush(ctx); err != nil {
				a.Logger.Error("push receiver stopped", "error", err)
			}
		}()
	}

	return ui.Run(ui.Options{
		Context:    ctx,
		Screens:    a.Screens,
		Reconciler: a.Reconciler,
		Cache:      a.Cache,
		Failures:   a.Failures,
		Pushes:     a.Pushes(),
		Logger:     a.Logger,
	})
}

// RunPush serves the push receiver until ctx is cancelled.
func RunPush(ctx context.Context, opts Options) (err error) {
	a, err := New(ctx, opts)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := a.Close(context.Background()); err == nil {
			err = cerr
		}
	}()
	return a.ServePush(ctx)
}

// ServePush listens on the configured push address until ctx is cancelled.
func (a *App) ServePush(ctx context.Context) error {
	server := &http.Server{
		Addr:              a.Config.PushListen,
		Handler:           notify.NewHandler(a, a.Logger),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.Logger.Info("push receiver listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("push receiver: %w", err)
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown push receiver: %w", err)
	}
	return nil
}

// Timelines the widget command can print.
const (
	TimelineArticles = "articles"
	TimelineFlyers   = "flyers"
)

// RunWidget prints a widget timeline to w. It talks to the backend directly
// and leaves the preference cache untouched.
func RunWidget(ctx context.Context, opts Options, timeline string, w io.Writer) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	logger, closeLog, err := newLogger(cfg, opts.LogOutput)
	if err != nil {
		return err
	}
	defer closeLog()

	client, err := newClient(cfg, logger)
	if err != nil {
		return err
	}
	provider := widget.NewProvider(client, nil, 0)

	var entries []widget.Entry
	switch strings.ToLower(strings.TrimSpace(timeline)) {
	case "", TimelineArticles:
		entries, err = provider.Articles(ctx)
	case TimelineFlyers:
		entries, err = provider.Flyers(ctx)
	default:
		return fmt.Errorf("unknown timeline %q", timeline)
	}
	if err != nil {
		return err
	}
	return writeEntries(w, entries)
}

func writeEntries(w io.Writer, entries []widget.Entry) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, e := range entries {
		ref := e.Item.Ref()
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
			e.Date.Format("15:04"),
			ref.Kind,
			e.Item.OwnerSlug(),
			e.Item.Title(),
		)
	}
	return tw.Flush()
}

// RunEvents prints the last n analytics events from the configured journal.
func RunEvents(opts Options, n int, w io.Writer) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	if cfg.AnalyticsJournal == "" {
		return errors.New("analytics_journal is not configured")
	}
	events, err := analytics.Recent(cfg.AnalyticsJournal, n)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, e := range events {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", e.Time.Format(time.RFC3339), e.Name, e.Entity, e.Source)
	}
	return tw.Flush()
}
