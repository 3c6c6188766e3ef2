package app

import (
	"context"
	"log/slog"
	"time"
)

const (
	defaultPollInterval = 5 * time.Minute
	// retryInterval is the first wait after a failed poll; it doubles with
	// each consecutive failure up to maxBackoff.
	retryInterval = 2 * time.Second
	maxBackoff    = 30 * time.Second
)

// Poller calls Refresh every Interval, retrying sooner with exponential
// backoff while refreshes fail.
type Poller struct {
	Interval time.Duration
	Retry    time.Duration
	Refresh  func(context.Context) error
	Logger   *slog.Logger
}

// Start runs the poller in a goroutine and returns immediately.
func (p Poller) Start(ctx context.Context) {
	go p.Run(ctx)
}

// Run polls until ctx is cancelled.
func (p Poller) Run(ctx context.Context) {
	interval := p.Interval
	if interval <= 0 {
		interval = defaultPollInterval
	}
	retry := p.Retry
	if retry <= 0 {
		retry = retryInterval
	}
	logger := p.Logger
	if logger == nil {
		logger = slog.Default()
	}

	failures := 0
	for {
		wait := interval
		if err := p.Refresh(ctx); err != nil {
			if ctx.Err() != nil {
				return
			}
			failures++
			wait = min(calculateBackoff(failures-1, retry), interval)
			logger.Warn("poll failed",
				"error", err,
				"consecutive_failures", failures,
				"retry_in", wait,
			)
		} else {
			failures = 0
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}

func calculateBackoff(failures int, base time.Duration) time.Duration {
	if failures <= 0 {
		return base
	}
	d := base
	for range failures {
		d *= 2
		if d >= maxBackoff {
			return maxBackoff
		}
	}
	return d
}

func secondsToDuration(s int) time.Duration {
	return time.Duration(s) * time.Second
}
