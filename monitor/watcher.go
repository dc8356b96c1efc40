package monitor

import (
	"context"
	"log/slog"
	"time"

	"github.com/accellera-official/uvm-core/catchers"
)

// Watcher periodically samples the catcher accounting and logs a line
// whenever the counts move. It is the lightweight alternative to scraping.
type Watcher struct {
	stats    StatsSource
	interval time.Duration
	logger   *slog.Logger
	onChange func(prev, curr catchers.StatsSnapshot)
}

// WatcherOption configures the watcher.
type WatcherOption func(*Watcher)

// WithWatcherLogger sets the logger.
func WithWatcherLogger(logger *slog.Logger) WatcherOption {
	return func(w *Watcher) {
		w.logger = logger
	}
}

// WithInterval sets the sampling interval.
func WithInterval(interval time.Duration) WatcherOption {
	return func(w *Watcher) {
		w.interval = interval
	}
}

// WithOnChange sets a callback invoked with the previous and current
// snapshot whenever the accounting moves.
func WithOnChange(fn func(prev, curr catchers.StatsSnapshot)) WatcherOption {
	return func(w *Watcher) {
		w.onChange = fn
	}
}

// NewWatcher creates a watcher sampling every 10 seconds by default.
func NewWatcher(stats StatsSource, opts ...WatcherOption) *Watcher {
	w := &Watcher{
		stats:    stats,
		interval: 10 * time.Second,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.logger == nil {
		w.logger = slog.Default()
	}
	return w
}

// Watch samples until the context is done.
func (w *Watcher) Watch(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	prev := w.stats.Snapshot()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			curr := w.stats.Snapshot()
			if curr == prev {
				continue
			}
			w.logger.Info("catcher accounting changed",
				"caughtFatal", curr.CaughtFatal,
				"caughtError", curr.CaughtError,
				"caughtWarning", curr.CaughtWarning,
				"demotedFatal", curr.DemotedFatal,
				"demotedError", curr.DemotedError,
				"demotedWarning", curr.DemotedWarning)
			if w.onChange != nil {
				w.onChange(prev, curr)
			}
			prev = curr
		}
	}
}
