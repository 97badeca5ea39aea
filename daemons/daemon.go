package daemons

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/deskmirror/deskmirror/syncer"
	"github.com/pkg/errors"
)

const defaultInterval = 30 * time.Minute

// Runner drives the periodic full sync. It reuses the orchestrator's run
// guard, so an externally triggered sync and the scheduler never interleave.
type Runner struct {
	syncer *syncer.Syncer

	interval time.Duration
}

func NewRunner(s *syncer.Syncer) *Runner {
	interval := defaultInterval
	if v := os.Getenv("SYNC_INTERVAL"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil && parsed > 0 {
			interval = parsed
		} else {
			slog.Warn("invalid SYNC_INTERVAL, using default", "value", v, "default", defaultInterval)
		}
	}
	return &Runner{syncer: s, interval: interval}
}

// Start launches the background loop. If the cache is empty a sync runs
// immediately, otherwise the first run waits one interval.
func (r *Runner) Start(ctx context.Context) {
	go func() {
		empty, err := r.syncer.CacheEmpty()
		if err != nil {
			slog.Error("could not check cache state, skipping startup sync", "err", err)
		} else if empty {
			slog.Info("cache is empty, running startup sync")
			r.runOnce(ctx)
		}

		ticker := time.NewTicker(r.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				slog.Info("sync daemon stopping", "err", ctx.Err())
				return
			case <-ticker.C:
				r.runOnce(ctx)
			}
		}
	}()
}

func (r *Runner) runOnce(ctx context.Context) {
	start := time.Now()
	result, err := r.syncer.FullSync(ctx)
	if err != nil {
		if errors.Is(err, syncer.ErrSyncInProgress) {
			slog.Info("skipping scheduled sync, another run is in progress")
			return
		}
		slog.Error("scheduled sync failed", "err", err, "duration", time.Since(start))
		return
	}
	slog.Info("scheduled sync finished", "runId", result.RunID, "duration", time.Since(start))
}
