package scheduler

import (
	"context"
	"time"

	"callerid_backend/platform/logger"
)

const (
	defaultHistoryCleanupInterval = time.Hour
	defaultHistoryRetention       = 30 * 24 * time.Hour
)

// HistoryPruner deletes lookup history entries not refreshed since before.
type HistoryPruner interface {
	DeleteHistoryBefore(ctx context.Context, before time.Time) (int64, error)
}

// HistoryCleanup periodically removes stale lookup history.
type HistoryCleanup struct {
	pruner    HistoryPruner
	log       *logger.Logger
	interval  time.Duration
	retention time.Duration
}

func NewHistoryCleanup(pruner HistoryPruner, log *logger.Logger, interval, retention time.Duration) *HistoryCleanup {
	if interval <= 0 {
		interval = defaultHistoryCleanupInterval
	}
	if retention <= 0 {
		retention = defaultHistoryRetention
	}

	return &HistoryCleanup{
		pruner:    pruner,
		log:       log,
		interval:  interval,
		retention: retention,
	}
}

func (c *HistoryCleanup) Run(ctx context.Context) {
	if c == nil || c.pruner == nil {
		return
	}

	c.cleanup(ctx)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.cleanup(ctx)
		}
	}
}

func (c *HistoryCleanup) cleanup(ctx context.Context) {
	deleted, err := c.pruner.DeleteHistoryBefore(ctx, time.Now().Add(-c.retention))
	if err != nil {
		c.log.Warn("lookup history cleanup failed", "error", err)
		return
	}

	if deleted > 0 {
		c.log.Info("lookup history cleanup deleted stale entries", "deleted", deleted)
	}
}
