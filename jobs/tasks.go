package jobs

import (
	"context"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/vitalcare/vitalcare/internal/menu"
	"github.com/vitalcare/vitalcare/internal/shared"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskAuthzCacheSweep drops expired permission cache entries.
	TaskAuthzCacheSweep = "authz:cache_sweep"
	// TaskNavHistoryTrim bounds per-user navigation history lists.
	TaskNavHistoryTrim = "nav:history_trim"
)

// NewAuthzCacheSweepTask constructs the cache sweep task.
func NewAuthzCacheSweepTask() *asynq.Task {
	return asynq.NewTask(TaskAuthzCacheSweep, nil)
}

// NewNavHistoryTrimTask constructs the history trim task.
func NewNavHistoryTrimTask() *asynq.Task {
	return asynq.NewTask(TaskNavHistoryTrim, nil)
}

// AuthzCacheSweepHandler processes TaskAuthzCacheSweep tasks.
func AuthzCacheSweepHandler(cache *menu.PermissionCache, logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		removed, err := cache.Sweep(ctx)
		if err != nil {
			return err
		}
		if logger != nil {
			logger.Info("permission cache sweep", slog.Int("removed", removed))
		}
		return nil
	}
}

// NavHistoryTrimHandler processes TaskNavHistoryTrim tasks.
func NavHistoryTrimHandler(history *shared.NavigationHistory, logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		trimmed, err := history.Trim(ctx)
		if err != nil {
			return err
		}
		if logger != nil {
			logger.Info("navigation history trim", slog.Int("trimmed", trimmed))
		}
		return nil
	}
}
