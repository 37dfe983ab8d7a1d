package session

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/DukeRupert/rcadmin/internal/metrics"
	"github.com/DukeRupert/rcadmin/internal/worker"
)

// SweepTask purges expired records from store on every run.
func SweepTask(store Store, every time.Duration, logger *slog.Logger) worker.Task {
	return worker.TaskFunc{
		TaskName: "session_sweep",
		Every:    every,
		Fn: func(ctx context.Context) error {
			n, err := store.DeleteExpired(ctx, time.Now())
			if err != nil {
				return fmt.Errorf("delete expired sessions: %w", err)
			}
			if n > 0 {
				logger.Debug("Expired sessions purged", "count", n)
			}
			return nil
		},
	}
}

// GaugeTask refreshes the active session gauge from store.Count.
func GaugeTask(store Store, every time.Duration) worker.Task {
	return worker.TaskFunc{
		TaskName: "session_gauge",
		Every:    every,
		Fn: func(ctx context.Context) error {
			n, err := store.Count(ctx, time.Now())
			if err != nil {
				return fmt.Errorf("count sessions: %w", err)
			}
			metrics.SessionsActive.Set(float64(n))
			return nil
		},
	}
}
