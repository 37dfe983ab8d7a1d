package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/DukeRupert/rcadmin/internal/metrics"
)

// Worker runs registered tasks on their own schedules, one goroutine per task.
type Worker struct {
	tasks  []Task
	names  map[string]struct{}
	config Config
	logger *slog.Logger

	// Synchronization
	wg      sync.WaitGroup
	stopCh  chan struct{}
	stopped sync.Once
}

// New creates a new Worker with the given configuration.
// The worker must be started with Start() and stopped with Stop().
func New(config Config, logger *slog.Logger) (*Worker, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Worker{
		names:  make(map[string]struct{}),
		config: config,
		logger: logger,
		stopCh: make(chan struct{}),
	}, nil
}

// Register adds a task to the worker. Call this before Start().
func (w *Worker) Register(task Task) error {
	name := task.Name()
	if _, exists := w.names[name]; exists {
		return fmt.Errorf("task %q already registered", name)
	}
	if task.Interval() < w.config.MinInterval {
		return fmt.Errorf("task %q interval %v is below minimum %v", name, task.Interval(), w.config.MinInterval)
	}
	w.names[name] = struct{}{}
	w.tasks = append(w.tasks, task)
	w.logger.Debug("Registered task", "task", name, "interval", task.Interval())
	return nil
}

// Start launches every registered task. Each task runs once on its first
// tick, not immediately.
func (w *Worker) Start(ctx context.Context) {
	for _, task := range w.tasks {
		w.wg.Add(1)
		go w.runTask(ctx, task)
	}

	w.logger.Info("Worker started", "tasks", len(w.tasks))
}

// Stop signals all tasks to stop and waits up to ShutdownTimeout for
// in-flight runs to finish. It is safe to call more than once.
func (w *Worker) Stop() {
	w.stopped.Do(func() {
		w.logger.Info("Stopping worker...")
		close(w.stopCh)
	})

	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		w.logger.Info("Worker stopped gracefully")
	case <-time.After(w.config.ShutdownTimeout):
		w.logger.Warn("Worker shutdown timeout exceeded, some tasks may still be running")
	}
}

// runTask is the scheduling loop for a single task.
func (w *Worker) runTask(ctx context.Context, task Task) {
	defer w.wg.Done()

	logger := w.logger.With("task", task.Name())
	ticker := time.NewTicker(task.Interval())
	defer ticker.Stop()

	for {
		select {
		case <-w.stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := w.execute(ctx, task); err != nil {
				if IsPermanent(err) {
					logger.Error("Task failed permanently, unscheduling", "error", err)
					return
				}
				logger.Error("Task failed", "error", err)
			}
		}
	}
}

// execute runs one pass of task under the configured timeout.
func (w *Worker) execute(ctx context.Context, task Task) error {
	runCtx, cancel := context.WithTimeout(ctx, w.config.TaskTimeout)
	defer cancel()

	start := time.Now()
	if err := task.Run(runCtx); err != nil {
		metrics.TaskFailed(task.Name())
		return err
	}
	metrics.TaskCompleted(task.Name(), time.Since(start))
	return nil
}
