package worker

import (
	"context"
	"errors"
	"time"
)

// Task is a unit of periodic background work.
type Task interface {
	// Name identifies the task in logs and metrics. It must be unique
	// within a Worker.
	Name() string

	// Interval is the delay between runs.
	Interval() time.Duration

	// Run performs one pass. Returning a PermanentError unschedules the task.
	Run(ctx context.Context) error
}

// TaskFunc adapts a function to the Task interface.
type TaskFunc struct {
	TaskName string
	Every    time.Duration
	Fn       func(ctx context.Context) error
}

func (t TaskFunc) Name() string { return t.TaskName }

func (t TaskFunc) Interval() time.Duration { return t.Every }

func (t TaskFunc) Run(ctx context.Context) error { return t.Fn(ctx) }

// PermanentError wraps an error to indicate the task should not run again.
type PermanentError struct {
	Err error
}

// Error implements the error interface.
func (e *PermanentError) Error() string {
	return e.Err.Error()
}

// Unwrap allows errors.Is and errors.As to work with PermanentError.
func (e *PermanentError) Unwrap() error {
	return e.Err
}

// NewPermanentError creates a new PermanentError that wraps the given error.
func NewPermanentError(err error) error {
	return &PermanentError{Err: err}
}

// IsPermanent reports whether err (or any error it wraps) is a PermanentError.
func IsPermanent(err error) bool {
	var permErr *PermanentError
	return errors.As(err, &permErr)
}
