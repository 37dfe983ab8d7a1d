package worker

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testConfig() Config {
	return Config{
		TaskTimeout:     time.Second,
		ShutdownTimeout: time.Second,
		MinInterval:     time.Millisecond,
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{
			name:    "valid default config",
			config:  DefaultConfig(),
			wantErr: false,
		},
		{
			name:    "task timeout too short",
			config:  Config{TaskTimeout: time.Millisecond, ShutdownTimeout: time.Second, MinInterval: time.Second},
			wantErr: true,
		},
		{
			name:    "shutdown timeout missing",
			config:  Config{TaskTimeout: time.Second, MinInterval: time.Second},
			wantErr: true,
		},
		{
			name:    "min interval missing",
			config:  Config{TaskTimeout: time.Second, ShutdownTimeout: time.Second},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Config.Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestIsPermanent(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{
			name: "permanent error",
			err:  NewPermanentError(context.Canceled),
			want: true,
		},
		{
			name: "wrapped permanent error",
			err:  errors.Join(errors.New("outer"), NewPermanentError(context.Canceled)),
			want: true,
		},
		{
			name: "regular error",
			err:  context.Canceled,
			want: false,
		},
		{
			name: "nil error",
			err:  nil,
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsPermanent(tt.err); got != tt.want {
				t.Errorf("IsPermanent() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRegister_Rejects(t *testing.T) {
	w, err := New(Config{TaskTimeout: time.Second, ShutdownTimeout: time.Second, MinInterval: time.Second}, testLogger())
	if err != nil {
		t.Fatal(err)
	}
	noop := func(context.Context) error { return nil }

	if err := w.Register(TaskFunc{TaskName: "a", Every: time.Minute, Fn: noop}); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if err := w.Register(TaskFunc{TaskName: "a", Every: time.Minute, Fn: noop}); err == nil {
		t.Error("expected duplicate name to be rejected")
	}
	if err := w.Register(TaskFunc{TaskName: "b", Every: time.Millisecond, Fn: noop}); err == nil {
		t.Error("expected short interval to be rejected")
	}
}

func TestWorker_RunsTasksUntilStopped(t *testing.T) {
	w, err := New(testConfig(), testLogger())
	if err != nil {
		t.Fatal(err)
	}

	var runs atomic.Int32
	if err := w.Register(TaskFunc{TaskName: "tick", Every: 5 * time.Millisecond, Fn: func(context.Context) error {
		runs.Add(1)
		return nil
	}}); err != nil {
		t.Fatal(err)
	}

	w.Start(context.Background())
	deadline := time.Now().Add(2 * time.Second)
	for runs.Load() < 3 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	w.Stop()
	w.Stop()

	if runs.Load() < 3 {
		t.Fatalf("task ran %d times, want at least 3", runs.Load())
	}
	after := runs.Load()
	time.Sleep(30 * time.Millisecond)
	if runs.Load() != after {
		t.Error("task kept running after Stop")
	}
}

func TestWorker_PermanentErrorUnschedules(t *testing.T) {
	w, err := New(testConfig(), testLogger())
	if err != nil {
		t.Fatal(err)
	}

	var runs atomic.Int32
	if err := w.Register(TaskFunc{TaskName: "once", Every: 5 * time.Millisecond, Fn: func(context.Context) error {
		runs.Add(1)
		return NewPermanentError(errors.New("store gone"))
	}}); err != nil {
		t.Fatal(err)
	}

	w.Start(context.Background())
	time.Sleep(60 * time.Millisecond)
	w.Stop()

	if got := runs.Load(); got != 1 {
		t.Errorf("task ran %d times, want 1", got)
	}
}

func TestWorker_TaskTimeout(t *testing.T) {
	cfg := testConfig()
	cfg.TaskTimeout = 20 * time.Millisecond
	w, err := New(cfg, testLogger())
	if err != nil {
		t.Fatal(err)
	}

	got := make(chan error, 1)
	if err := w.Register(TaskFunc{TaskName: "slow", Every: 5 * time.Millisecond, Fn: func(ctx context.Context) error {
		<-ctx.Done()
		select {
		case got <- ctx.Err():
		default:
		}
		return ctx.Err()
	}}); err != nil {
		t.Fatal(err)
	}

	w.Start(context.Background())
	defer w.Stop()

	select {
	case err := <-got:
		if !errors.Is(err, context.DeadlineExceeded) {
			t.Errorf("task ctx error = %v, want deadline exceeded", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("task never observed its timeout")
	}
}
