package background

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestRunnerExecutesTasks(t *testing.T) {
	r := NewRunner()

	done := make(chan struct{})
	r.Submit(Task{Name: "ping", Run: func(context.Context) error {
		close(done)
		return nil
	}})

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("task never ran")
	}
	r.Shutdown()
}

func TestRunnerSwallowsErrors(t *testing.T) {
	r := NewRunner()

	var ran atomic.Int32
	r.Submit(Task{Name: "fails", Run: func(context.Context) error {
		ran.Add(1)
		return errors.New("boom")
	}})
	r.Submit(Task{Name: "after", Run: func(context.Context) error {
		ran.Add(1)
		return nil
	}})

	r.Shutdown()
	if ran.Load() != 2 {
		t.Fatalf("a failing task must not stop the worker, ran %d", ran.Load())
	}
}

func TestRunnerRecoversFromPanic(t *testing.T) {
	r := NewRunner()

	var ran atomic.Int32
	r.Submit(Task{Name: "panics", Run: func(context.Context) error {
		panic("unexpected")
	}})
	r.Submit(Task{Name: "after", Run: func(context.Context) error {
		ran.Add(1)
		return nil
	}})

	r.Shutdown()
	if ran.Load() != 1 {
		t.Fatalf("worker should survive a panicking task")
	}
}

func TestRunnerShutdownWaits(t *testing.T) {
	r := NewRunner()

	var finished atomic.Bool
	r.Submit(Task{Name: "slow", Run: func(context.Context) error {
		time.Sleep(50 * time.Millisecond)
		finished.Store(true)
		return nil
	}})

	r.Shutdown()
	if !finished.Load() {
		t.Fatalf("shutdown must wait for in-flight tasks")
	}
}

func TestRunnerIgnoresSubmitAfterShutdown(t *testing.T) {
	r := NewRunner()
	r.Shutdown()

	// Must not panic on a closed queue.
	r.Submit(Task{Name: "late", Run: func(context.Context) error { return nil }})
}
