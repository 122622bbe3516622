// Package background runs fire-and-forget tasks decoupled from requests.
package background

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

const (
	defaultBufferSize  = 64
	defaultTaskTimeout = 2 * time.Minute
)

// Task is one unit of best-effort work. Failures are logged, never surfaced.
type Task struct {
	Name string
	Run  func(ctx context.Context) error
}

// Runner executes submitted tasks on a single worker goroutine. Tasks get a
// fresh context detached from the request that queued them.
type Runner struct {
	queue   chan Task
	timeout time.Duration
	wg      sync.WaitGroup

	mu     sync.Mutex
	closed bool
}

// NewRunner starts a Runner.
func NewRunner() *Runner {
	r := &Runner{
		queue:   make(chan Task, defaultBufferSize),
		timeout: defaultTaskTimeout,
	}
	r.wg.Add(1)
	go r.loop()
	return r
}

// Submit queues a task without blocking. When the queue is full the task is
// dropped; everything here is best-effort by contract.
func (r *Runner) Submit(task Task) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}

	select {
	case r.queue <- task:
	default:
		slog.Warn("background queue is full, dropping task", "task", task.Name)
	}
}

// Shutdown stops accepting tasks and waits for in-flight work to finish.
func (r *Runner) Shutdown() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	close(r.queue)
	r.mu.Unlock()

	r.wg.Wait()
}

func (r *Runner) loop() {
	defer r.wg.Done()
	for task := range r.queue {
		r.run(task)
	}
}

func (r *Runner) run(task Task) {
	defer func() {
		if rec := recover(); rec != nil {
			slog.Error("background task panicked", "task", task.Name, "panic", rec)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	if err := task.Run(ctx); err != nil {
		slog.Debug("background task failed", "task", task.Name, "error", err)
	}
}
