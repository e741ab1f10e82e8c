// Package detach runs fire-and-forget side effects as explicit detached
// tasks. Delivery is at most once: a failed task is logged and dropped,
// never retried, and never surfaces an error to the caller.
package detach

import (
	"context"
	"fmt"
	"sync"
	"time"
)

const defaultTaskTimeout = 10 * time.Second

// Runner owns detached task goroutines and drains them on close.
type Runner struct {
	logf    func(format string, args ...any)
	timeout time.Duration

	mu     sync.Mutex
	wg     sync.WaitGroup
	closed bool
}

// NewRunner creates a detached task runner. logf may be nil to drop failure logs.
func NewRunner(logf func(format string, args ...any)) *Runner {
	return &Runner{
		logf:    logf,
		timeout: defaultTaskTimeout,
	}
}

// Go runs task on its own goroutine with a detached context. The task context
// is derived from Background so request cancellation does not abort it.
func (r *Runner) Go(name string, task func(ctx context.Context) error) {
	if r == nil || task == nil {
		return
	}
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		r.log("detached task %s dropped: runner is closed", name)
		return
	}
	r.wg.Add(1)
	r.mu.Unlock()

	go func() {
		defer r.wg.Done()
		defer func() {
			if recovered := recover(); recovered != nil {
				r.log("detached task %s panicked: %v", name, recovered)
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
		defer cancel()
		if err := task(ctx); err != nil {
			r.log("detached task %s failed: %v", name, err)
		}
	}()
}

// Close stops accepting tasks and waits for in-flight tasks to finish.
func (r *Runner) Close() {
	if r == nil {
		return
	}
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()
	r.wg.Wait()
}

func (r *Runner) log(format string, args ...any) {
	if r == nil || r.logf == nil {
		return
	}
	r.logf("%s", fmt.Sprintf(format, args...))
}
