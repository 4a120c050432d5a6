// Package workerpool runs blocking calls on a bounded set of goroutines so
// callers can wait on them the same way they wait on any other task.
package workerpool

import (
	"context"
	"log/slog"

	"golang.org/x/sync/semaphore"
)

const DefaultSize = 4

type Pool struct {
	sem *semaphore.Weighted
}

func New(size int) *Pool {
	if size <= 0 {
		size = DefaultSize
	}
	return &Pool{sem: semaphore.NewWeighted(int64(size))}
}

// Submit hands fn to the pool and returns a channel that yields exactly one
// value. If ctx is done before a slot frees up, fn never runs and the
// channel yields fallback. A panic in fn is logged and also yields fallback.
func Submit[T any](ctx context.Context, p *Pool, fallback T, fn func(context.Context) T) <-chan T {
	out := make(chan T, 1)
	go func() {
		if err := p.sem.Acquire(ctx, 1); err != nil {
			out <- fallback
			return
		}
		defer p.sem.Release(1)
		defer func() {
			if r := recover(); r != nil {
				slog.Error("pool task panicked", "component", "workerpool", "panic", r)
				out <- fallback
			}
		}()
		out <- fn(ctx)
	}()
	return out
}

// Do is Submit followed by a wait.
func Do[T any](ctx context.Context, p *Pool, fallback T, fn func(context.Context) T) T {
	return <-Submit(ctx, p, fallback, fn)
}
