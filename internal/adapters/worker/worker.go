// Package worker bounds fan-out of per-item work within a single request.
package worker

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/okian/nbapicks/pkg/logger"
	"github.com/okian/nbapicks/pkg/metrics"
)

// DefaultSize is the number of concurrent tasks when none is configured.
const DefaultSize = 4

// Pool runs indexed tasks on a fixed number of goroutines. Each goroutine
// claims the next index from a shared counter until the work is exhausted.
// A Pool holds no goroutines between calls and may be shared.
type Pool struct {
	size   int
	name   string
	logger logger.Logger
}

// NewPool creates a pool running at most size tasks at once.
func NewPool(size int, opts ...Option) *Pool {
	if size < 1 {
		size = DefaultSize
	}
	p := &Pool{size: size, name: "pool", logger: logger.Nop()}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = p.logger.Named(p.name)
	return p
}

// Size returns the concurrency bound.
func (p *Pool) Size() int { return p.size }

// Run calls fn for every index in [0, n). Indices not yet claimed when ctx is
// canceled are skipped. A panicking task is logged and does not stop the others.
func (p *Pool) Run(ctx context.Context, n int, fn func(ctx context.Context, i int)) {
	if n <= 0 {
		return
	}
	workers := min(p.size, n)

	var next atomic.Int64
	var wg sync.WaitGroup
	wg.Add(workers)
	for range workers {
		go func() {
			defer wg.Done()
			for {
				if ctx.Err() != nil {
					return
				}
				i := int(next.Add(1) - 1)
				if i >= n {
					return
				}
				p.runOne(ctx, i, fn)
			}
		}()
	}
	wg.Wait()
}

func (p *Pool) runOne(ctx context.Context, i int, fn func(ctx context.Context, i int)) {
	metrics.AddInFlight(1)
	defer func() {
		metrics.AddInFlight(-1)
		if r := recover(); r != nil {
			p.logger.Error(ctx, "task panicked", logger.Int("index", i), logger.Any("panic", r))
		}
	}()
	fn(ctx, i)
}

// Result is the outcome of one mapped item.
type Result[R any] struct {
	Value R
	Err   error
}

// Map applies fn to every item through p and returns results by input
// position. Items skipped because ctx ended carry ctx.Err(); a panic is
// reported as an error for that item.
func Map[T, R any](ctx context.Context, p *Pool, items []T, fn func(ctx context.Context, item T) (R, error)) []Result[R] {
	out := make([]Result[R], len(items))
	done := make([]bool, len(items))
	p.Run(ctx, len(items), func(ctx context.Context, i int) {
		defer func() {
			if r := recover(); r != nil {
				out[i].Err = fmt.Errorf("task %d panicked: %v", i, r)
			}
			done[i] = true
		}()
		out[i].Value, out[i].Err = fn(ctx, items[i])
	})
	for i := range out {
		if !done[i] && out[i].Err == nil {
			out[i].Err = ctx.Err()
		}
	}
	return out
}
