// Package scan implements the bounded parallel filesystem worker pool used
// to check product existence and read value files.
package scan

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

// DefaultSize is the default worker count, tuned to be saturating on
// network filesystems without overwhelming them.
const DefaultSize = 8

// Pool is a bounded worker pool with cooperative cancellation. Workers
// observe the cancellation flag between files; an in-flight file read is
// allowed to finish.
type Pool struct {
	Size      int
	cancelled atomic.Bool
}

// NewPool returns a Pool with the given worker count, or DefaultSize if
// size <= 0.
func NewPool(size int) *Pool {
	if size <= 0 {
		size = DefaultSize
	}
	return &Pool{Size: size}
}

// Cancel sets the cooperative cancellation flag; already-dispatched work
// items finish, but no new ones are started.
func (p *Pool) Cancel() {
	p.cancelled.Store(true)
}

// Cancelled reports whether Cancel has been called.
func (p *Pool) Cancelled() bool {
	return p.cancelled.Load()
}

// run executes fn(item) for every item in items, bounded to p.Size
// concurrent goroutines, stopping early (but letting in-flight work
// finish) on cancellation or the first error.
func (p *Pool) run(ctx context.Context, n int, fn func(ctx context.Context, i int) error) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(p.Size)
	for i := 0; i < n; i++ {
		i := i
		if p.Cancelled() || ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if p.Cancelled() {
				return nil
			}
			return fn(ctx, i)
		})
	}
	return g.Wait()
}
