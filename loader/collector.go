package loader

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/petrunin/cachefront/cache"
	"golang.org/x/sync/errgroup"
)

// errStopCollecting is an internal errgroup signal used to cancel the
// group's context once MaxItems results have landed; it is never surfaced
// to callers.
var errStopCollecting = errors.New("loader: collector reached max items")

// collectorOptions configures the reactive collector backing the batch
// variants: timeout bounds total wall time, maxItems bounds how many
// results are awaited before the remaining work is cancelled, and
// collectErrors switches between fail-fast and accumulate-all-errors.
type collectorOptions struct {
	Timeout       time.Duration
	MaxItems      int
	CollectErrors bool
}

// runCollected runs fn(i) for i in [0, n) under the given options. Each
// call's cache mutation is independently atomic, so cancelling mid-flight
// never leaves any single item half-applied; it only stops the collector
// from waiting on the rest.
//
// With CollectErrors=false the first error cancels every remaining call
// (errgroup's native first-error-wins behavior) and runCollected returns
// that error. With CollectErrors=true every call runs to completion (or
// until MaxItems/Timeout trims the group) and all per-item errors are
// returned together. In both modes, a deadline that passed before the
// calls finished adds cache.ErrTimeout to the result.
func runCollected(ctx context.Context, n int, opts collectorOptions, fn func(ctx context.Context, i int) error) []error {
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	limit := n
	if opts.MaxItems > 0 && opts.MaxItems < limit {
		limit = opts.MaxItems
	}

	if !opts.CollectErrors {
		g, gctx := errgroup.WithContext(ctx)
		for i := 0; i < limit; i++ {
			i := i
			g.Go(func() error { return fn(gctx, i) })
		}
		if err := g.Wait(); err != nil {
			return []error{err}
		}
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return []error{cache.ErrTimeout}
		}
		return nil
	}

	var (
		mu   sync.Mutex
		errs []error
	)
	g, gctx := errgroup.WithContext(ctx)
	var landed int
	var landedMu sync.Mutex
	for i := 0; i < limit; i++ {
		i := i
		g.Go(func() error {
			err := fn(gctx, i)
			if err != nil {
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			}
			landedMu.Lock()
			landed++
			done := opts.MaxItems > 0 && landed >= opts.MaxItems
			landedMu.Unlock()
			if done {
				return errStopCollecting
			}
			return nil
		})
	}
	// CollectErrors=true must not itself abort the group on a per-item
	// error (errStopCollecting is the only internal signal that does);
	// Wait's error here is either nil or our own sentinel, never a
	// caller error, so it is intentionally discarded.
	_ = g.Wait()
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		errs = append(errs, cache.ErrTimeout)
	}
	return errs
}
