package cache

import (
	"context"
	"sync/atomic"
)

// Future is the handle returned by an async operation:
// a context.Context-aware wait plus best-effort cancellation. Cancelling a
// Future never undoes a storage mutation that already ran — it only stops
// Wait from returning the completed result.
type Future[V any] struct {
	done      chan struct{}
	value     V
	err       error
	cancelled atomic.Bool
}

func newFuture[V any]() *Future[V] {
	return &Future[V]{done: make(chan struct{})}
}

func (f *Future[V]) complete(v V, err error) {
	f.value = v
	f.err = err
	close(f.done)
}

// NewFuture constructs a Future any caller can Complete later. Exported
// for other packages (e.g. loader) that schedule their own asynchronous
// work but want the same Wait/Cancel handle shape as the cache's own
// *Async methods.
func NewFuture[V any]() *Future[V] { return newFuture[V]() }

// Complete resolves the Future with v/err, unblocking every Wait call.
// Must be called exactly once.
func (f *Future[V]) Complete(v V, err error) { f.complete(v, err) }

// Wait blocks until the scheduled operation completes or ctx is done.
// Cancel does not unblock it; once the operation completes, a cancelled
// Future reports ErrCancelled.
func (f *Future[V]) Wait(ctx context.Context) (V, error) {
	select {
	case <-f.done:
		if f.cancelled.Load() {
			var zero V
			return zero, ErrCancelled
		}
		return f.value, f.err
	case <-ctx.Done():
		var zero V
		return zero, ctx.Err()
	}
}

// Cancel marks the Future cancelled. If the underlying operation has
// already completed, Cancel has no effect on the stored result but Wait
// still reports ErrCancelled, matching the "does not retroactively undo
// storage mutations" rule.
func (f *Future[V]) Cancel() {
	f.cancelled.Store(true)
}

// removeResult bundles Remove's two return values for RemoveAsync.
type removeResult[V any] struct {
	Value   V
	Existed bool
}

// startWorkerPool launches the fixed-size pool that backs every *Async
// method, sized from ConcurrencyLevel the same way shard count is.
func (c *instance[K, V]) startWorkerPool() {
	c.jobs = make(chan func(), c.shardCnt*4)
	for i := 0; i < c.shardCnt; i++ {
		c.wg.Add(1)
		go func() {
			defer c.wg.Done()
			for job := range c.jobs {
				job()
			}
		}()
	}
}

func (c *instance[K, V]) submit(fn func()) bool {
	if c.closed.Load() {
		return false
	}
	c.jobs <- fn
	return true
}

// GetAsync schedules a Get on the shared worker pool.
func (c *instance[K, V]) GetAsync(ctx context.Context, key K) *Future[V] {
	fut := newFuture[V]()
	if !c.submit(func() {
		v, _, err := c.Get(ctx, key)
		fut.complete(v, err)
	}) {
		var zero V
		fut.complete(zero, ErrClosedCache)
	}
	return fut
}

// PutAsync schedules a Put on the shared worker pool.
func (c *instance[K, V]) PutAsync(ctx context.Context, key K, value V) *Future[struct{}] {
	fut := newFuture[struct{}]()
	if !c.submit(func() {
		err := c.Put(ctx, key, value)
		fut.complete(struct{}{}, err)
	}) {
		fut.complete(struct{}{}, ErrClosedCache)
	}
	return fut
}

// RemoveAsync schedules a Remove on the shared worker pool.
func (c *instance[K, V]) RemoveAsync(ctx context.Context, key K) *Future[removeResult[V]] {
	fut := newFuture[removeResult[V]]()
	if !c.submit(func() {
		v, existed, err := c.Remove(ctx, key)
		fut.complete(removeResult[V]{Value: v, Existed: existed}, err)
	}) {
		fut.complete(removeResult[V]{}, ErrClosedCache)
	}
	return fut
}

// stopWorkerPool closes the job queue and relies on the caller to have
// already stopped accepting new submissions (closed.Store(true)); queued
// jobs still run to completion before the pool's goroutines exit.
func (c *instance[K, V]) stopWorkerPool() {
	close(c.jobs)
}
