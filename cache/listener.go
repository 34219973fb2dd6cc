package cache

import (
	"sync"
	"sync/atomic"

	"github.com/petrunin/cachefront/internal/logging"
	"go.uber.org/zap"
)

// listenerList is a copy-on-write list of Listener[K,V]: reads (dispatch)
// never block writers (Add/Clear) and vice versa — dispatch always sees
// either the whole previous list or the whole next one, never a partial
// mutation.
type listenerList[K comparable, V any] struct {
	mu  sync.Mutex // guards writes only; reads go through the atomic.Pointer
	ptr atomic.Pointer[[]Listener[K, V]]
	log *zap.Logger
}

func newListenerList[K comparable, V any](log *zap.Logger) *listenerList[K, V] {
	l := &listenerList[K, V]{log: log}
	empty := make([]Listener[K, V], 0)
	l.ptr.Store(&empty)
	return l
}

// Add appends listener, copying the underlying slice.
func (l *listenerList[K, V]) Add(listener Listener[K, V]) {
	l.mu.Lock()
	defer l.mu.Unlock()
	cur := *l.ptr.Load()
	next := make([]Listener[K, V], len(cur)+1)
	copy(next, cur)
	next[len(cur)] = listener
	l.ptr.Store(&next)
}

// Clear removes every listener.
func (l *listenerList[K, V]) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	empty := make([]Listener[K, V], 0)
	l.ptr.Store(&empty)
}

// Dispatch fires ev on every currently-registered listener. It must be
// called outside the shard's critical section, to avoid deadlocks with
// user code that itself touches the cache. Each listener call is
// individually panic-safe: one broken listener does not stop delivery to
// the others, and none can fail the triggering cache operation.
func (l *listenerList[K, V]) Dispatch(ev Event[K, V]) {
	listeners := *l.ptr.Load()
	for _, fn := range listeners {
		fn := fn
		logging.SafeCall(l.log, "cache.listener."+ev.Type.String(), func() {
			fn(ev)
		})
	}
}
