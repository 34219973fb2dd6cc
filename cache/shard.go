package cache

import (
	"reflect"
	"sync"
	"time"

	"github.com/petrunin/cachefront/entry"
	"github.com/petrunin/cachefront/eviction"
)

// removal describes a key that left a shard, for the owning instance to
// turn into stats updates and a Listener Event.
type removal[K comparable, V any] struct {
	Key   K
	Value V
	Cause RemovalCause
}

// shard is one lock-striped partition of an instance's storage, mirroring
// a per-shard map+lock split, generalized to an arbitrary
// eviction.Strategy instead of a hardwired intrusive LRU list (see package
// eviction's doc comment).
type shard[K comparable, V any] struct {
	mu       sync.RWMutex
	m        map[K]*entry.Entry[V]
	capacity uint64
	policy   EvictionPolicy
	strategy eviction.Strategy[K]
}

func newShard[K comparable, V any](capacity uint64, policy EvictionPolicy, factory eviction.Factory[K]) *shard[K, V] {
	return &shard[K, V]{
		m:        make(map[K]*entry.Entry[V], capacity),
		capacity: capacity,
		policy:   policy,
		strategy: factory.New(),
	}
}

func isNilValue[V any](v V) bool {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func:
		return rv.IsNil()
	default:
		return false
	}
}

// Get implements the read path: lazy-expire, touch,
// notify the strategy, and report whether a lazily expired entry had to be
// removed so the caller can fire an EXPIRED removal event.
func (s *shard[K, V]) Get(k K, now time.Time) (value V, hit bool, expired *removal[K, V]) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.m[k]
	if !ok {
		var zero V
		return zero, false, nil
	}
	if e.IsExpired(now) {
		v := e.Value()
		delete(s.m, k)
		s.strategy.OnRemove(k)
		var zero V
		return zero, false, &removal[K, V]{Key: k, Value: v, Cause: CauseExpired}
	}
	e.Touch(now)
	s.strategy.OnAccess(k)
	return e.Value(), true, nil
}

// Peek reads without mutating recency/access-count bookkeeping; used by
// the instance's peek, GetWithLoader's re-check that must not look like
// a hit.
func (s *shard[K, V]) Peek(k K, now time.Time) (value V, ok bool, expired *removal[K, V]) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, found := s.m[k]
	if !found {
		var zero V
		return zero, false, nil
	}
	if e.IsExpired(now) {
		v := e.Value()
		delete(s.m, k)
		s.strategy.OnRemove(k)
		var zero V
		return zero, false, &removal[K, V]{Key: k, Value: v, Cause: CauseExpired}
	}
	return e.Value(), true, nil
}

// Add inserts only if k is absent. Returns inserted=false (no state
// change) if the key already exists.
func (s *shard[K, V]) Add(k K, v V, ttl, idleTTL time.Duration, now time.Time, allowNull bool) (inserted bool, evicted *removal[K, V], err error) {
	if !allowNull && isNilValue(v) {
		return false, nil, ErrInvalidValue
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.m[k]; exists {
		return false, nil, nil
	}

	evicted, err = s.makeRoomLocked()
	if err != nil {
		return false, nil, err
	}
	if evicted == nil && s.rejectedForCapacityLocked() {
		return false, nil, nil
	}

	s.m[k] = entry.New(v, now, ttl, idleTTL)
	s.strategy.OnPut(k)
	return true, evicted, nil
}

// Set inserts or updates k. An existing key is always overwritten
// regardless of capacity.
func (s *shard[K, V]) Set(k K, v V, ttl, idleTTL time.Duration, now time.Time, allowNull bool) (evicted *removal[K, V], wasUpdate bool, err error) {
	if !allowNull && isNilValue(v) {
		return nil, false, ErrInvalidValue
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if e, exists := s.m[k]; exists {
		e.SetValue(v)
		e.SetTTL(now, ttl)
		e.SetIdleTTL(idleTTL)
		s.strategy.OnPut(k)
		return nil, true, nil
	}

	evicted, err = s.makeRoomLocked()
	if err != nil {
		return nil, false, err
	}
	if evicted == nil && s.rejectedForCapacityLocked() {
		// NONE policy at capacity: silently keep the existing state.
		return nil, false, nil
	}

	s.m[k] = entry.New(v, now, ttl, idleTTL)
	s.strategy.OnPut(k)
	return evicted, false, nil
}

// PutIfAbsent returns the current value without mutation if k is already
// present (and not expired); otherwise it inserts v and reports nothing
// previous.
func (s *shard[K, V]) PutIfAbsent(k K, v V, ttl, idleTTL time.Duration, now time.Time, allowNull bool) (previous V, existed bool, evicted *removal[K, V], err error) {
	if !allowNull && isNilValue(v) {
		var zero V
		return zero, false, nil, ErrInvalidValue
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.m[k]; ok {
		if !e.IsExpired(now) {
			return e.Value(), true, nil, nil
		}
		// Expired: treat as absent, drop it first.
		expiredVal := e.Value()
		delete(s.m, k)
		s.strategy.OnRemove(k)
		evicted = &removal[K, V]{Key: k, Value: expiredVal, Cause: CauseExpired}
	}

	victim, err := s.makeRoomLocked()
	if err != nil {
		var zero V
		return zero, false, nil, err
	}
	if victim != nil {
		evicted = victim
	} else if s.rejectedForCapacityLocked() {
		var zero V
		return zero, false, evicted, nil
	}

	s.m[k] = entry.New(v, now, ttl, idleTTL)
	s.strategy.OnPut(k)
	var zero V
	return zero, false, evicted, nil
}

// Remove deletes k unconditionally and reports the removed value, if any.
func (s *shard[K, V]) Remove(k K) (value V, existed bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.m[k]
	if !ok {
		var zero V
		return zero, false
	}
	delete(s.m, k)
	s.strategy.OnRemove(k)
	return e.Value(), true
}

// ContainsKey reports presence without counting as a hit/miss or touching
// recency, but does still lazily expire.
func (s *shard[K, V]) ContainsKey(k K, now time.Time) (bool, *removal[K, V]) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.m[k]
	if !ok {
		return false, nil
	}
	if e.IsExpired(now) {
		v := e.Value()
		delete(s.m, k)
		s.strategy.OnRemove(k)
		return false, &removal[K, V]{Key: k, Value: v, Cause: CauseExpired}
	}
	return true, nil
}

// Len returns the number of resident (not-yet-lazily-expired) entries.
func (s *shard[K, V]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.m)
}

// AsMap returns a snapshot excluding expired entries, lazily expiring any
// encountered along the way.
func (s *shard[K, V]) AsMap(now time.Time) (map[K]V, []removal[K, V]) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[K]V, len(s.m))
	var expired []removal[K, V]
	for k, e := range s.m {
		if e.IsExpired(now) {
			expired = append(expired, removal[K, V]{Key: k, Value: e.Value(), Cause: CauseExpired})
			delete(s.m, k)
			s.strategy.OnRemove(k)
			continue
		}
		out[k] = e.Value()
	}
	return out, expired
}

// Clear empties the shard's storage and strategy state without emitting
// per-key removal events (a bulk silent reset, consistent with most cache
// libraries' Clear semantics).
func (s *shard[K, V]) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m = make(map[K]*entry.Entry[V])
	s.strategy.Clear()
}

// EvictAll removes every entry matching pred, with cause EXPLICIT.
func (s *shard[K, V]) EvictAll(pred func(K, V) bool) []removal[K, V] {
	s.mu.Lock()
	defer s.mu.Unlock()

	var removed []removal[K, V]
	for k, e := range s.m {
		if pred(k, e.Value()) {
			removed = append(removed, removal[K, V]{Key: k, Value: e.Value(), Cause: CauseExplicit})
			delete(s.m, k)
			s.strategy.OnRemove(k)
		}
	}
	return removed
}

// CleanupExpired scans the whole shard and removes everything past its
// deadline. This backs the periodic background task.
func (s *shard[K, V]) CleanupExpired(now time.Time) []removal[K, V] {
	s.mu.Lock()
	defer s.mu.Unlock()

	var removed []removal[K, V]
	for k, e := range s.m {
		if e.IsExpired(now) {
			removed = append(removed, removal[K, V]{Key: k, Value: e.Value(), Cause: CauseExpired})
			delete(s.m, k)
			s.strategy.OnRemove(k)
		}
	}
	return removed
}

// makeRoomLocked evicts one victim if the shard is at capacity and the
// policy can name one. Caller must hold s.mu.
func (s *shard[K, V]) makeRoomLocked() (*removal[K, V], error) {
	if uint64(len(s.m)) < s.capacity {
		return nil, nil
	}
	k, ok := s.strategy.SelectVictim()
	if !ok {
		return nil, nil
	}
	e, present := s.m[k]
	if !present {
		return nil, nil
	}
	delete(s.m, k)
	s.strategy.OnRemove(k)
	return &removal[K, V]{Key: k, Value: e.Value(), Cause: CauseSize}, nil
}

// rejectedForCapacityLocked reports whether the shard is at capacity with
// no victim available (policy NONE, or an exhausted strategy) — the write
// must be silently dropped rather than overflow. Caller must hold s.mu.
func (s *shard[K, V]) rejectedForCapacityLocked() bool {
	return uint64(len(s.m)) >= s.capacity
}
