package cache

import (
	"context"
	"time"
)

// Loader is called on a miss to produce the value for a key (read-through).
// An error is never cached and is returned to every caller waiting on the
// same key.
type Loader[K comparable, V any] func(ctx context.Context, key K) (V, error)

// Cache is the public surface every provider-constructed instance
// implements: presence, single-key and bulk access, explicit invalidation,
// statistics and event observation.
type Cache[K comparable, V any] interface {
	// Get returns the value for key and whether it was present and live.
	// Returns ErrClosedCache on a closed cache.
	Get(ctx context.Context, key K) (V, bool, error)

	// GetWithLoader returns the cached value if present, otherwise invokes
	// loader at most once per key even under concurrent callers, caches the
	// result, and returns it. Loader errors propagate to every caller
	// waiting on that key and are never cached.
	GetWithLoader(ctx context.Context, key K, loader Loader[K, V]) (V, error)

	// Put inserts or replaces key using the cache's configured default TTL.
	Put(ctx context.Context, key K, value V) error

	// PutWithTTL inserts or replaces key with an explicit per-entry TTL,
	// overriding the configured default for this entry only. ttl == 0
	// means the entry is expired immediately on first lookup; ttl < 0
	// means no expiry for this entry.
	PutWithTTL(ctx context.Context, key K, value V, ttl time.Duration) error

	// PutIfAbsent inserts value only if key is not already present (or has
	// expired); it returns the existing live value and true if key was
	// already present, leaving the cache unmodified.
	PutIfAbsent(ctx context.Context, key K, value V) (previous V, existed bool, err error)

	// Remove deletes key and reports whether it was present. Returns
	// ErrClosedCache on a closed cache.
	Remove(ctx context.Context, key K) (value V, existed bool, err error)

	// ContainsKey reports presence without affecting recency/hit-miss
	// statistics. Returns ErrClosedCache on a closed cache.
	ContainsKey(ctx context.Context, key K) (bool, error)

	// GetAll looks up every key in keys, returning only those present.
	GetAll(ctx context.Context, keys []K) map[K]V

	// PutAll inserts or replaces every entry in values using the default
	// TTL.
	PutAll(ctx context.Context, values map[K]V) error

	// RemoveAll deletes every key in keys.
	RemoveAll(ctx context.Context, keys []K)

	// AsMap returns a snapshot of every live (not expired) entry. Safe to
	// range over; later cache mutations are not reflected in it. Returns
	// ErrClosedCache on a closed cache.
	AsMap(ctx context.Context) (map[K]V, error)

	// Clear empties the cache without emitting a per-key removal event.
	// Returns ErrClosedCache on a closed cache.
	Clear(ctx context.Context) error

	// Size returns the current number of resident entries, including ones
	// that are expired but not yet lazily or periodically reaped.
	Size() int

	// IsEmpty reports Size() == 0.
	IsEmpty() bool

	// EstimatedSize is an alias for Size kept for API parity with
	// implementations that distinguish an exact count from an estimate;
	// this cache always returns an exact count.
	EstimatedSize() int64

	// Evict removes key explicitly, as if by Remove, but when the key was
	// present it counts an eviction and fires an EventEvict with EXPLICIT
	// cause; an absent key fires no event. Returns ErrClosedCache on a
	// closed cache.
	Evict(ctx context.Context, key K) error

	// EvictAll removes every resident key for which pred returns true.
	// Returns ErrClosedCache on a closed cache and ErrInvalidArgument for a
	// nil pred.
	EvictAll(ctx context.Context, pred func(K, V) bool) error

	// GetStats returns a snapshot of the cache's lifetime counters.
	GetStats() Stats

	// ResetStats zeroes the lifetime counters without touching the cached
	// entries.
	ResetStats()

	// AddListener registers a Listener to observe subsequent events. There
	// is no handle to unregister an individual listener; use RemoveAllListeners
	// to clear every registered listener at once.
	AddListener(l Listener[K, V])

	// RemoveAllListeners discards every registered listener.
	RemoveAllListeners()

	// Close stops the background cleanup task, clears storage and
	// listeners, and releases resources. Every operation with an error
	// result afterward rejects with ErrClosedCache; Close itself is
	// idempotent. The operations without an error result keep working:
	// GetAll returns an empty map, RemoveAll does nothing, AddListener and
	// RemoveAllListeners act on the emptied listener list, GetStats and
	// ResetStats act on the counters, and Size/IsEmpty/EstimatedSize report
	// the now-empty state.
	Close() error

	// GetAsync, PutAsync and RemoveAsync schedule the synchronous operation
	// on a small fixed-size worker pool and return a Future handle.
	// Cancelling the handle never undoes a mutation that already ran.
	GetAsync(ctx context.Context, key K) *Future[V]
	PutAsync(ctx context.Context, key K, value V) *Future[struct{}]
	RemoveAsync(ctx context.Context, key K) *Future[removeResult[V]]
}
