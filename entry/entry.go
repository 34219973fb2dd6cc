// Package entry defines the metadata-bearing container every cache shard
// stores a value in: creation time, last access, access count and an
// optional absolute expiry. It has no lock of its own — all synchronization
// happens at the shard level.
package entry

import "time"

// Entry carries a cached value alongside the bookkeeping every eviction
// policy and TTL/idle check needs. Zero value is not meaningful; always
// construct via New.
type Entry[V any] struct {
	value V

	createdAt     time.Time
	lastAccessAt  time.Time
	accessCount   uint64
	expiresAt     time.Time // zero Time means "no TTL"
	hasExpiresAt  bool
	idleTTL       time.Duration // 0 means "no idle expiration"
}

// New constructs an Entry with created_at = last_access_at = now.
// ttl == 0 means the entry is expired immediately on first lookup; ttl < 0
// means no absolute expiry; ttl > 0 sets a deadline now+ttl. idleTTL <= 0
// means no idle expiration.
func New[V any](value V, now time.Time, ttl time.Duration, idleTTL time.Duration) *Entry[V] {
	e := &Entry[V]{
		value:        value,
		createdAt:    now,
		lastAccessAt: now,
	}
	switch {
	case ttl == 0:
		e.expiresAt = now
		e.hasExpiresAt = true
	case ttl > 0:
		e.expiresAt = now.Add(ttl)
		e.hasExpiresAt = true
	}
	if idleTTL > 0 {
		e.idleTTL = idleTTL
	}
	return e
}

// Value returns the stored value.
func (e *Entry[V]) Value() V { return e.value }

// SetValue replaces the stored value in place, e.g. on a Set of an existing
// key. It does not touch created_at/last_access_at/access_count.
func (e *Entry[V]) SetValue(v V) { e.value = v }

// CreatedAt returns the immutable creation instant.
func (e *Entry[V]) CreatedAt() time.Time { return e.createdAt }

// LastAccessAt returns the instant of the most recent successful Touch.
func (e *Entry[V]) LastAccessAt() time.Time { return e.lastAccessAt }

// AccessCount returns the number of successful lookups recorded via Touch.
func (e *Entry[V]) AccessCount() uint64 { return e.accessCount }

// SetTTL (re)computes the absolute deadline from now (ttl == 0 expires
// immediately, ttl > 0 sets now+ttl), or clears it when ttl < 0. Used when
// a per-call TTL is supplied to an existing key.
func (e *Entry[V]) SetTTL(now time.Time, ttl time.Duration) {
	switch {
	case ttl == 0:
		e.expiresAt = now
		e.hasExpiresAt = true
	case ttl > 0:
		e.expiresAt = now.Add(ttl)
		e.hasExpiresAt = true
	default:
		e.hasExpiresAt = false
	}
}

// SetIdleTTL (re)configures the idle-expiration window.
func (e *Entry[V]) SetIdleTTL(idleTTL time.Duration) {
	e.idleTTL = idleTTL
}

// Touch records a successful lookup: bumps last_access_at to now and
// increments access_count. Must be called under the owning shard's lock.
func (e *Entry[V]) Touch(now time.Time) {
	e.lastAccessAt = now
	e.accessCount++
}

// IsExpired reports whether the entry is past its absolute TTL deadline or
// has been idle longer than its idle window. Either deadline, whichever is
// sooner, governs.
func (e *Entry[V]) IsExpired(now time.Time) bool {
	if e.hasExpiresAt && !now.Before(e.expiresAt) {
		return true
	}
	if e.idleTTL > 0 && now.Sub(e.lastAccessAt) > e.idleTTL {
		return true
	}
	return false
}

// ExpiresAt returns the absolute deadline and whether one is set.
func (e *Entry[V]) ExpiresAt() (time.Time, bool) { return e.expiresAt, e.hasExpiresAt }
