// Package cache implements the sharded, generic in-memory cache at the
// center of cachefront: configurable eviction, TTL/idle expiration,
// statistics, event listeners and a read-through/async API built on top of
// a lock-striped map, the same overall shape as a typical sharded Go
// cache but generalized from one hardwired LRU list to any
// eviction.Strategy.
//
// A cache instance owns N shards, each independently locked and evicted.
// Keys are routed to shards with Fnv64a + ShardIndex, matching the
// teacher's hashing scheme. Reads and writes never block the background
// cleanup task or each other across shards; they contend only within the
// shard a key happens to hash to.
//
// Most callers should construct a cache through a provider
// (github.com/petrunin/cachefront/provider/reference or .../highperf)
// rather than calling New directly, since the providers apply sane
// family-specific shard-count and metrics defaults.
package cache
