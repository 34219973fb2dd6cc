package cache

import (
	"time"

	"github.com/petrunin/cachefront/internal/logging"
)

// cleanupInterval is how often the background task sweeps every shard for
// entries past their TTL/idle deadline. Lazy expiration on Get/ContainsKey
// already catches hot keys; this reclaims cold ones that are never looked
// up again.
const cleanupInterval = 30 * time.Second

// startCleanup launches the periodic reaper goroutine. It is a no-op in
// terms of correctness if neither a TTL nor an idle window is configured
// anywhere (CleanupExpired just never finds anything to remove), but it
// still runs so that a cache reconfigured later via PutWithTTL keeps
// working without restarting anything.
func (c *instance[K, V]) startCleanup() {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		ticker := time.NewTicker(cleanupInterval)
		defer ticker.Stop()
		for {
			select {
			case <-c.stopCh:
				return
			case <-ticker.C:
				logging.SafeCall(c.log, "cache.cleanup.sweep", c.sweep)
			}
		}
	}()
}

func (c *instance[K, V]) sweep() {
	now := c.clock.Now()
	for _, s := range c.shards {
		removed := s.CleanupExpired(now)
		for _, r := range removed {
			c.emit(Event[K, V]{Type: EventRemove, Key: r.Key, Value: r.Value, Cause: CauseExpired})
		}
	}
}
