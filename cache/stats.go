package cache

import (
	"github.com/petrunin/cachefront/internal/util"
)

// Stats is an immutable snapshot of a cache's lifetime counters. Totals
// are cumulative since construction or the last ResetStats call.
type Stats struct {
	Hits        uint64
	Misses      uint64
	Loads       uint64
	LoadTimeNs  uint64
	Evictions   uint64
	CurrentSize uint64
}

// Total returns Hits+Misses, the denominator for HitRate/MissRate.
func (s Stats) Total() uint64 { return s.Hits + s.Misses }

// HitRate returns Hits/(Hits+Misses), or 0 when there have been no
// lookups yet.
func (s Stats) HitRate() float64 {
	total := s.Total()
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

// MissRate returns 1 - HitRate, or 0 if there have been no lookups.
func (s Stats) MissRate() float64 {
	if s.Total() == 0 {
		return 0
	}
	return 1 - s.HitRate()
}

// AverageLoadTimeNs returns LoadTimeNs/Loads, or 0 if there have been no
// loads.
func (s Stats) AverageLoadTimeNs() float64 {
	if s.Loads == 0 {
		return 0
	}
	return float64(s.LoadTimeNs) / float64(s.Loads)
}

// statCounters holds the live, per-cache atomic counters that back Stats.
// Padded to a cache line each to avoid false sharing across shards writing
// concurrently.
type statCounters struct {
	hits      util.PaddedAtomicUint64
	misses    util.PaddedAtomicUint64
	loads     util.PaddedAtomicUint64
	loadNanos util.PaddedAtomicUint64
	evictions util.PaddedAtomicUint64
}

func (c *statCounters) recordHit()  { c.hits.Add(1) }
func (c *statCounters) recordMiss() { c.misses.Add(1) }

func (c *statCounters) recordLoad(durationNanos int64) {
	c.loads.Add(1)
	if durationNanos > 0 {
		c.loadNanos.Add(uint64(durationNanos))
	}
}

func (c *statCounters) recordEviction() { c.evictions.Add(1) }

func (c *statCounters) snapshot(currentSize uint64) Stats {
	return Stats{
		Hits:        c.hits.Load(),
		Misses:      c.misses.Load(),
		Loads:       c.loads.Load(),
		LoadTimeNs:  c.loadNanos.Load(),
		Evictions:   c.evictions.Load(),
		CurrentSize: currentSize,
	}
}

func (c *statCounters) reset() {
	c.hits.Store(0)
	c.misses.Store(0)
	c.loads.Store(0)
	c.loadNanos.Store(0)
	c.evictions.Store(0)
}
