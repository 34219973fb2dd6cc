package cache

import (
	"github.com/petrunin/cachefront/eviction"
	"github.com/petrunin/cachefront/eviction/fifo"
	"github.com/petrunin/cachefront/eviction/lfu"
	"github.com/petrunin/cachefront/eviction/lru"
	"github.com/petrunin/cachefront/eviction/none"
	"github.com/petrunin/cachefront/eviction/random"
)

// FactoryForPolicy resolves the concrete eviction.Strategy factory a
// Configuration.EvictionPolicy names. Providers call this so callers never
// have to import the individual eviction/* packages themselves.
func FactoryForPolicy[K comparable](p EvictionPolicy) eviction.Factory[K] {
	switch p {
	case PolicyLFU:
		return lfu.New[K]()
	case PolicyFIFO:
		return fifo.New[K]()
	case PolicyRandom:
		return random.New[K]()
	case PolicyNone:
		return none.New[K]()
	default:
		return lru.New[K]()
	}
}
