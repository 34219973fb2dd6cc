// Package none implements the NONE eviction policy: no auxiliary
// structure, no victim ever selected. A cache configured with NONE refuses
// new writes once at max_size instead of evicting.
package none

import "github.com/petrunin/cachefront/eviction"

type none[K comparable] struct{}

// New returns a Factory producing the stateless NONE strategy.
func New[K comparable]() eviction.Factory[K] {
	return eviction.FactoryFunc[K](func() eviction.Strategy[K] {
		return none[K]{}
	})
}

func (none[K]) OnPut(K)    {}
func (none[K]) OnAccess(K) {}
func (none[K]) OnRemove(K) {}

func (none[K]) SelectVictim() (key K, ok bool) {
	var zero K
	return zero, false
}

func (none[K]) Clear() {}
