// Package random implements an eviction strategy that maintains only the
// resident key set and evicts a uniformly random member.
package random

import (
	"math/rand"

	"github.com/petrunin/cachefront/eviction"
)

type random[K comparable] struct {
	keys map[K]int // key -> index into order, for O(1) swap-delete
	order []K
	rng   *rand.Rand
}

// New returns a Factory producing one RANDOM strategy instance per shard.
func New[K comparable]() eviction.Factory[K] {
	return eviction.FactoryFunc[K](func() eviction.Strategy[K] {
		return &random[K]{
			keys:  make(map[K]int),
			order: make([]K, 0),
			//nolint:gosec // eviction victim selection has no security relevance
			rng: rand.New(rand.NewSource(rand.Int63())),
		}
	})
}

func (p *random[K]) OnPut(key K) {
	if _, ok := p.keys[key]; ok {
		return
	}
	p.keys[key] = len(p.order)
	p.order = append(p.order, key)
}

// OnAccess is a no-op: RANDOM victim selection ignores recency/frequency.
func (p *random[K]) OnAccess(K) {}

func (p *random[K]) OnRemove(key K) {
	i, ok := p.keys[key]
	if !ok {
		return
	}
	last := len(p.order) - 1
	p.order[i] = p.order[last]
	p.keys[p.order[i]] = i
	p.order = p.order[:last]
	delete(p.keys, key)
}

func (p *random[K]) SelectVictim() (key K, ok bool) {
	if len(p.order) == 0 {
		var zero K
		return zero, false
	}
	return p.order[p.rng.Intn(len(p.order))], true
}

func (p *random[K]) Clear() {
	p.keys = make(map[K]int)
	p.order = p.order[:0]
}
