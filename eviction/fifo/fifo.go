// Package fifo implements a First-In-First-Out eviction strategy: the
// victim is always the oldest still-resident key, regardless of access
// pattern. Modeled on easycache's FIFO engine, ported onto the generic
// eviction.Strategy contract.
package fifo

import (
	"container/list"

	"github.com/petrunin/cachefront/eviction"
)

type fifo[K comparable] struct {
	ls  *list.List // insertion order, oldest at Front()
	idx map[K]*list.Element
}

// New returns a Factory producing one FIFO strategy instance per shard.
func New[K comparable]() eviction.Factory[K] {
	return eviction.FactoryFunc[K](func() eviction.Strategy[K] {
		return &fifo[K]{
			ls:  list.New(),
			idx: make(map[K]*list.Element),
		}
	})
}

// OnPut only tracks first insertion order; re-puts of an existing key do
// not move it (FIFO ignores recency entirely).
func (p *fifo[K]) OnPut(key K) {
	if _, ok := p.idx[key]; ok {
		return
	}
	p.idx[key] = p.ls.PushBack(key)
}

// OnAccess is a no-op: FIFO victim selection never depends on reads.
func (p *fifo[K]) OnAccess(K) {}

func (p *fifo[K]) OnRemove(key K) {
	if el, ok := p.idx[key]; ok {
		p.ls.Remove(el)
		delete(p.idx, key)
	}
}

func (p *fifo[K]) SelectVictim() (key K, ok bool) {
	front := p.ls.Front()
	if front == nil {
		var zero K
		return zero, false
	}
	return front.Value.(K), true
}

func (p *fifo[K]) Clear() {
	p.ls.Init()
	p.idx = make(map[K]*list.Element)
}
