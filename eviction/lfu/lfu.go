// Package lfu implements a Least-Frequently-Used eviction strategy backed
// by a binary heap keyed on access frequency, ties broken by older last
// touch. Ported from easycache's container/heap-based LFU
// engine onto the generic eviction.Strategy contract.
package lfu

import (
	"container/heap"

	"github.com/petrunin/cachefront/eviction"
)

type item[K comparable] struct {
	key   K
	freq  uint64
	tick  uint64 // monotonic "last touched" marker, older = smaller
	index int
}

type lfuHeap[K comparable] []*item[K]

func (h lfuHeap[K]) Len() int { return len(h) }

func (h lfuHeap[K]) Less(i, j int) bool {
	if h[i].freq != h[j].freq {
		return h[i].freq < h[j].freq
	}
	return h[i].tick < h[j].tick
}

func (h lfuHeap[K]) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *lfuHeap[K]) Push(x any) {
	it := x.(*item[K])
	it.index = len(*h)
	*h = append(*h, it)
}

func (h *lfuHeap[K]) Pop() any {
	old := *h
	n := len(old)
	it := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return it
}

type lfu[K comparable] struct {
	h     lfuHeap[K]
	idx   map[K]*item[K]
	clock uint64
}

// New returns a Factory producing one LFU strategy instance per shard.
func New[K comparable]() eviction.Factory[K] {
	return eviction.FactoryFunc[K](func() eviction.Strategy[K] {
		s := &lfu[K]{idx: make(map[K]*item[K])}
		heap.Init(&s.h)
		return s
	})
}

func (p *lfu[K]) OnPut(key K) {
	p.clock++
	if it, ok := p.idx[key]; ok {
		it.tick = p.clock
		heap.Fix(&p.h, it.index)
		return
	}
	it := &item[K]{key: key, freq: 0, tick: p.clock}
	heap.Push(&p.h, it)
	p.idx[key] = it
}

func (p *lfu[K]) OnAccess(key K) {
	it, ok := p.idx[key]
	if !ok {
		return
	}
	p.clock++
	it.freq++
	it.tick = p.clock
	heap.Fix(&p.h, it.index)
}

func (p *lfu[K]) OnRemove(key K) {
	it, ok := p.idx[key]
	if !ok {
		return
	}
	heap.Remove(&p.h, it.index)
	delete(p.idx, key)
}

func (p *lfu[K]) SelectVictim() (key K, ok bool) {
	if p.h.Len() == 0 {
		var zero K
		return zero, false
	}
	return p.h[0].key, true
}

func (p *lfu[K]) Clear() {
	p.h = p.h[:0]
	p.idx = make(map[K]*item[K])
	p.clock = 0
}
