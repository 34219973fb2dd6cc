// Package lru implements the Least-Recently-Used eviction strategy:
// on_access moves a key to the most-recent end; the victim is always the
// least-recently-used key. A move-to-front container/list policy,
// generalized to the key-only eviction.Strategy contract (see package
// eviction's doc comment for why).
package lru

import (
	"container/list"

	"github.com/petrunin/cachefront/eviction"
)

type lru[K comparable] struct {
	ls  *list.List // MRU at Front(), LRU at Back(); elements are K
	idx map[K]*list.Element
}

// New returns a Factory producing one LRU strategy instance per shard.
func New[K comparable]() eviction.Factory[K] {
	return eviction.FactoryFunc[K](func() eviction.Strategy[K] {
		return &lru[K]{
			ls:  list.New(),
			idx: make(map[K]*list.Element),
		}
	})
}

func (p *lru[K]) OnPut(key K) {
	if el, ok := p.idx[key]; ok {
		p.ls.MoveToFront(el)
		return
	}
	p.idx[key] = p.ls.PushFront(key)
}

func (p *lru[K]) OnAccess(key K) {
	if el, ok := p.idx[key]; ok {
		p.ls.MoveToFront(el)
	}
}

func (p *lru[K]) OnRemove(key K) {
	if el, ok := p.idx[key]; ok {
		p.ls.Remove(el)
		delete(p.idx, key)
	}
}

func (p *lru[K]) SelectVictim() (key K, ok bool) {
	back := p.ls.Back()
	if back == nil {
		var zero K
		return zero, false
	}
	return back.Value.(K), true
}

func (p *lru[K]) Clear() {
	p.ls.Init()
	p.idx = make(map[K]*list.Element)
}
