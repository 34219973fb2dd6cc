package lru

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLRU_VictimIsLeastRecentlyUsed(t *testing.T) {
	s := New[string]().New()

	s.OnPut("a")
	s.OnPut("b")
	s.OnPut("c")

	s.OnAccess("a") // a is now MRU; LRU order is b, c... wait b was pushed before c

	k, ok := s.SelectVictim()
	require.True(t, ok)
	require.Equal(t, "b", k)
}

func TestLRU_RemoveUpdatesVictim(t *testing.T) {
	s := New[string]().New()
	s.OnPut("a")
	s.OnPut("b")
	s.OnRemove("a")

	k, ok := s.SelectVictim()
	require.True(t, ok)
	require.Equal(t, "b", k) // a removed, only b remains
}

func TestLRU_EmptyHasNoVictim(t *testing.T) {
	s := New[int]().New()
	_, ok := s.SelectVictim()
	require.False(t, ok)
}

func TestLRU_ClearResets(t *testing.T) {
	s := New[string]().New()
	s.OnPut("a")
	s.Clear()
	_, ok := s.SelectVictim()
	require.False(t, ok)
}
