package lfu

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// put(A); put(B); put(C); get(A); get(A);
// get(B); put(D) -> victim is C.
func TestLFU_VictimIsLeastFrequentlyUsed(t *testing.T) {
	s := New[string]().New()

	s.OnPut("a")
	s.OnPut("b")
	s.OnPut("c")

	s.OnAccess("a")
	s.OnAccess("a")
	s.OnAccess("b")

	k, ok := s.SelectVictim()
	require.True(t, ok)
	require.Equal(t, "c", k)
}

func TestLFU_TieBrokenByOlderTouch(t *testing.T) {
	s := New[string]().New()

	s.OnPut("a")
	s.OnPut("b") // both at freq 0, b touched more recently than a

	k, ok := s.SelectVictim()
	require.True(t, ok)
	require.Equal(t, "a", k)
}

func TestLFU_RemoveThenVictim(t *testing.T) {
	s := New[string]().New()
	s.OnPut("a")
	s.OnPut("b")
	s.OnRemove("a")

	k, ok := s.SelectVictim()
	require.True(t, ok)
	require.Equal(t, "b", k)
}
