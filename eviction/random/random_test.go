package random

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRandom_VictimIsAmongResidentKeys(t *testing.T) {
	s := New[string]().New()
	s.OnPut("a")
	s.OnPut("b")
	s.OnPut("c")

	for i := 0; i < 50; i++ {
		k, ok := s.SelectVictim()
		require.True(t, ok)
		require.Contains(t, []string{"a", "b", "c"}, k)
	}
}

func TestRandom_RemoveShrinksPool(t *testing.T) {
	s := New[string]().New()
	s.OnPut("a")
	s.OnPut("b")
	s.OnRemove("a")

	k, ok := s.SelectVictim()
	require.True(t, ok)
	require.Equal(t, "b", k)
}

func TestRandom_EmptyHasNoVictim(t *testing.T) {
	s := New[int]().New()
	_, ok := s.SelectVictim()
	require.False(t, ok)
}
