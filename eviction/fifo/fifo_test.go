package fifo

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFIFO_VictimIsOldest(t *testing.T) {
	s := New[string]().New()
	s.OnPut("a")
	s.OnPut("b")
	s.OnPut("c")

	// Access pattern must not change FIFO order.
	s.OnAccess("a")
	s.OnAccess("a")

	k, ok := s.SelectVictim()
	require.True(t, ok)
	require.Equal(t, "a", k)
}

func TestFIFO_RepeatedPutKeepsOriginalPosition(t *testing.T) {
	s := New[string]().New()
	s.OnPut("a")
	s.OnPut("b")
	s.OnPut("a") // re-put must not move a to the back

	k, ok := s.SelectVictim()
	require.True(t, ok)
	require.Equal(t, "a", k)
}
