package provider_test

import (
	"testing"

	"github.com/petrunin/cachefront/cache"
	"github.com/petrunin/cachefront/provider/reference"
	"github.com/stretchr/testify/require"
)

func TestProvider_CreateCacheRegistersAndReuses(t *testing.T) {
	p := reference.New[string, int](nil, nil)
	defer p.Close()

	cfg := cache.Configuration{Name: "users", MaxSize: 10}
	c1, err := p.CreateCache(cfg)
	require.NoError(t, err)

	c2, err := p.CreateCache(cfg)
	require.NoError(t, err)
	require.Same(t, c1, c2)

	got, ok := p.Get("users")
	require.True(t, ok)
	require.Same(t, c1, got)

	stats := p.Stats()
	require.Equal(t, reference.Name, stats.ProviderName)
	require.Equal(t, 1, stats.CacheCount)
	require.Equal(t, []string{"users"}, stats.Names)
}

func TestProvider_DestroyCacheClosesAndForgets(t *testing.T) {
	p := reference.New[string, int](nil, nil)
	defer p.Close()

	_, err := p.CreateCache(cache.Configuration{Name: "sessions", MaxSize: 10})
	require.NoError(t, err)

	require.NoError(t, p.DestroyCache("sessions"))
	_, ok := p.Get("sessions")
	require.False(t, ok)

	// Destroying an already-absent name is not an error.
	require.NoError(t, p.DestroyCache("sessions"))
}

func TestProvider_CloseRejectsFurtherCreation(t *testing.T) {
	p := reference.New[string, int](nil, nil)
	require.NoError(t, p.Close())

	_, err := p.CreateCache(cache.Configuration{Name: "x", MaxSize: 1})
	require.ErrorIs(t, err, cache.ErrClosedCache)
}
