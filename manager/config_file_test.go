package manager

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/petrunin/cachefront/cache"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, dir, contents string) string {
	t.Helper()
	path := filepath.Join(dir, "defaults.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoadGlobalDefaults(t *testing.T) {
	dir := t.TempDir()
	path := writeConfigFile(t, dir, "max_size: 2000\ndefault_ttl: 30s\neviction_policy: 1\n")

	cfg, err := LoadGlobalDefaults(path)
	require.NoError(t, err)
	require.Equal(t, uint64(2000), cfg.MaxSize)
	require.Equal(t, 30*time.Second, cfg.DefaultTTL)
	require.Equal(t, cache.PolicyLFU, cfg.EvictionPolicy)
	require.Equal(t, "default", cfg.Name)
}

func TestLoadGlobalDefaults_RejectsNegativeDuration(t *testing.T) {
	dir := t.TempDir()
	path := writeConfigFile(t, dir, "default_ttl: -1s\n")

	_, err := LoadGlobalDefaults(path)
	require.Error(t, err)
}

func TestWatchGlobalDefaults_ReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := writeConfigFile(t, dir, "max_size: 100\n")

	m := New[string, int](cache.Configuration{}, nil)
	cw, err := WatchGlobalDefaults[string, int](m, path, nil)
	require.NoError(t, err)
	defer cw.Close()

	m.mu.RLock()
	require.Equal(t, uint64(100), m.defaults.MaxSize)
	m.mu.RUnlock()

	require.NoError(t, os.WriteFile(path, []byte("max_size: 250\n"), 0o644))

	require.Eventually(t, func() bool {
		m.mu.RLock()
		defer m.mu.RUnlock()
		return m.defaults.MaxSize == 250
	}, 2*time.Second, 20*time.Millisecond)
}
