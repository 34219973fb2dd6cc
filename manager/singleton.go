package manager

import (
	"sync"

	"github.com/petrunin/cachefront/cache"
)

// defaultManager is a process-wide convenience Manager[string, any],
// lazily built on first use. Prefer building and threading an explicit
// *Manager through your application; this exists only for callers that
// genuinely want a shared global registry and are willing to accept its
// tradeoffs (implicit coupling between unrelated packages that both reach
// for it, an un-scoped shutdown that must be called out explicitly).
var (
	defaultManagerOnce sync.Once
	defaultManagerInst *Manager[string, any]
)

// Default returns the lazily-initialized process-wide Manager, building it
// on first call with no global defaults configured (callers that want
// defaults should build their own Manager with New instead).
func Default() *Manager[string, any] {
	defaultManagerOnce.Do(func() {
		defaultManagerInst = New[string, any](cache.Configuration{}, nil)
	})
	return defaultManagerInst
}

// ShutdownDefault closes the process-wide Manager if it was ever built,
// and resets it so a later Default() call builds a fresh one. Intended
// for test teardown and graceful-shutdown paths; ordinary request-serving
// code should not need it.
func ShutdownDefault() error {
	defaultManagerOnce = sync.Once{}
	if defaultManagerInst == nil {
		return nil
	}
	inst := defaultManagerInst
	defaultManagerInst = nil
	return inst.Close()
}
