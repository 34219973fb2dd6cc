// Package loader implements the cache-aware wrapper around an arbitrary
// delegate data source: read-through, write-through and negative caching,
// fronted by a circuit breaker so a failing delegate is not hammered.
package loader

import (
	"context"
	"errors"
)

// Delegate is the arbitrary data source CachedLoader fronts: find_by_id,
// save, save_batch plus lifecycle hooks. Implementations talk to whatever
// backs the system (a database, a remote service, ...); the wrapper never
// knows or cares which.
type Delegate[ID comparable, Item any, Params any] interface {
	// FindByID loads the item for id. found=false with a nil error means
	// "known absent", distinct from an error (which means "could not
	// determine presence").
	FindByID(ctx context.Context, id ID) (item Item, found bool, err error)

	// Save persists item under params-scoped identity and returns the
	// saved (possibly server-assigned-id) form.
	Save(ctx context.Context, item Item, params Params) (saved Item, err error)

	// SaveBatch persists every item in items under params, returning the
	// saved forms in the same order.
	SaveBatch(ctx context.Context, items []Item, params Params) (saved []Item, err error)

	InitializeStorage(ctx context.Context) error
	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}

// Sentinel errors for the wrapper's public surface.
var (
	// ErrLoaderFailure wraps any error a Delegate call raised, or one
	// raised by a tripped circuit breaker instead of invoking the
	// delegate at all.
	ErrLoaderFailure = errors.New("loader: delegate call failed")
)

// DebugInfo is returned by GetDebugInfo: a human-oriented snapshot of the
// wrapper's current state for operational troubleshooting.
type DebugInfo struct {
	Name              string
	PositiveCacheSize int
	NegativeCacheSize int
	NegativeEnabled   bool
	Healthy           bool
}
