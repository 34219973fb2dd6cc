package cache

import "errors"

// Sentinel errors for the cache's public surface. Each is a
// distinct value so callers can use errors.Is; wrapping call sites add
// context with fmt.Errorf("...: %w", ErrX).
var (
	// ErrClosedCache is returned by any mutating or read operation invoked
	// after Close.
	ErrClosedCache = errors.New("cache: closed")

	// ErrInvalidValue is returned when a null value is written and the
	// configuration disallows null values.
	ErrInvalidValue = errors.New("cache: null value not allowed")

	// ErrInvalidConfig is returned by New/Validate when a Configuration
	// fails validation (non-positive MaxSize, negative durations, ...).
	ErrInvalidConfig = errors.New("cache: invalid configuration")

	// ErrInvalidArgument is returned by EvictAll for a nil predicate. Keys
	// and listeners are not checked: AddListener has no error return and a
	// nil listener only produces a recovered, logged panic on dispatch.
	ErrInvalidArgument = errors.New("cache: invalid argument")

	// ErrTimeout is returned by the loader package's batch collector when
	// its deadline passed before every item completed.
	ErrTimeout = errors.New("cache: operation timed out")

	// ErrCancelled is returned by Future.Wait for a Future whose Cancel was
	// called. The loader package's batch collector does not report it when
	// it trims work at its max-items cutoff.
	ErrCancelled = errors.New("cache: operation cancelled")
)
