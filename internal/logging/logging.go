// Package logging centralizes the zap logger construction shared by the
// cache, manager and loader wrapper, and the panic-safe dispatch helper
// used to keep listener/background-task failures from ever reaching a
// caller.
package logging

import "go.uber.org/zap"

// New returns a production zap logger, falling back to a no-op logger if
// construction fails (it practically never does, but callers of New must
// not themselves fail to construct a cache over a logging hiccup).
func New() *zap.Logger {
	l, err := zap.NewProduction()
	if err != nil {
		return zap.NewNop()
	}
	return l
}

// SafeCall runs fn and recovers any panic, logging it at Error level under
// the given event name instead of letting it propagate. Used to isolate
// listener callbacks and background cleanup ticks from the code that
// invokes them: a broken listener or a bad cleanup tick is logged and the
// caller continues undisturbed.
func SafeCall(log *zap.Logger, event string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			log.Error("recovered panic", zap.String("event", event), zap.Any("panic", r))
		}
	}()
	fn()
}
