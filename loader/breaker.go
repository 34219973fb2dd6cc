package loader

import (
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// findByIDResult bundles FindByID's two success values into one type so
// gobreaker.CircuitBreaker[T]'s single generic result parameter can carry
// them.
type findByIDResult[Item any] struct {
	Value Item
	Found bool
}

// breakers groups one circuit breaker per delegate operation, each logging
// its state transitions through the wrapper's zap logger.
type breakers[Item any] struct {
	findByID  *gobreaker.CircuitBreaker[findByIDResult[Item]]
	save      *gobreaker.CircuitBreaker[Item]
	saveBatch *gobreaker.CircuitBreaker[[]Item]
}

func newBreakers[Item any](name string, log *zap.Logger) *breakers[Item] {
	onStateChange := func(breakerName string, from gobreaker.State, to gobreaker.State) {
		log.Warn("loader.breaker.state_change",
			zap.String("breaker", breakerName),
			zap.String("from", from.String()),
			zap.String("to", to.String()))
	}
	settings := func(op string) gobreaker.Settings {
		return gobreaker.Settings{
			Name:          name + "." + op,
			OnStateChange: onStateChange,
		}
	}
	return &breakers[Item]{
		findByID:  gobreaker.NewCircuitBreaker[findByIDResult[Item]](settings("find_by_id")),
		save:      gobreaker.NewCircuitBreaker[Item](settings("save")),
		saveBatch: gobreaker.NewCircuitBreaker[[]Item](settings("save_batch")),
	}
}
