package orchestrator

import (
	"github.com/rs/zerolog"

	"github.com/bnema/upgate/internal/application/eventbus"
	"github.com/bnema/upgate/internal/application/port"
	"github.com/bnema/upgate/internal/domain/entity"
)

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithBus publishes on an existing bus instead of a private one.
// The orchestrator closes it on Dispose.
func WithBus(bus *eventbus.Bus) Option {
	return func(o *Orchestrator) {
		if bus != nil {
			o.bus = bus
		}
	}
}

// WithFileSystem enables relocation of the downloaded artifact.
// Without one the installer receives the engine's temporary path.
func WithFileSystem(fs port.FileSystem) Option {
	return func(o *Orchestrator) {
		o.fs = fs
	}
}

// WithCloseRequestHandler receives the engine's request to close the application.
func WithCloseRequestHandler(fn func()) Option {
	return func(o *Orchestrator) {
		o.onClose = fn
	}
}

// WithOutcomeHandler receives one record per notable step of a cycle.
// It runs on the goroutine that produced the step and must not block for long.
func WithOutcomeHandler(fn func(entity.UpdateRecord)) Option {
	return func(o *Orchestrator) {
		o.onOutcome = fn
	}
}

// WithLogger sets the logger. Defaults to a disabled logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *Orchestrator) {
		o.log = logger.With().Str("component", "orchestrator").Logger()
	}
}
