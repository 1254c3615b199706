// Package gate provides a one-shot proceed/abort decision point.
package gate

import (
	"context"
	"sync"
)

// Outcome is the resolution of a Gate.
type Outcome int

const (
	// Abort means the gated continuation must not run.
	Abort Outcome = iota
	// Proceed means the gated continuation may run.
	Proceed
)

// String returns a human-readable string for the outcome.
func (o Outcome) String() string {
	switch o {
	case Proceed:
		return "proceed"
	case Abort:
		return "abort"
	default:
		return "unknown"
	}
}

// Gate is Pending until the first call to Resolve, then terminal.
// The zero value is not usable; use New.
type Gate struct {
	once    sync.Once
	done    chan struct{}
	outcome Outcome
}

// New creates a pending gate.
func New() *Gate {
	return &Gate{done: make(chan struct{})}
}

// Resolve settles the gate. Only the first call has an effect; it returns
// true when this call was the one that resolved the gate.
func (g *Gate) Resolve(proceed bool) bool {
	resolved := false
	g.once.Do(func() {
		if proceed {
			g.outcome = Proceed
		} else {
			g.outcome = Abort
		}
		resolved = true
		close(g.done)
	})
	return resolved
}

// Wait blocks until the gate is resolved or ctx is done.
// A cancelled context is reported as Abort.
func (g *Gate) Wait(ctx context.Context) Outcome {
	select {
	case <-g.done:
		return g.outcome
	case <-ctx.Done():
		// Settle the gate so late resolutions cannot flip the decision.
		g.Resolve(false)
		<-g.done
		return g.outcome
	}
}

// Done is closed once the gate is resolved.
func (g *Gate) Done() <-chan struct{} {
	return g.done
}

// Outcome returns the resolution and whether the gate is resolved.
func (g *Gate) Outcome() (Outcome, bool) {
	select {
	case <-g.done:
		return g.outcome, true
	default:
		return Abort, false
	}
}
