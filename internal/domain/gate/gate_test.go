package gate

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGate_ResolveProceed(t *testing.T) {
	g := New()
	_, resolved := g.Outcome()
	require.False(t, resolved)

	assert.True(t, g.Resolve(true))
	assert.Equal(t, Proceed, g.Wait(context.Background()))

	outcome, resolved := g.Outcome()
	assert.True(t, resolved)
	assert.Equal(t, Proceed, outcome)
}

func TestGate_FirstResolutionWins(t *testing.T) {
	g := New()
	assert.True(t, g.Resolve(false))
	assert.False(t, g.Resolve(true))
	assert.False(t, g.Resolve(true))

	assert.Equal(t, Abort, g.Wait(context.Background()))
}

func TestGate_WaitUnblocksOnResolve(t *testing.T) {
	g := New()
	got := make(chan Outcome, 1)
	go func() { got <- g.Wait(context.Background()) }()

	select {
	case <-got:
		t.Fatal("Wait returned before Resolve")
	case <-time.After(20 * time.Millisecond):
	}

	g.Resolve(true)
	select {
	case outcome := <-got:
		assert.Equal(t, Proceed, outcome)
	case <-time.After(time.Second):
		t.Fatal("Wait did not return after Resolve")
	}
}

func TestGate_ContextCancelIsAbort(t *testing.T) {
	g := New()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.Equal(t, Abort, g.Wait(ctx))
	assert.False(t, g.Resolve(true), "cancelled wait settles the gate")
	assert.Equal(t, Abort, g.Wait(context.Background()))
}

func TestGate_ConcurrentResolveHonorsExactlyOne(t *testing.T) {
	g := New()
	var wg sync.WaitGroup
	var mu sync.Mutex
	winners := 0

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(proceed bool) {
			defer wg.Done()
			if g.Resolve(proceed) {
				mu.Lock()
				winners++
				mu.Unlock()
			}
		}(i%2 == 0)
	}
	wg.Wait()

	assert.Equal(t, 1, winners)
	<-g.Done()
}

func TestOutcome_String(t *testing.T) {
	assert.Equal(t, "proceed", Proceed.String())
	assert.Equal(t, "abort", Abort.String())
	assert.Equal(t, "unknown", Outcome(42).String())
}
