package eventloop

import (
	"errors"
	"testing"

	"github.com/peerlink/peerlink/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReactorFIFO(t *testing.T) {
	reactor := newReactor()

	var order []int
	for i := 0; i < 50; i++ {
		n := i
		reactor.Defer(func() { order = append(order, n) })
	}
	require.NoError(t, reactor.Run(func() error {
		order = append(order, 50)
		return nil
	}))

	require.Len(t, order, 51)
	for i, n := range order {
		assert.Equal(t, i, n)
	}

	reactor.close()
	reactor.join()
}

func TestReactorRunReentrant(t *testing.T) {
	reactor := newReactor()

	assert.False(t, reactor.InReactor())
	err := reactor.Run(func() error {
		if !reactor.InReactor() {
			return errors.New("unit not in reactor context")
		}
		// Nested submission runs immediately instead of deadlocking.
		return reactor.Run(func() error { return nil })
	})
	require.NoError(t, err)

	reactor.close()
	reactor.join()
}

func TestReactorRunRecoversPanicIntoCaller(t *testing.T) {
	reactor := newReactor()

	assert.PanicsWithValue(t, "unit failed", func() {
		_ = reactor.Run(func() error { panic("unit failed") })
	})

	// The drain goroutine survived the unit's panic.
	require.NoError(t, reactor.Run(func() error { return nil }))

	reactor.close()
	reactor.join()
}

func TestReactorClosedRejectsDefer(t *testing.T) {
	reactor := newReactor()
	reactor.close()
	reactor.join()

	assert.PanicsWithValue(t, util.LoopClosed, func() {
		reactor.Defer(func() {})
	})
}

func TestReactorDrainsOnClose(t *testing.T) {
	reactor := newReactor()

	gate := make(chan struct{})
	reactor.Defer(func() { <-gate })

	ran := false
	reactor.Defer(func() { ran = true })

	reactor.close()
	close(gate)
	reactor.join()

	assert.True(t, ran)
}
