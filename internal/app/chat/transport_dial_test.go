package chat

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// A reconnect attempt can resolve after an explicit Close has already
// published the closed state. Whatever the attempt's outcome, the transport
// must stay closed and never report connecting or erroring again.

func TestDialAfterCloseLeavesTerminalState(t *testing.T) {
	transport := NewTransport("ws://localhost:0", studentSession())

	var mu sync.Mutex
	var published []ConnState
	transport.OnStateChange(func(state ConnState) {
		mu.Lock()
		published = append(published, state)
		mu.Unlock()
	})

	transport.mu.Lock()
	transport.roomID = "room-1"
	transport.mu.Unlock()

	transport.Close("user left")
	require.Equal(t, ConnClosed, transport.State())

	require.NoError(t, transport.dial(context.Background(), "room-1"))

	assert.Equal(t, ConnClosed, transport.State())

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []ConnState{ConnClosed}, published, "a late dial must not publish further state changes")
}

func TestSettleAfterDialFailure(t *testing.T) {
	t.Run("closed transport settles closed without a retry", func(t *testing.T) {
		transport := NewTransport("ws://localhost:0", studentSession())

		transport.mu.Lock()
		transport.roomID = "room-1"
		transport.mu.Unlock()

		transport.Close("user left")
		transport.settleAfterDialFailure("room-1")

		assert.Equal(t, ConnClosed, transport.State())

		transport.mu.Lock()
		defer transport.mu.Unlock()
		assert.Nil(t, transport.retryTimer, "no reconnect may be armed after Close")
	})

	t.Run("switched room leaves the state to the newer dial", func(t *testing.T) {
		transport := NewTransport("ws://localhost:0", studentSession())

		transport.mu.Lock()
		transport.roomID = "room-2"
		transport.state = ConnConnecting
		transport.mu.Unlock()

		transport.settleAfterDialFailure("room-1")

		assert.Equal(t, ConnConnecting, transport.State())

		transport.mu.Lock()
		defer transport.mu.Unlock()
		assert.Nil(t, transport.retryTimer, "a stale room's failure must not arm a retry")
	})

	t.Run("active room schedules the retry", func(t *testing.T) {
		transport := NewTransport("ws://localhost:0", studentSession())

		transport.mu.Lock()
		transport.roomID = "room-1"
		transport.mu.Unlock()

		transport.settleAfterDialFailure("room-1")

		assert.Equal(t, ConnErroring, transport.State())

		transport.mu.Lock()
		require.NotNil(t, transport.retryTimer)
		transport.stopRetryLocked()
		transport.mu.Unlock()

		transport.Wait()
	})
}
