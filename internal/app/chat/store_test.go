package chat

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coachchat/internal/app/session"
)

func incoming(id, body string) Message {
	return Message{
		ID:         id,
		RoomID:     "room-1",
		Body:       body,
		SenderID:   "T1",
		SenderKind: session.KindTrainer,
		CreatedAt:  time.Now(),
		State:      StateSent,
	}
}

func TestStoreAppendIncomingKeepsReceiptOrder(t *testing.T) {
	store := NewStore()

	for i := 0; i < 5; i++ {
		store.AppendIncoming(incoming(fmt.Sprintf("D%d", i), fmt.Sprintf("msg %d", i)))
	}

	messages := store.Messages()
	require.Len(t, messages, 5)
	for i, msg := range messages {
		assert.Equal(t, fmt.Sprintf("D%d", i), msg.ID)
	}
}

func TestStoreAppendIncomingIsIdempotent(t *testing.T) {
	store := NewStore()

	store.AppendIncoming(incoming("D1", "hello"))
	store.AppendIncoming(incoming("D1", "hello"))

	assert.Equal(t, 1, store.Len())
}

func TestStoreSeedReplacesWholesale(t *testing.T) {
	store := NewStore()
	store.AppendIncoming(incoming("D1", "old"))

	author := session.Identity{ID: "S1", Kind: session.KindStudent}
	store.AppendOptimistic(NewOptimistic("room-1", "pending", author, nil))

	store.Seed([]Message{incoming("D2", "canonical")})

	messages := store.Messages()
	require.Len(t, messages, 1)
	assert.Equal(t, "D2", messages[0].ID)
	assert.Empty(t, messages[0].TempID)
}

func TestStoreOptimisticLifecycle(t *testing.T) {
	author := session.Identity{ID: "S1", Kind: session.KindStudent}

	t.Run("delivered", func(t *testing.T) {
		store := NewStore()
		draft := NewOptimistic("room-1", "hi", author, nil)
		store.AppendOptimistic(draft)

		require.Equal(t, 1, store.Len())
		require.Equal(t, StateSending, store.Messages()[0].State)

		store.MarkDelivered(draft.TempID)
		assert.Equal(t, StateSent, store.Messages()[0].State)
	})

	t.Run("failed", func(t *testing.T) {
		store := NewStore()
		draft := NewOptimistic("room-1", "hi", author, nil)
		store.AppendOptimistic(draft)

		store.MarkFailed(draft.TempID)
		assert.Equal(t, StateFailed, store.Messages()[0].State)
	})

	t.Run("state transitions only move forward", func(t *testing.T) {
		store := NewStore()
		draft := NewOptimistic("room-1", "hi", author, nil)
		store.AppendOptimistic(draft)

		store.MarkFailed(draft.TempID)
		store.MarkDelivered(draft.TempID)
		assert.Equal(t, StateFailed, store.Messages()[0].State)
	})

	t.Run("no-op after reconciliation removed the temp id", func(t *testing.T) {
		store := NewStore()
		draft := NewOptimistic("room-1", "hi", author, nil)
		store.AppendOptimistic(draft)

		store.Seed([]Message{incoming("D1", "hi")})
		store.MarkDelivered(draft.TempID)

		messages := store.Messages()
		require.Len(t, messages, 1)
		assert.Equal(t, "D1", messages[0].ID)
	})
}

func TestStoreMessagesReturnsSnapshot(t *testing.T) {
	store := NewStore()
	store.AppendIncoming(incoming("D1", "hello"))

	snapshot := store.Messages()
	snapshot[0].Body = "mutated"

	assert.Equal(t, "hello", store.Messages()[0].Body)
}

func TestNewOptimisticHasExactlyTemporaryIdentity(t *testing.T) {
	author := session.Identity{ID: "S1", Kind: session.KindStudent}
	draft := NewOptimistic("room-1", "hi", author, nil)

	assert.Empty(t, draft.ID)
	assert.NotEmpty(t, draft.TempID)
	assert.True(t, draft.IsOwn)
	assert.Equal(t, StateSending, draft.State)
}
