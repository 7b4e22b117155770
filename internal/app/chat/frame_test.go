package chat

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coachchat/internal/app/session"
)

func TestDecodeFrame(t *testing.T) {
	logger := zerolog.Nop()
	receivedAt := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	t.Run("chat message frame", func(t *testing.T) {
		data := []byte(`{"type":"chat_message","message_id":"D1","message":"hello","sender_id":"T1","sender_type":"trainer","timestamp":1754042400}`)

		msg, ok := decodeFrame(data, "room-1", receivedAt, "S1", logger)
		require.True(t, ok)

		assert.Equal(t, "D1", msg.ID)
		assert.Equal(t, "room-1", msg.RoomID)
		assert.Equal(t, "hello", msg.Body)
		assert.Equal(t, "T1", msg.SenderID)
		assert.Equal(t, session.KindTrainer, msg.SenderKind)
		assert.Equal(t, int64(1754042400), msg.CreatedAt.Unix())
		assert.Equal(t, StateSent, msg.State)
		assert.False(t, msg.IsOwn)
	})

	t.Run("own message is flagged", func(t *testing.T) {
		data := []byte(`{"type":"chat_message","message_id":"D2","message":"hi","sender_id":"S1","sender_type":"student","timestamp":1754042400}`)

		msg, ok := decodeFrame(data, "room-1", receivedAt, "S1", logger)
		require.True(t, ok)
		assert.True(t, msg.IsOwn)
	})

	t.Run("missing timestamp defaults to receipt time", func(t *testing.T) {
		data := []byte(`{"type":"chat_message","message_id":"D3","message":"hi","sender_id":"T1","sender_type":"trainer"}`)

		msg, ok := decodeFrame(data, "room-1", receivedAt, "S1", logger)
		require.True(t, ok)
		assert.Equal(t, receivedAt, msg.CreatedAt)
	})

	t.Run("membership notice is not forwarded", func(t *testing.T) {
		data := []byte(`{"type":"user_joined","user_id":"T1"}`)

		_, ok := decodeFrame(data, "room-1", receivedAt, "S1", logger)
		assert.False(t, ok)
	})

	t.Run("unknown frame type is dropped", func(t *testing.T) {
		data := []byte(`{"type":"typing_indicator","user_id":"T1"}`)

		_, ok := decodeFrame(data, "room-1", receivedAt, "S1", logger)
		assert.False(t, ok)
	})

	t.Run("malformed payload is dropped", func(t *testing.T) {
		data := []byte(`{"type":"chat_message","message_id":`)

		_, ok := decodeFrame(data, "room-1", receivedAt, "S1", logger)
		assert.False(t, ok)
	})
}
