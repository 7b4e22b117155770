/*
Package chat contains the client core for real-time conversations.

This file defines the wire frames exchanged over the live connection: the
outbound authentication frame and the inbound content frames. Malformed or
unrecognized frames are dropped; membership notices are accepted but never
forwarded as messages.
*/
package chat

import (
	"encoding/json"
	"time"

	"github.com/rs/zerolog"

	"coachchat/internal/app/session"
)

// Frame type discriminators used on the live connection.
const (
	frameAuth        = "auth"
	frameChatMessage = "chat_message"
	frameUserJoined  = "user_joined"
)

// authFrame is written immediately after the connection opens.
type authFrame struct {
	Type  string `json:"type"`
	Token string `json:"token"`
}

// inboundFrame is the superset of fields carried by server-emitted frames.
type inboundFrame struct {
	Type       string `json:"type"`
	MessageID  string `json:"message_id"`
	Message    string `json:"message"`
	SenderID   string `json:"sender_id"`
	SenderType string `json:"sender_type"`
	Timestamp  int64  `json:"timestamp"`
	UserID     string `json:"user_id"`
}

// decodeFrame parses one raw frame. It returns the materialized Message and
// true only for well-formed chat_message frames; everything else is dropped,
// with membership notices logged at debug and garbage logged at warn.
// A missing timestamp defaults to the receipt time.
func decodeFrame(data []byte, roomID string, receivedAt time.Time, selfID string, logger zerolog.Logger) (Message, bool) {
	var frame inboundFrame

	if err := json.Unmarshal(data, &frame); err != nil {
		logger.Warn().Err(err).
			Bytes("frame_bytes", data).
			Msg("Dropping frame with invalid JSON")
		return Message{}, false
	}

	switch frame.Type {
	case frameChatMessage:
		createdAt := receivedAt
		if frame.Timestamp > 0 {
			createdAt = time.Unix(frame.Timestamp, 0)
		}

		return Message{
			ID:         frame.MessageID,
			RoomID:     roomID,
			Body:       frame.Message,
			SenderID:   frame.SenderID,
			SenderKind: session.Kind(frame.SenderType),
			CreatedAt:  createdAt,
			State:      StateSent,
			IsOwn:      frame.SenderID == selfID,
		}, true

	case frameUserJoined:
		logger.Debug().Str("user_id", frame.UserID).Msg("Membership notice received")
		return Message{}, false

	default:
		logger.Warn().Str("frame_type", frame.Type).Msg("Dropping frame with unsupported type")
		return Message{}, false
	}
}
