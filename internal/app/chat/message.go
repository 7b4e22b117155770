/*
Package chat contains the client core for real-time conversations between a
student and a trainer: the message model, the live-connection transport, the
in-memory message store, the delivery coordinator, and the room list synchronizer.

This file defines the Message model and the durable record/room shapes returned
by the REST backend.
*/
package chat

import (
	"time"

	"github.com/google/uuid"

	"coachchat/internal/app/session"
)

// DeliveryState tracks how far a locally authored message has progressed.
// Transitions only move forward: sending to sent, or sending to failed.
type DeliveryState string

const (
	StateSending DeliveryState = "sending"
	StateSent    DeliveryState = "sent"
	StateFailed  DeliveryState = "failed"
)

// Message is one unit of conversation content held by the Store.
// Exactly one of ID (server-assigned, durable) and TempID (client-assigned,
// pre-durability) identifies a message at any time.
type Message struct {
	// ID is the server-assigned identifier, set once the message is durable.
	ID string

	// TempID is the client-assigned identifier carried until reconciliation
	// replaces the message with its durable record.
	TempID string

	// RoomID is the owning conversation.
	RoomID string

	// Body is the message text.
	Body string

	// SenderID and SenderKind identify the author.
	SenderID   string
	SenderKind session.Kind

	// CreatedAt is the message creation time (receipt time for live frames
	// that carry no timestamp).
	CreatedAt time.Time

	// State is the delivery state; durable messages are sent by definition.
	State DeliveryState

	// IsOwn is derived by comparing SenderID to the current user.
	IsOwn bool

	// Attachments carries already-uploaded file references, if any.
	Attachments []Attachment
}

// MessageRecord is the durable message shape returned by the REST backend.
type MessageRecord struct {
	ID         string    `json:"id"`
	RoomID     string    `json:"room_id"`
	Body       string    `json:"body"`
	SenderID   string    `json:"sender_id"`
	SenderKind string    `json:"sender_type"`
	CreatedAt  time.Time `json:"created_at"`
}

// Room identifies a conversation between one student and one trainer,
// together with its list summary.
type Room struct {
	ID                string       `json:"id"`
	CounterpartName   string       `json:"counterpart_name"`
	CounterpartAvatar string       `json:"counterpart_avatar,omitempty"`
	LastMessage       *LastMessage `json:"last_message,omitempty"`
	UnreadCount       int          `json:"unread_count"`
}

// LastMessage is the last-message summary embedded in a Room.
type LastMessage struct {
	Body       string    `json:"body"`
	SenderKind string    `json:"sender_type"`
	SentAt     time.Time `json:"sent_at"`
}

// NewOptimistic builds a locally authored message with a temporary id and
// sending state, for immediate display before the durable write resolves.
func NewOptimistic(roomID, body string, author session.Identity, attachments []Attachment) Message {
	return Message{
		TempID:      uuid.New().String(),
		RoomID:      roomID,
		Body:        body,
		SenderID:    author.ID,
		SenderKind:  author.Kind,
		CreatedAt:   time.Now(),
		State:       StateSending,
		IsOwn:       true,
		Attachments: attachments,
	}
}

// fromRecord materializes a durable record into a Message. Durable messages
// are sent by definition; ownership is derived from the current user's id.
func fromRecord(rec MessageRecord, selfID string) Message {
	return Message{
		ID:         rec.ID,
		RoomID:     rec.RoomID,
		Body:       rec.Body,
		SenderID:   rec.SenderID,
		SenderKind: session.Kind(rec.SenderKind),
		CreatedAt:  rec.CreatedAt,
		State:      StateSent,
		IsOwn:      rec.SenderID == selfID,
	}
}
