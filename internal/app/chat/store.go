/*
Package chat contains the client core for real-time conversations.

This file defines the Store, the in-memory ordered message collection for the
currently open room. The store is discarded when the room closes; nothing is
persisted across restarts.
*/
package chat

import (
	"sync"

	"github.com/rs/zerolog"

	"coachchat/internal/pkg/logx"
)

// Store holds the ordered message list for the active room.
//
// Appends go at the end only, relying on generally monotonic real-time delivery
// order; out-of-order live frames are not re-sorted. The durable refetch (Seed)
// is the final source of truth and replaces the list wholesale.
type Store struct {
	// mu protects access to messages.
	mu sync.RWMutex

	// messages in creation-time ascending order.
	messages []Message

	// structured logger with store context.
	logger zerolog.Logger
}

// NewStore constructs an empty Store.
func NewStore() *Store {
	return &Store{
		logger: logx.Logger().With().Str("component", "Store").Logger(),
	}
}

// Seed replaces the store contents with a durably-fetched, timestamp-ordered
// list. Used on room open and after every durable send to reconcile local
// temporary state with server-canonical identities and ordering.
func (s *Store) Seed(messages []Message) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.messages = make([]Message, len(messages))
	copy(s.messages, messages)

	s.logger.Debug().Int("count", len(messages)).Msg("Store seeded from durable fetch")
}

// AppendIncoming appends a message received over the live connection.
// Duplicate durable ids are rejected silently, so redelivered frames and
// frames racing the coordinator's own reconciliation stay idempotent.
func (s *Store) AppendIncoming(message Message) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if message.ID != "" {
		for i := range s.messages {
			if s.messages[i].ID == message.ID {
				s.logger.Debug().
					Str("message_id", message.ID).
					Msg("Duplicate durable id ignored")
				return
			}
		}
	}

	s.messages = append(s.messages, message)
}

// AppendOptimistic inserts a locally authored message with sending state and a
// temporary id, appended at the end.
func (s *Store) AppendOptimistic(draft Message) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.messages = append(s.messages, draft)
}

// MarkDelivered transitions a previously optimistic message to sent.
// No-op if the temporary id no longer exists (already reconciled away by a Seed).
func (s *Store) MarkDelivered(tempID string) {
	s.transition(tempID, StateSent)
}

// MarkFailed transitions a previously optimistic message to failed.
// No-op if the temporary id no longer exists. Failed messages do not auto-retry.
func (s *Store) MarkFailed(tempID string) {
	s.transition(tempID, StateFailed)
}

// transition applies a forward-only delivery state change by temporary id.
func (s *Store) transition(tempID string, next DeliveryState) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.messages {
		if s.messages[i].TempID == tempID {
			if s.messages[i].State != StateSending {
				s.logger.Warn().
					Str("temp_id", tempID).
					Str("current_state", string(s.messages[i].State)).
					Str("requested_state", string(next)).
					Msg("Ignoring non-forward delivery state transition")
				return
			}
			s.messages[i].State = next
			return
		}
	}
}

// Messages returns a snapshot copy of the current message list.
func (s *Store) Messages() []Message {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshot := make([]Message, len(s.messages))
	copy(snapshot, s.messages)
	return snapshot
}

// Len returns the number of stored messages.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.messages)
}
