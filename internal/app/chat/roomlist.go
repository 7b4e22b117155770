/*
Package chat contains the client core for real-time conversations.

This file defines the Synchronizer, which fetches the set of conversation
rooms with their unread and last-message summaries, and performs the
read-state write that gates entering a room.
*/
package chat

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"coachchat/internal/app/session"
	"coachchat/internal/pkg/errs"
	"coachchat/internal/pkg/logx"
)

// RoomAPI is the durable room endpoint surface the Synchronizer depends on.
type RoomAPI interface {
	ListRooms(ctx context.Context) ([]Room, error)
	MarkRoomRead(ctx context.Context, roomID string, reader session.Identity) error
}

// Synchronizer holds the current room list and refreshes it after actions
// that change unread counts.
//
// Refresh replaces the list wholesale; there is no incremental diffing, and
// concurrent Refresh calls are not deduplicated — each issues its own request.
type Synchronizer struct {
	// api performs the durable room fetches and read-state writes.
	api RoomAPI

	// sess supplies the reader identity for read-state writes.
	sess session.Provider

	// mu protects rooms.
	mu    sync.RWMutex
	rooms []Room

	// structured logger with synchronizer context.
	logger zerolog.Logger
}

// NewSynchronizer constructs a Synchronizer.
func NewSynchronizer(api RoomAPI, sess session.Provider) *Synchronizer {
	return &Synchronizer{
		api:    api,
		sess:   sess,
		logger: logx.Logger().With().Str("component", "Synchronizer").Logger(),
	}
}

// Refresh durably fetches all rooms for the current user and replaces the
// room list wholesale.
func (s *Synchronizer) Refresh(ctx context.Context) error {
	rooms, err := s.api.ListRooms(ctx)
	if err != nil {
		return errs.Wrap(errs.ErrRoomListFetchFailed, err)
	}

	s.mu.Lock()
	s.rooms = rooms
	s.mu.Unlock()

	s.logger.Debug().Int("count", len(rooms)).Msg("Room list refreshed")
	return nil
}

// Rooms returns a snapshot copy of the current room list.
func (s *Synchronizer) Rooms() []Room {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshot := make([]Room, len(s.rooms))
	copy(snapshot, s.rooms)
	return snapshot
}

// MarkRead durably zeroes a room's unread counter server-side. The caller is
// responsible for calling Refresh afterward to observe the updated count;
// there is no local optimistic mutation of unread counts.
func (s *Synchronizer) MarkRead(ctx context.Context, roomID string) error {
	if roomID == "" {
		return errs.NewError(errs.ErrRoomIDRequired)
	}

	if err := s.api.MarkRoomRead(ctx, roomID, s.sess.Identity()); err != nil {
		return errs.Wrap(errs.ErrMarkReadFailed, err)
	}

	return nil
}

// Enter performs the read-state write that precedes navigating into a room,
// guaranteeing the unread badge is cleared before the user sees messages.
// On failure the caller must abort navigation; no refresh is triggered.
func (s *Synchronizer) Enter(ctx context.Context, roomID string) error {
	if err := s.MarkRead(ctx, roomID); err != nil {
		s.logger.Warn().Err(err).Str("room_id", roomID).Msg("Read-state write failed, navigation aborted")
		return err
	}

	return nil
}
