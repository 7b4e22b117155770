/*
Package chat contains the client core for real-time conversations.

This file defines the Coordinator, which owns the send protocol: optimistic
local echo, durable write, reconciliation by full refetch, and the follow-up
read-state write.
*/
package chat

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"coachchat/internal/app/session"
	"coachchat/internal/pkg/errs"
	"coachchat/internal/pkg/logx"
)

// markReadTimeout bounds the asynchronous read-state write that follows a send.
const markReadTimeout = 30 * time.Second

// CreateMessageInput carries a durable message write.
type CreateMessageInput struct {
	RoomID      string       `json:"room_id"`
	SenderID    string       `json:"sender_id"`
	SenderKind  string       `json:"sender_type"`
	Body        string       `json:"message"`
	Attachments []Attachment `json:"attachments,omitempty"`
}

// MessageAPI is the durable message endpoint surface the Coordinator depends on.
type MessageAPI interface {
	ListMessages(ctx context.Context, roomID string) ([]MessageRecord, error)
	CreateMessage(ctx context.Context, input CreateMessageInput) error
	MarkRoomRead(ctx context.Context, roomID string, reader session.Identity) error
}

// Coordinator orchestrates sends for one open room, guaranteeing immediate
// local feedback while durability is established asynchronously.
//
// Sends are serialized, not queued: a second send while one is in flight is
// rejected. The context passed to Send is expected to be tied to the room's
// visibility; results arriving after cancellation are discarded.
type Coordinator struct {
	// roomID is the room this coordinator serves.
	roomID string

	// store receives the optimistic echo and the reconciled list.
	store *Store

	// api performs the durable writes and fetches.
	api MessageAPI

	// sess supplies the sender identity.
	sess session.Provider

	// inFlight is the re-entrancy guard for Send.
	inFlight atomic.Bool

	// bg tracks the asynchronous read-state writes for orderly shutdown.
	bg sync.WaitGroup

	// structured logger with room context.
	logger zerolog.Logger
}

// NewCoordinator constructs a Coordinator for the given room.
func NewCoordinator(roomID string, store *Store, api MessageAPI, sess session.Provider) *Coordinator {
	return &Coordinator{
		roomID: roomID,
		store:  store,
		api:    api,
		sess:   sess,
		logger: logx.Logger().With().
			Str("component", "Coordinator").
			Str("room_id", roomID).
			Logger(),
	}
}

// Send runs the send protocol:
// an optimistic local message first, then the durable write, then a full
// refetch to reconcile local temporary state with server-canonical identities
// and ordering. Failed sends are marked failed and not retried. Regardless of
// the write's outcome, a read-state update is issued asynchronously; its
// failure is logged, never surfaced.
func (c *Coordinator) Send(ctx context.Context, body string, attachments []Attachment) error {
	if strings.TrimSpace(body) == "" && len(attachments) == 0 {
		return errs.NewError(errs.ErrEmptyMessageBody)
	}

	if err := validateAttachments(attachments); err != nil {
		return err
	}

	if !c.inFlight.CompareAndSwap(false, true) {
		return errs.NewError(errs.ErrSendInFlight)
	}
	defer c.inFlight.Store(false)

	author := c.sess.Identity()
	draft := NewOptimistic(c.roomID, body, author, attachments)
	c.store.AppendOptimistic(draft)

	err := c.api.CreateMessage(ctx, CreateMessageInput{
		RoomID:      c.roomID,
		SenderID:    author.ID,
		SenderKind:  string(author.Kind),
		Body:        body,
		Attachments: attachments,
	})

	if ctx.Err() != nil {
		// the room is no longer visible; discard the result without touching the store
		c.logger.Info().Msg("Send resolved after room context cancellation, result discarded")
		return ctx.Err()
	}

	defer c.markReadAsync()

	if err != nil {
		c.store.MarkFailed(draft.TempID)
		c.logger.Warn().Err(err).Msg("Durable message write failed")
		return errs.Wrap(errs.ErrSendFailed, err)
	}

	c.store.MarkDelivered(draft.TempID)

	if err := c.Refresh(ctx); err != nil {
		// the optimistic echo stays visible; the next refetch reconciles it
		c.logger.Warn().Err(err).Msg("Post-send reconciliation refetch failed")
	}

	return nil
}

// Refresh performs the durable fetch of the room's full message list and seeds
// the store with it. Deliberately a full-list refetch rather than a point
// update, trading bandwidth for correctness.
func (c *Coordinator) Refresh(ctx context.Context) error {
	records, err := c.api.ListMessages(ctx, c.roomID)
	if err != nil {
		return errs.Wrap(errs.ErrMessageListFetchFailed, err)
	}

	if ctx.Err() != nil {
		return ctx.Err()
	}

	selfID := c.sess.Identity().ID

	messages := make([]Message, 0, len(records))
	for _, rec := range records {
		messages = append(messages, fromRecord(rec, selfID))
	}

	c.store.Seed(messages)
	return nil
}

// Wait blocks until pending asynchronous read-state writes have finished.
func (c *Coordinator) Wait() {
	c.bg.Wait()
}

// markReadAsync issues the read-state update so the unread count reflects the
// user's own outbound activity. Deliberately detached from the room context:
// the write should land even if the user navigates away right after sending.
func (c *Coordinator) markReadAsync() {
	c.bg.Add(1)

	go func() {
		defer c.bg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), markReadTimeout)
		defer cancel()

		if err := c.api.MarkRoomRead(ctx, c.roomID, c.sess.Identity()); err != nil {
			c.logger.Warn().Err(err).Msg("Failed to mark room as read after send")
		}
	}()
}
