/*
Package chat contains the client core for real-time conversations.

This file defines the Transport, which owns at most one live connection bound
to the currently open room. It dials, authenticates, reads inbound frames,
maintains the heartbeat, and schedules reconnection after abnormal closes.
*/
package chat

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"coachchat/internal/app/session"
	"coachchat/internal/pkg/errs"
	"coachchat/internal/pkg/logx"
)

const (
	// timeout duration for writing to the live connection.
	writeWait = 10 * time.Second

	// maximum time allowed to wait for a Pong from the server.
	pongWait = 60 * time.Second

	// frequency at which the client sends a Ping message.
	pingPeriod = (pongWait * 9) / 10

	// maximum allowed size (in bytes) of an inbound frame.
	maxFrameSize = 8192

	// DefaultReconnectDelay is the fixed delay before a reconnection attempt
	// after an abnormal close. The retry cycle repeats at this interval until
	// Close is called or the room is switched; there is no backoff growth and
	// no attempt cap.
	DefaultReconnectDelay = 3 * time.Second
)

// ConnState is the lifecycle state of the live connection.
type ConnState string

const (
	ConnIdle       ConnState = "idle"
	ConnConnecting ConnState = "connecting"
	ConnOpen       ConnState = "open"
	ConnErroring   ConnState = "erroring"
	ConnClosed     ConnState = "closed"
)

// liveConn bundles a websocket connection with its heartbeat stop channel so
// both can be torn down exactly once regardless of which pump fails first.
type liveConn struct {
	ws   *websocket.Conn
	stop chan struct{}
	once sync.Once
}

func (lc *liveConn) shutdown() {
	lc.once.Do(func() {
		close(lc.stop)
		lc.ws.Close()
	})
}

// Transport maintains at most one live connection per currently-open room.
//
// Abnormal closes while the room remains active schedule exactly one
// reconnection attempt after the fixed delay, repeating on each subsequent
// abnormal close. An explicit Close disables reconnection.
type Transport struct {
	// wsBaseURL is the live-connection base, e.g. "wss://api.example.com".
	wsBaseURL string

	// sess supplies the bearer token, re-read on every (re)dial.
	sess session.Provider

	dialer *websocket.Dialer

	// retryDelay is the fixed reconnect delay; retryTimer is its sole enforcer.
	retryDelay time.Duration

	// mu protects all mutable fields below.
	mu         sync.Mutex
	roomID     string
	cur        *liveConn
	state      ConnState
	closed     bool
	authSent   bool
	retryTimer *time.Timer

	onMessage func(Message)
	onState   func(ConnState)

	// wg tracks pump goroutines and pending redials, for orderly teardown.
	wg sync.WaitGroup

	// structured logger with transport context.
	logger zerolog.Logger
}

// TransportOption customizes a Transport.
type TransportOption func(*Transport)

// WithReconnectDelay overrides the fixed reconnect delay.
func WithReconnectDelay(d time.Duration) TransportOption {
	return func(t *Transport) {
		t.retryDelay = d
	}
}

// NewTransport constructs a Transport targeting the given live-connection base URL.
func NewTransport(wsBaseURL string, sess session.Provider, opts ...TransportOption) *Transport {
	t := &Transport{
		wsBaseURL:  wsBaseURL,
		sess:       sess,
		dialer:     websocket.DefaultDialer,
		retryDelay: DefaultReconnectDelay,
		state:      ConnIdle,
		logger:     logx.Logger().With().Str("component", "Transport").Logger(),
	}

	for _, opt := range opts {
		opt(t)
	}

	return t
}

// OnMessage registers the callback invoked once per inbound content frame,
// already parsed into a Message with durable id, sender metadata, and timestamp.
func (t *Transport) OnMessage(handler func(Message)) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.onMessage = handler
}

// OnStateChange registers the callback invoked on every connection state change.
func (t *Transport) OnStateChange(handler func(ConnState)) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.onState = handler
}

// State returns the current connection state.
func (t *Transport) State() ConnState {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.state
}

// Authenticated reports whether the authentication frame has been sent on the
// current connection.
func (t *Transport) Authenticated() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.authSent
}

// Open establishes the transport for the given room. A connection already open
// for a different room is closed first. The session token is sent in an
// authentication frame immediately after the connection opens.
func (t *Transport) Open(ctx context.Context, roomID string) error {
	if roomID == "" {
		return errs.NewError(errs.ErrRoomIDRequired)
	}
	if t.sess.Token() == "" {
		return errs.NewError(errs.ErrTokenRequired)
	}

	t.mu.Lock()
	if t.cur != nil || t.retryTimer != nil {
		t.logger.Info().
			Str("previous_room", t.roomID).
			Str("room_id", roomID).
			Msg("Closing previous connection before opening a new room")
		t.closeCurrentLocked("switching rooms")
	}
	t.roomID = roomID
	t.closed = false
	t.mu.Unlock()

	return t.dial(ctx, roomID)
}

// Close closes the live connection with a normal-closure code and disables
// automatic reconnection.
func (t *Transport) Close(reason string) {
	t.mu.Lock()
	t.closed = true
	t.closeCurrentLocked(reason)
	t.mu.Unlock()

	t.setState(ConnClosed)
}

// Wait blocks until all pump goroutines and pending redials have finished.
// Intended for orderly shutdown after Close.
func (t *Transport) Wait() {
	t.wg.Wait()
}

// closeCurrentLocked tears down the current connection, sending a normal close
// frame, and cancels any pending reconnection attempt. Caller holds mu.
func (t *Transport) closeCurrentLocked(reason string) {
	t.stopRetryLocked()

	lc := t.cur
	t.cur = nil
	t.authSent = false

	if lc == nil {
		return
	}

	lc.ws.SetWriteDeadline(time.Now().Add(writeWait))
	if err := lc.ws.WriteMessage(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, reason),
	); err != nil {
		t.logger.Warn().Err(err).Msg("Failed to write close frame")
	}

	lc.shutdown()
}

// stopRetryLocked cancels a pending reconnection attempt, if any. Caller holds mu.
func (t *Transport) stopRetryLocked() {
	if t.retryTimer != nil && t.retryTimer.Stop() {
		t.wg.Done()
	}
	t.retryTimer = nil
}

// dial connects to the room's endpoint, writes the authentication frame, and
// starts the read and heartbeat pumps. Failures schedule a reconnection attempt.
// Every exit re-checks whether an explicit Close or a room switch raced the
// dial, so the published state always settles on a live or terminal value.
func (t *Transport) dial(ctx context.Context, roomID string) error {
	t.mu.Lock()
	if t.closed || t.roomID != roomID {
		t.mu.Unlock()
		return nil
	}
	t.mu.Unlock()

	t.setState(ConnConnecting)

	target := fmt.Sprintf("%s/ws/chat/%s/", t.wsBaseURL, roomID)

	conn, _, err := t.dialer.DialContext(ctx, target, nil)
	if err != nil {
		t.logger.Warn().Err(err).Str("room_id", roomID).Msg("Live connection dial failed")
		t.settleAfterDialFailure(roomID)
		return errs.Wrap(errs.ErrConnectFailed, err)
	}

	conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteJSON(authFrame{Type: frameAuth, Token: t.sess.Token()}); err != nil {
		conn.Close()
		t.logger.Warn().Err(err).Str("room_id", roomID).Msg("Failed to write authentication frame")
		t.settleAfterDialFailure(roomID)
		return errs.Wrap(errs.ErrAuthFrameFailed, err)
	}

	lc := &liveConn{ws: conn, stop: make(chan struct{})}

	t.mu.Lock()
	if t.closed || t.roomID != roomID {
		wasClosed := t.closed
		t.mu.Unlock()
		lc.shutdown()
		if wasClosed {
			// Close already published ConnClosed; a lingering ConnConnecting
			// from this dial must not outlive it
			t.setState(ConnClosed)
		}
		return nil
	}
	t.cur = lc
	t.authSent = true
	t.mu.Unlock()

	t.setState(ConnOpen)
	t.logger.Info().Str("room_id", roomID).Msg("Live connection open and authenticated")

	t.wg.Add(2)
	go t.readPump(lc, roomID)
	go t.pingLoop(lc)

	return nil
}

// readPump reads inbound frames until the connection fails, forwarding parsed
// chat messages to the registered handler.
func (t *Transport) readPump(lc *liveConn, roomID string) {
	defer t.wg.Done()

	lc.ws.SetReadLimit(maxFrameSize)

	if err := lc.ws.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		t.logger.Error().Err(err).Msg("Failed to set read deadline")
		t.handleReadError(lc, roomID, err)
		return
	}

	lc.ws.SetPongHandler(func(string) error {
		return lc.ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	selfID := t.sess.Identity().ID

	for {
		_, data, err := lc.ws.ReadMessage()
		if err != nil {
			t.handleReadError(lc, roomID, err)
			return
		}

		msg, ok := decodeFrame(data, roomID, time.Now(), selfID, t.logger)
		if !ok {
			continue
		}

		t.mu.Lock()
		handler := t.onMessage
		stale := t.cur != lc
		t.mu.Unlock()

		if stale || handler == nil {
			continue
		}

		handler(msg)
	}
}

// pingLoop maintains the heartbeat. A failed ping tears the connection down so
// the read pump surfaces the error and triggers reconnection.
func (t *Transport) pingLoop(lc *liveConn) {
	defer t.wg.Done()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-lc.stop:
			return

		case <-ticker.C:
			lc.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := lc.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				t.logger.Warn().Err(err).Msg("Heartbeat write failed")
				lc.shutdown()
				return
			}
		}
	}
}

// handleReadError classifies a read failure: normal closes end the connection,
// anything else schedules a reconnection attempt while the room is still active.
func (t *Transport) handleReadError(lc *liveConn, roomID string, err error) {
	lc.shutdown()

	t.mu.Lock()
	if t.cur != lc {
		// stale connection superseded by a newer one
		t.mu.Unlock()
		return
	}
	t.cur = nil
	t.authSent = false

	if t.closed {
		t.mu.Unlock()
		return
	}
	t.mu.Unlock()

	if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
		t.logger.Info().Str("room_id", roomID).Msg("Live connection closed normally by server")
		t.setState(ConnClosed)
		return
	}

	t.logger.Warn().Err(err).Str("room_id", roomID).Msg("Live connection lost, scheduling reconnect")
	t.setState(ConnErroring)
	t.scheduleRedial(roomID)
}

// scheduleRedial arms exactly one reconnection attempt after the fixed delay,
// unless the transport was closed or the room switched in the meantime.
func (t *Transport) scheduleRedial(roomID string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed || t.roomID != roomID {
		return
	}

	t.stopRetryLocked()

	t.wg.Add(1)
	t.retryTimer = time.AfterFunc(t.retryDelay, func() {
		defer t.wg.Done()
		t.redialNow(roomID)
	})
}

// settleAfterDialFailure publishes the state after a failed dial attempt:
// erroring with a scheduled retry while the room is still active, closed when
// an explicit Close raced the dial. A switched room is left alone, since the
// newer dial owns the state from here.
func (t *Transport) settleAfterDialFailure(roomID string) {
	t.mu.Lock()
	closed := t.closed
	switched := t.roomID != roomID
	t.mu.Unlock()

	switch {
	case closed:
		t.setState(ConnClosed)
	case switched:
	default:
		t.setState(ConnErroring)
		t.scheduleRedial(roomID)
	}
}

// redialNow performs a scheduled reconnection attempt.
func (t *Transport) redialNow(roomID string) {
	t.mu.Lock()
	if t.closed || t.roomID != roomID {
		t.mu.Unlock()
		return
	}
	t.retryTimer = nil
	t.mu.Unlock()

	if err := t.dial(context.Background(), roomID); err != nil {
		// dial already scheduled the next attempt
		t.logger.Warn().Err(err).Str("room_id", roomID).Msg("Reconnect attempt failed")
	}
}

// setState records a state change and notifies the registered callback outside the lock.
func (t *Transport) setState(next ConnState) {
	t.mu.Lock()
	changed := t.state != next
	t.state = next
	handler := t.onState
	t.mu.Unlock()

	if changed && handler != nil {
		handler(next)
	}
}
