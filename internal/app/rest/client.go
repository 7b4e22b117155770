/*
Package rest implements the durable REST client for the portal's chat endpoints.

Every call carries the session bearer token and is bounded by a fixed request
timeout. Responses use the portal's JSON envelope (code, message, data); a
non-zero code or non-2xx status is an error.
*/
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	"coachchat/internal/app/chat"
	"coachchat/internal/app/session"
	"coachchat/internal/pkg/logx"
)

// DefaultRequestTimeout bounds every durable call.
const DefaultRequestTimeout = 30 * time.Second

// Client talks to the durable chat endpoints.
type Client struct {
	baseURL    string
	httpClient *http.Client
	sess       session.Provider
	logger     zerolog.Logger
}

var (
	_ chat.MessageAPI = (*Client)(nil)
	_ chat.RoomAPI    = (*Client)(nil)
)

// NewClient constructs a Client for the given API base URL. A non-positive
// timeout falls back to DefaultRequestTimeout.
func NewClient(baseURL string, sess session.Provider, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}

	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		sess:       sess,
		logger:     logx.Logger().With().Str("component", "RESTClient").Logger(),
	}
}

// envelope is the standardized JSON response structure returned by the backend.
type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// ListRooms fetches all conversation rooms for the current user, with embedded
// last-message summaries and unread counts.
func (c *Client) ListRooms(ctx context.Context) ([]chat.Room, error) {
	var rooms []chat.Room
	if err := c.do(ctx, http.MethodGet, "/api/chat/rooms", nil, &rooms); err != nil {
		return nil, err
	}
	return rooms, nil
}

// ListMessages fetches the ordered message records of a room.
func (c *Client) ListMessages(ctx context.Context, roomID string) ([]chat.MessageRecord, error) {
	path := fmt.Sprintf("/api/chat/rooms/%s/messages", url.PathEscape(roomID))

	var records []chat.MessageRecord
	if err := c.do(ctx, http.MethodGet, path, nil, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// CreateMessage issues the durable message write.
func (c *Client) CreateMessage(ctx context.Context, input chat.CreateMessageInput) error {
	return c.do(ctx, http.MethodPost, "/api/chat/messages", input, nil)
}

// markReadInput carries a read-state write.
type markReadInput struct {
	ReaderID   string `json:"reader_id"`
	ReaderKind string `json:"reader_type"`
}

// MarkRoomRead zeroes a room's unread counter server-side.
func (c *Client) MarkRoomRead(ctx context.Context, roomID string, reader session.Identity) error {
	path := fmt.Sprintf("/api/chat/rooms/%s/read", url.PathEscape(roomID))

	input := markReadInput{
		ReaderID:   reader.ID,
		ReaderKind: string(reader.Kind),
	}

	return c.do(ctx, http.MethodPost, path, input, nil)
}

// do performs one request: marshals the input, attaches the bearer token,
// checks the HTTP status and envelope code, and unmarshals the data payload.
func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var bodyReader io.Reader

	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		bodyReader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.sess.Token())
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request to %s %s failed: %w", method, path, err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		c.logger.Warn().
			Int("status", res.StatusCode).
			Str("method", method).
			Str("path", path).
			Msg("Unexpected HTTP status from backend")
		return fmt.Errorf("unexpected status %d from %s %s", res.StatusCode, method, path)
	}

	var env envelope
	if err := json.NewDecoder(res.Body).Decode(&env); err != nil {
		return fmt.Errorf("failed to decode response from %s %s: %w", method, path, err)
	}

	if env.Code != 0 {
		return fmt.Errorf("backend error %d from %s %s: %s", env.Code, method, path, env.Message)
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("failed to decode data payload from %s %s: %w", method, path, err)
		}
	}

	return nil
}
