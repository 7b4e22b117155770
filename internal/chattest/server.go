/*
Package chattest provides an in-process fake portal backend for package tests.

It serves the durable chat endpoints behind the portal's JSON envelope and a
WebSocket endpoint per room, and exposes knobs to fail individual operations,
push frames to connected clients, and drop connections abnormally.
*/
package chattest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"coachchat/internal/app/chat"
)

// Server is the fake backend. All exported mutators are safe for concurrent use.
type Server struct {
	httpServer *httptest.Server
	upgrader   websocket.Upgrader

	mu       sync.Mutex
	rooms    []chat.Room
	messages map[string][]chat.MessageRecord
	conns    map[string][]*websocket.Conn
	tokens   map[string][]string
	dials    map[string]int
	nextID   int

	createCalls   int
	markReadCalls map[string]int

	failCreate       bool
	failMarkRead     bool
	failListRooms    bool
	failListMessages bool
}

// NewServer starts the fake backend.
func NewServer() *Server {
	s := &Server{
		upgrader:      websocket.Upgrader{ReadBufferSize: 4096, WriteBufferSize: 4096},
		messages:      make(map[string][]chat.MessageRecord),
		conns:         make(map[string][]*websocket.Conn),
		tokens:        make(map[string][]string),
		dials:         make(map[string]int),
		markReadCalls: make(map[string]int),
	}

	r := chi.NewRouter()
	r.Get("/api/chat/rooms", s.handleListRooms)
	r.Get("/api/chat/rooms/{roomID}/messages", s.handleListMessages)
	r.Post("/api/chat/messages", s.handleCreateMessage)
	r.Post("/api/chat/rooms/{roomID}/read", s.handleMarkRead)
	r.Get("/ws/chat/{roomID}/", s.handleWebSocket)

	s.httpServer = httptest.NewServer(r)
	return s
}

// URL returns the REST base URL.
func (s *Server) URL() string {
	return s.httpServer.URL
}

// WSURL returns the live-connection base URL.
func (s *Server) WSURL() string {
	return "ws" + strings.TrimPrefix(s.httpServer.URL, "http")
}

// Close shuts the backend down, dropping all live connections.
func (s *Server) Close() {
	s.mu.Lock()
	for _, conns := range s.conns {
		for _, conn := range conns {
			conn.Close()
		}
	}
	s.conns = make(map[string][]*websocket.Conn)
	s.mu.Unlock()

	s.httpServer.Close()
}

// --- Seeding and knobs ---

// SeedRoom registers a room for the list endpoint.
func (s *Server) SeedRoom(room chat.Room) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rooms = append(s.rooms, room)
}

// SeedMessages replaces the durable message history of a room.
func (s *Server) SeedMessages(roomID string, records []chat.MessageRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages[roomID] = append([]chat.MessageRecord(nil), records...)
}

// SetFailCreate makes the create-message endpoint fail with a 500.
func (s *Server) SetFailCreate(fail bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failCreate = fail
}

// SetFailMarkRead makes the mark-read endpoint fail with a 500.
func (s *Server) SetFailMarkRead(fail bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failMarkRead = fail
}

// SetFailListRooms makes the room list endpoint fail with a 500.
func (s *Server) SetFailListRooms(fail bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failListRooms = fail
}

// SetFailListMessages makes the message list endpoint fail with a 500.
func (s *Server) SetFailListMessages(fail bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failListMessages = fail
}

// --- Observations ---

// CreateCalls returns how many create-message requests were received.
func (s *Server) CreateCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.createCalls
}

// MarkReadCalls returns how many mark-read requests a room received.
func (s *Server) MarkReadCalls(roomID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.markReadCalls[roomID]
}

// DialCount returns how many live connections a room received.
func (s *Server) DialCount(roomID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dials[roomID]
}

// AuthTokens returns the tokens received in authentication frames for a room,
// in connection order.
func (s *Server) AuthTokens(roomID string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.tokens[roomID]...)
}

// --- Live connection control ---

// Push writes one JSON frame to every live connection of a room.
func (s *Server) Push(roomID string, frame any) error {
	s.mu.Lock()
	conns := append([]*websocket.Conn(nil), s.conns[roomID]...)
	s.mu.Unlock()

	for _, conn := range conns {
		conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
		if err := conn.WriteJSON(frame); err != nil {
			return err
		}
	}
	return nil
}

// PushRaw writes one raw text frame to every live connection of a room.
func (s *Server) PushRaw(roomID string, data []byte) error {
	s.mu.Lock()
	conns := append([]*websocket.Conn(nil), s.conns[roomID]...)
	s.mu.Unlock()

	for _, conn := range conns {
		conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			return err
		}
	}
	return nil
}

// PushChatMessage pushes a well-formed chat_message frame to a room.
func (s *Server) PushChatMessage(roomID, messageID, body, senderID, senderKind string, timestamp int64) error {
	return s.Push(roomID, map[string]any{
		"type":        "chat_message",
		"message_id":  messageID,
		"message":     body,
		"sender_id":   senderID,
		"sender_type": senderKind,
		"timestamp":   timestamp,
	})
}

// DropConnections closes every live connection of a room without a close
// frame, which clients observe as an abnormal close.
func (s *Server) DropConnections(roomID string) {
	s.mu.Lock()
	conns := s.conns[roomID]
	s.conns[roomID] = nil
	s.mu.Unlock()

	for _, conn := range conns {
		conn.Close()
	}
}

// CloseConnectionsNormally sends a normal close frame to every live connection
// of a room, then closes them.
func (s *Server) CloseConnectionsNormally(roomID string) {
	s.mu.Lock()
	conns := s.conns[roomID]
	s.conns[roomID] = nil
	s.mu.Unlock()

	for _, conn := range conns {
		conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
		conn.WriteMessage(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye"),
		)
		conn.Close()
	}
}

// --- Handlers ---

func (s *Server) handleListRooms(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	fail := s.failListRooms
	rooms := append([]chat.Room(nil), s.rooms...)
	s.mu.Unlock()

	if fail {
		respondError(w, http.StatusInternalServerError, 5000, "list rooms unavailable")
		return
	}
	respondSuccess(w, rooms)
}

func (s *Server) handleListMessages(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "roomID")

	s.mu.Lock()
	fail := s.failListMessages
	records := append([]chat.MessageRecord(nil), s.messages[roomID]...)
	s.mu.Unlock()

	if fail {
		respondError(w, http.StatusInternalServerError, 5000, "list messages unavailable")
		return
	}
	respondSuccess(w, records)
}

func (s *Server) handleCreateMessage(w http.ResponseWriter, r *http.Request) {
	var input chat.CreateMessageInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondError(w, http.StatusBadRequest, 1003, "invalid JSON")
		return
	}

	s.mu.Lock()
	s.createCalls++
	fail := s.failCreate
	if !fail {
		s.nextID++
		s.messages[input.RoomID] = append(s.messages[input.RoomID], chat.MessageRecord{
			ID:         fmt.Sprintf("D%d", s.nextID),
			RoomID:     input.RoomID,
			Body:       input.Body,
			SenderID:   input.SenderID,
			SenderKind: input.SenderKind,
			CreatedAt:  time.Now().UTC(),
		})
	}
	s.mu.Unlock()

	if fail {
		respondError(w, http.StatusInternalServerError, 5000, "create unavailable")
		return
	}
	respondSuccess(w, nil)
}

func (s *Server) handleMarkRead(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "roomID")

	s.mu.Lock()
	s.markReadCalls[roomID]++
	fail := s.failMarkRead
	if !fail {
		for i := range s.rooms {
			if s.rooms[i].ID == roomID {
				s.rooms[i].UnreadCount = 0
			}
		}
	}
	s.mu.Unlock()

	if fail {
		respondError(w, http.StatusInternalServerError, 5000, "mark read unavailable")
		return
	}
	respondSuccess(w, nil)
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "roomID")

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	s.mu.Lock()
	s.dials[roomID]++
	s.conns[roomID] = append(s.conns[roomID], conn)
	s.mu.Unlock()

	go s.readLoop(roomID, conn)
}

// readLoop consumes inbound frames, recording the token from the
// authentication frame and answering pings, until the connection drops.
func (s *Server) readLoop(roomID string, conn *websocket.Conn) {
	defer func() {
		s.mu.Lock()
		remaining := s.conns[roomID][:0]
		for _, c := range s.conns[roomID] {
			if c != conn {
				remaining = append(remaining, c)
			}
		}
		s.conns[roomID] = remaining
		s.mu.Unlock()

		conn.Close()
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}

		var frame struct {
			Type  string `json:"type"`
			Token string `json:"token"`
		}
		if err := json.Unmarshal(data, &frame); err != nil {
			continue
		}

		if frame.Type == "auth" {
			s.mu.Lock()
			s.tokens[roomID] = append(s.tokens[roomID], frame.Token)
			s.mu.Unlock()
		}
	}
}

// --- Envelope helpers ---

type jsonResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func respondSuccess(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(jsonResponse{Code: 0, Message: "success", Data: data})
}

func respondError(w http.ResponseWriter, status, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(jsonResponse{Code: code, Message: message})
}
