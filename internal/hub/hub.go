// Package hub provides best-effort WebSocket broadcast of debate events to
// listeners grouped by session.
package hub

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/AbdelalimB1729/The-Math-Council/internal/debate"
	"github.com/AbdelalimB1729/The-Math-Council/internal/domain"
)

// Event kinds broadcast to session listeners.
const (
	EventTyping         = "typing"
	EventNewMessage     = "new-message"
	EventSessionUpdated = "session-updated"
	EventDebateComplete = "debate-complete"
)

// Event is the wire format pushed to listeners.
type Event struct {
	Type      string `json:"type"`
	SessionID int64  `json:"session_id"`
	Payload   any    `json:"payload,omitempty"`
}

// client is one connected listener. Events are queued on a buffered channel
// drained by the connection's write loop; a slow listener loses events
// rather than stalling the broadcaster.
type client struct {
	id   string
	send chan []byte
}

// Hub tracks listeners by session ID. Delivery is fire-and-forget: nothing
// is acknowledged and the orchestrator never blocks on a broadcast.
type Hub struct {
	mu    sync.RWMutex
	rooms map[int64]map[string]*client
}

// New creates an empty hub.
func New() *Hub {
	return &Hub{
		rooms: make(map[int64]map[string]*client),
	}
}

// join subscribes a client to a session's events.
func (h *Hub) join(sessionID int64, c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	room, ok := h.rooms[sessionID]
	if !ok {
		room = make(map[string]*client)
		h.rooms[sessionID] = room
	}
	room[c.id] = c
	slog.Info("Listener joined session", "session_id", sessionID, "client_id", c.id)
}

// leave unsubscribes a client from a session's events.
func (h *Hub) leave(sessionID int64, c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	room, ok := h.rooms[sessionID]
	if !ok {
		return
	}
	if _, exists := room[c.id]; exists {
		delete(room, c.id)
		if len(room) == 0 {
			delete(h.rooms, sessionID)
		}
		slog.Info("Listener left session", "session_id", sessionID, "client_id", c.id)
	}
}

// Listeners returns the number of clients subscribed to a session.
func (h *Hub) Listeners(sessionID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[sessionID])
}

// Broadcast queues an event for every listener of the session. Events for
// listeners whose queues are full are dropped.
func (h *Hub) Broadcast(sessionID int64, eventType string, payload any) {
	data, err := json.Marshal(Event{
		Type:      eventType,
		SessionID: sessionID,
		Payload:   payload,
	})
	if err != nil {
		slog.Error("Failed to encode event", "type", eventType, "session_id", sessionID, "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, c := range h.rooms[sessionID] {
		select {
		case c.send <- data:
		default:
			slog.Debug("Dropping event for slow listener",
				"type", eventType, "session_id", sessionID, "client_id", c.id)
		}
	}
}

// Typing implements debate.Notifier.
func (h *Hub) Typing(sessionID int64, speaker string) {
	h.Broadcast(sessionID, EventTyping, speaker)
}

// NewMessage implements debate.Notifier.
func (h *Hub) NewMessage(sessionID int64, message *domain.Message) {
	h.Broadcast(sessionID, EventNewMessage, message)
}

// SessionUpdated implements debate.Notifier.
func (h *Hub) SessionUpdated(sessionID int64, status *debate.Status) {
	h.Broadcast(sessionID, EventSessionUpdated, status)
}

// DebateComplete implements debate.Notifier.
func (h *Hub) DebateComplete(sessionID int64) {
	h.Broadcast(sessionID, EventDebateComplete, nil)
}

// Ensure Hub satisfies the orchestrator's notifier contract.
var _ debate.Notifier = (*Hub)(nil)
