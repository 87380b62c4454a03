package hub

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/coder/websocket"
	"github.com/google/uuid"
)

// sendQueueSize bounds the per-listener event queue.
const sendQueueSize = 32

// wsMessage is the control message a listener sends over the socket.
type wsMessage struct {
	Type      string `json:"type"`
	SessionID int64  `json:"session_id,omitempty"`
}

// WebSocketHandler upgrades HTTP requests into hub listener connections.
// Clients join and leave session rooms with JSON control messages, mirroring
// socket.io room semantics.
type WebSocketHandler struct {
	hub           *Hub
	allowedOrigin string
	isDev         bool
}

// NewWebSocketHandler creates a WebSocket handler backed by the hub.
func NewWebSocketHandler(h *Hub, allowedOrigin string, isDev bool) *WebSocketHandler {
	return &WebSocketHandler{
		hub:           h,
		allowedOrigin: allowedOrigin,
		isDev:         isDev,
	}
}

// ServeHTTP implements http.Handler for WebSocket upgrade.
func (h *WebSocketHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !h.checkOrigin(r) {
		http.Error(w, "origin not allowed", http.StatusForbidden)
		return
	}

	ws, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		slog.Error("Failed to accept WebSocket", "error", err, "ip", r.RemoteAddr)
		return
	}
	defer func() {
		if closeErr := ws.Close(websocket.StatusNormalClosure, "connection ended"); closeErr != nil {
			slog.Debug("Failed to close websocket", "error", closeErr)
		}
	}()

	c := &client{
		id:   uuid.NewString(),
		send: make(chan []byte, sendQueueSize),
	}
	slog.Info("Listener connected", "client_id", c.id, "ip", r.RemoteAddr)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// Rooms this connection has joined, for cleanup on disconnect.
	joined := make(map[int64]struct{})
	defer func() {
		for sessionID := range joined {
			h.hub.leave(sessionID, c)
		}
	}()

	go h.writeLoop(ctx, ws, c)
	h.readLoop(ctx, ws, c, joined)

	slog.Info("Listener disconnected", "client_id", c.id)
}

func (h *WebSocketHandler) checkOrigin(r *http.Request) bool {
	if h.isDev {
		return true
	}
	origin := r.Header.Get("Origin")
	if origin == "" || h.allowedOrigin == "*" || origin == h.allowedOrigin {
		return true
	}
	slog.Warn("WebSocket origin rejected", "origin", origin, "allowed", h.allowedOrigin)
	return false
}

func (h *WebSocketHandler) readLoop(ctx context.Context, ws *websocket.Conn, c *client, joined map[int64]struct{}) {
	for {
		_, data, err := ws.Read(ctx)
		if err != nil {
			if websocket.CloseStatus(err) != -1 {
				slog.Debug("WebSocket closed by client", "client_id", c.id)
			} else {
				slog.Debug("WebSocket read error", "error", err, "client_id", c.id)
			}
			return
		}

		var msg wsMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			slog.Debug("Ignoring malformed control message", "client_id", c.id, "error", err)
			continue
		}

		switch msg.Type {
		case "join":
			if msg.SessionID > 0 {
				h.hub.join(msg.SessionID, c)
				joined[msg.SessionID] = struct{}{}
			}
		case "leave":
			if _, ok := joined[msg.SessionID]; ok {
				h.hub.leave(msg.SessionID, c)
				delete(joined, msg.SessionID)
			}
		case "ping":
			if err := h.writeJSON(ws, map[string]string{"type": "pong"}); err != nil {
				slog.Debug("Failed to send pong", "error", err, "client_id", c.id)
			}
		}
	}
}

func (h *WebSocketHandler) writeLoop(ctx context.Context, ws *websocket.Conn, c *client) {
	for {
		select {
		case <-ctx.Done():
			return
		case data := <-c.send:
			if err := ws.Write(ctx, websocket.MessageText, data); err != nil {
				slog.Debug("WebSocket write error", "error", err, "client_id", c.id)
				return
			}
		}
	}
}

func (h *WebSocketHandler) writeJSON(ws *websocket.Conn, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return ws.Write(context.Background(), websocket.MessageText, data)
}
