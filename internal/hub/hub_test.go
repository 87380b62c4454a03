package hub

import (
	"encoding/json"
	"testing"

	"github.com/AbdelalimB1729/The-Math-Council/internal/domain"
)

func newTestClient(id string) *client {
	return &client{id: id, send: make(chan []byte, 4)}
}

func receiveEvent(t *testing.T, c *client) Event {
	t.Helper()
	select {
	case data := <-c.send:
		var event Event
		if err := json.Unmarshal(data, &event); err != nil {
			t.Fatalf("Failed to decode event: %v", err)
		}
		return event
	default:
		t.Fatal("Expected a queued event, got none")
		return Event{}
	}
}

func TestJoinAndBroadcast(t *testing.T) {
	h := New()
	a := newTestClient("a")
	b := newTestClient("b")
	h.join(1, a)
	h.join(1, b)

	if got := h.Listeners(1); got != 2 {
		t.Fatalf("Expected 2 listeners, got %d", got)
	}

	h.Broadcast(1, EventTyping, "Professor Euclid")

	for _, c := range []*client{a, b} {
		event := receiveEvent(t, c)
		if event.Type != EventTyping || event.SessionID != 1 {
			t.Errorf("Unexpected event %+v for client %s", event, c.id)
		}
		if event.Payload != "Professor Euclid" {
			t.Errorf("Unexpected payload %v", event.Payload)
		}
	}
}

func TestBroadcastScopedToSession(t *testing.T) {
	h := New()
	a := newTestClient("a")
	b := newTestClient("b")
	h.join(1, a)
	h.join(2, b)

	h.Broadcast(1, EventDebateComplete, nil)

	receiveEvent(t, a)
	select {
	case data := <-b.send:
		t.Errorf("Client in another session received event: %s", data)
	default:
	}
}

func TestLeaveStopsDelivery(t *testing.T) {
	h := New()
	c := newTestClient("a")
	h.join(1, c)
	h.leave(1, c)

	if got := h.Listeners(1); got != 0 {
		t.Fatalf("Expected 0 listeners after leave, got %d", got)
	}

	h.Broadcast(1, EventTyping, "x")
	select {
	case data := <-c.send:
		t.Errorf("Departed client received event: %s", data)
	default:
	}

	// Leaving twice is a no-op.
	h.leave(1, c)
}

func TestSlowListenerDropsEvents(t *testing.T) {
	h := New()
	c := &client{id: "slow", send: make(chan []byte, 1)}
	h.join(1, c)

	// The second broadcast must not block on the full queue.
	h.Broadcast(1, EventTyping, "first")
	h.Broadcast(1, EventTyping, "second")

	event := receiveEvent(t, c)
	if event.Payload != "first" {
		t.Errorf("Expected the first event to survive, got %v", event.Payload)
	}
	select {
	case data := <-c.send:
		t.Errorf("Expected overflow event to be dropped, got %s", data)
	default:
	}
}

func TestNotifierEventTypes(t *testing.T) {
	h := New()
	c := newTestClient("a")
	h.join(7, c)

	h.Typing(7, "Dr. Chaos")
	if event := receiveEvent(t, c); event.Type != EventTyping {
		t.Errorf("Expected %q, got %q", EventTyping, event.Type)
	}

	h.NewMessage(7, &domain.Message{SessionID: 7, Content: "hello"})
	event := receiveEvent(t, c)
	if event.Type != EventNewMessage {
		t.Errorf("Expected %q, got %q", EventNewMessage, event.Type)
	}
	payload, ok := event.Payload.(map[string]any)
	if !ok || payload["content"] != "hello" {
		t.Errorf("Unexpected message payload %v", event.Payload)
	}

	h.DebateComplete(7)
	if event := receiveEvent(t, c); event.Type != EventDebateComplete {
		t.Errorf("Expected %q, got %q", EventDebateComplete, event.Type)
	}
}
