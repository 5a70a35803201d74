// Package events carries the shared broadcast channel: every event published
// by any connected client is relayed verbatim to all clients. There is no
// per-session scoping; the whole server behaves as one room.
package events

import (
	"encoding/json"
	"sync"

	"github.com/google/uuid"
)

// Event is the wire shape relayed between clients. Data is kept raw so the
// relay never reinterprets payloads.
type Event struct {
	Name string          `json:"event"`
	Data json.RawMessage `json:"data,omitempty"`
}

type Hub struct {
	mu   sync.RWMutex
	subs map[string]chan Event
}

func NewHub() *Hub {
	return &Hub{subs: map[string]chan Event{}}
}

// Subscribe registers a new client and returns its ID, a read-only event
// channel, and a cancel function to unsubscribe.
func (h *Hub) Subscribe() (string, <-chan Event, func()) {
	id := uuid.NewString()
	ch := make(chan Event, 32)

	h.mu.Lock()
	h.subs[id] = ch
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		if current, ok := h.subs[id]; ok {
			delete(h.subs, id)
			close(current)
		}
		h.mu.Unlock()
	}

	return id, ch, cancel
}

// Publish delivers the event to every subscriber, the sender included.
// Slow receivers are silently dropped.
func (h *Hub) Publish(ev Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, ch := range h.subs {
		select {
		case ch <- ev:
		default:
			// Drop if receiver is slow.
		}
	}
}

// Len reports the number of connected subscribers.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}
