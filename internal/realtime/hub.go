// Package realtime pushes roster and procedure changes to connected
// browsers over WebSockets.
package realtime

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"
)

// Event names broadcast to clients.
const (
	EventDoctorUpdated    = "server:doctor_updated"
	EventDoctorDeleted    = "server:doctor_deleted"
	EventProcedureUpdated = "server:procedure_updated"
	EventProcedureDeleted = "server:procedure_deleted"
)

// sendBuffer is the number of frames queued per client before drops.
const sendBuffer = 256

// Event is one frame sent to every client.
type Event struct {
	Type      string          `json:"type"`
	ID        string          `json:"id,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// Client is one connected browser.
type Client struct {
	ID   string
	Send chan []byte
}

// NewClient creates a client with a buffered send queue.
func NewClient(id string) *Client {
	return &Client{ID: id, Send: make(chan []byte, sendBuffer)}
}

// Hub tracks connected clients and fans events out to all of them.
// Broadcasts never block: a client whose queue is full misses the frame.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}
	now     func() time.Time
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		clients: make(map[*Client]struct{}),
		now:     time.Now,
	}
}

// Register adds a client.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c] = struct{}{}
}

// Unregister removes a client and closes its send queue. It is safe to
// call more than once.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	close(c.Send)
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Broadcast sends an event to every client.
func (h *Hub) Broadcast(e Event) {
	data, err := json.Marshal(e)
	if err != nil {
		slog.Error("encoding realtime event", "type", e.Type, "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.clients {
		select {
		case c.Send <- data:
		default:
			slog.Debug("realtime client queue full, dropping event", "client", c.ID, "type", e.Type)
		}
	}
}

func (h *Hub) publish(eventType, id string, payload interface{}) {
	e := Event{Type: eventType, ID: id, Timestamp: h.now().UTC()}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			slog.Error("encoding realtime payload", "type", eventType, "error", err)
			return
		}
		e.Data = data
	}
	h.Broadcast(e)
}
