package web

import (
	"sync"

	"github.com/RevCBH/planrate/internal/events"
)

// clientBuffer is the number of events a slow subscriber may fall behind
// before it starts missing them.
const clientBuffer = 64

// Hub fans bus events out to /api/events subscribers. Broadcast never
// blocks: a subscriber with a full buffer misses the event.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}
	stopped bool
}

// Client is one subscriber connection
type Client struct {
	id     string
	events chan events.JSONEvent
}

// NewHub creates an empty hub
func NewHub() *Hub {
	return &Hub{clients: make(map[*Client]struct{})}
}

// NewClient creates a subscriber
func NewClient(id string) *Client {
	return &Client{id: id, events: make(chan events.JSONEvent, clientBuffer)}
}

// Register adds c. It returns false once the hub is stopped.
func (h *Hub) Register(c *Client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.stopped {
		return false
	}
	h.clients[c] = struct{}{}
	return true
}

// Unregister removes c and closes its channel
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.events)
	}
}

// Broadcast offers e to every subscriber
func (h *Hub) Broadcast(e events.JSONEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		select {
		case c.events <- e:
		default:
		}
	}
}

// Stop closes every subscriber and refuses new ones. Safe to call twice.
func (h *Hub) Stop() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.stopped {
		return
	}
	h.stopped = true
	for c := range h.clients {
		close(c.events)
		delete(h.clients, c)
	}
}

// Handler subscribes the hub to an events.Bus
func (h *Hub) Handler() events.Handler {
	return func(e events.Event) {
		h.Broadcast(events.ToJSONEvent(e))
	}
}

// Count returns the number of subscribers
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
