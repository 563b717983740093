// Package hub fans out live notifications (recenter requests, bin
// updates, route changes) to connected dashboard viewers.
package hub

import (
	"sync"
	"sync/atomic"
	"time"
)

// Notification kinds.
const (
	KindRecenter  = "recenter"
	KindBin       = "bin"
	KindRoute     = "route"
	KindDashboard = "dashboard"
)

const defaultClientBuffer = 32

// Notification is one pushed message.
type Notification struct {
	ID   int64     `json:"id"`
	Kind string    `json:"type"`
	Data any       `json:"data,omitempty"`
	At   time.Time `json:"at"`
}

// Hub distributes notifications to subscribers. Slow subscribers lose
// notifications instead of blocking the publisher.
type Hub struct {
	mu      sync.RWMutex
	clients map[int64]chan Notification
	nextSub int64
	nextID  atomic.Int64
	buffer  int
	dropped atomic.Int64
}

func New() *Hub {
	return &Hub{
		clients: make(map[int64]chan Notification),
		buffer:  defaultClientBuffer,
	}
}

// Subscribe registers a viewer. The returned cancel func unregisters it
// and closes the channel; it is safe to call more than once.
func (h *Hub) Subscribe() (<-chan Notification, func()) {
	ch := make(chan Notification, h.buffer)

	h.mu.Lock()
	h.nextSub++
	id := h.nextSub
	h.clients[id] = ch
	h.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.clients, id)
			h.mu.Unlock()
			close(ch)
		})
	}
}

// Notify publishes a notification to every subscriber.
func (h *Hub) Notify(kind string, data any) {
	n := Notification{
		ID:   h.nextID.Add(1),
		Kind: kind,
		Data: data,
		At:   time.Now().UTC(),
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, ch := range h.clients {
		select {
		case ch <- n:
		default:
			h.dropped.Add(1)
		}
	}
}

// Subscribers returns the number of connected viewers.
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Dropped returns how many deliveries were skipped for slow viewers.
func (h *Hub) Dropped() int64 {
	return h.dropped.Load()
}
