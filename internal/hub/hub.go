package hub

import (
	"encoding/json"
	"sync"
)

// Event represents a real-time event to be sent to clients.
type Event struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// Client represents a single client connection (a participant viewing a
// message thread). It's essentially a channel that the SSE handler will
// listen to.
type Client chan []byte

// Hub manages the open message threads and their connected viewers.
type Hub struct {
	threads map[uint]map[Client]bool
	mu      sync.RWMutex
}

// GlobalHub is the singleton instance of our Hub.
var GlobalHub = NewHub()

// NewHub creates a new Hub.
func NewHub() *Hub {
	return &Hub{
		threads: make(map[uint]map[Client]bool),
	}
}

// Subscribe adds a new client to a specific thread.
func (h *Hub) Subscribe(threadID uint, client Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.threads[threadID]; !ok {
		h.threads[threadID] = make(map[Client]bool)
	}
	h.threads[threadID][client] = true
}

// Unsubscribe removes a client from a thread.
func (h *Hub) Unsubscribe(threadID uint, client Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if clients, ok := h.threads[threadID]; ok {
		if _, ok := clients[client]; ok {
			delete(clients, client)
			close(client) // Close the channel to signal the SSE handler to stop.
			if len(clients) == 0 {
				delete(h.threads, threadID)
			}
		}
	}
}

// Broadcast sends an event to all clients viewing a specific thread.
// Delivery is best effort: a slow or gone client never blocks the hub.
func (h *Hub) Broadcast(threadID uint, event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if clients, ok := h.threads[threadID]; ok {
		messageBytes, err := json.Marshal(event)
		if err != nil {
			return
		}

		for client := range clients {
			select {
			case client <- messageBytes:
			default:
				// Client channel is full; the unsubscribe logic will
				// clean this up eventually.
			}
		}
	}
}
