package api

import "sync"

const clientBuffer = 64

// Hub fans session updates out to the stream clients watching a session.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]map[*Client]struct{}
}

// Client is one stream subscription. Send is closed on Unregister.
type Client struct {
	SessionID string
	Send      chan []byte
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{clients: map[string]map[*Client]struct{}{}}
}

// Register subscribes a new client to sessionID.
func (h *Hub) Register(sessionID string) *Client {
	c := &Client{SessionID: sessionID, Send: make(chan []byte, clientBuffer)}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[sessionID] == nil {
		h.clients[sessionID] = map[*Client]struct{}{}
	}
	h.clients[sessionID][c] = struct{}{}
	return c
}

// Unregister removes c and closes its Send channel.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	subs, ok := h.clients[c.SessionID]
	if !ok {
		return
	}
	if _, ok := subs[c]; !ok {
		return
	}
	delete(subs, c)
	if len(subs) == 0 {
		delete(h.clients, c.SessionID)
	}
	close(c.Send)
}

// Broadcast delivers payload to every client of sessionID. Slow clients miss
// messages rather than block the sender.
func (h *Hub) Broadcast(sessionID string, payload []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients[sessionID] {
		select {
		case c.Send <- payload:
		default:
		}
	}
}

// Count returns the number of clients watching sessionID.
func (h *Hub) Count(sessionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[sessionID])
}
