package hub

import (
	"encoding/json"
	"sort"
	"sync"
)

// Event represents a real-time event to be sent to clients.
type Event struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// Client represents a single client connection. The websocket write pump
// drains this channel; closing it tells the pump to shut the socket down.
type Client chan []byte

type connection struct {
	username string // empty until the connection joins the chat
	client   Client
}

// Hub tracks live connections and fans events out to them. A username may
// hold any number of concurrent connections.
type Hub struct {
	mu    sync.RWMutex
	conns map[string]*connection
}

// NewHub creates a new Hub.
func NewHub() *Hub {
	return &Hub{conns: make(map[string]*connection)}
}

// Subscribe registers a new connection. It carries no identity until
// Attach is called.
func (h *Hub) Subscribe(connID string, client Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.conns[connID] = &connection{client: client}
}

// Attach binds a connection to a username after a successful join.
func (h *Hub) Attach(connID, username string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if c, ok := h.conns[connID]; ok {
		c.username = username
	}
}

// Unsubscribe removes a connection and closes its channel. Returns the
// username it carried and whether it was the user's last connection.
// Safe to call twice for the same connection.
func (h *Hub) Unsubscribe(connID string) (username string, last bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	c, ok := h.conns[connID]
	if !ok {
		return "", false
	}
	delete(h.conns, connID)
	close(c.client)

	if c.username == "" {
		return "", false
	}
	for _, other := range h.conns {
		if other.username == c.username {
			return c.username, false
		}
	}
	return c.username, true
}

// Broadcast sends an event to every connection that has joined the chat.
func (h *Hub) Broadcast(event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	messageBytes, err := json.Marshal(event)
	if err != nil {
		return
	}
	for _, c := range h.conns {
		if c.username == "" {
			continue
		}
		send(c.client, messageBytes)
	}
}

// SendTo delivers an event to a single connection, joined or not.
func (h *Hub) SendTo(connID string, event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	c, ok := h.conns[connID]
	if !ok {
		return
	}
	messageBytes, err := json.Marshal(event)
	if err != nil {
		return
	}
	send(c.client, messageBytes)
}

// SendToUser delivers an event to every connection a user holds.
func (h *Hub) SendToUser(username string, event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	messageBytes, err := json.Marshal(event)
	if err != nil {
		return
	}
	for _, c := range h.conns {
		if c.username == username {
			send(c.client, messageBytes)
		}
	}
}

// ConnectionsOf returns the connection IDs a user currently holds.
func (h *Hub) ConnectionsOf(username string) []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	var ids []string
	for id, c := range h.conns {
		if c.username == username {
			ids = append(ids, id)
		}
	}
	return ids
}

// IsOnline reports whether a user holds at least one joined connection.
func (h *Hub) IsOnline(username string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, c := range h.conns {
		if c.username == username {
			return true
		}
	}
	return false
}

// Online returns the sorted usernames with at least one joined connection.
func (h *Hub) Online() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	seen := make(map[string]bool)
	for _, c := range h.conns {
		if c.username != "" {
			seen[c.username] = true
		}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// send is non-blocking so a slow client never stalls the dispatcher. The
// unsubscribe path cleans up clients that stop draining.
func send(client Client, msg []byte) {
	select {
	case client <- msg:
	default:
	}
}
