package ws

import (
	"log/slog"
	"sync"

	"github.com/wanheng20031114/whgame-Tetris/internal/model"
	"github.com/wanheng20031114/whgame-Tetris/internal/protocol"
)

// Sender delivers envelopes to connected players. The relay depends on
// this rather than the hub so tests can capture outbound traffic.
type Sender interface {
	SendTo(id model.PlayerID, env protocol.Envelope) bool
	// ForEach visits every connected player.
	ForEach(fn func(id model.PlayerID))
}

// Hub tracks live websocket clients by player ID. A player has at most
// one connection; a newer connection evicts the older one.
type Hub struct {
	mu      sync.RWMutex
	clients map[model.PlayerID]*Client
	logger  *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		clients: make(map[model.PlayerID]*Client),
		logger:  logger.With(slog.String("component", "ws-hub")),
	}
}

// add registers a client, returning any previous connection for the same
// player so the caller can close it.
func (h *Hub) add(c *Client) *Client {
	h.mu.Lock()
	defer h.mu.Unlock()
	prev := h.clients[c.player.ID]
	h.clients[c.player.ID] = c
	return prev
}

// remove unregisters a client. A stale client (already evicted by a
// reconnect) is left alone.
func (h *Hub) remove(c *Client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[c.player.ID] != c {
		return false
	}
	delete(h.clients, c.player.ID)
	return true
}

// SendTo queues an envelope for a connected player. Returns false if the
// player has no live connection or its send buffer is full.
func (h *Hub) SendTo(id model.PlayerID, env protocol.Envelope) bool {
	h.mu.RLock()
	c, ok := h.clients[id]
	h.mu.RUnlock()
	if !ok {
		return false
	}

	select {
	case c.send <- env:
		return true
	default:
		h.logger.Warn("dropping message for slow client",
			slog.String("player", string(id)),
			slog.String("type", string(env.Type)))
		return false
	}
}

// ForEach visits every connected player. The visit runs on a snapshot
// so fn may send without holding the hub lock.
func (h *Hub) ForEach(fn func(id model.PlayerID)) {
	h.mu.RLock()
	ids := make([]model.PlayerID, 0, len(h.clients))
	for id := range h.clients {
		ids = append(ids, id)
	}
	h.mu.RUnlock()

	for _, id := range ids {
		fn(id)
	}
}

// Connected reports whether a player has a live connection.
func (h *Hub) Connected(id model.PlayerID) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.clients[id]
	return ok
}

// Count returns the number of live connections.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
