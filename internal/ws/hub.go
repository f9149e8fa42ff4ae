package ws

import (
	"sync"

	"go.uber.org/zap"
)

// Hub is pure connection bookkeeping: registering and unregistering
// live Clients and reporting how many are connected. Per-player fog of
// war no longer lives here — it moved to game.Update.Filtered, computed
// once per tick inside the owning Runner — so unlike the originating
// project's Hub, this one never touches game state or broadcasts.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}
	log     *zap.SugaredLogger
}

// NewHub builds an empty Hub.
func NewHub(log *zap.SugaredLogger) *Hub {
	return &Hub{
		clients: make(map[*Client]struct{}),
		log:     log,
	}
}

// Register records a newly-upgraded client.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c] = struct{}{}
	h.log.Infow("client connected", "client", c.ID)
}

// Unregister drops a client, idempotently.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		h.log.Infow("client disconnected", "client", c.ID)
	}
}

// Count returns the number of currently-connected clients.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
