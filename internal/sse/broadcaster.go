package sse

import (
	"sync"
	"time"

	"github.com/vampire-games/vampired/internal/engine"
)

const sendTimeout = 2 * time.Second

// Event is one named push notification for a game, carrying the same
// snapshot the triggering request returned.
type Event struct {
	Name     string           `json:"name"`
	GameID   string           `json:"gameId"`
	Snapshot *engine.Snapshot `json:"snapshot,omitempty"`
}

func NewHub() *Hub {
	return &Hub{clients: map[string]map[chan Event]string{}}
}

// Hub fans events out to the subscribers of a game. Delivery is
// best-effort: a slow client is skipped after a short timeout and never
// blocks the rest.
type Hub struct {
	mtx     sync.RWMutex
	clients map[string]map[chan Event]string
}

func (h *Hub) Subscribe(gameID, playerID string) chan Event {
	ch := make(chan Event, 8)

	h.mtx.Lock()
	defer h.mtx.Unlock()

	if h.clients[gameID] == nil {
		h.clients[gameID] = map[chan Event]string{}
	}
	h.clients[gameID][ch] = playerID

	return ch
}

func (h *Hub) Unsubscribe(gameID string, ch chan Event) {
	h.mtx.Lock()
	defer h.mtx.Unlock()

	if clients, ok := h.clients[gameID]; ok {
		delete(clients, ch)
		if len(clients) == 0 {
			delete(h.clients, gameID)
		}
	}
}

func (h *Hub) SubscriberCount(gameID string) int {
	h.mtx.RLock()
	defer h.mtx.RUnlock()
	return len(h.clients[gameID])
}

// Broadcast collects the subscriber channels under the read lock and
// sends without holding it.
func (h *Hub) Broadcast(gameID string, event Event) {
	h.mtx.RLock()
	channels := make([]chan Event, 0, len(h.clients[gameID]))
	for ch := range h.clients[gameID] {
		channels = append(channels, ch)
	}
	h.mtx.RUnlock()

	for _, ch := range channels {
		select {
		case ch <- event:
		case <-time.After(sendTimeout):
		}
	}
}
