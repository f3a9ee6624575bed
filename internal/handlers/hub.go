// internal/handlers/hub.go
package handlers

import (
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/pverdier/undercover/internal/game"
)

// client is one live websocket connection. Outbound events are queued on a
// buffered channel drained by the connection's write pump.
type client struct {
	handle uuid.UUID
	out    chan game.Event
	cancel func()
}

// write queues an event non-blockingly. A full or abandoned queue drops the
// event rather than stalling the session machine.
func (c *client) write(ev game.Event, log *logrus.Logger) {
	select {
	case c.out <- ev:
	default:
		log.WithFields(logrus.Fields{"handle": c.handle, "event": ev.Type}).
			Warn("outbound queue full, dropping event")
	}
}

// Hub tracks live connections and their room subscriptions. It implements
// both game.Directory and game.Broadcaster for the session machine.
type Hub struct {
	mu      sync.Mutex
	clients map[uuid.UUID]*client
	rooms   map[string]map[uuid.UUID]struct{}
	log     *logrus.Logger
}

// NewHub returns an empty connection hub.
func NewHub(logger *logrus.Logger) *Hub {
	return &Hub{
		clients: make(map[uuid.UUID]*client),
		rooms:   make(map[string]map[uuid.UUID]struct{}),
		log:     logger,
	}
}

// register adds a freshly accepted connection under its handle.
func (h *Hub) register(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c.handle] = c
}

// unregister drops a connection and all of its room subscriptions, and stops
// its write pump.
func (h *Hub) unregister(handle uuid.UUID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if c, ok := h.clients[handle]; ok {
		c.cancel()
		delete(h.clients, handle)
	}
	for _, members := range h.rooms {
		delete(members, handle)
	}
}

// Subscribe adds a connection to a room's broadcast group.
func (h *Hub) Subscribe(roomCode string, handle uuid.UUID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	members, ok := h.rooms[roomCode]
	if !ok {
		members = make(map[uuid.UUID]struct{})
		h.rooms[roomCode] = members
	}
	members[handle] = struct{}{}
}

// Unsubscribe removes a connection from a room's broadcast group.
func (h *Hub) Unsubscribe(roomCode string, handle uuid.UUID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if members, ok := h.rooms[roomCode]; ok {
		delete(members, handle)
	}
}

// IsLive reports whether the handle is a live member of the room group.
func (h *Hub) IsLive(roomCode string, handle uuid.UUID) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	members, ok := h.rooms[roomCode]
	if !ok {
		return false
	}
	_, live := members[handle]
	if !live {
		return false
	}
	_, connected := h.clients[handle]
	return connected
}

// LiveHandles snapshots the live connection handles for a room.
func (h *Hub) LiveHandles(roomCode string) []uuid.UUID {
	h.mu.Lock()
	defer h.mu.Unlock()
	members := h.rooms[roomCode]
	handles := make([]uuid.UUID, 0, len(members))
	for handle := range members {
		if _, connected := h.clients[handle]; connected {
			handles = append(handles, handle)
		}
	}
	return handles
}

// DropRoom discards a room's broadcast group after the room is deleted.
func (h *Hub) DropRoom(roomCode string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.rooms, roomCode)
}

// ToOne delivers an event to a single connection.
func (h *Hub) ToOne(handle uuid.UUID, ev game.Event) {
	h.mu.Lock()
	c, ok := h.clients[handle]
	h.mu.Unlock()
	if ok {
		c.write(ev, h.log)
	}
}

// ToRoom delivers an event to every connection subscribed to the room.
func (h *Hub) ToRoom(roomCode string, ev game.Event) {
	h.mu.Lock()
	members := h.rooms[roomCode]
	targets := make([]*client, 0, len(members))
	for handle := range members {
		if c, ok := h.clients[handle]; ok {
			targets = append(targets, c)
		}
	}
	h.mu.Unlock()

	for _, c := range targets {
		c.write(ev, h.log)
	}
}
