// internal/game/registry.go
package game

import (
	"math/rand"
	"sync"

	"github.com/google/uuid"
)

const (
	codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	codeLength   = 6
)

// Registry is the authoritative mapping from room code to Room. The mutex
// guards the map only; room state is guarded by each room's own mutex.
type Registry struct {
	mu    sync.Mutex
	rooms map[string]*Room
}

// NewRegistry returns an empty in-memory room registry.
func NewRegistry() *Registry {
	return &Registry{rooms: make(map[string]*Room)}
}

// Create allocates a room under a freshly generated code with the given
// player as host. Codes colliding with an active room are regenerated.
func (s *Registry) Create(hostName string, handle uuid.UUID) *Room {
	s.mu.Lock()
	defer s.mu.Unlock()

	code := randomCode()
	for {
		if _, taken := s.rooms[code]; !taken {
			break
		}
		code = randomCode()
	}

	room := newRoom(code, hostName, handle)
	s.rooms[code] = room
	return room
}

// Get retrieves a room if it exists.
func (s *Registry) Get(code string) (*Room, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rooms[code]
	return r, ok
}

// Delete removes a room from the registry.
func (s *Registry) Delete(code string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rooms, code)
}

// Rooms returns a snapshot of all active rooms, used by disconnect handling
// to locate the room a dead connection belonged to.
func (s *Registry) Rooms() []*Room {
	s.mu.Lock()
	defer s.mu.Unlock()
	rooms := make([]*Room, 0, len(s.rooms))
	for _, r := range s.rooms {
		rooms = append(rooms, r)
	}
	return rooms
}

func randomCode() string {
	b := make([]byte, codeLength)
	for i := range b {
		b[i] = codeAlphabet[rand.Intn(len(codeAlphabet))]
	}
	return string(b)
}
