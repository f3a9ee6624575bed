// internal/handlers/hub_test.go
package handlers

import (
	"testing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pverdier/undercover/internal/game"
)

func newTestHub() *Hub {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return NewHub(logger)
}

func addClient(h *Hub, buffer int) (*client, uuid.UUID) {
	c := &client{handle: uuid.New(), out: make(chan game.Event, buffer), cancel: func() {}}
	h.register(c)
	return c, c.handle
}

func TestHubLiveness(t *testing.T) {
	h := newTestHub()
	_, handle := addClient(h, 4)

	assert.False(t, h.IsLive("ROOM01", handle), "not live before subscribing")

	h.Subscribe("ROOM01", handle)
	assert.True(t, h.IsLive("ROOM01", handle))
	assert.Equal(t, []uuid.UUID{handle}, h.LiveHandles("ROOM01"))
	assert.False(t, h.IsLive("ROOM02", handle), "liveness is per room")

	h.Unsubscribe("ROOM01", handle)
	assert.False(t, h.IsLive("ROOM01", handle))
}

func TestHubUnregisterClearsAllRooms(t *testing.T) {
	h := newTestHub()
	_, handle := addClient(h, 4)
	h.Subscribe("ROOM01", handle)
	h.Subscribe("ROOM02", handle)

	h.unregister(handle)

	assert.False(t, h.IsLive("ROOM01", handle))
	assert.False(t, h.IsLive("ROOM02", handle))
	assert.Empty(t, h.LiveHandles("ROOM01"))
}

func TestHubSubscriptionWithoutClientIsNotLive(t *testing.T) {
	h := newTestHub()
	stale := uuid.New()

	// A room membership left behind by a dead connection must not count.
	h.Subscribe("ROOM01", stale)
	assert.False(t, h.IsLive("ROOM01", stale))
	assert.Empty(t, h.LiveHandles("ROOM01"))
}

func TestHubToOne(t *testing.T) {
	h := newTestHub()
	c, handle := addClient(h, 4)

	h.ToOne(handle, game.Event{Type: "roomCreated"})
	require.Len(t, c.out, 1)
	assert.Equal(t, "roomCreated", (<-c.out).Type)

	// Unknown handles are ignored.
	h.ToOne(uuid.New(), game.Event{Type: "roomCreated"})
}

func TestHubToRoomReachesOnlySubscribers(t *testing.T) {
	h := newTestHub()
	a, aHandle := addClient(h, 4)
	b, bHandle := addClient(h, 4)
	outsider, _ := addClient(h, 4)

	h.Subscribe("ROOM01", aHandle)
	h.Subscribe("ROOM01", bHandle)

	h.ToRoom("ROOM01", game.Event{Type: "playerListUpdate"})

	assert.Len(t, a.out, 1)
	assert.Len(t, b.out, 1)
	assert.Empty(t, outsider.out)
}

func TestHubDropRoom(t *testing.T) {
	h := newTestHub()
	c, handle := addClient(h, 4)
	h.Subscribe("ROOM01", handle)

	h.DropRoom("ROOM01")

	assert.False(t, h.IsLive("ROOM01", handle))
	h.ToRoom("ROOM01", game.Event{Type: "playerListUpdate"})
	assert.Empty(t, c.out)
}

func TestHubWriteDropsInsteadOfBlocking(t *testing.T) {
	h := newTestHub()
	c, handle := addClient(h, 1)
	h.Subscribe("ROOM01", handle)

	// The second write would block on an unbuffered drain; it must drop.
	h.ToOne(handle, game.Event{Type: "voteUpdate"})
	h.ToOne(handle, game.Event{Type: "voteUpdate"})

	assert.Len(t, c.out, 1)
}
