// internal/game/registry_test.go
package game

import (
	"regexp"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var codePattern = regexp.MustCompile(`^[A-Z0-9]{6}$`)

func TestRegistryCreateGeneratesWellFormedCodes(t *testing.T) {
	registry := NewRegistry()

	room := registry.Create("Host", uuid.New())
	assert.Regexp(t, codePattern, room.Code)
	assert.Equal(t, "Host", room.HostName)
	assert.Equal(t, 1, room.ImpostorCount)
	require.Len(t, room.Players, 1)
	assert.True(t, room.Players[0].IsHost)

	got, ok := registry.Get(room.Code)
	require.True(t, ok)
	assert.Same(t, room, got)
}

func TestRegistryCodesAreUnique(t *testing.T) {
	registry := NewRegistry()

	seen := make(map[string]bool)
	for i := 0; i < 500; i++ {
		room := registry.Create("Host", uuid.New())
		assert.False(t, seen[room.Code], "code %s issued twice", room.Code)
		seen[room.Code] = true
	}
}

func TestRegistryDelete(t *testing.T) {
	registry := NewRegistry()
	room := registry.Create("Host", uuid.New())

	registry.Delete(room.Code)

	_, ok := registry.Get(room.Code)
	assert.False(t, ok)
	assert.Empty(t, registry.Rooms())
}

func TestRegistryRoomsSnapshot(t *testing.T) {
	registry := NewRegistry()
	a := registry.Create("A", uuid.New())
	b := registry.Create("B", uuid.New())

	rooms := registry.Rooms()
	assert.Len(t, rooms, 2)
	assert.Contains(t, rooms, a)
	assert.Contains(t, rooms, b)
}
