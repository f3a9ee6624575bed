// internal/game/room.go
package game

import (
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/pverdier/undercover/internal/words"
)

// Player is one durable identity inside a room. The name is the identity key;
// the connection handle is volatile and rebound on every reconnect.
type Player struct {
	Name      string
	Handle    uuid.UUID
	IsHost    bool
	Score     int
	TurnOrder int // 1..K during a round, 0 outside
}

// WordAssignment is one player's secret for the current round, keyed by name
// so a reconnecting player recovers the exact same assignment.
type WordAssignment struct {
	Word       string
	IsImpostor bool
}

// Room holds the authoritative state of one game session. All fields are
// guarded by Mu; every transition locks the room for its whole duration so
// concurrent events targeting the same room are serialized, while different
// rooms proceed in parallel.
type Room struct {
	Code     string
	Players  []*Player
	HostName string

	ImpostorCount int
	GameStarted   bool
	RoundEnded    bool

	CurrentWordPair    *words.Pair
	ImpostorNames      map[string]struct{}
	PlayerWords        map[string]WordAssignment
	CurrentSpeakerTurn int

	VotingLocked bool
	Votes        map[string]string // voter name -> accused name

	Mu sync.Mutex
}

func newRoom(code, hostName string, handle uuid.UUID) *Room {
	return &Room{
		Code:          code,
		HostName:      hostName,
		ImpostorCount: 1,
		Players: []*Player{{
			Name:   hostName,
			Handle: handle,
			IsHost: true,
		}},
		ImpostorNames: make(map[string]struct{}),
		PlayerWords:   make(map[string]WordAssignment),
		Votes:         make(map[string]string),
	}
}

// playerByHandle finds the player currently bound to the given connection
// handle. Assumes the room lock is held.
func (r *Room) playerByHandle(handle uuid.UUID) *Player {
	for _, p := range r.Players {
		if p.Handle == handle {
			return p
		}
	}
	return nil
}

// playerByName finds a player by durable identity. Assumes the lock is held.
func (r *Room) playerByName(name string) *Player {
	for _, p := range r.Players {
		if p.Name == name {
			return p
		}
	}
	return nil
}

// removePlayer discards a player record and their pending round state.
// Assumes the lock is held.
func (r *Room) removePlayer(name string) {
	for i, p := range r.Players {
		if p.Name == name {
			r.Players = append(r.Players[:i], r.Players[i+1:]...)
			break
		}
	}
	delete(r.Votes, name)
	delete(r.PlayerWords, name)
}

// turnHolders returns the players that currently hold a turn order, sorted by
// turn order ascending. Computed fresh each time so it tolerates players
// removed since round start. Assumes the lock is held.
func (r *Room) turnHolders() []*Player {
	var holders []*Player
	for _, p := range r.Players {
		if p.TurnOrder > 0 {
			holders = append(holders, p)
		}
	}
	sort.Slice(holders, func(i, j int) bool {
		return holders[i].TurnOrder < holders[j].TurnOrder
	})
	return holders
}

// playerInfos builds the public roster. The live set is the fresh
// connected-handle snapshot for this transition. Assumes the lock is held.
func (r *Room) playerInfos(live map[uuid.UUID]bool) []PlayerInfo {
	infos := make([]PlayerInfo, 0, len(r.Players))
	for _, p := range r.Players {
		infos = append(infos, PlayerInfo{
			Name:      p.Name,
			IsHost:    p.IsHost,
			Score:     p.Score,
			TurnOrder: p.TurnOrder,
			Connected: live[p.Handle],
		})
	}
	return infos
}

// connectedPlayers filters the roster down to players whose current handle is
// in the live snapshot, preserving roster order. Assumes the lock is held.
func (r *Room) connectedPlayers(live map[uuid.UUID]bool) []*Player {
	var connected []*Player
	for _, p := range r.Players {
		if live[p.Handle] {
			connected = append(connected, p)
		}
	}
	return connected
}
