// internal/game/session.go
package game

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/pverdier/undercover/internal/words"
)

// Directory reports which connection handles are currently live for a room.
// It is the source of truth for "connected players", distinct from the roster
// of known player identities. Implemented by the transport hub.
type Directory interface {
	Subscribe(roomCode string, handle uuid.UUID)
	Unsubscribe(roomCode string, handle uuid.UUID)
	IsLive(roomCode string, handle uuid.UUID) bool
	LiveHandles(roomCode string) []uuid.UUID
	DropRoom(roomCode string)
}

// Broadcaster delivers a named event to one connection or to every connection
// subscribed to a room. Delivery is fire-and-forget from the session's
// perspective; per-room event order as emitted here is preserved on the wire.
type Broadcaster interface {
	ToOne(handle uuid.UUID, ev Event)
	ToRoom(roomCode string, ev Event)
}

// WordSource supplies one (mainWord, impostorWord) pair per round.
type WordSource interface {
	Sample() words.Pair
}

// Session is the room session state machine. It owns every lifecycle
// transition for all rooms; each transition locks the target room for its
// whole duration and takes a single fresh connected-set snapshot up front.
type Session struct {
	registry *Registry
	dir      Directory
	bc       Broadcaster
	words    WordSource
	log      *logrus.Logger

	// grace is how long a disconnected host has to reconnect before the room
	// is torn down.
	grace time.Duration
}

// NewSession wires the state machine to its collaborators.
func NewSession(registry *Registry, dir Directory, bc Broadcaster, ws WordSource, logger *logrus.Logger, grace time.Duration) *Session {
	return &Session{
		registry: registry,
		dir:      dir,
		bc:       bc,
		words:    ws,
		log:      logger,
		grace:    grace,
	}
}

// liveSet snapshots the connected handles for a room. Every transition takes
// exactly one snapshot and uses it consistently throughout.
func (s *Session) liveSet(roomCode string) map[uuid.UUID]bool {
	live := make(map[uuid.UUID]bool)
	for _, h := range s.dir.LiveHandles(roomCode) {
		live[h] = true
	}
	return live
}

// CreateRoom allocates a new room with the caller as host and subscribes the
// connection to it.
func (s *Session) CreateRoom(handle uuid.UUID, name string) {
	if name == "" {
		name = "Host"
	}
	room := s.registry.Create(name, handle)
	s.dir.Subscribe(room.Code, handle)

	room.Mu.Lock()
	defer room.Mu.Unlock()

	s.bc.ToOne(handle, Event{Type: EventRoomCreated, Data: RoomCodePayload{RoomCode: room.Code}})
	s.bc.ToRoom(room.Code, Event{Type: EventPlayerListUpdate, Data: PlayerListPayload{Players: room.playerInfos(s.liveSet(room.Code))}})

	s.log.WithFields(logrus.Fields{"room": room.Code, "host": name}).Info("room created")
}

// JoinRoom reconciles the joining connection against the room's roster.
// A handle already bound to a player is an idempotent re-subscribe; a known
// name with a stale handle is a reconnection that rebinds the handle; a new
// name is admitted only while the room is in the lobby phase.
func (s *Session) JoinRoom(handle uuid.UUID, roomCode, name string) {
	room, ok := s.registry.Get(roomCode)
	if !ok {
		s.bc.ToOne(handle, errorEvent(EventJoinError, ErrRoomNotFound.Error()))
		return
	}

	room.Mu.Lock()
	defer room.Mu.Unlock()

	if p := room.playerByHandle(handle); p != nil {
		s.dir.Subscribe(roomCode, handle)
		s.bc.ToOne(handle, Event{Type: EventRoomJoined, Data: RoomCodePayload{RoomCode: roomCode}})
		s.replayState(room, p)
		return
	}

	if p := room.playerByName(name); p != nil {
		if s.dir.IsLive(roomCode, p.Handle) {
			// The name belongs to a player whose connection is still alive.
			s.bc.ToOne(handle, errorEvent(EventJoinError, ErrNameTaken.Error()))
			return
		}
		// Reconnection: rebind the durable identity to the new handle.
		p.Handle = handle
		s.dir.Subscribe(roomCode, handle)
		s.bc.ToOne(handle, Event{Type: EventRoomJoined, Data: RoomCodePayload{RoomCode: roomCode}})
		s.replayState(room, p)
		s.log.WithFields(logrus.Fields{"room": roomCode, "player": name}).Info("player reconnected")
		return
	}

	if room.GameStarted {
		s.bc.ToOne(handle, errorEvent(EventJoinError, ErrGameAlreadyStarted.Error()))
		return
	}

	room.Players = append(room.Players, &Player{Name: name, Handle: handle})
	s.dir.Subscribe(roomCode, handle)
	s.bc.ToOne(handle, Event{Type: EventRoomJoined, Data: RoomCodePayload{RoomCode: roomCode}})
	s.bc.ToRoom(roomCode, Event{Type: EventPlayerListUpdate, Data: PlayerListPayload{Players: room.playerInfos(s.liveSet(roomCode))}})

	s.log.WithFields(logrus.Fields{"room": roomCode, "player": name}).Info("player joined")
}

// replayState backfills a re-subscribed or reconnected player. During an
// active round they privately receive their exact original assignment from
// PlayerWords; otherwise everyone gets a roster refresh. Assumes the room
// lock is held.
func (s *Session) replayState(room *Room, p *Player) {
	if room.GameStarted {
		if wa, ok := room.PlayerWords[p.Name]; ok {
			s.bc.ToOne(p.Handle, Event{Type: EventGameStarted, Data: RoundPayload{
				Word:       wa.Word,
				IsImpostor: wa.IsImpostor,
				TurnOrder:  p.TurnOrder,
				Players:    room.playerInfos(s.liveSet(room.Code)),
			}})
			return
		}
	}
	s.bc.ToRoom(room.Code, Event{Type: EventPlayerListUpdate, Data: PlayerListPayload{Players: room.playerInfos(s.liveSet(room.Code))}})
}

// UpdateImpostorCount sets the number of impostors for upcoming rounds.
// Host-only; ignored mid-round. The value is clamped to [1,5].
func (s *Session) UpdateImpostorCount(handle uuid.UUID, roomCode string, count int) {
	room, ok := s.registry.Get(roomCode)
	if !ok {
		return
	}

	room.Mu.Lock()
	defer room.Mu.Unlock()

	p := room.playerByHandle(handle)
	if p == nil || !p.IsHost {
		return
	}
	if room.GameStarted && !room.RoundEnded {
		return
	}

	if count < 1 {
		count = 1
	} else if count > 5 {
		count = 5
	}
	room.ImpostorCount = count
	s.bc.ToOne(handle, Event{Type: EventImpostorCountUpdate, Data: ImpostorCountPayload{Count: count}})
}

// StartGame begins the first round of the game.
func (s *Session) StartGame(handle uuid.UUID, roomCode string) {
	s.startRound(handle, roomCode, EventGameStarted)
}

// NewRound begins a subsequent round, redrawing roles, words and turn order.
func (s *Session) NewRound(handle uuid.UUID, roomCode string) {
	s.startRound(handle, roomCode, EventNewRoundStarted)
}

func (s *Session) startRound(handle uuid.UUID, roomCode, eventType string) {
	room, ok := s.registry.Get(roomCode)
	if !ok {
		return
	}

	room.Mu.Lock()
	defer room.Mu.Unlock()

	p := room.playerByHandle(handle)
	if p == nil || !p.IsHost {
		return
	}

	live := s.liveSet(roomCode)
	connected := room.connectedPlayers(live)

	// Validation happens strictly before any state mutation.
	if len(connected) < 2 {
		s.bc.ToOne(handle, errorEvent(EventGameError,
			fmt.Sprintf("Need at least 2 players to start. Currently %d player(s) connected.", len(connected))))
		return
	}
	if room.ImpostorCount >= len(connected) {
		s.bc.ToOne(handle, errorEvent(EventGameError, ErrTooManyImpostors.Error()))
		return
	}

	// Fresh turn order: a permutation of 1..K over the connected players.
	// Players known to the room but not connected hold no turn this round.
	for _, pl := range room.Players {
		pl.TurnOrder = 0
	}
	perm := shufflePerm(len(connected))
	names := make([]string, len(connected))
	for i, pl := range connected {
		pl.TurnOrder = perm[i]
		names[i] = pl.Name
	}

	// Impostors are recorded by name, not by handle: handles may churn before
	// the round ends.
	shuffled := shuffleNames(names)
	room.ImpostorNames = make(map[string]struct{}, room.ImpostorCount)
	for _, n := range shuffled[:room.ImpostorCount] {
		room.ImpostorNames[n] = struct{}{}
	}

	pair := s.words.Sample()
	room.CurrentWordPair = &pair
	room.PlayerWords = make(map[string]WordAssignment, len(connected))
	for _, pl := range connected {
		_, isImpostor := room.ImpostorNames[pl.Name]
		word := pair.MainWord
		if isImpostor {
			word = pair.ImpostorWord
		}
		room.PlayerWords[pl.Name] = WordAssignment{Word: word, IsImpostor: isImpostor}
	}

	room.GameStarted = true
	room.RoundEnded = false
	room.Votes = make(map[string]string)
	room.VotingLocked = true
	room.CurrentSpeakerTurn = 1

	roster := room.playerInfos(live)
	for _, pl := range connected {
		wa := room.PlayerWords[pl.Name]
		s.bc.ToOne(pl.Handle, Event{Type: eventType, Data: RoundPayload{
			Word:       wa.Word,
			IsImpostor: wa.IsImpostor,
			TurnOrder:  pl.TurnOrder,
			Players:    roster,
		}})
	}
	s.bc.ToRoom(roomCode, Event{Type: EventPlayerListUpdate, Data: PlayerListPayload{Players: roster}})

	s.log.WithFields(logrus.Fields{
		"room":      roomCode,
		"players":   len(connected),
		"impostors": room.ImpostorCount,
	}).Info("round started")
}

// NextSpeaker advances the speaking turn cyclically over the players that
// currently hold a turn order.
func (s *Session) NextSpeaker(handle uuid.UUID, roomCode string) {
	room, ok := s.registry.Get(roomCode)
	if !ok {
		return
	}

	room.Mu.Lock()
	defer room.Mu.Unlock()

	if room.playerByHandle(handle) == nil {
		return
	}
	if !room.GameStarted || room.RoundEnded {
		return
	}
	s.advanceSpeaker(room)
}

// advanceSpeaker moves CurrentSpeakerTurn to the next turn-holder and
// broadcasts the change. The cycle is computed over the current holder set so
// it tolerates players removed since round start. Assumes the lock is held.
func (s *Session) advanceSpeaker(room *Room) {
	holders := room.turnHolders()
	if len(holders) == 0 {
		return
	}
	next := holders[0]
	for _, p := range holders {
		if p.TurnOrder > room.CurrentSpeakerTurn {
			next = p
			break
		}
	}
	room.CurrentSpeakerTurn = next.TurnOrder
	s.bc.ToRoom(room.Code, Event{Type: EventSpeakerUpdate, Data: SpeakerPayload{
		CurrentSpeaker: next.TurnOrder,
		SpeakerName:    next.Name,
	}})
}

// ToggleVoting flips the voting lock. Host-only.
func (s *Session) ToggleVoting(handle uuid.UUID, roomCode string) {
	room, ok := s.registry.Get(roomCode)
	if !ok {
		return
	}

	room.Mu.Lock()
	defer room.Mu.Unlock()

	p := room.playerByHandle(handle)
	if p == nil || !p.IsHost {
		return
	}
	if !room.GameStarted || room.RoundEnded {
		return
	}

	room.VotingLocked = !room.VotingLocked
	s.bc.ToRoom(roomCode, Event{Type: EventVotingStatusUpdate, Data: VotingStatusPayload{
		Locked:       room.VotingLocked,
		TotalPlayers: len(room.connectedPlayers(s.liveSet(roomCode))),
		TotalVotes:   len(room.Votes),
	}})
}

// VoteImpostor records one vote per player per round and broadcasts the
// running tally. When every connected player has voted, the round resolves
// automatically.
func (s *Session) VoteImpostor(handle uuid.UUID, roomCode, votedName string) {
	room, ok := s.registry.Get(roomCode)
	if !ok {
		return
	}

	room.Mu.Lock()
	defer room.Mu.Unlock()

	voter := room.playerByHandle(handle)
	if voter == nil {
		return
	}
	if !room.GameStarted || room.RoundEnded || room.VotingLocked {
		s.bc.ToOne(handle, errorEvent(EventVoteError, ErrVotingLocked.Error()))
		return
	}
	if _, voted := room.Votes[voter.Name]; voted {
		s.bc.ToOne(handle, errorEvent(EventVoteError, ErrAlreadyVoted.Error()))
		return
	}
	if room.playerByName(votedName) == nil {
		s.bc.ToOne(handle, errorEvent(EventVoteError, "No such player in this room"))
		return
	}

	room.Votes[voter.Name] = votedName

	live := s.liveSet(roomCode)
	totalPlayers := len(room.connectedPlayers(live))
	s.bc.ToRoom(roomCode, Event{Type: EventVoteUpdate, Data: VoteUpdatePayload{
		Votes:        copyVotes(room.Votes),
		TotalVotes:   len(room.Votes),
		TotalPlayers: totalPlayers,
	}})

	if len(room.Votes) >= totalPlayers {
		s.resolveRound(room, live)
	}
}

// EndRound lets the host force resolution before everyone has voted.
func (s *Session) EndRound(handle uuid.UUID, roomCode string) {
	room, ok := s.registry.Get(roomCode)
	if !ok {
		return
	}

	room.Mu.Lock()
	defer room.Mu.Unlock()

	p := room.playerByHandle(handle)
	if p == nil || !p.IsHost {
		return
	}
	if !room.GameStarted {
		return
	}
	s.resolveRound(room, s.liveSet(roomCode))
}

// resolveRound tallies the votes, applies scoring and broadcasts the
// resolution. Guarded by RoundEnded so a second call for the same round is a
// no-op. Assumes the lock is held.
func (s *Session) resolveRound(room *Room, live map[uuid.UUID]bool) {
	if room.RoundEnded {
		return
	}

	voteCounts := make(map[string]int)
	for _, accused := range room.Votes {
		voteCounts[accused]++
	}

	maxVotes := 0
	for _, c := range voteCounts {
		if c > maxVotes {
			maxVotes = c
		}
	}

	// Plurality ties are preserved as a set, never broken arbitrarily.
	var mostVoted []string
	if maxVotes > 0 {
		for name, c := range voteCounts {
			if c == maxVotes {
				mostVoted = append(mostVoted, name)
			}
		}
		sort.Strings(mostVoted)
	}

	// The impostors are caught if at least one of them is among the plurality.
	impostorFound := false
	for _, name := range mostVoted {
		if _, ok := room.ImpostorNames[name]; ok {
			impostorFound = true
			break
		}
	}

	// Caught: every crewmate gains a point. Not caught: every impostor does.
	// Only connected players that took part in the round score.
	for _, p := range room.Players {
		if !live[p.Handle] {
			continue
		}
		wa, inRound := room.PlayerWords[p.Name]
		if !inRound {
			continue
		}
		if wa.IsImpostor != impostorFound {
			p.Score++
		}
	}

	room.RoundEnded = true

	impostorNames := make([]string, 0, len(room.ImpostorNames))
	for name := range room.ImpostorNames {
		impostorNames = append(impostorNames, name)
	}
	sort.Strings(impostorNames)

	s.bc.ToRoom(room.Code, Event{Type: EventRoundEnded, Data: RoundEndedPayload{
		Votes:            copyVotes(room.Votes),
		VoteCounts:       voteCounts,
		MostVotedPlayers: mostVoted,
		ImpostorNames:    impostorNames,
		ImpostorFound:    impostorFound,
		Players:          room.playerInfos(live),
	}})

	s.log.WithFields(logrus.Fields{
		"room":          room.Code,
		"impostorFound": impostorFound,
		"mostVoted":     mostVoted,
	}).Info("round resolved")
}

// LeaveRoom handles a player's explicit, voluntary departure. A leaving host
// tears the room down immediately; anyone else is removed outright.
func (s *Session) LeaveRoom(handle uuid.UUID, roomCode string) {
	room, ok := s.registry.Get(roomCode)
	if !ok {
		return
	}

	room.Mu.Lock()
	defer room.Mu.Unlock()

	p := room.playerByHandle(handle)
	if p == nil {
		return
	}
	if p.IsHost {
		s.teardownRoom(room, Event{Type: EventHostLeft})
		return
	}
	s.removeAndNotify(room, p)
}

// KickPlayer removes a player on the host's order, with a private notice to
// the kicked connection. A host may not kick themself.
func (s *Session) KickPlayer(handle uuid.UUID, roomCode, targetName string) {
	room, ok := s.registry.Get(roomCode)
	if !ok {
		return
	}

	room.Mu.Lock()
	defer room.Mu.Unlock()

	p := room.playerByHandle(handle)
	if p == nil || !p.IsHost {
		return
	}
	target := room.playerByName(targetName)
	if target == nil || target.Name == p.Name {
		return
	}

	s.bc.ToOne(target.Handle, errorEvent(EventKickedFromRoom, "You have been kicked from the room"))
	s.bc.ToRoom(roomCode, Event{Type: EventPlayerKicked, Data: KickPayload{PlayerName: target.Name}})
	s.removeAndNotify(room, target)

	s.log.WithFields(logrus.Fields{"room": roomCode, "player": targetName}).Info("player kicked")
}

// removeAndNotify removes a player, discards their votes, advances the
// speaking turn if they held it, and broadcasts the roster. An emptied room
// is deleted. Assumes the lock is held.
func (s *Session) removeAndNotify(room *Room, p *Player) {
	heldTurn := room.GameStarted && !room.RoundEnded &&
		p.TurnOrder > 0 && p.TurnOrder == room.CurrentSpeakerTurn

	room.removePlayer(p.Name)
	s.dir.Unsubscribe(room.Code, p.Handle)

	if len(room.Players) == 0 {
		s.registry.Delete(room.Code)
		s.dir.DropRoom(room.Code)
		return
	}

	if heldTurn {
		s.advanceSpeaker(room)
	}
	s.bc.ToRoom(room.Code, Event{Type: EventPlayerListUpdate, Data: PlayerListPayload{Players: room.playerInfos(s.liveSet(room.Code))}})
}

// EndGame broadcasts the final roster with scores, then deletes the room
// unconditionally. Host-only.
func (s *Session) EndGame(handle uuid.UUID, roomCode string) {
	room, ok := s.registry.Get(roomCode)
	if !ok {
		return
	}

	room.Mu.Lock()
	defer room.Mu.Unlock()

	p := room.playerByHandle(handle)
	if p == nil || !p.IsHost {
		return
	}
	s.teardownRoom(room, Event{Type: EventGameEnded, Data: PlayerListPayload{Players: room.playerInfos(s.liveSet(roomCode))}})
}

// teardownRoom broadcasts a final notice and deletes the room. Assumes the
// lock is held.
func (s *Session) teardownRoom(room *Room, notice Event) {
	s.bc.ToRoom(room.Code, notice)
	s.registry.Delete(room.Code)
	s.dir.DropRoom(room.Code)
	s.log.WithFields(logrus.Fields{"room": room.Code}).Info("room closed")
}

// HandleDisconnect processes a transport-level disconnect for the given
// handle. Lobby-phase non-hosts are removed immediately; during an active
// round the player record is kept so a later reconnect can rebind it. A
// disconnected host gets a grace period before the room is torn down.
func (s *Session) HandleDisconnect(handle uuid.UUID) {
	for _, room := range s.registry.Rooms() {
		room.Mu.Lock()
		p := room.playerByHandle(handle)
		if p == nil {
			room.Mu.Unlock()
			continue
		}

		if !room.GameStarted && !p.IsHost {
			s.removeAndNotify(room, p)
			room.Mu.Unlock()
			return
		}

		// Keep the record for reconnection. The stale handle stays bound to
		// the player until a reconnect replaces it.
		if p.IsHost {
			s.scheduleHostGrace(room.Code, p.Name, p.Handle)
		}
		s.bc.ToRoom(room.Code, Event{Type: EventPlayerListUpdate, Data: PlayerListPayload{Players: room.playerInfos(s.liveSet(room.Code))}})
		room.Mu.Unlock()
		return
	}
}

// scheduleHostGrace starts the host reconnection timer. The closure holds
// only the room code and the handle observed now; the condition is
// re-validated when the timer fires, since room state may have changed.
func (s *Session) scheduleHostGrace(roomCode, hostName string, staleHandle uuid.UUID) {
	s.log.WithFields(logrus.Fields{"room": roomCode, "host": hostName}).Info("host disconnected, grace period started")

	time.AfterFunc(s.grace, func() {
		room, ok := s.registry.Get(roomCode)
		if !ok {
			// Already resolved (room deleted in the meantime).
			return
		}

		room.Mu.Lock()
		defer room.Mu.Unlock()

		host := room.playerByName(hostName)
		if host != nil && host.IsHost && host.Handle != staleHandle {
			// The host reconnected under a new handle; the timer is a no-op.
			return
		}
		s.teardownRoom(room, Event{Type: EventHostLeft})
		s.log.WithFields(logrus.Fields{"room": roomCode}).Info("host never returned, room deleted")
	})
}

func copyVotes(votes map[string]string) map[string]string {
	out := make(map[string]string, len(votes))
	for voter, accused := range votes {
		out[voter] = accused
	}
	return out
}
