// internal/game/events.go
package game

// Outbound event names. Spelling is part of the wire protocol and must match
// the client exactly.
const (
	EventRoomCreated         = "roomCreated"
	EventRoomJoined          = "roomJoined"
	EventJoinError           = "joinError"
	EventPlayerListUpdate    = "playerListUpdate"
	EventImpostorCountUpdate = "impostorCountUpdated"
	EventPlayerKicked        = "playerKicked"
	EventKickedFromRoom      = "kickedFromRoom"
	EventGameStarted         = "gameStarted"
	EventNewRoundStarted     = "newRoundStarted"
	EventSpeakerUpdate       = "speakerUpdate"
	EventVotingStatusUpdate  = "votingStatusUpdate"
	EventVoteUpdate          = "voteUpdate"
	EventVoteError           = "voteError"
	EventRoundEnded          = "roundEnded"
	EventGameEnded           = "gameEnded"
	EventHostLeft            = "hostLeft"
	EventGameError           = "gameError"
)

// Event is one named message produced by the session machine. The transport
// layer marshals it as-is, so payload field names below are wire format.
type Event struct {
	Type string      `json:"type"`
	Data interface{} `json:"data,omitempty"`
}

// PlayerInfo is the public roster entry for one player.
type PlayerInfo struct {
	Name      string `json:"name"`
	IsHost    bool   `json:"isHost"`
	Score     int    `json:"score"`
	TurnOrder int    `json:"turnOrder,omitempty"`
	Connected bool   `json:"connected"`
}

// RoomCodePayload carries the room code for roomCreated / roomJoined.
type RoomCodePayload struct {
	RoomCode string `json:"roomCode"`
}

// PlayerListPayload carries the full roster.
type PlayerListPayload struct {
	Players []PlayerInfo `json:"players"`
}

// RoundPayload is delivered privately to each player at round start and on
// reconnect replay. Word and IsImpostor are that player's own assignment.
type RoundPayload struct {
	Word       string       `json:"word"`
	IsImpostor bool         `json:"isImpostor"`
	TurnOrder  int          `json:"turnOrder"`
	Players    []PlayerInfo `json:"players"`
}

// SpeakerPayload announces whose turn it is to speak.
type SpeakerPayload struct {
	CurrentSpeaker int    `json:"currentSpeaker"`
	SpeakerName    string `json:"speakerName"`
}

// VotingStatusPayload reports the voting lock plus running counts.
type VotingStatusPayload struct {
	Locked       bool `json:"locked"`
	TotalPlayers int  `json:"totalPlayers"`
	TotalVotes   int  `json:"totalVotes"`
}

// VoteUpdatePayload is the running tally broadcast after each vote.
type VoteUpdatePayload struct {
	Votes        map[string]string `json:"votes"`
	TotalVotes   int               `json:"totalVotes"`
	TotalPlayers int               `json:"totalPlayers"`
}

// RoundEndedPayload is the full round resolution.
type RoundEndedPayload struct {
	Votes            map[string]string `json:"votes"`
	VoteCounts       map[string]int    `json:"voteCounts"`
	MostVotedPlayers []string          `json:"mostVotedPlayers"`
	ImpostorNames    []string          `json:"impostorNames"`
	ImpostorFound    bool              `json:"impostorFound"`
	Players          []PlayerInfo      `json:"players"`
}

// ImpostorCountPayload acknowledges a host's impostor count change.
type ImpostorCountPayload struct {
	Count int `json:"count"`
}

// KickPayload names the removed player in the room-wide notice.
type KickPayload struct {
	PlayerName string `json:"playerName"`
}

// MessagePayload is the generic {message} body used by error and notice events.
type MessagePayload struct {
	Message string `json:"message"`
}

func errorEvent(eventType, message string) Event {
	return Event{Type: eventType, Data: MessagePayload{Message: message}}
}
