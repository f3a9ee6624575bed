// internal/game/errors.go
package game

import "errors"

// Rejection reasons reported to the single offending connection via a named
// error event. The texts double as client-facing messages, so they keep the
// original wire phrasing. Unauthorized host-only actions are a silent no-op
// rather than an error.
var (
	ErrRoomNotFound       = errors.New("Room not found")
	ErrGameAlreadyStarted = errors.New("Game has already started")
	ErrNameTaken          = errors.New("Name already taken in this room")
	ErrTooManyImpostors   = errors.New("Too many impostors for this many players")
	ErrVotingLocked       = errors.New("Voting is locked")
	ErrAlreadyVoted       = errors.New("You have already voted this round")
)
