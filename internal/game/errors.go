// internal/game/errors.go
package game

import "errors"

// Rule and state errors surfaced by the engine. All of them are local and
// non-fatal: they are reported to the offending connection only and leave
// room state untouched.
var (
	ErrNotOwner           = errors.New("only the room owner can start the game")
	ErrAlreadyStarted     = errors.New("game already started or ended")
	ErrNotStarted         = errors.New("game is not in started state")
	ErrStillInProgress    = errors.New("game is still in progress")
	ErrNotEnoughPlayers   = errors.New("not enough players to start")
	ErrNotYourTurn        = errors.New("not your turn")
	ErrTurnExpired        = errors.New("turn expired")
	ErrInvalidMove        = errors.New("invalid move")
	ErrRematchUnsupported = errors.New("rematch is not available for this game type")
)
