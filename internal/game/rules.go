// internal/game/rules.go
package game

import (
	"time"

	"github.com/google/uuid"

	"github.com/dvsk-dev/gamify/internal/models"
)

// Outcome is what a successful move did to the room.
type Outcome struct {
	// Ended is true when the move finished the game.
	Ended bool
	// Draw is true for a finished game with no winner (OXO full board).
	Draw bool
}

// Rules is the per-variant capability the engine plays through. Implementations
// are stateless; all game state lives on the Room they are handed. Every method
// that mutates a Room is called inside the state store's per-room update, so
// implementations never need their own locking.
type Rules interface {
	Type() models.GameType

	// TurnTimeout is how long a player gets before the scheduler skips them.
	TurnTimeout() time.Duration

	// ValidatePlayerCount rejects a start with an unplayable member count.
	ValidatePlayerCount(n int) error

	// Setup initializes shared and per-player state for a fresh game:
	// boards or grid, statuses back to PLAYING, ranks and winners cleared.
	Setup(r *models.Room)

	// Apply validates and applies mover's move. value is a called number for
	// BINGO and a cell index for OXO. On error the room must be left unchanged.
	Apply(r *models.Room, mover uuid.UUID, value int) (Outcome, error)

	// Skip applies the variant's treatment of a timed-out turn holder.
	Skip(r *models.Room, holder uuid.UUID)

	SupportsRematch() bool
}

// ForType returns the rule set for a game type. Unknown types fall back to
// BINGO; room creation validates the type so this is never hit in practice.
func ForType(t models.GameType) Rules {
	if t == models.GameTypeOXO {
		return OXORules{}
	}
	return BingoRules{}
}
