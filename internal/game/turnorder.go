// internal/game/turnorder.go
package game

import (
	"github.com/google/uuid"

	"github.com/dvsk-dev/gamify/internal/models"
)

// NextTurn returns the next turn-taker: the first player with status other
// than FINISHED, cycling through turn order starting just after current.
// Pass uuid.Nil for current to get the first eligible player. Returns nil
// when every player has finished, which means the room must finalize.
// Selection is strictly positional, never random.
func NextTurn(players []*models.RoomPlayer, current uuid.UUID) *models.RoomPlayer {
	if len(players) == 0 {
		return nil
	}

	if current == uuid.Nil {
		for _, p := range players {
			if p.Status != models.PlayerFinished {
				return p
			}
		}
		return nil
	}

	currentIdx := -1
	for i, p := range players {
		if p.UserID == current {
			currentIdx = i
			break
		}
	}

	for offset := 1; offset <= len(players); offset++ {
		candidate := players[(currentIdx+offset)%len(players)]
		if candidate.Status != models.PlayerFinished {
			return candidate
		}
	}
	return nil
}
