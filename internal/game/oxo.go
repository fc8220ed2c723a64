// internal/game/oxo.go
package game

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dvsk-dev/gamify/internal/models"
)

// oxoLines are the 8 winning cell triples: 3 rows, 3 columns, 2 diagonals.
var oxoLines = [8][3]int{
	{0, 1, 2}, {3, 4, 5}, {6, 7, 8},
	{0, 3, 6}, {1, 4, 7}, {2, 5, 8},
	{0, 4, 8}, {2, 4, 6},
}

// OXORules implements the two-player tic-tac-toe variant.
type OXORules struct{}

func (OXORules) Type() models.GameType      { return models.GameTypeOXO }
func (OXORules) TurnTimeout() time.Duration { return 30 * time.Second }
func (OXORules) SupportsRematch() bool      { return true }

func (OXORules) ValidatePlayerCount(n int) error {
	if n != 2 {
		return fmt.Errorf("%w: need exactly 2 players for tic-tac-toe", ErrNotEnoughPlayers)
	}
	return nil
}

func (OXORules) Setup(r *models.Room) {
	r.Grid = make([]uuid.UUID, models.GridCells)
	r.WinnerOrder = nil
	for _, p := range r.Players {
		p.Status = models.PlayerPlaying
		p.Rank = nil
	}
}

func (OXORules) Apply(r *models.Room, mover uuid.UUID, value int) (Outcome, error) {
	if value < 0 || value >= models.GridCells {
		return Outcome{}, fmt.Errorf("%w: invalid cell index", ErrInvalidMove)
	}
	if r.Grid[value] != uuid.Nil {
		return Outcome{}, fmt.Errorf("%w: cell already occupied", ErrInvalidMove)
	}

	r.Grid[value] = mover

	if winner := GridWinner(r.Grid); winner != uuid.Nil {
		r.WinnerOrder = []uuid.UUID{winner}
		for _, p := range r.Players {
			rank := 2
			if p.UserID == winner {
				rank = 1
			}
			rankCopy := rank
			p.Rank = &rankCopy
			p.Status = models.PlayerFinished
		}
		return Outcome{Ended: true}, nil
	}

	if gridFull(r.Grid) {
		// Draw: no ranks assigned beyond whatever already exists.
		return Outcome{Ended: true, Draw: true}, nil
	}

	return Outcome{}, nil
}

// Skip is a no-op for OXO: with exactly two players there is no SKIPPED
// state, the turn simply rotates to the opponent.
func (OXORules) Skip(r *models.Room, holder uuid.UUID) {}

// GridWinner returns the id occupying any complete line, or uuid.Nil.
func GridWinner(grid []uuid.UUID) uuid.UUID {
	if len(grid) != models.GridCells {
		return uuid.Nil
	}
	for _, line := range oxoLines {
		a, b, c := grid[line[0]], grid[line[1]], grid[line[2]]
		if a != uuid.Nil && a == b && b == c {
			return a
		}
	}
	return uuid.Nil
}

func gridFull(grid []uuid.UUID) bool {
	for _, cell := range grid {
		if cell == uuid.Nil {
			return false
		}
	}
	return true
}
