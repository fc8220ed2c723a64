// internal/game/bingo.go
package game

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/dvsk-dev/gamify/internal/models"
)

const (
	boardSize = 25
	// FinishLines is the number of completed lines that finishes a player.
	FinishLines = 5
)

// BingoRules implements the shared-number elimination variant: every called
// number is removed from every player's board, and a player finishes by
// completing five lines.
type BingoRules struct{}

func (BingoRules) Type() models.GameType      { return models.GameTypeBingo }
func (BingoRules) TurnTimeout() time.Duration { return 10 * time.Second }
func (BingoRules) SupportsRematch() bool      { return false }

func (BingoRules) ValidatePlayerCount(n int) error {
	if n < 2 {
		return fmt.Errorf("%w: need at least 2 players", ErrNotEnoughPlayers)
	}
	return nil
}

func (BingoRules) Setup(r *models.Room) {
	r.CalledNumbers = []int{}
	r.WinnerOrder = nil
	assignUniqueBoards(r.Players)
	for _, p := range r.Players {
		p.Status = models.PlayerPlaying
		p.Rank = nil
		p.LinesCompleted = 0
		p.EliminatedNumbers = []int{}
	}
}

func (BingoRules) Apply(r *models.Room, mover uuid.UUID, value int) (Outcome, error) {
	if value < 1 || value > boardSize {
		return Outcome{}, fmt.Errorf("%w: number must be in range 1..25", ErrInvalidMove)
	}
	if containsInt(r.CalledNumbers, value) {
		return Outcome{}, fmt.Errorf("%w: number already eliminated", ErrInvalidMove)
	}

	r.CalledNumbers = append(r.CalledNumbers, value)

	for _, p := range r.Players {
		if !containsInt(p.EliminatedNumbers, value) {
			p.EliminatedNumbers = append(p.EliminatedNumbers, value)
		}
		p.LinesCompleted = CompletedLines(p.BoardNumbers, p.EliminatedNumbers)
		if p.UserID == mover && p.Status == models.PlayerSkipped {
			p.Status = models.PlayerPlaying
		}
		if p.LinesCompleted >= FinishLines && p.Rank == nil {
			rank := r.RankedCount() + 1
			p.Rank = &rank
			p.Status = models.PlayerFinished
			r.WinnerOrder = append(r.WinnerOrder, p.UserID)
		}
	}

	// With more than two players the game ends once two have finished;
	// head-to-head it ends on the first finisher. Exhausting all 25 numbers
	// always ends it.
	threshold := 1
	if len(r.Players) > 2 {
		threshold = 2
	}
	ended := r.RankedCount() >= threshold || len(r.CalledNumbers) >= boardSize
	return Outcome{Ended: ended}, nil
}

// Skip marks the stalled holder SKIPPED. The state is recoverable: their next
// successful move restores them to PLAYING.
func (BingoRules) Skip(r *models.Room, holder uuid.UUID) {
	p := r.Player(holder)
	if p != nil && p.Status != models.PlayerFinished {
		p.Status = models.PlayerSkipped
	}
}

// CompletedLines counts fully-eliminated rows, columns and diagonals on a
// 5x5 board given in row-major order. The result is 0..12.
func CompletedLines(board []int, eliminated []int) int {
	if len(board) != boardSize {
		return 0
	}

	marked := make(map[int]bool, len(eliminated))
	for _, n := range eliminated {
		marked[n] = true
	}

	lines := 0
	for row := 0; row < 5; row++ {
		full := true
		for col := 0; col < 5; col++ {
			if !marked[board[row*5+col]] {
				full = false
				break
			}
		}
		if full {
			lines++
		}
	}
	for col := 0; col < 5; col++ {
		full := true
		for row := 0; row < 5; row++ {
			if !marked[board[row*5+col]] {
				full = false
				break
			}
		}
		if full {
			lines++
		}
	}

	diag := true
	for i := 0; i < 5; i++ {
		if !marked[board[i*5+i]] {
			diag = false
			break
		}
	}
	if diag {
		lines++
	}
	diag = true
	for i := 0; i < 5; i++ {
		if !marked[board[i*5+(4-i)]] {
			diag = false
			break
		}
	}
	if diag {
		lines++
	}

	return lines
}

// buildBoard returns a random permutation of 1..25.
func buildBoard(rng *rand.Rand) []int {
	numbers := make([]int, boardSize)
	for i := range numbers {
		numbers[i] = i + 1
	}
	rng.Shuffle(len(numbers), func(i, j int) {
		numbers[i], numbers[j] = numbers[j], numbers[i]
	})
	return numbers
}

// assignUniqueBoards gives each player a board no other player in the room has.
func assignUniqueBoards(players []*models.RoomPlayer) {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	used := make(map[string]bool, len(players))
	for _, p := range players {
		board := buildBoard(rng)
		for used[boardKey(board)] {
			board = buildBoard(rng)
		}
		used[boardKey(board)] = true
		p.BoardNumbers = board
	}
}

func boardKey(board []int) string {
	key := make([]byte, len(board))
	for i, n := range board {
		key[i] = byte(n)
	}
	return string(key)
}

func containsInt(xs []int, v int) bool {
	for _, x := range xs {
		if x == v {
			return true
		}
	}
	return false
}
