// internal/game/rules_test.go
package game

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dvsk-dev/gamify/internal/models"
)

func sequentialBoard() []int {
	board := make([]int, 25)
	for i := range board {
		board[i] = i + 1
	}
	return board
}

func newBingoRoom(t *testing.T, playerCount int) *models.Room {
	t.Helper()
	room := &models.Room{
		RoomID:   "TEST01",
		GameType: models.GameTypeBingo,
		Status:   models.StatusStarted,
	}
	for i := 0; i < playerCount; i++ {
		room.Players = append(room.Players, &models.RoomPlayer{
			UserID:    uuid.New(),
			TurnOrder: i + 1,
			Status:    models.PlayerPlaying,
		})
	}
	room.OwnerID = room.Players[0].UserID
	BingoRules{}.Setup(room)
	return room
}

func TestCompletedLines(t *testing.T) {
	board := sequentialBoard()

	t.Run("empty", func(t *testing.T) {
		assert.Equal(t, 0, CompletedLines(board, nil))
	})

	t.Run("single row", func(t *testing.T) {
		assert.Equal(t, 1, CompletedLines(board, []int{1, 2, 3, 4, 5}))
	})

	t.Run("single column", func(t *testing.T) {
		assert.Equal(t, 1, CompletedLines(board, []int{1, 6, 11, 16, 21}))
	})

	t.Run("diagonals", func(t *testing.T) {
		assert.Equal(t, 1, CompletedLines(board, []int{1, 7, 13, 19, 25}))
		assert.Equal(t, 1, CompletedLines(board, []int{5, 9, 13, 17, 21}))
	})

	t.Run("overlapping lines counted separately", func(t *testing.T) {
		// First row, first column and both diagonals share corners and the
		// center but count as four distinct lines.
		eliminated := []int{
			1, 2, 3, 4, 5,
			6, 11, 16, 21,
			7, 13, 19, 25,
			9, 17,
		}
		assert.Equal(t, 4, CompletedLines(board, eliminated))
	})

	t.Run("everything eliminated", func(t *testing.T) {
		all := make([]int, 25)
		for i := range all {
			all[i] = i + 1
		}
		assert.Equal(t, 12, CompletedLines(board, all))
	})

	t.Run("wrong board size", func(t *testing.T) {
		assert.Equal(t, 0, CompletedLines([]int{1, 2, 3}, []int{1, 2, 3}))
	})
}

func TestBingoSetupAssignsUniqueBoards(t *testing.T) {
	room := newBingoRoom(t, 5)

	seen := make(map[string]bool)
	for _, p := range room.Players {
		require.Len(t, p.BoardNumbers, 25)

		distinct := make(map[int]bool)
		for _, n := range p.BoardNumbers {
			assert.GreaterOrEqual(t, n, 1)
			assert.LessOrEqual(t, n, 25)
			distinct[n] = true
		}
		assert.Len(t, distinct, 25, "board must be a permutation of 1..25")

		key := boardKey(p.BoardNumbers)
		assert.False(t, seen[key], "two players share a board")
		seen[key] = true
	}
}

func TestBingoApply(t *testing.T) {
	t.Run("rejects out of range numbers", func(t *testing.T) {
		room := newBingoRoom(t, 2)
		_, err := BingoRules{}.Apply(room, room.Players[0].UserID, 0)
		assert.ErrorIs(t, err, ErrInvalidMove)
		_, err = BingoRules{}.Apply(room, room.Players[0].UserID, 26)
		assert.ErrorIs(t, err, ErrInvalidMove)
	})

	t.Run("rejects repeated numbers", func(t *testing.T) {
		room := newBingoRoom(t, 2)
		_, err := BingoRules{}.Apply(room, room.Players[0].UserID, 7)
		require.NoError(t, err)
		_, err = BingoRules{}.Apply(room, room.Players[1].UserID, 7)
		assert.ErrorIs(t, err, ErrInvalidMove)
		assert.Equal(t, []int{7}, room.CalledNumbers)
	})

	t.Run("eliminates from every board", func(t *testing.T) {
		room := newBingoRoom(t, 3)
		_, err := BingoRules{}.Apply(room, room.Players[0].UserID, 13)
		require.NoError(t, err)
		for _, p := range room.Players {
			assert.Contains(t, p.EliminatedNumbers, 13)
		}
	})

	t.Run("move restores skipped mover", func(t *testing.T) {
		room := newBingoRoom(t, 3)
		mover := room.Players[1]
		BingoRules{}.Skip(room, mover.UserID)
		require.Equal(t, models.PlayerSkipped, mover.Status)

		_, err := BingoRules{}.Apply(room, mover.UserID, 4)
		require.NoError(t, err)
		assert.Equal(t, models.PlayerPlaying, mover.Status)
	})

	t.Run("skip never demotes a finished player", func(t *testing.T) {
		room := newBingoRoom(t, 3)
		p := room.Players[0]
		rank := 1
		p.Rank = &rank
		p.Status = models.PlayerFinished
		BingoRules{}.Skip(room, p.UserID)
		assert.Equal(t, models.PlayerFinished, p.Status)
	})
}

func TestBingoFinishAndEnd(t *testing.T) {
	t.Run("head to head ends on first finisher", func(t *testing.T) {
		room := newBingoRoom(t, 2)
		// Force identical sequential boards so elimination is predictable.
		for _, p := range room.Players {
			p.BoardNumbers = sequentialBoard()
		}

		var outcome Outcome
		var err error
		// Numbers covering five lines on the sequential board: rows one and
		// two, columns one and two, and the main diagonal.
		for _, n := range []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 16, 21, 12, 17, 22, 13, 19, 25} {
			outcome, err = BingoRules{}.Apply(room, room.Players[0].UserID, n)
			require.NoError(t, err)
		}

		assert.True(t, outcome.Ended)
		assert.False(t, outcome.Draw)
		for _, p := range room.Players {
			require.NotNil(t, p.Rank)
			assert.Equal(t, models.PlayerFinished, p.Status)
			assert.GreaterOrEqual(t, p.LinesCompleted, FinishLines)
		}
		// Both players finished on the same call; ranks are 1 and 2 in turn
		// order and both appear in the winner order.
		assert.Equal(t, 1, *room.Players[0].Rank)
		assert.Equal(t, 2, *room.Players[1].Rank)
		assert.Equal(t, []uuid.UUID{room.Players[0].UserID, room.Players[1].UserID}, room.WinnerOrder)
	})

	t.Run("ends when all numbers called", func(t *testing.T) {
		room := newBingoRoom(t, 2)

		var outcome Outcome
		for n := 1; n <= 25; n++ {
			var err error
			outcome, err = BingoRules{}.Apply(room, room.Players[0].UserID, n)
			require.NoError(t, err)
			if outcome.Ended {
				break
			}
		}
		assert.True(t, outcome.Ended)
	})
}

func TestGridWinner(t *testing.T) {
	x := uuid.New()
	o := uuid.New()

	t.Run("top row", func(t *testing.T) {
		grid := make([]uuid.UUID, models.GridCells)
		grid[0], grid[1], grid[2] = x, x, x
		grid[3], grid[4] = o, o
		assert.Equal(t, x, GridWinner(grid))
	})

	t.Run("column", func(t *testing.T) {
		grid := make([]uuid.UUID, models.GridCells)
		grid[1], grid[4], grid[7] = o, o, o
		assert.Equal(t, o, GridWinner(grid))
	})

	t.Run("diagonal", func(t *testing.T) {
		grid := make([]uuid.UUID, models.GridCells)
		grid[2], grid[4], grid[6] = x, x, x
		assert.Equal(t, x, GridWinner(grid))
	})

	t.Run("no winner", func(t *testing.T) {
		grid := make([]uuid.UUID, models.GridCells)
		grid[0], grid[1] = x, o
		assert.Equal(t, uuid.Nil, GridWinner(grid))
	})

	t.Run("full board without a line", func(t *testing.T) {
		// X O X / X O O / O X X
		grid := []uuid.UUID{x, o, x, x, o, o, o, x, x}
		assert.Equal(t, uuid.Nil, GridWinner(grid))
	})
}

func TestOXOApply(t *testing.T) {
	newOXORoom := func() *models.Room {
		room := &models.Room{
			RoomID:   "TEST02",
			GameType: models.GameTypeOXO,
			Status:   models.StatusStarted,
			Players: []*models.RoomPlayer{
				{UserID: uuid.New(), TurnOrder: 1, Status: models.PlayerPlaying},
				{UserID: uuid.New(), TurnOrder: 2, Status: models.PlayerPlaying},
			},
		}
		room.OwnerID = room.Players[0].UserID
		OXORules{}.Setup(room)
		return room
	}

	t.Run("rejects occupied cell", func(t *testing.T) {
		room := newOXORoom()
		_, err := OXORules{}.Apply(room, room.Players[0].UserID, 4)
		require.NoError(t, err)
		_, err = OXORules{}.Apply(room, room.Players[1].UserID, 4)
		assert.ErrorIs(t, err, ErrInvalidMove)
	})

	t.Run("rejects out of range cell", func(t *testing.T) {
		room := newOXORoom()
		_, err := OXORules{}.Apply(room, room.Players[0].UserID, -1)
		assert.ErrorIs(t, err, ErrInvalidMove)
		_, err = OXORules{}.Apply(room, room.Players[0].UserID, 9)
		assert.ErrorIs(t, err, ErrInvalidMove)
	})

	t.Run("winner finishes both players", func(t *testing.T) {
		room := newOXORoom()
		a, b := room.Players[0], room.Players[1]

		moves := []struct {
			who  uuid.UUID
			cell int
		}{
			{a.UserID, 0}, {b.UserID, 3},
			{a.UserID, 1}, {b.UserID, 4},
			{a.UserID, 2},
		}
		var outcome Outcome
		for _, m := range moves {
			var err error
			outcome, err = OXORules{}.Apply(room, m.who, m.cell)
			require.NoError(t, err)
		}

		assert.True(t, outcome.Ended)
		assert.False(t, outcome.Draw)
		require.NotNil(t, a.Rank)
		require.NotNil(t, b.Rank)
		assert.Equal(t, 1, *a.Rank)
		assert.Equal(t, 2, *b.Rank)
		assert.Equal(t, []uuid.UUID{a.UserID}, room.WinnerOrder)
	})

	t.Run("full grid without winner is a draw", func(t *testing.T) {
		room := newOXORoom()
		a, b := room.Players[0], room.Players[1]

		// X O X / X O O / O X X as alternating legal moves.
		moves := []struct {
			who  uuid.UUID
			cell int
		}{
			{a.UserID, 0}, {b.UserID, 1},
			{a.UserID, 2}, {b.UserID, 4},
			{a.UserID, 3}, {b.UserID, 5},
			{a.UserID, 7}, {b.UserID, 6},
			{a.UserID, 8},
		}
		var outcome Outcome
		for _, m := range moves {
			var err error
			outcome, err = OXORules{}.Apply(room, m.who, m.cell)
			require.NoError(t, err)
		}

		assert.True(t, outcome.Ended)
		assert.True(t, outcome.Draw)
		assert.Nil(t, a.Rank)
		assert.Nil(t, b.Rank)
	})

	t.Run("rematch resets the board", func(t *testing.T) {
		room := newOXORoom()
		a, b := room.Players[0], room.Players[1]
		for _, m := range []struct {
			who  uuid.UUID
			cell int
		}{{a.UserID, 0}, {b.UserID, 3}, {a.UserID, 1}, {b.UserID, 4}, {a.UserID, 2}} {
			_, err := OXORules{}.Apply(room, m.who, m.cell)
			require.NoError(t, err)
		}
		require.NotNil(t, a.Rank)

		OXORules{}.Setup(room)
		assert.Nil(t, a.Rank)
		assert.Nil(t, b.Rank)
		assert.Nil(t, room.WinnerOrder)
		for _, cell := range room.Grid {
			assert.Equal(t, uuid.Nil, cell)
		}
		assert.Equal(t, models.PlayerPlaying, a.Status)
	})
}

func TestValidatePlayerCount(t *testing.T) {
	assert.True(t, errors.Is(BingoRules{}.ValidatePlayerCount(1), ErrNotEnoughPlayers))
	assert.NoError(t, BingoRules{}.ValidatePlayerCount(2))
	assert.NoError(t, BingoRules{}.ValidatePlayerCount(5))

	assert.True(t, errors.Is(OXORules{}.ValidatePlayerCount(1), ErrNotEnoughPlayers))
	assert.True(t, errors.Is(OXORules{}.ValidatePlayerCount(3), ErrNotEnoughPlayers))
	assert.NoError(t, OXORules{}.ValidatePlayerCount(2))
}

func TestForType(t *testing.T) {
	assert.Equal(t, models.GameTypeBingo, ForType(models.GameTypeBingo).Type())
	assert.Equal(t, models.GameTypeOXO, ForType(models.GameTypeOXO).Type())
}
