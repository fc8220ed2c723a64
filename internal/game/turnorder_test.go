// internal/game/turnorder_test.go
package game

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dvsk-dev/gamify/internal/models"
)

func makePlayers(n int) []*models.RoomPlayer {
	players := make([]*models.RoomPlayer, n)
	for i := range players {
		players[i] = &models.RoomPlayer{
			UserID:    uuid.New(),
			TurnOrder: i + 1,
			Status:    models.PlayerPlaying,
		}
	}
	return players
}

func TestNextTurn(t *testing.T) {
	t.Run("nil current picks the first eligible player", func(t *testing.T) {
		players := makePlayers(3)
		next := NextTurn(players, uuid.Nil)
		require.NotNil(t, next)
		assert.Equal(t, players[0].UserID, next.UserID)

		players[0].Status = models.PlayerFinished
		next = NextTurn(players, uuid.Nil)
		require.NotNil(t, next)
		assert.Equal(t, players[1].UserID, next.UserID)
	})

	t.Run("cycles in turn order", func(t *testing.T) {
		for n := 2; n <= 5; n++ {
			players := makePlayers(n)
			current := players[0].UserID
			for i := 1; i <= 2*n; i++ {
				next := NextTurn(players, current)
				require.NotNil(t, next)
				assert.Equal(t, players[i%n].UserID, next.UserID, "n=%d step=%d", n, i)
				current = next.UserID
			}
		}
	})

	t.Run("skips finished players", func(t *testing.T) {
		players := makePlayers(4)
		players[1].Status = models.PlayerFinished
		players[2].Status = models.PlayerFinished

		next := NextTurn(players, players[0].UserID)
		require.NotNil(t, next)
		assert.Equal(t, players[3].UserID, next.UserID)

		next = NextTurn(players, players[3].UserID)
		require.NotNil(t, next)
		assert.Equal(t, players[0].UserID, next.UserID)
	})

	t.Run("skipped players still take turns", func(t *testing.T) {
		players := makePlayers(3)
		players[1].Status = models.PlayerSkipped

		next := NextTurn(players, players[0].UserID)
		require.NotNil(t, next)
		assert.Equal(t, players[1].UserID, next.UserID)
	})

	t.Run("nil when everyone finished", func(t *testing.T) {
		players := makePlayers(3)
		for _, p := range players {
			p.Status = models.PlayerFinished
		}
		assert.Nil(t, NextTurn(players, players[0].UserID))
		assert.Nil(t, NextTurn(players, uuid.Nil))
	})

	t.Run("unknown current starts from the beginning", func(t *testing.T) {
		players := makePlayers(3)
		next := NextTurn(players, uuid.New())
		require.NotNil(t, next)
		assert.Equal(t, players[0].UserID, next.UserID)
	})

	t.Run("empty player list", func(t *testing.T) {
		assert.Nil(t, NextTurn(nil, uuid.Nil))
	})
}
