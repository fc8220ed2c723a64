package models

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWinRate(t *testing.T) {
	assert.Equal(t, 0.0, (&Profile{}).WinRate())
	assert.Equal(t, 100.0, (&Profile{TotalMatches: 4, Wins: 4}).WinRate())
	assert.Equal(t, 50.0, (&Profile{TotalMatches: 4, Wins: 2}).WinRate())
	// 1/3 rounds to two decimals.
	assert.Equal(t, 33.33, (&Profile{TotalMatches: 3, Wins: 1}).WinRate())
	assert.Equal(t, 66.67, (&Profile{TotalMatches: 3, Wins: 2}).WinRate())
}

func TestRoomClone(t *testing.T) {
	turn := uuid.New()
	rank := 1
	room := &Room{
		RoomID:            "ABC123",
		OwnerID:           uuid.New(),
		GameType:          GameTypeBingo,
		Status:            StatusStarted,
		CurrentTurnPlayer: &turn,
		CalledNumbers:     []int{1, 2, 3},
		WinnerOrder:       []uuid.UUID{turn},
		Players: []*RoomPlayer{
			{
				UserID:            turn,
				TurnOrder:         1,
				Status:            PlayerPlaying,
				BoardNumbers:      []int{5, 6, 7},
				EliminatedNumbers: []int{5},
				Rank:              &rank,
			},
		},
	}

	cp := room.Clone()
	require.Equal(t, room.RoomID, cp.RoomID)

	// Mutating the copy must not touch the original.
	cp.CalledNumbers[0] = 99
	*cp.CurrentTurnPlayer = uuid.New()
	cp.Players[0].EliminatedNumbers = append(cp.Players[0].EliminatedNumbers, 6)
	*cp.Players[0].Rank = 5

	assert.Equal(t, 1, room.CalledNumbers[0])
	assert.Equal(t, turn, *room.CurrentTurnPlayer)
	assert.Len(t, room.Players[0].EliminatedNumbers, 1)
	assert.Equal(t, 1, *room.Players[0].Rank)
}

func TestGameTypeValid(t *testing.T) {
	assert.True(t, GameTypeBingo.Valid())
	assert.True(t, GameTypeOXO.Valid())
	assert.False(t, GameType("CHESS").Valid())
}

func TestRoomPlayerLookup(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	room := &Room{Players: []*RoomPlayer{{UserID: a}, {UserID: b}}}

	require.NotNil(t, room.Player(a))
	assert.Equal(t, a, room.Player(a).UserID)
	assert.Nil(t, room.Player(uuid.New()))
	assert.Equal(t, 0, room.RankedCount())

	rank := 1
	room.Players[1].Rank = &rank
	assert.Equal(t, 1, room.RankedCount())
}
