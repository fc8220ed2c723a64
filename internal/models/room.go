// internal/models/room.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// GameType selects which rule set a room plays.
type GameType string

const (
	GameTypeBingo GameType = "BINGO" // shared-number elimination on 5x5 boards
	GameTypeOXO   GameType = "OXO"   // two-player tic-tac-toe
)

// Valid reports whether t is a known game type.
func (t GameType) Valid() bool {
	return t == GameTypeBingo || t == GameTypeOXO
}

// GameStatus is the lifecycle phase of a room.
type GameStatus string

const (
	StatusWaiting GameStatus = "WAITING"
	StatusStarted GameStatus = "STARTED"
	StatusEnded   GameStatus = "ENDED"
)

// PlayerStatus tracks a member's standing inside a started game.
type PlayerStatus string

const (
	PlayerPlaying  PlayerStatus = "PLAYING"
	PlayerSkipped  PlayerStatus = "SKIPPED"
	PlayerFinished PlayerStatus = "FINISHED"
)

// GridCells is the number of cells on the OXO board.
const GridCells = 9

// Room holds the full authoritative state of one game session: the room row
// plus its memberships. The state store hands out deep copies; only the
// store's Update callback ever sees the live instance.
type Room struct {
	RoomID     string
	OwnerID    uuid.UUID
	GameType   GameType
	MaxPlayers int
	Status     GameStatus

	// CurrentTurnPlayer is nil unless Status == StatusStarted.
	CurrentTurnPlayer *uuid.UUID
	// TurnDeadline is set iff CurrentTurnPlayer is set.
	TurnDeadline *time.Time

	// CalledNumbers is the BINGO shared state: numbers called so far, in order.
	CalledNumbers []int
	// Grid is the OXO shared state: 9 cells, uuid.Nil for empty. Its shape is
	// fixed when the room starts and never changes size.
	Grid []uuid.UUID

	// WinnerOrder lists finisher user ids, first finisher first.
	WinnerOrder []uuid.UUID

	CreatedAt time.Time

	// Players is kept sorted by TurnOrder.
	Players []*RoomPlayer
}

// RoomPlayer is one user's membership in a room.
type RoomPlayer struct {
	UserID   uuid.UUID
	Username string

	// TurnOrder is 1-based and never changes once assigned.
	TurnOrder int
	Status    PlayerStatus

	// BINGO per-player state.
	BoardNumbers      []int
	EliminatedNumbers []int
	LinesCompleted    int

	// Rank is the 1-based finishing position, nil until assigned. It is
	// assigned at most once per game.
	Rank *int

	JoinedAt time.Time
}

// Player returns the membership for the given user id, or nil.
func (r *Room) Player(userID uuid.UUID) *RoomPlayer {
	for _, p := range r.Players {
		if p.UserID == userID {
			return p
		}
	}
	return nil
}

// RankedCount returns how many players have been assigned a rank.
func (r *Room) RankedCount() int {
	n := 0
	for _, p := range r.Players {
		if p.Rank != nil {
			n++
		}
	}
	return n
}

// Clone returns a deep copy of the room, safe to hand to other goroutines.
func (r *Room) Clone() *Room {
	cp := *r
	if r.CurrentTurnPlayer != nil {
		id := *r.CurrentTurnPlayer
		cp.CurrentTurnPlayer = &id
	}
	if r.TurnDeadline != nil {
		t := *r.TurnDeadline
		cp.TurnDeadline = &t
	}
	cp.CalledNumbers = append([]int(nil), r.CalledNumbers...)
	cp.Grid = append([]uuid.UUID(nil), r.Grid...)
	cp.WinnerOrder = append([]uuid.UUID(nil), r.WinnerOrder...)
	cp.Players = make([]*RoomPlayer, len(r.Players))
	for i, p := range r.Players {
		pc := *p
		pc.BoardNumbers = append([]int(nil), p.BoardNumbers...)
		pc.EliminatedNumbers = append([]int(nil), p.EliminatedNumbers...)
		if p.Rank != nil {
			rank := *p.Rank
			pc.Rank = &rank
		}
		cp.Players[i] = &pc
	}
	return &cp
}
