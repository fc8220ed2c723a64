// internal/engine/events.go
package engine

import (
	"time"

	"github.com/google/uuid"

	"github.com/dvsk-dev/gamify/internal/models"
)

// EventType names an outbound room event.
type EventType string

const (
	EventRoomSnapshot    EventType = "room_snapshot"
	EventGameStarted     EventType = "game_started"
	EventTurnChanged     EventType = "turn_changed"
	EventGameEnded       EventType = "game_ended"
	EventTurnAutoSkipped EventType = "turn_auto_skipped"
	EventError           EventType = "error"
)

// Event is the wire shape for everything pushed to room subscribers. Every
// non-error event carries a full snapshot, enough for any client to
// resynchronize from scratch.
type Event struct {
	Type    EventType `json:"type"`
	Data    *Snapshot `json:"data,omitempty"`
	Message string    `json:"message,omitempty"`
}

// ErrorEvent builds the error payload sent to a single offending connection.
func ErrorEvent(message string) Event {
	return Event{Type: EventError, Message: message}
}

// PlayerSnapshot is one membership inside a Snapshot.
type PlayerSnapshot struct {
	UserID            uuid.UUID           `json:"user_id"`
	Username          string              `json:"username"`
	TurnOrder         int                 `json:"turn_order"`
	Status            models.PlayerStatus `json:"status"`
	BoardNumbers      []int               `json:"board_numbers,omitempty"`
	EliminatedNumbers []int               `json:"eliminated_numbers,omitempty"`
	LinesCompleted    int                 `json:"lines_completed"`
	Rank              *int                `json:"rank"`
}

// Snapshot is the full serialized room state.
type Snapshot struct {
	RoomID              string            `json:"room_id"`
	OwnerID             uuid.UUID         `json:"owner_id"`
	OwnerUsername       string            `json:"owner_username"`
	GameType            models.GameType   `json:"game_type"`
	Status              models.GameStatus `json:"status"`
	MaxPlayers          int               `json:"max_players"`
	CurrentTurnPlayerID *uuid.UUID        `json:"current_turn_player_id"`
	CurrentTurnUsername *string           `json:"current_turn_username"`
	CalledNumbers       []int             `json:"called_numbers"`
	Grid                []*uuid.UUID      `json:"grid,omitempty"`
	TurnDeadline        *time.Time        `json:"turn_deadline"`
	WinnerOrder         []uuid.UUID       `json:"winner_order"`
	Players             []PlayerSnapshot  `json:"players"`
}

// NewSnapshot serializes a room. The room must already be a private copy
// (the store only ever returns copies).
func NewSnapshot(r *models.Room) *Snapshot {
	snap := &Snapshot{
		RoomID:              r.RoomID,
		OwnerID:             r.OwnerID,
		GameType:            r.GameType,
		Status:              r.Status,
		MaxPlayers:          r.MaxPlayers,
		CurrentTurnPlayerID: r.CurrentTurnPlayer,
		CalledNumbers:       r.CalledNumbers,
		TurnDeadline:        r.TurnDeadline,
		WinnerOrder:         r.WinnerOrder,
	}
	if snap.CalledNumbers == nil {
		snap.CalledNumbers = []int{}
	}
	if snap.WinnerOrder == nil {
		snap.WinnerOrder = []uuid.UUID{}
	}
	if r.GameType == models.GameTypeOXO && len(r.Grid) == models.GridCells {
		snap.Grid = make([]*uuid.UUID, len(r.Grid))
		for i := range r.Grid {
			if r.Grid[i] != uuid.Nil {
				cell := r.Grid[i]
				snap.Grid[i] = &cell
			}
		}
	}
	for _, p := range r.Players {
		if p.UserID == r.OwnerID {
			snap.OwnerUsername = p.Username
		}
		if r.CurrentTurnPlayer != nil && p.UserID == *r.CurrentTurnPlayer {
			name := p.Username
			snap.CurrentTurnUsername = &name
		}
		snap.Players = append(snap.Players, PlayerSnapshot{
			UserID:            p.UserID,
			Username:          p.Username,
			TurnOrder:         p.TurnOrder,
			Status:            p.Status,
			BoardNumbers:      p.BoardNumbers,
			EliminatedNumbers: p.EliminatedNumbers,
			LinesCompleted:    p.LinesCompleted,
			Rank:              p.Rank,
		})
	}
	return snap
}

// SnapshotEvent wraps a room into an event of the given type.
func SnapshotEvent(t EventType, r *models.Room) Event {
	return Event{Type: t, Data: NewSnapshot(r)}
}
