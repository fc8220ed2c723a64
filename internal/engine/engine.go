// internal/engine/engine.go
package engine

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/dvsk-dev/gamify/internal/cache"
	"github.com/dvsk-dev/gamify/internal/game"
	"github.com/dvsk-dev/gamify/internal/models"
	"github.com/dvsk-dev/gamify/internal/store"
)

// errStaleTimer marks an auto-skip whose timer was superseded by a move or
// by the game ending. It never escapes AutoSkip.
var errStaleTimer = errors.New("stale turn timer")

// Publisher fans an event out to every connection subscribed to a room.
type Publisher interface {
	Publish(roomID string, message interface{})
}

// TurnTimers is the scheduler surface the engine drives: one pending timer
// per room, replaced on every new deadline, dropped when a room ends.
type TurnTimers interface {
	Arm(roomID string, deadline time.Time)
	Cancel(roomID string)
}

// Placement is one player's final standing. Rank 0 means unranked (a loss,
// or a draw when MatchResult.Draw is set).
type Placement struct {
	UserID uuid.UUID
	Rank   int
}

// MatchResult is handed to the Recorder exactly once per ended game.
type MatchResult struct {
	RoomID     string
	GameType   models.GameType
	Draw       bool
	Placements []Placement
}

// Recorder persists the profile side effects of a finished game.
type Recorder interface {
	RecordMatchResult(ctx context.Context, result MatchResult) error
}

// Engine orchestrates every room action: it validates under the store's
// per-room lock, applies the variant's rules, advances the turn, finalizes
// ended games, and emits the resulting event.
type Engine struct {
	store store.Store

	// Bus, Timers and Recorder are assigned after construction (the scheduler
	// needs the engine's AutoSkip as its fire callback, so one of the two has
	// to be wired late). All three are nil-guarded for tests.
	Bus      Publisher
	Timers   TurnTimers
	Recorder Recorder
}

func New(st store.Store) *Engine {
	return &Engine{store: st}
}

// Start begins a WAITING room's game. Only the owner may start, and the
// member count must satisfy the variant (BINGO >=2, OXO exactly 2).
func (e *Engine) Start(ctx context.Context, roomID string, requester uuid.UUID) (Event, error) {
	room, err := e.store.Update(ctx, roomID, func(r *models.Room) error {
		if r.OwnerID != requester {
			return game.ErrNotOwner
		}
		if r.Status != models.StatusWaiting {
			return game.ErrAlreadyStarted
		}
		rules := game.ForType(r.GameType)
		if err := rules.ValidatePlayerCount(len(r.Players)); err != nil {
			return err
		}
		rules.Setup(r)
		r.Status = models.StatusStarted
		e.beginTurn(r, rules, game.NextTurn(r.Players, uuid.Nil))
		return nil
	})
	if err != nil {
		return Event{}, err
	}

	e.logAction(roomID, requester, "start_game", nil)
	ev := SnapshotEvent(EventGameStarted, room)
	e.dispatch(room, ev)
	return ev, nil
}

// Move applies the requester's move: a called number for BINGO, a cell index
// for OXO. It either advances the turn or ends the game.
func (e *Engine) Move(ctx context.Context, roomID string, requester uuid.UUID, value int) (Event, error) {
	var result *MatchResult
	room, err := e.store.Update(ctx, roomID, func(r *models.Room) error {
		result = nil
		if r.Status != models.StatusStarted {
			return game.ErrNotStarted
		}
		if r.CurrentTurnPlayer == nil || *r.CurrentTurnPlayer != requester {
			return game.ErrNotYourTurn
		}
		if r.TurnDeadline != nil && time.Now().After(*r.TurnDeadline) {
			return game.ErrTurnExpired
		}

		rules := game.ForType(r.GameType)
		outcome, err := rules.Apply(r, requester, value)
		if err != nil {
			return err
		}

		if outcome.Ended {
			result = e.finalize(r, outcome)
			return nil
		}
		next := game.NextTurn(r.Players, requester)
		if next == nil {
			// Every remaining player finished on this move.
			result = e.finalize(r, game.Outcome{Ended: true})
			return nil
		}
		e.beginTurn(r, rules, next)
		return nil
	})
	if err != nil {
		return Event{}, err
	}

	e.logAction(roomID, requester, "mark_number", map[string]interface{}{"value": value})

	eventType := EventTurnChanged
	if result != nil {
		e.record(ctx, *result)
		eventType = EventGameEnded
	}
	ev := SnapshotEvent(eventType, room)
	e.dispatch(room, ev)
	return ev, nil
}

// AutoSkip forcibly resolves a stalled turn. It is called only by the turn
// scheduler and is idempotent against races with player moves: if the room
// is no longer STARTED, the stored deadline differs from the one the timer
// was armed with, or the deadline has not actually elapsed, it does nothing
// and returns nil. A timer firing late is therefore always safe.
func (e *Engine) AutoSkip(ctx context.Context, roomID string, expectedDeadline time.Time) (*Event, error) {
	var result *MatchResult
	room, err := e.store.Update(ctx, roomID, func(r *models.Room) error {
		result = nil
		if r.Status != models.StatusStarted || r.TurnDeadline == nil || r.CurrentTurnPlayer == nil {
			return errStaleTimer
		}
		if !r.TurnDeadline.Equal(expectedDeadline) {
			return errStaleTimer
		}
		if time.Now().Before(*r.TurnDeadline) {
			return errStaleTimer
		}

		rules := game.ForType(r.GameType)
		holder := *r.CurrentTurnPlayer
		rules.Skip(r, holder)

		next := game.NextTurn(r.Players, holder)
		if next == nil {
			result = e.finalize(r, game.Outcome{Ended: true})
			return nil
		}
		e.beginTurn(r, rules, next)
		return nil
	})
	if errors.Is(err, errStaleTimer) || errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	e.logAction(roomID, uuid.Nil, "turn_auto_skipped", nil)

	eventType := EventTurnAutoSkipped
	if result != nil {
		e.record(ctx, *result)
		eventType = EventGameEnded
	}
	ev := SnapshotEvent(eventType, room)
	e.dispatch(room, ev)
	return &ev, nil
}

// Rematch restarts an ENDED OXO room with the same members and turn order.
func (e *Engine) Rematch(ctx context.Context, roomID string, requester uuid.UUID) (Event, error) {
	room, err := e.store.Update(ctx, roomID, func(r *models.Room) error {
		rules := game.ForType(r.GameType)
		if !rules.SupportsRematch() {
			return game.ErrRematchUnsupported
		}
		if r.Status != models.StatusEnded {
			return game.ErrStillInProgress
		}
		rules.Setup(r)
		r.Status = models.StatusStarted
		e.beginTurn(r, rules, game.NextTurn(r.Players, uuid.Nil))
		return nil
	})
	if err != nil {
		return Event{}, err
	}

	e.logAction(roomID, requester, "rematch", nil)
	ev := SnapshotEvent(EventGameStarted, room)
	e.dispatch(room, ev)
	return ev, nil
}

// Snapshot returns the room's current state as a room_snapshot event. It is
// read only and has no side effects, so any connection can call it at any
// time to resynchronize.
func (e *Engine) Snapshot(ctx context.Context, roomID string) (Event, error) {
	room, err := e.store.Get(ctx, roomID)
	if err != nil {
		return Event{}, err
	}
	return SnapshotEvent(EventRoomSnapshot, room), nil
}

// beginTurn hands the turn to next and arms a fresh deadline. Callers run
// inside the store's update.
func (e *Engine) beginTurn(r *models.Room, rules game.Rules, next *models.RoomPlayer) {
	if next == nil {
		return
	}
	id := next.UserID
	deadline := time.Now().Add(rules.TurnTimeout())
	r.CurrentTurnPlayer = &id
	r.TurnDeadline = &deadline
}

// finalize performs the STARTED -> ENDED transition. It runs inside the
// store's per-room update, so exactly one concurrent writer can observe
// STARTED and perform it; the returned result drives the single profile
// update pass outside the lock.
func (e *Engine) finalize(r *models.Room, outcome game.Outcome) *MatchResult {
	r.Status = models.StatusEnded
	r.CurrentTurnPlayer = nil
	r.TurnDeadline = nil

	result := &MatchResult{
		RoomID:   r.RoomID,
		GameType: r.GameType,
		Draw:     outcome.Draw,
	}
	for _, p := range r.Players {
		rank := 0
		if p.Rank != nil {
			rank = *p.Rank
		}
		result.Placements = append(result.Placements, Placement{UserID: p.UserID, Rank: rank})
	}
	return result
}

func (e *Engine) record(ctx context.Context, result MatchResult) {
	if e.Recorder == nil {
		return
	}
	// Detach from the caller's context so a dropped connection cannot abort
	// the one-and-only profile update pass.
	recordCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := e.Recorder.RecordMatchResult(recordCtx, result); err != nil {
		// Infrastructure failure: logged, not retried, and the game result
		// event still goes out.
		log.Printf("engine: failed to record match result for room %s: %v", result.RoomID, err)
	}
}

// dispatch publishes the event and keeps the scheduler in sync with the
// room's deadline. Broadcast happens after the state is committed and is
// best effort.
func (e *Engine) dispatch(r *models.Room, ev Event) {
	if e.Bus != nil {
		e.Bus.Publish(r.RoomID, ev)
	}
	if e.Timers == nil {
		return
	}
	if r.Status == models.StatusStarted && r.TurnDeadline != nil {
		e.Timers.Arm(r.RoomID, *r.TurnDeadline)
	} else {
		e.Timers.Cancel(r.RoomID)
	}
}

// logAction pushes an action record onto the historian queue. Asynchronous
// and best effort, never on the room's lock path.
func (e *Engine) logAction(roomID string, actor uuid.UUID, action string, payload map[string]interface{}) {
	if cache.Rdb == nil {
		return
	}
	record := cache.RoomActionRecord{
		RoomID:    roomID,
		ActorID:   actor,
		Action:    action,
		Payload:   payload,
		Timestamp: time.Now().UnixMilli(),
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := cache.PublishRoomAction(ctx, record); err != nil {
			log.Printf("engine: failed to publish action %q for room %s: %v", action, roomID, err)
		}
	}()
}
