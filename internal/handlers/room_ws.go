// internal/handlers/room_ws.go
package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/dvsk-dev/gamify/internal/broadcast"
	"github.com/dvsk-dev/gamify/internal/engine"
	"github.com/dvsk-dev/gamify/internal/store"
)

const wsWriteTimeout = 3 * time.Second

// clientCommand is one inbound WebSocket frame from a room member.
type clientCommand struct {
	Action string `json:"action"`
	// Number is the BINGO number or OXO cell index for mark_number.
	Number *int `json:"number,omitempty"`
}

// RoomWSHandler upgrades a member connection for /rooms/ws/{room_id}.
// Non-members are rejected before any game state is sent.
func RoomWSHandler(st store.Store, eng *engine.Engine, bus *broadcast.Bus, logger *logrus.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		roomID := strings.ToUpper(pathTail(r, "/rooms/ws/"))
		if roomID == "" {
			writeJSONError(w, http.StatusBadRequest, "missing room id")
			return
		}
		userID, err := requestUserID(r)
		if err != nil {
			writeJSONError(w, http.StatusForbidden, "authentication required")
			return
		}

		room, err := st.Get(r.Context(), roomID)
		if err != nil {
			writeJSONError(w, http.StatusNotFound, "room not found")
			return
		}

		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			Subprotocols:   []string{"game"},
			OriginPatterns: []string{"*"},
		})
		if err != nil {
			logger.WithError(err).Warn("websocket upgrade failed")
			return
		}

		if room.Player(userID) == nil {
			conn.Close(websocket.StatusPolicyViolation, "not a room member")
			return
		}

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		sub := bus.Subscribe(roomID, userID)
		defer bus.Unsubscribe(roomID, sub)

		// Write pump: everything this connection sends flows through the
		// subscriber channel so writes are serialized.
		go func() {
			defer cancel()
			for msg := range sub.C() {
				wctx, wcancel := context.WithTimeout(ctx, wsWriteTimeout)
				err := conn.Write(wctx, websocket.MessageText, msg)
				wcancel()
				if err != nil {
					return
				}
			}
		}()

		sendEvent(sub, engine.SnapshotEvent(engine.EventRoomSnapshot, room))

		logger.WithFields(logrus.Fields{
			"room_id": roomID,
			"user_id": userID,
		}).Info("room websocket connected")

		for {
			_, data, err := conn.Read(ctx)
			if err != nil {
				conn.Close(websocket.StatusNormalClosure, "closing")
				return
			}
			var cmd clientCommand
			if err := json.Unmarshal(data, &cmd); err != nil {
				sendEvent(sub, engine.ErrorEvent("invalid message"))
				continue
			}
			handleCommand(ctx, eng, sub, roomID, userID, cmd, logger)
		}
	}
}

func handleCommand(ctx context.Context, eng *engine.Engine, sub *broadcast.Subscriber, roomID string, userID uuid.UUID, cmd clientCommand, logger *logrus.Logger) {
	var err error
	switch cmd.Action {
	case "start_game":
		_, err = eng.Start(ctx, roomID, userID)
	case "mark_number":
		if cmd.Number == nil {
			sendEvent(sub, engine.ErrorEvent("number is required"))
			return
		}
		_, err = eng.Move(ctx, roomID, userID, *cmd.Number)
	case "rematch":
		_, err = eng.Rematch(ctx, roomID, userID)
	case "room_state":
		var ev engine.Event
		if ev, err = eng.Snapshot(ctx, roomID); err == nil {
			sendEvent(sub, ev)
		}
	default:
		sendEvent(sub, engine.ErrorEvent("unknown action: "+cmd.Action))
		return
	}
	if err != nil {
		// Rule violations go back to the offending connection only; the
		// room at large never sees them.
		logger.WithFields(logrus.Fields{
			"room_id": roomID,
			"user_id": userID,
			"action":  cmd.Action,
		}).WithError(err).Debug("room command rejected")
		sendEvent(sub, engine.ErrorEvent(err.Error()))
	}
}

// sendEvent delivers an event to one subscriber through its own channel,
// keeping the write pump as the single writer.
func sendEvent(sub *broadcast.Subscriber, ev engine.Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		return
	}
	sub.Send(data)
}
