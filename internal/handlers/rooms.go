// internal/handlers/rooms.go
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"strings"
	"time"

	"github.com/dvsk-dev/gamify/internal/broadcast"
	"github.com/dvsk-dev/gamify/internal/database"
	"github.com/dvsk-dev/gamify/internal/engine"
	"github.com/dvsk-dev/gamify/internal/models"
	"github.com/dvsk-dev/gamify/internal/store"
)

const roomCodeLength = 6

var roomCodeAlphabet = []rune("ABCDEFGHJKLMNPQRSTUVWXYZ23456789")

// generateRoomCode uses the top-level rand functions, whose shared source is
// lock protected, so concurrent create requests need no coordination here.
func generateRoomCode() string {
	var b strings.Builder
	for i := 0; i < roomCodeLength; i++ {
		b.WriteRune(roomCodeAlphabet[rand.Intn(len(roomCodeAlphabet))])
	}
	return b.String()
}

type createRoomRequest struct {
	GameType   string `json:"game_type"`
	MaxPlayers int    `json:"max_players"`
}

type joinRoomRequest struct {
	RoomID string `json:"room_id"`
}

// CreateRoomHandler creates a WAITING room with the caller as owner and first
// member. It writes through the same state store the engine mutates.
func CreateRoomHandler(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		userID, err := requestUserID(r)
		if err != nil {
			writeJSONError(w, http.StatusForbidden, "authentication required")
			return
		}

		req := createRoomRequest{GameType: string(models.GameTypeBingo), MaxPlayers: 5}
		if r.Body != nil && r.ContentLength != 0 {
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				writeJSONError(w, http.StatusBadRequest, "invalid request payload")
				return
			}
		}

		gameType := models.GameType(strings.ToUpper(req.GameType))
		if !gameType.Valid() {
			writeJSONError(w, http.StatusBadRequest, "game_type must be BINGO or OXO")
			return
		}
		if req.MaxPlayers < 2 || req.MaxPlayers > 5 {
			writeJSONError(w, http.StatusBadRequest, "max_players must be between 2 and 5")
			return
		}
		if gameType == models.GameTypeOXO {
			req.MaxPlayers = 2
		}

		user, err := database.GetUserByID(r.Context(), userID)
		if err != nil {
			writeJSONError(w, http.StatusForbidden, "unknown user")
			return
		}

		room := &models.Room{
			OwnerID:    userID,
			GameType:   gameType,
			MaxPlayers: req.MaxPlayers,
			Status:     models.StatusWaiting,
			CreatedAt:  time.Now(),
			Players: []*models.RoomPlayer{{
				UserID:    userID,
				Username:  user.Username,
				TurnOrder: 1,
				Status:    models.PlayerPlaying,
				JoinedAt:  time.Now(),
			}},
		}

		// Room codes are short, so retry on the rare collision.
		for attempt := 0; attempt < 10; attempt++ {
			room.RoomID = generateRoomCode()
			err = st.Create(r.Context(), room)
			if !errors.Is(err, store.ErrRoomExists) {
				break
			}
		}
		if err != nil {
			writeJSONError(w, http.StatusInternalServerError, "failed to create room")
			return
		}

		writeJSON(w, http.StatusCreated, engine.NewSnapshot(room))
	}
}

// JoinRoomHandler adds the caller to a WAITING room and pushes a fresh
// room_snapshot to everyone already connected, so members observe
// out-of-band joins.
func JoinRoomHandler(st store.Store, bus *broadcast.Bus) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		userID, err := requestUserID(r)
		if err != nil {
			writeJSONError(w, http.StatusForbidden, "authentication required")
			return
		}

		var req joinRoomRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RoomID == "" {
			writeJSONError(w, http.StatusBadRequest, "room_id is required")
			return
		}
		roomID := strings.ToUpper(req.RoomID)

		user, err := database.GetUserByID(r.Context(), userID)
		if err != nil {
			writeJSONError(w, http.StatusForbidden, "unknown user")
			return
		}

		room, err := st.Update(r.Context(), roomID, func(room *models.Room) error {
			if room.Player(userID) != nil {
				// Already a member; joining again is a no-op.
				return nil
			}
			if room.Status != models.StatusWaiting {
				return fmt.Errorf("game already started or ended")
			}
			if len(room.Players) >= room.MaxPlayers {
				return fmt.Errorf("room is full")
			}
			room.Players = append(room.Players, &models.RoomPlayer{
				UserID:    userID,
				Username:  user.Username,
				TurnOrder: len(room.Players) + 1,
				Status:    models.PlayerPlaying,
				JoinedAt:  time.Now(),
			})
			return nil
		})
		if errors.Is(err, store.ErrNotFound) {
			writeJSONError(w, http.StatusNotFound, "room not found")
			return
		}
		if err != nil {
			writeJSONError(w, http.StatusConflict, err.Error())
			return
		}

		bus.Publish(roomID, engine.SnapshotEvent(engine.EventRoomSnapshot, room))
		writeJSON(w, http.StatusOK, engine.NewSnapshot(room))
	}
}

// RoomDetailHandler returns a REST snapshot of a room.
func RoomDetailHandler(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		roomID := strings.ToUpper(pathTail(r, "/rooms/"))
		if roomID == "" {
			writeJSONError(w, http.StatusBadRequest, "missing room id")
			return
		}
		room, err := st.Get(r.Context(), roomID)
		if errors.Is(err, store.ErrNotFound) {
			writeJSONError(w, http.StatusNotFound, "room not found")
			return
		}
		if err != nil {
			writeJSONError(w, http.StatusInternalServerError, "failed to load room")
			return
		}
		writeJSON(w, http.StatusOK, engine.NewSnapshot(room))
	}
}
