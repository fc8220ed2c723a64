// internal/handlers/user.go
package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/dvsk-dev/gamify/internal/database"
	"github.com/dvsk-dev/gamify/internal/models"
)

type registerRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// CreateUserHandler registers a user. The profile row is provisioned inside
// database.CreateUser, in the same transaction as the user itself.
func CreateUserHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	if req.Username == "" || req.Password == "" {
		writeJSONError(w, http.StatusBadRequest, "username and password are required")
		return
	}

	user := models.User{Username: req.Username, Password: req.Password}
	if err := database.CreateUser(r.Context(), &user); err != nil {
		writeJSONError(w, http.StatusConflict, "failed to create user")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"id":       user.ID,
		"username": user.Username,
	})
}

// LoginHandler verifies credentials and sets the auth_token cookie.
func LoginHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	token, err := database.AuthenticateUser(r.Context(), req.Username, req.Password)
	if err != nil {
		writeJSONError(w, http.StatusForbidden, "invalid credentials")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     "auth_token",
		Value:    token,
		HttpOnly: true,
		Path:     "/",
	})
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

// ProfileHandler returns the caller's aggregate counters.
func ProfileHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := requestUserID(r)
	if err != nil {
		writeJSONError(w, http.StatusForbidden, "authentication required")
		return
	}

	profile, err := database.GetProfile(r.Context(), userID)
	if err != nil {
		writeJSONError(w, http.StatusNotFound, "profile not found")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"username":      profile.Username,
		"total_matches": profile.TotalMatches,
		"wins":          profile.Wins,
		"second_place":  profile.SecondPlace,
		"losses":        profile.Losses,
		"points":        profile.Points,
		"win_rate":      profile.WinRate(),
	})
}

// LeaderboardHandler lists profiles ranked by win rate then points.
func LeaderboardHandler(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if s := r.URL.Query().Get("limit"); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v > 0 && v <= 200 {
			limit = v
		}
	}

	profiles, err := database.Leaderboard(r.Context(), limit)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to load leaderboard")
		return
	}

	entries := make([]map[string]interface{}, 0, len(profiles))
	for i := range profiles {
		p := &profiles[i]
		entries = append(entries, map[string]interface{}{
			"username":      p.Username,
			"total_matches": p.TotalMatches,
			"wins":          p.Wins,
			"second_place":  p.SecondPlace,
			"losses":        p.Losses,
			"points":        p.Points,
			"win_rate":      p.WinRate(),
		})
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"leaderboard": entries})
}
