package models

import "github.com/google/uuid"

type User struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
	Password string    `json:"password,omitempty"`
}

// Profile aggregates a user's match results. It is mutated only by the
// engine's finalize pass, exactly once per ended room.
type Profile struct {
	UserID       uuid.UUID `json:"user_id"`
	Username     string    `json:"username"`
	TotalMatches int       `json:"total_matches"`
	Wins         int       `json:"wins"`
	SecondPlace  int       `json:"second_place"`
	Losses       int       `json:"losses"`
	Points       int       `json:"points"`
}

// WinRate returns the win percentage rounded to two decimals, 0 when the
// user has not played any matches.
func (p *Profile) WinRate() float64 {
	if p.TotalMatches == 0 {
		return 0.0
	}
	rate := float64(p.Wins) / float64(p.TotalMatches) * 100
	return float64(int(rate*100+0.5)) / 100
}
