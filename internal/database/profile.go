// internal/database/profile.go
package database

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/dvsk-dev/gamify/internal/engine"
	"github.com/dvsk-dev/gamify/internal/models"
)

// MatchRecorder implements engine.Recorder against Postgres: a single
// transaction bumps every participant's profile counters and archives the
// finished match. The engine guarantees exactly one call per game.
type MatchRecorder struct{}

func (MatchRecorder) RecordMatchResult(ctx context.Context, result engine.MatchResult) error {
	placementsJSON, err := json.Marshal(result.Placements)
	if err != nil {
		return fmt.Errorf("failed to marshal placements: %w", err)
	}

	err = pgx.BeginTxFunc(ctx, DB, pgx.TxOptions{}, func(tx pgx.Tx) error {
		for _, pl := range result.Placements {
			var q string
			switch {
			case result.Draw:
				q = `UPDATE profiles SET total_matches = total_matches + 1 WHERE user_id = $1`
			case pl.Rank == 1:
				q = `UPDATE profiles
				     SET total_matches = total_matches + 1, wins = wins + 1, points = points + 10
				     WHERE user_id = $1`
			case pl.Rank == 2:
				q = `UPDATE profiles
				     SET total_matches = total_matches + 1, second_place = second_place + 1, points = points + 5
				     WHERE user_id = $1`
			default:
				q = `UPDATE profiles
				     SET total_matches = total_matches + 1, losses = losses + 1
				     WHERE user_id = $1`
			}
			if _, execErr := tx.Exec(ctx, q, pl.UserID); execErr != nil {
				return execErr
			}
		}

		q := `INSERT INTO matches (room_id, game_type, draw, placements, ended_at)
		      VALUES ($1, $2, $3, $4, NOW())`
		_, execErr := tx.Exec(ctx, q, result.RoomID, string(result.GameType), result.Draw, placementsJSON)
		return execErr
	})
	if err != nil {
		return fmt.Errorf("tx record match result: %w", err)
	}
	return nil
}

// GetProfile loads one user's aggregate counters.
func GetProfile(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	var p models.Profile
	q := `
	SELECT p.user_id, u.username, p.total_matches, p.wins, p.second_place, p.losses, p.points
	FROM profiles p
	JOIN users u ON u.id = p.user_id
	WHERE p.user_id = $1
	`
	err := DB.QueryRow(ctx, q, userID).Scan(
		&p.UserID, &p.Username, &p.TotalMatches, &p.Wins, &p.SecondPlace, &p.Losses, &p.Points,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Leaderboard returns profiles ordered by win rate then points. The ordering
// policy lives here in SQL; the game core only maintains the counters.
func Leaderboard(ctx context.Context, limit int) ([]models.Profile, error) {
	if limit <= 0 {
		limit = 50
	}
	q := `
	SELECT p.user_id, u.username, p.total_matches, p.wins, p.second_place, p.losses, p.points
	FROM profiles p
	JOIN users u ON u.id = p.user_id
	ORDER BY
		CASE WHEN p.total_matches = 0 THEN 0
		     ELSE p.wins::float / p.total_matches END DESC,
		p.points DESC,
		u.username ASC
	LIMIT $1
	`
	rows, err := DB.Query(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Profile
	for rows.Next() {
		var p models.Profile
		if err := rows.Scan(&p.UserID, &p.Username, &p.TotalMatches, &p.Wins, &p.SecondPlace, &p.Losses, &p.Points); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
