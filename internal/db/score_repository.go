package db

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Score is one row of the scores table.
type Score struct {
	ID         int64
	UserID     int32
	BeatmapID  int32
	Mode       int16
	TotalScore int64
	MaxCombo   int32
	Grade      string
	Status     int16
	Hidden     bool
}

// ScoreRepository reads submitted scores for beatmap info replies and
// handles the hide/restore cycle on restriction.
type ScoreRepository struct {
	db *pgxpool.Pool
}

// NewScoreRepository creates a new ScoreRepository.
func NewScoreRepository(db *pgxpool.Pool) *ScoreRepository {
	return &ScoreRepository{db: db}
}

// scoreStatusPersonalBest marks the canonical best score per map.
const scoreStatusPersonalBest = 3

// FetchPersonalBest returns the user's best score on a beatmap for one
// mode. Returns nil, nil when no score exists.
func (r *ScoreRepository) FetchPersonalBest(ctx context.Context, beatmapID, userID int32, mode int16) (*Score, error) {
	var s Score
	err := r.db.QueryRow(ctx,
		`SELECT id, user_id, beatmap_id, mode, total_score, max_combo, grade, status, hidden
		 FROM scores
		 WHERE beatmap_id = $1 AND user_id = $2 AND mode = $3 AND status = $4 AND NOT hidden`,
		beatmapID, userID, mode, scoreStatusPersonalBest,
	).Scan(&s.ID, &s.UserID, &s.BeatmapID, &s.Mode, &s.TotalScore, &s.MaxCombo, &s.Grade, &s.Status, &s.Hidden)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("querying personal best (map %d, user %d, mode %d): %w",
			beatmapID, userID, mode, err)
	}
	return &s, nil
}

// HideAll hides every score of a user, used when a restriction lands.
func (r *ScoreRepository) HideAll(ctx context.Context, userID int32) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE scores SET hidden = TRUE WHERE user_id = $1 AND NOT hidden`, userID,
	)
	if err != nil {
		return fmt.Errorf("hiding scores for user %d: %w", userID, err)
	}
	slog.Debug("hid scores", "userID", userID, "count", tag.RowsAffected())
	return nil
}

// RestoreHidden un-hides every score of a user after an unrestriction.
func (r *ScoreRepository) RestoreHidden(ctx context.Context, userID int32) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE scores SET hidden = FALSE WHERE user_id = $1 AND hidden`, userID,
	)
	if err != nil {
		return fmt.Errorf("restoring scores for user %d: %w", userID, err)
	}
	slog.Debug("restored scores", "userID", userID, "count", tag.RowsAffected())
	return nil
}
