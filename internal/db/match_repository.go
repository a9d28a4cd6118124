package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// MatchRow is the archived record of one multiplayer lobby.
type MatchRow struct {
	ID        int32
	BanchoID  int16
	Name      string
	CreatorID int32
	CreatedAt time.Time
	EndedAt   *time.Time
}

// MatchRepository archives multiplayer lobbies.
type MatchRepository struct {
	db *pgxpool.Pool
}

// NewMatchRepository creates a new MatchRepository.
func NewMatchRepository(db *pgxpool.Pool) *MatchRepository {
	return &MatchRepository{db: db}
}

// Create inserts a match record and returns its persistent id.
func (r *MatchRepository) Create(ctx context.Context, banchoID int16, name string, creatorID int32) (int32, error) {
	var id int32
	err := r.db.QueryRow(ctx,
		`INSERT INTO matches (bancho_id, name, creator_id) VALUES ($1, $2, $3) RETURNING id`,
		banchoID, name, creatorID,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("inserting match %q: %w", name, err)
	}
	return id, nil
}

// UpdateName renames the archived match.
func (r *MatchRepository) UpdateName(ctx context.Context, id int32, name string) error {
	if _, err := r.db.Exec(ctx,
		`UPDATE matches SET name = $1 WHERE id = $2`, name, id,
	); err != nil {
		return fmt.Errorf("renaming match %d: %w", id, err)
	}
	return nil
}

// SetEnded stamps the disband time.
func (r *MatchRepository) SetEnded(ctx context.Context, id int32) error {
	if _, err := r.db.Exec(ctx,
		`UPDATE matches SET ended_at = NOW() WHERE id = $1`, id,
	); err != nil {
		return fmt.Errorf("ending match %d: %w", id, err)
	}
	return nil
}

// Delete removes a match record and its events.
func (r *MatchRepository) Delete(ctx context.Context, id int32) error {
	if _, err := r.db.Exec(ctx,
		`DELETE FROM match_events WHERE match_id = $1`, id,
	); err != nil {
		return fmt.Errorf("deleting events of match %d: %w", id, err)
	}
	if _, err := r.db.Exec(ctx,
		`DELETE FROM matches WHERE id = $1`, id,
	); err != nil {
		return fmt.Errorf("deleting match %d: %w", id, err)
	}
	return nil
}

// FetchByID retrieves a match record. Returns nil, nil when absent.
func (r *MatchRepository) FetchByID(ctx context.Context, id int32) (*MatchRow, error) {
	var m MatchRow
	err := r.db.QueryRow(ctx,
		`SELECT id, bancho_id, name, creator_id, created_at, ended_at
		 FROM matches WHERE id = $1`, id,
	).Scan(&m.ID, &m.BanchoID, &m.Name, &m.CreatorID, &m.CreatedAt, &m.EndedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("querying match %d: %w", id, err)
	}
	return &m, nil
}
