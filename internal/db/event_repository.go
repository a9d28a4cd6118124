package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/prismosu/banchod/internal/constants"
)

// MatchEvent is one archived lifecycle event of a match.
type MatchEvent struct {
	ID        int64
	MatchID   int32
	Type      constants.EventType
	Data      map[string]any
	CreatedAt time.Time
}

// EventRepository archives match lifecycle events as JSONB payloads.
type EventRepository struct {
	db *pgxpool.Pool
}

// NewEventRepository creates a new EventRepository.
func NewEventRepository(db *pgxpool.Pool) *EventRepository {
	return &EventRepository{db: db}
}

// Create appends an event to a match.
func (r *EventRepository) Create(ctx context.Context, matchID int32, typ constants.EventType, data map[string]any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshaling event data for match %d: %w", matchID, err)
	}
	if _, err := r.db.Exec(ctx,
		`INSERT INTO match_events (match_id, type, data) VALUES ($1, $2, $3)`,
		matchID, int16(typ), payload,
	); err != nil {
		return fmt.Errorf("inserting event for match %d: %w", matchID, err)
	}
	return nil
}

// FetchLastByType returns the most recent event of one kind for a
// match. Returns nil, nil when none exists.
func (r *EventRepository) FetchLastByType(ctx context.Context, matchID int32, typ constants.EventType) (*MatchEvent, error) {
	var e MatchEvent
	var raw []byte
	err := r.db.QueryRow(ctx,
		`SELECT id, match_id, type, data, created_at
		 FROM match_events
		 WHERE match_id = $1 AND type = $2
		 ORDER BY id DESC LIMIT 1`,
		matchID, int16(typ),
	).Scan(&e.ID, &e.MatchID, &e.Type, &raw, &e.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("querying last event (match %d, type %d): %w", matchID, typ, err)
	}

	if err := json.Unmarshal(raw, &e.Data); err != nil {
		return nil, fmt.Errorf("unmarshaling event data (match %d): %w", matchID, err)
	}
	return &e, nil
}
