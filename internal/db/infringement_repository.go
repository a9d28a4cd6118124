package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Infringement action kinds.
const (
	InfringementRestrict = 0
	InfringementSilence  = 1
)

// Infringement is one moderation record.
type Infringement struct {
	ID          int64
	UserID      int32
	Action      int16
	Length      *time.Time
	Description string
	IsPermanent bool
	CreatedAt   time.Time
}

// InfringementRepository records silences and restrictions.
type InfringementRepository struct {
	db *pgxpool.Pool
}

// NewInfringementRepository creates a new InfringementRepository.
func NewInfringementRepository(db *pgxpool.Pool) *InfringementRepository {
	return &InfringementRepository{db: db}
}

// Create inserts a moderation record. length is the expiry time, nil
// for permanent actions.
func (r *InfringementRepository) Create(ctx context.Context, userID int32, action int16, length *time.Time, description string, isPermanent bool) error {
	if _, err := r.db.Exec(ctx,
		`INSERT INTO infringements (user_id, action, length, description, is_permanent)
		 VALUES ($1, $2, $3, $4, $5)`,
		userID, action, length, description, isPermanent,
	); err != nil {
		return fmt.Errorf("inserting infringement for user %d: %w", userID, err)
	}
	return nil
}

// FetchLatestRestriction returns the newest restriction record for a
// user, used as the source of truth for restriction expiry.
func (r *InfringementRepository) FetchLatestRestriction(ctx context.Context, userID int32) (*Infringement, error) {
	var inf Infringement
	err := r.db.QueryRow(ctx,
		`SELECT id, user_id, action, length, description, is_permanent, created_at
		 FROM infringements
		 WHERE user_id = $1 AND action = $2
		 ORDER BY id DESC LIMIT 1`,
		userID, InfringementRestrict,
	).Scan(&inf.ID, &inf.UserID, &inf.Action, &inf.Length, &inf.Description, &inf.IsPermanent, &inf.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("querying restriction for user %d: %w", userID, err)
	}
	return &inf, nil
}
