package db

import (
	"context"
	"fmt"

	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// LoginRepository audits successful logins.
type LoginRepository struct {
	db *pgxpool.Pool
}

// NewLoginRepository creates a new LoginRepository.
func NewLoginRepository(db *pgxpool.Pool) *LoginRepository {
	return &LoginRepository{db: db}
}

// Create records a successful login keyed by the session token.
func (r *LoginRepository) Create(ctx context.Context, userID int32, sessionID uuid.UUID, ip, version string) error {
	if _, err := r.db.Exec(ctx,
		`INSERT INTO logins (user_id, session_id, ip, version) VALUES ($1, $2, $3, $4)`,
		userID, sessionID, ip, version,
	); err != nil {
		return fmt.Errorf("inserting login for user %d: %w", userID, err)
	}
	return nil
}
