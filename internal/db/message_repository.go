package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// MessageRepository archives chat messages.
type MessageRepository struct {
	db *pgxpool.Pool
}

// NewMessageRepository creates a new MessageRepository.
func NewMessageRepository(db *pgxpool.Pool) *MessageRepository {
	return &MessageRepository{db: db}
}

// Create stores one chat message.
func (r *MessageRepository) Create(ctx context.Context, sender, target, text string) error {
	if _, err := r.db.Exec(ctx,
		`INSERT INTO messages (sender, target, message) VALUES ($1, $2, $3)`,
		sender, target, text,
	); err != nil {
		return fmt.Errorf("inserting message from %q to %q: %w", sender, target, err)
	}
	return nil
}
