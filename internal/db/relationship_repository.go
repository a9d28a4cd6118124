package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// RelationshipRepository manages the friends list.
type RelationshipRepository struct {
	db *pgxpool.Pool
}

// NewRelationshipRepository creates a new RelationshipRepository.
func NewRelationshipRepository(db *pgxpool.Pool) *RelationshipRepository {
	return &RelationshipRepository{db: db}
}

// Create adds a friend relation; duplicates are ignored.
func (r *RelationshipRepository) Create(ctx context.Context, userID, targetID int32) error {
	if _, err := r.db.Exec(ctx,
		`INSERT INTO relationships (user_id, target_id, status)
		 VALUES ($1, $2, 0)
		 ON CONFLICT (user_id, target_id) DO NOTHING`,
		userID, targetID,
	); err != nil {
		return fmt.Errorf("inserting relationship %d -> %d: %w", userID, targetID, err)
	}
	return nil
}

// Delete removes a friend relation.
func (r *RelationshipRepository) Delete(ctx context.Context, userID, targetID int32) error {
	if _, err := r.db.Exec(ctx,
		`DELETE FROM relationships WHERE user_id = $1 AND target_id = $2`,
		userID, targetID,
	); err != nil {
		return fmt.Errorf("deleting relationship %d -> %d: %w", userID, targetID, err)
	}
	return nil
}

// FetchFriendIDs loads every friend target of a user.
func (r *RelationshipRepository) FetchFriendIDs(ctx context.Context, userID int32) ([]int32, error) {
	rows, err := r.db.Query(ctx,
		`SELECT target_id FROM relationships WHERE user_id = $1 AND status = 0 ORDER BY target_id`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("querying friends for user %d: %w", userID, err)
	}
	defer rows.Close()

	result := make([]int32, 0, 16)
	for rows.Next() {
		var id int32
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning friend row: %w", err)
		}
		result = append(result, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating friend rows: %w", err)
	}
	return result, nil
}
