package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ChannelRow is one configured chat channel.
type ChannelRow struct {
	Name       string
	Topic      string
	ReadPerms  int32
	WritePerms int32
}

// ChannelRepository loads the channel configuration.
type ChannelRepository struct {
	db *pgxpool.Pool
}

// NewChannelRepository creates a new ChannelRepository.
func NewChannelRepository(db *pgxpool.Pool) *ChannelRepository {
	return &ChannelRepository{db: db}
}

// FetchAll loads every configured channel.
func (r *ChannelRepository) FetchAll(ctx context.Context) ([]ChannelRow, error) {
	rows, err := r.db.Query(ctx,
		`SELECT name, topic, read_perms, write_perms FROM channels ORDER BY name`,
	)
	if err != nil {
		return nil, fmt.Errorf("querying channels: %w", err)
	}
	defer rows.Close()

	result := make([]ChannelRow, 0, 8)
	for rows.Next() {
		var c ChannelRow
		if err := rows.Scan(&c.Name, &c.Topic, &c.ReadPerms, &c.WritePerms); err != nil {
			return nil, fmt.Errorf("scanning channel row: %w", err)
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating channel rows: %w", err)
	}
	return result, nil
}
