package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// DB wraps a pgx connection pool shared by all repositories.
type DB struct {
	pool *pgxpool.Pool

	Users         *UserRepository
	Relationships *RelationshipRepository
	Beatmaps      *BeatmapRepository
	Scores        *ScoreRepository
	Matches       *MatchRepository
	Events        *EventRepository
	Messages      *MessageRepository
	Clients       *ClientRepository
	Infringements *InfringementRepository
	Logins        *LoginRepository
	Channels      *ChannelRepository
}

// New connects to PostgreSQL and returns a DB handle.
func New(ctx context.Context, dsn string) (*DB, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return &DB{
		pool:          pool,
		Users:         NewUserRepository(pool),
		Relationships: NewRelationshipRepository(pool),
		Beatmaps:      NewBeatmapRepository(pool),
		Scores:        NewScoreRepository(pool),
		Matches:       NewMatchRepository(pool),
		Events:        NewEventRepository(pool),
		Messages:      NewMessageRepository(pool),
		Clients:       NewClientRepository(pool),
		Infringements: NewInfringementRepository(pool),
		Logins:        NewLoginRepository(pool),
		Channels:      NewChannelRepository(pool),
	}, nil
}

// Close closes the database connection pool.
func (d *DB) Close() {
	d.pool.Close()
}

// Pool returns the underlying pgx pool.
func (d *DB) Pool() *pgxpool.Pool {
	return d.pool
}
