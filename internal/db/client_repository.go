package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ClientRow is one hardware identity a user has logged in with.
type ClientRow struct {
	ID            int64
	UserID        int32
	Executable    string
	Adapters      string
	UninstallID   string
	DiskSignature string
	Banned        bool
}

// ClientRepository tracks hardware identities for multi-account
// detection.
type ClientRepository struct {
	db *pgxpool.Pool
}

// NewClientRepository creates a new ClientRepository.
func NewClientRepository(db *pgxpool.Pool) *ClientRepository {
	return &ClientRepository{db: db}
}

// FetchWithoutExecutable finds rows matching the hardware triple for a
// user, ignoring the executable hash which changes every release.
func (r *ClientRepository) FetchWithoutExecutable(ctx context.Context, userID int32, adapters, uninstallID, diskSignature string) ([]ClientRow, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, user_id, executable, adapters, uninstall_id, disk_signature, banned
		 FROM clients
		 WHERE user_id = $1 AND adapters = $2 AND uninstall_id = $3 AND disk_signature = $4`,
		userID, adapters, uninstallID, diskSignature,
	)
	if err != nil {
		return nil, fmt.Errorf("querying clients for user %d: %w", userID, err)
	}
	defer rows.Close()

	result := make([]ClientRow, 0, 4)
	for rows.Next() {
		var c ClientRow
		if err := rows.Scan(&c.ID, &c.UserID, &c.Executable, &c.Adapters,
			&c.UninstallID, &c.DiskSignature, &c.Banned); err != nil {
			return nil, fmt.Errorf("scanning client row: %w", err)
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating client rows: %w", err)
	}
	return result, nil
}

// Create records a hardware identity; duplicates are ignored.
func (r *ClientRepository) Create(ctx context.Context, c ClientRow) error {
	if _, err := r.db.Exec(ctx,
		`INSERT INTO clients (user_id, executable, adapters, uninstall_id, disk_signature)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (user_id, executable, adapters, uninstall_id, disk_signature) DO NOTHING`,
		c.UserID, c.Executable, c.Adapters, c.UninstallID, c.DiskSignature,
	); err != nil {
		return fmt.Errorf("inserting client for user %d: %w", c.UserID, err)
	}
	return nil
}

// UpdateAll applies the banned flag to every row sharing the hardware
// triple, across all users.
func (r *ClientRepository) UpdateAll(ctx context.Context, adapters, uninstallID, diskSignature string, banned bool) error {
	if _, err := r.db.Exec(ctx,
		`UPDATE clients SET banned = $1
		 WHERE adapters = $2 AND uninstall_id = $3 AND disk_signature = $4`,
		banned, adapters, uninstallID, diskSignature,
	); err != nil {
		return fmt.Errorf("updating client ban flags: %w", err)
	}
	return nil
}
