package db

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// User is one row of the users table.
type User struct {
	ID             int32
	Name           string
	SafeName       string
	Email          string
	PasswordBcrypt string
	Country        string
	Permissions    int32
	Activated      bool
	Restricted     bool
	SilenceEnd     *time.Time
	SupporterEnd   *time.Time
	PreferredMode  int16
	CreatedAt      time.Time
	LatestActivity time.Time
}

// ModeStats is one per-mode row of the stats table.
type ModeStats struct {
	UserID      int32
	Mode        int16
	Rank        int32
	RankedScore int64
	TotalScore  int64
	Accuracy    float32
	Playcount   int32
	PP          float32
}

// SafeName normalizes a display name for case-insensitive lookup.
func SafeName(name string) string {
	return strings.ReplaceAll(strings.ToLower(name), " ", "_")
}

// UserRepository manages user accounts.
type UserRepository struct {
	db *pgxpool.Pool
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `id, name, safe_name, email, password_bcrypt, country, permissions,
	activated, restricted, silence_end, supporter_end, preferred_mode, created_at, latest_activity`

func scanUser(row pgx.Row) (*User, error) {
	var u User
	err := row.Scan(
		&u.ID, &u.Name, &u.SafeName, &u.Email, &u.PasswordBcrypt, &u.Country,
		&u.Permissions, &u.Activated, &u.Restricted, &u.SilenceEnd,
		&u.SupporterEnd, &u.PreferredMode, &u.CreatedAt, &u.LatestActivity,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

// FetchByID retrieves a user by id. Returns nil, nil when absent.
func (r *UserRepository) FetchByID(ctx context.Context, id int32) (*User, error) {
	u, err := scanUser(r.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id,
	))
	if err != nil {
		return nil, fmt.Errorf("querying user %d: %w", id, err)
	}
	return u, nil
}

// FetchByName retrieves a user by display name, case-insensitive.
func (r *UserRepository) FetchByName(ctx context.Context, name string) (*User, error) {
	u, err := scanUser(r.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE safe_name = $1`, SafeName(name),
	))
	if err != nil {
		return nil, fmt.Errorf("querying user %q: %w", name, err)
	}
	return u, nil
}

// FetchStats loads the per-mode stats row for a user.
func (r *UserRepository) FetchStats(ctx context.Context, userID int32, mode int16) (*ModeStats, error) {
	var s ModeStats
	err := r.db.QueryRow(ctx,
		`SELECT user_id, mode, rank, ranked_score, total_score, accuracy, playcount, pp
		 FROM stats WHERE user_id = $1 AND mode = $2`, userID, mode,
	).Scan(&s.UserID, &s.Mode, &s.Rank, &s.RankedScore, &s.TotalScore, &s.Accuracy, &s.Playcount, &s.PP)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &ModeStats{UserID: userID, Mode: mode}, nil
		}
		return nil, fmt.Errorf("querying stats for user %d mode %d: %w", userID, mode, err)
	}
	return &s, nil
}

// SetRestricted flips the restriction flag.
func (r *UserRepository) SetRestricted(ctx context.Context, userID int32, restricted bool) error {
	if _, err := r.db.Exec(ctx,
		`UPDATE users SET restricted = $1 WHERE id = $2`, restricted, userID,
	); err != nil {
		return fmt.Errorf("updating restricted for user %d: %w", userID, err)
	}
	return nil
}

// SetSilenceEnd stores the silence expiry; nil clears it.
func (r *UserRepository) SetSilenceEnd(ctx context.Context, userID int32, end *time.Time) error {
	if _, err := r.db.Exec(ctx,
		`UPDATE users SET silence_end = $1 WHERE id = $2`, end, userID,
	); err != nil {
		return fmt.Errorf("updating silence end for user %d: %w", userID, err)
	}
	return nil
}

// SetSupporterEnd stores the supporter expiry.
func (r *UserRepository) SetSupporterEnd(ctx context.Context, userID int32, end *time.Time) error {
	if _, err := r.db.Exec(ctx,
		`UPDATE users SET supporter_end = $1 WHERE id = $2`, end, userID,
	); err != nil {
		return fmt.Errorf("updating supporter end for user %d: %w", userID, err)
	}
	return nil
}

// SetPermissions replaces the permission mask.
func (r *UserRepository) SetPermissions(ctx context.Context, userID int32, permissions int32) error {
	if _, err := r.db.Exec(ctx,
		`UPDATE users SET permissions = $1 WHERE id = $2`, permissions, userID,
	); err != nil {
		return fmt.Errorf("updating permissions for user %d: %w", userID, err)
	}
	return nil
}

// SetCountry updates the stored country code.
func (r *UserRepository) SetCountry(ctx context.Context, userID int32, country string) error {
	if _, err := r.db.Exec(ctx,
		`UPDATE users SET country = $1 WHERE id = $2`, country, userID,
	); err != nil {
		return fmt.Errorf("updating country for user %d: %w", userID, err)
	}
	return nil
}

// TouchActivity stamps latest_activity with the current time.
func (r *UserRepository) TouchActivity(ctx context.Context, userID int32) error {
	if _, err := r.db.Exec(ctx,
		`UPDATE users SET latest_activity = NOW() WHERE id = $1`, userID,
	); err != nil {
		return fmt.Errorf("touching activity for user %d: %w", userID, err)
	}
	return nil
}
