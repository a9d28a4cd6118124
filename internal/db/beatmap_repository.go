package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Beatmap is one row of the beatmaps table.
type Beatmap struct {
	ID       int32
	SetID    int32
	Mode     int16
	Status   int16
	Filename string
	MD5      string
	Version  string
}

// BeatmapRepository resolves beatmaps for info requests.
type BeatmapRepository struct {
	db *pgxpool.Pool
}

// NewBeatmapRepository creates a new BeatmapRepository.
func NewBeatmapRepository(db *pgxpool.Pool) *BeatmapRepository {
	return &BeatmapRepository{db: db}
}

const beatmapColumns = `id, set_id, mode, status, filename, md5, version`

func scanBeatmap(row pgx.Row) (*Beatmap, error) {
	var b Beatmap
	err := row.Scan(&b.ID, &b.SetID, &b.Mode, &b.Status, &b.Filename, &b.MD5, &b.Version)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &b, nil
}

// FetchByID retrieves a beatmap by id. Returns nil, nil when absent.
func (r *BeatmapRepository) FetchByID(ctx context.Context, id int32) (*Beatmap, error) {
	b, err := scanBeatmap(r.db.QueryRow(ctx,
		`SELECT `+beatmapColumns+` FROM beatmaps WHERE id = $1`, id,
	))
	if err != nil {
		return nil, fmt.Errorf("querying beatmap %d: %w", id, err)
	}
	return b, nil
}

// FetchByFile retrieves a beatmap by its .osu filename.
func (r *BeatmapRepository) FetchByFile(ctx context.Context, filename string) (*Beatmap, error) {
	b, err := scanBeatmap(r.db.QueryRow(ctx,
		`SELECT `+beatmapColumns+` FROM beatmaps WHERE filename = $1`, filename,
	))
	if err != nil {
		return nil, fmt.Errorf("querying beatmap file %q: %w", filename, err)
	}
	return b, nil
}

// FetchByChecksum retrieves a beatmap by md5.
func (r *BeatmapRepository) FetchByChecksum(ctx context.Context, md5 string) (*Beatmap, error) {
	b, err := scanBeatmap(r.db.QueryRow(ctx,
		`SELECT `+beatmapColumns+` FROM beatmaps WHERE md5 = $1`, md5,
	))
	if err != nil {
		return nil, fmt.Errorf("querying beatmap checksum %q: %w", md5, err)
	}
	return b, nil
}
