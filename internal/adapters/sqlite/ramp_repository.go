package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/quentinrf/backlightd/internal/domain"
)

// RampRepository implements domain.RampRepository with SQLite
type RampRepository struct {
	db *sql.DB
}

const rampColumns = `id, lux, from_brightness, target, final, steps, outcome, error, started_at, duration_ns`

// NewRampRepository creates a SQLite-backed repository
func NewRampRepository(dbPath string) (*RampRepository, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	schema := `
	CREATE TABLE IF NOT EXISTS ramps (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		lux INTEGER NOT NULL,
		from_brightness INTEGER NOT NULL,
		target INTEGER NOT NULL,
		final INTEGER NOT NULL,
		steps INTEGER NOT NULL,
		outcome TEXT NOT NULL,
		error TEXT NOT NULL DEFAULT '',
		started_at INTEGER NOT NULL,
		duration_ns INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_ramps_started_at ON ramps(started_at);
	`

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &RampRepository{db: db}, nil
}

// SaveRamp stores a ramp in SQLite
func (r *RampRepository) SaveRamp(ctx context.Context, ramp *domain.RampRecord) error {
	query := `INSERT INTO ramps (lux, from_brightness, target, final, steps, outcome, error, started_at, duration_ns)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	result, err := r.db.ExecContext(ctx, query,
		ramp.Lux, ramp.From, ramp.Target, ramp.Final, ramp.Steps,
		string(ramp.Outcome), ramp.Error, unixNano(ramp.StartedAt), int64(ramp.Duration))
	if err != nil {
		return fmt.Errorf("failed to insert ramp: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get insert id: %w", err)
	}

	ramp.ID = id
	return nil
}

// GetRamp retrieves a ramp by ID
func (r *RampRepository) GetRamp(ctx context.Context, id int64) (*domain.RampRecord, error) {
	query := `SELECT ` + rampColumns + ` FROM ramps WHERE id = ?`

	ramp, err := scanRamp(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrRampNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query ramp: %w", err)
	}

	return ramp, nil
}

// GetRampsInRange returns ramps started in [start, end), oldest first
func (r *RampRepository) GetRampsInRange(ctx context.Context, start, end time.Time) ([]*domain.RampRecord, error) {
	query := `
		SELECT ` + rampColumns + `
		FROM ramps
		WHERE started_at >= ? AND started_at < ?
		ORDER BY started_at ASC, id ASC
	`

	rows, err := r.db.QueryContext(ctx, query, unixNano(start), unixNano(end))
	if err != nil {
		return nil, fmt.Errorf("failed to query ramps: %w", err)
	}
	defer rows.Close()

	var ramps []*domain.RampRecord
	for rows.Next() {
		ramp, err := scanRamp(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ramp: %w", err)
		}
		ramps = append(ramps, ramp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate ramps: %w", err)
	}

	return ramps, nil
}

// GetLatestRamp returns the most recently started ramp
func (r *RampRepository) GetLatestRamp(ctx context.Context) (*domain.RampRecord, error) {
	query := `
		SELECT ` + rampColumns + `
		FROM ramps
		ORDER BY started_at DESC, id DESC
		LIMIT 1
	`

	ramp, err := scanRamp(r.db.QueryRowContext(ctx, query))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrRampNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query latest ramp: %w", err)
	}

	return ramp, nil
}

// DeleteOldRamps removes ramps older than specified duration
func (r *RampRepository) DeleteOldRamps(ctx context.Context, olderThan time.Duration) error {
	cutoff := time.Now().Add(-olderThan)
	query := `DELETE FROM ramps WHERE started_at < ?`

	if _, err := r.db.ExecContext(ctx, query, unixNano(cutoff)); err != nil {
		return fmt.Errorf("failed to delete old ramps: %w", err)
	}

	return nil
}

// Close closes the database connection
func (r *RampRepository) Close() error {
	return r.db.Close()
}

// Bounds of what started_at can hold as nanoseconds since the epoch
var (
	minStoredTime = time.Unix(0, math.MinInt64)
	maxStoredTime = time.Unix(0, math.MaxInt64)
)

// unixNano converts t for the started_at column, saturating times that do not
// fit in an int64 instead of letting them wrap
func unixNano(t time.Time) int64 {
	switch {
	case t.Before(minStoredTime):
		return math.MinInt64
	case t.After(maxStoredTime):
		return math.MaxInt64
	}
	return t.UnixNano()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRamp(s scanner) (*domain.RampRecord, error) {
	var (
		ramp       domain.RampRecord
		outcome    string
		startedAt  int64
		durationNS int64
	)

	err := s.Scan(&ramp.ID, &ramp.Lux, &ramp.From, &ramp.Target, &ramp.Final, &ramp.Steps,
		&outcome, &ramp.Error, &startedAt, &durationNS)
	if err != nil {
		return nil, err
	}

	ramp.Outcome = domain.RampOutcome(outcome)
	ramp.StartedAt = time.Unix(0, startedAt)
	ramp.Duration = time.Duration(durationNS)
	return &ramp, nil
}
