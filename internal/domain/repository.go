package domain

import (
	"context"
	"time"
)

// RampRepository defines operations for storing/retrieving ramp history
// This is a PORT - adapters (SQLite, Memory) will implement it
type RampRepository interface {
	// SaveRamp persists a ramp record and assigns its ID
	SaveRamp(ctx context.Context, ramp *RampRecord) error

	// GetRamp retrieves a specific ramp by ID
	GetRamp(ctx context.Context, id int64) (*RampRecord, error)

	// GetRampsInRange retrieves all ramps started within time range.
	// Uses a half-open interval: inclusive start, exclusive end [start, end).
	GetRampsInRange(ctx context.Context, start, end time.Time) ([]*RampRecord, error)

	// GetLatestRamp retrieves the most recently started ramp
	GetLatestRamp(ctx context.Context) (*RampRecord, error)

	// DeleteOldRamps removes ramps older than specified duration
	DeleteOldRamps(ctx context.Context, olderThan time.Duration) error
}
