package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/quentinrf/backlightd/internal/domain"
)

// RampRepository implements domain.RampRepository with in-memory storage
type RampRepository struct {
	mu     sync.RWMutex
	ramps  map[int64]*domain.RampRecord
	nextID int64
}

// NewRampRepository creates an empty in-memory repository
func NewRampRepository() *RampRepository {
	return &RampRepository{
		ramps:  make(map[int64]*domain.RampRecord),
		nextID: 1,
	}
}

// SaveRamp stores a copy of the ramp and assigns its ID if unset
func (r *RampRepository) SaveRamp(ctx context.Context, ramp *domain.RampRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if ramp.ID == 0 {
		ramp.ID = r.nextID
		r.nextID++
	}

	stored := *ramp
	r.ramps[ramp.ID] = &stored
	return nil
}

// GetRamp retrieves a ramp by ID
func (r *RampRepository) GetRamp(ctx context.Context, id int64) (*domain.RampRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ramp, exists := r.ramps[id]
	if !exists {
		return nil, domain.ErrRampNotFound
	}

	out := *ramp
	return &out, nil
}

// GetRampsInRange returns ramps started in [start, end), oldest first
func (r *RampRepository) GetRampsInRange(ctx context.Context, start, end time.Time) ([]*domain.RampRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var results []*domain.RampRecord
	for _, ramp := range r.ramps {
		if !ramp.StartedAt.Before(start) && ramp.StartedAt.Before(end) {
			out := *ramp
			results = append(results, &out)
		}
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].StartedAt.Equal(results[j].StartedAt) {
			return results[i].ID < results[j].ID
		}
		return results[i].StartedAt.Before(results[j].StartedAt)
	})

	return results, nil
}

// GetLatestRamp returns the most recently started ramp
func (r *RampRepository) GetLatestRamp(ctx context.Context) (*domain.RampRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var latest *domain.RampRecord
	for _, ramp := range r.ramps {
		if latest == nil || ramp.StartedAt.After(latest.StartedAt) ||
			(ramp.StartedAt.Equal(latest.StartedAt) && ramp.ID > latest.ID) {
			latest = ramp
		}
	}
	if latest == nil {
		return nil, domain.ErrRampNotFound
	}

	out := *latest
	return &out, nil
}

// DeleteOldRamps removes ramps older than specified duration
func (r *RampRepository) DeleteOldRamps(ctx context.Context, olderThan time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := time.Now().Add(-olderThan)

	for id, ramp := range r.ramps {
		if ramp.StartedAt.Before(cutoff) {
			delete(r.ramps, id)
		}
	}

	return nil
}
