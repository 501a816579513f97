package ports

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/quentinrf/backlightd/internal/domain"
)

// Retention periodically deletes old ramp history
type Retention struct {
	repo  domain.RampRepository
	every time.Duration
	keep  time.Duration
}

// NewRetention creates a loop that prunes records older than keep every period
func NewRetention(repo domain.RampRepository, every, keep time.Duration) *Retention {
	return &Retention{
		repo:  repo,
		every: every,
		keep:  keep,
	}
}

// Run prunes on every tick until ctx is cancelled
func (r *Retention) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.every)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := r.repo.DeleteOldRamps(ctx, r.keep); err != nil {
				log.Error().Err(err).Msg("failed to delete old ramps")
			} else {
				log.Debug().Dur("older_than", r.keep).Msg("deleted old ramps")
			}

		case <-ctx.Done():
			return nil
		}
	}
}
