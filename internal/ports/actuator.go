package ports

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/quentinrf/backlightd/internal/domain"
)

// DefaultStepInterval is the pause between two ramp steps
const DefaultStepInterval = 10 * time.Millisecond

// BrightnessActuator ramps the backlight toward the brightness an ambient
// reading calls for, one step at a time.
type BrightnessActuator struct {
	rng      domain.BacklightRange
	reader   BrightnessReader
	writer   BrightnessWriter
	repo     domain.RampRepository
	interval time.Duration
}

// NewBrightnessActuator creates an actuator. repo may be nil, in which case
// ramps are only logged.
func NewBrightnessActuator(rng domain.BacklightRange, reader BrightnessReader, writer BrightnessWriter, repo domain.RampRepository, interval time.Duration) *BrightnessActuator {
	return &BrightnessActuator{
		rng:      rng,
		reader:   reader,
		writer:   writer,
		repo:     repo,
		interval: interval,
	}
}

// Run ramps once per event, in order, until events is closed.
// Events that queue up during a ramp are handled one after another once it
// finishes. A failed ramp is logged and the next event is processed.
func (a *BrightnessActuator) Run(ctx context.Context, events <-chan domain.AmbientSample) error {
	log.Info().
		Int("min", a.rng.Min).
		Int("max", a.rng.Max).
		Int("step", a.rng.Step).
		Dur("step_interval", a.interval).
		Msg("starting brightness actuator")

	for sample := range events {
		// Shutting down: drain without touching the hardware.
		if ctx.Err() != nil {
			continue
		}

		ramp, err := a.Ramp(ctx, sample.Lux)
		if err != nil {
			log.Error().Err(err).Int("lux", sample.Lux).Msg("ramp failed")
		}
		a.record(ctx, ramp)
	}

	log.Info().Msg("stopping brightness actuator")
	return nil
}

// Ramp moves the backlight from its current brightness toward the target for
// lux, checking ctx before every step. It stops once the remaining distance is
// within one step, without a final partial write. Cancellation ends the ramp
// with outcome cancelled and a nil error.
func (a *BrightnessActuator) Ramp(ctx context.Context, lux int) (*domain.RampRecord, error) {
	ramp := &domain.RampRecord{
		Lux:       lux,
		Target:    a.rng.TargetFor(lux),
		StartedAt: time.Now(),
	}

	current, err := a.reader.Brightness(ctx)
	if err != nil {
		ramp.Outcome = domain.RampFailed
		ramp.Error = err.Error()
		ramp.Duration = time.Since(ramp.StartedAt)
		return ramp, fmt.Errorf("read brightness: %w", err)
	}
	ramp.From = current
	ramp.Final = current

	step := a.rng.Step
	if ramp.Target <= current {
		step = -step
	}

	// Writes are never interrupted halfway; shutdown is observed between steps.
	writeCtx := context.WithoutCancel(ctx)

	for {
		if distance(ramp.Final, ramp.Target) <= a.rng.Step {
			ramp.Outcome = domain.RampConverged
			break
		}
		if ctx.Err() != nil {
			ramp.Outcome = domain.RampCancelled
			break
		}

		next := ramp.Final + step
		if err := a.writer.SetBrightness(writeCtx, next); err != nil {
			aerr := &domain.ActuationError{Value: next, Err: err}
			ramp.Outcome = domain.RampFailed
			ramp.Error = aerr.Error()
			ramp.Duration = time.Since(ramp.StartedAt)
			return ramp, aerr
		}
		ramp.Final = next
		ramp.Steps++

		select {
		case <-time.After(a.interval):
		case <-ctx.Done():
		}
	}

	ramp.Duration = time.Since(ramp.StartedAt)
	return ramp, nil
}

// record logs a finished ramp and saves it to the repository
func (a *BrightnessActuator) record(ctx context.Context, ramp *domain.RampRecord) {
	log.Info().
		Int("lux", ramp.Lux).
		Str("band", string(ramp.Band())).
		Int("from", ramp.From).
		Int("target", ramp.Target).
		Int("final", ramp.Final).
		Int("steps", ramp.Steps).
		Str("outcome", string(ramp.Outcome)).
		Dur("duration", ramp.Duration).
		Msg("ramp finished")

	if a.repo == nil {
		return
	}

	// History is still written for a ramp cut short by shutdown.
	if err := a.repo.SaveRamp(context.WithoutCancel(ctx), ramp); err != nil {
		log.Error().Err(err).Msg("failed to save ramp")
	}
}

func distance(a, b int) int {
	if a > b {
		return a - b
	}
	return b - a
}
