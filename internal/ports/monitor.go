package ports

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/quentinrf/backlightd/internal/domain"
)

const (
	// DefaultPollInterval is how often the ambient sensor is sampled
	DefaultPollInterval = time.Second

	// DefaultChangeThreshold is the relative change, in percent, that must be
	// exceeded before a new ambient value is reported
	DefaultChangeThreshold = 25

	// eventBuffer bounds how many change events may queue behind a running ramp
	eventBuffer = 16
)

// AmbientMonitor polls the sensor and reports significant changes
type AmbientMonitor struct {
	sensor    AmbientSensor
	interval  time.Duration
	threshold int
}

// NewAmbientMonitor creates a monitor that samples sensor every interval and
// reports a value once it differs from the last reported one by more than
// threshold percent.
func NewAmbientMonitor(sensor AmbientSensor, interval time.Duration, threshold int) *AmbientMonitor {
	return &AmbientMonitor{
		sensor:    sensor,
		interval:  interval,
		threshold: threshold,
	}
}

// Start reads the baseline and begins polling in a goroutine.
// A baseline that cannot be read is returned as an error and nothing is started.
// The returned channel is closed once ctx is cancelled and polling has stopped.
func (m *AmbientMonitor) Start(ctx context.Context) (<-chan domain.AmbientSample, error) {
	baseline, err := m.read(ctx)
	if err != nil {
		return nil, fmt.Errorf("read baseline: %w", err)
	}

	log.Info().
		Int("baseline", baseline.Lux).
		Str("band", string(baseline.Band())).
		Dur("interval", m.interval).
		Int("threshold_percent", m.threshold).
		Msg("starting ambient monitor")

	out := make(chan domain.AmbientSample, eventBuffer)
	go m.run(ctx, baseline, out)

	return out, nil
}

// run compares against the baseline right away, then once per interval,
// until ctx is cancelled
func (m *AmbientMonitor) run(ctx context.Context, baseline domain.AmbientSample, out chan<- domain.AmbientSample) {
	defer close(out)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		if current, changed := m.pollOnce(ctx, baseline); changed {
			baseline = current

			select {
			case out <- current:
			case <-ctx.Done():
				log.Info().Msg("stopping ambient monitor")
				return
			}
		}

		select {
		case <-ticker.C:
		case <-ctx.Done():
			log.Info().Msg("stopping ambient monitor")
			return
		}
	}
}

// pollOnce reads the sensor and reports whether the value moved far enough
// from baseline. A failed read counts as no change.
func (m *AmbientMonitor) pollOnce(ctx context.Context, baseline domain.AmbientSample) (domain.AmbientSample, bool) {
	current, err := m.read(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("failed to read ambient sensor, skipping cycle")
		return baseline, false
	}

	ratio := domain.ChangeRatio(baseline.Lux, current.Lux)
	if ratio <= m.threshold {
		return baseline, false
	}

	log.Info().
		Int("from", baseline.Lux).
		Int("lux", current.Lux).
		Int("ratio_percent", ratio).
		Str("band", string(current.Band())).
		Msg("ambient light changed")

	return current, true
}

func (m *AmbientMonitor) read(ctx context.Context) (domain.AmbientSample, error) {
	lux, err := m.sensor.ReadLux(ctx)
	if err != nil {
		return domain.AmbientSample{}, err
	}
	return domain.NewAmbientSample(lux)
}
