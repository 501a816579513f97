package grpc

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/quentinrf/backlightd/internal/domain"
	"github.com/quentinrf/backlightd/internal/ports"
)

// StatusHandler implements the backlight.v1.Status service
type StatusHandler struct {
	rng    domain.BacklightRange
	repo   domain.RampRepository
	sensor ports.AmbientSensor
	reader ports.BrightnessReader
}

// NewStatusHandler creates a new gRPC handler
func NewStatusHandler(rng domain.BacklightRange, repo domain.RampRepository, sensor ports.AmbientSensor, reader ports.BrightnessReader) *StatusHandler {
	return &StatusHandler{
		rng:    rng,
		repo:   repo,
		sensor: sensor,
		reader: reader,
	}
}

// GetStatus reads the sensor and backlight now and adds the latest ramp
func (h *StatusHandler) GetStatus(ctx context.Context, req *emptypb.Empty) (*structpb.Struct, error) {
	log.Debug().Msg("GetStatus called")

	brightness, err := h.reader.Brightness(ctx)
	if err != nil {
		log.Error().Err(err).Msg("failed to read brightness")
		return nil, status.Error(codes.Internal, "failed to read brightness")
	}

	lux, err := h.sensor.ReadLux(ctx)
	if err != nil {
		log.Error().Err(err).Msg("failed to read sensor")
		return nil, status.Error(codes.Internal, "failed to read sensor")
	}
	sample, err := domain.NewAmbientSample(lux)
	if err != nil {
		log.Error().Err(err).Int("lux", lux).Msg("invalid sensor reading")
		return nil, status.Error(codes.Internal, "invalid sensor reading")
	}

	fields := map[string]any{
		"min":                h.rng.Min,
		"max":                h.rng.Max,
		"step":               h.rng.Step,
		"brightness":         brightness,
		"brightness_percent": h.rng.Percent(brightness),
		"lux":                sample.Lux,
		"band":               string(sample.Band()),
		"target":             h.rng.TargetFor(sample.Lux),
	}

	latest, err := h.repo.GetLatestRamp(ctx)
	switch {
	case err == nil:
		fields["last_ramp"] = rampFields(latest)
	case !errors.Is(err, domain.ErrRampNotFound):
		log.Error().Err(err).Msg("failed to get latest ramp")
		return nil, status.Error(codes.Internal, "failed to get latest ramp")
	}

	out, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return out, nil
}

// GetHistory returns ramps within time range with outcome counts.
// start_time and end_time are unix seconds; end defaults to now and start to
// one day before end.
func (h *StatusHandler) GetHistory(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	end := time.Now()
	if v, ok := req.GetFields()[endTimeField]; ok {
		end = time.Unix(int64(v.GetNumberValue()), 0)
	}
	start := end.Add(-defaultHistorySpan)
	if v, ok := req.GetFields()[startTimeField]; ok {
		start = time.Unix(int64(v.GetNumberValue()), 0)
	}

	log.Debug().
		Int64("start", start.Unix()).
		Int64("end", end.Unix()).
		Msg("GetHistory called")

	if end.Before(start) {
		return nil, status.Error(codes.InvalidArgument, "end_time is before start_time")
	}

	ramps, err := h.repo.GetRampsInRange(ctx, start, end)
	if err != nil {
		log.Error().Err(err).Msg("failed to get ramps")
		return nil, status.Error(codes.Internal, "failed to get ramps")
	}

	list := make([]any, len(ramps))
	for i, r := range ramps {
		list[i] = rampFields(r)
	}

	stats := calculateStatistics(ramps)

	out, err := structpb.NewStruct(map[string]any{
		"ramps":            list,
		"count":            len(ramps),
		"converged":        stats.converged,
		"cancelled":        stats.cancelled,
		"failed":           stats.failed,
		"average_steps":    stats.averageSteps,
		"average_duration": stats.averageDuration.Seconds(),
	})
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return out, nil
}

// rampFields converts a domain ramp to a protobuf-compatible map
func rampFields(r *domain.RampRecord) map[string]any {
	fields := map[string]any{
		"id":         r.ID,
		"lux":        r.Lux,
		"band":       string(r.Band()),
		"from":       r.From,
		"target":     r.Target,
		"final":      r.Final,
		"steps":      r.Steps,
		"outcome":    string(r.Outcome),
		"started_at": r.StartedAt.Unix(),
		"duration":   r.Duration.Seconds(),
	}
	if r.Error != "" {
		fields["error"] = r.Error
	}
	return fields
}

// statistics holds calculated statistics
type statistics struct {
	converged       int
	cancelled       int
	failed          int
	averageSteps    float64
	averageDuration time.Duration
}

// calculateStatistics computes stats for a set of ramps
func calculateStatistics(ramps []*domain.RampRecord) statistics {
	if len(ramps) == 0 {
		return statistics{}
	}

	var (
		stats    statistics
		steps    int
		duration time.Duration
	)
	for _, r := range ramps {
		switch r.Outcome {
		case domain.RampConverged:
			stats.converged++
		case domain.RampCancelled:
			stats.cancelled++
		case domain.RampFailed:
			stats.failed++
		}
		steps += r.Steps
		duration += r.Duration
	}

	stats.averageSteps = float64(steps) / float64(len(ramps))
	stats.averageDuration = duration / time.Duration(len(ramps))
	return stats
}
