package domain

import (
	"time"
)

// RampOutcome is the terminal state of a single ramp
type RampOutcome string

const (
	RampConverged RampOutcome = "converged"
	RampCancelled RampOutcome = "cancelled"
	RampFailed    RampOutcome = "failed"
)

// RampRecord describes one ramp from the hardware brightness toward a target.
type RampRecord struct {
	ID        int64
	Lux       int
	From      int
	Target    int
	Final     int
	Steps     int
	Outcome   RampOutcome
	Error     string
	StartedAt time.Time
	Duration  time.Duration
}

// Band returns the lighting environment of the ambient value that started the ramp
func (r *RampRecord) Band() Band {
	return AmbientSample{Lux: r.Lux}.Band()
}

// Residual is the remaining distance between the final brightness and the target
func (r *RampRecord) Residual() int {
	d := r.Target - r.Final
	if d < 0 {
		return -d
	}
	return d
}
