package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidLux indicates lux value is invalid
	ErrInvalidLux = errors.New("lux value cannot be negative")

	// ErrInvalidMaxBrightness indicates the device reported an unusable maximum
	ErrInvalidMaxBrightness = errors.New("max brightness must be positive")

	// ErrRampNotFound indicates requested ramp record doesn't exist
	ErrRampNotFound = errors.New("ramp not found")

	// ErrSensorUnavailable indicates sensor cannot be read
	ErrSensorUnavailable = errors.New("sensor unavailable")
)

// ActuationError reports a brightness write that failed mid-ramp.
// The ramp is aborted but the control loop keeps running.
type ActuationError struct {
	Value int
	Err   error
}

func (e *ActuationError) Error() string {
	return fmt.Sprintf("set brightness to %d: %v", e.Value, e.Err)
}

func (e *ActuationError) Unwrap() error {
	return e.Err
}
