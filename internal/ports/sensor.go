package ports

import (
	"context"
)

// AmbientSensor defines how to read ambient light levels
// This is a PORT - adapters (sysfs, Mock) will implement it
type AmbientSensor interface {
	// ReadLux returns current light level in lux
	ReadLux(ctx context.Context) (int, error)

	// Close releases any resources
	Close() error
}
