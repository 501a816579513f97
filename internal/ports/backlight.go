package ports

import (
	"context"
)

// BrightnessReader reports the brightness the hardware currently shows.
// This is a PORT - the sysfs adapter implements it
type BrightnessReader interface {
	Brightness(ctx context.Context) (int, error)
}

// BrightnessWriter applies a new brightness value.
// This is a PORT - adapters (login1, sysfs, Mock) will implement it
type BrightnessWriter interface {
	// SetBrightness must not be abandoned halfway; callers pass a context
	// that is not tied to shutdown.
	SetBrightness(ctx context.Context, value int) error

	// Close releases any resources
	Close() error
}
