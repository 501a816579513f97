package sysfs

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/quentinrf/backlightd/internal/domain"
)

// Sensor reads illuminance from an IIO device
// This implements the ports.AmbientSensor interface
type Sensor struct {
	path string
}

// NewSensor creates a sensor for device under root,
// e.g. NewSensor("/sys/bus/iio/devices", "iio:device0")
func NewSensor(root, device string) *Sensor {
	return &Sensor{path: filepath.Join(root, device, "in_illuminance_raw")}
}

// Path returns the attribute file the sensor reads
func (s *Sensor) Path() string {
	return s.path
}

// ReadLux returns the raw illuminance value
func (s *Sensor) ReadLux(ctx context.Context) (int, error) {
	lux, err := ReadInt(s.path)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", domain.ErrSensorUnavailable, err)
	}
	return lux, nil
}

// Close is a no-op; every read opens the file anew
func (s *Sensor) Close() error {
	return nil
}
