package sysfs

import (
	"context"
	"path/filepath"
)

// Backlight is a /sys/class/backlight device.
//
// It implements ports.BrightnessReader, and ports.BrightnessWriter for setups
// where the process may write the brightness attribute directly instead of
// going through logind.
type Backlight struct {
	name string
	dir  string
}

// NewBacklight creates a backlight for device under root,
// e.g. NewBacklight("/sys/class/backlight", "intel_backlight")
func NewBacklight(root, device string) *Backlight {
	return &Backlight{
		name: device,
		dir:  filepath.Join(root, device),
	}
}

// Name returns the device name as logind expects it
func (b *Backlight) Name() string {
	return b.name
}

// MaxBrightness reads max_brightness
func (b *Backlight) MaxBrightness(ctx context.Context) (int, error) {
	return ReadInt(filepath.Join(b.dir, "max_brightness"))
}

// Brightness reads the current brightness
func (b *Backlight) Brightness(ctx context.Context) (int, error) {
	return ReadInt(filepath.Join(b.dir, "brightness"))
}

// SetBrightness writes the brightness attribute
func (b *Backlight) SetBrightness(ctx context.Context, value int) error {
	return WriteInt(filepath.Join(b.dir, "brightness"), value)
}

// Close is a no-op; every access opens the file anew
func (b *Backlight) Close() error {
	return nil
}
