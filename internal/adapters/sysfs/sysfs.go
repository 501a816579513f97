// Package sysfs reads and writes the integer attribute files the kernel
// exposes for backlight and IIO devices.
package sysfs

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// ReadInt reads a single integer from a sysfs attribute file
func ReadInt(path string) (int, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read %s: %w", path, err)
	}

	v, err := strconv.Atoi(strings.TrimSpace(string(raw)))
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", path, err)
	}

	return v, nil
}

// WriteInt writes a single integer to a sysfs attribute file
func WriteInt(path string, v int) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_TRUNC, 0)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}

	if _, err := f.WriteString(strconv.Itoa(v)); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}

	return f.Close()
}
