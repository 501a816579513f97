// Package login1 sets the backlight through systemd-logind, which lets an
// unprivileged session change brightness without write access to sysfs.
package login1

import (
	"context"
	"fmt"
	"time"

	"github.com/godbus/dbus/v5"
)

const (
	DefaultDestination = "org.freedesktop.login1"
	DefaultPath        = "/org/freedesktop/login1/session/auto"
	DefaultInterface   = "org.freedesktop.login1.Session"

	// callTimeout bounds a single SetBrightness call
	callTimeout = 5 * time.Second
)

// Config addresses the logind session object
type Config struct {
	Destination string
	Path        string
	Interface   string
}

// Writer calls Session.SetBrightness for one backlight device
// This implements the ports.BrightnessWriter interface
type Writer struct {
	conn   *dbus.Conn
	obj    dbus.BusObject
	method string
	device string
}

// NewWriter connects to the system bus
func NewWriter(cfg Config, device string) (*Writer, error) {
	conn, err := dbus.ConnectSystemBus()
	if err != nil {
		return nil, fmt.Errorf("connect system bus: %w", err)
	}

	w := newWriter(conn.Object(cfg.Destination, dbus.ObjectPath(cfg.Path)), cfg.Interface, device)
	w.conn = conn
	return w, nil
}

func newWriter(obj dbus.BusObject, iface, device string) *Writer {
	return &Writer{
		obj:    obj,
		method: iface + ".SetBrightness",
		device: device,
	}
}

// SetBrightness asks logind to set the backlight to value
func (w *Writer) SetBrightness(ctx context.Context, value int) error {
	if value < 0 {
		return fmt.Errorf("brightness %d is negative", value)
	}

	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	call := w.obj.CallWithContext(ctx, w.method, 0, "backlight", w.device, uint32(value))
	if call.Err != nil {
		return fmt.Errorf("%s: %w", w.method, call.Err)
	}
	return nil
}

// Close closes the bus connection
func (w *Writer) Close() error {
	if w.conn == nil {
		return nil
	}
	return w.conn.Close()
}
