package mock

import (
	"context"
	"math/rand"
	"sync"
)

// FakeSensor simulates an ambient light sensor for development
// This implements the ports.AmbientSensor interface
type FakeSensor struct {
	baseValue int
	variation int
}

// NewFakeSensor creates a sensor that returns realistic values
// baseValue: average lux (e.g., 150 for indoor lighting)
// variation: +/- range (e.g., 50 means 100-200)
func NewFakeSensor(baseValue, variation int) *FakeSensor {
	return &FakeSensor{
		baseValue: baseValue,
		variation: variation,
	}
}

// ReadLux returns a simulated light reading
func (s *FakeSensor) ReadLux(ctx context.Context) (int, error) {
	lux := s.baseValue
	if s.variation > 0 {
		lux += rand.Intn(2*s.variation+1) - s.variation
	}

	// Ensure non-negative
	if lux < 0 {
		lux = 0
	}

	return lux, nil
}

// Close is a no-op for fake sensor
func (s *FakeSensor) Close() error {
	return nil
}

// ScriptedSensor replays a fixed sequence of readings, then keeps
// returning the last one. Individual reads can be made to fail.
type ScriptedSensor struct {
	mu     sync.Mutex
	values []int
	fail   map[int]error
	reads  int
}

// NewScriptedSensor creates a sensor that returns values in order
func NewScriptedSensor(values ...int) *ScriptedSensor {
	return &ScriptedSensor{
		values: values,
		fail:   make(map[int]error),
	}
}

// FailAt makes the n-th read (zero based) return err instead of a value
func (s *ScriptedSensor) FailAt(n int, err error) *ScriptedSensor {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fail[n] = err
	return s
}

// ReadLux returns the next scripted value
func (s *ScriptedSensor) ReadLux(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := s.reads
	s.reads++

	if err, ok := s.fail[n]; ok {
		return 0, err
	}
	if len(s.values) == 0 {
		return 0, nil
	}
	if n >= len(s.values) {
		n = len(s.values) - 1
	}
	return s.values[n], nil
}

// Reads returns how many times ReadLux was called
func (s *ScriptedSensor) Reads() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reads
}

// Close is a no-op for scripted sensor
func (s *ScriptedSensor) Close() error {
	return nil
}
