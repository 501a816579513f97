package mock

import (
	"context"
	"sync"
)

// FakeBacklight is an in-memory backlight that records every write.
// It implements both ports.BrightnessReader and ports.BrightnessWriter.
type FakeBacklight struct {
	mu         sync.Mutex
	max        int
	brightness int
	writes     []int
	failAfter  int
	failErr    error
	onWrite    func(value int)
}

// NewFakeBacklight creates a backlight with the given maximum and current brightness
func NewFakeBacklight(max, brightness int) *FakeBacklight {
	return &FakeBacklight{
		max:        max,
		brightness: brightness,
		failAfter:  -1,
	}
}

// FailAfter makes every write after the first n successful writes return err
func (b *FakeBacklight) FailAfter(n int, err error) *FakeBacklight {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failAfter = n
	b.failErr = err
	return b
}

// OnWrite registers fn to run after each successful write
func (b *FakeBacklight) OnWrite(fn func(value int)) *FakeBacklight {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.onWrite = fn
	return b
}

// MaxBrightness returns the configured maximum
func (b *FakeBacklight) MaxBrightness(ctx context.Context) (int, error) {
	return b.max, nil
}

// Brightness returns the last written value
func (b *FakeBacklight) Brightness(ctx context.Context) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.brightness, nil
}

// SetBrightness records value as the new brightness
func (b *FakeBacklight) SetBrightness(ctx context.Context, value int) error {
	b.mu.Lock()
	if b.failAfter >= 0 && len(b.writes) >= b.failAfter {
		err := b.failErr
		b.mu.Unlock()
		return err
	}
	b.brightness = value
	b.writes = append(b.writes, value)
	fn := b.onWrite
	b.mu.Unlock()

	if fn != nil {
		fn(value)
	}
	return nil
}

// Writes returns a copy of every value written so far
func (b *FakeBacklight) Writes() []int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]int(nil), b.writes...)
}

// Close is a no-op for fake backlight
func (b *FakeBacklight) Close() error {
	return nil
}
