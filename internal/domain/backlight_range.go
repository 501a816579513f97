package domain

import "fmt"

// BacklightRange holds the brightness bounds derived from a device's
// max_brightness. It is computed once at startup and never changes.
type BacklightRange struct {
	Min  int
	Max  int
	Step int
}

// NewBacklightRange derives the range from the reported maximum:
// min is 5% of max and step is 1% of max (at least 1).
func NewBacklightRange(max int) (BacklightRange, error) {
	if max <= 0 {
		return BacklightRange{}, fmt.Errorf("%w: got %d", ErrInvalidMaxBrightness, max)
	}

	r := BacklightRange{
		Min:  max / 20,
		Max:  max,
		Step: max / 100,
	}
	if r.Step < 1 {
		r.Step = 1
	}
	if r.Min < 1 {
		r.Min = 1
	}
	if r.Min >= r.Max {
		return BacklightRange{}, fmt.Errorf("%w: %d leaves no usable range", ErrInvalidMaxBrightness, max)
	}

	return r, nil
}

// luxScale is the brightness units per quantized lux.
const luxScale = 192

// TargetFor maps an ambient reading to a brightness within [Min, Max].
//
// Lux is bucketed into bands of 5 before scaling so sensor jitter inside a
// band does not move the backlight:
//
//	Environment      Lux    Brightness
//	Dark             0      5%
//	Inside (dim)     100    ~20%
//	Inside (medium)  150    ~30%
//	Inside (bright)  200    ~40%
//	Outside          500+   100%
//
// Negative lux is outside the sensor's domain and is treated as 0.
func (r BacklightRange) TargetFor(lux int) int {
	if lux < 0 {
		lux = 0
	}

	// Past this point the product is above Max anyway; stop before it can overflow.
	if lux >= r.Max/luxScale+5 {
		return r.Max
	}

	return r.Clamp(luxScale * (lux + 5 - lux%5))
}

// Clamp bounds v to [Min, Max].
func (r BacklightRange) Clamp(v int) int {
	return min(max(v, r.Min), r.Max)
}

// Percent returns v as a percentage of Max.
func (r BacklightRange) Percent(v int) float64 {
	return float64(v) * 100 / float64(r.Max)
}
