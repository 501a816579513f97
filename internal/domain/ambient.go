package domain

// AmbientSample is a single illuminance reading in lux
type AmbientSample struct {
	Lux int
}

// NewAmbientSample validates a raw sensor value
func NewAmbientSample(lux int) (AmbientSample, error) {
	// Business rule: Lux cannot be negative
	if lux < 0 {
		return AmbientSample{}, ErrInvalidLux
	}

	return AmbientSample{Lux: lux}, nil
}

// Band names the lighting environment a reading falls into
type Band string

const (
	BandDark         Band = "dark"
	BandDimIndoor    Band = "dim-indoor"
	BandMediumIndoor Band = "medium-indoor"
	BandBrightIndoor Band = "bright-indoor"
	BandOutdoor      Band = "outdoor"
)

// Band returns the lighting environment for this sample
// Business logic: <100 dark, <150 dim, <200 medium, <500 bright, else outdoor
func (s AmbientSample) Band() Band {
	switch {
	case s.Lux < 100:
		return BandDark
	case s.Lux < 150:
		return BandDimIndoor
	case s.Lux < 200:
		return BandMediumIndoor
	case s.Lux < 500:
		return BandBrightIndoor
	default:
		return BandOutdoor
	}
}

// ChangeRatio returns the integer percentage change of current relative to
// baseline. A dark baseline of 0 is treated as 1 so the ratio stays defined.
func ChangeRatio(baseline, current int) int {
	diff := baseline - current
	if diff < 0 {
		diff = -diff
	}
	return diff * 100 / max(baseline, 1)
}
