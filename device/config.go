// Package device describes the RTL2832U control surface: the front end
// configuration applied at session start, tuner identification and the
// EEPROM hardware info block.
package device

import "fmt"

// GainMode defines how the tuner gain is selected.
type GainMode int

const (
	// GainAuto lets the tuner pick the gain.
	GainAuto GainMode = iota
	// GainManual uses the gain value from the config.
	GainManual
)

// String returns gain mode name.
func (m GainMode) String() string {
	switch m {
	case GainAuto:
		return "auto"
	case GainManual:
		return "manual"
	}
	return "unknown"
}

// Valid sample rate ranges of the RTL2832U in Hz.
const (
	minSampleRate     = 225001
	maxSampleRate     = 3200000
	gapSampleRateLow  = 300000
	gapSampleRateHigh = 900001
)

// Config holds the front end parameters applied once when a streaming
// session starts.
type Config struct {
	// SampleRate in Hz. Valid ranges are 225001-300000 and 900001-3200000.
	SampleRate int
	// CenterFreq is the tuned center frequency in Hz.
	CenterFreq int
	// FreqCorrection in parts per million.
	FreqCorrection int
	// GainMode selects automatic or manual tuner gain.
	GainMode GainMode
	// Gain in tenths of dB, used only with GainManual.
	Gain int
	// AGC enables the RTL2832 automatic gain control.
	AGC bool
	// DirectSampling bypasses the tuner and samples the ADC input.
	DirectSampling bool
	// OffsetTuning shifts the IF to avoid the DC spike, E4000 only.
	OffsetTuning bool
}

// ConfigError is returned when the device rejects a requested parameter.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("device config: %s: %s", e.Field, e.Reason)
}

// Validate checks config values against the hardware limits.
func (c Config) Validate() error {
	if c.SampleRate < minSampleRate || c.SampleRate > maxSampleRate {
		return &ConfigError{
			Field:  "SampleRate",
			Reason: fmt.Sprintf("%d Hz is out of range [%d, %d]", c.SampleRate, minSampleRate, maxSampleRate),
		}
	}
	if c.SampleRate > gapSampleRateLow && c.SampleRate < gapSampleRateHigh {
		return &ConfigError{
			Field:  "SampleRate",
			Reason: fmt.Sprintf("%d Hz falls into unsupported gap (%d, %d)", c.SampleRate, gapSampleRateLow, gapSampleRateHigh),
		}
	}
	if c.CenterFreq <= 0 {
		return &ConfigError{
			Field:  "CenterFreq",
			Reason: "must be positive",
		}
	}
	if c.GainMode == GainManual && c.Gain < 0 {
		return &ConfigError{
			Field:  "Gain",
			Reason: "manual gain must not be negative",
		}
	}
	return nil
}
