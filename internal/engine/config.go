package engine

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// ErrInvalidConfig is wrapped by every validation failure returned from New.
var ErrInvalidConfig = errors.New("invalid engine config")

// Config holds the tuning knobs of the simulation. It is copied into the
// Engine at construction and never changes afterwards.
type Config struct {
	Start float64 // value representing 0% elapsed
	End   float64 // value representing 100% elapsed

	IncrementSpeed   float64 // accumulator step in PhaseRamp
	MiddlePhaseSpeed float64 // accumulator step in PhaseAccelerate
	FinalPhaseSpeed  float64 // accumulator step in PhaseSettle

	// Percent of the range at which the phase checks fire. LastPhaseDuration
	// is only evaluated once FirstPhaseDuration has been crossed.
	FirstPhaseDuration float64
	LastPhaseDuration  float64

	// StopThreshold is the percent of End the bar may reach before Complete.
	StopThreshold float64

	TickInterval time.Duration
}

// DefaultConfig returns the stock tuning.
func DefaultConfig() Config {
	return Config{
		Start:              0,
		End:                100,
		IncrementSpeed:     0.005,
		MiddlePhaseSpeed:   0.3,
		FinalPhaseSpeed:    0.002,
		FirstPhaseDuration: 70,
		LastPhaseDuration:  40,
		StopThreshold:      96,
		TickInterval:       30 * time.Millisecond,
	}
}

// Validate reports the first contract violation in c.
func (c Config) Validate() error {
	fields := []struct {
		name string
		v    float64
	}{
		{"start", c.Start},
		{"end", c.End},
		{"increment speed", c.IncrementSpeed},
		{"middle phase speed", c.MiddlePhaseSpeed},
		{"final phase speed", c.FinalPhaseSpeed},
		{"first phase duration", c.FirstPhaseDuration},
		{"last phase duration", c.LastPhaseDuration},
		{"stop threshold", c.StopThreshold},
	}
	for _, f := range fields {
		if math.IsNaN(f.v) || math.IsInf(f.v, 0) {
			return fmt.Errorf("%w: %s must be finite", ErrInvalidConfig, f.name)
		}
	}

	if c.End <= c.Start {
		return fmt.Errorf("%w: end (%g) must be greater than start (%g)", ErrInvalidConfig, c.End, c.Start)
	}
	if c.IncrementSpeed < 0 || c.MiddlePhaseSpeed < 0 || c.FinalPhaseSpeed < 0 {
		return fmt.Errorf("%w: phase speeds must not be negative", ErrInvalidConfig)
	}
	if c.IncrementSpeed == 0 && c.MiddlePhaseSpeed == 0 && c.FinalPhaseSpeed == 0 {
		return fmt.Errorf("%w: at least one phase speed must be positive", ErrInvalidConfig)
	}
	if c.StopThreshold <= 0 {
		return fmt.Errorf("%w: stop threshold must be positive", ErrInvalidConfig)
	}
	if c.stopCeiling() <= c.Start {
		return fmt.Errorf("%w: stop ceiling %g is not above start %g", ErrInvalidConfig, c.stopCeiling(), c.Start)
	}
	if c.TickInterval <= 0 {
		return fmt.Errorf("%w: tick interval must be positive", ErrInvalidConfig)
	}
	return nil
}

func (c Config) span() float64 {
	return c.End - c.Start
}

// The stop ceiling scales End, not the range: with Start=10, End=50 it is 48.
func (c Config) stopCeiling() float64 {
	return c.End * (c.StopThreshold / 100)
}

func (c Config) firstThreshold() float64 {
	return c.Start + (c.FirstPhaseDuration/100)*c.span()
}

func (c Config) lastThreshold() float64 {
	return c.Start + (c.LastPhaseDuration/100)*c.span()
}

func (c Config) speed(p Phase) float64 {
	switch p {
	case PhaseAccelerate:
		return c.MiddlePhaseSpeed
	case PhaseSettle:
		return c.FinalPhaseSpeed
	default:
		return c.IncrementSpeed
	}
}
