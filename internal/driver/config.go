// Package driver implements the particle driver of §4.6: the per-particle
// step/resolve/spin/terminate loop, and the ensemble fan-out across
// particles from §5.
package driver

import (
	"fmt"

	"github.com/DillonBusk/pentrack/internal/dynamo"
	"github.com/DillonBusk/pentrack/internal/particle"
)

// Config carries the per-run, per-kind tunables §4.3/§4.5/§6 call for.
// Passed by reference and never mutated after construction, per §9's
// design note on replacing global mutable state with immutable structs.
type Config struct {
	SimTime float64

	H1        map[particle.Kind]float64
	Tolerance map[particle.Kind]float64
	MaxDt     float64

	BTarget       float64
	SpinBufferCap int
	SpinTolerance float64
	FlipOnSample  bool
}

func (c Config) initialStep(k particle.Kind) float64 {
	if v, ok := c.H1[k]; ok && v > 0 {
		return v
	}
	return 1e-4
}

func (c Config) toleranceFor(k particle.Kind) float64 {
	if v, ok := c.Tolerance[k]; ok && v > 0 {
		return v
	}
	return k.DefaultTolerance()
}

// Validate rejects a Config that cannot produce a sensible run, folding
// into dynamo.ErrParameterBounds per §7's "process only aborts on
// catastrophic failures... malformed config" policy: this is checked once
// before any particle is tracked, not per-particle during Run.
func (c Config) Validate() error {
	if c.SimTime <= 0 {
		return fmt.Errorf("simtime must be positive, got %g: %w", c.SimTime, dynamo.ErrParameterBounds)
	}
	if c.BTarget < 0 {
		return fmt.Errorf("b_target must be non-negative, got %g: %w", c.BTarget, dynamo.ErrParameterBounds)
	}
	if c.SpinBufferCap <= 0 {
		return fmt.Errorf("spin_buffer_cap must be positive, got %d: %w", c.SpinBufferCap, dynamo.ErrParameterBounds)
	}
	if c.SpinTolerance <= 0 {
		return fmt.Errorf("spin_tolerance must be positive, got %g: %w", c.SpinTolerance, dynamo.ErrParameterBounds)
	}
	for k, tol := range c.Tolerance {
		if tol < 0 {
			return fmt.Errorf("tolerance for %v must be non-negative, got %g: %w", k, tol, dynamo.ErrParameterBounds)
		}
	}
	for k, h1 := range c.H1 {
		if h1 < 0 {
			return fmt.Errorf("h1 for %v must be non-negative, got %g: %w", k, h1, dynamo.ErrParameterBounds)
		}
	}
	return nil
}
