package field

import "github.com/DillonBusk/pentrack/internal/dynamo"

// RampPhase is the piecewise ramp phase model of §2/§4.1, collapsed from
// the reference implementation's five independent boolean flags (slit,
// BruteForce, reflect, spinflipcheck, DetOpen) into the single phase the
// ramp's scale function is actually driven by, per the Open Question in §9.
type RampPhase int

const (
	PhaseFill RampPhase = iota
	PhaseClean
	PhaseRampUp
	PhaseFull
	PhaseRampDown
	PhaseEmpty
)

// RampProfile is a piecewise-continuous scale function s(t) built from
// phase durations: linear ramp-up/down segments bracketing a flat "full"
// segment, optionally preceded by fill/clean segments and followed by an
// empty segment, with an optional sinusoidal oscillation added on top
// (§3). Parameters are fixed for the run.
type RampProfile struct {
	FillDuration     float64
	CleanDuration    float64
	RampUpDuration   float64
	FullDuration     float64
	RampDownDuration float64

	// OscAmplitude/OscFrequency/OscPhase define an optional additive
	// sinusoidal term s(t) += OscAmplitude*sin(2*pi*OscFrequency*t+OscPhase),
	// evaluated via the shared fast-trig table since the ramp is sampled
	// once per integrator step per particle.
	OscAmplitude float64
	OscFrequency float64
	OscPhase     float64
}

// Static returns a trivial always-on ramp (scale 1 for all t), the default
// for sources that are not time-gated.
func Static() *RampProfile {
	return &RampProfile{FullDuration: 1e300}
}

// Phase returns which phase t falls in, given the profile's segment
// boundaries measured from t=0.
func (r *RampProfile) Phase(t float64) RampPhase {
	b := r.boundaries()
	switch {
	case t < b[0]:
		return PhaseFill
	case t < b[1]:
		return PhaseClean
	case t < b[2]:
		return PhaseRampUp
	case t < b[3]:
		return PhaseFull
	case t < b[4]:
		return PhaseRampDown
	default:
		return PhaseEmpty
	}
}

func (r *RampProfile) boundaries() [5]float64 {
	b0 := r.FillDuration
	b1 := b0 + r.CleanDuration
	b2 := b1 + r.RampUpDuration
	b3 := b2 + r.FullDuration
	b4 := b3 + r.RampDownDuration
	return [5]float64{b0, b1, b2, b3, b4}
}

// Scale evaluates s(t): 0 during fill/clean, linearly ramping 0->1 during
// ramp-up, 1 during full, linearly ramping 1->0 during ramp-down, 0 after
// (§3), plus the optional oscillation term. Continuous at every boundary
// by construction.
func (r *RampProfile) Scale(t float64) float64 {
	b := r.boundaries()
	var base float64
	switch r.Phase(t) {
	case PhaseFill, PhaseClean:
		base = 0
	case PhaseRampUp:
		span := b[2] - b[1]
		if span <= 0 {
			base = 1
		} else {
			base = (t - b[1]) / span
		}
	case PhaseFull:
		base = 1
	case PhaseRampDown:
		span := b[4] - b[3]
		if span <= 0 {
			base = 0
		} else {
			base = 1 - (t-b[3])/span
		}
	default: // PhaseEmpty
		base = 0
	}

	if r.OscAmplitude != 0 {
		angle := 2*3.14159265358979*r.OscFrequency*t + r.OscPhase
		sin, _ := dynamo.FastSinCos(angle)
		base += r.OscAmplitude * sin
	}
	return base
}
