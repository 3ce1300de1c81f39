package dynamo

import "sort"

// Sample is one dense-output row: the state and the field samples the
// integrator's derivative function evaluated along the way, at internal
// time t. Bx/Ex hold the 3 components of B and E respectively so that
// DenseOutput stays a single self-contained, immutable value (no global
// xp/yp/Bp/Ep arrays, per §9's design note).
type Sample struct {
	T  float64
	Y  State
	Bx State // len 3
	Ex State // len 3
	V  float64
}

// DenseOutput is the table an integrator step returns: t_a=T[0] < ... <
// t_K=T[last], spaced at roughly dxsav apart (§4.3). It is owned by the
// caller and passed on to both the collision resolver (to rewind into a
// step) and the spin sub-integrator (to read B(t)); nothing mutates it
// after the integrator returns it.
type DenseOutput struct {
	Samples []Sample
}

func (d DenseOutput) T0() float64 {
	if len(d.Samples) == 0 {
		return 0
	}
	return d.Samples[0].T
}

func (d DenseOutput) T1() float64 {
	if len(d.Samples) == 0 {
		return 0
	}
	return d.Samples[len(d.Samples)-1].T
}

// MinFieldMagnitude returns the smallest |B| among the buffered samples,
// the quantity the spin tracker compares against B_target (§4.5).
func (d DenseOutput) MinFieldMagnitude() float64 {
	min := -1.0
	for _, s := range d.Samples {
		m := s.Bx.Norm()
		if min < 0 || m < min {
			min = m
		}
	}
	if min < 0 {
		return 0
	}
	return min
}

// At returns the state linearly interpolated between the two bracketing
// dense samples for absolute time t. Collisions rewind through this rather
// than through a fresh Derive call (§4.3's tie-break contract). Between
// two samples the result is a straight-line interpolation, so its accuracy
// depends on how densely the integrator sampled the step; no further
// refinement is applied by At or by the collision resolver.
func (d DenseOutput) At(t float64) State {
	n := len(d.Samples)
	if n == 0 {
		return nil
	}
	if n == 1 || t <= d.Samples[0].T {
		return d.Samples[0].Y.Clone()
	}
	if t >= d.Samples[n-1].T {
		return d.Samples[n-1].Y.Clone()
	}

	i := sort.Search(n, func(i int) bool { return d.Samples[i].T >= t })
	lo, hi := d.Samples[i-1], d.Samples[i]
	span := hi.T - lo.T
	if span <= 0 {
		return lo.Y.Clone()
	}
	frac := (t - lo.T) / span
	return lo.Y.Add(hi.Y.Sub(lo.Y).Scale(frac))
}

// FieldAt linearly interpolates the buffered B sample at time t, the
// operation the spin sub-integrator's Bloch right-hand side needs (§4.5:
// "B(t) is obtained by linear interpolation between the buffered samples").
func (d DenseOutput) FieldAt(t float64) State {
	n := len(d.Samples)
	if n == 0 {
		return nil
	}
	if n == 1 || t <= d.Samples[0].T {
		return d.Samples[0].Bx.Clone()
	}
	if t >= d.Samples[n-1].T {
		return d.Samples[n-1].Bx.Clone()
	}
	i := sort.Search(n, func(i int) bool { return d.Samples[i].T >= t })
	lo, hi := d.Samples[i-1], d.Samples[i]
	span := hi.T - lo.T
	if span <= 0 {
		return lo.Bx.Clone()
	}
	frac := (t - lo.T) / span
	return lo.Bx.Add(hi.Bx.Sub(lo.Bx).Scale(frac))
}

// Append returns a new DenseOutput with other's samples appended, used by
// the spin tracker to merge consecutive steps into one brute-force buffer
// (§4.5). Samples are assumed already time-ordered and contiguous.
func (d DenseOutput) Append(other DenseOutput) DenseOutput {
	merged := make([]Sample, 0, len(d.Samples)+len(other.Samples))
	merged = append(merged, d.Samples...)
	merged = append(merged, other.Samples...)
	return DenseOutput{Samples: merged}
}
