package spin

import (
	"github.com/DillonBusk/pentrack/internal/dynamo"
	"github.com/DillonBusk/pentrack/internal/particle"
	"github.com/DillonBusk/pentrack/internal/rng"
	"github.com/DillonBusk/pentrack/internal/spatial"
)

// Tracker holds the adiabatic/brute-force state machine of §4.5 for one
// particle. It is not safe for concurrent use across particles — the
// driver constructs one Tracker per particle, matching the per-particle
// scratch-state rule of §5.
type Tracker struct {
	BTarget      float64
	BufferCap    int
	Tolerance    float64
	FlipOnSample bool

	Integrator dynamo.DenseIntegrator

	buffering bool
	buffer    dynamo.DenseOutput
}

// NewTracker builds a Tracker. The integrator passed in should be
// configured with a stricter tolerance than the trajectory driver's own,
// per §4.5 ("the same Cash-Karp driver is used with a stricter
// tolerance").
func NewTracker(integrator dynamo.DenseIntegrator, bTarget float64, bufferCap int, tolerance float64) *Tracker {
	return &Tracker{
		Integrator: integrator,
		BTarget:    bTarget,
		BufferCap:  bufferCap,
		Tolerance:  tolerance,
	}
}

// ProcessStep is called once per accepted, collision-free integrator step
// (§4.6's driver loop step iv). While the step's minimum |B| stays above
// BTarget and no brute-force buffer is in flight, polarization is
// adiabatically conserved and the spin is merely reset parallel to the
// field at the step's end; otherwise the step's samples are folded into
// the buffer, which is integrated once the field clears the threshold
// again or the buffer fills.
func (tr *Tracker) ProcessStep(dense dynamo.DenseOutput, p *particle.Particle, stream *rng.Stream) {
	if len(dense.Samples) == 0 {
		return
	}
	minB := dense.MinFieldMagnitude()

	if !tr.buffering && minB >= tr.BTarget {
		tr.resetAdiabatic(dense, p)
		return
	}

	if !tr.buffering {
		tr.buffering = true
		tr.buffer = dynamo.DenseOutput{}
	}
	tr.buffer = tr.buffer.Append(dense)

	clearedThreshold := minB >= tr.BTarget
	overCap := len(tr.buffer.Samples) >= tr.BufferCap
	if clearedThreshold || overCap {
		tr.integrateBuffer(p, stream)
		tr.buffering = false
		tr.buffer = dynamo.DenseOutput{}
	}
}

// Flush forces any in-flight buffer to integrate, for use when a particle
// terminates mid-buffer.
func (tr *Tracker) Flush(p *particle.Particle, stream *rng.Stream) {
	if !tr.buffering {
		return
	}
	tr.integrateBuffer(p, stream)
	tr.buffering = false
	tr.buffer = dynamo.DenseOutput{}
}

func (tr *Tracker) resetAdiabatic(dense dynamo.DenseOutput, p *particle.Particle) {
	last := dense.Samples[len(dense.Samples)-1]
	if len(last.Bx) < 3 {
		return
	}
	b := spatial.Vec3{last.Bx[0], last.Bx[1], last.Bx[2]}
	if b.Norm() < 1e-300 {
		return
	}
	p.Spin = b.Normalized()
}

// integrateBuffer runs the buffered Bloch segment and updates p.Spin,
// p.PSurvive, and (if FlipOnSample) p.SpinSign per §4.5's polarization
// update rule.
func (tr *Tracker) integrateBuffer(p *particle.Particle, stream *rng.Stream) {
	buf := tr.buffer
	if len(buf.Samples) < 2 {
		return
	}
	t0, t1 := buf.T0(), buf.T1()
	if t1 <= t0 {
		return
	}

	sys := &blochSystem{gamma: particle.GyromagneticRatio, field: fieldFunc(buf)}
	x := dynamo.State{p.Spin[0], p.Spin[1], p.Spin[2]}

	// A single StepAdaptive/StepDense call is one quality-controlled step
	// that may consume less than the requested span when the tolerance
	// forces shrinking; loop on the actual step taken until t1 is reached,
	// the same way driver.Run advances the main trajectory.
	t, dt := t0, t1-t0
	for t < t1 {
		if dt > t1-t {
			dt = t1 - t
		}
		result, err := tr.Integrator.StepDense(sys, x, nil, t, dt, tr.Tolerance, nil)
		if err != nil {
			return
		}
		x = result.X
		t += result.DtActual
		dt = result.DtNext
		if dt <= 0 {
			dt = t1 - t
		}
	}

	newSpin := spatial.Vec3{x[0], x[1], x[2]}.Normalized()

	last := buf.Samples[len(buf.Samples)-1]
	bHat := spatial.Vec3{last.Bx[0], last.Bx[1], last.Bx[2]}.Normalized()
	proj := newSpin.Dot(bHat)
	if proj < -1 {
		proj = -1
	} else if proj > 1 {
		proj = 1
	}

	survive := (proj + 1) / 2
	p.PSurvive *= survive
	p.Spin = newSpin

	if tr.FlipOnSample && stream.Float64() < 1-survive {
		p.SpinSign = -p.SpinSign
	}
}
