package spin

import (
	"math"
	"testing"

	"github.com/DillonBusk/pentrack/internal/dynamo"
	"github.com/DillonBusk/pentrack/internal/integrators"
	"github.com/DillonBusk/pentrack/internal/particle"
	"github.com/DillonBusk/pentrack/internal/rng"
)

// A spin in a static field precesses about it at the Larmor frequency
// omega = gamma*|B|. Starting the spin perpendicular to B and integrating
// through the brute-force Bloch branch should reproduce the textbook
// rotation within the tracker's tolerance. tTotal spans enough Larmor
// periods that the tolerance forces integrateBuffer's single StepDense
// call to converge on a step smaller than the full buffered span, so this
// also exercises the loop that advances through the rest of [t0, t1].
func TestLarmorPrecession(t *testing.T) {
	bz := 1e-3 // tesla
	omega := particle.GyromagneticRatio * bz
	tTotal := 1e-3

	n := 2000
	samples := make([]dynamo.Sample, n+1)
	for i := 0; i <= n; i++ {
		tk := tTotal * float64(i) / float64(n)
		samples[i] = dynamo.Sample{T: tk, Bx: dynamo.State{0, 0, bz}}
	}
	dense := dynamo.DenseOutput{Samples: samples}

	integrator := integrators.NewCashKarp(0.0)
	tr := NewTracker(integrator, 1e300, 100000, 1e-6) // BTarget huge: forces brute-force buffering

	p := &particle.Particle{Spin: [3]float64{1, 0, 0}, PSurvive: 1, SpinSign: 1}
	stream := rng.New(1, 0)

	tr.ProcessStep(dense, p, stream)
	tr.Flush(p, stream)

	wantSx := math.Cos(omega * tTotal)
	wantSy := -math.Sin(omega * tTotal)

	if math.Abs(p.Spin[0]-wantSx) > 1e-3 {
		t.Errorf("Spin.X = %g, want %g", p.Spin[0], wantSx)
	}
	if math.Abs(p.Spin[1]-wantSy) > 1e-3 {
		t.Errorf("Spin.Y = %g, want %g", p.Spin[1], wantSy)
	}
	// The spin starts perpendicular to B and precesses entirely in the
	// plane normal to it, so its projection onto B at the buffer's end is
	// always zero regardless of how far it has precessed: PSurvive should
	// land at exactly (0+1)/2 = 0.5, not drift toward 0 or 1.
	if math.Abs(p.PSurvive-0.5) > 1e-3 {
		t.Errorf("PSurvive = %g, want close to 0.5 (spin stays perpendicular to B)", p.PSurvive)
	}
}
