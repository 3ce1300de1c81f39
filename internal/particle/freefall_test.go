package particle

import (
	"math"
	"testing"

	"github.com/DillonBusk/pentrack/internal/dynamo"
	"github.com/DillonBusk/pentrack/internal/field"
	"github.com/DillonBusk/pentrack/internal/integrators"
)

// A neutron in zero field should fall under gravity alone: z(t) = z0 -
// 1/2 g t^2, vz(t) = -g t, with the transverse components untouched.
func TestNeutronFreefall(t *testing.T) {
	eq := &Equations{Kind: Neutron, Fields: field.NewManager(), SpinSign: 1}
	integrator := integrators.NewCashKarp(0.01)

	x := dynamo.State{0, 0, 10, 1, 0, 0}
	tTotal := 1.0
	steps := 50
	dt := tTotal / float64(steps)

	tt := 0.0
	for i := 0; i < steps && tt < tTotal; i++ {
		xNew, dtNext, err := integrator.StepAdaptive(eq, x, nil, tt, dt, eq.Kind.DefaultTolerance())
		if err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
		x = xNew
		tt += dt
		dt = dtNext
		if dt > tTotal-tt && tt < tTotal {
			dt = tTotal - tt
		}
	}

	wantZ := 10 - 0.5*GravAccel*tTotal*tTotal
	wantVz := -GravAccel * tTotal
	if math.Abs(x[2]-wantZ) > 1e-3 {
		t.Errorf("z = %g, want %g", x[2], wantZ)
	}
	if math.Abs(x[5]-wantVz) > 1e-3 {
		t.Errorf("vz = %g, want %g", x[5], wantVz)
	}
	if math.Abs(x[0]-1*tTotal) > 1e-6 {
		t.Errorf("x = %g, want %g (unaffected by gravity)", x[0], tTotal)
	}
}
