// Package spin implements the neutron spin sub-integrator of §4.5: the
// adiabatic/brute-force state machine that only integrates the Bloch
// equation in the narrow regions of configuration space where
// depolarization is plausible.
package spin

import (
	"github.com/DillonBusk/pentrack/internal/dynamo"
	"github.com/DillonBusk/pentrack/internal/spatial"
)

// blochSystem implements dynamo.System for dS/dt = gamma*(S x B(t)), with
// B(t) supplied by linear interpolation between the step's buffered dense
// samples (§4.5: "B(t) is obtained by linear interpolation between the
// buffered samples in Cartesian components").
type blochSystem struct {
	gamma float64
	field func(t float64) spatial.Vec3
}

func (b *blochSystem) StateDim() int   { return 3 }
func (b *blochSystem) ControlDim() int { return 0 }

func (b *blochSystem) Derive(x dynamo.State, _ dynamo.Control, t float64) dynamo.State {
	s := spatial.Vec3{x[0], x[1], x[2]}
	bField := b.field(t)
	ds := s.Cross(bField).Scale(b.gamma)
	return dynamo.State{ds[0], ds[1], ds[2]}
}

// fieldFunc adapts a DenseOutput's linear-interpolation FieldAt into the
// spatial.Vec3-returning closure blochSystem needs.
func fieldFunc(d dynamo.DenseOutput) func(t float64) spatial.Vec3 {
	return func(t float64) spatial.Vec3 {
		b := d.FieldAt(t)
		if len(b) < 3 {
			return spatial.Vec3{}
		}
		return spatial.Vec3{b[0], b[1], b[2]}
	}
}
