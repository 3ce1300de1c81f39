package particle

import (
	"math"

	"github.com/DillonBusk/pentrack/internal/dynamo"
	"github.com/DillonBusk/pentrack/internal/field"
	"github.com/DillonBusk/pentrack/internal/spatial"
)

// rEpsilonField mirrors field.rAxisEpsilon for the particle package's own
// on-axis special case; kept as a separate small constant rather than an
// exported one from field, since the two packages special-case the
// singularity for different quantities (field zeroes the raw field
// components, this one zeroes the radial component of the *gradient-of-
// magnitude* force derived from them) — the Open Question in §9 asks for
// this to be documented at each point of use.
const rEpsilonField = 1e-6

// Equations implements dynamo.System, dispatching the right-hand side of
// the 6-dimensional ODE on the particle kind (§4.3, §9's design note:
// "a small dispatch ... not a class hierarchy").
type Equations struct {
	Kind     Kind
	Fields   *field.Manager
	SpinSign float64 // only consulted when Kind == Neutron
}

func (e *Equations) StateDim() int   { return 6 }
func (e *Equations) ControlDim() int { return 0 }

// Derive computes dy/dt for y = [x,y,z,vx,vy,vz].
func (e *Equations) Derive(x dynamo.State, _ dynamo.Control, t float64) dynamo.State {
	pos := spatial.Vec3{x[0], x[1], x[2]}
	vel := spatial.Vec3{x[3], x[4], x[5]}

	var acc spatial.Vec3
	switch e.Kind {
	case Neutron:
		acc = e.neutronAccel(pos, t)
	case Proton:
		acc = e.lorentzAccel(pos, vel, t, ProtonCharge, ProtonMass, 1)
	case Electron:
		gamma := lorentzGamma(vel.Norm())
		acc = e.lorentzAccel(pos, vel, t, ElectronCharge, ElectronMass, gamma)
	}

	return dynamo.State{vel[0], vel[1], vel[2], acc[0], acc[1], acc[2]}
}

// neutronAccel implements §4.3's neutron branch:
//
//	d²r/dt² = (μ_n/m)·∇|B| − g·ẑ
//
// with the magnetic term's sign set by the particle's spin state.
func (e *Equations) neutronAccel(pos spatial.Vec3, t float64) spatial.Vec3 {
	B, gradB := e.Fields.BAt(pos, t)
	bMag := B.Norm()

	var gradBMag spatial.Vec3
	if bMag > 1e-300 {
		for j := 0; j < 3; j++ {
			var sum float64
			for i := 0; i < 3; i++ {
				sum += gradB[i][j] * B[i]
			}
			gradBMag[j] = sum / bMag
		}
	}

	// On-axis limit form (§9's Open Question): zero the radial component
	// of the gradient force by symmetry rather than dividing by a
	// near-zero r; the axial component is unaffected.
	r, phi, _ := spatial.CartToCyl(pos)
	if r < rEpsilonField {
		rHat := spatial.Vec3{math.Cos(phi), math.Sin(phi), 0}
		gradBMag = gradBMag.Sub(rHat.Scale(gradBMag.Dot(rHat)))
	}

	magAccel := gradBMag.Scale(e.SpinSign * MuN / NeutronMass)
	gravity := spatial.Vec3{0, 0, -GravAccel}
	return magAccel.Add(gravity)
}

// lorentzAccel implements §4.3's proton/electron branch: q/m·(E + v×B),
// with gamma the relativistic factor (1 for the non-relativistic proton
// branch kept per the reference implementation).
func (e *Equations) lorentzAccel(pos, vel spatial.Vec3, t, charge, mass, gamma float64) spatial.Vec3 {
	B, _ := e.Fields.BAt(pos, t)
	E, _ := e.Fields.EAt(pos, t)
	force := E.Add(vel.Cross(B))
	return force.Scale(charge / (mass * gamma))
}

// lorentzGamma returns the relativistic Lorentz factor for speed v.
func lorentzGamma(v float64) float64 {
	beta := v / SpeedOfLight
	arg := 1 - beta*beta
	if arg <= 0 {
		return math.MaxFloat64
	}
	return 1 / math.Sqrt(arg)
}

// Energy implements dynamo.Hamiltonian (§3: total energy H the driver
// tracks H_max drift of). For the neutron, H = ½mv² + mgz − μ·B; for
// proton/electron, kinetic energy plus the electrostatic potential energy.
// dynamo.Hamiltonian carries no time argument, so this samples the field
// at t=0 — exact only while the ramp is in its flat "full" phase, which is
// where §3's energy-drift invariant is actually checked.
func (e *Equations) Energy(x dynamo.State) float64 {
	pos := spatial.Vec3{x[0], x[1], x[2]}
	vel := spatial.Vec3{x[3], x[4], x[5]}
	kinetic := 0.5 * e.Kind.Mass() * vel.Dot(vel)

	switch e.Kind {
	case Neutron:
		B, _ := e.Fields.BAt(pos, 0)
		return kinetic + NeutronMass*GravAccel*pos[2] - e.SpinSign*MuN*B.Norm()
	default:
		_, v := e.Fields.EAt(pos, 0)
		return kinetic + e.Kind.Charge()*v
	}
}
