package particle

import (
	"github.com/DillonBusk/pentrack/internal/dynamo"
	"github.com/DillonBusk/pentrack/internal/material"
	"github.com/DillonBusk/pentrack/internal/spatial"
)

// Particle is the per-particle record the driver owns end to end (§3, §6's
// end.out row). The ODE state (position, velocity) is held in Cartesian
// form and converted to/from dynamo.State at the integrator boundary;
// spin and bookkeeping fields live outside the 6-vector since they are not
// co-integrated by the same Cash-Karp driver (§3).
type Particle struct {
	Index int
	Kind  Kind
	Seed  int64

	Pos spatial.Vec3
	Vel spatial.Vec3
	T   float64

	// Spin is the unit-magnitude spin expectation vector in the lab frame
	// (neutrons only); SpinSign is +1 for a low-field seeker, -1 for a
	// high-field seeker, and determines the sign of the magnetic gradient
	// force in Equations.Derive (§4.3).
	Spin     spatial.Vec3
	SpinSign float64

	// PSurvive is the accumulated non-flip probability the spin
	// sub-integrator updates after each Bloch integration segment (§4.5).
	PSurvive float64

	CurrentSolid material.SolidID

	HMax           float64
	TrajLen        float64
	NumReflections int

	Stop StopCode

	T0 float64 // creation time, for simtime bookkeeping

	InitialPos spatial.Vec3
	InitialVel spatial.Vec3
}

// ToState packs position and velocity into the 6-element dynamo.State the
// integrator advances.
func (p *Particle) ToState() dynamo.State {
	return dynamo.State{p.Pos[0], p.Pos[1], p.Pos[2], p.Vel[0], p.Vel[1], p.Vel[2]}
}

// ApplyState unpacks an integrator result back onto the particle.
func (p *Particle) ApplyState(x dynamo.State) {
	p.Pos = spatial.Vec3{x[0], x[1], x[2]}
	p.Vel = spatial.Vec3{x[3], x[4], x[5]}
}
