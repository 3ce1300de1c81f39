package dynamo

import (
	"math"
)

// State is the flat ODE state vector the trajectory integrator advances:
// six components, position then velocity, in whatever frame the caller's
// System is defined in (PENTrack uses Cartesian internally; callers convert
// to/from cylindrical at the edges).
type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func (s State) Norm() float64 {
	sum := 0.0
	for _, v := range s {
		sum += v * v
	}
	return math.Sqrt(sum)
}

func (s State) Add(other State) State {
	result := make(State, len(s))
	for i := range s {
		if i < len(other) {
			result[i] = s[i] + other[i]
		} else {
			result[i] = s[i]
		}
	}
	return result
}

func (s State) Scale(factor float64) State {
	result := make(State, len(s))
	for i := range s {
		result[i] = s[i] * factor
	}
	return result
}

func (s State) Sub(other State) State {
	result := make(State, len(s))
	for i := range s {
		if i < len(other) {
			result[i] = s[i] - other[i]
		} else {
			result[i] = s[i]
		}
	}
	return result
}

// Control is unused by PENTrack's equations of motion (no feedback control
// in this domain) but kept on the System contract so the integrator package
// stays generic over dynamo.System the way the teacher's Integrator does;
// callers always pass a nil or empty Control.
type Control []float64

// System is an ODE right-hand side: dx/dt = Derive(x, u, t). particle.Kind
// dispatches to a different Derive per particle kind (neutron gravity +
// magnetic gradient force, proton/electron Lorentz force).
type System interface {
	Derive(x State, u Control, t float64) State
	StateDim() int
	ControlDim() int
}

// Hamiltonian is implemented by systems that can report a conserved total
// energy, used by the driver to track H_max drift per §3's invariants.
type Hamiltonian interface {
	Energy(x State) float64
}

// Integrator advances a state by one fixed step.
type Integrator interface {
	Step(dyn System, x State, u Control, t float64, dt float64) State
}

// AdaptiveIntegrator additionally reports the error-controlled next step
// size, independent of whether it produces dense output.
type AdaptiveIntegrator interface {
	Integrator
	StepAdaptive(dyn System, x State, u Control, t, dt, tol float64) (State, float64, error)
}

// DenseIntegrator is an AdaptiveIntegrator that also returns the
// dense-output table for the step it just accepted. This is the contract
// §4.3/§4.4/§4.5 depend on: the collision resolver rewinds into the table
// instead of re-invoking Derive, and the spin sub-integrator consumes the
// table's B(t) samples directly.
type DenseIntegrator interface {
	AdaptiveIntegrator
	StepDense(dyn System, x State, u Control, t, dt, tol float64, sample func(State, float64) (Bx, Ex State, V float64)) (StepResult, error)
}

// StepResult is what a DenseIntegrator returns for one attempted step:
// the accepted (or rejected) new state, the step actually taken, the next
// step size to try, and the dense-output table spanning [t, t+dtActual].
type StepResult struct {
	X        State
	DtActual float64
	DtNext   float64
	Dense    DenseOutput
	Accepted bool
}

// Metric accumulates a scalar diagnostic over a run. The driver does not
// use it: H_max and reflection counts are kept on particle.Particle.
type Metric interface {
	Name() string
	Observe(x State, u Control, t float64)
	Value() float64
	Reset()
}

// Observer is notified on every accepted step. The track.out writer
// implements driver.TrackObserver instead, not this interface.
type Observer interface {
	OnStep(x State, u Control, t float64)
}
