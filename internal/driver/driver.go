package driver

import (
	"errors"
	"math"

	"github.com/DillonBusk/pentrack/internal/collision"
	"github.com/DillonBusk/pentrack/internal/dynamo"
	"github.com/DillonBusk/pentrack/internal/field"
	"github.com/DillonBusk/pentrack/internal/geom"
	"github.com/DillonBusk/pentrack/internal/material"
	"github.com/DillonBusk/pentrack/internal/particle"
	"github.com/DillonBusk/pentrack/internal/rng"
	"github.com/DillonBusk/pentrack/internal/spatial"
	"github.com/DillonBusk/pentrack/internal/spin"
)

// TrackObserver receives one call per committed integrator step, the
// source for track.out (§6).
type TrackObserver interface {
	OnTrackStep(p *particle.Particle, dense dynamo.DenseOutput)
}

// ReflectObserver receives one call per surface interaction, the source
// for reflect.out (§6).
type ReflectObserver interface {
	OnReflect(p *particle.Particle, out collision.Outcome)
}

// BlochObserver receives the buffered Bloch segment samples, the source
// for BF.out (§6).
type BlochObserver interface {
	OnBlochSegment(p *particle.Particle, dense dynamo.DenseOutput)
}

// Driver executes the step/resolve/spin/terminate loop of §4.6 for one
// particle at a time. Field, geometry, and material collaborators are
// immutable and shared read-only across particles (§5); a Driver itself
// holds no per-particle state, so one Driver value can run many
// particles sequentially or be shared (read-only) across goroutines each
// running their own particle.
type Driver struct {
	Fields     *field.Manager
	Geometry   *geom.Geometry
	Registry   *material.Registry
	Integrator dynamo.DenseIntegrator
	Resolver   *collision.Resolver
	Config     Config

	Track  TrackObserver
	Reflect ReflectObserver
	Bloch  BlochObserver
}

// New builds a Driver over the given immutable world.
func New(fields *field.Manager, geometry *geom.Geometry, registry *material.Registry, integrator dynamo.DenseIntegrator, cfg Config) *Driver {
	return &Driver{
		Fields:     fields,
		Geometry:   geometry,
		Registry:   registry,
		Integrator: integrator,
		Resolver:   collision.NewResolver(geometry, registry),
		Config:     cfg,
	}
}

// stateDivergenceLimit bounds the velocity components a step's accepted
// state may reach before it is treated as numerically unstable rather than
// a real (if extreme) trajectory; set well above any speed the particle
// kinds in this domain can physically reach.
const stateDivergenceLimit = 2 * particle.SpeedOfLight

// validateState checks an accepted step's state for the failure modes a
// quality-controlled integrator can't itself detect: NaN/Inf components,
// or a velocity that has diverged past anything physically reachable.
func validateState(x dynamo.State, t float64) error {
	if !x.IsValid() {
		return &dynamo.SimulationError{Time: t, State: x, Wrapped: dynamo.ErrInvalidState}
	}
	vel := spatial.Vec3{x[3], x[4], x[5]}
	if vel.Norm() > stateDivergenceLimit {
		return &dynamo.SimulationError{Time: t, State: x, Wrapped: dynamo.ErrUnstable}
	}
	return nil
}

// Run drives p from its current state to termination, setting p.Stop and
// the diagnostic fields §6's end.out row needs.
func (d *Driver) Run(p *particle.Particle, stream *rng.Stream) {
	if p.Stop != particle.StopUncategorized {
		// Already terminated before tracking (the source marks a placement
		// failure -5); keep that stop-code for end.out.
		return
	}
	eq := &particle.Equations{Kind: p.Kind, Fields: d.Fields, SpinSign: p.SpinSign}
	tracker := spin.NewTracker(d.Integrator, d.Config.BTarget, d.Config.SpinBufferCap, d.Config.SpinTolerance)
	tracker.FlipOnSample = d.Config.FlipOnSample

	tol := d.Config.toleranceFor(p.Kind)
	h := d.Config.initialStep(p.Kind)

	decayTime := math.Inf(1)
	if p.Kind == particle.Neutron {
		decayTime = p.T + particle.SampleLifetime(stream.Float64())
	}

	sampler := func(y dynamo.State, t float64) (dynamo.State, dynamo.State, float64) {
		pos := spatial.Vec3{y[0], y[1], y[2]}
		eq.SpinSign = p.SpinSign
		B, _ := d.Fields.BAt(pos, t)
		E, V := d.Fields.EAt(pos, t)
		return dynamo.State{B[0], B[1], B[2]}, dynamo.State{E[0], E[1], E[2]}, V
	}

	for {
		if p.T >= d.Config.SimTime {
			p.Stop = particle.StopOutOfTime
			tracker.Flush(p, stream)
			return
		}
		if !d.Geometry.InBounds(p.Pos) {
			p.Stop = particle.StopLeftBoundingBox
			tracker.Flush(p, stream)
			return
		}

		eq.SpinSign = p.SpinSign
		x := p.ToState()
		dt := h
		if remaining := d.Config.SimTime - p.T; dt > remaining {
			dt = remaining
		}

		result, err := d.Integrator.StepDense(eq, x, nil, p.T, dt, tol, sampler)
		if err == nil {
			err = validateState(result.X, p.T)
		}
		if err != nil {
			// §7 has no stop-code dedicated to "invalid state" or
			// "unstable" individually — every integrator failure
			// (SimulationError wrapping ErrStepTooSmall, ErrInvalidState,
			// or ErrUnstable) folds into -3, the generic integration error.
			p.Stop = particle.StopStepsizeFloor
			tracker.Flush(p, stream)
			return
		}
		h = result.DtNext
		if d.Config.MaxDt > 0 && h > d.Config.MaxDt {
			h = d.Config.MaxDt
		}

		out, rerr := d.Resolver.Resolve(result.Dense, p.CurrentSolid, p.Kind, stream)
		if rerr != nil {
			simErr := &dynamo.SimulationError{Time: p.T, State: x, Wrapped: rerr}
			if errors.Is(simErr, geom.ErrPredicateFailure) {
				p.Stop = particle.StopPredicateFailure
			} else {
				p.Stop = particle.StopOtherGeometryError
			}
			tracker.Flush(p, stream)
			return
		}

		if out.Collided {
			prevPos := p.Pos
			p.TrajLen += out.Pos.Sub(prevPos).Norm()
			p.T = out.TStar
			p.Pos = out.Pos
			p.Vel = out.Vel

			if d.Reflect != nil {
				d.Reflect.OnReflect(p, out)
			}

			if out.Absorbed {
				p.Stop = out.Stop
				tracker.Flush(p, stream)
				return
			}

			p.CurrentSolid = out.EnteringSolid
			if out.Reflected {
				p.NumReflections++
			}
			// Rewinding discipline (§4.4): discard the rest of the step
			// and start fresh from t*, so no spin processing happens for
			// a step that collided.
			continue
		}

		prevPos := p.Pos
		p.ApplyState(result.X)
		p.TrajLen += p.Pos.Sub(prevPos).Norm()
		p.T += result.DtActual

		if d.Track != nil {
			d.Track.OnTrackStep(p, result.Dense)
		}

		if p.Kind == particle.Neutron {
			if e := eq.Energy(result.X); e > p.HMax {
				p.HMax = e
			}
			tracker.ProcessStep(result.Dense, p, stream)
			if d.Bloch != nil {
				d.Bloch.OnBlochSegment(p, result.Dense)
			}
			if p.T >= decayTime {
				p.Stop = particle.StopDecayed
				tracker.Flush(p, stream)
				return
			}
		}
	}
}
