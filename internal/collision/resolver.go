// Package collision implements the collision resolver of §4.4: per-step
// scan against the geometry, classification of the earliest intersection,
// and the kind-dispatched surface response (neutron reflect/transmit/
// absorb state machine, proton/electron absorb-on-contact).
package collision

import (
	"github.com/DillonBusk/pentrack/internal/dynamo"
	"github.com/DillonBusk/pentrack/internal/geom"
	"github.com/DillonBusk/pentrack/internal/material"
	"github.com/DillonBusk/pentrack/internal/particle"
	"github.com/DillonBusk/pentrack/internal/rng"
	"github.com/DillonBusk/pentrack/internal/spatial"
)

// Resolver performs the scan/classify/rewind loop of §4.4 against one
// immutable Geometry and material Registry, shared read-only across
// particles.
type Resolver struct {
	Geometry *geom.Geometry
	Registry *material.Registry
}

func NewResolver(g *geom.Geometry, reg *material.Registry) *Resolver {
	return &Resolver{Geometry: g, Registry: reg}
}

// Outcome is what Resolve reports back to the driver: whether a collision
// occurred within the step, and if so, the rewound time/state, the
// surface response that was applied, and the terminal stop-code if the
// particle was absorbed.
type Outcome struct {
	Collided bool
	TStar    float64
	Pos      spatial.Vec3
	Vel      spatial.Vec3

	Absorbed bool
	Stop     particle.StopCode

	Reflected bool
	Diffuse   bool

	EnteringSolid material.SolidID
	LeavingSolid  material.SolidID
	Normal        spatial.Vec3
}

// Resolve tests the straight segment from the step's first to its last
// dense-output sample for the earliest geometry intersection, rewinds to
// it via dense-output interpolation (never
// re-invoking Derive, per §4.3's tie-break contract), and dispatches the
// kind-specific surface response. Collided is false if the step commits
// without touching the geometry.
func (r *Resolver) Resolve(dense dynamo.DenseOutput, leaving material.SolidID, kind particle.Kind, stream *rng.Stream) (Outcome, error) {
	if len(dense.Samples) < 2 {
		return Outcome{}, nil
	}
	p1 := posFromState(dense.Samples[0].Y)
	p2 := posFromState(dense.Samples[len(dense.Samples)-1].Y)

	hits, err := r.Geometry.FirstIntersections(p1, p2)
	if err != nil {
		return Outcome{}, err
	}
	if len(hits) == 0 {
		return Outcome{Collided: false}, nil
	}

	hit := hits[0]
	tA, tB := dense.T0(), dense.T1()
	tStar := tA + hit.S*(tB-tA)
	xStar := dense.At(tStar)
	pos := posFromState(xStar)
	vel := velFromState(xStar)

	var enteringID, leavingID material.SolidID
	if hit.Entering {
		enteringID, leavingID = hit.Solid, leaving
	} else {
		enteringID, leavingID = leaving, hit.Solid
	}
	enterSolid, _ := r.Registry.Get(enteringID)
	leaveSolid, _ := r.Registry.Get(leavingID)

	out := Outcome{
		Collided:      true,
		TStar:         tStar,
		Pos:           pos,
		EnteringSolid: enteringID,
		LeavingSolid:  leavingID,
		Normal:        hit.Normal,
	}

	switch kind {
	case particle.Neutron:
		respondNeutron(&out, vel, enterSolid.Material, leaveSolid.Material, kind, stream)
	default:
		out.Vel = vel
		if AbsorbResponse(enterSolid.Material) {
			out.Absorbed = true
			out.Stop = particle.StopAbsorbedSurface
		}
	}

	return out, nil
}

func posFromState(x dynamo.State) spatial.Vec3 { return spatial.Vec3{x[0], x[1], x[2]} }
func velFromState(x dynamo.State) spatial.Vec3 { return spatial.Vec3{x[3], x[4], x[5]} }
