// Package field implements the FieldManager of §4.1: a capability
// abstraction over field sources (tabulated grids, analytic bar currents)
// composed with time-dependent ramp scaling. All sources and the Manager
// itself are immutable after construction and safe for concurrent
// read-only use by independent particles (§5).
package field

import "github.com/DillonBusk/pentrack/internal/spatial"

// Source is the capability abstraction §9 calls for: any field source,
// regardless of origin (table, analytic bar, a future coil family),
// answers the same query. Generalizes the teacher's compute.Backend
// capability-interface shape (one interface, several concrete
// implementations selected/composed by a manager) from physics backends to
// field sources.
type Source interface {
	// Evaluate returns the field contribution at x (Cartesian) and lab
	// time t, unscaled by any ramp — the Manager applies ramp scaling
	// uniformly across all source kinds.
	Evaluate(x spatial.Vec3, t float64) (B spatial.Vec3, gradB spatial.Mat3, E spatial.Vec3, V float64)

	// Ramp returns the source's ramp profile, so sources sharing one
	// profile can share a single scale evaluation (§4.1).
	Ramp() *RampProfile
}
