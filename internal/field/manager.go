package field

import "github.com/DillonBusk/pentrack/internal/spatial"

// Manager composes a set of Sources into the single B_at/E_at contract the
// rest of the core calls (§4.1). Queries are independent and read-only, so
// a Manager is safe to share across the per-particle goroutines an Ensemble
// spawns (§5).
type Manager struct {
	sources []Source
}

// NewManager builds a Manager over the given sources. The slice is not
// retained beyond construction in a way callers could mutate afterward.
func NewManager(sources ...Source) *Manager {
	m := &Manager{sources: make([]Source, len(sources))}
	copy(m.sources, sources)
	return m
}

// BAt returns the superposed magnetic field and its Cartesian gradient at
// (x, t), each source contribution scaled by its own ramp. Sources sharing
// one *RampProfile pointer evaluate that profile's Scale once per query
// (§4.1), since Scale is a trig-table lookup plus a handful of flops and
// sources are frequently grouped under a single coil-set ramp.
func (m *Manager) BAt(x spatial.Vec3, t float64) (B spatial.Vec3, gradB spatial.Mat3) {
	scaleCache := map[*RampProfile]float64{}
	for _, src := range m.sources {
		scale := cachedScale(scaleCache, src.Ramp(), t)
		if scale == 0 {
			continue
		}
		b, g, _, _ := src.Evaluate(x, t)
		B = B.Add(b.Scale(scale))
		gradB = gradB.Add(g.Scale(scale))
	}
	return B, gradB
}

// EAt returns the superposed electric field and electrostatic potential at
// (x, t).
func (m *Manager) EAt(x spatial.Vec3, t float64) (E spatial.Vec3, V float64) {
	scaleCache := map[*RampProfile]float64{}
	for _, src := range m.sources {
		scale := cachedScale(scaleCache, src.Ramp(), t)
		if scale == 0 {
			continue
		}
		_, _, e, v := src.Evaluate(x, t)
		E = E.Add(e.Scale(scale))
		V += v * scale
	}
	return E, V
}

// Evaluate satisfies Source itself, so a Manager can be nested inside
// another Manager (grouping sub-assemblies under one shared ramp, for
// example a coil set that is gated together but made of several BarSources
// with individually-zero ramps of their own). Returns the already fully
// scaled sum, so the outer Manager must treat a nested Manager as always-on
// (see Ramp below).
func (m *Manager) Evaluate(x spatial.Vec3, t float64) (B spatial.Vec3, gradB spatial.Mat3, E spatial.Vec3, V float64) {
	scaleCache := map[*RampProfile]float64{}
	for _, src := range m.sources {
		scale := cachedScale(scaleCache, src.Ramp(), t)
		if scale == 0 {
			continue
		}
		b, g, e, v := src.Evaluate(x, t)
		B = B.Add(b.Scale(scale))
		gradB = gradB.Add(g.Scale(scale))
		E = E.Add(e.Scale(scale))
		V += v * scale
	}
	return B, gradB, E, V
}

func cachedScale(cache map[*RampProfile]float64, rp *RampProfile, t float64) float64 {
	if s, ok := cache[rp]; ok {
		return s
	}
	s := rp.Scale(t)
	cache[rp] = s
	return s
}

// Ramp returns a profile that is always fully on; a Manager's own
// contribution is already the sum of its sources' individually-scaled
// fields, so no further scaling applies when a Manager is nested as a
// Source.
func (m *Manager) Ramp() *RampProfile { return Static() }
