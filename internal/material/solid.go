package material

// SolidID identifies a solid within a Registry; TriangleID identifies one
// triangle of a solid's mesh (owned by the geom package, but referenced
// here so priority queries don't need to import geom).
type SolidID int
type TriangleID int

// TimeWindow is the [t_on, t_off] interval during which a solid is active
// (§3); a zero-value TimeWindow (On == Off == 0) means "always active".
type TimeWindow struct {
	On, Off float64
}

// Open reports whether t falls within the window, treating a zero-value
// window as always-open.
func (w TimeWindow) Open(t float64) bool {
	if w.On == 0 && w.Off == 0 {
		return true
	}
	return t >= w.On && t < w.Off
}

// Solid is a triangulated surface plus its owning material, resolution
// priority, and optional active time window (§3). The triangle mesh itself
// lives in the geom package's Triangles and BVH; Solid only carries the identity and material data
// the collision resolver needs once a geometric hit has already been found.
type Solid struct {
	ID       SolidID
	Name     string
	Material Material
	Priority int
	Window   TimeWindow
}

// Registry maps solid IDs to their Solid records and resolves which solid
// is "currently inside" at a point given a set of candidate solids a
// containment test already narrowed down (§4.2's priority rule).
type Registry struct {
	solids map[SolidID]Solid
}

func NewRegistry() *Registry {
	return &Registry{solids: make(map[SolidID]Solid)}
}

func (r *Registry) Add(s Solid) {
	r.solids[s.ID] = s
}

func (r *Registry) Get(id SolidID) (Solid, bool) {
	s, ok := r.solids[id]
	return s, ok
}

// ResolvePriority returns, among solids whose containment test passed and
// whose time window is open at t, the one with the highest Priority — the
// "currently inside" solid per §3/§4.2. ok is false if candidates is empty
// or none have an open window.
func (r *Registry) ResolvePriority(candidates []SolidID, t float64) (Solid, bool) {
	var best Solid
	found := false
	for _, id := range candidates {
		s, ok := r.solids[id]
		if !ok || !s.Window.Open(t) {
			continue
		}
		if !found || s.Priority > best.Priority {
			best = s
			found = true
		}
	}
	return best, found
}
