package geom

import (
	"errors"
	"sort"

	"github.com/DillonBusk/pentrack/internal/material"
	"github.com/DillonBusk/pentrack/internal/spatial"
)

// ErrPredicateFailure and ErrOtherGeometryError correspond to stop-codes -6
// and -7 respectively (§7): a degenerate segment/triangle predicate that an
// epsilon push could not resolve, and any other geometry-layer failure.
var (
	ErrPredicateFailure  = errors.New("geom: intersection predicate failed after epsilon push")
	ErrOtherGeometryError = errors.New("geom: geometry query failed")
)

// epsilonPush is the small along-segment nudge applied when an endpoint
// lands exactly on a triangle (§4.2's tie-break rule), and maxPushes bounds
// how many times it is retried before surfacing ErrPredicateFailure.
const (
	epsilonPush = 1e-9
	maxPushes   = 8
)

// Intersection is one ordered hit of first_intersections (§4.2's contract).
type Intersection struct {
	S        float64
	Triangle material.TriangleID
	Solid    material.SolidID
	Normal   spatial.Vec3
	Entering bool
}

// Geometry combines the BVH with the solid/material registry to answer
// both queries §4.2 names: first_intersections and which_solid_contains.
type Geometry struct {
	bvh      *BVH
	registry *material.Registry
	bounds   Box // outer bounding box; leaving it is stop-code -2
}

func NewGeometry(tris []Triangle, registry *material.Registry, bounds Box) *Geometry {
	return &Geometry{bvh: BuildBVH(tris), registry: registry, bounds: bounds}
}

// FirstIntersections returns every intersection of the segment p1->p2 with
// the scene, sorted by s, each epsilon-pushed away from exact-zero/-one
// ties along the segment direction. Deterministic for identical inputs.
func (g *Geometry) FirstIntersections(p1, p2 spatial.Vec3) ([]Intersection, error) {
	hits := g.bvh.Intersect(p1, p2)
	if len(hits) == 0 {
		return nil, nil
	}

	out := make([]Intersection, 0, len(hits))
	for _, h := range hits {
		s := h.S
		pushes := 0
		for (s < epsilonPush || s > 1-epsilonPush) && pushes < maxPushes {
			// Tie: the hit lies within epsilonPush of an endpoint. Nudge
			// s along the segment direction; the triangle is not re-tested.
			s += epsilonPush
			pushes++
		}
		if pushes >= maxPushes {
			return nil, ErrPredicateFailure
		}
		out = append(out, Intersection{
			S:        s,
			Triangle: h.Triangle.ID,
			Solid:    h.Triangle.Solid,
			Normal:   h.Triangle.Normal,
			Entering: h.Entering,
		})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].S < out[j].S })
	return out, nil
}

// Bounds returns the outer simulation bounding box, used by diagnostic
// grid/ray samplers that need a region to sweep without duplicating the
// geometry's own extent.
func (g *Geometry) Bounds() Box {
	return g.bounds
}

// InBounds reports whether x lies within the outer simulation bounding box
// (stop-code -2 when it does not, §7).
func (g *Geometry) InBounds(x spatial.Vec3) bool {
	for i := 0; i < 3; i++ {
		if x[i] < g.bounds.Min[i] || x[i] > g.bounds.Max[i] {
			return false
		}
	}
	return true
}

// rayCastDir is the fixed unit direction used by WhichSolidContains's
// parity test. It lies off the coordinate axes and diagonals so that rays
// from axis-aligned points do not run through the edges of axis-aligned
// meshes; a ray that does pass through an edge counts a hit on each
// triangle sharing it.
var rayCastDir = spatial.Vec3{0.48, 0.6, 0.64}

// WhichSolidContains returns the active (highest-priority, time-window-open)
// solid containing x at time t, by counting entry/exit crossings per solid
// along a ray from x to outside the bounding box and keeping solids with an
// odd crossing count (§4.2).
func (g *Geometry) WhichSolidContains(x spatial.Vec3, t float64) (material.Solid, bool, error) {
	far := x.Add(rayCastDir.Scale(2 * rayExtent(g.bounds)))

	hits, err := g.FirstIntersections(x, far)
	if err != nil {
		return material.Solid{}, false, err
	}

	parity := make(map[material.SolidID]int)
	for _, h := range hits {
		parity[h.Solid]++
	}

	var candidates []material.SolidID
	for id, count := range parity {
		if count%2 == 1 {
			candidates = append(candidates, id)
		}
	}

	solid, ok := g.registry.ResolvePriority(candidates, t)
	return solid, ok, nil
}

func rayExtent(b Box) float64 {
	extent := b.Max.Sub(b.Min)
	m := extent[0]
	if extent[1] > m {
		m = extent[1]
	}
	if extent[2] > m {
		m = extent[2]
	}
	if m <= 0 {
		return 1
	}
	return m
}
