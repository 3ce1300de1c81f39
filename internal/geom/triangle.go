// Package geom implements the triangulated-geometry query contract of §4.2:
// ordered segment/triangle intersections via a bounding-volume hierarchy,
// and point-in-solid containment via priority resolution.
package geom

import (
	"github.com/DillonBusk/pentrack/internal/material"
	"github.com/DillonBusk/pentrack/internal/spatial"
)

// Triangle is one facet of a solid's boundary mesh.
type Triangle struct {
	V0, V1, V2 spatial.Vec3
	Normal     spatial.Vec3 // outward-facing, precomputed at load time
	Solid      material.SolidID
	ID         material.TriangleID
}

// NewTriangle computes and stores the outward normal from the vertex
// winding order (right-hand rule on V1-V0, V2-V0).
func NewTriangle(v0, v1, v2 spatial.Vec3, solid material.SolidID, id material.TriangleID) Triangle {
	n := v1.Sub(v0).Cross(v2.Sub(v0)).Normalized()
	return Triangle{V0: v0, V1: v1, V2: v2, Normal: n, Solid: solid, ID: id}
}

// AABB returns the triangle's axis-aligned bounding box.
func (t Triangle) AABB() Box {
	b := Box{Min: t.V0, Max: t.V0}
	b = b.Extend(t.V1)
	b = b.Extend(t.V2)
	return b
}

// Centroid is used as the BVH split key.
func (t Triangle) Centroid() spatial.Vec3 {
	return t.V0.Add(t.V1).Add(t.V2).Scale(1.0 / 3.0)
}

const intersectEpsilon = 1e-12

// IntersectSegment performs a Möller-Trumbore test of the triangle against
// the segment p1->p2, returning the parametric distance s in [0,1] along
// the segment and whether the segment crosses from the outward-normal side
// to the back side (dot(dir, normal) < 0, i.e. "entering" the solid).
func (t Triangle) IntersectSegment(p1, p2 spatial.Vec3) (s float64, entering bool, hit bool) {
	dir := p2.Sub(p1)
	e1 := t.V1.Sub(t.V0)
	e2 := t.V2.Sub(t.V0)

	pvec := dir.Cross(e2)
	det := e1.Dot(pvec)
	if det > -intersectEpsilon && det < intersectEpsilon {
		return 0, false, false
	}
	invDet := 1.0 / det

	tvec := p1.Sub(t.V0)
	u := tvec.Dot(pvec) * invDet
	if u < -intersectEpsilon || u > 1+intersectEpsilon {
		return 0, false, false
	}

	qvec := tvec.Cross(e1)
	v := dir.Dot(qvec) * invDet
	if v < -intersectEpsilon || u+v > 1+intersectEpsilon {
		return 0, false, false
	}

	s = e2.Dot(qvec) * invDet
	if s < -intersectEpsilon || s > 1+intersectEpsilon {
		return 0, false, false
	}

	entering = dir.Dot(t.Normal) < 0
	return s, entering, true
}
