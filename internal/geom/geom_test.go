package geom

import (
	"testing"

	"github.com/DillonBusk/pentrack/internal/material"
	"github.com/DillonBusk/pentrack/internal/spatial"
)

func unitTriangleXY(solid material.SolidID) Triangle {
	return NewTriangle(
		spatial.Vec3{0, 0, 0},
		spatial.Vec3{1, 0, 0},
		spatial.Vec3{0, 1, 0},
		solid, 0,
	)
}

func TestTriangleIntersectSegmentHitsCenter(t *testing.T) {
	tri := unitTriangleXY(0)
	s, entering, hit := tri.IntersectSegment(spatial.Vec3{0.2, 0.2, -1}, spatial.Vec3{0.2, 0.2, 1})
	if !hit {
		t.Fatal("expected a hit through the triangle's interior")
	}
	if s < 0.49 || s > 0.51 {
		t.Errorf("s = %g, want close to 0.5 (segment centered on the plane)", s)
	}
	if entering {
		t.Error("expected entering=false for a segment crossing upward through a +z (outward) normal, i.e. leaving the solid")
	}
}

func TestTriangleIntersectSegmentMisses(t *testing.T) {
	tri := unitTriangleXY(0)
	_, _, hit := tri.IntersectSegment(spatial.Vec3{5, 5, -1}, spatial.Vec3{5, 5, 1})
	if hit {
		t.Error("expected no hit for a segment outside the triangle's footprint")
	}
}

func TestWhichSolidContainsBox(t *testing.T) {
	reg := material.NewRegistry()
	box := material.Material{Name: "shell", FermiReal: 100}
	reg.Add(material.Solid{ID: 1, Name: "box", Material: box, Priority: 1})

	tris := cubeTriangles(1)
	bounds := Box{Min: spatial.Vec3{-5, -5, -5}, Max: spatial.Vec3{5, 5, 5}}
	g := NewGeometry(tris, reg, bounds)

	solid, ok, err := g.WhichSolidContains(spatial.Vec3{0, 0, 0}, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok || solid.ID != 1 {
		t.Errorf("expected point at origin inside solid 1, got ok=%v solid=%+v", ok, solid)
	}

	_, ok, err = g.WhichSolidContains(spatial.Vec3{10, 10, 10}, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Error("expected point outside the cube to have no containing solid")
	}
}

// cubeTriangles builds the 12-triangle mesh of an axis-aligned cube of
// half-extent r centered on the origin, all tagged with the given solid ID.
func cubeTriangles(r float64) []Triangle {
	c := [8]spatial.Vec3{
		{-r, -r, -r}, {r, -r, -r}, {r, r, -r}, {-r, r, -r},
		{-r, -r, r}, {r, -r, r}, {r, r, r}, {-r, r, r},
	}
	faces := [6][4]int{
		{0, 1, 2, 3}, // bottom
		{4, 5, 6, 7}, // top
		{0, 1, 5, 4}, // front
		{1, 2, 6, 5}, // right
		{2, 3, 7, 6}, // back
		{3, 0, 4, 7}, // left
	}
	var tris []Triangle
	id := material.TriangleID(0)
	for _, f := range faces {
		tris = append(tris, NewTriangle(c[f[0]], c[f[1]], c[f[2]], 1, id))
		id++
		tris = append(tris, NewTriangle(c[f[0]], c[f[2]], c[f[3]], 1, id))
		id++
	}
	return tris
}
