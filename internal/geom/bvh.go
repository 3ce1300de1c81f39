package geom

import (
	"sort"

	"github.com/DillonBusk/pentrack/internal/spatial"
)

// Box is an axis-aligned bounding box.
type Box struct {
	Min, Max spatial.Vec3
}

func (b Box) Extend(p spatial.Vec3) Box {
	for i := 0; i < 3; i++ {
		if p[i] < b.Min[i] {
			b.Min[i] = p[i]
		}
		if p[i] > b.Max[i] {
			b.Max[i] = p[i]
		}
	}
	return b
}

func (b Box) Union(o Box) Box {
	return b.Extend(o.Min).Extend(o.Max)
}

// IntersectSegment reports whether the segment p1->p2 passes through the
// box, via the slab method, with a small epsilon to tolerate endpoints
// lying exactly on a face.
func (b Box) IntersectSegment(p1, p2 spatial.Vec3) bool {
	dir := p2.Sub(p1)
	tmin, tmax := 0.0, 1.0

	for i := 0; i < 3; i++ {
		if dir[i] == 0 {
			if p1[i] < b.Min[i]-1e-9 || p1[i] > b.Max[i]+1e-9 {
				return false
			}
			continue
		}
		inv := 1.0 / dir[i]
		t1 := (b.Min[i] - p1[i]) * inv
		t2 := (b.Max[i] - p1[i]) * inv
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		if t1 > tmin {
			tmin = t1
		}
		if t2 < tmax {
			tmax = t2
		}
		if tmin > tmax {
			return false
		}
	}
	return true
}

// bvhNode is either a leaf (Triangles non-empty) or an interior node with
// two children, split on the longest axis of its bounding box's centroids.
type bvhNode struct {
	Bounds      Box
	Left, Right *bvhNode
	Triangles   []Triangle
}

const bvhLeafSize = 4

// BVH is the bounding-volume hierarchy over every triangle of every solid
// in the scene (§4.2). Construction is offline; Intersect queries are
// read-only and safe for concurrent use by independent particles (§5).
type BVH struct {
	root *bvhNode
}

// BuildBVH constructs a BVH over tris. The slice is not retained by
// reference after construction (each node copies the triangles it owns).
func BuildBVH(tris []Triangle) *BVH {
	cp := make([]Triangle, len(tris))
	copy(cp, tris)
	return &BVH{root: buildNode(cp)}
}

func buildNode(tris []Triangle) *bvhNode {
	if len(tris) == 0 {
		return &bvhNode{}
	}

	bounds := tris[0].AABB()
	for _, t := range tris[1:] {
		bounds = bounds.Union(t.AABB())
	}

	if len(tris) <= bvhLeafSize {
		return &bvhNode{Bounds: bounds, Triangles: tris}
	}

	extent := bounds.Max.Sub(bounds.Min)
	axis := 0
	if extent[1] > extent[axis] {
		axis = 1
	}
	if extent[2] > extent[axis] {
		axis = 2
	}

	sort.Slice(tris, func(i, j int) bool {
		return tris[i].Centroid()[axis] < tris[j].Centroid()[axis]
	})

	mid := len(tris) / 2
	return &bvhNode{
		Bounds: bounds,
		Left:   buildNode(tris[:mid]),
		Right:  buildNode(tris[mid:]),
	}
}

// Hit is one raw segment/triangle intersection, before
// Geometry.FirstIntersections (geometry.go) turns it into an Intersection.
type Hit struct {
	S        float64
	Triangle Triangle
	Entering bool
}

// Intersect returns every triangle intersection of the segment p1->p2,
// unsorted (Geometry.FirstIntersections sorts and interprets them).
func (bvh *BVH) Intersect(p1, p2 spatial.Vec3) []Hit {
	var hits []Hit
	bvh.root.collect(p1, p2, &hits)
	return hits
}

func (n *bvhNode) collect(p1, p2 spatial.Vec3, hits *[]Hit) {
	if n == nil {
		return
	}
	if len(n.Triangles) == 0 && n.Left == nil && n.Right == nil {
		return // empty tree
	}
	if !n.Bounds.IntersectSegment(p1, p2) {
		return
	}
	if n.Triangles != nil {
		for _, t := range n.Triangles {
			s, entering, ok := t.IntersectSegment(p1, p2)
			if ok {
				*hits = append(*hits, Hit{S: s, Triangle: t, Entering: entering})
			}
		}
		return
	}
	n.Left.collect(p1, p2, hits)
	n.Right.collect(p1, p2, hits)
}
