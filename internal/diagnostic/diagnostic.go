// Package diagnostic implements the grid-sampling dumps config.SimType
// selects instead of running a particle ensemble (§6): field sampling on a
// cylindrical grid, a field cut through an arbitrary plane, a geometry
// collision stress-test, and two micro-roughness reflection-probability
// tables. Each writes one space-separated table to outpath and returns,
// without constructing any particles.
package diagnostic

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/DillonBusk/pentrack/internal/field"
	"github.com/DillonBusk/pentrack/internal/geom"
	"github.com/DillonBusk/pentrack/internal/material"
	"github.com/DillonBusk/pentrack/internal/rng"
	"github.com/DillonBusk/pentrack/internal/spatial"
)

func fv(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }

func openTable(outpath, name string, header []string) (*os.File, *csv.Writer, error) {
	f, err := os.Create(filepath.Join(outpath, name))
	if err != nil {
		return nil, nil, err
	}
	w := csv.NewWriter(f)
	w.Comma = ' '
	if err := w.Write(header); err != nil {
		f.Close()
		return nil, nil, err
	}
	return f, w, nil
}

func closeTable(f *os.File, w *csv.Writer) error {
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// PrintBField samples |B| and its Cartesian components on the cylindrical
// grid r in [0.12, 0.5] m, z in [0, 1.2] m step 0.1, phi=0, t=500 s, the
// same grid the original BF_ONLY dump used to characterize a storage-ring
// B field's radial/axial falloff.
func PrintBField(outpath string, mgr *field.Manager) error {
	f, w, err := openTable(outpath, "BF.out", []string{"r", "phi", "z", "Bx", "By", "Bz", "0", "0", "Babs"})
	if err != nil {
		return err
	}

	const rmin, rmax, zmin, zmax, dr, dz = 0.12, 0.5, 0.0, 1.2, 0.1, 0.1
	for r := rmin; r <= rmax+1e-12; r += dr {
		for z := zmin; z <= zmax+1e-12; z += dz {
			pos := spatial.CylToCart(r, 0, z)
			B, _ := mgr.BAt(pos, 500)
			row := []string{fv(r), fv(0), fv(z), fv(B[0]), fv(B[1]), fv(B[2]), fv(0), fv(0), fv(B.Norm())}
			if err := w.Write(row); err != nil {
				f.Close()
				return err
			}
		}
	}
	return closeTable(f, w)
}

// PrintBFieldCut samples B, its Jacobian, E, and V on a parallelogram plane
// spanned by p1->p2 and p1->p3, n1 steps in the u direction and n2 in v,
// mirroring BF_CUT's plane-point/sample-count configuration. This port has
// no BCutPlane config key, so the plane defaults to geometry's own bounding
// box floor (z = bounds.Min.Z) rather than reading one.
func PrintBFieldCut(outpath string, mgr *field.Manager, p1, p2, p3 spatial.Vec3, n1, n2 int) error {
	f, w, err := openTable(outpath, "BFCut.out", []string{
		"x", "y", "z", "Bx", "dBxdx", "dBxdy", "dBxdz",
		"By", "dBydx", "dBydy", "dBydz", "Bz", "dBzdx", "dBzdy", "dBzdz",
		"Ex", "Ey", "Ez", "V",
	})
	if err != nil {
		return err
	}

	u := p2.Sub(p1)
	v := p3.Sub(p1)
	for i := 0; i < n1; i++ {
		for j := 0; j < n2; j++ {
			pp := p1.Add(u.Scale(float64(i) / float64(n1))).Add(v.Scale(float64(j) / float64(n2)))
			B, gradB := mgr.BAt(pp, 0)
			E, V := mgr.EAt(pp, 0)
			row := []string{
				fv(pp[0]), fv(pp[1]), fv(pp[2]),
				fv(B[0]), fv(gradB[0][0]), fv(gradB[0][1]), fv(gradB[0][2]),
				fv(B[1]), fv(gradB[1][0]), fv(gradB[1][1]), fv(gradB[1][2]),
				fv(B[2]), fv(gradB[2][0]), fv(gradB[2][1]), fv(gradB[2][2]),
				fv(E[0]), fv(E[1]), fv(E[2]), fv(V),
			}
			if err := w.Write(row); err != nil {
				f.Close()
				return err
			}
		}
	}
	return closeTable(f, w)
}

// DefaultCutPlane builds a plane cut across the floor of geometry's
// bounding box, used when no explicit plane is configured.
func DefaultCutPlane(g *geom.Geometry) (p1, p2, p3 spatial.Vec3) {
	b := g.Bounds()
	z := b.Min[2]
	p1 = spatial.Vec3{b.Min[0], b.Min[1], z}
	p2 = spatial.Vec3{b.Max[0], b.Min[1], z}
	p3 = spatial.Vec3{b.Min[0], b.Max[1], z}
	return p1, p2, p3
}

// PrintGeometry fires count random unit-length line segments from within
// geometry's bounding box in random directions and records every surface
// intersection point with the struck solid's ID, the same collision
// stress-test the original GEOMETRY mode ran to visualize a mesh.
func PrintGeometry(outpath string, g *geom.Geometry, stream *rng.Stream) error {
	f, w, err := openTable(outpath, "geometry.out", []string{"x", "y", "z", "ID"})
	if err != nil {
		return err
	}

	const count = 100000
	const rayLength = 1.0
	b := g.Bounds()

	for i := 0; i < count; i++ {
		p1 := spatial.Vec3{
			b.Min[0] + stream.Float64()*(b.Max[0]-b.Min[0]),
			b.Min[1] + stream.Float64()*(b.Max[1]-b.Min[1]),
			b.Min[2] + stream.Float64()*(b.Max[2]-b.Min[2]),
		}
		theta := stream.Float64() * math.Pi
		phi := stream.Float64() * 2 * math.Pi
		dir := spatial.Vec3{
			math.Sin(theta) * math.Cos(phi),
			math.Sin(theta) * math.Sin(phi),
			math.Cos(theta),
		}
		p2 := p1.Add(dir.Scale(rayLength))

		hits, err := g.FirstIntersections(p1, p2)
		if err != nil {
			continue
		}
		for _, h := range hits {
			pt := p1.Add(p2.Sub(p1).Scale(h.S))
			row := []string{fv(pt[0]), fv(pt[1]), fv(pt[2]), strconv.Itoa(int(h.Solid))}
			if err := w.Write(row); err != nil {
				f.Close()
				return err
			}
		}
	}
	return closeTable(f, w)
}

// representativeMaterial picks a deterministic, non-vacuum material from
// the loaded table: the alphabetically first name other than "vacuum".
// The two MR diagnostics need one reflecting surface to sample, and §6
// gives no way to name it, so this port sorts and skips vacuum rather than
// picking at random.
func representativeMaterial(materials map[string]material.Material) (material.Material, error) {
	names := make([]string, 0, len(materials))
	for name := range materials {
		if name == "vacuum" {
			continue
		}
		names = append(names, name)
	}
	if len(names) == 0 {
		return material.Material{}, fmt.Errorf("diagnostic: no non-vacuum material loaded to sample")
	}
	sort.Strings(names)
	return materials[names[0]], nil
}

// PrintMROutAngle tabulates a material's reflection probability over the
// full outgoing solid angle for one incident direction, the same shape as
// the original MR_THETA_OUT_ANGLE table. This port's material.Material
// carries a single energy-independent DiffProb/Roughness model (§4.4),
// not the original's full micro-roughness diffraction calculation, so
// mrdrp here is ReflectionProbability(cos(theta_out)) * sin(theta_out) —
// a simplification, not a re-derivation of MR-DRP physics.
func PrintMROutAngle(outpath string, materials map[string]material.Material) error {
	mat, err := representativeMaterial(materials)
	if err != nil {
		return err
	}

	f, w, err := openTable(outpath, "MR-SldAngDRP.out", []string{"phi_out", "theta_out", "mrdrp"})
	if err != nil {
		return err
	}

	const steps = 100
	dPhi := 2 * math.Pi / steps
	dTheta := (math.Pi / 2) / steps
	for i := 0; i < steps; i++ {
		phi := -math.Pi + float64(i)*dPhi
		for j := 0; j < steps; j++ {
			theta := float64(j) * dTheta
			mrdrp := mat.ReflectionProbability(math.Cos(theta)) * math.Sin(theta)
			if err := w.Write([]string{fv(phi), fv(theta), fv(mrdrp)}); err != nil {
				f.Close()
				return err
			}
		}
	}
	return closeTable(f, w)
}

// PrintMRThetaIEnergy tabulates a material's total reflection probability
// over a grid of incident angle and neutron energy, the same shape as the
// original MR_THETA_I_ENERGY table. As in PrintMROutAngle, this port's
// reflection model has no energy dependence, so totmrdrp only varies along
// the theta_i axis; the energy axis is still swept and written so the
// table's shape matches what downstream plotting tools expect.
func PrintMRThetaIEnergy(outpath string, materials map[string]material.Material) error {
	mat, err := representativeMaterial(materials)
	if err != nil {
		return err
	}

	f, w, err := openTable(outpath, "MR-Tot-DRP.out", []string{"theta_i", "neut_en", "totmrdrp"})
	if err != nil {
		return err
	}

	const (
		thetaStart, thetaEnd = 0.0, math.Pi / 2
		energyStart          = 0.0
		energyEnd            = 200e-9
		steps                = 100
	)
	dTheta := (thetaEnd - thetaStart) / steps
	dEnergy := (energyEnd - energyStart) / steps

	for i := 0; i < steps; i++ {
		theta := thetaStart + float64(i)*dTheta
		totmrdrp := mat.ReflectionProbability(math.Cos(theta))
		for j := 0; j < steps; j++ {
			energy := energyStart + float64(j)*dEnergy
			if err := w.Write([]string{fv(theta), fv(energy), fv(totmrdrp)}); err != nil {
				f.Close()
				return err
			}
		}
	}
	return closeTable(f, w)
}
