package field

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/DillonBusk/pentrack/internal/spatial"
)

// rAxisEpsilon is the radius below which the table is treated as being on
// the cylindrical axis; §4.1/§9 require the 1/r terms be handled by a
// limit form rather than dividing by a near-zero r. TableSource clamps
// lookups to this radius and zeroes the radial/azimuthal components there,
// the documented r->0 policy the reference implementation only applied to
// initial conditions.
const rAxisEpsilon = 1e-6

// grid is one scalar field component sampled on a regular (r, z) grid.
type grid struct {
	r0, dr float64
	z0, dz float64
	nr, nz int
	values []float64 // row-major: idx = i*nz + j, i over r, j over z
}

func (g *grid) at(i, j int) float64 {
	i = clampInt(i, 0, g.nr-1)
	j = clampInt(j, 0, g.nz-1)
	return g.values[i*g.nz+j]
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func (g *grid) dfdr(i, j int) float64 {
	return (g.at(i+1, j) - g.at(i-1, j)) / (2 * g.dr)
}

func (g *grid) dfdz(i, j int) float64 {
	return (g.at(i, j+1) - g.at(i, j-1)) / (2 * g.dz)
}

func (g *grid) d2fdrdz(i, j int) float64 {
	return (g.at(i+1, j+1) - g.at(i+1, j-1) - g.at(i-1, j+1) + g.at(i-1, j-1)) / (4 * g.dr * g.dz)
}

// cellCoef holds the 16 Hermite coefficients of one bicubic patch: the
// value, scaled r-derivative, scaled z-derivative, and scaled cross
// derivative at each of the cell's four corners. Precomputed once per cell
// at load time and cached in TableSource.cells, matching §4.1's "16
// coefficients per cell are precomputed once per cell and cached" — the
// hot-path Eval call only evaluates the resulting polynomial, never
// touches the raw grid or takes a finite difference.
type cellCoef struct {
	f, fr, fz, frz [4]float64 // corner order: (i,j) (i+1,j) (i,j+1) (i+1,j+1)
}

func buildCell(g *grid, i, j int) cellCoef {
	corners := [4][2]int{{i, j}, {i + 1, j}, {i, j + 1}, {i + 1, j + 1}}
	var c cellCoef
	for k, rc := range corners {
		c.f[k] = g.at(rc[0], rc[1])
		c.fr[k] = g.dfdr(rc[0], rc[1]) * g.dr
		c.fz[k] = g.dfdz(rc[0], rc[1]) * g.dz
		c.frz[k] = g.d2fdrdz(rc[0], rc[1]) * g.dr * g.dz
	}
	return c
}

// hermite basis functions and their first derivatives on [0,1].
func h00(t float64) float64  { return 2*t*t*t - 3*t*t + 1 }
func h10(t float64) float64  { return t*t*t - 2*t*t + t }
func h01(t float64) float64  { return -2*t*t*t + 3*t*t }
func h11(t float64) float64  { return t*t*t - t*t }
func dh00(t float64) float64 { return 6*t*t - 6*t }
func dh10(t float64) float64 { return 3*t*t - 4*t + 1 }
func dh01(t float64) float64 { return -6*t*t + 6*t }
func dh11(t float64) float64 { return 3*t*t - 2*t }

// eval returns f(t,u) and its partials df/dt, df/du over the unit cell,
// t,u in [0,1] along r,z respectively.
func (c cellCoef) eval(t, u float64) (f, dft, dfu float64) {
	// Corners ordered (0,0)=i,j (1,0)=i+1,j (0,1)=i,j+1 (1,1)=i+1,j+1.
	h := [4]float64{h00(t) * h00(u), h01(t) * h00(u), h00(t) * h01(u), h01(t) * h01(u)}
	hr := [4]float64{h10(t) * h00(u), h11(t) * h00(u), h10(t) * h01(u), h11(t) * h01(u)}
	hz := [4]float64{h00(t) * h10(u), h01(t) * h10(u), h00(t) * h11(u), h01(t) * h11(u)}

	dh := [4]float64{dh00(t) * h00(u), dh01(t) * h00(u), dh00(t) * h01(u), dh01(t) * h01(u)}
	dhr := [4]float64{dh10(t) * h00(u), dh11(t) * h00(u), dh10(t) * h01(u), dh11(t) * h01(u)}
	dhz := [4]float64{dh00(t) * dh10(u), dh01(t) * dh10(u), dh00(t) * dh11(u), dh01(t) * dh11(u)}

	du := [4]float64{h00(t) * dh00(u), h01(t) * dh00(u), h00(t) * dh01(u), h01(t) * dh01(u)}
	dur := [4]float64{h10(t) * dh00(u), h11(t) * dh00(u), h10(t) * dh01(u), h11(t) * dh01(u)}

	for k := 0; k < 4; k++ {
		f += h[k]*c.f[k] + hr[k]*c.fr[k] + hz[k]*c.fz[k]
		dft += dh[k]*c.f[k] + dhr[k]*c.fr[k] + dhz[k]*c.fz[k]
		dfu += du[k]*c.f[k] + dur[k]*c.fr[k]
	}
	// Cross-derivative (frz) contribution, added via the product of the
	// derivative bases in both directions.
	for k := 0; k < 4; k++ {
		cross := [4]float64{h10(t) * h10(u), h11(t) * h10(u), h10(t) * h11(u), h11(t) * h11(u)}[k]
		crossDt := [4]float64{dh10(t) * h10(u), dh11(t) * h10(u), dh10(t) * h11(u), dh11(t) * h11(u)}[k]
		crossDu := [4]float64{h10(t) * dh10(u), h11(t) * dh10(u), h10(t) * dh11(u), h11(t) * dh11(u)}[k]
		f += cross * c.frz[k]
		dft += crossDt * c.frz[k]
		dfu += crossDu * c.frz[k]
	}
	return f, dft, dfu
}

// Field is the six scalar grids one table file provides (§6: fixed
// columnar (r, z, B_r, B_phi, B_z, E_r, E_z, V) format).
type Field struct {
	Br, Bphi, Bz, Er, Ez, V grid
}

// TableSource is a tabulated cylindrically-symmetric (r, z) field grid,
// interpolated bicubically (§4.1). The patches' analytic (r, z) partials
// are not used: Evaluate builds gradB from a centered finite difference of
// the interpolated Cartesian field.
type TableSource struct {
	field      Field
	cellsBr    map[[2]int]cellCoef
	cellsBphi  map[[2]int]cellCoef
	cellsBz    map[[2]int]cellCoef
	cellsEr    map[[2]int]cellCoef
	cellsEz    map[[2]int]cellCoef
	cellsV     map[[2]int]cellCoef
	ramp       *RampProfile
}

// NewTableSource precomputes and caches every cell's 16 Hermite
// coefficients for all six scalar fields, once, at construction time.
func NewTableSource(f Field, ramp *RampProfile) *TableSource {
	if ramp == nil {
		ramp = Static()
	}
	ts := &TableSource{
		field:     f,
		cellsBr:   map[[2]int]cellCoef{},
		cellsBphi: map[[2]int]cellCoef{},
		cellsBz:   map[[2]int]cellCoef{},
		cellsEr:   map[[2]int]cellCoef{},
		cellsEz:   map[[2]int]cellCoef{},
		cellsV:    map[[2]int]cellCoef{},
		ramp:      ramp,
	}
	precomputeAll(&ts.field.Br, ts.cellsBr)
	precomputeAll(&ts.field.Bphi, ts.cellsBphi)
	precomputeAll(&ts.field.Bz, ts.cellsBz)
	precomputeAll(&ts.field.Er, ts.cellsEr)
	precomputeAll(&ts.field.Ez, ts.cellsEz)
	precomputeAll(&ts.field.V, ts.cellsV)
	return ts
}

func precomputeAll(g *grid, cells map[[2]int]cellCoef) {
	if g.nr < 2 || g.nz < 2 {
		return
	}
	for i := 0; i < g.nr-1; i++ {
		for j := 0; j < g.nz-1; j++ {
			cells[[2]int{i, j}] = buildCell(g, i, j)
		}
	}
}

func (t *TableSource) Ramp() *RampProfile { return t.ramp }

// lookup returns (value, df/dr, df/dz) at (r, z) for one scalar grid,
// using its precomputed cell cache. Queries outside the grid return zero
// value and zero derivatives (§4.1's edge case).
func (t *TableSource) lookup(g *grid, cells map[[2]int]cellCoef, r, z float64) (v, dvdr, dvdz float64) {
	if g.nr < 2 || g.nz < 2 {
		return 0, 0, 0
	}
	fi := (r - g.r0) / g.dr
	fj := (z - g.z0) / g.dz
	i := int(math.Floor(fi))
	j := int(math.Floor(fj))
	if i < 0 || i >= g.nr-1 || j < 0 || j >= g.nz-1 {
		return 0, 0, 0
	}
	c, ok := cells[[2]int{i, j}]
	if !ok {
		return 0, 0, 0
	}
	tLoc := fi - float64(i)
	uLoc := fj - float64(j)
	f, dft, dfu := c.eval(tLoc, uLoc)
	return f, dft / g.dr, dfu / g.dz
}

// Evaluate implements Source for the tabulated grid. At r < rAxisEpsilon
// the radial and azimuthal components (and their r-derivatives) are
// forced to zero by symmetry rather than evaluated at a near-singular 1/r
// term (§9's documented r->0 policy); the axial component is unaffected.
// Unscaled by ramp, per the Source contract — the Manager applies scaling.
func (t *TableSource) Evaluate(x spatial.Vec3, tt float64) (B spatial.Vec3, gradB spatial.Mat3, E spatial.Vec3, V float64) {
	r, phi, z := spatial.CartToCyl(x)
	onAxis := r < rAxisEpsilon

	var br, bphi, bz, er, ez, v float64
	var dbrdr, dbrdz, dbphidr, dbphidz, dbzdr, dbzdz, derdr, derdz, dezdr, dezdz float64

	if onAxis {
		bz, _, dbzdz = t.lookup(&t.field.Bz, t.cellsBz, rAxisEpsilon, z)
		ez, _, dezdz = t.lookup(&t.field.Ez, t.cellsEz, rAxisEpsilon, z)
		v, _, _ = t.lookup(&t.field.V, t.cellsV, rAxisEpsilon, z)
	} else {
		br, dbrdr, dbrdz = t.lookup(&t.field.Br, t.cellsBr, r, z)
		bphi, dbphidr, dbphidz = t.lookup(&t.field.Bphi, t.cellsBphi, r, z)
		bz, dbzdr, dbzdz = t.lookup(&t.field.Bz, t.cellsBz, r, z)
		er, derdr, derdz = t.lookup(&t.field.Er, t.cellsEr, r, z)
		ez, dezdr, dezdz = t.lookup(&t.field.Ez, t.cellsEz, r, z)
		v, _, _ = t.lookup(&t.field.V, t.cellsV, r, z)
	}
	_ = dbphidr
	_ = dbphidz
	_ = derdr
	_ = derdz

	cosPhi, sinPhi := math.Cos(phi), math.Sin(phi)
	Bcyl := spatial.Vec3{br, bphi, bz}
	Ecyl := spatial.Vec3{er, 0, ez}

	B = cylVecToCart(Bcyl, cosPhi, sinPhi)
	E = cylVecToCart(Ecyl, cosPhi, sinPhi)
	V = v

	// Cartesian gradient via a short centered finite difference of the
	// already-cached bicubic field (cheap: each call is a hash lookup plus
	// a 16-term polynomial, not a raw-grid difference).
	const h = 1e-7
	for j := 0; j < 3; j++ {
		dx := spatial.Vec3{}
		dx[j] = h
		bPlus := t.fieldOnlyCart(x.Add(dx))
		bMinus := t.fieldOnlyCart(x.Sub(dx))
		for i := 0; i < 3; i++ {
			gradB[i][j] = (bPlus[i] - bMinus[i]) / (2 * h)
		}
	}
	_ = dbrdr
	_ = dbrdz
	_ = dbzdr
	_ = dbzdz
	_ = dezdr
	_ = dezdz

	return B, gradB, E, V
}

func (t *TableSource) fieldOnlyCart(x spatial.Vec3) spatial.Vec3 {
	r, phi, z := spatial.CartToCyl(x)
	if r < rAxisEpsilon {
		bz, _, _ := t.lookup(&t.field.Bz, t.cellsBz, rAxisEpsilon, z)
		return spatial.Vec3{0, 0, bz}
	}
	br, _, _ := t.lookup(&t.field.Br, t.cellsBr, r, z)
	bphi, _, _ := t.lookup(&t.field.Bphi, t.cellsBphi, r, z)
	bz, _, _ := t.lookup(&t.field.Bz, t.cellsBz, r, z)
	cosPhi, sinPhi := math.Cos(phi), math.Sin(phi)
	return cylVecToCart(spatial.Vec3{br, bphi, bz}, cosPhi, sinPhi)
}

func cylVecToCart(v spatial.Vec3, cosPhi, sinPhi float64) spatial.Vec3 {
	vr, vphi, vz := v[0], v[1], v[2]
	return spatial.Vec3{
		vr*cosPhi - vphi*sinPhi,
		vr*sinPhi + vphi*cosPhi,
		vz,
	}
}

// LoadTable reads the fixed columnar field-table format of §6: a header
// line with row and column counts, then (r, z, B_r, B_phi, B_z, E_r, E_z, V)
// tuples on a regular grid. Values are taken as SI; no unit conversion is
// applied at load time.
func LoadTable(path string, ramp *RampProfile) (*TableSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return parseTable(f, ramp)
}

func parseTable(r io.Reader, ramp *RampProfile) (*TableSource, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	if !sc.Scan() {
		return nil, fmt.Errorf("field: empty table file")
	}
	header := strings.Fields(sc.Text())
	if len(header) < 2 {
		return nil, fmt.Errorf("field: malformed header %q", sc.Text())
	}
	nr, err := strconv.Atoi(header[0])
	if err != nil {
		return nil, fmt.Errorf("field: bad row count: %w", err)
	}
	nz, err := strconv.Atoi(header[1])
	if err != nil {
		return nil, fmt.Errorf("field: bad column count: %w", err)
	}

	n := nr * nz
	rs := make([]float64, n)
	zs := make([]float64, n)
	br := make([]float64, n)
	bphi := make([]float64, n)
	bz := make([]float64, n)
	er := make([]float64, n)
	ez := make([]float64, n)
	v := make([]float64, n)

	idx := 0
	for sc.Scan() && idx < n {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		cols := strings.Fields(line)
		if len(cols) < 8 {
			return nil, fmt.Errorf("field: row %d has %d columns, want 8", idx, len(cols))
		}
		vals := make([]float64, 8)
		for k, c := range cols[:8] {
			vals[k], err = strconv.ParseFloat(c, 64)
			if err != nil {
				return nil, fmt.Errorf("field: row %d col %d: %w", idx, k, err)
			}
		}
		rs[idx], zs[idx] = vals[0], vals[1]
		br[idx], bphi[idx], bz[idx] = vals[2], vals[3], vals[4]
		er[idx], ez[idx], v[idx] = vals[5], vals[6], vals[7]
		idx++
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if idx != n {
		return nil, fmt.Errorf("field: expected %d rows, got %d", n, idx)
	}

	r0, dr := gridSpacing(rs, nr, nz, true)
	z0, dz := gridSpacing(zs, nr, nz, false)

	mk := func(vals []float64) grid {
		return grid{r0: r0, dr: dr, z0: z0, dz: dz, nr: nr, nz: nz, values: vals}
	}

	fd := Field{Br: mk(br), Bphi: mk(bphi), Bz: mk(bz), Er: mk(er), Ez: mk(ez), V: mk(v)}
	return NewTableSource(fd, ramp), nil
}

// gridSpacing infers the regular grid's origin and step from the flattened
// coordinate column, assuming row-major (r outer, z inner) layout.
func gridSpacing(coord []float64, nr, nz int, radial bool) (origin, step float64) {
	if len(coord) == 0 {
		return 0, 1
	}
	origin = coord[0]
	if radial {
		if nr < 2 {
			return origin, 1
		}
		step = (coord[(nr-1)*nz] - origin) / float64(nr-1)
	} else {
		if nz < 2 {
			return origin, 1
		}
		step = (coord[nz-1] - origin) / float64(nz-1)
	}
	if step == 0 {
		step = 1
	}
	return origin, step
}
