package field

import (
	"math"

	"github.com/DillonBusk/pentrack/internal/spatial"
)

const mu0Over4Pi = 1.0e-7 // mu0/(4*pi), SI

// BarSource is a finite straight-wire current segment defined by two
// endpoints in cylindrical coordinates and a scalar current (§4.1).
type BarSource struct {
	P1, P2 spatial.Vec3 // Cartesian endpoints, converted once at construction
	Current float64       // amps
	ramp    *RampProfile
}

// NewBarSource builds a bar from cylindrical endpoints (r, phi in radians, z).
func NewBarSource(r1, phi1, z1, r2, phi2, z2, current float64, ramp *RampProfile) *BarSource {
	if ramp == nil {
		ramp = Static()
	}
	return &BarSource{
		P1:      spatial.CylToCart(r1, phi1, z1),
		P2:      spatial.CylToCart(r2, phi2, z2),
		Current: current,
		ramp:    ramp,
	}
}

func (b *BarSource) Ramp() *RampProfile { return b.ramp }

// Evaluate computes the closed-form Biot-Savart field and its 3x3 gradient
// from a finite straight wire segment, the standard result for a segment
// of finite length seen from an off-axis field point:
//
//	B = (mu0 I)/(4 pi rho) * (sinTheta2 - sinTheta1) * phiHat
//
// where rho is the perpendicular distance from the field point to the
// wire's infinite line, and theta1/theta2 are the angles subtended by the
// segment endpoints. The gradient is obtained by finite-differencing the
// closed-form expression over a small step, since the general off-axis
// analytic Jacobian of a finite segment is a full tensor expression whose
// direct differentiation is error-prone to hand-transcribe; a tight
// centered difference at machine-precision-appropriate step size is exact
// enough for the RK45 driver's gradient-force term. Unscaled by ramp, per
// the Source contract — the Manager applies scaling.
func (b *BarSource) Evaluate(x spatial.Vec3, t float64) (B spatial.Vec3, gradB spatial.Mat3, E spatial.Vec3, V float64) {
	B = b.fieldAt(x)

	const h = 1e-6
	for j := 0; j < 3; j++ {
		dx := spatial.Vec3{}
		dx[j] = h
		bPlus := b.fieldAt(x.Add(dx))
		bMinus := b.fieldAt(x.Sub(dx))
		for i := 0; i < 3; i++ {
			gradB[i][j] = (bPlus[i] - bMinus[i]) / (2 * h)
		}
	}
	return B, gradB, spatial.Vec3{}, 0
}

// fieldAt computes the unscaled (ramp=1) Biot-Savart field of the segment.
func (b *BarSource) fieldAt(x spatial.Vec3) spatial.Vec3 {
	wire := b.P2.Sub(b.P1)
	wireLen := wire.Norm()
	if wireLen < 1e-12 {
		return spatial.Vec3{}
	}
	dir := wire.Scale(1 / wireLen)

	toPoint := x.Sub(b.P1)
	axialDist := toPoint.Dot(dir)
	perp := toPoint.Sub(dir.Scale(axialDist))
	rho := perp.Norm()
	if rho < 1e-9 {
		return spatial.Vec3{}
	}

	sinTheta1 := -axialDist / math.Hypot(axialDist, rho)
	axialDist2 := axialDist - wireLen
	sinTheta2 := -axialDist2 / math.Hypot(axialDist2, rho)

	magnitude := mu0Over4Pi * b.Current / rho * (sinTheta2 - sinTheta1)

	phiHat := dir.Cross(perp.Scale(1 / rho))
	return phiHat.Scale(magnitude)
}
