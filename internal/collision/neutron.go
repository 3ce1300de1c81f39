package collision

import (
	"math"

	"github.com/DillonBusk/pentrack/internal/material"
	"github.com/DillonBusk/pentrack/internal/particle"
	"github.com/DillonBusk/pentrack/internal/rng"
	"github.com/DillonBusk/pentrack/internal/spatial"
)

// respondNeutron implements §4.4's neutron surface response state machine.
// It mutates out in place with the resolved outgoing velocity and, on
// absorption, the terminal stop-code.
func respondNeutron(out *Outcome, vel spatial.Vec3, enter, leave material.Material, kind particle.Kind, stream *rng.Stream) {
	normal := out.Normal.Normalized()
	vPerpMag := vel.Dot(normal)
	vPerp := normal.Scale(vPerpMag)
	vTang := vel.Sub(vPerp)

	if enter.VacuumLike {
		// Transmits without modification.
		out.Vel = vel
		return
	}

	mass := kind.Mass()
	ePerp := 0.5 * mass * vPerpMag * vPerpMag
	deltaU := (enter.FermiReal - leave.FermiReal) * material.NevToJoule

	if ePerp < deltaU {
		// Reflection: diffuse with probability p_diff, else specular.
		out.Reflected = true
		cosTheta := math.Abs(vPerpMag) / vel.Norm()
		diffProb := enter.ReflectionProbability(cosTheta)

		if stream.Float64() < diffProb {
			out.Diffuse = true
			out.Vel = diffuseDirection(normal, vel.Norm(), stream)
		} else {
			out.Vel = vTang.Sub(vPerp)
		}
		return
	}

	// Transmission: absorption probability from the imaginary potential,
	// else energy-conserving refraction of the normal component.
	fermiRealJ := enter.FermiReal * material.NevToJoule
	lossProb := enter.LossProbabilityPerBounce(ePerp, fermiRealJ)
	if stream.Float64() < lossProb {
		out.Absorbed = true
		out.Stop = particle.StopAbsorbedSurface
		return
	}

	newPerpEnergy := ePerp - deltaU
	if newPerpEnergy < 0 {
		newPerpEnergy = 0
	}
	newPerpMag := math.Sqrt(2 * newPerpEnergy / mass)
	if vPerpMag < 0 {
		newPerpMag = -newPerpMag
	}
	out.Vel = vTang.Add(normal.Scale(newPerpMag))
}

// diffuseDirection samples a cosine-weighted outgoing direction about the
// hemisphere on the outward-normal side of the surface (Lambert's law,
// §4.4), preserving speed.
func diffuseDirection(normal spatial.Vec3, speed float64, stream *rng.Stream) spatial.Vec3 {
	// The outward normal already points away from the solid being
	// reflected off, back into the space the particle occupies; the
	// diffuse lobe is centered on it directly.
	n := normal
	t1 := orthogonal(n).Normalized()
	t2 := n.Cross(t1)

	cosTheta := stream.CosineWeighted()
	sinTheta := math.Sqrt(1 - cosTheta*cosTheta)
	phi := stream.Azimuth()

	dir := n.Scale(cosTheta).
		Add(t1.Scale(sinTheta * math.Cos(phi))).
		Add(t2.Scale(sinTheta * math.Sin(phi)))
	return dir.Scale(speed)
}

// orthogonal returns an arbitrary vector orthogonal to v.
func orthogonal(v spatial.Vec3) spatial.Vec3 {
	if math.Abs(v[0]) < 0.9 {
		return spatial.Vec3{1, 0, 0}.Cross(v)
	}
	return spatial.Vec3{0, 1, 0}.Cross(v)
}
