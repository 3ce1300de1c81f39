package source

import (
	"math"

	"github.com/DillonBusk/pentrack/internal/config"
	"github.com/DillonBusk/pentrack/internal/geom"
	"github.com/DillonBusk/pentrack/internal/particle"
	"github.com/DillonBusk/pentrack/internal/rng"
	"github.com/DillonBusk/pentrack/internal/spatial"
)

// maxPlacementAttempts bounds the rejection loop that looks for a starting
// position inside the source volume but outside any solid. Exhausting it
// is a source failure, stop-code -5 (§7).
const maxPlacementAttempts = 10000

// Sampler draws particle initial states from a configured volume and
// energy/angle distribution, validating each draw against the geometry so
// a particle never starts inside a solid.
type Sampler struct {
	Geometry *geom.Geometry
}

func NewSampler(g *geom.Geometry) *Sampler {
	return &Sampler{Geometry: g}
}

// Next draws one particle of kind, tagged with index, starting at time t0,
// from preset. On repeated placement failure it returns a particle already
// marked StopSourceFailure rather than an error, so the driver can log it
// to end.out like any other terminated particle (§7's stop-code -5).
func (s *Sampler) Next(preset *config.SourcePreset, kind particle.Kind, index int, t0 float64, stream *rng.Stream) *particle.Particle {
	p := &particle.Particle{
		Index:    index,
		Kind:     kind,
		T0:       t0,
		T:        t0,
		PSurvive: 1,
	}

	pos, ok := s.placeInVolume(preset.Volume, t0, stream)
	if !ok {
		p.Stop = particle.StopSourceFailure
		return p
	}

	vel := sampleVelocity(preset.Energy, kind, stream)

	p.Pos, p.InitialPos = pos, pos
	p.Vel, p.InitialVel = vel, vel
	if kind.HasMagneticMoment() {
		p.SpinSign = 1
		// Refined to the local field direction by spin.Tracker's first
		// adiabatic reset; {0,0,1} is just a placeholder until then.
		p.Spin = spatial.Vec3{0, 0, 1}
	}

	if solid, found, err := s.Geometry.WhichSolidContains(pos, t0); err == nil && found {
		p.CurrentSolid = solid.ID
	}
	return p
}

func (s *Sampler) placeInVolume(v config.VolumeConfig, t0 float64, stream *rng.Stream) (spatial.Vec3, bool) {
	for attempt := 0; attempt < maxPlacementAttempts; attempt++ {
		r := math.Sqrt(stream.Uniform(v.RMin*v.RMin, v.RMax*v.RMax))
		phi := stream.Uniform(v.PhiMin, v.PhiMax)
		z := stream.Uniform(v.ZMin, v.ZMax)
		pos := spatial.CylToCart(r, phi, z)

		if !s.Geometry.InBounds(pos) {
			continue
		}
		solid, found, err := s.Geometry.WhichSolidContains(pos, t0)
		if err != nil {
			continue
		}
		if !found || solid.Material.VacuumLike {
			return pos, true
		}
	}
	return spatial.Vec3{}, false
}

// sampleVelocity draws a speed from the configured energy range (uniform
// in energy, matching the reference implementation's flat-spectrum source
// option) and a direction within the configured cos(theta) cone about +z,
// uniform in azimuth.
func sampleVelocity(e config.EnergyConfig, kind particle.Kind, stream *rng.Stream) spatial.Vec3 {
	energy := stream.Uniform(e.EMin, e.EMax)
	speed := speedFromEnergy(energy, kind)

	cosTheta := stream.Uniform(e.CosThetaMin, e.CosThetaMax)
	sinTheta := math.Sqrt(1 - cosTheta*cosTheta)
	phi := stream.Azimuth()

	dir := spatial.Vec3{sinTheta * math.Cos(phi), sinTheta * math.Sin(phi), cosTheta}
	return dir.Scale(speed)
}

// speedFromEnergy inverts the kinetic-energy relation for kind, using the
// relativistic form for the electron (§9's Open Question: electron motion
// is the one kind treated relativistically) and the classical form
// otherwise. energyEV is the kinetic energy in eV, the unit of the preset
// EnergyConfig bounds.
func speedFromEnergy(energyEV float64, kind particle.Kind) float64 {
	if energyEV <= 0 {
		return 0
	}
	energyJ := energyEV * particle.ElementaryCharge
	mass := kind.Mass()
	if !kind.Relativistic() {
		return math.Sqrt(2 * energyJ / mass)
	}
	restEnergy := mass * particle.SpeedOfLight * particle.SpeedOfLight
	gamma := 1 + energyJ/restEnergy
	beta := math.Sqrt(1 - 1/(gamma*gamma))
	return beta * particle.SpeedOfLight
}
