package collision

import (
	"math"
	"testing"

	"github.com/DillonBusk/pentrack/internal/material"
	"github.com/DillonBusk/pentrack/internal/particle"
	"github.com/DillonBusk/pentrack/internal/rng"
	"github.com/DillonBusk/pentrack/internal/spatial"
)

// A neutron whose normal kinetic energy clears the Fermi barrier either
// transmits (refracted to conserve total energy) or is absorbed according
// to the imaginary-potential loss probability; it should never come back
// out reflected (§4.4 scenario: over-barrier transmission).
func TestRespondNeutronAboveBarrierTransmitsOrAbsorbs(t *testing.T) {
	wall := material.Material{Name: "thinwall", FermiReal: 50, FermiImag: 0} // no absorption term
	vacuum := material.Vacuum

	speed := 10.0 // m/s, well above the threshold for a 50 neV barrier
	vel := spatial.Vec3{0, 0, -speed}
	normal := spatial.Vec3{0, 0, 1}

	out := &Outcome{Normal: normal}
	stream := rng.New(1, 0)
	respondNeutron(out, vel, wall, vacuum, particle.Neutron, stream)

	if out.Reflected {
		t.Fatal("did not expect reflection above the Fermi barrier")
	}
	if out.Absorbed {
		t.Fatal("FermiImag is zero, should never absorb")
	}

	// Refraction conserves total kinetic energy: the exiting normal speed
	// differs from the incident one by the potential step, tangential
	// component (zero here) is untouched.
	deltaU := (wall.FermiReal - vacuum.FermiReal) * material.NevToJoule
	ePerpIn := 0.5 * particle.NeutronMass * speed * speed
	wantEPerpOut := ePerpIn - deltaU
	gotEPerpOut := 0.5 * particle.NeutronMass * out.Vel[2] * out.Vel[2]
	if math.Abs(gotEPerpOut-wantEPerpOut) > wantEPerpOut*1e-6 {
		t.Errorf("transmitted normal KE = %g, want %g", gotEPerpOut, wantEPerpOut)
	}
}

func TestRespondNeutronImaginaryPotentialCanAbsorb(t *testing.T) {
	wall := material.Material{Name: "lossywall", FermiReal: 10, FermiImag: 1000} // huge imaginary part forces near-certain loss
	vacuum := material.Vacuum

	speed := 50.0
	vel := spatial.Vec3{0, 0, -speed}
	out := &Outcome{Normal: spatial.Vec3{0, 0, 1}}
	stream := rng.New(1, 0)
	respondNeutron(out, vel, wall, vacuum, particle.Neutron, stream)

	if !out.Absorbed {
		t.Error("expected near-certain absorption with a very large FermiImag")
	}
	if out.Stop != particle.StopAbsorbedSurface {
		t.Errorf("Stop = %v, want StopAbsorbedSurface", out.Stop)
	}
}
