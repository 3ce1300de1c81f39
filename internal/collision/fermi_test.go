package collision

import (
	"testing"

	"github.com/DillonBusk/pentrack/internal/material"
	"github.com/DillonBusk/pentrack/internal/particle"
	"github.com/DillonBusk/pentrack/internal/rng"
	"github.com/DillonBusk/pentrack/internal/spatial"
)

// A neutron whose normal kinetic energy is below the Fermi barrier must
// reflect, never transmit or get absorbed (§4.4 scenario: sub-barrier
// bounce).
func TestRespondNeutronBelowBarrierReflects(t *testing.T) {
	wall := material.Material{Name: "wall", FermiReal: 100, DiffProb: 0} // 100 neV barrier, perfectly specular
	vacuum := material.Vacuum

	// Normal kinetic energy for a slow neutron hitting head-on: pick a
	// speed whose 1/2 m v^2 sits well under 100 neV.
	speed := 1.0 // m/s, far below the ~4 m/s threshold for 100 neV
	vel := spatial.Vec3{0, 0, -speed}
	normal := spatial.Vec3{0, 0, 1}

	out := &Outcome{Normal: normal}
	stream := rng.New(1, 0)
	respondNeutron(out, vel, wall, vacuum, particle.Neutron, stream)

	if !out.Reflected {
		t.Fatal("expected reflection below the Fermi barrier")
	}
	if out.Absorbed {
		t.Error("did not expect absorption on a sub-barrier specular bounce")
	}
	// Specular: the normal component of velocity flips sign, tangential
	// stays put (zero here).
	if out.Vel[2] != speed {
		t.Errorf("vz after specular reflection = %g, want %g", out.Vel[2], speed)
	}
}

func TestRespondNeutronVacuumTransmitsUnmodified(t *testing.T) {
	vel := spatial.Vec3{1, 2, -3}
	out := &Outcome{Normal: spatial.Vec3{0, 0, 1}}
	stream := rng.New(1, 0)
	respondNeutron(out, vel, material.Vacuum, material.Vacuum, particle.Neutron, stream)

	if out.Vel != vel {
		t.Errorf("expected unmodified velocity through a vacuum-like entering material, got %v want %v", out.Vel, vel)
	}
	if out.Reflected || out.Absorbed {
		t.Error("vacuum-like material should neither reflect nor absorb")
	}
}
