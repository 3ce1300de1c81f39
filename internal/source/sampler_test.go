package source

import (
	"testing"

	"github.com/DillonBusk/pentrack/internal/config"
	"github.com/DillonBusk/pentrack/internal/geom"
	"github.com/DillonBusk/pentrack/internal/material"
	"github.com/DillonBusk/pentrack/internal/particle"
	"github.com/DillonBusk/pentrack/internal/rng"
)

func emptyGeometry() *geom.Geometry {
	registry := material.NewRegistry()
	bounds := geom.Box{Min: [3]float64{-1, -1, -1}, Max: [3]float64{1, 1, 1}}
	return geom.NewGeometry(nil, registry, bounds)
}

func TestSamplerNextPlacesInsideVolume(t *testing.T) {
	s := NewSampler(emptyGeometry())
	preset := &config.SourcePreset{
		Kind:   "neutron",
		Volume: config.VolumeConfig{RMin: 0, RMax: 0.2, PhiMin: 0, PhiMax: 6.283185307, ZMin: -0.5, ZMax: 0.5},
		Energy: config.EnergyConfig{EMin: 1e-9, EMax: 100e-9, CosThetaMin: -1, CosThetaMax: 1},
	}
	stream := rng.New(1, 0)

	p := s.Next(preset, particle.Neutron, 0, 0, stream)
	if p.Stop == particle.StopSourceFailure {
		t.Fatal("expected successful placement in an empty geometry")
	}
	r := p.Pos[0]*p.Pos[0] + p.Pos[1]*p.Pos[1]
	if r > preset.Volume.RMax*preset.Volume.RMax*1.0001 {
		t.Errorf("expected radial position within r_max, got r^2=%f", r)
	}
	if p.Pos[2] < preset.Volume.ZMin || p.Pos[2] > preset.Volume.ZMax {
		t.Errorf("expected z within configured range, got %f", p.Pos[2])
	}
	if p.SpinSign != 1 {
		t.Errorf("expected default SpinSign 1 for a neutron, got %f", p.SpinSign)
	}
}

func TestSamplerNextOutOfBoundsFails(t *testing.T) {
	s := NewSampler(emptyGeometry())
	preset := &config.SourcePreset{
		Volume: config.VolumeConfig{RMin: 0, RMax: 10, PhiMin: 0, PhiMax: 6.283185307, ZMin: 5, ZMax: 5},
		Energy: config.EnergyConfig{EMin: 1, EMax: 1, CosThetaMin: 0, CosThetaMax: 0},
	}
	stream := rng.New(1, 0)

	p := s.Next(preset, particle.Neutron, 0, 0, stream)
	if p.Stop != particle.StopSourceFailure {
		t.Errorf("expected StopSourceFailure for a volume entirely outside bounds, got %v", p.Stop)
	}
}

func TestSpeedFromEnergyClassicalVsRelativistic(t *testing.T) {
	nSpeed := speedFromEnergy(1e-9, particle.Neutron)
	if nSpeed <= 0 {
		t.Error("expected positive classical speed")
	}
	eSpeed := speedFromEnergy(1e6, particle.Electron)
	if eSpeed <= 0 || eSpeed >= particle.SpeedOfLight {
		t.Errorf("expected relativistic electron speed below c, got %f", eSpeed)
	}
}
