package config

// VolumeConfig bounds the region a particle-source preset samples initial
// position from, in cylindrical coordinates.
type VolumeConfig struct {
	RMin, RMax     float64 `yaml:"r_min_max"`
	PhiMin, PhiMax float64 `yaml:"phi_min_max"`
	ZMin, ZMax     float64 `yaml:"z_min_max"`
}

// EnergyConfig bounds the energy/angle distribution a preset samples
// initial velocity from.
type EnergyConfig struct {
	EMin, EMax               float64 `yaml:"e_min_max"`
	CosThetaMin, CosThetaMax float64 `yaml:"costheta_min_max"`
}

// SourcePreset is one named particle-source configuration: an initial
// volume plus an energy/angle distribution, adapted from the teacher's
// per-model simulation presets into the per-kind particle-source presets
// §6 calls for.
type SourcePreset struct {
	Kind   string       `yaml:"kind"`
	Volume VolumeConfig `yaml:"volume"`
	Energy EnergyConfig `yaml:"energy"`
}

// Presets keeps the teacher's map[string]map[string]*X shape: outer key is
// the particle kind, inner key is the preset name.
var Presets = map[string]map[string]*SourcePreset{
	"neutron": {
		"storage": {
			Kind:   "neutron",
			Volume: VolumeConfig{RMin: 0, RMax: 0.235, PhiMin: 0, PhiMax: 6.283185307, ZMin: 0, ZMax: 1.2},
			Energy: EnergyConfig{EMin: 0, EMax: 180e-9, CosThetaMin: -1, CosThetaMax: 1},
		},
		"beam": {
			Kind:   "neutron",
			Volume: VolumeConfig{RMin: 0, RMax: 0.02, PhiMin: 0, PhiMax: 6.283185307, ZMin: 0, ZMax: 0.01},
			Energy: EnergyConfig{EMin: 50e-9, EMax: 150e-9, CosThetaMin: 0.9, CosThetaMax: 1},
		},
	},
	"proton": {
		"decay_spectrum": {
			Kind:   "proton",
			Volume: VolumeConfig{RMin: 0, RMax: 0.235, PhiMin: 0, PhiMax: 6.283185307, ZMin: 0, ZMax: 1.2},
			Energy: EnergyConfig{EMin: 0, EMax: 751, CosThetaMin: -1, CosThetaMax: 1},
		},
	},
	"electron": {
		"decay_spectrum": {
			Kind:   "electron",
			Volume: VolumeConfig{RMin: 0, RMax: 0.235, PhiMin: 0, PhiMax: 6.283185307, ZMin: 0, ZMax: 1.2},
			Energy: EnergyConfig{EMin: 0, EMax: 782000, CosThetaMin: -1, CosThetaMax: 1},
		},
	},
}

// GetPreset returns the named preset for a particle kind, or nil if
// either is unknown.
func GetPreset(kind, preset string) *SourcePreset {
	kindPresets, ok := Presets[kind]
	if !ok {
		return nil
	}
	p, ok := kindPresets[preset]
	if !ok {
		return nil
	}
	return p
}

// ListPresets returns the preset names available for a particle kind.
func ListPresets(kind string) []string {
	kindPresets, ok := Presets[kind]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(kindPresets))
	for name := range kindPresets {
		names = append(names, name)
	}
	return names
}
