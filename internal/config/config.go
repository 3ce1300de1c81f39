// Package config implements the Config of §6's Inputs, loaded/saved as
// YAML the same way the teacher's config.Load/config.Save round-trips a
// struct through gopkg.in/yaml.v3.
package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// SimType is the `simtype` enum of §6.
type SimType string

const (
	SimParticle      SimType = "PARTICLE"
	SimBFOnly        SimType = "BF_ONLY"
	SimBFCut         SimType = "BF_CUT"
	SimGeometry      SimType = "GEOMETRY"
	SimMRThetaOut    SimType = "MR_THETA_OUT_ANGLE"
	SimMRThetaEnergy SimType = "MR_THETA_I_ENERGY"
)

// KindConfig is one particle kind's per-run tolerance/log settings (§6:
// "sub-maps per particle kind defining tolerances and log flags").
type KindConfig struct {
	Tolerance  float64 `yaml:"tolerance"`
	H1         float64 `yaml:"h1"`
	LogTrack   bool    `yaml:"log_track"`
	LogEnd     bool    `yaml:"log_end"`
	LogReflect bool    `yaml:"log_reflect"`
}

// Config is the top-level configuration map of §6.
type Config struct {
	SimType       SimType               `yaml:"simtype"`
	SimCount      int                   `yaml:"simcount"`
	SimTime       float64               `yaml:"simtime"`
	Secondaries   bool                  `yaml:"secondaries"`
	Seed          int64                 `yaml:"seed"`
	Dxsav         float64               `yaml:"dxsav"`
	BTarget       float64               `yaml:"b_target"`
	SpinBufferCap int                   `yaml:"spin_buffer_cap"`
	SpinTolerance float64               `yaml:"spin_tolerance"`
	FlipOnSample  bool                  `yaml:"flip_on_sample"`
	MaxDt         float64               `yaml:"max_dt"`
	Kinds         map[string]KindConfig `yaml:"kinds"`
}

// DefaultConfig mirrors the reference implementation's defaults closely
// enough to produce a runnable configuration out of the box.
func DefaultConfig() *Config {
	return &Config{
		SimType:       SimParticle,
		SimCount:      1,
		SimTime:       500,
		Secondaries:   false,
		Dxsav:         1e-4,
		BTarget:       1e-3,
		SpinBufferCap: 10000,
		SpinTolerance: 1e-12,
		Kinds: map[string]KindConfig{
			"neutron":  {Tolerance: 1e-13, H1: 1e-4, LogTrack: true, LogEnd: true, LogReflect: true},
			"proton":   {Tolerance: 1e-10, H1: 1e-8, LogTrack: true, LogEnd: true},
			"electron": {Tolerance: 1e-10, H1: 1e-10, LogTrack: true, LogEnd: true},
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
