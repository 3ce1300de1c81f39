package config

import "testing"

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.SimType != SimParticle {
		t.Errorf("expected simtype PARTICLE, got %s", cfg.SimType)
	}
	if cfg.SimCount <= 0 {
		t.Error("simcount should be positive")
	}
	if cfg.SimTime <= 0 {
		t.Error("simtime should be positive")
	}
	if _, ok := cfg.Kinds["neutron"]; !ok {
		t.Error("expected a neutron kind entry by default")
	}
}

func TestGetPreset(t *testing.T) {
	p := GetPreset("neutron", "storage")
	if p == nil {
		t.Fatal("expected preset, got nil")
	}
	if p.Volume.RMax <= 0 {
		t.Errorf("expected positive r_max, got %f", p.Volume.RMax)
	}
}

func TestGetPreset_NotFound(t *testing.T) {
	if p := GetPreset("neutron", "nonexistent"); p != nil {
		t.Error("expected nil for nonexistent preset")
	}
	if p := GetPreset("nonexistent", "storage"); p != nil {
		t.Error("expected nil for nonexistent kind")
	}
}

func TestListPresets(t *testing.T) {
	presets := ListPresets("neutron")
	if len(presets) == 0 {
		t.Error("expected presets for neutron")
	}

	if presets := ListPresets("nonexistent"); presets != nil {
		t.Error("expected nil for nonexistent kind")
	}
}
