package material

import "testing"

func TestRegistryResolvePriorityPicksHighest(t *testing.T) {
	reg := NewRegistry()
	reg.Add(Solid{ID: 1, Name: "outer", Priority: 0})
	reg.Add(Solid{ID: 2, Name: "inner", Priority: 5})

	solid, ok := reg.ResolvePriority([]SolidID{1, 2}, 0)
	if !ok || solid.ID != 2 {
		t.Errorf("expected solid 2 (higher priority), got ok=%v solid=%+v", ok, solid)
	}
}

func TestRegistryResolvePriorityRespectsTimeWindow(t *testing.T) {
	reg := NewRegistry()
	reg.Add(Solid{ID: 1, Name: "gated", Priority: 10, Window: TimeWindow{On: 1, Off: 2}})
	reg.Add(Solid{ID: 2, Name: "always", Priority: 0})

	solid, ok := reg.ResolvePriority([]SolidID{1, 2}, 0.5)
	if !ok || solid.ID != 2 {
		t.Errorf("expected solid 2 while the gated solid's window is closed, got ok=%v solid=%+v", ok, solid)
	}

	solid, ok = reg.ResolvePriority([]SolidID{1, 2}, 1.5)
	if !ok || solid.ID != 1 {
		t.Errorf("expected solid 1 once its window opens, got ok=%v solid=%+v", ok, solid)
	}
}

func TestReflectionProbabilityDegeneratesToFlatDiffProb(t *testing.T) {
	m := Material{DiffProb: 0.3}
	if got := m.ReflectionProbability(0.9); got != 0.3 {
		t.Errorf("ReflectionProbability = %g, want 0.3 with zero roughness params", got)
	}
}

func TestReflectionProbabilityWeightedByRoughness(t *testing.T) {
	m := Material{DiffProb: 1.0, RoughnessW: 1.0}
	grazing := m.ReflectionProbability(0.01)  // near-grazing incidence
	normal := m.ReflectionProbability(0.99)   // near-normal incidence
	if grazing >= normal {
		t.Errorf("expected grazing incidence (%g) to be less diffuse than near-normal (%g)", grazing, normal)
	}
}

func TestLossProbabilityPerBounceZeroBelowThreshold(t *testing.T) {
	m := Material{FermiImag: 5}
	if got := m.LossProbabilityPerBounce(1, 10); got != 0 {
		t.Errorf("expected zero loss probability below the real-potential threshold, got %g", got)
	}
}

func TestLossProbabilityPerBouncePositiveAboveThreshold(t *testing.T) {
	m := Material{FermiImag: 5}
	if got := m.LossProbabilityPerBounce(20, 10); got <= 0 {
		t.Errorf("expected positive loss probability above threshold, got %g", got)
	}
}
