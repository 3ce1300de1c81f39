package loader

import (
	"os"
	"path/filepath"
	"testing"
)

const testSTL = `solid box
facet normal 0 0 1
outer loop
vertex 0 0 0
vertex 1 0 0
vertex 0 1 0
endloop
endfacet
endsolid box
`

func TestLoadSTL(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "box.stl")
	if err := os.WriteFile(path, []byte(testSTL), 0644); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	facets, err := LoadSTL(path)
	if err != nil {
		t.Fatalf("LoadSTL failed: %v", err)
	}
	if len(facets) != 1 {
		t.Fatalf("expected 1 facet, got %d", len(facets))
	}
	if facets[0].V1[0] != 1 {
		t.Errorf("expected V1.x == 1, got %f", facets[0].V1[0])
	}
}

func TestLoadMaterials(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "materials.in")
	content := "# name fr fi diff rb rw abs vacuum\nsteel 180 0 0.2 0 0 0 false\nair 0 0 0 0 0 0 true\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	mats, err := LoadMaterials(path)
	if err != nil {
		t.Fatalf("LoadMaterials failed: %v", err)
	}
	steel, ok := mats["steel"]
	if !ok {
		t.Fatal("expected steel material")
	}
	if steel.FermiReal != 180 {
		t.Errorf("expected FermiReal 180, got %f", steel.FermiReal)
	}
	if _, ok := mats["vacuum"]; !ok {
		t.Error("expected vacuum to always be present")
	}
}

func TestLoadGeometry(t *testing.T) {
	dir := t.TempDir()
	stlPath := filepath.Join(dir, "box.stl")
	if err := os.WriteFile(stlPath, []byte(testSTL), 0644); err != nil {
		t.Fatalf("write stl failed: %v", err)
	}

	matPath := filepath.Join(dir, "materials.in")
	if err := os.WriteFile(matPath, []byte("steel 180 0 0.2 0 0 0 false\n"), 0644); err != nil {
		t.Fatalf("write materials failed: %v", err)
	}
	materials, err := LoadMaterials(matPath)
	if err != nil {
		t.Fatalf("LoadMaterials failed: %v", err)
	}

	geomPath := filepath.Join(dir, "geometry.in")
	manifest := "BOUNDS -1 -1 -1 1 1 1\nbox box.stl steel 1\n"
	if err := os.WriteFile(geomPath, []byte(manifest), 0644); err != nil {
		t.Fatalf("write geometry failed: %v", err)
	}

	g, registry, err := LoadGeometry(geomPath, materials)
	if err != nil {
		t.Fatalf("LoadGeometry failed: %v", err)
	}
	if g == nil || registry == nil {
		t.Fatal("expected non-nil geometry and registry")
	}
	if _, ok := registry.Get(0); !ok {
		t.Error("expected solid 0 registered")
	}
}

func TestLoadGeometryMissingBounds(t *testing.T) {
	dir := t.TempDir()
	geomPath := filepath.Join(dir, "geometry.in")
	if err := os.WriteFile(geomPath, []byte("box box.stl steel 1\n"), 0644); err != nil {
		t.Fatalf("write geometry failed: %v", err)
	}
	if _, _, err := LoadGeometry(geomPath, nil); err == nil {
		t.Error("expected an error for a manifest missing BOUNDS")
	}
}
