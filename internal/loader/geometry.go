package loader

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/DillonBusk/pentrack/internal/geom"
	"github.com/DillonBusk/pentrack/internal/material"
)

// LoadGeometry reads the geometry manifest at path: a `BOUNDS xmin ymin
// zmin xmax ymax zmax` line, followed by one line per solid,
// `name stlfile materialname priority [ton toff]`, stlfile resolved
// relative to the manifest's directory. Building a Geometry needs
// materials already resolved by name, so this is the one loader entry
// point that ties the mesh and material tables together.
func LoadGeometry(path string, materials map[string]material.Material) (*geom.Geometry, *material.Registry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()
	return parseGeometry(f, filepath.Dir(path), materials)
}

func parseGeometry(r io.Reader, baseDir string, materials map[string]material.Material) (*geom.Geometry, *material.Registry, error) {
	sc := bufio.NewScanner(r)

	var bounds geom.Box
	haveBounds := false
	registry := material.NewRegistry()
	var tris []geom.Triangle

	var nextSolid material.SolidID
	var nextTriangle material.TriangleID

	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		cols := strings.Fields(line)

		if strings.EqualFold(cols[0], "BOUNDS") {
			if len(cols) != 7 {
				return nil, nil, fmt.Errorf("loader: geometry line %d: BOUNDS wants 6 values", lineNo)
			}
			vals := make([]float64, 6)
			for i := 0; i < 6; i++ {
				v, err := strconv.ParseFloat(cols[i+1], 64)
				if err != nil {
					return nil, nil, fmt.Errorf("loader: geometry line %d: %w", lineNo, err)
				}
				vals[i] = v
			}
			bounds.Min = [3]float64{vals[0], vals[1], vals[2]}
			bounds.Max = [3]float64{vals[3], vals[4], vals[5]}
			haveBounds = true
			continue
		}

		if len(cols) < 4 {
			return nil, nil, fmt.Errorf("loader: geometry line %d has %d columns, want at least 4", lineNo, len(cols))
		}
		name, stlRel, matName := cols[0], cols[1], cols[2]
		priority, err := strconv.Atoi(cols[3])
		if err != nil {
			return nil, nil, fmt.Errorf("loader: geometry line %d priority: %w", lineNo, err)
		}
		var window material.TimeWindow
		if len(cols) >= 6 {
			window.On, err = strconv.ParseFloat(cols[4], 64)
			if err != nil {
				return nil, nil, fmt.Errorf("loader: geometry line %d t_on: %w", lineNo, err)
			}
			window.Off, err = strconv.ParseFloat(cols[5], 64)
			if err != nil {
				return nil, nil, fmt.Errorf("loader: geometry line %d t_off: %w", lineNo, err)
			}
		}

		mat, ok := materials[matName]
		if !ok {
			return nil, nil, fmt.Errorf("loader: geometry line %d: unknown material %q", lineNo, matName)
		}

		facets, err := LoadSTL(filepath.Join(baseDir, stlRel))
		if err != nil {
			return nil, nil, fmt.Errorf("loader: geometry line %d: %w", lineNo, err)
		}

		id := nextSolid
		nextSolid++
		registry.Add(material.Solid{ID: id, Name: name, Material: mat, Priority: priority, Window: window})

		for _, face := range facets {
			tris = append(tris, geom.NewTriangle(face.V0, face.V1, face.V2, id, nextTriangle))
			nextTriangle++
		}
	}
	if err := sc.Err(); err != nil {
		return nil, nil, err
	}
	if !haveBounds {
		return nil, nil, fmt.Errorf("loader: geometry manifest missing BOUNDS line")
	}

	return geom.NewGeometry(tris, registry, bounds), registry, nil
}
