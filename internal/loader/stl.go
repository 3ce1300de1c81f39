package loader

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/DillonBusk/pentrack/internal/spatial"
)

// Facet is one triangle read from an ASCII STL mesh, before it is tagged
// with an owning solid ID.
type Facet struct {
	V0, V1, V2 spatial.Vec3
}

// LoadSTL reads an ASCII STL file's facets. Binary STL is not handled —
// the reference meshes this module was built against ship ASCII.
func LoadSTL(path string) ([]Facet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return parseSTL(f)
}

func parseSTL(r io.Reader) ([]Facet, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	var facets []Facet
	var verts []spatial.Vec3

	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		switch {
		case strings.HasPrefix(line, "vertex"):
			v, err := parseVertex(line)
			if err != nil {
				return nil, err
			}
			verts = append(verts, v)
		case strings.HasPrefix(line, "endfacet"):
			if len(verts) != 3 {
				return nil, fmt.Errorf("loader: facet with %d vertices, want 3", len(verts))
			}
			facets = append(facets, Facet{V0: verts[0], V1: verts[1], V2: verts[2]})
			verts = verts[:0]
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return facets, nil
}

func parseVertex(line string) (spatial.Vec3, error) {
	fields := strings.Fields(line)
	if len(fields) < 4 {
		return spatial.Vec3{}, fmt.Errorf("loader: malformed vertex line %q", line)
	}
	var v spatial.Vec3
	for i := 0; i < 3; i++ {
		x, err := strconv.ParseFloat(fields[i+1], 64)
		if err != nil {
			return spatial.Vec3{}, fmt.Errorf("loader: vertex component %d: %w", i, err)
		}
		v[i] = x
	}
	return v, nil
}
