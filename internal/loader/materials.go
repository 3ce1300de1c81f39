package loader

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/DillonBusk/pentrack/internal/material"
)

// LoadMaterials reads the material table: one row per material, columns
// `name fermi_real fermi_imag diff_prob roughness_b roughness_w
// absorption_cross_section vacuum_like`, vacuum_like as 0/1. Blank lines
// and lines starting with '#' are skipped.
func LoadMaterials(path string) (map[string]material.Material, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return parseMaterials(f)
}

func parseMaterials(r io.Reader) (map[string]material.Material, error) {
	sc := bufio.NewScanner(r)
	out := map[string]material.Material{"vacuum": material.Vacuum}

	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		cols := strings.Fields(line)
		if len(cols) < 8 {
			return nil, fmt.Errorf("loader: materials line %d has %d columns, want 8", lineNo, len(cols))
		}
		vals := make([]float64, 6)
		for i := 0; i < 6; i++ {
			v, err := strconv.ParseFloat(cols[i+1], 64)
			if err != nil {
				return nil, fmt.Errorf("loader: materials line %d col %d: %w", lineNo, i+1, err)
			}
			vals[i] = v
		}
		vacuumLike, err := strconv.ParseBool(cols[7])
		if err != nil {
			return nil, fmt.Errorf("loader: materials line %d vacuum_like: %w", lineNo, err)
		}
		out[cols[0]] = material.Material{
			Name:                   cols[0],
			FermiReal:              vals[0],
			FermiImag:              vals[1],
			DiffProb:               vals[2],
			RoughnessB:             vals[3],
			RoughnessW:             vals[4],
			AbsorptionCrossSection: vals[5],
			VacuumLike:             vacuumLike,
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
