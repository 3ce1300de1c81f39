package collision

import "github.com/DillonBusk/pentrack/internal/material"

// AbsorbResponse implements §4.4's proton/electron surface rule: absorbed
// on first contact with any non-vacuum material.
func AbsorbResponse(m material.Material) bool {
	return !m.VacuumLike
}
