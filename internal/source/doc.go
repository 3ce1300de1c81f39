// Package source samples particle initial state from a configured volume
// and energy/angle distribution (§6: "internal/source samples initial
// particle state from a configured volume + energy/angle distribution").
// It contains no physics of its own beyond basic kinematics — the driver
// and its collaborators own everything that happens after t0.
package source
