package particle

// Physical constants, SI units throughout (§3's particle-kind masses,
// charges, magnetic moment; §4.3's gravity term), taken from the reference
// implementation's CODATA values rather than re-derived.
const (
	GravAccel = 9.80665 // m/s^2

	NeutronMass = 1.674927211e-27 // kg
	ProtonMass  = 1.672621637e-27 // kg
	ElectronMass = 9.10938215e-31 // kg

	ElementaryCharge = 1.602176487e-19 // C
	ProtonCharge     = ElementaryCharge
	ElectronCharge   = -ElementaryCharge

	// MuN is the magnitude of the neutron's magnetic moment, J/T; the sign
	// of the magnetic force is carried separately by the particle's spin
	// state (high-field seeker vs low-field seeker), per §4.3: "sign
	// flipped by spin state".
	MuN = 0.96623641e-26

	HBar = 1.05457266e-34 // J*s

	// GyromagneticRatio is 2*MuN/HBar, the factor in the Bloch equation
	// dS/dt = GyromagneticRatio * (S x B) for a spin-1/2 magnetic moment.
	GyromagneticRatio = 2 * MuN / HBar

	SpeedOfLight = 299792458.0 // m/s

	// NeutronLifetimeMean is tau, the mean free beta-decay lifetime (§7,
	// stop-code -4).
	NeutronLifetimeMean = 885.7 // s
)
