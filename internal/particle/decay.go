package particle

import "math"

// SampleLifetime draws a neutron's beta-decay lifetime from an exponential
// distribution with mean NeutronLifetimeMean, given a uniform random draw
// u in [0,1) (§7, stop-code -4). Inverse-CDF sampling: the driver supplies
// u from the particle's own RNG sub-stream (§5's reproducibility
// requirement).
func SampleLifetime(u float64) float64 {
	if u >= 1 {
		u = 1 - 1e-15
	}
	return -NeutronLifetimeMean * math.Log(1-u)
}
