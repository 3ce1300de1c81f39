// Package rng provides the per-particle deterministic random stream §5
// requires: "each particle draws from a Mersenne-Twister-equivalent stream
// seeded deterministically from the global seed and the particle index, so
// that parallel execution gives identical results to sequential."
package rng

import (
	"math"
	"math/rand"
)

// Stream wraps math/rand the same way the teacher's experiment.Experiment
// constructs its single shared stream (rand.New(rand.NewSource(seed))),
// but instantiated once per particle rather than once per run.
type Stream struct {
	r *rand.Rand
}

// New builds a stream seeded from a combination of the run's global seed
// and the particle's index, so sequential and parallel runs draw the same
// numbers for the same particle regardless of scheduling order.
func New(globalSeed int64, particleIndex int) *Stream {
	return &Stream{r: rand.New(rand.NewSource(hashSeed(globalSeed, particleIndex)))}
}

// hashSeed combines the two seed components with a fixed-point mix
// (splitmix64's finalizer) so that adjacent particle indices do not
// produce adjacent, correlated seeds.
func hashSeed(globalSeed int64, idx int) int64 {
	x := uint64(globalSeed) + uint64(idx)*0x9E3779B97F4A7C15
	x ^= x >> 30
	x *= 0xBF58476D1CE4E5B9
	x ^= x >> 27
	x *= 0x94D049BB133111EB
	x ^= x >> 31
	return int64(x)
}

// Float64 returns a uniform draw in [0,1).
func (s *Stream) Float64() float64 { return s.r.Float64() }

// Uniform returns a uniform draw in [lo, hi).
func (s *Stream) Uniform(lo, hi float64) float64 {
	return lo + (hi-lo)*s.r.Float64()
}

// CosineWeighted draws a direction cosine-weighted about a hemisphere
// (Lambert's law), returning cos(theta) where theta is measured from the
// pole — the distribution §4.4's diffuse reflection needs.
func (s *Stream) CosineWeighted() float64 {
	return math.Sqrt(s.r.Float64())
}

// Azimuth draws a uniform azimuthal angle in [0, 2*pi).
func (s *Stream) Azimuth() float64 {
	return s.r.Float64() * 2 * math.Pi
}
