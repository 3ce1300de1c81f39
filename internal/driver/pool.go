package driver

import (
	"context"

	"github.com/DillonBusk/pentrack/internal/dynamo"
	"github.com/DillonBusk/pentrack/internal/particle"
	"github.com/DillonBusk/pentrack/internal/rng"
)

// Pool fans a Driver out across independent particles, using the
// teacher's dynamo.Ensemble concurrency shape (§5: particles are
// independent, field/geometry are read-only-safe after construction).
type Pool struct {
	Driver     *Driver
	GlobalSeed int64
}

func NewPool(d *Driver, globalSeed int64) *Pool {
	return &Pool{Driver: d, GlobalSeed: globalSeed}
}

// Run drives every particle in particles to termination concurrently.
// Each particle's RNG sub-stream is seeded from (GlobalSeed, particle
// index) regardless of scheduling order, so parallel and sequential runs
// are bit-identical (§5). A canceled ctx stops any particle that hasn't
// started yet from starting; particles already mid-flight still run to
// their own termination, since Driver.Run has no cancellation checkpoint
// inside its step loop.
func (p *Pool) Run(ctx context.Context, particles []*particle.Particle) error {
	ensemble := dynamo.NewEnsemble(len(particles), p.GlobalSeed)
	return ensemble.Run(ctx, func(ctx context.Context, idx int, _ int64) error {
		if err := ctx.Err(); err != nil {
			return &dynamo.SimulationError{Wrapped: dynamo.ErrContextCanceled}
		}
		stream := rng.New(p.GlobalSeed, particles[idx].Index)
		p.Driver.Run(particles[idx], stream)
		return nil
	})
}
