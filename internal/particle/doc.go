// Package particle defines the particle-kind tagged variant, the per-kind
// trajectory equations of motion (dynamo.System), the per-particle record
// the driver mutates across a run, and the §7 stop-code taxonomy.
//
// Dispatch on Kind happens in two places only: Equations.Derive (the
// integrator's right-hand side) and collision.Resolver.Resolve (the surface
// interaction state machine, in the collision package). Everywhere else
// a Particle is just data.
package particle
