// Package dynamo provides the core ODE simulation primitives the
// trajectory integrator, collision resolver, and spin sub-integrator build
// on:
//
//   - [State]: flat six-component position+velocity vector
//   - [System]: interface for ODE systems (dX/dt = Derive(X, u, t))
//   - [Integrator] / [AdaptiveIntegrator] / [DenseIntegrator]: stepping
//     contracts, the last of which returns a [DenseOutput] table
//   - [DenseOutput]: the immutable dense-output table a step produces
//   - [Ensemble]: fan-out across independent particles (§5)
//
// # Thread safety
//
// State, DenseOutput, and Sample values are never mutated after being
// returned by an integrator. One driver.Driver is shared by all particles
// run concurrently via [Ensemble]; each particle owns its own
// State/DenseOutput/RNG and only reads the shared field/geometry/material
// collaborators.
package dynamo
