// Package integrators provides the adaptive-stepsize ODE drivers the
// trajectory integrator and spin sub-integrator share (§4.3, §4.5).
//
// [CashKarp] is the primary driver: an embedded fifth-order Runge-Kutta
// (Cash-Karp coefficients) with adaptive stepsize control and dense output
// at a configurable cadence. [BulirschStoer] is the alternative driver
// §4.3 requires be selectable with an identical external contract
// (dynamo.DenseIntegrator); it is a polynomial-extrapolation method built
// on repeated modified-midpoint sub-stepping instead of RK stages.
//
// Both report a dynamo.StepResult whose Dense table is what the collision
// resolver rewinds into and the spin tracker reads B(t) from — neither
// integrator keeps any mutable state between calls to Step/StepAdaptive/
// StepDense other than scratch buffers sized to the state dimension.
package integrators
