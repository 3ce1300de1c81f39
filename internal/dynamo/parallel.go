package dynamo

import (
	"context"
	"sync"
)

// Ensemble runs numRuns independent units of work concurrently, each given
// its own index and a deterministically derived seed (seedStart+idx).
// Originally this ran N parameterized reruns of one dynamo.Simulator; here
// it is retargeted to the particle driver's actual concurrency shape from
// §5 — N independent particles sharing one immutable field/geometry/material
// world — so it takes a plain run function instead of a Simulator, and the
// caller (driver.Pool) owns constructing each particle's own state,
// dense-output buffers, and RNG substream.
type Ensemble struct {
	numRuns   int
	seedStart int64
}

func NewEnsemble(numRuns int, seedStart int64) *Ensemble {
	return &Ensemble{numRuns: numRuns, seedStart: seedStart}
}

// Run invokes fn(ctx, idx, seed) for every idx in [0, numRuns), concurrently,
// and returns the first error encountered (if any) after all goroutines
// finish. fn must not share mutable state across calls other than through
// caller-provided read-only collaborators.
func (e *Ensemble) Run(ctx context.Context, fn func(ctx context.Context, idx int, seed int64) error) error {
	errs := make([]error, e.numRuns)

	var wg sync.WaitGroup
	for i := 0; i < e.numRuns; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			errs[idx] = fn(ctx, idx, e.seedStart+int64(idx))
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// ParallelFor executes a function in parallel over a range [0, n)
func ParallelFor(n, minChunk int, fn func(start, end int)) {
	numWorkers := 4 // Default
	if n <= minChunk || numWorkers <= 1 {
		fn(0, n)
		return
	}

	workers := numWorkers
	if n/minChunk < workers {
		workers = n / minChunk
	}
	if workers < 1 {
		workers = 1
	}

	chunkSize := (n + workers - 1) / workers

	var wg sync.WaitGroup
	wg.Add(workers)

	for w := 0; w < workers; w++ {
		start := w * chunkSize
		end := start + chunkSize
		if end > n {
			end = n
		}

		go func(s, e int) {
			defer wg.Done()
			fn(s, e)
		}(start, end)
	}

	wg.Wait()
}
