package integrators

import (
	"math"

	"github.com/DillonBusk/pentrack/internal/dynamo"
)

// bsSequence is the classic Bulirsch-Stoer substep sequence (Deuflhard),
// the number of modified-midpoint substeps tried at each extrapolation
// order before giving up and shrinking the step.
var bsSequence = []int{2, 4, 6, 8, 10, 12, 14, 16}

// BulirschStoer is the alternative trajectory driver §4.3 requires be
// selectable with the same external contract as CashKarp: repeated
// modified-midpoint sub-stepping across the bsSequence orders, Richardson-
// extrapolated to the step's endpoint. It is adapted from the teacher's
// fixed-step RK4 (same ensureScratch/scratch-buffer shape) generalized
// into an adaptive, dense-output-capable driver.
type BulirschStoer struct {
	MinScale, MaxScale float64
	MinDt              float64
	Dxsav              float64

	scratch dynamo.State
}

func NewBulirschStoer(dxsav float64) *BulirschStoer {
	return &BulirschStoer{
		MinScale: 0.1,
		MaxScale: 4.0,
		MinDt:    1e-12,
		Dxsav:    dxsav,
	}
}

func (b *BulirschStoer) ensureScratch(n int) {
	if len(b.scratch) != n {
		b.scratch = make(dynamo.State, n)
	}
}

// modifiedMidpoint integrates dyn from t over a span H using n substeps,
// returning the endpoint state and every intermediate state (for dense
// output) at the substep grid.
func (b *BulirschStoer) modifiedMidpoint(dyn dynamo.System, x dynamo.State, u dynamo.Control, t, H float64, n int) (dynamo.State, []dynamo.State) {
	dim := len(x)
	h := H / float64(n)

	path := make([]dynamo.State, n+1)
	path[0] = x.Clone()

	ym := x.Clone()
	f0 := dyn.Derive(ym, u, t)
	yn := make(dynamo.State, dim)
	for i := 0; i < dim; i++ {
		yn[i] = ym[i] + h*f0[i]
	}
	path[1] = yn.Clone()

	for k := 2; k <= n; k++ {
		fk := dyn.Derive(yn, u, t+float64(k-1)*h)
		next := make(dynamo.State, dim)
		for i := 0; i < dim; i++ {
			next[i] = ym[i] + 2*h*fk[i]
		}
		ym, yn = yn, next
		path[k] = yn.Clone()
	}

	fLast := dyn.Derive(yn, u, t+H)
	endpoint := make(dynamo.State, dim)
	for i := 0; i < dim; i++ {
		endpoint[i] = 0.5 * (ym[i] + yn[i] + h*fLast[i])
	}
	path[n] = endpoint.Clone()

	return endpoint, path
}

// extrapolate runs the modified-midpoint method at increasing order,
// Richardson-extrapolating the results until two successive orders agree
// within tol or the sequence is exhausted.
func (b *BulirschStoer) extrapolate(dyn dynamo.System, x dynamo.State, u dynamo.Control, t, H, tol float64) (dynamo.State, []dynamo.State, bool) {
	dim := len(x)
	var table [][]dynamo.State
	var lastPath []dynamo.State

	for order, n := range bsSequence {
		endpoint, path := b.modifiedMidpoint(dyn, x, u, t, H, n)
		lastPath = path

		row := make([]dynamo.State, order+1)
		row[order] = endpoint
		table = append(table, row)

		// Neville-style extrapolation against every previous order's
		// extrapolated value at this column.
		for j := order - 1; j >= 0; j-- {
			cur := table[order][j+1]
			older := table[order-1][j]
			hRatio := math.Pow(float64(bsSequence[order-j-1])/float64(n), 2)
			extrap := make(dynamo.State, dim)
			for i := 0; i < dim; i++ {
				extrap[i] = cur[i] + (cur[i]-older[i])/(hRatio-1)
			}
			table[order][j] = extrap
		}

		if order > 0 {
			errMax := 0.0
			a, bb := table[order][0], table[order-1][0]
			for i := 0; i < dim; i++ {
				scale := math.Abs(x[i]) + 1e-10
				errMax = math.Max(errMax, math.Abs(a[i]-bb[i])/scale)
			}
			if errMax < tol {
				return a, lastPath, true
			}
		}
	}

	return table[len(table)-1][0], lastPath, false
}

func (b *BulirschStoer) Step(dyn dynamo.System, x dynamo.State, u dynamo.Control, t, dt float64) dynamo.State {
	xNew, _, _ := b.StepAdaptive(dyn, x, u, t, dt, 1e-8)
	return xNew
}

func (b *BulirschStoer) StepAdaptive(dyn dynamo.System, x dynamo.State, u dynamo.Control, t, dt, tol float64) (dynamo.State, float64, error) {
	b.ensureScratch(len(x))

	h := dt
	for {
		xNew, _, converged := b.extrapolate(dyn, x, u, t, h, tol)
		if !converged {
			h *= 0.5
			if h < b.MinDt {
				return nil, 0, &dynamo.SimulationError{Time: t, State: x, Wrapped: dynamo.ErrStepTooSmall}
			}
			continue
		}
		dtNext := math.Min(h*b.MaxScale, dt*b.MaxScale)
		return xNew, dtNext, nil
	}
}

func (b *BulirschStoer) StepDense(dyn dynamo.System, x dynamo.State, u dynamo.Control, t, dt, tol float64, sample func(dynamo.State, float64) (dynamo.State, dynamo.State, float64)) (dynamo.StepResult, error) {
	b.ensureScratch(len(x))

	h := dt
	for {
		xNew, path, converged := b.extrapolate(dyn, x, u, t, h, tol)
		if !converged {
			h *= 0.5
			if h < b.MinDt {
				return dynamo.StepResult{}, &dynamo.SimulationError{Time: t, State: x, Wrapped: dynamo.ErrStepTooSmall}
			}
			continue
		}

		n := len(path) - 1
		step := hermiteNodeCount(h, b.Dxsav)
		samples := make([]dynamo.Sample, 0, step+1)
		for k := 0; k <= step; k++ {
			frac := float64(k) / float64(step)
			idx := int(frac * float64(n))
			if idx > n {
				idx = n
			}
			yk := path[idx].Clone()
			if idx == n {
				yk = xNew.Clone()
			}
			tk := t + frac*h
			bx, ex, v := dynamo.State(nil), dynamo.State(nil), 0.0
			if sample != nil {
				bx, ex, v = sample(yk, tk)
			}
			samples = append(samples, dynamo.Sample{T: tk, Y: yk, Bx: bx, Ex: ex, V: v})
		}

		return dynamo.StepResult{
			X:        xNew,
			DtActual: h,
			DtNext:   math.Min(h*b.MaxScale, dt*b.MaxScale),
			Dense:    dynamo.DenseOutput{Samples: samples},
			Accepted: true,
		}, nil
	}
}
