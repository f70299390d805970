package integrator

import "math"

// RKF78 is an adaptive Runge-Kutta-Fehlberg 7(8) stepper: a 13-stage
// embedded pair producing both a 7th- and 8th-order estimate per step, used
// to control step size against a tolerance. Structured like
// rk4.go: a single reusable step, no internal run-loop, so the propagator
// can interleave stepping with event-condition bisection.
type RKF78 struct {
	// AbsTol and RelTol bound the per-component local error estimate.
	AbsTol, RelTol float64
	// SafetyFactor shrinks the proposed next step below the theoretical
	// optimum to avoid oscillating between accept/reject.
	SafetyFactor float64
	// MinStep and MaxStep bound the step size the controller may propose.
	MinStep, MaxStep float64
}

// NewRKF78 returns an RKF78 with the given tolerances plus conventional
// safety-factor/step-bound defaults.
func NewRKF78(absTol, relTol float64) RKF78 {
	return RKF78{AbsTol: absTol, RelTol: relTol, SafetyFactor: 0.9, MinStep: 1e-6, MaxStep: 3600}
}

// fehlbergNodes are the 13 stage time fractions c_i.
var fehlbergNodes = [13]float64{
	0, 2.0 / 27, 1.0 / 9, 1.0 / 6, 5.0 / 12, 0.5, 5.0 / 6, 1.0 / 6, 2.0 / 3, 1.0 / 3, 1, 0, 1,
}

// fehlbergA is the lower-triangular stage-coupling matrix a_{ij}.
var fehlbergA = [13][12]float64{
	{},
	{2.0 / 27},
	{1.0 / 36, 1.0 / 12},
	{1.0 / 24, 0, 1.0 / 8},
	{5.0 / 12, 0, -25.0 / 16, 25.0 / 16},
	{1.0 / 20, 0, 0, 1.0 / 4, 1.0 / 5},
	{-25.0 / 108, 0, 0, 125.0 / 108, -65.0 / 27, 125.0 / 54},
	{31.0 / 300, 0, 0, 0, 61.0 / 225, -2.0 / 9, 13.0 / 900},
	{2, 0, 0, -53.0 / 6, 704.0 / 45, -107.0 / 9, 67.0 / 90, 3},
	{-91.0 / 108, 0, 0, 23.0 / 108, -976.0 / 135, 311.0 / 54, -19.0 / 60, 17.0 / 6, -1.0 / 12},
	{2383.0 / 4100, 0, 0, -341.0 / 164, 4496.0 / 1025, -301.0 / 82, 2133.0 / 4100, 45.0 / 82, 45.0 / 164, 18.0 / 41},
	{3.0 / 205, 0, 0, 0, 0, -6.0 / 41, -3.0 / 205, -3.0 / 41, 3.0 / 41, 6.0 / 41, 0},
	{-1777.0 / 4100, 0, 0, -341.0 / 164, 4496.0 / 1025, -289.0 / 82, 2193.0 / 4100, 51.0 / 82, 33.0 / 164, 12.0 / 41, 0, 1},
}

// fehlbergB8 are the 8th-order solution weights.
var fehlbergB8 = [13]float64{
	0, 0, 0, 0, 0, 34.0 / 105, 9.0 / 35, 9.0 / 35, 9.0 / 280, 9.0 / 280, 0, 41.0 / 840, 41.0 / 840,
}

// fehlbergB7 are the 7th-order solution weights, used only to form the
// error estimate b8 - b7.
var fehlbergB7 = [13]float64{
	41.0 / 840, 0, 0, 0, 0, 34.0 / 105, 9.0 / 35, 9.0 / 35, 9.0 / 280, 9.0 / 280, 41.0 / 840, 0, 0,
}

// Step attempts one adaptive step from (t, y) with trial step h. If the
// local error estimate is within tolerance, it returns accepted=true, the
// advanced state, and a proposed next step size; otherwise accepted=false
// and a shrunk step size to retry with.
func (r RKF78) Step(f Integrable, t, h float64, y []float64) (yNext []float64, hUsed, hNext float64, accepted bool, err error) {
	n := len(y)
	var stages [13][]float64
	stage := make([]float64, n)

	for s := 0; s < 13; s++ {
		for i := 0; i < n; i++ {
			sum := y[i]
			for j := 0; j < s; j++ {
				sum += h * fehlbergA[s][j] * stages[j][i]
			}
			stage[i] = sum
		}
		stages[s] = f.Func(t+fehlbergNodes[s]*h, append([]float64(nil), stage...))
	}

	y8 := make([]float64, n)
	y7 := make([]float64, n)
	for i := 0; i < n; i++ {
		var sum8, sum7 float64
		for s := 0; s < 13; s++ {
			sum8 += fehlbergB8[s] * stages[s][i]
			sum7 += fehlbergB7[s] * stages[s][i]
		}
		y8[i] = y[i] + h*sum8
		y7[i] = y[i] + h*sum7
	}

	errNorm := r.weightedErrorNorm(y, y8, y7)

	const order = 7.0
	if errNorm <= 1.0 {
		factor := r.SafetyFactor * math.Pow(1.0/math.Max(errNorm, 1e-12), 1.0/(order+1))
		factor = math.Min(math.Max(factor, 0.2), 5.0)
		proposed := h * factor
		proposed = math.Min(math.Max(proposed, r.MinStep), r.MaxStep)
		return y8, h, proposed, true, nil
	}

	factor := r.SafetyFactor * math.Pow(1.0/errNorm, 1.0/order)
	factor = math.Max(factor, 0.1)
	shrunk := math.Max(h*factor, r.MinStep)
	return nil, h, shrunk, false, nil
}

// weightedErrorNorm returns the RMS of the per-component error scaled by
// the absolute/relative tolerance blend, so 1.0 is the accept/reject
// boundary.
func (r RKF78) weightedErrorNorm(y, y8, y7 []float64) float64 {
	var sumSq float64
	for i := range y {
		scale := r.AbsTol + r.RelTol*math.Max(math.Abs(y[i]), math.Abs(y8[i]))
		if scale == 0 {
			scale = r.AbsTol
		}
		e := (y8[i] - y7[i]) / scale
		sumSq += e * e
	}
	return math.Sqrt(sumSq / float64(len(y)))
}
