package integrator

// RK4Step advances state y at time t by a fixed step h using the classical
// 4-stage Runge-Kutta method. A single reusable step rather than a
// whole-run driver, so that the propagator can interleave stepping with
// per-step event-condition evaluation.
func RK4Step(f Integrable, t, h float64, y []float64) []float64 {
	n := len(y)
	halfStep := h * 0.5

	k1 := make([]float64, n)
	k2 := make([]float64, n)
	k3 := make([]float64, n)
	k4 := make([]float64, n)
	stage := make([]float64, n)

	for i, dy := range f.Func(t, y) {
		k1[i] = dy * h
		stage[i] = y[i] + k1[i]*0.5
	}
	for i, dy := range f.Func(t+halfStep, stage) {
		k2[i] = dy * h
		stage[i] = y[i] + k2[i]*0.5
	}
	for i, dy := range f.Func(t+halfStep, stage) {
		k3[i] = dy * h
		stage[i] = y[i] + k3[i]
	}
	for i, dy := range f.Func(t+h, stage) {
		k4[i] = dy * h
	}

	next := make([]float64, n)
	for i := range y {
		next[i] = y[i] + (k1[i]+2*k2[i]+2*k3[i]+k4[i])/6.0
	}
	return next
}

// Propagate advances y from t0 for n fixed steps of size h, calling
// onStep after every accepted step (t, y) so the caller can check
// termination conditions.
func Propagate(f Integrable, t0 float64, y0 []float64, h float64, n int, onStep func(t float64, y []float64) (stop bool)) (tFinal float64, yFinal []float64) {
	t := t0
	y := append([]float64(nil), y0...)
	for i := 0; i < n; i++ {
		y = RK4Step(f, t, h, y)
		t += h
		if onStep != nil && onStep(t, y) {
			break
		}
	}
	return t, y
}
