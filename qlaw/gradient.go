package qlaw

import "math"

// computeDQdOE dispatches to the analytical closed form or the numerical
// central-difference fallback per l.Strategy.
func (l *Law) computeDQdOE(coe elements5, thrustAccel float64) ([5]float64, error) {
	if l.Strategy == Analytical {
		return l.computeAnalyticalDQdOE(coe, thrustAccel), nil
	}
	return l.computeNumericalDQdOE(coe, thrustAccel), nil
}

// numericalDifferenceStep is the central-difference step applied uniformly
// across all five elements.
const numericalDifferenceStep = 1e-3

// computeNumericalDQdOE computes dQ/dOE by central finite differences of
// computeQ.
func (l *Law) computeNumericalDQdOE(coe elements5, thrustAccel float64) [5]float64 {
	var grad [5]float64
	for idx := 0; idx < 5; idx++ {
		plus := coe
		plus[idx] += numericalDifferenceStep
		minus := coe
		minus[idx] -= numericalDifferenceStep
		grad[idx] = (l.computeQ(plus, thrustAccel) - l.computeQ(minus, thrustAccel)) / (2 * numericalDifferenceStep)
	}
	return grad
}

// signStrict is C++'s (x > 0) - (x < 0): +1, -1, or 0 exactly at zero,
// distinct from astrocore.Sign's "treat zero as positive" convention used
// for direction disambiguation elsewhere.
func signStrict(x float64) float64 {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	default:
		return 0
	}
}

func finiteOrZero(x float64) float64 {
	if math.IsInf(x, 0) || math.IsNaN(x) {
		return 0
	}
	return x
}

// computeAnalyticalDQdOE is the closed-form gradient of computeQ with
// respect to the five targeted elements, in the machine-generated
// common-subexpression form (x0..x125) emitted by the symbolic
// differentiation of Q.
func (l *Law) computeAnalyticalDQdOE(coe elements5, thrustAccel float64) [5]float64 {
	a, e, i, raan, aop := coe[0], coe[1], coe[2], coe[3], coe[4]
	aT, eT, iT, raanT, aopT := l.TargetCOEVector[0], l.TargetCOEVector[1], l.TargetCOEVector[2], l.TargetCOEVector[3], l.TargetCOEVector[4]

	wA := l.Parameters.ControlWeights[0]
	wE := l.Parameters.ControlWeights[1]
	wI := l.Parameters.ControlWeights[2]
	wRaan := l.Parameters.ControlWeights[3]
	wAop := l.Parameters.ControlWeights[4]

	periapsisWeight := l.Parameters.PeriapsisWeight
	minimumPeriapsisRadius := l.Parameters.MinimumPeriapsisRadius
	m := float64(l.Parameters.M)
	n := float64(l.Parameters.N)
	r := float64(l.Parameters.R)
	b := l.Parameters.B
	k := float64(l.Parameters.K)
	mu := l.GravitationalParameter

	x0 := 1.0 / minimumPeriapsisRadius
	x1 := e - 1.0
	x2 := x0 * x1
	x3 := e - eT
	x4 := wE * x3 * x3
	x5 := 1.0 / a
	x6 := e * e
	x7 := x6 - 1.0
	x8 := 1.0 / x7
	x9 := x5 * x8
	x10 := a - aT
	x11 := x10 * x10
	x12 := 1.0 / (a * a * a)
	x13 := e + 1.0
	x14 := 1.0 / x13
	x15 := math.Pow(x10/(m*aT), n)
	x16 := x15 + 1.0
	x17 := 1.0 / r
	x18 := math.Pow(x16, x17)
	x19 := wA * x12 * x14 * x18
	x20 := x11 * x19
	x21 := 4.0 * x9
	x22 := i - iT
	x23 := x22 * x22
	x24 := math.Cos(aop)
	x25 := math.Abs(x24)
	x26 := math.Sin(aop)
	x27 := x26 * x26
	x28 := math.Sqrt(-x27*x6 + 1.0)
	x29 := e*x25 - x28
	x30 := wI * x29 * x29
	x31 := x23 * x30
	x32 := math.Abs(x26)
	x33 := x24 * x24
	x34 := math.Sqrt(-x33*x6 + 1.0)
	x35 := e*x32 - x34
	x36 := x35 * x35
	x37 := raan - raanT
	x38 := math.Cos(x37)
	x39 := math.Acos(x38)
	x40 := x39 * x39
	x41 := math.Sin(i)
	x42 := x41 * x41
	x43 := wRaan * x40 * x42
	x44 := x36 * x43
	x45 := a * x7
	x46 := (b + 1.0) * (b + 1.0)
	x47 := 1.0 / x35
	x48 := math.Cos(i)
	x49 := math.Abs(x48)
	x50 := b * x49 / x41
	x51 := 1.0 / e
	x52 := -x7
	x53 := x52 / (e * e * e)
	x54 := math.Sqrt(0.14814814814814814 + (x52*x52)/(e*e*e*e*e*e))
	x55 := x53 + x54
	x56 := math.Max(0.0, -x53+x54)
	x57 := x51 - 0.79370052598409979*math.Cbrt(x55) + 0.79370052598409979*math.Cbrt(x56)
	x58 := -x57
	x59 := x58 * x58
	x60 := x59 - 1.0
	x61 := math.Abs(a)
	x62 := math.Abs(x7)
	x63 := x51 * x61 * x62
	x64 := x45*x47*x50 + x63*math.Sqrt(x57*x57-x60*(1.0+1.0/(-e*x57+1.0))*(1.0+1.0/(-e*x57+1.0)))
	x65 := 1.0 / (x64 * x64)
	x66 := aop - aopT
	x67 := math.Cos(x66)
	x68 := math.Acos(x67)
	x69 := x68 * x68
	x70 := 4.0 * x69
	x71 := periapsisWeight * math.Exp(k*(a*x2+1.0))
	x72 := k * x71 * (wAop*x45*x46*x65*x70 + x1*x20 + x21*x31 + x21*x44 + x4*x9)
	x73 := x71 + 1.0
	x74 := mu * x4
	x75 := a * a
	x76 := 1.0 / x52
	x77 := x76 / x75
	x78 := -x1
	x79 := mu * x10 * x19 * x78
	x80 := wI * x23
	x81 := 4.0 * mu * x77
	x82 := mu * wA * x11 * x18
	x83 := -x35
	x84 := x83 * x83
	x85 := x50 / x83
	x86 := x52 * x85
	x87 := -x60
	x88 := e*x58 + 1.0
	x89 := 1.0 / x88
	x90 := x89 + 1.0
	x91 := x90 * x90
	x92 := math.Sqrt(x59 + x87*x91)
	x93 := x51 * x52 / (x61 * x62 * x92)
	x94 := 2.0 * a
	x95 := mu * a
	x96 := x52 * x95
	x97 := wAop * x46 * x70
	x98 := 1.0 / (thrustAccel * thrustAccel)
	x99 := 0.25 * x98
	x100 := mu * x9
	x101 := 2.0 * e
	x102 := x7 * x7
	x103 := x5 / x102
	x104 := e * mu
	x105 := 8.0 * x103 * x104
	x106 := e / x28
	x107 := 8.0 * x100
	x108 := e / x34
	x109 := x108*x33 + x32
	x110 := x35 * x43
	x111 := 1.0 / (x64 * x64 * x64)
	x112 := 1.0 / x6
	x113 := 2.0 * x61 * x62 * x92
	x114 := x112 * x52
	x115 := (1.0 / 3.0) * x53 * (3.0*x114+2.0) / x54
	x116 := x112*(1.0-1.0*x6) + (2.0 / 3.0)
	x117 := math.Pow(x55, -(2.0/3.0)) * (x115 + x116)
	x118 := math.Pow(math.Max(x56, 1e-15), -(2.0/3.0)) * (-x115 + x116)
	x119 := -1.5874010519681996*x117 - 1.5874010519681996*x118 + 2.0
	x120 := wRaan * x100 * x36
	x121 := wAop * x102 * x111 * x46 * x69 * x75
	x122 := 2.0 * x73 * x98
	x123 := x24 * (x108*x26 - signStrict(x26))

	dQdSemiMajorAxis := -x99 * (mu*x2*x72 + x73*(-n*x15*x17*x79/x16+math.Pow(x29, 2.0)*x80*x81+x43*x81*x84+x74*x77-2.0*x79-
		x96*x97*(x5*x51*x61*x62*x92-x86-x93*x94*(x52*x59+x87*x90*(x52*x89-x6+1.0)))/math.Pow(a*x86+x63*x92, 3.0)+
		3.0*x14*x78*x82/math.Pow(a, 4.0)))

	dQdEccentricity := -x99 * (x0*x72*x95 + x73*(2.0*wE*x100*x3+mu*x20-x1*x12*x82/(x13*x13)-
		x101*x103*x74-x105*x31-x105*x44+x107*x109*x110+x107*x29*x80*(x106*x27+x25)+
		x111*x97*math.Pow(-x7*x95, 1.5)*(-a*x101*x85+x109*x50*x52*x94/x84-x112*x113+x113*x76+
			x75*x93*(-4.0*e*x59+x112*x119*x52*x58-x114*x119*x58*x91+
				2.0*x87*x90*(-x101*x89-x101+x52*(-x51*(-0.79370052598409979*x117-0.79370052598409979*x118+1.0)+x57)/(x88*x88))))/
		math.Sqrt(x96)))

	dQdInclination := -x122 * (mu*b*x121*x47*(signStrict(x48)+x48*x49/x42) + x100*x22*x30 + x120*x40*x41*x48)

	x124 := finiteOrZero(math.Sin(x37) / math.Sqrt(1.0-x38*x38))
	dQdRightAscensionOfAscendingNode := -x120 * x122 * x39 * x42 * x124

	x125 := finiteOrZero(math.Sin(x66) / math.Sqrt(1.0-x67*x67))
	dQdArgumentOfPeriapsis := -x122 * (wAop*mu*a*x46*x65*x68*x7*x125 +
		e*wI*mu*x23*x26*x29*x5*x8*(x106*x24-signStrict(x24)) -
		e*x100*x110*x123 - x104*x121*x123*x50/x36)

	return [5]float64{dQdSemiMajorAxis, dQdEccentricity, dQdInclination, dQdRightAscensionOfAscendingNode, dQdArgumentOfPeriapsis}
}

// computeDQnDt evaluates the rate of change of Q along a candidate thrust
// direction expressed in the theta-radial-h basis, maximized over thrust
// cone angle (alpha*, beta*).
func computeDQnDt(direction [3]float64) float64 {
	if direction == ([3]float64{}) {
		return 0
	}
	alphaStar := math.Atan2(-direction[1], -direction[0])
	betaStar := math.Atan(-direction[2] / math.Sqrt(direction[0]*direction[0]+direction[1]*direction[1]))
	return direction[0]*math.Cos(alphaStar)*math.Cos(betaStar) +
		direction[1]*math.Sin(alphaStar)*math.Cos(betaStar) +
		direction[2]*math.Sin(betaStar)
}

// computeEffectivity returns (etaAbsolute, etaRelative): how effective the
// current true anomaly is at reducing Q relative to the best and worst true
// anomalies on the orbit. The caller binds these names directly
// (etaAbsolute first, etaRelative second): only that binding keeps both
// ratios in [0, 1] when dQdt_n lies between the grid minimum and maximum.
func (l *Law) computeEffectivity(coeVector elements6, currentThrustDirection [3]float64, dQdOE [5]float64) (etaAbsolute, etaRelative float64) {
	dQdt := make([]float64, len(l.trueAnomalyGrid))
	for idx, nu := range l.trueAnomalyGrid {
		sample := coeVector
		sample[5] = nu
		dOEdF := computeDOEdF(sample, l.GravitationalParameter)
		direction := dQdOEtimesDerivative(dQdOE, dOEdF)
		dQdt[idx] = computeDQnDt(direction)
	}

	dQnDt := computeDQnDt(currentThrustDirection)
	dQnnDt, dQnxDt := dQdt[0], dQdt[0]
	for _, v := range dQdt {
		if v < dQnnDt {
			dQnnDt = v
		}
		if v > dQnxDt {
			dQnxDt = v
		}
	}

	etaAbsolute = dQnDt / dQnnDt
	etaRelative = (dQnDt - dQnxDt) / (dQnnDt - dQnxDt)
	return
}
