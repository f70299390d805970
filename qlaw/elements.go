package qlaw

import "math"

// computeDeltaCOE returns the signed difference from target for semi-major
// axis, eccentricity, and inclination, and the unsigned angular difference
// (via acos(cos(delta))) for RAAN and argument of periapsis.
func computeDeltaCOE(coe, target elements5) [5]float64 {
	return [5]float64{
		coe[0] - target[0],
		coe[1] - target[1],
		coe[2] - target[2],
		math.Acos(math.Cos(coe[3] - target[3])),
		math.Acos(math.Cos(coe[4] - target[4])),
	}
}

func semiLatusRectum(a, e float64) float64 { return a * (1 - e*e) }

func angularMomentum(p, mu float64) float64 { return math.Sqrt(mu * p) }

func radialDistance(a, e, nu float64) float64 {
	return semiLatusRectum(a, e) / (1 + e*math.Cos(nu))
}

// computeOrbitalElementsMaximalChange returns the maximal achievable
// instantaneous rate of change of each targeted element under a thrust
// acceleration of magnitude thrustAccel, used to normalize the Q-function's
// per-element terms into a common scale.
func (l *Law) computeOrbitalElementsMaximalChange(coe elements5, thrustAccel float64) [5]float64 {
	a, e, i, aop := coe[0], coe[1], coe[2], coe[4]
	mu := l.GravitationalParameter

	p := semiLatusRectum(a, e)
	h := angularMomentum(p, mu)

	e2 := e * e
	aopSin := math.Sin(aop)
	aopCos := math.Cos(aop)

	semiMajorAxisXX := 2 * thrustAccel * math.Sqrt(a*a*a*(1+e)/(mu*(1-e)))

	eccentricityXX := 2 * p * thrustAccel / h

	inclinationXX := (p * thrustAccel) / (h * (math.Sqrt(1-e2*aopSin*aopSin) - e*math.Abs(aopCos)))

	raanXX := (p * thrustAccel) / (h * math.Sin(i) * (math.Sqrt(1-e2*aopCos*aopCos) - e*math.Abs(aopSin)))

	alpha := (1 - e2) / (2 * e * e * e)
	beta := math.Sqrt(alpha*alpha + 1.0/27.0)
	cosThetaXX := math.Cbrt(alpha+beta) - math.Cbrt(beta-alpha) - 1.0/e
	rXX := p / (1 + e*cosThetaXX)
	cosThetaXXSquared := cosThetaXX * cosThetaXX

	aopIXX := (thrustAccel / (e * h)) * math.Sqrt(p*p*cosThetaXXSquared+(p+rXX)*(p+rXX)*(1-cosThetaXXSquared))
	aopOXX := raanXX * math.Abs(math.Cos(i))
	aopXX := (aopIXX + l.Parameters.B*aopOXX) / (1 + l.Parameters.B)

	return [5]float64{semiMajorAxisXX, eccentricityXX, inclinationXX, raanXX, aopXX}
}

// computeQ is the Lyapunov candidate function: a weighted, periapsis- and
// maximal-rate-scaled sum of squared normalized element errors, minimized
// (its gradient descended) by the commanded thrust direction.
func (l *Law) computeQ(coe elements5, thrustAccel float64) float64 {
	a, e := coe[0], coe[1]
	p := l.Parameters

	periapsisRadius := a * (1 - e)
	P := math.Exp(float64(p.K) * (1.0 - periapsisRadius/p.MinimumPeriapsisRadius))
	periapsisScaling := 1.0 + p.PeriapsisWeight*P

	deltaCOE := computeDeltaCOE(coe, l.TargetCOEVector)

	semiMajorAxisScaling := math.Pow(1.0+math.Pow(deltaCOE[0]/(float64(p.M)*l.TargetCOEVector[0]), float64(p.N)), 1.0/float64(p.R))
	scalingCOE := [5]float64{semiMajorAxisScaling, 1, 1, 1, 1}

	maximalCOE := l.computeOrbitalElementsMaximalChange(coe, thrustAccel)

	sum := 0.0
	for idx := 0; idx < 5; idx++ {
		ratio := deltaCOE[idx] / maximalCOE[idx]
		sum += p.ControlWeights[idx] * scalingCOE[idx] * ratio * ratio
	}

	return periapsisScaling * sum
}

// computeDOEdF returns the 5x3 Jacobian of the targeted elements' rates with
// respect to a unit thrust acceleration expressed in the theta-radial-h
// basis (rows: semi-major axis, eccentricity, inclination, RAAN, argument of
// periapsis; columns: theta, radial, h): the classical Gauss planetary
// equations.
func computeDOEdF(coe elements6, mu float64) [5][3]float64 {
	a, e, i, aop, nu := coe[0], coe[1], coe[2], coe[4], coe[5]

	p := semiLatusRectum(a, e)
	h := angularMomentum(p, mu)
	r := radialDistance(a, e, nu)

	sinNu, cosNu := math.Sincos(nu)
	sinNuAop, cosNuAop := math.Sincos(nu + aop)

	var m [5][3]float64

	smaAlpha := 2 * a * a / h
	m[0][0] = smaAlpha * p / r
	m[0][1] = smaAlpha * e * sinNu

	m[1][0] = (((p+r)*cosNu)+r*e) / h
	m[1][1] = p * sinNu / h

	m[2][2] = r * cosNuAop / h

	m[3][2] = (r * sinNuAop) / (h * math.Sin(i))

	aopAlpha := 1.0 / (e * h)
	m[4][0] = (p + r) * sinNu * aopAlpha
	m[4][1] = -p * cosNu * aopAlpha
	m[4][2] = (-r * sinNuAop * math.Cos(i)) / (h * math.Sin(i))

	return m
}
