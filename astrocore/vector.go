package astrocore

import (
	"math"

	"gonum.org/v1/gonum/floats/scalar"
	"gonum.org/v1/gonum/mat"
)

const (
	deg2rad = math.Pi / 180
	rad2deg = 1 / deg2rad
)

// Norm returns the Euclidean norm of a 3-vector.
func Norm(v []float64) float64 {
	return math.Sqrt(v[0]*v[0] + v[1]*v[1] + v[2]*v[2])
}

// Unit returns the unit vector of a, or the zero vector if a is (near) zero.
func Unit(a []float64) []float64 {
	n := Norm(a)
	if scalar.EqualWithinAbs(n, 0, 1e-12) {
		return make([]float64, len(a))
	}
	b := make([]float64, len(a))
	for i, val := range a {
		b[i] = val / n
	}
	return b
}

// Sign returns the sign of v, treating (near) zero as positive.
func Sign(v float64) float64 {
	if scalar.EqualWithinAbs(v, 0, 1e-12) {
		return 1
	}
	return v / math.Abs(v)
}

// Dot performs the inner product of two equal-length vectors.
func Dot(a, b []float64) float64 {
	return mat.Dot(mat.NewVecDense(len(a), a), mat.NewVecDense(len(b), b))
}

// Cross performs the 3-vector cross product a x b.
func Cross(a, b []float64) []float64 {
	return []float64{
		a[1]*b[2] - a[2]*b[1],
		a[2]*b[0] - a[0]*b[2],
		a[0]*b[1] - a[1]*b[0],
	}
}

// Deg2rad converts degrees to radians, wrapped into [0, 2*pi).
func Deg2rad(a float64) float64 {
	if a < 0 {
		a += 360
	}
	return math.Mod(a*deg2rad, 2*math.Pi)
}

// Rad2deg converts radians to degrees, wrapped into [0, 360).
func Rad2deg(a float64) float64 {
	if a < 0 {
		a += 2 * math.Pi
	}
	return math.Mod(a/deg2rad, 360)
}

// WrapTwoPi normalizes an angle in radians into [0, 2*pi).
func WrapTwoPi(a float64) float64 {
	a = math.Mod(a, 2*math.Pi)
	if a < 0 {
		a += 2 * math.Pi
	}
	return a
}

// DenseIdentity returns an n x n identity matrix.
func DenseIdentity(n int) *mat.Dense {
	d := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		d.Set(i, i, 1)
	}
	return d
}

// R1 is a rotation matrix about the first axis by x radians.
func R1(x float64) *mat.Dense {
	s, c := math.Sincos(x)
	return mat.NewDense(3, 3, []float64{1, 0, 0, 0, c, s, 0, -s, c})
}

// R2 is a rotation matrix about the second axis by x radians.
func R2(x float64) *mat.Dense {
	s, c := math.Sincos(x)
	return mat.NewDense(3, 3, []float64{c, 0, -s, 0, 1, 0, s, 0, c})
}

// R3 is a rotation matrix about the third axis by x radians.
func R3(x float64) *mat.Dense {
	s, c := math.Sincos(x)
	return mat.NewDense(3, 3, []float64{c, s, 0, -s, c, 0, 0, 0, 1})
}

// R3R1R3 performs a 3-1-3 Euler-angle rotation, returning
// R3(theta3)*R1(theta2)*R3(theta1). Used by COE's perifocal-to-inertial
// transform (R_z(-Omega)*R_x(-i)*R_z(-omega) is expressed by the caller as
// R3R1R3(-omega, -i, -Omega)).
func R3R1R3(theta1, theta2, theta3 float64) *mat.Dense {
	s1, c1 := math.Sincos(theta1)
	s2, c2 := math.Sincos(theta2)
	s3, c3 := math.Sincos(theta3)
	return mat.NewDense(3, 3, []float64{
		c3*c1 - s3*c2*s1, c3*s1 + s3*c2*c1, s3 * s2,
		-s3*c1 - c3*c2*s1, -s3*s1 + c3*c2*c1, c3 * s2,
		s2 * s1, -s2 * c1, c2,
	})
}

// MxV3 multiplies a 3x3 matrix by a 3-vector.
func MxV3(m *mat.Dense, v []float64) []float64 {
	vVec := mat.NewVecDense(3, v)
	var rVec mat.VecDense
	rVec.MulVec(m, vVec)
	return []float64{rVec.AtVec(0), rVec.AtVec(1), rVec.AtVec(2)}
}
