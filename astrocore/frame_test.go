package astrocore

import (
	"math"
	"testing"
)

func TestFrameIsQuasiInertial(t *testing.T) {
	if !GCRF.IsQuasiInertial() {
		t.Error("GCRF must be quasi-inertial")
	}
	itrf := NewFrame("ITRF", false)
	if itrf.IsQuasiInertial() {
		t.Error("a body-fixed frame must not be quasi-inertial")
	}
}

func TestTransformAppliesRotationAndCoupling(t *testing.T) {
	transform := Transform{
		Translation:     [3]float64{0, 0, 0},
		Velocity:        [3]float64{0, 0, 0},
		Rotation:        [3][3]float64{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}},
		AngularVelocity: [3]float64{0, 0, 1},
	}
	position := []float64{1, 0, 0}
	velocity := []float64{0, 1, 0}

	newPos, newVel := transform.ApplyToPositionVelocity(position, velocity)
	if newPos[0] != 1 || newPos[1] != 0 {
		t.Errorf("position should pass through identity rotation: got %v", newPos)
	}
	// omega x r = (0,0,1) x (1,0,0) = (0,1,0); plus v (0,1,0) => (0,2,0).
	if math.Abs(newVel[1]-2) > 1e-12 {
		t.Errorf("velocity coupling term missing: got %v, want y=2", newVel)
	}
}

func TestLocalOrbitalFrameRotationQSWIsOrthonormal(t *testing.T) {
	position := []float64{7000e3, 0, 0}
	velocity := []float64{0, 7546, 0}
	r := LocalOrbitalFrameRotation(QSW, position, velocity)

	for col := 0; col < 3; col++ {
		norm := math.Sqrt(r[0][col]*r[0][col] + r[1][col]*r[1][col] + r[2][col]*r[2][col])
		if math.Abs(norm-1) > 1e-9 {
			t.Errorf("QSW column %d not unit length: %v", col, norm)
		}
	}
}

func TestLocalOrbitalFrameRotationKindsDiffer(t *testing.T) {
	position := []float64{7000e3, 100e3, 200e3}
	velocity := []float64{10, 7546, 5}

	qsw := LocalOrbitalFrameRotation(QSW, position, velocity)
	vvlh := LocalOrbitalFrameRotation(VVLH, position, velocity)

	same := true
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			if math.Abs(qsw[i][j]-vvlh[i][j]) > 1e-9 {
				same = false
			}
		}
	}
	if same {
		t.Error("QSW and VVLH rotations should differ")
	}
}
