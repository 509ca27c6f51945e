package spatialmath

import (
	"math"

	"gonum.org/v1/gonum/num/quat"
)

// QuaternionFromYaw returns the rotation of yaw radians about the z axis.
func QuaternionFromYaw(yaw float64) quat.Number {
	half := yaw / 2
	return quat.Number{Real: math.Cos(half), Kmag: math.Sin(half)}
}

// YawFromQuaternion extracts the rotation about the z axis. The result is in (-π, π].
// A zero quaternion is treated as no rotation.
func YawFromQuaternion(q quat.Number) float64 {
	if quat.Abs(q) == 0 {
		return 0
	}
	q = quat.Scale(1/quat.Abs(q), q)
	sinYaw := 2 * (q.Real*q.Kmag + q.Imag*q.Jmag)
	cosYaw := 1 - 2*(q.Jmag*q.Jmag+q.Kmag*q.Kmag)
	return math.Atan2(sinYaw, cosYaw)
}

// OrientationAlmostEqual reports whether two quaternions describe the same rotation.
func OrientationAlmostEqual(q1, q2 quat.Number, tol float64) bool {
	// q and -q are the same rotation.
	dot := q1.Real*q2.Real + q1.Imag*q2.Imag + q1.Jmag*q2.Jmag + q1.Kmag*q2.Kmag
	return 1-math.Abs(dot) <= tol
}
