package spatialmath

import (
	"math"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/num/quat"
)

func r3VectorAlmostEqual(a, b r3.Vector, epsilon float64) bool {
	return math.Abs(a.X-b.X) < epsilon && math.Abs(a.Y-b.Y) < epsilon && math.Abs(a.Z-b.Z) < epsilon
}

// quaternionAlmostEqual compares every component, so q and -q are different here.
func quaternionAlmostEqual(a, b quat.Number, tol float64) bool {
	return math.Abs(a.Real-b.Real) < tol &&
		math.Abs(a.Imag-b.Imag) < tol &&
		math.Abs(a.Jmag-b.Jmag) < tol &&
		math.Abs(a.Kmag-b.Kmag) < tol
}

// orientationAlmostEqual treats q and -q as the same rotation.
func orientationAlmostEqual(a, b quat.Number) bool {
	const tol = 1e-5
	return quaternionAlmostEqual(a, b, tol) || quaternionAlmostEqual(a, quat.Scale(-1, b), tol)
}

func poseAlmostEqual(a, b Pose) bool {
	return r3VectorAlmostEqual(a.Point(), b.Point(), 1e-8) && orientationAlmostEqual(a.Orientation(), b.Orientation())
}
