package spatialmath

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"
	"gonum.org/v1/gonum/num/quat"
)

func TestPoseTransforms(t *testing.T) {
	// quarter turn about +Y, then shift up by one
	p := NewPoseFromAxisAngle(r3.Vector{X: 0, Y: 1, Z: 0}, r3.Vector{X: 0, Y: 1, Z: 0}, math.Pi/2)

	t.Run("rotate point", func(t *testing.T) {
		rotated := RotatePoint(p.Orientation(), r3.Vector{X: 1})
		test.That(t, r3VectorAlmostEqual(rotated, r3.Vector{Z: -1}, 1e-9), test.ShouldBeTrue)
	})

	t.Run("transform point", func(t *testing.T) {
		out := TransformPoint(p, r3.Vector{X: 1})
		test.That(t, r3VectorAlmostEqual(out, r3.Vector{Y: 1, Z: -1}, 1e-9), test.ShouldBeTrue)
	})

	t.Run("matrix agrees with quaternion", func(t *testing.T) {
		pt := r3.Vector{X: 0.3, Y: -2, Z: 5}
		viaMatrix := MatrixTransformPoint(PoseToMatrix(p), pt)
		test.That(t, r3VectorAlmostEqual(viaMatrix, TransformPoint(p, pt), 1e-9), test.ShouldBeTrue)
	})

	t.Run("inverse", func(t *testing.T) {
		identity := Compose(p, PoseInverse(p))
		test.That(t, poseAlmostEqual(identity, NewZeroPose()), test.ShouldBeTrue)

		pt := r3.Vector{X: 4, Y: 2, Z: -1}
		back := TransformPoint(PoseInverse(p), TransformPoint(p, pt))
		test.That(t, r3VectorAlmostEqual(back, pt, 1e-9), test.ShouldBeTrue)
	})
}

func TestDisplacement(t *testing.T) {
	baseline := NewZeroPose()
	settled := NewPoseFromPoint(r3.Vector{Y: 0.15})
	test.That(t, Displacement(baseline, settled), test.ShouldAlmostEqual, 0.15)
	test.That(t, Displacement(settled, settled), test.ShouldEqual, 0)
}

func TestNormalization(t *testing.T) {
	p := NewPose(r3.Vector{}, quat.Number{Real: 2})
	test.That(t, quaternionAlmostEqual(p.Orientation(), quat.Number{Real: 1}, 1e-12), test.ShouldBeTrue)

	zero := NewPose(r3.Vector{}, quat.Number{})
	test.That(t, zero.Orientation(), test.ShouldResemble, quat.Number{Real: 1})

	test.That(t, orientationAlmostEqual(quat.Number{Real: 1}, quat.Number{Real: -1}), test.ShouldBeTrue)
}

func TestPoseMapJSON(t *testing.T) {
	p := NewPoseFromAxisAngle(r3.Vector{X: 1, Y: 2, Z: 3}, r3.Vector{Z: 1}, math.Pi)
	data, err := json.Marshal(PoseMap{p})
	test.That(t, err, test.ShouldBeNil)

	var out PoseMap
	test.That(t, json.Unmarshal(data, &out), test.ShouldBeNil)
	test.That(t, poseAlmostEqual(out.Pose, p), test.ShouldBeTrue)

	t.Run("missing rotation", func(t *testing.T) {
		var pm PoseMap
		test.That(t, json.Unmarshal([]byte(`{"translation":[1,0,0]}`), &pm), test.ShouldBeNil)
		test.That(t, pm.Point(), test.ShouldResemble, r3.Vector{X: 1})
		test.That(t, pm.Orientation(), test.ShouldResemble, quat.Number{Real: 1})
	})

	t.Run("malformed", func(t *testing.T) {
		var pm PoseMap
		test.That(t, json.Unmarshal([]byte(`{"translation":"up"}`), &pm), test.ShouldNotBeNil)
	})
}
