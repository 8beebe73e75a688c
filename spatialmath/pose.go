// Package spatialmath defines the rigid-body pose math shared by receptacles and clutter tracking.
package spatialmath

import (
	"encoding/json"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/num/quat"
)

// Pose represents a 6dof pose, position and orientation, with respect to the origin.
type Pose interface {
	Point() r3.Vector
	Orientation() quat.Number
}

type pose struct {
	point       r3.Vector
	orientation quat.Number
}

// NewPose returns a Pose at the given point with the given orientation. The orientation is
// normalized; a zero quaternion is treated as no rotation.
func NewPose(pt r3.Vector, orientation quat.Number) Pose {
	return &pose{point: pt, orientation: normalize(orientation)}
}

// NewPoseFromPoint returns a Pose at the given point with no rotation.
func NewPoseFromPoint(pt r3.Vector) Pose {
	return NewPose(pt, quat.Number{Real: 1})
}

// NewZeroPose returns a pose at the origin with no rotation.
func NewZeroPose() Pose {
	return NewPoseFromPoint(r3.Vector{})
}

// NewPoseFromAxisAngle returns a pose at pt rotated by theta radians about axis.
func NewPoseFromAxisAngle(pt, axis r3.Vector, theta float64) Pose {
	return NewPose(pt, QuatFromAxisAngle(axis, theta))
}

func (p *pose) Point() r3.Vector {
	return p.point
}

func (p *pose) Orientation() quat.Number {
	return p.orientation
}

// QuatFromAxisAngle builds the unit quaternion for a rotation of theta radians about axis.
func QuatFromAxisAngle(axis r3.Vector, theta float64) quat.Number {
	if axis.Norm() == 0 {
		return quat.Number{Real: 1}
	}
	axis = axis.Normalize()
	sin, cos := math.Sincos(theta / 2)
	return quat.Number{Real: cos, Imag: axis.X * sin, Jmag: axis.Y * sin, Kmag: axis.Z * sin}
}

// RotatePoint rotates pt by the unit quaternion q.
func RotatePoint(q quat.Number, pt r3.Vector) r3.Vector {
	v := quat.Number{Imag: pt.X, Jmag: pt.Y, Kmag: pt.Z}
	r := quat.Mul(quat.Mul(q, v), quat.Conj(q))
	return r3.Vector{X: r.Imag, Y: r.Jmag, Z: r.Kmag}
}

// TransformPoint maps pt from the pose's local frame into the parent frame.
func TransformPoint(p Pose, pt r3.Vector) r3.Vector {
	return RotatePoint(p.Orientation(), pt).Add(p.Point())
}

// Compose returns the pose a*b, i.e. b expressed in a's parent frame.
func Compose(a, b Pose) Pose {
	return NewPose(TransformPoint(a, b.Point()), quat.Mul(a.Orientation(), b.Orientation()))
}

// PoseInverse returns the inverse of the pose.
func PoseInverse(p Pose) Pose {
	inv := quat.Conj(p.Orientation())
	return NewPose(RotatePoint(inv, p.Point()).Mul(-1), inv)
}

// PoseToMatrix returns the homogeneous 4x4 transform of the pose.
func PoseToMatrix(p Pose) mgl64.Mat4 {
	q := p.Orientation()
	rot := mgl64.Quat{W: q.Real, V: mgl64.Vec3{q.Imag, q.Jmag, q.Kmag}}.Mat4()
	pt := p.Point()
	return mgl64.Translate3D(pt.X, pt.Y, pt.Z).Mul4(rot)
}

// MatrixTransformPoint applies a homogeneous 4x4 transform to pt.
func MatrixTransformPoint(m mgl64.Mat4, pt r3.Vector) r3.Vector {
	v := m.Mul4x1(mgl64.Vec4{pt.X, pt.Y, pt.Z, 1})
	return r3.Vector{X: v[0], Y: v[1], Z: v[2]}
}

// Displacement is the Euclidean distance between the translations of two poses.
func Displacement(a, b Pose) float64 {
	return a.Point().Distance(b.Point())
}

func normalize(q quat.Number) quat.Number {
	norm := quat.Abs(q)
	if norm == 0 {
		return quat.Number{Real: 1}
	}
	return quat.Scale(1/norm, q)
}

// poseJSON is the wire form of a pose: translation [x, y, z] and rotation [w, x, y, z].
type poseJSON struct {
	Translation [3]float64 `json:"translation"`
	Rotation    [4]float64 `json:"rotation"`
}

// PoseMap is a JSON-friendly Pose holder.
type PoseMap struct {
	Pose
}

// MarshalJSON writes the pose as translation and [w, x, y, z] rotation arrays.
func (pm PoseMap) MarshalJSON() ([]byte, error) {
	if pm.Pose == nil {
		return json.Marshal(nil)
	}
	pt, q := pm.Point(), pm.Orientation()
	return json.Marshal(poseJSON{
		Translation: [3]float64{pt.X, pt.Y, pt.Z},
		Rotation:    [4]float64{q.Real, q.Imag, q.Jmag, q.Kmag},
	})
}

// UnmarshalJSON reads a pose written by MarshalJSON. A missing rotation means no rotation.
func (pm *PoseMap) UnmarshalJSON(data []byte) error {
	var raw struct {
		Translation *[3]float64 `json:"translation"`
		Rotation    *[4]float64 `json:"rotation"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return errors.Wrap(err, "cannot parse pose")
	}
	var pt r3.Vector
	if raw.Translation != nil {
		pt = r3.Vector{X: raw.Translation[0], Y: raw.Translation[1], Z: raw.Translation[2]}
	}
	q := quat.Number{Real: 1}
	if raw.Rotation != nil {
		q = quat.Number{Real: raw.Rotation[0], Imag: raw.Rotation[1], Jmag: raw.Rotation[2], Kmag: raw.Rotation[3]}
	}
	pm.Pose = NewPose(pt, q)
	return nil
}
