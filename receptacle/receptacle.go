// Package receptacle indexes the placement surfaces declared on scene objects.
package receptacle

import (
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"go.viam.com/sceneviewer/scene"
	"go.viam.com/sceneviewer/spatialmath"
)

const (
	// Separator joins the parent object instance handle and the receptacle name.
	Separator = "|"
	// CollisionStandInMarker marks synthetic proxy objects that must never be treated as
	// receptacle parents.
	CollisionStandInMarker = "collision_stand-in"
	// DefaultPickDistance is the maximum distance from a query point to a receptacle vertex for
	// the receptacle to be picked.
	DefaultPickDistance = 3.5
)

// UniqueName returns the scene-unique name of a receptacle. Receptacle names are only unique per
// object, so several instances of the same object share them.
func UniqueName(parentObjectHandle, name string) string {
	return parentObjectHandle + Separator + name
}

// SplitUniqueName is the inverse of UniqueName.
func SplitUniqueName(uniqueName string) (parentObjectHandle, name string, err error) {
	idx := strings.LastIndex(uniqueName, Separator)
	if idx <= 0 || idx == len(uniqueName)-1 {
		return "", "", errors.Errorf("%q is not a receptacle unique name", uniqueName)
	}
	return uniqueName[:idx], uniqueName[idx+1:], nil
}

// A Receptacle is a named surface on an object instance where other objects may be placed.
type Receptacle struct {
	ParentObjectHandle string
	Name               string
	LocalPose          spatialmath.Pose
	Up                 r3.Vector
	Vertices           []r3.Vector
}

// FromDefinition builds a Receptacle from the engine's description.
func FromDefinition(def scene.ReceptacleDefinition) *Receptacle {
	local := def.LocalPose
	if local == nil {
		local = spatialmath.NewZeroPose()
	}
	return &Receptacle{
		ParentObjectHandle: def.ParentObjectHandle,
		Name:               def.Name,
		LocalPose:          local,
		Up:                 def.Up,
		Vertices:           def.Vertices,
	}
}

// UniqueName returns "<parent object handle>|<receptacle name>".
func (r *Receptacle) UniqueName() string {
	return UniqueName(r.ParentObjectHandle, r.Name)
}

// GlobalPose returns the receptacle's pose in the world given its parent's world pose.
func (r *Receptacle) GlobalPose(parent spatialmath.Pose) spatialmath.Pose {
	return spatialmath.Compose(parent, r.LocalPose)
}

// GlobalTransform returns the receptacle's local-to-world matrix given its parent's world pose.
func (r *Receptacle) GlobalTransform(parent spatialmath.Pose) mgl64.Mat4 {
	return spatialmath.PoseToMatrix(r.GlobalPose(parent))
}

// IsCollisionStandIn reports whether an object handle names a synthetic collision proxy.
func IsCollisionStandIn(objectHandle string) bool {
	return strings.Contains(objectHandle, CollisionStandInMarker)
}
