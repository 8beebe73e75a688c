// Package scene declares the host simulation engine collaborators the viewer drives: raycasting,
// physics stepping, object and receptacle enumeration, template lookup, and transform persistence.
package scene

import (
	"context"
	"time"

	"github.com/golang/geo/r3"

	"go.viam.com/sceneviewer/spatialmath"
)

// Object is a rigid or articulated object instance in the scene.
type Object struct {
	// Handle is the unique instance handle, e.g. "fridge_:0000".
	Handle string
	// TemplateHandle is the handle of the template the instance was created from.
	TemplateHandle string
	Pose           spatialmath.Pose
}

// Ray is a query ray in world coordinates.
type Ray struct {
	Origin    r3.Vector
	Direction r3.Vector
}

// RayHit is one intersection reported by a raycast. Hits on the static stage have Stage set and
// an empty ObjectHandle. Hits on a link of an articulated object have OnLink set, and Link is the
// link index within ObjectHandle.
type RayHit struct {
	ObjectHandle string
	Stage        bool
	OnLink       bool
	Link         int
	Point        r3.Vector
	Normal       r3.Vector
	Distance     float64
}

// ReceptacleDefinition is a receptacle as the engine reports it, before the viewer indexes it.
type ReceptacleDefinition struct {
	ParentObjectHandle string
	Name               string
	// LocalPose places the receptacle relative to its parent object.
	LocalPose spatialmath.Pose
	Up        r3.Vector
	// Vertices of the receptacle mesh in the receptacle's local frame.
	Vertices []r3.Vector
}

// Raycaster casts rays into the scene. Hits are ordered nearest first.
type Raycaster interface {
	CastRay(ctx context.Context, ray Ray, maxDistance float64) ([]RayHit, error)
}

// Physics advances the simulation.
type Physics interface {
	StepWorld(ctx context.Context, dt time.Duration) error
}

// Objects enumerates and mutates object instances.
type Objects interface {
	Objects(ctx context.Context) ([]Object, error)
	ObjectByHandle(ctx context.Context, handle string) (Object, error)
	RemoveObject(ctx context.Context, handle string) error
}

// ReceptacleSource reports every receptacle declared on objects in the scene.
type ReceptacleSource interface {
	ReceptacleDefinitions(ctx context.Context) ([]ReceptacleDefinition, error)
}

// TemplateLibrary looks up object templates registered with the engine.
type TemplateLibrary interface {
	// TemplateHandles returns the handles of all templates whose handle contains substring.
	TemplateHandles(ctx context.Context, substring string) ([]string, error)
}

// Metadata exposes scene and dataset level configuration.
type Metadata interface {
	// DatasetConfigPath is the path of the active scene dataset config file.
	DatasetConfigPath() string
	// SceneUserDefined returns the user defined metadata of the current scene, or nil.
	SceneUserDefined(ctx context.Context) (map[string]interface{}, error)
}

// TransformStore persists named rigid-body transforms.
type TransformStore interface {
	SaveTransforms(ctx context.Context, transforms map[string]spatialmath.Pose) error
	LoadTransforms(ctx context.Context) (map[string]spatialmath.Pose, error)
}

// PoseSetter moves object instances. Static scenes implement it so saved transforms can be
// applied back.
type PoseSetter interface {
	SetObjectPose(handle string, pose spatialmath.Pose) error
}

// LinkPoser reports the world pose of a link of an articulated object. Engines with articulated
// objects implement it so markers can be placed in link frames.
type LinkPoser interface {
	LinkPose(ctx context.Context, handle string, link int) (spatialmath.Pose, error)
}

// Scene is the full set of collaborators a live engine provides.
type Scene interface {
	Raycaster
	Physics
	Objects
	ReceptacleSource
	TemplateLibrary
	Metadata
}
