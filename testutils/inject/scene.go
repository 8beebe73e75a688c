// Package inject provides injectable stand-ins for the host engine collaborators.
package inject

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"go.viam.com/sceneviewer/markers"
	"go.viam.com/sceneviewer/scene"
	"go.viam.com/sceneviewer/spatialmath"
)

// Scene is an injected scene. Calls without an injected func fall through to the embedded Scene.
type Scene struct {
	scene.Scene
	CastRayFunc               func(ctx context.Context, ray scene.Ray, maxDistance float64) ([]scene.RayHit, error)
	StepWorldFunc             func(ctx context.Context, dt time.Duration) error
	ObjectsFunc               func(ctx context.Context) ([]scene.Object, error)
	ObjectByHandleFunc        func(ctx context.Context, handle string) (scene.Object, error)
	RemoveObjectFunc          func(ctx context.Context, handle string) error
	ReceptacleDefinitionsFunc func(ctx context.Context) ([]scene.ReceptacleDefinition, error)
	TemplateHandlesFunc       func(ctx context.Context, substring string) ([]string, error)
	DatasetConfigPathFunc     func() string
	SceneUserDefinedFunc      func(ctx context.Context) (map[string]interface{}, error)
	SetObjectPoseFunc         func(handle string, pose spatialmath.Pose) error
	LinkPoseFunc              func(ctx context.Context, handle string, link int) (spatialmath.Pose, error)
}

// CastRay calls the injected CastRay or the real version.
func (s *Scene) CastRay(ctx context.Context, ray scene.Ray, maxDistance float64) ([]scene.RayHit, error) {
	if s.CastRayFunc == nil {
		return s.Scene.CastRay(ctx, ray, maxDistance)
	}
	return s.CastRayFunc(ctx, ray, maxDistance)
}

// StepWorld calls the injected StepWorld or the real version.
func (s *Scene) StepWorld(ctx context.Context, dt time.Duration) error {
	if s.StepWorldFunc == nil {
		return s.Scene.StepWorld(ctx, dt)
	}
	return s.StepWorldFunc(ctx, dt)
}

// Objects calls the injected Objects or the real version.
func (s *Scene) Objects(ctx context.Context) ([]scene.Object, error) {
	if s.ObjectsFunc == nil {
		return s.Scene.Objects(ctx)
	}
	return s.ObjectsFunc(ctx)
}

// ObjectByHandle calls the injected ObjectByHandle or the real version.
func (s *Scene) ObjectByHandle(ctx context.Context, handle string) (scene.Object, error) {
	if s.ObjectByHandleFunc == nil {
		return s.Scene.ObjectByHandle(ctx, handle)
	}
	return s.ObjectByHandleFunc(ctx, handle)
}

// RemoveObject calls the injected RemoveObject or the real version.
func (s *Scene) RemoveObject(ctx context.Context, handle string) error {
	if s.RemoveObjectFunc == nil {
		return s.Scene.RemoveObject(ctx, handle)
	}
	return s.RemoveObjectFunc(ctx, handle)
}

// ReceptacleDefinitions calls the injected ReceptacleDefinitions or the real version.
func (s *Scene) ReceptacleDefinitions(ctx context.Context) ([]scene.ReceptacleDefinition, error) {
	if s.ReceptacleDefinitionsFunc == nil {
		return s.Scene.ReceptacleDefinitions(ctx)
	}
	return s.ReceptacleDefinitionsFunc(ctx)
}

// TemplateHandles calls the injected TemplateHandles or the real version.
func (s *Scene) TemplateHandles(ctx context.Context, substring string) ([]string, error) {
	if s.TemplateHandlesFunc == nil {
		return s.Scene.TemplateHandles(ctx, substring)
	}
	return s.TemplateHandlesFunc(ctx, substring)
}

// DatasetConfigPath calls the injected DatasetConfigPath or the real version.
func (s *Scene) DatasetConfigPath() string {
	if s.DatasetConfigPathFunc == nil {
		return s.Scene.DatasetConfigPath()
	}
	return s.DatasetConfigPathFunc()
}

// SceneUserDefined calls the injected SceneUserDefined or the real version.
func (s *Scene) SceneUserDefined(ctx context.Context) (map[string]interface{}, error) {
	if s.SceneUserDefinedFunc == nil {
		return s.Scene.SceneUserDefined(ctx)
	}
	return s.SceneUserDefinedFunc(ctx)
}

// SetObjectPose calls the injected SetObjectPose or the real version if the embedded Scene can
// move objects.
func (s *Scene) SetObjectPose(handle string, pose spatialmath.Pose) error {
	if s.SetObjectPoseFunc != nil {
		return s.SetObjectPoseFunc(handle, pose)
	}
	setter, ok := s.Scene.(scene.PoseSetter)
	if !ok {
		return errors.New("no SetObjectPose injected")
	}
	return setter.SetObjectPose(handle, pose)
}

// LinkPose calls the injected LinkPose or the real version if the embedded Scene has links.
func (s *Scene) LinkPose(ctx context.Context, handle string, link int) (spatialmath.Pose, error) {
	if s.LinkPoseFunc != nil {
		return s.LinkPoseFunc(ctx, handle, link)
	}
	poser, ok := s.Scene.(scene.LinkPoser)
	if !ok {
		return nil, errors.New("no LinkPose injected")
	}
	return poser.LinkPose(ctx, handle, link)
}

// FileScene wraps a static scene file so it satisfies scene.Scene; raycasts hit nothing and
// physics steps are no-ops unless injected.
func FileScene(f *scene.File) *Scene {
	return &Scene{
		Scene: fileScene{f},
	}
}

type fileScene struct {
	*scene.File
}

func (fileScene) CastRay(ctx context.Context, ray scene.Ray, maxDistance float64) ([]scene.RayHit, error) {
	return nil, nil
}

func (fileScene) StepWorld(ctx context.Context, dt time.Duration) error {
	return nil
}

// TransformStore is an injected transform store.
type TransformStore struct {
	SaveTransformsFunc func(ctx context.Context, transforms map[string]spatialmath.Pose) error
	LoadTransformsFunc func(ctx context.Context) (map[string]spatialmath.Pose, error)
}

// SaveTransforms calls the injected SaveTransforms.
func (s *TransformStore) SaveTransforms(ctx context.Context, transforms map[string]spatialmath.Pose) error {
	if s.SaveTransformsFunc == nil {
		return errors.New("no SaveTransforms injected")
	}
	return s.SaveTransformsFunc(ctx, transforms)
}

// LoadTransforms calls the injected LoadTransforms.
func (s *TransformStore) LoadTransforms(ctx context.Context) (map[string]spatialmath.Pose, error) {
	if s.LoadTransformsFunc == nil {
		return nil, errors.New("no LoadTransforms injected")
	}
	return s.LoadTransformsFunc(ctx)
}

// MarkerStore is an injected marker set store.
type MarkerStore struct {
	SaveObjectFunc func(ctx context.Context, object string, links map[int][]markers.Set) error
	LoadFunc       func(ctx context.Context) (*markers.Sets, error)
}

// SaveObject calls the injected SaveObject.
func (s *MarkerStore) SaveObject(ctx context.Context, object string, links map[int][]markers.Set) error {
	if s.SaveObjectFunc == nil {
		return errors.New("no SaveObject injected")
	}
	return s.SaveObjectFunc(ctx, object, links)
}

// Load calls the injected Load.
func (s *MarkerStore) Load(ctx context.Context) (*markers.Sets, error) {
	if s.LoadFunc == nil {
		return nil, errors.New("no Load injected")
	}
	return s.LoadFunc(ctx)
}
