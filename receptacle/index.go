package receptacle

import (
	"context"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"github.com/samber/lo"

	"go.viam.com/sceneviewer/logging"
	"go.viam.com/sceneviewer/scene"
	"go.viam.com/sceneviewer/spatialmath"
)

// Index holds every receptacle in the scene along with the template handle of its parent object,
// which is the key shape metrics are stored under.
type Index struct {
	receptacles    []*Receptacle
	byUniqueName   map[string]*Receptacle
	parentTemplate map[string]string
}

// NewIndex builds an index over already resolved receptacles. parentTemplates maps parent
// object instance handles to their template handles.
func NewIndex(receptacles []*Receptacle, parentTemplates map[string]string) *Index {
	idx := &Index{
		byUniqueName:   make(map[string]*Receptacle, len(receptacles)),
		parentTemplate: make(map[string]string, len(parentTemplates)),
	}
	for _, rec := range receptacles {
		if IsCollisionStandIn(rec.ParentObjectHandle) {
			continue
		}
		idx.receptacles = append(idx.receptacles, rec)
		idx.byUniqueName[rec.UniqueName()] = rec
	}
	for handle, template := range parentTemplates {
		idx.parentTemplate[handle] = template
	}
	return idx
}

// Discover enumerates every receptacle in the scene, skipping those attached to collision
// stand-in proxies, and resolves each parent object's template handle.
func Discover(
	ctx context.Context,
	objects scene.Objects,
	source scene.ReceptacleSource,
	logger logging.Logger,
) (*Index, error) {
	defs, err := source.ReceptacleDefinitions(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "cannot enumerate receptacles")
	}

	receptacles := make([]*Receptacle, 0, len(defs))
	parentTemplates := map[string]string{}
	var skipped int
	for _, def := range defs {
		if IsCollisionStandIn(def.ParentObjectHandle) {
			skipped++
			continue
		}
		if _, ok := parentTemplates[def.ParentObjectHandle]; !ok {
			parent, err := objects.ObjectByHandle(ctx, def.ParentObjectHandle)
			if err != nil {
				return nil, errors.Wrapf(err, "cannot resolve parent of receptacle %q", def.Name)
			}
			parentTemplates[def.ParentObjectHandle] = parent.TemplateHandle
		}
		receptacles = append(receptacles, FromDefinition(def))
	}
	logger.Debugw("discovered receptacles", "count", len(receptacles), "skipped_stand_ins", skipped)
	return NewIndex(receptacles, parentTemplates), nil
}

// All returns every indexed receptacle in discovery order.
func (idx *Index) All() []*Receptacle {
	return idx.receptacles
}

// Len is the number of indexed receptacles.
func (idx *Index) Len() int {
	return len(idx.receptacles)
}

// UniqueNames returns the unique names of all receptacles in discovery order.
func (idx *Index) UniqueNames() []string {
	return lo.Map(idx.receptacles, func(rec *Receptacle, _ int) string { return rec.UniqueName() })
}

// ByUniqueName looks up a receptacle.
func (idx *Index) ByUniqueName(uniqueName string) (*Receptacle, bool) {
	rec, ok := idx.byUniqueName[uniqueName]
	return rec, ok
}

// ForParent returns the receptacles attached to the given object instance.
func (idx *Index) ForParent(objectHandle string) []*Receptacle {
	return lo.Filter(idx.receptacles, func(rec *Receptacle, _ int) bool {
		return rec.ParentObjectHandle == objectHandle
	})
}

// ParentTemplate returns the template handle of the receptacle's parent object.
func (idx *Index) ParentTemplate(rec *Receptacle) (string, bool) {
	template, ok := idx.parentTemplate[rec.ParentObjectHandle]
	return template, ok
}

// Closest returns the receptacle with a mesh vertex nearest to pos, or nil if none is within
// maxDist. Only receptacles whose origin is within maxDist of pos are considered.
func (idx *Index) Closest(
	ctx context.Context,
	objects scene.Objects,
	pos r3.Vector,
	maxDist float64,
) (*Receptacle, error) {
	parents := map[string]spatialmath.Pose{}
	var closest *Receptacle
	closestDist := maxDist
	for _, rec := range idx.receptacles {
		parentPose, ok := parents[rec.ParentObjectHandle]
		if !ok {
			parent, err := objects.ObjectByHandle(ctx, rec.ParentObjectHandle)
			if err != nil {
				return nil, err
			}
			parentPose = parent.Pose
			parents[rec.ParentObjectHandle] = parentPose
		}

		global := rec.GlobalTransform(parentPose)
		origin := spatialmath.MatrixTransformPoint(global, r3.Vector{})
		if origin.Distance(pos) >= maxDist {
			continue
		}
		// transform the query point once instead of every vertex
		localPoint := spatialmath.MatrixTransformPoint(global.Inv(), pos)
		for _, vert := range rec.Vertices {
			if d := localPoint.Distance(vert); d < closestDist {
				closestDist = d
				closest = rec
			}
		}
	}
	return closest, nil
}
