package scene

import (
	"context"
	"encoding/json"
	"os"

	"github.com/pkg/errors"

	"go.viam.com/sceneviewer/spatialmath"
	"go.viam.com/sceneviewer/utils"
)

// JSONTransformStore persists named transforms to a JSON file as
// {"name": {"translation": [x, y, z], "rotation": [w, x, y, z]}}.
type JSONTransformStore struct {
	Path string
}

// SaveTransforms writes every transform, replacing the file.
func (s *JSONTransformStore) SaveTransforms(ctx context.Context, transforms map[string]spatialmath.Pose) error {
	out := make(map[string]spatialmath.PoseMap, len(transforms))
	for name, pose := range transforms {
		out[name] = spatialmath.PoseMap{Pose: pose}
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}
	return utils.WriteFileAtomic(s.Path, data, 0o644)
}

// LoadTransforms reads every transform from the file.
func (s *JSONTransformStore) LoadTransforms(ctx context.Context) (map[string]spatialmath.Pose, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot read transforms from %q", s.Path)
	}
	var raw map[string]spatialmath.PoseMap
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrapf(err, "cannot parse transforms in %q", s.Path)
	}
	out := make(map[string]spatialmath.Pose, len(raw))
	for name, pm := range raw {
		out[name] = pm.Pose
	}
	return out, nil
}
