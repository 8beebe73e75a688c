// Package shapemetrics holds the per-receptacle access and stability metrics computed for an
// object's render mesh and its collision proxies, and the background optimizer that computes
// them for a scene.
package shapemetrics

import (
	"encoding/json"
	"os"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"go.viam.com/sceneviewer/utils"
)

// Shape variants metrics are computed for.
const (
	// GroundTruth is the object's render mesh.
	GroundTruth = "gt"
	// Proxy is the first generated collision proxy shape.
	Proxy = "pr0"
)

// AccessResults is the fraction of sample points reachable by raycast.
type AccessResults struct {
	ReceptacleAccessScore       float64   `json:"receptacle_access_score"`
	ReceptaclePointAccessScores []float64 `json:"receptacle_point_access_scores"`
}

// StabilityResults is the fraction of sample points where a test object settles in place.
type StabilityResults struct {
	SuccessRatio     float64   `json:"success_ratio"`
	PointStabilities []float64 `json:"point_stabilities"`
}

// ShapeResults holds the metrics of one shape variant. Either result may be absent.
type ShapeResults struct {
	Access    *AccessResults    `json:"access_results,omitempty"`
	Stability *StabilityResults `json:"stability_results,omitempty"`
}

// ReceptacleMetrics holds every variant's results for one receptacle, along with the sample
// points (in the receptacle's local frame) the per-point results refer to.
type ReceptacleMetrics struct {
	ShapeIDResults map[string]*ShapeResults `json:"shape_id_results"`
	SamplePoints   [][3]float64             `json:"sample_points"`
}

// ObjectMetrics holds the metrics of every receptacle on an object template, keyed by receptacle
// name.
type ObjectMetrics struct {
	Receptacles map[string]*ReceptacleMetrics `json:"receptacles"`
}

// Metrics is keyed by object template handle.
type Metrics map[string]*ObjectMetrics

// Receptacle looks up the metrics of a receptacle on an object template.
func (m Metrics) Receptacle(objectHandle, receptacleName string) (*ReceptacleMetrics, bool) {
	obj, ok := m[objectHandle]
	if !ok || obj == nil {
		return nil, false
	}
	rec, ok := obj.Receptacles[receptacleName]
	return rec, ok && rec != nil
}

// Shape looks up the results of a single shape variant.
func (m Metrics) Shape(objectHandle, receptacleName, variant string) (*ShapeResults, bool) {
	rec, ok := m.Receptacle(objectHandle, receptacleName)
	if !ok {
		return nil, false
	}
	return rec.Shape(variant)
}

// Shape returns the results of the given variant.
func (rm *ReceptacleMetrics) Shape(variant string) (*ShapeResults, bool) {
	res, ok := rm.ShapeIDResults[variant]
	return res, ok && res != nil
}

// Points returns the sample points as vectors.
func (rm *ReceptacleMetrics) Points() []r3.Vector {
	out := make([]r3.Vector, 0, len(rm.SamplePoints))
	for _, p := range rm.SamplePoints {
		out = append(out, r3.Vector{X: p[0], Y: p[1], Z: p[2]})
	}
	return out
}

// PointMetrics returns the per sample point access scores or stabilities of a variant. ok is
// false if the variant or the requested result is missing.
func (rm *ReceptacleMetrics) PointMetrics(variant string, stability bool) ([]float64, bool) {
	res, ok := rm.Shape(variant)
	if !ok {
		return nil, false
	}
	if stability {
		if res.Stability == nil {
			return nil, false
		}
		return res.Stability.PointStabilities, true
	}
	if res.Access == nil {
		return nil, false
	}
	return res.Access.ReceptaclePointAccessScores, true
}

func (rm *ReceptacleMetrics) shapeForUpdate(variant string) *ShapeResults {
	if rm.ShapeIDResults == nil {
		rm.ShapeIDResults = map[string]*ShapeResults{}
	}
	res, ok := rm.ShapeIDResults[variant]
	if !ok || res == nil {
		res = &ShapeResults{}
		rm.ShapeIDResults[variant] = res
	}
	return res
}

func vectorsToPoints(vs []r3.Vector) [][3]float64 {
	out := make([][3]float64, 0, len(vs))
	for _, v := range vs {
		out = append(out, [3]float64{v.X, v.Y, v.Z})
	}
	return out
}

// LoadFile reads metrics previously written by WriteFile or an offline optimizer run.
func LoadFile(path string) (Metrics, error) {
	//nolint:gosec
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot read shape metrics from %q", path)
	}
	var m Metrics
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, errors.Wrapf(err, "cannot parse shape metrics in %q", path)
	}
	return m, nil
}

// WriteFile writes the metrics as indented JSON, creating the directory if needed.
func (m Metrics) WriteFile(path string) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	return utils.WriteFileAtomic(path, data, 0o644)
}
