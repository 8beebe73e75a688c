package scene

import (
	"context"
	"encoding/json"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"go.viam.com/sceneviewer/spatialmath"
	"go.viam.com/sceneviewer/utils"
)

// File is a static scene description read from JSON. It stands in for a live engine when the
// viewer runs headless, e.g. for batch classification from the command line. It provides object
// and receptacle enumeration, template lookup and metadata, but no physics or raycasting.
type File struct {
	mu sync.Mutex

	path        string
	datasetPath string
	userDefined map[string]interface{}
	templates   []string
	objects     map[string]Object
	order       []string
	receptacles []ReceptacleDefinition
}

type fileJSON struct {
	DatasetConfig string                 `json:"dataset_config"`
	UserDefined   map[string]interface{} `json:"user_defined,omitempty"`
	Templates     []string               `json:"templates,omitempty"`
	Objects       []objectJSON           `json:"objects"`
	Receptacles   []receptacleJSON       `json:"receptacles"`
}

type objectJSON struct {
	Handle         string               `json:"handle"`
	TemplateHandle string               `json:"template_handle"`
	Pose           *spatialmath.PoseMap `json:"pose,omitempty"`
}

type receptacleJSON struct {
	ParentObjectHandle string               `json:"parent_object_handle"`
	Name               string               `json:"name"`
	LocalPose          *spatialmath.PoseMap `json:"local_pose,omitempty"`
	Up                 *[3]float64          `json:"up,omitempty"`
	Vertices           [][3]float64         `json:"vertices,omitempty"`
}

// ReadFile loads a scene description from path.
func ReadFile(path string) (*File, error) {
	//nolint:gosec
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot read scene file %q", path)
	}
	var raw fileJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrapf(err, "cannot parse scene file %q", path)
	}

	f := &File{
		path:        path,
		datasetPath: raw.DatasetConfig,
		userDefined: raw.UserDefined,
		templates:   raw.Templates,
		objects:     make(map[string]Object, len(raw.Objects)),
	}
	for _, obj := range raw.Objects {
		if obj.Handle == "" {
			return nil, errors.Errorf("scene file %q has an object with no handle", path)
		}
		pose := spatialmath.NewZeroPose()
		if obj.Pose != nil && obj.Pose.Pose != nil {
			pose = obj.Pose.Pose
		}
		f.AddObject(Object{Handle: obj.Handle, TemplateHandle: obj.TemplateHandle, Pose: pose})
	}
	for _, rec := range raw.Receptacles {
		def := ReceptacleDefinition{
			ParentObjectHandle: rec.ParentObjectHandle,
			Name:               rec.Name,
			LocalPose:          spatialmath.NewZeroPose(),
			Up:                 r3.Vector{Y: 1},
		}
		if rec.LocalPose != nil && rec.LocalPose.Pose != nil {
			def.LocalPose = rec.LocalPose.Pose
		}
		if rec.Up != nil {
			def.Up = r3.Vector{X: rec.Up[0], Y: rec.Up[1], Z: rec.Up[2]}
		}
		for _, v := range rec.Vertices {
			def.Vertices = append(def.Vertices, r3.Vector{X: v[0], Y: v[1], Z: v[2]})
		}
		f.receptacles = append(f.receptacles, def)
	}
	return f, nil
}

// AddObject inserts or replaces an object instance.
func (f *File) AddObject(obj Object) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.objects == nil {
		f.objects = map[string]Object{}
	}
	if _, ok := f.objects[obj.Handle]; !ok {
		f.order = append(f.order, obj.Handle)
	}
	f.objects[obj.Handle] = obj
}

// SetObjectPose moves an existing object instance.
func (f *File) SetObjectPose(handle string, pose spatialmath.Pose) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	obj, ok := f.objects[handle]
	if !ok {
		return utils.NewObjectNotFoundError(handle)
	}
	obj.Pose = pose
	f.objects[handle] = obj
	return nil
}

// Objects returns all object instances in insertion order.
func (f *File) Objects(ctx context.Context) ([]Object, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Object, 0, len(f.order))
	for _, handle := range f.order {
		out = append(out, f.objects[handle])
	}
	return out, nil
}

// ObjectByHandle returns a single object instance.
func (f *File) ObjectByHandle(ctx context.Context, handle string) (Object, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	obj, ok := f.objects[handle]
	if !ok {
		return Object{}, utils.NewObjectNotFoundError(handle)
	}
	return obj, nil
}

// RemoveObject deletes an object instance.
func (f *File) RemoveObject(ctx context.Context, handle string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.objects[handle]; !ok {
		return utils.NewObjectNotFoundError(handle)
	}
	delete(f.objects, handle)
	for i, h := range f.order {
		if h == handle {
			f.order = append(f.order[:i], f.order[i+1:]...)
			break
		}
	}
	return nil
}

// ReceptacleDefinitions returns every declared receptacle.
func (f *File) ReceptacleDefinitions(ctx context.Context) ([]ReceptacleDefinition, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]ReceptacleDefinition(nil), f.receptacles...), nil
}

// TemplateHandles returns the sorted template handles containing substring. Templates of
// objects placed in the scene count as registered.
func (f *File) TemplateHandles(ctx context.Context, substring string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	seen := map[string]struct{}{}
	for _, t := range f.templates {
		seen[t] = struct{}{}
	}
	for _, obj := range f.objects {
		if obj.TemplateHandle != "" {
			seen[obj.TemplateHandle] = struct{}{}
		}
	}
	var out []string
	for t := range seen {
		if strings.Contains(t, substring) {
			out = append(out, t)
		}
	}
	sort.Strings(out)
	return out, nil
}

// DatasetConfigPath returns the dataset config path recorded in the file.
func (f *File) DatasetConfigPath() string {
	return f.datasetPath
}

// SceneUserDefined returns the scene's user defined metadata.
func (f *File) SceneUserDefined(ctx context.Context) (map[string]interface{}, error) {
	return f.userDefined, nil
}
