package markers

import (
	"context"
	"encoding/json"
	"os"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"go.viam.com/sceneviewer/utils"
)

// DefaultPath is where marker sets are read and written when no path is given.
const DefaultPath = "./marker_sets.json"

// Store persists marker sets.
type Store interface {
	// SaveObject replaces the persisted sets of one object, leaving other objects untouched.
	SaveObject(ctx context.Context, object string, links map[int][]Set) error
	// Load reads every persisted set.
	Load(ctx context.Context) (*Sets, error)
}

type setJSON struct {
	Name   string       `json:"name"`
	Points [][3]float64 `json:"points"`
}

// fileJSON is the marker file layout: object handle, then link index, then the link's sets in
// order.
type fileJSON map[string]map[int][]setJSON

// JSONStore keeps marker sets of every object in one JSON file.
type JSONStore struct {
	Path string
}

func (s *JSONStore) read() (fileJSON, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot read marker sets from %q", s.Path)
	}
	var raw fileJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrapf(err, "cannot parse marker sets in %q", s.Path)
	}
	return raw, nil
}

// SaveObject implements Store. A missing file is created.
func (s *JSONStore) SaveObject(ctx context.Context, object string, links map[int][]Set) error {
	raw, err := s.read()
	switch {
	case err == nil:
	case errors.Is(err, os.ErrNotExist):
	default:
		return err
	}
	if raw == nil {
		raw = fileJSON{}
	}

	byLink := make(map[int][]setJSON, len(links))
	for link, sets := range links {
		for _, set := range sets {
			points := make([][3]float64, 0, len(set.Points))
			for _, p := range set.Points {
				points = append(points, [3]float64{p.X, p.Y, p.Z})
			}
			byLink[link] = append(byLink[link], setJSON{Name: set.Name, Points: points})
		}
	}
	raw[object] = byLink

	data, err := json.MarshalIndent(raw, "", "  ")
	if err != nil {
		return err
	}
	return utils.WriteFileAtomic(s.Path, data, 0o644)
}

// Load implements Store.
func (s *JSONStore) Load(ctx context.Context) (*Sets, error) {
	raw, err := s.read()
	if err != nil {
		return nil, err
	}
	sets := NewSets()
	for object, byLink := range raw {
		links := make(map[int][]Set, len(byLink))
		for link, list := range byLink {
			for _, set := range list {
				links[link] = append(links[link], Set{Name: set.Name, Points: toVectors(set.Points)})
			}
		}
		sets.ReplaceObject(object, links)
	}
	return sets, nil
}

func toVectors(points [][3]float64) []r3.Vector {
	out := make([]r3.Vector, 0, len(points))
	for _, p := range points {
		out = append(out, r3.Vector{X: p[0], Y: p[1], Z: p[2]})
	}
	return out
}
