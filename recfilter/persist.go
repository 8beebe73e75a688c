package recfilter

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/pkg/errors"

	"go.viam.com/sceneviewer/utils"
)

// DefaultPath is where filter files are read and written when no path is given.
const DefaultPath = "./rec_filter_data.json"

// ValidationError is returned when a filter file is missing one of its required sets.
type ValidationError struct {
	Path string
	Key  string
}

func (e *ValidationError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("filter data is missing required key %q", e.Key)
	}
	return fmt.Sprintf("filter file %q is missing required key %q", e.Path, e.Key)
}

// stateJSON is the filter file layout. The sets are pointers so a missing key can be told apart
// from an empty list.
type stateJSON struct {
	Active             *[]string `json:"active"`
	ManuallyFiltered   *[]string `json:"manually_filtered"`
	AccessFiltered     *[]string `json:"access_filtered"`
	AccessThreshold    float64   `json:"access_threshold"`
	StabilityFiltered  *[]string `json:"stability_filtered"`
	StabilityThreshold float64   `json:"stability threshold"`
	HeightFiltered     *[]string `json:"height_filtered"`
	MaxHeight          float64   `json:"max_height"`
	MinHeight          float64   `json:"min_height"`
}

func namesPtr(s *NameSet) *[]string {
	names := s.Names()
	return &names
}

// MarshalJSON encodes the state in the filter file layout.
func (s *State) MarshalJSON() ([]byte, error) {
	return json.Marshal(stateJSON{
		Active:             namesPtr(s.active),
		ManuallyFiltered:   namesPtr(s.manuallyFiltered),
		AccessFiltered:     namesPtr(s.accessFiltered),
		AccessThreshold:    s.AccessThreshold,
		StabilityFiltered:  namesPtr(s.stabilityFiltered),
		StabilityThreshold: s.StabilityThreshold,
		HeightFiltered:     namesPtr(s.heightFiltered),
		MaxHeight:          s.MaxHeight,
		MinHeight:          s.MinHeight,
	})
}

// UnmarshalJSON decodes the filter file layout. It returns a *ValidationError if a set is
// missing. Names are not checked against any scene.
func (s *State) UnmarshalJSON(data []byte) error {
	var raw stateJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	for _, required := range []struct {
		key  string
		list *[]string
	}{
		{Active.String(), raw.Active},
		{ManuallyFiltered.String(), raw.ManuallyFiltered},
		{AccessFiltered.String(), raw.AccessFiltered},
		{StabilityFiltered.String(), raw.StabilityFiltered},
		{HeightFiltered.String(), raw.HeightFiltered},
	} {
		if required.list == nil {
			return &ValidationError{Key: required.key}
		}
	}
	*s = State{
		active:             NewNameSet(*raw.Active...),
		manuallyFiltered:   NewNameSet(*raw.ManuallyFiltered...),
		accessFiltered:     NewNameSet(*raw.AccessFiltered...),
		stabilityFiltered:  NewNameSet(*raw.StabilityFiltered...),
		heightFiltered:     NewNameSet(*raw.HeightFiltered...),
		AccessThreshold:    raw.AccessThreshold,
		StabilityThreshold: raw.StabilityThreshold,
		MaxHeight:          raw.MaxHeight,
		MinHeight:          raw.MinHeight,
	}
	return nil
}

// Export writes the state to path as indented JSON, creating the directory if needed. An empty
// path means DefaultPath.
func (s *State) Export(path string) error {
	if path == "" {
		path = DefaultPath
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	if err := utils.WriteFileAtomic(path, data, 0o644); err != nil {
		return errors.Wrapf(err, "cannot export filter state to %q", path)
	}
	return nil
}

// Import reads a state from path. An empty path means DefaultPath. The caller's current state is
// only replaced by the returned one, so a failed import leaves it as it was.
func Import(path string) (*State, error) {
	if path == "" {
		path = DefaultPath
	}
	//nolint:gosec
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot read filter file %q", path)
	}
	state := &State{}
	if err := json.Unmarshal(data, state); err != nil {
		var validationErr *ValidationError
		if errors.As(err, &validationErr) {
			validationErr.Path = path
			return nil, validationErr
		}
		return nil, errors.Wrapf(err, "cannot parse filter file %q", path)
	}
	return state, nil
}
