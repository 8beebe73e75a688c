// Package recfilter decides which receptacles in a scene are usable, combining automatic access
// and stability filters with manual overrides, and persists those decisions per scene.
package recfilter

import (
	"fmt"

	"github.com/samber/lo"
)

// Default thresholds for the automatic filters.
const (
	DefaultAccessThreshold    = 0.12
	DefaultStabilityThreshold = 0.5
)

// Bucket is the filter state of a single receptacle.
type Bucket int

// Buckets in lookup precedence order.
const (
	// Unknown receptacles are not recorded in the state, e.g. because they are newer than the
	// filter file.
	Unknown Bucket = iota
	ManuallyFiltered
	Active
	AccessFiltered
	StabilityFiltered
	HeightFiltered
)

// String returns the bucket's key in the filter file.
func (b Bucket) String() string {
	switch b {
	case Active:
		return "active"
	case ManuallyFiltered:
		return "manually_filtered"
	case AccessFiltered:
		return "access_filtered"
	case StabilityFiltered:
		return "stability_filtered"
	case HeightFiltered:
		return "height_filtered"
	case Unknown:
		return "unknown"
	default:
		return fmt.Sprintf("Bucket(%d)", int(b))
	}
}

// Automatic reports whether the bucket is populated by the automatic pass rather than by the
// user.
func (b Bucket) Automatic() bool {
	return b == AccessFiltered || b == StabilityFiltered || b == HeightFiltered
}

// NameSet is a set of receptacle unique names that remembers insertion order.
type NameSet struct {
	names []string
	index map[string]struct{}
}

// NewNameSet returns a set holding names, dropping duplicates.
func NewNameSet(names ...string) *NameSet {
	s := &NameSet{}
	for _, name := range names {
		s.Add(name)
	}
	return s
}

// Add inserts name and reports whether it was newly added.
func (s *NameSet) Add(name string) bool {
	if s.index == nil {
		s.index = map[string]struct{}{}
	}
	if _, ok := s.index[name]; ok {
		return false
	}
	s.index[name] = struct{}{}
	s.names = append(s.names, name)
	return true
}

// Remove deletes name and reports whether it was present.
func (s *NameSet) Remove(name string) bool {
	if s == nil {
		return false
	}
	if _, ok := s.index[name]; !ok {
		return false
	}
	delete(s.index, name)
	s.names = lo.Without(s.names, name)
	return true
}

// Contains reports whether name is in the set.
func (s *NameSet) Contains(name string) bool {
	if s == nil {
		return false
	}
	_, ok := s.index[name]
	return ok
}

// Len is the number of names in the set.
func (s *NameSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.names)
}

// Names returns a copy of the names in insertion order. It is never nil.
func (s *NameSet) Names() []string {
	if s == nil {
		return []string{}
	}
	return append(make([]string, 0, len(s.names)), s.names...)
}

// State partitions receptacle unique names into filter buckets. A name is in at most one of the
// active and automatic sets; the manual set is checked first and may also hold a name that is
// in an automatic set, meaning it is filtered for more than one reason.
type State struct {
	active            *NameSet
	manuallyFiltered  *NameSet
	accessFiltered    *NameSet
	stabilityFiltered *NameSet
	heightFiltered    *NameSet

	AccessThreshold    float64
	StabilityThreshold float64
	// MaxHeight and MinHeight bound the height filter, which does not yet have a rule.
	MaxHeight float64
	MinHeight float64
}

// NewState returns an empty state with the given thresholds.
func NewState(accessThreshold, stabilityThreshold float64) *State {
	return &State{
		active:             NewNameSet(),
		manuallyFiltered:   NewNameSet(),
		accessFiltered:     NewNameSet(),
		stabilityFiltered:  NewNameSet(),
		heightFiltered:     NewNameSet(),
		AccessThreshold:    accessThreshold,
		StabilityThreshold: stabilityThreshold,
	}
}

// Set returns the names in a bucket, allocating it on first use so the zero State is usable.
// Unknown has no set.
func (s *State) Set(b Bucket) *NameSet {
	var slot **NameSet
	switch b {
	case Active:
		slot = &s.active
	case ManuallyFiltered:
		slot = &s.manuallyFiltered
	case AccessFiltered:
		slot = &s.accessFiltered
	case StabilityFiltered:
		slot = &s.stabilityFiltered
	case HeightFiltered:
		slot = &s.heightFiltered
	case Unknown:
		return nil
	default:
		return nil
	}
	if *slot == nil {
		*slot = NewNameSet()
	}
	return *slot
}

func (s *State) automaticSets() []*NameSet {
	return []*NameSet{s.Set(AccessFiltered), s.Set(StabilityFiltered), s.Set(HeightFiltered)}
}

// Bucket returns where a receptacle is shown, checking the manual set first.
func (s *State) Bucket(uniqueName string) Bucket {
	for _, b := range []Bucket{ManuallyFiltered, Active, AccessFiltered, StabilityFiltered, HeightFiltered} {
		if s.Set(b).Contains(uniqueName) {
			return b
		}
	}
	return Unknown
}

// AutomaticBucket returns the automatic set holding a receptacle, or Unknown.
func (s *State) AutomaticBucket(uniqueName string) Bucket {
	for _, b := range []Bucket{AccessFiltered, StabilityFiltered, HeightFiltered} {
		if s.Set(b).Contains(uniqueName) {
			return b
		}
	}
	return Unknown
}

// IsActive reports whether a receptacle should be used.
func (s *State) IsActive(uniqueName string) bool {
	return s.Set(Active).Contains(uniqueName)
}

// Active returns the unique names of all active receptacles.
func (s *State) Active() []string {
	return s.Set(Active).Names()
}

// place moves uniqueName into exactly one of the active and automatic sets. The manual set is
// untouched.
func (s *State) place(uniqueName string, b Bucket) {
	target := s.Set(b)
	for _, set := range append(s.automaticSets(), s.Set(Active)) {
		if set != target {
			set.Remove(uniqueName)
		}
	}
	if target != nil {
		target.Add(uniqueName)
	}
}

// ToggleManual flips the manual override of a receptacle and returns its resulting bucket.
//
// A manually filtered receptacle is released, returning to the automatic set it is also
// recorded in, or to active otherwise. An active receptacle becomes manually filtered. Any other
// receptacle is manually filtered and keeps its automatic record.
func (s *State) ToggleManual(uniqueName string) Bucket {
	manual, active := s.Set(ManuallyFiltered), s.Set(Active)
	switch {
	case manual.Contains(uniqueName):
		manual.Remove(uniqueName)
		if b := s.AutomaticBucket(uniqueName); b != Unknown {
			return b
		}
		active.Add(uniqueName)
		return Active
	case active.Contains(uniqueName):
		active.Remove(uniqueName)
		manual.Add(uniqueName)
		return ManuallyFiltered
	default:
		manual.Add(uniqueName)
		return ManuallyFiltered
	}
}

// Summary counts the receptacles recorded in each bucket.
type Summary struct {
	Active            int
	ManuallyFiltered  int
	AccessFiltered    int
	StabilityFiltered int
	HeightFiltered    int
}

// String formats the summary for logs and status lines.
func (s Summary) String() string {
	return fmt.Sprintf("active=%d manually_filtered=%d access_filtered=%d stability_filtered=%d height_filtered=%d",
		s.Active, s.ManuallyFiltered, s.AccessFiltered, s.StabilityFiltered, s.HeightFiltered)
}

// Summary returns the bucket sizes.
func (s *State) Summary() Summary {
	return Summary{
		Active:            s.active.Len(),
		ManuallyFiltered:  s.manuallyFiltered.Len(),
		AccessFiltered:    s.accessFiltered.Len(),
		StabilityFiltered: s.stabilityFiltered.Len(),
		HeightFiltered:    s.heightFiltered.Len(),
	}
}
