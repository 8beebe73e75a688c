// Package markers holds marker sets: named lists of points annotated on the links of
// articulated objects, expressed in each link's local frame.
package markers

import (
	"fmt"
	"math"
	"sort"

	"github.com/golang/geo/r3"
	"github.com/samber/lo"
)

// Set is a named, ordered list of marker points in a link's local frame.
type Set struct {
	Name   string
	Points []r3.Vector
}

// DefaultSetName is the name given to a new set created at index i.
func DefaultSetName(i int) string {
	return fmt.Sprintf("handle_%d", i)
}

// Sets holds the marker sets of every object, keyed by object handle and link index. The sets of
// a link keep the order they were created in. The zero value is empty and ready to use.
type Sets struct {
	objects map[string]map[int][]*Set
}

// NewSets returns an empty Sets.
func NewSets() *Sets {
	return &Sets{}
}

func (s *Sets) find(object string, link int, name string) *Set {
	for _, set := range s.objects[object][link] {
		if set.Name == name {
			return set
		}
	}
	return nil
}

// SetNames returns the names of a link's sets in creation order.
func (s *Sets) SetNames(object string, link int) []string {
	return lo.Map(s.objects[object][link], func(set *Set, _ int) string { return set.Name })
}

// Points returns a copy of the points of a set, or nil if it does not exist.
func (s *Sets) Points(object string, link int, name string) []r3.Vector {
	set := s.find(object, link, name)
	if set == nil {
		return nil
	}
	return clonePoints(set.Points)
}

// Add appends pt to the named set, creating the set if needed.
func (s *Sets) Add(object string, link int, name string, pt r3.Vector) {
	if set := s.find(object, link, name); set != nil {
		set.Points = append(set.Points, pt)
		return
	}
	if s.objects == nil {
		s.objects = map[string]map[int][]*Set{}
	}
	if s.objects[object] == nil {
		s.objects[object] = map[int][]*Set{}
	}
	s.objects[object][link] = append(s.objects[object][link], &Set{Name: name, Points: []r3.Vector{pt}})
}

// RemoveNearest removes the point of the named set closest to pt and returns it. ok is false if
// the set does not exist or is empty. An emptied set is kept so its index does not shift.
func (s *Sets) RemoveNearest(object string, link int, name string, pt r3.Vector) (removed r3.Vector, ok bool) {
	set := s.find(object, link, name)
	if set == nil || len(set.Points) == 0 {
		return r3.Vector{}, false
	}
	closest, closestDist := 0, math.Inf(1)
	for i, p := range set.Points {
		if d := p.Distance(pt); d < closestDist {
			closest, closestDist = i, d
		}
	}
	removed = set.Points[closest]
	set.Points = append(set.Points[:closest], set.Points[closest+1:]...)
	return removed, true
}

// HasObject reports whether any marker set was recorded for object.
func (s *Sets) HasObject(object string) bool {
	_, ok := s.objects[object]
	return ok
}

// Objects returns the handles of every object with marker sets, sorted.
func (s *Sets) Objects() []string {
	handles := lo.Keys(s.objects)
	sort.Strings(handles)
	return handles
}

// Links returns the link indices of an object that have marker sets, sorted.
func (s *Sets) Links(object string) []int {
	links := lo.Keys(s.objects[object])
	sort.Ints(links)
	return links
}

// Object returns a deep copy of every set of an object by link.
func (s *Sets) Object(object string) map[int][]Set {
	out := make(map[int][]Set, len(s.objects[object]))
	for link, sets := range s.objects[object] {
		out[link] = lo.Map(sets, func(set *Set, _ int) Set {
			return Set{Name: set.Name, Points: clonePoints(set.Points)}
		})
	}
	return out
}

// ReplaceObject replaces every set of an object.
func (s *Sets) ReplaceObject(object string, links map[int][]Set) {
	if s.objects == nil {
		s.objects = map[string]map[int][]*Set{}
	}
	byLink := make(map[int][]*Set, len(links))
	for link, sets := range links {
		for _, set := range sets {
			set := set
			set.Points = clonePoints(set.Points)
			byLink[link] = append(byLink[link], &set)
		}
	}
	s.objects[object] = byLink
}

// Len returns the number of sets across every object and link.
func (s *Sets) Len() int {
	n := 0
	for _, links := range s.objects {
		for _, sets := range links {
			n += len(sets)
		}
	}
	return n
}

func clonePoints(points []r3.Vector) []r3.Vector {
	out := make([]r3.Vector, len(points))
	copy(out, points)
	return out
}
