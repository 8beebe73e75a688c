package markers

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/golang/geo/r3"
	"github.com/kylelemons/godebug/pretty"
	"github.com/pkg/errors"
	"go.viam.com/test"
)

const fridge = "fridge_:0000"

func TestSets(t *testing.T) {
	var sets Sets
	test.That(t, sets.SetNames(fridge, 1), test.ShouldBeEmpty)
	test.That(t, sets.HasObject(fridge), test.ShouldBeFalse)
	_, ok := sets.RemoveNearest(fridge, 1, DefaultSetName(0), r3.Vector{})
	test.That(t, ok, test.ShouldBeFalse)

	sets.Add(fridge, 1, DefaultSetName(0), r3.Vector{X: 1})
	sets.Add(fridge, 1, DefaultSetName(0), r3.Vector{X: 2})
	sets.Add(fridge, 1, "door", r3.Vector{Y: 1})
	sets.Add(fridge, 3, DefaultSetName(0), r3.Vector{Z: 1})
	sets.Add("cabinet_:0001", 0, DefaultSetName(0), r3.Vector{})

	test.That(t, sets.HasObject(fridge), test.ShouldBeTrue)
	test.That(t, sets.SetNames(fridge, 1), test.ShouldResemble, []string{"handle_0", "door"})
	test.That(t, sets.Links(fridge), test.ShouldResemble, []int{1, 3})
	test.That(t, sets.Objects(), test.ShouldResemble, []string{"cabinet_:0001", fridge})
	test.That(t, sets.Len(), test.ShouldEqual, 4)
	test.That(t, sets.Points(fridge, 1, "handle_0"), test.ShouldResemble, []r3.Vector{{X: 1}, {X: 2}})
	test.That(t, sets.Points(fridge, 1, "missing"), test.ShouldBeNil)

	t.Run("remove nearest", func(t *testing.T) {
		removed, ok := sets.RemoveNearest(fridge, 1, "handle_0", r3.Vector{X: 1.8, Y: 0.3})
		test.That(t, ok, test.ShouldBeTrue)
		test.That(t, removed, test.ShouldResemble, r3.Vector{X: 2})
		test.That(t, sets.Points(fridge, 1, "handle_0"), test.ShouldResemble, []r3.Vector{{X: 1}})

		_, ok = sets.RemoveNearest(fridge, 1, "handle_0", r3.Vector{})
		test.That(t, ok, test.ShouldBeTrue)
		_, ok = sets.RemoveNearest(fridge, 1, "handle_0", r3.Vector{})
		test.That(t, ok, test.ShouldBeFalse)
		// the emptied set keeps its place
		test.That(t, sets.SetNames(fridge, 1), test.ShouldResemble, []string{"handle_0", "door"})
	})

	t.Run("object copies are independent", func(t *testing.T) {
		copied := sets.Object(fridge)
		test.That(t, copied[3], test.ShouldResemble, []Set{{Name: "handle_0", Points: []r3.Vector{{Z: 1}}}})
		copied[3][0].Points[0] = r3.Vector{Z: 9}
		test.That(t, sets.Points(fridge, 3, "handle_0"), test.ShouldResemble, []r3.Vector{{Z: 1}})

		other := NewSets()
		other.ReplaceObject(fridge, copied)
		test.That(t, other.Points(fridge, 3, "handle_0"), test.ShouldResemble, []r3.Vector{{Z: 9}})
		test.That(t, other.SetNames(fridge, 1), test.ShouldResemble, []string{"handle_0", "door"})
	})
}

func TestJSONStore(t *testing.T) {
	ctx := context.Background()
	store := &JSONStore{Path: filepath.Join(t.TempDir(), "nested", DefaultPath)}

	_, err := store.Load(ctx)
	test.That(t, errors.Is(err, os.ErrNotExist), test.ShouldBeTrue)

	fridgeSets := map[int][]Set{
		1: {
			{Name: "handle_0", Points: []r3.Vector{{X: 0.1, Y: 0.2, Z: 0.3}, {X: -1}}},
			{Name: "door", Points: []r3.Vector{}},
		},
	}
	cabinetSets := map[int][]Set{0: {{Name: "handle_0", Points: []r3.Vector{{Z: 2}}}}}
	test.That(t, store.SaveObject(ctx, fridge, fridgeSets), test.ShouldBeNil)
	test.That(t, store.SaveObject(ctx, "cabinet_:0001", cabinetSets), test.ShouldBeNil)

	loaded, err := store.Load(ctx)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, loaded.Objects(), test.ShouldResemble, []string{"cabinet_:0001", fridge})
	test.That(t, pretty.Compare(loaded.Object(fridge), fridgeSets), test.ShouldBeEmpty)
	test.That(t, pretty.Compare(loaded.Object("cabinet_:0001"), cabinetSets), test.ShouldBeEmpty)

	// saving an object again replaces only that object
	test.That(t, store.SaveObject(ctx, fridge, map[int][]Set{2: {{Name: "shelf", Points: []r3.Vector{{Y: 1}}}}}),
		test.ShouldBeNil)
	loaded, err = store.Load(ctx)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, loaded.Links(fridge), test.ShouldResemble, []int{2})
	test.That(t, loaded.Object("cabinet_:0001"), test.ShouldResemble, cabinetSets)

	t.Run("corrupt file", func(t *testing.T) {
		test.That(t, os.WriteFile(store.Path, []byte("{"), 0o600), test.ShouldBeNil)
		_, err := store.Load(ctx)
		test.That(t, err, test.ShouldNotBeNil)
		test.That(t, err.Error(), test.ShouldContainSubstring, "cannot parse marker sets")
		test.That(t, store.SaveObject(ctx, fridge, fridgeSets), test.ShouldNotBeNil)
	})
}
