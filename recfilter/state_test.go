package recfilter

import (
	"testing"

	"go.viam.com/test"
)

func TestNameSet(t *testing.T) {
	s := NewNameSet("b", "a", "b")
	test.That(t, s.Names(), test.ShouldResemble, []string{"b", "a"})
	test.That(t, s.Add("a"), test.ShouldBeFalse)
	test.That(t, s.Add("c"), test.ShouldBeTrue)
	test.That(t, s.Remove("b"), test.ShouldBeTrue)
	test.That(t, s.Remove("b"), test.ShouldBeFalse)
	test.That(t, s.Names(), test.ShouldResemble, []string{"a", "c"})
	test.That(t, s.Contains("c"), test.ShouldBeTrue)
	test.That(t, s.Len(), test.ShouldEqual, 2)

	var empty *NameSet
	test.That(t, empty.Contains("a"), test.ShouldBeFalse)
	test.That(t, empty.Names(), test.ShouldResemble, []string{})
}

func TestBucketString(t *testing.T) {
	test.That(t, Active.String(), test.ShouldEqual, "active")
	test.That(t, ManuallyFiltered.String(), test.ShouldEqual, "manually_filtered")
	test.That(t, HeightFiltered.String(), test.ShouldEqual, "height_filtered")
	test.That(t, Bucket(42).String(), test.ShouldEqual, "Bucket(42)")
	test.That(t, AccessFiltered.Automatic(), test.ShouldBeTrue)
	test.That(t, ManuallyFiltered.Automatic(), test.ShouldBeFalse)
}

func TestToggleManual(t *testing.T) {
	t.Run("active twice returns to active", func(t *testing.T) {
		state := NewState(DefaultAccessThreshold, DefaultStabilityThreshold)
		state.place(r3, Active)

		test.That(t, state.ToggleManual(r3), test.ShouldEqual, ManuallyFiltered)
		test.That(t, state.IsActive(r3), test.ShouldBeFalse)
		test.That(t, state.Bucket(r3), test.ShouldEqual, ManuallyFiltered)

		test.That(t, state.ToggleManual(r3), test.ShouldEqual, Active)
		test.That(t, state.Bucket(r3), test.ShouldEqual, Active)
		test.That(t, state.Set(ManuallyFiltered).Len(), test.ShouldEqual, 0)
		test.That(t, state.Active(), test.ShouldResemble, []string{r3})
	})

	t.Run("automatic record is kept", func(t *testing.T) {
		state := NewState(DefaultAccessThreshold, DefaultStabilityThreshold)
		state.place(r1, AccessFiltered)

		test.That(t, state.ToggleManual(r1), test.ShouldEqual, ManuallyFiltered)
		test.That(t, state.Bucket(r1), test.ShouldEqual, ManuallyFiltered)
		test.That(t, state.AutomaticBucket(r1), test.ShouldEqual, AccessFiltered)

		test.That(t, state.ToggleManual(r1), test.ShouldEqual, AccessFiltered)
		test.That(t, state.Bucket(r1), test.ShouldEqual, AccessFiltered)
		test.That(t, state.IsActive(r1), test.ShouldBeFalse)
	})

	t.Run("unknown receptacle", func(t *testing.T) {
		state := NewState(DefaultAccessThreshold, DefaultStabilityThreshold)
		test.That(t, state.Bucket("new_:0000|top"), test.ShouldEqual, Unknown)
		test.That(t, state.ToggleManual("new_:0000|top"), test.ShouldEqual, ManuallyFiltered)
		test.That(t, state.ToggleManual("new_:0000|top"), test.ShouldEqual, Active)
	})
}

func TestPlace(t *testing.T) {
	state := NewState(DefaultAccessThreshold, DefaultStabilityThreshold)
	state.place(r2, AccessFiltered)
	state.place(r2, StabilityFiltered)
	state.place(r2, StabilityFiltered)
	test.That(t, state.Summary(), test.ShouldResemble, Summary{StabilityFiltered: 1})
	state.place(r2, Active)
	test.That(t, state.Summary(), test.ShouldResemble, Summary{Active: 1})
	test.That(t, state.Summary().String(), test.ShouldEqual,
		"active=1 manually_filtered=0 access_filtered=0 stability_filtered=0 height_filtered=0")
}

func TestZeroState(t *testing.T) {
	var state State
	test.That(t, state.Bucket(r1), test.ShouldEqual, Unknown)
	test.That(t, state.IsActive(r1), test.ShouldBeFalse)
	test.That(t, state.Active(), test.ShouldResemble, []string{})
	test.That(t, state.Summary(), test.ShouldResemble, Summary{})

	test.That(t, state.ToggleManual(r1), test.ShouldEqual, ManuallyFiltered)
	test.That(t, state.ToggleManual(r1), test.ShouldEqual, Active)
	state.place(r2, StabilityFiltered)
	test.That(t, state.Summary(), test.ShouldResemble, Summary{Active: 1, StabilityFiltered: 1})

	var set *NameSet
	test.That(t, set.Remove("a"), test.ShouldBeFalse)
}
