package viewer

import (
	"testing"

	"go.viam.com/test"

	"go.viam.com/sceneviewer/recfilter"
	"go.viam.com/sceneviewer/shapemetrics"
)

func TestLerp(t *testing.T) {
	c, err := heatmap.At(0)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, c.AlmostEqualRgb(Red), test.ShouldBeTrue)

	c, err = heatmap.At(1)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, c.AlmostEqualRgb(Green), test.ShouldBeTrue)

	mid, err := heatmap.At(0.5)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, mid.R, test.ShouldBeGreaterThan, 0)
	test.That(t, mid.G, test.ShouldBeGreaterThan, 0)
	test.That(t, mid.IsValid(), test.ShouldBeTrue)

	_, err = heatmap.At(1.01)
	test.That(t, err, test.ShouldNotBeNil)
	_, err = heatmap.At(-0.01)
	test.That(t, err, test.ShouldNotBeNil)
}

func TestReceptacleColor(t *testing.T) {
	const name = "table_:0000|top"
	rm := &shapemetrics.ReceptacleMetrics{ShapeIDResults: map[string]*shapemetrics.ShapeResults{
		shapemetrics.GroundTruth: {
			Access:    &shapemetrics.AccessResults{ReceptacleAccessScore: 1},
			Stability: &shapemetrics.StabilityResults{SuccessRatio: 0},
		},
	}}
	state := recfilter.NewState(recfilter.DefaultAccessThreshold, recfilter.DefaultStabilityThreshold)
	state.Set(recfilter.AccessFiltered).Add(name)

	t.Run("selected wins", func(t *testing.T) {
		c, ok, err := ReceptacleColor(name, true, ColorFiltering, state, rm)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, ok, test.ShouldBeTrue)
		test.That(t, c, test.ShouldResemble, Cyan)
	})

	t.Run("filtering follows the bucket", func(t *testing.T) {
		c, ok, err := ReceptacleColor(name, false, ColorFiltering, state, rm)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, ok, test.ShouldBeTrue)
		test.That(t, c, test.ShouldResemble, Red)

		c, _, err = ReceptacleColor("unknown|top", false, ColorFiltering, state, rm)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, c, test.ShouldResemble, Blue)
	})

	t.Run("heatmaps", func(t *testing.T) {
		c, ok, err := ReceptacleColor(name, false, ColorGTAccess, state, rm)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, ok, test.ShouldBeTrue)
		test.That(t, c.AlmostEqualRgb(Green), test.ShouldBeTrue)

		c, ok, err = ReceptacleColor(name, false, ColorGTStability, nil, rm)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, ok, test.ShouldBeTrue)
		test.That(t, c.AlmostEqualRgb(Red), test.ShouldBeTrue)

		// no proxy results
		_, ok, err = ReceptacleColor(name, false, ColorPRAccess, nil, rm)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, ok, test.ShouldBeFalse)
	})

	t.Run("default", func(t *testing.T) {
		_, ok, err := ReceptacleColor(name, false, ColorDefault, state, rm)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, ok, test.ShouldBeFalse)

		_, ok, err = ReceptacleColor(name, false, ColorFiltering, nil, nil)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, ok, test.ShouldBeFalse)
	})

	t.Run("out of range metric", func(t *testing.T) {
		bad := &shapemetrics.ReceptacleMetrics{ShapeIDResults: map[string]*shapemetrics.ShapeResults{
			shapemetrics.Proxy: {Access: &shapemetrics.AccessResults{ReceptacleAccessScore: 1.5}},
		}}
		_, _, err := ReceptacleColor(name, false, ColorPRAccess, nil, bad)
		test.That(t, err, test.ShouldNotBeNil)
	})
}

func TestBucketColor(t *testing.T) {
	test.That(t, BucketColor(recfilter.Active), test.ShouldResemble, Green)
	test.That(t, BucketColor(recfilter.ManuallyFiltered), test.ShouldResemble, Yellow)
	test.That(t, BucketColor(recfilter.StabilityFiltered), test.ShouldResemble, Magenta)
	test.That(t, BucketColor(recfilter.HeightFiltered), test.ShouldResemble, Blue)
}
