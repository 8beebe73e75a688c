package viewer

import (
	"github.com/lucasb-eyer/go-colorful"
	"github.com/pkg/errors"

	"go.viam.com/sceneviewer/recfilter"
	"go.viam.com/sceneviewer/shapemetrics"
)

// Receptacle overlay colors.
var (
	Red     = colorful.Color{R: 1}
	Green   = colorful.Color{G: 1}
	Blue    = colorful.Color{B: 1}
	Yellow  = colorful.Color{R: 1, G: 1}
	Cyan    = colorful.Color{G: 1, B: 1}
	Magenta = colorful.Color{R: 1, B: 1}
)

// Lerp interpolates linearly between two colors in CIE XYZ space.
type Lerp struct {
	x0, y0, z0 float64
	dx, dy, dz float64
}

// NewLerp returns a Lerp from c0 at 0 to c1 at 1.
func NewLerp(c0, c1 colorful.Color) Lerp {
	x0, y0, z0 := c0.Xyz()
	x1, y1, z1 := c1.Xyz()
	return Lerp{x0: x0, y0: y0, z0: z0, dx: x1 - x0, dy: y1 - y0, dz: z1 - z0}
}

// At returns the color at t, which must be in [0, 1].
func (l Lerp) At(t float64) (colorful.Color, error) {
	if t < 0 || t > 1 {
		return colorful.Color{}, errors.Errorf("cannot extrapolate color at %v outside [0, 1]", t)
	}
	return colorful.Xyz(l.x0+l.dx*t, l.y0+l.dy*t, l.z0+l.dz*t).Clamped(), nil
}

// heatmap maps 0 to red and 1 to green.
var heatmap = NewLerp(Red, Green)

// BucketColor is the FILTERING mode color of a filter bucket. Receptacles unknown to the filter
// state, for example ones newer than the filter file, are blue like height filtered ones.
func BucketColor(b recfilter.Bucket) colorful.Color {
	switch b {
	case recfilter.Active:
		return Green
	case recfilter.ManuallyFiltered:
		return Yellow
	case recfilter.AccessFiltered:
		return Red
	case recfilter.StabilityFiltered:
		return Magenta
	case recfilter.HeightFiltered, recfilter.Unknown:
		return Blue
	default:
		return Blue
	}
}

// ReceptacleColor decides the overlay color of a receptacle. ok is false when the renderer's
// default color should be used. The selected receptacle is always cyan; in FILTERING mode with a
// filter state the color follows the bucket; heatmap modes color by the receptacle's metric when
// metrics are available.
func ReceptacleColor(
	uniqueName string,
	selected bool,
	mode ColorMode,
	state *recfilter.State,
	rm *shapemetrics.ReceptacleMetrics,
) (c colorful.Color, ok bool, err error) {
	switch {
	case selected:
		return Cyan, true, nil
	case state != nil && mode == ColorFiltering:
		return BucketColor(state.Bucket(uniqueName)), true, nil
	case rm != nil:
		variant, stability, heat := mode.metric()
		if !heat {
			return colorful.Color{}, false, nil
		}
		res, found := rm.Shape(variant)
		if !found {
			return colorful.Color{}, false, nil
		}
		var value float64
		switch {
		case stability && res.Stability != nil:
			value = res.Stability.SuccessRatio
		case !stability && res.Access != nil:
			value = res.Access.ReceptacleAccessScore
		default:
			return colorful.Color{}, false, nil
		}
		c, err := heatmap.At(value)
		if err != nil {
			return colorful.Color{}, false, errors.Wrapf(err, "receptacle %q", uniqueName)
		}
		return c, true, nil
	default:
		return colorful.Color{}, false, nil
	}
}

// sampleMetrics picks the per sample point metric shown for a color mode. Modes without a
// metric of their own show ground truth access.
func sampleMetrics(rm *shapemetrics.ReceptacleMetrics, mode ColorMode) ([]float64, bool) {
	variant, stability, heat := mode.metric()
	if !heat {
		variant, stability = shapemetrics.GroundTruth, false
	}
	return rm.PointMetrics(variant, stability)
}
