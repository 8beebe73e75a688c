package viewer

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"go.viam.com/sceneviewer/shapemetrics"
)

// ColorMode selects how receptacles are colored.
type ColorMode int

// Color modes in cycling order.
const (
	// ColorDefault leaves receptacles in the renderer's default color.
	ColorDefault ColorMode = iota
	ColorGTAccess
	ColorGTStability
	ColorPRAccess
	ColorPRStability
	// ColorFiltering colors receptacles by their filter bucket.
	ColorFiltering

	numColorModes = iota
)

// Next returns the mode after m, wrapping around.
func (m ColorMode) Next() ColorMode {
	return ColorMode((int(m) + 1) % numColorModes)
}

func (m ColorMode) String() string {
	switch m {
	case ColorDefault:
		return "DEFAULT"
	case ColorGTAccess:
		return "GT_ACCESS"
	case ColorGTStability:
		return "GT_STABILITY"
	case ColorPRAccess:
		return "PR_ACCESS"
	case ColorPRStability:
		return "PR_STABILITY"
	case ColorFiltering:
		return "FILTERING"
	default:
		return fmt.Sprintf("ColorMode(%d)", int(m))
	}
}

// ColorModeFromString parses the String form of a ColorMode, ignoring case.
func ColorModeFromString(s string) (ColorMode, error) {
	for m := ColorDefault; m < numColorModes; m++ {
		if strings.EqualFold(m.String(), s) {
			return m, nil
		}
	}
	return 0, errors.Errorf("unknown color mode %q", s)
}

// metric returns which shape variant and metric a heatmap mode shows. ok is false for modes that
// are not heatmaps.
func (m ColorMode) metric() (variant string, stability, ok bool) {
	switch m {
	case ColorGTAccess:
		return shapemetrics.GroundTruth, false, true
	case ColorGTStability:
		return shapemetrics.GroundTruth, true, true
	case ColorPRAccess:
		return shapemetrics.Proxy, false, true
	case ColorPRStability:
		return shapemetrics.Proxy, true, true
	case ColorDefault, ColorFiltering:
		return "", false, false
	default:
		return "", false, false
	}
}

// MouseMode selects what mouse clicks do.
type MouseMode int

// Mouse modes in cycling order.
const (
	MouseLook MouseMode = iota
	MouseGrab
	MouseMarker

	numMouseModes = iota
)

// Next returns the mode after m, wrapping around.
func (m MouseMode) Next() MouseMode {
	return MouseMode((int(m) + 1) % numMouseModes)
}

func (m MouseMode) String() string {
	switch m {
	case MouseLook:
		return "LOOK"
	case MouseGrab:
		return "GRAB"
	case MouseMarker:
		return "MARKER"
	default:
		return fmt.Sprintf("MouseMode(%d)", int(m))
	}
}
