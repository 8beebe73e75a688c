package viewer

import (
	"context"
	"math"

	"github.com/golang/geo/r3"
	"github.com/lucasb-eyer/go-colorful"

	"go.viam.com/sceneviewer/markers"
	"go.viam.com/sceneviewer/scene"
	"go.viam.com/sceneviewer/spatialmath"
)

// LeftClick adds a marker to the selected set at what the ray hits first in MARKER mode. It does
// nothing in other modes.
func (v *Viewer) LeftClick(ctx context.Context, ray scene.Ray, mods Modifiers) error {
	if v.mouseMode != MouseMarker {
		return nil
	}
	return v.markerClick(ctx, ray, false)
}

// markerClick adds or removes a marker in the link frame of the hit link. When the selected set
// index is past the link's last set it is clamped to one past the end, which names a new set.
func (v *Viewer) markerClick(ctx context.Context, ray scene.Ray, remove bool) error {
	hits, err := v.scene.CastRay(ctx, ray, pickDistance)
	if err != nil {
		return err
	}
	if len(hits) == 0 {
		return nil
	}
	hit := hits[0]
	if !hit.OnLink {
		name := hit.ObjectHandle
		if hit.Stage || name == "" {
			name = "stage"
		}
		v.logger.Warnw("cannot add marker, hit is not on an articulated link", "object", name)
		return nil
	}
	poser, ok := v.scene.(scene.LinkPoser)
	if !ok {
		return ErrNoLinkPoses
	}
	linkPose, err := poser.LinkPose(ctx, hit.ObjectHandle, hit.Link)
	if err != nil {
		return err
	}
	local := spatialmath.TransformPoint(spatialmath.PoseInverse(linkPose), hit.Point)

	names := v.markerSets.SetNames(hit.ObjectHandle, hit.Link)
	var name string
	if v.selectedMarkerSet >= len(names) {
		v.selectedMarkerSet = len(names)
		name = markers.DefaultSetName(v.selectedMarkerSet)
	} else {
		name = names[v.selectedMarkerSet]
	}

	if remove {
		if removed, ok := v.markerSets.RemoveNearest(hit.ObjectHandle, hit.Link, name, local); ok {
			v.logger.Debugw("removed marker", "object", hit.ObjectHandle, "link", hit.Link, "set", name, "point", removed)
		}
		return nil
	}
	v.markerSets.Add(hit.ObjectHandle, hit.Link, name, local)
	v.logger.Debugw("added marker", "object", hit.ObjectHandle, "link", hit.Link, "set", name, "point", local)
	return nil
}

// ScrollMarkerSet moves the selected marker set index up or down, never below zero, and returns
// it. It does nothing outside MARKER mode.
func (v *Viewer) ScrollMarkerSet(up bool) int {
	if v.mouseMode != MouseMarker {
		return v.selectedMarkerSet
	}
	if up {
		v.selectedMarkerSet++
	} else {
		v.selectedMarkerSet = max(v.selectedMarkerSet-1, 0)
	}
	return v.selectedMarkerSet
}

// SelectedMarkerSet is the index of the marker set clicks edit.
func (v *Viewer) SelectedMarkerSet() int {
	return v.selectedMarkerSet
}

// MarkerSets returns the marker sets being edited.
func (v *Viewer) MarkerSets() *markers.Sets {
	return v.markerSets
}

// MouseModeCommand saves the marker sets of the selected object (shift) when it has any, and
// otherwise cycles the mouse mode.
func (v *Viewer) MouseModeCommand(ctx context.Context, mods Modifiers) error {
	if !mods.Shift || v.selectedObject == "" || !v.markerSets.HasObject(v.selectedObject) {
		v.CycleMouseMode()
		return nil
	}
	return v.SaveMarkerSets(ctx, v.selectedObject)
}

// SaveMarkerSets persists the marker sets of one object.
func (v *Viewer) SaveMarkerSets(ctx context.Context, object string) error {
	if v.markerStore == nil {
		return ErrNoMarkerStore
	}
	if err := v.markerStore.SaveObject(ctx, object, v.markerSets.Object(object)); err != nil {
		return err
	}
	v.logger.Infow("saved marker sets", "object", object)
	return nil
}

// MarkerOverlay is one marker set in world coordinates.
type MarkerOverlay struct {
	Object string
	Link   int
	Set    string
	Color  colorful.Color
	Points []r3.Vector
}

// markerColor spreads hues by the golden angle so neighbouring sets differ.
func markerColor(i int) colorful.Color {
	return colorful.Hsv(math.Mod(float64(i)*137.508, 360), 0.8, 0.9)
}

// MarkerOverlays places every marker set in the world using the current link poses.
func (v *Viewer) MarkerOverlays(ctx context.Context) ([]MarkerOverlay, error) {
	if v.markerSets.Len() == 0 {
		return nil, nil
	}
	poser, ok := v.scene.(scene.LinkPoser)
	if !ok {
		return nil, ErrNoLinkPoses
	}
	var overlays []MarkerOverlay
	for _, object := range v.markerSets.Objects() {
		byLink := v.markerSets.Object(object)
		for _, link := range v.markerSets.Links(object) {
			linkPose, err := poser.LinkPose(ctx, object, link)
			if err != nil {
				return nil, err
			}
			for _, set := range byLink[link] {
				points := make([]r3.Vector, 0, len(set.Points))
				for _, p := range set.Points {
					points = append(points, spatialmath.TransformPoint(linkPose, p))
				}
				overlays = append(overlays, MarkerOverlay{
					Object: object,
					Link:   link,
					Set:    set.Name,
					Color:  markerColor(len(overlays)),
					Points: points,
				})
			}
		}
	}
	return overlays, nil
}
