package clutter_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"

	"go.viam.com/sceneviewer/clutter"
	"go.viam.com/sceneviewer/logging"
	"go.viam.com/sceneviewer/scene"
	"go.viam.com/sceneviewer/spatialmath"
	"go.viam.com/sceneviewer/testutils/inject"
)

// spawningSampler places one object per receptacle at the origin.
func spawningSampler(f *scene.File) *inject.Sampler {
	var spawned int
	return &inject.Sampler{
		SampleFunc: func(ctx context.Context, req clutter.SampleRequest) ([]clutter.Placement, error) {
			var out []clutter.Placement
			for range req.Receptacles {
				handle := fmt.Sprintf("%s_:%04d", req.TemplateHandles[spawned%len(req.TemplateHandles)], spawned)
				spawned++
				pose := spatialmath.NewZeroPose()
				f.AddObject(scene.Object{Handle: handle, Pose: pose})
				out = append(out, clutter.Placement{ObjectHandle: handle, Pose: pose})
			}
			return out, nil
		},
	}
}

func request(receptacles ...string) clutter.SampleRequest {
	return clutter.SampleRequest{
		TemplateHandles: []string{"024_bowl"},
		Receptacles:     receptacles,
		MinCount:        clutter.DefaultMinCount,
		MaxCount:        clutter.DefaultMaxCount,
	}
}

func TestTrackerStability(t *testing.T) {
	ctx := context.Background()
	logger := logging.NewTestLogger(t)
	f := &scene.File{}
	tracker := clutter.NewTracker(f, spawningSampler(f), logger)

	records, err := tracker.Sample(ctx, request("table_:0000|top", "shelf_:0001|shelf_0"))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, records, test.ShouldHaveLength, 2)
	test.That(t, records[0].ID, test.ShouldNotEqual, records[1].ID)
	test.That(t, tracker.Len(), test.ShouldEqual, 2)

	n, err := tracker.Update(ctx)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, n, test.ShouldEqual, 0)

	// settles 0.15 above where it spawned
	test.That(t, f.SetObjectPose(records[0].ObjectHandle, spatialmath.NewPoseFromPoint(r3.Vector{Y: 0.15})), test.ShouldBeNil)
	// within tolerance
	test.That(t, f.SetObjectPose(records[1].ObjectHandle, spatialmath.NewPoseFromPoint(r3.Vector{X: 0.05, Z: 0.05})), test.ShouldBeNil)
	n, err = tracker.Update(ctx)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, n, test.ShouldEqual, 1)
	test.That(t, tracker.UnstableCount(), test.ShouldEqual, 1)

	// recomputed every tick rather than accumulated
	test.That(t, f.SetObjectPose(records[0].ObjectHandle, spatialmath.NewZeroPose()), test.ShouldBeNil)
	n, err = tracker.Update(ctx)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, n, test.ShouldEqual, 0)

	t.Run("rotation alone is not displacement", func(t *testing.T) {
		rotated := spatialmath.NewPoseFromAxisAngle(r3.Vector{}, r3.Vector{X: 1}, 1.5)
		test.That(t, f.SetObjectPose(records[0].ObjectHandle, rotated), test.ShouldBeNil)
		n, err := tracker.Update(ctx)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, n, test.ShouldEqual, 0)
	})

	t.Run("missing objects are reported", func(t *testing.T) {
		test.That(t, f.RemoveObject(ctx, records[1].ObjectHandle), test.ShouldBeNil)
		test.That(t, f.SetObjectPose(records[0].ObjectHandle, spatialmath.NewPoseFromPoint(r3.Vector{Y: 0.15})), test.ShouldBeNil)
		n, err := tracker.Update(ctx)
		test.That(t, err, test.ShouldNotBeNil)
		test.That(t, n, test.ShouldEqual, 1)
	})
}

func TestTrackerSampleErrors(t *testing.T) {
	ctx := context.Background()
	logger := logging.NewTestLogger(t)
	f := &scene.File{}

	failing := &inject.Sampler{
		SampleFunc: func(ctx context.Context, req clutter.SampleRequest) ([]clutter.Placement, error) {
			return nil, errors.New("no valid placement")
		},
	}
	tracker := clutter.NewTracker(f, failing, logger)
	_, err := tracker.Sample(ctx, request("table_:0000|top"))
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "no valid placement")
	test.That(t, tracker.Len(), test.ShouldEqual, 0)

	for name, req := range map[string]clutter.SampleRequest{
		"no receptacles": request(),
		"no templates":   {Receptacles: []string{"a|b"}, MinCount: 1, MaxCount: 10},
		"zero min":       {TemplateHandles: []string{"x"}, Receptacles: []string{"a|b"}, MinCount: 0, MaxCount: 10},
		"max below min":  {TemplateHandles: []string{"x"}, Receptacles: []string{"a|b"}, MinCount: 5, MaxCount: 2},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := tracker.Sample(ctx, req)
			test.That(t, err, test.ShouldNotBeNil)
		})
	}
}

func TestTrackerClear(t *testing.T) {
	ctx := context.Background()
	logger := logging.NewTestLogger(t)
	f := &scene.File{}
	tracker := clutter.NewTracker(f, spawningSampler(f), logger)

	records, err := tracker.Sample(ctx, request("a|top", "b|top", "c|top"))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, f.SetObjectPose(records[0].ObjectHandle, spatialmath.NewPoseFromPoint(r3.Vector{Y: 1})), test.ShouldBeNil)
	_, err = tracker.Update(ctx)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, tracker.UnstableCount(), test.ShouldEqual, 1)

	// one object was already removed by someone else
	test.That(t, f.RemoveObject(ctx, records[1].ObjectHandle), test.ShouldBeNil)

	err = tracker.Clear(ctx)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, records[1].ID.String())
	test.That(t, tracker.Len(), test.ShouldEqual, 0)
	test.That(t, tracker.Records(), test.ShouldBeEmpty)
	test.That(t, tracker.UnstableCount(), test.ShouldEqual, 0)

	objs, err := f.Objects(ctx)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, objs, test.ShouldBeEmpty)

	test.That(t, tracker.Clear(ctx), test.ShouldBeNil)
}

func TestResolveTemplates(t *testing.T) {
	ctx := context.Background()
	s := inject.FileScene(&scene.File{})
	s.TemplateHandlesFunc = func(ctx context.Context, substring string) ([]string, error) {
		if substring == "003_cracker_box" {
			return nil, nil
		}
		return []string{"data/objects/ycb/configs/" + substring + ".object_config.json"}, nil
	}

	handles, err := clutter.ResolveTemplates(ctx, s, []string{"024_bowl", "002_master_chef_can"})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, handles, test.ShouldResemble, []string{
		"data/objects/ycb/configs/024_bowl.object_config.json",
		"data/objects/ycb/configs/002_master_chef_can.object_config.json",
	})

	_, err = clutter.ResolveTemplates(ctx, s, clutter.DefaultTemplates)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "003_cracker_box")
	test.That(t, clutter.DefaultTemplates, test.ShouldHaveLength, 9)
}
