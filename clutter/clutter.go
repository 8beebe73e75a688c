// Package clutter places test objects onto receptacles and tracks whether they stay where they
// were placed once physics runs.
package clutter

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"go.viam.com/sceneviewer/logging"
	"go.viam.com/sceneviewer/scene"
	"go.viam.com/sceneviewer/spatialmath"
	"go.viam.com/sceneviewer/utils"
)

const (
	// StabilityThreshold is the displacement from the baseline beyond which an object is unstable.
	StabilityThreshold = 0.1
	// DefaultMinCount and DefaultMaxCount bound the number of objects placed per sampling call.
	DefaultMinCount = 1
	DefaultMaxCount = 10
)

// DefaultTemplates are the YCB objects used as clutter.
var DefaultTemplates = []string{
	"002_master_chef_can",
	"003_cracker_box",
	"004_sugar_box",
	"005_tomato_soup_can",
	"007_tuna_fish_can",
	"008_pudding_box",
	"009_gelatin_box",
	"010_potted_meat_can",
	"024_bowl",
}

// ResolveTemplates maps template names to the first registered template handle containing each.
func ResolveTemplates(ctx context.Context, lib scene.TemplateLibrary, names []string) ([]string, error) {
	handles := make([]string, 0, len(names))
	for _, name := range names {
		matches, err := lib.TemplateHandles(ctx, name)
		if err != nil {
			return nil, err
		}
		if len(matches) == 0 {
			return nil, utils.NewTemplateNotFoundError(name)
		}
		handles = append(handles, matches[0])
	}
	return handles, nil
}

// SampleRequest asks the host to place objects onto receptacles.
type SampleRequest struct {
	TemplateHandles []string
	// Receptacles are receptacle unique names.
	Receptacles []string
	MinCount    int
	MaxCount    int
}

// Validate checks the request before any object is placed.
func (req SampleRequest) Validate() error {
	if len(req.TemplateHandles) == 0 {
		return errors.New("no clutter templates to sample from")
	}
	if len(req.Receptacles) == 0 {
		return errors.New("no receptacles to sample onto")
	}
	if req.MinCount < 1 || req.MaxCount < req.MinCount {
		return errors.Errorf("invalid clutter count range [%d, %d]", req.MinCount, req.MaxCount)
	}
	return nil
}

// Placement is an object the host placed successfully, with its pose right after spawning.
type Placement struct {
	ObjectHandle string
	Pose         spatialmath.Pose
}

// A Sampler places objects onto receptacles, checking support and collisions. Only placements
// that passed those checks are returned.
type Sampler interface {
	Sample(ctx context.Context, req SampleRequest) ([]Placement, error)
}

// Record is a tracked clutter object.
type Record struct {
	ID           uuid.UUID
	ObjectHandle string
	// Baseline is the pose at spawn time.
	Baseline spatialmath.Pose
}

// Tracker owns the clutter objects placed into a scene.
type Tracker struct {
	objects scene.Objects
	sampler Sampler
	logger  logging.Logger

	mu       sync.Mutex
	records  []Record
	unstable int
}

// NewTracker returns a Tracker with nothing placed.
func NewTracker(objects scene.Objects, sampler Sampler, logger logging.Logger) *Tracker {
	return &Tracker{objects: objects, sampler: sampler, logger: logger}
}

// Sample places clutter and starts tracking every successful placement. It returns the new
// records.
func (t *Tracker) Sample(ctx context.Context, req SampleRequest) ([]Record, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	placements, err := t.sampler.Sample(ctx, req)
	if err != nil {
		return nil, errors.Wrap(err, "cannot sample clutter")
	}

	added := make([]Record, 0, len(placements))
	for _, p := range placements {
		rec := Record{ID: uuid.New(), ObjectHandle: p.ObjectHandle, Baseline: p.Pose}
		if rec.Baseline == nil {
			rec.Baseline = spatialmath.NewZeroPose()
		}
		added = append(added, rec)
		t.logger.Debugw("tracking clutter object", "id", rec.ID.String(), "object", rec.ObjectHandle)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.records = append(t.records, added...)
	t.logger.Infow("sampled clutter",
		"requested_receptacles", len(req.Receptacles), "placed", len(added), "tracked", len(t.records))
	return added, nil
}

// Update compares every tracked object's current position to its baseline and returns how many
// moved more than StabilityThreshold. Objects that cannot be looked up are skipped and their
// errors combined.
func (t *Tracker) Update(ctx context.Context) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	var (
		unstable int
		errs     error
	)
	for _, rec := range t.records {
		obj, err := t.objects.ObjectByHandle(ctx, rec.ObjectHandle)
		if err != nil {
			errs = multierr.Combine(errs, err)
			continue
		}
		if spatialmath.Displacement(rec.Baseline, obj.Pose) > StabilityThreshold {
			unstable++
		}
	}
	t.unstable = unstable
	return unstable, errs
}

// UnstableCount is the result of the last Update.
func (t *Tracker) UnstableCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.unstable
}

// Len is the number of tracked objects.
func (t *Tracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.records)
}

// Records returns a copy of the tracked objects.
func (t *Tracker) Records() []Record {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]Record(nil), t.records...)
}

// Clear stops tracking every object and removes them from the scene. Tracking is emptied in one
// step before any removal; removal errors are combined and returned.
func (t *Tracker) Clear(ctx context.Context) error {
	t.mu.Lock()
	records := t.records
	t.records = nil
	t.unstable = 0
	t.mu.Unlock()

	var errs error
	for _, rec := range records {
		if err := t.objects.RemoveObject(ctx, rec.ObjectHandle); err != nil {
			errs = multierr.Combine(errs, errors.Wrapf(err, "cannot remove clutter object %s", rec.ID))
		}
	}
	t.logger.Infow("cleared clutter", "removed", len(records)-len(multierr.Errors(errs)), "failed", len(multierr.Errors(errs)))
	return errs
}
