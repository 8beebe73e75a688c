// Package viewer is the headless controller behind the interactive scene viewer. It owns the
// receptacle annotation workflow and the clutter stability loop and drives them once per frame;
// rendering, input and the physics engine live behind the scene collaborators.
package viewer

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/geo/r3"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/pkg/errors"
	"github.com/spf13/cast"
	"go.uber.org/multierr"
	"golang.org/x/time/rate"

	"go.viam.com/sceneviewer/clutter"
	"go.viam.com/sceneviewer/logging"
	"go.viam.com/sceneviewer/markers"
	"go.viam.com/sceneviewer/receptacle"
	"go.viam.com/sceneviewer/recfilter"
	"go.viam.com/sceneviewer/scene"
	"go.viam.com/sceneviewer/shapemetrics"
	"go.viam.com/sceneviewer/spatialmath"
)

const (
	// DefaultFPS is the physics step and frame rate.
	DefaultFPS = 60.0
	// SceneFilterFileKey is the scene user defined metadata key naming the scene's filter file,
	// relative to the dataset config directory.
	SceneFilterFileKey = "scene_filter_file"
	// pickDistance bounds mouse raycasts.
	pickDistance = 1000.0
	// frameWarnInterval is the least time between two frame failure warnings.
	frameWarnInterval = time.Second
)

var (
	// ErrNothingSelected is returned when a command needs a selected object or receptacle.
	ErrNothingSelected = errors.New("no object selected, cannot sample clutter")
	// ErrNoFilterState is returned when a command needs filter state that does not exist yet.
	ErrNoFilterState = errors.New("no receptacle filter state")
	// ErrNoTransformStore is returned when transform persistence is not configured.
	ErrNoTransformStore = errors.New("no transform store configured")
	// ErrNoMarkerStore is returned when marker set persistence is not configured.
	ErrNoMarkerStore = errors.New("no marker set store configured")
	// ErrNoLinkPoses is returned when markers are placed in a scene that cannot pose links.
	ErrNoLinkPoses = errors.New("scene cannot report link poses")
)

// Modifiers are the keyboard modifiers held during a command.
type Modifiers struct {
	Shift bool
	Alt   bool
}

// Options configures a Viewer.
type Options struct {
	// FPS defaults to DefaultFPS.
	FPS float64
	// FilterPath is where the filter state is exported and loaded. Defaults to
	// recfilter.DefaultPath. A scene filter file configured in the scene metadata takes
	// precedence.
	FilterPath string
	// Classify configures automatic filtering. Defaults to recfilter.DefaultOptions.
	Classify *recfilter.Options
	// ClutterTemplates are template names resolved on first use. Defaults to
	// clutter.DefaultTemplates.
	ClutterTemplates []string
	// WatchFilterFile reloads the filter state when the filter file changes on disk.
	WatchFilterFile bool
	// Markers persists marker sets. Sets it holds are loaded at startup.
	Markers markers.Store
	// Clock drives Run. Defaults to the wall clock.
	Clock clock.Clock
}

// Viewer is the state of one viewer session. It is driven from a single goroutine: every method
// other than Run must be called from the goroutine running the frame loop.
type Viewer struct {
	scene      scene.Scene
	transforms scene.TransformStore
	metrics    shapemetrics.Provider
	clutter    *clutter.Tracker
	logger     logging.Logger
	clk        clock.Clock
	params     *ParamEditor

	fps              float64
	classifyOpts     recfilter.Options
	clutterNames     []string
	clutterTemplates []string

	receptacles *receptacle.Index
	filterState *recfilter.State
	filterPath  string
	watcher     *recfilter.Watcher

	markerStore       markers.Store
	markerSets        *markers.Sets
	selectedMarkerSet int

	metricsReady   bool
	autoClassified bool

	simulating         bool
	stepOnce           bool
	showFiltered       bool
	displayReceptacles bool
	displaySamples     bool
	colorMode          ColorMode
	mouseMode          MouseMode

	selectedObject     string
	selectedReceptacle *receptacle.Receptacle

	timeSinceStep float64
}

// New returns a viewer over s. transforms and metrics may be nil when those features are not
// used. The scene's filter file is loaded if its metadata names one.
func New(
	ctx context.Context,
	s scene.Scene,
	transforms scene.TransformStore,
	metrics shapemetrics.Provider,
	sampler clutter.Sampler,
	opts Options,
	logger logging.Logger,
) (*Viewer, error) {
	if opts.FPS <= 0 {
		opts.FPS = DefaultFPS
	}
	if opts.FilterPath == "" {
		opts.FilterPath = recfilter.DefaultPath
	}
	classifyOpts := recfilter.DefaultOptions()
	if opts.Classify != nil {
		classifyOpts = *opts.Classify
	}
	if opts.ClutterTemplates == nil {
		opts.ClutterTemplates = clutter.DefaultTemplates
	}
	if opts.Clock == nil {
		opts.Clock = clock.New()
	}

	v := &Viewer{
		scene:          s,
		transforms:     transforms,
		metrics:        metrics,
		clutter:        clutter.NewTracker(s, sampler, logger.Sublogger("clutter")),
		logger:         logger,
		clk:            opts.Clock,
		params:         NewParamEditor(),
		fps:            opts.FPS,
		classifyOpts:   classifyOpts,
		clutterNames:   opts.ClutterTemplates,
		filterPath:     opts.FilterPath,
		markerStore:    opts.Markers,
		markerSets:     markers.NewSets(),
		showFiltered:   true,
		displaySamples: true,
		colorMode:      ColorFiltering,
		mouseMode:      MouseLook,
	}
	if err := v.bindParams(); err != nil {
		return nil, err
	}
	if err := v.LoadSceneFilterFile(ctx); err != nil {
		v.logger.Warnw("cannot load scene filter file", "error", err)
	}
	if v.markerStore != nil {
		switch sets, err := v.markerStore.Load(ctx); {
		case err == nil && sets != nil:
			v.markerSets = sets
			v.logger.Infow("loaded marker sets", "count", sets.Len())
		case err == nil:
		case errors.Is(err, os.ErrNotExist):
			v.logger.Debugw("no marker sets saved yet", "error", err)
		default:
			v.logger.Warnw("cannot load marker sets", "error", err)
		}
	}
	if opts.WatchFilterFile {
		w, err := recfilter.NewWatcher(v.filterPath, logger.Sublogger("watcher"))
		if err != nil {
			v.logger.Warnw("cannot watch filter file", "path", v.filterPath, "error", err)
		} else {
			v.watcher = w
		}
	}
	return v, nil
}

func (v *Viewer) bindParams() error {
	return multierr.Combine(
		v.params.Bind("fps", &v.fps),
		v.params.Bind("simulating", &v.simulating),
		v.params.Bind("show_filtered", &v.showFiltered),
		v.params.Bind("display_receptacles", &v.displayReceptacles),
		v.params.Bind("display_selected_stability_samples", &v.displaySamples),
		v.params.Bind("rec_access_filter_threshold", &v.classifyOpts.AccessThreshold),
		v.params.Bind("rec_stability_filter_threshold", &v.classifyOpts.StabilityThreshold),
		v.params.Bind("rec_filter_shape", &v.classifyOpts.Shape),
		v.params.Bind("rec_filter_path", &v.filterPath),
		v.params.Bind("selected_object", nil),
	)
}

// Close stops watching the filter file.
func (v *Viewer) Close() error {
	if v.watcher == nil {
		return nil
	}
	return v.watcher.Close()
}

// Params returns the parameter editor.
func (v *Viewer) Params() *ParamEditor {
	return v.params
}

// SetParam edits a parameter from user input. Failures are reported, not fatal.
func (v *Viewer) SetParam(name, value string) error {
	if err := v.params.Set(name, value); err != nil {
		return err
	}
	current, err := v.params.Get(name)
	if err != nil {
		return err
	}
	v.logger.Infow("parameter set", "name", name, "value", current, "type", fmt.Sprintf("%T", current))
	return nil
}

// LoadReceptacles discovers the scene's receptacles if that has not happened yet.
func (v *Viewer) LoadReceptacles(ctx context.Context) error {
	if v.receptacles != nil {
		return nil
	}
	idx, err := receptacle.Discover(ctx, v.scene, v.scene, v.logger)
	if err != nil {
		return err
	}
	v.receptacles = idx
	return nil
}

// Receptacles returns the discovered receptacles, or nil before LoadReceptacles.
func (v *Viewer) Receptacles() *receptacle.Index {
	return v.receptacles
}

// FilterState returns the current filter state, or nil if none exists.
func (v *Viewer) FilterState() *recfilter.State {
	return v.filterState
}

// FilterPath is where the filter state is exported to and loaded from.
func (v *Viewer) FilterPath() string {
	return v.filterPath
}

// MetricsReady reports whether shape metrics were observed ready.
func (v *Viewer) MetricsReady() bool {
	return v.metricsReady
}

// LoadSceneFilterFile loads the filter file named by the scene's user defined metadata, resolved
// relative to the dataset config directory, and makes it the export path. A scene without one
// only logs a warning.
func (v *Viewer) LoadSceneFilterFile(ctx context.Context) error {
	userDefined, err := v.scene.SceneUserDefined(ctx)
	if err != nil {
		return err
	}
	raw, ok := userDefined[SceneFilterFileKey]
	if !ok {
		v.logger.Warnw("no receptacle filter file configured for scene")
		return nil
	}
	name, err := cast.ToStringE(raw)
	if err != nil {
		return errors.Wrapf(err, "%s in scene metadata", SceneFilterFileKey)
	}
	path := filepath.Join(filepath.Dir(v.scene.DatasetConfigPath()), name)
	v.logger.Infow("scene filter file", "path", path)
	if err := v.LoadReceptacles(ctx); err != nil {
		return err
	}
	v.filterPath = path
	return v.LoadFilter()
}

// ClassifyReceptacles runs the automatic filters, keeping manual overrides.
func (v *Viewer) ClassifyReceptacles(ctx context.Context) error {
	if err := v.LoadReceptacles(ctx); err != nil {
		return err
	}
	state, err := recfilter.Classify(v.filterState, v.receptacles, v.metrics, v.classifyOpts, v.logger)
	if err != nil {
		return err
	}
	v.filterState = state
	return nil
}

// ExportFilter writes the filter state to the filter path.
func (v *Viewer) ExportFilter() error {
	if v.filterState == nil {
		return ErrNoFilterState
	}
	if err := v.filterState.Export(v.filterPath); err != nil {
		return err
	}
	v.logger.Infow("exported filter annotations", "path", v.filterPath)
	return nil
}

// LoadFilter replaces the filter state with the contents of the filter path. On failure the
// current state is kept.
func (v *Viewer) LoadFilter() error {
	state, err := recfilter.Import(v.filterPath)
	if err != nil {
		return err
	}
	v.filterState = state
	v.logger.Infow("loaded filter annotations", "path", v.filterPath, "summary", state.Summary().String())
	return nil
}

// FilterCommand exports (shift), loads (alt), or toggles showing filtered receptacles.
// Exporting without a filter state falls through to the toggle.
func (v *Viewer) FilterCommand(mods Modifiers) error {
	switch {
	case mods.Shift && v.filterState != nil:
		return v.ExportFilter()
	case mods.Alt:
		return v.LoadFilter()
	default:
		v.showFiltered = !v.showFiltered
		v.logger.Infow("show filtered receptacles", "show_filtered", v.showFiltered)
		return nil
	}
}

// ShowFiltered reports whether non-active receptacles are shown.
func (v *Viewer) ShowFiltered() bool {
	return v.showFiltered
}

// ReceptacleCommand cycles the color mode and shows receptacles (shift), or toggles showing
// them. Receptacles are discovered on first use.
func (v *Viewer) ReceptacleCommand(ctx context.Context, mods Modifiers) error {
	if err := v.LoadReceptacles(ctx); err != nil {
		return err
	}
	if mods.Shift {
		v.colorMode = v.colorMode.Next()
		v.displayReceptacles = true
		v.logger.Infow("receptacle color mode", "mode", v.colorMode.String())
		return nil
	}
	v.displayReceptacles = !v.displayReceptacles
	v.logger.Infow("display receptacles", "display_receptacles", v.displayReceptacles)
	return nil
}

// ColorMode returns the receptacle color mode.
func (v *Viewer) ColorMode() ColorMode {
	return v.colorMode
}

// SetColorMode sets the receptacle color mode.
func (v *Viewer) SetColorMode(m ColorMode) {
	v.colorMode = m
}

// DisplayReceptacles reports whether receptacles are drawn.
func (v *Viewer) DisplayReceptacles() bool {
	return v.displayReceptacles
}

// CycleMouseMode advances the mouse mode.
func (v *Viewer) CycleMouseMode() MouseMode {
	v.mouseMode = v.mouseMode.Next()
	v.logger.Infow("mouse mode", "mode", v.mouseMode.String())
	return v.mouseMode
}

// MouseMode returns the mouse mode.
func (v *Viewer) MouseMode() MouseMode {
	return v.mouseMode
}

// ToggleSimulating starts or stops continuous physics.
func (v *Viewer) ToggleSimulating() bool {
	v.simulating = !v.simulating
	v.logger.Infow("physics simulating", "simulating", v.simulating)
	return v.simulating
}

// Simulating reports whether physics runs continuously.
func (v *Viewer) Simulating() bool {
	return v.simulating
}

// StepOnce requests a single physics step at the next opportunity. It does nothing while
// simulating.
func (v *Viewer) StepOnce() {
	if v.simulating {
		v.logger.Warn("physics simulation already running")
		return
	}
	v.stepOnce = true
}

// RightClick selects what ray hits first. In LOOK mode a stage hit clears the selection and an
// object hit selects the object; with shift the receptacle closest to the hit point is also
// selected, and with alt that receptacle's manual filter is toggled instead. In MARKER mode it
// removes the marker of the selected set nearest to the hit.
func (v *Viewer) RightClick(ctx context.Context, ray scene.Ray, mods Modifiers) error {
	if v.mouseMode == MouseMarker {
		return v.markerClick(ctx, ray, true)
	}
	if v.mouseMode != MouseLook {
		return nil
	}
	hits, err := v.scene.CastRay(ctx, ray, pickDistance)
	if err != nil {
		return err
	}
	if len(hits) == 0 {
		return nil
	}
	return v.selectHit(ctx, hits[0], mods)
}

func (v *Viewer) selectHit(ctx context.Context, hit scene.RayHit, mods Modifiers) error {
	v.selectedObject = ""
	v.selectedReceptacle = nil
	if hit.Stage || hit.ObjectHandle == "" {
		v.logger.Info("selected the stage")
		return nil
	}
	v.selectedObject = hit.ObjectHandle
	v.logger.Infow("selected object", "object", hit.ObjectHandle)
	if v.receptacles != nil {
		for _, rec := range v.receptacles.ForParent(hit.ObjectHandle) {
			v.logger.Infow("object receptacle", "receptacle", rec.Name)
		}
	}
	if !mods.Shift && !mods.Alt {
		return nil
	}

	if err := v.LoadReceptacles(ctx); err != nil {
		return err
	}
	closest, err := v.receptacles.Closest(ctx, v.scene, hit.Point, receptacle.DefaultPickDistance)
	if err != nil {
		return err
	}
	if closest == nil {
		return nil
	}
	if mods.Shift {
		v.selectedReceptacle = closest
		v.logger.Infow("selected receptacle", "receptacle", closest.UniqueName())
		return nil
	}
	if v.filterState == nil {
		v.filterState = recfilter.NewState(v.classifyOpts.AccessThreshold, v.classifyOpts.StabilityThreshold)
	}
	bucket := v.filterState.ToggleManual(closest.UniqueName())
	v.logger.Infow("modified receptacle filter state", "receptacle", closest.UniqueName(), "bucket", bucket.String())
	return nil
}

// Selection returns the selected object handle, empty for none, and the selected receptacle.
func (v *Viewer) Selection() (string, *receptacle.Receptacle) {
	return v.selectedObject, v.selectedReceptacle
}

// SampleClutter places clutter onto all active receptacles (alt), the selected receptacle, or
// every receptacle of the selected object, in that order of preference.
func (v *Viewer) SampleClutter(ctx context.Context, mods Modifiers) ([]clutter.Record, error) {
	var targets []string
	switch {
	case mods.Alt:
		if v.filterState == nil {
			return nil, ErrNoFilterState
		}
		if err := v.LoadReceptacles(ctx); err != nil {
			return nil, err
		}
		for _, rec := range v.receptacles.All() {
			if v.filterState.IsActive(rec.UniqueName()) {
				targets = append(targets, rec.UniqueName())
			}
		}
	case v.selectedReceptacle != nil:
		targets = []string{v.selectedReceptacle.UniqueName()}
	case v.selectedObject != "":
		if err := v.LoadReceptacles(ctx); err != nil {
			return nil, err
		}
		for _, rec := range v.receptacles.ForParent(v.selectedObject) {
			targets = append(targets, rec.UniqueName())
		}
	default:
		return nil, ErrNothingSelected
	}

	if v.clutterTemplates == nil {
		templates, err := clutter.ResolveTemplates(ctx, v.scene, v.clutterNames)
		if err != nil {
			return nil, err
		}
		v.clutterTemplates = templates
	}
	return v.clutter.Sample(ctx, clutter.SampleRequest{
		TemplateHandles: v.clutterTemplates,
		Receptacles:     targets,
		MinCount:        clutter.DefaultMinCount,
		MaxCount:        clutter.DefaultMaxCount,
	})
}

// ClearClutter removes every clutter object.
func (v *Viewer) ClearClutter(ctx context.Context) error {
	v.logger.Infow("removing clutter objects", "count", v.clutter.Len())
	return v.clutter.Clear(ctx)
}

// Clutter returns the clutter tracker.
func (v *Viewer) Clutter() *clutter.Tracker {
	return v.clutter
}

func (v *Viewer) stepPeriod() float64 {
	if v.fps <= 0 {
		return 1 / DefaultFPS
	}
	return 1 / v.fps
}

// Frame advances the viewer by dt. It polls metric readiness, classifies receptacles once when
// they are displayed and metrics are ready but no filter state exists, applies filter file
// changes, and steps physics every 1/fps of accumulated time while simulating or when a single
// step was requested, updating clutter stability after each step.
func (v *Viewer) Frame(ctx context.Context, dt time.Duration) error {
	if !v.metricsReady && v.metrics != nil && v.metrics.Ready() {
		v.metricsReady = true
		v.logger.Info("shape metrics ready")
	}

	var errs error
	if v.displayReceptacles && v.receptacles != nil && v.filterState == nil && v.metricsReady && !v.autoClassified {
		v.autoClassified = true
		errs = multierr.Append(errs, errors.Wrap(v.ClassifyReceptacles(ctx), "cannot classify receptacles"))
	}
	errs = multierr.Append(errs, v.applyFilterChanges())

	period := v.stepPeriod()
	v.timeSinceStep += dt.Seconds()
	if v.timeSinceStep >= period {
		if v.simulating || v.stepOnce {
			v.stepOnce = false
			if err := v.scene.StepWorld(ctx, time.Duration(period*float64(time.Second))); err != nil {
				errs = multierr.Append(errs, errors.Wrap(err, "cannot step physics"))
			} else if _, err := v.clutter.Update(ctx); err != nil {
				errs = multierr.Append(errs, errors.Wrap(err, "cannot update clutter stability"))
			}
		}
		v.timeSinceStep = math.Mod(v.timeSinceStep, period)
	}
	return errs
}

func (v *Viewer) applyFilterChanges() error {
	if v.watcher == nil {
		return nil
	}
	select {
	case <-v.watcher.Changes():
	default:
		return nil
	}
	if err := v.LoadFilter(); err != nil {
		return errors.Wrap(err, "cannot reload changed filter file")
	}
	return nil
}

// Run calls Frame on every tick of the viewer's clock at fps until ctx is done. Frame errors are
// logged at most once per second of clock time and do not stop the loop; the next warning counts
// the ones left out.
func (v *Viewer) Run(ctx context.Context) error {
	ticker := v.clk.Ticker(time.Duration(v.stepPeriod() * float64(time.Second)))
	defer ticker.Stop()

	warnings := rate.NewLimiter(rate.Every(frameWarnInterval), 1)
	suppressed := 0
	last := v.clk.Now()
	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			if err := v.Frame(ctx, now.Sub(last)); err != nil {
				if warnings.AllowN(now, 1) {
					v.logger.Warnw("frame failed", "error", err, "suppressed", suppressed)
					suppressed = 0
				} else {
					suppressed++
				}
			}
			last = now
		}
	}
}

// Status is the on-screen status text.
func (v *Viewer) Status() string {
	status := fmt.Sprintf("%v FPS\nMouse Interaction Mode: %s\nReceptacle Color Mode: %s\nUnstable Objects: %d of %d",
		v.fps, v.mouseMode, v.colorMode, v.clutter.UnstableCount(), v.clutter.Len())
	if v.mouseMode == MouseMarker {
		status += fmt.Sprintf("\nSelected marker set index: %d", v.selectedMarkerSet)
	}
	return status
}

// VisibleReceptacles returns the receptacles to draw. Unless filtered receptacles are shown,
// only active ones are returned once a filter state exists.
func (v *Viewer) VisibleReceptacles() []*receptacle.Receptacle {
	if v.receptacles == nil {
		return nil
	}
	if v.filterState == nil || v.showFiltered {
		return v.receptacles.All()
	}
	var out []*receptacle.Receptacle
	for _, rec := range v.receptacles.All() {
		if v.filterState.IsActive(rec.UniqueName()) {
			out = append(out, rec)
		}
	}
	return out
}

// SampleMarker is a colored sample point in world coordinates.
type SampleMarker struct {
	Point r3.Vector
	Color colorful.Color
}

// Overlay is everything needed to draw one receptacle.
type Overlay struct {
	Receptacle *receptacle.Receptacle
	// Transform is the receptacle's local to world matrix.
	Transform mgl64.Mat4
	// Color is only meaningful when HasColor is set.
	Color    colorful.Color
	HasColor bool
	Samples  []SampleMarker
}

// Overlays computes what to draw for each visible receptacle. Nothing is drawn unless
// receptacles are displayed.
func (v *Viewer) Overlays(ctx context.Context) ([]Overlay, error) {
	if !v.displayReceptacles || v.receptacles == nil {
		return nil, nil
	}
	var metrics shapemetrics.Metrics
	if v.metricsReady {
		m, err := v.metrics.Metrics()
		if err != nil {
			return nil, err
		}
		metrics = m
	}

	visible := v.VisibleReceptacles()
	overlays := make([]Overlay, 0, len(visible))
	for _, rec := range visible {
		parent, err := v.scene.ObjectByHandle(ctx, rec.ParentObjectHandle)
		if err != nil {
			return nil, err
		}
		var rm *shapemetrics.ReceptacleMetrics
		if template, ok := v.receptacles.ParentTemplate(rec); ok && metrics != nil {
			rm, _ = metrics.Receptacle(template, rec.Name)
		}

		overlay := Overlay{Receptacle: rec, Transform: rec.GlobalTransform(parent.Pose)}
		overlay.Color, overlay.HasColor, err = ReceptacleColor(
			rec.UniqueName(), rec == v.selectedReceptacle, v.colorMode, v.filterState, rm)
		if err != nil {
			return nil, err
		}
		if rm != nil && v.displaySamples && v.selectedObject == rec.ParentObjectHandle {
			overlay.Samples, err = sampleMarkers(rm, v.colorMode, overlay.Transform)
			if err != nil {
				return nil, err
			}
		}
		overlays = append(overlays, overlay)
	}
	return overlays, nil
}

func sampleMarkers(rm *shapemetrics.ReceptacleMetrics, mode ColorMode, transform mgl64.Mat4) ([]SampleMarker, error) {
	values, ok := sampleMetrics(rm, mode)
	if !ok {
		return nil, nil
	}
	points := rm.Points()
	n := min(len(values), len(points))
	markers := make([]SampleMarker, 0, n)
	for i := 0; i < n; i++ {
		c, err := heatmap.At(values[i])
		if err != nil {
			return nil, err
		}
		markers = append(markers, SampleMarker{Point: spatialmath.MatrixTransformPoint(transform, points[i]), Color: c})
	}
	return markers, nil
}

// SaveObjectTransforms persists the current poses of the given objects, or of every object when
// none are given.
func (v *Viewer) SaveObjectTransforms(ctx context.Context, handles ...string) error {
	if v.transforms == nil {
		return ErrNoTransformStore
	}
	poses := map[string]spatialmath.Pose{}
	if len(handles) == 0 {
		objs, err := v.scene.Objects(ctx)
		if err != nil {
			return err
		}
		for _, obj := range objs {
			poses[obj.Handle] = obj.Pose
		}
	}
	for _, handle := range handles {
		obj, err := v.scene.ObjectByHandle(ctx, handle)
		if err != nil {
			return err
		}
		poses[handle] = obj.Pose
	}
	if err := v.transforms.SaveTransforms(ctx, poses); err != nil {
		return errors.Wrap(err, "cannot save object transforms")
	}
	v.logger.Infow("saved object transforms", "count", len(poses))
	return nil
}

// LoadObjectTransforms reads persisted poses. When the scene can move objects they are applied;
// errors applying individual poses are combined.
func (v *Viewer) LoadObjectTransforms(ctx context.Context) (map[string]spatialmath.Pose, error) {
	if v.transforms == nil {
		return nil, ErrNoTransformStore
	}
	poses, err := v.transforms.LoadTransforms(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "cannot load object transforms")
	}
	setter, ok := v.scene.(scene.PoseSetter)
	if !ok {
		return poses, nil
	}
	var errs error
	for handle, pose := range poses {
		errs = multierr.Append(errs, setter.SetObjectPose(handle, pose))
	}
	v.logger.Infow("applied object transforms", "count", len(poses))
	return poses, errs
}
