package shapemetrics

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"strconv"
	"sync"

	"github.com/benbjohnson/clock"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"go.uber.org/atomic"
	"go.uber.org/multierr"
	goutils "go.viam.com/utils"
	"golang.org/x/sync/errgroup"

	"go.viam.com/sceneviewer/logging"
	"go.viam.com/sceneviewer/utils"
)

// ErrNotInitialized is returned when metrics are requested before the background computation
// has finished.
var ErrNotInitialized = errors.New("must initialize before filtering")

// A Provider supplies shape metrics once they are ready.
type Provider interface {
	// Ready reports whether Metrics can be called.
	Ready() bool
	// Metrics returns ErrNotInitialized until Ready is true.
	Metrics() (Metrics, error)
}

type staticProvider struct {
	metrics Metrics
}

// NewStaticProvider returns an always ready Provider over precomputed metrics.
func NewStaticProvider(m Metrics) Provider {
	return &staticProvider{metrics: m}
}

func (p *staticProvider) Ready() bool { return true }

func (p *staticProvider) Metrics() (Metrics, error) { return p.metrics, nil }

// A Computer runs the expensive simulation behind the metrics of one object template. Setup
// must finish before any stability or access computation for that object starts; the
// computations themselves may run concurrently.
type Computer interface {
	// SetupGroundTruth prepares the object's reference shape and returns the sample points of
	// each of its receptacles, keyed by receptacle name.
	SetupGroundTruth(ctx context.Context, objectHandle string) (map[string][]r3.Vector, error)
	ComputeStability(ctx context.Context, objectHandle, variant string) (map[string]*StabilityResults, error)
	ComputeAccess(ctx context.Context, objectHandle, variant string) (map[string]*AccessResults, error)
}

// OptimizerOptions configures an Optimizer.
type OptimizerOptions struct {
	// Concurrency bounds the number of objects processed at once. Defaults to GOMAXPROCS.
	Concurrency int
	// Clock is used for progress logging. Defaults to the wall clock.
	Clock clock.Clock
}

// Optimizer computes shape metrics for a set of objects in the background. Callers poll Ready
// and only read Metrics once it reports true; there is no cancellation and partial results are
// never exposed.
type Optimizer struct {
	computer    Computer
	logger      logging.Logger
	clk         clock.Clock
	concurrency int

	started atomic.Bool
	ready   atomic.Bool
	done    chan struct{}

	// guarded by mu while workers run; read only after ready
	mu       sync.Mutex
	metrics  Metrics
	failures map[string]error
}

// NewOptimizer returns an idle Optimizer.
func NewOptimizer(computer Computer, opts OptimizerOptions, logger logging.Logger) *Optimizer {
	if opts.Concurrency <= 0 {
		opts.Concurrency = runtime.GOMAXPROCS(0)
	}
	if opts.Clock == nil {
		opts.Clock = clock.New()
	}
	return &Optimizer{
		computer:    computer,
		logger:      logger,
		clk:         opts.Clock,
		concurrency: opts.Concurrency,
		done:        make(chan struct{}),
		metrics:     Metrics{},
		failures:    map[string]error{},
	}
}

// Start begins computing metrics for the given object templates and returns immediately. An
// Optimizer can only be started once. The work is detached from ctx's cancellation.
func (o *Optimizer) Start(ctx context.Context, objectHandles []string) error {
	if !o.started.CompareAndSwap(false, true) {
		return errors.New("shape metrics optimizer already started")
	}
	ctx = context.WithoutCancel(ctx)
	handles := lo.Uniq(objectHandles)
	o.logger.Infow("computing shape metrics", "objects", len(handles), "concurrency", o.concurrency)

	goutils.PanicCapturingGo(func() {
		defer close(o.done)
		defer o.ready.Store(true)

		stopSlowLogger := utils.SlowLogger(
			ctx, o.clk, "still computing shape metrics", "objects", strconv.Itoa(len(handles)), o.logger)
		defer stopSlowLogger()

		var workers errgroup.Group
		workers.SetLimit(o.concurrency)
		for _, handle := range handles {
			handle := handle
			workers.Go(func() error {
				obj, err := o.runObject(ctx, handle)
				o.recordObject(handle, obj, err)
				return nil
			})
		}
		//nolint:errcheck
		workers.Wait()

		o.mu.Lock()
		defer o.mu.Unlock()
		o.logger.Infow("shape metrics ready", "objects", len(o.metrics), "failed", len(o.failures))
	})
	return nil
}

// runObject returns whatever results were produced along with any error.
func (o *Optimizer) runObject(ctx context.Context, handle string) (obj *ObjectMetrics, err error) {
	defer func() {
		if thePanic := recover(); thePanic != nil {
			err = fmt.Errorf("panic computing shape metrics: %v", thePanic)
		}
	}()

	points, err := o.computer.SetupGroundTruth(ctx, handle)
	if err != nil {
		return nil, errors.Wrap(err, "cannot set up ground truth shape")
	}

	var (
		gtStability, prStability map[string]*StabilityResults
		gtAccess, prAccess       map[string]*AccessResults
	)
	err = utils.RunInParallel(ctx,
		func(ctx context.Context) (err error) {
			gtStability, err = o.computer.ComputeStability(ctx, handle, GroundTruth)
			return errors.Wrap(err, "ground truth stability")
		},
		func(ctx context.Context) (err error) {
			prStability, err = o.computer.ComputeStability(ctx, handle, Proxy)
			return errors.Wrap(err, "proxy stability")
		},
		func(ctx context.Context) (err error) {
			gtAccess, err = o.computer.ComputeAccess(ctx, handle, GroundTruth)
			return errors.Wrap(err, "ground truth access")
		},
		func(ctx context.Context) (err error) {
			prAccess, err = o.computer.ComputeAccess(ctx, handle, Proxy)
			return errors.Wrap(err, "proxy access")
		},
	)

	obj = &ObjectMetrics{Receptacles: map[string]*ReceptacleMetrics{}}
	receptacle := func(name string) *ReceptacleMetrics {
		rec, ok := obj.Receptacles[name]
		if !ok {
			rec = &ReceptacleMetrics{ShapeIDResults: map[string]*ShapeResults{}}
			obj.Receptacles[name] = rec
		}
		return rec
	}
	for name, pts := range points {
		receptacle(name).SamplePoints = vectorsToPoints(pts)
	}
	for variant, results := range map[string]map[string]*StabilityResults{GroundTruth: gtStability, Proxy: prStability} {
		for name, res := range results {
			receptacle(name).shapeForUpdate(variant).Stability = res
		}
	}
	for variant, results := range map[string]map[string]*AccessResults{GroundTruth: gtAccess, Proxy: prAccess} {
		for name, res := range results {
			receptacle(name).shapeForUpdate(variant).Access = res
		}
	}
	return obj, err
}

func (o *Optimizer) recordObject(handle string, obj *ObjectMetrics, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if obj != nil {
		o.metrics[handle] = obj
	}
	if err != nil {
		o.failures[handle] = err
		o.logger.Warnw("failed to compute shape metrics", "object", handle, "error", err)
		return
	}
	o.logger.Debugw("computed shape metrics", "object", handle, "receptacles", len(obj.Receptacles))
}

// Ready reports whether every object has finished.
func (o *Optimizer) Ready() bool {
	return o.ready.Load()
}

// Metrics returns the computed metrics, or ErrNotInitialized if the optimizer has not finished.
func (o *Optimizer) Metrics() (Metrics, error) {
	if !o.ready.Load() {
		return nil, ErrNotInitialized
	}
	return o.metrics, nil
}

// Err combines the per-object failures. It returns ErrNotInitialized until the optimizer has
// finished.
func (o *Optimizer) Err() error {
	if !o.ready.Load() {
		return ErrNotInitialized
	}
	handles := lo.Keys(o.failures)
	sort.Strings(handles)
	var errs error
	for _, handle := range handles {
		errs = multierr.Combine(errs, errors.Wrapf(o.failures[handle], "object %q", handle))
	}
	return errs
}

// Wait blocks until the optimizer has finished or ctx is done. It returns immediately with an
// error if Start was never called.
func (o *Optimizer) Wait(ctx context.Context) error {
	if !o.started.Load() {
		return errors.New("shape metrics optimizer not started")
	}
	select {
	case <-o.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
