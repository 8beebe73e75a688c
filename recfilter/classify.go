package recfilter

import (
	"github.com/pkg/errors"

	"go.viam.com/sceneviewer/logging"
	"go.viam.com/sceneviewer/receptacle"
	"go.viam.com/sceneviewer/shapemetrics"
)

// ErrNotInitialized is returned when classification is attempted before shape metrics are ready.
var ErrNotInitialized = shapemetrics.ErrNotInitialized

// Options configures an automatic classification pass.
type Options struct {
	AccessThreshold    float64
	StabilityThreshold float64
	// Shape is the metrics variant to filter on, shapemetrics.Proxy or shapemetrics.GroundTruth.
	Shape string
}

// DefaultOptions filters on the first proxy shape with the default thresholds.
func DefaultOptions() Options {
	return Options{
		AccessThreshold:    DefaultAccessThreshold,
		StabilityThreshold: DefaultStabilityThreshold,
		Shape:              shapemetrics.Proxy,
	}
}

// Decide returns the automatic bucket for a receptacle's shape results. Access is checked before
// stability; a missing result never filters.
func Decide(results *shapemetrics.ShapeResults, accessThreshold, stabilityThreshold float64) Bucket {
	if results == nil {
		return Active
	}
	if results.Access != nil && results.Access.ReceptacleAccessScore < accessThreshold {
		return AccessFiltered
	}
	if results.Stability != nil && results.Stability.SuccessRatio < stabilityThreshold {
		return StabilityFiltered
	}
	// height filtering has no rule yet; HeightFiltered is only ever loaded from a file
	return Active
}

// Classify runs the automatic filters over every receptacle in idx, skipping manually filtered
// ones. A nil state starts a fresh one. The thresholds applied are recorded in the returned
// state. Repeated passes move receptacles between sets without duplicating them.
func Classify(
	state *State,
	idx *receptacle.Index,
	provider shapemetrics.Provider,
	opts Options,
	logger logging.Logger,
) (*State, error) {
	if provider == nil || !provider.Ready() {
		return nil, ErrNotInitialized
	}
	metrics, err := provider.Metrics()
	if err != nil {
		return nil, err
	}
	if opts.Shape == "" {
		opts.Shape = shapemetrics.Proxy
	}
	// a failed pass leaves state unchanged
	decisions := make(map[string]Bucket, idx.Len())
	var missing int
	for _, rec := range idx.All() {
		name := rec.UniqueName()
		template, ok := idx.ParentTemplate(rec)
		if !ok {
			return nil, errors.Errorf("receptacle %q has no resolved parent template", name)
		}
		results, ok := metrics.Shape(template, rec.Name, opts.Shape)
		if !ok {
			missing++
			logger.Debugw("no shape metrics for receptacle", "receptacle", name, "shape", opts.Shape)
		}
		decisions[name] = Decide(results, opts.AccessThreshold, opts.StabilityThreshold)
	}

	if state == nil {
		state = NewState(opts.AccessThreshold, opts.StabilityThreshold)
	}
	state.AccessThreshold = opts.AccessThreshold
	state.StabilityThreshold = opts.StabilityThreshold
	for _, name := range idx.UniqueNames() {
		if state.Set(ManuallyFiltered).Contains(name) {
			continue
		}
		state.place(name, decisions[name])
	}
	logger.Infow("classified receptacles",
		"shape", opts.Shape,
		"access_threshold", opts.AccessThreshold,
		"stability_threshold", opts.StabilityThreshold,
		"without_metrics", missing,
		"summary", state.Summary().String())
	return state, nil
}
