package inject

import (
	"context"

	"github.com/golang/geo/r3"

	"go.viam.com/sceneviewer/shapemetrics"
)

// MetricsComputer is an injected shape metrics computer. Calls without an injected func succeed
// with no results.
type MetricsComputer struct {
	SetupGroundTruthFunc func(ctx context.Context, objectHandle string) (map[string][]r3.Vector, error)
	ComputeStabilityFunc func(
		ctx context.Context, objectHandle, variant string,
	) (map[string]*shapemetrics.StabilityResults, error)
	ComputeAccessFunc func(
		ctx context.Context, objectHandle, variant string,
	) (map[string]*shapemetrics.AccessResults, error)
}

// SetupGroundTruth calls the injected SetupGroundTruth or returns no sample points.
func (c *MetricsComputer) SetupGroundTruth(ctx context.Context, objectHandle string) (map[string][]r3.Vector, error) {
	if c.SetupGroundTruthFunc == nil {
		return nil, nil
	}
	return c.SetupGroundTruthFunc(ctx, objectHandle)
}

// ComputeStability calls the injected ComputeStability or returns no results.
func (c *MetricsComputer) ComputeStability(
	ctx context.Context, objectHandle, variant string,
) (map[string]*shapemetrics.StabilityResults, error) {
	if c.ComputeStabilityFunc == nil {
		return nil, nil
	}
	return c.ComputeStabilityFunc(ctx, objectHandle, variant)
}

// ComputeAccess calls the injected ComputeAccess or returns no results.
func (c *MetricsComputer) ComputeAccess(
	ctx context.Context, objectHandle, variant string,
) (map[string]*shapemetrics.AccessResults, error) {
	if c.ComputeAccessFunc == nil {
		return nil, nil
	}
	return c.ComputeAccessFunc(ctx, objectHandle, variant)
}

// MetricsProvider is an injected shape metrics provider.
type MetricsProvider struct {
	ReadyFunc   func() bool
	MetricsFunc func() (shapemetrics.Metrics, error)
}

// Ready calls the injected Ready or reports false.
func (p *MetricsProvider) Ready() bool {
	if p.ReadyFunc == nil {
		return false
	}
	return p.ReadyFunc()
}

// Metrics calls the injected Metrics or returns shapemetrics.ErrNotInitialized.
func (p *MetricsProvider) Metrics() (shapemetrics.Metrics, error) {
	if p.MetricsFunc == nil {
		return nil, shapemetrics.ErrNotInitialized
	}
	return p.MetricsFunc()
}
