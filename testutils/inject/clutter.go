package inject

import (
	"context"

	"github.com/pkg/errors"

	"go.viam.com/sceneviewer/clutter"
)

// Sampler is an injected clutter sampler.
type Sampler struct {
	SampleFunc func(ctx context.Context, req clutter.SampleRequest) ([]clutter.Placement, error)
}

// Sample calls the injected Sample.
func (s *Sampler) Sample(ctx context.Context, req clutter.SampleRequest) ([]clutter.Placement, error) {
	if s.SampleFunc == nil {
		return nil, errors.New("no sampler injected")
	}
	return s.SampleFunc(ctx, req)
}
