package scene

import (
	"context"
	"time"
)

// Static adapts a File into a Scene for headless sessions. Raycasts hit nothing and physics
// steps only count time, so nothing in a static scene ever moves on its own.
type Static struct {
	*File

	elapsed time.Duration
}

// NewStatic returns a Scene over f.
func NewStatic(f *File) *Static {
	return &Static{File: f}
}

// CastRay never hits anything.
func (s *Static) CastRay(ctx context.Context, ray Ray, maxDistance float64) ([]RayHit, error) {
	return nil, nil
}

// StepWorld advances the simulated clock.
func (s *Static) StepWorld(ctx context.Context, dt time.Duration) error {
	s.elapsed += dt
	return nil
}

// Elapsed is the total simulated time stepped.
func (s *Static) Elapsed() time.Duration {
	return s.elapsed
}
