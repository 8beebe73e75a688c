package utils

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// RunInParallel runs every task concurrently and waits for all of them. The first failure
// cancels the context the others see and is the error returned; a panicking task counts as a
// failure.
func RunInParallel(ctx context.Context, tasks ...func(context.Context) error) error {
	group, groupCtx := errgroup.WithContext(ctx)
	for _, task := range tasks {
		task := task
		group.Go(func() (err error) {
			defer func() {
				if thePanic := recover(); thePanic != nil {
					err = fmt.Errorf("panic in parallel task: %v", thePanic)
				}
			}()
			return task(groupCtx)
		})
	}
	return group.Wait()
}
