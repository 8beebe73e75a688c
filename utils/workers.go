package utils

import (
	"context"
	"sync"

	goutils "go.viam.com/utils"
)

// BackgroundWorkers runs goroutines that share one context, which is canceled by Stop.
type BackgroundWorkers struct {
	mu     sync.Mutex
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewBackgroundWorkers starts each of funcs in its own goroutine.
func NewBackgroundWorkers(funcs ...func(context.Context)) *BackgroundWorkers {
	ctx, cancel := context.WithCancel(context.Background())
	bw := &BackgroundWorkers{ctx: ctx, cancel: cancel}
	bw.Add(funcs...)
	return bw
}

// Add starts more workers. It reports false and starts nothing once Stop has been called.
func (bw *BackgroundWorkers) Add(funcs ...func(context.Context)) bool {
	bw.mu.Lock()
	defer bw.mu.Unlock()
	if bw.ctx.Err() != nil {
		return false
	}
	bw.wg.Add(len(funcs))
	for _, f := range funcs {
		f := f
		goutils.PanicCapturingGo(func() {
			defer bw.wg.Done()
			f(bw.ctx)
		})
	}
	return true
}

// Stop cancels the workers' context and waits for all of them to return. It is safe to call
// more than once.
func (bw *BackgroundWorkers) Stop() {
	bw.mu.Lock()
	defer bw.mu.Unlock()
	bw.cancel()
	bw.wg.Wait()
}
