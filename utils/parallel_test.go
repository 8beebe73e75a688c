package utils

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"go.viam.com/test"
	gutils "go.viam.com/utils"
)

func TestRunInParallel(t *testing.T) {
	waitOrCancel := func(ctx context.Context) error {
		gutils.SelectContextOrWait(ctx, time.Minute)
		return ctx.Err()
	}

	t.Run("all succeed", func(t *testing.T) {
		var ran atomic.Int32
		count := func(ctx context.Context) error {
			ran.Add(1)
			return nil
		}
		test.That(t, RunInParallel(context.Background(), count, count, count), test.ShouldBeNil)
		test.That(t, ran.Load(), test.ShouldEqual, int32(3))
	})

	t.Run("first failure cancels the rest", func(t *testing.T) {
		bad := func(ctx context.Context) error {
			return errors.New("bad")
		}
		err := RunInParallel(context.Background(), waitOrCancel, waitOrCancel, bad)
		test.That(t, err, test.ShouldNotBeNil)
		test.That(t, err.Error(), test.ShouldEqual, "bad")
	})

	t.Run("panic", func(t *testing.T) {
		err := RunInParallel(context.Background(), waitOrCancel, func(ctx context.Context) error {
			panic(1)
		})
		test.That(t, err, test.ShouldNotBeNil)
		test.That(t, err.Error(), test.ShouldContainSubstring, "panic in parallel task: 1")
	})

	t.Run("no tasks", func(t *testing.T) {
		test.That(t, RunInParallel(context.Background()), test.ShouldBeNil)
	})
}

func TestBackgroundWorkers(t *testing.T) {
	var stopped atomic.Int32
	worker := func(ctx context.Context) {
		<-ctx.Done()
		stopped.Add(1)
	}
	bw := NewBackgroundWorkers(worker, worker)
	test.That(t, bw.Add(worker), test.ShouldBeTrue)

	bw.Stop()
	test.That(t, stopped.Load(), test.ShouldEqual, int32(3))

	test.That(t, bw.Add(worker), test.ShouldBeFalse)
	bw.Stop()
	test.That(t, stopped.Load(), test.ShouldEqual, int32(3))
}
