package utils

import (
	"context"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"go.viam.com/test"
	"go.viam.com/utils/testutils"

	"go.viam.com/sceneviewer/logging"
)

func TestSlowLogger(t *testing.T) {
	logger, observed := logging.NewObservedTestLogger(t)
	clk := clock.NewMock()

	stop := SlowLogger(context.Background(), clk, "still working", "object", "fridge", logger)
	defer stop()

	test.That(t, observed.Len(), test.ShouldEqual, 0)

	clk.Add(2 * time.Second)
	testutils.WaitForAssertion(t, func(tb testing.TB) {
		tb.Helper()
		test.That(tb, observed.FilterMessage("still working").Len(), test.ShouldEqual, 1)
	})
	entry := observed.All()[0]
	test.That(t, entry.ContextMap()["object"], test.ShouldEqual, "fridge")
	test.That(t, entry.ContextMap()["time_elapsed"], test.ShouldEqual, "2s")

	stop()
	clk.Add(time.Minute)
	test.That(t, observed.FilterMessage("still working").Len(), test.ShouldEqual, 1)
}
