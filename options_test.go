package comat

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hupe1980/comat/internal/traverse"
)

func TestOptions(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		o := buildOptions(nil)
		assert.Equal(t, 1, o.workers)
		assert.Equal(t, OutOfRangeDrop, o.outOfRange)
		assert.Equal(t, traverse.DefaultCheckInterval, o.checkInterval)
		assert.Zero(t, o.sparseDensity)
		assert.Nil(t, o.controller)
		assert.IsType(t, NoopMetricsCollector{}, o.metricsCollector)
	})

	t.Run("workers", func(t *testing.T) {
		assert.Equal(t, 6, buildOptions([]Option{WithWorkers(6)}).workers)
		assert.Equal(t, runtime.GOMAXPROCS(0), buildOptions([]Option{WithWorkers(0)}).workers)
	})

	t.Run("nil logger and metrics", func(t *testing.T) {
		o := buildOptions([]Option{WithLogger(nil), WithMetricsCollector(nil)})
		assert.NotNil(t, o.logger)
		assert.IsType(t, NoopMetricsCollector{}, o.metricsCollector)
	})

	t.Run("check interval", func(t *testing.T) {
		assert.Equal(t, 10, buildOptions([]Option{WithCheckInterval(10)}).checkInterval)
		assert.Equal(t, traverse.DefaultCheckInterval, buildOptions([]Option{WithCheckInterval(-3)}).checkInterval)
	})
}

func TestOutOfRangePolicy_String(t *testing.T) {
	assert.Equal(t, "drop", OutOfRangeDrop.String())
	assert.Equal(t, "warn", OutOfRangeWarn.String())
	assert.Equal(t, "fail", OutOfRangeFail.String())
	assert.Equal(t, "unknown", OutOfRangePolicy(42).String())
}
