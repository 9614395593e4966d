package comat

import (
	"log/slog"
	"runtime"

	"github.com/hupe1980/comat/internal/traverse"
	"github.com/hupe1980/comat/resource"
)

// OutOfRangePolicy selects what happens to a validated pair whose centre or
// neighbour label lies outside its level range.
type OutOfRangePolicy int

const (
	// OutOfRangeDrop silently excludes the pair. This is the default.
	OutOfRangeDrop OutOfRangePolicy = iota
	// OutOfRangeWarn excludes the pair and logs a rate-limited warning.
	OutOfRangeWarn
	// OutOfRangeFail aborts the call with a *LabelRangeError. The output
	// buffer is left untouched.
	OutOfRangeFail
)

func (p OutOfRangePolicy) String() string {
	switch p {
	case OutOfRangeDrop:
		return "drop"
	case OutOfRangeWarn:
		return "warn"
	case OutOfRangeFail:
		return "fail"
	default:
		return "unknown"
	}
}

type options struct {
	workers          int
	logger           *Logger
	metricsCollector MetricsCollector
	outOfRange       OutOfRangePolicy
	checkInterval    int
	sparseDensity    float64
	controller       *resource.Controller
}

func defaultOptions() options {
	return options{
		workers:          1,
		logger:           NoopLogger(),
		metricsCollector: NoopMetricsCollector{},
		outOfRange:       OutOfRangeDrop,
		checkInterval:    traverse.DefaultCheckInterval,
	}
}

func buildOptions(opts []Option) options {
	o := defaultOptions()
	for _, fn := range opts {
		fn(&o)
	}
	return o
}

// Option configures a Compute call.
type Option func(*options)

// WithWorkers splits the traversal across n workers, each accumulating into a
// private histogram that is merged into the output once all of them finish.
//
// If n <= 0, runtime.GOMAXPROCS(0) workers are used. The default is 1.
func WithWorkers(n int) Option {
	return func(o *options) {
		if n <= 0 {
			n = runtime.GOMAXPROCS(0)
		}
		o.workers = n
	}
}

// WithLogger configures structured logging for computations.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := comat.NewJSONLogger(slog.LevelDebug)
//	err := comat.Compute(ctx, g, offset, out, comat.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

// WithMetricsCollector configures a metrics collector.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &comat.BasicMetricsCollector{}
//	_ = comat.Compute(ctx, g, offset, out, comat.WithMetricsCollector(metrics))
//	stats := metrics.GetStats()
//	fmt.Printf("Pairs counted: %d\n", stats.Totals.Counted)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithOutOfRangePolicy selects how pairs with out-of-range labels are handled.
func WithOutOfRangePolicy(p OutOfRangePolicy) Option {
	return func(o *options) {
		o.outOfRange = p
	}
}

// WithCheckInterval sets how many centre cells a worker walks between
// cancellation checks. Values <= 0 restore the default.
func WithCheckInterval(cells int) Option {
	return func(o *options) {
		if cells <= 0 {
			cells = traverse.DefaultCheckInterval
		}
		o.checkInterval = cells
	}
}

// WithSparseMasks enables bitmap-driven traversal when at most maxDensity of
// the primary grid's cells are eligible. The primary mask is indexed once per
// call and the walk then visits only eligible centres, which pays off for
// sparse regions of interest and for multi-offset calls.
//
// The result is identical to the dense walk. A maxDensity <= 0 disables it
// (the default).
func WithSparseMasks(maxDensity float64) Option {
	return func(o *options) {
		o.sparseDensity = maxDensity
	}
}

// WithResourceController shares worker slots and scratch memory limits with
// other calls using the same controller.
func WithResourceController(c *resource.Controller) Option {
	return func(o *options) {
		o.controller = c
	}
}
