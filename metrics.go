package comat

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
//
// Example Prometheus integration:
//
//	type PrometheusCollector struct {
//	    computeLatency prometheus.Histogram
//	    pairsCounted   prometheus.Counter
//	}
//
//	func (p *PrometheusCollector) RecordCompute(stats comat.Stats, duration time.Duration, err error) {
//	    p.computeLatency.Observe(duration.Seconds())
//	    p.pairsCounted.Add(float64(stats.Counted))
//	}
type MetricsCollector interface {
	// RecordCompute is called once per Compute* call, after validation and
	// traversal. stats covers every offset of the call; it is the zero value
	// when validation failed.
	RecordCompute(stats Stats, duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordCompute(Stats, time.Duration, error) {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	ComputeCount      atomic.Int64
	ComputeErrors     atomic.Int64
	ComputeTotalNanos atomic.Int64
	Eligible          atomic.Uint64
	Outside           atomic.Uint64
	NeighborMasked    atomic.Uint64
	Dropped           atomic.Uint64
	Counted           atomic.Uint64
}

// RecordCompute implements MetricsCollector.
func (b *BasicMetricsCollector) RecordCompute(stats Stats, duration time.Duration, err error) {
	b.ComputeCount.Add(1)
	b.ComputeTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.ComputeErrors.Add(1)
	}
	b.Eligible.Add(stats.Eligible)
	b.Outside.Add(stats.Outside)
	b.NeighborMasked.Add(stats.NeighborMasked)
	b.Dropped.Add(stats.Dropped)
	b.Counted.Add(stats.Counted)
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	count := b.ComputeCount.Load()
	var avg int64
	if count > 0 {
		avg = b.ComputeTotalNanos.Load() / count
	}
	return BasicMetricsStats{
		ComputeCount:    count,
		ComputeErrors:   b.ComputeErrors.Load(),
		ComputeAvgNanos: avg,
		Totals: Stats{
			Eligible:       b.Eligible.Load(),
			Outside:        b.Outside.Load(),
			NeighborMasked: b.NeighborMasked.Load(),
			Dropped:        b.Dropped.Load(),
			Counted:        b.Counted.Load(),
		},
	}
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector.
type BasicMetricsStats struct {
	ComputeCount    int64
	ComputeErrors   int64
	ComputeAvgNanos int64
	Totals          Stats
}
