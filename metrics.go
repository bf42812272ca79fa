package symgo

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
//	    assertCounter  prometheus.Counter
//	    proveHistogram prometheus.Histogram
//	}
//
//	func (p *PrometheusCollector) RecordAssert(duration time.Duration, err error) {
//	    p.assertCounter.Inc()
//	    // ... record error state, duration, etc.
//	}
type MetricsCollector interface {
	// RecordAssert is called after each fact assertion.
	// duration is the total time taken, err is nil if successful.
	RecordAssert(duration time.Duration, err error)

	// RecordObserve is called after each example observation.
	RecordObserve(duration time.Duration, err error)

	// RecordProve is called after each proof attempt.
	RecordProve(duration time.Duration, err error)

	// RecordQuery is called after each inference query.
	RecordQuery(duration time.Duration, err error)

	// RecordForget is called after each forget sweep.
	// removed is the number of concepts removed.
	RecordForget(removed int, duration time.Duration, err error)

	// RecordChain is called after each forward-chaining run.
	// derived is the number of facts the run added.
	RecordChain(derived int, duration time.Duration, err error)

	// RecordSnapshot is called after each snapshot save or load.
	RecordSnapshot(duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordAssert(time.Duration, error)      {}
func (NoopMetricsCollector) RecordObserve(time.Duration, error)     {}
func (NoopMetricsCollector) RecordProve(time.Duration, error)       {}
func (NoopMetricsCollector) RecordQuery(time.Duration, error)       {}
func (NoopMetricsCollector) RecordForget(int, time.Duration, error) {}
func (NoopMetricsCollector) RecordChain(int, time.Duration, error)  {}
func (NoopMetricsCollector) RecordSnapshot(time.Duration, error)    {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	AssertCount      atomic.Int64
	AssertErrors     atomic.Int64
	AssertTotalNanos atomic.Int64
	ObserveCount     atomic.Int64
	ObserveErrors    atomic.Int64
	ProveCount       atomic.Int64
	ProveErrors      atomic.Int64
	ProveTotalNanos  atomic.Int64
	QueryCount       atomic.Int64
	QueryErrors      atomic.Int64
	QueryTotalNanos  atomic.Int64
	ForgetCount      atomic.Int64
	ForgetRemoved    atomic.Int64
	ForgetErrors     atomic.Int64
	ChainCount       atomic.Int64
	ChainDerived     atomic.Int64
	ChainErrors      atomic.Int64
	SnapshotCount    atomic.Int64
	SnapshotErrors   atomic.Int64
}

// RecordAssert implements MetricsCollector.
func (b *BasicMetricsCollector) RecordAssert(duration time.Duration, err error) {
	b.AssertCount.Add(1)
	b.AssertTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.AssertErrors.Add(1)
	}
}

// RecordObserve implements MetricsCollector.
func (b *BasicMetricsCollector) RecordObserve(duration time.Duration, err error) {
	b.ObserveCount.Add(1)
	if err != nil {
		b.ObserveErrors.Add(1)
	}
}

// RecordProve implements MetricsCollector.
func (b *BasicMetricsCollector) RecordProve(duration time.Duration, err error) {
	b.ProveCount.Add(1)
	b.ProveTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.ProveErrors.Add(1)
	}
}

// RecordQuery implements MetricsCollector.
func (b *BasicMetricsCollector) RecordQuery(duration time.Duration, err error) {
	b.QueryCount.Add(1)
	b.QueryTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.QueryErrors.Add(1)
	}
}

// RecordForget implements MetricsCollector.
func (b *BasicMetricsCollector) RecordForget(removed int, duration time.Duration, err error) {
	b.ForgetCount.Add(1)
	b.ForgetRemoved.Add(int64(removed))
	if err != nil {
		b.ForgetErrors.Add(1)
	}
}

// RecordChain implements MetricsCollector.
func (b *BasicMetricsCollector) RecordChain(derived int, duration time.Duration, err error) {
	b.ChainCount.Add(1)
	b.ChainDerived.Add(int64(derived))
	if err != nil {
		b.ChainErrors.Add(1)
	}
}

// RecordSnapshot implements MetricsCollector.
func (b *BasicMetricsCollector) RecordSnapshot(duration time.Duration, err error) {
	b.SnapshotCount.Add(1)
	if err != nil {
		b.SnapshotErrors.Add(1)
	}
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		AssertCount:    b.AssertCount.Load(),
		AssertErrors:   b.AssertErrors.Load(),
		AssertAvgNanos: b.getAvgAssertNanos(),
		ObserveCount:   b.ObserveCount.Load(),
		ObserveErrors:  b.ObserveErrors.Load(),
		ProveCount:     b.ProveCount.Load(),
		ProveErrors:    b.ProveErrors.Load(),
		ProveAvgNanos:  b.getAvgProveNanos(),
		QueryCount:     b.QueryCount.Load(),
		QueryErrors:    b.QueryErrors.Load(),
		QueryAvgNanos:  b.getAvgQueryNanos(),
		ForgetCount:    b.ForgetCount.Load(),
		ForgetRemoved:  b.ForgetRemoved.Load(),
		ForgetErrors:   b.ForgetErrors.Load(),
		ChainCount:     b.ChainCount.Load(),
		ChainDerived:   b.ChainDerived.Load(),
		ChainErrors:    b.ChainErrors.Load(),
		SnapshotCount:  b.SnapshotCount.Load(),
		SnapshotErrors: b.SnapshotErrors.Load(),
	}
}

func (b *BasicMetricsCollector) getAvgAssertNanos() int64 {
	count := b.AssertCount.Load()
	if count == 0 {
		return 0
	}
	return b.AssertTotalNanos.Load() / count
}

func (b *BasicMetricsCollector) getAvgProveNanos() int64 {
	count := b.ProveCount.Load()
	if count == 0 {
		return 0
	}
	return b.ProveTotalNanos.Load() / count
}

func (b *BasicMetricsCollector) getAvgQueryNanos() int64 {
	count := b.QueryCount.Load()
	if count == 0 {
		return 0
	}
	return b.QueryTotalNanos.Load() / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	AssertCount    int64
	AssertErrors   int64
	AssertAvgNanos int64
	ObserveCount   int64
	ObserveErrors  int64
	ProveCount     int64
	ProveErrors    int64
	ProveAvgNanos  int64
	QueryCount     int64
	QueryErrors    int64
	QueryAvgNanos  int64
	ForgetCount    int64
	ForgetRemoved  int64
	ForgetErrors   int64
	ChainCount     int64
	ChainDerived   int64
	ChainErrors    int64
	SnapshotCount  int64
	SnapshotErrors int64
}
