package duckvec

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
//	    flushCounter   prometheus.Counter
//	    flushHistogram prometheus.Histogram
//	}
//
//	func (p *PrometheusCollector) RecordFlush(rows int, duration time.Duration, err error) {
//	    p.flushCounter.Inc()
//	    // ... record error state, duration, etc.
//	}
type MetricsCollector interface {
	// RecordFlush is called after each chunk submission to the engine.
	// rows is the chunk size, err is nil if the engine accepted the chunk.
	RecordFlush(rows int, duration time.Duration, err error)

	// RecordRowsCopied is called when a bulk copy finishes.
	// copied is the number of rows ended, err is nil if the copy succeeded.
	RecordRowsCopied(copied int64, duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordFlush(int, time.Duration, error)        {}
func (NoopMetricsCollector) RecordRowsCopied(int64, time.Duration, error) {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	FlushCount      atomic.Int64
	FlushErrors     atomic.Int64
	FlushedRows     atomic.Int64
	FlushTotalNanos atomic.Int64
	CopyCount       atomic.Int64
	CopyErrors      atomic.Int64
	CopiedRows      atomic.Int64
}

// RecordFlush implements MetricsCollector.
func (b *BasicMetricsCollector) RecordFlush(rows int, duration time.Duration, err error) {
	b.FlushCount.Add(1)
	b.FlushTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.FlushErrors.Add(1)
		return
	}
	b.FlushedRows.Add(int64(rows))
}

// RecordRowsCopied implements MetricsCollector.
func (b *BasicMetricsCollector) RecordRowsCopied(copied int64, duration time.Duration, err error) {
	b.CopyCount.Add(1)
	b.CopiedRows.Add(copied)
	if err != nil {
		b.CopyErrors.Add(1)
	}
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		FlushCount:    b.FlushCount.Load(),
		FlushErrors:   b.FlushErrors.Load(),
		FlushedRows:   b.FlushedRows.Load(),
		FlushAvgNanos: b.getAvgFlushNanos(),
		CopyCount:     b.CopyCount.Load(),
		CopyErrors:    b.CopyErrors.Load(),
		CopiedRows:    b.CopiedRows.Load(),
	}
}

func (b *BasicMetricsCollector) getAvgFlushNanos() int64 {
	count := b.FlushCount.Load()
	if count == 0 {
		return 0
	}
	return b.FlushTotalNanos.Load() / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	FlushCount    int64
	FlushErrors   int64
	FlushedRows   int64
	FlushAvgNanos int64
	CopyCount     int64
	CopyErrors    int64
	CopiedRows    int64
}
