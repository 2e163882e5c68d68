package rascal

import (
	"sync/atomic"
	"time"
)

// MetricsCollector receives operational metrics from an Engine.
// The prom package provides a Prometheus implementation.
type MetricsCollector interface {
	// RecordDensify is called after each Densify with the number of resulting
	// features.
	RecordDensify(features int, duration time.Duration, err error)

	// RecordDot is called after each Dot with the size of the result.
	RecordDot(rows, cols int, duration time.Duration, err error)

	// RecordSave is called after each Save with the snapshot size.
	RecordSave(bytes int64, duration time.Duration, err error)

	// RecordLoad is called after each Load.
	RecordLoad(duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordDensify(int, time.Duration, error)  {}
func (NoopMetricsCollector) RecordDot(int, int, time.Duration, error) {}
func (NoopMetricsCollector) RecordSave(int64, time.Duration, error)   {}
func (NoopMetricsCollector) RecordLoad(time.Duration, error)          {}

// BasicMetricsCollector provides simple in-memory metrics collection.
type BasicMetricsCollector struct {
	DensifyCount      atomic.Int64
	DensifyErrors     atomic.Int64
	DensifyTotalNanos atomic.Int64
	DotCount          atomic.Int64
	DotErrors         atomic.Int64
	DotTotalNanos     atomic.Int64
	DotCells          atomic.Int64
	SaveCount         atomic.Int64
	SaveErrors        atomic.Int64
	SaveBytes         atomic.Int64
	LoadCount         atomic.Int64
	LoadErrors        atomic.Int64
}

// RecordDensify implements MetricsCollector.
func (b *BasicMetricsCollector) RecordDensify(_ int, duration time.Duration, err error) {
	b.DensifyCount.Add(1)
	b.DensifyTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.DensifyErrors.Add(1)
	}
}

// RecordDot implements MetricsCollector.
func (b *BasicMetricsCollector) RecordDot(rows, cols int, duration time.Duration, err error) {
	b.DotCount.Add(1)
	b.DotTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.DotErrors.Add(1)
		return
	}
	b.DotCells.Add(int64(rows) * int64(cols))
}

// RecordSave implements MetricsCollector.
func (b *BasicMetricsCollector) RecordSave(bytes int64, _ time.Duration, err error) {
	b.SaveCount.Add(1)
	if err != nil {
		b.SaveErrors.Add(1)
		return
	}
	b.SaveBytes.Add(bytes)
}

// RecordLoad implements MetricsCollector.
func (b *BasicMetricsCollector) RecordLoad(_ time.Duration, err error) {
	b.LoadCount.Add(1)
	if err != nil {
		b.LoadErrors.Add(1)
	}
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		DensifyCount:    b.DensifyCount.Load(),
		DensifyErrors:   b.DensifyErrors.Load(),
		DensifyAvgNanos: avg(b.DensifyTotalNanos.Load(), b.DensifyCount.Load()),
		DotCount:        b.DotCount.Load(),
		DotErrors:       b.DotErrors.Load(),
		DotAvgNanos:     avg(b.DotTotalNanos.Load(), b.DotCount.Load()),
		DotCells:        b.DotCells.Load(),
		SaveCount:       b.SaveCount.Load(),
		SaveErrors:      b.SaveErrors.Load(),
		SaveBytes:       b.SaveBytes.Load(),
		LoadCount:       b.LoadCount.Load(),
		LoadErrors:      b.LoadErrors.Load(),
	}
}

func avg(total, count int64) int64 {
	if count == 0 {
		return 0
	}
	return total / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	DensifyCount    int64
	DensifyErrors   int64
	DensifyAvgNanos int64
	DotCount        int64
	DotErrors       int64
	DotAvgNanos     int64
	DotCells        int64
	SaveCount       int64
	SaveErrors      int64
	SaveBytes       int64
	LoadCount       int64
	LoadErrors      int64
}
