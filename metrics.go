package ipactivity

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
type MetricsCollector interface {
	// RecordRefresh is called after each configuration refresh.
	// transitioned reports an online to offline switch.
	RecordRefresh(transitioned bool, duration time.Duration, err error)

	// RecordRead is called after each bitmap read. bytes is the number of
	// decoded bytes; noData reports an absent or empty file.
	RecordRead(bytes int64, noData bool, duration time.Duration, err error)

	// RecordSelect is called after each selection. cells is the number of
	// selected cells.
	RecordSelect(cells int, duration time.Duration, err error)

	// RecordRender is called after each rendering. pixels is the raster size.
	RecordRender(pixels int, duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordRefresh(bool, time.Duration, error)     {}
func (NoopMetricsCollector) RecordRead(int64, bool, time.Duration, error) {}
func (NoopMetricsCollector) RecordSelect(int, time.Duration, error)       {}
func (NoopMetricsCollector) RecordRender(int, time.Duration, error)       {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	RefreshCount       atomic.Int64
	RefreshErrors      atomic.Int64
	RefreshTransitions atomic.Int64
	ReadCount          atomic.Int64
	ReadErrors         atomic.Int64
	ReadNoData         atomic.Int64
	ReadBytes          atomic.Int64
	ReadTotalNanos     atomic.Int64
	SelectCount        atomic.Int64
	SelectErrors       atomic.Int64
	SelectCells        atomic.Int64
	RenderCount        atomic.Int64
	RenderErrors       atomic.Int64
	RenderPixels       atomic.Int64
	RenderTotalNanos   atomic.Int64
}

// RecordRefresh implements MetricsCollector.
func (b *BasicMetricsCollector) RecordRefresh(transitioned bool, duration time.Duration, err error) {
	b.RefreshCount.Add(1)
	if err != nil {
		b.RefreshErrors.Add(1)
		return
	}
	if transitioned {
		b.RefreshTransitions.Add(1)
	}
}

// RecordRead implements MetricsCollector.
func (b *BasicMetricsCollector) RecordRead(bytes int64, noData bool, duration time.Duration, err error) {
	b.ReadCount.Add(1)
	b.ReadTotalNanos.Add(duration.Nanoseconds())
	switch {
	case err != nil:
		b.ReadErrors.Add(1)
	case noData:
		b.ReadNoData.Add(1)
	default:
		b.ReadBytes.Add(bytes)
	}
}

// RecordSelect implements MetricsCollector.
func (b *BasicMetricsCollector) RecordSelect(cells int, duration time.Duration, err error) {
	b.SelectCount.Add(1)
	if err != nil {
		b.SelectErrors.Add(1)
		return
	}
	b.SelectCells.Add(int64(cells))
}

// RecordRender implements MetricsCollector.
func (b *BasicMetricsCollector) RecordRender(pixels int, duration time.Duration, err error) {
	b.RenderCount.Add(1)
	b.RenderTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.RenderErrors.Add(1)
		return
	}
	b.RenderPixels.Add(int64(pixels))
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		RefreshCount:       b.RefreshCount.Load(),
		RefreshErrors:      b.RefreshErrors.Load(),
		RefreshTransitions: b.RefreshTransitions.Load(),
		ReadCount:          b.ReadCount.Load(),
		ReadErrors:         b.ReadErrors.Load(),
		ReadNoData:         b.ReadNoData.Load(),
		ReadBytes:          b.ReadBytes.Load(),
		ReadAvgNanos:       avg(b.ReadTotalNanos.Load(), b.ReadCount.Load()),
		SelectCount:        b.SelectCount.Load(),
		SelectErrors:       b.SelectErrors.Load(),
		SelectCells:        b.SelectCells.Load(),
		RenderCount:        b.RenderCount.Load(),
		RenderErrors:       b.RenderErrors.Load(),
		RenderPixels:       b.RenderPixels.Load(),
		RenderAvgNanos:     avg(b.RenderTotalNanos.Load(), b.RenderCount.Load()),
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
	RefreshCount       int64
	RefreshErrors      int64
	RefreshTransitions int64
	ReadCount          int64
	ReadErrors         int64
	ReadNoData         int64
	ReadBytes          int64
	ReadAvgNanos       int64
	SelectCount        int64
	SelectErrors       int64
	SelectCells        int64
	RenderCount        int64
	RenderErrors       int64
	RenderPixels       int64
	RenderAvgNanos     int64
}
