package sparsela

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting solver metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
type MetricsCollector interface {
	// RecordSolve is called after each call to Solve.
	// err is nil if the call succeeded, even when the solver did not converge.
	RecordSolve(method Method, iterations int, converged bool, duration time.Duration, err error)

	// RecordTranspose is called after each transpose performed by a solver.
	RecordTranspose(rows, cols int, duration time.Duration)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordSolve(Method, int, bool, time.Duration, error) {}
func (NoopMetricsCollector) RecordTranspose(int, int, time.Duration)           {}

// BasicMetricsCollector provides simple in-memory metrics collection.
type BasicMetricsCollector struct {
	SolveCount          atomic.Int64
	SolveErrors         atomic.Int64
	SolveNotConverged   atomic.Int64
	SolveIterations     atomic.Int64
	SolveTotalNanos     atomic.Int64
	TransposeCount      atomic.Int64
	TransposeTotalNanos atomic.Int64
}

// RecordSolve implements MetricsCollector.
func (b *BasicMetricsCollector) RecordSolve(_ Method, iterations int, converged bool, duration time.Duration, err error) {
	b.SolveCount.Add(1)
	b.SolveTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.SolveErrors.Add(1)
		return
	}
	b.SolveIterations.Add(int64(iterations))
	if !converged {
		b.SolveNotConverged.Add(1)
	}
}

// RecordTranspose implements MetricsCollector.
func (b *BasicMetricsCollector) RecordTranspose(_, _ int, duration time.Duration) {
	b.TransposeCount.Add(1)
	b.TransposeTotalNanos.Add(duration.Nanoseconds())
}

// BasicMetricsStats is a point-in-time snapshot of BasicMetricsCollector.
type BasicMetricsStats struct {
	SolveCount        int64
	SolveErrors       int64
	SolveNotConverged int64
	SolveIterations   int64
	SolveAvgNanos     int64
	TransposeCount    int64
	TransposeAvgNanos int64
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	s := BasicMetricsStats{
		SolveCount:        b.SolveCount.Load(),
		SolveErrors:       b.SolveErrors.Load(),
		SolveNotConverged: b.SolveNotConverged.Load(),
		SolveIterations:   b.SolveIterations.Load(),
		TransposeCount:    b.TransposeCount.Load(),
	}
	if s.SolveCount > 0 {
		s.SolveAvgNanos = b.SolveTotalNanos.Load() / s.SolveCount
	}
	if s.TransposeCount > 0 {
		s.TransposeAvgNanos = b.TransposeTotalNanos.Load() / s.TransposeCount
	}
	return s
}

// Reset clears all counters.
func (b *BasicMetricsCollector) Reset() {
	b.SolveCount.Store(0)
	b.SolveErrors.Store(0)
	b.SolveNotConverged.Store(0)
	b.SolveIterations.Store(0)
	b.SolveTotalNanos.Store(0)
	b.TransposeCount.Store(0)
	b.TransposeTotalNanos.Store(0)
}
