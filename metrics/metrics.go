// Package metrics collects operational metrics of passes, fits, predictions
// and snapshots.
package metrics

import (
	"sync/atomic"
	"time"
)

// Collector defines an interface for collecting operational metrics.
// Implementations must be safe for concurrent use.
type Collector interface {
	// RecordPass is called after each partitioned pass.
	// pass is "similarity" or "neighbors", domainSize the number of indices.
	RecordPass(pass string, domainSize int, duration time.Duration, err error)

	// RecordFit is called after each recommender fit.
	RecordFit(duration time.Duration, err error)

	// RecordPredict is called after each prediction. defined is false when
	// the prediction was NaN.
	RecordPredict(duration time.Duration, defined bool)

	// RecordSnapshot is called after each snapshot write or open.
	RecordSnapshot(op string, bytes int64, duration time.Duration, err error)
}

// Noop is a no-op implementation of Collector.
type Noop struct{}

func (Noop) RecordPass(string, int, time.Duration, error)       {}
func (Noop) RecordFit(time.Duration, error)                     {}
func (Noop) RecordPredict(time.Duration, bool)                  {}
func (Noop) RecordSnapshot(string, int64, time.Duration, error) {}

// Basic provides simple in-memory metrics collection.
type Basic struct {
	PassCount        atomic.Int64
	PassErrors       atomic.Int64
	PassIndices      atomic.Int64
	PassTotalNanos   atomic.Int64
	FitCount         atomic.Int64
	FitErrors        atomic.Int64
	FitTotalNanos    atomic.Int64
	PredictCount     atomic.Int64
	PredictUndefined atomic.Int64
	PredictNanos     atomic.Int64
	SnapshotCount    atomic.Int64
	SnapshotErrors   atomic.Int64
	SnapshotBytes    atomic.Int64
}

// RecordPass implements Collector.
func (b *Basic) RecordPass(_ string, domainSize int, duration time.Duration, err error) {
	b.PassCount.Add(1)
	b.PassIndices.Add(int64(domainSize))
	b.PassTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.PassErrors.Add(1)
	}
}

// RecordFit implements Collector.
func (b *Basic) RecordFit(duration time.Duration, err error) {
	b.FitCount.Add(1)
	b.FitTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.FitErrors.Add(1)
	}
}

// RecordPredict implements Collector.
func (b *Basic) RecordPredict(duration time.Duration, defined bool) {
	b.PredictCount.Add(1)
	b.PredictNanos.Add(duration.Nanoseconds())
	if !defined {
		b.PredictUndefined.Add(1)
	}
}

// RecordSnapshot implements Collector.
func (b *Basic) RecordSnapshot(_ string, bytes int64, _ time.Duration, err error) {
	b.SnapshotCount.Add(1)
	if err != nil {
		b.SnapshotErrors.Add(1)
		return
	}
	b.SnapshotBytes.Add(bytes)
}

// Stats returns a snapshot of current metrics.
func (b *Basic) Stats() BasicStats {
	return BasicStats{
		PassCount:        b.PassCount.Load(),
		PassErrors:       b.PassErrors.Load(),
		PassIndices:      b.PassIndices.Load(),
		PassAvgNanos:     avg(b.PassTotalNanos.Load(), b.PassCount.Load()),
		FitCount:         b.FitCount.Load(),
		FitErrors:        b.FitErrors.Load(),
		FitAvgNanos:      avg(b.FitTotalNanos.Load(), b.FitCount.Load()),
		PredictCount:     b.PredictCount.Load(),
		PredictUndefined: b.PredictUndefined.Load(),
		PredictAvgNanos:  avg(b.PredictNanos.Load(), b.PredictCount.Load()),
		SnapshotCount:    b.SnapshotCount.Load(),
		SnapshotErrors:   b.SnapshotErrors.Load(),
		SnapshotBytes:    b.SnapshotBytes.Load(),
	}
}

func avg(total, count int64) int64 {
	if count == 0 {
		return 0
	}
	return total / count
}

// BasicStats is a snapshot of Basic state.
type BasicStats struct {
	PassCount        int64
	PassErrors       int64
	PassIndices      int64
	PassAvgNanos     int64
	FitCount         int64
	FitErrors        int64
	FitAvgNanos      int64
	PredictCount     int64
	PredictUndefined int64
	PredictAvgNanos  int64
	SnapshotCount    int64
	SnapshotErrors   int64
	SnapshotBytes    int64
}
