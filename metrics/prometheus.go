package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Prometheus exports metrics through a prometheus.Registerer.
type Prometheus struct {
	passLatency     *prometheus.HistogramVec
	passIndices     *prometheus.CounterVec
	fitLatency      *prometheus.HistogramVec
	predictions     *prometheus.CounterVec
	snapshotLatency *prometheus.HistogramVec
	snapshotBytes   *prometheus.CounterVec
}

// NewPrometheus creates the collectors and registers them on reg.
// namespace prefixes every metric name, e.g. "cf4j".
func NewPrometheus(reg prometheus.Registerer, namespace string) (*Prometheus, error) {
	p := &Prometheus{
		passLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "pass_duration_seconds",
			Help:      "Duration of partitioned passes",
			Buckets:   prometheus.DefBuckets,
		}, []string{"pass", "status"}),
		passIndices: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pass_indices_total",
			Help:      "Indices processed by partitioned passes",
		}, []string{"pass"}),
		fitLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "fit_duration_seconds",
			Help:      "Duration of recommender fits",
			Buckets:   prometheus.DefBuckets,
		}, []string{"status"}),
		predictions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "predictions_total",
			Help:      "Predictions served, by outcome",
		}, []string{"outcome"}),
		snapshotLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "snapshot_duration_seconds",
			Help:      "Duration of snapshot operations",
			Buckets:   prometheus.DefBuckets,
		}, []string{"op", "status"}),
		snapshotBytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "snapshot_bytes_total",
			Help:      "Bytes moved by snapshot operations",
		}, []string{"op"}),
	}

	for _, c := range []prometheus.Collector{
		p.passLatency,
		p.passIndices,
		p.fitLatency,
		p.predictions,
		p.snapshotLatency,
		p.snapshotBytes,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

// RecordPass implements Collector.
func (p *Prometheus) RecordPass(pass string, domainSize int, duration time.Duration, err error) {
	p.passLatency.WithLabelValues(pass, status(err)).Observe(duration.Seconds())
	if err == nil {
		p.passIndices.WithLabelValues(pass).Add(float64(domainSize))
	}
}

// RecordFit implements Collector.
func (p *Prometheus) RecordFit(duration time.Duration, err error) {
	p.fitLatency.WithLabelValues(status(err)).Observe(duration.Seconds())
}

// RecordPredict implements Collector.
func (p *Prometheus) RecordPredict(_ time.Duration, defined bool) {
	outcome := "defined"
	if !defined {
		outcome = "undefined"
	}
	p.predictions.WithLabelValues(outcome).Inc()
}

// RecordSnapshot implements Collector.
func (p *Prometheus) RecordSnapshot(op string, bytes int64, duration time.Duration, err error) {
	p.snapshotLatency.WithLabelValues(op, status(err)).Observe(duration.Seconds())
	if err == nil {
		p.snapshotBytes.WithLabelValues(op).Add(float64(bytes))
	}
}
