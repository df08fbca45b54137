package knn

import (
	"github.com/ferortega/cf4j-sub001/logging"
	"github.com/ferortega/cf4j-sub001/metrics"
	"github.com/ferortega/cf4j-sub001/parallel"
	"github.com/ferortega/cf4j-sub001/resource"
)

type options struct {
	numWorkers       int
	aggregation      Aggregation
	logger           *logging.Logger
	metricsCollector metrics.Collector
	controller       *resource.Controller
}

// Option configures recommenders and neighbor passes.
type Option func(*options)

// WithNumWorkers sets the number of goroutines per pass.
// Defaults to GOMAXPROCS.
func WithNumWorkers(n int) Option {
	return func(o *options) {
		o.numWorkers = n
	}
}

// WithAggregation sets the prediction policy. Defaults to WeightedMean.
func WithAggregation(a Aggregation) Option {
	return func(o *options) {
		o.aggregation = a
	}
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithMetricsCollector sets the metrics collector.
func WithMetricsCollector(mc metrics.Collector) Option {
	return func(o *options) {
		o.metricsCollector = mc
	}
}

// WithResourceController bounds concurrent passes and matrix memory.
func WithResourceController(rc *resource.Controller) Option {
	return func(o *options) {
		o.controller = rc
	}
}

func applyOptions(opts []Option) options {
	o := options{
		numWorkers:       parallel.DefaultWorkers(),
		aggregation:      WeightedMean,
		logger:           logging.NoopLogger(),
		metricsCollector: metrics.Noop{},
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
