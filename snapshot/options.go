package snapshot

import (
	"github.com/ferortega/cf4j-sub001/codec"
	"github.com/ferortega/cf4j-sub001/logging"
	"github.com/ferortega/cf4j-sub001/metrics"
	"github.com/ferortega/cf4j-sub001/parallel"
	"github.com/ferortega/cf4j-sub001/resource"
)

type options struct {
	compression      Compression
	codec            codec.Codec
	numWorkers       int
	logger           *logging.Logger
	metricsCollector metrics.Collector
	controller       *resource.Controller
}

// Option configures Write, Open and Load.
type Option func(*options)

// WithCompression sets the block compression for Write. Defaults to LZ4.
func WithCompression(c Compression) Option {
	return func(o *options) {
		o.compression = c
	}
}

// WithCodec sets the header codec for Write. Defaults to codec.Default.
// Readers select the codec named in the snapshot.
func WithCodec(c codec.Codec) Option {
	return func(o *options) {
		o.codec = c
	}
}

// WithNumWorkers sets the number of goroutines used by Reader.Matrix.
func WithNumWorkers(n int) Option {
	return func(o *options) {
		o.numWorkers = n
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

// WithResourceController rate-limits snapshot I/O and reserves memory for
// loaded matrices.
func WithResourceController(rc *resource.Controller) Option {
	return func(o *options) {
		o.controller = rc
	}
}

func applyOptions(opts []Option) options {
	o := options{
		compression:      CompressionLZ4,
		codec:            codec.Default,
		numWorkers:       parallel.DefaultWorkers(),
		logger:           logging.NoopLogger(),
		metricsCollector: metrics.Noop{},
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
