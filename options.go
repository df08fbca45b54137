package cf4j

import (
	"log/slog"

	"github.com/ferortega/cf4j-sub001/blobstore"
	"github.com/ferortega/cf4j-sub001/logging"
	"github.com/ferortega/cf4j-sub001/metrics"
	"github.com/ferortega/cf4j-sub001/resource"
)

type options struct {
	logger           *logging.Logger
	metricsCollector metrics.Collector
	controller       *resource.Controller
	store            blobstore.BlobStore
}

// Option overrides components New would otherwise build from the Config.
type Option func(*options)

// WithLogger sets the structured logger for passes, fits and snapshots.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := logging.NewJSONLogger(slog.LevelInfo)
//	rec, _ := cf4j.New(dm, cfg, cf4j.WithLogger(logger))
func WithLogger(logger *logging.Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = logging.NoopLogger()
		}
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(logging.NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = logging.NewTextLogger(level)
	}
}

// WithMetricsCollector configures a metrics collector for monitoring
// operations. Pass nil to disable metrics collection.
//
// Example with metrics.Basic:
//
//	m := &metrics.Basic{}
//	rec, _ := cf4j.New(dm, cfg, cf4j.WithMetricsCollector(m))
//	// ... fit and predict ...
//	stats := m.Stats()
//	fmt.Printf("Fits: %d, Avg latency: %dns\n", stats.FitCount, stats.FitAvgNanos)
func WithMetricsCollector(mc metrics.Collector) Option {
	return func(o *options) {
		if mc == nil {
			mc = metrics.Noop{}
		}
		o.metricsCollector = mc
	}
}

// WithResourceController shares a resource controller between recommenders,
// so that their matrices count against one memory budget.
func WithResourceController(rc *resource.Controller) Option {
	return func(o *options) {
		o.controller = rc
	}
}

// WithStore sets the snapshot store, bypassing the configured backend.
func WithStore(store blobstore.BlobStore) Option {
	return func(o *options) {
		o.store = store
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		metricsCollector: metrics.Noop{},
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}
