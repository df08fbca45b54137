package similarity

import (
	"context"
	"fmt"
	"time"

	"github.com/ferortega/cf4j-sub001/datamodel"
	"github.com/ferortega/cf4j-sub001/logging"
	"github.com/ferortega/cf4j-sub001/metrics"
	"github.com/ferortega/cf4j-sub001/parallel"
	"github.com/ferortega/cf4j-sub001/resource"
)

// PassName identifies similarity passes in logs and metrics.
const PassName = "similarity"

type options struct {
	numWorkers       int
	logger           *logging.Logger
	metricsCollector metrics.Collector
	controller       *resource.Controller
}

// Option configures Compute.
type Option func(*options)

// WithNumWorkers sets the number of goroutines of the pass.
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

// WithResourceController reserves matrix memory and a pass slot on rc.
func WithResourceController(rc *resource.Controller) Option {
	return func(o *options) {
		o.controller = rc
	}
}

func applyOptions(opts []Option) options {
	o := options{
		numWorkers:       parallel.DefaultWorkers(),
		logger:           logging.NoopLogger(),
		metricsCollector: metrics.Noop{},
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// rowWorker fills one matrix row per index.
type rowWorker struct {
	view   datamodel.View
	metric Metric
	matrix *Matrix
}

func (w *rowWorker) BeforeRun(ctx context.Context) error {
	if p, ok := w.metric.(Preparer); ok {
		return p.Prepare(ctx, NewContext(w.view))
	}
	return nil
}

func (w *rowWorker) Process(_ context.Context, i int) error {
	row := w.matrix.Row(i)
	a := w.view.At(i)
	for j := range row {
		if j == i {
			row[j] = Undefined
			continue
		}
		row[j] = defined(w.metric.Similarity(a, w.view.At(j)))
	}
	return nil
}

func (w *rowWorker) AfterRun(context.Context) error { return nil }

// Compute runs one similarity pass over view and returns the filled matrix.
// A failed pass releases the matrix and returns no partial result.
func Compute(ctx context.Context, view datamodel.View, metric Metric, opts ...Option) (*Matrix, error) {
	o := applyOptions(opts)
	n := view.Len()
	if n < 1 {
		return nil, fmt.Errorf("%s pass: %w", PassName, parallel.ErrEmptyDomain)
	}
	if o.numWorkers < 1 {
		return nil, fmt.Errorf("%s pass: %w", PassName, parallel.ErrInvalidWorkers)
	}

	m, err := NewMatrix(ctx, n, metric.Name(), view.Side(), o.controller)
	if err != nil {
		return nil, fmt.Errorf("%s pass: %w", PassName, err)
	}

	start := time.Now()
	err = parallel.Run(ctx, n, &rowWorker{view: view, metric: metric, matrix: m}, o.numWorkers,
		parallel.WithResourceController(o.controller))
	elapsed := time.Since(start)

	o.metricsCollector.RecordPass(PassName, n, elapsed, err)
	o.logger.WithMetric(metric.Name()).WithSide(view.Side().String()).WithWorkers(o.numWorkers).
		LogPass(ctx, PassName, n, elapsed, err)

	if err != nil {
		m.Release()
		return nil, fmt.Errorf("%s pass: %w", PassName, err)
	}
	return m, nil
}
