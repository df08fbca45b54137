package knn

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/ferortega/cf4j-sub001/datamodel"
	"github.com/ferortega/cf4j-sub001/similarity"
)

var (
	// ErrNotFitted is returned when predicting before Fit or Restore.
	ErrNotFitted = errors.New("knn: recommender not fitted")

	// ErrIndexOutOfRange is returned for user or item indices outside the model.
	ErrIndexOutOfRange = errors.New("knn: index out of range")

	// ErrTableMismatch is returned by Restore for tables of another shape,
	// side or metric.
	ErrTableMismatch = errors.New("knn: tables do not match recommender")
)

// Recommendation is a scored unrated item.
type Recommendation struct {
	Item  int
	ID    string
	Score float64
}

// Recommender is implemented by UserKNN and ItemKNN.
type Recommender interface {
	Fit(ctx context.Context) error
	Predict(user, item int) float64
	PredictE(user, item int) (float64, error)
	Recommend(user, n int) []Recommendation
}

var (
	_ Recommender = (*UserKNN)(nil)
	_ Recommender = (*ItemKNN)(nil)
)

// knn is the side-agnostic core. Entities are the side whose neighbors are
// computed; predictions aggregate the neighbors' ratings of a counterpart.
type knn struct {
	dm     *datamodel.DataModel
	view   datamodel.View
	k      int
	metric similarity.Metric
	opts   options

	// fitMu serializes Fit and Restore. Preparer metrics keep pass state on
	// the metric instance, so two passes must never overlap.
	fitMu sync.Mutex

	mu     sync.RWMutex
	matrix *similarity.Matrix
	table  *NeighborTable
}

func newKNN(dm *datamodel.DataModel, side datamodel.Side, k int, metric similarity.Metric, opts []Option) (*knn, error) {
	if dm == nil {
		return nil, errors.New("knn: nil data model")
	}
	if metric == nil {
		return nil, errors.New("knn: nil metric")
	}
	if k <= 0 {
		return nil, ErrInvalidK
	}
	return &knn{
		dm:     dm,
		view:   datamodel.Of(dm, side),
		k:      k,
		metric: metric,
		opts:   applyOptions(opts),
	}, nil
}

// K returns the neighbor count.
func (r *knn) K() int { return r.k }

// Metric returns the similarity metric.
func (r *knn) Metric() similarity.Metric { return r.metric }

// Aggregation returns the prediction policy.
func (r *knn) Aggregation() Aggregation { return r.opts.aggregation }

// Side returns the side whose neighbors are computed.
func (r *knn) Side() datamodel.Side { return r.view.Side() }

// Fit runs the similarity pass and the neighbor pass. On failure the
// previously fitted tables, if any, stay in place. Concurrent calls run one
// after the other.
func (r *knn) Fit(ctx context.Context) error {
	r.fitMu.Lock()
	defer r.fitMu.Unlock()

	start := time.Now()
	err := r.fit(ctx)
	elapsed := time.Since(start)

	r.opts.metricsCollector.RecordFit(elapsed, err)
	r.opts.logger.WithMetric(r.metric.Name()).WithK(r.k).WithSide(r.view.Side().String()).
		LogFit(ctx, r.view.Len(), elapsed, err)
	return err
}

func (r *knn) fit(ctx context.Context) error {
	matrix, err := similarity.Compute(ctx, r.view, r.metric,
		similarity.WithNumWorkers(r.opts.numWorkers),
		similarity.WithLogger(r.opts.logger),
		similarity.WithMetricsCollector(r.opts.metricsCollector),
		similarity.WithResourceController(r.opts.controller),
	)
	if err != nil {
		return err
	}

	table, err := Neighbors(ctx, matrix, r.k,
		WithNumWorkers(r.opts.numWorkers),
		WithLogger(r.opts.logger),
		WithMetricsCollector(r.opts.metricsCollector),
		WithResourceController(r.opts.controller),
	)
	if err != nil {
		matrix.Release()
		return err
	}

	r.swap(matrix, table)
	return nil
}

// Restore installs previously computed tables, e.g. loaded from a snapshot.
// matrix ownership passes to the recommender.
func (r *knn) Restore(matrix *similarity.Matrix, table *NeighborTable) error {
	n := r.view.Len()
	switch {
	case matrix == nil || table == nil:
		return fmt.Errorf("%w: missing table", ErrTableMismatch)
	case matrix.Len() != n || table.Len() != n:
		return fmt.Errorf("%w: %d entities, matrix %d, neighbors %d", ErrTableMismatch, n, matrix.Len(), table.Len())
	case table.K() != r.k:
		return fmt.Errorf("%w: k=%d, table k=%d", ErrTableMismatch, r.k, table.K())
	case matrix.Side() != r.view.Side():
		return fmt.Errorf("%w: side %s, matrix side %s", ErrTableMismatch, r.view.Side(), matrix.Side())
	case matrix.Metric() != r.metric.Name():
		return fmt.Errorf("%w: metric %s, matrix metric %s", ErrTableMismatch, r.metric.Name(), matrix.Metric())
	}

	r.fitMu.Lock()
	defer r.fitMu.Unlock()
	r.swap(matrix, table)
	return nil
}

func (r *knn) swap(matrix *similarity.Matrix, table *NeighborTable) {
	r.mu.Lock()
	old := r.matrix
	r.matrix, r.table = matrix, table
	r.mu.Unlock()

	if old != nil {
		old.Release()
	}
}

// Fitted reports whether tables are available.
func (r *knn) Fitted() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.matrix != nil
}

// WithTables calls fn with the current similarity matrix and neighbor table.
// The tables stay valid until fn returns: a concurrent Fit, Restore or Close
// waits before replacing them. fn must not modify the tables, retain them or
// call back into the recommender.
func (r *knn) WithTables(fn func(*similarity.Matrix, *NeighborTable) error) error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.matrix == nil {
		return ErrNotFitted
	}
	return fn(r.matrix, r.table)
}

// Similarities returns the similarity row of entity i, or nil before Fit or
// for an out-of-range index. The slice is shared and must not be modified.
func (r *knn) Similarities(i int) []float64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.matrix == nil || i < 0 || i >= r.matrix.Len() {
		return nil
	}
	return r.matrix.Row(i)
}

// Neighbors returns the neighbor row of entity i, or nil before Fit or for an
// out-of-range index. The slice is shared and must not be modified.
func (r *knn) Neighbors(i int) []int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.table == nil || i < 0 || i >= r.table.Len() {
		return nil
	}
	return r.table.Row(i)
}

// Close releases the similarity matrix.
func (r *knn) Close() error {
	r.mu.Lock()
	old := r.matrix
	r.matrix, r.table = nil, nil
	r.mu.Unlock()

	if old != nil {
		old.Release()
	}
	return nil
}

// predict aggregates the ratings of counterpart c given by the neighbors of
// entity e.
func (r *knn) predict(e, c int) (float64, error) {
	if e < 0 || e >= r.view.Len() || c < 0 || c >= r.view.Counterparts().Len() {
		return math.NaN(), ErrIndexOutOfRange
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.matrix == nil {
		return math.NaN(), ErrNotFitted
	}

	acc := accumulator{policy: r.opts.aggregation}
	sims := r.matrix.Row(e)
	for _, nb := range r.table.Row(e) {
		if nb == NotFound {
			break
		}
		neighbor := r.view.At(nb)
		rating, ok := neighbor.Rating(c)
		if !ok {
			continue
		}
		acc.add(sims[nb], rating, neighbor.Average())
	}
	return acc.result(r.view.At(e).Average()), nil
}

func (r *knn) observe(start time.Time, v float64) {
	r.opts.metricsCollector.RecordPredict(time.Since(start), !math.IsNaN(v))
}

// recommend ranks the items user has not rated by predict(user, item).
func (r *knn) recommend(user, n int, predict func(user, item int) float64) []Recommendation {
	if n <= 0 || user < 0 || user >= r.dm.NumberOfUsers() || !r.Fitted() {
		return nil
	}

	rated := r.dm.User(user)
	scores := make([]float64, r.dm.NumberOfItems())
	for item := range scores {
		if rated.Contains(item) {
			scores[item] = math.NaN()
			continue
		}
		scores[item] = predict(user, item)
	}

	out := make([]Recommendation, 0, n)
	for _, item := range TopK(scores, n) {
		if item == NotFound {
			break
		}
		out = append(out, Recommendation{
			Item:  item,
			ID:    r.dm.Item(item).ID(),
			Score: scores[item],
		})
	}
	return out
}
