package cf4j

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/ferortega/cf4j-sub001/blobstore"
	"github.com/ferortega/cf4j-sub001/codec"
	"github.com/ferortega/cf4j-sub001/config"
	"github.com/ferortega/cf4j-sub001/datamodel"
	"github.com/ferortega/cf4j-sub001/knn"
	"github.com/ferortega/cf4j-sub001/logging"
	"github.com/ferortega/cf4j-sub001/metrics"
	"github.com/ferortega/cf4j-sub001/resource"
	"github.com/ferortega/cf4j-sub001/similarity"
	"github.com/ferortega/cf4j-sub001/snapshot"
)

// model is implemented by knn.UserKNN and knn.ItemKNN.
type model interface {
	knn.Recommender
	Similarities(i int) []float64
	Neighbors(i int) []int
	WithTables(func(*similarity.Matrix, *knn.NeighborTable) error) error
	Restore(*similarity.Matrix, *knn.NeighborTable) error
	Fitted() bool
	K() int
	Metric() similarity.Metric
	Side() datamodel.Side
	Aggregation() knn.Aggregation
	Close() error
}

// Recommender is a KNN recommender bound to a data model.
// It is safe for concurrent use; Fit and LoadSnapshot replace the tables
// atomically while predictions continue on the previous ones.
type Recommender struct {
	dm    *datamodel.DataModel
	model model
	cfg   config.Config

	logger           *logging.Logger
	metricsCollector metrics.Collector
	controller       *resource.Controller

	storeMu sync.Mutex
	store   blobstore.BlobStore
}

// New creates an unfitted recommender as described by cfg. A nil cfg uses
// config.Default. Options override the logger, metrics collector, resource
// controller and snapshot store derived from cfg.
func New(dm *datamodel.DataModel, cfg *config.Config, opts ...Option) (*Recommender, error) {
	if dm == nil {
		return nil, fmt.Errorf("%w: nil data model", ErrInvalidConfig)
	}
	if cfg == nil {
		cfg = config.Default()
	}
	if k := cfg.Recommender.K; k <= 0 {
		return nil, translateError(fmt.Errorf("%w: %d", knn.ErrInvalidK, k))
	}
	if err := cfg.Validate(); err != nil {
		return nil, translateError(err)
	}

	o := applyOptions(opts)
	if o.logger == nil {
		o.logger = NewLogger(cfg.Logging)
	}
	if o.controller == nil {
		o.controller = NewController(cfg.Resources)
	}

	m, err := newModel(dm, cfg.Recommender, o)
	if err != nil {
		return nil, translateError(err)
	}

	return &Recommender{
		dm:               dm,
		model:            m,
		cfg:              *cfg,
		logger:           o.logger,
		metricsCollector: o.metricsCollector,
		controller:       o.controller,
		store:            o.store,
	}, nil
}

func newModel(dm *datamodel.DataModel, rc config.RecommenderConfig, o options) (model, error) {
	side, err := datamodel.ParseSide(rc.Side)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	agg, err := knn.ParseAggregation(rc.Aggregation)
	if err != nil {
		return nil, err
	}

	var metricOpts []similarity.MetricOption
	if rc.RelevanceThreshold > 0 {
		metricOpts = append(metricOpts, similarity.WithRelevanceThreshold(rc.RelevanceThreshold))
	}
	metric, err := similarity.ByName(rc.Metric, metricOpts...)
	if err != nil {
		return nil, err
	}

	knnOpts := []knn.Option{
		knn.WithAggregation(agg),
		knn.WithLogger(o.logger),
		knn.WithMetricsCollector(o.metricsCollector),
		knn.WithResourceController(o.controller),
	}
	if rc.Workers > 0 {
		knnOpts = append(knnOpts, knn.WithNumWorkers(rc.Workers))
	}

	if side == datamodel.UserSide {
		r, err := knn.NewUserKNN(dm, rc.K, metric, knnOpts...)
		if err != nil {
			return nil, err
		}
		return r, nil
	}
	r, err := knn.NewItemKNN(dm, rc.K, metric, knnOpts...)
	if err != nil {
		return nil, err
	}
	return r, nil
}

// NewLogger builds the logger described by cfg.
func NewLogger(cfg config.LoggingConfig) *logging.Logger {
	level := logging.ParseLevel(cfg.Level)
	if cfg.Format == "json" {
		return logging.NewJSONLogger(level)
	}
	return logging.NewTextLogger(level)
}

// NewController builds the resource controller described by cfg.
func NewController(cfg config.ResourceConfig) *resource.Controller {
	return resource.NewController(resource.Config{
		MemoryLimitBytes:    cfg.MemoryLimitBytes,
		MaxConcurrentPasses: cfg.MaxConcurrentPasses,
		IOLimitBytesPerSec:  cfg.IOLimitBytesPerSec,
	})
}

// LoadRatings reads a delimited ratings file as described by cfg.
func LoadRatings(path string, cfg config.RatingsConfig) (*datamodel.DataModel, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	opts := []datamodel.ReaderOption{
		datamodel.WithSeparator(cfg.Separator),
		datamodel.WithCommentPrefix(cfg.CommentPrefix),
	}
	if cfg.Header {
		opts = append(opts, datamodel.WithHeader())
	}
	return datamodel.ReadRatings(f, opts...)
}

// DataModel returns the bound data model.
func (r *Recommender) DataModel() *datamodel.DataModel { return r.dm }

// Config returns the configuration the recommender was built from.
func (r *Recommender) Config() config.Config { return r.cfg }

// Side reports whether neighbors are users or items.
func (r *Recommender) Side() datamodel.Side { return r.model.Side() }

// K returns the neighborhood size.
func (r *Recommender) K() int { return r.model.K() }

// Metric returns the similarity metric name.
func (r *Recommender) Metric() string { return r.model.Metric().Name() }

// Aggregation returns the prediction policy.
func (r *Recommender) Aggregation() knn.Aggregation { return r.model.Aggregation() }

// Fitted reports whether tables are available.
func (r *Recommender) Fitted() bool { return r.model.Fitted() }

// Fit computes the similarity and neighbor tables. On failure the previous
// tables, if any, stay in place.
func (r *Recommender) Fit(ctx context.Context) error {
	return translateError(r.model.Fit(ctx))
}

// Predict returns the predicted rating of item by user, or NaN when no
// prediction is possible.
func (r *Recommender) Predict(user, item int) float64 {
	return r.model.Predict(user, item)
}

// PredictE is Predict with ErrNotFitted and ErrIndexOutOfRange reported.
func (r *Recommender) PredictE(user, item int) (float64, error) {
	v, err := r.model.PredictE(user, item)
	return v, translateError(err)
}

// PredictID is PredictE addressed by user and item ID.
func (r *Recommender) PredictID(userID, itemID string) (float64, error) {
	u := r.dm.FindUserIndex(userID)
	if u < 0 {
		return 0, fmt.Errorf("%w: %q", ErrUnknownUser, userID)
	}
	i := r.dm.FindItemIndex(itemID)
	if i < 0 {
		return 0, fmt.Errorf("%w: %q", ErrUnknownItem, itemID)
	}
	return r.PredictE(u, i)
}

// Recommend returns up to n unrated items for user, best first.
func (r *Recommender) Recommend(user, n int) []knn.Recommendation {
	return r.model.Recommend(user, n)
}

// RecommendID is Recommend addressed by user ID.
func (r *Recommender) RecommendID(userID string, n int) ([]knn.Recommendation, error) {
	u := r.dm.FindUserIndex(userID)
	if u < 0 {
		return nil, fmt.Errorf("%w: %q", ErrUnknownUser, userID)
	}
	if !r.model.Fitted() {
		return nil, ErrNotFitted
	}
	return r.model.Recommend(u, n), nil
}

// Similarities returns the similarity row of entity i. See knn.
func (r *Recommender) Similarities(i int) []float64 { return r.model.Similarities(i) }

// Neighbors returns the neighbor row of entity i. See knn.
func (r *Recommender) Neighbors(i int) []int { return r.model.Neighbors(i) }

// Store returns the snapshot store, connecting to the configured backend on
// first use.
func (r *Recommender) Store(ctx context.Context) (blobstore.BlobStore, error) {
	r.storeMu.Lock()
	defer r.storeMu.Unlock()
	if r.store != nil {
		return r.store, nil
	}
	store, err := OpenStore(ctx, r.cfg.Snapshot, r.controller)
	if err != nil {
		return nil, err
	}
	r.store = store
	return store, nil
}

func (r *Recommender) snapshotOptions() ([]snapshot.Option, error) {
	c, err := snapshot.ParseCompression(r.cfg.Snapshot.Compression)
	if err != nil {
		return nil, translateError(err)
	}
	cd, err := codec.Lookup(r.cfg.Snapshot.Codec)
	if err != nil {
		return nil, translateError(err)
	}
	opts := []snapshot.Option{
		snapshot.WithCompression(c),
		snapshot.WithCodec(cd),
		snapshot.WithLogger(r.logger),
		snapshot.WithMetricsCollector(r.metricsCollector),
		snapshot.WithResourceController(r.controller),
	}
	if w := r.cfg.Recommender.Workers; w > 0 {
		opts = append(opts, snapshot.WithNumWorkers(w))
	}
	return opts, nil
}

// SaveSnapshot writes the fitted tables to the configured snapshot. A Fit
// that finishes meanwhile installs its tables once the write is done.
func (r *Recommender) SaveSnapshot(ctx context.Context) error {
	opts, err := r.snapshotOptions()
	if err != nil {
		return err
	}
	store, err := r.Store(ctx)
	if err != nil {
		return translateError(err)
	}
	return translateError(r.model.WithTables(func(m *similarity.Matrix, table *knn.NeighborTable) error {
		return snapshot.Write(ctx, store, r.cfg.Snapshot.Name, m, table, opts...)
	}))
}

// LoadSnapshot replaces the tables with those of the configured snapshot.
// The snapshot must match the recommender's side, metric, k and data model
// size.
func (r *Recommender) LoadSnapshot(ctx context.Context) error {
	opts, err := r.snapshotOptions()
	if err != nil {
		return err
	}
	store, err := r.Store(ctx)
	if err != nil {
		return translateError(err)
	}
	m, table, err := snapshot.Load(ctx, store, r.cfg.Snapshot.Name, opts...)
	if err != nil {
		return translateError(err)
	}
	if err := r.model.Restore(m, table); err != nil {
		m.Release()
		return translateError(err)
	}
	return nil
}
