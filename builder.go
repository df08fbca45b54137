package cf4j

import (
	"github.com/ferortega/cf4j-sub001/blobstore"
	"github.com/ferortega/cf4j-sub001/config"
	"github.com/ferortega/cf4j-sub001/datamodel"
	"github.com/ferortega/cf4j-sub001/knn"
	"github.com/ferortega/cf4j-sub001/logging"
	"github.com/ferortega/cf4j-sub001/metrics"
	"github.com/ferortega/cf4j-sub001/resource"
)

// =============================================================================
// Builder (Immutable)
// =============================================================================

// UserBased creates a builder for a recommender whose neighbors are users.
//
// The builder is immutable - each method returns a new builder with the
// updated configuration, so a partially configured builder can be shared.
//
// Example:
//
//	rec, err := cf4j.UserBased(dm).
//	    Metric("pearson").
//	    K(30).
//	    Aggregation(knn.DeviationFromMean).
//	    Build()
func UserBased(dm *datamodel.DataModel) Builder {
	return newBuilder(dm, datamodel.UserSide)
}

// ItemBased creates a builder for a recommender whose neighbors are items.
func ItemBased(dm *datamodel.DataModel) Builder {
	return newBuilder(dm, datamodel.ItemSide)
}

func newBuilder(dm *datamodel.DataModel, side datamodel.Side) Builder {
	cfg := config.Default()
	cfg.Recommender.Side = side.String()
	cfg.Snapshot.Backend = "memory"
	return Builder{dm: dm, cfg: *cfg}
}

// Builder is an immutable fluent builder for Recommender.
type Builder struct {
	dm   *datamodel.DataModel
	cfg  config.Config
	opts []Option
}

func (b Builder) with(opt Option) Builder {
	b.opts = append(b.opts[:len(b.opts):len(b.opts)], opt)
	return b
}

// Metric sets the similarity metric by registry name, e.g. "jmsd".
// Default: jmsd.
func (b Builder) Metric(name string) Builder {
	b.cfg.Recommender.Metric = name
	return b
}

// K sets the neighborhood size. Default: 50.
func (b Builder) K(k int) Builder {
	b.cfg.Recommender.K = k
	return b
}

// Aggregation sets the prediction policy. Default: knn.WeightedMean.
func (b Builder) Aggregation(a knn.Aggregation) Builder {
	b.cfg.Recommender.Aggregation = a.String()
	return b
}

// Workers sets the number of goroutines per pass. Default: GOMAXPROCS.
func (b Builder) Workers(n int) Builder {
	b.cfg.Recommender.Workers = n
	return b
}

// RelevanceThreshold sets the Singularities relevance threshold. By default
// it is derived from the rating scale.
func (b Builder) RelevanceThreshold(t float64) Builder {
	b.cfg.Recommender.RelevanceThreshold = t
	return b
}

// MemoryLimit caps the bytes reserved for similarity matrices.
func (b Builder) MemoryLimit(bytes int64) Builder {
	b.cfg.Resources.MemoryLimitBytes = bytes
	return b
}

// Logger sets the structured logger.
func (b Builder) Logger(l *logging.Logger) Builder {
	return b.with(WithLogger(l))
}

// Metrics sets the metrics collector.
func (b Builder) Metrics(mc metrics.Collector) Builder {
	return b.with(WithMetricsCollector(mc))
}

// ResourceController shares a resource controller with other recommenders.
func (b Builder) ResourceController(rc *resource.Controller) Builder {
	return b.with(WithResourceController(rc))
}

// Snapshots sets the snapshot store and blob name. Default: an in-memory
// store.
func (b Builder) Snapshots(store blobstore.BlobStore, name string) Builder {
	b.cfg.Snapshot.Name = name
	return b.with(WithStore(store))
}

// Config returns the configuration Build would use.
func (b Builder) Config() config.Config { return b.cfg }

// Build creates the recommender.
func (b Builder) Build() (*Recommender, error) {
	cfg := b.cfg
	return New(b.dm, &cfg, b.opts...)
}

// MustBuild creates the recommender, panicking on error.
func (b Builder) MustBuild() *Recommender {
	r, err := b.Build()
	if err != nil {
		panic(err)
	}
	return r
}
