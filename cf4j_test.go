package cf4j_test

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ferortega/cf4j-sub001"
	"github.com/ferortega/cf4j-sub001/blobstore"
	"github.com/ferortega/cf4j-sub001/config"
	"github.com/ferortega/cf4j-sub001/datamodel"
	"github.com/ferortega/cf4j-sub001/knn"
	"github.com/ferortega/cf4j-sub001/metrics"
	"github.com/ferortega/cf4j-sub001/resource"
	"github.com/ferortega/cf4j-sub001/similarity"
	"github.com/ferortega/cf4j-sub001/testutil"
)

func referenceConfig() *config.Config {
	cfg := config.Default()
	cfg.Recommender.Metric = "cosine"
	cfg.Recommender.K = 2
	cfg.Recommender.Workers = 2
	cfg.Logging.Level = "error"
	cfg.Snapshot.Backend = "memory"
	return cfg
}

func TestNewAndFit(t *testing.T) {
	cfg := referenceConfig()
	cfg.Recommender.Aggregation = "deviation-from-mean"

	rec, err := cf4j.New(testutil.ReferenceModel(), cfg)
	require.NoError(t, err)
	defer rec.Close()

	assert.Equal(t, datamodel.UserSide, rec.Side())
	assert.Equal(t, 2, rec.K())
	assert.Equal(t, "cosine", rec.Metric())
	assert.Equal(t, knn.DeviationFromMean, rec.Aggregation())
	assert.False(t, rec.Fitted())

	_, err = rec.PredictID("Kim", "item1")
	assert.ErrorIs(t, err, cf4j.ErrNotFitted)
	_, err = rec.RecommendID("Kim", 2)
	assert.ErrorIs(t, err, cf4j.ErrNotFitted)

	require.NoError(t, rec.Fit(context.Background()))
	assert.True(t, rec.Fitted())

	v, err := rec.PredictID("Kim", "item1")
	require.NoError(t, err)
	assert.InDelta(t, 4.5, v, 1e-12)
	assert.InDelta(t, 4.5, rec.Predict(0, 1), 1e-12)

	assert.Equal(t, []int{2, 3}, rec.Neighbors(0))
	assert.InDelta(t, 0.9838699100999074, rec.Similarities(3)[0], 1e-15)

	_, err = rec.PredictID("Nobody", "item1")
	assert.ErrorIs(t, err, cf4j.ErrUnknownUser)
	_, err = rec.PredictID("Kim", "item9")
	assert.ErrorIs(t, err, cf4j.ErrUnknownItem)
	_, err = rec.PredictE(0, 17)
	assert.ErrorIs(t, err, cf4j.ErrIndexOutOfRange)
	assert.ErrorIs(t, err, knn.ErrIndexOutOfRange)
}

func TestRecommendID(t *testing.T) {
	rec, err := cf4j.New(testutil.ReferenceModel(), referenceConfig())
	require.NoError(t, err)
	require.NoError(t, rec.Fit(context.Background()))

	recs, err := rec.RecommendID("Tim", 5)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "item1", recs[0].ID)
	assert.InDelta(t, 5.0, recs[0].Score, 1e-12)
	assert.Equal(t, recs, rec.Recommend(3, 5))

	_, err = rec.RecommendID("Nobody", 5)
	assert.ErrorIs(t, err, cf4j.ErrUnknownUser)
}

func TestItemSide(t *testing.T) {
	cfg := referenceConfig()
	cfg.Recommender.Side = "item"
	cfg.Recommender.Aggregation = "deviation_from_mean"

	rec, err := cf4j.New(testutil.ReferenceModel(), cfg)
	require.NoError(t, err)
	require.NoError(t, rec.Fit(context.Background()))

	assert.Equal(t, datamodel.ItemSide, rec.Side())
	v, err := rec.PredictID("Tim", "item3")
	require.NoError(t, err)
	assert.InDelta(t, 2.5, v, 1e-12)
}

func TestNewErrors(t *testing.T) {
	dm := testutil.ReferenceModel()

	_, err := cf4j.New(nil, nil)
	assert.ErrorIs(t, err, cf4j.ErrInvalidConfig)

	cfg := referenceConfig()
	cfg.Recommender.K = 0
	_, err = cf4j.New(dm, cfg)
	assert.ErrorIs(t, err, cf4j.ErrInvalidK)
	assert.ErrorIs(t, err, knn.ErrInvalidK)

	cfg = referenceConfig()
	cfg.Recommender.Metric = "euclid"
	_, err = cf4j.New(dm, cfg)
	assert.ErrorIs(t, err, cf4j.ErrInvalidConfig)
	assert.ErrorIs(t, err, config.ErrInvalid)

	cfg = referenceConfig()
	cfg.Snapshot.Codec = "gob"
	_, err = cf4j.New(dm, cfg)
	assert.ErrorIs(t, err, cf4j.ErrInvalidConfig)
}

func TestNilConfigUsesDefaults(t *testing.T) {
	rec, err := cf4j.New(testutil.ReferenceModel(), nil, cf4j.WithLogger(nil))
	require.NoError(t, err)
	assert.Equal(t, "jmsd", rec.Metric())
	assert.Equal(t, 50, rec.K())
	assert.Equal(t, *config.Default(), rec.Config())
}

func TestMemoryLimit(t *testing.T) {
	cfg := referenceConfig()
	cfg.Resources.MemoryLimitBytes = similarity.MatrixBytes(4) - 1

	rec, err := cf4j.New(testutil.ReferenceModel(), cfg)
	require.NoError(t, err)
	err = rec.Fit(context.Background())
	assert.ErrorIs(t, err, cf4j.ErrMemoryLimit)
	assert.False(t, rec.Fitted())
}

func TestSharedController(t *testing.T) {
	rc := resource.NewController(resource.Config{})
	collector := &metrics.Basic{}
	dm := testutil.ReferenceModel()

	users, err := cf4j.New(dm, referenceConfig(), cf4j.WithResourceController(rc), cf4j.WithMetricsCollector(collector))
	require.NoError(t, err)
	cfg := referenceConfig()
	cfg.Recommender.Side = "item"
	items, err := cf4j.New(dm, cfg, cf4j.WithResourceController(rc), cf4j.WithMetricsCollector(collector))
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, users.Fit(ctx))
	require.NoError(t, items.Fit(ctx))
	assert.Equal(t, 2*similarity.MatrixBytes(4), rc.MemoryUsage())
	assert.Equal(t, int64(2), collector.Stats().FitCount)

	require.NoError(t, users.Close())
	require.NoError(t, items.Close())
	assert.Zero(t, rc.MemoryUsage())
}

func TestSnapshotRoundTrip(t *testing.T) {
	ctx := context.Background()
	dm := testutil.NewRNG(3).RandomModel(30, 20, 0.3, 1, 5)
	store := blobstore.NewMemoryStore()

	cfg := referenceConfig()
	cfg.Recommender.Metric = "pearson"
	cfg.Recommender.K = 5
	cfg.Snapshot.Compression = "zstd"

	fitted, err := cf4j.New(dm, cfg, cf4j.WithStore(store))
	require.NoError(t, err)
	assert.ErrorIs(t, fitted.SaveSnapshot(ctx), cf4j.ErrNotFitted)
	require.NoError(t, fitted.Fit(ctx))
	require.NoError(t, fitted.SaveSnapshot(ctx))

	restored, err := cf4j.New(dm, cfg, cf4j.WithStore(store))
	require.NoError(t, err)
	require.NoError(t, restored.LoadSnapshot(ctx))
	assert.True(t, restored.Fitted())

	for u := range dm.NumberOfUsers() {
		assert.Equal(t, fitted.Neighbors(u), restored.Neighbors(u))
		for i := range dm.NumberOfItems() {
			want, got := fitted.Predict(u, i), restored.Predict(u, i)
			if math.IsNaN(want) {
				assert.True(t, math.IsNaN(got))
				continue
			}
			assert.Equal(t, want, got)
		}
	}

	other := *cfg
	other.Recommender.Metric = "cosine"
	mismatched, err := cf4j.New(dm, &other, cf4j.WithStore(store))
	require.NoError(t, err)
	assert.ErrorIs(t, mismatched.LoadSnapshot(ctx), cf4j.ErrSnapshotMismatch)
	assert.False(t, mismatched.Fitted())

	missing := *cfg
	missing.Snapshot.Name = "absent.snap"
	absent, err := cf4j.New(dm, &missing, cf4j.WithStore(store))
	require.NoError(t, err)
	assert.ErrorIs(t, absent.LoadSnapshot(ctx), cf4j.ErrSnapshotNotFound)

	require.NoError(t, store.Put(ctx, "garbage.snap", make([]byte, 100)))
	missing.Snapshot.Name = "garbage.snap"
	corrupt, err := cf4j.New(dm, &missing, cf4j.WithStore(store))
	require.NoError(t, err)
	assert.ErrorIs(t, corrupt.LoadSnapshot(ctx), cf4j.ErrCorruptSnapshot)
}

func TestSaveSnapshotDuringFit(t *testing.T) {
	ctx := context.Background()
	dm := testutil.NewRNG(5).RandomModel(30, 20, 0.3, 1, 5)
	store := blobstore.NewMemoryStore()

	cfg := referenceConfig()
	cfg.Recommender.K = 4
	cfg.Resources.MaxConcurrentPasses = 4

	rec, err := cf4j.New(dm, cfg, cf4j.WithStore(store))
	require.NoError(t, err)
	defer rec.Close()
	require.NoError(t, rec.Fit(ctx))

	var wg sync.WaitGroup
	errs := make(chan error, 25)
	wg.Add(2)
	go func() {
		defer wg.Done()
		for range 5 {
			errs <- rec.Fit(ctx)
		}
	}()
	go func() {
		defer wg.Done()
		for range 20 {
			errs <- rec.SaveSnapshot(ctx)
		}
	}()
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	restored, err := cf4j.New(dm, cfg, cf4j.WithStore(store))
	require.NoError(t, err)
	require.NoError(t, restored.LoadSnapshot(ctx))
	for u := range dm.NumberOfUsers() {
		assert.Equal(t, rec.Neighbors(u), restored.Neighbors(u))
	}
}

func TestLocalSnapshotBackend(t *testing.T) {
	ctx := context.Background()
	cfg := referenceConfig()
	cfg.Snapshot.Backend = "local"
	cfg.Snapshot.Dir = filepath.Join(t.TempDir(), "snaps")
	cfg.Snapshot.CacheBytes = 1 << 20
	cfg.Snapshot.BlockSize = 256

	rec, err := cf4j.New(testutil.ReferenceModel(), cfg)
	require.NoError(t, err)
	require.NoError(t, rec.Fit(context.Background()))
	require.NoError(t, rec.SaveSnapshot(ctx))

	_, err = os.Stat(filepath.Join(cfg.Snapshot.Dir, cfg.Snapshot.Name))
	require.NoError(t, err)

	store, err := rec.Store(ctx)
	require.NoError(t, err)
	_, cached := store.(*blobstore.CachingStore)
	assert.True(t, cached)

	again, err := cf4j.New(testutil.ReferenceModel(), cfg)
	require.NoError(t, err)
	require.NoError(t, again.LoadSnapshot(ctx))
	assert.Equal(t, rec.Neighbors(0), again.Neighbors(0))
}

func TestOpenStoreUnknownBackend(t *testing.T) {
	_, err := cf4j.OpenStore(context.Background(), config.SnapshotConfig{Backend: "gcs"}, nil)
	assert.ErrorIs(t, err, cf4j.ErrInvalidConfig)
}

func TestLoadRatings(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ratings.dat")
	content := "user::item::rating::ts\n# comment\nu1::i1::4::100\nu1::i2::3::101\nu2::i1::5::102\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	dm, err := cf4j.LoadRatings(path, config.RatingsConfig{Separator: "::", Header: true, CommentPrefix: "#"})
	require.NoError(t, err)
	assert.Equal(t, 2, dm.NumberOfUsers())
	assert.Equal(t, 2, dm.NumberOfItems())
	assert.Equal(t, 3, dm.NumberOfRatings())

	_, err = cf4j.LoadRatings(filepath.Join(t.TempDir(), "missing"), config.RatingsConfig{Separator: ","})
	assert.Error(t, err)
}

func TestNewLogger(t *testing.T) {
	assert.NotNil(t, cf4j.NewLogger(config.LoggingConfig{Level: "debug", Format: "json"}))
	assert.NotNil(t, cf4j.NewLogger(config.LoggingConfig{Level: "warn", Format: "text"}))
}
