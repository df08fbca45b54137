package snapshot

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ferortega/cf4j-sub001/blobstore"
	"github.com/ferortega/cf4j-sub001/codec"
	"github.com/ferortega/cf4j-sub001/datamodel"
	"github.com/ferortega/cf4j-sub001/internal/cache"
	"github.com/ferortega/cf4j-sub001/knn"
	"github.com/ferortega/cf4j-sub001/metrics"
	"github.com/ferortega/cf4j-sub001/resource"
	"github.com/ferortega/cf4j-sub001/similarity"
	"github.com/ferortega/cf4j-sub001/testutil"
)

func fittedModel() *datamodel.DataModel {
	return testutil.NewRNG(7).RandomModel(40, 25, 0.3, 1, 5)
}

func fitted(t *testing.T) *knn.ItemKNN {
	t.Helper()

	rec, err := knn.NewItemKNN(fittedModel(), 5, similarity.NewJMSD())
	require.NoError(t, err)
	require.NoError(t, rec.Fit(context.Background()))
	return rec
}

// fittedTables computes the item tables of fitted directly.
func fittedTables(t *testing.T) (*similarity.Matrix, *knn.NeighborTable) {
	t.Helper()

	ctx := context.Background()
	m, err := similarity.Compute(ctx, datamodel.Items(fittedModel()), similarity.NewJMSD())
	require.NoError(t, err)
	table, err := knn.Neighbors(ctx, m, 5)
	require.NoError(t, err)
	return m, table
}

func TestWriteLoad(t *testing.T) {
	m, table := fittedTables(t)
	ctx := context.Background()

	stores := map[string]blobstore.BlobStore{
		"memory": blobstore.NewMemoryStore(),
		"local":  blobstore.NewLocalStore(t.TempDir()),
		"cached": blobstore.NewCachingStore(blobstore.NewMemoryStore(), cache.NewLRUBlockCache(1<<20, nil), 512),
	}

	for storeName, store := range stores {
		for _, c := range []Compression{CompressionNone, CompressionLZ4, CompressionZSTD} {
			for _, cd := range []codec.Codec{codec.JSON{}, codec.GoJSON{}} {
				t.Run(storeName+"/"+c.String()+"/"+cd.Name(), func(t *testing.T) {
					name := "items-jmsd-" + c.String() + "-" + cd.Name() + ".snap"
					require.NoError(t, Write(ctx, store, name, m, table, WithCompression(c), WithCodec(cd)))

					r, err := Open(ctx, store, name)
					require.NoError(t, err)
					defer r.Close()

					h := r.Header()
					assert.Equal(t, "jmsd", h.Metric)
					assert.Equal(t, "item", h.Side)
					assert.Equal(t, 25, h.Entities)
					assert.Equal(t, 5, h.K)
					assert.Equal(t, c.String(), h.Compression)
					assert.Equal(t, cd.Name(), r.Codec())
					assert.Equal(t, datamodel.ItemSide, r.Side())
					assert.Equal(t, 25, r.Len())

					row, err := r.Row(ctx, 3)
					require.NoError(t, err)
					assert.Equal(t, m.Row(3), row)

					loaded, err := r.Matrix(ctx)
					require.NoError(t, err)
					defer loaded.Release()
					for i := range m.Len() {
						require.Equal(t, m.Row(i), loaded.Row(i))
					}
					assert.Equal(t, "jmsd", loaded.Metric())
					assert.Equal(t, datamodel.ItemSide, loaded.Side())

					neighbors, err := r.Neighbors(ctx)
					require.NoError(t, err)
					assert.Equal(t, table.K(), neighbors.K())
					for i := range table.Len() {
						require.Equal(t, table.Row(i), neighbors.Row(i))
					}
				})
			}
		}
	}
}

func TestLoadRestoresRecommender(t *testing.T) {
	rec := fitted(t)
	ctx := context.Background()
	store := blobstore.NewMemoryStore()

	require.NoError(t, rec.WithTables(func(m *similarity.Matrix, table *knn.NeighborTable) error {
		return Write(ctx, store, "r.snap", m, table)
	}))

	rc := resource.NewController(resource.Config{})
	loaded, neighbors, err := Load(ctx, store, "r.snap", WithResourceController(rc), WithNumWorkers(3))
	require.NoError(t, err)
	assert.Equal(t, similarity.MatrixBytes(25), rc.MemoryUsage())

	restored, err := knn.NewItemKNN(fittedModel(), 5, similarity.NewJMSD())
	require.NoError(t, err)
	require.NoError(t, restored.Restore(loaded, neighbors))

	for u := range 40 {
		require.Equal(t, rec.Recommend(u, 3), restored.Recommend(u, 3))
	}

	require.NoError(t, restored.Close())
	assert.Equal(t, int64(0), rc.MemoryUsage())
}

func TestWriteMetrics(t *testing.T) {
	m, table := fittedTables(t)
	ctx := context.Background()
	store := blobstore.NewMemoryStore()
	collector := &metrics.Basic{}

	require.NoError(t, Write(ctx, store, "a.snap", m, table, WithMetricsCollector(collector)))
	r, err := Open(ctx, store, "a.snap", WithMetricsCollector(collector))
	require.NoError(t, err)
	_, err = r.Matrix(ctx)
	require.NoError(t, err)

	blob, err := store.Open(ctx, "a.snap")
	require.NoError(t, err)

	s := collector.Stats()
	assert.Equal(t, int64(3), s.SnapshotCount)
	assert.Zero(t, s.SnapshotErrors)
	assert.Greater(t, s.SnapshotBytes, blob.Size())
}

func TestWriteErrors(t *testing.T) {
	m, table := fittedTables(t)
	store := blobstore.NewMemoryStore()

	assert.Error(t, Write(context.Background(), store, "x", nil, table))

	other, err := knn.NewNeighborTable(3, 5)
	require.NoError(t, err)
	assert.Error(t, Write(context.Background(), store, "x", m, other))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, Write(ctx, store, "x", m, table), context.Canceled)

	// Nothing is published on failure.
	names, err := store.List(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestOpenErrors(t *testing.T) {
	m, table := fittedTables(t)
	ctx := context.Background()
	store := blobstore.NewMemoryStore()

	_, err := Open(ctx, store, "missing")
	assert.ErrorIs(t, err, blobstore.ErrNotFound)

	require.NoError(t, store.Put(ctx, "tiny", []byte("CF4")))
	_, err = Open(ctx, store, "tiny")
	assert.ErrorIs(t, err, ErrInvalidMagic)

	require.NoError(t, store.Put(ctx, "garbage", make([]byte, 64)))
	_, err = Open(ctx, store, "garbage")
	assert.ErrorIs(t, err, ErrInvalidMagic)

	require.NoError(t, Write(ctx, store, "good", m, table))
	blob, err := store.Open(ctx, "good")
	require.NoError(t, err)
	data, err := blob.(blobstore.Mappable).Bytes()
	require.NoError(t, err)

	truncated := data[:len(data)-3]
	require.NoError(t, store.Put(ctx, "truncated", truncated))
	_, err = Open(ctx, store, "truncated")
	assert.ErrorIs(t, err, ErrInvalidMagic)

	wrongVersion := append([]byte(nil), data...)
	wrongVersion[8] = 9
	require.NoError(t, store.Put(ctx, "version", wrongVersion))
	_, err = Open(ctx, store, "version")
	assert.ErrorIs(t, err, ErrInvalidVersion)

	// Damage the first row block's payload.
	r, err := Open(ctx, store, "good")
	require.NoError(t, err)
	first := r.offsets[0]
	require.NoError(t, r.Close())

	damaged := append([]byte(nil), data...)
	damaged[first+blockHeaderSize] ^= 0xff
	require.NoError(t, store.Put(ctx, "damaged", damaged))
	r, err = Open(ctx, store, "damaged")
	require.NoError(t, err)
	_, err = r.Row(ctx, 0)
	assert.ErrorIs(t, err, ErrCorrupt)
	_, err = r.Matrix(ctx)
	assert.ErrorIs(t, err, ErrCorrupt)
	_, err = r.Row(ctx, 1)
	assert.NoError(t, err)
	_, err = r.Row(ctx, 25)
	assert.Error(t, err)
}

func TestRateLimitedWrite(t *testing.T) {
	m, table := fittedTables(t)
	ctx := context.Background()
	store := blobstore.NewMemoryStore()

	rc := resource.NewController(resource.Config{IOLimitBytesPerSec: 1 << 30})
	require.NoError(t, Write(ctx, store, "limited", m, table, WithResourceController(rc)))

	r, err := Open(ctx, store, "limited", WithResourceController(rc))
	require.NoError(t, err)
	row, err := r.Row(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, m.Row(0), row)
}
