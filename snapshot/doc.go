// Package snapshot persists fitted recommender tables.
//
// A snapshot is one immutable blob holding a similarity matrix and its
// neighbor table. Each similarity row is an independently compressed and
// checksummed block, so Reader.Row can serve a single row from an object
// store with one ranged read:
//
//	err := rec.WithTables(func(m *similarity.Matrix, table *knn.NeighborTable) error {
//	    return snapshot.Write(ctx, store, "users-cosine.snap", m, table,
//	        snapshot.WithCompression(snapshot.CompressionZSTD))
//	})
//
//	m, table, err := snapshot.Load(ctx, store, "users-cosine.snap")
//	err = rec.Restore(m, table)
//
// The header is encoded with a codec.Codec whose name is stored in the
// preamble; readers pick the codec by that name.
package snapshot
