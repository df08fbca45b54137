// Package cf4j provides parallel KNN collaborative filtering.
//
// A Recommender binds a rating data model to a user-based or item-based KNN
// model. Fit runs a similarity pass and a neighbor pass over a fixed pool
// of worker goroutines; predictions are then computed lazily from the k most
// similar neighbors.
//
// # Quick Start
//
// From a configuration file:
//
//	cfg, _ := config.Load("cf4j.yaml")
//	dm, _ := cf4j.LoadRatings("ratings.csv", cfg.Ratings)
//	rec, _ := cf4j.New(dm, cfg)
//	defer rec.Close()
//	if err := rec.Fit(ctx); err != nil { ... }
//	recs, _ := rec.RecommendID("u42", 10)
//
// With the fluent builder:
//
//	rec, err := cf4j.UserBased(dm).
//	    Metric("jmsd").
//	    K(50).
//	    Aggregation(knn.DeviationFromMean).
//	    Workers(8).
//	    Build()
//
// # Sentinels
//
// Missing information is a value, not an error: Predict returns NaN when no
// neighbor rated the target, similarity rows hold similarity.Undefined for
// pairs without overlap, and neighbor rows are padded with knn.NotFound.
//
// # Snapshots
//
// Fitted tables can be saved to and restored from a blob store (local
// directory, memory, S3 or MinIO) so that serving processes skip Fit:
//
//	if err := rec.SaveSnapshot(ctx); err != nil { ... }
//	// elsewhere
//	if err := rec.LoadSnapshot(ctx); err != nil { ... }
package cf4j
