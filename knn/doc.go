// Package knn implements neighbor selection and the user-based and
// item-based KNN recommenders.
//
// Fit runs two partitioned passes: a similarity pass that fills a
// similarity.Matrix and a neighbor pass that keeps, for every entity, the k
// most similar other entities. Predict then aggregates the neighbors'
// ratings lazily.
//
// # Sentinels
//
// Missing information flows as values, not errors: Undefined similarities are
// never selected as neighbors, neighbor rows are right-padded with -1, and
// Predict returns NaN when no neighbor rated the target.
//
// # Top-k order
//
// TopK orders by descending score and breaks ties by ascending index, so the
// result does not depend on scan order or on the number of workers.
//
//	rec, _ := knn.NewUserKNN(dm, 20, similarity.Cosine{}, knn.WithAggregation(knn.DeviationFromMean))
//	if err := rec.Fit(ctx); err != nil { ... }
//	score := rec.Predict(user, item)
package knn
