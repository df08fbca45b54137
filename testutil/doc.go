// Package testutil provides testing utilities for cf4j.
//
// This package is intended for use in tests and benchmarks only.
// It provides a seeded random source, the small reference rating table used
// throughout the test suites, random sparse data models and a brute-force
// top-k used as ground truth.
//
// # Data Models
//
//	dm := testutil.ReferenceModel()           // Tim, Kim, Laurie, Mike
//	rng := testutil.NewRNG(seed)
//	dm = rng.RandomModel(200, 150, 0.05, 1, 5) // users, items, density, scale
//
// # Exact Top-K (Ground Truth)
//
//	idx := testutil.ExactTopK(scores, k)
package testutil
