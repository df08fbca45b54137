// Package similarity computes pairwise similarities between the entities of
// one side of a rating store.
//
// Every metric shares one skeleton: a merge-join over both entities' sorted
// rating lists feeds the common counterparts to a metric-specific
// accumulator. Pairs without common counterparts, and pairs whose
// accumulator has a zero denominator, yield Undefined (negative infinity)
// instead of NaN or an infinity.
//
// # Metrics
//
//   - Cosine, PearsonCorrelation, ConstrainedPearsonCorrelation,
//     AdjustedCosine, SpearmanRank
//   - Jaccard, MSD, JMSD, CJMSD
//   - PIP (raw, unnormalized sum)
//   - Singularities (needs Prepare)
//
// Metrics that depend on the rating scale or on counterpart statistics
// implement Preparer and must be prepared before use. Compute prepares them
// on the coordinating goroutine before any row is computed.
//
// CJMSD is directional: row a of a matrix holds Similarity(a, b) for every b,
// and Similarity(a, b) may differ from Similarity(b, a).
package similarity
