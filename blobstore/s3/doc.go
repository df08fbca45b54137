// Package s3 stores snapshots in Amazon S3 or an S3-compatible endpoint.
//
// # Usage
//
//	store, err := s3.New(ctx, "my-bucket",
//	    s3.WithPrefix("cf4j/"),
//	    s3.WithRegion("eu-west-1"),
//	)
//
//	err = snapshot.Write(ctx, store, "users-cosine.snap", matrix, table)
//
// Reads use ranged GETs, so opening a snapshot and reading one similarity
// row costs a HEAD plus one GET per block. Writes stream through the SDK's
// multipart upload manager.
package s3
