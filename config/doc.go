// Package config loads cf4j settings from layered sources.
//
// Values are resolved in order of increasing priority:
//
//  1. Defaults returned by Default
//  2. An optional YAML file
//  3. Environment variables with the CF4J_ prefix
//
// Environment names are the upper-cased key paths with dots replaced by
// underscores, for example CF4J_RECOMMENDER_K or CF4J_SNAPSHOT_S3_BUCKET.
//
// Example config.yaml:
//
//	recommender:
//	  side: user
//	  metric: jmsd
//	  k: 50
//	  aggregation: deviation-from-mean
//	resources:
//	  memory_limit_bytes: 1073741824
//	logging:
//	  level: debug
//	  format: json
//	snapshot:
//	  backend: s3
//	  compression: zstd
//	  s3:
//	    bucket: cf4j-snapshots
//	    region: eu-west-1
package config
