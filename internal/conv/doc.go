// Package conv provides checked integer conversions.
//
// The snapshot format stores lengths and offsets as fixed-width integers.
// These helpers reject values that do not fit instead of truncating them,
// so oversized inputs fail on write and damaged offsets fail on read.
package conv
