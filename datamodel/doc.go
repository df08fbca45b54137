// Package datamodel provides the immutable in-memory rating store consumed by
// the similarity, neighbor and prediction passes.
//
// A DataModel holds two symmetric sides: users and items. Each side is a dense
// array of Entities indexed 0..N-1. An Entity carries its ratings as a list of
// (counterpart index, rating) pairs sorted strictly ascending by counterpart
// index, so two entities can be compared with a single merge-join.
//
// # Building
//
//	b := datamodel.NewBuilder()
//	_ = b.AddRating("tim", "item0", 4)
//	_ = b.AddRating("kim", "item0", 4)
//	dm, err := b.Build()
//
// Dense indices are assigned in sorted id order, so the same input always
// yields the same indices.
//
// # Side views
//
// Users(dm) and Items(dm) expose one side as an EntitySet together with the
// opposite side, so every downstream pass is written once for both
// user-based and item-based processing.
package datamodel
