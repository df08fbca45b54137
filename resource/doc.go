// Package resource bounds the resources used by similarity and neighbor
// passes: how many passes run at once, how much memory similarity matrices
// may hold, and how fast snapshots are read from and written to blob stores.
//
// A nil *Controller is valid and imposes no limits.
package resource
