// Package fs abstracts the file operations of blob writers so tests can
// inject I/O faults.
//
// Production code uses Default ([LocalFS]). Tests wrap it:
//
//	ffs := fs.NewFaultyFS(nil)
//	ffs.AddRule(".tmp-", fs.Fault{FailAfterBytes: 1024})
//
// Reads are served through memory maps and do not go through this package.
package fs
