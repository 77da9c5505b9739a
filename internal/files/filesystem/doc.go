// Package filesystem abstracts the file access kettlegraph needs: stat and
// read a single pipeline file, and walk a directory tree of them.
//
// Implementations:
//   - OSFileSystem: the operating system filesystem
//   - MemoryFileSystem: an in-memory tree for tests
//
// Both report missing paths with errors that satisfy errors.Is(err, fs.ErrNotExist).
package filesystem
