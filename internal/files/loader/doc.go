// Package loader turns a pipeline file path or a raw XML text into a parsed
// element tree.
//
// File mode checks run before any byte is read: a missing path (or a path
// that is not a regular file) fails with kettle.ErrNotFound, and a path
// whose extension is not exactly ".ktr" or ".kjb" fails with
// kettle.ErrValidation. Malformed markup, in either mode, fails with
// kettle.ErrParse. Failures never carry a partial tree.
//
// Files are read through a filesystem.FileSystemProvider so tests can use
// an in-memory tree.
package loader
