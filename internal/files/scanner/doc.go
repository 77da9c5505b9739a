// Package scanner discovers Kettle pipeline files (.ktr, .kjb) in a
// directory tree and summarizes each one.
//
// A file that fails to load is reported in its FileSummary.Err and does not
// stop the scan. The scanner is filesystem-agnostic through
// filesystem.FileSystemProvider, so tests run against an in-memory tree.
package scanner
