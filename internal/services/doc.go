// Package services composes the loader, the extractor and the path graph
// into the operations the CLI and the scanner call.
package services
