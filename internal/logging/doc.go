// Package logging holds the kettle.Logger implementations used by the CLI
// and tests.
//
// ConsoleLogger writes "[VERBOSE]" and "[ERROR]" prefixed lines to an
// injected writer, usually the command's stderr, and only emits verbose
// lines when asked to. NullLogger drops everything.
//
// Both are safe for concurrent use.
package logging
