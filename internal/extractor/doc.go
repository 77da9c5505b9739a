// Package extractor walks a parsed Kettle document once and builds the
// normalized kettle.Pipeline model.
//
// The root tag selects one entry of an immutable variant table; every tag
// name and flag encoding used afterwards comes from that entry. Implicit
// walks (steps, error rules, connections) skip elements they cannot read.
// Explicit reads (document name, hop fields, step attributes) fail with
// kettle.ErrValidation.
package extractor
