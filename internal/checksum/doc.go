// Package checksum fingerprints pipeline documents.
//
// Two fingerprints are computed per file:
//
//   - Raw checksum: hash of the exact file bytes (detects every change)
//   - Normalized checksum: hash after dropping XML comments and insignificant
//     whitespace (stable across re-indentation and editor reformatting)
//
// # Normalization Strategy
//
//  1. Remove XML comments (<!-- ... -->); CDATA sections are kept verbatim
//  2. Drop whitespace between a closing '>' and the next '<'
//  3. Collapse remaining whitespace runs to a single space
//  4. Trim leading/trailing whitespace
//
// Case is preserved: XML tag names and the Y/N flag values are case-sensitive.
//
// # Example Usage
//
//	calculator := checksum.New()
//	raw := calculator.CalculateRaw(content)
//	normalized := calculator.CalculateNormalized(content)
//
// SHA256 is safe for concurrent use by multiple goroutines.
package checksum
