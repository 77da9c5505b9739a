package kettle

import (
	"errors"
	"strings"
)

// Sentinel errors for the failure classes of loading and extracting a pipeline.
// Every error returned by the loader and extractor wraps exactly one of them,
// so callers can branch with errors.Is().
//
// Example usage:
//
//	p, err := inspector.ParseFile("load_sales.ktr")
//	if errors.Is(err, kettle.ErrNotFound) {
//	    // Handle missing file
//	}
var (
	// ErrNotFound indicates the referenced pipeline file does not exist.
	ErrNotFound = errors.New("not found")

	// ErrValidation indicates a wrong file extension, an unrecognized root tag,
	// an enable-field value outside its two-valued encoding, or an explicitly
	// requested attribute that is missing.
	ErrValidation = errors.New("validation failed")

	// ErrParse indicates the underlying markup is not well-formed.
	ErrParse = errors.New("parse failed")

	// ErrInvalidConfig indicates kettlegraph.yaml or its overrides are invalid.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrCatalog indicates the lineage catalog could not be written.
	ErrCatalog = errors.New("catalog write failed")
)

// usageErrorPatterns are the message prefixes cobra and pflag produce for
// command line misuse.
var usageErrorPatterns = []string{
	"unknown flag",
	"unknown shorthand flag",
	"unknown command",
	"accepts ",
	"requires at least",
	"requires at most",
	"required flag",
	"invalid argument",
	"missing required argument",
	"flag needs an argument",
	"if any flags in the group",
}

// ExitCodeForError returns the appropriate exit code for an error.
// Returns ExitSuccess (0) for nil errors, semantic codes for known errors,
// and ExitGeneralError (1) for unclassified errors.
func ExitCodeForError(err error) int {
	if err == nil {
		return ExitSuccess
	}

	switch {
	case errors.Is(err, ErrInvalidConfig):
		return ExitConfigError
	case errors.Is(err, ErrNotFound):
		return ExitNotFound
	case errors.Is(err, ErrValidation):
		return ExitValidationError
	case errors.Is(err, ErrParse):
		return ExitParseError
	case errors.Is(err, ErrCatalog):
		return ExitCatalogError
	}

	errStr := err.Error()
	for _, pattern := range usageErrorPatterns {
		if strings.HasPrefix(errStr, pattern) {
			return ExitUsageError
		}
	}

	return ExitGeneralError
}
