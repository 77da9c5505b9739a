package kettle

// Exit codes for semantic error classification.
// These follow Unix/GNU conventions:
//   - 0: Success
//   - 1: General error
//   - 2: CLI usage error (misuse of command line)
//   - 3+: Application-specific errors
const (
	ExitSuccess         = 0  // Command completed successfully
	ExitGeneralError    = 1  // Unknown or unclassified error
	ExitUsageError      = 2  // CLI usage error (missing args, invalid flags)
	ExitPanic           = 3  // Internal panic (unexpected crash)
	ExitConfigError     = 10 // Invalid configuration
	ExitNotFound        = 11 // Pipeline file does not exist
	ExitValidationError = 12 // Wrong extension, unknown root tag, bad flag value, missing attribute
	ExitParseError      = 13 // Pipeline file is not well-formed XML
	ExitCatalogError    = 14 // Lineage catalog could not be written
)

// Recognized pipeline file extensions. Matching is exact and case-sensitive.
const (
	TransformationExtension = ".ktr"
	JobExtension            = ".kjb"
)

// StdinSource is the file argument that makes the CLI read raw XML from stdin.
const StdinSource = "-"

// IsPipelineExtension reports whether ext is one of the recognized extensions.
func IsPipelineExtension(ext string) bool {
	return ext == TransformationExtension || ext == JobExtension
}

const (
	// DefaultCatalogSchema is the PostgreSQL schema the lineage catalog writes to.
	DefaultCatalogSchema = "kettle"

	// DefaultOutputFormat is used when neither flags, environment nor
	// kettlegraph.yaml choose one.
	DefaultOutputFormat = "text"
)
