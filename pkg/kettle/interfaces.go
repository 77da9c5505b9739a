package kettle

// Logger provides a pluggable logging interface for kettlegraph operations.
// Implementations must be safe for concurrent use by multiple goroutines.
type Logger interface {
	// Verbose logs detailed diagnostic information.
	// Only logged when verbose mode is enabled.
	Verbose(format string, args ...interface{})

	// Info logs informational messages about normal operations.
	Info(format string, args ...interface{})

	// Error logs error messages.
	Error(format string, args ...interface{})
}

// Parser loads a pipeline document and extracts its model.
type Parser interface {
	// ParseFile validates, loads and extracts the file at path.
	ParseFile(path string) (*Pipeline, error)

	// ParseText loads and extracts raw XML text.
	ParseText(text string) (*Pipeline, error)
}

// FileScanner discovers and summarizes pipeline files under a directory.
type FileScanner interface {
	ScanDirectory(root string) (ScanResult, error)
}
