package kettle

import (
	"fmt"
	"sync"
)

// Kind is the schema variant of a pipeline document, decided once from its root tag.
type Kind int

const (
	// KindTransformation is a data-transform document (.ktr, root <transformation>).
	KindTransformation Kind = iota + 1
	// KindJob is a job-orchestration document (.kjb, root <job>).
	KindJob
)

// String returns the root tag that selects the kind.
func (k Kind) String() string {
	switch k {
	case KindTransformation:
		return "transformation"
	case KindJob:
		return "job"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// MarshalText renders the kind for JSON and YAML output.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// ParseKind maps a root tag to its Kind.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "transformation":
		return KindTransformation, nil
	case "job":
		return KindJob, nil
	}
	return 0, fmt.Errorf("unrecognized document kind %q: %w", s, ErrValidation)
}

// AttributeLookup reads a named child value of a step element on demand.
// It reports false when the step has no such child.
type AttributeLookup interface {
	Lookup(tag string) (string, bool)
}

// Step is a named processing unit: a <step> of a transformation or an <entry> of a job.
//
// Name and type are read eagerly during extraction. Every other attribute is
// fetched from the document the first time it is asked for and cached; the
// cache only grows. Step is safe for concurrent use.
type Step struct {
	name     string
	stepType string
	lookup   AttributeLookup

	mu    sync.Mutex
	cache map[string]string
}

// NewStep creates a step. lookup may be nil, in which case only name and a
// non-empty type resolve. An empty stepType is not cached, so Attribute("type")
// asks lookup and fails when the element has no <type> child.
func NewStep(name, stepType string, lookup AttributeLookup) *Step {
	cache := map[string]string{"name": name}
	if stepType != "" {
		cache["type"] = stepType
	}
	return &Step{
		name:     name,
		stepType: stepType,
		lookup:   lookup,
		cache:    cache,
	}
}

// Name returns the step name, the primary key within a document.
func (s *Step) Name() string { return s.name }

// Type returns the step implementation class name (e.g. TextFileInput, TRANS).
func (s *Step) Type() string { return s.stepType }

// Attribute returns the text of the step's child element named tag.
// A missing attribute is an ErrValidation naming both the step and the tag.
func (s *Step) Attribute(tag string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if v, ok := s.cache[tag]; ok {
		return v, nil
	}
	if s.lookup != nil {
		if v, ok := s.lookup.Lookup(tag); ok {
			s.cache[tag] = v
			return v, nil
		}
	}
	return "", fmt.Errorf("step %q has no attribute %q: %w", s.name, tag, ErrValidation)
}

// Hop is a directed edge between two steps, in document order.
// From and To are kept exactly as written; they need not name an existing step.
type Hop struct {
	From         string `json:"from" yaml:"from"`
	To           string `json:"to" yaml:"to"`
	Enabled      bool   `json:"enabled" yaml:"enabled"`
	IsErrorRoute bool   `json:"error" yaml:"error"`
}

// String renders the hop as "from -> to".
func (h Hop) String() string {
	return h.From + " -> " + h.To
}

// Connection is an external resource descriptor declared by a transformation.
type Connection struct {
	Name     string `json:"name" yaml:"name"`
	Server   string `json:"server" yaml:"server"`
	Type     string `json:"type" yaml:"type"`
	Access   string `json:"access" yaml:"access"`
	Database string `json:"database" yaml:"database"`
	Username string `json:"username" yaml:"username"`
}

// FileSummary describes one pipeline file found by a directory scan.
// Err is set, and the model fields are zero, when the file failed to load.
type FileSummary struct {
	Path        string
	Kind        Kind
	Name        string
	Steps       int
	Hops        int
	EnabledHops int
	Connections int
	Checksum    string
	Err         error
}

// ScanResult is the outcome of scanning a directory tree for pipeline files.
type ScanResult struct {
	Root  string
	Files []FileSummary
}

// Failed returns the number of files that could not be loaded.
func (r ScanResult) Failed() int {
	n := 0
	for _, f := range r.Files {
		if f.Err != nil {
			n++
		}
	}
	return n
}
