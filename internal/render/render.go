package render

import (
	"fmt"
	"io"
	"iter"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/vvka-141/kettlegraph/internal/pathgraph"
	"github.com/vvka-141/kettlegraph/pkg/kettle"
)

// Format selects the output encoding.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat validates an output format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatText, FormatJSON, FormatYAML:
		return f, nil
	}
	return "", fmt.Errorf("unknown output format %q (want text, json or yaml): %w", s, kettle.ErrInvalidConfig)
}

// Renderer writes to one writer in one format.
type Renderer struct {
	w      io.Writer
	format Format
}

// New creates a Renderer.
func New(w io.Writer, format Format) *Renderer {
	return &Renderer{w: w, format: format}
}

type pipelineView struct {
	ID           uuid.UUID           `json:"id" yaml:"id"`
	Kind         kettle.Kind         `json:"kind" yaml:"kind"`
	Name         string              `json:"name" yaml:"name"`
	Source       string              `json:"source,omitempty" yaml:"source,omitempty"`
	Steps        int                 `json:"steps" yaml:"steps"`
	Hops         int                 `json:"hops" yaml:"hops"`
	EnabledHops  int                 `json:"enabled_hops" yaml:"enabled_hops"`
	DisabledHops int                 `json:"disabled_hops" yaml:"disabled_hops"`
	ErrorHops    int                 `json:"error_hops" yaml:"error_hops"`
	Connections  []kettle.Connection `json:"connections" yaml:"connections"`
}

type stepView struct {
	ID   uuid.UUID `json:"id" yaml:"id"`
	Name string    `json:"name" yaml:"name"`
	Type string    `json:"type" yaml:"type"`
}

type attributeView struct {
	Step      string `json:"step" yaml:"step"`
	Attribute string `json:"attribute" yaml:"attribute"`
	Value     string `json:"value" yaml:"value"`
}

type scanView struct {
	Path        string `json:"path" yaml:"path"`
	Kind        string `json:"kind,omitempty" yaml:"kind,omitempty"`
	Name        string `json:"name,omitempty" yaml:"name,omitempty"`
	Steps       int    `json:"steps" yaml:"steps"`
	Hops        int    `json:"hops" yaml:"hops"`
	EnabledHops int    `json:"enabled_hops" yaml:"enabled_hops"`
	Connections int    `json:"connections" yaml:"connections"`
	Checksum    string `json:"checksum,omitempty" yaml:"checksum,omitempty"`
	Error       string `json:"error,omitempty" yaml:"error,omitempty"`
}

// Pipeline writes a summary of p.
func (r *Renderer) Pipeline(p *kettle.Pipeline) error {
	view := pipelineView{
		ID:           p.ID(),
		Kind:         p.Kind,
		Name:         p.Name,
		Source:       p.Source,
		Steps:        p.StepCount(),
		Hops:         len(p.Hops),
		EnabledHops:  len(p.EnabledHops()),
		DisabledHops: len(p.DisabledHops()),
		ErrorHops:    len(p.ErrorHops()),
		Connections:  p.Connections,
	}
	if view.Connections == nil {
		view.Connections = []kettle.Connection{}
	}
	if r.format == FormatText {
		return r.writeString(pipelineText(view))
	}
	return r.encode(view)
}

// Steps writes the given steps of p.
func (r *Renderer) Steps(p *kettle.Pipeline, steps []*kettle.Step) error {
	views := make([]stepView, 0, len(steps))
	for _, s := range steps {
		views = append(views, stepView{ID: p.StepID(s.Name()), Name: s.Name(), Type: s.Type()})
	}
	if r.format == FormatText {
		return r.writeString(stepsText(views))
	}
	return r.encode(views)
}

// Hops writes hops in the given order.
func (r *Renderer) Hops(hops []kettle.Hop) error {
	if hops == nil {
		hops = []kettle.Hop{}
	}
	if r.format == FormatText {
		return r.writeString(hopsText(hops))
	}
	return r.encode(hops)
}

// Attribute writes one step attribute. Text output is the bare value.
func (r *Renderer) Attribute(step, attribute, value string) error {
	if r.format == FormatText {
		return r.writeString(value + "\n")
	}
	return r.encode(attributeView{Step: step, Attribute: attribute, Value: value})
}

// Graph writes the adjacency list with sources in sorted order.
func (r *Renderer) Graph(g pathgraph.Graph) error {
	if r.format == FormatText {
		return r.writeString(graphText(g))
	}
	if g == nil {
		g = pathgraph.Graph{}
	}
	return r.encode(map[string][]string(g))
}

// Paths consumes paths from seq and writes them. A positive limit stops
// consumption once limit paths are written, before the next one is searched
// for. Text output is streamed one path per line. It returns the number of
// paths written.
func (r *Renderer) Paths(seq iter.Seq[[]string], limit int) (int, error) {
	collected := [][]string{}
	n := 0
	for path := range seq {
		n++
		if r.format == FormatText {
			if err := r.writeString(pathText(path) + "\n"); err != nil {
				return n, err
			}
		} else {
			collected = append(collected, path)
		}
		if limit > 0 && n >= limit {
			break
		}
	}
	if r.format == FormatText {
		return n, nil
	}
	return n, r.encode(collected)
}

// Scan writes a scan result.
func (r *Renderer) Scan(result kettle.ScanResult) error {
	views := make([]scanView, 0, len(result.Files))
	for _, f := range result.Files {
		v := scanView{
			Path:        f.Path,
			Name:        f.Name,
			Steps:       f.Steps,
			Hops:        f.Hops,
			EnabledHops: f.EnabledHops,
			Connections: f.Connections,
			Checksum:    f.Checksum,
		}
		if f.Kind != 0 {
			v.Kind = f.Kind.String()
		}
		if f.Err != nil {
			v.Error = f.Err.Error()
		}
		views = append(views, v)
	}
	if r.format == FormatText {
		return r.writeString(scanText(views, result.Failed()))
	}
	return r.encode(views)
}

func (r *Renderer) encode(v interface{}) error {
	switch r.format {
	case FormatJSON:
		enc := json.NewEncoder(r.w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("failed to encode JSON: %w", err)
		}
		return nil
	case FormatYAML:
		enc := yaml.NewEncoder(r.w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("failed to encode YAML: %w", err)
		}
		return enc.Close()
	}
	return fmt.Errorf("format %q cannot encode values", r.format)
}

func (r *Renderer) writeString(s string) error {
	_, err := io.WriteString(r.w, s)
	return err
}
