package services

import (
	"github.com/vvka-141/kettlegraph/internal/extractor"
	"github.com/vvka-141/kettlegraph/internal/files/loader"
	"github.com/vvka-141/kettlegraph/internal/pathgraph"
	"github.com/vvka-141/kettlegraph/pkg/kettle"
)

// Inspector loads pipeline documents and builds their models.
// It is safe for concurrent use; every call builds an independent model.
type Inspector struct {
	loader *loader.Loader
	logger kettle.Logger
}

// NewInspector creates an Inspector.
// Panics on nil dependencies.
func NewInspector(l *loader.Loader, logger kettle.Logger) *Inspector {
	if l == nil {
		panic("loader cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}
	return &Inspector{loader: l, logger: logger}
}

// Parse loads source as a file path when fromFile is set, otherwise as raw
// XML text, and extracts its model. No partial model is returned on failure.
func (i *Inspector) Parse(source string, fromFile bool) (*kettle.Pipeline, error) {
	if fromFile {
		i.logger.Verbose("Loading %s", source)
	} else {
		i.logger.Verbose("Loading document from text (%d bytes)", len(source))
	}

	doc, err := i.loader.Load(source, fromFile)
	if err != nil {
		return nil, err
	}

	name := ""
	if fromFile {
		name = source
	}
	return extractor.Extract(doc, name, extractor.WithLogger(i.logger))
}

// ParseFile implements kettle.Parser.
func (i *Inspector) ParseFile(path string) (*kettle.Pipeline, error) {
	return i.Parse(path, true)
}

// ParseText implements kettle.Parser.
func (i *Inspector) ParseText(text string) (*kettle.Pipeline, error) {
	return i.Parse(text, false)
}

// Graph builds the execution graph of p from its enabled hops.
func (i *Inspector) Graph(p *kettle.Pipeline) pathgraph.Graph {
	g := pathgraph.Build(p.Hops)
	i.logger.Verbose("Graph of %q: %d source steps", p.Name, len(g))
	return g
}

var _ kettle.Parser = (*Inspector)(nil)
