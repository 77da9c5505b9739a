package extractor

import (
	"fmt"

	"github.com/beevik/etree"

	"github.com/vvka-141/kettlegraph/internal/logging"
	"github.com/vvka-141/kettlegraph/pkg/kettle"
)

// Option configures Extract.
type Option func(*extractor)

// WithLogger reports skipped elements at verbose level.
func WithLogger(logger kettle.Logger) Option {
	return func(e *extractor) {
		if logger != nil {
			e.logger = logger
		}
	}
}

type extractor struct {
	v      variant
	root   *etree.Element
	source string
	logger kettle.Logger

	// errorRoutes holds enabled, resolved (source, target) error rules.
	errorRoutes map[[2]string]struct{}
}

// Extract builds the pipeline model of doc. source is the file the document
// came from, or "" for text input; it is used for the model and for errors.
// On failure no partial model is returned.
func Extract(doc *etree.Document, source string, opts ...Option) (*kettle.Pipeline, error) {
	root := doc.Root()
	if root == nil {
		return nil, &kettle.DocumentError{
			Err:     kettle.ErrParse,
			Source:  source,
			Message: "document has no root element",
		}
	}

	v, ok := variantFor(root.Tag)
	if !ok {
		return nil, &kettle.DocumentError{
			Err:     kettle.ErrValidation,
			Source:  source,
			Tag:     root.Tag,
			Message: fmt.Sprintf("unrecognized document kind %q", root.Tag),
			Hint:    "The root element must be <transformation> or <job>.",
		}
	}

	e := &extractor{
		v:           v,
		root:        root,
		source:      source,
		logger:      logging.NewNullLogger(),
		errorRoutes: make(map[[2]string]struct{}),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e.run()
}

func (e *extractor) run() (*kettle.Pipeline, error) {
	name, err := e.documentName()
	if err != nil {
		return nil, err
	}
	p := kettle.NewPipeline(e.v.kind, name, e.source)

	e.extractSteps(p)
	if err := e.extractErrorRules(p); err != nil {
		return nil, err
	}
	if err := e.extractHops(p); err != nil {
		return nil, err
	}
	e.extractConnections(p)

	e.logger.Verbose("Extracted %s %q: %d steps, %d hops, %d connections",
		p.Kind, p.Name, p.StepCount(), len(p.Hops), len(p.Connections))
	return p, nil
}

func (e *extractor) documentName() (string, error) {
	el := e.root.FindElement(e.v.namePath)
	if el == nil {
		return "", &kettle.DocumentError{
			Err:     kettle.ErrValidation,
			Source:  e.source,
			Tag:     e.v.namePath,
			Message: fmt.Sprintf("%s has no name", e.v.kind),
		}
	}
	return el.Text(), nil
}

func (e *extractor) extractSteps(p *kettle.Pipeline) {
	for _, el := range e.root.FindElements(".//" + e.v.stepTag) {
		name, ok := lookupText(el, "name")
		if !ok {
			e.logger.Verbose("Skipping <%s> without a <name> child", e.v.stepTag)
			continue
		}
		stepType, _ := lookupText(el, "type")
		p.AddStep(kettle.NewStep(name, stepType, elementLookup{el: el}))
	}
}

func (e *extractor) extractErrorRules(p *kettle.Pipeline) error {
	if e.v.errorRulePath == "" {
		return nil
	}
	for _, el := range e.root.FindElements(e.v.errorRulePath) {
		source, okSource := lookupText(el, "source_step")
		target, okTarget := lookupText(el, "target_step")
		flag, okFlag := lookupText(el, "is_enabled")
		if !okSource || !okTarget || !okFlag {
			e.logger.Verbose("Skipping incomplete error rule %s -> %s", source, target)
			continue
		}

		enabled, err := errorRuleEncoding.decode(flag)
		if err != nil {
			return e.flagError(el, "is_enabled", source, err)
		}
		if !enabled {
			continue
		}

		_, sourceKnown := p.Step(source)
		_, targetKnown := p.Step(target)
		if !sourceKnown || !targetKnown {
			e.logger.Verbose("Dropping error rule %s -> %s: unknown step", source, target)
			continue
		}
		e.errorRoutes[[2]string{source, target}] = struct{}{}
	}
	return nil
}

func (e *extractor) extractHops(p *kettle.Pipeline) error {
	container := e.root.SelectElement(e.v.hopContainer)
	if container == nil {
		return nil
	}

	for _, el := range container.SelectElements(e.v.hopTag) {
		from, err := e.requireText(el, "from", "")
		if err != nil {
			return err
		}
		to, err := e.requireText(el, "to", "")
		if err != nil {
			return err
		}
		flag, err := e.requireText(el, "enabled", from)
		if err != nil {
			return err
		}
		enabled, err := enabledEncoding.decode(flag)
		if err != nil {
			return e.flagError(el, "enabled", from, err)
		}

		isErrorRoute, err := e.errorRoute(el, from, to)
		if err != nil {
			return err
		}

		p.Hops = append(p.Hops, kettle.Hop{
			From:         from,
			To:           to,
			Enabled:      enabled,
			IsErrorRoute: isErrorRoute,
		})
	}
	return nil
}

func (e *extractor) errorRoute(el *etree.Element, from, to string) (bool, error) {
	if e.v.errorRouteFrom == "" {
		_, ok := e.errorRoutes[[2]string{from, to}]
		return ok, nil
	}

	flag, err := e.requireText(el, e.v.errorRouteFrom, from)
	if err != nil {
		return false, err
	}
	isErrorRoute, err := evaluationEncoding.decode(flag)
	if err != nil {
		return false, e.flagError(el, e.v.errorRouteFrom, from, err)
	}
	return isErrorRoute, nil
}

var connectionFields = [...]string{"name", "server", "type", "access", "database", "username"}

func (e *extractor) extractConnections(p *kettle.Pipeline) {
	if e.v.connectionTag == "" {
		return
	}
	for _, el := range e.root.SelectElements(e.v.connectionTag) {
		var values [len(connectionFields)]string
		complete := true
		for i, field := range connectionFields {
			v, ok := lookupText(el, field)
			if !ok {
				e.logger.Verbose("Skipping connection %q: no <%s> child", values[0], field)
				complete = false
				break
			}
			values[i] = v
		}
		if !complete {
			continue
		}
		p.Connections = append(p.Connections, kettle.Connection{
			Name:     values[0],
			Server:   values[1],
			Type:     values[2],
			Access:   values[3],
			Database: values[4],
			Username: values[5],
		})
	}
}

// requireText reads a direct child that must exist.
func (e *extractor) requireText(el *etree.Element, tag, step string) (string, error) {
	if v, ok := lookupText(el, tag); ok {
		return v, nil
	}
	return "", &kettle.DocumentError{
		Err:     kettle.ErrValidation,
		Source:  e.source,
		Tag:     tag,
		Step:    step,
		Message: fmt.Sprintf("<%s> is missing <%s>", el.Tag, tag),
	}
}

func (e *extractor) flagError(el *etree.Element, tag, step string, cause error) error {
	return &kettle.DocumentError{
		Err:     kettle.ErrValidation,
		Source:  e.source,
		Tag:     tag,
		Step:    step,
		Message: "invalid flag " + cause.Error(),
		Hint:    "Flag values are case-sensitive.",
	}
}

// lookupText reads a direct child and reports whether it exists.
func lookupText(el *etree.Element, tag string) (string, bool) {
	child := el.SelectElement(tag)
	if child == nil {
		return "", false
	}
	return child.Text(), true
}

// elementLookup serves step attributes from the step's element on demand.
// tag may be a child name or a relative path such as "file/name".
type elementLookup struct {
	el *etree.Element
}

func (l elementLookup) Lookup(tag string) (string, bool) {
	path, err := etree.CompilePath(tag)
	if err != nil {
		return "", false
	}
	child := l.el.FindElementPath(path)
	if child == nil {
		return "", false
	}
	return child.Text(), true
}

var _ kettle.AttributeLookup = elementLookup{}
