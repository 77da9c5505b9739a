package kettle

import (
	"fmt"
)

// Pipeline is the normalized model of one transformation or job document.
//
// The extractor builds it once; afterwards it is read-only apart from the
// per-step attribute caches.
type Pipeline struct {
	Kind        Kind
	Name        string
	Source      string // file path, or "" for documents loaded from text
	Hops        []Hop
	Connections []Connection

	steps     []*Step
	stepIndex map[string]int
}

// NewPipeline creates an empty pipeline of the given kind.
func NewPipeline(kind Kind, name, source string) *Pipeline {
	return &Pipeline{
		Kind:      kind,
		Name:      name,
		Source:    source,
		stepIndex: make(map[string]int),
	}
}

// AddStep registers a step. A later step with the same name replaces the
// earlier one but keeps its position.
func (p *Pipeline) AddStep(s *Step) {
	if p.stepIndex == nil {
		p.stepIndex = make(map[string]int)
	}
	if i, ok := p.stepIndex[s.Name()]; ok {
		p.steps[i] = s
		return
	}
	p.stepIndex[s.Name()] = len(p.steps)
	p.steps = append(p.steps, s)
}

// Steps returns the registered steps in order of first appearance.
func (p *Pipeline) Steps() []*Step {
	out := make([]*Step, len(p.steps))
	copy(out, p.steps)
	return out
}

// StepCount returns the number of uniquely named steps.
func (p *Pipeline) StepCount() int {
	return len(p.steps)
}

// Step looks up a step by name.
func (p *Pipeline) Step(name string) (*Step, bool) {
	i, ok := p.stepIndex[name]
	if !ok {
		return nil, false
	}
	return p.steps[i], true
}

// StepAttribute fetches an attribute of a named step on demand.
func (p *Pipeline) StepAttribute(stepName, attribute string) (string, error) {
	s, ok := p.Step(stepName)
	if !ok {
		return "", fmt.Errorf("step %q not found in %s %q: %w", stepName, p.Kind, p.Name, ErrValidation)
	}
	return s.Attribute(attribute)
}

// EnabledHops returns the hops that participate in the execution graph.
func (p *Pipeline) EnabledHops() []Hop {
	return p.filterHops(func(h Hop) bool { return h.Enabled })
}

// DisabledHops returns the hops retained in the model but excluded from the graph.
func (p *Pipeline) DisabledHops() []Hop {
	return p.filterHops(func(h Hop) bool { return !h.Enabled })
}

// ErrorHops returns the hops that carry error output of their source step.
func (p *Pipeline) ErrorHops() []Hop {
	return p.filterHops(func(h Hop) bool { return h.IsErrorRoute })
}

// EnabledSteps returns the registered steps touched by at least one enabled hop.
func (p *Pipeline) EnabledSteps() []*Step {
	return p.stepsTouchedBy(p.EnabledHops())
}

// DisabledSteps returns the registered steps touched by at least one disabled hop.
func (p *Pipeline) DisabledSteps() []*Step {
	return p.stepsTouchedBy(p.DisabledHops())
}

func (p *Pipeline) filterHops(keep func(Hop) bool) []Hop {
	var out []Hop
	for _, h := range p.Hops {
		if keep(h) {
			out = append(out, h)
		}
	}
	return out
}

func (p *Pipeline) stepsTouchedBy(hops []Hop) []*Step {
	names := make(map[string]struct{}, len(hops)*2)
	for _, h := range hops {
		names[h.From] = struct{}{}
		names[h.To] = struct{}{}
	}
	var out []*Step
	for _, s := range p.steps {
		if _, ok := names[s.Name()]; ok {
			out = append(out, s)
		}
	}
	return out
}
