package kettle_test

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vvka-141/kettlegraph/pkg/kettle"
)

// countingLookup serves attributes from a map and counts every read.
type countingLookup struct {
	attrs map[string]string
	reads atomic.Int32
}

func (c *countingLookup) Lookup(tag string) (string, bool) {
	c.reads.Add(1)
	v, ok := c.attrs[tag]
	return v, ok
}

func names(steps []*kettle.Step) []string {
	out := make([]string, 0, len(steps))
	for _, s := range steps {
		out = append(out, s.Name())
	}
	return out
}

func samplePipeline() *kettle.Pipeline {
	p := kettle.NewPipeline(kettle.KindTransformation, "sales", "sales.ktr")
	for _, n := range []string{"A", "B", "C", "D", "E"} {
		p.AddStep(kettle.NewStep(n, "Dummy", nil))
	}
	p.Hops = []kettle.Hop{
		{From: "A", To: "B", Enabled: true},
		{From: "B", To: "C", Enabled: true, IsErrorRoute: true},
		{From: "B", To: "D", Enabled: false},
	}
	return p
}

func TestStep_AttributeIsCachedAfterFirstRead(t *testing.T) {
	lookup := &countingLookup{attrs: map[string]string{"format": "Unix"}}
	s := kettle.NewStep("Text file input", "TextFileInput", lookup)

	v, err := s.Attribute("format")
	require.NoError(t, err)
	assert.Equal(t, "Unix", v)

	v, err = s.Attribute("format")
	require.NoError(t, err)
	assert.Equal(t, "Unix", v)
	assert.Equal(t, int32(1), lookup.reads.Load(), "second read must come from the cache")
}

func TestStep_NameAndTypeNeverHitLookup(t *testing.T) {
	lookup := &countingLookup{}
	s := kettle.NewStep("A", "X", lookup)

	v, err := s.Attribute("name")
	require.NoError(t, err)
	assert.Equal(t, "A", v)
	v, err = s.Attribute("type")
	require.NoError(t, err)
	assert.Equal(t, "X", v)
	assert.Zero(t, lookup.reads.Load())
}

func TestStep_MissingAttributeNamesStepAndTag(t *testing.T) {
	s := kettle.NewStep("Filter rows", "FilterRows", &countingLookup{})

	_, err := s.Attribute("compare")
	require.Error(t, err)
	assert.True(t, errors.Is(err, kettle.ErrValidation))
	assert.Contains(t, err.Error(), "Filter rows")
	assert.Contains(t, err.Error(), "compare")
}

func TestStep_EmptyTypeIsNotCached(t *testing.T) {
	s := kettle.NewStep("A", "", nil)

	assert.Empty(t, s.Type())
	_, err := s.Attribute("type")
	require.Error(t, err)
	assert.True(t, errors.Is(err, kettle.ErrValidation))
	assert.Contains(t, err.Error(), "type")

	lookup := &countingLookup{attrs: map[string]string{"type": ""}}
	s = kettle.NewStep("B", "", lookup)
	v, err := s.Attribute("type")
	require.NoError(t, err)
	assert.Empty(t, v)
	assert.Equal(t, int32(1), lookup.reads.Load())
}

func TestStep_ConcurrentFirstAccess(t *testing.T) {
	lookup := &countingLookup{attrs: map[string]string{"format": "Unix"}}
	s := kettle.NewStep("A", "X", lookup)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := s.Attribute("format")
			assert.NoError(t, err)
			assert.Equal(t, "Unix", v)
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), lookup.reads.Load())
}

func TestPipeline_AddStepLastWinsKeepsPosition(t *testing.T) {
	p := kettle.NewPipeline(kettle.KindJob, "nightly", "")
	p.AddStep(kettle.NewStep("START", "SPECIAL", nil))
	p.AddStep(kettle.NewStep("load", "TRANS", nil))
	p.AddStep(kettle.NewStep("START", "DUMMY", nil))

	assert.Equal(t, 2, p.StepCount())
	assert.Equal(t, []string{"START", "load"}, names(p.Steps()))
	s, ok := p.Step("START")
	require.True(t, ok)
	assert.Equal(t, "DUMMY", s.Type())
}

func TestPipeline_HopQueries(t *testing.T) {
	p := samplePipeline()

	assert.Len(t, p.EnabledHops(), 2)
	assert.Equal(t, []kettle.Hop{{From: "B", To: "D"}}, p.DisabledHops())
	assert.Equal(t, []kettle.Hop{{From: "B", To: "C", Enabled: true, IsErrorRoute: true}}, p.ErrorHops())
}

func TestPipeline_StepsTouchedByHops(t *testing.T) {
	p := samplePipeline()

	assert.Equal(t, []string{"A", "B", "C"}, names(p.EnabledSteps()))
	assert.Equal(t, []string{"B", "D"}, names(p.DisabledSteps()))
}

func TestPipeline_StepAttribute(t *testing.T) {
	p := samplePipeline()

	v, err := p.StepAttribute("A", "type")
	require.NoError(t, err)
	assert.Equal(t, "Dummy", v)

	_, err = p.StepAttribute("missing", "type")
	assert.True(t, errors.Is(err, kettle.ErrValidation))
	assert.Contains(t, err.Error(), "missing")
}

func TestPipeline_IdentityIsDeterministic(t *testing.T) {
	a := kettle.NewPipeline(kettle.KindTransformation, "sales", "a.ktr")
	b := kettle.NewPipeline(kettle.KindTransformation, "sales", "elsewhere/b.ktr")
	c := kettle.NewPipeline(kettle.KindJob, "sales", "a.kjb")

	assert.Equal(t, a.ID(), b.ID())
	assert.NotEqual(t, a.ID(), c.ID())
	assert.Equal(t, a.StepID("A"), b.StepID("A"))
	assert.NotEqual(t, a.StepID("A"), a.StepID("B"))
}

func TestParseKind(t *testing.T) {
	k, err := kettle.ParseKind("job")
	require.NoError(t, err)
	assert.Equal(t, kettle.KindJob, k)
	assert.Equal(t, "transformation", kettle.KindTransformation.String())

	_, err = kettle.ParseKind("pipeline")
	assert.True(t, errors.Is(err, kettle.ErrValidation))
}
