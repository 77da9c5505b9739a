package extractor

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/beevik/etree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vvka-141/kettlegraph/internal/files/loader"
	"github.com/vvka-141/kettlegraph/pkg/kettle"
)

func extractFixture(t *testing.T, name string) *kettle.Pipeline {
	t.Helper()
	path := "testdata/" + name
	doc, err := loader.NewLoader().LoadFile(path)
	require.NoError(t, err)
	p, err := Extract(doc, path)
	require.NoError(t, err)
	return p
}

func extractText(t *testing.T, text string, opts ...Option) (*kettle.Pipeline, error) {
	t.Helper()
	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromString(text))
	return Extract(doc, "", opts...)
}

func stepTypes(p *kettle.Pipeline) map[string]string {
	out := make(map[string]string)
	for _, s := range p.Steps() {
		out[s.Name()] = s.Type()
	}
	return out
}

type recordingLogger struct {
	mu       sync.Mutex
	messages []string
}

func (r *recordingLogger) record(format string, args ...interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, fmt.Sprintf(format, args...))
}

func (r *recordingLogger) Verbose(format string, args ...interface{}) { r.record(format, args...) }
func (r *recordingLogger) Info(format string, args ...interface{})    { r.record(format, args...) }
func (r *recordingLogger) Error(format string, args ...interface{})   { r.record(format, args...) }

func TestExtract_Transformation(t *testing.T) {
	p := extractFixture(t, "transformation_1.ktr")

	assert.Equal(t, kettle.KindTransformation, p.Kind)
	assert.Equal(t, "transformation_1", p.Name)
	assert.Equal(t, "testdata/transformation_1.ktr", p.Source)

	assert.Equal(t, map[string]string{
		"Text file output":   "TextFileOutput",
		"Filter rows":        "FilterRows",
		"Dummy (do nothing)": "Dummy",
		"Text file input":    "TextFileInput",
		"Select values":      "SelectValues",
	}, stepTypes(p))

	assert.Equal(t, []kettle.Hop{
		{From: "Text file input", To: "Select values", Enabled: true},
		{From: "Select values", To: "Filter rows", Enabled: true},
		{From: "Filter rows", To: "Dummy (do nothing)", Enabled: true},
		{From: "Filter rows", To: "Text file output", Enabled: true},
	}, p.Hops)

	assert.Equal(t, []kettle.Connection{{
		Name:     "warehouse",
		Server:   "db.internal",
		Type:     "POSTGRESQL",
		Access:   "Native",
		Database: "dwh",
		Username: "etl",
	}}, p.Connections)
}

func TestExtract_StepAttributesAreLazy(t *testing.T) {
	p := extractFixture(t, "transformation_1.ktr")

	v, err := p.StepAttribute("Text file input", "format")
	require.NoError(t, err)
	assert.Equal(t, "Unix", v)

	v, err = p.StepAttribute("Text file input", "file/name")
	require.NoError(t, err)
	assert.Equal(t, "${Internal.Transformation.Filename.Directory}/input.csv", v)

	_, err = p.StepAttribute("Dummy (do nothing)", "format")
	require.Error(t, err)
	assert.True(t, errors.Is(err, kettle.ErrValidation))
	assert.Contains(t, err.Error(), "Dummy (do nothing)")
	assert.Contains(t, err.Error(), "format")

	_, err = p.StepAttribute("Dummy (do nothing)", "[bad")
	assert.True(t, errors.Is(err, kettle.ErrValidation))
}

func TestExtract_ErrorRoutes(t *testing.T) {
	p := extractFixture(t, "error_routes.ktr")

	assert.Equal(t, []kettle.Hop{
		{From: "Table input", To: "Lookup", Enabled: true},
		{From: "Lookup", To: "Write rejects", Enabled: false, IsErrorRoute: true},
		{From: "Lookup", To: "Table output", Enabled: true},
		{From: "Table output", To: "Write rejects", Enabled: true},
	}, p.Hops)
	assert.Equal(t, []kettle.Hop{{From: "Lookup", To: "Write rejects", IsErrorRoute: true}}, p.ErrorHops())
	assert.Empty(t, p.Connections)
}

func TestExtract_Job(t *testing.T) {
	p := extractFixture(t, "nightly.kjb")

	assert.Equal(t, kettle.KindJob, p.Kind)
	assert.Equal(t, "nightly", p.Name)
	assert.Equal(t, map[string]string{
		"START":        "SPECIAL",
		"Load sales":   "TRANS",
		"Mail failure": "MAIL",
		"Success":      "SUCCESS",
	}, stepTypes(p))

	// evaluation "Y" is a normal route, "N" the error route: the inverse of <enabled>.
	assert.Equal(t, []kettle.Hop{
		{From: "START", To: "Load sales", Enabled: true, IsErrorRoute: false},
		{From: "Load sales", To: "Success", Enabled: true, IsErrorRoute: false},
		{From: "Load sales", To: "Mail failure", Enabled: true, IsErrorRoute: true},
	}, p.Hops)
	assert.Empty(t, p.Connections)

	v, err := p.StepAttribute("Mail failure", "server")
	require.NoError(t, err)
	assert.Equal(t, "smtp.internal", v)
}

func TestExtract_Failures(t *testing.T) {
	tests := []struct {
		name    string
		xml     string
		wantTag string
	}{
		{
			name:    "unrecognized root",
			xml:     `<pipeline><name>x</name></pipeline>`,
			wantTag: "pipeline",
		},
		{
			name:    "transformation without name",
			xml:     `<transformation><info/></transformation>`,
			wantTag: "info/name",
		},
		{
			name:    "job without name",
			xml:     `<job><entries/></job>`,
			wantTag: "name",
		},
		{
			name:    "lowercase enabled flag",
			xml:     `<transformation><info><name>t</name></info><order><hop><from>A</from><to>B</to><enabled>y</enabled></hop></order></transformation>`,
			wantTag: "enabled",
		},
		{
			name:    "hop without to",
			xml:     `<transformation><info><name>t</name></info><order><hop><from>A</from><enabled>Y</enabled></hop></order></transformation>`,
			wantTag: "to",
		},
		{
			name:    "hop without enabled",
			xml:     `<transformation><info><name>t</name></info><order><hop><from>A</from><to>B</to></hop></order></transformation>`,
			wantTag: "enabled",
		},
		{
			name:    "job hop without evaluation",
			xml:     `<job><name>j</name><hops><hop><from>A</from><to>B</to><enabled>Y</enabled></hop></hops></job>`,
			wantTag: "evaluation",
		},
		{
			name:    "job hop with unknown evaluation",
			xml:     `<job><name>j</name><hops><hop><from>A</from><to>B</to><enabled>Y</enabled><evaluation>T</evaluation></hop></hops></job>`,
			wantTag: "evaluation",
		},
		{
			name: "error rule with unknown is_enabled",
			xml: `<transformation><info><name>t</name></info>
				<step><name>A</name></step><step><name>B</name></step>
				<step_error_handling><error><source_step>A</source_step><target_step>B</target_step><is_enabled>yes</is_enabled></error></step_error_handling>
				</transformation>`,
			wantTag: "is_enabled",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := extractText(t, tt.xml)
			require.Error(t, err)
			assert.Nil(t, p)
			assert.True(t, errors.Is(err, kettle.ErrValidation), "got %v", err)

			var de *kettle.DocumentError
			require.True(t, errors.As(err, &de))
			assert.Equal(t, tt.wantTag, de.Tag)
		})
	}
}

func TestExtract_UnrecognizedRootMessage(t *testing.T) {
	_, err := extractText(t, `<dataflow/>`)
	assert.Contains(t, err.Error(), "unrecognized document kind")
}

func TestExtract_TolerantStepWalk(t *testing.T) {
	logger := &recordingLogger{}
	p, err := extractText(t, `<transformation>
		<info><name>t</name></info>
		<step><name>A</name><type>X</type></step>
		<step><type>orphan</type></step>
		<cluster><step><name>Nested</name></step></cluster>
		<step><name>B</name><type>Y</type></step>
		<step><name>A</name><type>Z</type></step>
	</transformation>`, WithLogger(logger))
	require.NoError(t, err)

	assert.Equal(t, 3, p.StepCount())
	assert.Equal(t, map[string]string{"A": "Z", "Nested": "", "B": "Y"}, stepTypes(p))
	assert.Equal(t, "A", p.Steps()[0].Name(), "last-wins keeps first position")
	assert.NotEmpty(t, logger.messages)
}

func TestExtract_ModelEdgeCases(t *testing.T) {
	t.Run("no hop container means no hops", func(t *testing.T) {
		p, err := extractText(t, `<transformation><info><name>t</name></info><step><name>A</name></step></transformation>`)
		require.NoError(t, err)
		assert.Empty(t, p.Hops)
		assert.Empty(t, p.Connections)
	})

	t.Run("dangling hop endpoints are kept", func(t *testing.T) {
		p, err := extractText(t, `<transformation><info><name>t</name></info>
			<order><hop><from>Ghost</from><to>Phantom</to><enabled>N</enabled></hop></order>
		</transformation>`)
		require.NoError(t, err)
		assert.Equal(t, []kettle.Hop{{From: "Ghost", To: "Phantom"}}, p.Hops)
		assert.Zero(t, p.StepCount())
	})

	t.Run("error rule toggles route regardless of hop enablement", func(t *testing.T) {
		p, err := extractText(t, `<transformation><info><name>t</name></info>
			<step><name>A</name></step><step><name>B</name></step>
			<order>
				<hop><from>A</from><to>B</to><enabled>N</enabled></hop>
				<hop><from>B</from><to>A</to><enabled>Y</enabled></hop>
			</order>
			<step_error_handling><error><source_step>A</source_step><target_step>B</target_step><is_enabled>Y</is_enabled></error></step_error_handling>
		</transformation>`)
		require.NoError(t, err)
		assert.True(t, p.Hops[0].IsErrorRoute)
		assert.False(t, p.Hops[1].IsErrorRoute)
	})

	t.Run("jobs ignore connection elements", func(t *testing.T) {
		p, err := extractText(t, `<job><name>j</name>
			<connection><name>c</name><server>s</server><type>t</type><access>a</access><database>d</database><username>u</username></connection>
		</job>`)
		require.NoError(t, err)
		assert.Empty(t, p.Connections)
	})

	t.Run("step without type child reports missing type", func(t *testing.T) {
		p, err := extractText(t, `<transformation><info><name>t</name></info>
			<step><name>A</name></step>
			<step><name>B</name><type/></step>
		</transformation>`)
		require.NoError(t, err)

		_, err = p.StepAttribute("A", "type")
		require.Error(t, err)
		assert.True(t, errors.Is(err, kettle.ErrValidation))
		assert.Contains(t, err.Error(), `"A"`)
		assert.Contains(t, err.Error(), `"type"`)

		v, err := p.StepAttribute("B", "type")
		require.NoError(t, err)
		assert.Empty(t, v)
	})
}

func TestExtract_NoRoot(t *testing.T) {
	_, err := Extract(etree.NewDocument(), "empty.ktr")
	assert.True(t, errors.Is(err, kettle.ErrParse))
}
