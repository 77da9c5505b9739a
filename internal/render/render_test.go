package render

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/vvka-141/kettlegraph/internal/pathgraph"
	"github.com/vvka-141/kettlegraph/pkg/kettle"
)

func samplePipeline() *kettle.Pipeline {
	p := kettle.NewPipeline(kettle.KindTransformation, "sales", "sales.ktr")
	p.AddStep(kettle.NewStep("A", "TableInput", nil))
	p.AddStep(kettle.NewStep("B", "FilterRows", nil))
	p.AddStep(kettle.NewStep("C", "TableOutput", nil))
	p.Hops = []kettle.Hop{
		{From: "A", To: "B", Enabled: true},
		{From: "B", To: "C", Enabled: true, IsErrorRoute: true},
		{From: "B", To: "D"},
	}
	p.Connections = []kettle.Connection{{Name: "dwh", Server: "db", Type: "POSTGRESQL", Access: "Native", Database: "w", Username: "etl"}}
	return p
}

func TestParseFormat(t *testing.T) {
	for _, s := range []string{"text", "json", "YAML"} {
		_, err := ParseFormat(s)
		assert.NoError(t, err, s)
	}
	_, err := ParseFormat("xml")
	assert.True(t, errors.Is(err, kettle.ErrInvalidConfig))
}

func TestPipeline_JSON(t *testing.T) {
	var buf bytes.Buffer
	p := samplePipeline()
	require.NoError(t, New(&buf, FormatJSON).Pipeline(p))

	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, p.ID().String(), got["id"])
	assert.Equal(t, "transformation", got["kind"])
	assert.Equal(t, "sales", got["name"])
	assert.EqualValues(t, 3, got["steps"])
	assert.EqualValues(t, 2, got["enabled_hops"])
	assert.EqualValues(t, 1, got["disabled_hops"])
	assert.EqualValues(t, 1, got["error_hops"])
	assert.Len(t, got["connections"], 1)
}

func TestPipeline_YAMLEmptyConnections(t *testing.T) {
	var buf bytes.Buffer
	p := kettle.NewPipeline(kettle.KindJob, "nightly", "")
	require.NoError(t, New(&buf, FormatYAML).Pipeline(p))

	var got map[string]interface{}
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "job", got["kind"])
	assert.Equal(t, []interface{}{}, got["connections"])
	assert.NotContains(t, got, "source")
}

func TestPipeline_Text(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, New(&buf, FormatText).Pipeline(samplePipeline()))

	out := buf.String()
	assert.Contains(t, out, `transformation "sales"`)
	assert.Contains(t, out, "3 (2 enabled, 1 disabled, 1 error)")
	assert.Contains(t, out, "dwh")
}

func TestSteps(t *testing.T) {
	p := samplePipeline()

	var buf bytes.Buffer
	require.NoError(t, New(&buf, FormatJSON).Steps(p, p.EnabledSteps()))
	var got []map[string]string
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	require.Len(t, got, 3)
	assert.Equal(t, "A", got[0]["name"])
	assert.Equal(t, p.StepID("A").String(), got[0]["id"])

	buf.Reset()
	require.NoError(t, New(&buf, FormatText).Steps(p, p.Steps()))
	assert.Contains(t, buf.String(), "FilterRows")
	assert.Contains(t, buf.String(), "NAME")
}

func TestHops(t *testing.T) {
	p := samplePipeline()

	var buf bytes.Buffer
	require.NoError(t, New(&buf, FormatText).Hops(p.Hops))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[1], "[error]")
	assert.Contains(t, lines[2], "[disabled]")

	buf.Reset()
	require.NoError(t, New(&buf, FormatJSON).Hops(nil))
	assert.Equal(t, "[]", strings.TrimSpace(buf.String()))

	buf.Reset()
	require.NoError(t, New(&buf, FormatYAML).Hops(p.ErrorHops()))
	var got []kettle.Hop
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, p.ErrorHops(), got)
}

func TestAttribute(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, New(&buf, FormatText).Attribute("A", "format", "Unix"))
	assert.Equal(t, "Unix\n", buf.String())

	buf.Reset()
	require.NoError(t, New(&buf, FormatJSON).Attribute("A", "format", "Unix"))
	var got attributeView
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, attributeView{Step: "A", Attribute: "format", Value: "Unix"}, got)
}

func TestGraph(t *testing.T) {
	g := pathgraph.Graph{"B": {"C"}, "A": {"B", "C"}}

	var buf bytes.Buffer
	require.NoError(t, New(&buf, FormatText).Graph(g))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "A"))
	assert.Contains(t, lines[0], "B, C")

	buf.Reset()
	require.NoError(t, New(&buf, FormatJSON).Graph(g))
	var got map[string][]string
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, map[string][]string(g), got)
}

func TestPaths_LimitStopsConsumption(t *testing.T) {
	pulled := 0
	seq := func(yield func([]string) bool) {
		for i := 0; i < 100; i++ {
			pulled++
			if !yield([]string{"S", fmt.Sprint(i), "T"}) {
				return
			}
		}
	}

	var buf bytes.Buffer
	n, err := New(&buf, FormatText).Paths(seq, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, 3, pulled)
	assert.Equal(t, 3, strings.Count(buf.String(), "\n"))

	buf.Reset()
	n, err = New(&buf, FormatJSON).Paths(seq, 0)
	require.NoError(t, err)
	assert.Equal(t, 100, n)
	var got [][]string
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Len(t, got, 100)
}

func TestPaths_LimitOneNeverSearchesFurther(t *testing.T) {
	pulled := 0
	seq := func(yield func([]string) bool) {
		for i := 0; i < 5; i++ {
			pulled++
			if !yield([]string{"S", fmt.Sprint(i)}) {
				return
			}
		}
	}

	var buf bytes.Buffer
	n, err := New(&buf, FormatJSON).Paths(seq, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, 1, pulled)
	var got [][]string
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, [][]string{{"S", "0"}}, got)
}

func TestPaths_EmptyJSONIsArray(t *testing.T) {
	var buf bytes.Buffer
	n, err := New(&buf, FormatJSON).Paths(func(func([]string) bool) {}, 0)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Equal(t, "[]", strings.TrimSpace(buf.String()))
}

func TestScan(t *testing.T) {
	result := kettle.ScanResult{
		Root: "/repo",
		Files: []kettle.FileSummary{
			{Path: "./a.ktr", Kind: kettle.KindTransformation, Name: "a", Steps: 2, Hops: 1, Checksum: "abc"},
			{Path: "./b.kjb", Checksum: "def", Err: &kettle.DocumentError{Err: kettle.ErrParse, Message: "malformed XML", Hint: "fix it"}},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, New(&buf, FormatText).Scan(result))
	out := buf.String()
	assert.Contains(t, out, "./a.ktr")
	assert.Contains(t, out, "malformed XML")
	assert.NotContains(t, out, "Hint")
	assert.Contains(t, out, "2 pipeline files, 1 failed")

	buf.Reset()
	require.NoError(t, New(&buf, FormatYAML).Scan(result))
	var got []scanView
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
	require.Len(t, got, 2)
	assert.Equal(t, "transformation", got[0].Kind)
	assert.Empty(t, got[1].Kind)
	assert.Contains(t, got[1].Error, "parse failed")
}
