package render

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/vvka-141/kettlegraph/internal/pathgraph"
	"github.com/vvka-141/kettlegraph/internal/tui"
	"github.com/vvka-141/kettlegraph/pkg/kettle"
)

var arrow = " " + tui.SymbolArrowRight + " "

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderTop(false).
		BorderBottom(false).
		BorderLeft(false).
		BorderRight(false).
		BorderColumn(false).
		BorderStyle(tui.MutedStyle).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return tui.LabelStyle.Bold(true).PaddingRight(2)
			}
			return lipgloss.NewStyle().PaddingRight(2)
		}).
		Headers(headers...)
}

func pipelineText(v pipelineView) string {
	var b strings.Builder

	b.WriteString(tui.TitleStyle.Render(fmt.Sprintf("%s %q", v.Kind, v.Name)))
	b.WriteString("\n")

	field := func(label, value string) {
		b.WriteString("  ")
		b.WriteString(tui.LabelStyle.Render(fmt.Sprintf("%-13s", label+":")))
		b.WriteString(value)
		b.WriteString("\n")
	}
	if v.Source != "" {
		field("source", v.Source)
	}
	field("id", v.ID.String())
	field("steps", strconv.Itoa(v.Steps))
	field("hops", fmt.Sprintf("%d (%d enabled, %d disabled, %d error)", v.Hops, v.EnabledHops, v.DisabledHops, v.ErrorHops))
	field("connections", strconv.Itoa(len(v.Connections)))

	for _, c := range v.Connections {
		b.WriteString(fmt.Sprintf("    %s %s  %s  %s/%s  (%s, user %s)\n",
			tui.SymbolBullet, c.Name, c.Type, c.Server, c.Database, c.Access, c.Username))
	}
	return b.String()
}

func stepsText(steps []stepView) string {
	if len(steps) == 0 {
		return tui.MutedStyle.Render("no steps") + "\n"
	}
	t := newTable("NAME", "TYPE")
	for _, s := range steps {
		t.Row(s.Name, s.Type)
	}
	return t.Render() + "\n"
}

func hopsText(hops []kettle.Hop) string {
	if len(hops) == 0 {
		return tui.MutedStyle.Render("no hops") + "\n"
	}
	var b strings.Builder
	for _, h := range hops {
		b.WriteString(h.From)
		b.WriteString(arrow)
		b.WriteString(h.To)
		if !h.Enabled {
			b.WriteString(" ")
			b.WriteString(tui.MutedStyle.Render("[disabled]"))
		}
		if h.IsErrorRoute {
			b.WriteString(" ")
			b.WriteString(tui.WarningStyle.Render("[error]"))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func graphText(g pathgraph.Graph) string {
	if len(g) == 0 {
		return tui.MutedStyle.Render("no enabled hops") + "\n"
	}
	var b strings.Builder
	for _, src := range g.Sources() {
		b.WriteString(src)
		b.WriteString(arrow)
		b.WriteString(strings.Join(g.Neighbors(src), ", "))
		b.WriteString("\n")
	}
	return b.String()
}

func pathText(path []string) string {
	return strings.Join(path, arrow)
}

func scanText(files []scanView, failed int) string {
	var b strings.Builder
	if len(files) > 0 {
		t := newTable("", "PATH", "KIND", "NAME", "STEPS", "HOPS")
		for _, f := range files {
			status := tui.SuccessStyle.Render(tui.SymbolCheck)
			if f.Error != "" {
				status = tui.ErrorStyle.Render(tui.SymbolCross)
			}
			t.Row(status, f.Path, f.Kind, f.Name, strconv.Itoa(f.Steps), strconv.Itoa(f.Hops))
		}
		b.WriteString(t.Render())
		b.WriteString("\n")

		for _, f := range files {
			if f.Error != "" {
				b.WriteString(tui.ErrorStyle.Render(tui.SymbolCross + " " + f.Path))
				b.WriteString(": ")
				b.WriteString(firstLine(f.Error))
				b.WriteString("\n")
			}
		}
	}

	summary := fmt.Sprintf("%d pipeline files, %d failed", len(files), failed)
	if failed > 0 {
		b.WriteString(tui.WarningStyle.Render(summary))
	} else {
		b.WriteString(summary)
	}
	b.WriteString("\n")
	return b.String()
}

// firstLine drops the hint paragraph of a DocumentError.
func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
