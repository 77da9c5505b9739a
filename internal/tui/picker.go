package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vvka-141/kettlegraph/pkg/kettle"
)

// ErrPickCancelled is returned by PickStep when the user quits without choosing.
var ErrPickCancelled = errors.New("selection cancelled")

// PickOption is one selectable step.
type PickOption struct {
	Label       string
	Description string
}

// StepOptions lists steps as picker options, labelled by name with the type as description.
func StepOptions(steps []*kettle.Step) []PickOption {
	out := make([]PickOption, 0, len(steps))
	for _, s := range steps {
		out = append(out, PickOption{Label: s.Name(), Description: s.Type()})
	}
	return out
}

// StepPicker is a filterable single-choice list.
type StepPicker struct {
	title   string
	options []PickOption
	keys    KeyMap

	filter    string
	visible   []int // indexes into options matching filter
	cursor    int   // index into visible
	maxRows   int
	choice    string
	submitted bool
	cancelled bool
}

// NewStepPicker creates a picker over options.
func NewStepPicker(title string, options []PickOption) StepPicker {
	p := StepPicker{
		title:   title,
		options: options,
		keys:    DefaultKeyMap(),
		maxRows: 15,
	}
	p.refilter()
	return p
}

// Init implements tea.Model.
func (p StepPicker) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (p StepPicker) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, p.keys.Up):
			if p.cursor > 0 {
				p.cursor--
			}
		case key.Matches(msg, p.keys.Down):
			if p.cursor < len(p.visible)-1 {
				p.cursor++
			}
		case key.Matches(msg, p.keys.Select):
			if len(p.visible) == 0 {
				return p, nil
			}
			p.choice = p.options[p.visible[p.cursor]].Label
			p.submitted = true
			return p, tea.Quit
		case key.Matches(msg, p.keys.Quit):
			p.cancelled = true
			return p, tea.Quit
		case key.Matches(msg, p.keys.Backspace):
			if r := []rune(p.filter); len(r) > 0 {
				p.filter = string(r[:len(r)-1])
				p.refilter()
			}
		case msg.Type == tea.KeySpace:
			p.filter += " "
			p.refilter()
		case msg.Type == tea.KeyRunes:
			p.filter += string(msg.Runes)
			p.refilter()
		}
	case tea.WindowSizeMsg:
		if msg.Height > 6 {
			p.maxRows = msg.Height - 6
		}
	}
	return p, nil
}

func (p *StepPicker) refilter() {
	needle := strings.ToLower(p.filter)
	visible := make([]int, 0, len(p.options))
	for i, opt := range p.options {
		if needle == "" || strings.Contains(strings.ToLower(opt.Label), needle) {
			visible = append(visible, i)
		}
	}
	p.visible = visible
	if p.cursor >= len(p.visible) {
		p.cursor = max(len(p.visible)-1, 0)
	}
}

// View implements tea.Model.
func (p StepPicker) View() string {
	var b strings.Builder

	b.WriteString(TitleStyle.Render(p.title))
	b.WriteString("\n")
	b.WriteString(LabelStyle.Render("filter: "))
	b.WriteString(p.filter)
	b.WriteString("\n\n")

	if len(p.visible) == 0 {
		b.WriteString(MutedStyle.Render("  no matching steps"))
		b.WriteString("\n")
	}

	first := 0
	if p.cursor >= p.maxRows {
		first = p.cursor - p.maxRows + 1
	}
	for row := first; row < len(p.visible) && row < first+p.maxRows; row++ {
		opt := p.options[p.visible[row]]
		style, symbol, indent := UnselectedStyle, SymbolUnselected, "  "
		if row == p.cursor {
			style, symbol, indent = SelectedStyle, SymbolSelected, ""
		}
		b.WriteString(indent)
		b.WriteString(style.Render(symbol + " " + opt.Label))
		if opt.Description != "" {
			b.WriteString(" ")
			b.WriteString(MutedStyle.Render(opt.Description))
		}
		b.WriteString("\n")
	}

	b.WriteString(HelpStyle.Render(p.keys.HelpText()))
	return b.String()
}

// Choice returns the chosen label and whether a choice was made.
func (p StepPicker) Choice() (string, bool) {
	return p.choice, p.submitted
}

// Cancelled returns true if the user quit without choosing.
func (p StepPicker) Cancelled() bool {
	return p.cancelled
}

// Filter returns the current filter text.
func (p StepPicker) Filter() string {
	return p.filter
}

// PickStep runs a picker on the terminal and returns the chosen label.
func PickStep(title string, options []PickOption) (string, error) {
	if len(options) == 0 {
		return "", fmt.Errorf("no steps to choose from: %w", kettle.ErrValidation)
	}

	final, err := tea.NewProgram(NewStepPicker(title, options)).Run()
	if err != nil {
		return "", fmt.Errorf("step picker failed: %w", err)
	}

	picker, ok := final.(StepPicker)
	if !ok {
		return "", fmt.Errorf("unexpected picker model %T", final)
	}
	if choice, ok := picker.Choice(); ok {
		return choice, nil
	}
	return "", ErrPickCancelled
}
