package kettle

import (
	"fmt"
	"strings"
)

// DocumentError is a structured load or extraction failure with enough
// context to point a user at the offending element.
//
// Err is the sentinel class (ErrNotFound, ErrValidation or ErrParse) and is
// exposed through Unwrap, so errors.Is works on every DocumentError.
type DocumentError struct {
	Err     error
	Source  string // file path, or "" for text input
	Line    int    // 1-based line number (0 if unknown)
	Tag     string // offending or missing tag, if applicable
	Step    string // owning step, if applicable
	Message string
	Hint    string
}

// Error implements the error interface.
func (e *DocumentError) Error() string {
	var b strings.Builder

	b.WriteString(e.Message)

	var ctx []string
	if e.Source != "" {
		if e.Line > 0 {
			ctx = append(ctx, fmt.Sprintf("%s:%d", e.Source, e.Line))
		} else {
			ctx = append(ctx, e.Source)
		}
	} else if e.Line > 0 {
		ctx = append(ctx, fmt.Sprintf("line %d", e.Line))
	}
	if e.Step != "" {
		ctx = append(ctx, fmt.Sprintf("step %q", e.Step))
	}
	if e.Tag != "" {
		ctx = append(ctx, fmt.Sprintf("tag <%s>", e.Tag))
	}
	if len(ctx) > 0 {
		b.WriteString(" (")
		b.WriteString(strings.Join(ctx, ", "))
		b.WriteString(")")
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	if e.Hint != "" {
		b.WriteString("\n\nHint: ")
		b.WriteString(e.Hint)
	}
	return b.String()
}

// Unwrap returns the sentinel class.
func (e *DocumentError) Unwrap() error {
	return e.Err
}
