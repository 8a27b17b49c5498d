// Package diag provides diagnostic (error) types for the interpreter.
package diag

import (
	"fmt"
	"strings"

	"github.com/johnryzon123/Rylang/internal/span"
)

// Severity indicates the severity of a diagnostic.
type Severity int

const (
	Error Severity = iota
	Warning
)

func (s Severity) String() string {
	switch s {
	case Error:
		return "error"
	case Warning:
		return "warning"
	default:
		return "unknown"
	}
}

// Diagnostic represents a diagnostic message anchored to a source position.
type Diagnostic struct {
	Severity  Severity      `json:"severity"`
	Message   string        `json:"message"`
	Pos       span.Position `json:"pos"`
	Where     string        `json:"where,omitempty"` // e.g. " at 'foo'" or " at end"
	ShowCaret bool          `json:"showCaret"`       // panics suppress the caret marker
}

// String returns a single-line representation of the diagnostic.
func (d Diagnostic) String() string {
	return fmt.Sprintf("%s%s at %d:%d: %s", d.Severity, d.Where, d.Pos.Line, d.Pos.Column, d.Message)
}

// Render formats the diagnostic against the source it was produced from:
// the message, the offending line, and a caret under the offending column.
func (d Diagnostic) Render(source string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Error%s: %s", d.Where, d.Message)

	if source == "" || !d.ShowCaret {
		return sb.String()
	}

	lines := strings.Split(source, "\n")
	if d.Pos.Line < 1 || d.Pos.Line > len(lines) {
		return sb.String()
	}
	lineText := lines[d.Pos.Line-1]

	col := d.Pos.Column
	if col < 1 {
		col = 1
	}
	fmt.Fprintf(&sb, "\n  %d | %s", d.Pos.Line, lineText)
	fmt.Fprintf(&sb, "\n    | %s^~~", strings.Repeat(" ", col-1))
	return sb.String()
}

// Errorf creates an error diagnostic at the given position.
func Errorf(pos span.Position, format string, args ...any) Diagnostic {
	return Diagnostic{
		Severity:  Error,
		Message:   fmt.Sprintf(format, args...),
		Pos:       pos,
		ShowCaret: true,
	}
}

// Reporter collects diagnostics and tracks whether any error was reported.
// The host clears it between runs.
type Reporter struct {
	diags    []Diagnostic
	hadError bool
}

// Report records a diagnostic.
func (r *Reporter) Report(d Diagnostic) {
	r.diags = append(r.diags, d)
	if d.Severity == Error {
		r.hadError = true
	}
}

// Errorf records an error diagnostic at the given position.
func (r *Reporter) Errorf(pos span.Position, format string, args ...any) {
	r.Report(Errorf(pos, format, args...))
}

// Diagnostics returns the collected diagnostics.
func (r *Reporter) Diagnostics() []Diagnostic { return r.diags }

// HadError reports whether any error diagnostic was recorded.
func (r *Reporter) HadError() bool { return r.hadError }

// Reset clears collected diagnostics and the had-error flag.
func (r *Reporter) Reset() {
	r.diags = nil
	r.hadError = false
}
