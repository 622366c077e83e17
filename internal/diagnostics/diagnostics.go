// Package diagnostics implements the structured error/warning model that
// every layer of the pipeline (parser, analyzer, VM) reports through, and
// the "--->" pretty renderer described by the public interface.
package diagnostics

import (
	"fmt"
	"strings"

	"github.com/langweave/glyph/internal/token"
)

// Severity classifies a Diagnostic.
type Severity int

const (
	Error Severity = iota
	Warning
	Info
	Help
)

func (s Severity) String() string {
	switch s {
	case Error:
		return "error"
	case Warning:
		return "warning"
	case Info:
		return "info"
	case Help:
		return "help"
	default:
		return "unknown"
	}
}

// Position is a single point in a source file.
type Position struct {
	Line   int
	Column int
	File   string
}

// SourceSpan is a half-open range of positions.
type SourceSpan struct {
	Start Position
	End   Position
}

// SpanFromToken builds a single-token SourceSpan.
func SpanFromToken(tok token.Token, file string) SourceSpan {
	start := Position{Line: tok.Line, Column: tok.Column, File: file}
	end := Position{Line: tok.Line, Column: tok.Column + len(tok.Lexeme), File: file}
	return SourceSpan{Start: start, End: end}
}

// Label annotates a span within a Diagnostic; Primary labels point at the
// exact failure, secondary labels add context (e.g. "first defined here").
type Label struct {
	Span      SourceSpan
	Text      string
	IsPrimary bool
}

// Diagnostic is the structured, severity-tagged unit every layer reports.
type Diagnostic struct {
	Code     string
	Severity Severity
	Message  string
	Labels   []Label
	Notes    []string
}

func (d *Diagnostic) Error() string {
	return d.Message
}

// New builds a primary-labelled error diagnostic at a token's position.
func New(code string, tok token.Token, file, message string) *Diagnostic {
	return &Diagnostic{
		Code:     code,
		Severity: Error,
		Message:  message,
		Labels:   []Label{{Span: SpanFromToken(tok, file), IsPrimary: true}},
	}
}

// WithNote appends a "= note:" hint and returns the Diagnostic for chaining.
func (d *Diagnostic) WithNote(note string) *Diagnostic {
	d.Notes = append(d.Notes, note)
	return d
}

// WithLabel appends a secondary label.
func (d *Diagnostic) WithLabel(span SourceSpan, text string) *Diagnostic {
	d.Labels = append(d.Labels, Label{Span: span, Text: text})
	return d
}

// Render pretty-prints a Diagnostic in the "--->"/"----"/"= note:" format,
// resolving each label's line against the original source text.
func Render(d *Diagnostic, source string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s[%s]: %s\n", d.Severity, d.Code, d.Message)

	lines := strings.Split(source, "\n")
	for _, lbl := range d.Labels {
		marker := "--->"
		if !lbl.IsPrimary {
			marker = "----"
		}
		fmt.Fprintf(&b, "  %s %d:%d\n", marker, lbl.Span.Start.Line, lbl.Span.Start.Column)
		if idx := lbl.Span.Start.Line - 1; idx >= 0 && idx < len(lines) {
			fmt.Fprintf(&b, "    | %s\n", lines[idx])
		}
		if lbl.Text != "" {
			fmt.Fprintf(&b, "    | %s\n", lbl.Text)
		}
	}
	for _, n := range d.Notes {
		fmt.Fprintf(&b, "  = note: %s\n", n)
	}
	return b.String()
}

// RenderAll renders a batch of diagnostics, sorted by nothing in particular
// (callers typically already emit them in pipeline order).
func RenderAll(diags []*Diagnostic, source string) string {
	var b strings.Builder
	for _, d := range diags {
		b.WriteString(Render(d, source))
	}
	return b.String()
}
