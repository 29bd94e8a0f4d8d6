package gbnf

import (
	"bytes"
	"strings"

	"github.com/olekukonko/tablewriter"
)

// Kind identifies which of the compiler's error categories produced a
// diagnostic (spec.md §7).
type Kind int

const (
	KindInvalidPattern Kind = iota
	KindUnsupportedRef
	KindUnresolvedRef
	KindUnknownPrimitive
	KindUnrecognizedSchema
	KindFetchFailure
)

func (k Kind) String() string {
	switch k {
	case KindInvalidPattern:
		return "InvalidPattern"
	case KindUnsupportedRef:
		return "UnsupportedRef"
	case KindUnresolvedRef:
		return "UnresolvedRef"
	case KindUnknownPrimitive:
		return "UnknownPrimitive"
	case KindUnrecognizedSchema:
		return "UnrecognizedSchema"
	case KindFetchFailure:
		return "FetchFailure"
	default:
		return "Unknown"
	}
}

// Diagnostic is a single accumulated error or warning.
type Diagnostic struct {
	Kind    Kind
	Message string
}

// Diagnostics holds every error and warning accumulated during a
// compilation. It is always returned, even when compilation fails.
type Diagnostics struct {
	Errors   []Diagnostic
	Warnings []string
}

// Report renders the accumulated diagnostics as a table for human
// consumption. The aggregated CompileError, not Report, is what actually
// fails a compilation; Report is a convenience for logging or CLI output.
func (d *Diagnostics) Report() string {
	if d == nil || (len(d.Errors) == 0 && len(d.Warnings) == 0) {
		return ""
	}
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetHeader([]string{"Severity", "Kind", "Message"})
	for _, e := range d.Errors {
		table.Append([]string{"error", e.Kind.String(), e.Message})
	}
	for _, w := range d.Warnings {
		table.Append([]string{"warning", "-", w})
	}
	table.Render()
	return buf.String()
}

// CompileError is the single aggregated failure raised when a compilation
// accumulates one or more errors (spec.md §6). Its message joins every
// accumulated error message with "\n".
type CompileError struct {
	Errors []Diagnostic
}

func (e *CompileError) Error() string {
	msgs := make([]string, len(e.Errors))
	for i, d := range e.Errors {
		msgs[i] = d.Message
	}
	return strings.Join(msgs, "\n")
}

func (c *Converter) addError(kind Kind, message string) {
	c.diagnostics.Errors = append(c.diagnostics.Errors, Diagnostic{Kind: kind, Message: message})
}

func (c *Converter) addWarning(message string) {
	c.diagnostics.Warnings = append(c.diagnostics.Warnings, message)
	if c.logger != nil {
		c.logger.Warn(message)
	}
}

// fetchAbort unwinds the recursive ref-resolution/visit call graph in one
// step when the Fetcher fails. Every other error kind is buffered in
// Diagnostics instead; FetchFailure alone propagates immediately, per
// spec.md §6's fetch contract ("may raise; raised errors propagate out of
// compilation").
type fetchAbort struct{ err error }
