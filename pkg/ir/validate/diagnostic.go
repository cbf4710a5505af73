// Package validate implements Accord's validation pipeline: a fixed
// sequence of pure passes over an ir.IR, each returning either a refined IR
// or a batch of diagnostics.
package validate

import (
	"fmt"

	"github.com/ternarybob/accord/pkg/ir"
)

// Severity distinguishes a hard error (aborts the pipeline) from an
// advisory warning (collected but non-blocking).
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
)

func (s Severity) String() string {
	if s == SeverityWarning {
		return "warning"
	}
	return "error"
}

// Diagnostic is one finding from a validation pass.
type Diagnostic struct {
	Severity Severity
	Pass     string
	Message  string
	Span     *ir.Span
}

func (d Diagnostic) String() string {
	if d.Span != nil && !d.Span.IsZero() {
		return fmt.Sprintf("[%s/%s] %s (%s:%d:%d)", d.Pass, d.Severity, d.Message, d.Span.File, d.Span.Line, d.Span.Column)
	}
	return fmt.Sprintf("[%s/%s] %s", d.Pass, d.Severity, d.Message)
}

func errf(pass, format string, args ...any) Diagnostic {
	return Diagnostic{Severity: SeverityError, Pass: pass, Message: fmt.Sprintf(format, args...)}
}

func warnf(pass, format string, args ...any) Diagnostic {
	return Diagnostic{Severity: SeverityWarning, Pass: pass, Message: fmt.Sprintf(format, args...)}
}

// Errors filters a diagnostic batch down to hard errors.
func Errors(diags []Diagnostic) []Diagnostic {
	var out []Diagnostic
	for _, d := range diags {
		if d.Severity == SeverityError {
			out = append(out, d)
		}
	}
	return out
}

// Warnings filters a diagnostic batch down to advisories.
func Warnings(diags []Diagnostic) []Diagnostic {
	var out []Diagnostic
	for _, d := range diags {
		if d.Severity == SeverityWarning {
			out = append(out, d)
		}
	}
	return out
}
