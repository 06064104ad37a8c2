package plugin

import (
	"fmt"
	"strings"
)

// Severity is the weight of a validation diagnostic.
type Severity int

const (
	// SeverityWarning marks a missing optional requirement. Generation
	// proceeds with the documented fallback.
	SeverityWarning Severity = iota

	// SeverityError marks a missing required item. The plugin, and the
	// overall run, are blocked until it is resolved.
	SeverityError
)

// String returns the string representation of the severity.
func (s Severity) String() string {
	switch s {
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return "unknown"
	}
}

// Diagnostic is one validation finding, carrying enough structured
// context to be actionable without inspecting internals.
type Diagnostic struct {
	Plugin   string
	Severity Severity
	Subject  string
	Message  string

	// Fallback describes the reduced functionality a warning implies.
	Fallback string
}

func (d Diagnostic) String() string {
	s := fmt.Sprintf("[%s] plugin %s: %s", d.Severity, d.Plugin, d.Message)
	if d.Fallback != "" {
		s += " (fallback: " + d.Fallback + ")"
	}
	return s
}

// Diagnostics is the collected findings across all plugins.
type Diagnostics []Diagnostic

// HasFatal reports whether any diagnostic is an error.
func (ds Diagnostics) HasFatal() bool {
	for _, d := range ds {
		if d.Severity == SeverityError {
			return true
		}
	}
	return false
}

// FatalFor reports whether the named plugin has an error diagnostic.
func (ds Diagnostics) FatalFor(pluginID string) bool {
	for _, d := range ds {
		if d.Plugin == pluginID && d.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Warnings returns only the warning diagnostics.
func (ds Diagnostics) Warnings() Diagnostics {
	var out Diagnostics
	for _, d := range ds {
		if d.Severity == SeverityWarning {
			out = append(out, d)
		}
	}
	return out
}

// Errors returns only the error diagnostics.
func (ds Diagnostics) Errors() Diagnostics {
	var out Diagnostics
	for _, d := range ds {
		if d.Severity == SeverityError {
			out = append(out, d)
		}
	}
	return out
}

// ValidationError wraps fatal diagnostics as an error. All plugins'
// fatal findings are reported together, never one at a time.
type ValidationError struct {
	Diagnostics Diagnostics
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	fatal := e.Diagnostics.Errors()
	var b strings.Builder
	fmt.Fprintf(&b, "plugin validation failed with %d error(s):", len(fatal))
	for _, d := range fatal {
		b.WriteString("\n  ")
		b.WriteString(d.String())
	}
	return b.String()
}
