package pipeline

import (
	"fmt"
	"strings"
)

// PhaseRegistrationError reports an invalid phase list: a dependency on
// an unregistered phase, a duplicate identifier, or a dependency cycle.
// It is returned at construction time, before any phase can run.
type PhaseRegistrationError struct {
	PhaseID   string
	Missing   string
	Duplicate bool
	Cycle     []string
}

// Error implements the error interface.
func (e *PhaseRegistrationError) Error() string {
	if len(e.Cycle) > 0 {
		return fmt.Sprintf("phase dependency cycle: %s", strings.Join(e.Cycle, " -> "))
	}
	if e.Duplicate {
		return fmt.Sprintf("duplicate phase identifier: %s", e.PhaseID)
	}
	if e.Missing != "" {
		return fmt.Sprintf("phase %s depends on unregistered phase %s", e.PhaseID, e.Missing)
	}
	return fmt.Sprintf("invalid phase registration: %s", e.PhaseID)
}

// PhaseExecutionError reports a failed phase. The run halts and no
// partial output from the failed phase is merged into the context.
type PhaseExecutionError struct {
	PhaseID string
	Err     error
}

// Error implements the error interface.
func (e *PhaseExecutionError) Error() string {
	return fmt.Sprintf("phase %s failed: %v", e.PhaseID, e.Err)
}

// Unwrap returns the original cause.
func (e *PhaseExecutionError) Unwrap() error {
	return e.Err
}
