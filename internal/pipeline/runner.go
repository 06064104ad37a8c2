// Package pipeline runs the ordered list of generation phases. Phases
// declare dependencies on prior phases and the keys they write; the
// runner orders them by topological sort at construction time and
// threads a write-once context through the chain.
package pipeline

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// RunFunc executes one phase and returns the values for its declared
// output keys.
type RunFunc func(ctx context.Context, gc *Context) (map[string]any, error)

// Phase is one ordered step of the generation pipeline.
type Phase struct {
	ID string

	// Deps lists phase identifiers that must complete first.
	Deps []string

	// Outputs lists the context keys this phase is allowed to write.
	Outputs []string

	// ShouldRun decides whether the phase executes for this run. A nil
	// predicate means always run. A false result marks the phase
	// Skipped, which is not a failure.
	ShouldRun func(gc *Context) bool

	Run RunFunc
}

// Status is the lifecycle state of one phase within a run.
type Status int

const (
	StatusScheduled Status = iota
	StatusRunning
	StatusCompleted
	StatusSkipped
	StatusFailed
)

// String returns the string representation of the status.
func (s Status) String() string {
	switch s {
	case StatusScheduled:
		return "scheduled"
	case StatusRunning:
		return "running"
	case StatusCompleted:
		return "completed"
	case StatusSkipped:
		return "skipped"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// RunState is the lifecycle state of the run as a whole.
type RunState int

const (
	RunPending RunState = iota
	RunRunning
	RunCompleted
	RunFailed
)

// String returns the string representation of the run state.
func (s RunState) String() string {
	switch s {
	case RunPending:
		return "pending"
	case RunRunning:
		return "running"
	case RunCompleted:
		return "completed"
	case RunFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Runner executes a fixed phase list in dependency order.
type Runner struct {
	order    []*Phase
	statuses map[string]Status
	state    RunState
	logger   *zap.Logger
}

// NewRunner validates the phase list and computes the execution order.
// A duplicate identifier, a dependency on an unregistered phase, or a
// dependency cycle is rejected here with a *PhaseRegistrationError,
// never discovered mid-run. The computed order is stable: ties between
// independent phases are broken by registration order.
func NewRunner(phases []*Phase, logger *zap.Logger) (*Runner, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	byID := make(map[string]*Phase, len(phases))
	for _, p := range phases {
		if _, dup := byID[p.ID]; dup {
			return nil, &PhaseRegistrationError{PhaseID: p.ID, Duplicate: true}
		}
		byID[p.ID] = p
	}
	for _, p := range phases {
		for _, dep := range p.Deps {
			if _, ok := byID[dep]; !ok {
				return nil, &PhaseRegistrationError{PhaseID: p.ID, Missing: dep}
			}
		}
	}

	order, err := sortPhases(phases)
	if err != nil {
		return nil, err
	}

	statuses := make(map[string]Status, len(phases))
	for _, p := range phases {
		statuses[p.ID] = StatusScheduled
	}

	return &Runner{
		order:    order,
		statuses: statuses,
		state:    RunPending,
		logger:   logger,
	}, nil
}

// sortPhases is Kahn's algorithm with registration order as the tie
// breaker, so the same registration always yields the same execution
// order (a correctness property, not an optimization).
func sortPhases(phases []*Phase) ([]*Phase, error) {
	indegree := make(map[string]int, len(phases))
	for _, p := range phases {
		indegree[p.ID] = len(p.Deps)
	}

	order := make([]*Phase, 0, len(phases))
	done := make(map[string]bool, len(phases))

	for len(order) < len(phases) {
		progressed := false
		for _, p := range phases {
			if done[p.ID] || indegree[p.ID] != 0 {
				continue
			}
			done[p.ID] = true
			order = append(order, p)
			progressed = true
			for _, q := range phases {
				for _, dep := range q.Deps {
					if dep == p.ID {
						indegree[q.ID]--
					}
				}
			}
		}
		if !progressed {
			return nil, &PhaseRegistrationError{Cycle: remainingIDs(phases, done)}
		}
	}

	return order, nil
}

func remainingIDs(phases []*Phase, done map[string]bool) []string {
	var ids []string
	for _, p := range phases {
		if !done[p.ID] {
			ids = append(ids, p.ID)
		}
	}
	return ids
}

// Order returns phase identifiers in execution order.
func (r *Runner) Order() []string {
	ids := make([]string, len(r.order))
	for i, p := range r.order {
		ids[i] = p.ID
	}
	return ids
}

// Status returns the status of one phase.
func (r *Runner) Status(id string) Status {
	return r.statuses[id]
}

// State returns the run state.
func (r *Runner) State() RunState {
	return r.state
}

// Run executes all phases in order against the generation context.
// Cancellation is cooperative and coarse-grained: the caller's context
// is checked before each phase starts, never mid-phase. A failing
// phase halts the run; no partial output from it is merged.
func (r *Runner) Run(ctx context.Context, gc *Context) error {
	r.state = RunRunning

	for _, p := range r.order {
		if err := ctx.Err(); err != nil {
			r.state = RunFailed
			return fmt.Errorf("run aborted before phase %s: %w", p.ID, err)
		}

		if p.ShouldRun != nil && !p.ShouldRun(gc) {
			r.statuses[p.ID] = StatusSkipped
			r.logger.Debug("phase skipped", zap.String("phase", p.ID))
			continue
		}

		r.statuses[p.ID] = StatusRunning
		r.logger.Debug("phase running", zap.String("phase", p.ID))

		out, err := p.Run(ctx, gc)
		if err != nil {
			r.statuses[p.ID] = StatusFailed
			r.state = RunFailed
			return &PhaseExecutionError{PhaseID: p.ID, Err: err}
		}

		if err := r.merge(p, gc, out); err != nil {
			r.statuses[p.ID] = StatusFailed
			r.state = RunFailed
			return &PhaseExecutionError{PhaseID: p.ID, Err: err}
		}

		r.statuses[p.ID] = StatusCompleted
	}

	r.state = RunCompleted
	return nil
}

// merge writes a phase's returned values into the context, rejecting
// keys the phase did not declare.
func (r *Runner) merge(p *Phase, gc *Context, out map[string]any) error {
	declared := make(map[string]bool, len(p.Outputs))
	for _, key := range p.Outputs {
		declared[key] = true
	}
	for key, v := range out {
		if !declared[key] {
			return fmt.Errorf("wrote undeclared context key %q", key)
		}
		if err := gc.set(key, v); err != nil {
			return err
		}
	}
	return nil
}
