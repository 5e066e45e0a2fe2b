package engine

import (
	"errors"
	"fmt"
)

var (
	// ErrDomain marks a state or action outside its economic domain.
	ErrDomain = errors.New("value outside domain")
	// ErrNotConverged marks a policy fixed point that hit its iteration cap or
	// the step budget of its solve.
	ErrNotConverged = errors.New("policy did not converge")
	// ErrEmptySequence is returned when asked to solve zero periods.
	ErrEmptySequence = errors.New("empty game sequence")
	// ErrShape marks vectors or periods whose agent counts disagree.
	ErrShape = errors.New("agent count mismatch")
)

// DomainError reports the agent and field that left its domain.
type DomainError struct {
	Agent int
	Field string // "t", "c" or "capital"
	Value float64
}

func (e *DomainError) Error() string {
	return fmt.Sprintf("agent %d: %s=%v: %v", e.Agent, e.Field, e.Value, ErrDomain)
}

func (e *DomainError) Unwrap() error { return ErrDomain }

// ConvergenceError reports the period whose policy kept moving, either past
// its iteration cap or when the solve ran out of steps.
type ConvergenceError struct {
	Period     int
	Iterations int     // Fixed-point iterations of Period on its current visit
	Steps      int     // Forward steps taken by the whole solve
	Divergence float64 // Largest per-agent squared residual of Period's latest refinement
}

func (e *ConvergenceError) Error() string {
	return fmt.Sprintf("period %d: %v after %d iterations, %d steps (divergence %.3g)",
		e.Period, ErrNotConverged, e.Iterations, e.Steps, e.Divergence)
}

func (e *ConvergenceError) Unwrap() error { return ErrNotConverged }

func periodError(i int, err error) error {
	return fmt.Errorf("period %d: %w", i, err)
}
