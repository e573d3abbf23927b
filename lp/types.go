package lp

import "fmt"

// ----------------------------------------------------------------------------
// Types
// ----------------------------------------------------------------------------

// VariableType specifies whether a variable is continuous or integer.
type VariableType int

const (
	// Continuous indicates a continuous variable (default).
	Continuous VariableType = iota
	// Integer indicates an integer variable.
	Integer
)

// String returns a human-readable representation of the variable type.
func (v VariableType) String() string {
	switch v {
	case Continuous:
		return "Continuous"
	case Integer:
		return "Integer"
	default:
		return "Unknown"
	}
}

// ModelStatus represents the status of a solved model.
type ModelStatus int

const (
	// ModelStatusNotSet indicates the model status has not been set.
	ModelStatusNotSet ModelStatus = iota
	// ModelStatusModelError indicates an error in the model.
	ModelStatusModelError
	// ModelStatusSolveError indicates an abnormal termination of the solver.
	ModelStatusSolveError
	// ModelStatusModelEmpty indicates the model is empty.
	ModelStatusModelEmpty
	// ModelStatusOptimal indicates an optimal solution was found.
	ModelStatusOptimal
	// ModelStatusInfeasible indicates the model is infeasible.
	ModelStatusInfeasible
	// ModelStatusUnboundedOrInfeasible indicates the model is unbounded or infeasible.
	ModelStatusUnboundedOrInfeasible
	// ModelStatusUnbounded indicates the model is unbounded.
	ModelStatusUnbounded
	// ModelStatusTimeLimit indicates the time limit was reached.
	ModelStatusTimeLimit
	// ModelStatusIterationLimit indicates the iteration limit was reached.
	ModelStatusIterationLimit
	// ModelStatusUnknown indicates an unknown status.
	ModelStatusUnknown
)

// String returns a human-readable representation of the model status.
func (s ModelStatus) String() string {
	names := []string{
		"NotSet", "ModelError", "SolveError", "ModelEmpty", "Optimal",
		"Infeasible", "UnboundedOrInfeasible", "Unbounded",
		"TimeLimit", "IterationLimit", "Unknown",
	}
	if int(s) >= 0 && int(s) < len(names) {
		return names[s]
	}
	return "Unknown"
}

// IsOptimal returns true if the model was solved to optimality.
func (s ModelStatus) IsOptimal() bool {
	return s == ModelStatusOptimal
}

// IsAbnormal returns true if the solver stopped without classifying the model.
func (s ModelStatus) IsAbnormal() bool {
	switch s {
	case ModelStatusOptimal, ModelStatusInfeasible,
		ModelStatusUnboundedOrInfeasible, ModelStatusUnbounded:
		return false
	default:
		return true
	}
}

// Nonzero represents a non-zero entry in a sparse matrix.
// Row and Col are zero-indexed.
type Nonzero struct {
	Row int
	Col int
	Val float64
}

// ----------------------------------------------------------------------------
// Errors
// ----------------------------------------------------------------------------

// Error represents a solver error with context about which operation failed.
type Error struct {
	Op      string // Operation that failed (e.g., "Solve", "Lookup")
	Backend string // Backend that reported the failure, if any
	Msg     string // Additional context
}

func (e *Error) Error() string {
	if e.Backend != "" {
		return fmt.Sprintf("lp: %s failed on %s backend: %s", e.Op, e.Backend, e.Msg)
	}
	return fmt.Sprintf("lp: %s failed: %s", e.Op, e.Msg)
}

// newErrorMsg creates a new Error with an additional message.
func newErrorMsg(op, msg string) error {
	return &Error{Op: op, Msg: msg}
}

// newBackendError creates a new Error attributed to a backend.
func newBackendError(op, backend, msg string) error {
	return &Error{Op: op, Backend: backend, Msg: msg}
}
