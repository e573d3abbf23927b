package transport

import (
	"fmt"

	"github.com/bartolsthoorn/transportlp/lp"
	"github.com/pkg/errors"
)

var (
	// ErrIO is matched by errors reading the instance or writing the report.
	ErrIO = errors.New("transport: i/o failure")

	// ErrMalformedInput is matched by errors parsing an instance file.
	ErrMalformedInput = errors.New("transport: malformed input")

	// ErrNoSolution is matched when the solver did not report an optimal
	// solution. It is an expected outcome, not a crash.
	ErrNoSolution = errors.New("transport: no optimal solution found")
)

// IOError records a failed file operation.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("transport: %s %s: %v", e.Op, e.Path, e.Err)
}

// Unwrap returns the underlying error.
func (e *IOError) Unwrap() error { return e.Err }

// Is reports whether target is ErrIO.
func (e *IOError) Is(target error) bool { return target == ErrIO }

// ParseError records where an instance file stopped making sense.
// Line is 1-based.
type ParseError struct {
	Line int
	Msg  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("transport: malformed input at line %d: %s", e.Line, e.Msg)
}

// Is reports whether target is ErrMalformedInput.
func (e *ParseError) Is(target error) bool { return target == ErrMalformedInput }

// NoSolutionError carries the solver status that was not optimal.
type NoSolutionError struct {
	Status  lp.ModelStatus
	Backend string
	Err     error
}

func (e *NoSolutionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("transport: no optimal solution found (%s backend): %v", e.Backend, e.Err)
	}
	return fmt.Sprintf("transport: no optimal solution found (%s backend, status %s)", e.Backend, e.Status)
}

// Unwrap returns the backend error, if any.
func (e *NoSolutionError) Unwrap() error { return e.Err }

// Is reports whether target is ErrNoSolution.
func (e *NoSolutionError) Is(target error) bool { return target == ErrNoSolution }
