package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"math"

	"github.com/bartolsthoorn/transportlp/lp"
)

// RoundUpThreshold is the fractional part at or above which a flow is
// rounded up. Below it the flow is truncated.
const RoundUpThreshold = 0.1

// RoundAmount turns a continuous flow into a shipment amount: the integer
// part, plus one when the fractional part reaches RoundUpThreshold.
func RoundAmount(v float64) int {
	floor := math.Floor(v)
	if v-floor >= RoundUpThreshold {
		return int(math.Ceil(v))
	}
	return int(floor)
}

// Solver turns a balanced instance into a shipping plan by solving the
// transportation LP on an lp backend and rounding its flows.
type Solver struct {
	logger      *log.Logger
	verbose     bool
	integer     bool
	solveOpts   []lp.SolveOption
	backendName string
}

// Option configures a Solver.
type Option func(*Solver)

// WithLogger sets the logger used for progress messages.
func WithLogger(l *log.Logger) Option {
	return func(s *Solver) {
		s.logger = l
	}
}

// WithVerbose logs every decision variable as the model is built.
func WithVerbose(enabled bool) Option {
	return func(s *Solver) {
		s.verbose = enabled
	}
}

// WithSolveOptions passes options through to lp.Model.Solve.
func WithSolveOptions(opts ...lp.SolveOption) Option {
	return func(s *Solver) {
		s.solveOpts = append(s.solveOpts, opts...)
	}
}

// WithBackendName selects the registered lp backend.
func WithBackendName(name string) Option {
	return func(s *Solver) {
		s.backendName = name
	}
}

// WithIntegerFlows declares every flow as an integer variable. The backend
// then returns an exact integer plan and rounding has nothing left to do.
// It requires a backend with MIP support and is off by default.
func WithIntegerFlows(enabled bool) Option {
	return func(s *Solver) {
		s.integer = enabled
	}
}

// NewSolver creates a Solver.
func NewSolver(opts ...Option) *Solver {
	s := &Solver{
		logger: log.New(io.Discard, "", 0),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Solver) backend() string {
	if s.backendName == "" {
		return lp.DefaultBackend
	}
	return s.backendName
}

// VarName returns the name of the flow variable from source i to destination j.
func VarName(i, j int) string {
	return fmt.Sprintf("x[%d,%d]", i, j)
}

// BuildModel creates the transportation LP for in.
//
// Column i*n+j is the flow from source i to destination j, where n is the
// number of destinations. Rows 0..m-1 pin each source's outflow to its
// supply; rows m..m+n-1 pin each destination's inflow to its demand.
func (s *Solver) BuildModel(in *Instance) *lp.Model {
	m, n := in.NumSources(), in.NumDestinations()
	model := &lp.Model{}

	for i := 0; i < m; i++ {
		for j := 0; j < n; j++ {
			model.AddVar(VarName(i, j), 0, lp.Inf(), float64(in.Costs[i][j]))
			if s.verbose {
				s.logger.Printf("variable %s", VarName(i, j))
			}
		}
	}
	if s.integer {
		model.VarTypes = make([]lp.VariableType, m*n)
		for k := range model.VarTypes {
			model.VarTypes[k] = lp.Integer
		}
	}

	cols := make([]int, n)
	ones := make([]float64, max(m, n))
	for k := range ones {
		ones[k] = 1
	}

	for i := 0; i < m; i++ {
		for j := 0; j < n; j++ {
			cols[j] = i*n + j
		}
		model.AddNamedEqRow(fmt.Sprintf("Supply_Constraint_%d", i), cols, ones[:n], float64(in.Supplies[i]))
	}

	cols = make([]int, m)
	for j := 0; j < n; j++ {
		for i := 0; i < m; i++ {
			cols[i] = i*n + j
		}
		model.AddNamedEqRow(fmt.Sprintf("Demand_Constraint_%d", j), cols, ones[:m], float64(in.Demands[j]))
	}

	return model
}

// Solve computes a shipping plan for the balanced instance in.
//
// Any outcome other than an optimal solve, including a backend that fails or
// cannot be found, is reported as an error matching ErrNoSolution.
func (s *Solver) Solve(ctx context.Context, in *Instance) (*Allocation, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if !in.IsBalanced() {
		return nil, fmt.Errorf("%w: instance is not balanced (supply %d, demand %d)",
			ErrMalformedInput, in.TotalSupply(), in.TotalDemand())
	}

	model := s.BuildModel(in)
	s.logger.Printf("solving %dx%d transportation model (%d variables, %d constraints)",
		in.NumSources(), in.NumDestinations(), model.NumVars(), model.NumConstraints())

	opts := s.solveOpts
	if s.backendName != "" {
		opts = append([]lp.SolveOption{lp.WithBackendName(s.backendName)}, opts...)
	}

	sol, err := model.Solve(ctx, opts...)
	switch {
	case errors.Is(err, context.Canceled):
		return nil, err
	case errors.Is(err, context.DeadlineExceeded):
		return nil, &NoSolutionError{Status: lp.ModelStatusTimeLimit, Backend: s.backend()}
	case err != nil:
		return nil, &NoSolutionError{Status: lp.ModelStatusSolveError, Backend: s.backend(), Err: err}
	}
	if !sol.IsOptimal() {
		return nil, &NoSolutionError{Status: sol.Status, Backend: sol.Backend}
	}

	alloc := &Allocation{
		Objective: sol.Objective,
		Status:    sol.Status,
		Backend:   sol.Backend,
	}
	n := in.NumDestinations()
	for i := 0; i < in.NumSources(); i++ {
		for j := 0; j < n; j++ {
			amount := RoundAmount(sol.Value(i*n + j))
			if amount > 0 {
				alloc.Shipments = append(alloc.Shipments, Shipment{Source: i, Destination: j, Amount: amount})
			}
		}
	}

	s.logger.Printf("%s backend found an optimal plan: objective %g, %d shipments",
		sol.Backend, sol.Objective, alloc.Len())
	return alloc, nil
}
