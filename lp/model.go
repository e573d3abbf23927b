package lp

import (
	"context"
	"math"
	"strconv"
	"time"
)

// Model represents a solver-neutral linear optimization model.
// It provides a convenient way to define LP and MIP problems
// without dealing with any particular backend's API.
//
// The model solves problems of the form:
//
//	Minimize (or Maximize): ColCosts · x + Offset
//	Subject to:             RowLower ≤ A·x ≤ RowUpper
//	And:                    ColLower ≤ x ≤ ColUpper
//
// Where A is the constraint matrix specified by ConstMatrix.
type Model struct {
	// Maximize indicates whether to maximize (true) or minimize (false).
	Maximize bool

	// Offset is a constant added to the objective function.
	Offset float64

	// ColCosts are the objective function coefficients for each variable.
	ColCosts []float64

	// ColLower are the lower bounds for each variable.
	// If empty, defaults to -∞.
	ColLower []float64

	// ColUpper are the upper bounds for each variable.
	// If empty, defaults to +∞.
	ColUpper []float64

	// RowLower are the lower bounds for each constraint.
	// Use NegInf() for no lower bound.
	RowLower []float64

	// RowUpper are the upper bounds for each constraint.
	// Use Inf() for no upper bound.
	RowUpper []float64

	// ConstMatrix defines the constraint matrix as a list of non-zero entries.
	// Each entry specifies (row, column, value).
	ConstMatrix []Nonzero

	// VarTypes specifies the type of each variable (continuous or integer).
	// If empty, all variables are treated as continuous.
	VarTypes []VariableType

	// ColNames optionally names each variable, e.g. "x[0,1]".
	ColNames []string

	// RowNames optionally names each constraint, e.g. "Supply_Constraint_0".
	RowNames []string
}

// AddVar appends a named variable with the given bounds and objective
// coefficient and returns its column index.
func (m *Model) AddVar(name string, lower, upper, cost float64) int {
	col := len(m.ColCosts)
	if len(m.ColNames) < col {
		m.ColNames = append(m.ColNames, make([]string, col-len(m.ColNames))...)
	}
	m.ColCosts = append(m.ColCosts, cost)
	m.ColLower = append(m.ColLower, lower)
	m.ColUpper = append(m.ColUpper, upper)
	m.ColNames = append(m.ColNames, name)
	return col
}

// AddDenseRow adds a constraint to the model using a dense coefficient vector.
// Zero coefficients are automatically filtered out.
//
// Example:
//
//	model.AddDenseRow(1.0, []float64{1.0, 2.0, 0.0, 3.0}, 10.0)
//	// Adds constraint: 1.0 <= x0 + 2*x1 + 3*x3 <= 10.0
func (m *Model) AddDenseRow(lower float64, coeffs []float64, upper float64) {
	row := len(m.RowLower)
	m.RowLower = append(m.RowLower, lower)
	m.RowUpper = append(m.RowUpper, upper)

	for col, val := range coeffs {
		if val != 0.0 {
			m.ConstMatrix = append(m.ConstMatrix, Nonzero{
				Row: row,
				Col: col,
				Val: val,
			})
		}
	}
}

// AddSparseRow adds a constraint using sparse coefficient representation.
//
// Example:
//
//	model.AddSparseRow(1.0, []int{0, 1, 3}, []float64{1.0, 2.0, 3.0}, 10.0)
//	// Adds constraint: 1.0 <= x0 + 2*x1 + 3*x3 <= 10.0
func (m *Model) AddSparseRow(lower float64, cols []int, vals []float64, upper float64) {
	row := len(m.RowLower)
	m.RowLower = append(m.RowLower, lower)
	m.RowUpper = append(m.RowUpper, upper)

	for i, col := range cols {
		if vals[i] != 0.0 {
			m.ConstMatrix = append(m.ConstMatrix, Nonzero{
				Row: row,
				Col: col,
				Val: vals[i],
			})
		}
	}
}

// AddNamedEqRow adds a named equality constraint over the given columns:
// sum(vals[k] * x[cols[k]]) = rhs. It returns the row index.
func (m *Model) AddNamedEqRow(name string, cols []int, vals []float64, rhs float64) int {
	if len(m.RowNames) < len(m.RowLower) {
		m.RowNames = append(m.RowNames, make([]string, len(m.RowLower)-len(m.RowNames))...)
	}
	row := len(m.RowLower)
	m.AddSparseRow(rhs, cols, vals, rhs)
	m.RowNames = append(m.RowNames, name)
	return row
}

// AddEqRow adds an equality constraint: sum(coeffs * x) = rhs.
func (m *Model) AddEqRow(coeffs []float64, rhs float64) {
	m.AddDenseRow(rhs, coeffs, rhs)
}

// AddLeRow adds a less-than-or-equal constraint: sum(coeffs * x) <= rhs.
func (m *Model) AddLeRow(coeffs []float64, rhs float64) {
	m.AddDenseRow(math.Inf(-1), coeffs, rhs)
}

// AddGeRow adds a greater-than-or-equal constraint: sum(coeffs * x) >= rhs.
func (m *Model) AddGeRow(coeffs []float64, rhs float64) {
	m.AddDenseRow(rhs, coeffs, math.Inf(1))
}

// NumVars returns the number of variables in the model.
func (m *Model) NumVars() int {
	_, maxCol := maxRowCol(m.ConstMatrix)
	n := maxCol + 1
	for _, l := range []int{len(m.ColCosts), len(m.ColLower), len(m.ColUpper), len(m.VarTypes)} {
		if l > n {
			n = l
		}
	}
	return n
}

// NumConstraints returns the number of constraints in the model.
func (m *Model) NumConstraints() int {
	maxRow, _ := maxRowCol(m.ConstMatrix)
	n := maxRow + 1
	for _, l := range []int{len(m.RowLower), len(m.RowUpper)} {
		if l > n {
			n = l
		}
	}
	return n
}

// ColName returns the name of column col, or "" if it has none.
func (m *Model) ColName(col int) string {
	if col < 0 || col >= len(m.ColNames) {
		return ""
	}
	return m.ColNames[col]
}

// RowName returns the name of row row, or "" if it has none.
func (m *Model) RowName(row int) string {
	if row < 0 || row >= len(m.RowNames) {
		return ""
	}
	return m.RowNames[row]
}

// Problem is a Model with every default filled in and its constraint matrix
// normalized. Backends receive a Problem rather than a Model.
type Problem struct {
	NumCol, NumRow int

	Maximize bool
	Offset   float64

	ColCosts, ColLower, ColUpper []float64
	RowLower, RowUpper           []float64

	// Matrix is sorted by row then column with duplicates merged.
	Matrix []Nonzero

	// VarTypes always has NumCol entries.
	VarTypes []VariableType

	// HasIntegers reports whether any variable is not continuous.
	HasIntegers bool
}

// Prepare validates the model and fills in defaults.
func (m *Model) Prepare() (*Problem, error) {
	numCol := m.NumVars()
	numRow := m.NumConstraints()

	colCosts, err := expandSlice(numCol, m.ColCosts, 0.0)
	if err != nil {
		return nil, newErrorMsg("Prepare", "inconsistent ColCosts length")
	}
	colLower, err := expandSlice(numCol, m.ColLower, math.Inf(-1))
	if err != nil {
		return nil, newErrorMsg("Prepare", "inconsistent ColLower length")
	}
	colUpper, err := expandSlice(numCol, m.ColUpper, math.Inf(1))
	if err != nil {
		return nil, newErrorMsg("Prepare", "inconsistent ColUpper length")
	}
	rowLower, err := expandSlice(numRow, m.RowLower, math.Inf(-1))
	if err != nil {
		return nil, newErrorMsg("Prepare", "inconsistent RowLower length")
	}
	rowUpper, err := expandSlice(numRow, m.RowUpper, math.Inf(1))
	if err != nil {
		return nil, newErrorMsg("Prepare", "inconsistent RowUpper length")
	}

	matrix, err := normalizeNonzeros(m.ConstMatrix)
	if err != nil {
		return nil, err
	}

	varTypes := make([]VariableType, numCol)
	copy(varTypes, m.VarTypes)
	hasIntegers := false
	for _, vt := range varTypes {
		if vt != Continuous {
			hasIntegers = true
			break
		}
	}

	for j := 0; j < numCol; j++ {
		if colLower[j] > colUpper[j] {
			return nil, newErrorMsg("Prepare", "column "+m.describeCol(j)+" has lower bound above upper bound")
		}
	}

	return &Problem{
		NumCol:      numCol,
		NumRow:      numRow,
		Maximize:    m.Maximize,
		Offset:      m.Offset,
		ColCosts:    colCosts,
		ColLower:    colLower,
		ColUpper:    colUpper,
		RowLower:    rowLower,
		RowUpper:    rowUpper,
		Matrix:      matrix,
		VarTypes:    varTypes,
		HasIntegers: hasIntegers,
	}, nil
}

func (m *Model) describeCol(col int) string {
	if name := m.ColName(col); name != "" {
		return name
	}
	return "#" + strconv.Itoa(col)
}

// Solve builds and solves the model on the configured backend, returning
// the solution.
//
// A non-optimal outcome (infeasible, unbounded, time limit) is reported through
// Solution.Status with a nil error. The error is reserved for invalid models,
// missing backends and backend failures.
//
// Options can be set using SolveOptions:
//
//	solution, err := model.Solve(ctx,
//		lp.WithBackendName("highs"),
//		lp.WithTimeLimit(time.Minute),
//		lp.WithOutput(false),
//	)
func (m *Model) Solve(ctx context.Context, opts ...SolveOption) (*Solution, error) {
	cfg := defaultSolveConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	backend, err := cfg.resolveBackend()
	if err != nil {
		return nil, err
	}

	p, err := m.Prepare()
	if err != nil {
		return nil, err
	}

	if p.NumCol == 0 {
		return &Solution{Status: ModelStatusOptimal, Backend: backend.Name(), Objective: p.Offset}, nil
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sol, err := backend.Solve(ctx, p, cfg)
	if err != nil {
		return nil, err
	}
	if sol.Backend == "" {
		sol.Backend = backend.Name()
	}
	if sol.IsOptimal() && sol.RowValues == nil {
		sol.RowValues = rowActivities(p.NumRow, p.Matrix, sol.ColValues)
	}
	return sol, nil
}

// SolveOption configures the solver behavior.
type SolveOption func(*SolveConfig)

// SolveConfig collects the options passed to Solve. Backends read it through
// its accessor methods.
type SolveConfig struct {
	backend     Backend
	backendName string
	output      *bool
	timeLimit   *time.Duration
	mipAbsGap   *float64
	mipRelGap   *float64
	threads     *int
	tolerance   *float64
}

func defaultSolveConfig() *SolveConfig {
	return &SolveConfig{}
}

func (c *SolveConfig) resolveBackend() (Backend, error) {
	if c.backend != nil {
		return c.backend, nil
	}
	name := c.backendName
	if name == "" {
		name = DefaultBackend
	}
	return Lookup(name)
}

// Output reports whether backend logging was requested.
func (c *SolveConfig) Output() bool {
	return c.output != nil && *c.output
}

// TimeLimit returns the effective time limit: the configured limit or the
// time left before ctx's deadline, whichever is shorter.
func (c *SolveConfig) TimeLimit(ctx context.Context) (time.Duration, bool) {
	limit, ok := time.Duration(0), false
	if c.timeLimit != nil {
		limit, ok = *c.timeLimit, true
	}
	if deadline, has := ctx.Deadline(); has {
		left := time.Until(deadline)
		if !ok || left < limit {
			limit, ok = left, true
		}
	}
	if ok && limit < 0 {
		limit = 0
	}
	return limit, ok
}

// MIPAbsGap returns the absolute MIP gap tolerance, if set.
func (c *SolveConfig) MIPAbsGap() (float64, bool) {
	if c.mipAbsGap == nil {
		return 0, false
	}
	return *c.mipAbsGap, true
}

// MIPRelGap returns the relative MIP gap tolerance, if set.
func (c *SolveConfig) MIPRelGap() (float64, bool) {
	if c.mipRelGap == nil {
		return 0, false
	}
	return *c.mipRelGap, true
}

// Threads returns the requested thread count, if set.
func (c *SolveConfig) Threads() (int, bool) {
	if c.threads == nil {
		return 0, false
	}
	return *c.threads, true
}

// Tolerance returns the optimality tolerance, or def if unset.
func (c *SolveConfig) Tolerance(def float64) float64 {
	if c.tolerance == nil {
		return def
	}
	return *c.tolerance
}

// WithBackend solves on the given backend instead of a registered one.
func WithBackend(b Backend) SolveOption {
	return func(c *SolveConfig) {
		c.backend = b
	}
}

// WithBackendName selects a registered backend by name.
func WithBackendName(name string) SolveOption {
	return func(c *SolveConfig) {
		c.backendName = name
	}
}

// WithOutput enables or disables solver output.
func WithOutput(enabled bool) SolveOption {
	return func(c *SolveConfig) {
		c.output = &enabled
	}
}

// WithTimeLimit bounds the wall-clock time of a solve.
func WithTimeLimit(d time.Duration) SolveOption {
	return func(c *SolveConfig) {
		c.timeLimit = &d
	}
}

// WithMIPAbsGap sets the absolute MIP gap tolerance.
func WithMIPAbsGap(gap float64) SolveOption {
	return func(c *SolveConfig) {
		c.mipAbsGap = &gap
	}
}

// WithMIPRelGap sets the relative MIP gap tolerance.
func WithMIPRelGap(gap float64) SolveOption {
	return func(c *SolveConfig) {
		c.mipRelGap = &gap
	}
}

// WithThreads sets the number of threads to use.
func WithThreads(n int) SolveOption {
	return func(c *SolveConfig) {
		c.threads = &n
	}
}

// WithTolerance sets the optimality tolerance used by backends that take one.
func WithTolerance(tol float64) SolveOption {
	return func(c *SolveConfig) {
		c.tolerance = &tol
	}
}
