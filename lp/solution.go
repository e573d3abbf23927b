package lp

// Solution contains the results from solving an optimization model.
type Solution struct {
	// Status indicates the outcome of the solve.
	Status ModelStatus

	// Backend is the name of the backend that produced the solution.
	Backend string

	// ColValues contains the primal solution values for each column (variable).
	ColValues []float64

	// RowValues contains the activity of each row (constraint).
	RowValues []float64

	// Objective is the value of the objective function at the solution.
	Objective float64
}

// IsOptimal returns true if the solution is optimal.
func (s *Solution) IsOptimal() bool {
	return s.Status == ModelStatusOptimal
}

// IsInfeasible returns true if the model is infeasible.
func (s *Solution) IsInfeasible() bool {
	return s.Status == ModelStatusInfeasible ||
		s.Status == ModelStatusUnboundedOrInfeasible
}

// IsUnbounded returns true if the model is unbounded.
func (s *Solution) IsUnbounded() bool {
	return s.Status == ModelStatusUnbounded ||
		s.Status == ModelStatusUnboundedOrInfeasible
}

// IsTimeLimit returns true if the solve terminated due to time limit.
func (s *Solution) IsTimeLimit() bool {
	return s.Status == ModelStatusTimeLimit
}

// Value returns the solution value for a variable by index.
// Returns 0 if the index is out of range.
func (s *Solution) Value(index int) float64 {
	if index < 0 || index >= len(s.ColValues) {
		return 0
	}
	return s.ColValues[index]
}

// rowActivities computes A·x for numRow rows given normalized nonzeros.
func rowActivities(numRow int, nz []Nonzero, x []float64) []float64 {
	rows := make([]float64, numRow)
	for _, n := range nz {
		if n.Col < len(x) {
			rows[n.Row] += n.Val * x[n.Col]
		}
	}
	return rows
}
