//go:build highs && cgo && (linux || darwin) && (amd64 || arm64)

package lp

import (
	"context"

	"github.com/bartolsthoorn/gohighs/highs"
)

// HighsBackendName is the registry name of the HiGHS backend.
const HighsBackendName = "highs"

func init() {
	Register(HighsBackend{})
}

// HighsBackend solves LP and MIP models with the HiGHS solver through its
// statically linked Go bindings. HiGHS cannot be interrupted mid-solve, so
// the context deadline is passed on as HiGHS's own time limit.
type HighsBackend struct{}

// Name implements Backend.
func (HighsBackend) Name() string { return HighsBackendName }

// Solve implements Backend.
func (b HighsBackend) Solve(ctx context.Context, p *Problem, cfg *SolveConfig) (*Solution, error) {
	model := highs.Model{
		Maximize:    p.Maximize,
		Offset:      p.Offset,
		ColCosts:    p.ColCosts,
		ColLower:    p.ColLower,
		ColUpper:    p.ColUpper,
		RowLower:    p.RowLower,
		RowUpper:    p.RowUpper,
		ConstMatrix: make([]highs.Nonzero, len(p.Matrix)),
	}
	for i, nz := range p.Matrix {
		model.ConstMatrix[i] = highs.Nonzero{Row: nz.Row, Col: nz.Col, Val: nz.Val}
	}
	if p.HasIntegers {
		model.VarTypes = make([]highs.VariableType, p.NumCol)
		for i, vt := range p.VarTypes {
			if vt == Integer {
				model.VarTypes[i] = highs.Integer
			}
		}
	}

	opts := []highs.SolveOption{highs.WithOutput(cfg.Output())}
	if limit, ok := cfg.TimeLimit(ctx); ok {
		opts = append(opts, highs.WithTimeLimit(limit.Seconds()))
	}
	if gap, ok := cfg.MIPAbsGap(); ok {
		opts = append(opts, highs.WithMIPAbsGap(gap))
	}
	if gap, ok := cfg.MIPRelGap(); ok {
		opts = append(opts, highs.WithMIPRelGap(gap))
	}
	if n, ok := cfg.Threads(); ok {
		opts = append(opts, highs.WithThreads(n))
	}

	sol, err := model.Solve(opts...)
	if err != nil {
		return nil, newBackendError("Solve", b.Name(), err.Error())
	}

	out := &Solution{
		Status:  statusFromHighs(sol.Status),
		Backend: b.Name(),
	}
	if out.Status == ModelStatusOptimal {
		out.ColValues = sol.ColValues
		out.RowValues = sol.RowValues
		out.Objective = sol.Objective
	}
	return out, nil
}

func statusFromHighs(s highs.ModelStatus) ModelStatus {
	switch s {
	case highs.ModelStatusNotSet:
		return ModelStatusNotSet
	case highs.ModelStatusModelError:
		return ModelStatusModelError
	case highs.ModelStatusLoadError, highs.ModelStatusPresolveError,
		highs.ModelStatusSolveError, highs.ModelStatusPostsolveError:
		return ModelStatusSolveError
	case highs.ModelStatusModelEmpty:
		return ModelStatusModelEmpty
	case highs.ModelStatusOptimal:
		return ModelStatusOptimal
	case highs.ModelStatusInfeasible:
		return ModelStatusInfeasible
	case highs.ModelStatusUnboundedOrInfeasible:
		return ModelStatusUnboundedOrInfeasible
	case highs.ModelStatusUnbounded:
		return ModelStatusUnbounded
	case highs.ModelStatusTimeLimit:
		return ModelStatusTimeLimit
	case highs.ModelStatusIterationLimit:
		return ModelStatusIterationLimit
	default:
		return ModelStatusUnknown
	}
}
