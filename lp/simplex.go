package lp

import (
	"context"
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	convexlp "gonum.org/v1/gonum/optimize/convex/lp"
)

// SimplexBackendName is the registry name of the gonum simplex backend.
const SimplexBackendName = "simplex"

const (
	// defaultSimplexTol is the reduced-cost tolerance handed to gonum.
	defaultSimplexTol = 1e-10
	// rankCondLimit mirrors the condition number gonum uses to decide that a
	// set of columns is linearly dependent.
	rankCondLimit = 1e12
	// residualTol bounds the violation allowed on rows dropped as redundant.
	residualTol = 1e-6
)

func init() {
	Register(SimplexBackend{})
}

// SimplexBackend solves continuous models with gonum's dense simplex
// implementation. It is pure Go and always available.
//
// Models are rewritten into the standard form gonum expects,
//
//	minimize cᵀy  s.t.  A·y = b,  y ≥ 0,
//
// by shifting finite lower bounds, mirroring variables that only have an
// upper bound, splitting free variables, and adding slack or surplus
// columns for inequality rows and finite upper bounds. Rows that are linear
// combinations of others are removed before solving because gonum requires
// A to have full row rank.
//
// gonum's simplex cannot be interrupted. When ctx is done Solve returns
// promptly, but the worker goroutine keeps running until the simplex itself
// finishes, so an abandoned solve still holds its CPU and memory until then.
type SimplexBackend struct{}

// Name implements Backend.
func (SimplexBackend) Name() string { return SimplexBackendName }

// term maps one standard-form column back onto an original variable.
type term struct {
	col  int
	sign float64
}

// standardForm is a Problem rewritten as min cᵀy, A·y = b, y ≥ 0.
type standardForm struct {
	c    []float64
	rows [][]float64
	b    []float64

	// For original column j: x_j = shift[j] + Σ sign·y[col].
	shift []float64
	terms [][]term

	infeasible bool
}

// Solve implements Backend.
func (s SimplexBackend) Solve(ctx context.Context, p *Problem, cfg *SolveConfig) (*Solution, error) {
	if p.HasIntegers {
		return nil, newBackendError("Solve", s.Name(), "integer variables are not supported")
	}

	if limit, ok := cfg.TimeLimit(ctx); ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, limit)
		defer cancel()
	}

	sf := toStandardForm(p)
	if sf.infeasible {
		return &Solution{Status: ModelStatusInfeasible, Backend: s.Name()}, nil
	}

	status, y, err := s.solveStandard(ctx, sf, cfg.Tolerance(defaultSimplexTol))
	if err != nil {
		return nil, err
	}
	if status != ModelStatusOptimal {
		return &Solution{Status: status, Backend: s.Name()}, nil
	}

	x := make([]float64, p.NumCol)
	for j := range x {
		x[j] = sf.shift[j]
		for _, t := range sf.terms[j] {
			x[j] += t.sign * y[t.col]
		}
	}

	return &Solution{
		Status:    ModelStatusOptimal,
		Backend:   s.Name(),
		ColValues: x,
		Objective: floats.Dot(p.ColCosts, x) + p.Offset,
	}, nil
}

// solveStandard removes zero columns and redundant rows, runs gonum's
// simplex and expands the result back to every standard-form column.
func (s SimplexBackend) solveStandard(ctx context.Context, sf *standardForm, tol float64) (ModelStatus, []float64, error) {
	n := len(sf.c)
	y := make([]float64, n)

	// Columns without any nonzero sit at zero unless they improve the
	// objective without limit.
	keepCols := make([]int, 0, n)
	for j := 0; j < n; j++ {
		used := false
		for _, row := range sf.rows {
			if row[j] != 0 {
				used = true
				break
			}
		}
		if used {
			keepCols = append(keepCols, j)
		} else if sf.c[j] < 0 {
			return ModelStatusUnbounded, nil, nil
		}
	}

	rows := make([][]float64, 0, len(sf.rows))
	b := make([]float64, 0, len(sf.b))
	for i, row := range sf.rows {
		reduced := make([]float64, len(keepCols))
		zero := true
		for k, j := range keepCols {
			reduced[k] = row[j]
			if row[j] != 0 {
				zero = false
			}
		}
		if zero {
			if math.Abs(sf.b[i]) > residualTol {
				return ModelStatusInfeasible, nil, nil
			}
			continue
		}
		rows = append(rows, reduced)
		b = append(b, sf.b[i])
	}

	if len(keepCols) == 0 {
		return ModelStatusOptimal, y, nil
	}

	independent, dropped := independentRows(rows)

	m := len(independent)
	data := make([]float64, 0, m*len(keepCols))
	rhs := make([]float64, m)
	for k, i := range independent {
		data = append(data, rows[i]...)
		rhs[k] = b[i]
	}
	A := mat.NewDense(m, len(keepCols), data)
	c := make([]float64, len(keepCols))
	for k, j := range keepCols {
		c[k] = sf.c[j]
	}

	status, opt, err := runSimplex(ctx, s.Name(), c, A, rhs, tol)
	if err != nil || status != ModelStatusOptimal {
		return status, nil, err
	}

	for _, i := range dropped {
		activity := floats.Dot(rows[i], opt)
		if math.Abs(activity-b[i]) > residualTol*math.Max(1, math.Abs(b[i])) {
			return ModelStatusInfeasible, nil, nil
		}
	}

	for k, j := range keepCols {
		y[j] = opt[k]
	}
	return ModelStatusOptimal, y, nil
}

type simplexResult struct {
	x   []float64
	err error
}

// runSimplex calls gonum's Simplex on a worker goroutine so that a done
// context can abandon the wait. An abandoned worker runs to completion in the
// background; no worker is started once ctx is already done.
func runSimplex(ctx context.Context, backend string, c []float64, A mat.Matrix, b []float64, tol float64) (ModelStatus, []float64, error) {
	if err := ctx.Err(); err != nil {
		return contextStatus(err)
	}

	done := make(chan simplexResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- simplexResult{err: newBackendError("Solve", backend, fmt.Sprint(r))}
			}
		}()
		_, x, err := convexlp.Simplex(c, A, b, tol, nil)
		done <- simplexResult{x: x, err: err}
	}()

	select {
	case <-ctx.Done():
		return contextStatus(ctx.Err())
	case res := <-done:
		var lpErr *Error
		switch {
		case res.err == nil:
			return ModelStatusOptimal, res.x, nil
		case errors.As(res.err, &lpErr):
			return ModelStatusSolveError, nil, res.err
		case errors.Is(res.err, convexlp.ErrInfeasible):
			return ModelStatusInfeasible, nil, nil
		case errors.Is(res.err, convexlp.ErrUnbounded):
			return ModelStatusUnbounded, nil, nil
		default:
			return ModelStatusSolveError, nil, nil
		}
	}
}

func contextStatus(err error) (ModelStatus, []float64, error) {
	if errors.Is(err, context.DeadlineExceeded) {
		return ModelStatusTimeLimit, nil, nil
	}
	return ModelStatusNotSet, nil, err
}

// independentRows partitions rows into a linearly independent subset and
// the rows that are combinations of it, preserving row order.
func independentRows(rows [][]float64) (independent, dropped []int) {
	if len(rows) == 0 {
		return nil, nil
	}
	n := len(rows[0])
	for i := range rows {
		if len(independent) == n {
			dropped = append(dropped, i)
			continue
		}
		k := len(independent) + 1
		data := make([]float64, 0, k*n)
		for _, r := range independent {
			data = append(data, rows[r]...)
		}
		data = append(data, rows[i]...)
		if mat.Cond(mat.NewDense(k, n, data), 2) > rankCondLimit {
			dropped = append(dropped, i)
			continue
		}
		independent = append(independent, i)
	}
	return independent, dropped
}

// toStandardForm rewrites p as min cᵀy, A·y = b, y ≥ 0.
func toStandardForm(p *Problem) *standardForm {
	sf := &standardForm{
		shift: make([]float64, p.NumCol),
		terms: make([][]term, p.NumCol),
	}

	sign := 1.0
	if p.Maximize {
		sign = -1.0
	}

	newCol := func(cost float64) int {
		sf.c = append(sf.c, cost)
		return len(sf.c) - 1
	}

	// Bound rows on y are collected and appended after the model rows.
	type boundRow struct {
		col int
		rhs float64
	}
	var upperRows []boundRow

	for j := 0; j < p.NumCol; j++ {
		l, u := p.ColLower[j], p.ColUpper[j]
		cost := sign * p.ColCosts[j]
		switch {
		case !isNegInf(l):
			sf.shift[j] = l
			y := newCol(cost)
			sf.terms[j] = []term{{col: y, sign: 1}}
			if !isPosInf(u) {
				upperRows = append(upperRows, boundRow{col: y, rhs: u - l})
			}
		case !isPosInf(u):
			sf.shift[j] = u
			y := newCol(-cost)
			sf.terms[j] = []term{{col: y, sign: -1}}
		default:
			pos := newCol(cost)
			neg := newCol(-cost)
			sf.terms[j] = []term{{col: pos, sign: 1}, {col: neg, sign: -1}}
		}
	}

	// Model rows expressed over y, with the constant part moved to the bounds.
	numY := len(sf.c)
	modelRows := denseRows(p.NumRow, p.NumCol, p.Matrix)
	type pendingRow struct {
		coeffs   []float64
		rhs      float64
		slackDir float64 // 0 for equality, +1 slack, -1 surplus
	}
	var pending []pendingRow

	for i := 0; i < p.NumRow; i++ {
		coeffs := make([]float64, numY)
		constant := 0.0
		for j, a := range modelRows[i] {
			if a == 0 {
				continue
			}
			constant += a * sf.shift[j]
			for _, t := range sf.terms[j] {
				coeffs[t.col] += a * t.sign
			}
		}
		lo, hi := p.RowLower[i], p.RowUpper[i]
		if lo > hi {
			sf.infeasible = true
			return sf
		}
		switch {
		case isNegInf(lo) && isPosInf(hi):
			// Free row.
		case lo == hi:
			pending = append(pending, pendingRow{coeffs: coeffs, rhs: lo - constant})
		default:
			if !isNegInf(lo) {
				pending = append(pending, pendingRow{coeffs: coeffs, rhs: lo - constant, slackDir: -1})
			}
			if !isPosInf(hi) {
				pending = append(pending, pendingRow{coeffs: coeffs, rhs: hi - constant, slackDir: 1})
			}
		}
	}
	for _, br := range upperRows {
		coeffs := make([]float64, numY)
		coeffs[br.col] = 1
		pending = append(pending, pendingRow{coeffs: coeffs, rhs: br.rhs, slackDir: 1})
	}

	slackCols := make([]int, len(pending))
	for k, pr := range pending {
		slackCols[k] = -1
		if pr.slackDir != 0 {
			slackCols[k] = newCol(0)
		}
	}

	total := len(sf.c)
	sf.rows = make([][]float64, len(pending))
	sf.b = make([]float64, len(pending))
	for k, pr := range pending {
		row := make([]float64, total)
		copy(row, pr.coeffs)
		if slackCols[k] >= 0 {
			row[slackCols[k]] = pr.slackDir
		}
		sf.rows[k] = row
		sf.b[k] = pr.rhs
	}

	return sf
}
