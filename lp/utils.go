package lp

import (
	"math"
	"sort"
)

// infBound is the magnitude at and beyond which a bound is treated as
// infinite, matching the HiGHS convention of 1e30.
const infBound = 1e30

// Inf returns positive infinity, suitable for unbounded variable bounds.
func Inf() float64 {
	return math.Inf(1)
}

// NegInf returns negative infinity, suitable for unbounded variable bounds.
func NegInf() float64 {
	return math.Inf(-1)
}

func isPosInf(v float64) bool { return v >= infBound }

func isNegInf(v float64) bool { return v <= -infBound }

// normalizeNonzeros sorts nonzeros by row then column, validates indices and
// merges duplicates, keeping the last value.
func normalizeNonzeros(nz []Nonzero) ([]Nonzero, error) {
	if len(nz) == 0 {
		return nil, nil
	}

	sorted := make([]Nonzero, len(nz))
	copy(sorted, nz)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Row != sorted[j].Row {
			return sorted[i].Row < sorted[j].Row
		}
		return sorted[i].Col < sorted[j].Col
	})

	filtered := make([]Nonzero, 0, len(sorted))
	for _, n := range sorted {
		if n.Row < 0 || n.Col < 0 {
			return nil, newErrorMsg("normalizeNonzeros", "negative row or column index")
		}
		if math.IsNaN(n.Val) || math.IsInf(n.Val, 0) {
			return nil, newErrorMsg("normalizeNonzeros", "non-finite coefficient")
		}
		if len(filtered) > 0 && filtered[len(filtered)-1].Row == n.Row && filtered[len(filtered)-1].Col == n.Col {
			filtered[len(filtered)-1].Val = n.Val
		} else {
			filtered = append(filtered, n)
		}
	}

	return filtered, nil
}

// denseRows expands normalized nonzeros into a numRow × numCol row-major matrix.
func denseRows(numRow, numCol int, nz []Nonzero) [][]float64 {
	rows := make([][]float64, numRow)
	for i := range rows {
		rows[i] = make([]float64, numCol)
	}
	for _, n := range nz {
		rows[n.Row][n.Col] = n.Val
	}
	return rows
}

// expandSlice expands a slice to length n if it's empty, filling with fillValue.
// Returns the original slice if it already has length n.
// Returns an error if the slice has a non-zero length that differs from n.
func expandSlice(n int, slice []float64, fillValue float64) ([]float64, error) {
	if len(slice) == n {
		return slice, nil
	}
	if len(slice) == 0 {
		result := make([]float64, n)
		for i := range result {
			result[i] = fillValue
		}
		return result, nil
	}
	return nil, newErrorMsg("expandSlice", "inconsistent slice length")
}

// maxRowCol finds the maximum row and column indices from a slice of nonzeros.
func maxRowCol(nz []Nonzero) (maxRow, maxCol int) {
	maxRow, maxCol = -1, -1
	for _, n := range nz {
		if n.Row > maxRow {
			maxRow = n.Row
		}
		if n.Col > maxCol {
			maxCol = n.Col
		}
	}
	return maxRow, maxCol
}
