// Package transport solves balanced transportation problems.
//
// A run has three stages used strictly in sequence:
//
//   - Load parses an instance file and balances it with a zero-cost dummy
//     source or destination.
//   - Solver builds the equality-constrained LP, solves it on an lp backend
//     and rounds every flow: the integer part, plus one when the fractional
//     part is at least RoundUpThreshold.
//   - Writer renders the plan, one line per positive shipment with 1-based
//     indices.
//
// Pipeline wires the three together and stops at the first failure. A solve
// without an optimal solution is an expected outcome: it is reported as
// ErrNoSolution and no report is written.
package transport
