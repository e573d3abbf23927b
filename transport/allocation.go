package transport

import "github.com/bartolsthoorn/transportlp/lp"

// Shipment moves Amount units from Source to Destination. Indices are
// 0-based; Amount is always positive.
type Shipment struct {
	Source      int
	Destination int
	Amount      int
}

// Allocation is a shipping plan in row-major order: every shipment from
// source 0 first, then source 1, and so on.
type Allocation struct {
	Shipments []Shipment

	// Objective is the continuous optimum reported by the backend, before
	// rounding.
	Objective float64
	// Status is the backend status that produced the plan.
	Status lp.ModelStatus
	// Backend names the LP backend that solved the model.
	Backend string
}

// Len returns the number of shipments.
func (a *Allocation) Len() int { return len(a.Shipments) }

// Cost returns the total cost of the rounded plan under in's unit costs.
func (a *Allocation) Cost(in *Instance) int {
	total := 0
	for _, s := range a.Shipments {
		total += in.Costs[s.Source][s.Destination] * s.Amount
	}
	return total
}

// SourceTotals returns the amount leaving each of n sources.
func (a *Allocation) SourceTotals(n int) []int {
	totals := make([]int, n)
	for _, s := range a.Shipments {
		totals[s.Source] += s.Amount
	}
	return totals
}

// DestinationTotals returns the amount arriving at each of n destinations.
func (a *Allocation) DestinationTotals(n int) []int {
	totals := make([]int, n)
	for _, s := range a.Shipments {
		totals[s.Destination] += s.Amount
	}
	return totals
}

// Deviation returns the largest absolute difference between a source's
// shipped total and its supply, or a destination's received total and its
// demand.
//
// Each variable is rounded on its own, so a row or column can drift by up to
// one unit per fractional flow in it. Vertex solutions of an integer
// transportation instance are integral, so simplex-based backends yield 0.
func (a *Allocation) Deviation(in *Instance) int {
	worst := 0
	for i, t := range a.SourceTotals(in.NumSources()) {
		worst = max(worst, abs(t-in.Supplies[i]))
	}
	for j, t := range a.DestinationTotals(in.NumDestinations()) {
		worst = max(worst, abs(t-in.Demands[j]))
	}
	return worst
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
