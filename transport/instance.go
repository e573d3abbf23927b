package transport

import "fmt"

// Instance is a transportation problem: what each source ships, what each
// destination needs, and the unit cost of every source/destination pair.
//
// An Instance returned by Load is balanced and must be treated as read-only.
type Instance struct {
	Supplies []int
	Demands  []int
	// Costs[i][j] is the unit cost from source i to destination j.
	Costs [][]int

	// DummySource is set when balancing appended the last source.
	DummySource bool
	// DummyDestination is set when balancing appended the last destination.
	DummyDestination bool
}

// NumSources returns the number of sources, dummy included.
func (in *Instance) NumSources() int { return len(in.Supplies) }

// NumDestinations returns the number of destinations, dummy included.
func (in *Instance) NumDestinations() int { return len(in.Demands) }

// TotalSupply returns the sum of all supplies.
func (in *Instance) TotalSupply() int { return sum(in.Supplies) }

// TotalDemand returns the sum of all demands.
func (in *Instance) TotalDemand() int { return sum(in.Demands) }

// IsBalanced reports whether total supply equals total demand.
func (in *Instance) IsBalanced() bool { return in.TotalSupply() == in.TotalDemand() }

// IsDummySource reports whether source i was added by balancing.
func (in *Instance) IsDummySource(i int) bool {
	return in.DummySource && i == in.NumSources()-1
}

// IsDummyDestination reports whether destination j was added by balancing.
func (in *Instance) IsDummyDestination(j int) bool {
	return in.DummyDestination && j == in.NumDestinations()-1
}

// Validate checks the shape of the instance.
func (in *Instance) Validate() error {
	if in.NumSources() == 0 || in.NumDestinations() == 0 {
		return fmt.Errorf("%w: instance needs at least one source and one destination", ErrMalformedInput)
	}
	for i, s := range in.Supplies {
		if s < 0 {
			return fmt.Errorf("%w: supply of source %d is negative", ErrMalformedInput, i+1)
		}
	}
	for j, d := range in.Demands {
		if d < 0 {
			return fmt.Errorf("%w: demand of destination %d is negative", ErrMalformedInput, j+1)
		}
	}
	if len(in.Costs) != in.NumSources() {
		return fmt.Errorf("%w: %d cost rows for %d sources", ErrMalformedInput, len(in.Costs), in.NumSources())
	}
	for i, row := range in.Costs {
		if len(row) != in.NumDestinations() {
			return fmt.Errorf("%w: cost row %d has %d entries, want %d", ErrMalformedInput, i+1, len(row), in.NumDestinations())
		}
	}
	return nil
}

// Clone returns a deep copy of the instance.
func (in *Instance) Clone() *Instance {
	out := &Instance{
		Supplies:         append([]int(nil), in.Supplies...),
		Demands:          append([]int(nil), in.Demands...),
		Costs:            make([][]int, len(in.Costs)),
		DummySource:      in.DummySource,
		DummyDestination: in.DummyDestination,
	}
	for i, row := range in.Costs {
		out.Costs[i] = append([]int(nil), row...)
	}
	return out
}

// Balance returns a copy of in whose total supply equals its total demand.
//
// Excess supply becomes the demand of an extra destination that every
// source reaches at zero cost. Excess demand becomes the supply of an extra
// source with an all-zero cost row. A balanced instance is copied unchanged.
func Balance(in *Instance) *Instance {
	out := in.Clone()

	supply, demand := out.TotalSupply(), out.TotalDemand()
	switch {
	case supply > demand:
		out.Demands = append(out.Demands, supply-demand)
		for i := range out.Costs {
			out.Costs[i] = append(out.Costs[i], 0)
		}
		out.DummyDestination = true
	case demand > supply:
		out.Supplies = append(out.Supplies, demand-supply)
		out.Costs = append(out.Costs, make([]int, out.NumDestinations()))
		out.DummySource = true
	}

	return out
}

func sum(xs []int) int {
	total := 0
	for _, x := range xs {
		total += x
	}
	return total
}
