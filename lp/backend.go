package lp

import (
	"context"
	"sort"
	"sync"
)

// DefaultBackend is the backend used when none is selected.
const DefaultBackend = "simplex"

// Backend solves prepared problems. Implementations report non-optimal
// outcomes through Solution.Status and reserve the error for failures to run
// at all.
type Backend interface {
	// Name identifies the backend in the registry and in solutions.
	Name() string

	// Solve solves p. It must return promptly once ctx is done.
	Solve(ctx context.Context, p *Problem, cfg *SolveConfig) (*Solution, error)
}

var (
	backendsMu sync.RWMutex
	backends   = make(map[string]Backend)
)

// Register makes a backend available by name. It panics if b is nil or a
// backend with the same name is already registered.
func Register(b Backend) {
	backendsMu.Lock()
	defer backendsMu.Unlock()

	if b == nil {
		panic("lp: Register backend is nil")
	}
	if _, dup := backends[b.Name()]; dup {
		panic("lp: Register called twice for backend " + b.Name())
	}
	backends[b.Name()] = b
}

// Lookup returns the registered backend with the given name.
func Lookup(name string) (Backend, error) {
	backendsMu.RLock()
	defer backendsMu.RUnlock()

	b, ok := backends[name]
	if !ok {
		return nil, newErrorMsg("Lookup", "no backend registered as "+name)
	}
	return b, nil
}

// Backends returns the sorted names of all registered backends.
func Backends() []string {
	backendsMu.RLock()
	defer backendsMu.RUnlock()

	names := make([]string, 0, len(backends))
	for name := range backends {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
