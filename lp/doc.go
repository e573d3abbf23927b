// Package lp provides a solver-neutral model for linear and mixed-integer
// programs and a registry of backends that solve it.
//
// Two backends ship with the package:
//
//   - simplex: gonum's dense simplex, pure Go, continuous variables only.
//     Always registered and used by default.
//   - highs: the HiGHS solver through statically linked bindings. Registered
//     when built with the highs tag on linux and darwin for amd64 and arm64
//     with cgo enabled. Supports integer variables.
//
// # Example
//
//	model := lp.Model{
//		ColCosts: []float64{1.0, 1.0},
//		ColLower: []float64{0.0, 0.0},
//		ColUpper: []float64{10.0, 10.0},
//	}
//	model.AddDenseRow(1.0, []float64{1.0, 1.0}, 5.0) // 1 <= x + y <= 5
//
//	solution, err := model.Solve(ctx, lp.WithTimeLimit(time.Minute))
//	if err != nil {
//		log.Fatal(err)
//	}
//	if solution.IsOptimal() {
//		fmt.Println("Optimal values:", solution.ColValues)
//	}
//
// # Custom Backends
//
// Any type implementing Backend can be registered with Register or passed to
// a single solve with WithBackend.
package lp
