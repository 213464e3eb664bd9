// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command uno solves a small Hock-Schittkowski-style bound- and
// equality-constrained problem (minimize a quadratic subject to one linear
// equality and box bounds) and prints the terminal status and solution.
// It demonstrates Driver wiring, not a general-purpose CLI.
package main

import (
	"fmt"
	"math"
	"os"

	uno "github.com/amontoison/Uno"
	"github.com/amontoison/Uno/linsolve"
)

// hs21Like minimizes f(x) = x0² + x1² - 100 subject to x0 - 10 ≥ 0,
// -10 ≤ x1 ≤ 10, with one linear equality x0 + x1 = 10.
type hs21Like struct{}

func (hs21Like) NumVariables() int   { return 2 }
func (hs21Like) NumConstraints() int { return 1 }

func (hs21Like) VariableBounds(i int) (lower, upper float64) {
	if i == 0 {
		return 10, math.Inf(1)
	}
	return -10, 10
}

func (hs21Like) ConstraintBounds(int) (lower, upper float64) { return 10, 10 }

func (hs21Like) EqualityConstraints() []int   { return []int{0} }
func (hs21Like) InequalityConstraints() []int { return nil }
func (hs21Like) LinearConstraints() []int     { return []int{0} }
func (hs21Like) NonlinearConstraints() []int  { return nil }

func (hs21Like) NumJacobianNonzeros() int { return 2 }
func (hs21Like) NumHessianNonzeros() int  { return 2 }

func (hs21Like) EvaluateObjective(x []float64) float64 {
	return x[0]*x[0] + x[1]*x[1] - 100
}

func (hs21Like) EvaluateObjectiveGradient(x []float64, out []float64) {
	out[0], out[1] = 2*x[0], 2*x[1]
}

func (hs21Like) EvaluateConstraints(x []float64, out []float64) {
	out[0] = x[0] + x[1]
}

func (hs21Like) EvaluateConstraintJacobian(x []float64, out []uno.SparseRow) {
	out[0] = uno.SparseRow{Cols: []int{0, 1}, Vals: []float64{1, 1}}
}

func (hs21Like) EvaluateLagrangianHessian(x []float64, sigma float64, lambda []float64, out *uno.SymmetricMatrix) {
	out.Reset()
	out.Insert(0, 0, 2*sigma)
	out.Insert(1, 1, 2*sigma)
}

func main() {
	model := hs21Like{}
	symSolver := linsolve.NewDenseSymIndefSolver()
	qpSolver := linsolve.NewActiveSetQPSolver()

	opts := uno.Options{
		"inequality_handling_method": "interior_point",
		"globalization_mechanism":    "line_search",
		"globalization_strategy":     "filter",
	}

	driver, err := uno.NewDriver(model, symSolver, qpSolver, opts)
	if err != nil {
		fmt.Fprintln(os.Stderr, "configuration error:", err)
		os.Exit(1)
	}
	driver.SetLogger(&uno.Logger{Level: uno.LogIteration, Out: os.Stdout})

	iterate := driver.Init([]float64{20, -10})
	result := driver.Solve(iterate)

	fmt.Printf("status: %s\n", result.Status)
	fmt.Printf("x: %v\n", result.X)
	fmt.Printf("objective: %g\n", result.ObjectiveValue)
	fmt.Printf("infeasibility: %g\n", result.Infeasibility)
	fmt.Printf("iterations: %d\n", result.Iterations)
}
