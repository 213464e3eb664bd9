// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package uno_test

import (
	"math"
	"testing"

	uno "github.com/amontoison/Uno"
	"github.com/amontoison/Uno/linsolve"
	"github.com/amontoison/Uno/testproblems"
)

// TestActiveSetQPLineSearchStep drives one ActiveSetQP.Solve call for the
// box-constrained scenario (S2) at a point away from the minimum and checks
// the subproblem's direction heads toward the unconstrained minimizer of the
// quadratic model, with the multiplier bookkeeping converted to a
// displacement from the current iterate (method_activeset.go's contract).
func TestActiveSetQPLineSearchStep(t *testing.T) {
	problem := uno.NewOptimizationProblem(testproblems.BoxConstrained{})
	hessianModel := uno.NewExactHessianModel(1)

	solver := linsolve.NewDenseSymIndefSolver()
	solver.InitializeMemory(1, 1)
	reg, err := uno.NewRegularizationStrategy(solver, nil)
	if err != nil {
		t.Fatal(err)
	}

	a := uno.NewActiveSetQP(linsolve.NewActiveSetQPSolver())
	a.InitializeMemory(problem, hessianModel, reg)

	current := uno.NewIterate(1, 0)
	current.X[0] = 5

	direction := uno.NewDirection(1, 0)
	stats := &uno.Stats{}
	err = a.Solve(stats, problem, current, direction, hessianModel, reg, math.Inf(1), uno.FullWarmstart())
	if err != nil {
		t.Fatal(err)
	}
	if direction.Status != uno.DirectionOptimal {
		t.Fatalf("status = %v, want Optimal", direction.Status)
	}
	// f(x)=x², so the QP model at x=5 is g=10, H=2: unconstrained step is -5,
	// landing exactly at x=0, below the [1,10] box's lower bound; the box
	// forces x≥1, so the step must stop at d=1-5=-4.
	if math.Abs(direction.PrimalStep[0]-(-4)) > 1e-8 {
		t.Fatalf("PrimalStep[0] = %g, want -4 (clipped to the lower bound)", direction.PrimalStep[0])
	}
	if stats.SubproblemSolves != 1 {
		t.Fatalf("SubproblemSolves = %d, want 1", stats.SubproblemSolves)
	}
}

// TestActiveSetQPWarmstartNoOp is Testable Property 7: when nothing in the
// WarmstartInformation changed, Solve must return the cached direction from
// the previous call without invoking the QP capability again.
func TestActiveSetQPWarmstartNoOp(t *testing.T) {
	problem := uno.NewOptimizationProblem(testproblems.BoxConstrained{})
	hessianModel := uno.NewExactHessianModel(1)

	solver := linsolve.NewDenseSymIndefSolver()
	solver.InitializeMemory(1, 1)
	reg, err := uno.NewRegularizationStrategy(solver, nil)
	if err != nil {
		t.Fatal(err)
	}

	a := uno.NewActiveSetQP(linsolve.NewActiveSetQPSolver())
	a.InitializeMemory(problem, hessianModel, reg)

	current := uno.NewIterate(1, 0)
	current.X[0] = 5

	first := uno.NewDirection(1, 0)
	stats := &uno.Stats{}
	if err := a.Solve(stats, problem, current, first, hessianModel, reg, math.Inf(1), uno.FullWarmstart()); err != nil {
		t.Fatal(err)
	}

	second := uno.NewDirection(1, 0)
	noChange := uno.WarmstartInformation{}
	if err := a.Solve(stats, problem, current, second, hessianModel, reg, math.Inf(1), noChange); err != nil {
		t.Fatal(err)
	}
	if stats.SubproblemSolves != 1 {
		t.Fatalf("SubproblemSolves = %d after a no-op warmstart call, want 1", stats.SubproblemSolves)
	}
	if second.PrimalStep[0] != first.PrimalStep[0] {
		t.Fatalf("warmstart no-op returned PrimalStep %g, want the cached %g", second.PrimalStep[0], first.PrimalStep[0])
	}
}

// TestActiveSetQPEnforcesLinearConstraintsAtStart checks that
// GenerateInitialIterate projects a linearly-infeasible starting point onto
// x1+x2=1 before the outer iteration ever begins.
func TestActiveSetQPEnforcesLinearConstraintsAtStart(t *testing.T) {
	problem := uno.NewOptimizationProblem(testproblems.EqualityConstrained{})
	hessianModel := uno.NewExactHessianModel(2)

	solver := linsolve.NewDenseSymIndefSolver()
	solver.InitializeMemory(problem.NumVariables(), problem.NumVariables())
	reg, err := uno.NewRegularizationStrategy(solver, nil)
	if err != nil {
		t.Fatal(err)
	}

	a := uno.NewActiveSetQP(linsolve.NewActiveSetQPSolver())
	a.InitializeMemory(problem, hessianModel, reg)

	iterate := uno.NewIterate(problem.NumVariables(), problem.NumConstraints())
	iterate.X[0], iterate.X[1] = 5, 5 // x1+x2 = 10, violates the x1+x2 = 1 constraint

	a.GenerateInitialIterate(problem, iterate)

	if got := iterate.X[0] + iterate.X[1]; math.Abs(got-1) > 1e-8 {
		t.Fatalf("X[0]+X[1] = %g after GenerateInitialIterate, want 1", got)
	}
}
