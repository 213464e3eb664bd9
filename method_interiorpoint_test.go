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

func newTestInteriorPoint(t *testing.T, problem *uno.OptimizationProblem) (*uno.PrimalDualInteriorPoint, uno.HessianModel, *uno.RegularizationStrategy) {
	solver := linsolve.NewDenseSymIndefSolver()
	solver.InitializeMemory(problem.NumVariables()+problem.NumConstraints(), problem.NumVariables()+problem.NumConstraints())
	reg, err := uno.NewRegularizationStrategy(solver, nil)
	if err != nil {
		t.Fatal(err)
	}
	hessianModel := uno.NewExactHessianModel(1)
	ip, err := uno.NewPrimalDualInteriorPoint(solver, nil)
	if err != nil {
		t.Fatal(err)
	}
	ip.InitializeMemory(problem, hessianModel, reg)
	return ip, hessianModel, reg
}

// TestPrimalDualInteriorPointGenerateInitialIteratePushesInterior checks
// that GenerateInitialIterate strictly respects both finite bounds and
// seeds the bound multipliers at ±1 on every bounded index (spec.md §4.5
// "push the initial point away from its bounds").
func TestPrimalDualInteriorPointGenerateInitialIteratePushesInterior(t *testing.T) {
	problem := uno.NewOptimizationProblem(testproblems.BoxConstrained{})
	ip, _, _ := newTestInteriorPoint(t, problem)

	iterate := uno.NewIterate(problem.NumVariables(), problem.NumConstraints())
	iterate.X[0] = 1 // exactly on the lower bound

	ip.GenerateInitialIterate(problem, iterate)

	if iterate.X[0] <= 1 || iterate.X[0] >= 10 {
		t.Fatalf("X[0] = %g, want strictly inside (1, 10)", iterate.X[0])
	}
	if iterate.ZL[0] != 1 {
		t.Fatalf("ZL[0] = %g, want 1", iterate.ZL[0])
	}
	if iterate.ZU[0] != -1 {
		t.Fatalf("ZU[0] = %g, want -1", iterate.ZU[0])
	}
}

// TestPrimalDualInteriorPointFractionToBoundary is Testable Property 2: the
// computed primal step length never lets a bounded variable reach or cross
// its bound, staying within tau of the distance to it.
func TestPrimalDualInteriorPointFractionToBoundary(t *testing.T) {
	problem := uno.NewOptimizationProblem(testproblems.BoxConstrained{})
	ip, hessianModel, reg := newTestInteriorPoint(t, problem)

	current := uno.NewIterate(problem.NumVariables(), problem.NumConstraints())
	ip.GenerateInitialIterate(problem, current)

	direction := uno.NewDirection(problem.NumVariables(), problem.NumConstraints())
	stats := &uno.Stats{}
	if err := ip.Solve(stats, problem, current, direction, hessianModel, reg, math.Inf(1), uno.FullWarmstart()); err != nil {
		t.Fatal(err)
	}

	alpha := direction.PrimalStepLength
	if alpha <= 0 || alpha > 1 {
		t.Fatalf("PrimalStepLength = %g, want in (0, 1]", alpha)
	}
	trial := current.X[0] + alpha*direction.PrimalStep[0]
	if trial <= 1 || trial >= 10 {
		t.Fatalf("trial X[0] = %g, want strictly inside (1, 10) after the fraction-to-boundary clamp", trial)
	}
}

// TestPrimalDualInteriorPointWarmstartNoOp is Testable Property 7: a Solve
// call with nothing changed and no pending barrier update returns the
// cached direction without another subproblem solve.
func TestPrimalDualInteriorPointWarmstartNoOp(t *testing.T) {
	problem := uno.NewOptimizationProblem(testproblems.BoxConstrained{})
	ip, hessianModel, reg := newTestInteriorPoint(t, problem)

	current := uno.NewIterate(problem.NumVariables(), problem.NumConstraints())
	ip.GenerateInitialIterate(problem, current)

	first := uno.NewDirection(problem.NumVariables(), problem.NumConstraints())
	stats := &uno.Stats{}
	if err := ip.Solve(stats, problem, current, first, hessianModel, reg, math.Inf(1), uno.FullWarmstart()); err != nil {
		t.Fatal(err)
	}
	calls := stats.SubproblemSolves

	second := uno.NewDirection(problem.NumVariables(), problem.NumConstraints())
	if err := ip.Solve(stats, problem, current, second, hessianModel, reg, math.Inf(1), uno.WarmstartInformation{}); err != nil {
		t.Fatal(err)
	}
	if stats.SubproblemSolves != calls {
		t.Fatalf("SubproblemSolves = %d, want unchanged at %d", stats.SubproblemSolves, calls)
	}
	if second.PrimalStep[0] != first.PrimalStep[0] {
		t.Fatalf("second.PrimalStep[0] = %g, want %g (cached)", second.PrimalStep[0], first.PrimalStep[0])
	}
}
