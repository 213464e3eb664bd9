// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package uno

import "math"

// evalBit flags one kind of cached Model evaluation, checked before every
// callback so that the underlying Model is invoked at most once per outer
// iteration (Testable Property 1), mirroring the teacher's evalFunc/evalGrad
// split in slsqp.sqpSolver.evalLoc.
type evalBit uint8

const (
	evalObjective evalBit = 1 << iota
	evalObjectiveGradient
	evalConstraints
	evalConstraintJacobian
	evalLagrangianHessian
)

// ProgressMeasures bundles the three scalars every GlobalizationStrategy
// compares between the current and trial iterate (spec.md §3).
type ProgressMeasures struct {
	Infeasibility float64
	Objective     float64
	Auxiliary     float64
}

// Residuals bundles the primal-dual KKT residuals and their scaling factors
// (spec.md §4.6).
type Residuals struct {
	Stationarity      float64
	Complementarity   float64
	PrimalFeasibility float64
	DualScale         float64
	ComplementarityScale float64
}

// Iterate is the working point of the outer iteration: primals, duals,
// cached evaluations, and progress/residual bookkeeping. It is created once
// at startup and mutated in place by the Driver; Direction values are
// scratch, Iterate is not. An Iterate refers to a Model/OptimizationProblem
// by a non-owning handle threaded through method parameters — it never
// stores one (spec.md §9 "Back references").
type Iterate struct {
	X  []float64 // primals, length n (includes slacks)
	Lambda []float64 // constraint multipliers, length m
	ZL []float64 // lower-bound multipliers, zL_i ≥ 0
	ZU []float64 // upper-bound multipliers, zU_i ≤ 0

	// Feasibility-phase multipliers, used while the relaxation layer is
	// solving the feasibility subproblem; kept separate from Lambda/ZL/ZU
	// so a phase switch never clobbers the optimality-phase state.
	FeasibilityLambda []float64
	FeasibilityZL     []float64
	FeasibilityZU     []float64

	// ObjectiveMultiplier σ ∈ {0,1} selects feasibility (0) vs optimality (1)
	// phase in the Lagrangian L(x,σ,λ) = σf(x) - λᵀc(x) - ...
	ObjectiveMultiplier float64

	// Cached evaluations.
	objectiveValue       float64
	objectiveGradient    []float64 // sparse index→value map over n
	constraintValues     []float64 // dense, length m
	constraintJacobian   []SparseRow // one per constraint
	lagrangianGradObj    []float64 // ∇f(x) contribution to ∇L
	lagrangianGradCons   []float64 // -Jᵀλ contribution to ∇L

	evalMask evalBit

	Progress  ProgressMeasures
	Residuals Residuals
}

// NewIterate allocates an Iterate for a problem of n variables and m
// constraints, with all slices preallocated so nothing allocates on the hot
// path after this call (spec.md §5).
func NewIterate(n, m int) *Iterate {
	return &Iterate{
		X:                  make([]float64, n),
		Lambda:             make([]float64, m),
		ZL:                 make([]float64, n),
		ZU:                 make([]float64, n),
		FeasibilityLambda:  make([]float64, m),
		FeasibilityZL:      make([]float64, n),
		FeasibilityZU:      make([]float64, n),
		ObjectiveMultiplier: 1,
		objectiveGradient:  make([]float64, n),
		constraintValues:   make([]float64, m),
		constraintJacobian: make([]SparseRow, m),
		lagrangianGradObj:  make([]float64, n),
		lagrangianGradCons: make([]float64, n),
	}
}

// Invalidate clears every dirty flag, forcing the next evaluation of each
// kind to call back into the Model. Used when assembling a trial iterate
// (spec.md §4.11 "invalidate the trial iterate's evaluation caches").
func (it *Iterate) Invalidate() {
	it.evalMask = 0
}

// ObjectiveValue returns σf(x), evaluating and caching it if dirty.
func (it *Iterate) ObjectiveValue(problem *OptimizationProblem) float64 {
	if it.evalMask&evalObjective == 0 {
		it.objectiveValue = problem.EvaluateObjective(it.ObjectiveMultiplier, it.X)
		CheckFinite([]float64{it.objectiveValue})
		it.evalMask |= evalObjective
	}
	return it.objectiveValue
}

// ObjectiveGradient returns ∇(σf)(x) (sparse index→value, dense-backed
// here), evaluating and caching it if dirty.
func (it *Iterate) ObjectiveGradient(problem *OptimizationProblem) []float64 {
	if it.evalMask&evalObjectiveGradient == 0 {
		problem.EvaluateObjectiveGradient(it.ObjectiveMultiplier, it.X, it.objectiveGradient)
		CheckFinite(it.objectiveGradient)
		it.evalMask |= evalObjectiveGradient
	}
	return it.objectiveGradient
}

// ConstraintValues returns c(x), evaluating and caching it if dirty.
func (it *Iterate) ConstraintValues(problem *OptimizationProblem) []float64 {
	if it.evalMask&evalConstraints == 0 {
		problem.EvaluateConstraints(it.X, it.constraintValues)
		CheckFinite(it.constraintValues)
		it.evalMask |= evalConstraints
	}
	return it.constraintValues
}

// ConstraintJacobian returns ∇c(x), evaluating and caching it if dirty.
func (it *Iterate) ConstraintJacobian(problem *OptimizationProblem) []SparseRow {
	if it.evalMask&evalConstraintJacobian == 0 {
		problem.EvaluateConstraintJacobian(it.X, it.constraintJacobian)
		for _, row := range it.constraintJacobian {
			CheckFinite(row.Vals)
		}
		it.evalMask |= evalConstraintJacobian
	}
	return it.constraintJacobian
}

// LagrangianGradient returns ∇L(x,σ,λ) split into its objective and
// constraint contributions: obj = σ∇f(x), cons = -Jᵀλ. Both are recomputed
// (from the already-cached ∇f/J) whenever either is stale relative to X;
// this does not re-invoke the Model, only the cheap Jᵀλ product, so it is
// exempt from the dirty-flag discipline that guards Model callbacks.
func (it *Iterate) LagrangianGradient(problem *OptimizationProblem) (obj, cons []float64) {
	grad := it.ObjectiveGradient(problem)
	jac := it.ConstraintJacobian(problem)
	for i := range it.lagrangianGradObj {
		it.lagrangianGradObj[i] = it.ObjectiveMultiplier * grad[i]
		it.lagrangianGradCons[i] = 0
	}
	for j, row := range jac {
		lam := it.Lambda[j]
		if lam == 0 {
			continue
		}
		for k, c := range row.Cols {
			it.lagrangianGradCons[c] -= lam * row.Vals[k]
		}
	}
	return it.lagrangianGradObj, it.lagrangianGradCons
}

// CheckFinite panics with evalNonFinitePanic if any entry of v is NaN or
// ±Inf (spec.md §7 "EvaluationError: the user model returned NaN/∞");
// Driver.Solve recovers that panic and ends the solve with the
// AlgorithmicError status.
func CheckFinite(v []float64) {
	for _, vi := range v {
		if math.IsNaN(vi) || math.IsInf(vi, 0) {
			panic(evalNonFinitePanic{})
		}
	}
}

type evalNonFinitePanic struct{}
