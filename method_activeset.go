// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package uno

import "math"

// ActiveSetQP computes Δx by solving the quadratic program of spec.md §4.4:
//
//	min gᵀd + ½dᵀHd  s.t.  cL - c(x) ≤ J d ≤ cU - c(x),  xL - x ≤ d ≤ xU - x
//
// over the full reformulated variable space (original x, slacks, elastics),
// which collapses the two-sided inequality bookkeeping onto the slack
// variable's own bounds: the QP only ever sees the equality residual
// J d = -c(x) plus box constraints. H is the (possibly regularized)
// Lagrangian Hessian; when the outer mechanism is line search (signaled by
// trustRegionRadius == +Inf) H must be positive definite and is
// regularized via the shared RegularizationStrategy before the QP call.
type ActiveSetQP struct {
	qp QPSolver

	n, m int
	h    *SymmetricMatrix
	g    []float64
	jac  []SparseRow

	lbX, ubX []float64
	lbC, ubC []float64
	initial  []float64

	lastDirection Direction
	changed       bool
}

// NewActiveSetQP builds an ActiveSetQP method backed by the given QPSolver
// capability.
func NewActiveSetQP(qp QPSolver) *ActiveSetQP {
	return &ActiveSetQP{qp: qp}
}

func (a *ActiveSetQP) InitializeMemory(problem *OptimizationProblem, hessianModel HessianModel, regularization *RegularizationStrategy) {
	a.n, a.m = problem.NumVariables(), problem.NumConstraints()
	a.h = NewSymmetricMatrix(a.n, hessianModel.NumNonzeros())
	a.g = make([]float64, a.n)
	a.jac = make([]SparseRow, a.m)
	a.lbX, a.ubX = make([]float64, a.n), make([]float64, a.n)
	a.lbC, a.ubC = make([]float64, a.m), make([]float64, a.m)
	a.initial = make([]float64, a.n)
	a.lastDirection = *NewDirection(a.n, a.m)
}

func (a *ActiveSetQP) GenerateInitialIterate(problem *OptimizationProblem, iterate *Iterate) {
	// ActiveSetQP leaves the user's point otherwise unchanged, clipping into
	// the box bounds so the first QP's box constraints are non-empty, then
	// projecting onto any violated linear constraints.
	for i := range iterate.X {
		lo, hi := problem.VariableBounds(i)
		if isFiniteBound(lo) || isFiniteBound(hi) {
			iterate.X[i] = clip(iterate.X[i], lo, hi)
		}
	}
	a.enforceLinearConstraints(problem, iterate)
}

// enforceLinearConstraints projects the starting point onto the linear
// constraints when the reformulated residual c(x)-slack is nonzero for any
// of them, by solving the minimum-distance QP min ½‖d‖² with each linear
// row driven to exactly zero and every other row (nonlinear, or linear but
// already satisfied) left unconstrained. The slack's own box bound already
// carries the constraint's inequality, so zeroing the residual and
// respecting the box bounds together reproduce the reformulated problem's
// feasible set exactly. Grounded on Preprocessing::enforce_linear_constraints,
// which runs this same projection before the main loop starts so the
// active-set method never has to resolve a linear infeasibility it could
// have started without.
func (a *ActiveSetQP) enforceLinearConstraints(problem *OptimizationProblem, iterate *Iterate) {
	linear := problem.Model().LinearConstraints()
	if len(linear) == 0 {
		return
	}

	cval := iterate.ConstraintValues(problem)
	violated := false
	for _, j := range linear {
		if cval[j] != 0 {
			violated = true
			break
		}
	}
	if !violated {
		return
	}

	identity := NewSymmetricMatrix(a.n, a.n)
	for i := 0; i < a.n; i++ {
		identity.Insert(i, i, 1)
	}
	zeroGrad := make([]float64, a.n)

	jac := iterate.ConstraintJacobian(problem)
	lbC, ubC := make([]float64, a.m), make([]float64, a.m)
	for j := range lbC {
		lbC[j], ubC[j] = math.Inf(-1), math.Inf(1)
	}
	for _, j := range linear {
		lbC[j], ubC[j] = -cval[j], -cval[j]
	}

	lbX, ubX := make([]float64, a.n), make([]float64, a.n)
	for i := range lbX {
		lo, hi := problem.VariableBounds(i)
		lbX[i], ubX[i] = lo-iterate.X[i], hi-iterate.X[i]
	}

	direction := NewDirection(a.n, a.m)
	initial := make([]float64, a.n)
	if err := a.qp.Solve(identity, zeroGrad, jac, lbX, ubX, lbC, ubC, initial, FullWarmstart(), direction); err != nil {
		return
	}
	if direction.Status != DirectionOptimal {
		return
	}
	for i := range iterate.X {
		iterate.X[i] += direction.PrimalStep[i]
	}
	iterate.Invalidate()
}

func (a *ActiveSetQP) Solve(stats *Stats, problem *OptimizationProblem, current *Iterate, direction *Direction,
	hessianModel HessianModel, regularization *RegularizationStrategy,
	trustRegionRadius float64, warmstart WarmstartInformation) error {

	if !warmstart.AnyChanged() {
		copyDirection(direction, &a.lastDirection)
		return nil
	}

	g := current.ObjectiveGradient(problem)
	copy(a.g, g)

	hessianModel.Evaluate(problem, current.ObjectiveMultiplier, current.X, current.Lambda, a.h)

	lineSearch := math.IsInf(trustRegionRadius, 1)
	if lineSearch && !hessianModel.IsPositiveDefinite() {
		primal := allIndices(a.n)
		if _, err := regularization.Regularize(a.h, primal, Inertia{Plus: a.n, Minus: 0, Zero: 0}, nil, nil); err != nil {
			return err
		}
		stats.RegularizationCalls++
	}

	jac := current.ConstraintJacobian(problem)
	copy(a.jac, jac)
	cval := current.ConstraintValues(problem)

	for i := range a.lbX {
		lo, hi := problem.VariableBounds(i)
		a.lbX[i], a.ubX[i] = lo-current.X[i], hi-current.X[i]
		if !lineSearch {
			a.lbX[i] = math.Max(a.lbX[i], -trustRegionRadius)
			a.ubX[i] = math.Min(a.ubX[i], trustRegionRadius)
		}
	}
	for j := range a.lbC {
		a.lbC[j], a.ubC[j] = -cval[j], -cval[j]
	}
	for i := range a.initial {
		a.initial[i] = 0
	}

	stats.SubproblemSolves++
	if err := a.qp.Solve(a.h, a.g, a.jac, a.lbX, a.ubX, a.lbC, a.ubC, a.initial, warmstart, direction); err != nil {
		return err
	}

	// Multiplier fields come back from the QP capability holding the new
	// multiplier values; spec.md §4.4 wants the *displacement* from the
	// current iterate so that trial-iterate assembly (spec.md §4.11) can
	// add α·Δλ uniformly across methods.
	for j := range direction.DualStep {
		direction.DualStep[j] -= current.Lambda[j]
	}
	for i := range direction.DualLower {
		direction.DualLower[i] -= current.ZL[i]
		direction.DualUpper[i] -= current.ZU[i]
	}
	direction.PrimalStepLength, direction.DualStepLength = 1, 1

	copyDirection(&a.lastDirection, direction)
	return nil
}

// copyDirection deep-copies src into dst's preallocated slices, since a
// Direction's slices are shared scratch that the driver resets in place;
// holding on to the struct by value would alias that scratch.
func copyDirection(dst, src *Direction) {
	copy(dst.PrimalStep, src.PrimalStep)
	copy(dst.DualStep, src.DualStep)
	copy(dst.DualLower, src.DualLower)
	copy(dst.DualUpper, src.DualUpper)
	dst.Status = src.Status
	dst.SubproblemObjective = src.SubproblemObjective
	dst.PrimalStepLength, dst.DualStepLength = src.PrimalStepLength, src.DualStepLength
	dst.SmallStep = src.SmallStep
}

func (a *ActiveSetQP) HessianQuadraticProduct(v []float64) float64 {
	return a.h.QuadraticProduct(v)
}

func (a *ActiveSetQP) SetAuxiliaryMeasure(problem *OptimizationProblem, iterate *Iterate) {
	iterate.Progress.Auxiliary = 0
}

func (a *ActiveSetQP) ComputePredictedAuxiliaryReductionModel(problem *OptimizationProblem, current *Iterate, direction *Direction, stepLength float64) float64 {
	return 0
}

func (a *ActiveSetQP) PostprocessIterate(problem *OptimizationProblem, x []float64, lambda, zL, zU []float64) {
	// No reshaping needed: the QP capability already returns multipliers
	// consistent with the zL ≥ 0, zU ≤ 0 convention.
}

func (a *ActiveSetQP) InitializeFeasibilityProblem(problem *OptimizationProblem, iterate *Iterate) {}
func (a *ActiveSetQP) ExitFeasibilityProblem(problem *OptimizationProblem, iterate *Iterate)       {}

func (a *ActiveSetQP) SetElasticVariableValues(problem *OptimizationProblem, iterate *Iterate) {
	cval := iterate.ConstraintValues(problem)
	problem.SetElasticVariableValues(iterate.X, cval)
}

func (a *ActiveSetQP) SubproblemDefinitionChanged() bool {
	changed := a.changed
	a.changed = false
	return changed
}

func allIndices(n int) []int {
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	return idx
}
