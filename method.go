// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package uno

// Stats accumulates per-solve counters a method reports to the driver.
// Rendering/formatting statistics is explicitly out of scope (spec.md §1);
// Stats is the bare counter set the core itself needs to make decisions
// (e.g. repeated-SubproblemError escalation).
type Stats struct {
	SubproblemSolves    int
	RegularizationCalls int
}

// InequalityHandlingMethod computes a primal-dual search direction given a
// current iterate and subproblem parameters (spec.md §4.3). ActiveSetQP and
// PrimalDualInteriorPoint are the two variants exercised by this module.
type InequalityHandlingMethod interface {
	// InitializeMemory allocates all workspace; no allocation happens
	// inside Solve afterward.
	InitializeMemory(problem *OptimizationProblem, hessianModel HessianModel, regularization *RegularizationStrategy)

	// GenerateInitialIterate adjusts the user's starting point into a valid
	// starting iterate (pushed strictly interior for IPM; left unchanged,
	// modulo optional linear-constraint enforcement, for ActiveSetQP).
	GenerateInitialIterate(problem *OptimizationProblem, iterate *Iterate)

	// Solve produces a Direction (Δx and multiplier updates) for the
	// current iterate. trustRegionRadius is +Inf when the outer mechanism
	// is a line search.
	Solve(stats *Stats, problem *OptimizationProblem, current *Iterate, direction *Direction,
		hessianModel HessianModel, regularization *RegularizationStrategy,
		trustRegionRadius float64, warmstart WarmstartInformation) error

	// HessianQuadraticProduct returns vᵀHv for the most recently assembled
	// Hessian (may be 0 for a first-order method).
	HessianQuadraticProduct(v []float64) float64

	// SetAuxiliaryMeasure records this method's auxiliary objective term
	// (e.g. the IPM barrier term) on iterate.Progress.Auxiliary.
	SetAuxiliaryMeasure(problem *OptimizationProblem, iterate *Iterate)
	// ComputePredictedAuxiliaryReductionModel returns the predicted
	// reduction in the auxiliary measure along direction scaled by
	// stepLength.
	ComputePredictedAuxiliaryReductionModel(problem *OptimizationProblem, current *Iterate, direction *Direction, stepLength float64) float64

	// PostprocessIterate bounds and reshapes multipliers before the
	// globalization strategy sees them.
	PostprocessIterate(problem *OptimizationProblem, x []float64, lambda, zL, zU []float64)

	// InitializeFeasibilityProblem and ExitFeasibilityProblem are hooks the
	// relaxation layer calls when entering/leaving the feasibility phase.
	InitializeFeasibilityProblem(problem *OptimizationProblem, iterate *Iterate)
	ExitFeasibilityProblem(problem *OptimizationProblem, iterate *Iterate)
	// SetElasticVariableValues sets the elastic pair from the current
	// constraint violation (spec.md §9 open question #2).
	SetElasticVariableValues(problem *OptimizationProblem, iterate *Iterate)

	// SubproblemDefinitionChanged reports whether a self-driven parameter
	// update (e.g. a barrier-parameter decrease) happened since the last
	// check; calling it clears the flag.
	SubproblemDefinitionChanged() bool
}
