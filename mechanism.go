// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package uno

// GlobalizationMechanism explores along a direction supplied by the
// relaxation layer, assembling trial iterates and asking the strategy to
// accept or reject them until one is accepted or the step collapses
// (spec.md §4.9, §4.10). BacktrackingLineSearch and TrustRegion are the two
// variants exercised here.
type GlobalizationMechanism interface {
	Reset()

	// Solve drives one outer iteration's direction-trial-accept cycle to
	// completion: it asks relaxation for a direction, assembles trial
	// iterates at shrinking step sizes, and on acceptance copies trial back
	// into current. Returns a *SolverError of kind StepLengthTooSmall if no
	// trial is ever accepted before the step/radius floor.
	Solve(stats *Stats, problem *OptimizationProblem, relaxation ConstraintRelaxationStrategy, strategy GlobalizationStrategy,
		method InequalityHandlingMethod, norm NormKind, current, trial *Iterate, direction *Direction, warmstart WarmstartInformation) error
}

// assembleTrialIterate implements spec.md §4.11: trial = current +
// (α_p·Δx, α_p·Δλ, α_d·ΔzL, α_d·ΔzU), with the trial's evaluation caches
// invalidated and its progress measures recomputed.
func assembleTrialIterate(problem *OptimizationProblem, method InequalityHandlingMethod, norm NormKind,
	current, trial *Iterate, direction *Direction, alphaPrimal, alphaDual float64) {

	for i := range trial.X {
		trial.X[i] = current.X[i] + alphaPrimal*direction.PrimalStep[i]
		trial.ZL[i] = current.ZL[i] + alphaDual*direction.DualLower[i]
		trial.ZU[i] = current.ZU[i] + alphaDual*direction.DualUpper[i]
	}
	for j := range trial.Lambda {
		trial.Lambda[j] = current.Lambda[j] + alphaPrimal*direction.DualStep[j]
	}
	trial.ObjectiveMultiplier = current.ObjectiveMultiplier
	trial.Invalidate()

	trial.Progress.Objective = trial.ObjectiveValue(problem)
	trial.Progress.Infeasibility = computeInfeasibility(problem, trial, norm)
	method.SetAuxiliaryMeasure(problem, trial)
}

// predictedReductions evaluates the quadratic/linear models the strategy
// compares against the actual reduction: a second-order model for the
// objective (gᵀΔx scaled by α plus the curvature term the method reports),
// the method's own auxiliary-measure model, and a first-order model for the
// infeasibility (the fraction α of the current violation a feasible
// direction for the linearized constraints is expected to remove).
func predictedReductions(problem *OptimizationProblem, method InequalityHandlingMethod, current *Iterate, direction *Direction, alpha float64) (objective, auxiliary, infeasibility float64) {
	grad := current.ObjectiveGradient(problem)
	objective = -alpha*dotProduct(grad, direction.PrimalStep) - 0.5*alpha*alpha*method.HessianQuadraticProduct(direction.PrimalStep)
	auxiliary = method.ComputePredictedAuxiliaryReductionModel(problem, current, direction, alpha)
	infeasibility = alpha * current.Progress.Infeasibility
	return
}
