// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package uno

import "math"

// BacktrackingLineSearch is the GlobalizationMechanism of spec.md §4.9: ask
// the relaxation layer for a direction with trust_region_radius = +Inf
// (the contract ActiveSetQP/PrimalDualInteriorPoint use to recognize a line
// search caller), then shrink α by a fixed ratio until the strategy accepts
// or α underflows α_min.
type BacktrackingLineSearch struct {
	alpha    float64
	beta     float64 // backtracking ratio ∈ (0,1)
	alphaMin float64
}

// NewBacktrackingLineSearch builds a BacktrackingLineSearch reading its
// constants from opts.
func NewBacktrackingLineSearch(opts Options) (*BacktrackingLineSearch, error) {
	beta, err := opts.Float("line_search_backtracking_ratio", 0.5)
	if err != nil {
		return nil, err
	}
	alphaMin, err := opts.Float("line_search_alpha_min", 1e-16)
	if err != nil {
		return nil, err
	}
	ls := &BacktrackingLineSearch{beta: beta, alphaMin: alphaMin}
	ls.Reset()
	return ls, nil
}

func (ls *BacktrackingLineSearch) Reset() {
	ls.alpha = 1
}

func (ls *BacktrackingLineSearch) Solve(stats *Stats, problem *OptimizationProblem, relaxation ConstraintRelaxationStrategy, strategy GlobalizationStrategy,
	method InequalityHandlingMethod, norm NormKind, current, trial *Iterate, direction *Direction, warmstart WarmstartInformation) error {

	ls.alpha = 1
	if err := relaxation.Solve(stats, current, direction, math.Inf(1), warmstart); err != nil {
		return err
	}

	alphaDual := direction.DualStepLength
	if alphaDual == 0 {
		alphaDual = 1
	}

	for {
		if ls.alpha < ls.alphaMin {
			return newError(StepLengthTooSmall, nil, "line search step length %.3g below minimum %.3g", ls.alpha, ls.alphaMin)
		}

		assembleTrialIterate(problem, method, norm, current, trial, direction, ls.alpha, ls.alpha*alphaDual)
		pObj, pAux, pInf := predictedReductions(problem, method, current, direction, ls.alpha)

		if strategy.IsAcceptable(relaxation.SolvingFeasibilityProblem(), current, trial, pObj, pAux, pInf) {
			copyIterateInto(current, trial)
			strategy.RegisterCurrentIterate(current)
			return nil
		}

		ls.alpha *= ls.beta
	}
}

// copyIterateInto rolls trial forward into current, preserving current's
// preallocated slices.
func copyIterateInto(current, trial *Iterate) {
	copy(current.X, trial.X)
	copy(current.Lambda, trial.Lambda)
	copy(current.ZL, trial.ZL)
	copy(current.ZU, trial.ZU)
	current.ObjectiveMultiplier = trial.ObjectiveMultiplier
	current.Progress = trial.Progress
	current.Invalidate()
}
