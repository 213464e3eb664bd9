// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package uno

import "math"

// L1MeritFunction is the GlobalizationStrategy of spec.md §4.8: accept a
// trial iterate iff the actual reduction of φ = σf + auxiliary + ρh exceeds
// an Armijo fraction of the predicted reduction. ρ is owned here but is
// only ever grown by IncreasePenaltyIfNotDescent, which the driver calls
// once per outer iteration (not per backtracking trial), so a rejected
// trial never mutates strategy state (Testable Property 6).
type L1MeritFunction struct {
	rho          float64
	penaltyGrowth float64
	armijoEta     float64
	epsMachine    float64

	minInfeasibility float64
}

// NewL1MeritFunction builds an L1MeritFunction reading its constants from
// opts.
func NewL1MeritFunction(opts Options) (*L1MeritFunction, error) {
	rhoInit, err := opts.Float("l1_penalty_initial_value", 1.0)
	if err != nil {
		return nil, err
	}
	growth, err := opts.Float("l1_penalty_growth_factor", 10)
	if err != nil {
		return nil, err
	}
	armijo, err := opts.Float("l1_armijo_constant", 1e-4)
	if err != nil {
		return nil, err
	}
	l1 := &L1MeritFunction{
		rho:           rhoInit,
		penaltyGrowth: growth,
		armijoEta:     armijo,
		epsMachine:    2.220446049250313e-16,
	}
	l1.Reset()
	return l1, nil
}

func (l1 *L1MeritFunction) Reset() {
	l1.minInfeasibility = math.Inf(1)
}

func (l1 *L1MeritFunction) RegisterCurrentIterate(current *Iterate) {
	if current.Progress.Infeasibility < l1.minInfeasibility {
		l1.minInfeasibility = current.Progress.Infeasibility
	}
}

func (l1 *L1MeritFunction) IsAcceptable(solvingFeasibility bool, current, trial *Iterate,
	predictedObjectiveReduction, predictedAuxiliaryReduction, predictedInfeasibilityReduction float64) bool {

	phiCur := current.Progress.Objective + current.Progress.Auxiliary + l1.rho*current.Progress.Infeasibility
	phiTrial := trial.Progress.Objective + trial.Progress.Auxiliary + l1.rho*trial.Progress.Infeasibility

	predicted := predictedObjectiveReduction + predictedAuxiliaryReduction + l1.rho*predictedInfeasibilityReduction
	actual := (phiCur - phiTrial) + 10*l1.epsMachine*math.Abs(phiCur)

	return actual >= l1.armijoEta*predicted
}

// IncreasePenaltyIfNotDescent grows ρ when predicted is not a strict
// descent for the current direction, returning whether it did so (the
// driver logs a warning on true). Called once per outer iteration, after
// the mechanism has accepted that iteration's step, so a new ρ applies from
// the next iteration's trials on.
func (l1 *L1MeritFunction) IncreasePenaltyIfNotDescent(predicted float64) bool {
	if predicted <= 0 {
		l1.rho *= l1.penaltyGrowth
		return true
	}
	return false
}

// CurrentPenalty returns ρ.
func (l1 *L1MeritFunction) CurrentPenalty() float64 { return l1.rho }
