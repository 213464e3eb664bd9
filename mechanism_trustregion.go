// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package uno

import "math"

// TrustRegion is the GlobalizationMechanism of spec.md §4.10: ask the
// relaxation layer for a direction bounded by the current radius Δ;
// on acceptance, enlarge Δ when the predicted and actual reductions agree
// closely; on rejection, shrink Δ to a fraction of the rejected step's norm
// and resolve the subproblem from scratch. Trust region composed with
// PrimalDualInteriorPoint is out of scope (spec.md §9 open question 3) and
// is rejected by NewDriver before the outer loop ever calls this type.
type TrustRegion struct {
	radius     float64
	radiusInit float64
	radiusMin  float64
	shrink     float64
	grow       float64
}

// NewTrustRegion builds a TrustRegion reading its constants from opts.
func NewTrustRegion(opts Options) (*TrustRegion, error) {
	radiusInit, err := opts.Float("trust_region_initial_radius", 1.0)
	if err != nil {
		return nil, err
	}
	radiusMin, err := opts.Float("trust_region_min_radius", 1e-12)
	if err != nil {
		return nil, err
	}
	shrink, err := opts.Float("trust_region_shrink_ratio", 0.25)
	if err != nil {
		return nil, err
	}
	grow, err := opts.Float("trust_region_grow_ratio", 2.0)
	if err != nil {
		return nil, err
	}
	tr := &TrustRegion{radiusInit: radiusInit, radiusMin: radiusMin, shrink: shrink, grow: grow}
	tr.Reset()
	return tr, nil
}

func (tr *TrustRegion) Reset() {
	tr.radius = tr.radiusInit
}

func (tr *TrustRegion) Solve(stats *Stats, problem *OptimizationProblem, relaxation ConstraintRelaxationStrategy, strategy GlobalizationStrategy,
	method InequalityHandlingMethod, norm NormKind, current, trial *Iterate, direction *Direction, warmstart WarmstartInformation) error {

	for {
		if tr.radius < tr.radiusMin {
			if !relaxation.SolvingFeasibilityProblem() {
				return newError(StepLengthTooSmall, nil, "trust region radius %.3g below minimum %.3g", tr.radius, tr.radiusMin)
			}
			return newError(StepLengthTooSmall, nil, "trust region radius %.3g below minimum %.3g while restoring feasibility", tr.radius, tr.radiusMin)
		}

		if err := relaxation.Solve(stats, current, direction, tr.radius, warmstart); err != nil {
			return err
		}

		alphaPrimal, alphaDual := 1.0, direction.DualStepLength
		if alphaDual == 0 {
			alphaDual = 1
		}
		assembleTrialIterate(problem, method, norm, current, trial, direction, alphaPrimal, alphaDual)
		pObj, pAux, pInf := predictedReductions(problem, method, current, direction, alphaPrimal)

		if strategy.IsAcceptable(relaxation.SolvingFeasibilityProblem(), current, trial, pObj, pAux, pInf) {
			actual := (current.Progress.Objective + current.Progress.Auxiliary) - (trial.Progress.Objective + trial.Progress.Auxiliary)
			predicted := pObj + pAux
			copyIterateInto(current, trial)
			strategy.RegisterCurrentIterate(current)
			if predicted > 0 && math.Abs(actual-predicted) <= 0.1*predicted {
				tr.radius = math.Max(tr.radius, tr.grow*norm2(direction.PrimalStep))
			}
			return nil
		}

		tr.radius = tr.shrink * norm2(direction.PrimalStep)
		// The radius bounds the subproblem's variables, so the retry re-solves
		// instead of returning the cached direction.
		warmstart.VariableBoundsChanged = true
	}
}
