// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package uno

import "math"

// filterEntry is one (infeasibility, merit) pair in the pareto filter.
type filterEntry struct {
	h, phi float64
}

// FilterMethod is the GlobalizationStrategy of spec.md §4.7 (Fletcher &
// Leyffer): a trial point is acceptable only if no filter entry, and the
// current iterate itself, dominates it. f-type steps (sufficient predicted
// merit reduction) pass an Armijo test instead of adding to the filter;
// h-type steps add the current point to the filter.
type FilterMethod struct {
	entries []filterEntry

	gamma             float64
	switchingExponent float64
	delta             float64
	armijoEta         float64
	maxInfeasibility  float64

	bestInfeasibility float64
}

// NewFilterMethod builds a FilterMethod reading its constants from opts.
func NewFilterMethod(opts Options) (*FilterMethod, error) {
	gamma, err := opts.Float("filter_gamma", 1e-5)
	if err != nil {
		return nil, err
	}
	switchExp, err := opts.Float("filter_switching_exponent", 1.1)
	if err != nil {
		return nil, err
	}
	delta, err := opts.Float("filter_delta", 1e-4)
	if err != nil {
		return nil, err
	}
	armijo, err := opts.Float("filter_armijo_constant", 1e-4)
	if err != nil {
		return nil, err
	}
	maxInf, err := opts.Float("filter_max_infeasibility", 1e4)
	if err != nil {
		return nil, err
	}
	fm := &FilterMethod{
		gamma:             gamma,
		switchingExponent: switchExp,
		delta:             delta,
		armijoEta:         armijo,
		maxInfeasibility:  maxInf,
	}
	fm.Reset()
	return fm, nil
}

func (fm *FilterMethod) Reset() {
	fm.entries = fm.entries[:0]
	fm.bestInfeasibility = math.Inf(1)
}

func (fm *FilterMethod) RegisterCurrentIterate(current *Iterate) {}

func (fm *FilterMethod) IsAcceptable(solvingFeasibility bool, current, trial *Iterate,
	predictedObjectiveReduction, predictedAuxiliaryReduction, predictedInfeasibilityReduction float64) bool {

	hTrial := trial.Progress.Infeasibility
	if hTrial > fm.maxInfeasibility {
		return false
	}

	if solvingFeasibility {
		reduction := current.Progress.Infeasibility - hTrial
		accept := reduction >= fm.armijoEta*predictedInfeasibilityReduction || hTrial < fm.bestInfeasibility
		if accept && hTrial < fm.bestInfeasibility {
			fm.bestInfeasibility = hTrial
		}
		return accept
	}

	hCur := current.Progress.Infeasibility
	phiCur := current.Progress.Objective + current.Progress.Auxiliary
	phiTrial := trial.Progress.Objective + trial.Progress.Auxiliary

	if !fm.acceptableToFilter(hTrial, phiTrial) {
		return false
	}
	if !fm.dominates(hTrial, phiTrial, hCur, phiCur) {
		return false
	}

	predictedMerit := predictedObjectiveReduction + predictedAuxiliaryReduction
	if predictedMerit >= fm.delta*math.Pow(hCur, fm.switchingExponent) {
		actual := phiCur - phiTrial
		return actual >= fm.armijoEta*predictedMerit
	}

	fm.entries = append(fm.entries, filterEntry{h: hCur, phi: phiCur})
	return true
}

// acceptableToFilter reports whether (h, phi) is not dominated by any
// existing filter entry.
func (fm *FilterMethod) acceptableToFilter(h, phi float64) bool {
	for _, e := range fm.entries {
		if h >= (1-fm.gamma)*e.h && phi >= e.phi-fm.gamma*e.h {
			return false
		}
	}
	return true
}

// dominates reports whether (h, phi) is not dominated by the reference pair
// (hRef, phiRef), the same rule applied to the current iterate as a
// one-entry filter (spec.md §4.7 step 3).
func (fm *FilterMethod) dominates(h, phi, hRef, phiRef float64) bool {
	return h < (1-fm.gamma)*hRef || phi < phiRef-fm.gamma*hRef
}
