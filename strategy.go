// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package uno

// GlobalizationStrategy accepts or rejects a trial iterate given progress
// measures (spec.md §4.7, §4.8). FilterMethod and L1MeritFunction are the
// two variants exercised here.
type GlobalizationStrategy interface {
	// Reset clears filter and running-minimum state for a fresh solve;
	// L1MeritFunction keeps its current ρ.
	Reset()

	// RegisterCurrentIterate lets the strategy observe the accepted point's
	// progress measures before the next trial is proposed (L1MeritFunction
	// records the running minimum infeasibility from it).
	RegisterCurrentIterate(current *Iterate)

	// IsAcceptable decides whether trial should replace current, given the
	// method's predicted reduction of the objective, auxiliary measure and
	// infeasibility along the proposed step.
	IsAcceptable(solvingFeasibility bool, current, trial *Iterate,
		predictedObjectiveReduction, predictedAuxiliaryReduction, predictedInfeasibilityReduction float64) bool
}
