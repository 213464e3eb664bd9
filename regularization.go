// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package uno

import "math"

// RegularizationStrategy perturbs a symmetric indefinite matrix's diagonal
// until factoring it yields a target inertia (spec.md §4.1, Nocedal &
// Wright §19.3). Symbolic analysis is performed exactly once across a solve;
// numerical factorization is tried with a strictly increasing sequence of δ
// within a single Regularize call (Testable Property 4).
type RegularizationStrategy struct {
	solver SymIndefSolver

	initial float64 // δ0
	factor  float64 // κ, growth factor (≈8)
	first   float64 // first-bump multiplier from zero (≈100)
	failure float64 // failure threshold
	floor   float64 // tiny constant floor for δ_prev/3 seeding

	prevDelta      float64
	symbolicDone   bool
	consecutiveFailures int
}

// NewRegularizationStrategy constructs a RegularizationStrategy with the
// constants of spec.md §4.1, reading overrides from opts.
func NewRegularizationStrategy(solver SymIndefSolver, opts Options) (*RegularizationStrategy, error) {
	initial, err := opts.Float("regularization_initial_value", 1e-4)
	if err != nil {
		return nil, err
	}
	factor, err := opts.Float("regularization_increase_factor", 8)
	if err != nil {
		return nil, err
	}
	failure, err := opts.Float("regularization_failure_threshold", 1e20)
	if err != nil {
		return nil, err
	}
	return &RegularizationStrategy{
		solver:  solver,
		initial: initial,
		factor:  factor,
		first:   100,
		failure: failure,
		floor:   1e-20,
	}, nil
}

// Reset clears the previous-δ seed, used when starting a fresh solve.
func (r *RegularizationStrategy) Reset() {
	r.prevDelta = 0
	r.symbolicDone = false
	r.consecutiveFailures = 0
}

// Regularize perturbs matrix's diagonal over primalIndices (and, if dualDelta
// is non-nil, dualIndices with -δd = dualDelta(δ)) until factoring yields
// expected. It returns the committed δ, or a *SolverError of kind
// UnstableRegularization if δ exceeds the failure threshold.
func (r *RegularizationStrategy) Regularize(matrix *SymmetricMatrix, primalIndices []int, expected Inertia,
	dualIndices []int, dualDelta func(delta float64) float64) (float64, error) {

	if !r.symbolicDone {
		if err := r.solver.DoSymbolicAnalysis(matrix); err != nil {
			return 0, newError(AllocationError, err, "symbolic analysis failed")
		}
		r.symbolicDone = true
	}

	// Seed: reuse last solve's committed δ (damped by 3) if we have one,
	// otherwise fall back to the smallest-diagonal rule of spec.md §4.1
	// step 1.
	var delta float64
	switch {
	case r.prevDelta > 0:
		delta = math.Max(r.prevDelta/3, r.floor)
	default:
		if minDiag, _ := matrix.SmallestDiagonal(primalIndices); minDiag <= 0 {
			delta = r.initial - minDiag
		}
	}

	tried := make([]float64, 0, 8)
	for {
		if delta > r.failure {
			r.consecutiveFailures++
			return delta, newError(UnstableRegularization, nil,
				"regularization delta %.3g exceeded failure threshold %.3g", delta, r.failure)
		}

		// The matrix holds one regularization segment, so primal and dual
		// indices go through a single RegularizeIndex call.
		if delta > 0 {
			if dualDelta != nil && len(dualIndices) > 0 {
				d := dualDelta(delta)
				indices := append(append(make([]int, 0, len(primalIndices)+len(dualIndices)), primalIndices...), dualIndices...)
				isDual := make(map[int]bool, len(dualIndices))
				for _, i := range dualIndices {
					isDual[i] = true
				}
				matrix.RegularizeIndex(indices, func(i int) float64 {
					if isDual[i] {
						return -d
					}
					return delta
				})
			} else {
				matrix.RegularizeIndex(primalIndices, func(int) float64 { return delta })
			}
		}
		tried = append(tried, delta)

		if err := r.solver.DoNumericalFactorization(matrix); err != nil {
			return delta, newError(AllocationError, err, "numerical factorization failed")
		}

		inertia := r.solver.GetInertia()
		if inertia.Equals(expected) && !r.solver.MatrixIsSingular() {
			r.prevDelta = delta
			r.consecutiveFailures = 0
			return delta, nil
		}

		// Grow strictly: 0 → δ0, δ0 → δ0×first (≈100), thereafter ×κ. A
		// nonzero seed is multiplied by first on its own first growth.
		switch {
		case delta == 0:
			delta = r.initial
		case len(tried) == 1 || (len(tried) == 2 && tried[0] == 0):
			delta *= r.first
		default:
			delta *= r.factor
		}
	}
}
