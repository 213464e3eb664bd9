// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package uno

import "testing"

func iterateWithProgress(h, phi float64) *Iterate {
	it := NewIterate(1, 0)
	it.Progress = ProgressMeasures{Infeasibility: h, Objective: phi}
	return it
}

// TestFilterMonotonicity is Testable Property 5: once (h, phi) is in the
// filter, no subsequent trial with h' ≥ h and phi' ≥ phi is acceptable.
func TestFilterMonotonicity(t *testing.T) {
	fm, err := NewFilterMethod(nil)
	if err != nil {
		t.Fatal(err)
	}

	current := iterateWithProgress(1.0, 10.0)
	trial := iterateWithProgress(0.9, 9.0)

	// predictedMerit below the switching threshold forces an h-type step,
	// adding (hCur, phiCur) = (1.0, 10.0) to the filter.
	if !fm.IsAcceptable(false, current, trial, 0, 0, 0) {
		t.Fatal("expected the first h-type step to be accepted")
	}
	if len(fm.entries) != 1 {
		t.Fatalf("expected one filter entry, got %d", len(fm.entries))
	}

	dominated := iterateWithProgress(1.1, 10.5)
	if fm.IsAcceptable(false, current, dominated, 0, 0, 0) {
		t.Fatal("a point with both h and phi no better than a filter entry must be rejected")
	}
}

// TestFilterFeasibilityPhaseAcceptsProgress exercises the solvingFeasibility
// branch independently: a trial with lower infeasibility than both the
// predicted-reduction threshold and the best-seen infeasibility is accepted.
func TestFilterFeasibilityPhaseAcceptsProgress(t *testing.T) {
	fm, err := NewFilterMethod(nil)
	if err != nil {
		t.Fatal(err)
	}
	current := iterateWithProgress(5.0, 0)
	trial := iterateWithProgress(1.0, 0)

	if !fm.IsAcceptable(true, current, trial, 0, 0, 10.0) {
		t.Fatal("expected feasibility-phase progress to be accepted")
	}
}

func TestFilterResetIdempotent(t *testing.T) {
	fm, err := NewFilterMethod(nil)
	if err != nil {
		t.Fatal(err)
	}
	current := iterateWithProgress(1.0, 10.0)
	trial := iterateWithProgress(0.9, 9.0)
	fm.IsAcceptable(false, current, trial, 0, 0, 0)

	fm.Reset()
	first := append([]filterEntry(nil), fm.entries...)
	firstBest := fm.bestInfeasibility
	fm.Reset()
	if len(fm.entries) != len(first) || fm.bestInfeasibility != firstBest {
		t.Fatal("Reset must be idempotent (Testable Property 9)")
	}
}
