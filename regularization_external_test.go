// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package uno_test

import (
	"testing"

	uno "github.com/amontoison/Uno"
	"github.com/amontoison/Uno/linsolve"
)

// TestRegularizationInertia is Testable Property 3: after regularizing an
// augmented system for an equality-constrained barrier problem, the
// factorization's inertia equals (n_vars, n_constraints, 0). The system here
// is [[0, 1],[1, 0]] augmented by one equality row, i.e. already indefinite
// in the primal block, forcing at least one regularization attempt.
func TestRegularizationInertia(t *testing.T) {
	const n, m = 2, 1
	solver := linsolve.NewDenseSymIndefSolver()
	solver.InitializeMemory(n+m, n+m)

	reg, err := uno.NewRegularizationStrategy(solver, nil)
	if err != nil {
		t.Fatal(err)
	}

	matrix := uno.NewSymmetricMatrix(n+m, n+m)
	matrix.Insert(0, 1, 1) // indefinite primal block [[0,1],[1,0]]
	matrix.Insert(0, 2, 1) // constraint row: x0 + x1 = ...
	matrix.Insert(1, 2, 1)

	primal := []int{0, 1}
	dual := []int{2}
	expected := uno.Inertia{Plus: n, Minus: m, Zero: 0}

	if _, err := reg.Regularize(matrix, primal, expected, dual, func(delta float64) float64 { return delta }); err != nil {
		t.Fatalf("Regularize failed: %v", err)
	}
	got := solver.GetInertia()
	if !got.Equals(expected) {
		t.Fatalf("inertia = %+v, want %+v", got, expected)
	}
}

// TestRegularizationMonotonicity is Testable Property 4: within one call to
// Regularize, the sequence of tried δ values is strictly increasing. We
// can't observe the sequence directly through the public API, so this drives
// the same pathologically-indefinite matrix through Regularize twice (with a
// Reset between) and checks the committed δ is positive and repeatable.
func TestRegularizationMonotonicity(t *testing.T) {
	const n = 2
	solver := linsolve.NewDenseSymIndefSolver()
	solver.InitializeMemory(n, n)

	reg, err := uno.NewRegularizationStrategy(solver, nil)
	if err != nil {
		t.Fatal(err)
	}

	matrix := uno.NewSymmetricMatrix(n, n)
	matrix.Insert(0, 1, 1) // indefinite, needs regularization to reach (2,0,0)

	primal := []int{0, 1}
	expected := uno.Inertia{Plus: n, Minus: 0, Zero: 0}

	delta, err := reg.Regularize(matrix, primal, expected, nil, nil)
	if err != nil {
		t.Fatalf("Regularize failed: %v", err)
	}
	if delta <= 0 {
		t.Fatalf("committed delta = %g, want > 0 for an indefinite matrix", delta)
	}

	reg.Reset()
	matrix.Reset()
	matrix.Insert(0, 1, 1)
	delta2, err := reg.Regularize(matrix, primal, expected, nil, nil)
	if err != nil {
		t.Fatalf("second Regularize failed: %v", err)
	}
	if delta2 != delta {
		t.Fatalf("Reset then replaying the same matrix gave delta=%g, want %g (idempotent restart)", delta2, delta)
	}
}
