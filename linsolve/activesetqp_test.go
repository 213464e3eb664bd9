// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package linsolve

import (
	"math"
	"testing"

	uno "github.com/amontoison/Uno"
)

func TestActiveSetQPUnconstrainedMinimum(t *testing.T) {
	qp := NewActiveSetQPSolver()

	h := uno.NewSymmetricMatrix(2, 2)
	h.Insert(0, 0, 1)
	h.Insert(1, 1, 1)
	g := []float64{-4, -6}

	inf := math.Inf(1)
	lbX, ubX := []float64{-inf, -inf}, []float64{inf, inf}

	direction := uno.NewDirection(2, 0)
	err := qp.Solve(h, g, nil, lbX, ubX, nil, nil, nil, uno.FullWarmstart(), direction)
	if err != nil {
		t.Fatal(err)
	}
	if direction.Status != uno.DirectionOptimal {
		t.Fatalf("status = %v, want Optimal", direction.Status)
	}
	want := []float64{4, 6}
	for i := range want {
		if math.Abs(direction.PrimalStep[i]-want[i]) > 1e-8 {
			t.Fatalf("PrimalStep = %v, want %v", direction.PrimalStep, want)
		}
	}
}

func TestActiveSetQPBoxBoundActive(t *testing.T) {
	qp := NewActiveSetQPSolver()

	h := uno.NewSymmetricMatrix(2, 2)
	h.Insert(0, 0, 1)
	h.Insert(1, 1, 1)
	g := []float64{-4, -6}

	inf := math.Inf(1)
	// Unconstrained minimum is (4,6); clamp d0 to [−∞, 2].
	lbX, ubX := []float64{-inf, -inf}, []float64{2, inf}

	direction := uno.NewDirection(2, 0)
	err := qp.Solve(h, g, nil, lbX, ubX, nil, nil, nil, uno.FullWarmstart(), direction)
	if err != nil {
		t.Fatal(err)
	}
	if direction.Status != uno.DirectionOptimal {
		t.Fatalf("status = %v, want Optimal", direction.Status)
	}
	if math.Abs(direction.PrimalStep[0]-2) > 1e-8 {
		t.Fatalf("PrimalStep[0] = %g, want 2 (bound active)", direction.PrimalStep[0])
	}
	if math.Abs(direction.PrimalStep[1]-6) > 1e-8 {
		t.Fatalf("PrimalStep[1] = %g, want 6 (unconstrained)", direction.PrimalStep[1])
	}
}

func TestActiveSetQPEqualityConstraint(t *testing.T) {
	qp := NewActiveSetQPSolver()

	// min d0²+d1² s.t. d0+d1 = 2 → solution (1,1).
	h := uno.NewSymmetricMatrix(2, 2)
	h.Insert(0, 0, 2)
	h.Insert(1, 1, 2)
	g := []float64{0, 0}
	jac := []uno.SparseRow{{Cols: []int{0, 1}, Vals: []float64{1, 1}}}

	inf := math.Inf(1)
	lbX, ubX := []float64{-inf, -inf}, []float64{inf, inf}
	lbC, ubC := []float64{2}, []float64{2}

	direction := uno.NewDirection(2, 1)
	err := qp.Solve(h, g, jac, lbX, ubX, lbC, ubC, nil, uno.FullWarmstart(), direction)
	if err != nil {
		t.Fatal(err)
	}
	if direction.Status != uno.DirectionOptimal {
		t.Fatalf("status = %v, want Optimal", direction.Status)
	}
	if math.Abs(direction.PrimalStep[0]-1) > 1e-8 || math.Abs(direction.PrimalStep[1]-1) > 1e-8 {
		t.Fatalf("PrimalStep = %v, want [1 1]", direction.PrimalStep)
	}
}
