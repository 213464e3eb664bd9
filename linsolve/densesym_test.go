// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package linsolve

import (
	"testing"

	uno "github.com/amontoison/Uno"
)

func TestDenseSymIndefSolverDimensionMismatch(t *testing.T) {
	s := NewDenseSymIndefSolver()
	s.InitializeMemory(2, 2)

	m := uno.NewSymmetricMatrix(3, 3)
	m.Insert(0, 0, 1)
	if err := s.DoSymbolicAnalysis(m); err == nil {
		t.Fatal("expected a dimension mismatch error")
	}
}

func TestDenseSymIndefSolverInertiaAndSolve(t *testing.T) {
	s := NewDenseSymIndefSolver()
	s.InitializeMemory(2, 2)

	// A = [[2,0],[0,3]], positive definite.
	m := uno.NewSymmetricMatrix(2, 2)
	m.Insert(0, 0, 2)
	m.Insert(1, 1, 3)

	if err := s.DoSymbolicAnalysis(m); err != nil {
		t.Fatal(err)
	}
	if err := s.DoNumericalFactorization(m); err != nil {
		t.Fatal(err)
	}
	if s.MatrixIsSingular() {
		t.Fatal("a positive-definite matrix must not be reported singular")
	}
	want := uno.Inertia{Plus: 2, Minus: 0, Zero: 0}
	if got := s.GetInertia(); !got.Equals(want) {
		t.Fatalf("inertia = %+v, want %+v", got, want)
	}
	if s.Rank() != 2 {
		t.Fatalf("Rank() = %d, want 2", s.Rank())
	}

	x := make([]float64, 2)
	if err := s.SolveIndefiniteSystem(m, []float64{4, 9}, x); err != nil {
		t.Fatal(err)
	}
	if x[0] != 2 || x[1] != 3 {
		t.Fatalf("solution = %v, want [2 3]", x)
	}
}

func TestDenseSymIndefSolverDetectsSingular(t *testing.T) {
	s := NewDenseSymIndefSolver()
	s.InitializeMemory(2, 2)

	m := uno.NewSymmetricMatrix(2, 2)
	m.Insert(0, 0, 0)
	m.Insert(1, 1, 0)

	if err := s.DoSymbolicAnalysis(m); err != nil {
		t.Fatal(err)
	}
	if err := s.DoNumericalFactorization(m); err != nil {
		t.Fatal(err)
	}
	if !s.MatrixIsSingular() {
		t.Fatal("the zero matrix must be reported singular")
	}
}
