// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package uno

import "testing"

func TestSymmetricMatrixInsertCanonicalizesRow(t *testing.T) {
	m := NewSymmetricMatrix(2, 4)
	m.Insert(1, 0, 5) // row > col, must be swapped to (0,1)
	row, col, val := m.Entry(0)
	if row != 0 || col != 1 || val != 5 {
		t.Fatalf("Insert(1,0,5) stored (%d,%d,%g), want (0,1,5)", row, col, val)
	}
}

func TestSymmetricMatrixQuadraticProduct(t *testing.T) {
	// A = [[2,1],[1,3]], x = [1,2] => xᵀAx = 2*1 + 2*1*1*2 + 3*4 = 2+4+12 = 18
	m := NewSymmetricMatrix(2, 4)
	m.Insert(0, 0, 2)
	m.Insert(0, 1, 1)
	m.Insert(1, 1, 3)
	got := m.QuadraticProduct([]float64{1, 2})
	if got != 18 {
		t.Fatalf("QuadraticProduct = %g, want 18", got)
	}
}

func TestSymmetricMatrixRegularizeDiagonalOverwritesInPlace(t *testing.T) {
	m := NewSymmetricMatrix(3, 3)
	m.Insert(0, 0, 1)
	m.Insert(1, 1, 1)

	m.RegularizeDiagonal([]int{0, 2}, 5)
	if m.NNZ() != 4 {
		t.Fatalf("after first RegularizeDiagonal, NNZ = %d, want 4", m.NNZ())
	}

	m.RegularizeDiagonal([]int{0, 2}, 9)
	if m.NNZ() != 4 {
		t.Fatalf("second RegularizeDiagonal call must overwrite, not append: NNZ = %d, want 4", m.NNZ())
	}
	// Entries 0 and 1 are the natural (0,0) and (1,1); the regularization
	// segment follows them.
	var found int
	for k := 2; k < m.NNZ(); k++ {
		row, col, value := m.Entry(k)
		if row == col && (row == 0 || row == 2) {
			if value != 9 {
				t.Fatalf("regularized entry at %d has value %g, want 9", row, value)
			}
			found++
		}
	}
	if found != 2 {
		t.Fatalf("found %d regularized diagonal entries, want 2", found)
	}
}

func TestSymmetricMatrixResetClearsRegularization(t *testing.T) {
	m := NewSymmetricMatrix(2, 2)
	m.Insert(0, 0, 1)
	m.RegularizeDiagonal([]int{0}, 3)
	m.Reset()
	if m.NNZ() != 0 {
		t.Fatalf("Reset left %d entries, want 0", m.NNZ())
	}
	// Insert then RegularizeDiagonal again must append fresh, not treat the
	// stale regStart/regIndex from before Reset as already-appended.
	m.Insert(0, 0, 1)
	m.RegularizeDiagonal([]int{0}, 4)
	if m.NNZ() != 2 {
		t.Fatalf("after Reset+Insert+RegularizeDiagonal, NNZ = %d, want 2", m.NNZ())
	}
}

func TestSymmetricMatrixSmallestDiagonal(t *testing.T) {
	m := NewSymmetricMatrix(3, 3)
	m.Insert(0, 0, 5)
	m.Insert(1, 1, -2)
	min, ok := m.SmallestDiagonal([]int{0, 1, 2})
	if !ok {
		t.Fatal("expected ok=true for a non-empty index set")
	}
	if min != -2 {
		t.Fatalf("SmallestDiagonal = %g, want -2 (index 2 has no stored entry, treated as 0, but -2 < 0)", min)
	}
}

func TestInertiaEquals(t *testing.T) {
	a := Inertia{Plus: 2, Minus: 1, Zero: 0}
	b := Inertia{Plus: 2, Minus: 1, Zero: 0}
	c := Inertia{Plus: 2, Minus: 0, Zero: 1}
	if !a.Equals(b) {
		t.Fatal("identical inertias must be equal")
	}
	if a.Equals(c) {
		t.Fatal("differing inertias must not be equal")
	}
	if a.Dimension() != 3 {
		t.Fatalf("Dimension() = %d, want 3", a.Dimension())
	}
}
