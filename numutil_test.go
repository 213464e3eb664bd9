// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package uno

import (
	"math"
	"testing"
)

// TestHadamardIdentity is Testable Property 8: hadamard(m,x)_i = m_i*x_i,
// and hadamard distributes over componentwise sum.
func TestHadamardIdentity(t *testing.T) {
	mask := []float64{1, 0, 1, 0}
	x := []float64{3, 4, 5, 6}
	dst := make([]float64, 4)
	Hadamard(dst, mask, x)
	want := []float64{3, 0, 5, 0}
	for i := range dst {
		if dst[i] != want[i] {
			t.Fatalf("Hadamard[%d] = %g, want %g", i, dst[i], want[i])
		}
	}

	y := []float64{1, 1, 1, 1}
	sum := make([]float64, 4)
	for i := range sum {
		sum[i] = x[i] + y[i]
	}
	hadamardOfSum := make([]float64, 4)
	Hadamard(hadamardOfSum, mask, sum)

	hx := make([]float64, 4)
	hy := make([]float64, 4)
	Hadamard(hx, mask, x)
	Hadamard(hy, mask, y)
	for i := range hadamardOfSum {
		if hadamardOfSum[i] != hx[i]+hy[i] {
			t.Fatalf("hadamard does not distribute at index %d: %g != %g", i, hadamardOfSum[i], hx[i]+hy[i])
		}
	}
}

func TestHadamardViewMatchesDst(t *testing.T) {
	mask := []float64{1, 0, 1}
	x := []float64{2, 3, 4}
	view := NewHadamardView(mask, x)
	if view.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", view.Len())
	}
	for i := 0; i < view.Len(); i++ {
		if view.At(i) != mask[i]*x[i] {
			t.Fatalf("At(%d) = %g, want %g", i, view.At(i), mask[i]*x[i])
		}
	}
}

func TestNorms(t *testing.T) {
	v := []float64{3, -4}
	if norm1(v) != 7 {
		t.Fatalf("norm1 = %g, want 7", norm1(v))
	}
	if norm2(v) != 5 {
		t.Fatalf("norm2 = %g, want 5", norm2(v))
	}
	if normInf(v) != 4 {
		t.Fatalf("normInf = %g, want 4", normInf(v))
	}
}

func TestClip(t *testing.T) {
	if clip(-1, 0, 10) != 0 {
		t.Fatal("clip below lower bound failed")
	}
	if clip(11, 0, 10) != 10 {
		t.Fatal("clip above upper bound failed")
	}
	if clip(5, 0, 10) != 5 {
		t.Fatal("clip within bounds must be a no-op")
	}
}

func TestIsFiniteBound(t *testing.T) {
	if isFiniteBound(math.Inf(1)) || isFiniteBound(math.Inf(-1)) || isFiniteBound(math.NaN()) {
		t.Fatal("±Inf and NaN must not be finite bounds")
	}
	if !isFiniteBound(3.5) {
		t.Fatal("a plain float must be a finite bound")
	}
}
