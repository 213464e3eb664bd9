// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package uno

import "math"

// Hadamard computes the componentwise (Hadamard) product of mask and x into
// dst, dst_i = mask_i * x_i. mask is typically {0,1}^n selecting a subset of
// indices (e.g. bounded variables). dst may alias x.
func Hadamard(dst, mask, x []float64) {
	for i := range dst {
		dst[i] = mask[i] * x[i]
	}
}

// HadamardView lazily exposes the Hadamard product of mask and x without
// allocating, for call sites that only need to iterate the result once.
type HadamardView struct {
	mask, x []float64
}

// NewHadamardView returns a view over mask ⊙ x.
func NewHadamardView(mask, x []float64) HadamardView {
	return HadamardView{mask: mask, x: x}
}

// At returns (mask ⊙ x)_i.
func (h HadamardView) At(i int) float64 { return h.mask[i] * h.x[i] }

// Len returns the number of components.
func (h HadamardView) Len() int { return len(h.x) }

func norm1(v []float64) float64 {
	s := 0.0
	for _, vi := range v {
		s += math.Abs(vi)
	}
	return s
}

func norm2(v []float64) float64 {
	s := 0.0
	for _, vi := range v {
		s += vi * vi
	}
	return math.Sqrt(s)
}

func normInf(v []float64) float64 {
	m := 0.0
	for _, vi := range v {
		if a := math.Abs(vi); a > m {
			m = a
		}
	}
	return m
}

func dotProduct(a, b []float64) float64 {
	s := 0.0
	for i := range a {
		s += a[i] * b[i]
	}
	return s
}

func clip(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

func isFiniteBound(b float64) bool {
	return !math.IsInf(b, 0) && !math.IsNaN(b)
}
