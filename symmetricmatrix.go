// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package uno

// SymmetricMatrix is a logical COO (coordinate-list) representation of a
// symmetric matrix: a dimension plus a list of (row, col, value) entries
// with row ≤ col (upper triangle, diagonal included). A contiguous
// diagonal "regularization" segment is appended after the natural nonzeros
// so that RegularizationStrategy can toggle δ on/off without reassembling
// the matrix (spec.md §3).
type SymmetricMatrix struct {
	dim  int
	rows []int
	cols []int
	vals []float64
	// regStart is the index into rows/cols/vals where the regularization
	// diagonal segment begins; entries at or after regStart are exactly one
	// per row index in regIndex, in order.
	regStart int
	regIndex []int
}

// NewSymmetricMatrix returns an empty n×n SymmetricMatrix with capacity
// preallocated for nnz natural nonzeros.
func NewSymmetricMatrix(n, nnz int) *SymmetricMatrix {
	return &SymmetricMatrix{
		dim:  n,
		rows: make([]int, 0, nnz),
		cols: make([]int, 0, nnz),
		vals: make([]float64, 0, nnz),
	}
}

// Dimension returns the matrix dimension n.
func (m *SymmetricMatrix) Dimension() int { return m.dim }

// Reset clears all entries (natural and regularization) but keeps capacity.
func (m *SymmetricMatrix) Reset() {
	m.rows = m.rows[:0]
	m.cols = m.cols[:0]
	m.vals = m.vals[:0]
	m.regStart = 0
	m.regIndex = m.regIndex[:0]
}

// Insert appends a natural (row, col, value) entry, row ≤ col. Insert must
// not be called after RegularizeDiagonal has appended the regularization
// segment without an intervening Reset.
func (m *SymmetricMatrix) Insert(row, col int, value float64) {
	if row > col {
		row, col = col, row
	}
	m.rows = append(m.rows, row)
	m.cols = append(m.cols, col)
	m.vals = append(m.vals, value)
	m.regStart = len(m.vals)
}

// RegularizeDiagonal appends (or overwrites, if already appended since the
// last Reset) a diagonal perturbation δ_i on each index in indices. The
// segment is appended once; subsequent calls before a Reset overwrite the
// values in place so the caller can retry a regularization loop without
// reallocating the matrix, per spec.md §4.1 step 3.
func (m *SymmetricMatrix) RegularizeDiagonal(indices []int, delta float64) {
	if m.regIndex == nil || len(m.rows) == m.regStart {
		// first call since Reset: append the segment.
		m.regIndex = append(m.regIndex[:0], indices...)
		for _, i := range indices {
			m.rows = append(m.rows, i)
			m.cols = append(m.cols, i)
			m.vals = append(m.vals, delta)
		}
		return
	}
	for k := range m.regIndex {
		m.vals[m.regStart+k] = delta
	}
}

// RegularizeIndex applies a possibly different perturbation per index,
// used when primal rows get +δ and dual rows get -δd (spec.md §4.5 step 2).
func (m *SymmetricMatrix) RegularizeIndex(indices []int, delta func(i int) float64) {
	if m.regIndex == nil || len(m.rows) == m.regStart {
		m.regIndex = append(m.regIndex[:0], indices...)
		for _, i := range indices {
			m.rows = append(m.rows, i)
			m.cols = append(m.cols, i)
			m.vals = append(m.vals, delta(i))
		}
		return
	}
	for k, i := range m.regIndex {
		m.vals[m.regStart+k] = delta(i)
	}
}

// NNZ returns the total number of stored entries, natural plus
// regularization.
func (m *SymmetricMatrix) NNZ() int { return len(m.vals) }

// Entry returns the k-th stored (row, col, value) triple.
func (m *SymmetricMatrix) Entry(k int) (row, col int, value float64) {
	return m.rows[k], m.cols[k], m.vals[k]
}

// ForEach iterates every stored entry in insertion order, natural entries
// first and the regularization segment last.
func (m *SymmetricMatrix) ForEach(fn func(row, col int, value float64)) {
	for k := range m.vals {
		fn(m.rows[k], m.cols[k], m.vals[k])
	}
}

// QuadraticProduct computes xᵀAx, counting off-diagonal entries twice
// (since only the upper triangle is stored).
func (m *SymmetricMatrix) QuadraticProduct(x []float64) float64 {
	total := 0.0
	for k := range m.vals {
		r, c, v := m.rows[k], m.cols[k], m.vals[k]
		if r == c {
			total += v * x[r] * x[r]
		} else {
			total += 2 * v * x[r] * x[c]
		}
	}
	return total
}

// SmallestDiagonal returns the smallest diagonal entry A_ii over i in
// indices, and whether any diagonal entry for those indices was found. Rows
// with no stored diagonal entry are treated as having value 0.
func (m *SymmetricMatrix) SmallestDiagonal(indices []int) (float64, bool) {
	diag := make(map[int]float64, len(indices))
	for _, i := range indices {
		diag[i] = 0
	}
	for k := range m.vals {
		if m.rows[k] == m.cols[k] {
			if _, ok := diag[m.rows[k]]; ok {
				diag[m.rows[k]] = m.vals[k]
			}
		}
	}
	if len(indices) == 0 {
		return 0, false
	}
	min := diag[indices[0]]
	for _, i := range indices[1:] {
		if d := diag[i]; d < min {
			min = d
		}
	}
	return min, true
}

// Inertia is the signature (n+, n-, n0) of a symmetric matrix: the count of
// positive, negative, and zero eigenvalues.
type Inertia struct {
	Plus, Minus, Zero int
}

// Equals reports whether two inertias match exactly.
func (a Inertia) Equals(b Inertia) bool {
	return a.Plus == b.Plus && a.Minus == b.Minus && a.Zero == b.Zero
}

// Dimension returns n+ + n- + n0.
func (a Inertia) Dimension() int { return a.Plus + a.Minus + a.Zero }
