// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package uno

// SymIndefSolver is the external symmetric-indefinite direct-solver
// capability the core consumes (spec.md §6). The core never implements one
// itself; concrete backends (e.g. package linsolve) satisfy this interface.
type SymIndefSolver interface {
	InitializeMemory(dim, nnz int)
	DoSymbolicAnalysis(matrix *SymmetricMatrix) error
	DoNumericalFactorization(matrix *SymmetricMatrix) error
	SolveIndefiniteSystem(matrix *SymmetricMatrix, rhs []float64, out []float64) error
	GetInertia() Inertia
	MatrixIsSingular() bool
	Rank() int
}

// QPSolver is the external quadratic-program capability the core consumes
// (spec.md §6): minimize gᵀd + ½dᵀHd subject to linearized constraint and
// bound rows.
type QPSolver interface {
	// Solve finds d minimizing gᵀd + ½dᵀHd subject to
	// lbC ≤ J d ≤ ubC and lbX ≤ d ≤ ubX, starting from initial (may be nil
	// for a cold start), consuming warmstart as a hint for how to reuse
	// prior factorizations/active sets.
	Solve(h *SymmetricMatrix, g []float64, jac []SparseRow,
		lbX, ubX, lbC, ubC []float64,
		initial []float64, warmstart WarmstartInformation,
		direction *Direction) error
}
