// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package linsolve provides dense gonum-backed implementations of the
// uno.SymIndefSolver and uno.QPSolver capabilities. Neither variant is
// sparsity-aware: both densify the incoming uno.SymmetricMatrix, which is
// appropriate for the small-to-medium KKT systems and QP subproblems a
// single outer iteration assembles, not for large-scale sparse factorization.
package linsolve

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	uno "github.com/amontoison/Uno"
)

// DenseSymIndefSolver satisfies uno.SymIndefSolver over a densified copy of
// the incoming SymmetricMatrix: a symmetric eigendecomposition (gonum
// mat.EigenSym) supplies the inertia, and a dense LU solve (mat.Dense,
// mat.VecDense.SolveVec) supplies the linear solve, matching the
// "gonum.org/v1/gonum/mat for KKT-adjacent dense linear algebra" pattern.
type DenseSymIndefSolver struct {
	dim int

	full *mat.Dense
	sym  *mat.SymDense
	eig  mat.EigenSym

	inertia   uno.Inertia
	singular  bool
	rank      int
	threshold float64
}

// NewDenseSymIndefSolver builds a DenseSymIndefSolver; call InitializeMemory
// before use.
func NewDenseSymIndefSolver() *DenseSymIndefSolver {
	return &DenseSymIndefSolver{threshold: 1e-12}
}

func (s *DenseSymIndefSolver) InitializeMemory(dim, nnz int) {
	s.dim = dim
	s.full = mat.NewDense(dim, dim, nil)
	s.sym = mat.NewSymDense(dim, nil)
}

func (s *DenseSymIndefSolver) DoSymbolicAnalysis(matrix *uno.SymmetricMatrix) error {
	if matrix.Dimension() != s.dim {
		return errDimensionMismatch{want: s.dim, got: matrix.Dimension()}
	}
	return nil
}

func (s *DenseSymIndefSolver) DoNumericalFactorization(matrix *uno.SymmetricMatrix) error {
	for i := 0; i < s.dim; i++ {
		for j := i; j < s.dim; j++ {
			s.sym.SetSym(i, j, 0)
		}
	}
	matrix.ForEach(func(row, col int, value float64) {
		s.sym.SetSym(row, col, value)
		s.full.Set(row, col, value)
		if row != col {
			s.full.Set(col, row, value)
		}
	})

	if ok := s.eig.Factorize(s.sym, false); !ok {
		return errFactorizationFailed{}
	}

	values := s.eig.Values(nil)
	var plus, minus, zero int
	for _, v := range values {
		switch {
		case v > s.threshold:
			plus++
		case v < -s.threshold:
			minus++
		default:
			zero++
		}
	}
	s.inertia = uno.Inertia{Plus: plus, Minus: minus, Zero: zero}
	s.singular = zero > 0
	s.rank = plus + minus
	return nil
}

func (s *DenseSymIndefSolver) SolveIndefiniteSystem(matrix *uno.SymmetricMatrix, rhs []float64, out []float64) error {
	b := mat.NewVecDense(s.dim, rhs)
	var x mat.VecDense
	if err := x.SolveVec(s.full, b); err != nil {
		return err
	}
	for i := range out {
		out[i] = x.AtVec(i)
	}
	return nil
}

func (s *DenseSymIndefSolver) GetInertia() uno.Inertia { return s.inertia }
func (s *DenseSymIndefSolver) MatrixIsSingular() bool  { return s.singular }
func (s *DenseSymIndefSolver) Rank() int               { return s.rank }

type errDimensionMismatch struct{ want, got int }

func (e errDimensionMismatch) Error() string {
	return fmt.Sprintf("linsolve: matrix dimension %d, solver initialized for %d", e.got, e.want)
}

type errFactorizationFailed struct{}

func (errFactorizationFailed) Error() string { return "linsolve: symmetric eigendecomposition failed" }
