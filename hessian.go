// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package uno

// HessianModel produces the Lagrangian Hessian ∇²_xx L(x,σ,λ), either exact
// (from the Model) or zero (spec.md §4.2). Both variants report the number
// of nonzeros and whether the structure is constant up front, so callers
// can preallocate.
type HessianModel interface {
	Evaluate(problem *OptimizationProblem, sigma float64, x []float64, lambda []float64, out *SymmetricMatrix)
	IsPositiveDefinite() bool
	NumNonzeros() int
	ConstantStructure() bool
}

// ExactHessianModel defers to the Model's own ∇²_xx L evaluation.
type ExactHessianModel struct {
	nnz int
}

// NewExactHessianModel builds an ExactHessianModel for a problem with nnz
// Hessian nonzeros (queried from the Model up front).
func NewExactHessianModel(nnz int) *ExactHessianModel {
	return &ExactHessianModel{nnz: nnz}
}

func (h *ExactHessianModel) Evaluate(problem *OptimizationProblem, sigma float64, x []float64, lambda []float64, out *SymmetricMatrix) {
	problem.EvaluateLagrangianHessian(sigma, x, lambda, out)
}

func (h *ExactHessianModel) IsPositiveDefinite() bool { return false }
func (h *ExactHessianModel) NumNonzeros() int         { return h.nnz }
func (h *ExactHessianModel) ConstantStructure() bool  { return true }

// ZeroHessianModel always produces the zero matrix of the right shape, used
// when the caller will treat the subproblem as an LP.
type ZeroHessianModel struct {
	dim int
}

// NewZeroHessianModel builds a ZeroHessianModel for a problem of dimension
// dim.
func NewZeroHessianModel(dim int) *ZeroHessianModel {
	return &ZeroHessianModel{dim: dim}
}

func (h *ZeroHessianModel) Evaluate(problem *OptimizationProblem, sigma float64, x []float64, lambda []float64, out *SymmetricMatrix) {
	out.Reset()
}

func (h *ZeroHessianModel) IsPositiveDefinite() bool { return true }
func (h *ZeroHessianModel) NumNonzeros() int         { return 0 }
func (h *ZeroHessianModel) ConstantStructure() bool  { return true }
