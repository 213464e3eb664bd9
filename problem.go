// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package uno

import "math"

// OptimizationProblem presents a Model as a standardized equality-constrained
// problem with explicit slacks and bounds (spec.md §3). For every original
// constraint j it introduces:
//
//   - a slack s_j bounded by the original [cL_j, cU_j], turning the
//     constraint into the equality c_j(x) - s_j = 0;
//   - an ℓ1-elastic pair (p_j, n_j) ≥ 0 so the feasibility phase can relax
//     the same row to c_j(x) - s_j + p_j - n_j = 0.
//
// The elastic pair is always allocated (fixed variable-count reformulation
// avoids resizing the problem mid-solve) but is inert — bounded to {0} with
// zero objective weight — until EnableElastics is called, which is exactly
// the "append/relax" spec.md describes without ever changing NumVariables.
//
// Variable layout: [0,n0) original x, [n0,n0+m) slacks, [n0+m,n0+2m)
// positive elastics, [n0+2m,n0+3m) negative elastics.
type OptimizationProblem struct {
	model Model
	n0, m int

	elasticsOn     bool
	elasticWeight  []float64 // objective coefficient on (p_j + n_j), per j
}

// NewOptimizationProblem wraps model.
func NewOptimizationProblem(model Model) *OptimizationProblem {
	m := model.NumConstraints()
	return &OptimizationProblem{
		model:         model,
		n0:            model.NumVariables(),
		m:             m,
		elasticWeight: make([]float64, m),
	}
}

// Model returns the wrapped Model.
func (p *OptimizationProblem) Model() Model { return p.model }

// NumVariables returns n0 + 3m (original, slack, positive elastic, negative
// elastic).
func (p *OptimizationProblem) NumVariables() int { return p.n0 + 3*p.m }

// NumConstraints returns m: every row is now an equality.
func (p *OptimizationProblem) NumConstraints() int { return p.m }

// OriginalVariables returns n0, the dimension of the wrapped Model.
func (p *OptimizationProblem) OriginalVariables() int { return p.n0 }

func (p *OptimizationProblem) slackIndex(j int) int       { return p.n0 + j }
func (p *OptimizationProblem) positiveElasticIndex(j int) int { return p.n0 + p.m + j }
func (p *OptimizationProblem) negativeElasticIndex(j int) int { return p.n0 + 2*p.m + j }

// EnableElastics turns on the ℓ1-elastic relaxation for every constraint,
// with coefficient weight on each elastic pair's contribution to the
// feasibility objective (spec.md §4.6, §9 open question #2: the elastic
// bound uses c_j(x), resolved at SetElasticVariableValues below).
func (p *OptimizationProblem) EnableElastics(weight float64) {
	p.elasticsOn = true
	for j := range p.elasticWeight {
		p.elasticWeight[j] = weight
	}
}

// DisableElastics turns the elastic pair back into fixed-at-zero variables.
func (p *OptimizationProblem) DisableElastics() {
	p.elasticsOn = false
}

// VariableBounds returns the bounds of reformulated variable i.
func (p *OptimizationProblem) VariableBounds(i int) (lower, upper float64) {
	switch {
	case i < p.n0:
		return p.model.VariableBounds(i)
	case i < p.n0+p.m:
		return p.model.ConstraintBounds(i - p.n0)
	default:
		if !p.elasticsOn {
			return 0, 0
		}
		return 0, math.Inf(1)
	}
}

// SeedSlacksFromConstraints sets every slack variable to the Model's
// constraint value at x (the elastics, assumed inert, are left at 0), used
// once when building the initial iterate so the slack starts at c(x) rather
// than at an arbitrary default before being pushed into its own bounds.
func (p *OptimizationProblem) SeedSlacksFromConstraints(x []float64) {
	c := make([]float64, p.m)
	p.model.EvaluateConstraints(x[:p.n0], c)
	for j := 0; j < p.m; j++ {
		x[p.slackIndex(j)] = c[j]
	}
}

// LowerBoundedVariables returns the indices with a finite lower bound.
func (p *OptimizationProblem) LowerBoundedVariables() []int {
	var idx []int
	for i := 0; i < p.NumVariables(); i++ {
		lo, _ := p.VariableBounds(i)
		if isFiniteBound(lo) {
			idx = append(idx, i)
		}
	}
	return idx
}

// UpperBoundedVariables returns the indices with a finite upper bound.
func (p *OptimizationProblem) UpperBoundedVariables() []int {
	var idx []int
	for i := 0; i < p.NumVariables(); i++ {
		_, hi := p.VariableBounds(i)
		if isFiniteBound(hi) {
			idx = append(idx, i)
		}
	}
	return idx
}

// EvaluateObjective returns σf(x0) + Σ weight_j(p_j + n_j).
func (p *OptimizationProblem) EvaluateObjective(sigma float64, x []float64) float64 {
	val := sigma * p.model.EvaluateObjective(x[:p.n0])
	if p.elasticsOn {
		for j := 0; j < p.m; j++ {
			val += p.elasticWeight[j] * (x[p.positiveElasticIndex(j)] + x[p.negativeElasticIndex(j)])
		}
	}
	return val
}

// EvaluateObjectiveGradient writes the gradient of EvaluateObjective into
// out (length NumVariables()).
func (p *OptimizationProblem) EvaluateObjectiveGradient(sigma float64, x []float64, out []float64) {
	for i := range out {
		out[i] = 0
	}
	grad := out[:p.n0]
	p.model.EvaluateObjectiveGradient(x[:p.n0], grad)
	for i := range grad {
		grad[i] *= sigma
	}
	if p.elasticsOn {
		for j := 0; j < p.m; j++ {
			out[p.positiveElasticIndex(j)] = p.elasticWeight[j]
			out[p.negativeElasticIndex(j)] = p.elasticWeight[j]
		}
	}
}

// EvaluateConstraints writes c(x0) - s - p + n into out.
func (p *OptimizationProblem) EvaluateConstraints(x []float64, out []float64) {
	p.model.EvaluateConstraints(x[:p.n0], out)
	for j := 0; j < p.m; j++ {
		out[j] -= x[p.slackIndex(j)]
		if p.elasticsOn {
			out[j] -= x[p.positiveElasticIndex(j)]
			out[j] += x[p.negativeElasticIndex(j)]
		}
	}
}

// EvaluateConstraintJacobian writes the Jacobian of the reformulated
// constraints: the Model's row, plus -1 on the slack column and ∓1 on the
// elastic columns.
func (p *OptimizationProblem) EvaluateConstraintJacobian(x []float64, out []SparseRow) {
	p.model.EvaluateConstraintJacobian(x[:p.n0], out)
	for j := 0; j < p.m; j++ {
		row := out[j]
		cols := append(append([]int{}, row.Cols...), p.slackIndex(j))
		vals := append(append([]float64{}, row.Vals...), -1)
		if p.elasticsOn {
			cols = append(cols, p.positiveElasticIndex(j), p.negativeElasticIndex(j))
			vals = append(vals, -1, 1)
		}
		out[j] = SparseRow{Cols: cols, Vals: vals}
	}
}

// EvaluateLagrangianHessian delegates to the Model: slacks and elastics are
// linear in the reformulated constraints and at most linear in the objective, so
// they contribute nothing to ∇²_xx L beyond the original n0×n0 block.
func (p *OptimizationProblem) EvaluateLagrangianHessian(sigma float64, x []float64, lambda []float64, out *SymmetricMatrix) {
	p.model.EvaluateLagrangianHessian(x[:p.n0], sigma, lambda, out)
}

// ResetElastics zeroes every elastic pair in x, regardless of whether
// elastics are currently enabled; used when the relaxation layer leaves the
// feasibility phase so stale elastic values never leak back into the
// optimality view.
func (p *OptimizationProblem) ResetElastics(x []float64) {
	for j := 0; j < p.m; j++ {
		x[p.positiveElasticIndex(j)] = 0
		x[p.negativeElasticIndex(j)] = 0
	}
}

// SetElasticVariableValues sets every elastic pair from the current
// per-constraint violation (spec.md §9 open question #2: the source's TODO
// of "constraint_j = 0" is resolved to the actual violation c_j(x), not a
// literal zero).
func (p *OptimizationProblem) SetElasticVariableValues(x []float64, violations []float64) {
	for j, v := range violations {
		if v > 0 {
			x[p.positiveElasticIndex(j)] = v
			x[p.negativeElasticIndex(j)] = 0
		} else {
			x[p.positiveElasticIndex(j)] = 0
			x[p.negativeElasticIndex(j)] = -v
		}
	}
}
