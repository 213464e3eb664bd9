// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package testproblems collects the small, literal Models the end-to-end
// scenarios of spec.md §8 are built from (unconstrained, bound-constrained,
// equality-constrained, infeasible, nonconvex-saddle, and
// feasibility-switch), each implementing uno.Model directly rather than
// through any kind of builder, matching the literal Problem/Evaluation
// fixtures the teacher's own tests construct by hand.
package testproblems

import (
	"math"

	uno "github.com/amontoison/Uno"
)

var noBound = math.Inf(1)

// Unconstrained1D is S1: f(x) = (x-3)^2, x ∈ ℝ.
type Unconstrained1D struct{}

func (Unconstrained1D) NumVariables() int   { return 1 }
func (Unconstrained1D) NumConstraints() int { return 0 }

func (Unconstrained1D) VariableBounds(int) (lower, upper float64) { return -noBound, noBound }
func (Unconstrained1D) ConstraintBounds(int) (lower, upper float64) { return 0, 0 }

func (Unconstrained1D) EqualityConstraints() []int   { return nil }
func (Unconstrained1D) InequalityConstraints() []int { return nil }
func (Unconstrained1D) LinearConstraints() []int     { return nil }
func (Unconstrained1D) NonlinearConstraints() []int  { return nil }

func (Unconstrained1D) NumJacobianNonzeros() int { return 0 }
func (Unconstrained1D) NumHessianNonzeros() int  { return 1 }

func (Unconstrained1D) EvaluateObjective(x []float64) float64 {
	return (x[0] - 3) * (x[0] - 3)
}

func (Unconstrained1D) EvaluateObjectiveGradient(x []float64, out []float64) {
	out[0] = 2 * (x[0] - 3)
}

func (Unconstrained1D) EvaluateConstraints([]float64, []float64) {}

func (Unconstrained1D) EvaluateConstraintJacobian([]float64, []uno.SparseRow) {}

func (Unconstrained1D) EvaluateLagrangianHessian(x []float64, sigma float64, lambda []float64, out *uno.SymmetricMatrix) {
	out.Reset()
	out.Insert(0, 0, 2*sigma)
}

// BoxConstrained is S2: f(x) = x^2, 1 ≤ x ≤ 10.
type BoxConstrained struct{}

func (BoxConstrained) NumVariables() int   { return 1 }
func (BoxConstrained) NumConstraints() int { return 0 }

func (BoxConstrained) VariableBounds(int) (lower, upper float64) { return 1, 10 }
func (BoxConstrained) ConstraintBounds(int) (lower, upper float64) { return 0, 0 }

func (BoxConstrained) EqualityConstraints() []int   { return nil }
func (BoxConstrained) InequalityConstraints() []int { return nil }
func (BoxConstrained) LinearConstraints() []int     { return nil }
func (BoxConstrained) NonlinearConstraints() []int  { return nil }

func (BoxConstrained) NumJacobianNonzeros() int { return 0 }
func (BoxConstrained) NumHessianNonzeros() int  { return 1 }

func (BoxConstrained) EvaluateObjective(x []float64) float64 { return x[0] * x[0] }

func (BoxConstrained) EvaluateObjectiveGradient(x []float64, out []float64) {
	out[0] = 2 * x[0]
}

func (BoxConstrained) EvaluateConstraints([]float64, []float64) {}

func (BoxConstrained) EvaluateConstraintJacobian([]float64, []uno.SparseRow) {}

func (BoxConstrained) EvaluateLagrangianHessian(x []float64, sigma float64, lambda []float64, out *uno.SymmetricMatrix) {
	out.Reset()
	out.Insert(0, 0, 2*sigma)
}

// EqualityConstrained is S3: min x1²+x2² s.t. x1+x2 = 1.
type EqualityConstrained struct{}

func (EqualityConstrained) NumVariables() int   { return 2 }
func (EqualityConstrained) NumConstraints() int { return 1 }

func (EqualityConstrained) VariableBounds(int) (lower, upper float64) { return -noBound, noBound }
func (EqualityConstrained) ConstraintBounds(int) (lower, upper float64) { return 1, 1 }

func (EqualityConstrained) EqualityConstraints() []int   { return []int{0} }
func (EqualityConstrained) InequalityConstraints() []int { return nil }
func (EqualityConstrained) LinearConstraints() []int     { return []int{0} }
func (EqualityConstrained) NonlinearConstraints() []int  { return nil }

func (EqualityConstrained) NumJacobianNonzeros() int { return 2 }
func (EqualityConstrained) NumHessianNonzeros() int  { return 2 }

func (EqualityConstrained) EvaluateObjective(x []float64) float64 {
	return x[0]*x[0] + x[1]*x[1]
}

func (EqualityConstrained) EvaluateObjectiveGradient(x []float64, out []float64) {
	out[0], out[1] = 2*x[0], 2*x[1]
}

func (EqualityConstrained) EvaluateConstraints(x []float64, out []float64) {
	out[0] = x[0] + x[1]
}

func (EqualityConstrained) EvaluateConstraintJacobian(x []float64, out []uno.SparseRow) {
	out[0] = uno.SparseRow{Cols: []int{0, 1}, Vals: []float64{1, 1}}
}

func (EqualityConstrained) EvaluateLagrangianHessian(x []float64, sigma float64, lambda []float64, out *uno.SymmetricMatrix) {
	out.Reset()
	out.Insert(0, 0, 2*sigma)
	out.Insert(1, 1, 2*sigma)
}

// Infeasible is S4: min x² s.t. x ≥ 1, x ≤ 0, expressed as two linear
// inequality constraints (not variable bounds) so the contradiction is
// discovered by the solver rather than rejected as a malformed Model.
type Infeasible struct{}

func (Infeasible) NumVariables() int   { return 1 }
func (Infeasible) NumConstraints() int { return 2 }

func (Infeasible) VariableBounds(int) (lower, upper float64) { return -noBound, noBound }

func (Infeasible) ConstraintBounds(j int) (lower, upper float64) {
	if j == 0 {
		return 0, noBound // x - 1 ≥ 0  i.e. x ≥ 1
	}
	return -noBound, 0 // x ≤ 0
}

func (Infeasible) EqualityConstraints() []int   { return nil }
func (Infeasible) InequalityConstraints() []int { return []int{0, 1} }
func (Infeasible) LinearConstraints() []int     { return []int{0, 1} }
func (Infeasible) NonlinearConstraints() []int  { return nil }

func (Infeasible) NumJacobianNonzeros() int { return 2 }
func (Infeasible) NumHessianNonzeros() int  { return 1 }

func (Infeasible) EvaluateObjective(x []float64) float64 { return x[0] * x[0] }

func (Infeasible) EvaluateObjectiveGradient(x []float64, out []float64) {
	out[0] = 2 * x[0]
}

func (Infeasible) EvaluateConstraints(x []float64, out []float64) {
	out[0] = x[0] - 1 // ≥ 0  ⇒ x ≥ 1
	out[1] = x[0]     // ≤ 0  ⇒ x ≤ 0
}

func (Infeasible) EvaluateConstraintJacobian(x []float64, out []uno.SparseRow) {
	out[0] = uno.SparseRow{Cols: []int{0}, Vals: []float64{1}}
	out[1] = uno.SparseRow{Cols: []int{0}, Vals: []float64{1}}
}

func (Infeasible) EvaluateLagrangianHessian(x []float64, sigma float64, lambda []float64, out *uno.SymmetricMatrix) {
	out.Reset()
	out.Insert(0, 0, 2*sigma)
}

// NonconvexSaddle is S5: min x1·x2 s.t. x1+x2 = 1, whose Lagrangian Hessian
// is the constant indefinite matrix [[0,1],[1,0]] at every iterate.
type NonconvexSaddle struct{}

func (NonconvexSaddle) NumVariables() int   { return 2 }
func (NonconvexSaddle) NumConstraints() int { return 1 }

func (NonconvexSaddle) VariableBounds(int) (lower, upper float64) { return -noBound, noBound }
func (NonconvexSaddle) ConstraintBounds(int) (lower, upper float64) { return 1, 1 }

func (NonconvexSaddle) EqualityConstraints() []int   { return []int{0} }
func (NonconvexSaddle) InequalityConstraints() []int { return nil }
func (NonconvexSaddle) LinearConstraints() []int     { return []int{0} }
func (NonconvexSaddle) NonlinearConstraints() []int  { return nil }

func (NonconvexSaddle) NumJacobianNonzeros() int { return 2 }
func (NonconvexSaddle) NumHessianNonzeros() int  { return 1 }

func (NonconvexSaddle) EvaluateObjective(x []float64) float64 { return x[0] * x[1] }

func (NonconvexSaddle) EvaluateObjectiveGradient(x []float64, out []float64) {
	out[0], out[1] = x[1], x[0]
}

func (NonconvexSaddle) EvaluateConstraints(x []float64, out []float64) {
	out[0] = x[0] + x[1]
}

func (NonconvexSaddle) EvaluateConstraintJacobian(x []float64, out []uno.SparseRow) {
	out[0] = uno.SparseRow{Cols: []int{0, 1}, Vals: []float64{1, 1}}
}

func (NonconvexSaddle) EvaluateLagrangianHessian(x []float64, sigma float64, lambda []float64, out *uno.SymmetricMatrix) {
	out.Reset()
	out.Insert(0, 1, sigma)
}

// FeasibilitySwitch is S6: min x² s.t. (x-1)² - 0.1 ≤ 0, infeasible at the
// usual starting point x0 = 5 but feasible on [1-√0.1, 1+√0.1].
type FeasibilitySwitch struct{}

func (FeasibilitySwitch) NumVariables() int   { return 1 }
func (FeasibilitySwitch) NumConstraints() int { return 1 }

func (FeasibilitySwitch) VariableBounds(int) (lower, upper float64) { return -noBound, noBound }
func (FeasibilitySwitch) ConstraintBounds(int) (lower, upper float64) { return -noBound, 0 }

func (FeasibilitySwitch) EqualityConstraints() []int   { return nil }
func (FeasibilitySwitch) InequalityConstraints() []int { return []int{0} }
func (FeasibilitySwitch) LinearConstraints() []int     { return nil }
func (FeasibilitySwitch) NonlinearConstraints() []int  { return []int{0} }

func (FeasibilitySwitch) NumJacobianNonzeros() int { return 1 }
func (FeasibilitySwitch) NumHessianNonzeros() int  { return 1 }

func (FeasibilitySwitch) EvaluateObjective(x []float64) float64 { return x[0] * x[0] }

func (FeasibilitySwitch) EvaluateObjectiveGradient(x []float64, out []float64) {
	out[0] = 2 * x[0]
}

func (FeasibilitySwitch) EvaluateConstraints(x []float64, out []float64) {
	out[0] = (x[0]-1)*(x[0]-1) - 0.1
}

func (FeasibilitySwitch) EvaluateConstraintJacobian(x []float64, out []uno.SparseRow) {
	out[0] = uno.SparseRow{Cols: []int{0}, Vals: []float64{2 * (x[0] - 1)}}
}

func (FeasibilitySwitch) EvaluateLagrangianHessian(x []float64, sigma float64, lambda []float64, out *uno.SymmetricMatrix) {
	out.Reset()
	out.Insert(0, 0, 2*sigma-2*lambda[0])
}
