// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package uno

import "math"

// cubeRootEps is the standard step-size scale for a symmetric central
// difference: the error from truncation (O(h²)) and from floating-point
// cancellation (O(eps/h)) balance at h ∝ eps^(1/3).
var cubeRootEps = math.Pow(math.Nextafter(1, 2)-1, 1.0/3)

// FiniteDifferenceModel decorates a Model that only implements
// EvaluateObjective and EvaluateConstraints, estimating the gradient,
// Jacobian, and Lagrangian Hessian that the rest of the Model interface
// requires by symmetric central difference. This lets a caller hand the
// driver a zero-order Model without writing any derivative code at all; the
// resulting problem is still solved with an exact-curvature method, just
// with estimated rather than analytic derivatives.
//
// The Hessian path differentiates the Lagrangian gradient a second time, so
// building it costs O(n) nested Jacobian-sized finite-difference passes per
// call; InequalityHandlingMethod implementations that never request the
// Hessian (ZeroHessianModel) avoid this cost entirely.
type FiniteDifferenceModel struct {
	inner Model
	step  float64
}

// NewFiniteDifferenceModel wraps inner, using relativeStep as the relative
// step size for every coordinate's central difference (0 selects the
// automatic cubeRootEps step everywhere).
func NewFiniteDifferenceModel(inner Model, relativeStep float64) *FiniteDifferenceModel {
	return &FiniteDifferenceModel{inner: inner, step: relativeStep}
}

func (f *FiniteDifferenceModel) NumVariables() int   { return f.inner.NumVariables() }
func (f *FiniteDifferenceModel) NumConstraints() int { return f.inner.NumConstraints() }

func (f *FiniteDifferenceModel) VariableBounds(i int) (float64, float64) {
	return f.inner.VariableBounds(i)
}
func (f *FiniteDifferenceModel) ConstraintBounds(j int) (float64, float64) {
	return f.inner.ConstraintBounds(j)
}
func (f *FiniteDifferenceModel) EqualityConstraints() []int   { return f.inner.EqualityConstraints() }
func (f *FiniteDifferenceModel) InequalityConstraints() []int { return f.inner.InequalityConstraints() }
func (f *FiniteDifferenceModel) LinearConstraints() []int     { return f.inner.LinearConstraints() }
func (f *FiniteDifferenceModel) NonlinearConstraints() []int  { return f.inner.NonlinearConstraints() }

// NumJacobianNonzeros treats the estimated Jacobian as dense: a finite
// difference has no sparsity pattern to report.
func (f *FiniteDifferenceModel) NumJacobianNonzeros() int {
	return f.inner.NumVariables() * f.inner.NumConstraints()
}

// NumHessianNonzeros treats the estimated Hessian as a dense upper triangle.
func (f *FiniteDifferenceModel) NumHessianNonzeros() int {
	n := f.inner.NumVariables()
	return n * (n + 1) / 2
}

func (f *FiniteDifferenceModel) EvaluateObjective(x []float64) float64 {
	return f.inner.EvaluateObjective(x)
}
func (f *FiniteDifferenceModel) EvaluateConstraints(x []float64, out []float64) {
	f.inner.EvaluateConstraints(x, out)
}

func (f *FiniteDifferenceModel) EvaluateObjectiveGradient(x []float64, out []float64) {
	x0 := append([]float64{}, x...)
	f.centralDifference(len(x), 1, func(xi, y []float64) { y[0] = f.inner.EvaluateObjective(xi) }, x0, out)
}

func (f *FiniteDifferenceModel) EvaluateConstraintJacobian(x []float64, out []SparseRow) {
	n, m := len(x), f.inner.NumConstraints()
	if m == 0 {
		return
	}
	dense := make([]float64, n*m)
	x0 := append([]float64{}, x...)
	f.centralDifference(n, m, f.inner.EvaluateConstraints, x0, dense)

	for j := 0; j < m; j++ {
		row := dense[j*n : (j+1)*n]
		cols := make([]int, 0, n)
		vals := make([]float64, 0, n)
		for i, v := range row {
			if v != 0 {
				cols = append(cols, i)
				vals = append(vals, v)
			}
		}
		out[j] = SparseRow{Cols: cols, Vals: vals}
	}
}

func (f *FiniteDifferenceModel) EvaluateLagrangianHessian(x []float64, sigma float64, lambda []float64, out *SymmetricMatrix) {
	n := len(x)
	rows := make([]SparseRow, len(lambda))
	lagrangianGrad := func(xi, grad []float64) {
		f.EvaluateObjectiveGradient(xi, grad)
		for i := range grad {
			grad[i] *= sigma
		}
		f.EvaluateConstraintJacobian(xi, rows)
		for j, row := range rows {
			lam := lambda[j]
			if lam == 0 {
				continue
			}
			for k, c := range row.Cols {
				grad[c] -= lam * row.Vals[k]
			}
		}
	}

	dense := make([]float64, n*n)
	x0 := append([]float64{}, x...)
	f.centralDifference(n, n, lagrangianGrad, x0, dense)

	out.Reset()
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			v := 0.5 * (dense[i+j*n] + dense[j+i*n])
			if v != 0 {
				out.Insert(i, j, v)
			}
		}
	}
}

// centralDifference fills the n×m column-major matrix out (out[i+j*n] holds
// ∂object_j/∂x_i) with the symmetric central-difference estimate of
// object's Jacobian at x0, restoring x0 on return. object must treat its x
// argument as read-only and its y argument as write-only scratch, since both
// are reused across coordinates.
func (f *FiniteDifferenceModel) centralDifference(n, m int, object func(x, y []float64), x0, out []float64) {
	f1, f2 := make([]float64, m), make([]float64, m)
	for i, xi := range x0 {
		h := f.centralStep(xi)
		x0[i] = xi - h
		object(x0, f1)
		x0[i] = xi + h
		object(x0, f2)
		x0[i] = xi

		d := 1 / (2 * h)
		for j := 0; j < m; j++ {
			out[i+j*n] = (f2[j] - f1[j]) * d
		}
	}
}

// centralStep picks the absolute step for coordinate value xi, falling back
// to the standard cubeRootEps step when the relative step is unset or
// underflows at this point (xi+h rounds back to xi in floating point).
func (f *FiniteDifferenceModel) centralStep(xi float64) float64 {
	if f.step != 0 {
		h := math.Copysign(f.step, xi) * math.Abs(xi)
		if (xi+h)-xi != 0 {
			return math.Abs(h)
		}
	}
	return math.Copysign(cubeRootEps, 1) * math.Max(1, math.Abs(xi))
}
