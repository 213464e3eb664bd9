// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package uno_test

import (
	"math"
	"testing"

	uno "github.com/amontoison/Uno"
	"github.com/amontoison/Uno/linsolve"
	"github.com/amontoison/Uno/testproblems"
)

func TestFiniteDifferenceModelGradientMatchesAnalytic(t *testing.T) {
	fd := uno.NewFiniteDifferenceModel(testproblems.Unconstrained1D{}, 0)

	x := []float64{2.0}
	got := make([]float64, 1)
	fd.EvaluateObjectiveGradient(x, got)

	// f(x) = (x-3)^2, ∇f(2) = 2(2-3) = -2.
	if math.Abs(got[0]-(-2)) > 1e-4 {
		t.Fatalf("estimated gradient = %v, want ≈[-2]", got)
	}
}

func TestFiniteDifferenceModelJacobianMatchesAnalytic(t *testing.T) {
	fd := uno.NewFiniteDifferenceModel(testproblems.EqualityConstrained{}, 0)

	x := []float64{1.0, 2.0}
	rows := make([]uno.SparseRow, 1)
	fd.EvaluateConstraintJacobian(x, rows)

	// c(x) = x0+x1, ∇c = [1, 1] everywhere.
	dense := make([]float64, 2)
	for k, c := range rows[0].Cols {
		dense[c] = rows[0].Vals[k]
	}
	if math.Abs(dense[0]-1) > 1e-4 || math.Abs(dense[1]-1) > 1e-4 {
		t.Fatalf("estimated Jacobian row = %v, want ≈[1 1]", dense)
	}
}

func TestFiniteDifferenceModelHessianMatchesAnalytic(t *testing.T) {
	fd := uno.NewFiniteDifferenceModel(testproblems.EqualityConstrained{}, 0)

	x := []float64{1.0, 2.0}
	lambda := []float64{0}
	out := uno.NewSymmetricMatrix(2, 3)
	fd.EvaluateLagrangianHessian(x, 1, lambda, out)

	// f(x) = x0²+x1², ∇²f = 2*I, no constraint contribution since λ=0.
	var h00, h11, h01 float64
	out.ForEach(func(row, col int, value float64) {
		switch {
		case row == 0 && col == 0:
			h00 = value
		case row == 1 && col == 1:
			h11 = value
		case row != col:
			h01 = value
		}
	})
	if math.Abs(h00-2) > 1e-3 || math.Abs(h11-2) > 1e-3 || math.Abs(h01) > 1e-3 {
		t.Fatalf("estimated Hessian diag = (%g,%g), off-diag = %g, want (2,2,0)", h00, h11, h01)
	}
}

// TestDriverRecoversEvaluationError drives a Model whose objective returns
// NaN straight through the Driver, checking the panic surfaces as the
// documented AlgorithmicError termination rather than crashing the process.
func TestDriverRecoversEvaluationError(t *testing.T) {
	opts := uno.Options{"inequality_handling_method": "interior_point", "globalization_mechanism": "line_search", "globalization_strategy": "l1_merit"}
	driver, err := uno.NewDriver(nanObjectiveModel{}, linsolve.NewDenseSymIndefSolver(), nil, opts)
	if err != nil {
		t.Fatal(err)
	}
	iterate := driver.Init([]float64{0})
	result := driver.Solve(iterate)
	if result.Status != uno.AlgorithmicError {
		t.Fatalf("Status = %v, want AlgorithmicError", result.Status)
	}
}

type nanObjectiveModel struct{ testproblems.Unconstrained1D }

func (nanObjectiveModel) EvaluateObjective(x []float64) float64 { return math.NaN() }
