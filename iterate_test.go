// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package uno_test

import (
	"testing"

	uno "github.com/amontoison/Uno"
	"github.com/amontoison/Uno/testproblems"
)

// countingModel wraps EqualityConstrained, counting Model callback
// invocations so the cached-evaluation accessors on Iterate can be checked
// against Testable Property 1.
type countingModel struct {
	testproblems.EqualityConstrained
	objectiveCalls, gradientCalls, constraintCalls, jacobianCalls int
}

func (m *countingModel) EvaluateObjective(x []float64) float64 {
	m.objectiveCalls++
	return m.EqualityConstrained.EvaluateObjective(x)
}

func (m *countingModel) EvaluateObjectiveGradient(x []float64, out []float64) {
	m.gradientCalls++
	m.EqualityConstrained.EvaluateObjectiveGradient(x, out)
}

func (m *countingModel) EvaluateConstraints(x []float64, out []float64) {
	m.constraintCalls++
	m.EqualityConstrained.EvaluateConstraints(x, out)
}

func (m *countingModel) EvaluateConstraintJacobian(x []float64, out []uno.SparseRow) {
	m.jacobianCalls++
	m.EqualityConstrained.EvaluateConstraintJacobian(x, out)
}

// TestIterateCachesModelCalls is Testable Property 1: each cached accessor
// invokes the Model at most once per outer iteration (here, per X), no
// matter how many times it is called, until Invalidate resets the cache.
func TestIterateCachesModelCalls(t *testing.T) {
	model := &countingModel{}
	problem := uno.NewOptimizationProblem(model)
	it := uno.NewIterate(problem.NumVariables(), problem.NumConstraints())
	it.X[0], it.X[1] = 1, 2

	for i := 0; i < 3; i++ {
		it.ObjectiveValue(problem)
		it.ObjectiveGradient(problem)
		it.ConstraintValues(problem)
		it.ConstraintJacobian(problem)
	}

	switch {
	case model.objectiveCalls != 1:
		t.Fatalf("objective called %d times, want 1", model.objectiveCalls)
	case model.gradientCalls != 1:
		t.Fatalf("gradient called %d times, want 1", model.gradientCalls)
	case model.constraintCalls != 1:
		t.Fatalf("constraints called %d times, want 1", model.constraintCalls)
	case model.jacobianCalls != 1:
		t.Fatalf("jacobian called %d times, want 1", model.jacobianCalls)
	}

	it.Invalidate()
	it.ObjectiveValue(problem)
	if model.objectiveCalls != 2 {
		t.Fatalf("objective called %d times after Invalidate, want 2", model.objectiveCalls)
	}
}
