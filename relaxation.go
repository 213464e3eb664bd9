// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package uno

// ConstraintRelaxationStrategy translates the nonlinear problem into a
// sequence of well-posed subproblems, switching between an "optimality" and
// a "feasibility" phase (spec.md §4.6). FeasibilityRestoration is the one
// variant exercised here.
type ConstraintRelaxationStrategy interface {
	InitializeMemory(problem *OptimizationProblem, method InequalityHandlingMethod, hessianModel HessianModel, regularization *RegularizationStrategy, opts Options) error
	GenerateInitialIterate(iterate *Iterate)

	// SolvingFeasibilityProblem reports the current phase.
	SolvingFeasibilityProblem() bool

	// Solve computes a direction for the current iterate, switching phase
	// internally as needed; direction.Status reflects the view it was
	// ultimately solved in.
	Solve(stats *Stats, iterate *Iterate, direction *Direction, trustRegionRadius float64, warmstart WarmstartInformation) error

	// ComputePrimalDualResiduals fills iterate.Residuals from the current
	// primal-dual state.
	ComputePrimalDualResiduals(iterate *Iterate)
	// CheckTermination classifies the current iterate's residuals.
	CheckTermination(iterate *Iterate) relaxationVerdict

	Reset()
}

// computeInfeasibility returns the norm of the constraint residual c(x) - s,
// with the elastic pair's contribution removed when elastics are enabled,
// which is exactly the nonlinear primal infeasibility measure regardless of
// which view (optimality or feasibility) is active, reusing the Iterate's
// cached Model evaluation (Testable Property 1).
func computeInfeasibility(problem *OptimizationProblem, iterate *Iterate, norm NormKind) float64 {
	cval := iterate.ConstraintValues(problem)
	if !problem.elasticsOn {
		return vecNorm(norm, cval)
	}
	residual := make([]float64, len(cval))
	for j := range cval {
		residual[j] = cval[j] + iterate.X[problem.positiveElasticIndex(j)] - iterate.X[problem.negativeElasticIndex(j)]
	}
	return vecNorm(norm, residual)
}
