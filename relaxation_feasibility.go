// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package uno

import "math"

// FeasibilityRestoration is the ConstraintRelaxationStrategy of spec.md
// §4.6: it exposes two nested problem views over the same
// OptimizationProblem — optimality (σ=1, elastics inert) and feasibility
// (σ=0, elastics enabled, objective = ‖constraint violation‖_1) — and
// switches between them based on the inequality-handling method's reported
// direction status.
type FeasibilityRestoration struct {
	problem        *OptimizationProblem
	method         InequalityHandlingMethod
	hessianModel   HessianModel
	regularization *RegularizationStrategy

	elasticWeight float64
	solvingFeasibility bool

	tightTolerance      float64
	looseTolerance       float64
	looseThreshold        int
	consecutiveLoose      int
	thetaScale           float64
	unboundedThreshold   float64
	residualNorm          NormKind

	lowerIdx, upperIdx []int

	statBuf          []float64
	boundBuf         []float64
	compBuf          []float64
}

// NewFeasibilityRestoration constructs a FeasibilityRestoration; call
// InitializeMemory before use.
func NewFeasibilityRestoration() *FeasibilityRestoration {
	return &FeasibilityRestoration{}
}

func (fr *FeasibilityRestoration) InitializeMemory(problem *OptimizationProblem, method InequalityHandlingMethod,
	hessianModel HessianModel, regularization *RegularizationStrategy, opts Options) error {

	fr.problem, fr.method, fr.hessianModel, fr.regularization = problem, method, hessianModel, regularization
	fr.lowerIdx = problem.LowerBoundedVariables()
	fr.upperIdx = problem.UpperBoundedVariables()
	fr.statBuf = make([]float64, problem.NumVariables())
	fr.boundBuf = make([]float64, len(fr.lowerIdx)+len(fr.upperIdx))
	fr.compBuf = make([]float64, len(fr.lowerIdx)+len(fr.upperIdx))

	var err error
	if fr.elasticWeight, err = opts.Float("elastic_objective_weight", 1.0); err != nil {
		return err
	}
	if fr.tightTolerance, err = opts.Float("tolerance", 1e-8); err != nil {
		return err
	}
	if fr.looseTolerance, err = opts.Float("loose_tolerance", 1e-6); err != nil {
		return err
	}
	if fr.looseThreshold, err = opts.Int("loose_tolerance_consecutive_iteration_threshold", 15); err != nil {
		return err
	}
	if fr.thetaScale, err = opts.Float("residual_scaling_threshold", 100); err != nil {
		return err
	}
	if fr.unboundedThreshold, err = opts.Float("unbounded_objective_threshold", -1e10); err != nil {
		return err
	}
	fr.residualNorm, err = parseNormKind(opts, "residual_norm", NormL1)
	return err
}

func (fr *FeasibilityRestoration) GenerateInitialIterate(iterate *Iterate) {
	fr.method.GenerateInitialIterate(fr.problem, iterate)
}

func (fr *FeasibilityRestoration) SolvingFeasibilityProblem() bool { return fr.solvingFeasibility }

func (fr *FeasibilityRestoration) Solve(stats *Stats, iterate *Iterate, direction *Direction,
	trustRegionRadius float64, warmstart WarmstartInformation) error {

	if fr.solvingFeasibility && fr.feasibilityRestored(iterate) {
		fr.exitFeasibility(iterate)
	}

	err := fr.method.Solve(stats, fr.problem, iterate, direction, fr.hessianModel, fr.regularization, trustRegionRadius, warmstart)
	if err != nil {
		if se, ok := AsSolverError(err); ok && (se.Kind == SubproblemInfeasible || se.Kind == UnstableRegularization) && !fr.solvingFeasibility {
			fr.enterFeasibility(iterate)
			return fr.method.Solve(stats, fr.problem, iterate, direction, fr.hessianModel, fr.regularization, trustRegionRadius, FullWarmstart())
		}
		return err
	}

	if !fr.solvingFeasibility && direction.Status == DirectionInfeasible {
		fr.enterFeasibility(iterate)
		return fr.method.Solve(stats, fr.problem, iterate, direction, fr.hessianModel, fr.regularization, trustRegionRadius, FullWarmstart())
	}
	if direction.Status == DirectionUnbounded {
		return newError(SubproblemUnbounded, nil, "linearized subproblem unbounded")
	}
	if direction.Status == DirectionError {
		return newError(SubproblemError, nil, "subproblem solver reported an unexpected status")
	}
	return nil
}

// feasibilityRestored reports whether the feasibility phase has made
// sufficient progress to return to the optimality view (spec.md §4.6 step 3).
func (fr *FeasibilityRestoration) feasibilityRestored(iterate *Iterate) bool {
	return computeInfeasibility(fr.problem, iterate, fr.residualNorm) <= fr.tightTolerance
}

func (fr *FeasibilityRestoration) enterFeasibility(iterate *Iterate) {
	fr.method.InitializeFeasibilityProblem(fr.problem, iterate)
	fr.problem.EnableElastics(fr.elasticWeight)
	fr.method.SetElasticVariableValues(fr.problem, iterate)
	iterate.ObjectiveMultiplier = 0
	iterate.Invalidate()
	fr.solvingFeasibility = true
}

func (fr *FeasibilityRestoration) exitFeasibility(iterate *Iterate) {
	fr.method.ExitFeasibilityProblem(fr.problem, iterate)
	fr.problem.DisableElastics()
	fr.problem.ResetElastics(iterate.X)
	iterate.ObjectiveMultiplier = 1
	iterate.Invalidate()
	fr.solvingFeasibility = false
}

// ComputePrimalDualResiduals fills stationarity, complementarity and primal
// feasibility with their scalings (spec.md §4.6's "standard NLP convention").
func (fr *FeasibilityRestoration) ComputePrimalDualResiduals(iterate *Iterate) {
	gradObj, gradCons := iterate.LagrangianGradient(fr.problem)

	k := 0
	for _, i := range fr.lowerIdx {
		fr.boundBuf[k] = iterate.ZL[i]
		k++
	}
	for _, i := range fr.upperIdx {
		fr.boundBuf[k] = iterate.ZU[i]
		k++
	}
	boundMass := norm1(fr.boundBuf)
	multiplierMass := norm1(iterate.Lambda) + boundMass
	nTotal := fr.problem.NumVariables()
	sd := math.Max(1, multiplierMass/(fr.thetaScale*float64(nTotal)))

	for i := range fr.statBuf {
		fr.statBuf[i] = gradObj[i] + gradCons[i] - iterate.ZL[i] - iterate.ZU[i]
	}
	iterate.Residuals.Stationarity = vecNorm(fr.residualNorm, fr.statBuf) / sd
	iterate.Residuals.DualScale = sd

	nBounded := len(fr.lowerIdx) + len(fr.upperIdx)
	sc := 1.0
	if nBounded > 0 {
		sc = math.Max(1, boundMass/(fr.thetaScale*float64(nBounded)))
	}
	k = 0
	for _, i := range fr.lowerIdx {
		lo, _ := fr.problem.VariableBounds(i)
		fr.compBuf[k] = iterate.ZL[i] * (iterate.X[i] - lo)
		k++
	}
	for _, i := range fr.upperIdx {
		_, hi := fr.problem.VariableBounds(i)
		fr.compBuf[k] = iterate.ZU[i] * (iterate.X[i] - hi)
		k++
	}
	iterate.Residuals.Complementarity = vecNorm(fr.residualNorm, fr.compBuf) / sc
	iterate.Residuals.ComplementarityScale = sc

	iterate.Residuals.PrimalFeasibility = computeInfeasibility(fr.problem, iterate, fr.residualNorm)
}

func (fr *FeasibilityRestoration) CheckTermination(iterate *Iterate) relaxationVerdict {
	r := iterate.Residuals
	switch {
	case r.Stationarity <= fr.tightTolerance && r.Complementarity <= fr.tightTolerance && r.PrimalFeasibility <= fr.tightTolerance:
		fr.consecutiveLoose = 0
		return verdictFeasibleKKT
	case r.Stationarity <= fr.looseTolerance && r.Complementarity <= fr.looseTolerance && r.PrimalFeasibility <= fr.looseTolerance:
		fr.consecutiveLoose++
		if fr.consecutiveLoose >= fr.looseThreshold {
			return verdictFeasibleKKT
		}
		return verdictNotOptimal
	default:
		fr.consecutiveLoose = 0
	}

	if fr.solvingFeasibility && r.Stationarity <= fr.tightTolerance && r.PrimalFeasibility > fr.tightTolerance {
		return verdictInfeasibleStationary
	}

	if iterate.ObjectiveValue(fr.problem) <= fr.unboundedThreshold && r.PrimalFeasibility <= fr.looseTolerance {
		return verdictUnbounded
	}

	return verdictNotOptimal
}

func (fr *FeasibilityRestoration) Reset() {
	fr.solvingFeasibility = false
	fr.consecutiveLoose = 0
}

