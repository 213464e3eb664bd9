// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package uno

import "math"

// PrimalDualInteriorPoint computes Δ(x,λ,zL,zU) from the barrier-augmented
// KKT system of spec.md §4.5 (Ipopt-style primal-dual interior point):
//
//	[ W+δx I   Jᵀ  ] [Δx]   [-∇L(x,σ,λ) - ΣL·(x-xL) ... ]
//	[ J       -δc I] [-Δλ] = [-c(x)                     ]
//
// with the bound multiplier steps recovered afterward from the
// complementarity equations zL·(x-xL)=μ, zU·(xU-x)=μ. The barrier parameter
// μ decreases monotonically; a decrease is a self-driven SubproblemDefinitionChanged
// event, consistent with how RegularizationStrategy re-seeds δ per solve.
type PrimalDualInteriorPoint struct {
	solver SymIndefSolver

	n, m int
	h    *SymmetricMatrix // primal Lagrangian Hessian only, for HessianQuadraticProduct
	kkt  *SymmetricMatrix // augmented (n+m)×(n+m) system

	rhs, sol []float64

	lowerIdx, upperIdx []int
	sigmaL, sigmaU     []float64 // primal-dual diagonal terms, ΣL_i = zL_i/(x_i-xL_i)
	barrierL, barrierU []float64 // μ/(x_i-xL_i), μ/(xU_i-x_i), zero off the respective index set

	mu                     float64
	muInit                 float64
	muMin                  float64
	muReduce               float64
	muExponent             float64 // e, dual regularization δd = μ^e
	tauMin                 float64
	pushKappa1, pushKappa2 float64
	lambdaCap              float64 // discard the least-squares λ estimate if ‖λ‖∞ exceeds this

	dampingFactor        float64 // κ_d, linear damping on single-bounded variables
	defaultMultiplier    float64 // initial |zL|, |zU| pushed onto every bounded index
	kappaSigma           float64 // κ_Σ, PostprocessIterate's multiplier-reset band
	smallDirectionFactor float64 // small-step detector tolerance, in machine epsilons

	singleLowerIdx, singleUpperIdx []int // lower-only / upper-only bounded indices

	muBeforeFeasibility float64
	skipBarrierUpdate   bool

	muChanged     bool
	lastDirection Direction
}

// machineEpsilon is the IEEE 754 double-precision unit roundoff, used by the
// small-step detector's tolerance.
const machineEpsilon = 2.220446049250313e-16

// NewPrimalDualInteriorPoint builds a PrimalDualInteriorPoint backed by the
// given symmetric-indefinite solver, reading barrier constants from opts.
func NewPrimalDualInteriorPoint(solver SymIndefSolver, opts Options) (*PrimalDualInteriorPoint, error) {
	muInit, err := opts.Float("barrier_mu_init", 0.1)
	if err != nil {
		return nil, err
	}
	muMin, err := opts.Float("barrier_mu_min", 1e-11)
	if err != nil {
		return nil, err
	}
	muReduce, err := opts.Float("barrier_mu_reduction_factor", 0.2)
	if err != nil {
		return nil, err
	}
	tauMin, err := opts.Float("barrier_tau_min", 0.99)
	if err != nil {
		return nil, err
	}
	muExponent, err := opts.Float("barrier_regularization_exponent", 0.25)
	if err != nil {
		return nil, err
	}
	lambdaCap, err := opts.Float("initial_lambda_max", 1e3)
	if err != nil {
		return nil, err
	}
	pushKappa1, err := opts.Float("barrier_push_variable_to_interior_k1", 1e-2)
	if err != nil {
		return nil, err
	}
	pushKappa2, err := opts.Float("barrier_push_variable_to_interior_k2", 1e-2)
	if err != nil {
		return nil, err
	}
	dampingFactor, err := opts.Float("barrier_damping_factor", 0)
	if err != nil {
		return nil, err
	}
	defaultMultiplier, err := opts.Float("barrier_default_multiplier", 1)
	if err != nil {
		return nil, err
	}
	kappaSigma, err := opts.Float("barrier_k_sigma", 1e10)
	if err != nil {
		return nil, err
	}
	smallDirectionFactor, err := opts.Float("barrier_small_direction_factor", 1e2)
	if err != nil {
		return nil, err
	}
	return &PrimalDualInteriorPoint{
		solver:               solver,
		mu:                   muInit,
		muInit:               muInit,
		muMin:                muMin,
		muReduce:             muReduce,
		muExponent:           muExponent,
		tauMin:               tauMin,
		pushKappa1:           pushKappa1,
		pushKappa2:           pushKappa2,
		lambdaCap:            lambdaCap,
		dampingFactor:        dampingFactor,
		defaultMultiplier:    defaultMultiplier,
		kappaSigma:           kappaSigma,
		smallDirectionFactor: smallDirectionFactor,
	}, nil
}

func (ip *PrimalDualInteriorPoint) InitializeMemory(problem *OptimizationProblem, hessianModel HessianModel, regularization *RegularizationStrategy) {
	ip.n, ip.m = problem.NumVariables(), problem.NumConstraints()
	ip.h = NewSymmetricMatrix(ip.n, hessianModel.NumNonzeros())
	ip.kkt = NewSymmetricMatrix(ip.n+ip.m, hessianModel.NumNonzeros()+ip.n)
	ip.rhs = make([]float64, ip.n+ip.m)
	ip.sol = make([]float64, ip.n+ip.m)
	ip.lowerIdx = problem.LowerBoundedVariables()
	ip.upperIdx = problem.UpperBoundedVariables()
	for i := 0; i < ip.n; i++ {
		lo, hi := problem.VariableBounds(i)
		loFinite, hiFinite := isFiniteBound(lo), isFiniteBound(hi)
		switch {
		case loFinite && !hiFinite:
			ip.singleLowerIdx = append(ip.singleLowerIdx, i)
		case hiFinite && !loFinite:
			ip.singleUpperIdx = append(ip.singleUpperIdx, i)
		}
	}
	ip.sigmaL = make([]float64, ip.n)
	ip.sigmaU = make([]float64, ip.n)
	ip.barrierL = make([]float64, ip.n)
	ip.barrierU = make([]float64, ip.n)
	ip.lastDirection = *NewDirection(ip.n, ip.m)
}

// GenerateInitialIterate pushes the user's point strictly interior (spec.md
// §4.5 "push the initial point away from its bounds") and seeds the bound
// multipliers at ±defaultMultiplier on every bounded index, following
// Ipopt's default initialization rule.
func (ip *PrimalDualInteriorPoint) GenerateInitialIterate(problem *OptimizationProblem, iterate *Iterate) {
	problem.SeedSlacksFromConstraints(iterate.X)

	for i := range iterate.X {
		lo, hi := problem.VariableBounds(i)
		loFinite, hiFinite := isFiniteBound(lo), isFiniteBound(hi)
		switch {
		case loFinite && hiFinite:
			bound := math.Min(ip.pushKappa1*math.Max(1, math.Abs(lo)), ip.pushKappa2*(hi-lo))
			iterate.X[i] = clip(iterate.X[i], lo+bound, hi-bound)
		case loFinite:
			iterate.X[i] = math.Max(iterate.X[i], lo+ip.pushKappa1*math.Max(1, math.Abs(lo)))
		case hiFinite:
			iterate.X[i] = math.Min(iterate.X[i], hi-ip.pushKappa1*math.Max(1, math.Abs(hi)))
		}
		iterate.ZL[i], iterate.ZU[i] = 0, 0
	}
	for _, i := range ip.lowerIdx {
		iterate.ZL[i] = ip.defaultMultiplier
	}
	for _, i := range ip.upperIdx {
		iterate.ZU[i] = -ip.defaultMultiplier
	}
	ip.mu = ip.muInit

	if ip.m > 0 {
		ip.estimateInitialLambda(problem, iterate)
	}
}

// estimateInitialLambda solves the least-squares normal equations
// (JJᵀ)λ = J·(∇f − zL − zU) for the multiplier vector that best satisfies
// dual feasibility at the pushed starting point, discarding the estimate
// (keeping λ = 0) if it is unreasonably large or the system is singular
// (spec.md §4.5 "Initial iterate"). ip.solver was sized by InitializeMemory
// for the full (n+m)-dimensional KKT system, so the m×m normal-equations
// block is embedded in its top-left-identity, bottom-right-JJᵀ padding
// rather than handed to the solver at a mismatched dimension.
func (ip *PrimalDualInteriorPoint) estimateInitialLambda(problem *OptimizationProblem, iterate *Iterate) {
	grad := iterate.ObjectiveGradient(problem)
	jac := iterate.ConstraintJacobian(problem)

	adjusted := make([]float64, ip.n)
	for i := range adjusted {
		adjusted[i] = grad[i] - iterate.ZL[i] - iterate.ZU[i]
	}

	padded := NewSymmetricMatrix(ip.n+ip.m, ip.n+ip.m*ip.m)
	for i := 0; i < ip.n; i++ {
		padded.Insert(i, i, 1)
	}
	for j := 0; j < ip.m; j++ {
		for l := j; l < ip.m; l++ {
			padded.Insert(ip.n+j, ip.n+l, sparseDot(jac[j], jac[l]))
		}
	}

	rhs := make([]float64, ip.n+ip.m)
	for j, row := range jac {
		for k, c := range row.Cols {
			rhs[ip.n+j] += row.Vals[k] * adjusted[c]
		}
	}

	if err := ip.solver.DoSymbolicAnalysis(padded); err != nil {
		return
	}
	if err := ip.solver.DoNumericalFactorization(padded); err != nil || ip.solver.MatrixIsSingular() {
		return
	}
	sol := make([]float64, ip.n+ip.m)
	if err := ip.solver.SolveIndefiniteSystem(padded, rhs, sol); err != nil {
		return
	}
	lambda := sol[ip.n:]
	if normInf(lambda) > ip.lambdaCap {
		return
	}
	copy(iterate.Lambda, lambda)
}

// sparseDot computes the dot product of two sparse rows sharing a dense
// column space.
func sparseDot(a, b SparseRow) float64 {
	bVals := make(map[int]float64, len(b.Cols))
	for k, c := range b.Cols {
		bVals[c] = b.Vals[k]
	}
	total := 0.0
	for k, c := range a.Cols {
		total += a.Vals[k] * bVals[c]
	}
	return total
}

func (ip *PrimalDualInteriorPoint) Solve(stats *Stats, problem *OptimizationProblem, current *Iterate, direction *Direction,
	hessianModel HessianModel, regularization *RegularizationStrategy,
	trustRegionRadius float64, warmstart WarmstartInformation) error {

	if !warmstart.AnyChanged() && !ip.muChanged {
		copyDirection(direction, &ip.lastDirection)
		return nil
	}
	ip.muChanged = false

	if ip.skipBarrierUpdate {
		ip.skipBarrierUpdate = false
	} else {
		ip.maybeReduceMu(current)
	}

	hessianModel.Evaluate(problem, current.ObjectiveMultiplier, current.X, current.Lambda, ip.h)
	gradObj, gradCons := current.LagrangianGradient(problem)
	cval := current.ConstraintValues(problem)
	jac := current.ConstraintJacobian(problem)

	for i := 0; i < ip.n; i++ {
		ip.sigmaL[i], ip.sigmaU[i] = 0, 0
		ip.barrierL[i], ip.barrierU[i] = 0, 0
	}
	for _, i := range ip.lowerIdx {
		lo, _ := problem.VariableBounds(i)
		gap := current.X[i] - lo
		ip.sigmaL[i] = current.ZL[i] / gap
		ip.barrierL[i] = ip.mu / gap
	}
	for _, i := range ip.upperIdx {
		_, hi := problem.VariableBounds(i)
		gap := hi - current.X[i]
		ip.sigmaU[i] = -current.ZU[i] / gap
		ip.barrierU[i] = ip.mu / gap
	}

	ip.kkt.Reset()
	ip.h.ForEach(func(row, col int, value float64) { ip.kkt.Insert(row, col, value) })
	for i := 0; i < ip.n; i++ {
		if ip.sigmaL[i] != 0 || ip.sigmaU[i] != 0 {
			ip.kkt.Insert(i, i, ip.sigmaL[i]+ip.sigmaU[i])
		}
	}
	for j, row := range jac {
		for k, c := range row.Cols {
			ip.kkt.Insert(c, ip.n+j, row.Vals[k])
		}
	}

	primal := allIndices(ip.n)
	dual := make([]int, ip.m)
	for j := range dual {
		dual[j] = ip.n + j
	}
	expected := Inertia{Plus: ip.n, Minus: ip.m, Zero: 0}
	deltaDual := math.Pow(ip.mu, ip.muExponent)
	if _, err := regularization.Regularize(ip.kkt, primal, expected, dual, func(float64) float64 { return deltaDual }); err != nil {
		return err
	}
	stats.RegularizationCalls++

	for i := 0; i < ip.n; i++ {
		ip.rhs[i] = -(gradObj[i] + gradCons[i]) + ip.barrierL[i] - ip.barrierU[i]
	}
	for _, i := range ip.singleLowerIdx {
		ip.rhs[i] -= ip.dampingFactor * ip.mu
	}
	for _, i := range ip.singleUpperIdx {
		ip.rhs[i] += ip.dampingFactor * ip.mu
	}
	for j := range cval {
		ip.rhs[ip.n+j] = -cval[j]
	}

	stats.SubproblemSolves++
	if err := ip.solver.SolveIndefiniteSystem(ip.kkt, ip.rhs, ip.sol); err != nil {
		return newError(SubproblemError, err, "interior point KKT solve failed")
	}

	copy(direction.PrimalStep, ip.sol[:ip.n])
	// With L = σf - λᵀc the dual block of the solution is -Δλ.
	for j := 0; j < ip.m; j++ {
		direction.DualStep[j] = -ip.sol[ip.n+j]
	}

	for _, i := range ip.lowerIdx {
		direction.DualLower[i] = ip.barrierL[i] - current.ZL[i] - ip.sigmaL[i]*direction.PrimalStep[i]
	}
	for _, i := range ip.upperIdx {
		direction.DualUpper[i] = -ip.barrierU[i] - current.ZU[i] - ip.sigmaU[i]*direction.PrimalStep[i]
	}

	tau := math.Max(ip.tauMin, 1-ip.mu)
	direction.PrimalStepLength = ip.fractionToBoundaryPrimal(problem, current, direction, tau)
	direction.DualStepLength = ip.fractionToBoundaryDual(current, direction, tau)
	direction.SubproblemObjective = dotProduct(gradObj, direction.PrimalStep) + 0.5*ip.h.QuadraticProduct(direction.PrimalStep)
	direction.Status = DirectionOptimal
	direction.SmallStep = ip.isSmallStep(current, direction)

	copyDirection(&ip.lastDirection, direction)
	return nil
}

// fractionToBoundaryPrimal returns the largest α∈(0,1] such that
// x + α·Δx stays at least (1-τ) of the way to every finite bound.
func (ip *PrimalDualInteriorPoint) fractionToBoundaryPrimal(problem *OptimizationProblem, current *Iterate, direction *Direction, tau float64) float64 {
	alpha := 1.0
	for _, i := range ip.lowerIdx {
		lo, _ := problem.VariableBounds(i)
		if d := direction.PrimalStep[i]; d < 0 {
			alpha = math.Min(alpha, -tau*(current.X[i]-lo)/d)
		}
	}
	for _, i := range ip.upperIdx {
		_, hi := problem.VariableBounds(i)
		if d := direction.PrimalStep[i]; d > 0 {
			alpha = math.Min(alpha, tau*(hi-current.X[i])/d)
		}
	}
	return math.Max(alpha, 0)
}

func (ip *PrimalDualInteriorPoint) fractionToBoundaryDual(current *Iterate, direction *Direction, tau float64) float64 {
	alpha := 1.0
	for _, i := range ip.lowerIdx {
		if d := direction.DualLower[i]; d < 0 {
			alpha = math.Min(alpha, -tau*current.ZL[i]/d)
		}
	}
	for _, i := range ip.upperIdx {
		if d := direction.DualUpper[i]; d > 0 {
			alpha = math.Min(alpha, -tau*current.ZU[i]/d)
		}
	}
	return math.Max(alpha, 0)
}

// isSmallStep is spec.md §4.5's small-step detector: maxᵢ |Δx_i|/(1+|x_i|)
// ≤ barrier_small_direction_factor · ε_machine, Section 3.9 of the Ipopt
// paper.
func (ip *PrimalDualInteriorPoint) isSmallStep(current *Iterate, direction *Direction) bool {
	worst := 0.0
	for i, d := range direction.PrimalStep {
		rel := math.Abs(d) / (1 + math.Abs(current.X[i]))
		if rel > worst {
			worst = rel
		}
	}
	return worst <= ip.smallDirectionFactor*machineEpsilon
}

// maybeReduceMu applies the monotone update rule μ ← max(μ_min, κ_μ·μ) once
// the barrier-scaled complementarity is itself within a constant factor of
// μ, per spec.md §4.5's "decrease μ when progress stalls" sketch.
func (ip *PrimalDualInteriorPoint) maybeReduceMu(current *Iterate) {
	if ip.mu <= ip.muMin {
		return
	}
	comp := 0.0
	n := 0
	for _, i := range ip.lowerIdx {
		comp += current.ZL[i] * current.X[i]
		n++
	}
	if n == 0 {
		return
	}
	if comp/float64(n) < 10*ip.mu {
		next := math.Max(ip.muMin, ip.muReduce*ip.mu)
		if next != ip.mu {
			ip.mu = next
			ip.muChanged = true
		}
	}
}

func (ip *PrimalDualInteriorPoint) HessianQuadraticProduct(v []float64) float64 {
	return ip.h.QuadraticProduct(v)
}

// SetAuxiliaryMeasure records the barrier term -μΣlog(x-xL) - μΣlog(xU-x).
func (ip *PrimalDualInteriorPoint) SetAuxiliaryMeasure(problem *OptimizationProblem, iterate *Iterate) {
	aux := 0.0
	for _, i := range ip.lowerIdx {
		lo, _ := problem.VariableBounds(i)
		aux -= ip.mu * math.Log(iterate.X[i]-lo)
	}
	for _, i := range ip.upperIdx {
		_, hi := problem.VariableBounds(i)
		aux -= ip.mu * math.Log(hi-iterate.X[i])
	}
	for _, i := range ip.singleLowerIdx {
		lo, _ := problem.VariableBounds(i)
		aux += ip.mu * ip.dampingFactor * (iterate.X[i] - lo)
	}
	for _, i := range ip.singleUpperIdx {
		_, hi := problem.VariableBounds(i)
		aux += ip.mu * ip.dampingFactor * (hi - iterate.X[i])
	}
	iterate.Progress.Auxiliary = aux
}

// ComputePredictedAuxiliaryReductionModel linearizes the barrier term's
// directional derivative along direction, scaled by stepLength.
func (ip *PrimalDualInteriorPoint) ComputePredictedAuxiliaryReductionModel(problem *OptimizationProblem, current *Iterate, direction *Direction, stepLength float64) float64 {
	reduction := 0.0
	for _, i := range ip.lowerIdx {
		lo, _ := problem.VariableBounds(i)
		reduction += ip.mu * stepLength * direction.PrimalStep[i] / (current.X[i] - lo)
	}
	for _, i := range ip.upperIdx {
		_, hi := problem.VariableBounds(i)
		reduction -= ip.mu * stepLength * direction.PrimalStep[i] / (hi - current.X[i])
	}
	for _, i := range ip.singleLowerIdx {
		reduction -= stepLength * ip.dampingFactor * ip.mu * direction.PrimalStep[i]
	}
	for _, i := range ip.singleUpperIdx {
		reduction += stepLength * ip.dampingFactor * ip.mu * direction.PrimalStep[i]
	}
	return reduction
}

// PostprocessIterate resets bound multipliers away from zero per Ipopt's
// z-reset heuristic, so the next iteration's ΣL/ΣU never divides by a
// vanishing multiplier.
func (ip *PrimalDualInteriorPoint) PostprocessIterate(problem *OptimizationProblem, x []float64, lambda, zL, zU []float64) {
	for _, i := range ip.lowerIdx {
		lo, _ := problem.VariableBounds(i)
		gap := x[i] - lo
		if gap <= 0 {
			continue
		}
		zL[i] = clip(zL[i], ip.mu/(ip.kappaSigma*gap), ip.kappaSigma*ip.mu/gap)
	}
	for _, i := range ip.upperIdx {
		_, hi := problem.VariableBounds(i)
		gap := hi - x[i]
		if gap <= 0 {
			continue
		}
		zU[i] = -clip(-zU[i], ip.mu/(ip.kappaSigma*gap), ip.kappaSigma*ip.mu/gap)
	}
}

// InitializeFeasibilityProblem bumps μ to at least the current constraint
// violation and remembers the previous value so ExitFeasibilityProblem can
// restore it, per spec.md §4.5 "Feasibility entry".
func (ip *PrimalDualInteriorPoint) InitializeFeasibilityProblem(problem *OptimizationProblem, iterate *Iterate) {
	ip.muBeforeFeasibility = ip.mu
	violation := normInf(iterate.ConstraintValues(problem))
	ip.mu = math.Max(ip.mu, violation)
	ip.skipBarrierUpdate = true
}

func (ip *PrimalDualInteriorPoint) ExitFeasibilityProblem(problem *OptimizationProblem, iterate *Iterate) {
	ip.mu = ip.muBeforeFeasibility
}

func (ip *PrimalDualInteriorPoint) SetElasticVariableValues(problem *OptimizationProblem, iterate *Iterate) {
	cval := iterate.ConstraintValues(problem)
	problem.SetElasticVariableValues(iterate.X, cval)
}

func (ip *PrimalDualInteriorPoint) SubproblemDefinitionChanged() bool {
	changed := ip.muChanged
	ip.muChanged = false
	return changed
}
