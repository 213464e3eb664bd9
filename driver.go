// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package uno

import (
	"math"
	"time"
)

// UserCallbacks lets a caller observe the outer iteration synchronously,
// mirroring lbfgsb's iteration callback: invoked once per accepted outer
// iteration, before the next one starts. A nil Callbacks is equivalent to
// every field being a no-op.
type UserCallbacks struct {
	// OnIteration is called with the accepted iteration number and iterate
	// after the globalization mechanism commits a step. Returning false
	// stops the solve early; Driver.Solve reports this as IterationLimit.
	OnIteration func(iteration int, iterate *Iterate) (keepGoing bool)
}

func (c *UserCallbacks) onIteration(iteration int, iterate *Iterate) bool {
	if c == nil || c.OnIteration == nil {
		return true
	}
	return c.OnIteration(iteration, iterate)
}

// Result is what Driver.Solve returns: the terminal status, the final
// iterate's primal-dual point, and the number of outer iterations taken.
type Result struct {
	Status     TerminationStatus
	Iterations int
	X          []float64
	Lambda     []float64
	ObjectiveValue float64
	Infeasibility  float64
}

// Driver owns the four pluggable ingredients plus the ambient services
// (regularization, Hessian model, logging) and runs the outer iteration of
// spec.md §2/§5/§10. It is the sole caller of every ConstraintRelaxationStrategy,
// GlobalizationStrategy and GlobalizationMechanism method.
type Driver struct {
	problem        *OptimizationProblem
	method         InequalityHandlingMethod
	hessianModel   HessianModel
	regularization *RegularizationStrategy
	relaxation     ConstraintRelaxationStrategy
	strategy       GlobalizationStrategy
	mechanism      GlobalizationMechanism

	norm NormKind

	maxIterations int
	timeLimit     time.Duration

	stepErrorLimit int // consecutive StepLengthTooSmall before escalating
	subErrorLimit  int // consecutive SubproblemError before escalating

	preGrad []float64 // scratch: gradient at the point a direction was computed from

	logger *Logger

	callbacks *UserCallbacks
}

// NewDriver validates opts, wires the four ingredients named by their
// option keys, and constructs the ambient services. It returns a
// ConfigurationError without allocating an outer iteration's worth of
// workspace if the combination is unsupported.
func NewDriver(model Model, symSolver SymIndefSolver, qpSolver QPSolver, opts Options) (*Driver, error) {
	problem := NewOptimizationProblem(model)

	hessianKind := opts.GetDefault("hessian_model", "exact")
	var hessianModel HessianModel
	switch hessianKind {
	case "exact":
		hessianModel = NewExactHessianModel(model.NumHessianNonzeros())
	case "zero":
		hessianModel = NewZeroHessianModel(problem.NumVariables())
	default:
		return nil, newError(ConfigurationError, nil, "unknown hessian_model %q", hessianKind)
	}

	regularization, err := NewRegularizationStrategy(symSolver, opts)
	if err != nil {
		return nil, err
	}

	methodKind := opts.GetDefault("inequality_handling_method", "interior_point")
	mechanismKind := opts.GetDefault("globalization_mechanism", "line_search")
	strategyKind := opts.GetDefault("globalization_strategy", "filter")

	if methodKind == "interior_point" && mechanismKind == "trust_region" {
		return nil, newError(ConfigurationError, nil,
			"trust_region globalization mechanism is not supported with the interior_point inequality handling method")
	}

	// symSolver is sized for whichever saddle-point system its caller will
	// actually factor: the barrier-augmented (n+m)×(n+m) KKT system for
	// interior_point, or the n×n Hessian regularization system for
	// active_set's line-search path.
	switch methodKind {
	case "interior_point":
		symSolver.InitializeMemory(problem.NumVariables()+problem.NumConstraints(), hessianModel.NumNonzeros()+problem.NumVariables())
	default:
		symSolver.InitializeMemory(problem.NumVariables(), hessianModel.NumNonzeros())
	}

	var method InequalityHandlingMethod
	switch methodKind {
	case "active_set":
		if qpSolver == nil {
			return nil, newError(ConfigurationError, nil, "active_set inequality handling method requires a QPSolver")
		}
		method = NewActiveSetQP(qpSolver)
	case "interior_point":
		ip, err := NewPrimalDualInteriorPoint(symSolver, opts)
		if err != nil {
			return nil, err
		}
		method = ip
	default:
		return nil, newError(ConfigurationError, nil, "unknown inequality_handling_method %q", methodKind)
	}

	var strategy GlobalizationStrategy
	switch strategyKind {
	case "filter":
		fm, err := NewFilterMethod(opts)
		if err != nil {
			return nil, err
		}
		strategy = fm
	case "l1_merit":
		l1, err := NewL1MeritFunction(opts)
		if err != nil {
			return nil, err
		}
		strategy = l1
	default:
		return nil, newError(ConfigurationError, nil, "unknown globalization_strategy %q", strategyKind)
	}

	var mechanism GlobalizationMechanism
	switch mechanismKind {
	case "line_search":
		ls, err := NewBacktrackingLineSearch(opts)
		if err != nil {
			return nil, err
		}
		mechanism = ls
	case "trust_region":
		tr, err := NewTrustRegion(opts)
		if err != nil {
			return nil, err
		}
		mechanism = tr
	default:
		return nil, newError(ConfigurationError, nil, "unknown globalization_mechanism %q", mechanismKind)
	}

	relaxationKind := opts.GetDefault("constraint_relaxation_strategy", "feasibility_restoration")
	var relaxation ConstraintRelaxationStrategy
	switch relaxationKind {
	case "feasibility_restoration":
		relaxation = NewFeasibilityRestoration()
	default:
		return nil, newError(ConfigurationError, nil, "unknown constraint_relaxation_strategy %q", relaxationKind)
	}

	norm, err := parseNormKind(opts, "progress_norm", NormL1)
	if err != nil {
		return nil, err
	}

	maxIterations, err := opts.Int("max_iterations", 1000)
	if err != nil {
		return nil, err
	}
	timeLimitSeconds, err := opts.Float("time_limit_seconds", 0)
	if err != nil {
		return nil, err
	}
	stepErrorLimit, err := opts.Int("max_consecutive_step_length_failures", 3)
	if err != nil {
		return nil, err
	}
	subErrorLimit, err := opts.Int("max_consecutive_subproblem_errors", 5)
	if err != nil {
		return nil, err
	}

	if err := relaxation.InitializeMemory(problem, method, hessianModel, regularization, opts); err != nil {
		return nil, err
	}
	method.InitializeMemory(problem, hessianModel, regularization)

	return &Driver{
		problem:        problem,
		method:         method,
		hessianModel:   hessianModel,
		regularization: regularization,
		relaxation:     relaxation,
		strategy:       strategy,
		mechanism:      mechanism,
		norm:           norm,
		maxIterations:  maxIterations,
		timeLimit:      time.Duration(timeLimitSeconds * float64(time.Second)),
		stepErrorLimit: stepErrorLimit,
		subErrorLimit:  subErrorLimit,
		preGrad:        make([]float64, problem.NumVariables()),
		logger:         defaultLogger(),
	}, nil
}

// SetLogger replaces the default no-op logger.
func (d *Driver) SetLogger(l *Logger) { d.logger = l }

// SetCallbacks installs the synchronous per-iteration observer.
func (d *Driver) SetCallbacks(c *UserCallbacks) { d.callbacks = c }

// Init builds a fresh Iterate and pushes the user's starting point x0 into
// a valid starting iterate for the configured method.
func (d *Driver) Init(x0 []float64) *Iterate {
	iterate := NewIterate(d.problem.NumVariables(), d.problem.NumConstraints())
	copy(iterate.X, x0)
	d.relaxation.GenerateInitialIterate(iterate)
	return iterate
}

// Solve runs the outer iteration to termination, mutating iterate in place
// and returning the terminal Result (spec.md §5 "Main loop" / §10). A Model
// callback that panics with evalNonFinitePanic (CheckFinite's signal for a
// NaN/±Inf return) unwinds to here rather than crashing the process and
// ends the solve with the AlgorithmicError status; that Result reports NaN
// for the objective value and the infeasibility, which are not re-evaluated.
func (d *Driver) Solve(iterate *Iterate) (result *Result) {
	currentIteration := 0
	defer func() {
		if r := recover(); r != nil {
			if _, ok := r.(evalNonFinitePanic); !ok {
				panic(r)
			}
			d.logger.logf(LogSummary, "terminated: %s after %d iterations\n", AlgorithmicError, currentIteration)
			result = &Result{
				Status:         AlgorithmicError,
				Iterations:     currentIteration,
				X:              append([]float64(nil), iterate.X[:d.problem.OriginalVariables()]...),
				Lambda:         append([]float64(nil), iterate.Lambda...),
				ObjectiveValue: math.NaN(),
				Infeasibility:  math.NaN(),
			}
		}
	}()

	d.regularization.Reset()
	d.relaxation.Reset()
	d.strategy.Reset()
	d.mechanism.Reset()

	direction := NewDirection(d.problem.NumVariables(), d.problem.NumConstraints())
	trial := NewIterate(d.problem.NumVariables(), d.problem.NumConstraints())
	stats := &Stats{}

	start := time.Now()
	warmstart := FullWarmstart()
	stepFailures, subErrors := 0, 0

	for iteration := 1; ; iteration++ {
		currentIteration = iteration - 1
		if iteration > d.maxIterations {
			return d.finish(iterate, IterationLimit, iteration-1)
		}
		if d.timeLimit > 0 && time.Since(start) > d.timeLimit {
			return d.finish(iterate, TimeLimit, iteration-1)
		}

		d.relaxation.ComputePrimalDualResiduals(iterate)
		switch d.relaxation.CheckTermination(iterate) {
		case verdictFeasibleKKT:
			return d.finish(iterate, FeasibleKKTPoint, iteration-1)
		case verdictInfeasibleStationary:
			return d.finish(iterate, InfeasibleStationaryPoint, iteration-1)
		case verdictUnbounded:
			return d.finish(iterate, UnboundedProblem, iteration-1)
		}

		copy(d.preGrad, iterate.ObjectiveGradient(d.problem))

		err := d.mechanism.Solve(stats, d.problem, d.relaxation, d.strategy, d.method, d.norm, iterate, trial, direction, warmstart)
		warmstart = WarmstartInformation{}

		if err != nil {
			se, ok := AsSolverError(err)
			if !ok {
				return d.finish(iterate, AlgorithmicError, iteration-1)
			}
			switch se.Kind {
			case StepLengthTooSmall:
				stepFailures++
				if stepFailures > d.stepErrorLimit {
					return d.finish(iterate, FeasibleSmallStep, iteration-1)
				}
				warmstart = FullWarmstart()
				continue
			case SubproblemError:
				subErrors++
				if subErrors > d.subErrorLimit {
					return d.finish(iterate, AlgorithmicError, iteration-1)
				}
				warmstart = FullWarmstart()
				continue
			case SubproblemUnbounded:
				return d.finish(iterate, UnboundedProblem, iteration-1)
			default:
				return d.finish(iterate, AlgorithmicError, iteration-1)
			}
		}

		stepFailures, subErrors = 0, 0
		if direction.SmallStep {
			return d.finish(iterate, FeasibleSmallStep, iteration)
		}

		if l1, ok := d.strategy.(*L1MeritFunction); ok {
			predicted := -dotProduct(d.preGrad, direction.PrimalStep)
			if l1.IncreasePenaltyIfNotDescent(predicted) {
				d.logger.logf(LogIteration, "warning: predicted reduction %g is not a descent, l1 penalty raised to %g\n", predicted, l1.CurrentPenalty())
			}
		}

		d.method.PostprocessIterate(d.problem, iterate.X, iterate.Lambda, iterate.ZL, iterate.ZU)
		// The accepted step moved the iterate, so the next subproblem is built
		// at a new point.
		warmstart = WarmstartInformation{ObjectiveChanged: true, ConstraintsChanged: true}
		if d.method.SubproblemDefinitionChanged() {
			warmstart.ObjectiveChanged = true
		}

		d.logger.logf(LogIteration, "iter %d: f=%g h=%g\n", iteration, iterate.Progress.Objective, iterate.Progress.Infeasibility)
		d.logger.logf(LogVerbose, "  x=%v lambda=%v zL=%v zU=%v residuals=%+v\n", iterate.X, iterate.Lambda, iterate.ZL, iterate.ZU, iterate.Residuals)
		if !d.callbacks.onIteration(iteration, iterate) {
			return d.finish(iterate, IterationLimit, iteration)
		}
	}
}

func (d *Driver) finish(iterate *Iterate, status TerminationStatus, iterations int) *Result {
	d.logger.logf(LogSummary, "terminated: %s after %d iterations\n", status, iterations)
	return &Result{
		Status:         status,
		Iterations:     iterations,
		X:              append([]float64(nil), iterate.X[:d.problem.OriginalVariables()]...),
		Lambda:         append([]float64(nil), iterate.Lambda...),
		ObjectiveValue: iterate.ObjectiveValue(d.problem),
		Infeasibility:  computeInfeasibility(d.problem, iterate, d.norm),
	}
}
