// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package uno

// DirectionStatus is the outcome of an InequalityHandlingMethod.Solve call,
// grounded on the closed sqpMode status enum the teacher returns from every
// internal SLSQP phase.
type DirectionStatus int

const (
	// DirectionOptimal: the subproblem was solved to optimality.
	DirectionOptimal DirectionStatus = iota
	// DirectionInfeasible: the linearized problem is provably inconsistent.
	DirectionInfeasible
	// DirectionUnbounded: the linearized objective is unbounded below on
	// the feasible set.
	DirectionUnbounded
	// DirectionError: the solver failed unexpectedly; reported to the driver.
	DirectionError
)

func (s DirectionStatus) String() string {
	switch s {
	case DirectionOptimal:
		return "Optimal"
	case DirectionInfeasible:
		return "Infeasible"
	case DirectionUnbounded:
		return "UnboundedProblem"
	case DirectionError:
		return "Error"
	default:
		return "Unknown"
	}
}

// Direction is the outcome of a subproblem solve: a primal step, multiplier
// updates, the subproblem's own objective value, and a status.
type Direction struct {
	Status DirectionStatus

	PrimalStep []float64 // Δx, length n
	// Multiplier updates (ActiveSetQP: displacements; IPM: the new Δλ/Δz
	// steps themselves — see spec.md §4.4 vs §4.5).
	DualStep  []float64 // Δλ, length m
	DualLower []float64 // ΔzL, length n
	DualUpper []float64 // ΔzU, length n

	SubproblemObjective float64

	// Step lengths computed by the method itself (IPM fraction-to-boundary);
	// the mechanism may further scale these.
	PrimalStepLength float64
	DualStepLength   float64

	// SmallStep is set by methods (IPM) that can detect a converged-but-tiny
	// step, used by the Driver to end the solve early with FeasibleSmallStep.
	SmallStep bool
}

// Reset zeroes a Direction's scratch slices in place without reallocating,
// consistent with spec.md §5's "no allocation on the per-iteration hot path".
func (d *Direction) Reset() {
	for i := range d.PrimalStep {
		d.PrimalStep[i] = 0
	}
	for i := range d.DualStep {
		d.DualStep[i] = 0
	}
	for i := range d.DualLower {
		d.DualLower[i] = 0
	}
	for i := range d.DualUpper {
		d.DualUpper[i] = 0
	}
	d.Status = DirectionOptimal
	d.SubproblemObjective = 0
	d.PrimalStepLength, d.DualStepLength = 0, 0
	d.SmallStep = false
}

// NewDirection preallocates a Direction for a problem of n variables and m
// constraints.
func NewDirection(n, m int) *Direction {
	return &Direction{
		PrimalStep: make([]float64, n),
		DualStep:   make([]float64, m),
		DualLower:  make([]float64, n),
		DualUpper:  make([]float64, n),
	}
}
