// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package uno

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrorKind enumerates the error taxonomy of the outer iteration.
// Every kind is either fatal (unwinds the solve and returns a TerminationStatus
// to the caller) or local (mutates ingredient state and lets the loop continue).
type ErrorKind int

const (
	// ConfigurationError: unknown option or unsupported combination. Fatal,
	// surfaces before the loop begins.
	ConfigurationError ErrorKind = iota
	// AllocationError: preallocation estimate insufficient. Fatal.
	AllocationError
	// UnstableRegularization: δ exceeded the failure threshold. Local in the
	// optimality phase (switch to the feasibility phase and re-solve), fatal
	// when it occurs in the feasibility phase, including on that re-solve.
	UnstableRegularization
	// SubproblemInfeasible: linearized constraints inconsistent. Local.
	SubproblemInfeasible
	// SubproblemUnbounded: linearized objective unbounded below. The driver
	// stops with UnboundedProblem as soon as it is reported; it is not
	// retried.
	SubproblemUnbounded
	// SubproblemError: solver returned an unexpected status. Local, unless it
	// repeats N times consecutively.
	SubproblemError
	// EvaluationError: the user Model returned NaN/Inf. Fatal.
	EvaluationError
	// StepLengthTooSmall: α < α_min or Δ < Δ_min. Local: the driver retries
	// the iteration, and stops with FeasibleSmallStep once more than
	// max_consecutive_step_length_failures occur in a row. It does not cause
	// a phase switch.
	StepLengthTooSmall
)

func (k ErrorKind) String() string {
	switch k {
	case ConfigurationError:
		return "ConfigurationError"
	case AllocationError:
		return "AllocationError"
	case UnstableRegularization:
		return "UnstableRegularization"
	case SubproblemInfeasible:
		return "SubproblemInfeasible"
	case SubproblemUnbounded:
		return "SubproblemUnbounded"
	case SubproblemError:
		return "SubproblemError"
	case EvaluationError:
		return "EvaluationError"
	case StepLengthTooSmall:
		return "StepLengthTooSmall"
	default:
		return "UnknownError"
	}
}

// IsFatal reports whether, on its own, an error of this kind must unwind the
// outer iteration. Some kinds (UnstableRegularization, SubproblemError,
// StepLengthTooSmall) are only conditionally fatal depending on repetition;
// the driver tracks the repetition count and escalates separately.
func (k ErrorKind) IsFatal() bool {
	switch k {
	case ConfigurationError, AllocationError, EvaluationError:
		return true
	default:
		return false
	}
}

// SolverError wraps an ErrorKind with context, using github.com/pkg/errors
// so that a SolverError participates in errors.Wrap/errors.Cause chains the
// way the driver's external collaborators (Model, SymIndefSolver, QPSolver)
// report failures.
type SolverError struct {
	Kind  ErrorKind
	cause error
}

func (e *SolverError) Error() string {
	if e.cause == nil {
		return e.Kind.String()
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.cause)
}

func (e *SolverError) Unwrap() error { return e.cause }

// newError builds a SolverError of the given kind, wrapping cause (if any)
// with the supplied context message.
func newError(kind ErrorKind, cause error, format string, args ...any) *SolverError {
	msg := fmt.Sprintf(format, args...)
	if cause != nil {
		cause = errors.Wrap(cause, msg)
	} else if msg != "" {
		cause = errors.New(msg)
	}
	return &SolverError{Kind: kind, cause: cause}
}

// AsSolverError reports whether err (or something it wraps) is a *SolverError,
// returning it on success.
func AsSolverError(err error) (*SolverError, bool) {
	var se *SolverError
	ok := errors.As(err, &se)
	return se, ok
}
