// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package uno

// TerminationStatus is the final outcome reported to the caller (spec.md
// §6 "Exit codes / termination statuses").
type TerminationStatus int

const (
	FeasibleKKTPoint TerminationStatus = iota
	InfeasibleStationaryPoint
	FeasibleSmallStep
	UnboundedProblem
	IterationLimit
	TimeLimit
	AlgorithmicError
)

func (s TerminationStatus) String() string {
	switch s {
	case FeasibleKKTPoint:
		return "FeasibleKKTPoint"
	case InfeasibleStationaryPoint:
		return "InfeasibleStationaryPoint"
	case FeasibleSmallStep:
		return "FeasibleSmallStep"
	case UnboundedProblem:
		return "UnboundedProblem"
	case IterationLimit:
		return "IterationLimit"
	case TimeLimit:
		return "TimeLimit"
	case AlgorithmicError:
		return "AlgorithmicError"
	default:
		return "Unknown"
	}
}

// relaxationVerdict is the relaxation layer's own, narrower classification
// (spec.md §4.6 "check_termination"), mapped up to a TerminationStatus by
// the Driver once the outer loop actually stops.
type relaxationVerdict int

const (
	verdictFeasibleKKT relaxationVerdict = iota
	verdictInfeasibleStationary
	verdictUnbounded
	verdictNotOptimal
)
