// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package uno

// WarmstartInformation describes what changed since the previous solve.
// spec.md §9 calls the source's equivalent "ad hoc"; here it is a typed
// struct whose fields correspond exactly to the listed reasons. Every
// InequalityHandlingMethod treats it as authoritative: callers must set
// exactly the bits that describe their change (Testable Property 7 — when
// every bit is false, solve is a no-op returning the cached direction).
type WarmstartInformation struct {
	ObjectiveChanged       bool
	ConstraintsChanged     bool
	VariableBoundsChanged  bool
	ConstraintBoundsChanged bool
	JacobianSparsityChanged bool
	HessianSparsityChanged  bool
}

// AnyChanged reports whether at least one bit is set.
func (w WarmstartInformation) AnyChanged() bool {
	return w.ObjectiveChanged || w.ConstraintsChanged ||
		w.VariableBoundsChanged || w.ConstraintBoundsChanged ||
		w.JacobianSparsityChanged || w.HessianSparsityChanged
}

// FullWarmstart returns a WarmstartInformation with every bit set, the
// value used to force a cold start (e.g. on the very first outer iteration).
func FullWarmstart() WarmstartInformation {
	return WarmstartInformation{true, true, true, true, true, true}
}
