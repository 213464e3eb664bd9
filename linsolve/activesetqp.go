// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package linsolve

import (
	"math"

	"gonum.org/v1/gonum/mat"

	uno "github.com/amontoison/Uno"
)

// rowKind classifies a canonicalized "coeffs·d ≥ bound" row built from one
// side of a two-sided box or general linear constraint, used to route its
// recovered multiplier back into the Direction fields ActiveSetQP expects.
type rowKind int

const (
	kindBoxLower rowKind = iota
	kindBoxUpper
	kindBoxEquality
	kindGeneralLower
	kindGeneralUpper
	kindGeneralEquality
)

// candidateRow is one canonical inequality or equality row of the working
// set: box rows use coeffs = ±e_idx, general rows use coeffs = ±jac[idx].
type candidateRow struct {
	coeffs []float64
	bound  float64
	kind   rowKind
	idx    int
}

func (r *candidateRow) equality() bool {
	return r.kind == kindBoxEquality || r.kind == kindGeneralEquality
}

// ActiveSetQPSolver solves, by a primal active-set method (Nocedal & Wright
// Algorithm 16.3), the box- and linearly-constrained QP
//
//	min gᵀd + ½dᵀHd  s.t.  lbC ≤ Jd ≤ ubC,  lbX ≤ d ≤ ubX
//
// by canonicalizing every bound into a "coeffs·d ≥ bound" row, repeatedly
// solving the equality-constrained QP over the current working set via a
// dense KKT solve, and growing/shrinking the working set by a ratio test
// against the step and a multiplier-sign check against the solution.
type ActiveSetQPSolver struct{}

// NewActiveSetQPSolver builds an ActiveSetQPSolver.
func NewActiveSetQPSolver() *ActiveSetQPSolver {
	return &ActiveSetQPSolver{}
}

const activeSetFeasibilityTol = 1e-9
const activeSetStationarityTol = 1e-8

func (qp *ActiveSetQPSolver) Solve(h *uno.SymmetricMatrix, g []float64, jac []uno.SparseRow,
	lbX, ubX, lbC, ubC []float64, initial []float64, warmstart uno.WarmstartInformation,
	direction *uno.Direction) error {

	n := len(g)
	m := len(jac)
	maxIter := 50*(n+m) + 200

	rows := buildCandidateRows(n, m, jac, lbX, ubX, lbC, ubC)

	d := make([]float64, n)
	if initial != nil {
		copy(d, initial)
	}
	for i := range d {
		if d[i] < lbX[i] {
			d[i] = lbX[i]
		}
		if d[i] > ubX[i] {
			d[i] = ubX[i]
		}
	}

	active := make([]int, 0, len(rows))
	for k, r := range rows {
		if r.equality() {
			active = append(active, k)
		}
	}

	for i := range direction.DualStep {
		direction.DualStep[i] = 0
	}
	for i := range direction.DualLower {
		direction.DualLower[i], direction.DualUpper[i] = 0, 0
	}

	for iter := 0; ; iter++ {
		if iter > maxIter {
			direction.Status = uno.DirectionError
			return nil
		}

		dHat, lambdas, err := solveEqualityQP(h, g, rows, active, n)
		if err != nil {
			if len(active) <= n {
				direction.Status = uno.DirectionError
				return nil
			}
			direction.Status = uno.DirectionInfeasible
			return nil
		}
		// solveEqualityQP's KKT system is [H Aᵀ; A 0][d;μ] = [-g; b], giving
		// Hd + Aᵀμ = -g, i.e. g+Hd = -Aᵀμ. The Lagrange multiplier with the
		// λ≥0-for-active convention (∇f = Aᵀλ at the optimum) is λ = -μ.
		for i := range lambdas {
			lambdas[i] = -lambdas[i]
		}

		p := make([]float64, n)
		for i := range p {
			p[i] = dHat[i] - d[i]
		}
		pNorm := 0.0
		for _, pi := range p {
			pNorm += pi * pi
		}

		if math.Sqrt(pNorm) <= activeSetStationarityTol {
			minIdx, minLambda := -1, 0.0
			for k, lam := range lambdas {
				if rows[active[k]].equality() {
					continue
				}
				if lam < minLambda {
					minLambda, minIdx = lam, k
				}
			}
			if minIdx < 0 {
				copy(d, dHat)
				finishActiveSetQP(d, h, g, rows, active, lambdas, direction)
				direction.Status = uno.DirectionOptimal
				return nil
			}
			active = append(active[:minIdx], active[minIdx+1:]...)
			continue
		}

		alpha, blocking := ratioTest(d, p, rows, active)
		for i := range d {
			d[i] += alpha * p[i]
		}
		if alpha >= 1-1e-14 {
			continue
		}
		active = append(active, blocking)
	}
}

// buildCandidateRows canonicalizes every box and general linear bound into
// zero, one, or two candidateRow entries (skipping ±Inf sides; a row with
// lo == hi contributes a single equality row instead of two inequalities).
func buildCandidateRows(n, m int, jac []uno.SparseRow, lbX, ubX, lbC, ubC []float64) []candidateRow {
	var rows []candidateRow

	for i := 0; i < n; i++ {
		lo, hi := lbX[i], ubX[i]
		if lo == hi {
			e := make([]float64, n)
			e[i] = 1
			rows = append(rows, candidateRow{coeffs: e, bound: lo, kind: kindBoxEquality, idx: i})
			continue
		}
		if !math.IsInf(lo, -1) {
			e := make([]float64, n)
			e[i] = 1
			rows = append(rows, candidateRow{coeffs: e, bound: lo, kind: kindBoxLower, idx: i})
		}
		if !math.IsInf(hi, 1) {
			e := make([]float64, n)
			e[i] = -1
			rows = append(rows, candidateRow{coeffs: e, bound: -hi, kind: kindBoxUpper, idx: i})
		}
	}

	for j := 0; j < m; j++ {
		lo, hi := lbC[j], ubC[j]
		dense := denseRow(jac[j], n)
		if lo == hi {
			rows = append(rows, candidateRow{coeffs: dense, bound: lo, kind: kindGeneralEquality, idx: j})
			continue
		}
		if !math.IsInf(lo, -1) {
			rows = append(rows, candidateRow{coeffs: dense, bound: lo, kind: kindGeneralLower, idx: j})
		}
		if !math.IsInf(hi, 1) {
			neg := make([]float64, n)
			for i, v := range dense {
				neg[i] = -v
			}
			rows = append(rows, candidateRow{coeffs: neg, bound: -hi, kind: kindGeneralUpper, idx: j})
		}
	}
	return rows
}

func denseRow(row uno.SparseRow, n int) []float64 {
	out := make([]float64, n)
	for k, c := range row.Cols {
		out[c] = row.Vals[k]
	}
	return out
}

// solveEqualityQP minimizes gᵀd + ½dᵀHd subject to rows[active] exactly
// satisfied, via the dense KKT system [H Aᵀ; A 0][d;λ] = [-g; b].
func solveEqualityQP(h *uno.SymmetricMatrix, g []float64, rows []candidateRow, active []int, n int) ([]float64, []float64, error) {
	k := len(active)
	dim := n + k

	full := mat.NewDense(dim, dim, nil)
	h.ForEach(func(row, col int, value float64) {
		full.Set(row, col, value)
		if row != col {
			full.Set(col, row, value)
		}
	})
	for r, rowIdx := range active {
		row := rows[rowIdx]
		for i, v := range row.coeffs {
			if v == 0 {
				continue
			}
			full.Set(n+r, i, v)
			full.Set(i, n+r, v)
		}
	}

	rhs := mat.NewVecDense(dim, nil)
	for i := 0; i < n; i++ {
		rhs.SetVec(i, -g[i])
	}
	for r, rowIdx := range active {
		rhs.SetVec(n+r, rows[rowIdx].bound)
	}

	var sol mat.VecDense
	if err := sol.SolveVec(full, rhs); err != nil {
		return nil, nil, err
	}

	d := make([]float64, n)
	lambdas := make([]float64, k)
	for i := 0; i < n; i++ {
		d[i] = sol.AtVec(i)
	}
	for r := 0; r < k; r++ {
		lambdas[r] = sol.AtVec(n + r)
	}
	return d, lambdas, nil
}

// ratioTest returns the largest α ∈ [0,1] such that d + α·p stays feasible
// against every inactive row, and the row (if any) that first blocks it.
func ratioTest(d, p []float64, rows []candidateRow, active []int) (float64, int) {
	activeSet := make(map[int]bool, len(active))
	for _, a := range active {
		activeSet[a] = true
	}

	alpha := 1.0
	blocking := -1
	for k := range rows {
		if activeSet[k] {
			continue
		}
		row := rows[k]
		slope := dot(row.coeffs, p)
		if slope >= -activeSetFeasibilityTol {
			continue // moving toward feasibility or parallel; never blocks a "≥" row
		}
		value := dot(row.coeffs, d)
		candidate := (row.bound - value) / slope
		if candidate < alpha {
			alpha, blocking = candidate, k
		}
	}
	if alpha < 0 {
		alpha = 0
	}
	return alpha, blocking
}

func dot(a, b []float64) float64 {
	s := 0.0
	for i := range a {
		s += a[i] * b[i]
	}
	return s
}

// finishActiveSetQP writes the solution into direction, distributing each
// active row's canonical multiplier back into DualStep/DualLower/DualUpper
// per rowKind (see method_activeset.go's displacement convention: these are
// absolute new multiplier values, converted to deltas by the caller).
func finishActiveSetQP(d []float64, h *uno.SymmetricMatrix, g []float64, rows []candidateRow, active []int, lambdas []float64, direction *uno.Direction) {
	copy(direction.PrimalStep, d)

	for r, rowIdx := range active {
		row, lam := rows[rowIdx], lambdas[r]
		switch row.kind {
		case kindBoxLower:
			direction.DualLower[row.idx] += lam
		case kindBoxUpper:
			direction.DualUpper[row.idx] += -lam
		case kindBoxEquality:
			if lam >= 0 {
				direction.DualLower[row.idx] += lam
			} else {
				direction.DualUpper[row.idx] += lam
			}
		case kindGeneralLower, kindGeneralEquality:
			direction.DualStep[row.idx] += lam
		case kindGeneralUpper:
			direction.DualStep[row.idx] += -lam
		}
	}

	direction.SubproblemObjective = dot(g, d) + 0.5*h.QuadraticProduct(d)
}
