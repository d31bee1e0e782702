// SPDX-License-Identifier: MIT

package solver

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/glaze/constraint"
)

// lsqStats reports on the first, unpinned solve of a boundedLSQ call.
type lsqStats struct {
	columns int
	rank    int
	pinned  []int
}

// boundedLSQ solves the frozen-F system over the free columns of bs by
// active-set pinning and returns new masses summing to total. Pinned ranges
// keep their value; every other index starts free.
//
// Each round solves the least-squares problem over the remaining free
// columns subject to Σ mass = total, clamps negative values to the lower
// bound, and pins every column outside its range at the violated bound, in
// index order. The loop ends when a round has no violator or no free column
// is left, so it runs at most len(free)+1 rounds. A batch total lost to
// pinning is restored by rebalance.
func boundedLSQ(s *system, fFrozen float64, bs constraint.Bounds, total, rcond float64) ([]float64, lsqStats, error) {
	masses := make([]float64, len(bs))
	free := bs.Free()
	for i, r := range bs {
		if r.Pinned() {
			masses[i] = r.Min
		}
	}
	movable := free

	var st lsqStats
	for round := 0; len(free) > 0; round++ {
		x, rank, err := solveColumns(s, fFrozen, masses, free, total, rcond)
		if err != nil {
			return nil, st, err
		}
		if round == 0 {
			st.columns, st.rank = len(free), rank
		}

		next := make([]int, 0, len(free))
		for k, j := range free {
			v := x[k]
			clamped := v < 0
			if clamped {
				v = bs[j].Min
			}
			switch {
			case v < bs[j].Min:
				masses[j] = bs[j].Min
				st.pinned = append(st.pinned, j)
			case v > bs[j].Max:
				masses[j] = bs[j].Max
				st.pinned = append(st.pinned, j)
			case clamped:
				masses[j] = v
				st.pinned = append(st.pinned, j)
			default:
				masses[j] = v
				next = append(next, j)
			}
		}
		if len(next) == len(free) {
			break
		}
		free = next
	}
	rebalance(masses, bs, movable, total)

	return masses, st, nil
}

// solveColumns returns the minimum-norm least-squares solution over cols
// with Σ cols = total − Σ other masses, and the rank of the constrained
// block (the equality counts as one). Rows are scaled by 1/fFrozen so the
// residual is in ratio units.
//
// The equality is eliminated by x = x0 + y with x0 the equal share and y in
// the zero-sum subspace: subtracting each row's mean over cols projects the
// block onto that subspace, and the minimum-norm y of the projected system
// lies inside it.
func solveColumns(s *system, fFrozen float64, masses []float64, cols []int, total, rcond float64) ([]float64, int, error) {
	inCols := make(map[int]bool, len(cols))
	for _, j := range cols {
		inCols[j] = true
	}
	remaining := total
	for j, v := range masses {
		if !inCols[j] {
			remaining -= v
		}
	}

	n := len(cols)
	out := make([]float64, n)
	share := remaining / float64(n)
	for k := range out {
		out[k] = share
	}
	if n == 1 {
		return out, 1, nil
	}

	m := s.rows()
	a := mat.NewDense(m, n, nil)
	b := mat.NewVecDense(m, nil)
	for i := 0; i < m; i++ {
		var rhs, mean float64
		for j, v := range masses {
			if !inCols[j] {
				rhs -= s.row(i, j) * v / fFrozen
			}
		}
		for _, j := range cols {
			mean += s.row(i, j) / fFrozen
		}
		mean /= float64(n)
		for k, j := range cols {
			c := s.row(i, j) / fFrozen
			rhs -= c * share
			a.Set(i, k, c-mean)
		}
		b.SetVec(i, rhs)
	}

	var svd mat.SVD
	if ok := svd.Factorize(a, mat.SVDThin); !ok {
		return nil, 0, ErrNumerical
	}
	rank := svd.Rank(rcond)
	if rank == 0 {
		return out, 1, nil
	}

	var y mat.VecDense
	svd.SolveVecTo(&y, b, rank)

	// Drop rounding drift out of the zero-sum subspace.
	var drift float64
	for k := 0; k < n; k++ {
		drift += y.AtVec(k)
	}
	drift /= float64(n)
	for k := range out {
		out[k] += y.AtVec(k) - drift
	}

	return out, rank + 1, nil
}

// rebalance spreads total − Σ masses over the cols that still have room in
// the needed direction, in equal steps clamped into their ranges, until the
// sum is met or no col can move.
func rebalance(masses []float64, bs constraint.Bounds, cols []int, total float64) {
	tol := 1e-12 * math.Max(1, math.Abs(total))
	for pass := 0; pass <= len(cols); pass++ {
		diff := total
		for _, v := range masses {
			diff -= v
		}
		if math.Abs(diff) <= tol {
			return
		}

		adj := make([]int, 0, len(cols))
		for _, j := range cols {
			if (diff > 0 && masses[j] < bs[j].Max) || (diff < 0 && masses[j] > bs[j].Min) {
				adj = append(adj, j)
			}
		}
		if len(adj) == 0 {
			return
		}
		step := diff / float64(len(adj))
		for _, j := range adj {
			masses[j] = bs[j].Clamp(masses[j] + step)
		}
	}
}
