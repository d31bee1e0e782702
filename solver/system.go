// SPDX-License-Identifier: MIT

package solver

import (
	"fmt"
	"slices"
	"sort"

	"github.com/katalvlaran/glaze/constraint"
	"github.com/katalvlaran/glaze/oxide"
	"github.com/katalvlaran/glaze/umf"
)

// system holds the per-call coefficient data. fit lists the oxides of the
// linear system: the residual oxides first, then every other oxide the
// palette supplies, wanted at zero. coef[i][j] is the moles of fit[i] in one
// unit of palette[j]; flux[j] is the flux moles of one unit of palette[j].
// target[i] is the ratio wanted for fit[i].
type system struct {
	palette []string
	oxides  []string
	fit     []string
	target  []float64
	coef    [][]float64
	flux    []float64
}

// newSystem collects molar coefficients, the residual oxide set and the
// remaining palette oxides.
//
// Errors: umf.ErrUnresolvedMaterial, constraint.ErrInfeasibleConstraints when
// no material that may carry mass supplies a flux oxide.
func newSystem(target *umf.Formula, palette []string, bs constraint.Bounds, src umf.Materials, tbl *oxide.Table, mode oxide.Mode) (*system, error) {
	perUnit := make([]map[string]float64, len(palette))
	for j, id := range palette {
		mpu, err := umf.MolesPerUnit(id, src, tbl)
		if err != nil {
			return nil, err
		}
		perUnit[j] = mpu
	}

	want := make(map[string]float64, len(target.Components))
	for _, c := range target.Components {
		want[c.Oxide] = c.Ratio
	}

	suppliesFlux := false
	for j, mpu := range perUnit {
		for sym, n := range mpu {
			if n <= 0 || !tbl.IsFlux(sym, mode) {
				continue
			}
			if bs[j].Max > 0 {
				suppliesFlux = true
			}
			if _, ok := want[sym]; !ok {
				want[sym] = 0
			}
		}
	}
	if !suppliesFlux {
		return nil, fmt.Errorf("palette supplies no flux oxide: %w", constraint.ErrInfeasibleConstraints)
	}

	s := &system{palette: append([]string(nil), palette...)}
	var extra []string
	for _, mpu := range perUnit {
		for sym, n := range mpu {
			if _, ok := want[sym]; !ok && n > 0 && !slices.Contains(extra, sym) {
				extra = append(extra, sym)
			}
		}
	}
	for sym := range want {
		s.oxides = append(s.oxides, sym)
	}
	byRank := func(xs []string) {
		sort.Slice(xs, func(a, b int) bool {
			if ra, rb := tbl.Rank(xs[a]), tbl.Rank(xs[b]); ra != rb {
				return ra < rb
			}
			return xs[a] < xs[b]
		})
	}
	byRank(s.oxides)
	byRank(extra)
	s.fit = append(append([]string(nil), s.oxides...), extra...)

	s.target = make([]float64, len(s.fit))
	s.coef = make([][]float64, len(s.fit))
	for i, sym := range s.fit {
		s.target[i] = want[sym]
		s.coef[i] = make([]float64, len(palette))
		for j, mpu := range perUnit {
			s.coef[i][j] = mpu[sym]
		}
	}
	s.flux = make([]float64, len(palette))
	for j, mpu := range perUnit {
		for sym, n := range mpu {
			if tbl.IsFlux(sym, mode) {
				s.flux[j] += n
			}
		}
	}

	return s, nil
}

// rows returns the number of ratio equations, one per fit oxide.
func (s *system) rows() int { return len(s.fit) }

// row returns the unscaled coefficient of palette[j] in equation i:
// Σ_j (coef[i][j] − target[i]·flux[j])·mass_j = 0 holds exactly when the
// ratio of fit[i] equals its target, whatever the flux total.
func (s *system) row(i, j int) float64 {
	return s.coef[i][j] - s.target[i]*s.flux[j]
}

// residual returns achieved − target per residual oxide, as a map and as a
// vector in oxide order.
func (s *system) residual(f *umf.Formula) (map[string]float64, []float64) {
	out := make(map[string]float64, len(s.oxides))
	vec := make([]float64, len(s.oxides))
	for i, sym := range s.oxides {
		vec[i] = f.Ratio(sym) - s.target[i]
		out[sym] = vec[i]
	}

	return out, vec
}
