// SPDX-License-Identifier: MIT

package umf

import (
	"fmt"
	"math"
	"sort"

	"github.com/katalvlaran/glaze/catalog"
	"github.com/katalvlaran/glaze/oxide"
)

// Compute evaluates recipe against the materials in src.
//
// Every line, additions included, contributes to the oxide totals. Oxide
// names in the analyses are canonicalised against opts.Table; oxides the
// table does not know are reported in Formula.Unrecognized and skipped.
//
// Errors:
//   - ErrEmptyRecipe when recipe has no lines.
//   - ErrNegativeAmount for a negative or non-finite amount.
//   - ErrUnresolvedMaterial when src does not hold a referenced material.
//   - ErrDegenerateFormula when the flux total is not positive.
//
// Complexity: O(E·A + K log K), K = distinct oxides.
func Compute(recipe catalog.Recipe, src Materials, opts Options) (*Formula, error) {
	if len(recipe.Entries) == 0 {
		return nil, fmt.Errorf("recipe %q: %w", recipe.DisplayName(), ErrEmptyRecipe)
	}

	tbl := opts.table()
	mass := make(map[string]float64)
	unknown := make(map[string]struct{})
	f := &Formula{Mode: opts.Mode}

	for _, e := range recipe.Entries {
		if math.IsNaN(e.Amount) || math.IsInf(e.Amount, 0) || e.Amount < 0 {
			return nil, fmt.Errorf("recipe %q material %q amount %g: %w",
				recipe.DisplayName(), e.Material, e.Amount, ErrNegativeAmount)
		}
		loi, ok := src.LOI(e.Material)
		if !ok {
			return nil, fmt.Errorf("recipe %q: %q: %w", recipe.DisplayName(), e.Material, ErrUnresolvedMaterial)
		}
		f.RawMass += e.Amount
		f.FiredMass += e.Amount * (100 - loi) / 100
		if e.Amount == 0 {
			continue
		}
		src.Analysis(e.Material, func(symbol string, pct float64) {
			if pct <= 0 {
				return
			}
			sym := tbl.Canonical(symbol)
			if _, known := tbl.Lookup(sym); !known {
				unknown[sym] = struct{}{}
				return
			}
			mass[sym] += e.Amount * pct / 100
		})
	}

	if err := f.fill(tbl, molesOf(tbl, mass)); err != nil {
		return nil, fmt.Errorf("recipe %q: %w", recipe.DisplayName(), err)
	}
	for sym := range unknown {
		f.Unrecognized = append(f.Unrecognized, sym)
	}
	sort.Strings(f.Unrecognized)

	return f, nil
}

// molesOf converts oxide masses to moles; every key must be in tbl.
func molesOf(tbl *oxide.Table, mass map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(mass))
	for sym, m := range mass {
		ox, _ := tbl.Lookup(sym)
		out[sym] = m / ox.Weight
	}

	return out
}

// fill builds the components from absolute moles and brings them to unity.
func (f *Formula) fill(tbl *oxide.Table, moles map[string]float64) error {
	var flux float64
	for sym, n := range moles {
		if tbl.IsFlux(sym, f.Mode) {
			flux += n
		}
	}
	if !(flux > 0) {
		return ErrDegenerateFormula
	}
	f.FluxMoles = flux

	f.Components = make([]Component, 0, len(moles))
	for sym, n := range moles {
		ox, _ := tbl.Lookup(sym)
		f.Components = append(f.Components, Component{
			Oxide:  ox.Symbol,
			Ratio:  n / flux,
			Moles:  n,
			Weight: ox.Weight,
			Flux:   ox.IsFlux(f.Mode),
		})
	}
	f.order(tbl)
	f.weigh()

	return nil
}

func (f *Formula) order(tbl *oxide.Table) {
	sort.Slice(f.Components, func(i, j int) bool {
		return tbl.Rank(f.Components[i].Oxide) < tbl.Rank(f.Components[j].Oxide)
	})
}

func (f *Formula) weigh() {
	f.Weight = 0
	for _, c := range f.Components {
		f.Weight += c.Ratio * c.Weight
	}
}

// MolesPerUnit returns, for material id, the moles of each known oxide
// supplied by one unit of mass. Unknown oxides are skipped.
//
// Errors: ErrUnresolvedMaterial when src does not hold id.
func MolesPerUnit(id string, src Materials, tbl *oxide.Table) (map[string]float64, error) {
	if tbl == nil {
		tbl = oxide.Default()
	}
	out := make(map[string]float64)
	ok := src.Analysis(id, func(symbol string, pct float64) {
		if pct <= 0 {
			return
		}
		sym := tbl.Canonical(symbol)
		if ox, known := tbl.Lookup(sym); known {
			out[sym] += pct / 100 / ox.Weight
		}
	})
	if !ok {
		return nil, fmt.Errorf("%q: %w", id, ErrUnresolvedMaterial)
	}

	return out, nil
}

// Outcome is the per-recipe result of ComputeAll.
type Outcome struct {
	Recipe  catalog.Recipe
	Formula *Formula
	Err     error
}

// ComputeAll evaluates each recipe independently; one failure never stops
// the others. Outcomes keep the input order.
func ComputeAll(recipes []catalog.Recipe, src Materials, opts Options) []Outcome {
	out := make([]Outcome, len(recipes))
	for i, r := range recipes {
		f, err := Compute(r, src, opts)
		out[i] = Outcome{Recipe: r, Formula: f, Err: err}
	}

	return out
}
