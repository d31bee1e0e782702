// SPDX-License-Identifier: MIT

// Package cte estimates the coefficient of thermal expansion of a glaze.
//
// The estimate is a linear weighted sum over fired oxide weight percentages:
//
//	CTE = Σ wt%(ox) × coefficient(ox)      [×10⁻⁶/°C]
//
// Weight percentages come from a umf.Formula (ratio × molecular weight,
// normalised to 100), so the result follows the formula engine's oxide
// table and flux convention. Default coefficients are the West & Gerrow
// weight-basis set with lithium from Appen and estimates for minor oxides.
package cte

import (
	"errors"
	"math"
	"sort"

	"github.com/katalvlaran/glaze/catalog"
	"github.com/katalvlaran/glaze/umf"
)

// ErrNilFormula is returned when Calculate receives no formula.
var ErrNilFormula = errors.New("cte: formula is nil")

// Coefficients maps oxide symbol to its weight-basis expansion coefficient.
type Coefficients map[string]float64

var defaults = Coefficients{
	"SiO2":  0.035,
	"Al2O3": 0.063,
	"Na2O":  0.390,
	"K2O":   0.331,
	"CaO":   0.148,
	"MgO":   0.030,
	"Fe2O3": 0.130,
	"TiO2":  0.140,
	"ZrO2":  0.020,
	"B2O3":  -0.065,
	"Li2O":  0.320,
	"ZnO":   0.070,
	"BaO":   0.100,
	"SrO":   0.120,
	"PbO":   0.130,
	"MnO":   0.100,
	"CoO":   0.050,
	"CuO":   0.030,
	"NiO":   0.050,
	"SnO2":  0.020,
	"Bi2O3": 0.100,
}

// DefaultCoefficients returns a fresh copy of the reference coefficients.
func DefaultCoefficients() Coefficients {
	return defaults.WithOverrides(nil)
}

// WithOverrides returns a copy of c with overrides applied on top.
func (c Coefficients) WithOverrides(overrides map[string]float64) Coefficients {
	out := make(Coefficients, len(c)+len(overrides))
	for k, v := range c {
		out[k] = v
	}
	for k, v := range overrides {
		out[k] = v
	}

	return out
}

// Contribution is one oxide's share of the total.
type Contribution struct {
	Oxide       string
	Percent     float64 // fired weight percent
	Coefficient float64
	Value       float64 // Percent × Coefficient
}

// Result is a CTE estimate with its per-oxide breakdown.
type Result struct {
	Total         float64
	Contributions []Contribution // largest |Value| first
}

// Calculate estimates the CTE of f. Oxides without a coefficient (or with a
// zero one) contribute nothing and are left out of the breakdown. A nil c
// uses DefaultCoefficients.
func Calculate(f *umf.Formula, c Coefficients) (Result, error) {
	if f == nil {
		return Result{}, ErrNilFormula
	}
	if c == nil {
		c = defaults
	}

	var res Result
	for _, sh := range f.OxideWeightPercent() {
		coef := c[sh.Oxide]
		if coef == 0 {
			continue
		}
		v := sh.Percent * coef
		res.Total += v
		res.Contributions = append(res.Contributions, Contribution{
			Oxide:       sh.Oxide,
			Percent:     sh.Percent,
			Coefficient: coef,
			Value:       v,
		})
	}
	sort.SliceStable(res.Contributions, func(i, j int) bool {
		return math.Abs(res.Contributions[i].Value) > math.Abs(res.Contributions[j].Value)
	})

	return res, nil
}

// CalculateRecipe computes the formula of r and its CTE in one step.
func CalculateRecipe(r catalog.Recipe, src umf.Materials, opts umf.Options, c Coefficients) (Result, *umf.Formula, error) {
	f, err := umf.Compute(r, src, opts)
	if err != nil {
		return Result{}, nil, err
	}
	res, err := Calculate(f, c)

	return res, f, err
}
