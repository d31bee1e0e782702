// SPDX-License-Identifier: MIT

package umf

import (
	"fmt"
	"math"

	"github.com/katalvlaran/glaze/catalog"
	"github.com/katalvlaran/glaze/oxide"
)

// FromRatios builds a Formula from stored flux/other ratios, e.g. a target
// read from a UMF file. The section an oxide was filed under is ignored: the
// partition follows opts.Table and opts.Mode. Ratios are taken as given and
// not renormalised; zero ratios are kept so a target can ask for "none".
//
// Errors: oxide.ErrUnknownOxide, ErrInvalidRatio, ErrDegenerateFormula when
// the ratios are empty.
func FromRatios(r catalog.Ratios, opts Options) (*Formula, error) {
	tbl := opts.table()
	ratios := make(map[string]float64, len(r.Flux)+len(r.Other))
	for _, part := range []map[string]float64{r.Flux, r.Other} {
		for name, v := range part {
			if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
				return nil, fmt.Errorf("%s=%g: %w", name, v, ErrInvalidRatio)
			}
			sym := tbl.Canonical(name)
			if _, ok := tbl.Lookup(sym); !ok {
				return nil, fmt.Errorf("%q: %w", name, oxide.ErrUnknownOxide)
			}
			ratios[sym] += v
		}
	}
	if len(ratios) == 0 {
		return nil, fmt.Errorf("%q: %w", r.Name, ErrDegenerateFormula)
	}

	f := &Formula{Mode: opts.Mode, Components: make([]Component, 0, len(ratios))}
	for sym, v := range ratios {
		ox, _ := tbl.Lookup(sym)
		c := Component{Oxide: ox.Symbol, Ratio: v, Weight: ox.Weight, Flux: ox.IsFlux(opts.Mode)}
		if c.Flux {
			f.FluxMoles += v
		}
		f.Components = append(f.Components, c)
	}
	f.order(tbl)
	f.weigh()

	return f, nil
}

// Ratio returns the ratio of symbol, or 0 when absent.
func (f *Formula) Ratio(symbol string) float64 {
	if c, ok := f.Component(symbol); ok {
		return c.Ratio
	}

	return 0
}

// Component returns the component for symbol.
func (f *Formula) Component(symbol string) (Component, bool) {
	for _, c := range f.Components {
		if c.Oxide == symbol {
			return c, true
		}
	}

	return Component{}, false
}

// Has reports whether symbol is present with a positive ratio.
func (f *Formula) Has(symbol string) bool {
	return f.Ratio(symbol) > 0
}

// Flux returns the flux components in report order.
func (f *Formula) Flux() []Component { return f.filter(true) }

// Other returns the non-flux components in report order.
func (f *Formula) Other() []Component { return f.filter(false) }

func (f *Formula) filter(flux bool) []Component {
	out := make([]Component, 0, len(f.Components))
	for _, c := range f.Components {
		if c.Flux == flux {
			out = append(out, c)
		}
	}

	return out
}

// FluxSum returns Σ flux ratios; 1 up to rounding for computed formulas.
func (f *Formula) FluxSum() float64 {
	var s float64
	for _, c := range f.Components {
		if c.Flux {
			s += c.Ratio
		}
	}

	return s
}

// Oxides returns the component symbols in report order.
func (f *Formula) Oxides() []string {
	out := make([]string, len(f.Components))
	for i, c := range f.Components {
		out[i] = c.Oxide
	}

	return out
}

// Ratios returns symbol -> ratio.
func (f *Formula) Ratios() map[string]float64 {
	out := make(map[string]float64, len(f.Components))
	for _, c := range f.Components {
		out[c.Oxide] = c.Ratio
	}

	return out
}

// Split returns the formula as flux/other ratio maps under name, ready to be
// written with catalog.WriteRatios.
func (f *Formula) Split(name string) catalog.Ratios {
	r := catalog.Ratios{Name: name, Flux: map[string]float64{}, Other: map[string]float64{}}
	for _, c := range f.Components {
		if c.Flux {
			r.Flux[c.Oxide] = c.Ratio
		} else {
			r.Other[c.Oxide] = c.Ratio
		}
	}

	return r
}

// OxideWeightPercent returns each oxide's share of the fired formula weight,
// ratio × molecular weight / Weight × 100, in report order.
func (f *Formula) OxideWeightPercent() []Share {
	out := make([]Share, 0, len(f.Components))
	if f.Weight <= 0 {
		return out
	}
	for _, c := range f.Components {
		out = append(out, Share{Oxide: c.Oxide, Percent: c.Ratio * c.Weight / f.Weight * 100})
	}

	return out
}

// SiAl returns the SiO2:Al2O3 ratio, or 0 when the formula has no alumina.
func (f *Formula) SiAl() float64 {
	al := f.Ratio("Al2O3")
	if al <= 0 {
		return 0
	}

	return f.Ratio("SiO2") / al
}
