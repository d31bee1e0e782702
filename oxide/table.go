// SPDX-License-Identifier: MIT

package oxide

import (
	"fmt"
	"math"
	"strings"
)

// reference lists the built-in oxides in report order: fluxes first (alkali,
// alkaline earth, others), then amphoterics, glass formers and colourants.
// Weights in g/mol.
var reference = []Oxide{
	{Symbol: "Li2O", Weight: 29.881, Role: Flux},
	{Symbol: "Na2O", Weight: 61.979, Role: Flux},
	{Symbol: "K2O", Weight: 94.196, Role: Flux},
	{Symbol: "MgO", Weight: 40.304, Role: Flux},
	{Symbol: "CaO", Weight: 56.077, Role: Flux},
	{Symbol: "SrO", Weight: 103.619, Role: Flux},
	{Symbol: "BaO", Weight: 153.326, Role: Flux},
	{Symbol: "ZnO", Weight: 81.379, Role: Flux},
	{Symbol: "PbO", Weight: 223.199, Role: Flux},

	{Symbol: "Al2O3", Weight: 101.961},
	{Symbol: "B2O3", Weight: 69.620},
	{Symbol: "SiO2", Weight: 60.085},
	{Symbol: "TiO2", Weight: 79.866},
	{Symbol: "ZrO2", Weight: 123.223},
	{Symbol: "P2O5", Weight: 141.945},

	{Symbol: "Fe2O3", Weight: 159.688, ExtendedFlux: true},
	{Symbol: "FeO", Weight: 71.844},
	{Symbol: "MnO", Weight: 70.937},
	{Symbol: "MnO2", Weight: 86.937, ExtendedFlux: true},
	{Symbol: "CoO", Weight: 74.932, ExtendedFlux: true},
	{Symbol: "CuO", Weight: 79.545, ExtendedFlux: true},
	{Symbol: "Cu2O", Weight: 143.091},
	{Symbol: "NiO", Weight: 74.692},
	{Symbol: "Cr2O3", Weight: 151.990},
	{Symbol: "SnO2", Weight: 150.71, ExtendedFlux: true},
	{Symbol: "Bi2O3", Weight: 465.96, ExtendedFlux: true},
	{Symbol: "V2O5", Weight: 181.880},
	{Symbol: "CeO2", Weight: 172.115},
	{Symbol: "La2O3", Weight: 325.809},
	{Symbol: "Nd2O3", Weight: 336.482},
	{Symbol: "Pr2O3", Weight: 329.813},
	{Symbol: "Er2O3", Weight: 382.516},
	{Symbol: "Y2O3", Weight: 225.810},
}

// defaultTable is built once; Table has no mutators so sharing is safe.
var defaultTable = mustTable(reference)

// Table is an immutable, ordered oxide lookup.
type Table struct {
	order []string         // symbols in report order
	index map[string]Oxide // symbol -> entry
}

// Default returns the built-in reference table.
func Default() *Table { return defaultTable }

// NewTable validates entries and builds a Table. Later duplicates replace
// earlier ones but keep the first position in the report order.
//
// Errors:
//   - ErrInvalidOxide for an empty symbol, non-finite or non-positive weight,
//     or a Role outside {Flux, Other}.
func NewTable(entries []Oxide) (*Table, error) {
	t := &Table{
		order: make([]string, 0, len(entries)),
		index: make(map[string]Oxide, len(entries)),
	}
	for _, o := range entries {
		if err := validateEntry(o); err != nil {
			return nil, err
		}
		if _, seen := t.index[o.Symbol]; !seen {
			t.order = append(t.order, o.Symbol)
		}
		t.index[o.Symbol] = o
	}

	return t, nil
}

func mustTable(entries []Oxide) *Table {
	t, err := NewTable(entries)
	if err != nil {
		panic(err)
	}

	return t
}

func validateEntry(o Oxide) error {
	if o.Symbol == "" {
		return fmt.Errorf("empty symbol: %w", ErrInvalidOxide)
	}
	if math.IsNaN(o.Weight) || math.IsInf(o.Weight, 0) || o.Weight <= 0 {
		return fmt.Errorf("%s weight %g: %w", o.Symbol, o.Weight, ErrInvalidOxide)
	}
	if o.Role != Flux && o.Role != Other {
		return fmt.Errorf("%s role %v: %w", o.Symbol, o.Role, ErrInvalidOxide)
	}

	return nil
}

// WithOverrides returns a new Table where each override replaces the entry
// with the same symbol or is appended. The receiver is left untouched.
func (t *Table) WithOverrides(overrides []Oxide) (*Table, error) {
	entries := t.Oxides()
	entries = append(entries, overrides...)

	return NewTable(entries)
}

// Lookup returns the entry for a canonical symbol.
func (t *Table) Lookup(symbol string) (Oxide, bool) {
	o, ok := t.index[symbol]

	return o, ok
}

// Weight returns the molecular weight of symbol or ErrUnknownOxide.
func (t *Table) Weight(symbol string) (float64, error) {
	o, ok := t.index[symbol]
	if !ok {
		return 0, fmt.Errorf("%q: %w", symbol, ErrUnknownOxide)
	}

	return o.Weight, nil
}

// IsFlux reports whether symbol is a flux in mode m. Unknown symbols are not.
func (t *Table) IsFlux(symbol string, m Mode) bool {
	o, ok := t.index[symbol]

	return ok && o.IsFlux(m)
}

// Rank returns the report position of symbol, or -1 when unknown.
func (t *Table) Rank(symbol string) int {
	for i, s := range t.order {
		if s == symbol {
			return i
		}
	}

	return -1
}

// Symbols returns a copy of the symbols in report order.
func (t *Table) Symbols() []string {
	out := make([]string, len(t.order))
	copy(out, t.order)

	return out
}

// Fluxes returns the flux symbols of mode m in report order.
func (t *Table) Fluxes(m Mode) []string {
	var out []string
	for _, s := range t.order {
		if t.index[s].IsFlux(m) {
			out = append(out, s)
		}
	}

	return out
}

// Oxides returns a copy of all entries in report order.
func (t *Table) Oxides() []Oxide {
	out := make([]Oxide, 0, len(t.order))
	for _, s := range t.order {
		out = append(out, t.index[s])
	}

	return out
}

// Len returns the number of entries.
func (t *Table) Len() int { return len(t.order) }

// Canonical maps a case-insensitive oxide name ("sio2", "K2o") onto the
// table's symbol. Names the table does not know are returned trimmed but
// otherwise unchanged so the caller can still report them.
func (t *Table) Canonical(name string) string {
	name = strings.TrimSpace(name)
	if _, ok := t.index[name]; ok {
		return name
	}
	for _, s := range t.order {
		if strings.EqualFold(s, name) {
			return s
		}
	}

	return name
}

// Normalize is Canonical against the reference table.
func Normalize(name string) string { return defaultTable.Canonical(name) }
