// SPDX-License-Identifier: MIT

// Package catalog holds the raw-material and recipe data glaze calculations
// run on, plus readers and writers for the YAML files they are kept in.
//
// A Catalog is built once (New, or Load* from files) and is read-only
// afterwards: every accessor returns copies, so a single *Catalog can be
// shared by concurrent formula evaluations and solves without locking.
package catalog

import (
	"errors"
	"math"
	"sort"
)

var (
	// ErrInvalidMaterial marks a material with a bad LOI or analysis value.
	ErrInvalidMaterial = errors.New("catalog: invalid material")

	// ErrInvalidRecipe marks a recipe with an empty material reference or a
	// negative / non-finite amount.
	ErrInvalidRecipe = errors.New("catalog: invalid recipe")

	// ErrDuplicateID is returned when two materials or two recipes share an ID.
	ErrDuplicateID = errors.New("catalog: duplicate id")

	// ErrUnknownRecipe is returned when a recipe ID is not in the catalog.
	ErrUnknownRecipe = errors.New("catalog: unknown recipe")

	// ErrFormat is returned when a file does not have the expected layout.
	ErrFormat = errors.New("catalog: unrecognised file format")
)

// Material is the fired analysis of one raw material.
//   - LOI: loss on ignition in percent (0..100); informational yield data.
//   - Analysis: oxide symbol -> weight percent, on a fired basis. Values need
//     not sum to 100.
type Material struct {
	ID       string
	Name     string
	LOI      float64
	Analysis map[string]float64
}

// DisplayName returns Name, falling back to ID.
func (m Material) DisplayName() string {
	if m.Name != "" {
		return m.Name
	}

	return m.ID
}

// Oxides returns the analysed oxide symbols in lexical order.
func (m Material) Oxides() []string {
	out := make([]string, 0, len(m.Analysis))
	for s := range m.Analysis {
		out = append(out, s)
	}
	sort.Strings(out)

	return out
}

// Provides reports whether the analysis holds a positive amount of symbol.
func (m Material) Provides(symbol string) bool {
	return m.Analysis[symbol] > 0
}

func (m Material) clone() Material {
	out := m
	out.Analysis = make(map[string]float64, len(m.Analysis))
	for k, v := range m.Analysis {
		out.Analysis[k] = v
	}

	return out
}

// Entry is one line of a recipe. Additions (colourants, opacifiers) sit
// outside the base batch but still contribute chemistry.
type Entry struct {
	Material string
	Amount   float64
	Addition bool
}

// Ratios is a UMF given explicitly as oxide ratios, e.g. a target file or
// the stored UMF of a recipe.
type Ratios struct {
	Name  string
	Flux  map[string]float64
	Other map[string]float64
}

// Empty reports whether no ratio is set.
func (r Ratios) Empty() bool { return len(r.Flux) == 0 && len(r.Other) == 0 }

// Recipe is an ordered list of material amounts.
type Recipe struct {
	ID      string
	Name    string
	Entries []Entry
	UMF     *Ratios // optional stored formula
}

// DisplayName returns Name, falling back to ID.
func (r Recipe) DisplayName() string {
	if r.Name != "" {
		return r.Name
	}

	return r.ID
}

// Total returns the sum of all amounts, additions included.
func (r Recipe) Total() float64 {
	var sum float64
	for _, e := range r.Entries {
		sum += e.Amount
	}

	return sum
}

// BaseTotal returns the sum of the non-addition amounts.
func (r Recipe) BaseTotal() float64 {
	var sum float64
	for _, e := range r.Entries {
		if !e.Addition {
			sum += e.Amount
		}
	}

	return sum
}

// Scale returns a copy with every amount multiplied by k.
func (r Recipe) Scale(k float64) Recipe {
	out := r.clone()
	for i := range out.Entries {
		out.Entries[i].Amount *= k
	}

	return out
}

// Normalized scales the recipe so its base sums to total. A recipe without
// a base (only additions, or empty) is returned unchanged.
func (r Recipe) Normalized(total float64) Recipe {
	base := r.BaseTotal()
	if base <= 0 {
		return r.clone()
	}

	return r.Scale(total / base)
}

// Materials returns the referenced material IDs in entry order.
func (r Recipe) Materials() []string {
	out := make([]string, len(r.Entries))
	for i, e := range r.Entries {
		out[i] = e.Material
	}

	return out
}

func (r Recipe) clone() Recipe {
	out := r
	out.Entries = make([]Entry, len(r.Entries))
	copy(out.Entries, r.Entries)
	if r.UMF != nil {
		u := cloneRatios(*r.UMF)
		out.UMF = &u
	}

	return out
}

func cloneRatios(r Ratios) Ratios {
	out := Ratios{Name: r.Name, Flux: map[string]float64{}, Other: map[string]float64{}}
	for k, v := range r.Flux {
		out.Flux[k] = v
	}
	for k, v := range r.Other {
		out.Other[k] = v
	}

	return out
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }
