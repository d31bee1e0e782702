// SPDX-License-Identifier: MIT

package umf

import (
	"errors"

	"github.com/katalvlaran/glaze/oxide"
)

var (
	// ErrUnresolvedMaterial is returned when a recipe line names a material the
	// catalog does not hold.
	ErrUnresolvedMaterial = errors.New("umf: unresolved material")

	// ErrDegenerateFormula is returned when the flux total is zero, so the
	// formula cannot be brought to unity.
	ErrDegenerateFormula = errors.New("umf: degenerate formula, no flux moles")

	// ErrNegativeAmount is returned for a negative or non-finite recipe amount.
	ErrNegativeAmount = errors.New("umf: negative or non-finite amount")

	// ErrEmptyRecipe is returned for a recipe without lines.
	ErrEmptyRecipe = errors.New("umf: empty recipe")

	// ErrInvalidRatio is returned by FromRatios for negative or non-finite ratios.
	ErrInvalidRatio = errors.New("umf: negative or non-finite ratio")
)

// Materials is the read-only view of a material catalog the engine needs.
// *catalog.Catalog implements it.
type Materials interface {
	// Analysis calls fn for each oxide of material id; false if id is unknown.
	Analysis(id string, fn func(symbol string, pct float64)) bool
	// LOI returns the loss on ignition (percent) of material id.
	LOI(id string) (float64, bool)
}

// Options configures a formula evaluation.
//   - Mode: Traditional or Extended flux partition.
//   - Table: oxide reference data; nil means oxide.Default().
type Options struct {
	Mode  oxide.Mode
	Table *oxide.Table
}

// DefaultOptions returns the traditional convention over the reference table.
func DefaultOptions() Options {
	return Options{Mode: oxide.Traditional, Table: oxide.Default()}
}

func (o Options) table() *oxide.Table {
	if o.Table == nil {
		return oxide.Default()
	}

	return o.Table
}

// Component is one oxide of a formula.
type Component struct {
	Oxide  string  // canonical symbol
	Ratio  float64 // moles per mole of flux
	Moles  float64 // absolute moles in the evaluated batch (0 for FromRatios)
	Weight float64 // molecular weight
	Flux   bool    // counted in the unity divisor under Formula.Mode
}

// Share is an oxide weight percentage of the fired formula.
type Share struct {
	Oxide   string
	Percent float64
}

// Formula is a Unity Molecular Formula.
type Formula struct {
	// Components in oxide-table report order.
	Components []Component

	// FluxMoles is the unity divisor F of the evaluated batch.
	FluxMoles float64

	// Weight is the formula weight Σ ratio × molecular weight.
	Weight float64

	// Mode is the flux convention the partition was made under.
	Mode oxide.Mode

	// RawMass is Σ amount; FiredMass is Σ amount × (100 − LOI)/100.
	RawMass, FiredMass float64

	// Unrecognized lists analysed oxides missing from the table; they were
	// left out of the formula.
	Unrecognized []string
}
