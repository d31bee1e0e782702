// SPDX-License-Identifier: MIT

// Package constraint defines per-material mass bounds for a solve.
//
// A Set maps material IDs to a Bound. Materials of a palette that carry no
// bound are free: [0, +Inf). Bounds are absolute masses on the solver's batch
// scale (100 units by default, so they read as percent of the batch).
//
// Rules checked by Validate:
//
//	– Min ≥ 0 and finite; Max ≥ Min, not NaN (+Inf means no upper limit).
//	– Fixed, when set, is finite, ≥ 0 and inside [Min, Max].
//	– Excluded materials carry no positive Min or Fixed.
//	– Every constrained material is part of the palette.
//
// Resolve turns a Set into per-palette-index Ranges; fixed and excluded
// materials come out with Min == Max (excluded at 0).
//
// Errors (sentinel):
//
//	– ErrInvalidBounds          malformed bound, wrapped with the material ID.
//	– ErrInfeasibleConstraints  no material is left free to carry mass.
package constraint

import (
	"errors"
	"math"
)

var (
	// ErrInvalidBounds indicates a malformed bound.
	ErrInvalidBounds = errors.New("constraint: invalid bounds")

	// ErrInfeasibleConstraints indicates the bounds leave nothing to solve for.
	ErrInfeasibleConstraints = errors.New("constraint: infeasible constraints")
)

// Bound limits the mass of one material.
//
// The zero Bound pins the material at 0; use Free, AtLeast, AtMost, Between,
// Fix or Exclude to build bounds in code.
type Bound struct {
	Min     float64  // lower mass limit, ≥ 0
	Max     float64  // upper mass limit, math.Inf(1) for none
	Fixed   *float64 // exact mass; takes precedence over Min/Max once validated
	Exclude bool     // keep the material out of the recipe
}

// Free returns [0, +Inf).
func Free() Bound { return Bound{Max: math.Inf(1)} }

// AtLeast returns [lo, +Inf).
func AtLeast(lo float64) Bound { return Bound{Min: lo, Max: math.Inf(1)} }

// AtMost returns [0, hi].
func AtMost(hi float64) Bound { return Bound{Max: hi} }

// Between returns [lo, hi].
func Between(lo, hi float64) Bound { return Bound{Min: lo, Max: hi} }

// Fix returns a bound pinning the mass at v.
func Fix(v float64) Bound { return Bound{Max: math.Inf(1), Fixed: &v} }

// Exclude returns a bound keeping the material out.
func Exclude() Bound { return Bound{Exclude: true} }

// Range is a resolved [Min, Max] interval for one palette index.
type Range struct {
	Min, Max float64
}

// Pinned reports whether the range admits a single value.
func (r Range) Pinned() bool { return r.Min == r.Max }

// Contains reports whether v lies in the range.
func (r Range) Contains(v float64) bool { return v >= r.Min && v <= r.Max }

// Clamp returns v limited to the range.
func (r Range) Clamp(v float64) float64 {
	return math.Min(math.Max(v, r.Min), r.Max)
}

// Set maps material IDs to bounds.
type Set map[string]Bound
