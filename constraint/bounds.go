// SPDX-License-Identifier: MIT

package constraint

import (
	"fmt"
	"math"
	"sort"
)

// Validate checks every bound in s and that each constrained material is in
// palette. Materials are checked in lexical order so the reported one is
// stable.
func (s Set) Validate(palette []string) error {
	in := make(map[string]struct{}, len(palette))
	for _, id := range palette {
		in[id] = struct{}{}
	}

	ids := make([]string, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		if _, ok := in[id]; !ok {
			return fmt.Errorf("%q not in palette: %w", id, ErrInvalidBounds)
		}
		if err := s[id].validate(); err != nil {
			return fmt.Errorf("%q: %w", id, err)
		}
	}

	return nil
}

// Validate is the package-level form of Set.Validate.
func Validate(s Set, palette []string) error { return s.Validate(palette) }

func (b Bound) validate() error {
	if math.IsNaN(b.Min) || math.IsInf(b.Min, 0) || b.Min < 0 {
		return fmt.Errorf("min %g: %w", b.Min, ErrInvalidBounds)
	}
	if math.IsNaN(b.Max) || math.IsInf(b.Max, -1) || b.Max < b.Min {
		return fmt.Errorf("max %g below min %g: %w", b.Max, b.Min, ErrInvalidBounds)
	}
	if b.Fixed != nil {
		v := *b.Fixed
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return fmt.Errorf("fixed %g: %w", v, ErrInvalidBounds)
		}
		if v < b.Min || v > b.Max {
			return fmt.Errorf("fixed %g outside [%g, %g]: %w", v, b.Min, b.Max, ErrInvalidBounds)
		}
	}
	if b.Exclude && (b.Min > 0 || (b.Fixed != nil && *b.Fixed > 0)) {
		return fmt.Errorf("excluded with positive mass: %w", ErrInvalidBounds)
	}

	return nil
}

// Range returns the resolved interval of a valid bound.
func (b Bound) Range() Range {
	switch {
	case b.Exclude:
		return Range{}
	case b.Fixed != nil:
		return Range{Min: *b.Fixed, Max: *b.Fixed}
	default:
		return Range{Min: b.Min, Max: b.Max}
	}
}

// Bounds holds one Range per palette index.
type Bounds []Range

// Resolve validates s against palette and returns its ranges in palette
// order; unconstrained materials get [0, +Inf).
func (s Set) Resolve(palette []string) (Bounds, error) {
	if err := s.Validate(palette); err != nil {
		return nil, err
	}
	out := make(Bounds, len(palette))
	for i, id := range palette {
		b, ok := s[id]
		if !ok {
			b = Free()
		}
		out[i] = b.Range()
	}

	return out, nil
}

// WithinBounds reports whether every mass lies in its range. A length
// mismatch reads as false.
func (bs Bounds) WithinBounds(masses []float64) bool {
	if len(masses) != len(bs) {
		return false
	}
	for i, r := range bs {
		if !r.Contains(masses[i]) {
			return false
		}
	}

	return true
}

// Clamp returns a copy of masses projected onto the ranges.
func (bs Bounds) Clamp(masses []float64) []float64 {
	out := make([]float64, len(masses))
	for i, m := range masses {
		if i < len(bs) {
			m = bs[i].Clamp(m)
		}
		out[i] = m
	}

	return out
}

// Free returns the indices whose range is not pinned, in order.
func (bs Bounds) Free() []int {
	out := make([]int, 0, len(bs))
	for i, r := range bs {
		if !r.Pinned() {
			out = append(out, i)
		}
	}

	return out
}

// PinnedMass returns Σ mass of the pinned ranges.
func (bs Bounds) PinnedMass() float64 {
	var s float64
	for _, r := range bs {
		if r.Pinned() {
			s += r.Min
		}
	}

	return s
}

// Feasible returns ErrInfeasibleConstraints when no palette material can
// carry a positive mass: every range is empty or pinned at zero.
func (bs Bounds) Feasible() error {
	for _, r := range bs {
		if r.Max > 0 {
			return nil
		}
	}

	return fmt.Errorf("all %d materials excluded or bounded at zero: %w", len(bs), ErrInfeasibleConstraints)
}

// FitsBatch returns ErrInfeasibleConstraints when the free ranges cannot
// bring the batch to total: Σ Min exceeds it or Σ Max falls short. A fully
// pinned palette has nothing to adjust and always fits.
func (bs Bounds) FitsBatch(total float64) error {
	if len(bs.Free()) == 0 {
		return nil
	}
	var lo, hi float64
	for _, r := range bs {
		lo += r.Min
		hi += r.Max
	}
	switch {
	case lo > total:
		return fmt.Errorf("lower bounds sum to %g, above batch %g: %w", lo, total, ErrInfeasibleConstraints)
	case hi < total:
		return fmt.Errorf("upper bounds sum to %g, below batch %g: %w", hi, total, ErrInfeasibleConstraints)
	}

	return nil
}
