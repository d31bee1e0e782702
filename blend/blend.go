// SPDX-License-Identifier: MIT

// Package blend generates N-axial blends between corner recipes.
//
// Points lie on a simplex lattice: with S steps per edge every point's
// corner fractions are multiples of 1/(S-1) summing to 1. Two corners give
// a line blend, three a triaxial, four a quadraxial and so on.
//
// Naming:
//
//	- line blends: "1" (all first corner) … "S" (all second corner).
//	- otherwise:   one 1-based grid index per corner joined by "-",
//	               e.g. "3-1-1" is all first corner when S = 3.
package blend

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/katalvlaran/glaze/catalog"
	"github.com/katalvlaran/glaze/umf"
)

// ErrTooFewCorners is returned when fewer than two corners are given.
var ErrTooFewCorners = errors.New("blend: need at least two corners")

// MinSteps is the smallest lattice resolution; smaller values are raised to it.
const MinSteps = 2

// Lattice returns every fraction vector of the simplex lattice with steps
// points per edge, first corner at 100% first. It returns nil for fewer
// than one corner.
//
// Complexity: O(C(d+n-1, n-1)·n) for n corners and d = steps-1 divisions.
func Lattice(corners, steps int) [][]float64 {
	if corners < 1 {
		return nil
	}
	if steps < MinSteps {
		steps = MinSteps
	}
	div := steps - 1

	var out [][]float64
	parts := make([]int, 0, corners)
	var walk func(total, left int)
	walk = func(total, left int) {
		if left == 1 {
			parts = append(parts, total)
			fr := make([]float64, corners)
			for i, p := range parts {
				fr[corners-1-i] = float64(p) / float64(div)
			}
			out = append(out, fr)
			parts = parts[:len(parts)-1]
			return
		}
		for i := 0; i <= total; i++ {
			parts = append(parts, i)
			walk(total-i, left-1)
			parts = parts[:len(parts)-1]
		}
	}
	walk(div, corners)

	return out
}

// PointName returns the grid name of a lattice point.
func PointName(fractions []float64, steps int) string {
	if steps < MinSteps {
		steps = MinSteps
	}
	div := float64(steps - 1)
	if len(fractions) == 2 {
		return strconv.Itoa(int(math.Round((1-fractions[0])*div)) + 1)
	}
	idx := make([]string, len(fractions))
	for i, f := range fractions {
		idx[i] = strconv.Itoa(int(math.Round(f*div)) + 1)
	}

	return strings.Join(idx, "-")
}

// Mix blends corner recipes by fractions. Each corner is normalised to 100
// parts first, additions included; the result totals 100 when the fractions
// sum to 1. Lines keep first-appearance order and the addition flag; empty
// corners are skipped.
func Mix(corners []catalog.Recipe, fractions []float64) catalog.Recipe {
	type key struct {
		material string
		addition bool
	}
	idx := make(map[key]int)
	var out catalog.Recipe
	for c, r := range corners {
		if c >= len(fractions) {
			break
		}
		total := r.Total()
		if total <= 0 {
			continue
		}
		for _, e := range r.Entries {
			v := e.Amount / total * 100 * fractions[c]
			if v <= 0 {
				continue
			}
			k := key{e.Material, e.Addition}
			if i, ok := idx[k]; ok {
				out.Entries[i].Amount += v
				continue
			}
			idx[k] = len(out.Entries)
			out.Entries = append(out.Entries, catalog.Entry{Material: e.Material, Amount: v, Addition: e.Addition})
		}
	}

	return out
}

// Point is one evaluated blend.
type Point struct {
	Name      string
	Fractions []float64
	Corners   []string // corner display names, parallel to Fractions
	Recipe    catalog.Recipe
	Formula   *umf.Formula
	Err       error // formula failure for this point only
}

// Label describes the corner shares, e.g. "A:50%, B:50%"; zero shares are
// left out.
func (p Point) Label() string {
	parts := make([]string, 0, len(p.Fractions))
	for i, f := range p.Fractions {
		if f > 0 {
			parts = append(parts, fmt.Sprintf("%s:%.0f%%", p.Corners[i], f*100))
		}
	}

	return strings.Join(parts, ", ")
}

// Generate evaluates every lattice point between corners, sorted by name.
// A point whose formula fails carries the error in Point.Err; the others
// are unaffected.
func Generate(corners []catalog.Recipe, steps int, src umf.Materials, opts umf.Options) ([]Point, error) {
	if len(corners) < 2 {
		return nil, fmt.Errorf("%d given: %w", len(corners), ErrTooFewCorners)
	}
	names := make([]string, len(corners))
	for i, r := range corners {
		names[i] = r.DisplayName()
	}

	lattice := Lattice(len(corners), steps)
	out := make([]Point, 0, len(lattice))
	for _, fr := range lattice {
		p := Point{Name: PointName(fr, steps), Fractions: fr, Corners: names}
		p.Recipe = Mix(corners, fr)
		p.Recipe.ID = "blend-" + p.Name
		p.Formula, p.Err = umf.Compute(p.Recipe, src, opts)
		out = append(out, p)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })

	return out, nil
}
