// SPDX-License-Identifier: MIT

package solver

import (
	"fmt"

	"gonum.org/v1/gonum/floats"

	"github.com/katalvlaran/glaze/catalog"
	"github.com/katalvlaran/glaze/constraint"
	"github.com/katalvlaran/glaze/umf"
)

// iterate is one evaluated point of the search.
type iterate struct {
	masses   []float64
	formula  *umf.Formula
	residual map[string]float64
	norm     float64
}

// run holds the state of a single Solve call.
type run struct {
	sys  *system
	bs   constraint.Bounds
	src  umf.Materials
	opts Options
	uopt umf.Options
}

// Solve fits palette masses to target under set.
//
// Bounds are validated and resolved before any iteration; see the package
// documentation for the algorithm and error taxonomy. Non-convergence is not
// an error: it is reported by Result.Converged and Result.Exit, with the
// best iterate returned.
func Solve(target *umf.Formula, palette []string, set constraint.Set, src umf.Materials, opts Options) (*Result, error) {
	if target == nil {
		return nil, ErrNilTarget
	}
	if len(palette) == 0 {
		return nil, ErrEmptyPalette
	}
	seen := make(map[string]bool, len(palette))
	for _, id := range palette {
		if seen[id] {
			return nil, fmt.Errorf("%q: %w", id, ErrDuplicateMaterial)
		}
		seen[id] = true
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	bs, err := set.Resolve(palette)
	if err != nil {
		return nil, err
	}
	if err = bs.Feasible(); err != nil {
		return nil, err
	}
	if err = bs.FitsBatch(opts.BatchSize); err != nil {
		return nil, err
	}

	tbl := opts.table()
	sys, err := newSystem(target, palette, bs, src, tbl, opts.Mode)
	if err != nil {
		return nil, err
	}

	r := &run{sys: sys, bs: bs, src: src, opts: opts, uopt: umf.Options{Mode: opts.Mode, Table: tbl}}

	return r.solve()
}

func (r *run) solve() (*Result, error) {
	cur, err := r.evaluate(r.start())
	if err != nil {
		return nil, fmt.Errorf("start: %w", err)
	}
	res := &Result{
		Palette:     r.sys.palette,
		Oxides:      r.sys.oxides,
		History:     []float64{cur.norm},
		Diagnostics: Diagnostics{Rows: r.sys.rows()},
	}
	r.debug("solver start", "flux", cur.formula.FluxMoles, "norm", cur.norm, "oxides", len(r.sys.oxides))

	if len(r.bs.Free()) == 0 {
		res.Exit = ExitAllPinned
		res.Converged = cur.norm < r.opts.RatioTolerance
		return r.finish(res, cur), nil
	}
	if cur.norm < r.opts.RatioTolerance {
		res.Exit, res.Converged = ExitConverged, true
		return r.finish(res, cur), nil
	}

	best, prev := cur, cur.norm
	res.Exit = ExitMaxIterations
	for it := 1; it <= r.opts.MaxIterations; it++ {
		masses, st, err := boundedLSQ(r.sys, cur.formula.FluxMoles, r.bs, r.opts.BatchSize, r.opts.RankTolerance)
		if err != nil {
			return nil, fmt.Errorf("iteration %d: %w", it, err)
		}
		next, err := r.evaluate(masses)
		if err != nil {
			return nil, fmt.Errorf("iteration %d: %w", it, err)
		}

		res.Iterations = it
		res.History = append(res.History, next.norm)
		r.record(&res.Diagnostics, st)
		r.debug("solver iteration",
			"iter", it,
			"flux_frozen", cur.formula.FluxMoles,
			"flux", next.formula.FluxMoles,
			"norm", next.norm,
			"rank", st.rank,
			"columns", st.columns,
			"pinned", len(st.pinned),
		)

		if next.norm < best.norm {
			best = next
		}
		if next.norm < r.opts.RatioTolerance {
			res.Exit, res.Converged = ExitConverged, true
			break
		}
		if it >= 2 && prev-next.norm < r.opts.ImprovementTolerance {
			res.Exit = ExitStalled
			break
		}
		prev, cur = next.norm, next
	}

	r.debug("solver done", "exit", res.Exit.String(), "iterations", res.Iterations, "norm", best.norm)

	return r.finish(res, best), nil
}

// start places pinned materials at their value and shares the rest of the
// batch equally between the free ones, clamped into their ranges, then
// rebalances the free masses so the batch sums to BatchSize.
func (r *run) start() []float64 {
	masses := make([]float64, len(r.bs))
	free := r.bs.Free()
	for i, rg := range r.bs {
		if rg.Pinned() {
			masses[i] = rg.Min
		}
	}
	if len(free) == 0 {
		return masses
	}

	share := (r.opts.BatchSize - r.bs.PinnedMass()) / float64(len(free))
	for _, j := range free {
		masses[j] = r.bs[j].Clamp(share)
	}
	rebalance(masses, r.bs, free, r.opts.BatchSize)

	return masses
}

// evaluate runs the forward model on masses.
func (r *run) evaluate(masses []float64) (iterate, error) {
	f, err := umf.Compute(r.recipe(masses, true), r.src, r.uopt)
	if err != nil {
		return iterate{}, err
	}
	res, vec := r.sys.residual(f)

	return iterate{masses: masses, formula: f, residual: res, norm: floats.Norm(vec, 2)}, nil
}

// recipe turns masses into recipe lines in palette order; zero masses are
// dropped unless keepZero.
func (r *run) recipe(masses []float64, keepZero bool) catalog.Recipe {
	rec := catalog.Recipe{ID: "solution"}
	for i, id := range r.sys.palette {
		if masses[i] > 0 || keepZero {
			rec.Entries = append(rec.Entries, catalog.Entry{Material: id, Amount: masses[i]})
		}
	}

	return rec
}

func (r *run) record(d *Diagnostics, st lsqStats) {
	d.Columns, d.Rank = st.columns, st.rank
	if st.rank < st.columns {
		d.RankDeficient = true
	}
	d.Pinned = d.Pinned[:0]
	for _, j := range st.pinned {
		d.Pinned = append(d.Pinned, r.sys.palette[j])
	}
}

func (r *run) finish(res *Result, it iterate) *Result {
	res.Masses = it.masses
	res.Recipe = r.recipe(it.masses, false)
	res.Formula = it.formula
	res.Residual = it.residual
	res.Norm = it.norm

	return res
}

func (r *run) debug(msg string, args ...any) {
	if r.opts.Logger == nil {
		return
	}
	r.opts.Logger.Debug(msg, args...)
}
