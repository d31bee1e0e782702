// SPDX-License-Identifier: MIT

package solver

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sort"

	"github.com/katalvlaran/glaze/catalog"
	"github.com/katalvlaran/glaze/oxide"
	"github.com/katalvlaran/glaze/umf"
)

var (
	// ErrNilTarget indicates Solve was called without a target formula.
	ErrNilTarget = errors.New("solver: target formula is nil")

	// ErrEmptyPalette indicates Solve was called with no materials.
	ErrEmptyPalette = errors.New("solver: palette is empty")

	// ErrInvalidOptions indicates a non-positive or non-finite option value.
	ErrInvalidOptions = errors.New("solver: invalid options")

	// ErrDuplicateMaterial indicates a palette naming a material twice.
	ErrDuplicateMaterial = errors.New("solver: duplicate palette material")

	// ErrNumerical indicates the least-squares factorisation failed.
	ErrNumerical = errors.New("solver: numerical failure")
)

// Default option values.
const (
	DefaultMaxIterations        = 50
	DefaultRatioTolerance       = 1e-4
	DefaultImprovementTolerance = 1e-6
	DefaultBatchSize            = 100.0
	DefaultRankTolerance        = 1e-12

	// SelectThreshold is the percentage below which Result.Selected drops a
	// material.
	SelectThreshold = 0.1
)

// Options configures Solve.
//
// MaxIterations        – upper bound on linearised iterations (> 0).
// RatioTolerance       – converged when ‖residual‖₂ falls below it (> 0).
// ImprovementTolerance – stalled below this improvement of ‖residual‖₂ (> 0).
// BatchSize            – total mass of every iterate (> 0).
// Mode                 – flux convention of the forward evaluations.
// Table                – oxide data; nil means oxide.Default().
// RankTolerance        – relative singular-value cut-off for rank detection.
// Logger               – per-iteration debug records; nil is silent.
type Options struct {
	MaxIterations        int
	RatioTolerance       float64
	ImprovementTolerance float64
	BatchSize            float64
	Mode                 oxide.Mode
	Table                *oxide.Table
	RankTolerance        float64
	Logger               *slog.Logger
}

// DefaultOptions returns the documented defaults.
func DefaultOptions() Options {
	return Options{
		MaxIterations:        DefaultMaxIterations,
		RatioTolerance:       DefaultRatioTolerance,
		ImprovementTolerance: DefaultImprovementTolerance,
		BatchSize:            DefaultBatchSize,
		Mode:                 oxide.Traditional,
		RankTolerance:        DefaultRankTolerance,
	}
}

// Option mutates Options; see the With* helpers.
type Option func(*Options)

// WithMaxIterations sets MaxIterations.
func WithMaxIterations(n int) Option { return func(o *Options) { o.MaxIterations = n } }

// WithTolerances sets RatioTolerance and ImprovementTolerance.
func WithTolerances(ratio, improvement float64) Option {
	return func(o *Options) {
		o.RatioTolerance = ratio
		o.ImprovementTolerance = improvement
	}
}

// WithMode selects the flux convention.
func WithMode(m oxide.Mode) Option { return func(o *Options) { o.Mode = m } }

// WithTable sets the oxide table.
func WithTable(t *oxide.Table) Option { return func(o *Options) { o.Table = t } }

// WithLogger sets the debug logger.
func WithLogger(l *slog.Logger) Option { return func(o *Options) { o.Logger = l } }

// NewOptions applies opts over DefaultOptions.
func NewOptions(opts ...Option) Options {
	o := DefaultOptions()
	for _, fn := range opts {
		fn(&o)
	}

	return o
}

// Validate rejects non-positive or non-finite values.
func (o Options) Validate() error {
	pos := func(name string, v float64) error {
		if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
			return fmt.Errorf("%s=%g: %w", name, v, ErrInvalidOptions)
		}
		return nil
	}
	if o.MaxIterations <= 0 {
		return fmt.Errorf("MaxIterations=%d: %w", o.MaxIterations, ErrInvalidOptions)
	}
	for _, err := range []error{
		pos("RatioTolerance", o.RatioTolerance),
		pos("ImprovementTolerance", o.ImprovementTolerance),
		pos("BatchSize", o.BatchSize),
		pos("RankTolerance", o.RankTolerance),
	} {
		if err != nil {
			return err
		}
	}

	return nil
}

func (o Options) table() *oxide.Table {
	if o.Table == nil {
		return oxide.Default()
	}

	return o.Table
}

// Exit says why the iteration stopped.
type Exit int

const (
	// ExitConverged: the residual norm fell below RatioTolerance.
	ExitConverged Exit = iota
	// ExitStalled: an iteration improved the norm by less than
	// ImprovementTolerance, or made it worse.
	ExitStalled
	// ExitMaxIterations: MaxIterations ran out.
	ExitMaxIterations
	// ExitAllPinned: every palette material was pinned; one forward evaluation.
	ExitAllPinned
)

func (e Exit) String() string {
	switch e {
	case ExitConverged:
		return "converged"
	case ExitStalled:
		return "stalled"
	case ExitMaxIterations:
		return "max-iterations"
	case ExitAllPinned:
		return "all-pinned"
	default:
		return fmt.Sprintf("Exit(%d)", int(e))
	}
}

// Diagnostics describes the linear systems of a solve.
//
// Rows counts the ratio equations: the residual oxides plus the other
// palette oxides, fitted toward zero. Rank and Columns come from the first,
// unpinned least-squares solve of the last iteration; the batch-total
// equation counts toward Rank. RankDeficient is set when any iteration found linearly
// dependent free columns; the minimum-norm solution is used then and the
// residual typically stays above tolerance. Pinned lists the materials the
// active-set loop held at a bound in the last iteration.
type Diagnostics struct {
	Rows          int
	Columns       int
	Rank          int
	RankDeficient bool
	Pinned        []string
}

// Result is the outcome of Solve.
type Result struct {
	// Palette is the material order Masses follows.
	Palette []string
	// Masses of the best iterate, within bounds, summing to BatchSize unless
	// every material is pinned.
	Masses []float64
	// Recipe holds the materials with positive mass, in palette order.
	Recipe catalog.Recipe
	// Formula is the forward evaluation of Masses.
	Formula *umf.Formula
	// Oxides is the residual oxide set in report order.
	Oxides []string
	// Residual is achieved − target per oxide of Oxides.
	Residual map[string]float64
	// Norm is ‖Residual‖₂.
	Norm float64
	// Converged is true only for ExitConverged and for an all-pinned
	// evaluation already within tolerance.
	Converged bool
	Exit      Exit
	// Iterations counts linearised iterations; 0 when the start was final.
	Iterations int
	// History holds the residual norm of the start (index 0) and of every
	// iteration after it.
	History     []float64
	Diagnostics Diagnostics
}

// Total returns Σ Masses.
func (r *Result) Total() float64 {
	var s float64
	for _, m := range r.Masses {
		s += m
	}

	return s
}

// Percentages returns material → percent of the batch.
func (r *Result) Percentages() map[string]float64 {
	out := make(map[string]float64, len(r.Palette))
	total := r.Total()
	if total <= 0 {
		return out
	}
	for i, id := range r.Palette {
		out[id] = r.Masses[i] / total * 100
	}

	return out
}

// Selected returns the materials above SelectThreshold percent, largest
// share first; ties keep palette order.
func (r *Result) Selected() []string {
	pct := r.Percentages()
	out := make([]string, 0, len(r.Palette))
	for _, id := range r.Palette {
		if pct[id] > SelectThreshold {
			out = append(out, id)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return pct[out[i]] > pct[out[j]] })

	return out
}

// MaxAbsResidual returns the largest |residual| and its oxide.
func (r *Result) MaxAbsResidual() (string, float64) {
	var (
		sym  string
		best float64
	)
	for _, ox := range r.Oxides {
		if v := math.Abs(r.Residual[ox]); v > best || sym == "" {
			sym, best = ox, v
		}
	}

	return sym, best
}

// Normalized returns Recipe rescaled to total.
func (r *Result) Normalized(total float64) catalog.Recipe {
	return r.Recipe.Normalized(total)
}
