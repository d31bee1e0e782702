package solver_test

import (
	"bytes"
	"log/slog"
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/katalvlaran/glaze/catalog"
	"github.com/katalvlaran/glaze/constraint"
	"github.com/katalvlaran/glaze/oxide"
	"github.com/katalvlaran/glaze/solver"
	"github.com/katalvlaran/glaze/umf"
)

// SolveSuite runs the solver over a small stoneware palette.
type SolveSuite struct {
	suite.Suite
	cat     *catalog.Catalog
	palette []string
	masses  []float64
	target  *umf.Formula
}

func TestSolveSuite(t *testing.T) {
	suite.Run(t, new(SolveSuite))
}

func (s *SolveSuite) SetupTest() {
	cat, err := catalog.New([]catalog.Material{
		{ID: "potash", Analysis: map[string]float64{"K2O": 16.9, "Al2O3": 18.3, "SiO2": 64.8}},
		{ID: "whiting", LOI: 44, Analysis: map[string]float64{"CaO": 56}},
		{ID: "kaolin", LOI: 13.9, Analysis: map[string]float64{"SiO2": 46.5, "Al2O3": 39.5}},
		{ID: "silica", Analysis: map[string]float64{"SiO2": 100}},
		{ID: "talc", LOI: 4.8, Analysis: map[string]float64{"MgO": 31.7, "SiO2": 63.5}},
		{ID: "quartz", Analysis: map[string]float64{"SiO2": 100}},
		{ID: "cobalt", Analysis: map[string]float64{"CoO": 100}},
	}, nil)
	s.Require().NoError(err)
	s.cat = cat

	s.palette = []string{"potash", "whiting", "kaolin", "silica"}
	s.masses = []float64{30, 20, 20, 30}
	s.target = s.compute(s.palette, s.masses)
}

func (s *SolveSuite) compute(ids []string, masses []float64) *umf.Formula {
	r := catalog.Recipe{ID: "t"}
	for i, id := range ids {
		r.Entries = append(r.Entries, catalog.Entry{Material: id, Amount: masses[i]})
	}
	f, err := umf.Compute(r, s.cat, umf.DefaultOptions())
	s.Require().NoError(err)

	return f
}

func (s *SolveSuite) assertMatches(want, got *umf.Formula, tol float64) {
	for _, c := range want.Components {
		s.InDelta(c.Ratio, got.Ratio(c.Oxide), tol, c.Oxide)
	}
}

// TestRoundTrip solves for a recipe's own formula over its own materials.
func (s *SolveSuite) TestRoundTrip() {
	res, err := solver.Solve(s.target, s.palette, nil, s.cat, solver.DefaultOptions())
	s.Require().NoError(err)

	s.True(res.Converged)
	s.Equal(solver.ExitConverged, res.Exit)
	s.LessOrEqual(res.Iterations, 3)
	s.Less(res.Norm, solver.DefaultRatioTolerance)
	s.assertMatches(s.target, res.Formula, solver.DefaultRatioTolerance)
	s.False(res.Diagnostics.RankDeficient)
	s.Equal(4, res.Diagnostics.Rank)
	s.InDelta(solver.DefaultBatchSize, res.Total(), 1e-9)

	// The recovered proportions are the original ones up to scale.
	pct := res.Percentages()
	for i, id := range s.palette {
		s.InDelta(s.masses[i], pct[id], 1e-3, id)
	}
	s.ElementsMatch(s.palette, res.Selected())
}

// TestTwoFluxTarget matches K2O 0.26 / CaO 0.74 with feldspar, whiting and silica.
func (s *SolveSuite) TestTwoFluxTarget() {
	al := 0.26 * (18.3 / 101.961) / (16.9 / 94.196)
	target, err := umf.FromRatios(catalog.Ratios{
		Flux:  map[string]float64{"K2O": 0.26, "CaO": 0.74},
		Other: map[string]float64{"Al2O3": al, "SiO2": 3.0},
	}, umf.DefaultOptions())
	s.Require().NoError(err)

	res, err := solver.Solve(target, []string{"potash", "whiting", "silica"}, nil, s.cat, solver.DefaultOptions())
	s.Require().NoError(err)

	s.True(res.Converged)
	s.LessOrEqual(res.Iterations, solver.DefaultMaxIterations)
	s.Less(res.Norm, 1e-4)
	s.InDelta(0.26, res.Formula.Ratio("K2O"), 1e-4)
	s.InDelta(0.74, res.Formula.Ratio("CaO"), 1e-4)
}

// TestMissingFlux: whiting alone cannot supply K2O.
func (s *SolveSuite) TestMissingFlux() {
	target, err := umf.FromRatios(catalog.Ratios{Flux: map[string]float64{"K2O": 0.26, "CaO": 0.74}}, umf.DefaultOptions())
	s.Require().NoError(err)

	res, err := solver.Solve(target, []string{"whiting"}, nil, s.cat, solver.DefaultOptions())
	s.Require().NoError(err)

	s.False(res.Converged)
	s.Equal(solver.ExitStalled, res.Exit)
	s.InDelta(-0.26, res.Residual["K2O"], 1e-9)
	_, worst := res.MaxAbsResidual()
	s.InDelta(0.26, worst, 1e-9)
	s.Equal([]string{"K2O", "CaO"}, res.Oxides)
}

// TestFixedValuesExact pins talc at zero and whiting at its recipe amount.
func (s *SolveSuite) TestFixedValuesExact() {
	palette := append(append([]string(nil), s.palette...), "talc")
	set := constraint.Set{
		"whiting": constraint.Fix(20),
		"talc":    constraint.Fix(0),
	}
	res, err := solver.Solve(s.target, palette, set, s.cat, solver.DefaultOptions())
	s.Require().NoError(err)

	s.Equal(20.0, res.Masses[1])
	s.Equal(0.0, res.Masses[4])
	s.NotContains(res.Recipe.Materials(), "talc")
	s.True(res.Converged)
	s.assertMatches(s.target, res.Formula, solver.DefaultRatioTolerance)
	s.Contains(res.Oxides, "MgO", "palette flux oxides join the residual")
}

func (s *SolveSuite) TestBoundRespect() {
	set := constraint.Set{"kaolin": constraint.AtMost(10), "silica": constraint.Between(5, 60)}
	res, err := solver.Solve(s.target, s.palette, set, s.cat, solver.DefaultOptions())
	s.Require().NoError(err)

	bs, err := set.Resolve(s.palette)
	s.Require().NoError(err)
	s.True(bs.WithinBounds(res.Masses), "masses %v", res.Masses)
	s.LessOrEqual(res.Masses[2], 10.0)
	for _, m := range res.Masses {
		s.GreaterOrEqual(m, 0.0)
	}
	s.InDelta(solver.DefaultBatchSize, res.Total(), 1e-9)
}

// TestLowerBoundBinds holds quartz above its minimum-norm share of the
// silica it duplicates; silica takes the rest and the fit stays exact.
func (s *SolveSuite) TestLowerBoundBinds() {
	palette := append(append([]string(nil), s.palette...), "quartz")
	set := constraint.Set{"quartz": constraint.AtLeast(25)}
	res, err := solver.Solve(s.target, palette, set, s.cat, solver.DefaultOptions())
	s.Require().NoError(err)

	s.True(res.Converged)
	s.Equal(solver.ExitConverged, res.Exit)
	s.InDelta(25, res.Masses[4], 1e-9)
	s.InDelta(5, res.Masses[3], 1e-3)
	s.InDelta(solver.DefaultBatchSize, res.Total(), 1e-9)
	s.Contains(res.Diagnostics.Pinned, "quartz")
	s.assertMatches(s.target, res.Formula, solver.DefaultRatioTolerance)
}

// TestLowerBoundAboveShare asks for more silica than the target holds. The
// equal start would overshoot the batch; every iterate stays on it instead.
func (s *SolveSuite) TestLowerBoundAboveShare() {
	set := constraint.Set{"silica": constraint.AtLeast(40)}
	res, err := solver.Solve(s.target, s.palette, set, s.cat, solver.DefaultOptions())
	s.Require().NoError(err)

	s.False(res.Converged)
	s.GreaterOrEqual(res.Iterations, 1)
	s.GreaterOrEqual(res.Masses[3], 40.0)
	s.InDelta(solver.DefaultBatchSize, res.Total(), 1e-9)
	s.Less(res.Norm, res.History[0], "the search moves off the start")
	s.Contains(res.Diagnostics.Pinned, "silica")
}

// TestNegativeClamped asks for less SiO2 than potash alone brings, so the
// unconstrained silica mass goes negative and is held at its lower bound.
func (s *SolveSuite) TestNegativeClamped() {
	base := s.compute([]string{"potash", "whiting"}, []float64{70, 30})
	r := catalog.Ratios{Flux: map[string]float64{}, Other: map[string]float64{}}
	for _, c := range base.Components {
		switch {
		case c.Flux:
			r.Flux[c.Oxide] = c.Ratio
		case c.Oxide == "SiO2":
			r.Other[c.Oxide] = 0.8 * c.Ratio
		default:
			r.Other[c.Oxide] = c.Ratio
		}
	}
	target, err := umf.FromRatios(r, umf.DefaultOptions())
	s.Require().NoError(err)
	palette := []string{"potash", "whiting", "silica"}

	for name, tc := range map[string]struct {
		set  constraint.Set
		want float64
	}{
		"zero floor": {nil, 0},
		"raised min": {constraint.Set{"silica": constraint.AtLeast(2)}, 2},
	} {
		s.Run(name, func() {
			res, err := solver.Solve(target, palette, tc.set, s.cat, solver.DefaultOptions())
			s.Require().NoError(err)

			s.InDelta(tc.want, res.Masses[2], 1e-9)
			s.Contains(res.Diagnostics.Pinned, "silica")
			s.InDelta(solver.DefaultBatchSize, res.Total(), 1e-9)
			s.Less(res.Norm, res.History[0])
		})
	}
}

// TestUnwantedOxideHeldAtBound: cobalt brings only CoO, which the target
// does not name, so it stays at its minimum instead of filling the batch.
func (s *SolveSuite) TestUnwantedOxideHeldAtBound() {
	palette := append(append([]string(nil), s.palette...), "cobalt")
	set := constraint.Set{"cobalt": constraint.AtLeast(1)}
	res, err := solver.Solve(s.target, palette, set, s.cat, solver.DefaultOptions())
	s.Require().NoError(err)

	s.True(res.Converged)
	s.InDelta(1, res.Masses[4], 1e-9)
	s.InDelta(solver.DefaultBatchSize, res.Total(), 1e-9)
	s.NotContains(res.Oxides, "CoO")
	s.Equal(len(res.Oxides)+1, res.Diagnostics.Rows)
	for i := range s.palette {
		s.InDelta(s.masses[i]*0.99, res.Masses[i], 1e-3, s.palette[i])
	}
}

func (s *SolveSuite) TestMonotonicResidual() {
	for _, set := range []constraint.Set{
		nil,
		{"kaolin": constraint.AtMost(10)},
		{"whiting": constraint.Fix(20)},
	} {
		res, err := solver.Solve(s.target, s.palette, set, s.cat, solver.DefaultOptions())
		s.Require().NoError(err)
		s.Require().NotEmpty(res.History)
		s.LessOrEqual(res.Norm, res.History[0])
		s.Len(res.History, res.Iterations+1)
	}
}

func (s *SolveSuite) TestAllPinned() {
	set := constraint.Set{}
	for i, id := range s.palette {
		set[id] = constraint.Fix(s.masses[i])
	}
	res, err := solver.Solve(s.target, s.palette, set, s.cat, solver.DefaultOptions())
	s.Require().NoError(err)

	s.Equal(solver.ExitAllPinned, res.Exit)
	s.True(res.Converged)
	s.Zero(res.Iterations)
	s.Equal(s.masses, res.Masses)
}

// TestRankDeficient adds quartz, a duplicate of silica.
func (s *SolveSuite) TestRankDeficient() {
	palette := append(append([]string(nil), s.palette...), "quartz")
	res, err := solver.Solve(s.target, palette, nil, s.cat, solver.DefaultOptions())
	s.Require().NoError(err)

	s.True(res.Diagnostics.RankDeficient)
	s.Equal(5, res.Diagnostics.Columns)
	s.Equal(4, res.Diagnostics.Rank)
	s.True(res.Converged, "minimum-norm still fits a consistent target")
	s.InDelta(res.Masses[3], res.Masses[4], 1e-6, "minimum norm splits the duplicate evenly")
}

func (s *SolveSuite) TestErrors() {
	opts := solver.DefaultOptions()
	for name, tc := range map[string]struct {
		target  *umf.Formula
		palette []string
		set     constraint.Set
		opts    solver.Options
		want    error
	}{
		"nil target":     {nil, s.palette, nil, opts, solver.ErrNilTarget},
		"empty palette":  {s.target, nil, nil, opts, solver.ErrEmptyPalette},
		"duplicate":      {s.target, []string{"silica", "silica"}, nil, opts, solver.ErrDuplicateMaterial},
		"bad options":    {s.target, s.palette, nil, solver.NewOptions(solver.WithMaxIterations(0)), solver.ErrInvalidOptions},
		"bad tolerance":  {s.target, s.palette, nil, solver.NewOptions(solver.WithTolerances(0, 1e-6)), solver.ErrInvalidOptions},
		"invalid bounds": {s.target, s.palette, constraint.Set{"silica": constraint.Between(50, 20)}, opts, constraint.ErrInvalidBounds},
		"unknown bound":  {s.target, s.palette, constraint.Set{"rutile": constraint.AtMost(5)}, opts, constraint.ErrInvalidBounds},
		"all excluded": {s.target, s.palette, constraint.Set{
			"potash": constraint.Exclude(), "whiting": constraint.Exclude(),
			"kaolin": constraint.Exclude(), "silica": constraint.Exclude(),
		}, opts, constraint.ErrInfeasibleConstraints},
		"no flux":    {s.target, []string{"silica", "kaolin"}, nil, opts, constraint.ErrInfeasibleConstraints},
		"over batch": {s.target, s.palette, constraint.Set{"whiting": constraint.Fix(70), "kaolin": constraint.AtLeast(40)}, opts, constraint.ErrInfeasibleConstraints},
		"flux off":   {s.target, s.palette, constraint.Set{"potash": constraint.Exclude(), "whiting": constraint.Fix(0)}, opts, constraint.ErrInfeasibleConstraints},
		"unresolved": {s.target, []string{"whiting", "unobtainium"}, nil, opts, umf.ErrUnresolvedMaterial},
	} {
		s.Run(name, func() {
			_, err := solver.Solve(tc.target, tc.palette, tc.set, s.cat, tc.opts)
			s.Require().ErrorIs(err, tc.want)
		})
	}
}

func (s *SolveSuite) TestLogger() {
	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	_, err := solver.Solve(s.target, s.palette, nil, s.cat, solver.NewOptions(solver.WithLogger(log)))
	s.Require().NoError(err)
	s.Contains(buf.String(), "solver iteration")
	s.Contains(buf.String(), "exit=converged")
}

// TestConcurrentSolves shares one catalog between goroutines.
func (s *SolveSuite) TestConcurrentSolves() {
	want, err := solver.Solve(s.target, s.palette, nil, s.cat, solver.DefaultOptions())
	s.Require().NoError(err)

	const n = 8
	var wg sync.WaitGroup
	results := make([]*solver.Result, n)
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = solver.Solve(s.target, s.palette, nil, s.cat, solver.DefaultOptions())
		}(i)
	}
	wg.Wait()

	for i := 0; i < n; i++ {
		s.Require().NoError(errs[i])
		s.Equal(want.Masses, results[i].Masses)
		s.Equal(want.History, results[i].History)
	}
}

func (s *SolveSuite) TestSelectCandidates() {
	got := solver.SelectCandidates(s.target, s.cat, nil)
	s.Equal([]string{"potash", "whiting", "kaolin", "silica", "talc", "quartz"}, got)
	s.Nil(solver.SelectCandidates(nil, s.cat, nil))
}

func TestOptions(t *testing.T) {
	o := solver.DefaultOptions()
	require.NoError(t, o.Validate())
	assert.Equal(t, 50, o.MaxIterations)
	assert.Equal(t, 1e-4, o.RatioTolerance)
	assert.Equal(t, 1e-6, o.ImprovementTolerance)
	assert.Equal(t, 100.0, o.BatchSize)
	assert.Equal(t, oxide.Traditional, o.Mode)
	assert.Nil(t, o.Logger)

	o = solver.NewOptions(solver.WithMode(oxide.Extended), solver.WithTolerances(1e-3, 1e-5))
	assert.Equal(t, oxide.Extended, o.Mode)
	assert.Equal(t, 1e-3, o.RatioTolerance)

	o.BatchSize = math.NaN()
	require.ErrorIs(t, o.Validate(), solver.ErrInvalidOptions)

	assert.Equal(t, "stalled", solver.ExitStalled.String())
}

func TestResult_Helpers(t *testing.T) {
	r := &solver.Result{
		Palette:  []string{"a", "b", "c"},
		Masses:   []float64{60, 0.05, 39.95},
		Oxides:   []string{"CaO", "SiO2"},
		Residual: map[string]float64{"CaO": 0.01, "SiO2": -0.2},
	}
	assert.InDelta(t, 100.0, r.Total(), 1e-12)
	assert.Equal(t, []string{"a", "c"}, r.Selected())
	ox, v := r.MaxAbsResidual()
	assert.Equal(t, "SiO2", ox)
	assert.InDelta(t, 0.2, v, 1e-12)
}
