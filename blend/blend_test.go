package blend_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/glaze/blend"
	"github.com/katalvlaran/glaze/catalog"
	"github.com/katalvlaran/glaze/umf"
)

func TestLattice(t *testing.T) {
	assert.Equal(t, [][]float64{{1, 0}, {0.5, 0.5}, {0, 1}}, blend.Lattice(2, 3))
	assert.Equal(t, [][]float64{{1, 0}, {0, 1}}, blend.Lattice(2, 1), "steps raised to 2")
	assert.Nil(t, blend.Lattice(0, 5))

	tri := blend.Lattice(3, 5)
	require.Len(t, tri, 15) // C(4+2, 2)
	assert.Equal(t, []float64{1, 0, 0}, tri[0])
	for _, fr := range tri {
		var sum float64
		for _, f := range fr {
			sum += f
			assert.GreaterOrEqual(t, f, 0.0)
		}
		assert.InDelta(t, 1.0, sum, 1e-12)
	}

	assert.Len(t, blend.Lattice(4, 4), 20) // C(3+3, 3)
}

func TestPointName(t *testing.T) {
	for _, tc := range []struct {
		fr    []float64
		steps int
		want  string
	}{
		{[]float64{1, 0}, 5, "1"},
		{[]float64{0.75, 0.25}, 5, "2"},
		{[]float64{0, 1}, 5, "5"},
		{[]float64{1, 0, 0}, 3, "3-1-1"},
		{[]float64{0.5, 0, 0.5}, 3, "2-1-2"},
		{[]float64{0.25, 0.25, 0.25, 0.25}, 5, "2-2-2-2"},
	} {
		assert.Equal(t, tc.want, blend.PointName(tc.fr, tc.steps), "%v", tc.fr)
	}
}

func TestMix(t *testing.T) {
	a := catalog.Recipe{ID: "a", Entries: []catalog.Entry{
		{Material: "silica", Amount: 30},
		{Material: "whiting", Amount: 20},
	}}
	b := catalog.Recipe{ID: "b", Entries: []catalog.Entry{
		{Material: "silica", Amount: 50},
		{Material: "feldspar", Amount: 50},
		{Material: "rutile", Amount: 5, Addition: true},
	}}

	m := blend.Mix([]catalog.Recipe{a, b}, []float64{0.5, 0.5})
	require.Len(t, m.Entries, 4)
	assert.Equal(t, "silica", m.Entries[0].Material)
	assert.InDelta(t, 30+50.0/105*50, m.Entries[0].Amount, 1e-9)
	assert.InDelta(t, 20, m.Entries[1].Amount, 1e-9)
	assert.True(t, m.Entries[3].Addition)
	assert.InDelta(t, 100, m.Total(), 1e-9)

	only := blend.Mix([]catalog.Recipe{a, b}, []float64{1, 0})
	assert.Equal(t, []string{"silica", "whiting"}, only.Materials())
}

func TestGenerate(t *testing.T) {
	cat, err := catalog.New([]catalog.Material{
		{ID: "silica", Analysis: map[string]float64{"SiO2": 100}},
		{ID: "whiting", LOI: 44, Analysis: map[string]float64{"CaO": 56}},
		{ID: "kaolin", LOI: 13.9, Analysis: map[string]float64{"SiO2": 46.5, "Al2O3": 39.5}},
	}, nil)
	require.NoError(t, err)

	a := catalog.Recipe{ID: "a", Name: "Glossy", Entries: []catalog.Entry{{Material: "silica", Amount: 60}, {Material: "whiting", Amount: 40}}}
	b := catalog.Recipe{ID: "b", Entries: []catalog.Entry{{Material: "kaolin", Amount: 100}}}

	pts, err := blend.Generate([]catalog.Recipe{a, b}, 3, cat, umf.DefaultOptions())
	require.NoError(t, err)
	require.Len(t, pts, 3)

	assert.Equal(t, []string{"1", "2", "3"}, []string{pts[0].Name, pts[1].Name, pts[2].Name})
	require.NoError(t, pts[0].Err)
	assert.InDelta(t, 1.0, pts[0].Formula.Ratio("CaO"), 1e-12)
	assert.Equal(t, "Glossy:100%", pts[0].Label())
	assert.Equal(t, "Glossy:50%, b:50%", pts[1].Label())

	// The kaolin corner has no flux: that point alone fails.
	require.ErrorIs(t, pts[2].Err, umf.ErrDegenerateFormula)
	assert.Nil(t, pts[2].Formula)

	_, err = blend.Generate([]catalog.Recipe{a}, 3, cat, umf.DefaultOptions())
	require.ErrorIs(t, err, blend.ErrTooFewCorners)
}
