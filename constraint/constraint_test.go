package constraint_test

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/glaze/constraint"
)

var palette = []string{"feldspar", "whiting", "silica", "kaolin"}

func ptr(v float64) *float64 { return &v }

func TestValidate_Rules(t *testing.T) {
	for name, tc := range map[string]struct {
		set  constraint.Set
		want error
	}{
		"empty":           {constraint.Set{}, nil},
		"between":         {constraint.Set{"silica": constraint.Between(20, 50)}, nil},
		"fixed inside":    {constraint.Set{"whiting": {Min: 5, Max: 30, Fixed: ptr(12)}}, nil},
		"exclude":         {constraint.Set{"kaolin": constraint.Exclude()}, nil},
		"min above max":   {constraint.Set{"silica": constraint.Between(50, 20)}, constraint.ErrInvalidBounds},
		"negative min":    {constraint.Set{"silica": constraint.AtLeast(-1)}, constraint.ErrInvalidBounds},
		"nan max":         {constraint.Set{"silica": {Max: math.NaN()}}, constraint.ErrInvalidBounds},
		"inf min":         {constraint.Set{"silica": constraint.AtLeast(math.Inf(1))}, constraint.ErrInvalidBounds},
		"fixed outside":   {constraint.Set{"whiting": {Min: 5, Max: 10, Fixed: ptr(12)}}, constraint.ErrInvalidBounds},
		"fixed negative":  {constraint.Set{"whiting": constraint.Fix(-1)}, constraint.ErrInvalidBounds},
		"exclude w/ mass": {constraint.Set{"whiting": {Max: 10, Fixed: ptr(3), Exclude: true}}, constraint.ErrInvalidBounds},
		"not in palette":  {constraint.Set{"rutile": constraint.AtMost(5)}, constraint.ErrInvalidBounds},
	} {
		t.Run(name, func(t *testing.T) {
			err := constraint.Validate(tc.set, palette)
			if tc.want == nil {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, tc.want)
		})
	}
}

func TestValidate_NamesMaterial(t *testing.T) {
	err := constraint.Set{"silica": constraint.Between(9, 1)}.Validate(palette)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "silica")
}

func TestResolve(t *testing.T) {
	bs, err := constraint.Set{
		"whiting": constraint.Fix(12),
		"silica":  constraint.Between(20, 50),
		"kaolin":  constraint.Exclude(),
	}.Resolve(palette)
	require.NoError(t, err)

	require.Len(t, bs, 4)
	assert.Equal(t, constraint.Range{Min: 0, Max: math.Inf(1)}, bs[0])
	assert.Equal(t, constraint.Range{Min: 12, Max: 12}, bs[1])
	assert.Equal(t, constraint.Range{Min: 20, Max: 50}, bs[2])
	assert.Equal(t, constraint.Range{}, bs[3])

	assert.Equal(t, []int{0, 2}, bs.Free())
	assert.Equal(t, 12.0, bs.PinnedMass())
	assert.NoError(t, bs.Feasible())
}

func TestBounds_WithinAndClamp(t *testing.T) {
	bs := constraint.Bounds{{Min: 0, Max: 10}, {Min: 5, Max: 5}, {Min: 1, Max: math.Inf(1)}}

	assert.True(t, bs.WithinBounds([]float64{3, 5, 100}))
	assert.False(t, bs.WithinBounds([]float64{11, 5, 100}))
	assert.False(t, bs.WithinBounds([]float64{3, 5}))

	in := []float64{-2, 7, 0.5}
	out := bs.Clamp(in)
	assert.Equal(t, []float64{0, 5, 1}, out)
	assert.Equal(t, -2.0, in[0], "input untouched")
	assert.True(t, bs.WithinBounds(out))
}

func TestBounds_Feasible(t *testing.T) {
	bs, err := constraint.Set{
		"feldspar": constraint.Exclude(),
		"whiting":  constraint.Fix(0),
		"silica":   constraint.AtMost(0),
		"kaolin":   constraint.Exclude(),
	}.Resolve(palette)
	require.NoError(t, err)
	require.ErrorIs(t, bs.Feasible(), constraint.ErrInfeasibleConstraints)

	require.ErrorIs(t, constraint.Bounds{}.Feasible(), constraint.ErrInfeasibleConstraints)
}

func TestBounds_FitsBatch(t *testing.T) {
	for name, tc := range map[string]struct {
		bs   constraint.Bounds
		want error
	}{
		"free":          {constraint.Bounds{{Max: math.Inf(1)}, {Min: 12, Max: 12}}, nil},
		"mins too high": {constraint.Bounds{{Min: 60, Max: math.Inf(1)}, {Min: 50, Max: 50}}, constraint.ErrInfeasibleConstraints},
		"maxes too low": {constraint.Bounds{{Max: 30}, {Min: 20, Max: 40}}, constraint.ErrInfeasibleConstraints},
		"exact":         {constraint.Bounds{{Max: 60}, {Min: 40, Max: 40}}, nil},
		"all pinned":    {constraint.Bounds{{Min: 70, Max: 70}, {Min: 50, Max: 50}}, nil},
	} {
		t.Run(name, func(t *testing.T) {
			err := tc.bs.FitsBatch(100)
			if tc.want == nil {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, tc.want)
		})
	}
}

func TestRead(t *testing.T) {
	src := `
silica: {min: 20, max: 50}
whiting: {fixed: 12}
talc: {exclude: true}
kaolin: {min: 5}
`
	s, err := constraint.Read(strings.NewReader(src))
	require.NoError(t, err)
	require.Len(t, s, 4)

	assert.Equal(t, 20.0, s["silica"].Min)
	assert.Equal(t, 50.0, s["silica"].Max)
	require.NotNil(t, s["whiting"].Fixed)
	assert.Equal(t, 12.0, *s["whiting"].Fixed)
	assert.True(t, s["talc"].Exclude)
	assert.True(t, math.IsInf(s["kaolin"].Max, 1))

	nested, err := constraint.Read(strings.NewReader("constraints:\n  silica: {max: 30}\n"))
	require.NoError(t, err)
	assert.Equal(t, 30.0, nested["silica"].Max)

	empty, err := constraint.Read(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, empty)

	_, err = constraint.Read(strings.NewReader("silica: {min: lots}\n"))
	require.ErrorIs(t, err, constraint.ErrInvalidBounds)

	_, err = constraint.Read(strings.NewReader("- silica\n"))
	require.ErrorIs(t, err, constraint.ErrInvalidBounds)
}
