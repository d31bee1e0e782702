package oxide_test

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/glaze/oxide"
)

func TestDefault_Weights(t *testing.T) {
	tbl := oxide.Default()
	for _, tc := range []struct {
		sym  string
		want float64
	}{
		{"SiO2", 60.085},
		{"Al2O3", 101.961},
		{"CaO", 56.077},
		{"K2O", 94.196},
		{"Bi2O3", 465.96},
	} {
		t.Run(tc.sym, func(t *testing.T) {
			w, err := tbl.Weight(tc.sym)
			require.NoError(t, err)
			assert.Equal(t, tc.want, w)
		})
	}

	_, err := tbl.Weight("Unobtainium")
	require.ErrorIs(t, err, oxide.ErrUnknownOxide)
}

func TestDefault_FluxPartition(t *testing.T) {
	tbl := oxide.Default()

	traditional := tbl.Fluxes(oxide.Traditional)
	assert.Equal(t, []string{"Li2O", "Na2O", "K2O", "MgO", "CaO", "SrO", "BaO", "ZnO", "PbO"}, traditional)

	extended := tbl.Fluxes(oxide.Extended)
	for _, s := range []string{"CoO", "CuO", "Fe2O3", "MnO2", "SnO2", "Bi2O3"} {
		assert.Contains(t, extended, s)
		assert.False(t, tbl.IsFlux(s, oxide.Traditional), "%s must not be a traditional flux", s)
		assert.True(t, tbl.IsFlux(s, oxide.Extended), "%s must be an extended flux", s)
	}
	assert.False(t, tbl.IsFlux("SiO2", oxide.Extended))
	assert.False(t, tbl.IsFlux("nope", oxide.Extended))
}

func TestNewTable_Validation(t *testing.T) {
	for name, entry := range map[string]oxide.Oxide{
		"empty symbol":    {Symbol: "", Weight: 1},
		"zero weight":     {Symbol: "X", Weight: 0},
		"negative weight": {Symbol: "X", Weight: -3},
		"nan weight":      {Symbol: "X", Weight: math.NaN()},
		"inf weight":      {Symbol: "X", Weight: math.Inf(1)},
		"bad role":        {Symbol: "X", Weight: 1, Role: oxide.Role(7)},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := oxide.NewTable([]oxide.Oxide{entry})
			require.True(t, errors.Is(err, oxide.ErrInvalidOxide), "got %v", err)
		})
	}
}

func TestWithOverrides_DoesNotMutateReceiver(t *testing.T) {
	base := oxide.Default()
	n := base.Len()

	custom, err := base.WithOverrides([]oxide.Oxide{
		{Symbol: "MnO", Weight: 70.937, Role: oxide.Flux},
		{Symbol: "Sb2O3", Weight: 291.518},
	})
	require.NoError(t, err)

	assert.True(t, custom.IsFlux("MnO", oxide.Traditional))
	assert.False(t, base.IsFlux("MnO", oxide.Traditional))
	assert.Equal(t, n+1, custom.Len())
	assert.Equal(t, n, base.Len())
	assert.Equal(t, base.Rank("MnO"), custom.Rank("MnO"), "override keeps report position")
	assert.Equal(t, -1, base.Rank("Sb2O3"))
}

func TestNormalize(t *testing.T) {
	for in, want := range map[string]string{
		"sio2":    "SiO2",
		" K2o ":   "K2O",
		"AL2O3":   "Al2O3",
		"fe2o3":   "Fe2O3",
		"Fe2O3":   "Fe2O3",
		"LOI":     "LOI",
		"cu2o":    "Cu2O",
		"Mystery": "Mystery",
	} {
		assert.Equal(t, want, oxide.Normalize(in), in)
	}
}

func TestParseRole(t *testing.T) {
	r, err := oxide.ParseRole("FLUX")
	require.NoError(t, err)
	assert.Equal(t, oxide.Flux, r)

	r, err = oxide.ParseRole("")
	require.NoError(t, err)
	assert.Equal(t, oxide.Other, r)

	_, err = oxide.ParseRole("glass")
	require.ErrorIs(t, err, oxide.ErrInvalidOxide)
	assert.Equal(t, "flux", oxide.Flux.String())
	assert.Equal(t, "extended", oxide.Extended.String())
}
