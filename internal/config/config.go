// Package config loads the glaze TOML configuration.
//
// Resolution order:
//  1. the --config flag
//  2. the GLAZE_CONFIG environment variable
//  3. built-in defaults
//
// A file only needs the keys it changes; everything else keeps its default.
// Unknown keys are rejected so typos do not pass silently.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/katalvlaran/glaze/cte"
	"github.com/katalvlaran/glaze/oxide"
	"github.com/katalvlaran/glaze/solver"
)

// EnvVar names the environment variable holding a config path.
const EnvVar = "GLAZE_CONFIG"

// ErrInvalidConfig wraps every validation or decoding failure.
var ErrInvalidConfig = errors.New("config: invalid configuration")

// Config is the full configuration file.
type Config struct {
	Solver SolverConfig  `toml:"solver"`
	UMF    UMFConfig     `toml:"umf"`
	Oxides []OxideConfig `toml:"oxide"`
	CTE    CTEConfig     `toml:"cte"`
	Log    LogConfig     `toml:"log"`
	UI     UIConfig      `toml:"ui"`
}

// SolverConfig mirrors solver.Options.
type SolverConfig struct {
	MaxIterations        int     `toml:"max_iterations"`
	RatioTolerance       float64 `toml:"ratio_tolerance"`
	ImprovementTolerance float64 `toml:"improvement_tolerance"`
	BatchSize            float64 `toml:"batch_size"`
	RankTolerance        float64 `toml:"rank_tolerance"`

	// SelectCandidates narrows the palette to materials that supply a target
	// oxide before solving.
	SelectCandidates bool `toml:"select_candidates"`
}

// UMFConfig holds formula engine settings.
type UMFConfig struct {
	// Extended selects the extended flux convention by default.
	Extended bool `toml:"extended"`
}

// OxideConfig adds or replaces one oxide table entry.
type OxideConfig struct {
	Symbol       string  `toml:"symbol"`
	Weight       float64 `toml:"weight"`
	Role         string  `toml:"role"` // "flux" or "other"
	ExtendedFlux bool    `toml:"extended_flux"`
}

// CTEConfig overrides expansion coefficients per oxide.
type CTEConfig struct {
	Coefficients map[string]float64 `toml:"coefficients"`
}

// LogConfig sets the stderr log level: debug, info, warn or error.
type LogConfig struct {
	Level string `toml:"level"`
}

// UIConfig controls terminal output.
//   - Color: "auto" (TTY detection), "always" or "never".
//   - Theme: "auto", "dark" or "light".
type UIConfig struct {
	Color string `toml:"color"`
	Theme string `toml:"theme"`
}

// Default returns the built-in configuration.
func Default() *Config {
	o := solver.DefaultOptions()

	return &Config{
		Solver: SolverConfig{
			MaxIterations:        o.MaxIterations,
			RatioTolerance:       o.RatioTolerance,
			ImprovementTolerance: o.ImprovementTolerance,
			BatchSize:            o.BatchSize,
			RankTolerance:        o.RankTolerance,
			SelectCandidates:     true,
		},
		Log: LogConfig{Level: "warn"},
		UI:  UIConfig{Color: "auto", Theme: "auto"},
	}
}

// Path resolves the config path from the flag value and the environment;
// "" means defaults only.
func Path(flag string) string {
	if flag != "" {
		return flag
	}

	return os.Getenv(EnvVar)
}

// Resolve loads the file Path(flag) names, or returns defaults.
func Resolve(flag string) (*Config, error) {
	p := Path(flag)
	if p == "" {
		return Default(), nil
	}

	return Load(p)
}

// Load reads a config file over the defaults.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	defer f.Close()

	c, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return c, nil
}

// Read decodes TOML from r over the defaults and validates the result.
func Read(r io.Reader) (*Config, error) {
	c := Default()
	md, err := toml.NewDecoder(r).Decode(c)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if und := md.Undecoded(); len(und) > 0 {
		keys := make([]string, len(und))
		for i, k := range und {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("%w: unknown keys %s", ErrInvalidConfig, strings.Join(keys, ", "))
	}
	if err = c.Validate(); err != nil {
		return nil, err
	}

	return c, nil
}

// Write encodes c as TOML.
func (c *Config) Write(w io.Writer) error {
	return toml.NewEncoder(w).Encode(c)
}

// Validate checks every section.
func (c *Config) Validate() error {
	if err := c.SolverOptions().Validate(); err != nil {
		return fmt.Errorf("%w: [solver] %v", ErrInvalidConfig, err)
	}
	if _, err := c.Table(); err != nil {
		return err
	}
	if _, err := c.LogLevel(); err != nil {
		return err
	}
	switch c.UI.Color {
	case "", "auto", "always", "never":
	default:
		return fmt.Errorf("%w: [ui] color %q", ErrInvalidConfig, c.UI.Color)
	}
	switch c.UI.Theme {
	case "", "auto", "dark", "light":
	default:
		return fmt.Errorf("%w: [ui] theme %q", ErrInvalidConfig, c.UI.Theme)
	}

	return nil
}

// Mode returns the configured flux convention.
func (c *Config) Mode() oxide.Mode {
	if c.UMF.Extended {
		return oxide.Extended
	}

	return oxide.Traditional
}

// Table returns the reference oxide table with [[oxide]] entries applied.
func (c *Config) Table() (*oxide.Table, error) {
	if len(c.Oxides) == 0 {
		return oxide.Default(), nil
	}
	over := make([]oxide.Oxide, len(c.Oxides))
	for i, o := range c.Oxides {
		role, err := oxide.ParseRole(o.Role)
		if err != nil {
			return nil, fmt.Errorf("%w: [[oxide]] %q: %v", ErrInvalidConfig, o.Symbol, err)
		}
		over[i] = oxide.Oxide{Symbol: o.Symbol, Weight: o.Weight, Role: role, ExtendedFlux: o.ExtendedFlux}
	}
	t, err := oxide.Default().WithOverrides(over)
	if err != nil {
		return nil, fmt.Errorf("%w: [[oxide]] %v", ErrInvalidConfig, err)
	}

	return t, nil
}

// SolverOptions converts the [solver] section; Mode comes from [umf] and
// the table and logger are left for the caller.
func (c *Config) SolverOptions() solver.Options {
	o := solver.DefaultOptions()
	o.MaxIterations = c.Solver.MaxIterations
	o.RatioTolerance = c.Solver.RatioTolerance
	o.ImprovementTolerance = c.Solver.ImprovementTolerance
	o.BatchSize = c.Solver.BatchSize
	o.RankTolerance = c.Solver.RankTolerance
	o.Mode = c.Mode()

	return o
}

// Coefficients returns the CTE coefficients with [cte] overrides applied.
func (c *Config) Coefficients() cte.Coefficients {
	return cte.DefaultCoefficients().WithOverrides(c.CTE.Coefficients)
}

// LogLevel parses [log] level.
func (c *Config) LogLevel() (slog.Level, error) {
	var lvl slog.Level
	if c.Log.Level == "" {
		return slog.LevelWarn, nil
	}
	if err := lvl.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return 0, fmt.Errorf("%w: [log] level %q", ErrInvalidConfig, c.Log.Level)
	}

	return lvl, nil
}
