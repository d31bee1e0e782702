// SPDX-License-Identifier: MIT

// Package cli implements the glaze command tree.
package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/katalvlaran/glaze/catalog"
	"github.com/katalvlaran/glaze/internal/config"
	"github.com/katalvlaran/glaze/internal/style"
	"github.com/katalvlaran/glaze/oxide"
	"github.com/katalvlaran/glaze/umf"
)

// errAllFailed is returned by batch commands when no recipe could be evaluated.
var errAllFailed = errors.New("every recipe failed")

// app carries the state shared by all subcommands of one invocation.
type app struct {
	configPath string
	logLevel   string

	cfg   *config.Config
	table *oxide.Table
	log   *slog.Logger
}

// NewRootCmd builds the glaze command tree.
func NewRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "glaze",
		Short: "Glaze chemistry: unity formulas, recipe solving, expansion and blends",
		Long: `glaze computes the Unity Molecular Formula of glaze recipes and finds
recipes that reproduce a target formula from a set of raw materials.

Materials, recipes, targets and constraints are YAML files. Settings are read
from --config, else $GLAZE_CONFIG, else built-in defaults.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "config file (default $"+config.EnvVar+")")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn, error")

	root.AddCommand(
		a.umfCmd(),
		a.solveCmd(),
		a.cteCmd(),
		a.blendCmd(),
		a.configCmd(),
	)

	return root
}

// Execute runs the command tree and returns the process exit code.
func Execute() int {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", style.Error.Render("error:"), err)
		return 1
	}

	return 0
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Resolve(a.configPath)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}
	lvl, err := cfg.LogLevel()
	if err != nil {
		return err
	}
	tbl, err := cfg.Table()
	if err != nil {
		return err
	}

	a.cfg, a.table = cfg, tbl
	a.log = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: lvl}))
	style.Init(cfg.UI.Color, cfg.UI.Theme)
	a.log.Debug("config loaded", "path", config.Path(a.configPath), "mode", cfg.Mode().String())

	return nil
}

// umfOptions returns formula options; extended forces the extended convention.
func (a *app) umfOptions(extended bool) umf.Options {
	o := umf.Options{Mode: a.cfg.Mode(), Table: a.table}
	if extended {
		o.Mode = oxide.Extended
	}

	return o
}

// pickRecipes returns the named recipe, or every recipe in file order.
func pickRecipes(cat *catalog.Catalog, id string) ([]catalog.Recipe, error) {
	if id != "" {
		r, err := cat.Recipe(id)
		if err != nil {
			return nil, fmt.Errorf("%w (available: %v)", err, cat.RecipeIDs())
		}
		return []catalog.Recipe{r}, nil
	}
	recs := cat.Recipes()
	if len(recs) == 0 {
		return nil, fmt.Errorf("no recipes: %w", catalog.ErrUnknownRecipe)
	}

	return recs, nil
}

// materialName resolves display names against cat.
func materialName(cat *catalog.Catalog) func(string) string {
	return func(id string) string {
		if m, ok := cat.Material(id); ok {
			return m.DisplayName()
		}
		return id
	}
}

// optionalArg returns args[i] or "".
func optionalArg(args []string, i int) string {
	if i < len(args) {
		return args[i]
	}

	return ""
}

// writeFile creates path and hands it to fn.
func writeFile(path string, fn func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err = fn(f); err != nil {
		f.Close()
		return fmt.Errorf("%s: %w", path, err)
	}

	return f.Close()
}
