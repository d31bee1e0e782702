// SPDX-License-Identifier: MIT

package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/katalvlaran/glaze/catalog"
	"github.com/katalvlaran/glaze/cte"
	"github.com/katalvlaran/glaze/internal/style"
)

type cteFlags struct {
	recipe  string
	verbose bool
}

func (a *app) cteCmd() *cobra.Command {
	var fl cteFlags
	cmd := &cobra.Command{
		Use:   "cte <recipes> [materials]",
		Short: "Estimate thermal expansion of recipes",
		Long: `Estimate the linear thermal expansion coefficient (×10⁻⁶/°C) of each recipe
from its fired oxide weight percentages. Coefficients can be overridden in
the [cte] section of the config file.

Examples:
  glaze cte recipes.yaml materials.yaml
  glaze cte recipes.yaml materials.yaml -r cone10_clear -v`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runCTE(cmd.OutOrStdout(), args[0], optionalArg(args, 1), fl)
		},
	}
	cmd.Flags().StringVarP(&fl.recipe, "recipe", "r", "", "recipe ID (omit for all)")
	cmd.Flags().BoolVarP(&fl.verbose, "verbose", "v", false, "show per-oxide contributions")

	return cmd
}

func (a *app) runCTE(w io.Writer, recipesPath, materialsPath string, fl cteFlags) error {
	cat, err := catalog.Load(recipesPath, materialsPath)
	if err != nil {
		return err
	}
	recs, err := pickRecipes(cat, fl.recipe)
	if err != nil {
		return err
	}

	coef := a.cfg.Coefficients()
	opts := a.umfOptions(false)
	failed := 0
	for i, r := range recs {
		if i > 0 && fl.verbose {
			fmt.Fprintln(w)
		}
		res, _, err := cte.CalculateRecipe(r, cat, opts, coef)
		if err != nil {
			failed++
			a.log.Warn("expansion failed", "recipe", r.ID, "err", err)
			fmt.Fprint(w, style.Failure(r.DisplayName(), err))
			continue
		}
		fmt.Fprint(w, style.CTE(r.DisplayName(), res, fl.verbose))
	}
	if failed == len(recs) {
		return fmt.Errorf("%d of %d: %w", failed, len(recs), errAllFailed)
	}

	return nil
}
