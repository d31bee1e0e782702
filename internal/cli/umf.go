// SPDX-License-Identifier: MIT

package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/katalvlaran/glaze/catalog"
	"github.com/katalvlaran/glaze/internal/style"
	"github.com/katalvlaran/glaze/umf"
)

type umfFlags struct {
	recipe   string
	extended bool
	save     string
}

func (a *app) umfCmd() *cobra.Command {
	var fl umfFlags
	cmd := &cobra.Command{
		Use:   "umf <recipes> [materials]",
		Short: "Calculate the unity formula of recipes",
		Long: `Calculate the Unity Molecular Formula of every recipe in a file, or of one
recipe with --recipe. Materials may come from a separate file or from a
"materials:" section of the recipes file.

A failing recipe is reported and the rest still run; the command fails only
when every recipe failed.

Examples:
  glaze umf recipes.yaml materials.yaml
  glaze umf recipes.yaml materials.yaml -r cone10_clear -e
  glaze umf recipes.yaml materials.yaml -r cone10_clear --save clear.umf.yaml`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runUMF(cmd.OutOrStdout(), args[0], optionalArg(args, 1), fl)
		},
	}
	cmd.Flags().StringVarP(&fl.recipe, "recipe", "r", "", "recipe ID (omit for all)")
	cmd.Flags().BoolVarP(&fl.extended, "extended", "e", false, "use the extended flux convention")
	cmd.Flags().StringVar(&fl.save, "save", "", "write the formula of a single recipe as a UMF file")

	return cmd
}

func (a *app) runUMF(w io.Writer, recipesPath, materialsPath string, fl umfFlags) error {
	cat, err := catalog.Load(recipesPath, materialsPath)
	if err != nil {
		return err
	}
	recs, err := pickRecipes(cat, fl.recipe)
	if err != nil {
		return err
	}
	if fl.save != "" && len(recs) != 1 {
		return fmt.Errorf("--save needs a single recipe, %d selected", len(recs))
	}

	failed := 0
	for i, o := range umf.ComputeAll(recs, cat, a.umfOptions(fl.extended)) {
		if i > 0 {
			fmt.Fprintln(w)
		}
		title := o.Recipe.DisplayName()
		if o.Err != nil {
			failed++
			a.log.Warn("formula failed", "recipe", o.Recipe.ID, "err", o.Err)
			fmt.Fprint(w, style.Failure(title, o.Err))
			continue
		}
		if len(o.Formula.Unrecognized) > 0 {
			a.log.Info("oxides skipped", "recipe", o.Recipe.ID, "oxides", o.Formula.Unrecognized)
		}
		fmt.Fprint(w, style.Formula(title, o.Formula))

		if fl.save != "" {
			ratios := o.Formula.Split(title)
			if err = writeFile(fl.save, func(f io.Writer) error { return catalog.WriteRatios(f, ratios) }); err != nil {
				return err
			}
			a.log.Info("formula saved", "path", fl.save)
		}
	}
	if failed == len(recs) {
		return fmt.Errorf("%d of %d: %w", failed, len(recs), errAllFailed)
	}

	return nil
}
