// SPDX-License-Identifier: MIT

package cli

import (
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"

	"github.com/katalvlaran/glaze/blend"
	"github.com/katalvlaran/glaze/catalog"
	"github.com/katalvlaran/glaze/internal/style"
)

type blendFlags struct {
	axes    int
	steps   int
	verbose bool
	save    string
}

func (a *app) blendCmd() *cobra.Command {
	var fl blendFlags
	cmd := &cobra.Command{
		Use:   "blend <corners> [materials]",
		Short: "Generate line, triaxial or higher blends between recipes",
		Long: `Generate every point of a simplex blend between corner recipes. The first
--axes recipes of the corners file are the corners (all of them when 0);
--steps sets the points per edge.

Line blends are named 1..steps; other blends name each point by one grid
index per corner, e.g. 3-1-1.

Examples:
  glaze blend corners.yaml materials.yaml --steps 5
  glaze blend corners.yaml materials.yaml --axes 3 --steps 4 -v
  glaze blend corners.yaml materials.yaml --save tiles.yaml`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runBlend(cmd.OutOrStdout(), args[0], optionalArg(args, 1), fl)
		},
	}
	cmd.Flags().IntVar(&fl.axes, "axes", 0, "number of corner recipes to use (0 = all)")
	cmd.Flags().IntVar(&fl.steps, "steps", 5, "points per edge")
	cmd.Flags().BoolVarP(&fl.verbose, "verbose", "v", false, "print each point's recipe and formula")
	cmd.Flags().StringVar(&fl.save, "save", "", "write the blend recipes to a recipes file")

	return cmd
}

func (a *app) runBlend(w io.Writer, cornersPath, materialsPath string, fl blendFlags) error {
	cat, err := catalog.Load(cornersPath, materialsPath)
	if err != nil {
		return err
	}
	corners := cat.Recipes()
	if fl.axes < 0 || fl.axes > len(corners) {
		return fmt.Errorf("--axes %d: file has %d recipes", fl.axes, len(corners))
	}
	if fl.axes > 0 {
		corners = corners[:fl.axes]
	}
	if fl.steps < blend.MinSteps {
		a.log.Warn("steps raised", "from", fl.steps, "to", blend.MinSteps)
	}

	points, err := blend.Generate(corners, fl.steps, cat, a.umfOptions(false))
	if err != nil {
		return err
	}
	a.log.Info("blend generated", "corners", len(corners), "points", len(points))

	if fl.verbose {
		name := materialName(cat)
		for i, p := range points {
			if i > 0 {
				fmt.Fprintln(w)
			}
			title := fmt.Sprintf("Blend %s (%s)", p.Name, p.Label())
			if p.Err != nil {
				fmt.Fprint(w, style.Failure(title, p.Err))
				continue
			}
			fmt.Fprint(w, style.Formula(title, p.Formula))
			fmt.Fprint(w, parts(p.Recipe, name))
		}
	} else {
		fmt.Fprint(w, style.Blend(points))
	}

	if fl.save != "" {
		recs := make([]catalog.Recipe, len(points))
		for i, p := range points {
			recs[i] = p.Recipe
			recs[i].Name = p.Label()
		}
		if err = writeFile(fl.save, func(f io.Writer) error { return catalog.WriteRecipes(f, recs) }); err != nil {
			return err
		}
		a.log.Info("blend saved", "path", fl.save)
	}

	return nil
}

// parts renders a blend recipe, largest amount first, hiding traces below 0.1.
func parts(r catalog.Recipe, name func(string) string) string {
	es := append([]catalog.Entry(nil), r.Entries...)
	sort.SliceStable(es, func(i, j int) bool { return es[i].Amount > es[j].Amount })

	t := style.NewTable(
		style.Column{Name: "Material"},
		style.Column{Name: "Parts", Align: style.AlignRight},
	)
	for _, e := range es {
		if e.Amount < 0.1 {
			continue
		}
		label := name(e.Material)
		if e.Addition {
			label += " (add)"
		}
		t.AddRow(label, fmt.Sprintf("%.1f", e.Amount))
	}

	return t.Render()
}
