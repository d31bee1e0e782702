// SPDX-License-Identifier: MIT

package cli

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/katalvlaran/glaze/catalog"
	"github.com/katalvlaran/glaze/constraint"
	"github.com/katalvlaran/glaze/internal/style"
	"github.com/katalvlaran/glaze/solver"
	"github.com/katalvlaran/glaze/umf"
)

type solveFlags struct {
	recipe   string
	extended bool
	all      bool
	save     string
}

func (a *app) solveCmd() *cobra.Command {
	var fl solveFlags
	cmd := &cobra.Command{
		Use:   "solve <target> <materials> [constraints]",
		Short: "Find a recipe matching a target unity formula",
		Long: `Find material amounts whose unity formula matches a target.

The target is a standalone UMF file (flux:/other:) or a recipes file; with a
recipes file the recipe named by --recipe, else the first one, supplies the
target through its stored umf: section or its computed formula.

Only materials supplying a target oxide are tried unless --all is given or
[solver] select_candidates is false. Constraints are absolute parts of a
100-part batch:

  silica:  {min: 20, max: 50}
  whiting: {fixed: 12}
  talc:    {exclude: true}

A solve that stops short of the tolerance still prints its best recipe with
the per-oxide residuals.

Examples:
  glaze solve target.yaml materials.yaml
  glaze solve recipes.yaml materials.yaml limits.yaml -r cone10_clear
  glaze solve target.yaml materials.yaml --save solved.yaml`,
		Args: cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runSolve(cmd.OutOrStdout(), args[0], args[1], optionalArg(args, 2), fl)
		},
	}
	cmd.Flags().StringVarP(&fl.recipe, "recipe", "r", "", "recipe ID when the target is a recipes file")
	cmd.Flags().BoolVarP(&fl.extended, "extended", "e", false, "use the extended flux convention")
	cmd.Flags().BoolVar(&fl.all, "all", false, "use every material, not only those supplying a target oxide")
	cmd.Flags().StringVar(&fl.save, "save", "", "write the solved recipe to a recipes file")

	return cmd
}

func (a *app) runSolve(w io.Writer, targetPath, materialsPath, constraintsPath string, fl solveFlags) error {
	uo := a.umfOptions(fl.extended)
	target, name, cat, err := loadTarget(targetPath, materialsPath, fl.recipe, uo)
	if err != nil {
		return err
	}

	set := constraint.Set{}
	if constraintsPath != "" {
		if set, err = constraint.Load(constraintsPath); err != nil {
			return err
		}
	}

	var ids []string
	if fl.all || !a.cfg.Solver.SelectCandidates {
		ids = cat.MaterialIDs()
	} else {
		ids = solver.SelectCandidates(target, cat, a.table)
	}
	palette, set, err := a.palette(cat, ids, set)
	if err != nil {
		return err
	}

	opts := a.cfg.SolverOptions()
	opts.Mode = uo.Mode
	opts.Table = a.table
	opts.Logger = a.log

	a.log.Info("solving", "target", name, "palette", len(palette), "constraints", len(set))
	res, err := solver.Solve(target, palette, set, cat, opts)
	if err != nil {
		return err
	}
	if !res.Converged {
		ox, v := res.MaxAbsResidual()
		a.log.Warn("target not reached", "exit", res.Exit.String(), "norm", res.Norm, "worst", ox, "residual", v)
	}

	fmt.Fprintf(w, "%s\n", style.Title.Render(name))
	fmt.Fprint(w, style.Solution(res, target, opts.RatioTolerance, materialName(cat)))

	if fl.save != "" {
		out := res.Recipe
		out.ID, out.Name = "solution", name
		if err = writeFile(fl.save, func(f io.Writer) error { return catalog.WriteRecipes(f, []catalog.Recipe{out}) }); err != nil {
			return err
		}
		a.log.Info("recipe saved", "path", fl.save)
	}

	return nil
}

// loadTarget reads a target formula from a standalone UMF file or from a
// recipe, returning it with its display name and the material catalog.
func loadTarget(path, materialsPath, recipeID string, opts umf.Options) (*umf.Formula, string, *catalog.Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", nil, err
	}

	switch catalog.Detect(data) {
	case catalog.KindUMF:
		r, err := catalog.ReadRatios(bytes.NewReader(data))
		if err != nil {
			return nil, "", nil, fmt.Errorf("%s: %w", path, err)
		}
		f, err := umf.FromRatios(r, opts)
		if err != nil {
			return nil, "", nil, fmt.Errorf("%s: %w", path, err)
		}
		cat, err := catalog.Load("", materialsPath)
		if err != nil {
			return nil, "", nil, err
		}
		name := r.Name
		if name == "" {
			name = "target"
		}
		return f, name, cat, nil

	case catalog.KindRecipes:
		cat, err := catalog.Load(path, materialsPath)
		if err != nil {
			return nil, "", nil, err
		}
		recs, err := pickRecipes(cat, recipeID)
		if err != nil {
			return nil, "", nil, err
		}
		rec := recs[0]
		var f *umf.Formula
		if rec.UMF != nil && !rec.UMF.Empty() {
			f, err = umf.FromRatios(*rec.UMF, opts)
		} else {
			f, err = umf.Compute(rec, cat, opts)
		}
		if err != nil {
			return nil, "", nil, err
		}
		return f, rec.DisplayName(), cat, nil

	default:
		return nil, "", nil, fmt.Errorf("%s: not a UMF or recipes file: %w", path, catalog.ErrFormat)
	}
}

// palette merges constrained materials into the candidate list. A material
// forced in by a positive min or fixed amount joins the palette; other
// constraints on materials outside it are dropped. Constraints naming
// materials missing from the catalog are an error.
func (a *app) palette(cat *catalog.Catalog, ids []string, set constraint.Set) ([]string, constraint.Set, error) {
	in := make(map[string]bool, len(ids))
	for _, id := range ids {
		in[id] = true
	}

	names := make([]string, 0, len(set))
	for id := range set {
		names = append(names, id)
	}
	sort.Strings(names)

	palette := append([]string(nil), ids...)
	kept := make(constraint.Set, len(set))
	for _, id := range names {
		b := set[id]
		switch {
		case !cat.Has(id):
			return nil, nil, fmt.Errorf("constraint %q: no such material: %w", id, constraint.ErrInvalidBounds)
		case in[id]:
			kept[id] = b
		case b.Min > 0 || (b.Fixed != nil && *b.Fixed > 0):
			palette = append(palette, id)
			in[id] = true
			kept[id] = b
		default:
			a.log.Debug("constraint outside palette dropped", "material", id)
		}
	}

	return palette, kept, nil
}
