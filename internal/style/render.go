// SPDX-License-Identifier: MIT

package style

import (
	"fmt"
	"math"
	"strings"

	"github.com/katalvlaran/glaze/blend"
	"github.com/katalvlaran/glaze/cte"
	"github.com/katalvlaran/glaze/solver"
	"github.com/katalvlaran/glaze/umf"
)

// Formula renders a unity formula: flux group first, then the rest, each
// in oxide-table order.
func Formula(title string, f *umf.Formula) string {
	var sb strings.Builder
	sb.WriteString(Title.Render(title))
	sb.WriteString("\n")

	t := NewTable(
		Column{Name: "Oxide"},
		Column{Name: "UMF", Align: AlignRight},
		Column{Name: "Group"},
	)
	for _, c := range f.Flux() {
		t.AddRow(Flux.Render(c.Oxide), fmt.Sprintf("%.4f", c.Ratio), "flux")
	}
	for _, c := range f.Other() {
		t.AddRow(Info.Render(c.Oxide), fmt.Sprintf("%.4f", c.Ratio), Dim.Render("other"))
	}
	sb.WriteString(t.Render())

	fmt.Fprintf(&sb, "  %s %.2f   %s %.2f\n",
		Dim.Render("Si:Al"), f.SiAl(), Dim.Render("weight"), f.Weight)
	if len(f.Unrecognized) > 0 {
		fmt.Fprintf(&sb, "  %s %s\n", Warning.Render("skipped:"), strings.Join(f.Unrecognized, ", "))
	}

	return sb.String()
}

// Failure renders a per-recipe error line.
func Failure(title string, err error) string {
	return fmt.Sprintf("%s\n  %s %v\n", Title.Render(title), Error.Render("error:"), err)
}

// Solution renders a solve result against its target. Residuals above tol
// are highlighted; name maps material IDs to display names and may be nil.
func Solution(res *solver.Result, target *umf.Formula, tol float64, name func(id string) string) string {
	if name == nil {
		name = func(id string) string { return id }
	}

	var sb strings.Builder
	status := fmt.Sprintf("%s after %d iterations, residual %.2e", res.Exit, res.Iterations, res.Norm)
	if res.Converged {
		sb.WriteString(Success.Render(status))
	} else {
		sb.WriteString(Warning.Render(status))
	}
	sb.WriteString("\n\n")

	pct := res.Percentages()
	mt := NewTable(
		Column{Name: "Material"},
		Column{Name: "%", Align: AlignRight},
	)
	for _, id := range res.Selected() {
		mt.AddRow(name(id), fmt.Sprintf("%.2f", pct[id]))
	}
	sb.WriteString(mt.Render())
	sb.WriteString("\n")

	ot := NewTable(
		Column{Name: "Oxide"},
		Column{Name: "Target", Align: AlignRight},
		Column{Name: "Achieved", Align: AlignRight},
		Column{Name: "Δ", Align: AlignRight},
	)
	for _, ox := range res.Oxides {
		d := res.Residual[ox]
		row := []string{ox, fmt.Sprintf("%.4f", target.Ratio(ox)), fmt.Sprintf("%.4f", res.Formula.Ratio(ox)), fmt.Sprintf("%+.4f", d)}
		if math.Abs(d) > tol {
			ot.AddStyledRow(&Warning, row...)
			continue
		}
		ot.AddRow(row...)
	}
	sb.WriteString(ot.Render())

	if d := res.Diagnostics; d.RankDeficient {
		fmt.Fprintf(&sb, "  %s rank %d of %d columns\n", Warning.Render("rank deficient:"), d.Rank, d.Columns)
	}

	return sb.String()
}

// CTE renders a thermal-expansion estimate; verbose adds per-oxide
// contributions.
func CTE(title string, res cte.Result, verbose bool) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s  %s\n", Title.Render(title), Bold.Render(fmt.Sprintf("%.2f", res.Total)))
	if !verbose {
		return sb.String()
	}

	t := NewTable(
		Column{Name: "Oxide"},
		Column{Name: "wt%", Align: AlignRight},
		Column{Name: "Coef", Align: AlignRight},
		Column{Name: "Contribution", Align: AlignRight},
	)
	for _, c := range res.Contributions {
		t.AddRow(c.Oxide, fmt.Sprintf("%.2f", c.Percent), fmt.Sprintf("%.3f", c.Coefficient), fmt.Sprintf("%.3f", c.Value))
	}
	sb.WriteString(t.Render())

	return sb.String()
}

// Blend renders every lattice point with a one-line formula summary.
func Blend(points []blend.Point) string {
	t := NewTable(
		Column{Name: "Point"},
		Column{Name: "Mix"},
		Column{Name: "Flux"},
		Column{Name: "Other"},
	)
	for _, p := range points {
		if p.Err != nil {
			t.AddStyledRow(&Error, p.Name, p.Label(), p.Err.Error(), "")
			continue
		}
		t.AddRow(p.Name, p.Label(), inline(p.Formula.Flux()), inline(p.Formula.Other()))
	}

	return t.Render()
}

func inline(cs []umf.Component) string {
	parts := make([]string, len(cs))
	for i, c := range cs {
		parts[i] = fmt.Sprintf("%s %.2f", c.Oxide, c.Ratio)
	}

	return strings.Join(parts, " ")
}
