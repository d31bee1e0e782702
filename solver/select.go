// SPDX-License-Identifier: MIT

package solver

import (
	"github.com/katalvlaran/glaze/catalog"
	"github.com/katalvlaran/glaze/oxide"
	"github.com/katalvlaran/glaze/umf"
)

// SelectCandidates returns, in catalog order, the materials that supply at
// least one oxide of target. It narrows a whole materials file to a palette.
func SelectCandidates(target *umf.Formula, cat *catalog.Catalog, tbl *oxide.Table) []string {
	if target == nil || cat == nil {
		return nil
	}
	if tbl == nil {
		tbl = oxide.Default()
	}
	want := make(map[string]bool, len(target.Components))
	for _, c := range target.Components {
		want[c.Oxide] = true
	}

	var out []string
	for _, id := range cat.MaterialIDs() {
		useful := false
		cat.Analysis(id, func(sym string, pct float64) {
			if pct > 0 && want[tbl.Canonical(sym)] {
				useful = true
			}
		})
		if useful {
			out = append(out, id)
		}
	}

	return out
}
