// Package umf converts glaze recipes into Unity Molecular Formulas.
//
// 🚀 What is a UMF?
//
//	Ceramicists compare glazes by their oxide chemistry rather than by the
//	raw materials that happen to supply it. The Unity Molecular Formula
//	expresses every oxide as moles per one mole of flux: the flux oxides
//	(R2O/RO) always sum to 1.0 and the remaining oxides (Al2O3, SiO2, B2O3,
//	colourants) are read against that unity.
//
// Algorithm Outline:
//  1. For every recipe line, oxide mass += amount × analysis% / 100.
//     Analyses are on a fired basis, so LOI only feeds the FiredMass report.
//  2. moles = mass / molecular weight (oxide.Table).
//  3. F = Σ moles of flux oxides under the selected oxide.Mode;
//     F ≤ 0 fails with ErrDegenerateFormula.
//  4. ratio = moles / F for every oxide.
//  5. Weight = Σ ratio × molecular weight.
//
// The map is scale invariant: multiplying every amount by k > 0 leaves the
// formula unchanged.
//
// ⚙️ Usage:
//
//	f, err := umf.Compute(recipe, cat, umf.DefaultOptions())
//	if errors.Is(err, umf.ErrUnresolvedMaterial) { ... }
//	fmt.Println(f.Ratio("SiO2"), f.FluxSum())
//
// Complexity: O(E·A) for E recipe lines with A analysed oxides each.
package umf
