// SPDX-License-Identifier: MIT

// Package glaze is a toolkit for ceramic glaze chemistry: it turns recipes
// into Unity Molecular Formulas and recipes back out of formulas.
//
// 🚀 What is in the box?
//
//	A small, dependency-light set of packages that brings together:
//		• Oxide table: molecular weights, flux roles, name normalisation
//		• Formula engine: recipe → UMF, traditional or extended fluxes
//		• Solver: UMF → recipe by bounded least squares over a palette
//		• Constraints: min/max/fixed/exclude per material
//		• Derived tools: thermal expansion estimate, N-axial blends
//
// ✨ Guarantees
//
//   - Flux ratios always sum to 1; formulas are scale invariant.
//   - Solve never returns masses outside the declared bounds.
//   - Every entry point is a pure function of its inputs and safe to call
//     from many goroutines over one catalog.
//
// Packages:
//
//	oxide/      reference oxide table and flux conventions
//	catalog/    materials, recipes and their YAML files
//	umf/        formula engine (Compute, ComputeAll, FromRatios)
//	constraint/ bounds per material (Validate, Resolve, Clamp)
//	solver/     recipe search (Solve, SelectCandidates)
//	cte/        linear thermal expansion from oxide weight percent
//	blend/      simplex-lattice blends between corner recipes
//	cmd/glaze   command-line front end
//
// Quick example:
//
//	silica 80 + whiting 20   →   CaO 1.000 | SiO2 6.666
//
// See examples/ for end-to-end programs.
//
//	go install github.com/katalvlaran/glaze/cmd/glaze@latest
package glaze
