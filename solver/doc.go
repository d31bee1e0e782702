// Package solver finds raw-material proportions whose Unity Molecular Formula
// matches a target.
//
// The forward map mass → UMF divides by the flux total F, which depends on
// every mass, so it cannot be inverted by a single linear solve. Solve uses
// successive approximation instead: F is frozen at the value of the current
// iterate, which makes the ratio equations linear in mass.
//
// Algorithm Outline:
//  1. Start: pinned materials at their value; free materials share
//     BatchSize minus the pinned mass equally, clamped into their bounds
//     and rebalanced so the batch totals BatchSize.
//  2. Linearise with F_frozen: the ratio equation of each oxide,
//     Σ_m mass_m·moles_m[ox] = target[ox]·F, moves F to the left as
//     Σ_m mass_m·(moles_m[ox] − target[ox]·flux_m)/F_frozen = 0
//     and holds the batch total as a hard equation:
//     Σ_m mass_m = BatchSize
//     Rows are in ratio units; they cover the residual oxides (the target
//     oxides plus every flux oxide the palette supplies, target 0 where
//     absent) and every other palette oxide, wanted at zero.
//  3. Bounded least squares by explicit active-set pinning: solve over the
//     free columns (SVD, minimum norm, rank-detected) with the batch total
//     eliminated, clamp negative artifacts to the lower bound, pin every
//     violator in index order and re-solve until nothing is violated.
//  4. Evaluate the real formula with umf.Compute and the residual
//     achieved − target per oxide.
//  5. Exit on ‖residual‖ < RatioTolerance (converged), on an improvement
//     below ImprovementTolerance from the second iteration on, or after
//     MaxIterations. Non-converged exits return the best iterate seen.
//  6. Otherwise F_frozen ← F of the new iterate and repeat.
//
// Each call keeps all of its state local, so concurrent solves over one
// shared catalog are safe.
//
// Errors (sentinel):
//
//	– ErrNilTarget, ErrEmptyPalette, ErrInvalidOptions: bad arguments.
//	– constraint.ErrInvalidBounds, constraint.ErrInfeasibleConstraints:
//	  rejected before iterating.
//	– umf.ErrUnresolvedMaterial: a palette material is not in the catalog.
//	– umf.ErrDegenerateFormula: an iterate lost all flux; aborts the call.
//	– ErrNumerical: the SVD failed to factorise.
//
// Complexity per iteration: O(P·R·min(R,C)) for R residual rows and C free
// columns, repeated at most C times by the pinning loop.
package solver
