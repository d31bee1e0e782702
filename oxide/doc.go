// Package oxide holds the reference data every glaze calculation starts from:
// the molecular weight of each recognised oxide and its role in a Unity
// Molecular Formula.
//
// What & Why:
//
//	A UMF divides every oxide's moles by the total moles of the flux oxides.
//	Which oxides count as flux is a convention, not chemistry: the traditional
//	R2O/RO set (alkalis, alkaline earths, ZnO, PbO) or the broader "extended"
//	(Katz) set that also treats colouring and minor oxides such as CoO, CuO
//	and Fe2O3 as flux. The Table keeps that convention as data so callers can
//	replace it instead of editing code.
//
// Usage:
//
//	t := oxide.Default()
//	w, err := t.Weight("SiO2")     // 60.085
//	t.IsFlux("Fe2O3", oxide.Extended) // true
//
//	custom, err := t.WithOverrides([]oxide.Oxide{
//		{Symbol: "MnO", Weight: 70.937, Role: oxide.Flux},
//	})
//
// A Table is immutable once built and is safe for concurrent readers.
package oxide
