// SPDX-License-Identifier: MIT

package oxide

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors. Callers match them with errors.Is; functions wrap them with
// the offending symbol at the detection site.
var (
	// ErrUnknownOxide is returned when a symbol is not present in the Table.
	ErrUnknownOxide = errors.New("oxide: unknown oxide")

	// ErrInvalidOxide is returned for malformed table entries (empty symbol,
	// non-positive or non-finite weight, unknown role).
	ErrInvalidOxide = errors.New("oxide: invalid oxide entry")
)

// Role classifies an oxide for unity normalisation.
type Role int

const (
	// Other oxides (glass formers, stabilisers, colourants) are reported as
	// ratios against the flux total but never contribute to it.
	Other Role = iota

	// Flux oxides define the normalisation divisor in every mode.
	Flux
)

// String implements fmt.Stringer.
func (r Role) String() string {
	switch r {
	case Flux:
		return "flux"
	case Other:
		return "other"
	default:
		return fmt.Sprintf("Role(%d)", int(r))
	}
}

// ParseRole converts "flux" / "other" (any case) into a Role.
func ParseRole(s string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "flux":
		return Flux, nil
	case "other", "":
		return Other, nil
	default:
		return Other, fmt.Errorf("role %q: %w", s, ErrInvalidOxide)
	}
}

// Mode selects the flux convention used to partition oxides.
type Mode int

const (
	// Traditional counts only oxides whose Role is Flux.
	Traditional Mode = iota

	// Extended additionally counts oxides flagged ExtendedFlux (Katz convention).
	Extended
)

// String implements fmt.Stringer.
func (m Mode) String() string {
	if m == Extended {
		return "extended"
	}

	return "traditional"
}

// Oxide is one row of the reference table.
//   - Symbol: canonical formula, e.g. "Al2O3".
//   - Weight: molecular weight in g/mol (> 0).
//   - Role: Flux or Other under the traditional convention.
//   - ExtendedFlux: an Other oxide reclassified as flux in Extended mode.
type Oxide struct {
	Symbol       string
	Weight       float64
	Role         Role
	ExtendedFlux bool
}

// IsFlux reports whether the oxide counts towards the flux total in mode m.
func (o Oxide) IsFlux(m Mode) bool {
	if o.Role == Flux {
		return true
	}

	return m == Extended && o.ExtendedFlux
}
