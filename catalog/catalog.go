// SPDX-License-Identifier: MIT

package catalog

import "fmt"

// Catalog is an immutable set of materials and recipes keyed by ID.
// Insertion order is kept so batch reports follow the source files.
type Catalog struct {
	materials map[string]Material
	matOrder  []string
	recipes   map[string]Recipe
	recOrder  []string
}

// New validates and copies the inputs into a Catalog.
//
// Errors:
//   - ErrDuplicateID when an ID repeats within materials or within recipes.
//   - ErrInvalidMaterial for an empty ID, LOI outside [0,100], or a negative
//     or non-finite analysis value.
//   - ErrInvalidRecipe for an empty material reference or a negative or
//     non-finite amount. Unknown material references are NOT rejected here;
//     the formula engine reports them per recipe.
func New(materials []Material, recipes []Recipe) (*Catalog, error) {
	c := &Catalog{
		materials: make(map[string]Material, len(materials)),
		matOrder:  make([]string, 0, len(materials)),
		recipes:   make(map[string]Recipe, len(recipes)),
		recOrder:  make([]string, 0, len(recipes)),
	}

	for _, m := range materials {
		if err := validateMaterial(m); err != nil {
			return nil, err
		}
		if _, dup := c.materials[m.ID]; dup {
			return nil, fmt.Errorf("material %q: %w", m.ID, ErrDuplicateID)
		}
		c.materials[m.ID] = m.clone()
		c.matOrder = append(c.matOrder, m.ID)
	}

	for _, r := range recipes {
		if err := validateRecipe(r); err != nil {
			return nil, err
		}
		if _, dup := c.recipes[r.ID]; dup {
			return nil, fmt.Errorf("recipe %q: %w", r.ID, ErrDuplicateID)
		}
		c.recipes[r.ID] = r.clone()
		c.recOrder = append(c.recOrder, r.ID)
	}

	return c, nil
}

func validateMaterial(m Material) error {
	if m.ID == "" {
		return fmt.Errorf("empty id: %w", ErrInvalidMaterial)
	}
	if !finite(m.LOI) || m.LOI < 0 || m.LOI > 100 {
		return fmt.Errorf("material %q loi %g: %w", m.ID, m.LOI, ErrInvalidMaterial)
	}
	for ox, pct := range m.Analysis {
		if !finite(pct) || pct < 0 {
			return fmt.Errorf("material %q %s=%g: %w", m.ID, ox, pct, ErrInvalidMaterial)
		}
	}

	return nil
}

func validateRecipe(r Recipe) error {
	if r.ID == "" {
		return fmt.Errorf("empty id: %w", ErrInvalidRecipe)
	}
	for i, e := range r.Entries {
		if e.Material == "" {
			return fmt.Errorf("recipe %q entry %d: empty material: %w", r.ID, i, ErrInvalidRecipe)
		}
		if !finite(e.Amount) || e.Amount < 0 {
			return fmt.Errorf("recipe %q %s=%g: %w", r.ID, e.Material, e.Amount, ErrInvalidRecipe)
		}
	}

	return nil
}

// Material returns a copy of the material with the given ID.
func (c *Catalog) Material(id string) (Material, bool) {
	m, ok := c.materials[id]
	if !ok {
		return Material{}, false
	}

	return m.clone(), true
}

// lookup returns the stored material without copying; package use only.
func (c *Catalog) lookup(id string) (Material, bool) {
	m, ok := c.materials[id]

	return m, ok
}

// Recipe returns a copy of the recipe with the given ID, or ErrUnknownRecipe.
func (c *Catalog) Recipe(id string) (Recipe, error) {
	r, ok := c.recipes[id]
	if !ok {
		return Recipe{}, fmt.Errorf("%q: %w", id, ErrUnknownRecipe)
	}

	return r.clone(), nil
}

// MaterialIDs returns material IDs in insertion order.
func (c *Catalog) MaterialIDs() []string {
	out := make([]string, len(c.matOrder))
	copy(out, c.matOrder)

	return out
}

// RecipeIDs returns recipe IDs in insertion order.
func (c *Catalog) RecipeIDs() []string {
	out := make([]string, len(c.recOrder))
	copy(out, c.recOrder)

	return out
}

// Materials returns copies of all materials in insertion order.
func (c *Catalog) Materials() []Material {
	out := make([]Material, 0, len(c.matOrder))
	for _, id := range c.matOrder {
		out = append(out, c.materials[id].clone())
	}

	return out
}

// Recipes returns copies of all recipes in insertion order.
func (c *Catalog) Recipes() []Recipe {
	out := make([]Recipe, 0, len(c.recOrder))
	for _, id := range c.recOrder {
		out = append(out, c.recipes[id].clone())
	}

	return out
}

// Percent returns the analysis value of symbol in material id without copying
// the analysis. Missing materials or oxides read as 0 with ok=false for the
// material.
func (c *Catalog) Percent(id, symbol string) (pct float64, ok bool) {
	m, ok := c.lookup(id)
	if !ok {
		return 0, false
	}

	return m.Analysis[symbol], true
}

// Analysis calls fn for every oxide of material id without copying. It
// returns false when the material is unknown. fn must not retain the map.
func (c *Catalog) Analysis(id string, fn func(symbol string, pct float64)) bool {
	m, ok := c.lookup(id)
	if !ok {
		return false
	}
	for s, v := range m.Analysis {
		fn(s, v)
	}

	return true
}

// LOI returns the loss on ignition of material id.
func (c *Catalog) LOI(id string) (float64, bool) {
	m, ok := c.lookup(id)

	return m.LOI, ok
}

// Has reports whether a material with id exists.
func (c *Catalog) Has(id string) bool {
	_, ok := c.materials[id]

	return ok
}
