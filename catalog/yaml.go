// SPDX-License-Identifier: MIT

package catalog

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/katalvlaran/glaze/oxide"
)

// File layouts (all YAML):
//
//	materials:                 recipes:                   name: My Glaze
//	  custer_feldspar:           cone10_clear:            flux:
//	    name: Custer Feldspar      name: Cone 10 Clear      K2O: 0.26
//	    loi: 0.15                  materials:               CaO: 0.74
//	    analysis:                    custer_feldspar: 40  other:
//	      SiO2: 68.5                 silica: 30             SiO2: 3.70
//	      K2O: 10.0                  rutile: {amount: 4, add: true}
//	                               umf: {flux: {...}, other: {...}}
//
// A materials file may omit the top-level "materials:" key. Oxide names are
// normalised to canonical symbols on read; mapping order is preserved.

// Kind identifies the layout of a YAML document.
type Kind int

const (
	KindUnknown Kind = iota
	KindUMF
	KindRecipes
	KindMaterials
)

type materialDoc struct {
	Name     string             `yaml:"name,omitempty"`
	LOI      float64            `yaml:"loi,omitempty"`
	Analysis map[string]float64 `yaml:"analysis"`
}

type ratiosDoc struct {
	Name  string             `yaml:"name,omitempty"`
	Flux  map[string]float64 `yaml:"flux"`
	Other map[string]float64 `yaml:"other"`
}

type recipeDoc struct {
	Name      string     `yaml:"name,omitempty"`
	Materials yaml.Node  `yaml:"materials"`
	UMF       *ratiosDoc `yaml:"umf,omitempty"`
}

type entryDoc struct {
	Amount float64 `yaml:"amount"`
	Add    bool    `yaml:"add"`
}

// root decodes data into its top-level mapping node.
func root(data []byte) (*yaml.Node, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFormat, err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 || doc.Content[0].Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: top level must be a mapping", ErrFormat)
	}

	return doc.Content[0], nil
}

// child returns the value node of key in mapping m, or nil.
func child(m *yaml.Node, key string) *yaml.Node {
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			return m.Content[i+1]
		}
	}

	return nil
}

// eachPair walks a mapping node in document order.
func eachPair(m *yaml.Node, fn func(key string, val *yaml.Node) error) error {
	if m.Kind != yaml.MappingNode {
		return fmt.Errorf("%w: line %d: expected a mapping", ErrFormat, m.Line)
	}
	for i := 0; i+1 < len(m.Content); i += 2 {
		if err := fn(m.Content[i].Value, m.Content[i+1]); err != nil {
			return err
		}
	}

	return nil
}

func normalizeOxides(in map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(in))
	for k, v := range in {
		out[oxide.Normalize(k)] += v
	}

	return out
}

func ratiosFrom(d ratiosDoc) Ratios {
	return Ratios{Name: d.Name, Flux: normalizeOxides(d.Flux), Other: normalizeOxides(d.Other)}
}

// Detect classifies a YAML document by its top-level keys.
func Detect(data []byte) Kind {
	m, err := root(data)
	if err != nil {
		return KindUnknown
	}
	switch {
	case child(m, "flux") != nil || child(m, "other") != nil:
		return KindUMF
	case child(m, "recipes") != nil:
		return KindRecipes
	case child(m, "materials") != nil:
		return KindMaterials
	default:
		return KindUnknown
	}
}

// ReadMaterials parses a materials document.
func ReadMaterials(r io.Reader) ([]Material, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	return parseMaterials(data)
}

func parseMaterials(data []byte) ([]Material, error) {
	m, err := root(data)
	if err != nil {
		return nil, err
	}
	if inner := child(m, "materials"); inner != nil {
		m = inner
	}

	var out []Material
	err = eachPair(m, func(id string, val *yaml.Node) error {
		var d materialDoc
		if err := val.Decode(&d); err != nil {
			return fmt.Errorf("material %q: %w: %v", id, ErrFormat, err)
		}
		out = append(out, Material{
			ID:       id,
			Name:     d.Name,
			LOI:      d.LOI,
			Analysis: normalizeOxides(d.Analysis),
		})

		return nil
	})
	if err != nil {
		return nil, err
	}

	return out, nil
}

// ReadRecipes parses a recipes document. Entries may be plain numbers or
// {amount, add} mappings.
func ReadRecipes(r io.Reader) ([]Recipe, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	return parseRecipes(data)
}

func parseRecipes(data []byte) ([]Recipe, error) {
	m, err := root(data)
	if err != nil {
		return nil, err
	}
	recipes := child(m, "recipes")
	if recipes == nil {
		return nil, fmt.Errorf("%w: missing \"recipes\" key", ErrFormat)
	}

	var out []Recipe
	err = eachPair(recipes, func(id string, val *yaml.Node) error {
		var d recipeDoc
		if err := val.Decode(&d); err != nil {
			return fmt.Errorf("recipe %q: %w: %v", id, ErrFormat, err)
		}
		rec := Recipe{ID: id, Name: d.Name}
		if d.Materials.Kind != 0 {
			err := eachPair(&d.Materials, func(mat string, v *yaml.Node) error {
				e, err := decodeEntry(mat, v)
				if err != nil {
					return fmt.Errorf("recipe %q: %w", id, err)
				}
				rec.Entries = append(rec.Entries, e)

				return nil
			})
			if err != nil {
				return err
			}
		}
		if d.UMF != nil {
			u := ratiosFrom(*d.UMF)
			rec.UMF = &u
		}
		out = append(out, rec)

		return nil
	})
	if err != nil {
		return nil, err
	}

	return out, nil
}

func decodeEntry(mat string, v *yaml.Node) (Entry, error) {
	switch v.Kind {
	case yaml.ScalarNode:
		var amount float64
		if err := v.Decode(&amount); err != nil {
			return Entry{}, fmt.Errorf("%s: %w: %v", mat, ErrFormat, err)
		}

		return Entry{Material: mat, Amount: amount}, nil
	case yaml.MappingNode:
		var d entryDoc
		if err := v.Decode(&d); err != nil {
			return Entry{}, fmt.Errorf("%s: %w: %v", mat, ErrFormat, err)
		}

		return Entry{Material: mat, Amount: d.Amount, Addition: d.Add}, nil
	default:
		return Entry{}, fmt.Errorf("%s: %w: line %d: amount must be a number or {amount, add}", mat, ErrFormat, v.Line)
	}
}

// ReadRatios parses a standalone UMF document.
func ReadRatios(r io.Reader) (Ratios, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Ratios{}, err
	}
	if _, err = root(data); err != nil {
		return Ratios{}, err
	}
	var d ratiosDoc
	if err = yaml.Unmarshal(data, &d); err != nil {
		return Ratios{}, fmt.Errorf("%w: %v", ErrFormat, err)
	}

	return ratiosFrom(d), nil
}

// File-path conveniences.

// LoadMaterials reads a materials file.
func LoadMaterials(path string) ([]Material, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	out, err := parseMaterials(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return out, nil
}

// LoadRecipes reads a recipes file.
func LoadRecipes(path string) ([]Recipe, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	out, err := parseRecipes(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return out, nil
}

// Load builds a Catalog from a recipes file and a materials file. Either
// path may be empty. A recipes file that also carries a "materials:" section
// contributes those materials too.
func Load(recipesPath, materialsPath string) (*Catalog, error) {
	var (
		mats []Material
		recs []Recipe
	)
	if materialsPath != "" {
		m, err := LoadMaterials(materialsPath)
		if err != nil {
			return nil, err
		}
		mats = m
	}
	if recipesPath != "" {
		data, err := os.ReadFile(recipesPath)
		if err != nil {
			return nil, err
		}
		if recs, err = parseRecipes(data); err != nil {
			return nil, fmt.Errorf("%s: %w", recipesPath, err)
		}
		if recipesPath != materialsPath && Detect(data) == KindRecipes {
			if m, _ := root(data); m != nil && child(m, "materials") != nil {
				extra, err := parseMaterials(data)
				if err != nil {
					return nil, fmt.Errorf("%s: %w", recipesPath, err)
				}
				mats = mergeMaterials(mats, extra)
			}
		}
	}

	return New(mats, recs)
}

// mergeMaterials appends extra materials whose IDs are not already present.
func mergeMaterials(base, extra []Material) []Material {
	seen := make(map[string]struct{}, len(base))
	for _, m := range base {
		seen[m.ID] = struct{}{}
	}
	for _, m := range extra {
		if _, ok := seen[m.ID]; !ok {
			base = append(base, m)
		}
	}

	return base
}

// Writers. Output keeps entry order and omits defaults (name == id, loi 0).

func scalar(v string) *yaml.Node { return &yaml.Node{Kind: yaml.ScalarNode, Value: v} }

func encodeValue(v any) (*yaml.Node, error) {
	var n yaml.Node
	if err := n.Encode(v); err != nil {
		return nil, err
	}

	return &n, nil
}

func ratiosNode(r Ratios, order func(map[string]float64) []string) (*yaml.Node, error) {
	n := &yaml.Node{Kind: yaml.MappingNode}
	if r.Name != "" {
		n.Content = append(n.Content, scalar("name"), scalar(r.Name))
	}
	for _, part := range []struct {
		key string
		m   map[string]float64
	}{{"flux", r.Flux}, {"other", r.Other}} {
		pm := &yaml.Node{Kind: yaml.MappingNode}
		for _, k := range order(part.m) {
			v, err := encodeValue(part.m[k])
			if err != nil {
				return nil, err
			}
			pm.Content = append(pm.Content, scalar(k), v)
		}
		n.Content = append(n.Content, scalar(part.key), pm)
	}

	return n, nil
}

// oxideOrder sorts ratio keys by the reference table's report order.
func oxideOrder(m map[string]float64) []string {
	t := oxide.Default()
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sortByRank(keys, t)

	return keys
}

func sortByRank(keys []string, t *oxide.Table) {
	rank := func(s string) int {
		if r := t.Rank(s); r >= 0 {
			return r
		}

		return t.Len()
	}
	sort.SliceStable(keys, func(i, j int) bool {
		ri, rj := rank(keys[i]), rank(keys[j])
		if ri != rj {
			return ri < rj
		}

		return keys[i] < keys[j]
	})
}

func encodeDoc(w io.Writer, top *yaml.Node) error {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{top}}); err != nil {
		return err
	}
	if err := enc.Close(); err != nil {
		return err
	}
	_, err := w.Write(buf.Bytes())

	return err
}

// WriteRatios writes a standalone UMF document.
func WriteRatios(w io.Writer, r Ratios) error {
	n, err := ratiosNode(r, oxideOrder)
	if err != nil {
		return err
	}

	return encodeDoc(w, n)
}

// WriteRecipes writes a recipes document.
func WriteRecipes(w io.Writer, recipes []Recipe) error {
	body := &yaml.Node{Kind: yaml.MappingNode}
	for _, r := range recipes {
		rn := &yaml.Node{Kind: yaml.MappingNode}
		if r.Name != "" && r.Name != r.ID {
			rn.Content = append(rn.Content, scalar("name"), scalar(r.Name))
		}
		mn := &yaml.Node{Kind: yaml.MappingNode}
		for _, e := range r.Entries {
			var (
				v   *yaml.Node
				err error
			)
			if e.Addition {
				v, err = encodeValue(entryDoc{Amount: e.Amount, Add: true})
				if err == nil {
					v.Style = yaml.FlowStyle
				}
			} else {
				v, err = encodeValue(e.Amount)
			}
			if err != nil {
				return err
			}
			mn.Content = append(mn.Content, scalar(e.Material), v)
		}
		rn.Content = append(rn.Content, scalar("materials"), mn)
		if r.UMF != nil {
			un, err := ratiosNode(Ratios{Flux: r.UMF.Flux, Other: r.UMF.Other}, oxideOrder)
			if err != nil {
				return err
			}
			rn.Content = append(rn.Content, scalar("umf"), un)
		}
		body.Content = append(body.Content, scalar(r.ID), rn)
	}

	return encodeDoc(w, &yaml.Node{Kind: yaml.MappingNode, Content: []*yaml.Node{scalar("recipes"), body}})
}

// WriteMaterials writes a materials document.
func WriteMaterials(w io.Writer, materials []Material) error {
	body := &yaml.Node{Kind: yaml.MappingNode}
	for _, m := range materials {
		mn := &yaml.Node{Kind: yaml.MappingNode}
		if m.Name != "" && m.Name != m.ID {
			mn.Content = append(mn.Content, scalar("name"), scalar(m.Name))
		}
		if m.LOI != 0 {
			v, err := encodeValue(m.LOI)
			if err != nil {
				return err
			}
			mn.Content = append(mn.Content, scalar("loi"), v)
		}
		an := &yaml.Node{Kind: yaml.MappingNode}
		for _, k := range oxideOrder(m.Analysis) {
			v, err := encodeValue(m.Analysis[k])
			if err != nil {
				return err
			}
			an.Content = append(an.Content, scalar(k), v)
		}
		mn.Content = append(mn.Content, scalar("analysis"), an)
		body.Content = append(body.Content, scalar(m.ID), mn)
	}

	return encodeDoc(w, &yaml.Node{Kind: yaml.MappingNode, Content: []*yaml.Node{scalar("materials"), body}})
}
