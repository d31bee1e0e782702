// SPDX-License-Identifier: MIT

package constraint

import (
	"fmt"
	"io"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

type boundDoc struct {
	Min     *float64 `yaml:"min"`
	Max     *float64 `yaml:"max"`
	Fixed   *float64 `yaml:"fixed"`
	Exclude bool     `yaml:"exclude"`
}

// Read parses a constraints document:
//
//	silica:   {min: 20, max: 50}
//	whiting:  {fixed: 12}
//	talc:     {exclude: true}
//
// The mapping may also sit under a top-level "constraints" key. Missing min
// reads as 0 and missing max as +Inf. Values are not validated here; use
// Set.Validate against the palette.
func Read(r io.Reader) (Set, error) {
	var doc yaml.Node
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if err == io.EOF {
			return Set{}, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidBounds, err)
	}
	if len(doc.Content) == 0 {
		return Set{}, nil
	}
	m := doc.Content[0]
	if m.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: line %d: expected a mapping", ErrInvalidBounds, m.Line)
	}
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == "constraints" && m.Content[i+1].Kind == yaml.MappingNode {
			m = m.Content[i+1]
			break
		}
	}

	out := make(Set, len(m.Content)/2)
	for i := 0; i+1 < len(m.Content); i += 2 {
		id, val := m.Content[i].Value, m.Content[i+1]
		var d boundDoc
		if err := val.Decode(&d); err != nil {
			return nil, fmt.Errorf("%q: %w: %v", id, ErrInvalidBounds, err)
		}
		b := Bound{Max: math.Inf(1), Fixed: d.Fixed, Exclude: d.Exclude}
		if d.Min != nil {
			b.Min = *d.Min
		}
		if d.Max != nil {
			b.Max = *d.Max
		}
		out[id] = b
	}

	return out, nil
}

// Load reads a constraints file.
func Load(path string) (Set, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	s, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return s, nil
}
