// SPDX-License-Identifier: MIT

package style

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Column defines a table column. A zero Width sizes the column to its
// widest cell.
type Column struct {
	Name  string
	Width int
	Align Alignment
	Style lipgloss.Style
}

// Alignment specifies column text alignment.
type Alignment int

const (
	AlignLeft Alignment = iota
	AlignRight
)

// Table renders aligned, optionally styled columns.
type Table struct {
	columns []Column
	rows    [][]string
	styles  [][]*lipgloss.Style
	indent  string
	sep     bool
}

// NewTable creates a table with a header separator and a two-space indent.
func NewTable(columns ...Column) *Table {
	return &Table{columns: columns, indent: "  ", sep: true}
}

// SetIndent sets the left indent.
func (t *Table) SetIndent(indent string) *Table {
	t.indent = indent
	return t
}

// SetHeaderSeparator enables or disables the rule under the header.
func (t *Table) SetHeaderSeparator(on bool) *Table {
	t.sep = on
	return t
}

// AddRow appends a row; missing cells are blank.
func (t *Table) AddRow(values ...string) *Table {
	return t.AddStyledRow(nil, values...)
}

// AddStyledRow appends a row whose cells use s instead of the column style.
func (t *Table) AddStyledRow(s *lipgloss.Style, values ...string) *Table {
	for len(values) < len(t.columns) {
		values = append(values, "")
	}
	row := make([]*lipgloss.Style, len(values))
	for i := range row {
		row[i] = s
	}
	t.rows = append(t.rows, values)
	t.styles = append(t.styles, row)
	return t
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.rows) }

// Render returns the formatted table.
func (t *Table) Render() string {
	if len(t.columns) == 0 {
		return ""
	}
	widths := t.widths()

	var sb strings.Builder
	sb.WriteString(t.indent)
	for i, col := range t.columns {
		sb.WriteString(pad(Bold.Render(col.Name), lipgloss.Width(col.Name), widths[i], col.Align))
		if i < len(t.columns)-1 {
			sb.WriteString(" ")
		}
	}
	sb.WriteString("\n")

	if t.sep {
		total := len(widths) - 1
		for _, w := range widths {
			total += w
		}
		sb.WriteString(t.indent)
		sb.WriteString(Dim.Render(strings.Repeat("─", total)))
		sb.WriteString("\n")
	}

	for r, row := range t.rows {
		sb.WriteString(t.indent)
		for i, col := range t.columns {
			val := row[i]
			plain := lipgloss.Width(val)
			if plain > widths[i] && widths[i] > 3 {
				val = truncate(val, widths[i])
				plain = widths[i]
			}
			if st := t.styles[r][i]; st != nil {
				val = st.Render(val)
			} else {
				val = col.Style.Render(val)
			}
			sb.WriteString(pad(val, plain, widths[i], col.Align))
			if i < len(t.columns)-1 {
				sb.WriteString(" ")
			}
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

func (t *Table) widths() []int {
	out := make([]int, len(t.columns))
	for i, col := range t.columns {
		if col.Width > 0 {
			out[i] = col.Width
			continue
		}
		out[i] = lipgloss.Width(col.Name)
		for _, row := range t.rows {
			if w := lipgloss.Width(row[i]); w > out[i] {
				out[i] = w
			}
		}
	}

	return out
}

// pad pads text to width using its visible width.
func pad(text string, visible, width int, align Alignment) string {
	if visible >= width {
		return text
	}
	fill := strings.Repeat(" ", width-visible)
	if align == AlignRight {
		return fill + text
	}

	return text + fill
}

func truncate(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}

	return string(r[:width-3]) + "..."
}
