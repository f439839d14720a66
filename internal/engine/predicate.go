package engine

import (
	"sort"
	"strconv"
	"strings"
)

// Constraint restricts one column. Categorical columns use Values
// (OR-combined, case-insensitive); numeric columns use an inclusive
// [Min, Max] range with either bound optional. An empty constraint means
// no restriction.
type Constraint struct {
	Values []string `json:"values,omitempty"`
	Min    *float64 `json:"min,omitempty"`
	Max    *float64 `json:"max,omitempty"`
}

// IsEmpty reports whether the constraint restricts anything.
func (c Constraint) IsEmpty() bool {
	return len(c.Values) == 0 && c.Min == nil && c.Max == nil
}

// Predicate maps column names to constraints. Constraints AND across
// columns. A transient value: one per interaction, never stored.
type Predicate map[string]Constraint

// IsEmpty reports whether any column is actually restricted.
func (p Predicate) IsEmpty() bool {
	for _, c := range p {
		if !c.IsEmpty() {
			return false
		}
	}
	return true
}

// CacheKey renders the predicate in canonical form: columns sorted, values
// sorted and lowercased. Equal selections produce equal keys regardless of
// map iteration or request ordering. Columns and values are quoted so a
// delimiter character inside a value cannot make two distinct selections
// render the same key.
func (p Predicate) CacheKey() string {
	if p.IsEmpty() {
		return "*"
	}

	cols := make([]string, 0, len(p))
	for col, c := range p {
		if !c.IsEmpty() {
			cols = append(cols, col)
		}
	}
	sort.Strings(cols)

	var b strings.Builder
	for _, col := range cols {
		c := p[col]
		b.WriteString(strconv.Quote(col))
		b.WriteByte('=')
		if len(c.Values) > 0 {
			vals := make([]string, len(c.Values))
			for i, v := range c.Values {
				vals[i] = strconv.Quote(strings.ToLower(v))
			}
			sort.Strings(vals)
			b.WriteString(strings.Join(vals, "|"))
		}
		if c.Min != nil {
			b.WriteString("[" + strconv.FormatFloat(*c.Min, 'g', -1, 64))
		} else {
			b.WriteString("[")
		}
		if c.Max != nil {
			b.WriteString("," + strconv.FormatFloat(*c.Max, 'g', -1, 64) + "]")
		} else {
			b.WriteString(",]")
		}
		b.WriteByte(';')
	}
	return b.String()
}
