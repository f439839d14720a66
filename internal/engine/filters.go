package engine

import (
	"strings"

	"wellboard/internal/dataset"
)

// Apply returns the sub-view of rows satisfying every constraint in the
// predicate. Constraints AND across columns; values within a categorical
// constraint OR together. Row order is preserved (stable filter), and the
// result shares storage with the parent; only indices are allocated.
//
// A predicate naming an unknown column fails with SchemaError before any
// row is inspected. An all-empty predicate returns the view unchanged, so
// Apply(Apply(v, p), p) == Apply(v, p).
func Apply(v *View, p Predicate) (*View, error) {
	type check struct {
		col *dataset.Column
		set map[string]bool
		c   Constraint
	}

	checks := make([]check, 0, len(p))
	for name, c := range p {
		col, err := v.column(name)
		if err != nil {
			return nil, err
		}
		if c.IsEmpty() {
			continue
		}
		if col.Kind == dataset.Categorical && (c.Min != nil || c.Max != nil) {
			return nil, schemaErrf(name, "range constraint on categorical column")
		}
		if col.Kind == dataset.Numeric && len(c.Values) > 0 {
			return nil, schemaErrf(name, "value-set constraint on numeric column")
		}
		checks = append(checks, check{col: col, set: toLowerSet(c.Values), c: c})
	}

	if len(checks) == 0 {
		return v, nil
	}

	indices := make([]int, 0, len(v.idx))
	for _, row := range v.idx {
		pass := true
		for _, ch := range checks {
			if !matches(ch.col, row, ch.set, ch.c) {
				pass = false
				break
			}
		}
		if pass {
			indices = append(indices, row)
		}
	}

	return &View{ds: v.ds, idx: indices}, nil
}

// matches checks a single row against one constraint. Rows missing a value
// in a constrained column never match.
func matches(col *dataset.Column, row int, set map[string]bool, c Constraint) bool {
	if col.Null[row] {
		return false
	}
	switch col.Kind {
	case dataset.Categorical:
		return set[strings.ToLower(col.Str[row])]
	case dataset.Numeric:
		val := col.Num[row]
		if c.Min != nil && val < *c.Min {
			return false
		}
		if c.Max != nil && val > *c.Max {
			return false
		}
		return true
	}
	return false
}

func toLowerSet(items []string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, item := range items {
		set[strings.ToLower(item)] = true
	}
	return set
}
