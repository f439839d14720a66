package dataset

import "sort"

// Kind discriminates column storage.
type Kind int

const (
	Categorical Kind = iota
	Numeric
)

func (k Kind) String() string {
	if k == Numeric {
		return "numeric"
	}
	return "categorical"
}

// Column holds one survey field in Struct-of-Arrays format.
// Exactly one of Str/Num is populated, matching Kind. Null marks
// missing values; a null row keeps a zero placeholder in Str/Num.
type Column struct {
	Name string
	Kind Kind
	Str  []string
	Num  []float64
	Null []bool
}

// Dataset is the immutable in-memory survey table. It is built once by
// Load and never mutated afterward; the engine only reads from it.
type Dataset struct {
	cols   []Column
	byName map[string]int
	rows   int
}

// New assembles a Dataset from pre-built columns. All columns must have
// the same length; Load guarantees this for CSV input.
func New(cols []Column) *Dataset {
	ds := &Dataset{
		cols:   cols,
		byName: make(map[string]int, len(cols)),
	}
	for i, c := range cols {
		ds.byName[c.Name] = i
		if n := colLen(c); n > ds.rows {
			ds.rows = n
		}
	}
	return ds
}

func colLen(c Column) int {
	if c.Kind == Numeric {
		return len(c.Num)
	}
	return len(c.Str)
}

// Len returns the number of rows.
func (ds *Dataset) Len() int { return ds.rows }

// Column looks up a column by name.
func (ds *Dataset) Column(name string) (*Column, bool) {
	i, ok := ds.byName[name]
	if !ok {
		return nil, false
	}
	return &ds.cols[i], true
}

// ColumnNames returns all column names in schema order.
func (ds *Dataset) ColumnNames() []string {
	names := make([]string, len(ds.cols))
	for i, c := range ds.cols {
		names[i] = c.Name
	}
	return names
}

// NumericColumnNames returns the names of all numeric columns in schema order.
func (ds *Dataset) NumericColumnNames() []string {
	var names []string
	for _, c := range ds.cols {
		if c.Kind == Numeric {
			names = append(names, c.Name)
		}
	}
	return names
}

// ColumnInfo describes one column for the filter-widget layer.
type ColumnInfo struct {
	Name   string   `json:"name"`
	Kind   string   `json:"kind"`
	Values []string `json:"values,omitempty"` // distinct categorical values, sorted
	Min    float64  `json:"min,omitempty"`
	Max    float64  `json:"max,omitempty"`
	Nulls  int      `json:"nulls"`
}

// Schema describes every column. Categorical columns list their distinct
// values sorted so the UI renders stable widget options.
func (ds *Dataset) Schema() []ColumnInfo {
	infos := make([]ColumnInfo, 0, len(ds.cols))
	for _, c := range ds.cols {
		info := ColumnInfo{Name: c.Name, Kind: c.Kind.String()}

		switch c.Kind {
		case Categorical:
			seen := make(map[string]bool)
			for i, v := range c.Str {
				if c.Null[i] {
					info.Nulls++
					continue
				}
				if !seen[v] {
					seen[v] = true
					info.Values = append(info.Values, v)
				}
			}
			sort.Strings(info.Values)

		case Numeric:
			first := true
			for i, v := range c.Num {
				if c.Null[i] {
					info.Nulls++
					continue
				}
				if first || v < info.Min {
					info.Min = v
				}
				if first || v > info.Max {
					info.Max = v
				}
				first = false
			}
		}

		infos = append(infos, info)
	}
	return infos
}
