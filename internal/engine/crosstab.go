package engine

import (
	"sort"
	"strconv"
	"strings"
)

// Bin is one interval of a numeric grouping axis: Min inclusive, Max
// exclusive. Rows falling outside every bin are excluded, the same way
// rows with a missing value are.
type Bin struct {
	Label string  `json:"label"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
}

// Crosstab is a two-way contingency table: one row per value of the
// grouping axis, one column per value of the counted column. Rows follow
// first-seen order within the view (bin declaration order when binned);
// Cols are sorted. Cells hold counts, or percentages of each row's total
// when Normalized, so a row of percentages sums to 100.
type Crosstab struct {
	Rows       []string    `json:"rows"`
	Cols       []string    `json:"cols"`
	Cells      [][]float64 `json:"cells"`
	RowTotals  []int       `json:"row_totals"`
	Normalized bool        `json:"normalized"`
}

// CrossTabulate counts values of the categorical colCol per value of the
// rowCol grouping axis. rowCol is categorical unless bins are given, in
// which case it must be numeric and each value is bucketed into the first
// matching bin. Rows missing either value are excluded before counting.
func CrossTabulate(v *View, rowCol, colCol string, bins []Bin, normalize bool) (*Crosstab, error) {
	colC, err := v.categoricalColumn(colCol)
	if err != nil {
		return nil, err
	}

	var keyOf func(row int) (string, bool)
	if len(bins) > 0 {
		for i, b := range bins {
			if b.Max <= b.Min {
				return nil, schemaErrf(rowCol, "bin %d (%q) has an empty range", i, b.Label)
			}
		}
		rc, err := v.numericColumn(rowCol)
		if err != nil {
			return nil, err
		}
		keyOf = func(row int) (string, bool) {
			if rc.Null[row] {
				return "", false
			}
			x := rc.Num[row]
			for _, b := range bins {
				if x >= b.Min && x < b.Max {
					return b.Label, true
				}
			}
			return "", false
		}
	} else {
		rc, err := v.categoricalColumn(rowCol)
		if err != nil {
			return nil, err
		}
		keyOf = func(row int) (string, bool) {
			if rc.Null[row] {
				return "", false
			}
			return rc.Str[row], true
		}
	}

	counts := make(map[string]map[string]int)
	rowOrder := make([]string, 0)
	colSeen := make(map[string]bool)
	for _, row := range v.idx {
		if colC.Null[row] {
			continue
		}
		rk, ok := keyOf(row)
		if !ok {
			continue
		}
		ck := colC.Str[row]
		bucket, ok := counts[rk]
		if !ok {
			bucket = make(map[string]int)
			counts[rk] = bucket
			rowOrder = append(rowOrder, rk)
		}
		bucket[ck]++
		colSeen[ck] = true
	}
	if len(rowOrder) == 0 {
		return nil, insufficientf("crosstab", "no rows with values in both %q and %q match the current selection", rowCol, colCol)
	}

	if len(bins) > 0 {
		// Declaration order; bins that caught no rows are dropped.
		ordered := make([]string, 0, len(bins))
		for _, b := range bins {
			if _, ok := counts[b.Label]; ok {
				ordered = append(ordered, b.Label)
			}
		}
		rowOrder = ordered
	}

	colNames := make([]string, 0, len(colSeen))
	for ck := range colSeen {
		colNames = append(colNames, ck)
	}
	sort.Strings(colNames)

	ct := &Crosstab{
		Rows:       rowOrder,
		Cols:       colNames,
		Cells:      make([][]float64, len(rowOrder)),
		RowTotals:  make([]int, len(rowOrder)),
		Normalized: normalize,
	}
	for i, rk := range rowOrder {
		total := 0
		for _, n := range counts[rk] {
			total += n
		}
		ct.RowTotals[i] = total
		cells := make([]float64, len(colNames))
		for j, ck := range colNames {
			n := counts[rk][ck]
			if normalize {
				cells[j] = 100 * float64(n) / float64(total)
			} else {
				cells[j] = float64(n)
			}
		}
		ct.Cells[i] = cells
	}
	return ct, nil
}

// binsKey renders a bin list for memo keys. Labels are quoted for the
// same delimiter-safety reason as predicate values.
func binsKey(bins []Bin) string {
	if len(bins) == 0 {
		return ""
	}
	parts := make([]string, len(bins))
	for i, b := range bins {
		parts[i] = strconv.Quote(b.Label) + ":" +
			strconv.FormatFloat(b.Min, 'g', -1, 64) + ":" +
			strconv.FormatFloat(b.Max, 'g', -1, 64)
	}
	return strings.Join(parts, ",")
}
