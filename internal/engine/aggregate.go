package engine

import (
	"gonum.org/v1/gonum/stat"

	"wellboard/internal/dataset"
)

// Method selects how a filtered view is reduced.
type Method string

const (
	MethodMean        Method = "mean"
	MethodCount       Method = "count"
	MethodCorrelation Method = "correlation"
	MethodTrend       Method = "linear_trend"
)

// GroupResult is one aggregated group. Groups appear in first-seen order
// of the group key within the filtered view, so output is reproducible
// for a given input order.
type GroupResult struct {
	Key   string  `json:"key"`
	Value float64 `json:"value"`
	Count int     `json:"count"`
}

// TrendResult holds ordinary-least-squares fit parameters.
type TrendResult struct {
	Slope     float64 `json:"slope"`
	Intercept float64 `json:"intercept"`
	RSquared  float64 `json:"r_squared"`
	N         int     `json:"n"`
}

// GroupAggregate computes mean or count of a metric per group. An empty
// groupBy treats the whole view as one group keyed "all". Rows missing a
// value in the metric or group column are excluded before computing,
// never silently folded in as NaN or zero.
//
// For MethodCount an empty metric counts whole rows, which is how the
// dashboard gets "N of M individuals match".
func GroupAggregate(v *View, groupBy, metric string, method Method) ([]GroupResult, error) {
	if method != MethodMean && method != MethodCount {
		return nil, schemaErrf(string(method), "unsupported group method")
	}
	if v.Len() == 0 {
		return nil, insufficientf(string(method), "no rows match the current selection")
	}

	var metricCol *dataset.Column
	if metric != "" || method == MethodMean {
		col, err := v.numericColumn(metric)
		if err != nil {
			return nil, err
		}
		metricCol = col
	}

	var groupCol *dataset.Column
	if groupBy != "" {
		col, err := v.categoricalColumn(groupBy)
		if err != nil {
			return nil, err
		}
		groupCol = col
	}

	type bucket struct {
		sum   float64
		count int
	}
	buckets := make(map[string]*bucket)
	order := make([]string, 0)

	for _, row := range v.idx {
		key := "all"
		if groupCol != nil {
			if groupCol.Null[row] {
				continue
			}
			key = groupCol.Str[row]
		}

		var val float64
		if metricCol != nil {
			if metricCol.Null[row] {
				continue
			}
			val = metricCol.Num[row]
		}

		b, ok := buckets[key]
		if !ok {
			b = &bucket{}
			buckets[key] = b
			order = append(order, key)
		}
		b.sum += val
		b.count++
	}

	if len(order) == 0 {
		return nil, insufficientf(string(method), "all matching rows have missing values in %q", metric)
	}

	results := make([]GroupResult, 0, len(order))
	for _, key := range order {
		b := buckets[key]
		r := GroupResult{Key: key, Count: b.count}
		switch method {
		case MethodMean:
			r.Value = b.sum / float64(b.count)
		case MethodCount:
			r.Value = float64(b.count)
		}
		results = append(results, r)
	}
	return results, nil
}

// Correlation computes the Pearson coefficient between two numeric
// columns over the view, dropping rows where either value is missing.
func Correlation(v *View, xCol, yCol string) (float64, error) {
	xs, ys, err := v.Paired(xCol, yCol)
	if err != nil {
		return 0, err
	}
	if err := checkVariance("correlation", xs, ys, xCol, yCol); err != nil {
		return 0, err
	}
	return stat.Correlation(xs, ys, nil), nil
}

// LinearTrend fits an ordinary-least-squares line y = intercept + slope*x
// between two numeric columns, with R-squared as the measure of fit.
func LinearTrend(v *View, xCol, yCol string) (TrendResult, error) {
	xs, ys, err := v.Paired(xCol, yCol)
	if err != nil {
		return TrendResult{}, err
	}
	if err := checkVariance("linear_trend", xs, ys, xCol, yCol); err != nil {
		return TrendResult{}, err
	}

	intercept, slope := stat.LinearRegression(xs, ys, nil, false)
	return TrendResult{
		Slope:     slope,
		Intercept: intercept,
		RSquared:  stat.RSquared(xs, ys, nil, intercept, slope),
		N:         len(xs),
	}, nil
}

// checkVariance enforces the shared failure conditions of correlation and
// trend fitting: at least 2 usable rows, nonzero variance on both axes.
func checkVariance(op string, xs, ys []float64, xCol, yCol string) error {
	if len(xs) < 2 {
		return insufficientf(op, "need at least 2 rows with values in %q and %q, have %d", xCol, yCol, len(xs))
	}
	if stat.Variance(xs, nil) == 0 {
		return insufficientf(op, "column %q has zero variance in the current selection", xCol)
	}
	if stat.Variance(ys, nil) == 0 {
		return insufficientf(op, "column %q has zero variance in the current selection", yCol)
	}
	return nil
}

// Matrix is a pairwise correlation matrix. Cells where the coefficient is
// undefined for the current selection are nil rather than failing the
// whole matrix.
type Matrix struct {
	Columns []string     `json:"columns"`
	Cells   [][]*float64 `json:"cells"`
}

// CorrelationMatrix computes pairwise Pearson coefficients over the named
// numeric columns. Unknown or non-numeric columns fail the request;
// per-pair insufficiency only blanks that cell.
func CorrelationMatrix(v *View, cols []string) (*Matrix, error) {
	if len(cols) == 0 {
		cols = v.ds.NumericColumnNames()
	}
	for _, c := range cols {
		if _, err := v.numericColumn(c); err != nil {
			return nil, err
		}
	}
	if v.Len() == 0 {
		return nil, insufficientf("correlation_matrix", "no rows match the current selection")
	}

	m := &Matrix{Columns: cols, Cells: make([][]*float64, len(cols))}
	for i := range cols {
		m.Cells[i] = make([]*float64, len(cols))
		for j := range cols {
			r, err := Correlation(v, cols[i], cols[j])
			if err != nil {
				continue // undefined pair stays nil
			}
			val := r
			m.Cells[i][j] = &val
		}
	}
	return m, nil
}

// SummaryStats are the dashboard's quick stats for the current selection.
// A nil average means the stat is undefined (all values missing).
type SummaryStats struct {
	Count        int      `json:"count"`
	AvgHappiness *float64 `json:"avg_happiness"`
	AvgStress    *float64 `json:"avg_stress"`
	AvgSocial    *float64 `json:"avg_social_interaction"`
	AvgSleep     *float64 `json:"avg_sleep_hours"`
}

// Summary computes the headline averages shown next to the filters.
func Summary(v *View) (SummaryStats, error) {
	if v.Len() == 0 {
		return SummaryStats{}, insufficientf("summary", "no rows match the current selection")
	}
	return SummaryStats{
		Count:        v.Len(),
		AvgHappiness: meanOf(v, "happiness_score"),
		AvgStress:    meanOf(v, dataset.StressNumericColumn),
		AvgSocial:    meanOf(v, "social_interaction_score"),
		AvgSleep:     meanOf(v, "sleep_hours"),
	}, nil
}

func meanOf(v *View, col string) *float64 {
	vals, err := v.numericValues(col)
	if err != nil || len(vals) == 0 {
		return nil
	}
	m := stat.Mean(vals, nil)
	return &m
}

// Distribution counts occurrences of each value of a categorical column,
// in first-seen order. Rows with a missing value are excluded; if that
// leaves nothing to count the selection is insufficient, same as a
// grouped aggregate over the column.
func Distribution(v *View, col string) ([]GroupResult, error) {
	c, err := v.categoricalColumn(col)
	if err != nil {
		return nil, err
	}
	if v.Len() == 0 {
		return nil, insufficientf("distribution", "no rows match the current selection")
	}

	counts := make(map[string]int)
	order := make([]string, 0)
	for _, row := range v.idx {
		if c.Null[row] {
			continue
		}
		key := c.Str[row]
		if _, ok := counts[key]; !ok {
			order = append(order, key)
		}
		counts[key]++
	}
	if len(order) == 0 {
		return nil, insufficientf("distribution", "all matching rows have missing values in %q", col)
	}

	results := make([]GroupResult, 0, len(order))
	for _, key := range order {
		results = append(results, GroupResult{Key: key, Value: float64(counts[key]), Count: counts[key]})
	}
	return results, nil
}
