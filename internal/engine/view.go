package engine

import "wellboard/internal/dataset"

// View is a stable, zero-copy subset of a Dataset: an index list in
// original row order. Filtering produces Views; aggregation reads
// through them. The Dataset itself is never copied or mutated.
type View struct {
	ds  *dataset.Dataset
	idx []int
}

// NewView wraps a full dataset as a View covering every row.
func NewView(ds *dataset.Dataset) *View {
	idx := make([]int, ds.Len())
	for i := range idx {
		idx[i] = i
	}
	return &View{ds: ds, idx: idx}
}

// Len returns the number of rows in the view.
func (v *View) Len() int { return len(v.idx) }

// Dataset returns the backing dataset.
func (v *View) Dataset() *dataset.Dataset { return v.ds }

// Rows returns the underlying dataset row index for each view position.
func (v *View) Rows() []int { return v.idx }

// column resolves a column or fails with SchemaError.
func (v *View) column(name string) (*dataset.Column, error) {
	col, ok := v.ds.Column(name)
	if !ok {
		return nil, unknownColumn(name)
	}
	return col, nil
}

// numericColumn resolves a column and requires it to be numeric.
func (v *View) numericColumn(name string) (*dataset.Column, error) {
	col, err := v.column(name)
	if err != nil {
		return nil, err
	}
	if col.Kind != dataset.Numeric {
		return nil, schemaErrf(name, "not numeric")
	}
	return col, nil
}

// categoricalColumn resolves a column and requires it to be categorical.
func (v *View) categoricalColumn(name string) (*dataset.Column, error) {
	col, err := v.column(name)
	if err != nil {
		return nil, err
	}
	if col.Kind != dataset.Categorical {
		return nil, schemaErrf(name, "not categorical")
	}
	return col, nil
}

// numericValues collects non-null values of a numeric column across the
// view. Rows with a missing value are dropped, not propagated as NaN.
func (v *View) numericValues(name string) ([]float64, error) {
	col, err := v.numericColumn(name)
	if err != nil {
		return nil, err
	}
	vals := make([]float64, 0, len(v.idx))
	for _, row := range v.idx {
		if col.Null[row] {
			continue
		}
		vals = append(vals, col.Num[row])
	}
	return vals, nil
}

// Paired collects rows where both numeric columns are present, keeping
// the pairs aligned. This is the point set behind correlation, trend
// fitting, and scatter charts.
func (v *View) Paired(xName, yName string) (xs, ys []float64, err error) {
	xCol, err := v.numericColumn(xName)
	if err != nil {
		return nil, nil, err
	}
	yCol, err := v.numericColumn(yName)
	if err != nil {
		return nil, nil, err
	}
	for _, row := range v.idx {
		if xCol.Null[row] || yCol.Null[row] {
			continue
		}
		xs = append(xs, xCol.Num[row])
		ys = append(ys, yCol.Num[row])
	}
	return xs, ys, nil
}
