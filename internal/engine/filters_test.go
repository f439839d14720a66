package engine

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wellboard/internal/dataset"
)

// ─────────────────────────────────────────────────────────────────────────────
// Fixture helpers
// ─────────────────────────────────────────────────────────────────────────────

func catCol(name string, vals ...string) dataset.Column {
	return dataset.Column{
		Name: name,
		Kind: dataset.Categorical,
		Str:  vals,
		Null: make([]bool, len(vals)),
	}
}

func numCol(name string, vals ...float64) dataset.Column {
	return dataset.Column{
		Name: name,
		Kind: dataset.Numeric,
		Num:  vals,
		Null: make([]bool, len(vals)),
	}
}

func withNulls(c dataset.Column, nullRows ...int) dataset.Column {
	for _, i := range nullRows {
		c.Null[i] = true
	}
	return c
}

func ptr(v float64) *float64 { return &v }

func smallView(t *testing.T) *View {
	t.Helper()
	ds := dataset.New([]dataset.Column{
		catCol("country", "Canada", "Germany", "Canada", "Japan"),
		catCol("gender", "Female", "Male", "Male", "Female"),
		numCol("age", 34, 41, 27, 52),
		numCol("happiness_score", 7.5, 4.2, 6.8, 5.1),
	})
	return NewView(ds)
}

// ─────────────────────────────────────────────────────────────────────────────
// Filtering laws
// ─────────────────────────────────────────────────────────────────────────────

func TestApplyEmptyPredicateIsIdentity(t *testing.T) {
	v := smallView(t)

	out, err := Apply(v, Predicate{})
	require.NoError(t, err)
	assert.Equal(t, v.Rows(), out.Rows(), "empty predicate must return the full view")

	// All-empty constraints count as empty too
	out, err = Apply(v, Predicate{"country": {}, "age": {}})
	require.NoError(t, err)
	assert.Equal(t, v.Rows(), out.Rows())
}

func TestApplyIsIdempotent(t *testing.T) {
	v := smallView(t)
	p := Predicate{"country": {Values: []string{"Canada"}}}

	once, err := Apply(v, p)
	require.NoError(t, err)
	twice, err := Apply(once, p)
	require.NoError(t, err)

	assert.Equal(t, once.Rows(), twice.Rows())
}

func TestApplySubsetAndOrder(t *testing.T) {
	v := smallView(t)

	out, err := Apply(v, Predicate{"gender": {Values: []string{"Male"}}})
	require.NoError(t, err)
	// Rows 1 and 2 match, in original relative order
	assert.Equal(t, []int{1, 2}, out.Rows())
}

func TestApplyUnknownColumn(t *testing.T) {
	v := smallView(t)

	_, err := Apply(v, Predicate{"citty": {Values: []string{"Canada"}}})
	require.Error(t, err)

	var se *SchemaError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "citty", se.Column)
	assert.ErrorIs(t, err, ErrSchema)
}

func TestApplyCaseInsensitiveValues(t *testing.T) {
	v := smallView(t)

	out, err := Apply(v, Predicate{"country": {Values: []string{"canada"}}})
	require.NoError(t, err)
	assert.Equal(t, 2, out.Len())
}

func TestApplyNumericRangeInclusive(t *testing.T) {
	v := smallView(t)

	out, err := Apply(v, Predicate{"age": {Min: ptr(27), Max: ptr(41)}})
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2}, out.Rows(), "bounds are inclusive")

	out, err = Apply(v, Predicate{"age": {Min: ptr(100)}})
	require.NoError(t, err)
	assert.Equal(t, 0, out.Len(), "zero rows is a valid result, not an error")
}

func TestApplyConstraintKindMismatch(t *testing.T) {
	v := smallView(t)

	_, err := Apply(v, Predicate{"country": {Min: ptr(1)}})
	assert.ErrorIs(t, err, ErrSchema)

	_, err = Apply(v, Predicate{"age": {Values: []string{"34"}}})
	assert.ErrorIs(t, err, ErrSchema)
}

func TestApplyNullsNeverMatch(t *testing.T) {
	ds := dataset.New([]dataset.Column{
		withNulls(catCol("country", "Canada", "", "Canada"), 1),
		withNulls(numCol("age", 30, 40, 50), 2),
	})
	v := NewView(ds)

	out, err := Apply(v, Predicate{"country": {Values: []string{"Canada", ""}}})
	require.NoError(t, err)
	assert.Equal(t, []int{0, 2}, out.Rows(), "null rows fail constrained columns")

	out, err = Apply(v, Predicate{"age": {Min: ptr(0)}})
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1}, out.Rows())
}

func TestApplyAndAcrossColumns(t *testing.T) {
	v := smallView(t)

	out, err := Apply(v, Predicate{
		"country": {Values: []string{"Canada"}},
		"gender":  {Values: []string{"Male"}},
	})
	require.NoError(t, err)
	assert.Equal(t, []int{2}, out.Rows())
}

// 100 rows, exactly 12 from Canada.
func TestApplyCanadaScenario(t *testing.T) {
	countries := make([]string, 100)
	score := make([]float64, 100)
	for i := range countries {
		countries[i] = fmt.Sprintf("Country%d", i%11)
		score[i] = float64(i % 10)
	}
	// i%11 == 0 hits 10 rows (0, 11, ..., 99); pin two more for 12
	for i := range countries {
		if i%11 == 0 {
			countries[i] = "Canada"
		}
	}
	countries[1], countries[2] = "Canada", "Canada"

	ds := dataset.New([]dataset.Column{
		catCol("country", countries...),
		numCol("happiness_score", score...),
	})
	v := NewView(ds)

	out, err := Apply(v, Predicate{"country": {Values: []string{"Canada"}}})
	require.NoError(t, err)
	require.Equal(t, 12, out.Len())

	col, _ := ds.Column("country")
	for _, row := range out.Rows() {
		assert.Equal(t, "Canada", col.Str[row])
	}

	groups, err := GroupAggregate(out, "", "", MethodCount)
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, float64(12), groups[0].Value)
}
