package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wellboard/internal/dataset"
)

// ─────────────────────────────────────────────────────────────────────────────
// Group aggregation
// ─────────────────────────────────────────────────────────────────────────────

func TestGroupAggregateCountWholeDataset(t *testing.T) {
	v := smallView(t)

	groups, err := GroupAggregate(v, "", "", MethodCount)
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, "all", groups[0].Key)
	assert.Equal(t, float64(v.Len()), groups[0].Value, "count over unfiltered data equals total rows")
}

func TestGroupAggregateMeanByGroup(t *testing.T) {
	ds := dataset.New([]dataset.Column{
		catCol("exercise_level", "Low", "High", "Low", "Medium"),
		numCol("happiness_score", 4, 8, 6, 7),
	})
	v := NewView(ds)

	groups, err := GroupAggregate(v, "exercise_level", "happiness_score", MethodMean)
	require.NoError(t, err)
	require.Len(t, groups, 3)

	// First-seen order: Low, High, Medium
	assert.Equal(t, "Low", groups[0].Key)
	assert.Equal(t, "High", groups[1].Key)
	assert.Equal(t, "Medium", groups[2].Key)

	assert.InDelta(t, 5.0, groups[0].Value, 1e-9)
	assert.Equal(t, 2, groups[0].Count)
	assert.InDelta(t, 8.0, groups[1].Value, 1e-9)
}

func TestGroupAggregateDropsMissingValues(t *testing.T) {
	ds := dataset.New([]dataset.Column{
		catCol("diet_type", "Vegan", "Vegan", "Omnivore"),
		withNulls(numCol("sleep_hours", 8, 0, 6), 1),
	})
	v := NewView(ds)

	groups, err := GroupAggregate(v, "diet_type", "sleep_hours", MethodMean)
	require.NoError(t, err)
	require.Len(t, groups, 2)

	// The null row contributes to neither sum nor count
	assert.InDelta(t, 8.0, groups[0].Value, 1e-9)
	assert.Equal(t, 1, groups[0].Count)
}

func TestGroupAggregateZeroRows(t *testing.T) {
	v := smallView(t)
	empty, err := Apply(v, Predicate{"age": {Min: ptr(999)}})
	require.NoError(t, err)

	_, err = GroupAggregate(empty, "", "happiness_score", MethodMean)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInsufficientData, "zero rows must error, never a silent NaN or zero")

	_, err = GroupAggregate(empty, "", "", MethodCount)
	assert.ErrorIs(t, err, ErrInsufficientData)
}

func TestGroupAggregateSchemaChecks(t *testing.T) {
	v := smallView(t)

	_, err := GroupAggregate(v, "country", "nope", MethodMean)
	assert.ErrorIs(t, err, ErrSchema)

	_, err = GroupAggregate(v, "age", "happiness_score", MethodMean)
	assert.ErrorIs(t, err, ErrSchema, "group_by must be categorical")

	_, err = GroupAggregate(v, "country", "country", MethodMean)
	assert.ErrorIs(t, err, ErrSchema, "metric must be numeric")
}

// ─────────────────────────────────────────────────────────────────────────────
// Correlation and trend
// ─────────────────────────────────────────────────────────────────────────────

func trendView(t *testing.T) *View {
	t.Helper()
	// Sleep [4,6,8,10] against happiness [2,5,7,9]
	ds := dataset.New([]dataset.Column{
		numCol("sleep_hours", 4, 6, 8, 10),
		numCol("happiness_score", 2, 5, 7, 9),
		numCol("constant", 3, 3, 3, 3),
	})
	return NewView(ds)
}

func TestCorrelationScenario(t *testing.T) {
	v := trendView(t)

	r, err := Correlation(v, "sleep_hours", "happiness_score")
	require.NoError(t, err)
	assert.Greater(t, r, 0.9)
	assert.LessOrEqual(t, r, 1.0)
}

func TestCorrelationSelf(t *testing.T) {
	v := trendView(t)

	r, err := Correlation(v, "sleep_hours", "sleep_hours")
	require.NoError(t, err)
	assert.InDelta(t, 1.0, r, 1e-9)
}

func TestCorrelationZeroVariance(t *testing.T) {
	v := trendView(t)

	_, err := Correlation(v, "sleep_hours", "constant")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInsufficientData)

	var ie *InsufficientDataError
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, "correlation", ie.Op)
}

func TestCorrelationTooFewRows(t *testing.T) {
	ds := dataset.New([]dataset.Column{
		numCol("x", 1),
		numCol("y", 2),
	})
	_, err := Correlation(NewView(ds), "x", "y")
	assert.ErrorIs(t, err, ErrInsufficientData)
}

func TestCorrelationDropsMissingPairs(t *testing.T) {
	ds := dataset.New([]dataset.Column{
		withNulls(numCol("x", 1, 2, 3, 4), 1),
		withNulls(numCol("y", 1, 2, 3, 4), 3),
	})
	v := NewView(ds)

	// Only rows 0 and 2 have both values
	r, err := Correlation(v, "x", "y")
	require.NoError(t, err)
	assert.InDelta(t, 1.0, r, 1e-9)
}

func TestLinearTrendScenario(t *testing.T) {
	v := trendView(t)

	fit, err := LinearTrend(v, "sleep_hours", "happiness_score")
	require.NoError(t, err)
	assert.Greater(t, fit.Slope, 0.0)
	assert.Equal(t, 4, fit.N)
	assert.Greater(t, fit.RSquared, 0.9)

	// Exact OLS on this data: slope 1.15, intercept -2.3
	assert.InDelta(t, 1.15, fit.Slope, 1e-9)
	assert.InDelta(t, -2.3, fit.Intercept, 1e-9)
}

func TestLinearTrendZeroRows(t *testing.T) {
	ds := dataset.New([]dataset.Column{
		numCol("x"),
		numCol("y"),
	})
	_, err := LinearTrend(NewView(ds), "x", "y")
	assert.ErrorIs(t, err, ErrInsufficientData)
}

// ─────────────────────────────────────────────────────────────────────────────
// Matrix, summary, distribution
// ─────────────────────────────────────────────────────────────────────────────

func TestCorrelationMatrix(t *testing.T) {
	v := trendView(t)

	m, err := CorrelationMatrix(v, []string{"sleep_hours", "happiness_score", "constant"})
	require.NoError(t, err)
	require.Len(t, m.Cells, 3)

	require.NotNil(t, m.Cells[0][0])
	assert.InDelta(t, 1.0, *m.Cells[0][0], 1e-9)
	require.NotNil(t, m.Cells[0][1])
	assert.Greater(t, *m.Cells[0][1], 0.9)

	// Pairs against the zero-variance column blank out instead of
	// failing the whole matrix
	assert.Nil(t, m.Cells[0][2])
	assert.Nil(t, m.Cells[2][2])
}

func TestCorrelationMatrixUnknownColumn(t *testing.T) {
	v := trendView(t)
	_, err := CorrelationMatrix(v, []string{"sleep_hours", "nope"})
	assert.ErrorIs(t, err, ErrSchema)
}

func TestSummary(t *testing.T) {
	ds := dataset.New([]dataset.Column{
		numCol("happiness_score", 6, 8),
		numCol(dataset.StressNumericColumn, 1, 3),
		numCol("social_interaction_score", 5, 7),
		withNulls(numCol("sleep_hours", 8, 0), 1),
	})
	v := NewView(ds)

	s, err := Summary(v)
	require.NoError(t, err)
	assert.Equal(t, 2, s.Count)
	require.NotNil(t, s.AvgHappiness)
	assert.InDelta(t, 7.0, *s.AvgHappiness, 1e-9)
	require.NotNil(t, s.AvgSleep)
	assert.InDelta(t, 8.0, *s.AvgSleep, 1e-9, "null sleep row excluded from the mean")
}

func TestDistribution(t *testing.T) {
	ds := dataset.New([]dataset.Column{
		withNulls(catCol("gender", "Female", "Male", "Female", ""), 3),
	})
	v := NewView(ds)

	groups, err := Distribution(v, "gender")
	require.NoError(t, err)
	require.Len(t, groups, 2)
	assert.Equal(t, "Female", groups[0].Key)
	assert.Equal(t, 2, groups[0].Count)
	assert.Equal(t, "Male", groups[1].Key)
}

func TestDistributionAllNullErrors(t *testing.T) {
	ds := dataset.New([]dataset.Column{
		withNulls(catCol("gender", "", ""), 0, 1),
		catCol("country", "Canada", "Japan"),
	})
	v := NewView(ds)

	// Rows match, but none carries a countable value
	_, err := Distribution(v, "gender")
	assert.ErrorIs(t, err, ErrInsufficientData)
}
