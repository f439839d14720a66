package models

import (
	"wellboard/internal/dataset"
	"wellboard/internal/engine"
)

// SchemaResponse describes the loaded dataset so the page can build its
// filter widgets.
type SchemaResponse struct {
	Rows    int                  `json:"rows"`
	Columns []dataset.ColumnInfo `json:"columns"`
}

// FilterRequest carries just a predicate.
type FilterRequest struct {
	Filters engine.Predicate `json:"filters"`
}

// FilterPreview reports how many rows the current selection keeps.
type FilterPreview struct {
	Matched int `json:"matched"`
	Total   int `json:"total"`
}

// AggregateRequest asks for a grouped mean or count.
type AggregateRequest struct {
	Filters engine.Predicate `json:"filters"`
	GroupBy string           `json:"group_by"`
	Metric  string           `json:"metric"`
	Method  string           `json:"method"`
}

// AggregateResponse carries the grouped results.
type AggregateResponse struct {
	Groups  []engine.GroupResult `json:"groups"`
	Matched int                  `json:"matched"`
}

// DistributionRequest asks for value counts of one categorical column.
type DistributionRequest struct {
	Filters engine.Predicate `json:"filters"`
	Column  string           `json:"column"`
}

// CrosstabRequest asks for a two-way breakdown: counts of Column's
// values per value of Row. Bins lets a numeric column serve as the row
// axis (age brackets, sleep-hour brackets); Normalize turns counts into
// per-row percentages.
type CrosstabRequest struct {
	Filters   engine.Predicate `json:"filters"`
	Row       string           `json:"row"`
	Column    string           `json:"column"`
	Bins      []engine.Bin     `json:"bins,omitempty"`
	Normalize bool             `json:"normalize"`
}

// TrendRequest asks for an OLS fit between two numeric columns.
type TrendRequest struct {
	Filters engine.Predicate `json:"filters"`
	X       string           `json:"x"`
	Y       string           `json:"y"`
}

// TrendResponse carries the fit plus the points it was computed from, so
// the page can draw the scatter behind the line.
type TrendResponse struct {
	engine.TrendResult
	Correlation float64      `json:"correlation"`
	Points      []TrendPoint `json:"points"`
}

// TrendPoint is one scatter point.
type TrendPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// CorrelationRequest asks for a pairwise matrix. Empty Columns means all
// numeric columns.
type CorrelationRequest struct {
	Filters engine.Predicate `json:"filters"`
	Columns []string         `json:"columns"`
}

// ErrorResponse is the uniform error payload. Kind distinguishes schema
// misuse from statistically undefined selections so the page can choose
// between "fix your request" and "not enough data for this selection".
type ErrorResponse struct {
	Kind  string `json:"kind"`
	Error string `json:"error"`
}
