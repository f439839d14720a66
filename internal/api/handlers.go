package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/bdlm/log"
	"github.com/labstack/echo/v4"

	"wellboard/internal/charts"
	"wellboard/internal/engine"
	"wellboard/internal/models"
	"wellboard/internal/web"
)

// Handler serves the dashboard page and its JSON/PNG API. It holds only
// the engine; the engine holds the immutable dataset. Handlers are safe
// for concurrent use because every interaction derives its own view.
type Handler struct {
	eng *engine.Engine
}

func NewHandler(eng *engine.Engine) *Handler {
	return &Handler{eng: eng}
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/", h.Index)

	api := e.Group("/api")
	api.GET("/schema", h.GetSchema)
	api.POST("/filter/preview", h.PreviewFilter)
	api.POST("/aggregate", h.Aggregate)
	api.POST("/distribution", h.Distribution)
	api.POST("/crosstab", h.Crosstab)
	api.POST("/summary", h.Summary)
	api.POST("/correlations", h.Correlations)
	api.POST("/trend", h.Trend)
	api.GET("/charts/groups.png", h.GroupsChart)
	api.GET("/charts/trend.png", h.TrendChart)
}

// Index serves the embedded single-page dashboard.
func (h *Handler) Index(c echo.Context) error {
	return c.HTMLBlob(http.StatusOK, web.Index)
}

// --- HANDLERS ---

// GetSchema describes the dataset so the page can build filter widgets.
func (h *Handler) GetSchema(c echo.Context) error {
	ds := h.eng.Dataset()
	return c.JSON(http.StatusOK, models.SchemaResponse{
		Rows:    ds.Len(),
		Columns: ds.Schema(),
	})
}

// PreviewFilter reports "N of M individuals match" for a predicate.
func (h *Handler) PreviewFilter(c echo.Context) error {
	var req models.FilterRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, err)
	}
	v, err := h.eng.Filter(req.Filters)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, models.FilterPreview{
		Matched: v.Len(),
		Total:   h.eng.Dataset().Len(),
	})
}

// Aggregate returns grouped means or counts for the current selection.
func (h *Handler) Aggregate(c echo.Context) error {
	var req models.AggregateRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, err)
	}
	groups, err := h.eng.Aggregate(req.Filters, req.GroupBy, req.Metric, engine.Method(req.Method))
	if err != nil {
		return respondError(c, err)
	}
	matched := 0
	for _, g := range groups {
		matched += g.Count
	}
	return c.JSON(http.StatusOK, models.AggregateResponse{Groups: groups, Matched: matched})
}

// Distribution returns value counts for one categorical column.
func (h *Handler) Distribution(c echo.Context) error {
	var req models.DistributionRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, err)
	}
	groups, err := h.eng.Distribute(req.Filters, req.Column)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, models.AggregateResponse{Groups: groups})
}

// Crosstab returns a two-way breakdown of one categorical column per
// value of another, optionally as per-row percentages, with numeric row
// axes bucketed through the request's bins.
func (h *Handler) Crosstab(c echo.Context) error {
	var req models.CrosstabRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, err)
	}
	ct, err := h.eng.Cross(req.Filters, req.Row, req.Column, req.Bins, req.Normalize)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, ct)
}

// Summary returns the quick stats shown beside the filters.
func (h *Handler) Summary(c echo.Context) error {
	var req models.FilterRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, err)
	}
	stats, err := h.eng.Summarize(req.Filters)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, stats)
}

// Correlations returns the pairwise Pearson matrix.
func (h *Handler) Correlations(c echo.Context) error {
	var req models.CorrelationRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, err)
	}
	m, err := h.eng.Correlations(req.Filters, req.Columns)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, m)
}

// Trend returns an OLS fit plus the points it was computed from.
func (h *Handler) Trend(c echo.Context) error {
	var req models.TrendRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, err)
	}

	fit, err := h.eng.Trend(req.Filters, req.X, req.Y)
	if err != nil {
		return respondError(c, err)
	}
	r, err := h.eng.Correlate(req.Filters, req.X, req.Y)
	if err != nil {
		return respondError(c, err)
	}

	v, err := h.eng.Filter(req.Filters)
	if err != nil {
		return respondError(c, err)
	}
	xs, ys, err := v.Paired(req.X, req.Y)
	if err != nil {
		return respondError(c, err)
	}

	resp := models.TrendResponse{TrendResult: fit, Correlation: r}
	resp.Points = make([]models.TrendPoint, len(xs))
	for i := range xs {
		resp.Points[i] = models.TrendPoint{X: xs[i], Y: ys[i]}
	}
	return c.JSON(http.StatusOK, resp)
}

// --- CHART HANDLERS ---
// Charts are GETs so the page can point <img> tags at them. The predicate
// travels as a JSON-encoded "filters" query parameter.

func (h *Handler) GroupsChart(c echo.Context) error {
	p, err := filtersParam(c)
	if err != nil {
		return badRequest(c, err)
	}
	groupBy := c.QueryParam("group_by")
	metric := c.QueryParam("metric")
	method := engine.Method(c.QueryParam("method"))
	if method == "" {
		method = engine.MethodMean
	}

	groups, err := h.eng.Aggregate(p, groupBy, metric, method)
	if err != nil {
		return respondError(c, err)
	}

	title := fmt.Sprintf("%s %s by %s", method, metric, groupBy)
	if groupBy == "" {
		title = fmt.Sprintf("%s %s", method, metric)
	}

	var buf bytes.Buffer
	if err := charts.RenderGroupBars(&buf, title, groups); err != nil {
		return respondError(c, err)
	}
	return c.Blob(http.StatusOK, "image/png", buf.Bytes())
}

func (h *Handler) TrendChart(c echo.Context) error {
	p, err := filtersParam(c)
	if err != nil {
		return badRequest(c, err)
	}
	x, y := c.QueryParam("x"), c.QueryParam("y")

	// Validate the fit first so undefined selections return the uniform
	// error payload instead of a broken image.
	if _, err := h.eng.Trend(p, x, y); err != nil {
		return respondError(c, err)
	}

	v, err := h.eng.Filter(p)
	if err != nil {
		return respondError(c, err)
	}
	xs, ys, err := v.Paired(x, y)
	if err != nil {
		return respondError(c, err)
	}

	var buf bytes.Buffer
	if err := charts.RenderTrendScatter(&buf, fmt.Sprintf("%s vs %s", x, y), x, y, xs, ys); err != nil {
		return respondError(c, err)
	}
	return c.Blob(http.StatusOK, "image/png", buf.Bytes())
}

func filtersParam(c echo.Context) (engine.Predicate, error) {
	raw := c.QueryParam("filters")
	if raw == "" {
		return engine.Predicate{}, nil
	}
	var p engine.Predicate
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return nil, fmt.Errorf("invalid filters parameter: %w", err)
	}
	return p, nil
}

// --- ERROR MAPPING ---
// SchemaError means the request itself is wrong (400). Insufficient data
// means the selection is valid but the statistic is undefined (422): an
// informational condition, surfaced per panel, never a crash.

func respondError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, engine.ErrSchema):
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Kind:  "schema",
			Error: err.Error(),
		})
	case errors.Is(err, engine.ErrInsufficientData):
		return c.JSON(http.StatusUnprocessableEntity, models.ErrorResponse{
			Kind:  "insufficient_data",
			Error: "not enough data for this selection",
		})
	default:
		log.WithFields(log.Fields{
			"path": c.Path(),
			"err":  err,
		}).Error("request failed")
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Kind:  "internal",
			Error: "internal error",
		})
	}
}

func badRequest(c echo.Context, err error) error {
	return c.JSON(http.StatusBadRequest, models.ErrorResponse{
		Kind:  "bad_request",
		Error: err.Error(),
	})
}
