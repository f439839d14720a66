package engine

import (
	"strconv"
	"strings"

	lru "github.com/hashicorp/golang-lru"

	"wellboard/internal/dataset"
)

// memoSize bounds the result cache. Aggregation is a pure function of
// (dataset, predicate, operation), so entries never go stale; the bound
// only caps memory on long-lived processes.
const memoSize = 512

// Engine binds the immutable dataset to the pure filter/aggregate
// functions and memoizes results keyed by the predicate's canonical
// form. Every interaction still re-derives its outputs from the dataset;
// the cache only short-circuits byte-identical repeat requests.
type Engine struct {
	base *View
	memo *lru.Cache
}

// New wraps a loaded dataset. The dataset must not be mutated afterward.
func New(ds *dataset.Dataset) *Engine {
	memo, _ := lru.New(memoSize) // errs only on non-positive size
	return &Engine{base: NewView(ds), memo: memo}
}

// Dataset returns the backing dataset.
func (e *Engine) Dataset() *dataset.Dataset { return e.base.Dataset() }

// Filter applies a predicate to the full dataset.
func (e *Engine) Filter(p Predicate) (*View, error) {
	return Apply(e.base, p)
}

// Aggregate filters then group-aggregates, memoized.
func (e *Engine) Aggregate(p Predicate, groupBy, metric string, method Method) ([]GroupResult, error) {
	key := memoKey("agg", p, groupBy, metric, string(method))
	out, err := e.cached(key, func() (any, error) {
		v, err := e.Filter(p)
		if err != nil {
			return nil, err
		}
		return GroupAggregate(v, groupBy, metric, method)
	})
	if err != nil {
		return nil, err
	}
	return out.([]GroupResult), nil
}

// Correlate filters then computes a Pearson coefficient, memoized.
func (e *Engine) Correlate(p Predicate, xCol, yCol string) (float64, error) {
	key := memoKey("corr", p, xCol, yCol)
	out, err := e.cached(key, func() (any, error) {
		v, err := e.Filter(p)
		if err != nil {
			return nil, err
		}
		return Correlation(v, xCol, yCol)
	})
	if err != nil {
		return 0, err
	}
	return out.(float64), nil
}

// Trend filters then fits an OLS line, memoized.
func (e *Engine) Trend(p Predicate, xCol, yCol string) (TrendResult, error) {
	key := memoKey("trend", p, xCol, yCol)
	out, err := e.cached(key, func() (any, error) {
		v, err := e.Filter(p)
		if err != nil {
			return nil, err
		}
		return LinearTrend(v, xCol, yCol)
	})
	if err != nil {
		return TrendResult{}, err
	}
	return out.(TrendResult), nil
}

// Correlations filters then computes a pairwise matrix, memoized.
func (e *Engine) Correlations(p Predicate, cols []string) (*Matrix, error) {
	key := memoKey("matrix", p, strings.Join(cols, ","))
	out, err := e.cached(key, func() (any, error) {
		v, err := e.Filter(p)
		if err != nil {
			return nil, err
		}
		return CorrelationMatrix(v, cols)
	})
	if err != nil {
		return nil, err
	}
	return out.(*Matrix), nil
}

// Summarize filters then computes the quick stats, memoized.
func (e *Engine) Summarize(p Predicate) (SummaryStats, error) {
	key := memoKey("summary", p)
	out, err := e.cached(key, func() (any, error) {
		v, err := e.Filter(p)
		if err != nil {
			return SummaryStats{}, err
		}
		return Summary(v)
	})
	if err != nil {
		return SummaryStats{}, err
	}
	return out.(SummaryStats), nil
}

// Cross filters then builds a two-way contingency table, memoized.
func (e *Engine) Cross(p Predicate, rowCol, colCol string, bins []Bin, normalize bool) (*Crosstab, error) {
	key := memoKey("cross", p, rowCol, colCol, binsKey(bins), strconv.FormatBool(normalize))
	out, err := e.cached(key, func() (any, error) {
		v, err := e.Filter(p)
		if err != nil {
			return nil, err
		}
		return CrossTabulate(v, rowCol, colCol, bins, normalize)
	})
	if err != nil {
		return nil, err
	}
	return out.(*Crosstab), nil
}

// Distribute filters then counts categorical values, memoized.
func (e *Engine) Distribute(p Predicate, col string) ([]GroupResult, error) {
	key := memoKey("dist", p, col)
	out, err := e.cached(key, func() (any, error) {
		v, err := e.Filter(p)
		if err != nil {
			return nil, err
		}
		return Distribution(v, col)
	})
	if err != nil {
		return nil, err
	}
	return out.([]GroupResult), nil
}

// cached looks up or computes one memoized result. Failures are computed
// fresh every time; only successful results enter the cache.
func (e *Engine) cached(key string, compute func() (any, error)) (any, error) {
	if v, ok := e.memo.Get(key); ok {
		return v, nil
	}
	v, err := compute()
	if err != nil {
		return nil, err
	}
	e.memo.Add(key, v)
	return v, nil
}

func memoKey(op string, p Predicate, parts ...string) string {
	return op + "|" + p.CacheKey() + "|" + strings.Join(parts, "|")
}
