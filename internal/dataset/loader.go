package dataset

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/bdlm/log"
)

// schemaColumns fixes the survey layout. Schema order drives column order
// everywhere downstream.
var schemaColumns = []struct {
	name string
	kind Kind
}{
	{"country", Categorical},
	{"age", Numeric},
	{"gender", Categorical},
	{"exercise_level", Categorical},
	{"diet_type", Categorical},
	{"sleep_hours", Numeric},
	{"screen_time", Numeric},
	{"work_hours", Numeric},
	{"mental_health_condition", Categorical},
	{"stress_level", Categorical},
	{"social_interaction_score", Numeric},
	{"happiness_score", Numeric},
	{"year", Numeric},
}

// headerAliases maps normalized long-form CSV headers to schema names.
var headerAliases = map[string]string{
	"screen_time_per_day_hours": "screen_time",
	"work_hours_per_week":       "work_hours",
}

// stressScale converts the ordered stress categories to a numeric scale for
// correlation and trend analysis.
var stressScale = map[string]float64{
	"Low":      1,
	"Moderate": 2,
	"High":     3,
}

// StressNumericColumn is the derived numeric view of stress_level,
// materialized at load.
const StressNumericColumn = "stress_level_numeric"

// Load reads the survey CSV into an immutable Dataset. Any malformed row,
// unparsable numeric field, or incompatible header fails the whole load;
// there is never a partially loaded dataset.
func Load(path string) (*Dataset, error) {
	start := time.Now()

	f, err := os.Open(path)
	if err != nil {
		return nil, loadErrf(path, "open: %v", err)
	}
	defer f.Close()

	ds, err := Read(f)
	if err != nil {
		if le, ok := err.(*LoadError); ok {
			le.Path = path
		}
		return nil, err
	}

	log.WithFields(log.Fields{
		"path":    path,
		"rows":    ds.Len(),
		"columns": len(ds.cols),
		"elapsed": time.Since(start).String(),
	}).Info("dataset loaded")

	return ds, nil
}

// Read parses survey CSV content from a reader. Split out from Load so
// tests can feed in-memory fixtures.
func Read(r io.Reader) (*Dataset, error) {
	cr := csv.NewReader(r)

	header, err := cr.Read()
	if err != nil {
		return nil, loadErrf("", "read header: %v", err)
	}

	// Map each schema column to its CSV index. Unknown extra columns are
	// skipped; missing required columns fail the load.
	colIdx := make(map[string]int, len(schemaColumns))
	for i, h := range header {
		name := normalizeHeader(h)
		if alias, ok := headerAliases[name]; ok {
			name = alias
		}
		if _, dup := colIdx[name]; dup {
			return nil, loadErrf("", "duplicate column %q in header", name)
		}
		colIdx[name] = i
	}
	for _, sc := range schemaColumns {
		if _, ok := colIdx[sc.name]; !ok {
			return nil, loadErrf("", "missing required column %q", sc.name)
		}
	}

	cols := make([]Column, len(schemaColumns))
	for i, sc := range schemaColumns {
		cols[i] = Column{Name: sc.name, Kind: sc.kind}
	}

	row := 1 // header was row 1
	for {
		fields, err := cr.Read()
		if err == io.EOF {
			break
		}
		row++
		if err != nil {
			// csv.Reader reports wrong field counts here
			return nil, loadErrf("", "row %d: %v", row, err)
		}

		for i, sc := range schemaColumns {
			raw := strings.TrimSpace(fields[colIdx[sc.name]])
			if err := appendValue(&cols[i], raw, row); err != nil {
				return nil, err
			}
		}
	}

	cols = append(cols, deriveStressNumeric(cols))
	return New(cols), nil
}

func appendValue(c *Column, raw string, row int) error {
	missing := raw == "" || raw == "NA" || raw == "N/A"

	switch c.Kind {
	case Categorical:
		c.Str = append(c.Str, raw)
		c.Null = append(c.Null, missing)
	case Numeric:
		if missing {
			c.Num = append(c.Num, 0)
			c.Null = append(c.Null, true)
			return nil
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return loadErrf("", "row %d: column %q: unparsable numeric value %q", row, c.Name, raw)
		}
		if err := checkRange(c.Name, v, row); err != nil {
			return err
		}
		c.Num = append(c.Num, v)
		c.Null = append(c.Null, false)
	}
	return nil
}

// checkRange rejects values outside the documented survey bounds.
func checkRange(name string, v float64, row int) error {
	switch name {
	case "age":
		if v < 0 || v > 120 {
			return loadErrf("", "row %d: age %v outside plausible range", row, v)
		}
	case "year":
		if v < 2019 || v > 2024 {
			return loadErrf("", "row %d: year %v outside survey range 2019-2024", row, v)
		}
	case "sleep_hours", "screen_time", "work_hours":
		if v < 0 {
			return loadErrf("", "row %d: %s must be non-negative, got %v", row, name, v)
		}
	}
	return nil
}

// deriveStressNumeric materializes stress_level on the 1-3 scale.
// Unmapped stress labels become nulls rather than load failures.
func deriveStressNumeric(cols []Column) Column {
	var stress *Column
	for i := range cols {
		if cols[i].Name == "stress_level" {
			stress = &cols[i]
			break
		}
	}

	derived := Column{Name: StressNumericColumn, Kind: Numeric}
	for i, v := range stress.Str {
		num, ok := stressScale[v]
		if stress.Null[i] || !ok {
			derived.Num = append(derived.Num, 0)
			derived.Null = append(derived.Null, true)
			continue
		}
		derived.Num = append(derived.Num, num)
		derived.Null = append(derived.Null, false)
	}
	return derived
}

// normalizeHeader converts "Screen Time per Day (Hours)" to
// "screen_time_per_day_hours".
func normalizeHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	var b strings.Builder
	lastUnderscore := false
	for _, r := range h {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastUnderscore = false
		case r == ' ' || r == '-' || r == '_':
			if !lastUnderscore && b.Len() > 0 {
				b.WriteByte('_')
				lastUnderscore = true
			}
		default:
			// parens and punctuation dropped
		}
	}
	return strings.TrimRight(b.String(), "_")
}
