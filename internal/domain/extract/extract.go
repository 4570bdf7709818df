// Package extract reads canonical fields out of loosely shaped upstream
// records using ordered, data-driven fallback rules.
package extract

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"
)

// Record is one decoded JSON object.
type Record = map[string]any

// Rule lists the candidate paths for one canonical field, highest priority
// first. A path is dot separated and walks nested objects.
type Rule struct {
	Field string
	Paths []string
}

// NewRule builds a rule for field from paths.
func NewRule(field string, paths ...string) Rule {
	return Rule{Field: field, Paths: paths}
}

// Lookup walks a dot separated path.
func Lookup(r Record, path string) (any, bool) {
	var cur any = r
	for _, part := range strings.Split(path, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = m[part]
		if !ok || cur == nil {
			return nil, false
		}
	}
	return cur, true
}

// String returns the first path whose value renders as a non-empty string,
// and the path that produced it.
func (rl Rule) String(r Record) (string, string) {
	for _, p := range rl.Paths {
		if v, ok := Lookup(r, p); ok {
			if s := AsString(v); s != "" {
				return s, p
			}
		}
	}
	return "", ""
}

// Float returns the first numeric value.
func (rl Rule) Float(r Record) (float64, bool) {
	for _, p := range rl.Paths {
		if v, ok := Lookup(r, p); ok {
			if f, ok := AsFloat(v); ok {
				return f, true
			}
		}
	}
	return 0, false
}

// Time returns the first value that parses as an instant. Unparseable
// values are skipped; nil means no path produced a time.
func (rl Rule) Time(r Record) *time.Time {
	for _, p := range rl.Paths {
		if v, ok := Lookup(r, p); ok {
			if t, ok := AsTime(v); ok {
				return &t
			}
		}
	}
	return nil
}

// Object returns the first value that is itself an object.
func (rl Rule) Object(r Record) Record {
	for _, p := range rl.Paths {
		if v, ok := Lookup(r, p); ok {
			if m, ok := v.(map[string]any); ok {
				return m
			}
		}
	}
	return nil
}

// AsString stringifies scalars. Whole floats render without a fraction so
// numeric ids from JSON keep their natural form.
func AsString(v any) string {
	switch x := v.(type) {
	case string:
		return strings.TrimSpace(x)
	case json.Number:
		return x.String()
	case float64:
		if x == math.Trunc(x) && math.Abs(x) < 1e15 {
			return strconv.FormatInt(int64(x), 10)
		}
		return strconv.FormatFloat(x, 'f', -1, 64)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	}
	return ""
}

// AsFloat converts numbers and numeric strings.
func AsFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, !math.IsNaN(x) && !math.IsInf(x, 0)
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case json.Number:
		f, err := x.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		return f, err == nil && !math.IsNaN(f) && !math.IsInf(f, 0)
	}
	return 0, false
}

var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
}

// AsTime parses RFC3339 variants and epoch milliseconds. Values without a
// zone are taken as UTC.
func AsTime(v any) (time.Time, bool) {
	switch x := v.(type) {
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return time.Time{}, false
		}
		for _, layout := range timeLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t.UTC(), true
			}
		}
	case float64:
		if x > 0 {
			return time.UnixMilli(int64(x)).UTC(), true
		}
	}
	return time.Time{}, false
}
