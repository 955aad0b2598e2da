package normalize

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Ordered fallbacks for every field whose name changed between optimizer
// versions. The first present, non-empty field wins.
var (
	stopNameFields    = []string{"stop_name", "Boarding Point", "stop", "name"}
	latFields         = []string{"lat", "latitude"}
	lonFields         = []string{"lon", "lng", "longitude"}
	arrivalTimeFields = []string{"time", "Time", "arrival_time"}
	studentFields     = []string{"students", "students_per_stop", "student"}

	routeNoFields       = []string{"route_no"}
	errorFields         = []string{"error"}
	httpErrorFields     = []string{"error", "detail"}
	messageFields       = []string{"message"}
	stopListField       = "optimized_order"
	removedListField    = "removed_stops"
	totalDistanceFields = []string{"total_distance_km"}
	estimatedTimeFields = []string{"estimated_time_min"}
	totalStudentFields  = []string{"total_students"}
	finalStopFields     = []string{"final_stop"}
)

// Body is one decoded JSON object from the optimizer, with typed lookups that
// tolerate the loose typing of older backends (numbers sent as strings and
// the other way round).
type Body map[string]json.RawMessage

// parseBody decodes raw into an object. Anything that is not a JSON object
// (empty input, arrays, scalars, null) is rejected.
func parseBody(raw []byte) (Body, bool) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, false
	}

	var b Body
	if err := json.Unmarshal(trimmed, &b); err != nil || b == nil {
		return nil, false
	}
	return b, true
}

func (b Body) lookup(name string) (json.RawMessage, bool) {
	v, ok := b[name]
	if !ok {
		return nil, false
	}
	if t := bytes.TrimSpace(v); len(t) == 0 || bytes.Equal(t, []byte("null")) {
		return nil, false
	}
	return v, true
}

// Truthy reports whether any of names holds a non-blank string, true, a
// non-zero number, or a non-empty object or array.
func (b Body) Truthy(names ...string) bool {
	for _, n := range names {
		v, ok := b.lookup(n)
		if !ok {
			continue
		}

		var x any
		if err := json.Unmarshal(v, &x); err != nil {
			continue
		}
		switch t := x.(type) {
		case string:
			if strings.TrimSpace(t) != "" {
				return true
			}
		case bool:
			if t {
				return true
			}
		case float64:
			if t != 0 {
				return true
			}
		case map[string]any:
			if len(t) > 0 {
				return true
			}
		case []any:
			if len(t) > 0 {
				return true
			}
		}
	}
	return false
}

// Text returns the first of names holding a non-blank string or a number.
func (b Body) Text(names ...string) (string, bool) {
	for _, n := range names {
		v, ok := b.lookup(n)
		if !ok {
			continue
		}

		var s string
		if err := json.Unmarshal(v, &s); err == nil {
			if s = strings.TrimSpace(s); s != "" {
				return s, true
			}
			continue
		}

		var num json.Number
		if err := json.Unmarshal(v, &num); err == nil {
			return num.String(), true
		}
	}
	return "", false
}

// Number returns the first of names holding a JSON number or a numeric
// string. Non-finite values are returned as they are; callers decide.
func (b Body) Number(names ...string) (float64, bool) {
	for _, n := range names {
		v, ok := b.lookup(n)
		if !ok {
			continue
		}

		var f float64
		if err := json.Unmarshal(v, &f); err == nil {
			return f, true
		}

		var s string
		if err := json.Unmarshal(v, &s); err == nil {
			if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
				return f, true
			}
		}
	}
	return 0, false
}

// Count returns a non-negative integer count, or nil when none of names
// carries one.
func (b Body) Count(names ...string) *int {
	f, ok := b.Number(names...)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return nil
	}
	c := int(math.Round(f))
	return &c
}

// List returns the objects stored under name. Elements that are not objects
// are skipped.
func (b Body) List(name string) []Body {
	v, ok := b.lookup(name)
	if !ok {
		return nil
	}

	var items []json.RawMessage
	if err := json.Unmarshal(v, &items); err != nil {
		return nil
	}

	out := make([]Body, 0, len(items))
	for _, item := range items {
		if obj, ok := parseBody(item); ok {
			out = append(out, obj)
		}
	}
	return out
}

// nonNegative turns missing, negative and non-finite aggregates into zero.
func nonNegative(f float64, ok bool) float64 {
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return 0
	}
	return f
}
