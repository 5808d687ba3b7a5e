// Package transform evaluates the fixed transform vocabulary attached to
// mapping rules. Evaluation is total: an unknown transform or an input the
// transform cannot handle returns the value unchanged.
package transform

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

const (
	ToString  = "to_string"
	ToInt     = "to_int"
	Uppercase = "uppercase"
	Lowercase = "lowercase"

	constantPrefix = "constant:"
	defaultPrefix  = "default:"
)

// Apply runs spec against value. An empty spec is identity.
func Apply(spec string, value any) any {
	raw := strings.TrimSpace(spec)
	if raw == "" {
		return value
	}
	name := strings.ToLower(raw)

	switch name {
	case ToString:
		if value == nil {
			return nil
		}
		return stringify(value)
	case ToInt:
		if n, ok := toInt(value); ok {
			return n
		}
		return value
	case Uppercase:
		if s, ok := value.(string); ok {
			return strings.ToUpper(s)
		}
		return value
	case Lowercase:
		if s, ok := value.(string); ok {
			return strings.ToLower(s)
		}
		return value
	}

	switch {
	case strings.HasPrefix(name, constantPrefix):
		return literal(spec)
	case strings.HasPrefix(name, defaultPrefix):
		if value == nil {
			return literal(spec)
		}
		if s, ok := value.(string); ok && s == "" {
			return literal(spec)
		}
		return value
	}
	return value
}

// Known reports whether spec is part of the vocabulary. Unknown specs are
// still accepted by Apply as no-ops.
func Known(spec string) bool {
	name := strings.ToLower(strings.TrimSpace(spec))
	switch name {
	case "", ToString, ToInt, Uppercase, Lowercase:
		return true
	}
	return strings.HasPrefix(name, constantPrefix) || strings.HasPrefix(name, defaultPrefix)
}

// literal returns spec after the first colon, with the caller's casing and
// surrounding whitespace intact.
func literal(raw string) string {
	_, after, _ := strings.Cut(raw, ":")
	return after
}

func stringify(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	case bool:
		return strconv.FormatBool(v)
	case int:
		return strconv.Itoa(v)
	case int8:
		return strconv.FormatInt(int64(v), 10)
	case int16:
		return strconv.FormatInt(int64(v), 10)
	case int32:
		return strconv.FormatInt(int64(v), 10)
	case int64:
		return strconv.FormatInt(v, 10)
	case uint:
		return strconv.FormatUint(uint64(v), 10)
	case uint8:
		return strconv.FormatUint(uint64(v), 10)
	case uint16:
		return strconv.FormatUint(uint64(v), 10)
	case uint32:
		return strconv.FormatUint(uint64(v), 10)
	case uint64:
		return strconv.FormatUint(v, 10)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	b, err := json.Marshal(value)
	if err != nil {
		return ""
	}
	return string(b)
}

func toInt(value any) (int, bool) {
	switch v := value.(type) {
	case nil:
		return 0, false
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0, false
		}
		return n, true
	case json.Number:
		if n, err := strconv.Atoi(v.String()); err == nil {
			return n, true
		}
		f, err := v.Float64()
		if err != nil {
			return 0, false
		}
		return floatToInt(f)
	case bool:
		if v {
			return 1, true
		}
		return 0, true
	case int:
		return v, true
	case int8:
		return int(v), true
	case int16:
		return int(v), true
	case int32:
		return int(v), true
	case int64:
		if v > math.MaxInt || v < math.MinInt {
			return 0, false
		}
		return int(v), true
	case uint:
		if v > math.MaxInt {
			return 0, false
		}
		return int(v), true
	case uint8:
		return int(v), true
	case uint16:
		return int(v), true
	case uint32:
		return int(v), true
	case uint64:
		if v > math.MaxInt {
			return 0, false
		}
		return int(v), true
	case float32:
		return floatToInt(float64(v))
	case float64:
		return floatToInt(v)
	}
	return 0, false
}

func floatToInt(f float64) (int, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	t := math.Trunc(f)
	if t >= math.MaxInt || t < math.MinInt {
		return 0, false
	}
	return int(t), true
}
