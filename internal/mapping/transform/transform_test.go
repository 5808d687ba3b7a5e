package transform

import (
	"encoding/json"
	"math"
	"reflect"
	"testing"
)

func TestApply(t *testing.T) {
	cases := []struct {
		name  string
		spec  string
		value any
		want  any
	}{
		{"identity empty", "", "john", "john"},
		{"identity blank", "   ", 42, 42},
		{"uppercase", "uppercase", "john", "JOHN"},
		{"uppercase mixed case spec", "UpperCase", "john", "JOHN"},
		{"uppercase non string", "uppercase", 7, 7},
		{"lowercase", " lowercase ", "DoE", "doe"},
		{"lowercase nil", "lowercase", nil, nil},
		{"to_int string", "to_int", "34", 34},
		{"to_int padded string", "to_int", " -12 ", -12},
		{"to_int bad string", "to_int", "abc", "abc"},
		{"to_int decimal string", "to_int", "3.5", "3.5"},
		{"to_int float", "to_int", 34.9, 34},
		{"to_int negative float", "to_int", -2.7, -2},
		{"to_int nan", "to_int", math.NaN(), nil},
		{"to_int bool", "to_int", true, 1},
		{"to_int json number", "to_int", json.Number("12"), 12},
		{"to_int json float number", "to_int", json.Number("12.8"), 12},
		{"to_int nil", "to_int", nil, nil},
		{"to_int map", "to_int", map[string]any{"a": 1}, map[string]any{"a": 1}},
		{"to_string int", "to_string", 34, "34"},
		{"to_string float", "to_string", 34.0, "34"},
		{"to_string fraction", "to_string", 1.25, "1.25"},
		{"to_string bool", "to_string", false, "false"},
		{"to_string nil", "to_string", nil, nil},
		{"to_string slice", "to_string", []any{"a", 1.0}, `["a",1]`},
		{"constant", "constant:Fixed", "ignored", "Fixed"},
		{"constant nil", "constant:x", nil, "x"},
		{"constant keeps later colons", "CONSTANT:a:b", 1, "a:b"},
		{"constant empty literal", "constant:", "v", ""},
		{"constant keeps trailing space", "constant:X ", "v", "X "},
		{"constant keeps inner padding", "  constant: X", nil, " X"},
		{"default keeps trailing space", "default:N/A ", nil, "N/A "},
		{"default on nil", "default:N/A", nil, "N/A"},
		{"default on empty", "default:N/A", "", "N/A"},
		{"default keeps value", "default:N/A", "x", "x"},
		{"default keeps zero", "default:5", 0, 0},
		{"unknown", "reverse", "abc", "abc"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Apply(tc.spec, tc.value)
			if f, ok := tc.value.(float64); ok && math.IsNaN(f) {
				gf, ok := got.(float64)
				if !ok || !math.IsNaN(gf) {
					t.Fatalf("Apply(%q, NaN): want NaN passthrough, got %#v", tc.spec, got)
				}
				return
			}
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("Apply(%q, %#v): want=%#v got=%#v", tc.spec, tc.value, tc.want, got)
			}
		})
	}
}

func TestKnown(t *testing.T) {
	for _, spec := range []string{"", "to_int", "TO_STRING", "constant:x", "Default:y", "lowercase"} {
		if !Known(spec) {
			t.Fatalf("Known(%q) = false", spec)
		}
	}
	if Known("reverse") {
		t.Fatalf("Known(reverse) = true")
	}
}
