package baseapi

import (
	"testing"
)

func TestParam(t *testing.T) {
	testCases := []struct {
		name     string
		key      string
		value    any
		expected string
	}{
		{"int", "limit", 10, "limit=10&"},
		{"string", "q", "hello", "q=hello&"},
		{"zero int", "q", 0, ""},
		{"empty string", "q", "", ""},
		{"false", "flag", false, ""},
		{"true", "flag", true, "flag=true&"},
		{"nil", "q", nil, ""},
		{"zero float", "ratio", 0.0, ""},
		{"float", "ratio", 0.5, "ratio=0.5&"},
		{"zero string literal", "limit", "0", "limit=0&"},
		{"empty slice", "ids", []int{}, ""},
		{"slice", "ids", []int{1}, "ids=[1]&"},
		{"empty map", "meta", map[string]string{}, ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := Param(tc.key, tc.value)
			if got != tc.expected {
				t.Errorf("Expected %q, got %q", tc.expected, got)
			}
		})
	}
}

func TestParamNilPointer(t *testing.T) {
	var p *int
	if got := Param("n", p); got != "" {
		t.Errorf("Expected empty string for nil pointer, got %q", got)
	}

	n := 7
	if got := Param("n", &n); got != "n=7&" {
		t.Errorf("Expected n=7&, got %q", got)
	}

	zero := 0
	if got := Param("n", &zero); got != "" {
		t.Errorf("Expected empty string for pointer to zero, got %q", got)
	}
}

func TestParamsEncode(t *testing.T) {
	params := Params{
		{Key: "limit", Value: 10},
		{Key: "q", Value: ""},
		{Key: "page", Value: 2},
	}

	got := params.Encode()
	expected := "limit=10&page=2&"
	if got != expected {
		t.Errorf("Expected %q, got %q", expected, got)
	}
}

func TestParamsEncodeOrder(t *testing.T) {
	params := Params{
		{Key: "b", Value: 2},
		{Key: "a", Value: 1},
	}

	// Serialization preserves list order, it never sorts.
	if got := params.Encode(); got != "b=2&a=1&" {
		t.Errorf("Expected b=2&a=1&, got %q", got)
	}
}

func TestParamsEncodeNoEscaping(t *testing.T) {
	params := Params{
		{Key: "q", Value: "a b/c?d"},
	}

	// Values reach the wire byte for byte.
	if got := params.Encode(); got != "q=a b/c?d&" {
		t.Errorf("Expected raw value, got %q", got)
	}
}

func TestParamsEncodeEmpty(t *testing.T) {
	if got := (Params{}).Encode(); got != "" {
		t.Errorf("Expected empty string, got %q", got)
	}

	var nilParams Params
	if got := nilParams.Encode(); got != "" {
		t.Errorf("Expected empty string for nil Params, got %q", got)
	}
}

func TestParamsPayload(t *testing.T) {
	params := Params{
		{Key: "name", Value: "x"},
		{Key: "count", Value: 0},
		{Key: "note", Value: ""},
	}

	payload := params.Payload()

	if len(payload) != 3 {
		t.Fatalf("Expected 3 entries, got %d", len(payload))
	}

	// Falsy values survive in payloads; the truthiness drop is a query
	// string rule only.
	if payload["count"] != 0 {
		t.Errorf("Expected count=0, got %v", payload["count"])
	}
	if payload["note"] != "" {
		t.Errorf("Expected empty note, got %v", payload["note"])
	}
}

func TestParamsPayloadDuplicateKeys(t *testing.T) {
	params := Params{
		{Key: "k", Value: "first"},
		{Key: "k", Value: "second"},
	}

	payload := params.Payload()
	if payload["k"] != "second" {
		t.Errorf("Expected later field to win, got %v", payload["k"])
	}
}

func TestParamsEncodeAll(t *testing.T) {
	params := Params{
		{Key: "token", Value: ""},
		{Key: "user", Value: 0},
	}

	// encodeAll is the auth rendering: nothing is dropped.
	got := params.encodeAll()
	expected := "token=&user=0&"
	if got != expected {
		t.Errorf("Expected %q, got %q", expected, got)
	}
}

type stringerValue struct{}

func (stringerValue) String() string { return "stringered" }

func TestFormatValueStringer(t *testing.T) {
	if got := formatValue(stringerValue{}); got != "stringered" {
		t.Errorf("Expected stringered, got %q", got)
	}
}
