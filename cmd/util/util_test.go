package util

import (
	"bytes"
	"github.com/basset-hound/houndctl/rpc/common"
	"reflect"
	"strings"
	"testing"
	"time"
)

// TestWrapString checks that no line exceeds Wrap characters
func TestWrapString(t *testing.T) {
	text := strings.Repeat("word ", 40)
	for _, line := range strings.Split(WrapString(text), "\n") {
		if len(line) > Wrap {
			t.Errorf("Line too long (%d): %q", len(line), line)
		}
	}
	if WrapString("short") != "short" {
		t.Errorf("Short text must not be changed")
	}
}

// TestParseParams covers key=value pairs and the JSON object
func TestParseParams(t *testing.T) {
	tests := []struct {
		name    string
		pairs   []string
		raw     string
		want    map[string]any
		wantErr bool
	}{
		{
			name:  "Strings",
			pairs: []string{"url=https://example.com/?a=b", "wait_until=load"},
			want:  map[string]any{"url": "https://example.com/?a=b", "wait_until": "load"},
		},
		{
			name:  "Typed",
			pairs: []string{"ms=250", "ignore_cache=true", "types=[\"xhr\"]", "empty="},
			want:  map[string]any{"ms": float64(250), "ignore_cache": true, "types": []any{"xhr"}, "empty": ""},
		},
		{
			name: "JSON",
			raw:  `{"selector": "#login", "delay": 10}`,
			want: map[string]any{"selector": "#login", "delay": float64(10)},
		},
		{
			name:  "PairsOverrideJSON",
			pairs: []string{"delay=20"},
			raw:   `{"delay": 10}`,
			want:  map[string]any{"delay": float64(20)},
		},
		{
			name:  "BrokenArrayStaysString",
			pairs: []string{"text=[not json"},
			want:  map[string]any{"text": "[not json"},
		},
		{
			name:  "NullJSONWithPairs",
			pairs: []string{"selector=#login"},
			raw:   "null",
			want:  map[string]any{"selector": "#login"},
		},
		{name: "NullJSON", raw: "null", want: map[string]any{}},
		{name: "MissingEquals", pairs: []string{"url"}, wantErr: true},
		{name: "EmptyKey", pairs: []string{"=x"}, wantErr: true},
		{name: "InvalidJSON", raw: `{"a":`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseParams(tt.pairs, tt.raw)
			if tt.wantErr {
				if err == nil {
					t.Errorf("Expected an error, got %v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Expected %v, got %v", tt.want, got)
			}
		})
	}
}

// TestPrintResult checks the JSON output
func TestPrintResult(t *testing.T) {
	var buf bytes.Buffer
	if err := PrintResult(&buf, common.Result{"title": "Example"}); err != nil {
		t.Fatalf("PrintResult failed: %v", err)
	}
	if got := buf.String(); got != "{\n  \"title\": \"Example\"\n}\n" {
		t.Errorf("Unexpected output %q", got)
	}

	buf.Reset()
	if err := PrintResult(&buf, nil); err != nil {
		t.Fatalf("PrintResult failed: %v", err)
	}
	if got := buf.String(); got != "{}\n" {
		t.Errorf("Expected an empty object, got %q", got)
	}
}

// TestFormatDuration checks the rounding
func TestFormatDuration(t *testing.T) {
	tests := map[time.Duration]string{
		1500 * time.Microsecond:    "1.5ms",
		1234567 * time.Microsecond: "1.235s",
		800 * time.Nanosecond:      "800ns",
	}
	for in, want := range tests {
		if got := FormatDuration(in); got != want {
			t.Errorf("FormatDuration(%s) = %s, want %s", in, got, want)
		}
	}
}
