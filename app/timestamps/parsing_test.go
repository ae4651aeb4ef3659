package timestamps

import (
	"math"
	"testing"
	"time"
)

func TestParseDateTime(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected time.Time
		kind     Kind
		ok       bool
	}{
		{
			name:     "rfc3339 with millis",
			input:    "2024-01-15T14:30:00.123Z",
			expected: time.Date(2024, 1, 15, 14, 30, 0, 123000000, time.UTC),
			kind:     KindDatetime,
			ok:       true,
		},
		{
			name:     "iso without zone",
			input:    "2024-01-15T14:30:00",
			expected: time.Date(2024, 1, 15, 14, 30, 0, 0, time.UTC),
			kind:     KindDatetime,
			ok:       true,
		},
		{
			name:     "space separated with fraction",
			input:    "2024-01-15 14:30:00.5",
			expected: time.Date(2024, 1, 15, 14, 30, 0, 500000000, time.UTC),
			kind:     KindDatetime,
			ok:       true,
		},
		{
			name:     "date only",
			input:    "2024-01-15",
			expected: time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
			kind:     KindDate,
			ok:       true,
		},
		{
			name:  "ambiguous day first is not inferred",
			input: "15/01/2024",
			ok:    false,
		},
		{
			name:  "empty",
			input: "  ",
			ok:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, kind, ok := ParseDateTime(tt.input)
			if ok != tt.ok {
				t.Fatalf("ParseDateTime(%q) ok = %v, want %v", tt.input, ok, tt.ok)
			}
			if !ok {
				return
			}
			if !got.Equal(tt.expected) {
				t.Errorf("ParseDateTime(%q) = %v, want %v", tt.input, got, tt.expected)
			}
			if kind != tt.kind {
				t.Errorf("ParseDateTime(%q) kind = %v, want %v", tt.input, kind, tt.kind)
			}
		})
	}
}

func TestDetectLayout(t *testing.T) {
	layout, ok := DetectLayout([]string{"2024-01-15 10:00:00", "", "2024-01-16 11:30:00"})
	if !ok {
		t.Fatal("Expected a layout to be detected")
	}
	if layout.Name != "iso_space_seconds" {
		t.Errorf("Expected iso_space_seconds, got %s", layout.Name)
	}

	if _, ok := DetectLayout([]string{"2024-01-15", "not a date"}); ok {
		t.Error("Expected mixed samples to detect no layout")
	}
	if _, ok := DetectLayout([]string{"", " "}); ok {
		t.Error("Expected empty samples to detect no layout")
	}
}

func TestParseValue(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		expected    float64
		isTimestamp bool
	}{
		{name: "plain number", input: "42.5", expected: 42.5, isTimestamp: false},
		{name: "epoch seconds", input: "1700000000", expected: 1700000000, isTimestamp: true},
		{name: "epoch millis", input: "1700000000500", expected: 1700000000.5, isTimestamp: true},
		{name: "compact datetime", input: "20240115 143000", expected: 1705329000, isTimestamp: true},
		{name: "iso datetime", input: "2024-01-15T14:30:00Z", expected: 1705329000, isTimestamp: true},
		{name: "day first", input: "15/01/2024", expected: 1705276800, isTimestamp: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, isTs := ParseValue(tt.input)
			if isTs != tt.isTimestamp {
				t.Errorf("ParseValue(%q) timestamp = %v, want %v", tt.input, isTs, tt.isTimestamp)
			}
			if math.Abs(got-tt.expected) > 1e-6 {
				t.Errorf("ParseValue(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}

	if v, ok := ParseValue("garbage"); ok || !math.IsNaN(v) {
		t.Errorf("Expected NaN for unparseable input, got %v (%v)", v, ok)
	}
}

func TestUnixSecondsKeepsFraction(t *testing.T) {
	ts := time.Date(2024, 1, 15, 14, 30, 0, 250000000, time.UTC)
	got := UnixSeconds(ts)
	if math.Abs(got-1705329000.25) > 1e-6 {
		t.Errorf("UnixSeconds = %v, want 1705329000.25", got)
	}
	if FormatDatetime(ts) != "2024-01-15 14:30:00.250" {
		t.Errorf("FormatDatetime = %q", FormatDatetime(ts))
	}
}
