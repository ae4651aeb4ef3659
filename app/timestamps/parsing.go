package timestamps

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// Kind identifies whether a parsed value carried a time-of-day.
type Kind int

const (
	KindNone Kind = iota
	KindDate
	KindDatetime
)

// String returns the string representation of Kind
func (k Kind) String() string {
	switch k {
	case KindDate:
		return "date"
	case KindDatetime:
		return "datetime"
	default:
		return "none"
	}
}

// Layout is a single recognised datetime layout.
// Timezone-less layouts are interpreted in UTC.
type Layout struct {
	Name   string
	Layout string
	Kind   Kind
}

// Parse parses s with this layout only.
func (l *Layout) Parse(s string) (time.Time, bool) {
	if l == nil {
		return time.Time{}, false
	}
	t, err := time.ParseInLocation(l.Layout, strings.TrimSpace(s), time.UTC)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// inferenceLayouts are the unambiguous layouts used for column type inference.
// Go accepts an optional fractional second after the seconds field, so the
// layouts without fractions also cover "14:30:00.123".
var inferenceLayouts = []Layout{
	{Name: "RFC3339", Layout: time.RFC3339Nano, Kind: KindDatetime},
	{Name: "iso_t_seconds", Layout: "2006-01-02T15:04:05", Kind: KindDatetime},
	{Name: "iso_t_minutes", Layout: "2006-01-02T15:04", Kind: KindDatetime},
	{Name: "iso_space_offset", Layout: "2006-01-02 15:04:05Z07:00", Kind: KindDatetime},
	{Name: "iso_space_seconds", Layout: "2006-01-02 15:04:05", Kind: KindDatetime},
	{Name: "iso_space_minutes", Layout: "2006-01-02 15:04", Kind: KindDatetime},
	{Name: "slash_seconds", Layout: "2006/01/02 15:04:05", Kind: KindDatetime},
	{Name: "iso_date", Layout: "2006-01-02", Kind: KindDate},
	{Name: "slash_date", Layout: "2006/01/02", Kind: KindDate},
}

// legacyLayouts extends the inference set with day-first and month-first
// forms. They are ambiguous, so they only serve the best-effort value parser.
var legacyLayouts = append(append([]Layout{}, inferenceLayouts...),
	Layout{Name: "dmy_slash_seconds", Layout: "02/01/2006 15:04:05", Kind: KindDatetime},
	Layout{Name: "dmy_slash", Layout: "02/01/2006", Kind: KindDate},
	Layout{Name: "mdy_slash_seconds", Layout: "01/02/2006 15:04:05", Kind: KindDatetime},
	Layout{Name: "mdy_slash", Layout: "01/02/2006", Kind: KindDate},
	Layout{Name: "dmy_dash_seconds", Layout: "02-01-2006 15:04:05", Kind: KindDatetime},
	Layout{Name: "dmy_dash", Layout: "02-01-2006", Kind: KindDate},
	Layout{Name: "mon_d_y_seconds", Layout: "Jan 2, 2006 15:04:05", Kind: KindDatetime},
	Layout{Name: "mon_d_y", Layout: "Jan 2, 2006", Kind: KindDate},
	Layout{Name: "d_mon_y_seconds", Layout: "2 Jan 2006 15:04:05", Kind: KindDatetime},
	Layout{Name: "d_mon_y", Layout: "2 Jan 2006", Kind: KindDate},
)

// ParseDateTime tries the inference layouts in order and returns the first match.
func ParseDateTime(s string) (time.Time, Kind, bool) {
	ss := strings.TrimSpace(s)
	if ss == "" {
		return time.Time{}, KindNone, false
	}
	for i := range inferenceLayouts {
		if t, ok := inferenceLayouts[i].Parse(ss); ok {
			return t, inferenceLayouts[i].Kind, true
		}
	}
	return time.Time{}, KindNone, false
}

// DetectLayout returns the first inference layout that parses every
// non-empty sample. Samples that are all empty yield no layout.
func DetectLayout(samples []string) (*Layout, bool) {
	for i := range inferenceLayouts {
		layout := &inferenceLayouts[i]
		seen := 0
		matched := true
		for _, s := range samples {
			if strings.TrimSpace(s) == "" {
				continue
			}
			seen++
			if _, ok := layout.Parse(s); !ok {
				matched = false
				break
			}
		}
		if matched && seen > 0 {
			return layout, true
		}
	}
	return nil, false
}

// Epoch ranges recognised by ParseValue: 2000-01-01 up to 2038-01-19.
const (
	minEpochSeconds = 946684800.0
	maxEpochSeconds = 2147483647.0
	minEpochMillis  = minEpochSeconds * 1000
	maxEpochMillis  = maxEpochSeconds * 1000
)

// ParseValue is the best-effort cell parser used by display paths that work
// from strings. It returns the value (Unix seconds for anything recognised as
// a timestamp) and whether the value looked like a timestamp.
//
// Plain numbers inside the epoch-seconds or epoch-milliseconds ranges are
// reported as timestamps; this is a value-range heuristic and is kept apart
// from the typed column check in the table package.
func ParseValue(s string) (float64, bool) {
	ss := strings.TrimSpace(s)

	if num, err := strconv.ParseFloat(ss, 64); err == nil {
		switch {
		case num >= minEpochSeconds && num <= maxEpochSeconds:
			return num, true
		case num >= minEpochMillis && num <= maxEpochMillis:
			return num / 1000.0, true
		}
		return num, false
	}

	// Compact "YYYYMMDD HHMMSS"
	if len(ss) >= 15 && isDigitsAndSpaces(ss) {
		parts := strings.Fields(ss)
		if len(parts) == 2 && len(parts[0]) == 8 && len(parts[1]) == 6 {
			if t, err := time.ParseInLocation("20060102 150405", parts[0]+" "+parts[1], time.UTC); err == nil {
				return float64(t.Unix()), true
			}
		}
	}

	for i := range legacyLayouts {
		if t, ok := legacyLayouts[i].Parse(ss); ok {
			return float64(t.UnixMilli()) / 1000.0, true
		}
	}

	return math.NaN(), false
}

// UnixSeconds converts t to fractional Unix seconds.
func UnixSeconds(t time.Time) float64 {
	return float64(t.Unix()) + float64(t.Nanosecond())/1e9
}

// FormatDatetime renders a datetime cell for display.
func FormatDatetime(t time.Time) string {
	if t.Nanosecond() == 0 {
		return t.UTC().Format("2006-01-02 15:04:05")
	}
	return t.UTC().Format("2006-01-02 15:04:05.000")
}

// FormatDate renders a date cell for display.
func FormatDate(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

func isDigitsAndSpaces(s string) bool {
	for _, c := range s {
		if (c < '0' || c > '9') && c != ' ' && c != '\t' {
			return false
		}
	}
	return true
}
