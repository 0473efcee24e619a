package http

import (
	"net/url"
	"strconv"
	"testing"
	"time"

	"outlay/internal/core"
)

func TestParsePeriodParams(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name  string
		query string
		want  core.Period
	}{
		{"both given", "month=3&year=2024", core.Period{Month: 3, Year: 2024}},
		{"empty falls back to today", "", core.PeriodOf(now)},
		{"garbage month falls back", "month=abc&year=2024", core.Period{Month: int(now.Month()), Year: 2024}},
		{"out of range month falls back", "month=13&year=2024", core.Period{Month: int(now.Month()), Year: 2024}},
		{"fractional month falls back", "month=2.5&year=2024", core.Period{Month: int(now.Month()), Year: 2024}},
		{"garbage year falls back", "month=3&year=twenty", core.Period{Month: 3, Year: now.Year()}},
		{"whitespace tolerated", "month=+3+&year=2024", core.Period{Month: 3, Year: 2024}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query, err := url.ParseQuery(tt.query)
			if err != nil {
				t.Fatalf("bad test query: %v", err)
			}
			if got := ParsePeriodParams(query); got != tt.want {
				t.Errorf("ParsePeriodParams(%q) = %+v, want %+v", tt.query, got, tt.want)
			}
		})
	}
}

func TestParseMonthYearParam(t *testing.T) {
	tests := []struct {
		name   string
		value  string
		want   core.Period
		wantOK bool
	}{
		{"valid", "3-2024", core.Period{Month: 3, Year: 2024}, true},
		{"valid december", "12-2025", core.Period{Month: 12, Year: 2025}, true},
		{"empty", "", core.Period{}, false},
		{"missing year", "3-", core.Period{}, false},
		{"month out of range", "13-2024", core.Period{}, false},
		{"three digit year", "3-202", core.Period{}, false},
		{"not numbers", "march-twentyfour", core.Period{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseMonthYearParam(tt.value)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("ParseMonthYearParam(%q) = %+v, %v; want %+v, %v",
					tt.value, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestParseDownloadPeriodPrefersMonthYear(t *testing.T) {
	query := url.Values{
		"month_year": {"3-2024"},
		"month":      {"7"},
		"year":       {"2030"},
	}
	if got := ParseDownloadPeriod(query); got != (core.Period{Month: 3, Year: 2024}) {
		t.Errorf("ParseDownloadPeriod = %+v, want 3/2024", got)
	}

	// Malformed month_year falls back to the separate params.
	query.Set("month_year", "nope")
	if got := ParseDownloadPeriod(query); got != (core.Period{Month: 7, Year: 2030}) {
		t.Errorf("fallback ParseDownloadPeriod = %+v, want 7/2030", got)
	}
}

func TestFormInt64(t *testing.T) {
	form := url.Values{
		"good":  {"42"},
		"big":   {strconv.FormatInt(1<<40, 10)},
		"bad":   {"forty-two"},
		"empty": {""},
	}

	if got := formInt64(form, "good"); got != 42 {
		t.Errorf("formInt64(good) = %d, want 42", got)
	}
	if got := formInt64(form, "big"); got != 1<<40 {
		t.Errorf("formInt64(big) = %d, want %d", got, int64(1<<40))
	}
	for _, key := range []string{"bad", "empty", "missing"} {
		if got := formInt64(form, key); got != 0 {
			t.Errorf("formInt64(%s) = %d, want 0", key, got)
		}
	}
}

func TestSanitizeInput(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"  hello  ", "hello"},
		{"with\x00null", "withnull"},
		{"keeps\ttabs", "keeps\ttabs"},
		{"plain", "plain"},
	}

	for _, tt := range tests {
		if got := sanitizeInput(tt.in); got != tt.want {
			t.Errorf("sanitizeInput(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
