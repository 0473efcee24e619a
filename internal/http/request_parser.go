// Package http provides the web server, handlers, and HTMX plumbing.
//
// This file implements utilities for parsing and validating HTTP request
// parameters: period selection with today-fallback and the combined
// month_year download parameter.
package http

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"outlay/internal/core"
)

// ParsePeriodParams extracts month and year from query parameters, falling
// back to the current month for anything missing or malformed.
func ParsePeriodParams(query url.Values) core.Period {
	now := time.Now()
	period := core.Period{
		Month: int(now.Month()),
		Year:  now.Year(),
	}

	if v := strings.TrimSpace(query.Get("month")); v != "" {
		if m, err := strconv.Atoi(v); err == nil && m >= 1 && m <= 12 {
			period.Month = m
		}
	}
	if v := strings.TrimSpace(query.Get("year")); v != "" {
		if y, err := strconv.Atoi(v); err == nil && y >= 1000 && y <= 9999 {
			period.Year = y
		}
	}

	return period
}

// ParseMonthYearParam parses the combined "M-YYYY" download parameter
// (e.g. "3-2024"). The ok result is false when the value is absent or
// malformed; callers then fall back to the separate month/year params.
func ParseMonthYearParam(value string) (core.Period, bool) {
	parts := strings.SplitN(strings.TrimSpace(value), "-", 2)
	if len(parts) != 2 {
		return core.Period{}, false
	}

	month, err := strconv.Atoi(parts[0])
	if err != nil {
		return core.Period{}, false
	}
	year, err := strconv.Atoi(parts[1])
	if err != nil {
		return core.Period{}, false
	}

	p := core.Period{Month: month, Year: year}
	if err := p.Validate(); err != nil {
		return core.Period{}, false
	}
	return p, true
}

// ParseDownloadPeriod resolves the report period for a download request,
// preferring month_year over separate month/year params.
func ParseDownloadPeriod(query url.Values) core.Period {
	if p, ok := ParseMonthYearParam(query.Get("month_year")); ok {
		return p
	}
	return ParsePeriodParams(query)
}

// RequireMethod checks if the request method matches the expected method(s).
// Returns an error response builder if the method doesn't match.
func RequireMethod(r *http.Request, methods ...string) *HTMXResponseBuilder {
	for _, m := range methods {
		if r.Method == m {
			return nil
		}
	}
	return MethodNotAllowedError(strings.Join(methods, ", "))
}

// RequirePOST is a convenience function for POST-only handlers.
func RequirePOST(r *http.Request) *HTMXResponseBuilder {
	return RequireMethod(r, http.MethodPost)
}

// ParseFormOrFail parses the request form and returns an error response on failure.
// Returns nil on success.
func ParseFormOrFail(r *http.Request) *HTMXResponseBuilder {
	if err := r.ParseForm(); err != nil {
		return BadRequestError("Invalid request format")
	}
	return nil
}

// formInt64 reads a form value as int64, returning 0 when absent or invalid.
func formInt64(form url.Values, key string) int64 {
	v := strings.TrimSpace(form.Get(key))
	if v == "" {
		return 0
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0
	}
	return n
}
