package http

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"outlay/internal/core"
)

// parseDate parses a date string in YYYY-MM-DD format.
func parseDate(dateStr string) (time.Time, error) {
	return time.Parse("2006-01-02", dateStr)
}

// formatAmount formats a monetary value as a dollar string (e.g., "$12.34").
func formatAmount(m core.Money) string {
	if m.Cents < 0 {
		return "-$" + core.Money{Cents: -m.Cents}.String()
	}
	return "$" + m.String()
}

// formatPeriod renders a period as "3/2024" for selectors and titles.
func formatPeriod(p core.Period) string {
	return strconv.Itoa(p.Month) + "/" + strconv.Itoa(p.Year)
}

// sanitizeInput removes potentially dangerous characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	result := strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
	return result
}

// generateRequestID creates a unique request ID for tracing.
func generateRequestID() string {
	return "req_" + uuid.NewString()
}
