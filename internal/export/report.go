// Package export renders a monthly expense report as a downloadable CSV or
// PDF document.
package export

import (
	"fmt"
	"time"

	"outlay/internal/core"
)

// Line is one expense row of the exported report.
type Line struct {
	Date        time.Time
	Category    string
	Description string
	Amount      core.Money
}

// Report is everything a rendered document needs: the raw expenses of the
// month, their total, and the per-category budget summary.
type Report struct {
	Period  core.Period
	Lines   []Line
	Total   core.Money
	Summary []core.CategoryReportRow
}

func (r Report) title() string {
	return fmt.Sprintf("Expense Report for %d/%d", r.Period.Month, r.Period.Year)
}

// Filename returns the suggested download name, e.g. "report_3_2024.csv".
func (r Report) Filename(ext string) string {
	return fmt.Sprintf("report_%d_%d.%s", r.Period.Month, r.Period.Year, ext)
}
