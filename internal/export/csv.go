package export

import (
	"encoding/csv"
	"fmt"
	"io"
)

const dateLayout = "2006-01-02"

// WriteCSV renders the report as CSV: a title row, the expense listing, the
// month total, then the per-category budget summary.
func WriteCSV(w io.Writer, r Report) error {
	cw := csv.NewWriter(w)

	records := [][]string{
		{r.title()},
		{},
		{"Date", "Category", "Description", "Amount"},
	}
	for _, line := range r.Lines {
		records = append(records, []string{
			line.Date.Format(dateLayout),
			line.Category,
			line.Description,
			line.Amount.String(),
		})
	}
	records = append(records,
		[]string{},
		[]string{"Total Spent", r.Total.String()},
		[]string{},
		[]string{"Budget Summary"},
		[]string{"Category", "Budget", "Spent", "Remaining", "Status"},
	)
	for _, row := range r.Summary {
		records = append(records, []string{
			row.Category,
			row.Budget.String(),
			row.Spent.String(),
			row.Remaining.String(),
			string(row.Status),
		})
	}

	if err := cw.WriteAll(records); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}
