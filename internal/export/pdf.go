package export

import (
	"fmt"
	"io"

	"github.com/jung-kurt/gofpdf"
)

// WritePDF renders the report as a single-page-flow PDF with the same
// content as the CSV export.
func WritePDF(w io.Writer, r Report) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, r.title(), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 10)
	expenseWidths := []float64{30, 40, 80, 30}
	for i, h := range []string{"Date", "Category", "Description", "Amount"} {
		pdf.CellFormat(expenseWidths[i], 7, h, "1", 0, "L", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 10)
	for _, line := range r.Lines {
		pdf.CellFormat(expenseWidths[0], 7, line.Date.Format(dateLayout), "1", 0, "L", false, 0, "")
		pdf.CellFormat(expenseWidths[1], 7, line.Category, "1", 0, "L", false, 0, "")
		pdf.CellFormat(expenseWidths[2], 7, line.Description, "1", 0, "L", false, 0, "")
		pdf.CellFormat(expenseWidths[3], 7, line.Amount.String(), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}

	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(150, 7, "Total Spent", "1", 0, "L", false, 0, "")
	pdf.CellFormat(30, 7, r.Total.String(), "1", 0, "R", false, 0, "")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 8, "Budget Summary", "", 1, "L", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont("Helvetica", "B", 10)
	summaryWidths := []float64{50, 32, 32, 32, 34}
	for i, h := range []string{"Category", "Budget", "Spent", "Remaining", "Status"} {
		pdf.CellFormat(summaryWidths[i], 7, h, "1", 0, "L", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 10)
	for _, row := range r.Summary {
		pdf.CellFormat(summaryWidths[0], 7, row.Category, "1", 0, "L", false, 0, "")
		pdf.CellFormat(summaryWidths[1], 7, row.Budget.String(), "1", 0, "R", false, 0, "")
		pdf.CellFormat(summaryWidths[2], 7, row.Spent.String(), "1", 0, "R", false, 0, "")
		pdf.CellFormat(summaryWidths[3], 7, row.Remaining.String(), "1", 0, "R", false, 0, "")
		pdf.CellFormat(summaryWidths[4], 7, string(row.Status), "1", 0, "L", false, 0, "")
		pdf.Ln(-1)
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}
	return nil
}
