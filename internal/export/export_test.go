package export

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"outlay/internal/core"
)

func sampleReport() Report {
	return Report{
		Period: core.Period{Month: 3, Year: 2024},
		Lines: []Line{
			{
				Date:        time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC),
				Category:    "Food",
				Description: "Groceries",
				Amount:      core.Money{Cents: 5000},
			},
			{
				Date:        time.Date(2024, 3, 12, 0, 0, 0, 0, time.UTC),
				Category:    "Transport",
				Description: "Bus pass",
				Amount:      core.Money{Cents: 1250},
			},
		},
		Total: core.Money{Cents: 6250},
		Summary: []core.CategoryReportRow{
			{Category: "Food", Budget: core.Money{Cents: 10000}, Spent: core.Money{Cents: 5000}, Remaining: core.Money{Cents: 5000}, Status: core.StatusOK},
			{Category: "Transport", Budget: core.Money{Cents: 1000}, Spent: core.Money{Cents: 1250}, Remaining: core.Money{Cents: -250}, Status: core.StatusExceeded},
		},
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, sampleReport()); err != nil {
		t.Fatalf("WriteCSV() error = %v", err)
	}

	cr := csv.NewReader(strings.NewReader(buf.String()))
	cr.FieldsPerRecord = -1
	records, err := cr.ReadAll()
	if err != nil {
		t.Fatalf("generated CSV does not parse: %v", err)
	}

	if got := records[0][0]; got != "Expense Report for 3/2024" {
		t.Errorf("title = %q, want %q", got, "Expense Report for 3/2024")
	}

	var foundExpense, foundTotal, foundSummary bool
	for _, rec := range records {
		switch {
		case len(rec) == 4 && rec[0] == "2024-03-05":
			foundExpense = true
			if rec[3] != "50.00" {
				t.Errorf("expense amount = %q, want %q", rec[3], "50.00")
			}
		case len(rec) >= 2 && rec[0] == "Total Spent":
			foundTotal = true
			if rec[1] != "62.50" {
				t.Errorf("total = %q, want %q", rec[1], "62.50")
			}
		case len(rec) == 5 && rec[0] == "Transport":
			foundSummary = true
			if rec[3] != "-2.50" {
				t.Errorf("remaining = %q, want %q", rec[3], "-2.50")
			}
			if rec[4] != string(core.StatusExceeded) {
				t.Errorf("status = %q, want %q", rec[4], core.StatusExceeded)
			}
		}
	}
	if !foundExpense || !foundTotal || !foundSummary {
		t.Errorf("missing sections: expense=%v total=%v summary=%v", foundExpense, foundTotal, foundSummary)
	}
}

func TestWriteCSVEmptyMonth(t *testing.T) {
	r := Report{Period: core.Period{Month: 1, Year: 2025}, Total: core.Money{}}
	var buf bytes.Buffer
	if err := WriteCSV(&buf, r); err != nil {
		t.Fatalf("WriteCSV() error = %v", err)
	}
	if !strings.Contains(buf.String(), "Total Spent,0.00") {
		t.Errorf("empty month should still carry a zero total, got:\n%s", buf.String())
	}
}

func TestWritePDF(t *testing.T) {
	var buf bytes.Buffer
	if err := WritePDF(&buf, sampleReport()); err != nil {
		t.Fatalf("WritePDF() error = %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF")) {
		t.Errorf("output does not start with a PDF header")
	}
	if buf.Len() < 500 {
		t.Errorf("PDF suspiciously small: %d bytes", buf.Len())
	}
}

func TestFilename(t *testing.T) {
	r := Report{Period: core.Period{Month: 3, Year: 2024}}
	if got := r.Filename("csv"); got != "report_3_2024.csv" {
		t.Errorf("Filename = %q, want %q", got, "report_3_2024.csv")
	}
}
