package http

import (
	"context"
	"fmt"
	"net/http"

	"outlay/internal/core"
	"outlay/internal/export"
	applog "outlay/internal/log"
)

// reportView is the cached data behind the report page for one period.
type reportView struct {
	Period core.Period
	Rows   []core.CategoryReportRow
	Total  core.Money
}

func (s *Server) getReport(ctx context.Context, p core.Period) (reportView, error) {
	key := s.viewCacheKey(p.Month, p.Year)
	if view, found := s.reportCache.Get(key); found {
		s.logger.DebugContext(ctx, "Report cache hit",
			applog.FieldMonth, p.Month, applog.FieldYear, p.Year)
		return view, nil
	}

	rows, err := s.reports.CategoryReport(ctx, s.userID, p)
	if err != nil {
		return reportView{}, fmt.Errorf("category report: %w", err)
	}
	total, err := s.reports.TotalSpent(ctx, s.userID, p)
	if err != nil {
		return reportView{}, fmt.Errorf("total spent: %w", err)
	}

	view := reportView{Period: p, Rows: rows, Total: total}
	s.reportCache.Set(key, view)
	return view, nil
}

type reportRow struct {
	Category  string
	Budget    string
	Spent     string
	Remaining string
	Status    string
	NoBudget  bool
}

type reportPage struct {
	Month   int
	Year    int
	Total   string
	Rows    []reportRow
	Periods []periodOption
}

func (s *Server) handleReports(w http.ResponseWriter, r *http.Request) {
	if resp := RequireMethod(r, http.MethodGet); resp != nil {
		resp.Write(w)
		return
	}
	if s.templates == nil {
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}

	period := ParsePeriodParams(r.URL.Query())
	view, err := s.getReport(r.Context(), period)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Report data error",
			applog.FieldError, err,
			applog.FieldMonth, period.Month,
			applog.FieldYear, period.Year)
		http.Error(w, "failed to load report", http.StatusInternalServerError)
		return
	}

	// Anchor on the viewed period so it stays selectable even with no data.
	periods, err := s.reports.AvailablePeriods(r.Context(), s.userID, period)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Available periods error", applog.FieldError, err)
		http.Error(w, "failed to load report", http.StatusInternalServerError)
		return
	}

	data := reportPage{
		Month: period.Month,
		Year:  period.Year,
		Total: formatAmount(view.Total),
	}
	for _, row := range view.Rows {
		data.Rows = append(data.Rows, reportRow{
			Category:  row.Category,
			Budget:    formatAmount(row.Budget),
			Spent:     formatAmount(row.Spent),
			Remaining: formatAmount(row.Remaining),
			Status:    string(row.Status),
			NoBudget:  row.Budget.Cents == 0,
		})
	}
	for _, p := range periods {
		data.Periods = append(data.Periods, periodOption{
			Label:    formatPeriod(p),
			Month:    p.Month,
			Year:     p.Year,
			Selected: p == period,
		})
	}

	if err := s.templates.ExecuteTemplate(w, "reports.html", data); err != nil {
		s.logger.ErrorContext(r.Context(), "Report template execution failed",
			applog.FieldError, err, "template", "reports.html")
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// buildExportReport assembles the full document for a download.
func (s *Server) buildExportReport(ctx context.Context, p core.Period) (export.Report, error) {
	details, err := s.repo.ListExpenses(ctx, s.userID, p)
	if err != nil {
		return export.Report{}, fmt.Errorf("list expenses: %w", err)
	}
	view, err := s.getReport(ctx, p)
	if err != nil {
		return export.Report{}, err
	}

	doc := export.Report{
		Period:  p,
		Total:   view.Total,
		Summary: view.Rows,
	}
	for _, d := range details {
		doc.Lines = append(doc.Lines, export.Line{
			Date:        d.Expense.Date,
			Category:    d.CategoryName,
			Description: d.Expense.Description,
			Amount:      d.Expense.Amount,
		})
	}
	return doc, nil
}

func (s *Server) handleReportDownload(w http.ResponseWriter, r *http.Request) {
	if resp := RequireMethod(r, http.MethodGet); resp != nil {
		resp.Write(w)
		return
	}

	period := ParseDownloadPeriod(r.URL.Query())
	doc, err := s.buildExportReport(r.Context(), period)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Report export failed",
			applog.FieldError, err,
			applog.FieldOperation, applog.OpExport,
			applog.FieldMonth, period.Month,
			applog.FieldYear, period.Year)
		http.Error(w, "failed to build report", http.StatusInternalServerError)
		return
	}

	format := sanitizeInput(r.URL.Query().Get("format"))
	switch format {
	case "csv":
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", `attachment; filename="`+doc.Filename("csv")+`"`)
		err = export.WriteCSV(w, doc)
	case "", "pdf":
		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", `attachment; filename="`+doc.Filename("pdf")+`"`)
		err = export.WritePDF(w, doc)
	default:
		BadRequestError("Unknown format: " + format).Write(w)
		return
	}

	if err != nil {
		// Headers are already sent; all we can do is log.
		s.logger.ErrorContext(r.Context(), "Report rendering failed",
			applog.FieldError, err,
			applog.FieldOperation, applog.OpExport,
			"format", format)
	}
}
