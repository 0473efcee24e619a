package http

import (
	"context"
	"fmt"
	"net/http"

	"outlay/internal/core"
	applog "outlay/internal/log"
	"outlay/internal/storage"
)

// dashboardView is the cached data behind the landing page.
type dashboardView struct {
	Period    core.Period
	Total     core.Money
	Summaries []core.PeriodTotal
	Periods   []core.Period
	Recent    []storage.ExpenseDetail
}

const recentExpenseCount = 5

func (s *Server) getDashboard(ctx context.Context, p core.Period) (dashboardView, error) {
	key := s.viewCacheKey(p.Month, p.Year)
	if view, found := s.dashboardCache.Get(key); found {
		s.logger.DebugContext(ctx, "Dashboard cache hit",
			applog.FieldMonth, p.Month, applog.FieldYear, p.Year)
		return view, nil
	}

	total, err := s.reports.TotalSpent(ctx, s.userID, p)
	if err != nil {
		return dashboardView{}, fmt.Errorf("total spent: %w", err)
	}
	summaries, err := s.reports.MonthlySummaries(ctx, s.userID)
	if err != nil {
		return dashboardView{}, fmt.Errorf("monthly summaries: %w", err)
	}
	// Anchor on the viewed period so it stays selectable even with no data.
	periods, err := s.reports.AvailablePeriods(ctx, s.userID, p)
	if err != nil {
		return dashboardView{}, fmt.Errorf("available periods: %w", err)
	}
	recent, err := s.repo.RecentExpenses(ctx, s.userID, recentExpenseCount)
	if err != nil {
		return dashboardView{}, fmt.Errorf("recent expenses: %w", err)
	}

	view := dashboardView{
		Period:    p,
		Total:     total,
		Summaries: summaries,
		Periods:   periods,
		Recent:    recent,
	}
	s.dashboardCache.Set(key, view)
	return view, nil
}

// periodOption is one entry of the month selector.
type periodOption struct {
	Label    string
	Month    int
	Year     int
	Selected bool
}

type summaryRow struct {
	Label  string
	Amount string
}

type expenseRow struct {
	Date        string
	Category    string
	Description string
	Amount      string
	Shared      bool
}

type dashboardPage struct {
	Month     int
	Year      int
	Total     string
	Summaries []summaryRow
	Periods   []periodOption
	Recent    []expenseRow
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		NotFoundError("Page not found").Write(w)
		return
	}
	if resp := RequireMethod(r, http.MethodGet); resp != nil {
		resp.Write(w)
		return
	}
	if s.templates == nil {
		s.logger.ErrorContext(r.Context(), "Templates not loaded", applog.FieldPath, r.URL.Path)
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}

	period := ParsePeriodParams(r.URL.Query())
	view, err := s.getDashboard(r.Context(), period)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Dashboard data error",
			applog.FieldError, err,
			applog.FieldMonth, period.Month,
			applog.FieldYear, period.Year)
		http.Error(w, "failed to load dashboard", http.StatusInternalServerError)
		return
	}

	data := dashboardPage{
		Month: period.Month,
		Year:  period.Year,
		Total: formatAmount(view.Total),
	}
	for _, pt := range view.Summaries {
		data.Summaries = append(data.Summaries, summaryRow{
			Label:  formatPeriod(pt.Period),
			Amount: formatAmount(pt.Total),
		})
	}
	for _, p := range view.Periods {
		data.Periods = append(data.Periods, periodOption{
			Label:    formatPeriod(p),
			Month:    p.Month,
			Year:     p.Year,
			Selected: p == period,
		})
	}
	for _, e := range view.Recent {
		data.Recent = append(data.Recent, expenseRow{
			Date:        e.Expense.Date.Format("2006-01-02"),
			Category:    e.CategoryName,
			Description: e.Expense.Description,
			Amount:      formatAmount(e.Expense.Amount),
			Shared:      e.Expense.IsShared,
		})
	}

	if err := s.templates.ExecuteTemplate(w, "index.html", data); err != nil {
		s.logger.ErrorContext(r.Context(), "Dashboard template execution failed",
			applog.FieldError, err, "template", "index.html")
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
