package http

import (
	"net/http"
	"strconv"
	"time"

	"outlay/internal/core"
	applog "outlay/internal/log"
)

type budgetFormPage struct {
	Categories []core.Category
	Month      int
	Year       int
}

func (s *Server) handleBudgets(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.renderBudgetForm(w, r)
	case http.MethodPost:
		s.setBudget(w, r)
	default:
		MethodNotAllowedError("GET, POST").Write(w)
	}
}

func (s *Server) renderBudgetForm(w http.ResponseWriter, r *http.Request) {
	if s.templates == nil {
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}

	categories, err := s.repo.ListCategories(r.Context())
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Category listing failed", applog.FieldError, err)
		http.Error(w, "failed to load categories", http.StatusInternalServerError)
		return
	}

	now := time.Now()
	data := budgetFormPage{
		Categories: categories,
		Month:      int(now.Month()),
		Year:       now.Year(),
	}
	if err := s.templates.ExecuteTemplate(w, "set_budget.html", data); err != nil {
		s.logger.ErrorContext(r.Context(), "Budget form template failed",
			applog.FieldError, err, "template", "set_budget.html")
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (s *Server) setBudget(w http.ResponseWriter, r *http.Request) {
	if resp := ParseFormOrFail(r); resp != nil {
		resp.Write(w)
		return
	}

	cents, err := core.ParseBudgetCents(sanitizeInput(r.Form.Get("amount")))
	if err != nil {
		UnprocessableEntityError("Invalid budget amount").Write(w)
		return
	}

	month, err := strconv.Atoi(sanitizeInput(r.Form.Get("month")))
	if err != nil {
		UnprocessableEntityError("Invalid month").Write(w)
		return
	}
	year, err := strconv.Atoi(sanitizeInput(r.Form.Get("year")))
	if err != nil {
		UnprocessableEntityError("Invalid year").Write(w)
		return
	}

	period := core.Period{Month: month, Year: year}
	categoryID := formInt64(r.Form, "category_id")

	budget, err := s.budgets.Set(r.Context(), s.userID, categoryID, period, core.Money{Cents: cents})
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Budget update failed",
			applog.FieldError, err,
			applog.FieldMonth, month,
			applog.FieldYear, year)
		UnprocessableEntityError("Could not set budget: " + err.Error()).Write(w)
		return
	}

	s.invalidateViews()
	s.logger.InfoContext(r.Context(), "Budget saved",
		"budget_id", budget.ID,
		applog.FieldBudgetCents, budget.Amount.Cents,
		applog.FieldMonth, month,
		applog.FieldYear, year)

	NewHTMXResponse().
		TriggerBudgetSet(period.Year, period.Month).
		TriggerFormReset().
		TriggerSuccessNotification("Budget set successfully!").
		BodyHTML(`<div class="success">Budget set successfully!</div>`).
		Write(w)
}
