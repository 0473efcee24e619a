package http

import (
	"html/template"
	"net/http"
	"time"

	"outlay/internal/core"
	applog "outlay/internal/log"
	"outlay/internal/services"
)

type expenseFormPage struct {
	Categories []core.Category
	Today      string
}

func (s *Server) handleExpenses(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.renderExpenseForm(w, r)
	case http.MethodPost:
		s.createExpense(w, r)
	default:
		MethodNotAllowedError("GET, POST").Write(w)
	}
}

func (s *Server) renderExpenseForm(w http.ResponseWriter, r *http.Request) {
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

	data := expenseFormPage{
		Categories: categories,
		Today:      time.Now().Format("2006-01-02"),
	}
	if err := s.templates.ExecuteTemplate(w, "add_expense.html", data); err != nil {
		s.logger.ErrorContext(r.Context(), "Expense form template failed",
			applog.FieldError, err, "template", "add_expense.html")
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (s *Server) createExpense(w http.ResponseWriter, r *http.Request) {
	if resp := ParseFormOrFail(r); resp != nil {
		resp.Write(w)
		return
	}

	amountStr := sanitizeInput(r.Form.Get("amount"))
	cents, err := core.ParseDecimalToCents(amountStr)
	if err != nil {
		UnprocessableEntityError("Invalid amount").Write(w)
		return
	}

	date, err := parseDate(sanitizeInput(r.Form.Get("date")))
	if err != nil {
		UnprocessableEntityError("Invalid date").Write(w)
		return
	}

	in := services.RecordInput{
		UserID:         s.userID,
		CategoryID:     formInt64(r.Form, "category_id"),
		CustomCategory: sanitizeInput(r.Form.Get("custom_category")),
		Amount:         core.Money{Cents: cents},
		Description:    sanitizeInput(r.Form.Get("description")),
		Date:           date,
		SplitWithEmail: sanitizeInput(r.Form.Get("split_with_email")),
	}

	result, err := s.expenses.Record(r.Context(), in)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Expense creation failed",
			applog.FieldError, err,
			applog.FieldAmountCents, cents)
		UnprocessableEntityError("Could not save expense: " + err.Error()).Write(w)
		return
	}

	s.structLog.LogExpenseCreated(r.Context(), result.Expense.ID, result.CategoryName,
		result.Expense.Amount.Cents, result.Expense.IsShared)
	s.invalidateViews()

	body := `<div class="success">Expense added successfully!</div>`
	if result.SplitMessage != "" {
		body += `<div class="info">` + template.HTMLEscapeString(result.SplitMessage) + `</div>`
	}

	builder := NewHTMXResponse().
		TriggerExpenseCreated(date.Year(), int(date.Month())).
		TriggerFormReset()

	// The budget alert, when raised, outranks the plain success toast.
	switch result.Alert.Level {
	case core.AlertExceeded:
		body += `<div class="error">` + template.HTMLEscapeString(result.Alert.Message) + `</div>`
		builder.TriggerErrorNotification(result.Alert.Message)
	case core.AlertWarning:
		body += `<div class="warning">` + template.HTMLEscapeString(result.Alert.Message) + `</div>`
		builder.TriggerWarningNotification(result.Alert.Message)
	default:
		builder.TriggerSuccessNotification("Expense added successfully!")
	}

	builder.BodyHTML(body).Write(w)
}
