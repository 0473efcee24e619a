// Package report implements the budget and spending aggregation queries that
// back the dashboard, the reports page and the exporters.
package report

import (
	"context"
	"fmt"
	"sort"

	"outlay/internal/core"
)

// Store is the slice of the ledger the engine reads from.
type Store interface {
	ListCategories(ctx context.Context) ([]core.Category, error)
	GetBudget(ctx context.Context, userID, categoryID int64, p core.Period) (*core.Budget, error)
	SumExpenses(ctx context.Context, userID int64, p core.Period) (core.Money, error)
	SumExpensesByCategory(ctx context.Context, userID, categoryID int64, p core.Period) (core.Money, error)
	PeriodTotals(ctx context.Context, userID int64) ([]core.PeriodTotal, error)
	ExpensePeriods(ctx context.Context, userID int64) ([]core.Period, error)
	BudgetPeriods(ctx context.Context, userID int64) ([]core.Period, error)
}

type Engine struct {
	store Store
}

func NewEngine(store Store) *Engine {
	return &Engine{store: store}
}

// CategoryReport returns one row per category, in category listing order,
// whether or not the category has a budget or any spend in the period.
// A missing budget reports as zero and always classifies OK.
func (e *Engine) CategoryReport(ctx context.Context, userID int64, p core.Period) ([]core.CategoryReportRow, error) {
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("category report period: %w", err)
	}

	cats, err := e.store.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("category report: %w", err)
	}

	rows := make([]core.CategoryReportRow, 0, len(cats))
	for _, cat := range cats {
		var budget core.Money
		b, err := e.store.GetBudget(ctx, userID, cat.ID, p)
		if err != nil {
			return nil, fmt.Errorf("category report budget for %q: %w", cat.Name, err)
		}
		if b != nil {
			budget = b.Amount
		}

		spent, err := e.store.SumExpensesByCategory(ctx, userID, cat.ID, p)
		if err != nil {
			return nil, fmt.Errorf("category report spend for %q: %w", cat.Name, err)
		}

		rows = append(rows, core.CategoryReportRow{
			Category:   cat.Name,
			CategoryID: cat.ID,
			Budget:     budget,
			Spent:      spent,
			Remaining:  budget.Sub(spent),
			Status:     core.ClassifyBudget(budget, spent),
		})
	}
	return rows, nil
}

// TotalSpent sums the user's spending for one period; zero when there are
// no expenses.
func (e *Engine) TotalSpent(ctx context.Context, userID int64, p core.Period) (core.Money, error) {
	if err := p.Validate(); err != nil {
		return core.Money{}, fmt.Errorf("total spent period: %w", err)
	}
	return e.store.SumExpenses(ctx, userID, p)
}

// MonthlySummaries groups all of the user's expenses by calendar month,
// most recent period first.
func (e *Engine) MonthlySummaries(ctx context.Context, userID int64) ([]core.PeriodTotal, error) {
	return e.store.PeriodTotals(ctx, userID)
}

// AvailablePeriods returns every distinct period present in the user's
// expenses or budgets, deduplicated and sorted most recent first. The anchor
// period is prepended when absent so the currently viewed month is always
// selectable, even for a user with no data at all. The dashboard and reports
// selectors both go through here so they can never disagree.
func (e *Engine) AvailablePeriods(ctx context.Context, userID int64, anchor core.Period) ([]core.Period, error) {
	if err := anchor.Validate(); err != nil {
		return nil, fmt.Errorf("available periods anchor: %w", err)
	}

	expPeriods, err := e.store.ExpensePeriods(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("available periods (expenses): %w", err)
	}
	budPeriods, err := e.store.BudgetPeriods(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("available periods (budgets): %w", err)
	}

	seen := make(map[core.Period]bool, len(expPeriods)+len(budPeriods))
	periods := make([]core.Period, 0, len(expPeriods)+len(budPeriods))
	for _, p := range append(expPeriods, budPeriods...) {
		if !seen[p] {
			seen[p] = true
			periods = append(periods, p)
		}
	}

	sort.Slice(periods, func(i, j int) bool {
		return periods[j].Before(periods[i])
	})

	if !seen[anchor] {
		periods = append([]core.Period{anchor}, periods...)
	}
	return periods, nil
}
