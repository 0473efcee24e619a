package services

import (
	"context"
	"fmt"
	"log/slog"

	"outlay/internal/core"
	"outlay/internal/storage"
)

// BudgetService sets monthly per-category budgets.
type BudgetService struct {
	storage *storage.Repository
}

func NewBudgetService(storage *storage.Repository) *BudgetService {
	return &BudgetService{storage: storage}
}

// Set writes the budget for one (category, month) pair, replacing any
// previous value. A zero amount is allowed and means "no budget set".
func (s *BudgetService) Set(ctx context.Context, userID, categoryID int64, p core.Period, amount core.Money) (core.Budget, error) {
	if err := p.Validate(); err != nil {
		return core.Budget{}, err
	}
	if amount.Cents < 0 {
		return core.Budget{}, core.ErrInvalidAmount
	}
	if _, err := s.storage.GetCategory(ctx, categoryID); err != nil {
		return core.Budget{}, err
	}

	budget, err := s.storage.UpsertBudget(ctx, userID, categoryID, p, amount)
	if err != nil {
		return core.Budget{}, fmt.Errorf("save budget: %w", err)
	}

	slog.InfoContext(ctx, "Budget set",
		"user_id", userID,
		"category_id", categoryID,
		"month", p.Month,
		"year", p.Year,
		"amount", amount.String())

	return budget, nil
}
