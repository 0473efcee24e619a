// Package services provides business logic and orchestration services.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"outlay/internal/alert"
	"outlay/internal/core"
	"outlay/internal/storage"
)

// ExpenseService orchestrates expense creation: category resolution,
// persistence, optional 50/50 split, and budget alerting.
type ExpenseService struct {
	storage   *storage.Repository
	evaluator *alert.Evaluator
}

func NewExpenseService(storage *storage.Repository, evaluator *alert.Evaluator) *ExpenseService {
	return &ExpenseService{
		storage:   storage,
		evaluator: evaluator,
	}
}

// RecordInput is a fully parsed expense submission.
type RecordInput struct {
	UserID         int64
	CategoryID     int64
	CustomCategory string
	Amount         core.Money
	Description    string
	Date           time.Time
	SplitWithEmail string
}

// RecordResult is everything the web layer shows after a successful save.
type RecordResult struct {
	Expense      core.Expense
	CategoryName string
	Alert        alert.Result
	SplitMessage string
}

// Record validates and saves an expense, splits it if a partner email was
// given, and evaluates the category budget for the expense's month.
func (s *ExpenseService) Record(ctx context.Context, in RecordInput) (*RecordResult, error) {
	category, err := s.ResolveCategory(ctx, in.CategoryID, in.CustomCategory)
	if err != nil {
		return nil, err
	}

	expense := core.Expense{
		UserID:      in.UserID,
		CategoryID:  category.ID,
		Amount:      in.Amount,
		Description: strings.TrimSpace(in.Description),
		Date:        in.Date,
	}
	if err := expense.Validate(); err != nil {
		return nil, err
	}

	// Resolve the split partner before persisting anything, so a rejected
	// split never leaves an orphaned expense behind.
	var partner *core.User
	if email := strings.TrimSpace(in.SplitWithEmail); email != "" {
		p, err := s.resolveSplitPartner(ctx, in.UserID, email)
		if err != nil {
			return nil, err
		}
		partner = &p
	}

	if err := s.storage.CreateExpense(ctx, &expense); err != nil {
		return nil, fmt.Errorf("save expense: %w", err)
	}

	result := &RecordResult{
		Expense:      expense,
		CategoryName: category.Name,
	}

	if partner != nil {
		msg, err := s.splitExpense(ctx, &expense, *partner)
		if err != nil {
			return nil, err
		}
		result.Expense = expense
		result.SplitMessage = msg
	}

	// Alerting never fails the save; the expense is already on disk.
	alertResult, err := s.evaluator.Evaluate(ctx, in.UserID, category, core.PeriodOf(expense.Date))
	if err != nil {
		slog.ErrorContext(ctx, "Budget evaluation failed",
			"user_id", in.UserID,
			"category", category.Name,
			"error", err)
	} else {
		result.Alert = alertResult
	}

	return result, nil
}

// resolveSplitPartner finds or creates the partner account for a split. The
// payer cannot split with themselves.
func (s *ExpenseService) resolveSplitPartner(ctx context.Context, payerID int64, email string) (core.User, error) {
	partner, err := s.storage.EnsureUser(ctx, core.UsernameFromEmail(email), email)
	if err != nil {
		return core.User{}, fmt.Errorf("resolve split partner: %w", err)
	}
	if partner.ID == payerID {
		return core.User{}, fmt.Errorf("cannot split an expense with yourself")
	}
	return partner, nil
}

// splitExpense records that the partner owes half of the saved expense. The
// odd cent of an uneven amount stays with the payer.
func (s *ExpenseService) splitExpense(ctx context.Context, e *core.Expense, partner core.User) (string, error) {
	owed := core.HalfOf(e.Amount)
	shared := core.SharedExpense{
		ExpenseID:    e.ID,
		OwedByUserID: partner.ID,
		AmountOwed:   owed,
	}
	if err := s.storage.CreateSharedExpense(ctx, &shared); err != nil {
		return "", fmt.Errorf("save shared expense: %w", err)
	}
	if err := s.storage.MarkExpenseShared(ctx, e.ID); err != nil {
		return "", fmt.Errorf("mark expense shared: %w", err)
	}
	e.IsShared = true

	paid := e.Amount.Sub(owed)
	return fmt.Sprintf("Expense added and split with %s! You paid $%s, they owe $%s.",
		partner.Username, paid.String(), owed.String()), nil
}

// ResolveCategory maps a form selection to a stored category. Picking
// "Other" with a custom name reuses an existing category of that name
// (case-insensitive) or creates a new one.
func (s *ExpenseService) ResolveCategory(ctx context.Context, categoryID int64, customName string) (core.Category, error) {
	category, err := s.storage.GetCategory(ctx, categoryID)
	if err != nil {
		return core.Category{}, err
	}

	customName = strings.TrimSpace(customName)
	if category.Name != core.OtherCategory || customName == "" {
		return category, nil
	}

	existing, err := s.storage.FindCategoryByName(ctx, customName)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, core.ErrCategoryNotFound) {
		return core.Category{}, err
	}

	created, err := s.storage.CreateCategory(ctx, customName)
	if err != nil {
		return core.Category{}, fmt.Errorf("create category %q: %w", customName, err)
	}
	return created, nil
}
