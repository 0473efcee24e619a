// Package alert re-evaluates budget thresholds after each recorded expense
// and pushes notifications through the configured sender.
package alert

import (
	"context"
	"fmt"
	"log/slog"

	"outlay/internal/core"
)

// Store is the slice of the ledger alert evaluation reads from.
type Store interface {
	GetBudget(ctx context.Context, userID, categoryID int64, p core.Period) (*core.Budget, error)
	SumExpensesByCategory(ctx context.Context, userID, categoryID int64, p core.Period) (core.Money, error)
}

// Notifier delivers a budget notification. Failures are logged and swallowed;
// a lost notification never fails the expense that triggered it.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// Notification is the payload handed to the notification sender.
type Notification struct {
	Level    core.AlertLevel
	Category string
	Period   core.Period
	Message  string
}

// Result is what the web layer surfaces to the acting user as a flash.
type Result struct {
	Level   core.AlertLevel
	Message string
}

type Evaluator struct {
	store    Store
	notifier Notifier
}

// NewEvaluator builds an evaluator. A nil notifier degrades to log-only
// delivery, used when no broker is configured.
func NewEvaluator(store Store, notifier Notifier) *Evaluator {
	return &Evaluator{store: store, notifier: notifier}
}

// Evaluate re-runs the threshold check for one (user, category, period). No
// budget for the tuple means no alert, silently. It is called fresh after
// every recorded expense; there is no standing subscription.
func (e *Evaluator) Evaluate(ctx context.Context, userID int64, category core.Category, p core.Period) (Result, error) {
	budget, err := e.store.GetBudget(ctx, userID, category.ID, p)
	if err != nil {
		return Result{Level: core.AlertNone}, fmt.Errorf("evaluate alert budget: %w", err)
	}
	if budget == nil {
		return Result{Level: core.AlertNone}, nil
	}

	spent, err := e.store.SumExpensesByCategory(ctx, userID, category.ID, p)
	if err != nil {
		return Result{Level: core.AlertNone}, fmt.Errorf("evaluate alert spend: %w", err)
	}

	level := core.AlertLevelFor(core.ClassifyBudget(budget.Amount, spent))
	if level == core.AlertNone {
		return Result{Level: core.AlertNone}, nil
	}

	var flash, notice string
	switch level {
	case core.AlertExceeded:
		flash = fmt.Sprintf("ALERT: You have exceeded your budget for %s!", category.Name)
		notice = fmt.Sprintf("Budget Exceeded: %s", category.Name)
	case core.AlertWarning:
		flash = fmt.Sprintf("WARNING: You have used over 90%% of your budget for %s!", category.Name)
		notice = fmt.Sprintf("Budget Warning: %s is 90%% used", category.Name)
	}

	e.send(ctx, Notification{
		Level:    level,
		Category: category.Name,
		Period:   p,
		Message:  notice,
	})

	return Result{Level: level, Message: flash}, nil
}

func (e *Evaluator) send(ctx context.Context, n Notification) {
	if e.notifier == nil {
		slog.InfoContext(ctx, "Notification sender not configured, logging only",
			"level", string(n.Level),
			"category", n.Category,
			"message", n.Message)
		return
	}
	if err := e.notifier.Notify(ctx, n); err != nil {
		// Fire and forget: the user still gets the in-page flash.
		slog.ErrorContext(ctx, "Failed to send budget notification",
			"error", err,
			"level", string(n.Level),
			"category", n.Category)
	}
}
