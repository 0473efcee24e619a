package core

import (
	"errors"
	"strings"
	"time"
)

type (
	// Period identifies one calendar month of expense and budget data.
	// Month and Year are always plain integers at every boundary so
	// fractional values from sloppy extraction can never creep in.
	Period struct {
		Month int // 1-12
		Year  int // 4-digit
	}

	Money struct {
		Cents int64
	}

	User struct {
		ID       int64
		Username string
		Email    string
	}

	Category struct {
		ID   int64
		Name string
	}

	Expense struct {
		ID          int64
		UserID      int64
		CategoryID  int64
		Amount      Money
		Description string
		Date        time.Time
		IsShared    bool
	}

	// Budget caps spending for one (user, category, month, year) tuple.
	// At most one row exists per tuple; the storage layer enforces this
	// with find-then-update-or-insert rather than a uniqueness constraint.
	Budget struct {
		ID         int64
		UserID     int64
		CategoryID int64
		Amount     Money
		Period     Period
	}

	// SharedExpense records that another user owes half of a recorded
	// expense. Settled has no code path that sets it true; the settlement
	// workflow is out of scope.
	SharedExpense struct {
		ID           int64
		ExpenseID    int64
		OwedByUserID int64
		AmountOwed   Money
		Settled      bool
	}
)

// BudgetStatus classifies spending against a budget.
type BudgetStatus string

const (
	StatusOK       BudgetStatus = "OK"
	StatusWarning  BudgetStatus = "Warning"
	StatusExceeded BudgetStatus = "Exceeded"
)

// AlertLevel is the severity of a budget alert.
type AlertLevel string

const (
	AlertNone     AlertLevel = "None"
	AlertWarning  AlertLevel = "Warning"
	AlertExceeded AlertLevel = "Exceeded"
)

var (
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrInvalidMonth     = errors.New("invalid month")
	ErrInvalidYear      = errors.New("invalid year")
	ErrInvalidDate      = errors.New("invalid date")
	ErrEmptyEmail       = errors.New("empty email")
	ErrCategoryNotFound = errors.New("category not found")
	ErrUserNotFound     = errors.New("user not found")
)

// DefaultCategories is the seed set created at first startup. "Other" doubles
// as the entry point for ad hoc custom categories at expense-entry time.
var DefaultCategories = []string{"Food", "Transport", "Entertainment", "Utilities", "Rent", "Other"}

// OtherCategory is the placeholder name that unlocks the custom-category path.
const OtherCategory = "Other"

func (p Period) Validate() error {
	if p.Month < 1 || p.Month > 12 {
		return ErrInvalidMonth
	}
	if p.Year < 1000 || p.Year > 9999 {
		return ErrInvalidYear
	}
	return nil
}

// Before reports whether p is an earlier calendar month than other.
func (p Period) Before(other Period) bool {
	if p.Year != other.Year {
		return p.Year < other.Year
	}
	return p.Month < other.Month
}

// PeriodOf extracts the calendar period an expense date falls in.
func PeriodOf(t time.Time) Period {
	return Period{Month: int(t.Month()), Year: t.Year()}
}

// ClassifyBudget derives the OK/Warning/Exceeded status for a category row.
// A zero budget means "no budget set", not "zero allowance": spending against
// it never warns. This mirrors the long-standing reporting behavior and is a
// policy choice, not a defect.
func ClassifyBudget(budget, spent Money) BudgetStatus {
	if budget.Cents <= 0 {
		return StatusOK
	}
	if spent.Cents > budget.Cents {
		return StatusExceeded
	}
	// Warning above 90% of budget. Integer math keeps the threshold exact.
	if spent.Cents*10 > budget.Cents*9 {
		return StatusWarning
	}
	return StatusOK
}

// AlertLevelFor maps a budget status to the alert severity raised after an
// expense is recorded.
func AlertLevelFor(status BudgetStatus) AlertLevel {
	switch status {
	case StatusExceeded:
		return AlertExceeded
	case StatusWarning:
		return AlertWarning
	default:
		return AlertNone
	}
}

func (e Expense) Validate() error {
	if err := e.Amount.Validate(); err != nil {
		return err
	}
	if e.Date.IsZero() {
		return ErrInvalidDate
	}
	if len(e.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	if e.CategoryID <= 0 {
		return ErrCategoryNotFound
	}
	return nil
}

// UsernameFromEmail derives a default display name from an email's local
// part, used when a split partner is created on the fly.
func UsernameFromEmail(email string) string {
	if i := strings.Index(email, "@"); i > 0 {
		return email[:i]
	}
	return email
}

// HalfOf returns the 50/50 split share of an amount. On odd cent totals the
// extra cent stays with the payer.
func HalfOf(m Money) Money {
	return Money{Cents: m.Cents / 2}
}
