// Package storage implements the durable ledger store on SQLite.
//
// All period filters run against the derived integer month/year columns so
// aggregation never depends on date-string parsing inside SQL.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"outlay/internal/core"

	_ "modernc.org/sqlite"
)

const dateLayout = "2006-01-02"

// ExpenseDetail is an expense joined with its category name, as listed on
// the dashboard and in exported reports.
type ExpenseDetail struct {
	Expense      core.Expense
	CategoryName string
}

type Repository struct {
	db *sql.DB
}

func NewRepository(dbPath string) (*Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Repository{db: db}, nil
}

func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping verifies the database connection, used by the readiness probe.
func (r *Repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// --- users ---

func (r *Repository) GetUser(ctx context.Context, id int64) (core.User, error) {
	var u core.User
	err := r.db.QueryRowContext(ctx,
		"SELECT id, username, email FROM users WHERE id = ?", id,
	).Scan(&u.ID, &u.Username, &u.Email)
	if errors.Is(err, sql.ErrNoRows) {
		return core.User{}, core.ErrUserNotFound
	}
	if err != nil {
		return core.User{}, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

func (r *Repository) GetUserByEmail(ctx context.Context, email string) (core.User, error) {
	var u core.User
	err := r.db.QueryRowContext(ctx,
		"SELECT id, username, email FROM users WHERE email = ?", email,
	).Scan(&u.ID, &u.Username, &u.Email)
	if errors.Is(err, sql.ErrNoRows) {
		return core.User{}, core.ErrUserNotFound
	}
	if err != nil {
		return core.User{}, fmt.Errorf("get user by email: %w", err)
	}
	return u, nil
}

func (r *Repository) CreateUser(ctx context.Context, username, email string) (core.User, error) {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO users (username, email) VALUES (?, ?)", username, email)
	if err != nil {
		return core.User{}, fmt.Errorf("create user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.User{}, fmt.Errorf("create user id: %w", err)
	}

	slog.InfoContext(ctx, "User created", "id", id, "username", username)
	return core.User{ID: id, Username: username, Email: email}, nil
}

// EnsureUser returns the user with the given email, creating it first if
// missing. This backs both the single-user default identity shim and the
// find-or-create path for split partners.
func (r *Repository) EnsureUser(ctx context.Context, username, email string) (core.User, error) {
	u, err := r.GetUserByEmail(ctx, email)
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, core.ErrUserNotFound) {
		return core.User{}, err
	}
	return r.CreateUser(ctx, username, email)
}

// --- categories ---

// ListCategories returns every category in id order, which is the natural
// listing order the report rows follow.
func (r *Repository) ListCategories(ctx context.Context) ([]core.Category, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT id, name FROM categories ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var cats []core.Category
	for rows.Next() {
		var c core.Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		cats = append(cats, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate categories: %w", err)
	}
	return cats, nil
}

func (r *Repository) GetCategory(ctx context.Context, id int64) (core.Category, error) {
	var c core.Category
	err := r.db.QueryRowContext(ctx,
		"SELECT id, name FROM categories WHERE id = ?", id,
	).Scan(&c.ID, &c.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Category{}, core.ErrCategoryNotFound
	}
	if err != nil {
		return core.Category{}, fmt.Errorf("get category: %w", err)
	}
	return c, nil
}

// FindCategoryByName matches case-insensitively so a custom "groceries"
// reuses an existing "Groceries".
func (r *Repository) FindCategoryByName(ctx context.Context, name string) (core.Category, error) {
	var c core.Category
	err := r.db.QueryRowContext(ctx,
		"SELECT id, name FROM categories WHERE lower(name) = lower(?)", name,
	).Scan(&c.ID, &c.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Category{}, core.ErrCategoryNotFound
	}
	if err != nil {
		return core.Category{}, fmt.Errorf("find category by name: %w", err)
	}
	return c, nil
}

func (r *Repository) CreateCategory(ctx context.Context, name string) (core.Category, error) {
	res, err := r.db.ExecContext(ctx, "INSERT INTO categories (name) VALUES (?)", name)
	if err != nil {
		return core.Category{}, fmt.Errorf("create category: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.Category{}, fmt.Errorf("create category id: %w", err)
	}

	slog.InfoContext(ctx, "Category created", "id", id, "name", name)
	return core.Category{ID: id, Name: name}, nil
}

// --- expenses ---

func (r *Repository) CreateExpense(ctx context.Context, e *core.Expense) error {
	p := core.PeriodOf(e.Date)
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO expenses (user_id, category_id, amount_cents, description, date, month, year, is_shared)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.UserID, e.CategoryID, e.Amount.Cents, e.Description,
		e.Date.Format(dateLayout), p.Month, p.Year, boolToInt(e.IsShared))
	if err != nil {
		return fmt.Errorf("create expense: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("create expense id: %w", err)
	}
	e.ID = id

	slog.InfoContext(ctx, "Expense saved",
		"id", e.ID,
		"description", e.Description,
		"amount_cents", e.Amount.Cents,
		"month", p.Month,
		"year", p.Year)
	return nil
}

// MarkExpenseShared flags an expense after its shared-expense row is created.
func (r *Repository) MarkExpenseShared(ctx context.Context, expenseID int64) error {
	if _, err := r.db.ExecContext(ctx,
		"UPDATE expenses SET is_shared = 1 WHERE id = ?", expenseID); err != nil {
		return fmt.Errorf("mark expense shared: %w", err)
	}
	return nil
}

// RecentExpenses returns the user's latest expenses, newest first.
func (r *Repository) RecentExpenses(ctx context.Context, userID int64, limit int) ([]ExpenseDetail, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT e.id, e.user_id, e.category_id, e.amount_cents, e.description, e.date, e.is_shared, c.name
		 FROM expenses e JOIN categories c ON c.id = e.category_id
		 WHERE e.user_id = ?
		 ORDER BY e.date DESC, e.id DESC
		 LIMIT ?`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("recent expenses: %w", err)
	}
	defer rows.Close()
	return scanExpenseDetails(rows)
}

// ListExpenses returns the user's expenses for one period in date order,
// the order exported reports print them in.
func (r *Repository) ListExpenses(ctx context.Context, userID int64, p core.Period) ([]ExpenseDetail, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT e.id, e.user_id, e.category_id, e.amount_cents, e.description, e.date, e.is_shared, c.name
		 FROM expenses e JOIN categories c ON c.id = e.category_id
		 WHERE e.user_id = ? AND e.month = ? AND e.year = ?
		 ORDER BY e.date, e.id`, userID, p.Month, p.Year)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()
	return scanExpenseDetails(rows)
}

func scanExpenseDetails(rows *sql.Rows) ([]ExpenseDetail, error) {
	var out []ExpenseDetail
	for rows.Next() {
		var (
			d       ExpenseDetail
			dateStr string
			shared  int
		)
		if err := rows.Scan(&d.Expense.ID, &d.Expense.UserID, &d.Expense.CategoryID,
			&d.Expense.Amount.Cents, &d.Expense.Description, &dateStr, &shared, &d.CategoryName); err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		t, err := time.Parse(dateLayout, dateStr)
		if err != nil {
			return nil, fmt.Errorf("parse expense date %q: %w", dateStr, err)
		}
		d.Expense.Date = t
		d.Expense.IsShared = shared != 0
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate expenses: %w", err)
	}
	return out, nil
}

// SumExpenses totals a user's spending for one period; zero when no rows.
func (r *Repository) SumExpenses(ctx context.Context, userID int64, p core.Period) (core.Money, error) {
	var cents int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(amount_cents), 0) FROM expenses
		 WHERE user_id = ? AND month = ? AND year = ?`,
		userID, p.Month, p.Year).Scan(&cents)
	if err != nil {
		return core.Money{}, fmt.Errorf("sum expenses: %w", err)
	}
	return core.Money{Cents: cents}, nil
}

func (r *Repository) SumExpensesByCategory(ctx context.Context, userID, categoryID int64, p core.Period) (core.Money, error) {
	var cents int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(amount_cents), 0) FROM expenses
		 WHERE user_id = ? AND category_id = ? AND month = ? AND year = ?`,
		userID, categoryID, p.Month, p.Year).Scan(&cents)
	if err != nil {
		return core.Money{}, fmt.Errorf("sum expenses by category: %w", err)
	}
	return core.Money{Cents: cents}, nil
}

// PeriodTotals groups all of a user's expenses by calendar month, most
// recent period first.
func (r *Repository) PeriodTotals(ctx context.Context, userID int64) ([]core.PeriodTotal, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT month, year, SUM(amount_cents) FROM expenses
		 WHERE user_id = ?
		 GROUP BY year, month
		 ORDER BY year DESC, month DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("period totals: %w", err)
	}
	defer rows.Close()

	var out []core.PeriodTotal
	for rows.Next() {
		var pt core.PeriodTotal
		if err := rows.Scan(&pt.Period.Month, &pt.Period.Year, &pt.Total.Cents); err != nil {
			return nil, fmt.Errorf("scan period total: %w", err)
		}
		out = append(out, pt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate period totals: %w", err)
	}
	return out, nil
}

// ExpensePeriods returns the distinct periods the user has expenses in.
func (r *Repository) ExpensePeriods(ctx context.Context, userID int64) ([]core.Period, error) {
	return r.distinctPeriods(ctx,
		"SELECT DISTINCT month, year FROM expenses WHERE user_id = ?", userID)
}

// --- budgets ---

// GetBudget looks up the budget for an exact (user, category, month, year)
// tuple. Absence is the valid "no budget set" state, reported as (nil, nil).
func (r *Repository) GetBudget(ctx context.Context, userID, categoryID int64, p core.Period) (*core.Budget, error) {
	var b core.Budget
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, category_id, amount_cents, month, year FROM budgets
		 WHERE user_id = ? AND category_id = ? AND month = ? AND year = ?`,
		userID, categoryID, p.Month, p.Year,
	).Scan(&b.ID, &b.UserID, &b.CategoryID, &b.Amount.Cents, &b.Period.Month, &b.Period.Year)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get budget: %w", err)
	}
	return &b, nil
}

// UpsertBudget overwrites the existing budget for the tuple in place, keeping
// its identity, or inserts a new row. Find-then-update rather than a SQL
// upsert, so the one-row-per-tuple invariant lives here and not in the schema.
func (r *Repository) UpsertBudget(ctx context.Context, userID, categoryID int64, p core.Period, amount core.Money) (core.Budget, error) {
	existing, err := r.GetBudget(ctx, userID, categoryID, p)
	if err != nil {
		return core.Budget{}, err
	}

	if existing != nil {
		if _, err := r.db.ExecContext(ctx,
			"UPDATE budgets SET amount_cents = ? WHERE id = ?", amount.Cents, existing.ID); err != nil {
			return core.Budget{}, fmt.Errorf("update budget: %w", err)
		}
		existing.Amount = amount
		slog.InfoContext(ctx, "Budget updated",
			"id", existing.ID, "category_id", categoryID,
			"month", p.Month, "year", p.Year, "amount_cents", amount.Cents)
		return *existing, nil
	}

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO budgets (user_id, category_id, amount_cents, month, year)
		 VALUES (?, ?, ?, ?, ?)`,
		userID, categoryID, amount.Cents, p.Month, p.Year)
	if err != nil {
		return core.Budget{}, fmt.Errorf("insert budget: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.Budget{}, fmt.Errorf("insert budget id: %w", err)
	}

	slog.InfoContext(ctx, "Budget created",
		"id", id, "category_id", categoryID,
		"month", p.Month, "year", p.Year, "amount_cents", amount.Cents)
	return core.Budget{ID: id, UserID: userID, CategoryID: categoryID, Amount: amount, Period: p}, nil
}

// BudgetPeriods returns the distinct periods the user has budgets in.
func (r *Repository) BudgetPeriods(ctx context.Context, userID int64) ([]core.Period, error) {
	return r.distinctPeriods(ctx,
		"SELECT DISTINCT month, year FROM budgets WHERE user_id = ?", userID)
}

func (r *Repository) distinctPeriods(ctx context.Context, query string, userID int64) ([]core.Period, error) {
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("distinct periods: %w", err)
	}
	defer rows.Close()

	var out []core.Period
	for rows.Next() {
		var p core.Period
		if err := rows.Scan(&p.Month, &p.Year); err != nil {
			return nil, fmt.Errorf("scan period: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate periods: %w", err)
	}
	return out, nil
}

// --- shared expenses ---

func (r *Repository) CreateSharedExpense(ctx context.Context, s *core.SharedExpense) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO shared_expenses (expense_id, owed_by_user_id, amount_owed_cents, settled)
		 VALUES (?, ?, ?, ?)`,
		s.ExpenseID, s.OwedByUserID, s.AmountOwed.Cents, boolToInt(s.Settled))
	if err != nil {
		return fmt.Errorf("create shared expense: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("create shared expense id: %w", err)
	}
	s.ID = id

	slog.InfoContext(ctx, "Shared expense saved",
		"id", s.ID,
		"expense_id", s.ExpenseID,
		"owed_by_user_id", s.OwedByUserID,
		"amount_owed_cents", s.AmountOwed.Cents)
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
