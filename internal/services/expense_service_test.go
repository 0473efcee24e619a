package services

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"outlay/internal/alert"
	"outlay/internal/core"
	"outlay/internal/storage"
)

func newTestService(t *testing.T) (*ExpenseService, *storage.Repository, core.User) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	repo, err := storage.NewRepository(dbPath)
	if err != nil {
		t.Fatalf("NewRepository failed: %v", err)
	}
	t.Cleanup(func() { repo.Close() })

	user, err := repo.EnsureUser(context.Background(), "default_user", "user@example.com")
	if err != nil {
		t.Fatalf("EnsureUser failed: %v", err)
	}

	svc := NewExpenseService(repo, alert.NewEvaluator(repo, nil))
	return svc, repo, user
}

func categoryByName(t *testing.T, repo *storage.Repository, name string) core.Category {
	t.Helper()
	cat, err := repo.FindCategoryByName(context.Background(), name)
	if err != nil {
		t.Fatalf("FindCategoryByName(%q) failed: %v", name, err)
	}
	return cat
}

func TestRecordSavesExpense(t *testing.T) {
	svc, repo, user := newTestService(t)
	ctx := context.Background()
	food := categoryByName(t, repo, "Food")

	got, err := svc.Record(ctx, RecordInput{
		UserID:      user.ID,
		CategoryID:  food.ID,
		Amount:      core.Money{Cents: 5000},
		Description: "Groceries",
		Date:        time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	if got.Expense.ID == 0 {
		t.Error("expense ID not assigned")
	}
	if got.CategoryName != "Food" {
		t.Errorf("CategoryName = %q, want %q", got.CategoryName, "Food")
	}
	if got.Alert.Level != core.AlertNone {
		t.Errorf("no budget is set, alert level = %q, want %q", got.Alert.Level, core.AlertNone)
	}

	sum, err := repo.SumExpenses(ctx, user.ID, core.Period{Month: 3, Year: 2024})
	if err != nil {
		t.Fatalf("SumExpenses failed: %v", err)
	}
	if sum.Cents != 5000 {
		t.Errorf("stored sum = %d cents, want 5000", sum.Cents)
	}
}

func TestRecordRejectsInvalidInput(t *testing.T) {
	svc, repo, user := newTestService(t)
	ctx := context.Background()
	food := categoryByName(t, repo, "Food")

	tests := []struct {
		name string
		in   RecordInput
	}{
		{
			name: "zero amount",
			in: RecordInput{
				UserID:     user.ID,
				CategoryID: food.ID,
				Date:       time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC),
			},
		},
		{
			name: "missing date",
			in: RecordInput{
				UserID:     user.ID,
				CategoryID: food.ID,
				Amount:     core.Money{Cents: 100},
			},
		},
		{
			name: "unknown category",
			in: RecordInput{
				UserID:     user.ID,
				CategoryID: 9999,
				Amount:     core.Money{Cents: 100},
				Date:       time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC),
			},
		},
		{
			name: "description too long",
			in: RecordInput{
				UserID:      user.ID,
				CategoryID:  food.ID,
				Amount:      core.Money{Cents: 100},
				Description: strings.Repeat("x", 201),
				Date:        time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Record(ctx, tt.in); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestRecordRaisesBudgetAlert(t *testing.T) {
	svc, repo, user := newTestService(t)
	ctx := context.Background()
	food := categoryByName(t, repo, "Food")
	period := core.Period{Month: 3, Year: 2024}

	if _, err := repo.UpsertBudget(ctx, user.ID, food.ID, period, core.Money{Cents: 10000}); err != nil {
		t.Fatalf("UpsertBudget failed: %v", err)
	}

	got, err := svc.Record(ctx, RecordInput{
		UserID:     user.ID,
		CategoryID: food.ID,
		Amount:     core.Money{Cents: 10500},
		Date:       time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	if got.Alert.Level != core.AlertExceeded {
		t.Errorf("alert level = %q, want %q", got.Alert.Level, core.AlertExceeded)
	}
	if !strings.Contains(got.Alert.Message, "exceeded your budget for Food") {
		t.Errorf("alert message = %q", got.Alert.Message)
	}
}

func TestRecordSplitsExpense(t *testing.T) {
	svc, repo, user := newTestService(t)
	ctx := context.Background()
	food := categoryByName(t, repo, "Food")

	got, err := svc.Record(ctx, RecordInput{
		UserID:         user.ID,
		CategoryID:     food.ID,
		Amount:         core.Money{Cents: 5001},
		Description:    "Dinner",
		Date:           time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC),
		SplitWithEmail: "partner@example.com",
	})
	if err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	if !got.Expense.IsShared {
		t.Error("expense not marked shared")
	}
	// Odd cent stays with the payer: 50.01 splits as 25.01 paid, 25.00 owed.
	want := "Expense added and split with partner! You paid $25.01, they owe $25.00."
	if got.SplitMessage != want {
		t.Errorf("SplitMessage = %q, want %q", got.SplitMessage, want)
	}

	partner, err := repo.GetUserByEmail(ctx, "partner@example.com")
	if err != nil {
		t.Fatalf("split partner not created: %v", err)
	}
	if partner.Username != "partner" {
		t.Errorf("partner username = %q, want %q", partner.Username, "partner")
	}
}

func TestRecordRejectsSelfSplit(t *testing.T) {
	svc, repo, user := newTestService(t)
	ctx := context.Background()
	food := categoryByName(t, repo, "Food")

	_, err := svc.Record(ctx, RecordInput{
		UserID:         user.ID,
		CategoryID:     food.ID,
		Amount:         core.Money{Cents: 5000},
		Date:           time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC),
		SplitWithEmail: user.Email,
	})
	if err == nil {
		t.Error("splitting with yourself should fail")
	}

	// The rejection happens before anything is written.
	sum, err := repo.SumExpenses(ctx, user.ID, core.Period{Month: 3, Year: 2024})
	if err != nil {
		t.Fatalf("SumExpenses failed: %v", err)
	}
	if sum.Cents != 0 {
		t.Errorf("rejected split persisted an expense: %d cents stored", sum.Cents)
	}
}

func TestResolveCategory(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()
	food := categoryByName(t, repo, "Food")
	other := categoryByName(t, repo, "Other")

	t.Run("regular category ignores custom name", func(t *testing.T) {
		got, err := svc.ResolveCategory(ctx, food.ID, "Gadgets")
		if err != nil {
			t.Fatalf("ResolveCategory failed: %v", err)
		}
		if got.ID != food.ID {
			t.Errorf("resolved to %q, want Food", got.Name)
		}
	})

	t.Run("other without custom name stays other", func(t *testing.T) {
		got, err := svc.ResolveCategory(ctx, other.ID, "  ")
		if err != nil {
			t.Fatalf("ResolveCategory failed: %v", err)
		}
		if got.ID != other.ID {
			t.Errorf("resolved to %q, want Other", got.Name)
		}
	})

	t.Run("other with new name creates category", func(t *testing.T) {
		got, err := svc.ResolveCategory(ctx, other.ID, "Gadgets")
		if err != nil {
			t.Fatalf("ResolveCategory failed: %v", err)
		}
		if got.Name != "Gadgets" || got.ID == 0 {
			t.Errorf("got %+v, want a stored Gadgets category", got)
		}
	})

	t.Run("other with existing name reuses case-insensitively", func(t *testing.T) {
		first, err := svc.ResolveCategory(ctx, other.ID, "Gadgets")
		if err != nil {
			t.Fatalf("ResolveCategory failed: %v", err)
		}
		second, err := svc.ResolveCategory(ctx, other.ID, "gadgets")
		if err != nil {
			t.Fatalf("ResolveCategory failed: %v", err)
		}
		if first.ID != second.ID {
			t.Errorf("duplicate category created: %d vs %d", first.ID, second.ID)
		}
	})
}
