package core

import (
	"testing"
	"time"
)

func TestPeriodValidate(t *testing.T) {
	cases := []struct {
		p  Period
		ok bool
	}{
		{Period{Month: 1, Year: 2025}, true},
		{Period{Month: 12, Year: 2024}, true},
		{Period{Month: 0, Year: 2025}, false},
		{Period{Month: 13, Year: 2025}, false},
		{Period{Month: 6, Year: 25}, false}, // not a 4-digit year
	}
	for i, tc := range cases {
		err := tc.p.Validate()
		if tc.ok && err != nil {
			t.Fatalf("case %d expected ok, got %v", i, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestPeriodBefore(t *testing.T) {
	a := Period{Month: 12, Year: 2024}
	b := Period{Month: 1, Year: 2025}
	if !a.Before(b) {
		t.Fatalf("12/2024 should be before 1/2025")
	}
	if b.Before(a) {
		t.Fatalf("1/2025 should not be before 12/2024")
	}
	c := Period{Month: 3, Year: 2025}
	d := Period{Month: 6, Year: 2025}
	if !c.Before(d) || d.Before(c) {
		t.Fatalf("month ordering within a year is wrong")
	}
}

func TestClassifyBudget(t *testing.T) {
	cases := []struct {
		name   string
		budget int64
		spent  int64
		want   BudgetStatus
	}{
		{"no budget set", 0, 99999, StatusOK},
		{"well under", 10000, 8000, StatusOK},
		{"exactly at 90%", 10000, 9000, StatusOK},
		{"just over 90%", 10000, 9001, StatusWarning},
		{"95% spent", 10000, 9500, StatusWarning},
		{"exactly at budget", 10000, 10000, StatusWarning},
		{"over budget", 10000, 10500, StatusExceeded},
		{"zero spend", 10000, 0, StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ClassifyBudget(Money{Cents: tc.budget}, Money{Cents: tc.spent})
			if got != tc.want {
				t.Fatalf("ClassifyBudget(%d, %d) = %s, want %s", tc.budget, tc.spent, got, tc.want)
			}
		})
	}
}

// Spending $50 and $30 against a $100 budget is OK; a third $15 expense tips
// it into Warning; a fourth $10 expense exceeds the budget.
func TestClassifyBudgetProgression(t *testing.T) {
	budget := Money{Cents: 10000}
	spent := Money{Cents: 5000 + 3000}
	if got := ClassifyBudget(budget, spent); got != StatusOK {
		t.Fatalf("at $80 expected OK, got %s", got)
	}
	spent = spent.Add(Money{Cents: 1500})
	if got := ClassifyBudget(budget, spent); got != StatusWarning {
		t.Fatalf("at $95 expected Warning, got %s", got)
	}
	spent = spent.Add(Money{Cents: 1000})
	if got := ClassifyBudget(budget, spent); got != StatusExceeded {
		t.Fatalf("at $105 expected Exceeded, got %s", got)
	}
}

func TestAlertLevelFor(t *testing.T) {
	if AlertLevelFor(StatusOK) != AlertNone {
		t.Fatalf("OK should map to no alert")
	}
	if AlertLevelFor(StatusWarning) != AlertWarning {
		t.Fatalf("Warning should map to a warning alert")
	}
	if AlertLevelFor(StatusExceeded) != AlertExceeded {
		t.Fatalf("Exceeded should map to an exceeded alert")
	}
}

func TestExpenseValidate(t *testing.T) {
	good := Expense{
		CategoryID:  1,
		Amount:      Money{Cents: 100},
		Description: "lunch",
		Date:        time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []Expense{
		{CategoryID: 1, Amount: Money{Cents: 0}, Date: good.Date},
		{CategoryID: 1, Amount: Money{Cents: -10}, Date: good.Date},
		{CategoryID: 1, Amount: Money{Cents: 100}},              // zero date
		{CategoryID: 0, Amount: Money{Cents: 100}, Date: good.Date}, // no category
	}
	for i, e := range bads {
		if err := e.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestUsernameFromEmail(t *testing.T) {
	cases := []struct{ in, want string }{
		{"friend@example.com", "friend"},
		{"a.b+c@x.io", "a.b+c"},
		{"noatsign", "noatsign"},
	}
	for _, tc := range cases {
		if got := UsernameFromEmail(tc.in); got != tc.want {
			t.Fatalf("UsernameFromEmail(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestHalfOf(t *testing.T) {
	if got := HalfOf(Money{Cents: 4000}).Cents; got != 2000 {
		t.Fatalf("half of $40.00 = %d cents, want 2000", got)
	}
	// Odd cent totals leave the extra cent with the payer.
	if got := HalfOf(Money{Cents: 99}).Cents; got != 49 {
		t.Fatalf("half of 99 cents = %d, want 49", got)
	}
}
