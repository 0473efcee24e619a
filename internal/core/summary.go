package core

// PeriodTotal is the total spend for one calendar month.
type PeriodTotal struct {
	Period Period
	Total  Money
}

// CategoryReportRow is one line of the per-category budget report. Remaining
// may be negative when a budget is exceeded.
type CategoryReportRow struct {
	Category   string
	CategoryID int64
	Budget     Money
	Spent      Money
	Remaining  Money
	Status     BudgetStatus
}
