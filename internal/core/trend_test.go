package core

import (
	"testing"
)

func expense(id int64, category string, paise int64, year, month, day int) Expense {
	return Expense{
		ID:          id,
		Title:       "t",
		Amount:      Money{Paise: paise},
		Category:    Category{Name: category},
		PaymentMode: PaymentCash,
		ExpenseDate: NewDate(year, month, day),
	}
}

func TestGroupByCategoryYear(t *testing.T) {
	expenses := []Expense{
		expense(1, "Food", 10000, 2024, 1, 5),
		expense(2, "Food", 15000, 2024, 2, 10),
		expense(3, "Travel", 30000, 2024, 1, 7),
		expense(4, "Food", 2000, 2024, 1, 20), // sums into the Jan bucket
		expense(5, "Food", 5000, 2023, 12, 1), // separate year, separate group
	}

	groups := GroupByCategoryYear(expenses)
	if len(groups) != 3 {
		t.Fatalf("got %d groups, want 3", len(groups))
	}

	// Groups appear in first-seen order.
	if groups[0].Key() != "Food-2024" || groups[1].Key() != "Travel-2024" || groups[2].Key() != "Food-2023" {
		t.Errorf("group order = %q, %q, %q", groups[0].Key(), groups[1].Key(), groups[2].Key())
	}

	food := groups[0]
	if len(food.Months) != 2 {
		t.Fatalf("Food-2024 has %d month buckets, want 2", len(food.Months))
	}
	if food.Months[0].Month != "Jan" || food.Months[0].Amount.Paise != 12000 {
		t.Errorf("Jan bucket = %s %d, want Jan 12000", food.Months[0].Month, food.Months[0].Amount.Paise)
	}
	if food.Months[1].Month != "Feb" || food.Months[1].Amount.Paise != 15000 {
		t.Errorf("Feb bucket = %s %d, want Feb 15000", food.Months[1].Month, food.Months[1].Amount.Paise)
	}
}

func TestGroupByCategoryYearSkipsZeroDates(t *testing.T) {
	groups := GroupByCategoryYear([]Expense{
		{Category: Category{Name: "Food"}, Amount: Money{Paise: 100}},
	})
	if len(groups) != 0 {
		t.Errorf("got %d groups for zero-dated expense, want 0", len(groups))
	}
}

func TestDeltas(t *testing.T) {
	g := TrendGroup{
		Category: "Food",
		Year:     2024,
		Months: []MonthAmount{
			{Month: "Jan", Amount: Money{Paise: 10000}},
			{Month: "Feb", Amount: Money{Paise: 15000}},
			{Month: "Mar", Amount: Money{Paise: 14975}},
		},
	}

	deltas := g.Deltas()
	if len(deltas) != 2 {
		t.Fatalf("got %d deltas, want 2", len(deltas))
	}

	if deltas[0].Text != "You spent ₹50 more in Feb than in Jan." {
		t.Errorf("deltas[0].Text = %q", deltas[0].Text)
	}
	if !deltas[0].Increase {
		t.Error("deltas[0].Increase = false, want true")
	}

	if deltas[1].Text != "You spent ₹0.25 less in Mar than in Feb." {
		t.Errorf("deltas[1].Text = %q", deltas[1].Text)
	}
	if deltas[1].Increase {
		t.Error("deltas[1].Increase = true, want false")
	}
}

func TestDeltasSingleMonth(t *testing.T) {
	g := TrendGroup{Months: []MonthAmount{{Month: "Jan", Amount: Money{Paise: 100}}}}
	if got := g.Deltas(); got != nil {
		t.Errorf("Deltas() = %v for single month, want nil", got)
	}
}

func TestRecentExpenses(t *testing.T) {
	var expenses []Expense
	for i := int64(1); i <= 15; i++ {
		expenses = append(expenses, expense(i, "Food", 100, 2024, 1, int(i)))
	}

	recent := RecentExpenses(expenses, 10)
	if len(recent) != 10 {
		t.Fatalf("got %d, want 10", len(recent))
	}
	// Newest first: ids 15 down to 6.
	if recent[0].ID != 15 || recent[9].ID != 6 {
		t.Errorf("recent ids run %d..%d, want 15..6", recent[0].ID, recent[9].ID)
	}
}

func TestRecentExpensesShortList(t *testing.T) {
	expenses := []Expense{
		expense(1, "Food", 100, 2024, 1, 1),
		expense(2, "Food", 100, 2024, 1, 2),
	}
	recent := RecentExpenses(expenses, 10)
	if len(recent) != 2 {
		t.Fatalf("got %d, want 2", len(recent))
	}
	if recent[0].ID != 2 || recent[1].ID != 1 {
		t.Errorf("recent ids = %d, %d, want 2, 1", recent[0].ID, recent[1].ID)
	}

	if got := RecentExpenses(nil, 10); got != nil {
		t.Errorf("RecentExpenses(nil) = %v, want nil", got)
	}
}
