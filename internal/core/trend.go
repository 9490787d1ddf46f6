package core

import (
	"strconv"
)

// MonthAmount is one month bucket inside a trend group.
type MonthAmount struct {
	Month  string
	Amount Money
}

// TrendGroup aggregates one category's spending for one year, bucketed by
// month abbreviation. Bucket order is the order months first appeared in
// the expense list, not calendar order.
type TrendGroup struct {
	Category string
	Year     int
	Months   []MonthAmount
}

// Key returns the "Category-Year" label the view uses as a heading.
func (g TrendGroup) Key() string {
	return g.Category + "-" + strconv.Itoa(g.Year)
}

// TrendDelta is one month-over-month comparison message.
type TrendDelta struct {
	Text     string
	Increase bool
}

// GroupByCategoryYear walks a flat expense list and groups amounts by
// (category, year), then by month abbreviation within the group, summing
// amounts. Group order and month order within a group both follow first
// appearance. Expenses with a zero date are skipped.
func GroupByCategoryYear(expenses []Expense) []TrendGroup {
	var groups []TrendGroup
	index := make(map[string]int)

	for _, e := range expenses {
		if e.ExpenseDate.IsZero() {
			continue
		}
		cat := e.Category.Name
		year := e.ExpenseDate.Year()
		month := e.ExpenseDate.MonthAbbr()
		key := cat + "-" + strconv.Itoa(year)

		gi, ok := index[key]
		if !ok {
			gi = len(groups)
			index[key] = gi
			groups = append(groups, TrendGroup{Category: cat, Year: year})
		}

		g := &groups[gi]
		found := false
		for mi := range g.Months {
			if g.Months[mi].Month == month {
				g.Months[mi].Amount.Paise += e.Amount.Paise
				found = true
				break
			}
		}
		if !found {
			g.Months = append(g.Months, MonthAmount{Month: month, Amount: e.Amount})
		}
	}

	return groups
}

// Deltas produces a comparison message for each consecutive pair of month
// buckets. A group with zero or one populated months yields nothing.
func (g TrendGroup) Deltas() []TrendDelta {
	if len(g.Months) < 2 {
		return nil
	}
	deltas := make([]TrendDelta, 0, len(g.Months)-1)
	for i := 1; i < len(g.Months); i++ {
		prev := g.Months[i-1]
		curr := g.Months[i]
		diff := curr.Amount.Paise - prev.Amount.Paise
		direction := "less"
		if diff > 0 {
			direction = "more"
		}
		abs := diff
		if abs < 0 {
			abs = -abs
		}
		deltas = append(deltas, TrendDelta{
			Text: "You spent " + FormatRupeesExact(Money{Paise: abs}) + " " + direction +
				" in " + curr.Month + " than in " + prev.Month + ".",
			Increase: diff > 0,
		})
	}
	return deltas
}

// RecentExpenses returns the most recent n entries assuming the list is in
// insertion order: the tail, newest first.
func RecentExpenses(expenses []Expense, n int) []Expense {
	if n <= 0 || len(expenses) == 0 {
		return nil
	}
	start := len(expenses) - n
	if start < 0 {
		start = 0
	}
	tail := expenses[start:]
	out := make([]Expense, len(tail))
	for i, e := range tail {
		out[len(tail)-1-i] = e
	}
	return out
}
