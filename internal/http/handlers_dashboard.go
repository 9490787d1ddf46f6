package http

import (
	"net/http"

	"kharcha/internal/core"
	"kharcha/internal/log"
)

type summaryCard struct {
	Label  string
	Amount string
}

type breakdownRow struct {
	Name   string
	Amount string
}

type paymentRow struct {
	Label  string
	Amount string
	Count  int64
}

type expenseRow struct {
	ID       int64
	Title    string
	Amount   string
	Category string
	Payment  string
	Date     string
	Note     string
}

type dashboardView struct {
	Nav        navData
	Flash      *Flash
	Cards      []summaryCard
	Categories []breakdownRow
	Payments   []paymentRow
	Recent     []expenseRow
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request, sess core.Session) {
	view := dashboardView{Nav: newNav(sess, "/dashboard")}

	report, err := s.getSummary(r.Context(), sess.UserID)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "summary fetch failed", log.FieldError, err, log.FieldUserID, sess.UserID)
		view.Flash = &Flash{Kind: "error", Text: "Could not load your spending summary"}
		s.render(w, r, "dashboard.html", view)
		return
	}

	view.Cards = []summaryCard{
		{Label: "Today", Amount: core.FormatRupees(report.Summary.Today)},
		{Label: "Yesterday", Amount: core.FormatRupees(report.Summary.Yesterday)},
		{Label: "This Week", Amount: core.FormatRupees(report.Summary.Weekly)},
		{Label: "This Month", Amount: core.FormatRupees(report.Summary.Monthly)},
		{Label: "This Year", Amount: core.FormatRupees(report.Summary.Yearly)},
		{Label: "Total", Amount: core.FormatRupees(report.Summary.Total)},
	}

	for _, c := range report.ByCategory.Overall {
		view.Categories = append(view.Categories, breakdownRow{
			Name:   c.Name,
			Amount: core.FormatRupees(c.Total),
		})
	}
	for _, p := range report.ByPaymentMode.Overall {
		view.Payments = append(view.Payments, paymentRow{
			Label:  core.DisplayPaymentMode(p.Mode),
			Amount: core.FormatRupees(p.Total),
			Count:  p.Count,
		})
	}

	expenses, err := s.getExpenses(r.Context(), sess.UserID)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "expense list fetch failed", log.FieldError, err, log.FieldUserID, sess.UserID)
	} else {
		view.Recent = expenseRows(core.RecentExpenses(expenses, 10))
	}

	s.render(w, r, "dashboard.html", view)
}

func expenseRows(expenses []core.Expense) []expenseRow {
	rows := make([]expenseRow, 0, len(expenses))
	for _, e := range expenses {
		rows = append(rows, expenseRow{
			ID:       e.ID,
			Title:    e.Title,
			Amount:   core.FormatRupees(e.Amount),
			Category: e.Category.Name,
			Payment:  core.DisplayPaymentMode(string(e.PaymentMode)),
			Date:     e.ExpenseDate.String(),
			Note:     e.Note,
		})
	}
	return rows
}
