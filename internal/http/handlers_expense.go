package http

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"kharcha/internal/api"
	"kharcha/internal/core"
	"kharcha/internal/log"
	"kharcha/internal/notify"
)

type expenseFormValues struct {
	Title       string
	Amount      string
	Category    string
	NewCategory string
	PaymentMode string
	Note        string
	Date        string
}

type expenseFormView struct {
	Nav          navData
	Flash        *Flash
	Action       string
	Editing      bool
	ExpenseID    int64
	Values       expenseFormValues
	Errors       map[string]string
	Categories   []categoryOption
	PaymentModes []paymentOption
}

func (s *Server) newExpenseForm(r *http.Request, sess core.Session) expenseFormView {
	return expenseFormView{
		Nav:    newNav(sess, "/add-expense"),
		Action: "/add-expense",
		Values: expenseFormValues{
			PaymentMode: string(core.PaymentCash),
			Date:        time.Now().Format("2006-01-02"),
		},
		Errors:       map[string]string{},
		Categories:   s.categoryOptions(r, sess.UserID),
		PaymentModes: paymentOptions(),
	}
}

func (s *Server) handleAddExpensePage(w http.ResponseWriter, r *http.Request, sess core.Session) {
	s.render(w, r, "expense_form.html", s.newExpenseForm(r, sess))
}

func (s *Server) handleAddExpense(w http.ResponseWriter, r *http.Request, sess core.Session) {
	view := s.newExpenseForm(r, sess)
	in, ok := s.parseExpenseForm(r, sess, &view)
	if !ok {
		// Re-render in place with the typed values intact.
		w.WriteHeader(http.StatusUnprocessableEntity)
		s.render(w, r, "expense_form.html", view)
		return
	}

	created, err := s.api.CreateExpense(r.Context(), in)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "create expense failed",
			log.FieldError, err, log.FieldUserID, sess.UserID, log.FieldCategory, in.Category)
		view.Flash = &Flash{Kind: "error", Text: "Could not save the expense. Try again."}
		w.WriteHeader(http.StatusBadGateway)
		s.render(w, r, "expense_form.html", view)
		return
	}

	if _, shared := core.CategoryByName(in.Category); !shared {
		if err := s.sessions.AddDraftCategory(r.Context(), sess.UserID, in.Category); err != nil {
			s.logger.WarnContext(r.Context(), "save draft category failed",
				log.FieldError, err, log.FieldCategory, in.Category)
		}
	}

	s.invalidateUser(sess.UserID)
	go s.checkBudget(sess)

	s.logger.InfoContext(r.Context(), "expense created",
		log.FieldUserID, sess.UserID,
		log.FieldExpenseID, created.ID,
		log.FieldAmount, in.Amount.Paise,
		log.FieldCategory, in.Category)

	if isHTMX(r) {
		NewResponse().TriggerExpenseCreated().Toast(ToastSuccess, "Expense saved").Apply(w)
	}
	fresh := s.newExpenseForm(r, sess)
	fresh.Flash = &Flash{Kind: "success", Text: "Expense saved"}
	s.render(w, r, "expense_form.html", fresh)
}

type trendMonthCell struct {
	Month  string
	Amount string
}

type trendView struct {
	Category string
	Year     int
	Months   []trendMonthCell
	Deltas   []core.TrendDelta
}

type manageView struct {
	Nav    navData
	Flash  *Flash
	Recent []expenseRow
	Trends []trendView
}

func (s *Server) handleManageExpenses(w http.ResponseWriter, r *http.Request, sess core.Session) {
	view := manageView{Nav: newNav(sess, "/manage-expense")}

	expenses, err := s.getExpenses(r.Context(), sess.UserID)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "expense list fetch failed", log.FieldError, err, log.FieldUserID, sess.UserID)
		view.Flash = &Flash{Kind: "error", Text: "Could not load your expenses"}
		s.render(w, r, "manage_expense.html", view)
		return
	}

	view.Recent = expenseRows(core.RecentExpenses(expenses, 10))
	for _, g := range core.GroupByCategoryYear(expenses) {
		tv := trendView{Category: g.Category, Year: g.Year, Deltas: g.Deltas()}
		for _, m := range g.Months {
			tv.Months = append(tv.Months, trendMonthCell{
				Month:  m.Month,
				Amount: core.FormatRupees(m.Amount),
			})
		}
		view.Trends = append(view.Trends, tv)
	}

	s.render(w, r, "manage_expense.html", view)
}

func (s *Server) handleEditExpensePage(w http.ResponseWriter, r *http.Request, sess core.Session) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	expenses, err := s.getExpenses(r.Context(), sess.UserID)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "expense list fetch failed", log.FieldError, err, log.FieldUserID, sess.UserID)
		redirect(w, r, "/manage-expense")
		return
	}

	var target *core.Expense
	for i := range expenses {
		if expenses[i].ID == id {
			target = &expenses[i]
			break
		}
	}
	if target == nil {
		http.NotFound(w, r)
		return
	}

	view := s.newExpenseForm(r, sess)
	view.Nav = newNav(sess, "/manage-expense")
	view.Editing = true
	view.ExpenseID = id
	view.Action = "/manage-expense/" + strconv.FormatInt(id, 10)
	view.Values = expenseFormValues{
		Title:       target.Title,
		Amount:      target.Amount.Decimal(),
		Category:    target.Category.Name,
		PaymentMode: string(target.PaymentMode),
		Note:        target.Note,
		Date:        target.ExpenseDate.String(),
	}
	s.render(w, r, "expense_form.html", view)
}

func (s *Server) handleEditExpense(w http.ResponseWriter, r *http.Request, sess core.Session) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	view := s.newExpenseForm(r, sess)
	view.Nav = newNav(sess, "/manage-expense")
	view.Editing = true
	view.ExpenseID = id
	view.Action = "/manage-expense/" + strconv.FormatInt(id, 10)

	in, ok := s.parseExpenseForm(r, sess, &view)
	if !ok {
		w.WriteHeader(http.StatusUnprocessableEntity)
		s.render(w, r, "expense_form.html", view)
		return
	}
	in.ExpenseID = id

	updated, err := s.api.UpdateExpense(r.Context(), in)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "update expense failed",
			log.FieldError, err, log.FieldUserID, sess.UserID, log.FieldExpenseID, id)
		view.Flash = &Flash{Kind: "error", Text: "Could not update the expense. Try again."}
		w.WriteHeader(http.StatusBadGateway)
		s.render(w, r, "expense_form.html", view)
		return
	}

	s.invalidateUser(sess.UserID)
	s.logger.InfoContext(r.Context(), "expense updated",
		log.FieldUserID, sess.UserID, log.FieldExpenseID, updated.ID)

	if isHTMX(r) {
		NewResponse().TriggerExpenseUpdated(updated.ID).Redirect(r, "/manage-expense").Write(w)
		return
	}
	redirect(w, r, "/manage-expense")
}

// parseExpenseForm validates the submitted form. On failure it fills
// view.Values and view.Errors so the form re-renders with everything the
// user typed still present.
func (s *Server) parseExpenseForm(r *http.Request, sess core.Session, view *expenseFormView) (api.ExpenseInput, bool) {
	if err := r.ParseForm(); err != nil {
		view.Flash = &Flash{Kind: "error", Text: "Invalid request format"}
		return api.ExpenseInput{}, false
	}

	view.Values = expenseFormValues{
		Title:       sanitizeInput(r.Form.Get("title")),
		Amount:      sanitizeInput(r.Form.Get("amount")),
		Category:    sanitizeInput(r.Form.Get("category")),
		NewCategory: sanitizeInput(r.Form.Get("new_category")),
		PaymentMode: sanitizeInput(r.Form.Get("payment_mode")),
		Note:        sanitizeInput(r.Form.Get("note")),
		Date:        sanitizeInput(r.Form.Get("expense_date")),
	}

	if view.Values.Title == "" {
		view.Errors["title"] = "Title is required"
	}

	amount, err := core.ParseAmount(view.Values.Amount)
	if err != nil {
		view.Errors["amount"] = "Enter an amount greater than zero"
	}

	// A typed-in category wins over the dropdown selection.
	category := view.Values.NewCategory
	if category == "" {
		category = view.Values.Category
	}
	if category == "" {
		view.Errors["category"] = "Pick or type a category"
	}

	mode := core.PaymentMode(view.Values.PaymentMode)
	if !mode.IsValid() {
		view.Errors["payment_mode"] = "Pick a payment mode"
	}

	date, err := core.ParseDate(view.Values.Date)
	if err != nil {
		view.Errors["expense_date"] = "Enter a date as YYYY-MM-DD"
	}

	if len(view.Errors) > 0 {
		return api.ExpenseInput{}, false
	}

	return api.ExpenseInput{
		UserID:      sess.UserID,
		Title:       view.Values.Title,
		Amount:      amount,
		Category:    category,
		PaymentMode: mode,
		Note:        view.Values.Note,
		ExpenseDate: date,
	}, true
}

// checkBudget compares fresh monthly spend against the profile budget and
// publishes an alert when a threshold is crossed. Runs detached from the
// request that triggered it.
func (s *Server) checkBudget(sess core.Session) {
	if s.notifier == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	profile, err := s.getProfile(ctx, sess.UserID)
	if err != nil {
		s.logger.Warn("budget check: profile fetch failed", log.FieldError, err, log.FieldUserID, sess.UserID)
		return
	}

	report, err := s.api.Summary(ctx, sess.UserID)
	if err != nil {
		s.logger.Warn("budget check: summary fetch failed", log.FieldError, err, log.FieldUserID, sess.UserID)
		return
	}

	level, ok := notify.EvaluateBudget(report.Summary.Monthly, profile.MonthlyBudget)
	if !ok {
		return
	}
	if err := s.notifier.PublishBudgetAlert(ctx, sess, level, report.Summary.Monthly, profile.MonthlyBudget); err != nil {
		s.logger.Error("budget alert publish failed", log.FieldError, err, log.FieldUserID, sess.UserID)
	}
}
