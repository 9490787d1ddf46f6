package api

import (
	"context"
	"fmt"
	"net/http"

	"kharcha/internal/core"
)

// ExpenseInput is the create/update payload. Category travels as a plain
// name: a selected reference id is resolved to its name before submission,
// an ad-hoc typed name goes through as-is and the backend creates it.
type ExpenseInput struct {
	UserID      int64            `json:"userId"`
	ExpenseID   int64            `json:"expenseId,omitempty"`
	Title       string           `json:"title"`
	Amount      core.Money       `json:"amount"`
	Category    string           `json:"category"`
	PaymentMode core.PaymentMode `json:"payment_mode"`
	Note        string           `json:"note"`
	ExpenseDate core.Date        `json:"expense_date"`
}

type expenseResponse struct {
	Message string       `json:"message"`
	Expense core.Expense `json:"expense"`
}

type expenseListResponse struct {
	Success  bool           `json:"success"`
	Expenses []core.Expense `json:"expenses"`
}

// CreateExpense records a new expense for the user.
func (c *Client) CreateExpense(ctx context.Context, in ExpenseInput) (core.Expense, error) {
	in.ExpenseID = 0
	var resp expenseResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/expense/", in, &resp); err != nil {
		return core.Expense{}, err
	}
	return resp.Expense, nil
}

// UpdateExpense edits an existing expense. The views re-fetch the full
// list after a successful update rather than patching local state.
func (c *Client) UpdateExpense(ctx context.Context, in ExpenseInput) (core.Expense, error) {
	if in.ExpenseID == 0 {
		return core.Expense{}, fmt.Errorf("update expense: missing expense id")
	}
	var resp expenseResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/editexpense/", in, &resp); err != nil {
		return core.Expense{}, err
	}
	return resp.Expense, nil
}

// ListExpenses fetches the user's full expense list in insertion order.
func (c *Client) ListExpenses(ctx context.Context, userID int64) ([]core.Expense, error) {
	var resp expenseListResponse
	if err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/api/getexpense/%d/", userID), nil, &resp); err != nil {
		return nil, err
	}
	return resp.Expenses, nil
}
