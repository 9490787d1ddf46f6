package api

import (
	"context"

	"kharcha/internal/core"
)

// Service is the surface the view handlers depend on. *Client implements
// it against the remote API; tests substitute fakes.
type Service interface {
	Signup(ctx context.Context, in SignupInput) error
	Login(ctx context.Context, email, password string) (core.Session, error)
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, email, otp, password string) error
	DeleteUser(ctx context.Context, userID int64) error

	CreateExpense(ctx context.Context, in ExpenseInput) (core.Expense, error)
	UpdateExpense(ctx context.Context, in ExpenseInput) (core.Expense, error)
	ListExpenses(ctx context.Context, userID int64) ([]core.Expense, error)

	Summary(ctx context.Context, userID int64) (core.SummaryReport, error)

	Profile(ctx context.Context, userID int64) (core.Profile, error)
	UpdateProfile(ctx context.Context, userID int64, update ProfileUpdate, image *ImageUpload) (core.Profile, error)

	DownloadReport(ctx context.Context, userID int64, categoryID *int64) (*Report, error)
}

var _ Service = (*Client)(nil)
