package core

import (
	"errors"
	"regexp"
	"strings"
	"time"
)

const (
	PaymentCash       PaymentMode = "CASH"
	PaymentCard       PaymentMode = "CARD"
	PaymentUPI        PaymentMode = "UPI"
	PaymentNetBanking PaymentMode = "NETBANKING"
)

type (
	PaymentMode string

	// Date is a calendar day without a time component, serialized as
	// YYYY-MM-DD on the wire.
	Date struct {
		time.Time
	}

	// Session identifies the logged-in user. The JSON shape matches the
	// stored "user" blob: {"id": ..., "name": ...}.
	Session struct {
		UserID   int64  `json:"id"`
		Username string `json:"name"`
	}

	// Category is a spending label. The reference set ships with fixed
	// ids; ad-hoc categories typed by the user have no id until the
	// backend confirms them.
	Category struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	}

	// Expense as returned by the expense collection endpoints.
	Expense struct {
		ID          int64       `json:"id"`
		Title       string      `json:"title"`
		Amount      Money       `json:"amount"`
		Category    Category    `json:"category"`
		PaymentMode PaymentMode `json:"payment_mode"`
		Note        string      `json:"note"`
		ExpenseDate Date        `json:"expense_date"`
	}

	// Profile holds the editable account record, fetched and updated
	// independently of the session.
	Profile struct {
		FullName      string `json:"FullName"`
		Email         string `json:"Email"`
		Bio           string `json:"bio"`
		Currency      string `json:"currency"`
		MonthlyIncome Money  `json:"monthly_income"`
		PhoneNumber   string `json:"phone_number"`
		MonthlyBudget Money  `json:"monthly_budget"`
		SavingsGoal   Money  `json:"savings_goal"`
		ImageURL      string `json:"profile_image_url"`
	}
)

var (
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrInvalidDate     = errors.New("invalid date")
	ErrEmptyTitle      = errors.New("empty title")
	ErrEmptyCategory   = errors.New("empty category")
	ErrInvalidPayment  = errors.New("invalid payment mode")
	ErrInvalidEmail    = errors.New("invalid email format")
	ErrInvalidPassword = errors.New("password must be 8+ chars and contain a special char")
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

const passwordSpecials = "!@#$%^&*"

// ValidateEmail checks the address against the same loose pattern the
// signup and login forms use.
func ValidateEmail(email string) error {
	if !emailPattern.MatchString(email) {
		return ErrInvalidEmail
	}
	return nil
}

// ValidatePassword enforces the signup rule: at least eight characters and
// at least one of !@#$%^&*.
func ValidatePassword(password string) error {
	if len(password) < 8 || !strings.ContainsAny(password, passwordSpecials) {
		return ErrInvalidPassword
	}
	return nil
}

func (p PaymentMode) IsValid() bool {
	switch p {
	case PaymentCash, PaymentCard, PaymentUPI, PaymentNetBanking:
		return true
	default:
		return false
	}
}

// DisplayPaymentMode maps server-side payment buckets to their display
// label. The backend may report modes the form never offers.
func DisplayPaymentMode(mode string) string {
	if mode == "BANK_TRANSFER" {
		return "Bank"
	}
	return mode
}

const dateLayout = "2006-01-02"

// NewDate creates a Date from year, month, day in UTC.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(dateLayout)
}

// MonthAbbr returns the three-letter month name used as a trend bucket key.
func (d Date) MonthAbbr() string {
	return d.Format("Jan")
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		d.Time = time.Time{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	d.Time = parsed.Time
	return nil
}

// Validate checks the fields the add-expense form requires. Amount only
// needs to parse as a positive number; nothing else is enforced
// client-side.
func (e Expense) Validate() error {
	if len(strings.TrimSpace(e.Title)) == 0 {
		return ErrEmptyTitle
	}
	if e.Amount.Paise <= 0 {
		return ErrInvalidAmount
	}
	if strings.TrimSpace(e.Category.Name) == "" {
		return ErrEmptyCategory
	}
	if !e.PaymentMode.IsValid() {
		return ErrInvalidPayment
	}
	if e.ExpenseDate.IsZero() {
		return ErrInvalidDate
	}
	return nil
}
