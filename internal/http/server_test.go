package http

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"kharcha/internal/api"
	"kharcha/internal/core"
	"kharcha/internal/session"
)

// fakeAPI implements api.Service with per-method function fields. Unset
// methods return zero values.
type fakeAPI struct {
	loginFn          func(ctx context.Context, email, password string) (core.Session, error)
	signupFn         func(ctx context.Context, in api.SignupInput) error
	createExpenseFn  func(ctx context.Context, in api.ExpenseInput) (core.Expense, error)
	updateExpenseFn  func(ctx context.Context, in api.ExpenseInput) (core.Expense, error)
	listExpensesFn   func(ctx context.Context, userID int64) ([]core.Expense, error)
	summaryFn        func(ctx context.Context, userID int64) (core.SummaryReport, error)
	profileFn        func(ctx context.Context, userID int64) (core.Profile, error)
	updateProfileFn  func(ctx context.Context, userID int64, update api.ProfileUpdate, image *api.ImageUpload) (core.Profile, error)
	downloadReportFn func(ctx context.Context, userID int64, categoryID *int64) (*api.Report, error)
}

func (f *fakeAPI) Signup(ctx context.Context, in api.SignupInput) error {
	if f.signupFn != nil {
		return f.signupFn(ctx, in)
	}
	return nil
}

func (f *fakeAPI) Login(ctx context.Context, email, password string) (core.Session, error) {
	if f.loginFn != nil {
		return f.loginFn(ctx, email, password)
	}
	return core.Session{}, nil
}

func (f *fakeAPI) ForgotPassword(ctx context.Context, email string) error { return nil }

func (f *fakeAPI) ResetPassword(ctx context.Context, email, otp, password string) error {
	return nil
}

func (f *fakeAPI) DeleteUser(ctx context.Context, userID int64) error { return nil }

func (f *fakeAPI) CreateExpense(ctx context.Context, in api.ExpenseInput) (core.Expense, error) {
	if f.createExpenseFn != nil {
		return f.createExpenseFn(ctx, in)
	}
	return core.Expense{ID: 1}, nil
}

func (f *fakeAPI) UpdateExpense(ctx context.Context, in api.ExpenseInput) (core.Expense, error) {
	if f.updateExpenseFn != nil {
		return f.updateExpenseFn(ctx, in)
	}
	return core.Expense{ID: in.ExpenseID}, nil
}

func (f *fakeAPI) ListExpenses(ctx context.Context, userID int64) ([]core.Expense, error) {
	if f.listExpensesFn != nil {
		return f.listExpensesFn(ctx, userID)
	}
	return nil, nil
}

func (f *fakeAPI) Summary(ctx context.Context, userID int64) (core.SummaryReport, error) {
	if f.summaryFn != nil {
		return f.summaryFn(ctx, userID)
	}
	return core.SummaryReport{}, nil
}

func (f *fakeAPI) Profile(ctx context.Context, userID int64) (core.Profile, error) {
	if f.profileFn != nil {
		return f.profileFn(ctx, userID)
	}
	return core.Profile{}, nil
}

func (f *fakeAPI) UpdateProfile(ctx context.Context, userID int64, update api.ProfileUpdate, image *api.ImageUpload) (core.Profile, error) {
	if f.updateProfileFn != nil {
		return f.updateProfileFn(ctx, userID, update, image)
	}
	return core.Profile{}, nil
}

func (f *fakeAPI) DownloadReport(ctx context.Context, userID int64, categoryID *int64) (*api.Report, error) {
	if f.downloadReportFn != nil {
		return f.downloadReportFn(ctx, userID, categoryID)
	}
	return nil, &api.Error{Status: http.StatusNotFound}
}

var _ api.Service = (*fakeAPI)(nil)

type testEnv struct {
	server   *Server
	sessions *session.Store
	fake     *fakeAPI
}

func newTestEnv(t *testing.T, reportTimeout time.Duration) *testEnv {
	t.Helper()

	sessions, err := session.Open(filepath.Join(t.TempDir(), "kharcha.db"))
	if err != nil {
		t.Fatalf("open session store: %v", err)
	}
	t.Cleanup(func() { sessions.Close() })

	fake := &fakeAPI{}
	srv := NewServer(Options{
		Addr:          ":0",
		API:           fake,
		Sessions:      sessions,
		ReportTimeout: reportTimeout,
	})
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		srv.Shutdown(ctx)
	})

	return &testEnv{server: srv, sessions: sessions, fake: fake}
}

func (e *testEnv) signIn(t *testing.T, sess core.Session) {
	t.Helper()
	if err := e.sessions.Save(context.Background(), sess); err != nil {
		t.Fatalf("save session: %v", err)
	}
}

func (e *testEnv) do(t *testing.T, method, target string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	e.server.Handler.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) doMultipart(t *testing.T, target string, fields map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for name, value := range fields {
		if err := mw.WriteField(name, value); err != nil {
			t.Fatalf("write field %s: %v", name, err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart body: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, target, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	e.server.Handler.ServeHTTP(rec, req)
	return rec
}

func TestRequireSessionRedirects(t *testing.T) {
	env := newTestEnv(t, time.Second)

	for _, path := range []string{"/dashboard", "/add-expense", "/manage-expense", "/report", "/profile"} {
		rec := env.do(t, http.MethodGet, path, nil)
		if rec.Code != http.StatusSeeOther {
			t.Errorf("GET %s = %d, want 303", path, rec.Code)
		}
		if loc := rec.Header().Get("Location"); loc != "/login" {
			t.Errorf("GET %s redirects to %q, want /login", path, loc)
		}
	}
}

func TestLoginSuccessSavesSession(t *testing.T) {
	env := newTestEnv(t, time.Second)
	env.fake.loginFn = func(ctx context.Context, email, password string) (core.Session, error) {
		return core.Session{UserID: 42, Username: "asha"}, nil
	}

	rec := env.do(t, http.MethodPost, "/login", url.Values{
		"email":    {"a@b.co"},
		"password": {"secret!!"},
	})

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("POST /login = %d, want 303", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/dashboard" {
		t.Errorf("redirect = %q, want /dashboard", loc)
	}

	sess, ok := env.sessions.Current(context.Background())
	if !ok || sess.UserID != 42 {
		t.Errorf("session after login = %+v, %v", sess, ok)
	}
}

func TestLoginRejectionLeavesSessionUntouched(t *testing.T) {
	env := newTestEnv(t, time.Second)
	env.fake.loginFn = func(ctx context.Context, email, password string) (core.Session, error) {
		return core.Session{}, &api.Error{Status: http.StatusBadRequest, Message: "Invalid credentials"}
	}

	rec := env.do(t, http.MethodPost, "/login", url.Values{
		"email":    {"a@b.co"},
		"password": {"wrong"},
	})

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("POST /login = %d, want 401", rec.Code)
	}
	if _, ok := env.sessions.Current(context.Background()); ok {
		t.Error("rejected login created a session")
	}
	// The form re-renders with the typed email preserved.
	if !strings.Contains(rec.Body.String(), `value="a@b.co"`) {
		t.Error("re-rendered form lost the typed email")
	}
}

func TestLoginValidation(t *testing.T) {
	env := newTestEnv(t, time.Second)
	called := false
	env.fake.loginFn = func(ctx context.Context, email, password string) (core.Session, error) {
		called = true
		return core.Session{}, nil
	}

	rec := env.do(t, http.MethodPost, "/login", url.Values{
		"email":    {"not-an-email"},
		"password": {"x"},
	})

	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("POST /login = %d, want 422", rec.Code)
	}
	if called {
		t.Error("backend called despite invalid form")
	}
}

func TestSignupSuccessOffersLogin(t *testing.T) {
	env := newTestEnv(t, time.Second)
	var got api.SignupInput
	env.fake.signupFn = func(ctx context.Context, in api.SignupInput) error {
		got = in
		return nil
	}

	rec := env.do(t, http.MethodPost, "/signup", url.Values{
		"fullname": {"Asha Rao"},
		"email":    {"asha@example.com"},
		"password": {"secret!pass"},
		"confirm":  {"secret!pass"},
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("POST /signup = %d, want 200", rec.Code)
	}
	if got.Email != "asha@example.com" || got.FullName != "Asha Rao" {
		t.Errorf("signup payload = %+v", got)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Account created") {
		t.Error("success flash missing")
	}
	// The login form comes back with the new email prefilled.
	if !strings.Contains(body, `value="asha@example.com"`) {
		t.Error("login form did not prefill the email")
	}
}

func TestSignupPasswordMismatch(t *testing.T) {
	env := newTestEnv(t, time.Second)
	called := false
	env.fake.signupFn = func(ctx context.Context, in api.SignupInput) error {
		called = true
		return nil
	}

	rec := env.do(t, http.MethodPost, "/signup", url.Values{
		"fullname": {"Asha Rao"},
		"email":    {"asha@example.com"},
		"password": {"secret!pass"},
		"confirm":  {"different!pass"},
	})

	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("POST /signup = %d, want 422", rec.Code)
	}
	if called {
		t.Error("backend called despite mismatched passwords")
	}
	if !strings.Contains(rec.Body.String(), "Passwords do not match") {
		t.Error("mismatch error missing from re-rendered form")
	}
}

func TestDashboardRendersSummary(t *testing.T) {
	env := newTestEnv(t, time.Second)
	env.signIn(t, core.Session{UserID: 7, Username: "ravi"})
	env.fake.summaryFn = func(ctx context.Context, userID int64) (core.SummaryReport, error) {
		return core.SummaryReport{
			Summary: core.SummaryTotals{
				Monthly: core.Money{Paise: 123456700},
				Total:   core.Money{Paise: 500000},
			},
			ByCategory: core.WindowedCategories{
				Overall: []core.CategoryTotal{{Name: "Food", Total: core.Money{Paise: 30000}}},
			},
			ByPaymentMode: core.WindowedPayments{
				Overall: []core.PaymentTotal{{Mode: "BANK_TRANSFER", Total: core.Money{Paise: 10000}, Count: 2}},
			},
		}, nil
	}

	rec := env.do(t, http.MethodGet, "/dashboard", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /dashboard = %d, want 200", rec.Code)
	}

	body := rec.Body.String()
	if !strings.Contains(body, "₹1,234,567") {
		t.Error("monthly card missing grouped amount")
	}
	if !strings.Contains(body, "Food") {
		t.Error("category breakdown missing")
	}
	// Server-side payment buckets map to display labels.
	if !strings.Contains(body, "Bank") {
		t.Error("BANK_TRANSFER not mapped to Bank")
	}
}

func TestDashboardRepeatedLoadsHitCache(t *testing.T) {
	env := newTestEnv(t, time.Second)
	env.signIn(t, core.Session{UserID: 7, Username: "ravi"})

	calls := 0
	env.fake.summaryFn = func(ctx context.Context, userID int64) (core.SummaryReport, error) {
		calls++
		return core.SummaryReport{}, nil
	}

	env.do(t, http.MethodGet, "/dashboard", nil)
	env.do(t, http.MethodGet, "/dashboard", nil)

	if calls != 1 {
		t.Errorf("summary fetched %d times for two loads, want 1", calls)
	}
}

func TestAddExpense(t *testing.T) {
	env := newTestEnv(t, time.Second)
	env.signIn(t, core.Session{UserID: 7, Username: "ravi"})

	var got api.ExpenseInput
	env.fake.createExpenseFn = func(ctx context.Context, in api.ExpenseInput) (core.Expense, error) {
		got = in
		return core.Expense{ID: 99}, nil
	}

	rec := env.do(t, http.MethodPost, "/add-expense", url.Values{
		"title":        {"Lunch"},
		"amount":       {"250.50"},
		"category":     {"Food"},
		"payment_mode": {"UPI"},
		"expense_date": {"2024-03-01"},
		"note":         {"team lunch"},
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("POST /add-expense = %d, body: %s", rec.Code, rec.Body.String())
	}
	if got.UserID != 7 || got.Title != "Lunch" || got.Amount.Paise != 25050 {
		t.Errorf("submitted input = %+v", got)
	}
	if got.Category != "Food" || got.PaymentMode != core.PaymentUPI {
		t.Errorf("submitted input = %+v", got)
	}
	if !strings.Contains(rec.Body.String(), "Expense saved") {
		t.Error("success flash missing")
	}
}

func TestAddExpenseValidationPreservesValues(t *testing.T) {
	env := newTestEnv(t, time.Second)
	env.signIn(t, core.Session{UserID: 7, Username: "ravi"})

	called := false
	env.fake.createExpenseFn = func(ctx context.Context, in api.ExpenseInput) (core.Expense, error) {
		called = true
		return core.Expense{}, nil
	}

	rec := env.do(t, http.MethodPost, "/add-expense", url.Values{
		"title":        {"Groceries run"},
		"amount":       {"not-a-number"},
		"category":     {"Food"},
		"payment_mode": {"UPI"},
		"expense_date": {"2024-03-01"},
	})

	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("POST /add-expense = %d, want 422", rec.Code)
	}
	if called {
		t.Error("backend called despite invalid amount")
	}
	body := rec.Body.String()
	if !strings.Contains(body, `value="Groceries run"`) {
		t.Error("re-rendered form lost the typed title")
	}
	if !strings.Contains(body, `value="not-a-number"`) {
		t.Error("re-rendered form lost the typed amount")
	}
}

func TestAddExpenseAdHocCategoryBecomesDraft(t *testing.T) {
	env := newTestEnv(t, time.Second)
	env.signIn(t, core.Session{UserID: 7, Username: "ravi"})

	rec := env.do(t, http.MethodPost, "/add-expense", url.Values{
		"title":        {"Vet visit"},
		"amount":       {"800"},
		"new_category": {"Pets"},
		"payment_mode": {"CASH"},
		"expense_date": {"2024-03-01"},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("POST /add-expense = %d", rec.Code)
	}

	drafts := env.sessions.DraftCategories(context.Background(), 7)
	if len(drafts) != 1 || drafts[0] != "Pets" {
		t.Errorf("drafts = %v, want [Pets]", drafts)
	}

	// The next form render offers the draft, marked unsaved.
	page := env.do(t, http.MethodGet, "/add-expense", nil)
	if !strings.Contains(page.Body.String(), "Pets (unsaved)") {
		t.Error("draft category not offered in the form")
	}
}

func TestManageExpenseShowsRecentTenAndTrends(t *testing.T) {
	env := newTestEnv(t, time.Second)
	env.signIn(t, core.Session{UserID: 7, Username: "ravi"})

	env.fake.listExpensesFn = func(ctx context.Context, userID int64) ([]core.Expense, error) {
		var out []core.Expense
		for i := 1; i <= 12; i++ {
			month := 1
			if i > 6 {
				month = 2
			}
			out = append(out, core.Expense{
				ID:          int64(i),
				Title:       "Item " + string(rune('A'+i-1)),
				Amount:      core.Money{Paise: int64(i) * 1000},
				Category:    core.Category{ID: 10, Name: "Food"},
				PaymentMode: core.PaymentCash,
				ExpenseDate: core.NewDate(2024, month, i),
			})
		}
		return out, nil
	}

	rec := env.do(t, http.MethodGet, "/manage-expense", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /manage-expense = %d", rec.Code)
	}

	body := rec.Body.String()
	// 12 expenses: the two oldest fall off the recent list.
	if strings.Contains(body, "Item A<") || strings.Contains(body, "Item B<") {
		t.Error("recent list shows more than the latest 10")
	}
	if !strings.Contains(body, "Item L") {
		t.Error("newest expense missing from recent list")
	}
	if !strings.Contains(body, "Food · 2024") {
		t.Error("trend group heading missing")
	}
	if !strings.Contains(body, "You spent") {
		t.Error("trend delta message missing")
	}
}

func TestReportDownloadTimeout(t *testing.T) {
	env := newTestEnv(t, 50*time.Millisecond)
	env.signIn(t, core.Session{UserID: 7, Username: "ravi"})

	env.fake.downloadReportFn = func(ctx context.Context, userID int64, categoryID *int64) (*api.Report, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}

	rec := env.do(t, http.MethodGet, "/report/download", nil)
	if rec.Code != http.StatusGatewayTimeout {
		t.Fatalf("GET /report/download = %d, want 504", rec.Code)
	}

	const msg = "The report took too long to generate."
	if got := strings.Count(rec.Body.String(), msg); got != 1 {
		t.Errorf("timeout message appears %d times, want exactly 1", got)
	}
}

func TestReportDownloadStreams(t *testing.T) {
	env := newTestEnv(t, time.Second)
	env.signIn(t, core.Session{UserID: 7, Username: "ravi"})

	env.fake.downloadReportFn = func(ctx context.Context, userID int64, categoryID *int64) (*api.Report, error) {
		if categoryID == nil || *categoryID != 10 {
			t.Errorf("categoryID = %v, want 10", categoryID)
		}
		return &api.Report{
			ContentType: "application/pdf",
			Body:        io.NopCloser(strings.NewReader("%PDF-fake")),
		}, nil
	}

	rec := env.do(t, http.MethodGet, "/report/download?category_id=10", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /report/download = %d", rec.Code)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "Food_Expense_Report.pdf") {
		t.Errorf("Content-Disposition = %q", cd)
	}
	if rec.Body.String() != "%PDF-fake" {
		t.Errorf("body = %q", rec.Body.String())
	}
}

func TestProfileUpdateMergesUneditedFields(t *testing.T) {
	env := newTestEnv(t, time.Second)
	env.signIn(t, core.Session{UserID: 7, Username: "ravi"})
	env.fake.profileFn = func(ctx context.Context, userID int64) (core.Profile, error) {
		return core.Profile{
			FullName:      "Ravi Kumar",
			MonthlyIncome: core.Money{Paise: 8500000},
			PhoneNumber:   "9876543210",
			MonthlyBudget: core.Money{Paise: 3000000},
			SavingsGoal:   core.Money{Paise: 1000000},
		}, nil
	}
	var got api.ProfileUpdate
	env.fake.updateProfileFn = func(ctx context.Context, userID int64, update api.ProfileUpdate, image *api.ImageUpload) (core.Profile, error) {
		got = update
		return core.Profile{FullName: "Ravi Kumar", MonthlyBudget: update.MonthlyBudget}, nil
	}

	// Only the budget is edited. Everything else posts empty.
	rec := env.doMultipart(t, "/profile", map[string]string{
		"monthly_income": "",
		"phone_number":   "",
		"monthly_budget": "40000.50",
		"savings_goal":   "",
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("POST /profile = %d, want 200", rec.Code)
	}
	if got.MonthlyBudget.Paise != 4000050 {
		t.Errorf("MonthlyBudget = %d paise, want 4000050", got.MonthlyBudget.Paise)
	}
	if got.MonthlyIncome.Paise != 8500000 {
		t.Errorf("MonthlyIncome = %d paise, want previous 8500000", got.MonthlyIncome.Paise)
	}
	if got.PhoneNumber != "9876543210" {
		t.Errorf("PhoneNumber = %q, want previous 9876543210", got.PhoneNumber)
	}
	if got.SavingsGoal.Paise != 1000000 {
		t.Errorf("SavingsGoal = %d paise, want previous 1000000", got.SavingsGoal.Paise)
	}
}

func TestProfileUpdateExplicitZeroClearsBudget(t *testing.T) {
	env := newTestEnv(t, time.Second)
	env.signIn(t, core.Session{UserID: 7, Username: "ravi"})
	env.fake.profileFn = func(ctx context.Context, userID int64) (core.Profile, error) {
		return core.Profile{MonthlyBudget: core.Money{Paise: 3000000}}, nil
	}
	var got api.ProfileUpdate
	env.fake.updateProfileFn = func(ctx context.Context, userID int64, update api.ProfileUpdate, image *api.ImageUpload) (core.Profile, error) {
		got = update
		return core.Profile{}, nil
	}

	rec := env.doMultipart(t, "/profile", map[string]string{
		"monthly_budget": "0",
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("POST /profile = %d, want 200", rec.Code)
	}
	if got.MonthlyBudget.Paise != 0 {
		t.Errorf("MonthlyBudget = %d paise, want 0 after explicit zero", got.MonthlyBudget.Paise)
	}
}

func TestProfileDeleteFormConfirms(t *testing.T) {
	env := newTestEnv(t, time.Second)
	env.signIn(t, core.Session{UserID: 7, Username: "ravi"})

	rec := env.do(t, http.MethodGet, "/profile", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /profile = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	// The confirmation hook must survive the CSP, which blocks inline
	// event handlers.
	if !strings.Contains(body, "data-confirm=") {
		t.Error("delete form lost its confirmation prompt")
	}
	if strings.Contains(body, "onsubmit=") {
		t.Error("delete form uses an inline handler the CSP blocks")
	}
}

func TestLogoutClearsSession(t *testing.T) {
	env := newTestEnv(t, time.Second)
	env.signIn(t, core.Session{UserID: 7, Username: "ravi"})

	rec := env.do(t, http.MethodPost, "/logout", nil)
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("POST /logout = %d, want 303", rec.Code)
	}
	if _, ok := env.sessions.Current(context.Background()); ok {
		t.Error("session survived logout")
	}
}

func TestHealthEndpoints(t *testing.T) {
	env := newTestEnv(t, time.Second)

	for _, path := range []string{"/healthz", "/readyz"} {
		rec := env.do(t, http.MethodGet, path, nil)
		if rec.Code != http.StatusOK {
			t.Errorf("GET %s = %d, want 200", path, rec.Code)
		}
	}
}
