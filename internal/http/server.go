package http

import (
	"context"
	"html/template"
	"io/fs"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"kharcha/internal/api"
	"kharcha/internal/cache"
	"kharcha/internal/core"
	"kharcha/internal/log"
	"kharcha/internal/notify"
	"kharcha/internal/session"
	appweb "kharcha/web"
)

// Server renders the expense tracker UI and proxies every data operation to
// the remote expense API. All state it holds itself is the local session
// store and short-lived response caches.
type Server struct {
	http.Server
	templates *template.Template
	api       api.Service
	sessions  *session.Store
	notifier  *notify.Publisher
	logger    *log.Logger

	reportTimeout time.Duration

	rateLimiter   *rateLimiter
	summaryCache  *cache.LRU[core.SummaryReport]
	expensesCache *cache.LRU[[]core.Expense]
	profileCache  *cache.LRU[core.Profile]

	stopCacheCleanup chan struct{}
	shutdownOnce     sync.Once
}

type Options struct {
	Addr          string
	API           api.Service
	Sessions      *session.Store
	Notifier      *notify.Publisher
	Logger        *log.Logger
	ReportTimeout time.Duration
}

// NewServer configures routes and templates, returning a ready-to-run server.
func NewServer(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	reportTimeout := opts.ReportTimeout
	if reportTimeout <= 0 {
		reportTimeout = 30 * time.Second
	}

	s := &Server{
		Server:           http.Server{Addr: opts.Addr},
		api:              opts.API,
		sessions:         opts.Sessions,
		notifier:         opts.Notifier,
		logger:           logger.WithComponent(log.ComponentHTTP),
		reportTimeout:    reportTimeout,
		rateLimiter:      newRateLimiter(),
		summaryCache:     cache.NewLRU[core.SummaryReport](100, 2*time.Minute),
		expensesCache:    cache.NewLRU[[]core.Expense](100, 2*time.Minute),
		profileCache:     cache.NewLRU[core.Profile](100, 5*time.Minute),
		stopCacheCleanup: make(chan struct{}),
	}

	go s.startCacheCleanup()

	t, err := template.ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		s.logger.Warn("failed parsing templates", log.FieldError, err)
	}
	s.templates = t

	r := chi.NewRouter()
	r.Use(s.withRequestID)
	r.Use(s.withObservability)

	r.Get("/healthz", handleHealth)
	r.Get("/readyz", handleReady)

	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		r.Handle("/static/*", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Cache-Control", "public, max-age=3600, immutable")
			static.ServeHTTP(w, r)
		}))
	} else {
		s.logger.Warn("failed to mount embedded static FS", log.FieldError, err)
	}

	r.Get("/", s.handleHome)
	r.Get("/login", s.handleLoginPage)
	r.Post("/login", s.handleLogin)
	r.Get("/signup", s.handleSignupPage)
	r.Post("/signup", s.handleSignup)
	r.Get("/forgot-password", s.handleForgotPasswordPage)
	r.Post("/forgot-password", s.handleForgotPassword)
	r.Get("/reset-password", s.handleResetPasswordPage)
	r.Post("/reset-password", s.handleResetPassword)
	r.Post("/logout", s.handleLogout)

	r.Get("/dashboard", s.requireSession(s.handleDashboard))
	r.Get("/add-expense", s.requireSession(s.handleAddExpensePage))
	r.Post("/add-expense", s.requireSession(s.handleAddExpense))
	r.Get("/manage-expense", s.requireSession(s.handleManageExpenses))
	r.Get("/manage-expense/{id}", s.requireSession(s.handleEditExpensePage))
	r.Post("/manage-expense/{id}", s.requireSession(s.handleEditExpense))
	r.Get("/report", s.requireSession(s.handleReportPage))
	r.Get("/report/download", s.requireSession(s.handleReportDownload))
	r.Get("/profile", s.requireSession(s.handleProfile))
	r.Post("/profile", s.requireSession(s.handleProfileUpdate))
	r.Post("/profile/delete", s.requireSession(s.handleDeleteAccount))

	s.Handler = r
	return s
}

// sessionHandler receives the signed-in session explicitly. Handlers never
// look the session up themselves.
type sessionHandler func(w http.ResponseWriter, r *http.Request, sess core.Session)

func (s *Server) requireSession(next sessionHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := s.sessions.Current(r.Context())
		if !ok {
			redirect(w, r, "/login")
			return
		}
		next(w, r, sess)
	}
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if _, ok := s.sessions.Current(r.Context()); ok {
		redirect(w, r, "/dashboard")
		return
	}
	s.render(w, r, "home.html", newPublicView(""))
}

func (s *Server) startCacheCleanup() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			cleaned := s.summaryCache.CleanExpired() +
				s.expensesCache.CleanExpired() +
				s.profileCache.CleanExpired()
			if cleaned > 0 {
				s.logger.Debug("cache cleanup completed", "entries_removed", cleaned)
			}
		case <-s.stopCacheCleanup:
			return
		}
	}
}

// Shutdown stops the background cleanup goroutines, then the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		if s.stopCacheCleanup != nil {
			close(s.stopCacheCleanup)
		}
		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

func (s *Server) cacheKey(prefix string, userID int64) string {
	return prefix + ":" + strconv.FormatInt(userID, 10)
}

func (s *Server) invalidateUser(userID int64) {
	s.summaryCache.Delete(s.cacheKey("summary", userID))
	s.expensesCache.Delete(s.cacheKey("expenses", userID))
}

func (s *Server) clearCaches() {
	s.summaryCache.Clear()
	s.expensesCache.Clear()
	s.profileCache.Clear()
}

func (s *Server) getSummary(ctx context.Context, userID int64) (core.SummaryReport, error) {
	key := s.cacheKey("summary", userID)
	if data, found := s.summaryCache.Get(key); found {
		return data, nil
	}

	data, err := s.api.Summary(ctx, userID)
	if err != nil {
		return core.SummaryReport{}, err
	}
	s.summaryCache.Set(key, data)
	return data, nil
}

func (s *Server) getExpenses(ctx context.Context, userID int64) ([]core.Expense, error) {
	key := s.cacheKey("expenses", userID)
	if items, found := s.expensesCache.Get(key); found {
		result := make([]core.Expense, len(items))
		copy(result, items)
		return result, nil
	}

	items, err := s.api.ListExpenses(ctx, userID)
	if err != nil {
		return nil, err
	}
	s.expensesCache.Set(key, items)
	return items, nil
}

func (s *Server) getProfile(ctx context.Context, userID int64) (core.Profile, error) {
	key := s.cacheKey("profile", userID)
	if p, found := s.profileCache.Get(key); found {
		return p, nil
	}

	p, err := s.api.Profile(ctx, userID)
	if err != nil {
		return core.Profile{}, err
	}
	s.profileCache.Set(key, p)
	return p, nil
}
