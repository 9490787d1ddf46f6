package http

import (
	"net/http"
	"strings"

	"kharcha/internal/core"
	"kharcha/internal/log"
)

// navData drives the shared navigation bar. Active carries the current path
// so the matching tab highlights.
type navData struct {
	SignedIn bool
	Username string
	Active   string
}

// Flash is a one-off message rendered at the top of a page.
type Flash struct {
	Kind string // "success", "error", "warning"
	Text string
}

// publicView backs the signed-out pages.
type publicView struct {
	Nav   navData
	Flash *Flash
}

func newPublicView(active string) publicView {
	return publicView{Nav: navData{Active: active}}
}

func newNav(sess core.Session, active string) navData {
	return navData{SignedIn: true, Username: sess.Username, Active: active}
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, name string, data any) {
	if s.templates == nil {
		s.logger.ErrorContext(r.Context(), "templates not loaded", log.FieldPath, r.URL.Path)
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.templates.ExecuteTemplate(w, name, data); err != nil {
		s.logger.ErrorContext(r.Context(), "template execution failed",
			log.FieldError, err, "template", name)
		http.Error(w, "render error", http.StatusInternalServerError)
	}
}

// redirect sends the browser (or HTMX) to url.
func redirect(w http.ResponseWriter, r *http.Request, url string) {
	if isHTMX(r) {
		NewResponse().Redirect(r, url).Write(w)
		return
	}
	http.Redirect(w, r, url, http.StatusSeeOther)
}

// sanitizeInput trims whitespace and strips control characters.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

type categoryOption struct {
	Name  string
	Draft bool // typed by the user, not yet in the shared table
}

// categoryOptions merges the shared category table with the user's draft
// categories, drafts flagged so the UI can mark them unsaved.
func (s *Server) categoryOptions(r *http.Request, userID int64) []categoryOption {
	opts := make([]categoryOption, 0, len(core.DefaultCategories))
	for _, c := range core.DefaultCategories {
		opts = append(opts, categoryOption{Name: c.Name})
	}
	for _, name := range s.sessions.DraftCategories(r.Context(), userID) {
		opts = append(opts, categoryOption{Name: name, Draft: true})
	}
	return opts
}

type paymentOption struct {
	Value string
	Label string
}

func paymentOptions() []paymentOption {
	return []paymentOption{
		{Value: string(core.PaymentCash), Label: "Cash"},
		{Value: string(core.PaymentCard), Label: "Card"},
		{Value: string(core.PaymentUPI), Label: "UPI"},
		{Value: string(core.PaymentNetBanking), Label: "Net Banking"},
	}
}
