package http

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"kharcha/internal/core"
	"kharcha/internal/log"
)

type reportOption struct {
	ID   int64
	Name string
}

type reportView struct {
	Nav     navData
	Flash   *Flash
	Options []reportOption
}

func (s *Server) newReportView(sess core.Session) reportView {
	view := reportView{Nav: newNav(sess, "/report")}
	view.Options = append(view.Options, reportOption{ID: 0, Name: "All Categories"})
	for _, c := range core.DefaultCategories {
		view.Options = append(view.Options, reportOption{ID: c.ID, Name: c.Name})
	}
	return view
}

func (s *Server) handleReportPage(w http.ResponseWriter, r *http.Request, sess core.Session) {
	s.render(w, r, "report.html", s.newReportView(sess))
}

func (s *Server) handleReportDownload(w http.ResponseWriter, r *http.Request, sess core.Session) {
	var categoryID *int64
	categoryName := "All_Categories"
	if v := strings.TrimSpace(r.URL.Query().Get("category_id")); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			ErrorResponse(http.StatusBadRequest, "Unknown category").Write(w)
			return
		}
		categoryID = &id
		if name, ok := core.CategoryNameByID(id); ok {
			categoryName = strings.ReplaceAll(name, " ", "_")
		}
	}

	// The deadline really cancels the upstream request; an expired timer
	// never leaves an orphaned download running.
	ctx, cancel := context.WithTimeout(r.Context(), s.reportTimeout)
	defer cancel()

	report, err := s.api.DownloadReport(ctx, sess.UserID, categoryID)
	if err != nil {
		view := s.newReportView(sess)
		if errors.Is(err, context.DeadlineExceeded) {
			s.logger.WarnContext(r.Context(), "report download timed out",
				log.FieldUserID, sess.UserID, "timeout", s.reportTimeout.String())
			view.Flash = &Flash{Kind: "error", Text: "The report took too long to generate. Try again."}
			if isHTMX(r) {
				NewResponse().Toast(ToastError, view.Flash.Text).Apply(w)
			}
			w.WriteHeader(http.StatusGatewayTimeout)
		} else {
			s.logger.ErrorContext(r.Context(), "report download failed",
				log.FieldError, err, log.FieldUserID, sess.UserID)
			view.Flash = &Flash{Kind: "error", Text: "Could not generate the report. Try again."}
			if isHTMX(r) {
				NewResponse().Toast(ToastError, view.Flash.Text).Apply(w)
			}
			w.WriteHeader(http.StatusBadGateway)
		}
		s.render(w, r, "report.html", view)
		return
	}
	defer report.Body.Close()

	filename := report.Filename
	if filename == "" {
		filename = categoryName + "_Expense_Report.pdf"
	}
	contentType := report.ContentType
	if contentType == "" {
		contentType = "application/pdf"
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	if _, err := io.Copy(w, report.Body); err != nil {
		s.logger.WarnContext(r.Context(), "report stream interrupted",
			log.FieldError, err, log.FieldUserID, sess.UserID)
	}
}
