package http

import (
	"net/http"
	"strconv"
	"strings"

	"kharcha/internal/api"
	"kharcha/internal/core"
	"kharcha/internal/log"
)

type profileView struct {
	Nav     navData
	Flash   *Flash
	Profile core.Profile
	Values  profileFormValues
	Errors  map[string]string
}

type profileFormValues struct {
	MonthlyIncome string
	PhoneNumber   string
	MonthlyBudget string
	SavingsGoal   string
}

func valuesFromProfile(p core.Profile) profileFormValues {
	return profileFormValues{
		MonthlyIncome: p.MonthlyIncome.Decimal(),
		PhoneNumber:   p.PhoneNumber,
		MonthlyBudget: p.MonthlyBudget.Decimal(),
		SavingsGoal:   p.SavingsGoal.Decimal(),
	}
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request, sess core.Session) {
	view := profileView{Nav: newNav(sess, "/profile"), Errors: map[string]string{}}

	profile, err := s.getProfile(r.Context(), sess.UserID)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "profile fetch failed", log.FieldError, err, log.FieldUserID, sess.UserID)
		view.Flash = &Flash{Kind: "error", Text: "Could not load your profile"}
		s.render(w, r, "profile.html", view)
		return
	}

	view.Profile = profile
	view.Values = valuesFromProfile(profile)
	s.render(w, r, "profile.html", view)
}

func (s *Server) handleProfileUpdate(w http.ResponseWriter, r *http.Request, sess core.Session) {
	view := profileView{Nav: newNav(sess, "/profile"), Errors: map[string]string{}}

	// 10 MB cap covers the largest reasonable profile image.
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		ErrorResponse(http.StatusBadRequest, "Invalid request format").Write(w)
		return
	}

	current, err := s.getProfile(r.Context(), sess.UserID)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "profile fetch failed", log.FieldError, err, log.FieldUserID, sess.UserID)
		view.Flash = &Flash{Kind: "error", Text: "Could not load your profile"}
		w.WriteHeader(http.StatusBadGateway)
		s.render(w, r, "profile.html", view)
		return
	}
	view.Profile = current

	view.Values = profileFormValues{
		MonthlyIncome: sanitizeInput(r.Form.Get("monthly_income")),
		PhoneNumber:   sanitizeInput(r.Form.Get("phone_number")),
		MonthlyBudget: sanitizeInput(r.Form.Get("monthly_budget")),
		SavingsGoal:   sanitizeInput(r.Form.Get("savings_goal")),
	}

	// Empty fields keep their current values so a partial edit never wipes
	// the rest of the record.
	update := api.ProfileUpdate{
		MonthlyIncome: current.MonthlyIncome,
		PhoneNumber:   current.PhoneNumber,
		MonthlyBudget: current.MonthlyBudget,
		SavingsGoal:   current.SavingsGoal,
	}
	if view.Values.PhoneNumber != "" {
		update.PhoneNumber = view.Values.PhoneNumber
	}
	update.MonthlyIncome = s.parseMoneyField(view, "monthly_income", view.Values.MonthlyIncome, update.MonthlyIncome)
	update.MonthlyBudget = s.parseMoneyField(view, "monthly_budget", view.Values.MonthlyBudget, update.MonthlyBudget)
	update.SavingsGoal = s.parseMoneyField(view, "savings_goal", view.Values.SavingsGoal, update.SavingsGoal)

	if len(view.Errors) > 0 {
		w.WriteHeader(http.StatusUnprocessableEntity)
		s.render(w, r, "profile.html", view)
		return
	}

	var image *api.ImageUpload
	if file, header, err := r.FormFile("profile_image"); err == nil {
		defer file.Close()
		image = &api.ImageUpload{Filename: header.Filename, Content: file}
	}

	updated, err := s.api.UpdateProfile(r.Context(), sess.UserID, update, image)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "profile update failed", log.FieldError, err, log.FieldUserID, sess.UserID)
		view.Flash = &Flash{Kind: "error", Text: "Could not save your profile. Try again."}
		w.WriteHeader(http.StatusBadGateway)
		s.render(w, r, "profile.html", view)
		return
	}

	s.profileCache.Delete(s.cacheKey("profile", sess.UserID))
	s.logger.InfoContext(r.Context(), "profile updated", log.FieldUserID, sess.UserID)

	if isHTMX(r) {
		NewResponse().Toast(ToastSuccess, "Profile saved").Apply(w)
	}
	view.Profile = updated
	view.Values = valuesFromProfile(updated)
	view.Flash = &Flash{Kind: "success", Text: "Profile saved"}
	s.render(w, r, "profile.html", view)
}

func (s *Server) parseMoneyField(view profileView, field, raw string, fallback core.Money) core.Money {
	if raw == "" {
		return fallback
	}
	m, err := core.ParseAmount(raw)
	if err != nil {
		// An explicit zero clears the field. A zero budget switches
		// alerts off.
		if f, ferr := strconv.ParseFloat(strings.ReplaceAll(raw, ",", ""), 64); ferr == nil && f == 0 {
			return core.Money{}
		}
		view.Errors[field] = "Enter a valid amount"
		return fallback
	}
	return m
}

func (s *Server) handleDeleteAccount(w http.ResponseWriter, r *http.Request, sess core.Session) {
	if err := s.api.DeleteUser(r.Context(), sess.UserID); err != nil {
		s.logger.ErrorContext(r.Context(), "delete account failed", log.FieldError, err, log.FieldUserID, sess.UserID)
		view := profileView{
			Nav:    newNav(sess, "/profile"),
			Flash:  &Flash{Kind: "error", Text: "Could not delete your account. Try again."},
			Errors: map[string]string{},
		}
		w.WriteHeader(http.StatusBadGateway)
		s.render(w, r, "profile.html", view)
		return
	}

	if err := s.sessions.Clear(r.Context()); err != nil {
		s.logger.ErrorContext(r.Context(), "clear session failed", log.FieldError, err)
	}
	s.clearCaches()
	s.logger.InfoContext(r.Context(), "account deleted", log.FieldUserID, sess.UserID)
	redirect(w, r, "/")
}
