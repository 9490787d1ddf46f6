package http

import (
	"net/http"

	"kharcha/internal/api"
	"kharcha/internal/core"
	"kharcha/internal/log"
)

type loginView struct {
	Nav    navData
	Flash  *Flash
	Email  string
	Errors map[string]string
}

type signupView struct {
	Nav      navData
	Flash    *Flash
	FullName string
	Email    string
	Errors   map[string]string
}

type passwordView struct {
	Nav    navData
	Flash  *Flash
	Email  string
	Errors map[string]string
}

func (s *Server) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, "login.html", loginView{Nav: navData{Active: "/login"}})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		ErrorResponse(http.StatusBadRequest, "Invalid request format").Write(w)
		return
	}

	email := sanitizeInput(r.Form.Get("email"))
	password := r.Form.Get("password")

	view := loginView{Nav: navData{Active: "/login"}, Email: email, Errors: map[string]string{}}
	if err := core.ValidateEmail(email); err != nil {
		view.Errors["email"] = "Enter a valid email address"
	}
	if password == "" {
		view.Errors["password"] = "Password is required"
	}
	if len(view.Errors) > 0 {
		w.WriteHeader(http.StatusUnprocessableEntity)
		s.render(w, r, "login.html", view)
		return
	}

	sess, err := s.api.Login(r.Context(), email, password)
	if err != nil {
		if api.IsInvalid(err) {
			// Wrong credentials leave any existing session untouched.
			view.Flash = &Flash{Kind: "error", Text: "Invalid email or password"}
			w.WriteHeader(http.StatusUnauthorized)
			s.render(w, r, "login.html", view)
			return
		}
		s.logger.ErrorContext(r.Context(), "login failed", log.FieldError, err)
		view.Flash = &Flash{Kind: "error", Text: "Sign-in is unavailable right now. Try again shortly."}
		w.WriteHeader(http.StatusBadGateway)
		s.render(w, r, "login.html", view)
		return
	}

	s.clearCaches()
	if err := s.sessions.Save(r.Context(), sess); err != nil {
		s.logger.ErrorContext(r.Context(), "save session failed", log.FieldError, err, log.FieldUserID, sess.UserID)
		view.Flash = &Flash{Kind: "error", Text: "Could not start your session. Try again."}
		w.WriteHeader(http.StatusInternalServerError)
		s.render(w, r, "login.html", view)
		return
	}

	s.logger.InfoContext(r.Context(), "user signed in", log.FieldUserID, sess.UserID)
	redirect(w, r, "/dashboard")
}

func (s *Server) handleSignupPage(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, "signup.html", signupView{Nav: navData{Active: "/signup"}})
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		ErrorResponse(http.StatusBadRequest, "Invalid request format").Write(w)
		return
	}

	view := signupView{
		Nav:      navData{Active: "/signup"},
		FullName: sanitizeInput(r.Form.Get("fullname")),
		Email:    sanitizeInput(r.Form.Get("email")),
		Errors:   map[string]string{},
	}
	password := r.Form.Get("password")
	confirm := r.Form.Get("confirm")

	if view.FullName == "" {
		view.Errors["fullname"] = "Full name is required"
	}
	if err := core.ValidateEmail(view.Email); err != nil {
		view.Errors["email"] = "Enter a valid email address"
	}
	if err := core.ValidatePassword(password); err != nil {
		view.Errors["password"] = "Password needs 8+ characters and a special character (!@#$%^&*)"
	} else if password != confirm {
		view.Errors["confirm"] = "Passwords do not match"
	}
	if len(view.Errors) > 0 {
		w.WriteHeader(http.StatusUnprocessableEntity)
		s.render(w, r, "signup.html", view)
		return
	}

	err := s.api.Signup(r.Context(), api.SignupInput{
		FullName: view.FullName,
		Email:    view.Email,
		Password: password,
	})
	if err != nil {
		if api.IsInvalid(err) {
			view.Flash = &Flash{Kind: "error", Text: "An account with this email already exists"}
			w.WriteHeader(http.StatusConflict)
		} else {
			s.logger.ErrorContext(r.Context(), "signup failed", log.FieldError, err)
			view.Flash = &Flash{Kind: "error", Text: "Sign-up is unavailable right now. Try again shortly."}
			w.WriteHeader(http.StatusBadGateway)
		}
		s.render(w, r, "signup.html", view)
		return
	}

	s.render(w, r, "login.html", loginView{
		Nav:   navData{Active: "/login"},
		Email: view.Email,
		Flash: &Flash{Kind: "success", Text: "Account created. Sign in to continue."},
	})
}

func (s *Server) handleForgotPasswordPage(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, "forgot_password.html", passwordView{Nav: navData{Active: "/forgot-password"}})
}

func (s *Server) handleForgotPassword(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		ErrorResponse(http.StatusBadRequest, "Invalid request format").Write(w)
		return
	}

	view := passwordView{
		Nav:    navData{Active: "/forgot-password"},
		Email:  sanitizeInput(r.Form.Get("email")),
		Errors: map[string]string{},
	}
	if err := core.ValidateEmail(view.Email); err != nil {
		view.Errors["email"] = "Enter a valid email address"
		w.WriteHeader(http.StatusUnprocessableEntity)
		s.render(w, r, "forgot_password.html", view)
		return
	}

	if err := s.api.ForgotPassword(r.Context(), view.Email); err != nil {
		if api.IsInvalid(err) {
			view.Flash = &Flash{Kind: "error", Text: "No account found for that email"}
			w.WriteHeader(http.StatusNotFound)
		} else {
			s.logger.ErrorContext(r.Context(), "forgot password failed", log.FieldError, err)
			view.Flash = &Flash{Kind: "error", Text: "Could not send the reset code. Try again shortly."}
			w.WriteHeader(http.StatusBadGateway)
		}
		s.render(w, r, "forgot_password.html", view)
		return
	}

	s.render(w, r, "reset_password.html", passwordView{
		Nav:   navData{Active: "/reset-password"},
		Email: view.Email,
		Flash: &Flash{Kind: "success", Text: "A reset code is on its way to your email"},
	})
}

func (s *Server) handleResetPasswordPage(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, "reset_password.html", passwordView{Nav: navData{Active: "/reset-password"}})
}

func (s *Server) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		ErrorResponse(http.StatusBadRequest, "Invalid request format").Write(w)
		return
	}

	view := passwordView{
		Nav:    navData{Active: "/reset-password"},
		Email:  sanitizeInput(r.Form.Get("email")),
		Errors: map[string]string{},
	}
	otp := sanitizeInput(r.Form.Get("otp"))
	password := r.Form.Get("password")
	confirm := r.Form.Get("confirm")

	if err := core.ValidateEmail(view.Email); err != nil {
		view.Errors["email"] = "Enter a valid email address"
	}
	if otp == "" {
		view.Errors["otp"] = "Enter the code from your email"
	}
	if err := core.ValidatePassword(password); err != nil {
		view.Errors["password"] = "Password needs 8+ characters and a special character (!@#$%^&*)"
	} else if password != confirm {
		view.Errors["confirm"] = "Passwords do not match"
	}
	if len(view.Errors) > 0 {
		w.WriteHeader(http.StatusUnprocessableEntity)
		s.render(w, r, "reset_password.html", view)
		return
	}

	if err := s.api.ResetPassword(r.Context(), view.Email, otp, password); err != nil {
		if api.IsInvalid(err) {
			view.Flash = &Flash{Kind: "error", Text: "That code is wrong or has expired"}
			w.WriteHeader(http.StatusUnprocessableEntity)
		} else {
			s.logger.ErrorContext(r.Context(), "reset password failed", log.FieldError, err)
			view.Flash = &Flash{Kind: "error", Text: "Could not reset the password. Try again shortly."}
			w.WriteHeader(http.StatusBadGateway)
		}
		s.render(w, r, "reset_password.html", view)
		return
	}

	s.render(w, r, "login.html", loginView{
		Nav:   navData{Active: "/login"},
		Email: view.Email,
		Flash: &Flash{Kind: "success", Text: "Password updated. Sign in with your new password."},
	})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := s.sessions.Clear(r.Context()); err != nil {
		s.logger.ErrorContext(r.Context(), "clear session failed", log.FieldError, err)
	}
	s.clearCaches()
	redirect(w, r, "/")
}
