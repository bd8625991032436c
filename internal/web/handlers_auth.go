package web

import (
	"errors"
	"net/http"

	"github.com/JonMunkholm/stockroom/internal/auth"
	"github.com/JonMunkholm/stockroom/internal/logging"
	"github.com/JonMunkholm/stockroom/internal/web/templates"
)

// handleLoginPage renders the sign-in form, or skips it for a live session.
func (s *Server) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	if _, err := s.sessions.FromRequest(r); err == nil {
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}
	templates.Login(templates.LoginPage{}).Render(r.Context(), w)
}

// handleLogin checks credentials and sets the session cookie.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.respondError(w, r, err, http.StatusBadRequest)
		return
	}
	email := r.PostFormValue("email")

	user, err := s.auth.Login(r.Context(), email, r.PostFormValue("password"))
	if errors.Is(err, auth.ErrInvalidCredentials) {
		w.WriteHeader(http.StatusUnauthorized)
		templates.Login(templates.LoginPage{
			Email: email,
			Error: "Email ou senha incorretos!",
		}).Render(r.Context(), w)
		return
	}
	if err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError)
		return
	}

	if err := s.sessions.SetCookie(w, user.Email); err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError)
		return
	}
	logging.FromContext(r.Context()).Info("user logged in", "email", user.Email)
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

// handleLogout clears the session cookie.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if claims, err := s.sessions.FromRequest(r); err == nil {
		logging.FromContext(r.Context()).Info("user logged out", "email", claims.Email)
	}
	s.sessions.ClearCookie(w)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}
