package api

import (
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/shalteor/kitchenhub/internal/session"
)

type credentialsForm struct {
	Username string
}

// RegisterForm handles GET /register/
func (s *Server) RegisterForm(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "register.html", "Register", credentialsForm{})
}

// Register handles POST /register/
func (s *Server) Register(w http.ResponseWriter, r *http.Request) {
	if !parseForm(w, r) {
		return
	}

	username := r.PostForm.Get("username")
	user, err := s.svc.Register(r.Context(), username, r.PostForm.Get("password"), r.PostForm.Get("repassword"))
	if err != nil {
		s.flashError(r, err)
		s.render(w, r, http.StatusOK, "register.html", "Register", credentialsForm{Username: username})
		return
	}

	s.flash(r, session.FlashSuccess, fmt.Sprintf("Registration successful! Welcome %s!", user.Username))
	s.redirect(w, r, "/login/")
}

// LoginForm handles GET /login/
func (s *Server) LoginForm(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "login.html", "Log In", credentialsForm{})
}

// Login handles POST /login/
func (s *Server) Login(w http.ResponseWriter, r *http.Request) {
	if !parseForm(w, r) {
		return
	}

	username := r.PostForm.Get("username")
	user, err := s.svc.Login(r.Context(), username, r.PostForm.Get("password"))
	if err != nil {
		s.flashError(r, err)
		s.render(w, r, http.StatusOK, "login.html", "Log In", credentialsForm{Username: username})
		return
	}

	sess := currentSession(r)
	if err := sess.Login(user.ID, user.Username); err != nil {
		s.serverError(w, r, err)
		return
	}

	s.logger.Info("user logged in", zap.Int64("user_id", user.ID), zap.String("username", user.Username))

	s.flash(r, session.FlashSuccess, fmt.Sprintf("Login successful! Welcome back %s!", user.Username))
	s.redirect(w, r, "/")
}

// Logout handles GET /logout/
func (s *Server) Logout(w http.ResponseWriter, r *http.Request) {
	if err := currentSession(r).Logout(); err != nil {
		s.serverError(w, r, err)
		return
	}

	s.flash(r, session.FlashInfo, "You have been logged out.")
	s.redirect(w, r, "/")
}
