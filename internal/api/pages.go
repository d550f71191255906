package api

import (
	"fmt"
	"net/http"

	"github.com/shalteor/kitchenhub/internal/models"
	"github.com/shalteor/kitchenhub/internal/session"
)

const homeRecipeCount = 3

type homePage struct {
	Recipes []models.Recipe
}

// Home handles GET /
func (s *Server) Home(w http.ResponseWriter, r *http.Request) {
	if !currentSession(r).IsAuthenticated() {
		s.render(w, r, http.StatusOK, "welcome.html", "Welcome to "+s.siteName, nil)
		return
	}

	recipes, err := s.svc.ListRecipes(r.Context(), models.OrderByNewest, homeRecipeCount)
	if err != nil {
		s.serverError(w, r, err)
		return
	}

	s.render(w, r, http.StatusOK, "home.html", "Welcome", homePage{Recipes: recipes})
}

// About handles GET /about/
func (s *Server) About(w http.ResponseWriter, r *http.Request) {
	if !currentSession(r).IsAuthenticated() {
		s.flash(r, session.FlashInfo, "Log in to save recipes and keep a shopping list.")
	}
	s.render(w, r, http.StatusOK, "about.html", "About "+s.siteName, nil)
}

type contactForm struct {
	Name    string
	Email   string
	Subject string
	Message string
}

// ContactForm handles GET /contact/
func (s *Server) ContactForm(w http.ResponseWriter, r *http.Request) {
	form := contactForm{}
	if sess := currentSession(r); sess.IsAuthenticated() {
		form.Name = sess.Username
	}
	s.render(w, r, http.StatusOK, "contact.html", "Contact Us", form)
}

// Contact handles POST /contact/
func (s *Server) Contact(w http.ResponseWriter, r *http.Request) {
	if !parseForm(w, r) {
		return
	}

	form := contactForm{
		Name:    r.PostForm.Get("name"),
		Email:   r.PostForm.Get("email"),
		Subject: r.PostForm.Get("subject"),
		Message: r.PostForm.Get("message"),
	}

	msg, err := s.svc.SendContactMessage(r.Context(), form.Name, form.Email, form.Subject, form.Message)
	if err != nil {
		s.flashError(r, err)
		s.render(w, r, http.StatusOK, "contact.html", "Contact Us", form)
		return
	}

	s.flash(r, session.FlashSuccess, fmt.Sprintf("Thanks %s! Your message has been sent. We will reply to %s soon!", msg.Name, msg.Email))
	s.redirect(w, r, "/contact/")
}

// Healthz handles GET /healthz
func (s *Server) Healthz(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Ping(r.Context()); err != nil {
		s.logError(r, err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
