package api

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/shalteor/kitchenhub/internal/service"
	"github.com/shalteor/kitchenhub/internal/session"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageFiles = []string{
	"welcome.html",
	"home.html",
	"about.html",
	"register.html",
	"login.html",
	"contact.html",
	"recipes.html",
	"recipe.html",
	"search.html",
	"create.html",
	"update.html",
	"shopping.html",
}

type pages map[string]*template.Template

var templateFuncs = template.FuncMap{
	"rating": func(r *int) string {
		if r == nil {
			return "Not rated"
		}
		return strconv.Itoa(*r) + "/5"
	},
}

func parsePages() (pages, error) {
	p := make(pages, len(pageFiles))
	for _, name := range pageFiles {
		t, err := template.New(name).Funcs(templateFuncs).ParseFS(templateFS,
			"templates/layout.html",
			"templates/partials.html",
			"templates/"+name,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", name, err)
		}
		p[name] = t
	}
	return p, nil
}

// pageData is what every template receives
type pageData struct {
	Title     string
	SiteName  string
	Username  string
	LoggedIn  bool
	CSRFToken string
	Flashes   []session.Flash
	Data      any
}

// render writes page with the session's pending flashes. The session is
// saved before any body bytes go out.
func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, page, title string, data any) {
	t, ok := s.pages[page]
	if !ok {
		s.serverError(w, r, fmt.Errorf("unknown page %q", page))
		return
	}

	sess := currentSession(r)
	pd := pageData{
		Title:     title,
		SiteName:  s.siteName,
		Username:  sess.Username,
		LoggedIn:  sess.IsAuthenticated(),
		CSRFToken: sess.CSRFToken,
		Flashes:   sess.PopFlashes(),
		Data:      data,
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", pd); err != nil {
		s.serverError(w, r, fmt.Errorf("failed to render %s: %w", page, err))
		return
	}

	if err := s.sessions.Save(w, sess); err != nil {
		s.serverError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

// redirect saves the session and sends the browser to url
func (s *Server) redirect(w http.ResponseWriter, r *http.Request, url string) {
	if err := s.sessions.Save(w, currentSession(r)); err != nil {
		s.serverError(w, r, err)
		return
	}
	http.Redirect(w, r, url, http.StatusSeeOther)
}

// flash queues a message on the current session
func (s *Server) flash(r *http.Request, category, message string) {
	currentSession(r).AddFlash(category, message)
}

// flashError queues the user-facing message for err. Store failures are
// logged with the request ID.
func (s *Server) flashError(r *http.Request, err error) {
	category := session.FlashDanger
	if errors.Is(err, service.ErrNotFound) {
		category = session.FlashWarning
	}
	if errors.Is(err, service.ErrStore) {
		s.logError(r, err)
	}
	s.flash(r, category, service.Message(err))
}

func (s *Server) logError(r *http.Request, err error) {
	s.logger.Error("request failed",
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.String("request_id", middleware.GetReqID(r.Context())),
		zap.Error(err),
	)
}

func (s *Server) serverError(w http.ResponseWriter, r *http.Request, err error) {
	s.logError(r, err)
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

// parseForm reads the POST body, answering 413 or 400 itself on failure
func parseForm(w http.ResponseWriter, r *http.Request) bool {
	if err := r.ParseForm(); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			http.Error(w, http.StatusText(http.StatusRequestEntityTooLarge), http.StatusRequestEntityTooLarge)
			return false
		}
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return false
	}
	return true
}

// writeJSON writes a JSON response
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
