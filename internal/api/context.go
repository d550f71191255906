package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/shalteor/kitchenhub/internal/session"
)

// currentSession returns the session loaded by the session middleware.
// Requests that skipped it get an empty anonymous session.
func currentSession(r *http.Request) *session.Session {
	if s, ok := session.FromContext(r.Context()); ok {
		return s
	}
	return &session.Session{}
}

// pathID parses the numeric {id} URL parameter
func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
