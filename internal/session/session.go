// Package session keeps per-visitor state in a signed cookie. The cookie
// carries the logged-in identity, the CSRF token and pending flash messages.
package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/shalteor/kitchenhub/internal/crypto"
)

const (
	issuer         = "kitchenhub"
	csrfTokenBytes = 32
)

var ErrInvalidToken = errors.New("invalid session token")

type contextKey string

const sessionContextKey contextKey = "session"

// Flash categories
const (
	FlashSuccess = "success"
	FlashInfo    = "info"
	FlashWarning = "warning"
	FlashDanger  = "danger"
)

// Flash is a one-shot message shown on the next rendered page
type Flash struct {
	Category string `json:"c"`
	Message  string `json:"m"`
}

// Session is the decoded state of one visitor
type Session struct {
	UserID    int64
	Username  string
	CSRFToken string
	Flashes   []Flash
}

// Claims is the JWT payload of the session cookie
type Claims struct {
	UserID   int64   `json:"user_id,omitempty"`
	Username string  `json:"username,omitempty"`
	CSRF     string  `json:"csrf"`
	Flashes  []Flash `json:"flashes,omitempty"`
	jwt.RegisteredClaims
}

// New starts an anonymous session with a fresh CSRF token
func New() (*Session, error) {
	token, err := crypto.GenerateToken(csrfTokenBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to generate csrf token: %w", err)
	}
	return &Session{CSRFToken: token}, nil
}

// IsAuthenticated reports whether someone is logged in
func (s *Session) IsAuthenticated() bool {
	return s.UserID != 0
}

// Login replaces all prior state with the given identity and rotates the
// CSRF token.
func (s *Session) Login(userID int64, username string) error {
	if err := s.reset(); err != nil {
		return err
	}
	s.UserID = userID
	s.Username = username
	return nil
}

// Logout drops all state. Calling it on an anonymous session is harmless.
func (s *Session) Logout() error {
	return s.reset()
}

func (s *Session) reset() error {
	fresh, err := New()
	if err != nil {
		return err
	}
	*s = *fresh
	return nil
}

// AddFlash queues a message for the next rendered page
func (s *Session) AddFlash(category, message string) {
	s.Flashes = append(s.Flashes, Flash{Category: category, Message: message})
}

// PopFlashes returns the queued messages and clears the queue
func (s *Session) PopFlashes() []Flash {
	flashes := s.Flashes
	s.Flashes = nil
	return flashes
}

// NewContext returns ctx carrying s
func NewContext(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, sessionContextKey, s)
}

// FromContext extracts the session stored by Manager.Middleware
func FromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(sessionContextKey).(*Session)
	return s, ok
}

// Config holds the cookie settings
type Config struct {
	Secret     string
	CookieName string
	TTL        time.Duration
	Secure     bool
}

// Manager reads and writes the session cookie
type Manager struct {
	secret        []byte
	signingMethod jwt.SigningMethod
	cookieName    string
	ttl           time.Duration
	secure        bool
}

// NewManager creates a Manager signing with HS256
func NewManager(cfg Config) *Manager {
	name := cfg.CookieName
	if name == "" {
		name = "kitchenhub_session"
	}
	ttl := cfg.TTL
	if ttl == 0 {
		ttl = 24 * time.Hour
	}
	return &Manager{
		secret:        []byte(cfg.Secret),
		signingMethod: jwt.SigningMethodHS256,
		cookieName:    name,
		ttl:           ttl,
		secure:        cfg.Secure,
	}
}

// CookieName returns the name of the session cookie
func (m *Manager) CookieName() string {
	return m.cookieName
}

// Encode signs s into a token
func (m *Manager) Encode(s *Session) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID:   s.UserID,
		Username: s.Username,
		CSRF:     s.CSRFToken,
		Flashes:  s.Flashes,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    issuer,
		},
	}

	token := jwt.NewWithClaims(m.signingMethod, claims)
	return token.SignedString(m.secret)
}

// Decode verifies a token and returns the session it carries
func (m *Manager) Decode(tokenString string) (*Session, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != m.signingMethod {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Method)
		}
		return m.secret, nil
	}, jwt.WithIssuer(issuer))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.CSRF == "" {
		return nil, ErrInvalidToken
	}

	return &Session{
		UserID:    claims.UserID,
		Username:  claims.Username,
		CSRFToken: claims.CSRF,
		Flashes:   claims.Flashes,
	}, nil
}

// Load returns the request's session. A missing or invalid cookie starts a
// new anonymous session.
func (m *Manager) Load(r *http.Request) (*Session, error) {
	cookie, err := r.Cookie(m.cookieName)
	if err == nil && cookie.Value != "" {
		if s, err := m.Decode(cookie.Value); err == nil {
			return s, nil
		}
	}
	return New()
}

// Save writes s to the response cookie. It must run before the body.
func (m *Manager) Save(w http.ResponseWriter, s *Session) error {
	token, err := m.Encode(s)
	if err != nil {
		return fmt.Errorf("failed to sign session: %w", err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     m.cookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(m.ttl / time.Second),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}
