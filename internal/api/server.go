package api

import (
	"go.uber.org/zap"

	"github.com/shalteor/kitchenhub/internal/service"
	"github.com/shalteor/kitchenhub/internal/session"
)

// Server holds the dependencies shared by every handler
type Server struct {
	svc            *service.Service
	sessions       *session.Manager
	pages          pages
	logger         *zap.Logger
	siteName       string
	allowedOrigins []string
}

// Options configures a Server
type Options struct {
	SiteName       string
	AllowedOrigins []string
	Logger         *zap.Logger
}

// NewServer creates a new web server. Templates are parsed up front so a
// broken template fails at startup.
func NewServer(svc *service.Service, sessions *session.Manager, opts Options) (*Server, error) {
	p, err := parsePages()
	if err != nil {
		return nil, err
	}

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	siteName := opts.SiteName
	if siteName == "" {
		siteName = "KitchenHub"
	}

	return &Server{
		svc:            svc,
		sessions:       sessions,
		pages:          p,
		logger:         logger,
		siteName:       siteName,
		allowedOrigins: opts.AllowedOrigins,
	}, nil
}
