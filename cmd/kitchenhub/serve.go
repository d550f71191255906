package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/shalteor/kitchenhub/internal/api"
	"github.com/shalteor/kitchenhub/internal/config"
	"github.com/shalteor/kitchenhub/internal/contact"
	"github.com/shalteor/kitchenhub/internal/crypto"
	"github.com/shalteor/kitchenhub/internal/db"
	"github.com/shalteor/kitchenhub/internal/service"
	"github.com/shalteor/kitchenhub/internal/session"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web server",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.UsesPlaceholderSecret() {
		logger.Warn("session secret is the shipped placeholder; set KITCHENHUB_SECRET before deploying")
	}

	// Initialize database
	database, err := db.New(cfg.Database.Path)
	if err != nil {
		return err
	}
	defer database.Close()

	logger.Info("database initialized", zap.String("path", cfg.Database.Path))

	svc, closeContact, err := newService(ctx, cfg, database)
	if err != nil {
		return err
	}
	defer closeContact()

	sessions := session.NewManager(session.Config{
		Secret:     cfg.Session.Secret,
		CookieName: cfg.Session.CookieName,
		TTL:        cfg.GetSessionTTL(),
		Secure:     cfg.Session.SecureCookie,
	})

	server, err := api.NewServer(svc, sessions, api.Options{
		SiteName:       cfg.SiteName,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Logger:         logger,
	})
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      server.NewRouter(),
		ReadTimeout:  cfg.GetReadTimeout(),
		WriteTimeout: cfg.GetWriteTimeout(),
		IdleTimeout:  cfg.GetIdleTimeout(),
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server", zap.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}

// newService wires the service with the configured hasher and contact
// transport. The returned func releases the transport.
func newService(ctx context.Context, cfg *config.Config, database *db.DB) (*service.Service, func(), error) {
	hasher, err := crypto.NewHasher(crypto.Algorithm(cfg.Auth.PasswordHash))
	if err != nil {
		return nil, nil, err
	}

	var sender service.ContactSender
	closeFn := func() {}

	switch cfg.Contact.Transport {
	case "redis":
		rc := cfg.Contact.Redis
		client, err := contact.Connect(ctx, contact.RedisOptions{Addr: rc.Addr, Password: rc.Password, DB: rc.DB})
		if err != nil {
			return nil, nil, err
		}
		logger.Info("contact messages go to redis", zap.String("addr", rc.Addr), zap.String("list", rc.List))
		sender = contact.NewRedisSender(client, rc.List)
		closeFn = func() { _ = client.Close() }
	default:
		sender = contact.NewLogSender(logger)
	}

	svc := service.New(database, service.Options{
		Hasher:           hasher,
		Contact:          sender,
		EnforceOwnership: cfg.Auth.EnforceOwnership,
		Logger:           logger,
	})
	return svc, closeFn, nil
}
