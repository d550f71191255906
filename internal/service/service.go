// Package service holds the KitchenHub use cases: accounts, recipes, the
// shopping list and the contact form. Handlers call it; it calls the store.
package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/shalteor/kitchenhub/internal/crypto"
	"github.com/shalteor/kitchenhub/internal/db"
	"github.com/shalteor/kitchenhub/internal/models"
)

// ContactSender delivers contact messages to whoever answers them
type ContactSender interface {
	Send(ctx context.Context, msg models.ContactMessage) error
}

// Options configures a Service
type Options struct {
	Hasher           *crypto.Hasher
	Contact          ContactSender
	EnforceOwnership bool
	Logger           *zap.Logger
}

type Service struct {
	db               *db.DB
	hasher           *crypto.Hasher
	contact          ContactSender
	enforceOwnership bool
	logger           *zap.Logger
}

// New creates a Service. A nil hasher means argon2id with default costs.
func New(database *db.DB, opts Options) *Service {
	hasher := opts.Hasher
	if hasher == nil {
		hasher, _ = crypto.NewHasher(crypto.AlgorithmArgon2id)
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		db:               database,
		hasher:           hasher,
		contact:          opts.Contact,
		enforceOwnership: opts.EnforceOwnership,
		logger:           logger,
	}
}

// Ping checks the store
func (s *Service) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}
