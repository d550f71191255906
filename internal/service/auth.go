package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/shalteor/kitchenhub/internal/crypto"
	"github.com/shalteor/kitchenhub/internal/db"
	"github.com/shalteor/kitchenhub/internal/models"
)

const invalidCredentials = "Invalid username or password!"

// Register creates an account. The stored hash is never returned.
func (s *Service) Register(ctx context.Context, username, password, confirm string) (*models.User, error) {
	username = strings.TrimSpace(username)

	switch {
	case username == "":
		return nil, validationError("Username is required!")
	case tooLong(username):
		return nil, nameTooLong("Username")
	case password == "" || confirm == "":
		return nil, validationError("Password is required!")
	case password != confirm:
		return nil, validationError("Passwords do not match!")
	}

	_, err := s.db.GetUserByUsername(ctx, username)
	if err == nil {
		return nil, &Error{Kind: ErrConflict, Message: "Username already exists!"}
	}
	if !errors.Is(err, db.ErrUserNotFound) {
		return nil, storeError("look up user", err)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, storeError("hash password", err)
	}

	user := &models.User{Username: username, PasswordHash: hash}
	if err := s.db.CreateUser(ctx, user); err != nil {
		// lost a race with a concurrent registration
		if errors.Is(err, db.ErrUserExists) {
			return nil, &Error{Kind: ErrConflict, Message: "Username already exists!"}
		}
		return nil, storeError("create user", err)
	}

	s.logger.Info("user registered", zap.Int64("user_id", user.ID), zap.String("username", user.Username))

	user.PasswordHash = ""
	return user, nil
}

// Login checks a username/password pair. Unknown users and wrong passwords
// produce the same ErrAuth.
func (s *Service) Login(ctx context.Context, username, password string) (*models.User, error) {
	username = strings.TrimSpace(username)

	switch {
	case username == "":
		return nil, validationError("Username is required!")
	case password == "":
		return nil, validationError("Password is required!")
	}

	user, err := s.db.GetUserByUsername(ctx, username)
	if errors.Is(err, db.ErrUserNotFound) {
		return nil, &Error{Kind: ErrAuth, Message: invalidCredentials}
	}
	if err != nil {
		return nil, storeError("look up user", err)
	}

	ok, err := crypto.Verify(user.PasswordHash, password)
	if err != nil {
		return nil, storeError("verify password", err)
	}
	if !ok {
		return nil, &Error{Kind: ErrAuth, Message: invalidCredentials}
	}

	user.PasswordHash = ""
	return user, nil
}

// EnsureUser creates username with password unless it exists already.
func (s *Service) EnsureUser(ctx context.Context, username, password string) (bool, error) {
	_, err := s.Register(ctx, username, password, password)
	if errors.Is(err, ErrConflict) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
