package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"github.com/folioapp/folio/internal/model"
	"github.com/folioapp/folio/internal/store"
)

var (
	ErrInvalidSetupToken = errors.New("invalid setup token")
	ErrAdminExists       = errors.New("admin already exists")
	ErrInvalidInput      = errors.New("invalid input")

	// ErrInvalidCredentials covers both unknown username and wrong password.
	// Callers must not distinguish the two in responses; logs may.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Credential shape limits, shared by the HTTP surface and the CLI.
const (
	MinUsernameLen = 3
	MinPasswordLen = 6
)

// HashCost is the bcrypt work factor for stored passwords.
const HashCost = 12

// AuthService owns the administrator account: first-run setup and credential
// verification. It is the only writer of the admin record.
type AuthService struct {
	store      *store.Store
	setupToken []byte
	hashCost   int
	logger     *slog.Logger
}

// NewAuthService creates an AuthService. setupToken is the pre-shared secret
// that gates first-run setup.
func NewAuthService(st *store.Store, setupToken string, logger *slog.Logger) *AuthService {
	return &AuthService{
		store:      st,
		setupToken: []byte(setupToken),
		hashCost:   HashCost,
		logger:     logger,
	}
}

// SetHashCost overrides the bcrypt cost. Tests lower it; production keeps
// the default.
func (s *AuthService) SetHashCost(cost int) {
	s.hashCost = cost
}

// CheckAdminExists reports whether the administrator account has been set up.
func (s *AuthService) CheckAdminExists(ctx context.Context) (bool, error) {
	exists, err := s.store.HasAdmin(ctx)
	if err != nil {
		return false, fmt.Errorf("check admin exists: %w", err)
	}
	return exists, nil
}

// SetupAdmin creates the sole administrator account. The setup token must
// match the pre-shared secret, and the account may not already exist. The
// existence check happens inside the store's insert, so two concurrent setup
// calls cannot both succeed.
func (s *AuthService) SetupAdmin(ctx context.Context, setupToken, username, password string) (*model.Admin, error) {
	if subtle.ConstantTimeCompare([]byte(setupToken), s.setupToken) != 1 {
		return nil, ErrInvalidSetupToken
	}
	if len(username) < MinUsernameLen {
		return nil, fmt.Errorf("%w: username must be at least %d characters", ErrInvalidInput, MinUsernameLen)
	}
	if len(password) < MinPasswordLen {
		return nil, fmt.Errorf("%w: password must be at least %d characters", ErrInvalidInput, MinPasswordLen)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.hashCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	admin := &model.Admin{
		Username:     username,
		PasswordHash: string(hash),
	}
	if err := s.store.CreateAdmin(ctx, admin); err != nil {
		if errors.Is(err, store.ErrAdminExists) {
			return nil, ErrAdminExists
		}
		return nil, fmt.Errorf("create admin: %w", err)
	}

	s.logger.Info("admin account created", "username", username)
	return admin, nil
}

// Authenticate verifies a username/password pair against the stored account.
// Unknown usernames and wrong passwords both come back as
// ErrInvalidCredentials; only store failures produce a different error.
func (s *AuthService) Authenticate(ctx context.Context, username, password string) (*model.Admin, error) {
	admin, err := s.store.GetAdminByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.logger.Warn("login for unknown username", "username", username)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("look up admin: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)); err != nil {
		s.logger.Warn("login with wrong password", "username", username)
		return nil, ErrInvalidCredentials
	}
	return admin, nil
}
