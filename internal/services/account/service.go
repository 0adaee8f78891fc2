package account

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"github.com/netpong/netpong/internal/dependencies/clock"
	"github.com/netpong/netpong/internal/model"
	"github.com/netpong/netpong/internal/storage"
)

// MinPasswordLength is the shortest password accepted at registration
const MinPasswordLength = 4

// Service owns the credential policy: username validation, password
// hashing, and duplicate detection. Persistence itself lives behind
// the storage interface.
type Service struct {
	storage storage.Storage
	clock   clock.Clock
	logger  *slog.Logger
}

// New creates a new account Service
func New(store storage.Storage, clk clock.Clock, logger *slog.Logger) *Service {
	return &Service{
		storage: store,
		clock:   clk,
		logger:  logger.With(slog.String("component", "account")),
	}
}

// Register creates an account, storing a bcrypt hash of the password.
// Fails with model.ErrInvalidUsername, model.ErrWeakPassword, or
// model.ErrDuplicateUsername.
func (s *Service) Register(ctx context.Context, username, password string) error {
	if !validUsername(username) {
		return model.ErrInvalidUsername
	}
	if len(password) < MinPasswordLength {
		return model.ErrWeakPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	account := &model.Account{
		Username:     username,
		PasswordHash: string(hash),
		CreatedAt:    s.clock.Now(),
	}

	// Duplicate detection is the store's job. Checking here first
	// would leave a window during the hash above where two racing
	// registrations of the same username both pass.
	if err := s.storage.CreateAccount(ctx, account); err != nil {
		if errors.Is(err, model.ErrDuplicateUsername) {
			return model.ErrDuplicateUsername
		}
		return fmt.Errorf("create account: %w", err)
	}

	s.logger.Info("account registered", slog.String("username", username))
	return nil
}

// Verify checks credentials against the stored hash. Unknown usernames
// and wrong passwords both fail with model.ErrAuthFailed so the two
// cases cannot be distinguished by a caller.
func (s *Service) Verify(ctx context.Context, username, password string) error {
	acct, err := s.storage.GetAccountByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, model.ErrAccountNotFound) {
			return model.ErrAuthFailed
		}
		return fmt.Errorf("load account: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(acct.PasswordHash), []byte(password)); err != nil {
		return model.ErrAuthFailed
	}
	return nil
}

// validUsername accepts non-empty ASCII alphanumeric names
func validUsername(username string) bool {
	if username == "" {
		return false
	}
	for _, r := range username {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return true
}
