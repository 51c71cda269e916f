package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/phrazzld/voicetask-api/internal/domain"
	"github.com/phrazzld/voicetask-api/internal/platform/logger"
	"github.com/phrazzld/voicetask-api/internal/service/auth"
	"github.com/phrazzld/voicetask-api/internal/store"
)

// UserService registers credential users and checks their passwords.
type UserService interface {
	// Register creates a user with a hashed password.
	// Returns ErrEmailTaken when the email is already registered.
	Register(ctx context.Context, email, password string, name *string) (*domain.User, error)

	// Authenticate returns the user whose credentials match.
	// Returns ErrInvalidCredentials for an unknown email or a wrong password.
	Authenticate(ctx context.Context, email, password string) (*domain.User, error)
}

// UserServiceImpl implements the UserService interface
type UserServiceImpl struct {
	userStore store.UserStore
	hasher    auth.PasswordHasher
	verifier  auth.PasswordVerifier
	logger    *slog.Logger
}

// NewUserService creates a new UserService
func NewUserService(
	userStore store.UserStore,
	hasher auth.PasswordHasher,
	verifier auth.PasswordVerifier,
	logger *slog.Logger,
) UserService {
	if logger == nil {
		logger = slog.Default()
	}
	return &UserServiceImpl{
		userStore: userStore,
		hasher:    hasher,
		verifier:  verifier,
		logger:    logger.With(slog.String("component", "user_service")),
	}
}

// Register implements UserService.
func (s *UserServiceImpl) Register(
	ctx context.Context,
	email, password string,
	name *string,
) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if strings.TrimSpace(email) == "" {
		return nil, domain.NewValidationError("email", "is required", domain.ErrInvalidEmail)
	}
	if err := domain.ValidatePassword(password); err != nil {
		return nil, err
	}

	hashed, err := s.hasher.Hash(password)
	if err != nil {
		log.Error("failed to hash password", slog.String("error", err.Error()))
		return nil, NewServiceError("register", "failed to hash password", err)
	}

	user, err := domain.NewUser(email, name, hashed)
	if err != nil {
		return nil, err
	}

	if err := s.userStore.Create(ctx, user); err != nil {
		if errors.Is(err, store.ErrEmailExists) {
			log.Debug("attempted to register an existing email")
		} else {
			log.Error("failed to save user", slog.String("error", err.Error()))
		}
		return nil, NewServiceError("register", "failed to save user", err)
	}

	log.Info("user registered", slog.String("user_id", user.ID.String()))
	return user, nil
}

// Authenticate implements UserService.
func (s *UserServiceImpl) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	user, err := s.userStore.GetByEmail(ctx, domain.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		log.Error("failed to look up user", slog.String("error", err.Error()))
		return nil, NewServiceError("authenticate", "failed to look up user", err)
	}

	if err := s.verifier.Compare(user.HashedPassword, password); err != nil {
		if !errors.Is(err, auth.ErrInvalidCredentials) {
			log.Warn("password comparison failed", slog.String("error", err.Error()))
		}
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

var _ UserService = (*UserServiceImpl)(nil)
