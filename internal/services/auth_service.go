package services

import (
	"context"
	"errors"
	"sync"

	"shelflife/internal/models"
	"shelflife/internal/repositories"
	"shelflife/pkg/password"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
)

// AuthService handles registration and credential checks.
type AuthService struct {
	userRepo repositories.UserRepository
	validate *validator.Validate

	dummyOnce   sync.Once
	dummyDigest string
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repositories.UserRepository) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		validate: validator.New(),
	}
}

// Register validates the form, hashes the password and stores a new user.
// The email pre-check only gives an early answer; the unique index decides.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	logCtx := logrus.WithField("email", in.Email)

	if err := s.validate.Struct(in); err != nil {
		tags := failedTags(err)
		if tags["required"] || len(tags) == 0 {
			return nil, ErrMissingFields
		}
		return nil, ErrPasswordMismatch
	}

	existing, err := s.userRepo.GetByEmail(ctx, in.Email)
	if err == nil && existing != nil {
		logCtx.Warn("Registration rejected: email already registered")
		return nil, ErrEmailTaken
	}
	if err != nil && !errors.Is(err, repositories.ErrNotFound) {
		logCtx.WithError(err).Error("Failed to check for existing user")
		return nil, ErrInternal
	}

	digest, err := password.Hash(in.Password)
	if err != nil {
		logCtx.WithError(err).Error("Failed to hash password during registration")
		return nil, ErrInternal
	}

	user := &models.User{
		Name:     in.Name,
		Email:    in.Email,
		Password: digest,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicateEntry) {
			logCtx.WithError(err).Warn("Registration rejected by unique constraint")
			return nil, ErrEmailTaken
		}
		logCtx.WithError(err).Error("Database error during user creation")
		return nil, ErrInternal
	}

	logCtx.WithField("user_id", user.ID).Info("User registered")
	return user, nil
}

// Login checks the credentials and returns the matching user. Empty input, an
// unknown email and a wrong password all yield ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, email, plaintext string) (*models.User, error) {
	logCtx := logrus.WithField("email", email)

	if email == "" || plaintext == "" {
		logCtx.Warn("Login attempt failed: missing credentials")
		return nil, ErrInvalidCredentials
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, repositories.ErrNotFound) {
			logCtx.WithError(err).Error("Login attempt failed: error finding user")
			return nil, ErrInternal
		}
		// Spend the same bcrypt time as a real comparison.
		password.Verify(s.dummy(), plaintext)
		logCtx.Warn("Login attempt failed: user not found")
		return nil, ErrInvalidCredentials
	}

	if !password.Verify(user.Password, plaintext) {
		logCtx.Warn("Login attempt failed: invalid password")
		return nil, ErrInvalidCredentials
	}

	logCtx.WithField("user_id", user.ID).Info("User logged in")
	return user, nil
}

func (s *AuthService) dummy() string {
	s.dummyOnce.Do(func() {
		digest, err := password.Hash("shelflife-dummy-password")
		if err != nil {
			logrus.WithError(err).Error("Failed to prepare dummy digest")
			return
		}
		s.dummyDigest = digest
	})
	return s.dummyDigest
}
