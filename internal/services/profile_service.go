package services

import (
	"context"
	"errors"

	"shelflife/internal/models"
	"shelflife/internal/repositories"
	"shelflife/pkg/password"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
)

// ProfileService lets a signed-in user change their name and password.
type ProfileService struct {
	userRepo repositories.UserRepository
	validate *validator.Validate
}

// NewProfileService creates a new ProfileService.
func NewProfileService(userRepo repositories.UserRepository) *ProfileService {
	return &ProfileService{
		userRepo: userRepo,
		validate: validator.New(),
	}
}

// GetUser loads the user behind a session.
func (s *ProfileService) GetUser(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		logrus.WithField("user_id", userID).WithError(err).Error("Failed to load user")
		return nil, ErrInternal
	}
	return user, nil
}

// UpdateProfile sets the name and, when a new password pair is supplied, the
// password digest. Both columns are written in one transaction.
func (s *ProfileService) UpdateProfile(ctx context.Context, userID string, in ProfileInput) (*models.User, error) {
	logCtx := logrus.WithField("user_id", userID)

	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := s.validate.Struct(in); err != nil {
		if failedTags(err)["eqfield"] && in.Name != "" {
			return nil, ErrPasswordMismatch
		}
		return nil, ErrNameRequired
	}

	user.Name = in.Name
	if in.Password != "" {
		digest, err := password.Hash(in.Password)
		if err != nil {
			logCtx.WithError(err).Error("Failed to hash new password")
			return nil, ErrInternal
		}
		user.Password = digest
	}

	if err := s.userRepo.UpdateProfile(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		logCtx.WithError(err).Error("Failed to update profile")
		return nil, ErrInternal
	}

	logCtx.WithField("password_changed", in.Password != "").Info("Profile updated")
	return user, nil
}
