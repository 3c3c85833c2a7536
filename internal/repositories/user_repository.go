package repositories

import (
	"context"

	"shelflife/internal/models"
)

// UserRepository defines the interface for user data access.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	// UpdateProfile persists the name and password columns of user.
	UpdateProfile(ctx context.Context, user *models.User) error
}
