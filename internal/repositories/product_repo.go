package repositories

import (
	"context"
	"time"

	"shelflife/internal/models"
)

// ProductRepository defines the interface for product data access.
type ProductRepository interface {
	// List returns every product, soonest expiry first.
	List(ctx context.Context) ([]models.Product, error)
	// ListExpiringBy returns products expiring on or before cutoff, soonest first.
	ListExpiringBy(ctx context.Context, cutoff time.Time) ([]models.Product, error)
	GetByID(ctx context.Context, id string) (*models.Product, error)
	Create(ctx context.Context, product *models.Product) error
	Update(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, id string) error
}
