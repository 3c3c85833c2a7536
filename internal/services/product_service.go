package services

import (
	"context"
	"errors"
	"time"

	"shelflife/internal/models"
	"shelflife/internal/repositories"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
)

// EventPublisher delivers product events to downstream consumers.
type EventPublisher interface {
	PublishProductEvent(event models.ProductEvent) error
}

// ProductService handles business logic related to products.
type ProductService struct {
	repo      repositories.ProductRepository
	publisher EventPublisher
	validate  *validator.Validate
	now       func() time.Time
}

// NewProductService creates a new ProductService. publisher may be nil.
func NewProductService(repo repositories.ProductRepository, publisher EventPublisher) *ProductService {
	return &ProductService{
		repo:      repo,
		publisher: publisher,
		validate:  validator.New(),
		now:       time.Now,
	}
}

// WithClock replaces the time source used for today's date and event stamps.
func (s *ProductService) WithClock(now func() time.Time) *ProductService {
	s.now = now
	return s
}

// Today returns the current calendar date as UTC midnight, comparable with
// stored expiry dates.
func (s *ProductService) Today() time.Time {
	t := s.now()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Dashboard returns all products ordered by expiry date together with today's
// date for the page to compare against.
func (s *ProductService) Dashboard(ctx context.Context) ([]models.Product, time.Time, error) {
	products, err := s.repo.List(ctx)
	if err != nil {
		logrus.WithError(err).Error("Failed to list products")
		return nil, time.Time{}, ErrInternal
	}
	return products, s.Today(), nil
}

// ExpiringWithin returns products expiring on or before today plus days,
// including already expired ones.
func (s *ProductService) ExpiringWithin(ctx context.Context, days int) ([]models.Product, time.Time, error) {
	today := s.Today()
	products, err := s.repo.ListExpiringBy(ctx, today.AddDate(0, 0, days))
	if err != nil {
		logrus.WithError(err).Error("Failed to list expiring products")
		return nil, time.Time{}, ErrInternal
	}
	return products, today, nil
}

// GetProductByID retrieves a single product by its ID.
func (s *ProductService) GetProductByID(ctx context.Context, id string) (*models.Product, error) {
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		logrus.WithField("product_id", id).WithError(err).Error("Failed to load product")
		return nil, ErrInternal
	}
	return product, nil
}

// CreateProduct validates the form and inserts a new product.
func (s *ProductService) CreateProduct(ctx context.Context, in ProductInput) (*models.Product, error) {
	expiry, err := s.checkInput(in)
	if err != nil {
		return nil, err
	}

	product := &models.Product{
		Name:        in.Name,
		ExpiryDate:  expiry,
		Description: in.Description,
	}
	if err := s.repo.Create(ctx, product); err != nil {
		logrus.WithField("name", in.Name).WithError(err).Error("Failed to create product")
		return nil, ErrInternal
	}

	logrus.WithField("product_id", product.ID).Info("Product created")
	s.publish(models.EventProductCreated, product)
	return product, nil
}

// UpdateProduct replaces the fields of an existing product. A missing product
// is reported before the input is validated.
func (s *ProductService) UpdateProduct(ctx context.Context, id string, in ProductInput) (*models.Product, error) {
	product, err := s.GetProductByID(ctx, id)
	if err != nil {
		return nil, err
	}

	expiry, err := s.checkInput(in)
	if err != nil {
		return nil, err
	}

	product.Name = in.Name
	product.ExpiryDate = expiry
	product.Description = in.Description
	if err := s.repo.Update(ctx, product); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		logrus.WithField("product_id", id).WithError(err).Error("Failed to update product")
		return nil, ErrInternal
	}

	logrus.WithField("product_id", id).Info("Product updated")
	s.publish(models.EventProductUpdated, product)
	return product, nil
}

// DeleteProduct deletes a product by its ID.
func (s *ProductService) DeleteProduct(ctx context.Context, id string) error {
	product, err := s.GetProductByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrProductNotFound
		}
		logrus.WithField("product_id", id).WithError(err).Error("Failed to delete product")
		return ErrInternal
	}

	logrus.WithField("product_id", id).Info("Product deleted")
	s.publish(models.EventProductDeleted, product)
	return nil
}

func (s *ProductService) checkInput(in ProductInput) (time.Time, error) {
	if err := s.validate.Struct(in); err != nil {
		if failedTags(err)["required"] {
			return time.Time{}, ErrProductFieldsRequired
		}
		return time.Time{}, ErrInvalidExpiryDate
	}
	expiry, err := time.Parse(models.DateLayout, in.ExpiryDate)
	if err != nil {
		return time.Time{}, ErrInvalidExpiryDate
	}
	return expiry, nil
}

// publish sends the event after the write has committed. Failures are logged
// and never undo the write.
func (s *ProductService) publish(eventType string, product *models.Product) {
	if s.publisher == nil {
		return
	}
	event := models.NewProductEvent(eventType, product, s.now())
	if err := s.publisher.PublishProductEvent(event); err != nil {
		logrus.WithFields(logrus.Fields{
			"product_id": product.ID,
			"event":      eventType,
		}).WithError(err).Warn("Failed to publish product event")
	}
}
