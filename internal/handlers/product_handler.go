package handlers

import (
	"errors"

	"shelflife/internal/services"
	"shelflife/internal/session"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// ProductHandler handles the dashboard and product forms.
type ProductHandler struct {
	service  *services.ProductService
	sessions *session.Manager
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(service *services.ProductService, sessions *session.Manager) *ProductHandler {
	return &ProductHandler{
		service:  service,
		sessions: sessions,
	}
}

// RegisterRoutes registers the product routes behind guard.
func (h *ProductHandler) RegisterRoutes(router fiber.Router, guard fiber.Handler) {
	router.Get("/dashboard", guard, h.HandleDashboard)

	productRoutes := router.Group("/product", guard)
	productRoutes.Get("/add", h.ShowAddProduct)
	productRoutes.Post("/add", h.HandleAddProduct)
	productRoutes.Get("/edit/:id", h.ShowEditProduct)
	productRoutes.Post("/edit/:id", h.HandleEditProduct)
	productRoutes.Post("/delete/:id", h.HandleDeleteProduct)
}

// HandleDashboard lists every product, soonest expiry first.
func (h *ProductHandler) HandleDashboard(c *fiber.Ctx) error {
	products, today, err := h.service.Dashboard(c.UserContext())
	if err != nil {
		return err
	}
	return render(c, h.sessions, "dashboard", "Dashboard", fiber.Map{
		"Products": products,
		"Today":    today,
	})
}

// ShowAddProduct renders the add form.
func (h *ProductHandler) ShowAddProduct(c *fiber.Ctx) error {
	return render(c, h.sessions, "add_product", "Add product", nil)
}

// HandleAddProduct creates a product from the add form.
func (h *ProductHandler) HandleAddProduct(c *fiber.Ctx) error {
	var in services.ProductInput
	if err := c.BodyParser(&in); err != nil {
		logrus.WithError(err).Warn("Error parsing product form")
		return redirectWithFlash(c, h.sessions, session.FlashDanger, "Name and expiry date are required", "/product/add")
	}

	if _, err := h.service.CreateProduct(c.UserContext(), in); err != nil {
		return redirectWithFlash(c, h.sessions, session.FlashDanger, productErrorMessage(err, "Error adding product"), "/product/add")
	}
	return redirectWithFlash(c, h.sessions, session.FlashSuccess, "Product added successfully", "/dashboard")
}

// ShowEditProduct renders the edit form for the product in the path.
func (h *ProductHandler) ShowEditProduct(c *fiber.Ctx) error {
	product, err := h.service.GetProductByID(c.UserContext(), c.Params("id"))
	if err != nil {
		if errors.Is(err, services.ErrProductNotFound) {
			return fiber.ErrNotFound
		}
		return err
	}
	return render(c, h.sessions, "edit_product", "Edit product", fiber.Map{"Product": product})
}

// HandleEditProduct updates the product in the path from the edit form.
func (h *ProductHandler) HandleEditProduct(c *fiber.Ctx) error {
	id := c.Params("id")
	editPath := "/product/edit/" + id

	var in services.ProductInput
	if err := c.BodyParser(&in); err != nil {
		logrus.WithError(err).Warn("Error parsing product form")
		return redirectWithFlash(c, h.sessions, session.FlashDanger, "Name and expiry date are required", editPath)
	}

	if _, err := h.service.UpdateProduct(c.UserContext(), id, in); err != nil {
		if errors.Is(err, services.ErrProductNotFound) {
			return fiber.ErrNotFound
		}
		return redirectWithFlash(c, h.sessions, session.FlashDanger, productErrorMessage(err, "Error updating product"), editPath)
	}
	return redirectWithFlash(c, h.sessions, session.FlashSuccess, "Product updated successfully", "/dashboard")
}

// HandleDeleteProduct deletes the product in the path. Apart from an unknown
// id, it always ends on the dashboard.
func (h *ProductHandler) HandleDeleteProduct(c *fiber.Ctx) error {
	if err := h.service.DeleteProduct(c.UserContext(), c.Params("id")); err != nil {
		if errors.Is(err, services.ErrProductNotFound) {
			return fiber.ErrNotFound
		}
		return redirectWithFlash(c, h.sessions, session.FlashDanger, "Error deleting product", "/dashboard")
	}
	return redirectWithFlash(c, h.sessions, session.FlashSuccess, "Product deleted successfully", "/dashboard")
}

func productErrorMessage(err error, fallback string) string {
	switch {
	case errors.Is(err, services.ErrProductFieldsRequired):
		return "Name and expiry date are required"
	case errors.Is(err, services.ErrInvalidExpiryDate):
		return "Expiry date must be a valid date (YYYY-MM-DD)"
	default:
		return fallback
	}
}
