package handlers

import (
	"errors"
	"fmt"

	"shelflife/internal/services"
	"shelflife/internal/session"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// ProfileHandler shows and updates the signed-in user's profile.
type ProfileHandler struct {
	service  *services.ProfileService
	sessions *session.Manager
}

// NewProfileHandler creates a new ProfileHandler.
func NewProfileHandler(service *services.ProfileService, sessions *session.Manager) *ProfileHandler {
	return &ProfileHandler{
		service:  service,
		sessions: sessions,
	}
}

// RegisterRoutes registers the profile routes behind guard.
func (h *ProfileHandler) RegisterRoutes(router fiber.Router, guard fiber.Handler) {
	router.Get("/profile", guard, h.ShowProfile)
	router.Post("/profile", guard, h.HandleUpdateProfile)
}

// ShowProfile renders the profile form.
func (h *ProfileHandler) ShowProfile(c *fiber.Ctx) error {
	s, ok := h.sessions.Load(c)
	if !ok {
		return fiber.ErrUnauthorized
	}

	user, err := h.service.GetUser(c.UserContext(), s.UserID)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			return fiber.ErrNotFound
		}
		return err
	}
	return render(c, h.sessions, "profile", "Profile", fiber.Map{"Profile": user})
}

// HandleUpdateProfile changes the name and, when given, the password. The
// session is re-issued with the new display name.
func (h *ProfileHandler) HandleUpdateProfile(c *fiber.Ctx) error {
	s, ok := h.sessions.Load(c)
	if !ok {
		return fiber.ErrUnauthorized
	}

	var in services.ProfileInput
	if err := c.BodyParser(&in); err != nil {
		logrus.WithError(err).Warn("Error parsing profile form")
		return redirectWithFlash(c, h.sessions, session.FlashDanger, "Name cannot be empty", "/profile")
	}

	user, err := h.service.UpdateProfile(c.UserContext(), s.UserID, in)
	if err != nil {
		var message string
		switch {
		case errors.Is(err, services.ErrUserNotFound):
			return fiber.ErrNotFound
		case errors.Is(err, services.ErrNameRequired):
			message = "Name cannot be empty"
		case errors.Is(err, services.ErrPasswordMismatch):
			message = "Passwords do not match"
		default:
			message = "Error updating profile"
		}
		return redirectWithFlash(c, h.sessions, session.FlashDanger, message, "/profile")
	}

	if err := h.sessions.Save(c, session.Session{UserID: user.ID, Name: user.Name}); err != nil {
		return fmt.Errorf("failed to refresh session: %w", err)
	}
	return redirectWithFlash(c, h.sessions, session.FlashSuccess, "Profile updated", "/profile")
}
