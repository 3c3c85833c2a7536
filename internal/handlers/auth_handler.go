package handlers

import (
	"errors"
	"fmt"

	"shelflife/internal/services"
	"shelflife/internal/session"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// AuthHandler handles registration, login and logout.
type AuthHandler struct {
	authService *services.AuthService
	sessions    *session.Manager
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService, sessions *session.Manager) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		sessions:    sessions,
	}
}

// RegisterRoutes registers the public routes. throttle runs before the
// register and login submissions.
func (h *AuthHandler) RegisterRoutes(router fiber.Router, throttle ...fiber.Handler) {
	router.Get("/", h.HandleIndex)
	router.Get("/register", h.ShowRegister)
	router.Post("/register", chain(throttle, h.HandleRegister)...)
	router.Get("/login", h.ShowLogin)
	router.Post("/login", chain(throttle, h.HandleLogin)...)
	router.Get("/logout", h.HandleLogout)
}

// LoginRequest represents the login form.
type LoginRequest struct {
	Email    string `form:"email"`
	Password string `form:"password"`
}

// HandleIndex sends signed-in users to the dashboard and everyone else to login.
func (h *AuthHandler) HandleIndex(c *fiber.Ctx) error {
	if _, ok := h.sessions.Load(c); ok {
		return c.Redirect("/dashboard")
	}
	return c.Redirect("/login")
}

// ShowRegister renders the registration form.
func (h *AuthHandler) ShowRegister(c *fiber.Ctx) error {
	return render(c, h.sessions, "register", "Register", nil)
}

// HandleRegister creates an account and sends the user to the login page.
func (h *AuthHandler) HandleRegister(c *fiber.Ctx) error {
	var in services.RegisterInput
	if err := c.BodyParser(&in); err != nil {
		logrus.WithError(err).Warn("Error parsing register form")
		return redirectWithFlash(c, h.sessions, session.FlashDanger, "All fields are required", "/register")
	}

	if _, err := h.authService.Register(c.UserContext(), in); err != nil {
		var message string
		switch {
		case errors.Is(err, services.ErrMissingFields):
			message = "All fields are required"
		case errors.Is(err, services.ErrPasswordMismatch):
			message = "Passwords do not match"
		case errors.Is(err, services.ErrEmailTaken):
			message = "A user with this email already exists"
		default:
			message = "An error occurred during registration"
		}
		return redirectWithFlash(c, h.sessions, session.FlashDanger, message, "/register")
	}

	return redirectWithFlash(c, h.sessions, session.FlashSuccess, "Registration successful! You can now log in", "/login")
}

// ShowLogin renders the login form.
func (h *AuthHandler) ShowLogin(c *fiber.Ctx) error {
	return render(c, h.sessions, "login", "Log in", nil)
}

// HandleLogin starts a session. Every failure shows the same message.
func (h *AuthHandler) HandleLogin(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		logrus.WithError(err).Warn("Error parsing login form")
		return redirectWithFlash(c, h.sessions, session.FlashDanger, "Invalid email or password", "/login")
	}

	user, err := h.authService.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return redirectWithFlash(c, h.sessions, session.FlashDanger, "Invalid email or password", "/login")
	}

	if err := h.sessions.Save(c, session.Session{UserID: user.ID, Name: user.Name}); err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}
	return redirectWithFlash(c, h.sessions, session.FlashSuccess, fmt.Sprintf("Welcome, %s!", user.Name), "/dashboard")
}

// HandleLogout ends the session whether or not one exists.
func (h *AuthHandler) HandleLogout(c *fiber.Ctx) error {
	h.sessions.Clear(c)
	return redirectWithFlash(c, h.sessions, session.FlashInfo, "You have been logged out", "/login")
}
