package middleware

import (
	"shelflife/internal/session"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// LoginPath is where unauthenticated requests are sent.
const LoginPath = "/login"

// AuthRequired lets a request through only when it carries a valid session.
// Otherwise it queues a warning and redirects to the login page without
// running the rest of the chain.
func AuthRequired(sessions *session.Manager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		s, ok := sessions.Load(c)
		if !ok {
			logrus.WithField("path", c.Path()).Debug("Auth guard: no valid session")
			sessions.AddFlash(c, session.FlashWarning, "Please log in to access this page")
			return c.Redirect(LoginPath)
		}

		c.Locals("user_id", s.UserID)
		return c.Next()
	}
}
