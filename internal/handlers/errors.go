package handlers

import (
	"errors"

	"shelflife/internal/session"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// ErrorHandler renders errors that escape a handler as an error page.
// Internal errors are logged and shown without detail.
func ErrorHandler(sessions *session.Manager) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		message := "Something went wrong, please try again later"

		var fe *fiber.Error
		if errors.As(err, &fe) {
			code = fe.Code
			if code < fiber.StatusInternalServerError {
				message = fe.Message
			}
		}
		if code == fiber.StatusNotFound {
			message = "The page you are looking for does not exist"
		}

		if code >= fiber.StatusInternalServerError {
			logrus.WithFields(logrus.Fields{
				"method": c.Method(),
				"path":   c.Path(),
				"status": code,
			}).WithError(err).Error("Request failed")
		}

		c.Status(code)
		if renderErr := render(c, sessions, "error", message, fiber.Map{
			"Status":  code,
			"Message": message,
		}); renderErr != nil {
			logrus.WithError(renderErr).Error("Failed to render error page")
			return c.SendString(message)
		}
		return nil
	}
}
