package handlers

import (
	"shelflife/internal/session"

	"github.com/gofiber/fiber/v2"
)

// render draws a page inside the main layout with the current user and any
// pending flashes.
func render(c *fiber.Ctx, sessions *session.Manager, name, title string, data fiber.Map) error {
	if data == nil {
		data = fiber.Map{}
	}
	data["Title"] = title
	if s, ok := sessions.Load(c); ok {
		data["User"] = s
	}
	data["Flashes"] = sessions.Flashes(c)
	return c.Render(name, data)
}

// redirectWithFlash queues a message and redirects with 302.
func redirectWithFlash(c *fiber.Ctx, sessions *session.Manager, category, message, location string) error {
	sessions.AddFlash(c, category, message)
	return c.Redirect(location)
}

// chain appends h to a copy of guards.
func chain(guards []fiber.Handler, h fiber.Handler) []fiber.Handler {
	handlers := make([]fiber.Handler, 0, len(guards)+1)
	handlers = append(handlers, guards...)
	return append(handlers, h)
}
