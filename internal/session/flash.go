package session

import (
	"fmt"

	"github.com/dgrijalva/jwt-go"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// Flash categories.
const (
	FlashSuccess = "success"
	FlashDanger  = "danger"
	FlashWarning = "warning"
	FlashInfo    = "info"
)

// Flash is a one-time notice shown on the next rendered page.
type Flash struct {
	Category string `json:"category"`
	Message  string `json:"message"`
}

type flashClaims struct {
	Flashes []Flash `json:"flashes"`
	jwt.StandardClaims
}

// MaxFlashes bounds the queue so the cookie stays under browser size limits.
const MaxFlashes = 5

// AddFlash queues a message for the next rendered page. A message identical to
// the last queued one is not repeated, and only the newest MaxFlashes are kept.
func (m *Manager) AddFlash(c *fiber.Ctx, category, message string) {
	flash := Flash{Category: category, Message: message}
	queued := m.pending(c)
	if n := len(queued); n > 0 && queued[n-1] == flash {
		return
	}

	flashes := make([]Flash, 0, len(queued)+1)
	flashes = append(flashes, queued...)
	flashes = append(flashes, flash)
	if len(flashes) > MaxFlashes {
		flashes = flashes[len(flashes)-MaxFlashes:]
	}
	c.Locals(localsFlashes, flashes)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, flashClaims{Flashes: flashes})
	signed, err := token.SignedString(m.secret)
	if err != nil {
		logrus.WithError(err).Error("Failed to sign flash cookie")
		return
	}
	c.Cookie(m.cookie(FlashCookieName, signed, m.now().Add(m.ttl)))
}

// Flashes returns the queued messages and discards them.
func (m *Manager) Flashes(c *fiber.Ctx) []Flash {
	flashes := m.pending(c)
	if len(flashes) == 0 {
		return nil
	}
	c.Locals(localsFlashes, []Flash{})
	c.Cookie(m.expired(FlashCookieName))
	return flashes
}

// pending returns the flashes queued so far, whether earlier in this response
// or by the previous one.
func (m *Manager) pending(c *fiber.Ctx) []Flash {
	if flashes, ok := c.Locals(localsFlashes).([]Flash); ok {
		return flashes
	}
	flashes, err := m.decodeFlashes(c.Cookies(FlashCookieName))
	if err != nil {
		logrus.WithError(err).Debug("Ignoring invalid flash cookie")
		flashes = nil
	}
	c.Locals(localsFlashes, flashes)
	return flashes
}

func (m *Manager) decodeFlashes(tokenString string) ([]Flash, error) {
	if tokenString == "" {
		return nil, nil
	}
	claims := &flashClaims{}
	if err := m.parse(tokenString, claims); err != nil {
		return nil, fmt.Errorf("flash cookie: %w", err)
	}
	return claims.Flashes, nil
}
