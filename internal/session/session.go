// Package session keeps the signed-in user and pending flash messages in
// signed cookies. Nothing is stored server side.
package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

const (
	// CookieName holds the session token.
	CookieName = "session"
	// FlashCookieName holds queued flash messages.
	FlashCookieName = "flash"

	localsSession = "session"
	localsFlashes = "flashes"
)

// Session is the state carried by an authenticated client.
type Session struct {
	UserID string
	Name   string
}

type sessionClaims struct {
	UserID string `json:"user_id"`
	Name   string `json:"name"`
	jwt.StandardClaims
}

// Manager issues and verifies session and flash cookies.
type Manager struct {
	secret []byte
	ttl    time.Duration
	secure bool
	now    func() time.Time
}

// NewManager creates a Manager signing with secret. Cookies are marked Secure
// when secure is true.
func NewManager(secret string, ttl time.Duration, secure bool) (*Manager, error) {
	if secret == "" {
		return nil, fmt.Errorf("session secret cannot be empty")
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Manager{
		secret: []byte(secret),
		ttl:    ttl,
		secure: secure,
		now:    time.Now,
	}, nil
}

// Encode signs s into a token string.
func (m *Manager) Encode(s Session) (string, error) {
	now := m.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, sessionClaims{
		UserID: s.UserID,
		Name:   s.Name,
		StandardClaims: jwt.StandardClaims{
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(m.ttl).Unix(),
		},
	})
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session: %w", err)
	}
	return signed, nil
}

// Decode verifies the signature and expiry of tokenString.
func (m *Manager) Decode(tokenString string) (*Session, error) {
	claims := &sessionClaims{}
	if err := m.parse(tokenString, claims); err != nil {
		return nil, err
	}
	if claims.UserID == "" {
		return nil, errors.New("invalid session: missing user_id")
	}
	return &Session{UserID: claims.UserID, Name: claims.Name}, nil
}

// Save writes s as the session cookie of the response.
func (m *Manager) Save(c *fiber.Ctx, s Session) error {
	token, err := m.Encode(s)
	if err != nil {
		return err
	}
	c.Cookie(m.cookie(CookieName, token, m.now().Add(m.ttl)))
	c.Locals(localsSession, &s)
	return nil
}

// Load returns the session presented by the request, if it is valid.
func (m *Manager) Load(c *fiber.Ctx) (*Session, bool) {
	if s, ok := c.Locals(localsSession).(*Session); ok {
		return s, s != nil
	}
	token := c.Cookies(CookieName)
	if token == "" {
		return nil, false
	}
	s, err := m.Decode(token)
	if err != nil {
		logrus.WithError(err).Debug("Ignoring invalid session cookie")
		c.Locals(localsSession, (*Session)(nil))
		return nil, false
	}
	c.Locals(localsSession, s)
	return s, true
}

// Clear drops the session and any pending flashes.
func (m *Manager) Clear(c *fiber.Ctx) {
	c.Cookie(m.expired(CookieName))
	c.Cookie(m.expired(FlashCookieName))
	c.Locals(localsSession, (*Session)(nil))
	c.Locals(localsFlashes, []Flash{})
}

func (m *Manager) parse(tokenString string, claims jwt.Claims) error {
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		return fmt.Errorf("invalid token: %w", err)
	}
	if !token.Valid {
		return errors.New("invalid token")
	}
	return nil
}

func (m *Manager) cookie(name, value string, expires time.Time) *fiber.Cookie {
	return &fiber.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		HTTPOnly: true,
		Secure:   m.secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	}
}

func (m *Manager) expired(name string) *fiber.Cookie {
	return m.cookie(name, "", time.Unix(0, 0))
}
