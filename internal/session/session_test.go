package session

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	m, err := NewManager("test_session_secret", time.Hour, false)
	require.NoError(t, err)
	return m
}

func TestNewManagerRequiresSecret(t *testing.T) {
	_, err := NewManager("", time.Hour, false)
	assert.Error(t, err)
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	m := newTestManager(t)

	token, err := m.Encode(Session{UserID: "user-123", Name: "Alice"})
	require.NoError(t, err)

	s, err := m.Decode(token)
	require.NoError(t, err)
	assert.Equal(t, "user-123", s.UserID)
	assert.Equal(t, "Alice", s.Name)
}

func TestDecodeRejectsTampering(t *testing.T) {
	m := newTestManager(t)
	token, err := m.Encode(Session{UserID: "user-123", Name: "Alice"})
	require.NoError(t, err)

	other, err := NewManager("another_secret", time.Hour, false)
	require.NoError(t, err)
	_, err = other.Decode(token)
	assert.Error(t, err, "token signed with a different secret must be rejected")

	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)
	forged := parts[0] + "." + parts[1] + "x." + parts[2]
	_, err = m.Decode(forged)
	assert.Error(t, err)

	_, err = m.Decode("invalid.token.string")
	assert.Error(t, err)
}

func TestDecodeRejectsExpired(t *testing.T) {
	m := newTestManager(t)
	m.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	token, err := m.Encode(Session{UserID: "user-123", Name: "Alice"})
	require.NoError(t, err)

	_, err = m.Decode(token)
	assert.Error(t, err)
}

// flashApp queues flashes on /set and consumes them on /show.
func flashApp(m *Manager) *fiber.App {
	app := fiber.New()
	app.Get("/set", func(c *fiber.Ctx) error {
		m.AddFlash(c, FlashSuccess, "first")
		m.AddFlash(c, FlashInfo, "second")
		return c.Redirect("/show")
	})
	app.Get("/show", func(c *fiber.Ctx) error {
		var out []string
		for _, f := range m.Flashes(c) {
			out = append(out, f.Category+":"+f.Message)
		}
		return c.SendString(strings.Join(out, ","))
	})
	app.Get("/login", func(c *fiber.Ctx) error {
		if err := m.Save(c, Session{UserID: "u-1", Name: "Alice"}); err != nil {
			return err
		}
		return c.SendStatus(fiber.StatusNoContent)
	})
	app.Get("/whoami", func(c *fiber.Ctx) error {
		s, ok := m.Load(c)
		if !ok {
			return c.SendStatus(fiber.StatusUnauthorized)
		}
		return c.SendString(s.Name)
	})
	app.Get("/logout", func(c *fiber.Ctx) error {
		m.Clear(c)
		return c.SendStatus(fiber.StatusNoContent)
	})
	return app
}

func cookieValue(resp *http.Response, name string) (string, bool) {
	for _, c := range resp.Cookies() {
		if c.Name == name {
			return c.Value, true
		}
	}
	return "", false
}

func TestFlashesShownOnceInOrder(t *testing.T) {
	m := newTestManager(t)
	app := flashApp(m)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/set", nil), -1)
	require.NoError(t, err)
	flash, ok := cookieValue(resp, FlashCookieName)
	require.True(t, ok)
	require.NotEmpty(t, flash)

	req := httptest.NewRequest(http.MethodGet, "/show", nil)
	req.AddCookie(&http.Cookie{Name: FlashCookieName, Value: flash})
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "success:first,info:second", string(body))

	cleared, ok := cookieValue(resp, FlashCookieName)
	assert.True(t, ok, "showing flashes must clear the cookie")
	assert.Empty(t, cleared)
}

func TestForgedFlashCookieIsIgnored(t *testing.T) {
	m := newTestManager(t)
	app := flashApp(m)

	req := httptest.NewRequest(http.MethodGet, "/show", nil)
	req.AddCookie(&http.Cookie{Name: FlashCookieName, Value: "forged.flash.cookie"})
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	assert.Empty(t, string(body))
}

func TestSaveLoadClear(t *testing.T) {
	m := newTestManager(t)
	app := flashApp(m)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/login", nil), -1)
	require.NoError(t, err)
	token, ok := cookieValue(resp, CookieName)
	require.True(t, ok)

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: token})
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "Alice", string(body))

	req = httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: token + "tampered"})
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/logout", nil), -1)
	require.NoError(t, err)
	cleared, ok := cookieValue(resp, CookieName)
	assert.True(t, ok)
	assert.Empty(t, cleared)
}

func TestFlashQueueIsBounded(t *testing.T) {
	m := newTestManager(t)
	app := fiber.New()
	app.Get("/repeat", func(c *fiber.Ctx) error {
		for i := 0; i < 20; i++ {
			m.AddFlash(c, FlashWarning, "Please log in to access this page")
		}
		return c.SendString(fmt.Sprint(len(m.Flashes(c))))
	})
	app.Get("/many", func(c *fiber.Ctx) error {
		for i := 0; i < 20; i++ {
			m.AddFlash(c, FlashInfo, fmt.Sprintf("message %d", i))
		}
		var out []string
		for _, f := range m.Flashes(c) {
			out = append(out, f.Message)
		}
		return c.SendString(strings.Join(out, ","))
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/repeat", nil), -1)
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "1", string(body))

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/many", nil), -1)
	require.NoError(t, err)
	body, _ = io.ReadAll(resp.Body)
	assert.Equal(t, "message 15,message 16,message 17,message 18,message 19", string(body))
}

func TestRepeatedFlashAcrossRequestsIsNotDuplicated(t *testing.T) {
	m := newTestManager(t)
	app := fiber.New()
	app.Get("/guarded", func(c *fiber.Ctx) error {
		m.AddFlash(c, FlashWarning, "Please log in to access this page")
		return c.Redirect("/login")
	})
	app.Get("/show", func(c *fiber.Ctx) error {
		return c.SendString(fmt.Sprint(len(m.Flashes(c))))
	})

	var flash string
	for i := 0; i < 10; i++ {
		req := httptest.NewRequest(http.MethodGet, "/guarded", nil)
		if flash != "" {
			req.AddCookie(&http.Cookie{Name: FlashCookieName, Value: flash})
		}
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		if v, ok := cookieValue(resp, FlashCookieName); ok {
			flash = v
		}
	}
	require.NotEmpty(t, flash)

	req := httptest.NewRequest(http.MethodGet, "/show", nil)
	req.AddCookie(&http.Cookie{Name: FlashCookieName, Value: flash})
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "1", string(body))
}
