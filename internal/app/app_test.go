package app_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"shelflife/internal/app"
	"shelflife/internal/config"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		Env:           "development",
		Port:          ":0",
		LogLevel:      "error",
		DatabaseURL:   "file:" + uuid.NewString() + "?mode=memory&cache=shared",
		SessionSecret: "test_session_secret",
		SessionTTL:    time.Hour,
	}
}

func TestSetupLogging(t *testing.T) {
	defer logrus.SetOutput(io.Discard)

	cfg := testConfig()
	cfg.LogLevel = "debug"
	app.SetupLogging(cfg)
	assert.Equal(t, logrus.DebugLevel, logrus.GetLevel())

	cfg.LogLevel = "chatty"
	app.SetupLogging(cfg)
	assert.Equal(t, logrus.InfoLevel, logrus.GetLevel())

	cfg.Env = "production"
	app.SetupLogging(cfg)
	assert.IsType(t, &logrus.JSONFormatter{}, logrus.StandardLogger().Formatter)
}

func TestNewWiresRoutes(t *testing.T) {
	logrus.SetOutput(io.Discard)

	a, err := app.New(testConfig())
	require.NoError(t, err)
	defer a.Close()

	assert.Nil(t, a.Redis)
	assert.Nil(t, a.MQ)
	require.NoError(t, a.StartConsumer())

	resp, err := a.HTTP.Test(httptest.NewRequest(http.MethodGet, "/health", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))

	resp, err = a.HTTP.Test(httptest.NewRequest(http.MethodGet, "/", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("Location"))

	resp, err = a.HTTP.Test(httptest.NewRequest(http.MethodGet, "/login", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), `action="/login"`)

	resp, err = a.HTTP.Test(httptest.NewRequest(http.MethodGet, "/no-such-page", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHealthReportsDatabaseFailure(t *testing.T) {
	logrus.SetOutput(io.Discard)

	a, err := app.New(testConfig())
	require.NoError(t, err)
	sqlDB, err := a.DB.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	resp, err := a.HTTP.Test(httptest.NewRequest(http.MethodGet, "/health", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}
