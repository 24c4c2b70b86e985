package api_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"preppilot/config"
	"preppilot/routes"
	"preppilot/storage"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Server: config.ServerConfig{
			Port:      0,
			StaticDir: t.TempDir(),
		},
		Auth: config.AuthConfig{
			JWTSecret:      "testsecret",
			SessionHours:   1,
			MinPasswordLen: 6,
			LoginDelayMs:   0, // keep failed-login tests fast
			RatePerMinute:  1000,
		},
		Pomodoro: config.PomodoroConfig{
			FocusMinutes:      25,
			ShortBreakMinutes: 5,
			LongBreakMinutes:  15,
		},
	}
}

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()
	return newTestAppWithConfig(t, testConfig(t))
}

func newTestAppWithConfig(t *testing.T, cfg *config.Config) *fiber.App {
	t.Helper()
	app := fiber.New(fiber.Config{ErrorHandler: routes.ErrorHandler})
	routes.Setup(app, cfg, storage.NewMemoryStore())
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body interface{}, cookies []*http.Cookie) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()

	defer resp.Body.Close()
	var payload map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	return payload
}

func register(t *testing.T, app *fiber.App, email, name, password string) {
	t.Helper()

	resp := doJSON(t, app, "POST", "/api/auth/register", map[string]string{
		"email":    email,
		"name":     name,
		"password": password,
	}, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()
}

func login(t *testing.T, app *fiber.App, email, password string) []*http.Cookie {
	t.Helper()

	resp := doJSON(t, app, "POST", "/api/auth/login", map[string]string{
		"email":    email,
		"password": password,
	}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	cookies := resp.Cookies()
	require.NotEmpty(t, cookies)
	resp.Body.Close()
	return cookies
}
