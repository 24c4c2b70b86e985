package web_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"preppilot/handlers/web"
)

func newSPAApp(t *testing.T) (*fiber.App, string) {
	t.Helper()

	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "index.html"), []byte("<html>app</html>"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "app.js"), []byte("console.log(1)"), 0644))
	require.NoError(t, os.Mkdir(filepath.Join(root, "assets"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "assets", "style.css"), []byte("body{}"), 0644))

	app := fiber.New()
	app.Use(web.NewSPAHandler(root).Serve)
	return app, root
}

func get(t *testing.T, app *fiber.App, path string) *http.Response {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest("GET", path, nil), -1)
	require.NoError(t, err)
	return resp
}

func body(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	content, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(content)
}

func TestServesAssetsWithContentType(t *testing.T) {
	app, _ := newSPAApp(t)

	cases := []struct {
		path        string
		contentType string
		content     string
	}{
		{"/", "text/html; charset=utf-8", "<html>app</html>"},
		{"/index.html", "text/html; charset=utf-8", "<html>app</html>"},
		{"/app.js", "text/javascript; charset=utf-8", "console.log(1)"},
		{"/assets/style.css", "text/css; charset=utf-8", "body{}"},
	}

	for _, tc := range cases {
		resp := get(t, app, tc.path)
		assert.Equal(t, http.StatusOK, resp.StatusCode, tc.path)
		assert.Equal(t, tc.contentType, resp.Header.Get("Content-Type"), tc.path)
		assert.Equal(t, tc.content, body(t, resp), tc.path)
	}
}

func TestUnknownPathFallsBackToIndex(t *testing.T) {
	app, _ := newSPAApp(t)

	for _, path := range []string{"/dashboard", "/subjects/abc", "/deep/client/route"} {
		resp := get(t, app, path)
		assert.Equal(t, http.StatusOK, resp.StatusCode, path)
		assert.Equal(t, "<html>app</html>", body(t, resp), path)
	}
}

func TestDirectoryServesItsIndex(t *testing.T) {
	app, root := newSPAApp(t)
	require.NoError(t, os.Mkdir(filepath.Join(root, "docs"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "docs", "index.html"), []byte("<html>docs</html>"), 0644))

	resp := get(t, app, "/docs")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "<html>docs</html>", body(t, resp))
}

func TestTraversalNeverEscapesRoot(t *testing.T) {
	app, root := newSPAApp(t)

	// A real file one level above the bundle root must stay unreachable.
	secret := filepath.Join(filepath.Dir(root), "secret.txt")
	require.NoError(t, os.WriteFile(secret, []byte("hunter2"), 0644))

	for _, path := range []string{
		"/../secret.txt",
		"/assets/../../secret.txt",
		"/..%2fsecret.txt",
	} {
		resp := get(t, app, path)
		content := body(t, resp)
		assert.NotContains(t, content, "hunter2", path)
	}
}

func TestMissingIndexIs404(t *testing.T) {
	root := t.TempDir()
	app := fiber.New()
	app.Use(web.NewSPAHandler(root).Serve)

	resp := get(t, app, "/anything")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}
