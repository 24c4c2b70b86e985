package web

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"

	"preppilot/utils"
)

// contentTypes maps file extensions to MIME types for the bundle assets.
var contentTypes = map[string]string{
	".html":  "text/html; charset=utf-8",
	".css":   "text/css; charset=utf-8",
	".js":    "text/javascript; charset=utf-8",
	".json":  "application/json",
	".png":   "image/png",
	".jpg":   "image/jpeg",
	".jpeg":  "image/jpeg",
	".gif":   "image/gif",
	".svg":   "image/svg+xml",
	".ico":   "image/x-icon",
	".woff":  "font/woff",
	".woff2": "font/woff2",
	".map":   "application/json",
}

// SPAHandler serves the built single-page bundle. Paths that resolve to a
// real file are served with a content type derived from the extension; any
// path that escapes the bundle root is rejected; everything else falls back
// to index.html so client-side routing (including the post-login redirect to
// the originally requested path) keeps working.
type SPAHandler struct {
	root string
}

// NewSPAHandler creates a handler rooted at the bundle directory.
func NewSPAHandler(root string) *SPAHandler {
	abs, err := filepath.Abs(root)
	if err != nil {
		utils.Log.Warn("failed to resolve static dir %s: %v", root, err)
		abs = root
	}
	return &SPAHandler{root: abs}
}

// Serve handles a request for a bundle asset or an SPA route.
func (h *SPAHandler) Serve(c *fiber.Ctx) error {
	requested := c.Path()
	if requested == "/" {
		requested = "/index.html"
	}

	target := filepath.Join(h.root, filepath.FromSlash(requested))

	// The join above cleans the path, but verify anyway: nothing outside
	// the bundle root is ever served.
	if target != h.root && !strings.HasPrefix(target, h.root+string(filepath.Separator)) {
		return c.Status(fiber.StatusForbidden).SendString("Forbidden")
	}

	info, err := os.Stat(target)
	if err == nil && info.IsDir() {
		target = filepath.Join(target, "index.html")
		info, err = os.Stat(target)
	}
	if err != nil || info.IsDir() {
		return h.serveIndex(c)
	}

	return h.serveFile(c, target)
}

// serveIndex serves the root document for client-side routes.
func (h *SPAHandler) serveIndex(c *fiber.Ctx) error {
	index := filepath.Join(h.root, "index.html")
	if _, err := os.Stat(index); err != nil {
		return c.Status(fiber.StatusNotFound).SendString("Not found")
	}
	return h.serveFile(c, index)
}

func (h *SPAHandler) serveFile(c *fiber.Ctx, path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		utils.Log.Error("failed to read %s: %v", path, err)
		return c.Status(fiber.StatusInternalServerError).SendString("Internal server error")
	}

	ext := strings.ToLower(filepath.Ext(path))
	contentType, ok := contentTypes[ext]
	if !ok {
		contentType = "text/plain; charset=utf-8"
	}
	c.Set(fiber.HeaderContentType, contentType)
	return c.Send(content)
}
