package routes

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"preppilot/config"
	"preppilot/handlers/api"
	"preppilot/handlers/web"
	"preppilot/middleware"
	"preppilot/storage"
	"preppilot/utils"
)

// ErrorHandler maps application errors onto JSON responses with the right
// status code. Shared between main and the test apps.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	if appErr, ok := err.(*utils.AppError); ok {
		code = appErr.Code
		if code >= 500 {
			utils.Log.Error("Application error: %v", appErr)
		}
	} else if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
	})
}

// Setup builds all application state over the given store and registers
// every route. Tests call this with an in-memory store; main wires bbolt.
func Setup(app *fiber.App, cfg *config.Config, store storage.Store) {
	registry := storage.NewUserRegistry(store, cfg.Auth.MinPasswordLen)
	sessions := storage.NewSessionStore(store, cfg.Auth.SessionTTL())
	data := storage.NewDataStore(store)

	authHandler := api.NewAuthHandler(cfg, registry, sessions, data)
	studyHandler := api.NewStudyHandler(data)
	adminHandler := api.NewAdminHandler(store, registry, sessions)
	prefsHandler := api.NewPreferencesHandler(cfg, data)
	pomodoroHandler := api.NewPomodoroHandler(cfg)

	// Public routes. The limiter guards everything under /api/auth, so
	// credential guessing is throttled while data routes stay unmetered.
	auth := app.Group("/api/auth", middleware.RateLimiter(cfg.Auth.RatePerMinute))
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "ok",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	// Protected routes
	protected := app.Group("/api", middleware.Auth(sessions, cfg.Auth.JWTSecret))

	protected.Post("/auth/logout", authHandler.Logout)
	protected.Get("/auth/me", authHandler.Me)
	protected.Put("/auth/profile", authHandler.UpdateProfile)
	protected.Put("/auth/password", authHandler.UpdatePassword)

	protected.Get("/data", studyHandler.GetData)
	protected.Get("/stats/overview", studyHandler.Overview)

	protected.Post("/subjects", studyHandler.CreateSubject)
	protected.Put("/subjects/:id", studyHandler.UpdateSubject)
	protected.Delete("/subjects/:id", studyHandler.DeleteSubject)
	protected.Post("/subjects/:id/topics", studyHandler.CreateTopic)
	protected.Post("/subjects/:id/topics/:topicId/revisions", studyHandler.LogRevision)
	protected.Delete("/subjects/:id/topics/:topicId", studyHandler.DeleteTopic)

	protected.Post("/tests", studyHandler.CreateMockTest)
	protected.Delete("/tests/:id", studyHandler.DeleteMockTest)

	protected.Post("/study/mark", studyHandler.MarkStudyDay)
	protected.Get("/study/streak", studyHandler.Streak)
	protected.Get("/study/calendar", studyHandler.Calendar)

	protected.Get("/preferences", prefsHandler.Get)
	protected.Put("/preferences", prefsHandler.Update)

	protected.Get("/pomodoro/ws", pomodoroHandler.Upgrade, pomodoroHandler.Serve())

	// Admin routes
	admin := protected.Group("/admin", middleware.RequireAdmin())
	admin.Get("/users", adminHandler.ListUsers)
	admin.Put("/users/:email/role", adminHandler.UpdateRole)
	admin.Delete("/users/:email", adminHandler.DeleteUser)
	admin.Get("/stats", adminHandler.Stats)
	admin.Post("/reset", adminHandler.Reset)

	// Unknown API paths are a JSON 404, not the SPA fallback.
	app.Use("/api", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "not found",
		})
	})

	// Everything else is the SPA bundle.
	spa := web.NewSPAHandler(cfg.Server.StaticDir)
	app.Use(spa.Serve)
}
