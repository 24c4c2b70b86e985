package api

import (
	"github.com/gofiber/fiber/v2"

	"preppilot/config"
	"preppilot/middleware"
	"preppilot/models"
	"preppilot/storage"
	"preppilot/utils"
)

// PreferencesHandler serves per-user settings.
type PreferencesHandler struct {
	config *config.Config
	data   *storage.DataStore
}

// NewPreferencesHandler creates a new preferences handler
func NewPreferencesHandler(cfg *config.Config, data *storage.DataStore) *PreferencesHandler {
	return &PreferencesHandler{config: cfg, data: data}
}

func (h *PreferencesHandler) defaults() models.Preferences {
	p := h.config.Pomodoro
	return models.DefaultPreferences(p.FocusMinutes, p.ShortBreakMinutes, p.LongBreakMinutes)
}

// Get returns the user's preferences, falling back to configured defaults.
func (h *PreferencesHandler) Get(c *fiber.Ctx) error {
	session := middleware.CurrentSession(c)
	return c.JSON(fiber.Map{
		"success":     true,
		"preferences": h.data.Preferences(session.Email, h.defaults()),
	})
}

// Update replaces the user's preferences.
func (h *PreferencesHandler) Update(c *fiber.Ctx) error {
	session := middleware.CurrentSession(c)

	prefs := h.defaults()
	if err := c.BodyParser(&prefs); err != nil {
		return utils.BadRequestError("Invalid request body", err)
	}

	if prefs.FocusMinutes < 1 || prefs.ShortBreakMinutes < 1 || prefs.LongBreakMinutes < 1 {
		return utils.ValidationError("Timer durations must be at least one minute", nil)
	}

	if err := h.data.SavePreferences(session.Email, prefs); err != nil {
		return utils.InternalServerError("Failed to save preferences", err)
	}

	return c.JSON(fiber.Map{
		"success":     true,
		"preferences": prefs,
	})
}
