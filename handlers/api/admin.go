package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"preppilot/middleware"
	"preppilot/models"
	"preppilot/storage"
	"preppilot/utils"
)

// AdminHandler exposes user management and maintenance operations. All
// routes are behind the admin role checkpoint.
type AdminHandler struct {
	store    storage.Store
	registry *storage.UserRegistry
	sessions *storage.SessionStore
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(store storage.Store, registry *storage.UserRegistry, sessions *storage.SessionStore) *AdminHandler {
	return &AdminHandler{
		store:    store,
		registry: registry,
		sessions: sessions,
	}
}

// ListUsers returns every registered user without credential material.
func (h *AdminHandler) ListUsers(c *fiber.Ctx) error {
	users, err := h.registry.List()
	if err != nil {
		return utils.InternalServerError("Failed to list users", err)
	}

	public := make([]models.User, 0, len(users))
	for i := range users {
		public = append(public, users[i].Public())
	}

	return c.JSON(fiber.Map{
		"success": true,
		"users":   public,
	})
}

// UpdateRole changes a user's role and rewrites their live sessions so the
// change applies immediately.
func (h *AdminHandler) UpdateRole(c *fiber.Ctx) error {
	email := c.Params("email")

	var req struct {
		Role models.Role `json:"role"`
	}
	if err := c.BodyParser(&req); err != nil {
		return utils.BadRequestError("Invalid request body", err)
	}

	user, err := h.registry.UpdateRole(email, req.Role)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return utils.NotFoundError("User not found", nil)
		}
		return utils.ValidationError(err.Error(), nil)
	}

	h.sessions.UpdateRoleByEmail(email, req.Role)

	utils.Log.WithFields(map[string]interface{}{
		"email": email,
		"role":  req.Role,
	}).Info("user role updated")

	return c.JSON(fiber.Map{
		"success": true,
		"user":    user.Public(),
	})
}

// DeleteUser removes a user and all their data. Admins cannot delete their
// own account while logged in with it.
func (h *AdminHandler) DeleteUser(c *fiber.Ctx) error {
	email := c.Params("email")

	if session := middleware.CurrentSession(c); session != nil && session.Email == email {
		return utils.ValidationError("Cannot delete your own account from the admin panel", nil)
	}

	if err := h.registry.Delete(email); err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return utils.NotFoundError("User not found", nil)
		}
		return utils.InternalServerError("Failed to delete user", err)
	}

	utils.Log.WithField("email", email).Info("user deleted")

	return c.JSON(fiber.Map{"success": true})
}

// Stats reports the storage footprint: key count and total value size.
func (h *AdminHandler) Stats(c *fiber.Ctx) error {
	keys, err := h.store.Keys("")
	if err != nil {
		return utils.InternalServerError("Failed to enumerate storage", err)
	}

	var totalBytes int
	for _, key := range keys {
		if value, err := h.store.Get(key); err == nil {
			totalBytes += len(value)
		}
	}

	return c.JSON(fiber.Map{
		"success":     true,
		"keys":        len(keys),
		"total_bytes": totalBytes,
	})
}

// Reset wipes the entire namespace: users, sessions, data, preferences.
// The caller's own session dies with everything else.
func (h *AdminHandler) Reset(c *fiber.Ctx) error {
	keys, err := h.store.Keys("")
	if err != nil {
		return utils.InternalServerError("Failed to enumerate storage", err)
	}

	for _, key := range keys {
		if err := h.store.Delete(key); err != nil {
			return utils.InternalServerError("Failed to clear storage", err)
		}
	}

	utils.Log.Warn("all application data cleared by admin")

	return c.JSON(fiber.Map{
		"success": true,
		"cleared": len(keys),
	})
}
