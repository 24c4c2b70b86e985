package api

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"preppilot/config"
	"preppilot/middleware"
	"preppilot/storage"
	"preppilot/utils"
)

// AuthHandler handles registration, login, and logout
type AuthHandler struct {
	config   *config.Config
	registry *storage.UserRegistry
	sessions *storage.SessionStore
	data     *storage.DataStore
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(cfg *config.Config, registry *storage.UserRegistry, sessions *storage.SessionStore, data *storage.DataStore) *AuthHandler {
	return &AuthHandler{
		config:   cfg,
		registry: registry,
		sessions: sessions,
		data:     data,
	}
}

type registerRequest struct {
	Email           string `json:"email"`
	Name            string `json:"name"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register creates a new account.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.BadRequestError("Invalid request body", err)
	}

	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || strings.TrimSpace(req.Name) == "" || req.Password == "" {
		return utils.ValidationError("Email, name, and password are required", nil)
	}
	if req.ConfirmPassword != "" && req.Password != req.ConfirmPassword {
		return utils.ValidationError("Passwords do not match", nil)
	}

	user, err := h.registry.Register(req.Email, req.Name, req.Password)
	if err != nil {
		if errors.Is(err, storage.ErrDuplicateEmail) {
			return utils.ConflictError("An account with this email already exists", nil)
		}
		return utils.ValidationError(err.Error(), nil)
	}

	utils.Log.WithField("email", user.Email).Info("user registered")

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"user":    user.Public(),
	})
}

// Login verifies credentials and establishes a session. Failures return a
// generic message after a fixed artificial delay; nothing distinguishes an
// unknown email from a wrong password.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.BadRequestError("Invalid request body", err)
	}

	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" {
		return utils.ValidationError("Email and password are required", nil)
	}

	user, err := h.registry.Authenticate(req.Email, req.Password)
	if err != nil {
		time.Sleep(h.config.Auth.LoginDelay())
		return utils.UnauthorizedError("Invalid email or password", nil)
	}

	// First login for this user seeds the default subjects. Idempotent.
	if err := h.data.Seed(user.Email); err != nil {
		utils.Log.Warn("failed to seed data for %s: %v", user.Email, err)
	}

	session, err := h.sessions.Create(user)
	if err != nil {
		return utils.InternalServerError("Failed to create session", err)
	}

	token, err := middleware.IssueToken(session, h.config.Auth.JWTSecret)
	if err != nil {
		h.sessions.Delete(session.ID)
		return utils.InternalServerError("Failed to create authentication token", err)
	}

	c.Cookie(&fiber.Cookie{
		Name:     middleware.SessionCookie,
		Value:    token,
		Expires:  session.ExpiresAt,
		HTTPOnly: true,
		Secure:   h.config.Auth.SecureCookies,
		SameSite: fiber.CookieSameSiteStrictMode,
	})

	utils.Log.WithField("email", user.Email).Info("user logged in")

	return c.JSON(fiber.Map{
		"success": true,
		"session": session,
	})
}

// Logout destroys the session and clears the cookie.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	if session := middleware.CurrentSession(c); session != nil {
		h.sessions.Delete(session.ID)
	}

	c.Cookie(&fiber.Cookie{
		Name:     middleware.SessionCookie,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
	})

	return c.JSON(fiber.Map{"success": true})
}

// Me returns the authenticated session.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	session := middleware.CurrentSession(c)
	return c.JSON(fiber.Map{
		"success": true,
		"session": session,
	})
}

// UpdateProfile changes the authenticated user's display name.
func (h *AuthHandler) UpdateProfile(c *fiber.Ctx) error {
	session := middleware.CurrentSession(c)

	var req struct {
		Name string `json:"name"`
	}
	if err := c.BodyParser(&req); err != nil {
		return utils.BadRequestError("Invalid request body", err)
	}

	user, err := h.registry.UpdateProfile(session.Email, req.Name)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return utils.NotFoundError("Account no longer exists", nil)
		}
		return utils.ValidationError(err.Error(), nil)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"user":    user.Public(),
	})
}

// UpdatePassword changes the authenticated user's password after verifying
// the current one.
func (h *AuthHandler) UpdatePassword(c *fiber.Ctx) error {
	session := middleware.CurrentSession(c)

	var req struct {
		CurrentPassword string `json:"current_password"`
		NewPassword     string `json:"new_password"`
		ConfirmPassword string `json:"confirm_password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return utils.BadRequestError("Invalid request body", err)
	}
	if req.ConfirmPassword != "" && req.NewPassword != req.ConfirmPassword {
		return utils.ValidationError("Passwords do not match", nil)
	}

	if err := h.registry.UpdatePassword(session.Email, req.CurrentPassword, req.NewPassword); err != nil {
		if errors.Is(err, storage.ErrInvalidCredentials) {
			return utils.UnauthorizedError("Current password is incorrect", nil)
		}
		return utils.ValidationError(err.Error(), nil)
	}

	return c.JSON(fiber.Map{"success": true})
}
