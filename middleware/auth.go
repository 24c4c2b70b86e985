package middleware

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"

	"preppilot/models"
	"preppilot/storage"
)

// SessionCookie is the cookie carrying the signed session token.
const SessionCookie = "preppilot_session"

const localsSessionKey = "session"

// IssueToken signs a JWT whose claims carry the session id.
func IssueToken(session *models.Session, secret string) (string, error) {
	claims := jwt.MapClaims{
		"sid": session.ID,
		"sub": session.Email,
		"exp": session.ExpiresAt.Unix(),
		"iat": time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// parseToken validates the signature and extracts the session id.
func parseToken(tokenString, secret string) (string, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return "", fmt.Errorf("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", fmt.Errorf("invalid token claims")
	}
	sid, ok := claims["sid"].(string)
	if !ok || sid == "" {
		return "", fmt.Errorf("missing session id")
	}
	return sid, nil
}

// Auth gates protected routes. Any failure (missing cookie, bad signature,
// unknown or expired session) resolves to a generic 401, never a server
// error.
func Auth(sessions *storage.SessionStore, secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString := c.Cookies(SessionCookie)
		if tokenString == "" {
			return unauthorized(c)
		}

		sid, err := parseToken(tokenString, secret)
		if err != nil {
			return unauthorized(c)
		}

		session, err := sessions.Get(sid)
		if err != nil || !session.IsAuthenticated {
			return unauthorized(c)
		}

		c.Locals(localsSessionKey, session)
		return c.Next()
	}
}

// RequireAdmin allows only sessions with the admin role. The role enum is
// handled exhaustively so an unknown value never slips through.
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		session := CurrentSession(c)
		if session == nil {
			return unauthorized(c)
		}
		switch session.Role {
		case models.RoleAdmin:
			return c.Next()
		case models.RoleUser:
			return forbidden(c)
		default:
			return forbidden(c)
		}
	}
}

// CurrentSession returns the authenticated session set by Auth, or nil.
func CurrentSession(c *fiber.Ctx) *models.Session {
	session, _ := c.Locals(localsSessionKey).(*models.Session)
	return session
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"error": "authentication required",
	})
}

func forbidden(c *fiber.Ctx) error {
	return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
		"error": "admin access required",
	})
}
