// Package middleware provides request logging, metrics, tracing, rate limiting
// and the session authentication gate.
package middleware

import (
	"context"

	"puppytalk/internal/models"

	"github.com/gofiber/fiber/v2"
)

// SessionCookieName is the cookie carrying the opaque session token.
const SessionCookieName = "session_id"

// SessionResolver maps a session token to its user. ok is false for unknown,
// revoked and expired tokens alike.
type SessionResolver interface {
	Resolve(ctx context.Context, token string) (userID uint, ok bool, err error)
}

// AuthRequired rejects requests without a live session with UNAUTHORIZED.
// The session is re-read on every request.
func AuthRequired(sessions SessionResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok, err := authenticate(c, sessions)
		if err != nil {
			return err
		}
		if !ok {
			AuthEvents.WithLabelValues("rejected").Inc()
			return models.NewUnauthorizedError()
		}
		setUser(c, userID)
		return c.Next()
	}
}

// OptionalAuth attaches the user when a live session is present and never fails.
func OptionalAuth(sessions SessionResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok, err := authenticate(c, sessions)
		if err != nil {
			Logger.WarnContext(c.UserContext(), "optional auth lookup failed", "error", err)
		} else if ok {
			setUser(c, userID)
		}
		return c.Next()
	}
}

// UserID returns the authenticated user stored by the gate.
func UserID(c *fiber.Ctx) (uint, bool) {
	uid, ok := c.Locals("userID").(uint)
	return uid, ok && uid != 0
}

func authenticate(c *fiber.Ctx, sessions SessionResolver) (uint, bool, error) {
	token := c.Cookies(SessionCookieName)
	if token == "" {
		return 0, false, nil
	}
	return sessions.Resolve(c.UserContext(), token)
}

func setUser(c *fiber.Ctx, userID uint) {
	// Store user ID in context
	c.Locals("userID", userID)
	// Sync to UserContext for logging and downstream services
	c.SetUserContext(context.WithValue(c.UserContext(), UserIDKey, userID))
}
