package server

import (
	"strconv"
	"time"

	"puppytalk/internal/middleware"
	"puppytalk/internal/models"
	"puppytalk/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// respond writes the success envelope with the status bound to code.
func respond(c *fiber.Ctx, status int, code models.Code, data any) error {
	return c.Status(status).JSON(models.Envelope{Code: code, Data: data})
}

func noContent(c *fiber.Ctx) error {
	return c.SendStatus(fiber.StatusNoContent)
}

// parseID reads a positive integer path parameter. Malformed values fail
// with the given code.
func parseID(c *fiber.Ctx, param string, code models.Code) (uint, error) {
	raw := c.Params(param)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, models.NewValidationError(code)
	}
	return uint(id), nil
}

// parsePage reads page and size query params, defaulting to the first page
// of PageSizeDefault items.
func parsePage(c *fiber.Ctx) (int, int, error) {
	page, err := queryInt(c, "page", 1)
	if err != nil {
		return 0, 0, err
	}
	size, err := queryInt(c, "size", validation.PageSizeDefault)
	if err != nil {
		return 0, 0, err
	}
	if err := validation.ValidatePagination(page, size); err != nil {
		return 0, 0, err
	}
	return page, size, nil
}

func queryInt(c *fiber.Ctx, key string, def int) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, models.NewValidationError(models.CodeInvalidPagination)
	}
	return v, nil
}

// currentUser returns the user attached by the auth gate.
func currentUser(c *fiber.Ctx) (uint, error) {
	uid, ok := middleware.UserID(c)
	if !ok {
		return 0, models.NewUnauthorizedError()
	}
	return uid, nil
}

func (s *Server) setSessionCookie(c *fiber.Ctx, token string) {
	c.Cookie(&fiber.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   s.config.SessionExpirySeconds,
		Secure:   s.config.CookieSecure,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

func (s *Server) clearSessionCookie(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		Secure:   s.config.CookieSecure,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}
