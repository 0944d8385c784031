package server

import (
	"errors"

	"puppytalk/internal/middleware"
	"puppytalk/internal/models"

	"github.com/gofiber/fiber/v2"
)

var statusCodes = map[int]models.Code{
	fiber.StatusBadRequest:            models.CodeInvalidRequest,
	fiber.StatusUnauthorized:          models.CodeUnauthorized,
	fiber.StatusForbidden:             models.CodeForbidden,
	fiber.StatusNotFound:              models.CodeNotFound,
	fiber.StatusMethodNotAllowed:      models.CodeMethodNotAllowed,
	fiber.StatusConflict:              models.CodeConflict,
	fiber.StatusRequestEntityTooLarge: models.CodePayloadTooLarge,
	fiber.StatusUnprocessableEntity:   models.CodeUnprocessable,
	fiber.StatusTooManyRequests:       models.CodeRateLimitExceeded,
	fiber.StatusServiceUnavailable:    models.CodeServiceUnavailable,
}

// ErrorHandler renders every failure as an envelope. Internal errors are
// logged with the request context and never expose their cause.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := models.CodeInternalServerError

	var appErr *models.AppError
	var fiberErr *fiber.Error
	switch {
	case errors.As(err, &appErr):
		code = appErr.Code
	case errors.As(err, &fiberErr):
		if mapped, ok := statusCodes[fiberErr.Code]; ok {
			code = mapped
		}
	}
	if !code.Known() {
		code = models.CodeInternalServerError
	}

	status := code.Status()
	if status >= fiber.StatusInternalServerError {
		middleware.Logger.ErrorContext(c.UserContext(), "request error",
			"code", string(code),
			"path", c.Path(),
			"error", err.Error(),
		)
	}
	return c.Status(status).JSON(models.Envelope{Code: code, Data: nil})
}
