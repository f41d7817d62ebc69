package presenter

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/artem13815/productivity/pkg/apperr"
)

type ErrorResponse struct {
	Message string            `json:"message"`
	Errors  map[string]string `json:"errors,omitempty"`
}

const internalMessage = "Internal server error"

func JSON(c *fiber.Ctx, status int, v any) error {
	return c.Status(status).JSON(v)
}

func Error(c *fiber.Ctx, status int, message string) error {
	return JSON(c, status, ErrorResponse{Message: message})
}

// StatusOf maps an application error kind to its HTTP status. Conflicts are
// reported as 400 to keep the existing client contract.
func StatusOf(kind apperr.Kind) int {
	switch kind {
	case apperr.KindValidation, apperr.KindConflict:
		return fiber.StatusBadRequest
	case apperr.KindAuth:
		return fiber.StatusUnauthorized
	case apperr.KindNotFound:
		return fiber.StatusNotFound
	default:
		return fiber.StatusInternalServerError
	}
}

// Fail writes err as an error body. Internal errors are logged and answered
// with a generic message.
func Fail(c *fiber.Ctx, log *slog.Logger, err error) error {
	e, ok := apperr.As(err)
	if !ok || e.Kind == apperr.KindInternal {
		if log != nil {
			log.ErrorContext(c.UserContext(), "request failed",
				slog.String("method", c.Method()),
				slog.String("path", c.Path()),
				slog.Any("error", err),
			)
		}
		return Error(c, fiber.StatusInternalServerError, internalMessage)
	}
	return JSON(c, StatusOf(e.Kind), ErrorResponse{Message: e.Message, Errors: e.Fields})
}

// ErrorHandler renders errors returned from handlers and middleware, including
// fiber's own (404 route, 413 body limit).
func ErrorHandler(log *slog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			if fe.Code >= fiber.StatusInternalServerError {
				log.ErrorContext(c.UserContext(), "request failed", slog.String("path", c.Path()), slog.Any("error", err))
				return Error(c, fe.Code, internalMessage)
			}
			return Error(c, fe.Code, fe.Message)
		}
		return Fail(c, log, err)
	}
}
