package handlers

import (
	"errors"
	"log/slog"

	"github.com/ahmetcoskunkizilkaya/sphere-moderation/internal/dto"
	"github.com/ahmetcoskunkizilkaya/sphere-moderation/internal/moderation"
	"github.com/gofiber/fiber/v2"
)

// respondError maps engine errors to HTTP statuses. Unexpected errors are
// logged and hidden behind a generic message.
func respondError(c *fiber.Ctx, err error, fallback string) error {
	status := fiber.StatusInternalServerError
	message := fallback
	switch {
	case errors.Is(err, moderation.ErrNotFound):
		status, message = fiber.StatusNotFound, err.Error()
	case errors.Is(err, moderation.ErrAlreadyResolved):
		status, message = fiber.StatusConflict, err.Error()
	case errors.Is(err, moderation.ErrSelfReport),
		errors.Is(err, moderation.ErrSelfVote),
		errors.Is(err, moderation.ErrVotingDisabled):
		status, message = fiber.StatusForbidden, err.Error()
	case errors.Is(err, moderation.ErrValidation):
		status, message = fiber.StatusBadRequest, err.Error()
	case errors.Is(err, moderation.ErrClassifierUnavailable):
		status, message = fiber.StatusServiceUnavailable, "Content check is unavailable"
	default:
		slog.Error(fallback,
			"method", c.Method(),
			"path", c.Path(),
			"request_id", c.GetRespHeader(fiber.HeaderXRequestID),
			"error", err.Error(),
		)
	}
	return c.Status(status).JSON(dto.ErrorResponse{Error: true, Message: message})
}

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
		Error: true, Message: message,
	})
}
