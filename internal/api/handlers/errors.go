package handlers

import (
	"errors"

	"statement-analyzer/internal/models"
	"statement-analyzer/internal/service"
	"statement-analyzer/pkg/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// respondError maps service errors to HTTP statuses. Anything unrecognised is
// logged and reported as fallback with a 500.
func respondError(c *fiber.Ctx, logger *zap.Logger, err error, fallback string) error {
	var (
		formatErr     *models.FormatError
		validationErr *models.ValidationError
	)

	status := fiber.StatusInternalServerError
	message := fallback

	switch {
	case errors.As(err, &formatErr):
		status, message = fiber.StatusBadRequest, formatErr.Error()
	case errors.As(err, &validationErr):
		status, message = fiber.StatusUnprocessableEntity, validationErr.Error()
	case errors.Is(err, service.ErrUnknownStyle), errors.Is(err, service.ErrQuestionRequired):
		status, message = fiber.StatusBadRequest, err.Error()
	case errors.Is(err, service.ErrStatementNotFound), errors.Is(err, service.ErrReportNotFound):
		status, message = fiber.StatusNotFound, err.Error()
	case errors.Is(err, service.ErrForbidden):
		status, message = fiber.StatusForbidden, err.Error()
	case errors.Is(err, service.ErrInvalidRegistration):
		status, message = fiber.StatusBadRequest, err.Error()
	case errors.Is(err, service.ErrUserExists):
		status, message = fiber.StatusConflict, err.Error()
	case errors.Is(err, service.ErrInvalidCredentials), errors.Is(err, service.ErrUserNotFound):
		status, message = fiber.StatusUnauthorized, service.ErrInvalidCredentials.Error()
	case errors.Is(err, service.ErrLLMUnavailable), errors.Is(err, service.ErrExportFailed),
		errors.Is(err, service.ErrTokenizerUnavailable):
		logger.Error(fallback, zap.Error(err))
		status = fiber.StatusBadGateway
	default:
		logger.Error(fallback, zap.Error(err))
	}

	return c.Status(status).JSON(fiber.Map{
		"error": message,
	})
}

// parseBody decodes the JSON body into out or fails with 400.
func parseBody(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	return nil
}

func getUserID(c *fiber.Ctx) (uuid.UUID, error) {
	userID, ok := middleware.UserID(c)
	if !ok {
		return uuid.Nil, fiber.ErrUnauthorized
	}
	return userID, nil
}

// ErrorHandler renders errors returned from handlers as {"error": ...}.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
	}
	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
	})
}
