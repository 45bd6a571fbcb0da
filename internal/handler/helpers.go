package handler

import (
	"errors"

	"go-commerce-ledger/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Helpers to read user info from JWT context (set by auth middleware)
func getUserID(c *fiber.Ctx) string {
	userID := c.Locals("user_id")
	if userID == nil {
		return "system"
	}
	return userID.(string)
}

func getOutletID(c *fiber.Ctx) *uuid.UUID {
	raw := c.Locals("outlet_id")
	if raw == nil {
		return nil
	}
	id, err := uuid.Parse(raw.(string))
	if err != nil {
		return nil
	}
	return &id
}

func parseUUID(id string) (uuid.UUID, error) {
	return uuid.Parse(id)
}

// serviceError maps the service error taxonomy onto HTTP responses.
func serviceError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrNotFound),
		errors.Is(err, service.ErrUserNotFound):
		return c.Status(404).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, service.ErrValidation),
		errors.Is(err, service.ErrInvalidAmount),
		errors.Is(err, service.ErrInvalidDecision),
		errors.Is(err, service.ErrWrongPassword):
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrUserInactive),
		errors.Is(err, service.ErrInvalidToken),
		errors.Is(err, service.ErrSessionRevoked),
		errors.Is(err, service.ErrSessionTimeout):
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, service.ErrUnauthorized):
		return c.Status(403).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, service.ErrInsufficientStock),
		errors.Is(err, service.ErrCreditLimitExceeded),
		errors.Is(err, service.ErrAmountExceedsRemaining),
		errors.Is(err, service.ErrAlreadyProcessed):
		return c.Status(409).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, service.ErrPersistenceConflict):
		return c.Status(409).JSON(fiber.Map{"error": "Conflicting update, please retry"})
	case errors.Is(err, service.ErrPaymentVerificationFailed):
		return c.Status(402).JSON(fiber.Map{"error": err.Error()})
	default:
		return c.Status(500).JSON(fiber.Map{"error": "Internal Server Error"})
	}
}
