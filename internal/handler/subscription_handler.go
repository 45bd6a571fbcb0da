package handler

import (
	"strconv"
	"time"

	"go-commerce-ledger/internal/service"

	"github.com/gofiber/fiber/v2"
)

type SubscriptionHandler struct {
	service service.SubscriptionService
}

func NewSubscriptionHandler(s service.SubscriptionService) *SubscriptionHandler {
	return &SubscriptionHandler{service: s}
}

func (h *SubscriptionHandler) Create(c *fiber.Ctx) error {
	var req service.CreateSubscriptionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	sub, err := h.service.Create(&req, getUserID(c))
	if err != nil {
		return serviceError(c, err)
	}
	return c.Status(201).JSON(fiber.Map{"message": "Subscription created", "data": sub})
}

func (h *SubscriptionHandler) Update(c *fiber.Ctx) error {
	subID, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid subscription ID"})
	}

	var req service.UpdateSubscriptionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	sub, err := h.service.Update(subID, &req, getUserID(c))
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Subscription updated", "data": sub})
}

func (h *SubscriptionHandler) Cancel(c *fiber.Ctx) error {
	subID, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid subscription ID"})
	}

	sub, err := h.service.Cancel(subID, getUserID(c))
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Subscription cancelled", "data": sub})
}

func (h *SubscriptionHandler) Get(c *fiber.Ctx) error {
	subID, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid subscription ID"})
	}

	sub, err := h.service.Get(subID)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(sub)
}

func (h *SubscriptionHandler) GetByUser(c *fiber.Ctx) error {
	userID, err := parseUUID(c.Params("userId"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid user ID"})
	}

	subs, err := h.service.GetByUser(userID)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Internal Server Error"})
	}
	return c.JSON(subs)
}

// GetExpiring lists active subscriptions ending within the next N days
// GET /api/v1/subscriptions/expiring?days=7
func (h *SubscriptionHandler) GetExpiring(c *fiber.Ctx) error {
	days, err := strconv.Atoi(c.Query("days", "7"))
	if err != nil || days <= 0 || days > 90 {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid days parameter"})
	}

	subs, err := h.service.GetExpiring(time.Duration(days) * 24 * time.Hour)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Internal Server Error"})
	}
	return c.JSON(subs)
}
