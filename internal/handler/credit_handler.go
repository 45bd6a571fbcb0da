package handler

import (
	"go-commerce-ledger/internal/service"

	"github.com/gofiber/fiber/v2"
)

type CreditHandler struct {
	service service.CreditService
}

func NewCreditHandler(s service.CreditService) *CreditHandler {
	return &CreditHandler{service: s}
}

func (h *CreditHandler) Open(c *fiber.Ctx) error {
	var req service.OpenCreditRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	credit, err := h.service.Open(c.Context(), &req, getUserID(c))
	if err != nil {
		return serviceError(c, err)
	}
	return c.Status(201).JSON(fiber.Map{"message": "Credit opened", "data": credit})
}

func (h *CreditHandler) RecordPayment(c *fiber.Ctx) error {
	creditID, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid credit ID"})
	}

	var req service.RecordPaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	req.CreditID = creditID

	credit, err := h.service.RecordPayment(c.Context(), &req, getUserID(c))
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Payment recorded", "data": credit})
}

func (h *CreditHandler) UpdateTerms(c *fiber.Ctx) error {
	creditID, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid credit ID"})
	}

	var req service.UpdateTermsRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	credit, err := h.service.UpdateTerms(c.Context(), creditID, &req, getUserID(c))
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Credit terms updated", "data": credit})
}

func (h *CreditHandler) GetCredit(c *fiber.Ctx) error {
	creditID, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid credit ID"})
	}

	credit, err := h.service.GetCredit(creditID)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(credit)
}

func (h *CreditHandler) GetCreditsByUser(c *fiber.Ctx) error {
	userID, err := parseUUID(c.Params("userId"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid user ID"})
	}

	credits, err := h.service.GetCreditsByUser(userID)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Internal Server Error"})
	}
	return c.JSON(credits)
}

func (h *CreditHandler) GetOverdueCredits(c *fiber.Ctx) error {
	credits, err := h.service.GetOverdueCredits()
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Internal Server Error"})
	}
	return c.JSON(credits)
}
