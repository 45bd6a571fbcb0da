package handler

import (
	"go-commerce-ledger/internal/model"
	"go-commerce-ledger/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type RestockHandler struct {
	service service.RestockService
}

func NewRestockHandler(s service.RestockService) *RestockHandler {
	return &RestockHandler{service: s}
}

func (h *RestockHandler) CreateRequest(c *fiber.Ctx) error {
	var req service.CreateRestockRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	// Outlet staff file requests for their own outlet.
	if outletID := getOutletID(c); outletID != nil {
		req.OutletID = *outletID
	}

	request, err := h.service.CreateRequest(c.Context(), &req, getUserID(c))
	if err != nil {
		return serviceError(c, err)
	}
	return c.Status(201).JSON(fiber.Map{"message": "Restock request created", "data": request})
}

type processRestockRequest struct {
	Decision  string `json:"decision"` // "approved" or "rejected"
	AdminNote string `json:"admin_note"`
}

func (h *RestockHandler) ProcessRequest(c *fiber.Ctx) error {
	requestID, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request ID"})
	}

	var req processRestockRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	request, err := h.service.ProcessRequest(c.Context(), requestID, req.Decision, req.AdminNote, getUserID(c))
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Restock request processed", "data": request})
}

func (h *RestockHandler) GetRequest(c *fiber.Ctx) error {
	requestID, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request ID"})
	}

	request, err := h.service.GetRequest(requestID)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(request)
}

func (h *RestockHandler) GetRequests(c *fiber.Ctx) error {
	var outletID *uuid.UUID
	if raw := c.Query("outlet_id"); raw != "" {
		id, err := parseUUID(raw)
		if err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "Invalid outlet ID"})
		}
		outletID = &id
	}

	var status *model.RestockStatus
	if raw := c.Query("status"); raw != "" {
		s := model.RestockStatus(raw)
		status = &s
	}

	requests, err := h.service.GetRequests(outletID, status)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Internal Server Error"})
	}
	return c.JSON(requests)
}
