package handler

import (
	"go-commerce-ledger/internal/model"
	"go-commerce-ledger/internal/repository"

	"github.com/gofiber/fiber/v2"
)

// OutletHandler manages seller tenants. Like categories, it is thin enough
// to talk to the repository directly.
type OutletHandler struct {
	outletRepo repository.OutletRepository
}

func NewOutletHandler(outletRepo repository.OutletRepository) *OutletHandler {
	return &OutletHandler{outletRepo: outletRepo}
}

func (h *OutletHandler) CreateOutlet(c *fiber.Ctx) error {
	var outlet model.Outlet
	if err := c.BodyParser(&outlet); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	if outlet.Name == "" {
		return c.Status(400).JSON(fiber.Map{"error": "Name is required"})
	}

	outlet.IsActive = true
	outlet.CreatedBy = getUserID(c)
	outlet.UpdatedBy = getUserID(c)
	if err := h.outletRepo.Create(&outlet); err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to create outlet"})
	}
	return c.Status(201).JSON(fiber.Map{"message": "Outlet created", "data": outlet})
}

func (h *OutletHandler) GetOutlets(c *fiber.Ctx) error {
	outlets, err := h.outletRepo.FindAll()
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch outlets"})
	}
	return c.JSON(outlets)
}

func (h *OutletHandler) GetOutlet(c *fiber.Ctx) error {
	outletID, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid outlet ID"})
	}

	outlet, err := h.outletRepo.FindByID(outletID)
	if err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "Outlet not found"})
	}
	return c.JSON(outlet)
}

func (h *OutletHandler) UpdateOutlet(c *fiber.Ctx) error {
	outletID, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid outlet ID"})
	}

	outlet, err := h.outletRepo.FindByID(outletID)
	if err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "Outlet not found"})
	}

	var req model.Outlet
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	if req.Name != "" {
		outlet.Name = req.Name
	}
	if req.Email != "" {
		outlet.Email = req.Email
	}
	outlet.PhoneNumber = req.PhoneNumber
	outlet.Address = req.Address
	outlet.IsActive = req.IsActive
	outlet.UpdatedBy = getUserID(c)

	if err := h.outletRepo.Update(outlet); err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to update outlet"})
	}
	return c.JSON(fiber.Map{"message": "Outlet updated", "data": outlet})
}
