package handler

import (
	"strconv"
	"time"

	"go-commerce-ledger/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ReportHandler struct {
	reportService service.ReportService
	creditService service.CreditService
}

func NewReportHandler(reportService service.ReportService, creditService service.CreditService) *ReportHandler {
	return &ReportHandler{reportService: reportService, creditService: creditService}
}

// GetSalesByDay returns daily sales totals
// GET /api/v1/reports/sales?days=30
func (h *ReportHandler) GetSalesByDay(c *fiber.Ctx) error {
	days, err := strconv.Atoi(c.Query("days", "30"))
	if err != nil || days <= 0 || days > 365 {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid days parameter"})
	}

	sales, err := h.reportService.GetSalesByDay(days)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch sales data"})
	}
	return c.JSON(sales)
}

// GetDashboardStats returns headline counters for the dashboard
// GET /api/v1/reports/dashboard
func (h *ReportHandler) GetDashboardStats(c *fiber.Ctx) error {
	stats, err := h.reportService.GetDashboardStats()
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch dashboard stats"})
	}
	return c.JSON(stats)
}

// GetFinancialSummary returns revenue and credit collection over a range
// GET /api/v1/reports/financial?range=7d
func (h *ReportHandler) GetFinancialSummary(c *fiber.Ctx) error {
	rangeParam := c.Query("range", "7d")
	now := time.Now()
	var startDate time.Time
	endDate := now

	switch rangeParam {
	case "7d":
		startDate = now.AddDate(0, 0, -7)
	case "1m":
		startDate = now.AddDate(0, -1, 0)
	case "3m":
		startDate = now.AddDate(0, -3, 0)
	case "6m":
		startDate = now.AddDate(0, -6, 0)
	case "12m":
		startDate = now.AddDate(0, -12, 0)
	default:
		startDate = now.AddDate(0, 0, -7)
	}

	summary, err := h.reportService.GetFinancialSummary(startDate, endDate)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch financial summary"})
	}
	return c.JSON(summary)
}

// GetOverdueCredits lists non-paid credits past their due date
// GET /api/v1/reports/overdue
func (h *ReportHandler) GetOverdueCredits(c *fiber.Ctx) error {
	credits, err := h.creditService.GetOverdueCredits()
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch overdue credits"})
	}
	return c.JSON(credits)
}
