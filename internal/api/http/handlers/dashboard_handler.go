package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/asten-tickets/triage-service/internal/service"
)

// DashboardHandler serves triage aggregations. Every endpoint always
// returns 200 with a renderable payload; store failures surface as
// zero-filled data, not errors.
type DashboardHandler struct {
	service *service.DashboardService
}

// NewDashboardHandler constructs handler.
func NewDashboardHandler(dashboard *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{service: dashboard}
}

// Overview GET /dashboard/overview.
func (h *DashboardHandler) Overview(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"data": h.service.GetOverview(c.UserContext())})
}

// Categories GET /dashboard/categories.
func (h *DashboardHandler) Categories(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"data": h.service.CountByCategory(c.UserContext())})
}

// ConfidenceBands GET /dashboard/confidence-bands.
func (h *DashboardHandler) ConfidenceBands(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"data": h.service.CountByConfidenceBand(c.UserContext())})
}

// Distribution GET /dashboard/confidence-distribution?period=7d|30d|all.
func (h *DashboardHandler) Distribution(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"data": h.service.Distribution(c.UserContext(), c.Query("period", service.PeriodAll))})
}

// TeamEvolution GET /dashboard/team-evolution?days=n.
func (h *DashboardHandler) TeamEvolution(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"data": h.service.TeamEvolution(c.UserContext(), c.QueryInt("days", 30))})
}

// Corrections GET /dashboard/corrections.
func (h *DashboardHandler) Corrections(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"data": h.service.CorrectionFrequency(c.UserContext())})
}
