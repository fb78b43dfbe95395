package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk/internal/api/dto"
	"github.com/spec-kit/helpdesk/internal/service"
)

// DashboardHandler serves the landing page and statistics.
type DashboardHandler struct {
	service *service.DashboardService
	now     func() time.Time
}

// NewDashboardHandler constructs handler.
func NewDashboardHandler(dashboardService *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{service: dashboardService, now: time.Now}
}

// Dashboard GET /api/dashboard.
func (h *DashboardHandler) Dashboard(c *fiber.Ctx) error {
	principal, err := currentPrincipal(c)
	if err != nil {
		return err
	}
	d, err := h.service.Dashboard(c.UserContext(), principal.Actor())
	if err != nil {
		return err
	}
	now := h.now()
	return c.JSON(fiber.Map{"data": dto.DashboardResponse{
		Total:      d.Total,
		Stats:      d.Overview,
		Recent:     dto.NewTicketSummaries(d.Recent, now),
		MyAssigned: dto.NewTicketSummaries(d.MyAssigned, now),
	}})
}

// Overview GET /api/stats/overview.
func (h *DashboardHandler) Overview(c *fiber.Ctx) error {
	principal, err := currentPrincipal(c)
	if err != nil {
		return err
	}
	overview, err := h.service.Overview(c.UserContext(), principal.Actor())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": overview})
}
