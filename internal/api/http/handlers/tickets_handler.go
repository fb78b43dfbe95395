package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk/internal/api/dto"
	"github.com/spec-kit/helpdesk/internal/auth"
	"github.com/spec-kit/helpdesk/internal/service"
	apperrors "github.com/spec-kit/helpdesk/pkg/util"
)

// TicketsHandler manages ticket endpoints for every role.
type TicketsHandler struct {
	service *service.TicketService
	now     func() time.Time
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService *service.TicketService) *TicketsHandler {
	return &TicketsHandler{service: ticketService, now: time.Now}
}

// CreateTicket POST /api/tickets.
func (h *TicketsHandler) CreateTicket(c *fiber.Ctx) error {
	principal, err := currentPrincipal(c)
	if err != nil {
		return err
	}
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	ticket, err := h.service.Create(c.UserContext(), principal.Actor(), service.CreateTicketInput{
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		Category:    req.Category,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewTicketSummary(ticket, h.now())})
}

// ListTickets GET /api/tickets.
func (h *TicketsHandler) ListTickets(c *fiber.Ctx) error {
	principal, err := currentPrincipal(c)
	if err != nil {
		return err
	}
	tickets, err := h.service.List(c.UserContext(), principal.Actor(), service.ListTicketsInput{
		Status:   c.Query("status"),
		Priority: c.Query("priority"),
		Category: c.Query("category"),
		Query:    c.Query("q"),
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketSummaries(tickets, h.now())})
}

// GetTicket GET /api/tickets/:id.
func (h *TicketsHandler) GetTicket(c *fiber.Ctx) error {
	principal, err := currentPrincipal(c)
	if err != nil {
		return err
	}
	id, err := ticketID(c)
	if err != nil {
		return err
	}
	detail, err := h.service.Get(c.UserContext(), principal.Actor(), id)
	if err != nil {
		return err
	}
	comments := make([]dto.CommentResponse, 0, len(detail.Comments))
	for i := range detail.Comments {
		comments = append(comments, dto.NewCommentResponse(&detail.Comments[i].Comment, detail.Comments[i].Author))
	}
	return c.JSON(fiber.Map{"data": dto.TicketDetailResponse{
		TicketSummary: dto.NewTicketSummary(detail.Ticket, h.now()),
		Description:   detail.Ticket.Description,
		CreatedBy:     dto.NewUserSummary(detail.Creator),
		AssignedTo:    dto.NewUserSummary(detail.Assignee),
		Comments:      comments,
		History:       dto.NewHistoryResponses(detail.History),
	}})
}

// UpdateTicket POST /api/tickets/:id/update. Fields the caller may not
// change are ignored and the request still succeeds.
func (h *TicketsHandler) UpdateTicket(c *fiber.Ctx) error {
	principal, err := currentPrincipal(c)
	if err != nil {
		return err
	}
	id, err := ticketID(c)
	if err != nil {
		return err
	}
	var req dto.UpdateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	ticket, changes, err := h.service.Update(c.UserContext(), principal.Actor(), id, service.UpdateTicketInput{
		Status:       req.Status,
		Priority:     req.Priority,
		AssignedToID: req.AssignedToID.Value(),
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.TicketUpdateResponse{
		Ticket:  dto.NewTicketSummary(ticket, h.now()),
		Changes: changes,
	}})
}

// AddComment POST /api/tickets/:id/comments.
func (h *TicketsHandler) AddComment(c *fiber.Ctx) error {
	principal, err := currentPrincipal(c)
	if err != nil {
		return err
	}
	id, err := ticketID(c)
	if err != nil {
		return err
	}
	var req dto.CreateCommentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	comment, err := h.service.AddComment(c.UserContext(), principal.Actor(), id, req.Content, req.IsInternal)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewCommentResponse(comment, principal.User)})
}

func currentPrincipal(c *fiber.Ctx) (*auth.Principal, error) {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	return principal, nil
}

func ticketID(c *fiber.Ctx) (int64, error) {
	raw := c.Params("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.NewNotFound("ticket", map[string]any{"id": raw})
	}
	return id, nil
}
