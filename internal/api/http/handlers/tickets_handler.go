package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/api/dto"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/service"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

// TicketsHandler manages ticket and thread endpoints for every role.
type TicketsHandler struct {
	tickets     *service.TicketService
	assignments *service.AssignmentService
	messages    *service.MessageService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(tickets *service.TicketService, assignments *service.AssignmentService, messages *service.MessageService) *TicketsHandler {
	return &TicketsHandler{tickets: tickets, assignments: assignments, messages: messages}
}

// CreateTicket POST /api/tickets.
func (h *TicketsHandler) CreateTicket(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	ticket, err := h.tickets.CreateTicket(c.UserContext(), actor, service.TicketCreateInput{
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewTicketResponse(ticket)})
}

// ListTickets GET /api/tickets.
func (h *TicketsHandler) ListTickets(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	filter, err := parseTicketQuery(c)
	if err != nil {
		return err
	}
	tickets, err := h.tickets.ListTickets(c.UserContext(), actor, filter)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketResponses(tickets)})
}

// GetTicket GET /api/tickets/:id.
func (h *TicketsHandler) GetTicket(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	ticket, err := h.tickets.GetTicket(c.UserContext(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketResponse(ticket)})
}

// AssignCategory PUT /api/tickets/:id/category.
func (h *TicketsHandler) AssignCategory(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	var req dto.AssignCategoryRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(req.Category) == "" {
		return apperrors.NewValidationError("category is required", map[string]any{"field": "category"})
	}

	ticket, result, err := h.assignments.AssignTicketToDepartment(c.UserContext(), actor, c.Params("id"), req.Category)
	if err != nil {
		return err
	}
	return c.JSON(assignmentResponse(ticket, &result))
}

// UpdateTicket PUT /api/tickets/:id.
func (h *TicketsHandler) UpdateTicket(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	var req dto.UpdateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	ticket, result, err := h.tickets.UpdateTicket(c.UserContext(), actor, c.Params("id"), service.TicketUpdateInput{
		Category: req.Category,
		Status:   req.Status,
		Priority: req.Priority,
	})
	if err != nil {
		return err
	}
	return c.JSON(assignmentResponse(ticket, result))
}

// DeleteTicket DELETE /api/tickets/:id.
func (h *TicketsHandler) DeleteTicket(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	if err := h.tickets.DeleteTicket(c.UserContext(), actor, c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "ticket deleted"})
}

// ListMessages GET /api/tickets/:id/messages.
func (h *TicketsHandler) ListMessages(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	msgs, err := h.messages.ListMessages(c.UserContext(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	items := make([]dto.MessageResponse, 0, len(msgs))
	for i := range msgs {
		items = append(items, dto.NewMessageResponse(&msgs[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// AddMessage POST /api/tickets/:id/messages.
func (h *TicketsHandler) AddMessage(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	var req dto.CreateMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	msg, err := h.messages.PostMessage(c.UserContext(), actor, c.Params("id"), req.Message)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewMessageResponse(msg)})
}

// assignmentResponse renders the outcome of a category change. A nil
// result means the update did not touch the category.
func assignmentResponse(ticket *domain.Ticket, result *service.AssignmentResult) dto.AssignmentResponse {
	resp := dto.AssignmentResponse{
		Message: "ticket updated",
		Ticket:  dto.NewTicketResponse(ticket),
	}
	if result == nil {
		resp.Assigned = ticket.IsAssigned()
		return resp
	}
	resp.Assigned = result.Assigned
	switch {
	case result.Assigned && result.Staff != nil:
		resp.Message = "ticket assigned to " + result.Staff.Name
		resp.Staff = &dto.AssignedStaff{
			ID:         result.Staff.ID,
			Name:       result.Staff.Name,
			Email:      result.Staff.Email,
			Department: result.Staff.Department,
		}
	case result.Reason != "":
		resp.Message = result.Reason
	}
	return resp
}

func parseTicketQuery(c *fiber.Ctx) (service.TicketListFilter, error) {
	filter := service.TicketListFilter{}
	if raw := c.Query("unassigned"); raw != "" {
		unassigned, err := strconv.ParseBool(raw)
		if err != nil {
			return filter, apperrors.NewValidationError("unassigned must be true or false", map[string]any{"unassigned": raw})
		}
		filter.Unassigned = &unassigned
	}
	if c.Query("page") != "" || c.Query("page_size") != "" {
		page := parseInt(c.Query("page"), 1)
		pageSize := parseInt(c.Query("page_size"), 20)
		filter.Offset = (page - 1) * pageSize
		filter.Limit = pageSize
	}
	return filter, nil
}

func parseInt(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}
