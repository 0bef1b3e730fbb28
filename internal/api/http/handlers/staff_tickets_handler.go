package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/api/dto"
	"github.com/spec-kit/helpdesk-service/internal/service"
)

// StaffTicketsHandler serves per-staff ticket listings and the staff inbox.
type StaffTicketsHandler struct {
	tickets       *service.TicketService
	notifications *service.NotificationService
}

// NewStaffTicketsHandler constructs handler.
func NewStaffTicketsHandler(tickets *service.TicketService, notifications *service.NotificationService) *StaffTicketsHandler {
	return &StaffTicketsHandler{tickets: tickets, notifications: notifications}
}

// ListStaffTickets GET /api/staff/:id/tickets.
func (h *StaffTicketsHandler) ListStaffTickets(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	tickets, err := h.tickets.ListStaffTickets(c.UserContext(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketResponses(tickets)})
}

// ListNotifications GET /api/notifications.
func (h *StaffTicketsHandler) ListNotifications(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	items, err := h.notifications.ListNotifications(c.UserContext(), actor, c.QueryBool("unread"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewNotificationResponses(items)})
}

// MarkNotificationRead PUT /api/notifications/:id/read.
func (h *StaffTicketsHandler) MarkNotificationRead(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	if err := h.notifications.MarkRead(c.UserContext(), actor, c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "notification marked as read"})
}
