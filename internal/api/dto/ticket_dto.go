package dto

import (
	"time"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
}

// AssignCategoryRequest payload for PUT /api/tickets/:id/category.
type AssignCategoryRequest struct {
	Category string `json:"category"`
}

// UpdateTicketRequest payload for PUT /api/tickets/:id. Absent fields are
// left unchanged.
type UpdateTicketRequest struct {
	Category *string `json:"category"`
	Status   *string `json:"status"`
	Priority *string `json:"priority"`
}

// TicketResponse is the ticket document as clients see it.
type TicketResponse struct {
	ID                 string              `json:"id"`
	Title              string              `json:"title"`
	Description        string              `json:"description"`
	UserID             string              `json:"userId"`
	Status             domain.TicketStatus `json:"status"`
	Priority           string              `json:"priority,omitempty"`
	Category           *string             `json:"category"`
	AssignedStaffID    *string             `json:"assignedStaffId"`
	AssignedStaffName  *string             `json:"assignedStaffName"`
	AssignedDepartment *string             `json:"assignedDepartment"`
	AssignedAt         *time.Time          `json:"assignedAt"`
	Date               time.Time           `json:"date"`
	UpdatedAt          time.Time           `json:"updatedAt"`
}

// AssignedStaff identifies the staff member picked by an assignment.
type AssignedStaff struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Department string `json:"department"`
}

// AssignmentResponse is returned by the category and update endpoints.
// Staff is null when nobody was assigned.
type AssignmentResponse struct {
	Message  string         `json:"message"`
	Ticket   TicketResponse `json:"ticket"`
	Assigned bool           `json:"assigned"`
	Staff    *AssignedStaff `json:"staff"`
}

// CreateMessageRequest payload.
type CreateMessageRequest struct {
	Message string `json:"message"`
}

// MessageResponse represents one thread entry.
type MessageResponse struct {
	ID         string    `json:"id"`
	TicketID   string    `json:"ticketId"`
	SenderID   string    `json:"senderId"`
	SenderName string    `json:"senderName"`
	ReceiverID *string   `json:"receiverId"`
	StaffID    *string   `json:"staffId"`
	Message    string    `json:"message"`
	Timestamp  time.Time `json:"timestamp"`
}

// NewTicketResponse converts the domain ticket; empty optional fields
// serialize as null.
func NewTicketResponse(ticket *domain.Ticket) TicketResponse {
	return TicketResponse{
		ID:                 ticket.ID,
		Title:              ticket.Title,
		Description:        ticket.Description,
		UserID:             ticket.UserID,
		Status:             ticket.Status,
		Priority:           ticket.Priority,
		Category:           optional(ticket.Category),
		AssignedStaffID:    optional(ticket.AssignedStaffID),
		AssignedStaffName:  optional(ticket.AssignedStaffName),
		AssignedDepartment: optional(ticket.AssignedDepartment),
		AssignedAt:         ticket.AssignedAt,
		Date:               ticket.Date,
		UpdatedAt:          ticket.UpdatedAt,
	}
}

// NewTicketResponses converts a listing.
func NewTicketResponses(tickets []domain.Ticket) []TicketResponse {
	items := make([]TicketResponse, 0, len(tickets))
	for i := range tickets {
		items = append(items, NewTicketResponse(&tickets[i]))
	}
	return items
}

// NewMessageResponse converts a thread message.
func NewMessageResponse(msg *domain.Message) MessageResponse {
	return MessageResponse{
		ID:         msg.ID,
		TicketID:   msg.TicketID,
		SenderID:   msg.SenderID,
		SenderName: msg.SenderName,
		ReceiverID: optional(msg.ReceiverID),
		StaffID:    optional(msg.StaffID),
		Message:    msg.Body,
		Timestamp:  msg.Timestamp,
	}
}

func optional(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}
