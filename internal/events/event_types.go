package events

import (
	"time"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated       EventType = "ticket_created"
	EventTicketAssigned      EventType = "ticket_assigned"
	EventTicketStatusChanged EventType = "ticket_status_changed"
	EventMessagePosted       EventType = "message_posted"
)

// Actor identifies who triggered an event. Empty for system actions.
type Actor struct {
	UserID string      `json:"user_id,omitempty"`
	Role   domain.Role `json:"role,omitempty"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	TicketID  string    `json:"ticket_id"`
	Actor     Actor     `json:"actor"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	Title  string `json:"title"`
	UserID string `json:"user_id"`
}

// TicketAssignedPayload carries the assignment snapshot written to the ticket.
type TicketAssignedPayload struct {
	StaffID    string `json:"staff_id"`
	StaffName  string `json:"staff_name"`
	Department string `json:"department"`
	Category   string `json:"category"`
	Title      string `json:"title"`
}

// TicketStatusChangedPayload payload.
type TicketStatusChangedPayload struct {
	OldStatus domain.TicketStatus `json:"old_status"`
	NewStatus domain.TicketStatus `json:"new_status"`
}

// MessagePostedPayload payload. StaffID is the ticket's assignee when the
// message was written, empty if unassigned.
type MessagePostedPayload struct {
	MessageID   string `json:"message_id"`
	SenderID    string `json:"sender_id"`
	SenderName  string `json:"sender_name"`
	StaffID     string `json:"staff_id,omitempty"`
	BodyPreview string `json:"body_preview"`
}
