package domain

import "time"

// NotificationType distinguishes notification sources.
type NotificationType string

const (
	NotificationNewMessage     NotificationType = "new_message"
	NotificationTicketAssigned NotificationType = "ticket_assigned"
)

// Notification is addressed to one staff member.
type Notification struct {
	ID        string
	StaffID   string
	Type      NotificationType
	Title     string
	Message   string
	TicketID  string
	MessageID *string
	Read      bool
	CreatedAt time.Time
}
