package domain

import "time"

// Message captures one entry of a ticket thread.
type Message struct {
	ID         string
	TicketID   string
	SenderID   string
	SenderName string
	ReceiverID string
	// StaffID is the ticket's assigned staff member at send time.
	StaffID   string
	Body      string
	Timestamp time.Time
}
