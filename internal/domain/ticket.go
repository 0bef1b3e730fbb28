package domain

import (
	"strings"
	"time"
)

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusPending    TicketStatus = "Pending"
	TicketStatusOpen       TicketStatus = "Open"
	TicketStatusInProgress TicketStatus = "InProgress"
	TicketStatusResolved   TicketStatus = "Resolved"
)

var knownStatuses = []TicketStatus{
	TicketStatusPending,
	TicketStatusOpen,
	TicketStatusInProgress,
	TicketStatusResolved,
}

// ParseTicketStatus resolves a status label case-insensitively, ignoring
// spaces, dashes and underscores ("in progress" -> InProgress).
func ParseTicketStatus(raw string) (TicketStatus, bool) {
	key := strings.NewReplacer(" ", "", "_", "", "-", "").Replace(strings.ToLower(raw))
	for _, status := range knownStatuses {
		if strings.ToLower(string(status)) == key {
			return status, true
		}
	}
	return "", false
}

// Ticket is the aggregate for support requests. It is handled as a value:
// the With* methods return a modified copy and the store persists the
// whole document in a single save.
type Ticket struct {
	ID                 string
	Title              string
	Description        string
	UserID             string
	Status             TicketStatus
	Priority           string
	Category           string
	AssignedStaffID    string
	AssignedStaffName  string
	AssignedDepartment string
	AssignedAt         *time.Time
	Date               time.Time
	UpdatedAt          time.Time
	Version            int
}

// IsAssigned reports whether a staff member currently owns the ticket.
func (t Ticket) IsAssigned() bool {
	return t.AssignedStaffID != ""
}

// HasCategory reports whether an assignment attempt has been made.
func (t Ticket) HasCategory() bool {
	return t.Category != ""
}

// WithCategory returns a copy carrying the trimmed category.
func (t Ticket) WithCategory(category string) Ticket {
	t.Category = strings.TrimSpace(category)
	return t
}

// WithoutAssignment returns a copy with the staff snapshot cleared.
// Status and assignedAt are left untouched.
func (t Ticket) WithoutAssignment() Ticket {
	t.AssignedStaffID = ""
	t.AssignedStaffName = ""
	t.AssignedDepartment = ""
	return t
}

// WithAssignment binds the ticket to staff and reopens it.
func (t Ticket) WithAssignment(staff StaffMember, department string, at time.Time) Ticket {
	t.AssignedStaffID = staff.ID
	t.AssignedStaffName = staff.Name
	t.AssignedDepartment = department
	t.Status = TicketStatusOpen
	assignedAt := at
	t.AssignedAt = &assignedAt
	return t
}

// WithStatus returns a copy with the given status.
func (t Ticket) WithStatus(status TicketStatus) Ticket {
	t.Status = status
	return t
}

// WithPriority returns a copy with the given priority label.
func (t Ticket) WithPriority(priority string) Ticket {
	t.Priority = strings.TrimSpace(priority)
	return t
}
