// Package assignment holds the staff load aggregation and least-loaded
// selection used when a ticket is routed to a department. Everything here
// is free of I/O; the orchestrator in the service package feeds it.
package assignment

import "github.com/spec-kit/helpdesk-service/internal/domain"

// LoadPolicy decides which tickets count towards a staff member's load.
type LoadPolicy string

const (
	// PolicyLifetime counts every ticket ever assigned, resolved included.
	PolicyLifetime LoadPolicy = "lifetime"
	// PolicyOpen skips resolved tickets.
	PolicyOpen LoadPolicy = "open"
)

// CountedStatuses lists the statuses that add to load, for pushing the
// policy down into the ticket query. Nil means every status counts.
func (p LoadPolicy) CountedStatuses() []domain.TicketStatus {
	if p == PolicyOpen {
		return []domain.TicketStatus{
			domain.TicketStatusPending,
			domain.TicketStatusOpen,
			domain.TicketStatusInProgress,
		}
	}
	return nil
}

func (p LoadPolicy) counts(ticket domain.Ticket) bool {
	if p == PolicyOpen {
		return ticket.Status != domain.TicketStatusResolved
	}
	return true
}

// ComputeLoads maps every staff ID to the number of tickets assigned to it.
// IDs without tickets are present with zero; tickets assigned to staff
// outside staffIDs are ignored.
func ComputeLoads(staffIDs []string, tickets []domain.Ticket, policy LoadPolicy) map[string]int {
	loads := make(map[string]int, len(staffIDs))
	for _, id := range staffIDs {
		loads[id] = 0
	}
	for _, ticket := range tickets {
		if ticket.AssignedStaffID == "" {
			continue
		}
		if _, candidate := loads[ticket.AssignedStaffID]; !candidate {
			continue
		}
		if !policy.counts(ticket) {
			continue
		}
		loads[ticket.AssignedStaffID]++
	}
	return loads
}

// StaffIDs extracts candidate IDs in directory order.
func StaffIDs(staff []domain.StaffMember) []string {
	ids := make([]string, 0, len(staff))
	for _, member := range staff {
		ids = append(ids, member.ID)
	}
	return ids
}
