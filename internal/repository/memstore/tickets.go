package memstore

import (
	"context"
	"slices"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

type ticketStore struct{ s *Store }

func (t ticketStore) Create(_ context.Context, ticket *domain.Ticket) error {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()

	now := t.s.now()
	ticket.ID = t.s.newID()
	ticket.Date = now
	ticket.UpdatedAt = now
	ticket.Version = 1
	t.s.tickets = append(t.s.tickets, *ticket)
	return nil
}

func (t ticketStore) GetByID(_ context.Context, id string) (*domain.Ticket, error) {
	t.s.mu.RLock()
	defer t.s.mu.RUnlock()

	if i := t.indexOf(id); i >= 0 {
		found := t.s.tickets[i]
		return &found, nil
	}
	return nil, apperrors.ErrNotFound
}

func (t ticketStore) Find(_ context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	t.s.mu.RLock()
	defer t.s.mu.RUnlock()

	var result []domain.Ticket
	for i := len(t.s.tickets) - 1; i >= 0; i-- {
		ticket := t.s.tickets[i]
		if matches(ticket, filter) {
			result = append(result, ticket)
		}
	}

	if filter.Limit > 0 {
		offset := max(filter.Offset, 0)
		if offset >= len(result) {
			return nil, nil
		}
		end := min(offset+filter.Limit, len(result))
		result = result[offset:end]
	}
	return result, nil
}

func matches(ticket domain.Ticket, filter repository.TicketFilter) bool {
	if filter.UserID != nil && ticket.UserID != *filter.UserID {
		return false
	}
	if filter.AssignedStaffID != nil && ticket.AssignedStaffID != *filter.AssignedStaffID {
		return false
	}
	if filter.AssignedStaffIDs != nil && !slices.Contains(filter.AssignedStaffIDs, ticket.AssignedStaffID) {
		return false
	}
	if filter.HasCategory != nil && ticket.HasCategory() != *filter.HasCategory {
		return false
	}
	if len(filter.Statuses) > 0 && !slices.Contains(filter.Statuses, ticket.Status) {
		return false
	}
	return true
}

func (t ticketStore) Save(_ context.Context, ticket *domain.Ticket) error {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()

	i := t.indexOf(ticket.ID)
	if i < 0 {
		return apperrors.ErrNotFound
	}
	stored := t.s.tickets[i]
	if stored.Version != ticket.Version {
		return repository.ErrVersionConflict
	}

	stored.Status = ticket.Status
	stored.Priority = ticket.Priority
	stored.Category = ticket.Category
	stored.AssignedStaffID = ticket.AssignedStaffID
	stored.AssignedStaffName = ticket.AssignedStaffName
	stored.AssignedDepartment = ticket.AssignedDepartment
	stored.AssignedAt = ticket.AssignedAt
	stored.UpdatedAt = t.s.now()
	stored.Version++
	t.s.tickets[i] = stored

	ticket.Version = stored.Version
	ticket.UpdatedAt = stored.UpdatedAt
	return nil
}

func (t ticketStore) Delete(_ context.Context, id string) (bool, error) {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()

	i := t.indexOf(id)
	if i < 0 {
		return false, nil
	}
	t.s.tickets = slices.Delete(t.s.tickets, i, i+1)
	t.s.messages = slices.DeleteFunc(t.s.messages, func(m domain.Message) bool {
		return m.TicketID == id
	})
	return true, nil
}

func (t ticketStore) ReopenAssignedPending(_ context.Context) (int64, error) {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()

	var n int64
	for i, ticket := range t.s.tickets {
		if ticket.IsAssigned() && ticket.Status == domain.TicketStatusPending {
			ticket.Status = domain.TicketStatusOpen
			ticket.UpdatedAt = t.s.now()
			ticket.Version++
			t.s.tickets[i] = ticket
			n++
		}
	}
	return n, nil
}

func (t ticketStore) CountByCategory(_ context.Context) (map[string]int, error) {
	t.s.mu.RLock()
	defer t.s.mu.RUnlock()

	counts := map[string]int{}
	for _, ticket := range t.s.tickets {
		if key := domain.NormalizeDepartment(ticket.Category); key != "" {
			counts[key]++
		}
	}
	return counts, nil
}

// indexOf must be called with the lock held.
func (t ticketStore) indexOf(id string) int {
	return slices.IndexFunc(t.s.tickets, func(ticket domain.Ticket) bool {
		return ticket.ID == id
	})
}
