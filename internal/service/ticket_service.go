package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/lock"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

// TicketService coordinates ticket workflows.
type TicketService struct {
	tickets     repository.TicketRepository
	assignments *AssignmentService
	locker      lock.Locker
	dispatcher  events.Dispatcher
	logger      *zap.Logger
}

// TicketDependencies bundles repositories for ticket service. Locker must be
// the same instance the AssignmentService uses.
type TicketDependencies struct {
	TicketRepo  repository.TicketRepository
	Assignments *AssignmentService
	Locker      lock.Locker
	Dispatcher  events.Dispatcher
	Logger      *zap.Logger
}

// TicketCreateInput describes ticket creation payload.
type TicketCreateInput struct {
	Title       string
	Description string
	Priority    string
}

// TicketListFilter narrows admin listings. Unassigned selects tickets
// without a category (true) or with one (false).
type TicketListFilter struct {
	Unassigned *bool
	Limit      int
	Offset     int
}

// TicketUpdateInput carries the combined update. Nil fields are left alone;
// an empty category means no category change.
type TicketUpdateInput struct {
	Category *string
	Status   *string
	Priority *string
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	s := &TicketService{
		tickets:     deps.TicketRepo,
		assignments: deps.Assignments,
		locker:      deps.Locker,
		dispatcher:  deps.Dispatcher,
		logger:      deps.Logger,
	}
	if s.locker == nil {
		s.locker = deps.Assignments.locker
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	return s
}

// CreateTicket opens a Pending ticket for a client.
func (s *TicketService) CreateTicket(ctx context.Context, actor *domain.User, input TicketCreateInput) (*domain.Ticket, error) {
	if actor == nil {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	if !actor.Role.Is(domain.RoleClient) {
		return nil, apperrors.NewForbidden("only clients can open tickets")
	}
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, apperrors.NewValidationError("title is required", map[string]any{"field": "title"})
	}

	ticket := &domain.Ticket{
		Title:       title,
		Description: strings.TrimSpace(input.Description),
		UserID:      actor.ID,
		Status:      domain.TicketStatusPending,
		Priority:    strings.TrimSpace(input.Priority),
	}
	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}

	publishEvent(ctx, s.dispatcher, events.Event{
		Type:     events.EventTicketCreated,
		TicketID: ticket.ID,
		Actor:    actorOf(actor),
		Payload:  events.TicketCreatedPayload{Title: ticket.Title, UserID: ticket.UserID},
	})
	return ticket, nil
}

// ListTickets returns what the caller may see: everything for admins,
// assigned tickets for staff and own tickets for clients.
func (s *TicketService) ListTickets(ctx context.Context, actor *domain.User, filter TicketListFilter) ([]domain.Ticket, error) {
	if actor == nil {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	repoFilter := repository.TicketFilter{Limit: filter.Limit, Offset: filter.Offset}
	switch {
	case actor.Role.Is(domain.RoleAdmin):
		if filter.Unassigned != nil {
			hasCategory := !*filter.Unassigned
			repoFilter.HasCategory = &hasCategory
		}
	case actor.Role.Is(domain.RoleStaff):
		repoFilter.AssignedStaffID = &actor.ID
	default:
		repoFilter.UserID = &actor.ID
	}
	tickets, err := s.tickets.Find(ctx, repoFilter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return tickets, nil
}

// ListStaffTickets returns tickets assigned to staffID. Staff may only list
// their own.
func (s *TicketService) ListStaffTickets(ctx context.Context, actor *domain.User, staffID string) ([]domain.Ticket, error) {
	if actor == nil {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	if !actor.Role.Is(domain.RoleAdmin) && !(actor.Role.Is(domain.RoleStaff) && actor.ID == staffID) {
		return nil, apperrors.NewForbidden("access denied")
	}
	tickets, err := s.tickets.Find(ctx, repository.TicketFilter{AssignedStaffID: &staffID})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return tickets, nil
}

// GetTicket loads a ticket the caller participates in.
func (s *TicketService) GetTicket(ctx context.Context, actor *domain.User, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, notFoundOr(err, "ticket", map[string]any{"ticket_id": ticketID})
	}
	if !canView(actor, ticket) {
		return nil, apperrors.NewForbidden("access denied")
	}
	return ticket, nil
}

// UpdateTicket applies category, status and priority changes in one save.
// A non-empty category runs the full assignment flow and is admin only;
// status and priority may also be changed by the assigned staff member.
// An explicit status is applied after assignment and wins over the Open
// that assignment sets.
func (s *TicketService) UpdateTicket(ctx context.Context, actor *domain.User, ticketID string, input TicketUpdateInput) (*domain.Ticket, *AssignmentResult, error) {
	if actor == nil {
		return nil, nil, apperrors.NewUnauthorized("authentication required")
	}

	var status domain.TicketStatus
	if input.Status != nil {
		parsed, ok := domain.ParseTicketStatus(*input.Status)
		if !ok {
			return nil, nil, apperrors.NewValidationError("unknown status", map[string]any{"status": *input.Status})
		}
		status = parsed
	}
	category := ""
	if input.Category != nil {
		category = strings.TrimSpace(*input.Category)
	}
	if category != "" && !actor.Role.Is(domain.RoleAdmin) {
		return nil, nil, apperrors.NewForbidden("only admins can change the category")
	}

	release, err := s.locker.Acquire(ctx, lock.TicketKey(ticketID))
	if err != nil {
		return nil, nil, apperrors.MapError(err)
	}
	defer release()

	current, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, nil, notFoundOr(err, "ticket", map[string]any{"ticket_id": ticketID})
	}
	if !canEdit(actor, current) {
		return nil, nil, apperrors.NewForbidden("access denied")
	}

	updated := *current
	var result *AssignmentResult
	if category != "" {
		next, outcome, err := s.assignments.Apply(ctx, updated, category)
		if err != nil {
			return nil, nil, err
		}
		updated, result = next, &outcome
	}
	if status != "" {
		updated = updated.WithStatus(status)
	}
	if input.Priority != nil {
		updated = updated.WithPriority(*input.Priority)
	}

	if err := s.tickets.Save(ctx, &updated); err != nil {
		return nil, nil, notFoundOr(err, "ticket", map[string]any{"ticket_id": ticketID})
	}

	if result != nil {
		s.assignments.Announce(ctx, actor, updated, *result)
	}
	if updated.Status != current.Status {
		publishEvent(ctx, s.dispatcher, events.Event{
			Type:     events.EventTicketStatusChanged,
			TicketID: updated.ID,
			Actor:    actorOf(actor),
			Payload: events.TicketStatusChangedPayload{
				OldStatus: current.Status,
				NewStatus: updated.Status,
			},
		})
	}
	return &updated, result, nil
}

// DeleteTicket removes a ticket and its thread.
func (s *TicketService) DeleteTicket(ctx context.Context, actor *domain.User, ticketID string) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	release, err := s.locker.Acquire(ctx, lock.TicketKey(ticketID))
	if err != nil {
		return apperrors.MapError(err)
	}
	defer release()

	deleted, err := s.tickets.Delete(ctx, ticketID)
	if err != nil {
		return apperrors.MapError(err)
	}
	if !deleted {
		return apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
	}
	return nil
}

// ReopenAssignedPending moves assigned tickets stuck in Pending to Open.
// Run once at startup.
func (s *TicketService) ReopenAssignedPending(ctx context.Context) (int64, error) {
	n, err := s.tickets.ReopenAssignedPending(ctx)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.logger.Info("reopened assigned pending tickets", zap.Int64("count", n))
	}
	return n, nil
}

func canView(actor *domain.User, ticket *domain.Ticket) bool {
	if actor == nil {
		return false
	}
	switch {
	case actor.Role.Is(domain.RoleAdmin):
		return true
	case actor.Role.Is(domain.RoleStaff):
		return ticket.AssignedStaffID == actor.ID
	default:
		return ticket.UserID == actor.ID
	}
}

func canEdit(actor *domain.User, ticket *domain.Ticket) bool {
	if actor.Role.Is(domain.RoleAdmin) {
		return true
	}
	return actor.Role.Is(domain.RoleStaff) && ticket.AssignedStaffID == actor.ID
}
