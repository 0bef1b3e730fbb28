package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/assignment"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/lock"
	"github.com/spec-kit/helpdesk-service/internal/observability"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

// Outcome reasons reported when no staff member ends up on the ticket.
const (
	ReasonCategoryCleared = "category cleared"
	ReasonNoStaff         = "no staff available for this department"
)

// AssignmentResult describes one assignment attempt. Staff is set only
// when Assigned is true.
type AssignmentResult struct {
	Assigned bool
	Staff    *domain.StaffMember
	Reason   string
}

// AssignmentService routes tickets to the least-loaded staff member of a
// department.
type AssignmentService struct {
	tickets    repository.TicketRepository
	staff      repository.StaffDirectory
	locker     lock.Locker
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
	logger     *zap.Logger
	rng        assignment.RandSource
	policy     assignment.LoadPolicy
	timeout    time.Duration
	now        func() time.Time
}

// AssignmentDependencies bundles collaborators. Zero values get defaults:
// a keyed mutex, a seeded random source, the lifetime policy and the wall clock.
type AssignmentDependencies struct {
	TicketRepo          repository.TicketRepository
	StaffDirectory      repository.StaffDirectory
	Locker              lock.Locker
	Dispatcher          events.Dispatcher
	Metrics             *observability.Metrics
	Logger              *zap.Logger
	Rand                assignment.RandSource
	LoadPolicy          assignment.LoadPolicy
	CollaboratorTimeout time.Duration
	Clock               func() time.Time
}

// NewAssignmentService creates the service.
func NewAssignmentService(deps AssignmentDependencies) *AssignmentService {
	s := &AssignmentService{
		tickets:    deps.TicketRepo,
		staff:      deps.StaffDirectory,
		locker:     deps.Locker,
		dispatcher: deps.Dispatcher,
		metrics:    deps.Metrics,
		logger:     deps.Logger,
		rng:        deps.Rand,
		policy:     deps.LoadPolicy,
		timeout:    deps.CollaboratorTimeout,
		now:        deps.Clock,
	}
	if s.locker == nil {
		s.locker = lock.NewKeyedMutex()
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.rng == nil {
		s.rng = assignment.NewLockedRand(nil)
	}
	if s.policy == "" {
		s.policy = assignment.PolicyLifetime
	}
	if s.now == nil {
		s.now = func() time.Time { return time.Now().UTC() }
	}
	return s
}

// AssignTicketToDepartment sets the ticket's category and re-runs staff
// selection, even when the category is unchanged. The ticket is saved once
// with whatever outcome the attempt produced.
func (s *AssignmentService) AssignTicketToDepartment(ctx context.Context, actor *domain.User, ticketID, category string) (*domain.Ticket, AssignmentResult, error) {
	release, err := s.locker.Acquire(ctx, lock.TicketKey(ticketID))
	if err != nil {
		return nil, AssignmentResult{}, apperrors.MapError(err)
	}
	defer release()

	current, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, AssignmentResult{}, notFoundOr(err, "ticket", map[string]any{"ticket_id": ticketID})
	}

	updated, result, err := s.Apply(ctx, *current, category)
	if err != nil {
		return nil, AssignmentResult{}, err
	}
	if err := s.tickets.Save(ctx, &updated); err != nil {
		return nil, AssignmentResult{}, notFoundOr(err, "ticket", map[string]any{"ticket_id": ticketID})
	}

	s.Announce(ctx, actor, updated, result)
	return &updated, result, nil
}

// Apply computes the assignment outcome for ticket without persisting it.
// Callers must hold the ticket lock and save the returned value.
func (s *AssignmentService) Apply(ctx context.Context, ticket domain.Ticket, category string) (domain.Ticket, AssignmentResult, error) {
	ticket = ticket.WithCategory(category)
	if !ticket.HasCategory() {
		s.metrics.RecordAssignment("cleared")
		return ticket.WithoutAssignment(), AssignmentResult{Reason: ReasonCategoryCleared}, nil
	}

	candidates, loads, err := s.candidates(ctx, ticket.Category)
	if err != nil {
		return domain.Ticket{}, AssignmentResult{}, err
	}

	staff, ok := assignment.Select(candidates, loads, s.rng)
	if !ok {
		s.metrics.RecordAssignment("no_staff")
		return ticket.WithoutAssignment(), AssignmentResult{Reason: ReasonNoStaff}, nil
	}

	// The staff department can only differ from the category in case or
	// whitespace; the ticket keeps the category spelling.
	department := ticket.Category
	s.metrics.RecordAssignment("assigned")
	s.logger.Debug("ticket routed",
		zap.String("ticket_id", ticket.ID),
		zap.String("category", ticket.Category),
		zap.String("staff_id", staff.ID),
		zap.Int("load", loads[staff.ID]),
		zap.Int("candidates", len(candidates)),
	)
	return ticket.WithAssignment(staff, department, s.now()), AssignmentResult{Assigned: true, Staff: &staff}, nil
}

// candidates reads the department pool and its loads under the collaborator timeout.
func (s *AssignmentService) candidates(ctx context.Context, category string) ([]domain.StaffMember, map[string]int, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	staff, err := s.staff.FindByDepartment(ctx, domain.NormalizeDepartment(category))
	if err != nil {
		return nil, nil, apperrors.MapError(err)
	}
	if len(staff) == 0 {
		return nil, nil, nil
	}

	ids := assignment.StaffIDs(staff)
	assigned, err := s.tickets.Find(ctx, repository.TicketFilter{
		AssignedStaffIDs: ids,
		Statuses:         s.policy.CountedStatuses(),
	})
	if err != nil {
		return nil, nil, apperrors.MapError(err)
	}
	return staff, assignment.ComputeLoads(ids, assigned, s.policy), nil
}

// Announce publishes ticket_assigned for a successful attempt.
func (s *AssignmentService) Announce(ctx context.Context, actor *domain.User, ticket domain.Ticket, result AssignmentResult) {
	if !result.Assigned || result.Staff == nil {
		return
	}
	publishEvent(ctx, s.dispatcher, events.Event{
		Type:     events.EventTicketAssigned,
		TicketID: ticket.ID,
		Actor:    actorOf(actor),
		Payload: events.TicketAssignedPayload{
			StaffID:    result.Staff.ID,
			StaffName:  result.Staff.Name,
			Department: ticket.AssignedDepartment,
			Category:   ticket.Category,
			Title:      ticket.Title,
		},
	})
}
