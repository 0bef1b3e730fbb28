package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/spec-kit/helpdesk-service/internal/assignment"
	"github.com/spec-kit/helpdesk-service/internal/config"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/observability"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	"github.com/spec-kit/helpdesk-service/internal/repository/memstore"
)

var fixedNow = time.Date(2026, 5, 4, 9, 30, 0, 0, time.UTC)

type fixedRand struct{ value int }

func (f fixedRand) IntN(n int) int { return f.value % n }

type harness struct {
	store         *memstore.Store
	tickets       repository.TicketRepository
	notifications repository.NotificationRepository
	dispatcher    events.Dispatcher
	metrics       *observability.Metrics

	assignments *AssignmentService
	ticketSvc   *TicketService
	messages    *MessageService
	notifySvc   *NotificationService
	categories  *CategoryService
	authSvc     *AuthService
	management  *ManagementService
}

type harnessOption func(*harnessDeps)

type harnessDeps struct {
	tickets       repository.TicketRepository
	staff         repository.StaffDirectory
	notifications repository.NotificationRepository
	timeout       time.Duration
	policy        assignment.LoadPolicy
}

func withTickets(wrap func(repository.TicketRepository) repository.TicketRepository) harnessOption {
	return func(d *harnessDeps) { d.tickets = wrap(d.tickets) }
}

func withStaff(staff repository.StaffDirectory) harnessOption {
	return func(d *harnessDeps) { d.staff = staff }
}

func withNotifications(repo repository.NotificationRepository) harnessOption {
	return func(d *harnessDeps) { d.notifications = repo }
}

func withTimeout(timeout time.Duration) harnessOption {
	return func(d *harnessDeps) { d.timeout = timeout }
}

func withPolicy(policy assignment.LoadPolicy) harnessOption {
	return func(d *harnessDeps) { d.policy = policy }
}

func newHarness(t *testing.T, opts ...harnessOption) *harness {
	t.Helper()
	store := memstore.New()
	deps := harnessDeps{
		tickets:       store.Tickets(),
		staff:         store.Staff(),
		notifications: store.Notifications(),
		timeout:       time.Second,
	}
	for _, opt := range opts {
		opt(&deps)
	}

	dispatcher := events.NewInMemoryDispatcher(nil)
	metrics := observability.NewMetrics()
	assignments := NewAssignmentService(AssignmentDependencies{
		TicketRepo:          deps.tickets,
		StaffDirectory:      deps.staff,
		Dispatcher:          dispatcher,
		Metrics:             metrics,
		Rand:                fixedRand{},
		LoadPolicy:          deps.policy,
		CollaboratorTimeout: deps.timeout,
		Clock:               func() time.Time { return fixedNow },
	})
	notifySvc := NewNotificationService(NotificationDependencies{
		NotificationRepo: deps.notifications,
		Dispatcher:       dispatcher,
	})
	notifySvc.RegisterHandlers()

	authSvc := NewAuthService(config.Config{Auth: config.AuthConfig{JWTSecret: "test", BcryptCost: 4}}, AuthDependencies{
		UserRepo: store.Users(),
	})

	return &harness{
		store:         store,
		tickets:       deps.tickets,
		notifications: deps.notifications,
		dispatcher:    dispatcher,
		metrics:       metrics,
		assignments:   assignments,
		ticketSvc: NewTicketService(TicketDependencies{
			TicketRepo:  deps.tickets,
			Assignments: assignments,
			Dispatcher:  dispatcher,
		}),
		messages: NewMessageService(MessageDependencies{
			TicketRepo:  deps.tickets,
			MessageRepo: store.Messages(),
			Dispatcher:  dispatcher,
		}),
		notifySvc: notifySvc,
		categories: NewCategoryService(CategoryDependencies{
			CategoryRepo:   store.Categories(),
			StaffDirectory: deps.staff,
			TicketRepo:     deps.tickets,
		}),
		authSvc:    authSvc,
		management: NewManagementService(store.Users(), authSvc),
	}
}

func (h *harness) user(t *testing.T, name string, role domain.Role, department string) *domain.User {
	t.Helper()
	u := &domain.User{Name: name, Email: name + "@example.com", Role: role, Department: department}
	if err := h.store.Users().Create(context.Background(), u); err != nil {
		t.Fatalf("create user %s: %v", name, err)
	}
	return u
}

// ticket stores a ticket directly, bypassing the client-only create path.
func (h *harness) ticket(t *testing.T, ticket domain.Ticket) *domain.Ticket {
	t.Helper()
	if ticket.Status == "" {
		ticket.Status = domain.TicketStatusPending
	}
	if err := h.tickets.Create(context.Background(), &ticket); err != nil {
		t.Fatalf("create ticket: %v", err)
	}
	return &ticket
}

func (h *harness) reload(t *testing.T, id string) *domain.Ticket {
	t.Helper()
	ticket, err := h.tickets.GetByID(context.Background(), id)
	if err != nil {
		t.Fatalf("reload %s: %v", id, err)
	}
	return ticket
}

var errStoreDown = errors.New("store unreachable")

type failingSave struct {
	repository.TicketRepository
}

func (failingSave) Save(context.Context, *domain.Ticket) error { return errStoreDown }

type failingNotifications struct {
	repository.NotificationRepository
	attempts int
}

func (f *failingNotifications) Create(context.Context, *domain.Notification) error {
	f.attempts++
	return errStoreDown
}

// recordingFind keeps the last filter passed to Find.
type recordingFind struct {
	repository.TicketRepository
	last repository.TicketFilter
}

func (r *recordingFind) Find(ctx context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	r.last = filter
	return r.TicketRepository.Find(ctx, filter)
}

// blockingStaff never answers before the context ends.
type blockingStaff struct {
	repository.StaffDirectory
}

func (blockingStaff) FindByDepartment(ctx context.Context, _ string) ([]domain.StaffMember, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}
