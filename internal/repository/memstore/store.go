// Package memstore keeps every repository in process memory. It backs the
// service when no database is configured and doubles as the fake used by
// service and handler tests.
package memstore

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
)

// Store holds all collections behind a single mutex.
type Store struct {
	mu sync.RWMutex

	users         []domain.User
	tickets       []domain.Ticket
	messages      []domain.Message
	categories    []domain.Category
	notifications []domain.Notification

	now func() time.Time
}

// New returns an empty store.
func New() *Store {
	return &Store{now: func() time.Time { return time.Now().UTC() }}
}

// WithClock replaces the timestamp source, used by tests that assert ordering.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

func (s *Store) newID() string {
	return uuid.NewString()
}

// Users exposes the account collection.
func (s *Store) Users() repository.UserRepository { return userStore{s} }

// Staff exposes the staff directory view over accounts.
func (s *Store) Staff() repository.StaffDirectory { return staffStore{s} }

// Tickets exposes the ticket collection.
func (s *Store) Tickets() repository.TicketRepository { return ticketStore{s} }

// Messages exposes ticket threads.
func (s *Store) Messages() repository.MessageRepository { return messageStore{s} }

// Categories exposes routing categories.
func (s *Store) Categories() repository.CategoryRepository { return categoryStore{s} }

// Notifications exposes staff notifications.
func (s *Store) Notifications() repository.NotificationRepository { return notificationStore{s} }
