package memstore

import (
	"context"
	"fmt"
	"strings"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

type messageStore struct{ s *Store }

func (m messageStore) Create(_ context.Context, msg *domain.Message) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	msg.ID = m.s.newID()
	msg.Timestamp = m.s.now()
	m.s.messages = append(m.s.messages, *msg)
	return nil
}

func (m messageStore) ListByTicket(_ context.Context, ticketID string) ([]domain.Message, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()

	var result []domain.Message
	for _, msg := range m.s.messages {
		if msg.TicketID == ticketID {
			result = append(result, msg)
		}
	}
	return result, nil
}

type categoryStore struct{ s *Store }

func (c categoryStore) Create(_ context.Context, category *domain.Category) error {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()

	for _, existing := range c.s.categories {
		if strings.EqualFold(existing.Code, category.Code) || domain.SameDepartment(existing.Name, category.Name) {
			return fmt.Errorf("category %s already exists: %w", category.Name, apperrors.ErrConflict)
		}
	}
	now := c.s.now()
	category.ID = c.s.newID()
	category.CreatedAt = now
	category.UpdatedAt = now
	c.s.categories = append(c.s.categories, *category)
	return nil
}

func (c categoryStore) List(_ context.Context) ([]domain.Category, error) {
	c.s.mu.RLock()
	defer c.s.mu.RUnlock()

	result := make([]domain.Category, len(c.s.categories))
	copy(result, c.s.categories)
	return result, nil
}

type notificationStore struct{ s *Store }

func (n notificationStore) Create(_ context.Context, notification *domain.Notification) error {
	n.s.mu.Lock()
	defer n.s.mu.Unlock()

	notification.ID = n.s.newID()
	notification.CreatedAt = n.s.now()
	n.s.notifications = append(n.s.notifications, *notification)
	return nil
}

func (n notificationStore) ListByStaff(_ context.Context, staffID string, unreadOnly bool) ([]domain.Notification, error) {
	n.s.mu.RLock()
	defer n.s.mu.RUnlock()

	var result []domain.Notification
	for i := len(n.s.notifications) - 1; i >= 0; i-- {
		item := n.s.notifications[i]
		if item.StaffID != staffID || (unreadOnly && item.Read) {
			continue
		}
		result = append(result, item)
	}
	return result, nil
}

func (n notificationStore) MarkRead(_ context.Context, id, staffID string) error {
	n.s.mu.Lock()
	defer n.s.mu.Unlock()

	for i, item := range n.s.notifications {
		if item.ID == id && item.StaffID == staffID {
			n.s.notifications[i].Read = true
			return nil
		}
	}
	return apperrors.ErrNotFound
}
