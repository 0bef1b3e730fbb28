package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

// EventForwarder hands events to an outbound channel such as a webhook.
// Forward must not block the publisher.
type EventForwarder interface {
	Forward(event events.Event)
}

// NotificationService turns ticket events into staff notifications.
type NotificationService struct {
	notifications repository.NotificationRepository
	dispatcher    events.Dispatcher
	forwarder     EventForwarder
	logger        *zap.Logger
}

// NotificationDependencies bundles collaborators. Forwarder is optional.
type NotificationDependencies struct {
	NotificationRepo repository.NotificationRepository
	Dispatcher       events.Dispatcher
	Forwarder        EventForwarder
	Logger           *zap.Logger
}

// NewNotificationService creates the service.
func NewNotificationService(deps NotificationDependencies) *NotificationService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{
		notifications: deps.NotificationRepo,
		dispatcher:    deps.Dispatcher,
		forwarder:     deps.Forwarder,
		logger:        logger,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventTicketAssigned, n.handleTicketAssigned)
	n.dispatcher.Subscribe(events.EventMessagePosted, n.handleMessagePosted)

	if n.forwarder == nil {
		return
	}
	for _, eventType := range []events.EventType{
		events.EventTicketCreated,
		events.EventTicketAssigned,
		events.EventTicketStatusChanged,
		events.EventMessagePosted,
	} {
		n.dispatcher.Subscribe(eventType, n.forward)
	}
}

func (n *NotificationService) handleTicketAssigned(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketAssignedPayload)
	if !ok || payload.StaffID == "" {
		return nil
	}
	n.store(ctx, &domain.Notification{
		StaffID:  payload.StaffID,
		Type:     domain.NotificationTicketAssigned,
		Title:    "New ticket assigned",
		Message:  fmt.Sprintf("Ticket %q was assigned to you (%s)", payload.Title, payload.Category),
		TicketID: event.TicketID,
	})
	return nil
}

// handleMessagePosted notifies the assigned staff member about messages
// written by anyone else. Their own messages never notify.
func (n *NotificationService) handleMessagePosted(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.MessagePostedPayload)
	if !ok || payload.StaffID == "" || payload.SenderID == payload.StaffID {
		return nil
	}
	messageID := payload.MessageID
	n.store(ctx, &domain.Notification{
		StaffID:   payload.StaffID,
		Type:      domain.NotificationNewMessage,
		Title:     "New message from " + payload.SenderName,
		Message:   payload.BodyPreview,
		TicketID:  event.TicketID,
		MessageID: &messageID,
	})
	return nil
}

// store is best-effort: failures are logged and dropped.
func (n *NotificationService) store(ctx context.Context, notification *domain.Notification) {
	if err := n.notifications.Create(ctx, notification); err != nil {
		n.logger.Warn("store notification",
			zap.String("staff_id", notification.StaffID),
			zap.String("ticket_id", notification.TicketID),
			zap.String("type", string(notification.Type)),
			zap.Error(err),
		)
	}
}

func (n *NotificationService) forward(_ context.Context, event events.Event) error {
	n.forwarder.Forward(event)
	return nil
}

// ListNotifications returns the caller's notifications, newest first.
func (n *NotificationService) ListNotifications(ctx context.Context, actor *domain.User, unreadOnly bool) ([]domain.Notification, error) {
	if actor == nil {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	items, err := n.notifications.ListByStaff(ctx, actor.ID, unreadOnly)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return items, nil
}

// MarkRead acknowledges one of the caller's notifications.
func (n *NotificationService) MarkRead(ctx context.Context, actor *domain.User, id string) error {
	if actor == nil {
		return apperrors.NewUnauthorized("authentication required")
	}
	if err := n.notifications.MarkRead(ctx, id, actor.ID); err != nil {
		return notFoundOr(err, "notification", map[string]any{"notification_id": id})
	}
	return nil
}
