package service

import (
	"context"
	"strings"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

// MessageService manages ticket threads.
type MessageService struct {
	tickets    repository.TicketRepository
	messages   repository.MessageRepository
	dispatcher events.Dispatcher
}

// MessageDependencies bundles collaborators.
type MessageDependencies struct {
	TicketRepo  repository.TicketRepository
	MessageRepo repository.MessageRepository
	Dispatcher  events.Dispatcher
}

// NewMessageService constructs the service.
func NewMessageService(deps MessageDependencies) *MessageService {
	return &MessageService{
		tickets:    deps.TicketRepo,
		messages:   deps.MessageRepo,
		dispatcher: deps.Dispatcher,
	}
}

// ListMessages returns a ticket thread in timestamp order.
func (s *MessageService) ListMessages(ctx context.Context, actor *domain.User, ticketID string) ([]domain.Message, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, notFoundOr(err, "ticket", map[string]any{"ticket_id": ticketID})
	}
	if !canView(actor, ticket) {
		return nil, apperrors.NewForbidden("access denied")
	}
	msgs, err := s.messages.ListByTicket(ctx, ticketID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return msgs, nil
}

// PostMessage appends a message from the caller. The notification for the
// assigned staff member is produced by an event handler and cannot fail
// the post.
func (s *MessageService) PostMessage(ctx context.Context, actor *domain.User, ticketID, body string) (*domain.Message, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, apperrors.NewValidationError("message is required", map[string]any{"field": "message"})
	}
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, notFoundOr(err, "ticket", map[string]any{"ticket_id": ticketID})
	}
	if !canView(actor, ticket) {
		return nil, apperrors.NewForbidden("access denied")
	}

	receiver := ticket.UserID
	if actor.ID == ticket.UserID {
		receiver = ticket.AssignedStaffID
	}
	msg := &domain.Message{
		TicketID:   ticket.ID,
		SenderID:   actor.ID,
		SenderName: actor.Name,
		ReceiverID: receiver,
		StaffID:    ticket.AssignedStaffID,
		Body:       body,
	}
	if err := s.messages.Create(ctx, msg); err != nil {
		return nil, apperrors.MapError(err)
	}

	publishEvent(ctx, s.dispatcher, events.Event{
		Type:     events.EventMessagePosted,
		TicketID: ticket.ID,
		Actor:    actorOf(actor),
		Payload: events.MessagePostedPayload{
			MessageID:   msg.ID,
			SenderID:    msg.SenderID,
			SenderName:  msg.SenderName,
			StaffID:     msg.StaffID,
			BodyPreview: stringPreview(msg.Body, 120),
		},
	})
	return msg, nil
}
