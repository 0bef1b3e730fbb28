package service

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

// notFoundOr maps a store miss to a NOT_FOUND error for resource and any
// other failure through MapError.
func notFoundOr(err error, resource string, details map[string]any) error {
	if apperrors.IsNotFound(err) {
		return apperrors.NewNotFound(resource, details)
	}
	return apperrors.MapError(err)
}

func publishEvent(ctx context.Context, dispatcher events.Dispatcher, event events.Event) {
	if dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	_ = dispatcher.Publish(ctx, event)
}

func actorOf(user *domain.User) events.Actor {
	if user == nil {
		return events.Actor{}
	}
	return events.Actor{UserID: user.ID, Role: user.Role}
}

// stringPreview shortens body to at most max bytes without splitting a
// UTF-8 sequence.
func stringPreview(body string, max int) string {
	body = strings.TrimSpace(body)
	if len(body) <= max {
		return body
	}
	suffix := "..."
	if max <= len(suffix) {
		suffix = ""
	}
	budget := max - len(suffix)
	cut := 0
	for cut < len(body) {
		_, size := utf8.DecodeRuneInString(body[cut:])
		if cut+size > budget {
			break
		}
		cut += size
	}
	return body[:cut] + suffix
}

func requireAdmin(actor *domain.User) error {
	if actor == nil {
		return apperrors.NewUnauthorized("authentication required")
	}
	if !actor.Role.Is(domain.RoleAdmin) {
		return apperrors.NewForbidden("admin role required")
	}
	return nil
}
