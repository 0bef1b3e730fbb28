package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/events"
)

// FiberWebhookSender posts events as JSON using fiber's HTTP client.
type FiberWebhookSender struct {
	url     string
	timeout time.Duration
}

// NewFiberWebhookSender targets url; a non-positive timeout defaults to 3s.
func NewFiberWebhookSender(url string, timeout time.Duration) *FiberWebhookSender {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &FiberWebhookSender{url: url, timeout: timeout}
}

// Send implements Sender. Any non-2xx response is an error.
func (s *FiberWebhookSender) Send(ctx context.Context, event events.Event) error {
	timeout := s.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}

	agent := fiber.Post(s.url).
		JSON(event).
		Timeout(timeout)
	agent.Set("X-Helpdesk-Event", string(event.Type))

	code, _, errs := agent.Bytes()
	if len(errs) > 0 {
		return fmt.Errorf("post webhook: %w", errs[0])
	}
	if code < fiber.StatusOK || code >= fiber.StatusMultipleChoices {
		return fmt.Errorf("webhook responded %d", code)
	}
	return nil
}
