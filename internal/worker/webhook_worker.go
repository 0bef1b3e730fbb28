// Package worker runs background delivery of ticket events.
package worker

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/events"
)

// Sender delivers one event to an external endpoint.
type Sender interface {
	Send(ctx context.Context, event events.Event) error
}

// WebhookWorker queues events and delivers them from a fixed pool of
// goroutines. Events are dropped with a warning when the queue is full.
type WebhookWorker struct {
	sender Sender
	queue  chan events.Event
	logger *zap.Logger
	wg     sync.WaitGroup
	once   sync.Once
}

// NewWebhookWorker builds a worker with a queue of size entries.
func NewWebhookWorker(sender Sender, size int, logger *zap.Logger) *WebhookWorker {
	if size <= 0 {
		size = 256
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WebhookWorker{
		sender: sender,
		queue:  make(chan events.Event, size),
		logger: logger,
	}
}

// Start launches workers goroutines. They exit once Stop drains the queue.
func (w *WebhookWorker) Start(ctx context.Context, workers int) {
	if workers <= 0 {
		workers = 1
	}
	for i := 0; i < workers; i++ {
		w.wg.Add(1)
		go func() {
			defer w.wg.Done()
			for event := range w.queue {
				if err := w.sender.Send(ctx, event); err != nil {
					w.logger.Warn("webhook delivery failed",
						zap.String("event", string(event.Type)),
						zap.String("ticket_id", event.TicketID),
						zap.Error(err),
					)
				}
			}
		}()
	}
}

// Forward enqueues event without blocking.
func (w *WebhookWorker) Forward(event events.Event) {
	select {
	case w.queue <- event:
	default:
		w.logger.Warn("webhook queue full; dropping event",
			zap.String("event", string(event.Type)),
			zap.String("ticket_id", event.TicketID),
		)
	}
}

// Stop closes the queue and waits for in-flight deliveries.
func (w *WebhookWorker) Stop() {
	w.once.Do(func() { close(w.queue) })
	w.wg.Wait()
}
