// Package notify delivers workflow side effects after the owning transition
// committed. Delivery is asynchronous and at-least-once; a failed or dropped
// delivery never propagates back to the command that caused it.
package notify

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/konelease/leasing-workflow/internal/model"
)

// Sink is where deliveries land. The repository-backed sink records them as
// in-app notifications; an email or SMS gateway satisfies the same contract.
type Sink interface {
	Create(ctx context.Context, n model.Notification) error
}

type Dispatcher struct {
	sink    Sink
	queue   chan model.Notification
	timeout time.Duration
	log     zerolog.Logger

	closeOnce sync.Once
	done      chan struct{}
}

func NewDispatcher(sink Sink, queueSize int, timeout time.Duration, log zerolog.Logger) *Dispatcher {
	d := &Dispatcher{
		sink:    sink,
		queue:   make(chan model.Notification, queueSize),
		timeout: timeout,
		log:     log,
		done:    make(chan struct{}),
	}
	go d.run()
	return d
}

// Notify enqueues a delivery and returns immediately. A full queue drops the
// notification with a log line; the transition it belongs to has already
// committed and must not be held up.
func (d *Dispatcher) Notify(recipient model.Role, recipientUserID, applicationID uuid.UUID, kind model.NotificationKind, message string) {
	n := model.Notification{
		ID:              uuid.New(),
		RecipientRole:   recipient,
		RecipientUserID: recipientUserID,
		ApplicationID:   applicationID,
		Kind:            kind,
		Message:         message,
		CreatedAt:       time.Now(),
	}
	select {
	case d.queue <- n:
	default:
		d.log.Warn().
			Str("kind", string(kind)).
			Str("application_id", applicationID.String()).
			Msg("notification queue full, dropping delivery")
	}
}

func (d *Dispatcher) run() {
	defer close(d.done)
	for n := range d.queue {
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		if err := d.sink.Create(ctx, n); err != nil {
			d.log.Error().Err(err).
				Str("kind", string(n.Kind)).
				Str("application_id", n.ApplicationID.String()).
				Msg("notification delivery failed")
		}
		cancel()
	}
}

// Close drains the queue and stops the worker.
func (d *Dispatcher) Close() {
	d.closeOnce.Do(func() {
		close(d.queue)
	})
	<-d.done
}
