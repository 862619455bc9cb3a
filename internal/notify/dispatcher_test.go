package notify

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/konelease/leasing-workflow/internal/model"
)

type memorySink struct {
	mu      sync.Mutex
	created []model.Notification
}

func (s *memorySink) Create(_ context.Context, n model.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.created = append(s.created, n)
	return nil
}

func (s *memorySink) all() []model.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Notification(nil), s.created...)
}

func TestDispatcherDelivers(t *testing.T) {
	sink := &memorySink{}
	d := NewDispatcher(sink, 8, time.Second, zerolog.Nop())

	appID := uuid.New()
	customerID := uuid.New()
	d.Notify(model.RoleFinancier, uuid.Nil, appID, model.NotificationApplicationSubmitted, "Application LEA-2026-00001 has been submitted for review")
	d.Notify(model.RoleCustomer, customerID, appID, model.NotificationOfferSent, "You have received an offer for application LEA-2026-00001")
	d.Close()

	created := sink.all()
	require.Len(t, created, 2)
	assert.Equal(t, model.RoleFinancier, created[0].RecipientRole)
	assert.Equal(t, uuid.Nil, created[0].RecipientUserID)
	assert.Equal(t, model.NotificationApplicationSubmitted, created[0].Kind)
	assert.Equal(t, appID, created[0].ApplicationID)
	assert.NotEqual(t, uuid.Nil, created[0].ID)
	assert.Equal(t, model.NotificationOfferSent, created[1].Kind)
	assert.Equal(t, customerID, created[1].RecipientUserID)
}

func TestDispatcherDropsWhenQueueFull(t *testing.T) {
	sink := &memorySink{}
	d := &Dispatcher{
		sink:    sink,
		queue:   make(chan model.Notification, 1),
		timeout: time.Second,
		log:     zerolog.Nop(),
		done:    make(chan struct{}),
	}
	// No worker running, the queue fills immediately.
	d.Notify(model.RoleFinancier, uuid.Nil, uuid.New(), model.NotificationOfferAccepted, "a")
	d.Notify(model.RoleFinancier, uuid.Nil, uuid.New(), model.NotificationOfferAccepted, "b")
	assert.Len(t, d.queue, 1)

	go d.run()
	d.Close()
	assert.Len(t, sink.all(), 1)
}

func TestDispatcherCloseIsIdempotent(t *testing.T) {
	d := NewDispatcher(&memorySink{}, 1, time.Second, zerolog.Nop())
	d.Close()
	d.Close()
}
