package reminders

import (
	"context"
	"testing"
	"time"

	"salescrm_backend/internal/crm/domain"
	"salescrm_backend/internal/events"
	"salescrm_backend/platform/logger"

	"github.com/google/uuid"
)

type fakeLeadLookup struct {
	clients map[uuid.UUID]domain.Client
}

func (f *fakeLeadLookup) GetByID(_ context.Context, id uuid.UUID) (domain.Client, bool, error) {
	c, ok := f.clients[id]
	return c, ok, nil
}

type capturingBus struct {
	published []events.Event
}

func (b *capturingBus) Publish(_ context.Context, e events.Event) {
	b.published = append(b.published, e)
}

func (b *capturingBus) PublishSync(_ context.Context, e events.Event) error {
	b.published = append(b.published, e)
	return nil
}

func (b *capturingBus) Subscribe(string, events.Handler) {}

func newTestWorker(leads LeadLookup, bus events.Bus) *Worker {
	return &Worker{
		leads: leads,
		bus:   bus,
		log:   logger.New("development"),
	}
}

func TestHandleFollowUpDuePublishesWhenCurrent(t *testing.T) {
	dueAt := time.Date(2024, time.June, 10, 9, 0, 0, 0, time.UTC)
	repID := uuid.New()
	lead := domain.Client{
		ID:           uuid.New(),
		Name:         "Hadi Motors",
		AssignedTo:   &repID,
		FollowUpAt:   &dueAt,
		FollowUpNote: "send revised offer",
	}

	bus := &capturingBus{}
	w := newTestWorker(&fakeLeadLookup{clients: map[uuid.UUID]domain.Client{lead.ID: lead}}, bus)

	task, err := NewFollowUpDueTask(FollowUpDuePayload{ClientID: lead.ID.String(), FollowUpAt: dueAt})
	if err != nil {
		t.Fatal(err)
	}
	if err := w.handleFollowUpDue(context.Background(), task); err != nil {
		t.Fatalf("handleFollowUpDue returned error: %v", err)
	}

	if len(bus.published) != 1 {
		t.Fatalf("published %d events, want 1", len(bus.published))
	}
	due, ok := bus.published[0].(events.FollowUpDue)
	if !ok {
		t.Fatalf("unexpected event %T", bus.published[0])
	}
	if due.ClientID != lead.ID || due.ClientName != lead.Name || due.Note != lead.FollowUpNote {
		t.Errorf("event = %+v", due)
	}
	if due.AssignedTo == nil || *due.AssignedTo != repID {
		t.Errorf("assignedTo = %v, want %s", due.AssignedTo, repID)
	}
}

func TestHandleFollowUpDueDropsStaleReminders(t *testing.T) {
	enqueuedAt := time.Date(2024, time.June, 10, 9, 0, 0, 0, time.UTC)
	rescheduledAt := enqueuedAt.AddDate(0, 0, 3)
	leadID := uuid.New()

	tests := []struct {
		name string
		lead *domain.Client
	}{
		{
			name: "lead deleted",
			lead: nil,
		},
		{
			name: "follow-up cleared",
			lead: &domain.Client{ID: leadID, Name: "Noor Trading"},
		},
		{
			name: "follow-up rescheduled",
			lead: &domain.Client{ID: leadID, Name: "Noor Trading", FollowUpAt: &rescheduledAt},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			lookup := &fakeLeadLookup{clients: map[uuid.UUID]domain.Client{}}
			if tc.lead != nil {
				lookup.clients[tc.lead.ID] = *tc.lead
			}
			bus := &capturingBus{}
			w := newTestWorker(lookup, bus)

			task, err := NewFollowUpDueTask(FollowUpDuePayload{ClientID: leadID.String(), FollowUpAt: enqueuedAt})
			if err != nil {
				t.Fatal(err)
			}
			if err := w.handleFollowUpDue(context.Background(), task); err != nil {
				t.Fatalf("stale reminder should be dropped silently, got error: %v", err)
			}
			if len(bus.published) != 0 {
				t.Errorf("stale reminder published %d events, want 0", len(bus.published))
			}
		})
	}
}

func TestHandleFollowUpDueRejectsBadPayload(t *testing.T) {
	w := newTestWorker(&fakeLeadLookup{}, &capturingBus{})

	task, err := NewFollowUpDueTask(FollowUpDuePayload{ClientID: "not-a-uuid", FollowUpAt: time.Now()})
	if err != nil {
		t.Fatal(err)
	}
	if err := w.handleFollowUpDue(context.Background(), task); err == nil {
		t.Error("malformed client id should fail the task")
	}
}
