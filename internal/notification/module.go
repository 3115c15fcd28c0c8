// Package notification turns domain events into operator-facing signals:
// follow-up due emails for reps and log alerts for persistence failures.
// It is event-driven only and exposes no HTTP routes.
package notification

import (
	"context"

	"salescrm_backend/internal/events"
	"salescrm_backend/platform/logger"

	"github.com/google/uuid"
)

// RepContactLookup resolves a representative's name and email address.
type RepContactLookup interface {
	RepContact(ctx context.Context, repID uuid.UUID) (name, email string, ok bool)
}

// Module is the notification event subscriber.
type Module struct {
	sender Sender
	reps   RepContactLookup
	log    *logger.Logger
}

// New creates the notification module. reps may be nil; due notifications
// then only reach the log.
func New(sender Sender, reps RepContactLookup, log *logger.Logger) *Module {
	return &Module{sender: sender, reps: reps, log: log}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "notification"
}

// RegisterHandlers subscribes to the domain events this module reacts to.
func (m *Module) RegisterHandlers(bus events.Bus) {
	bus.Subscribe(events.FollowUpDue{}.EventName(), events.HandlerFunc(m.onFollowUpDue))
	bus.Subscribe(events.RemoteSyncFailed{}.EventName(), events.HandlerFunc(m.onRemoteSyncFailed))
}

func (m *Module) onFollowUpDue(ctx context.Context, event events.Event) error {
	e, ok := event.(events.FollowUpDue)
	if !ok {
		return nil
	}

	m.log.Info("follow-up due", "clientId", e.ClientID, "client", e.ClientName, "dueAt", e.FollowUpAt)

	if e.AssignedTo == nil || m.reps == nil {
		return nil
	}

	name, email, found := m.reps.RepContact(ctx, *e.AssignedTo)
	if !found || email == "" {
		return nil
	}

	if err := m.sender.SendFollowUpDueEmail(ctx, email, name, e.ClientName, e.Note, e.FollowUpAt); err != nil {
		m.log.Error("follow-up due email failed", "error", err, "clientId", e.ClientID, "repId", *e.AssignedTo)
	}
	return nil
}

// onRemoteSyncFailed surfaces dropped write-behind ops. The cache keeps the
// mutation; the next reconciliation pass decides whether it survives.
func (m *Module) onRemoteSyncFailed(_ context.Context, event events.Event) error {
	e, ok := event.(events.RemoteSyncFailed)
	if !ok {
		return nil
	}

	m.log.Error("remote sync permanently failed",
		"entityType", e.EntityType, "entityId", e.EntityID, "op", e.Op, "reason", e.Reason)
	return nil
}
