// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"time"

	"salescrm_backend/platform/events"
	"salescrm_backend/platform/logger"

	"github.com/google/uuid"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
)

// Re-export platform functions
var NewBaseEvent = events.NewBaseEvent

// NewInMemoryBus creates a new in-memory event bus.
// This is a convenience re-export from platform/events.
func NewInMemoryBus(log *logger.Logger) *events.InMemoryBus {
	return events.NewInMemoryBus(log)
}

// =============================================================================
// Lead Lifecycle Events
// =============================================================================

// LeadCreated is published when a new lead enters the pipeline.
type LeadCreated struct {
	BaseEvent
	ClientID   uuid.UUID  `json:"clientId"`
	Name       string     `json:"name"`
	Province   string     `json:"province"`
	BrandID    uuid.UUID  `json:"brandId"`
	AssignedTo *uuid.UUID `json:"assignedTo,omitempty"`
}

func (e LeadCreated) EventName() string { return "crm.lead.created" }

// LeadStatusChanged is published after a successful status transition.
type LeadStatusChanged struct {
	BaseEvent
	ClientID   uuid.UUID `json:"clientId"`
	From       string    `json:"from"`
	To         string    `json:"to"`
	LossReason string    `json:"lossReason,omitempty"`
	DealValue  *float64  `json:"dealValue,omitempty"`
	ActorID    uuid.UUID `json:"actorId"`
}

func (e LeadStatusChanged) EventName() string { return "crm.lead.status_changed" }

// LeadAssigned is published for each single assignment, including every
// member of a bulk or auto-assign batch.
type LeadAssigned struct {
	BaseEvent
	ClientID uuid.UUID `json:"clientId"`
	RepID    uuid.UUID `json:"repId"`
	ActorID  uuid.UUID `json:"actorId"`
	Auto     bool      `json:"auto"`
}

func (e LeadAssigned) EventName() string { return "crm.lead.assigned" }

// FollowUpScheduled is published when a lead's follow-up is set or replaced.
type FollowUpScheduled struct {
	BaseEvent
	ClientID   uuid.UUID `json:"clientId"`
	FollowUpAt time.Time `json:"followUpAt"`
	Note       string    `json:"note,omitempty"`
}

func (e FollowUpScheduled) EventName() string { return "crm.followup.scheduled" }

// FollowUpDue is published by the reminder worker when a scheduled follow-up
// comes due. The notification module turns it into an email.
type FollowUpDue struct {
	BaseEvent
	ClientID   uuid.UUID  `json:"clientId"`
	ClientName string     `json:"clientName"`
	FollowUpAt time.Time  `json:"followUpAt"`
	Note       string     `json:"note,omitempty"`
	AssignedTo *uuid.UUID `json:"assignedTo,omitempty"`
}

func (e FollowUpDue) EventName() string { return "crm.followup.due" }

// =============================================================================
// Store Events
// =============================================================================

// RemoteSyncFailed is published when a write-behind persistence op has
// exhausted its retries. The optimistic local mutation stays applied; a full
// reconciliation pass is the only repair path.
type RemoteSyncFailed struct {
	BaseEvent
	EntityType string    `json:"entityType"`
	EntityID   uuid.UUID `json:"entityId"`
	Op         string    `json:"op"`
	Reason     string    `json:"reason"`
}

func (e RemoteSyncFailed) EventName() string { return "crm.store.sync_failed" }
