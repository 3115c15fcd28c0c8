// Package domain provides the core business rules for the CRM bounded
// context: lead status transitions, visibility, assignment balancing,
// follow-up scheduling and contact recency. Everything here is pure; state
// lives in the entity store.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Status is a lead's pipeline stage.
type Status string

const (
	StatusNew        Status = "new"
	StatusQualifying Status = "qualifying"
	StatusProposal   Status = "proposal"
	StatusWon        Status = "won"
	StatusLost       Status = "lost"
)

// LossReason categorizes why a lead was lost. Free-form context goes into
// the lead's LossNote instead.
type LossReason string

const (
	LossReasonPrice      LossReason = "price"
	LossReasonCompetitor LossReason = "competitor"
	LossReasonTiming     LossReason = "timing"
	LossReasonFeatures   LossReason = "features"
	LossReasonOther      LossReason = "other"
)

// Role is an actor's authorization level.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleRep   Role = "rep"
)

// RepStatus marks whether a representative takes part in assignment.
type RepStatus string

const (
	RepStatusActive   RepStatus = "active"
	RepStatusInactive RepStatus = "inactive"
)

// ActivityType classifies an interaction history entry.
type ActivityType string

const (
	ActivityCall       ActivityType = "call"
	ActivityVisit      ActivityType = "visit"
	ActivityNote       ActivityType = "note"
	ActivityEmail      ActivityType = "email"
	ActivityAssignment ActivityType = "assignment"
	ActivityReminder   ActivityType = "reminder"
)

// Client is a lead tracked through the sales pipeline.
type Client struct {
	ID                uuid.UUID
	Name              string
	Phone             string
	Email             string
	Address           string
	Instagram         string
	MapsLink          string
	Status            Status
	AssignedTo        *uuid.UUID
	Province          string
	BrandID           uuid.UUID
	DealValue         *float64
	LastInteractionAt *time.Time
	FollowUpAt        *time.Time
	FollowUpNote      string
	LossReason        LossReason
	LossNote          string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// EntityID implements store.Entity.
func (c Client) EntityID() uuid.UUID { return c.ID }

// Representative is a sales rep with territory-restricted rights.
type Representative struct {
	ID               uuid.UUID
	Name             string
	Email            string
	Role             Role
	Status           RepStatus
	AllowedProvinces []string
	AllowedBrands    []uuid.UUID
	CreatedAt        time.Time
}

// EntityID implements store.Entity.
func (r Representative) EntityID() uuid.UUID { return r.ID }

// Activity is an append-only interaction record. Immutable once created.
type Activity struct {
	ID          uuid.UUID
	ClientID    uuid.UUID
	Type        ActivityType
	Timestamp   time.Time
	Description string
	ActorID     uuid.UUID
	ActorName   string
}

// EntityID implements store.Entity.
func (a Activity) EntityID() uuid.UUID { return a.ID }

// MonthlyTarget holds one member's quota for a given month. The
// (MemberID, Month, Year) triple is unique.
type MonthlyTarget struct {
	ID           uuid.UUID
	MemberID     uuid.UUID
	Month        int
	Year         int
	DealsTarget  int
	VisitsTarget int
}

// EntityID implements store.Entity.
func (t MonthlyTarget) EntityID() uuid.UUID { return t.ID }

// Brand is a catalog read model; its price seeds the deal-value snapshot
// when a lead is won. Catalog CRUD is owned elsewhere.
type Brand struct {
	ID    uuid.UUID
	Name  string
	Price float64
}

// Actor is the authenticated identity acting on the system, supplied by the
// external identity provider.
type Actor struct {
	ID               uuid.UUID
	Name             string
	Role             Role
	AllowedProvinces []string
	AllowedBrands    []uuid.UUID
}
