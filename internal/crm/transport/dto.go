// Package transport defines the request and response shapes of the CRM HTTP
// surface, decoupled from both storage and presentation.
package transport

import (
	"time"

	"salescrm_backend/internal/crm/domain"

	"github.com/google/uuid"
)

// =============================================================================
// Requests
// =============================================================================

type CreateClientRequest struct {
	Name       string       `json:"name" validate:"required,min=2,max=120"`
	Phone      string       `json:"phone" validate:"required,min=5,max=32"`
	Email      string       `json:"email" validate:"omitempty,email"`
	Address    string       `json:"address" validate:"max=300"`
	Instagram  string       `json:"instagram" validate:"max=120"`
	MapsLink   string       `json:"mapsLink" validate:"omitempty,url"`
	Province   string       `json:"province" validate:"required,max=80"`
	BrandID    uuid.UUID    `json:"brandId" validate:"required"`
	AssignedTo OptionalUUID `json:"assignedTo"`
}

// UpdateClientRequest is a field patch. Absent keys leave fields untouched;
// explicit nulls clear them.
type UpdateClientRequest struct {
	Name      OptionalString `json:"name"`
	Phone     OptionalString `json:"phone"`
	Email     OptionalString `json:"email"`
	Address   OptionalString `json:"address"`
	Instagram OptionalString `json:"instagram"`
	MapsLink  OptionalString `json:"mapsLink"`
	Province  OptionalString `json:"province"`
	BrandID   OptionalUUID   `json:"brandId"`
}

type TransitionRequest struct {
	Status     string `json:"status" validate:"required"`
	LossReason string `json:"lossReason"`
	LossNote   string `json:"lossNote" validate:"max=500"`
}

type AssignRequest struct {
	RepID uuid.UUID `json:"repId" validate:"required"`
}

type BulkAssignRequest struct {
	ClientIDs []uuid.UUID `json:"clientIds" validate:"required,min=1,dive,required"`
	RepID     uuid.UUID   `json:"repId" validate:"required"`
}

type AutoAssignRequest struct {
	ClientIDs []uuid.UUID `json:"clientIds" validate:"required,min=1,dive,required"`
}

type ScheduleFollowUpRequest struct {
	FollowUpAt time.Time `json:"followUpAt" validate:"required"`
	Note       string    `json:"note" validate:"max=500"`
}

type CompleteTaskRequest struct {
	Outcome  string     `json:"outcome" validate:"required"`
	Note     string     `json:"note" validate:"max=500"`
	NextDate *time.Time `json:"nextDate"`
}

type QuickCallRequest struct {
	Description string `json:"description" validate:"max=500"`
}

type LogActivityRequest struct {
	Type        string `json:"type" validate:"required"`
	Description string `json:"description" validate:"required,max=1000"`
}

type UpsertTargetRequest struct {
	MemberID     uuid.UUID `json:"memberId" validate:"required"`
	Month        int       `json:"month" validate:"required,min=1,max=12"`
	Year         int       `json:"year" validate:"required,min=2000,max=2100"`
	DealsTarget  int       `json:"dealsTarget" validate:"min=0"`
	VisitsTarget int       `json:"visitsTarget" validate:"min=0"`
}

type ListClientsQuery struct {
	Status   string `form:"status"`
	Province string `form:"province"`
	RepID    string `form:"repId"`
	Search   string `form:"search"`
	Page     int    `form:"page,default=1"`
	PageSize int    `form:"pageSize,default=20"`
}

// =============================================================================
// Responses
// =============================================================================

type ClientResponse struct {
	ID                uuid.UUID  `json:"id"`
	Name              string     `json:"name"`
	Phone             string     `json:"phone"`
	Email             string     `json:"email,omitempty"`
	Address           string     `json:"address,omitempty"`
	Instagram         string     `json:"instagram,omitempty"`
	MapsLink          string     `json:"mapsLink,omitempty"`
	Status            string     `json:"status"`
	Bucket            string     `json:"bucket"`
	AssignedTo        *uuid.UUID `json:"assignedTo,omitempty"`
	Province          string     `json:"province"`
	BrandID           uuid.UUID  `json:"brandId"`
	DealValue         *float64   `json:"dealValue,omitempty"`
	LastInteractionAt *time.Time `json:"lastInteractionAt,omitempty"`
	DaysSinceContact  int        `json:"daysSinceContact"`
	FollowUpAt        *time.Time `json:"followUpAt,omitempty"`
	FollowUpNote      string     `json:"followUpNote,omitempty"`
	Overdue           bool       `json:"overdue"`
	DueToday          bool       `json:"dueToday"`
	LossReason        string     `json:"lossReason,omitempty"`
	LossNote          string     `json:"lossNote,omitempty"`
	CreatedAt         time.Time  `json:"createdAt"`
}

type RepResponse struct {
	ID               uuid.UUID   `json:"id"`
	Name             string      `json:"name"`
	Email            string      `json:"email,omitempty"`
	Role             string      `json:"role"`
	Status           string      `json:"status"`
	AllowedProvinces []string    `json:"allowedProvinces"`
	AllowedBrands    []uuid.UUID `json:"allowedBrands"`
	OpenLeads        int         `json:"openLeads"`
}

type ActivityResponse struct {
	ID          uuid.UUID `json:"id"`
	ClientID    uuid.UUID `json:"clientId"`
	Type        string    `json:"type"`
	Timestamp   time.Time `json:"timestamp"`
	Description string    `json:"description"`
	ActorID     uuid.UUID `json:"actorId"`
	ActorName   string    `json:"actorName,omitempty"`
}

type TargetResponse struct {
	MemberID     uuid.UUID `json:"memberId"`
	Month        int       `json:"month"`
	Year         int       `json:"year"`
	DealsTarget  int       `json:"dealsTarget"`
	VisitsTarget int       `json:"visitsTarget"`
}

type PipelineSummaryResponse struct {
	Buckets map[string]int `json:"buckets"`
	Total   int            `json:"total"`
}

type RepLoadResponse struct {
	RepID     uuid.UUID `json:"repId"`
	Name      string    `json:"name"`
	OpenLeads int       `json:"openLeads"`
}

type AssignmentResultResponse struct {
	Assigned []AssignmentEntry `json:"assigned"`
	Skipped  []SkippedEntry    `json:"skipped,omitempty"`
}

type AssignmentEntry struct {
	ClientID uuid.UUID `json:"clientId"`
	RepID    uuid.UUID `json:"repId"`
}

type SkippedEntry struct {
	ClientID uuid.UUID `json:"clientId"`
	Reason   string    `json:"reason"`
}

// =============================================================================
// Mappers
// =============================================================================

// ToClientResponse projects a cached client for display, layering the pure
// derived fields (bucket, contact recency, due flags) over stored state.
func ToClientResponse(c domain.Client, now time.Time) ClientResponse {
	return ClientResponse{
		ID:                c.ID,
		Name:              c.Name,
		Phone:             c.Phone,
		Email:             c.Email,
		Address:           c.Address,
		Instagram:         c.Instagram,
		MapsLink:          c.MapsLink,
		Status:            string(c.Status),
		Bucket:            string(domain.PipelineBucket(c)),
		AssignedTo:        c.AssignedTo,
		Province:          c.Province,
		BrandID:           c.BrandID,
		DealValue:         c.DealValue,
		LastInteractionAt: c.LastInteractionAt,
		DaysSinceContact:  domain.DaysSinceContact(c, now),
		FollowUpAt:        c.FollowUpAt,
		FollowUpNote:      c.FollowUpNote,
		Overdue:           domain.Overdue(c, now),
		DueToday:          domain.DueToday(c, now),
		LossReason:        string(c.LossReason),
		LossNote:          c.LossNote,
		CreatedAt:         c.CreatedAt,
	}
}

// ToClientResponses maps a page of clients.
func ToClientResponses(clients []domain.Client, now time.Time) []ClientResponse {
	out := make([]ClientResponse, 0, len(clients))
	for _, c := range clients {
		out = append(out, ToClientResponse(c, now))
	}
	return out
}

// ToRepResponse projects a representative with their current open-lead load.
func ToRepResponse(r domain.Representative, openLeads int) RepResponse {
	return RepResponse{
		ID:               r.ID,
		Name:             r.Name,
		Email:            r.Email,
		Role:             string(r.Role),
		Status:           string(r.Status),
		AllowedProvinces: r.AllowedProvinces,
		AllowedBrands:    r.AllowedBrands,
		OpenLeads:        openLeads,
	}
}

// ToActivityResponse maps an activity record.
func ToActivityResponse(a domain.Activity) ActivityResponse {
	return ActivityResponse{
		ID:          a.ID,
		ClientID:    a.ClientID,
		Type:        string(a.Type),
		Timestamp:   a.Timestamp,
		Description: a.Description,
		ActorID:     a.ActorID,
		ActorName:   a.ActorName,
	}
}

// ToTargetResponse maps a monthly target.
func ToTargetResponse(t domain.MonthlyTarget) TargetResponse {
	return TargetResponse{
		MemberID:     t.MemberID,
		Month:        t.Month,
		Year:         t.Year,
		DealsTarget:  t.DealsTarget,
		VisitsTarget: t.VisitsTarget,
	}
}
