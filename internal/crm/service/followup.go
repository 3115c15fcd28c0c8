package service

import (
	"context"
	"fmt"

	"salescrm_backend/internal/crm/domain"
	"salescrm_backend/internal/crm/transport"
	"salescrm_backend/internal/events"
	"salescrm_backend/platform/apperr"

	"github.com/google/uuid"
)

// ScheduleFollowUp sets or replaces a lead's single outstanding follow-up.
func (s *Service) ScheduleFollowUp(ctx context.Context, actor domain.Actor, id uuid.UUID, req transport.ScheduleFollowUpRequest) (transport.ClientResponse, error) {
	current, ok := s.clients.Get(id)
	if !ok || !domain.CanMutate(actor, current) {
		return transport.ClientResponse{}, apperr.NotFound("client not found")
	}
	if domain.IsTerminal(current.Status) {
		return transport.ClientResponse{}, apperr.Validation("status", "cannot schedule a follow-up on a closed lead")
	}

	updated, _ := s.clients.Update(id, func(c domain.Client) domain.Client {
		at := req.FollowUpAt
		c.FollowUpAt = &at
		c.FollowUpNote = req.Note
		c.UpdatedAt = s.now()
		return c
	}, map[string]any{
		"follow_up_at":   req.FollowUpAt,
		"follow_up_note": req.Note,
	})

	s.publishFollowUpScheduled(ctx, id, req)
	return transport.ToClientResponse(updated, s.now()), nil
}

// CompleteFollowUpTask runs the task-completion workflow: clear the current
// follow-up, then depending on the outcome open the next one in the same
// mutation or mark the lead lost.
func (s *Service) CompleteFollowUpTask(ctx context.Context, actor domain.Actor, id uuid.UUID, req transport.CompleteTaskRequest) (transport.ClientResponse, error) {
	current, ok := s.clients.Get(id)
	if !ok || !domain.CanMutate(actor, current) {
		return transport.ClientResponse{}, apperr.NotFound("client not found")
	}

	outcome := domain.TaskOutcome(req.Outcome)
	next, err := domain.CompleteTask(current, outcome, req.Note, req.NextDate)
	if err != nil {
		return transport.ClientResponse{}, err
	}

	patch := map[string]any{
		"follow_up_at":   next.FollowUpAt,
		"follow_up_note": next.FollowUpNote,
	}
	if next.Status != current.Status {
		patch["status"] = string(next.Status)
		patch["loss_reason"] = nullableString(string(next.LossReason))
		patch["loss_note"] = next.LossNote
	}

	updated, _ := s.clients.Update(id, func(c domain.Client) domain.Client {
		c.FollowUpAt = next.FollowUpAt
		c.FollowUpNote = next.FollowUpNote
		c.Status = next.Status
		c.LossReason = next.LossReason
		c.LossNote = next.LossNote
		c.UpdatedAt = s.now()
		return c
	}, patch)

	s.appendActivity(domain.Activity{
		ID:          uuid.New(),
		ClientID:    id,
		Type:        domain.ActivityReminder,
		Timestamp:   s.now(),
		Description: fmt.Sprintf("Follow-up completed (%s)", outcome),
		ActorID:     actor.ID,
		ActorName:   actor.Name,
	})

	if next.Status != current.Status {
		s.bus.Publish(ctx, events.LeadStatusChanged{
			BaseEvent:  events.NewBaseEvent(),
			ClientID:   id,
			From:       string(current.Status),
			To:         string(next.Status),
			LossReason: string(next.LossReason),
			ActorID:    actor.ID,
		})
	}
	if next.FollowUpAt != nil {
		s.publishFollowUpScheduled(ctx, id, transport.ScheduleFollowUpRequest{
			FollowUpAt: *next.FollowUpAt,
			Note:       next.FollowUpNote,
		})
	}

	return transport.ToClientResponse(updated, s.now()), nil
}

// DueFollowUps returns the actor-visible leads due for contact, split into
// overdue and due-today sets.
type DueFollowUps struct {
	Overdue  []transport.ClientResponse `json:"overdue"`
	DueToday []transport.ClientResponse `json:"dueToday"`
}

// ListDueFollowUps computes the due sets against today's date.
func (s *Service) ListDueFollowUps(actor domain.Actor) DueFollowUps {
	today := s.now()
	out := DueFollowUps{
		Overdue:  []transport.ClientResponse{},
		DueToday: []transport.ClientResponse{},
	}

	for _, c := range s.actorView(actor) {
		switch {
		case domain.Overdue(c, today):
			out.Overdue = append(out.Overdue, transport.ToClientResponse(c, today))
		case domain.DueToday(c, today):
			out.DueToday = append(out.DueToday, transport.ToClientResponse(c, today))
		}
	}
	return out
}

func (s *Service) publishFollowUpScheduled(ctx context.Context, id uuid.UUID, req transport.ScheduleFollowUpRequest) {
	s.bus.Publish(ctx, events.FollowUpScheduled{
		BaseEvent:  events.NewBaseEvent(),
		ClientID:   id,
		FollowUpAt: req.FollowUpAt,
		Note:       req.Note,
	})

	if s.reminders != nil {
		if err := s.reminders.ScheduleFollowUp(ctx, id, req.FollowUpAt); err != nil {
			s.log.Error("failed to schedule follow-up reminder", "clientId", id, "error", err)
		}
	}
}
