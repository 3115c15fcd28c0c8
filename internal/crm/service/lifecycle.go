package service

import (
	"context"

	"salescrm_backend/internal/crm/domain"
	"salescrm_backend/internal/crm/transport"
	"salescrm_backend/internal/events"
	"salescrm_backend/platform/apperr"

	"github.com/google/uuid"
)

// Transition moves a lead to a new status atomically with whatever the
// target status demands: loss reason capture for lost, deal-value snapshot
// for won, loss-field clearing when leaving lost. Validation failures reject
// the command before any state change.
func (s *Service) Transition(ctx context.Context, actor domain.Actor, id uuid.UUID, req transport.TransitionRequest) (transport.ClientResponse, error) {
	current, ok := s.clients.Get(id)
	if !ok || !domain.CanMutate(actor, current) {
		return transport.ClientResponse{}, apperr.NotFound("client not found")
	}

	in := domain.TransitionInput{
		To:         domain.Status(req.Status),
		LossReason: domain.LossReason(req.LossReason),
		LossNote:   req.LossNote,
	}
	if in.To == domain.StatusWon {
		if brand, ok := s.brands[current.BrandID]; ok {
			price := brand.Price
			in.BrandPrice = &price
		}
	}

	next, err := domain.ApplyTransition(current, in)
	if err != nil {
		return transport.ClientResponse{}, err
	}

	patch := map[string]any{
		"status": string(next.Status),
	}
	if next.LossReason != current.LossReason {
		patch["loss_reason"] = nullableString(string(next.LossReason))
	}
	if next.LossNote != current.LossNote {
		patch["loss_note"] = next.LossNote
	}
	if in.To == domain.StatusWon && next.DealValue != nil {
		patch["deal_value"] = *next.DealValue
	}

	updated, _ := s.clients.Update(id, func(c domain.Client) domain.Client {
		c.Status = next.Status
		c.LossReason = next.LossReason
		c.LossNote = next.LossNote
		c.DealValue = next.DealValue
		c.UpdatedAt = s.now()
		return c
	}, patch)

	s.bus.Publish(ctx, events.LeadStatusChanged{
		BaseEvent:  events.NewBaseEvent(),
		ClientID:   id,
		From:       string(current.Status),
		To:         string(next.Status),
		LossReason: string(next.LossReason),
		DealValue:  next.DealValue,
		ActorID:    actor.ID,
	})

	return transport.ToClientResponse(updated, s.now()), nil
}

func nullableString(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}
