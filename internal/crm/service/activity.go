package service

import (
	"context"

	"salescrm_backend/internal/crm/domain"
	"salescrm_backend/internal/crm/transport"
	"salescrm_backend/platform/apperr"

	"github.com/google/uuid"
)

// LogActivity appends an immutable interaction record. Logging does not
// refresh the lead's contact recency; only lead creation and QuickCall set
// LastInteractionAt.
func (s *Service) LogActivity(_ context.Context, actor domain.Actor, clientID uuid.UUID, req transport.LogActivityRequest) (transport.ActivityResponse, error) {
	c, ok := s.clients.Get(clientID)
	if !ok || !domain.CanView(actor, c) {
		return transport.ActivityResponse{}, apperr.NotFound("client not found")
	}

	typ := domain.ActivityType(req.Type)
	if !domain.IsKnownActivityType(typ) {
		return transport.ActivityResponse{}, apperr.Validation("type", "unknown activity type")
	}

	a := domain.Activity{
		ID:          uuid.New(),
		ClientID:    clientID,
		Type:        typ,
		Timestamp:   s.now(),
		Description: req.Description,
		ActorID:     actor.ID,
		ActorName:   actor.Name,
	}
	s.appendActivity(a)

	return transport.ToActivityResponse(a), nil
}

// ListActivities returns a lead's interaction history, newest first.
func (s *Service) ListActivities(actor domain.Actor, clientID uuid.UUID) ([]transport.ActivityResponse, error) {
	c, ok := s.clients.Get(clientID)
	if !ok || !domain.CanView(actor, c) {
		return nil, apperr.NotFound("client not found")
	}

	items := s.activities.Where(func(a domain.Activity) bool {
		return a.ClientID == clientID
	})

	out := make([]transport.ActivityResponse, 0, len(items))
	for _, a := range items {
		out = append(out, transport.ToActivityResponse(a))
	}
	return out, nil
}

// QuickCall logs a call activity and refreshes the lead's contact recency in
// the same flow. This is the only post-creation flow that touches
// LastInteractionAt.
func (s *Service) QuickCall(_ context.Context, actor domain.Actor, clientID uuid.UUID, description string) (transport.ClientResponse, error) {
	c, ok := s.clients.Get(clientID)
	if !ok || !domain.CanMutate(actor, c) {
		return transport.ClientResponse{}, apperr.NotFound("client not found")
	}

	nowTs := s.now()
	if description == "" {
		description = "Quick call"
	}

	s.appendActivity(domain.Activity{
		ID:          uuid.New(),
		ClientID:    clientID,
		Type:        domain.ActivityCall,
		Timestamp:   nowTs,
		Description: description,
		ActorID:     actor.ID,
		ActorName:   actor.Name,
	})

	updated, _ := s.clients.Update(clientID, func(c domain.Client) domain.Client {
		at := nowTs
		c.LastInteractionAt = &at
		c.UpdatedAt = nowTs
		return c
	}, map[string]any{"last_interaction_at": nowTs})

	return transport.ToClientResponse(updated, nowTs), nil
}

// appendActivity inserts into the append-only log. There is no update or
// delete path.
func (s *Service) appendActivity(a domain.Activity) {
	s.activities.Create(a)
}
