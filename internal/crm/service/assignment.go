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

// Assign sets a lead's representative. Admin only; no other fields change.
func (s *Service) Assign(ctx context.Context, actor domain.Actor, clientID, repID uuid.UUID) (transport.ClientResponse, error) {
	if !domain.CanAssign(actor) {
		return transport.ClientResponse{}, apperr.Forbidden("only admins may assign leads")
	}

	s.assignMu.Lock()
	defer s.assignMu.Unlock()

	updated, err := s.assignLocked(ctx, actor, clientID, repID, false)
	if err != nil {
		return transport.ClientResponse{}, err
	}
	return transport.ToClientResponse(updated, s.now()), nil
}

// BulkAssign applies Assign to each id as independent operations; one
// failure does not roll back the others. The result lists what happened to
// every candidate.
func (s *Service) BulkAssign(ctx context.Context, actor domain.Actor, req transport.BulkAssignRequest) (transport.AssignmentResultResponse, error) {
	if !domain.CanAssign(actor) {
		return transport.AssignmentResultResponse{}, apperr.Forbidden("only admins may assign leads")
	}

	s.assignMu.Lock()
	defer s.assignMu.Unlock()

	result := transport.AssignmentResultResponse{}
	for _, clientID := range req.ClientIDs {
		if _, err := s.assignLocked(ctx, actor, clientID, req.RepID, false); err != nil {
			result.Skipped = append(result.Skipped, transport.SkippedEntry{
				ClientID: clientID,
				Reason:   err.Error(),
			})
			continue
		}
		result.Assigned = append(result.Assigned, transport.AssignmentEntry{
			ClientID: clientID,
			RepID:    req.RepID,
		})
	}

	return result, nil
}

// AutoAssign distributes the candidate leads across active reps with greedy
// least-loaded balancing. The whole command runs under the assignment mutex:
// interleaving another assignment over the same pool would break leveling.
func (s *Service) AutoAssign(ctx context.Context, actor domain.Actor, req transport.AutoAssignRequest) (transport.AssignmentResultResponse, error) {
	if !domain.CanAssign(actor) {
		return transport.AssignmentResultResponse{}, apperr.Forbidden("only admins may assign leads")
	}

	s.assignMu.Lock()
	defer s.assignMu.Unlock()

	// Rep order is the store's listing order (stable by name), which fixes
	// the deterministic tie-break.
	reps := s.reps.Where(func(r domain.Representative) bool {
		return r.Status == domain.RepStatusActive
	})
	if len(reps) == 0 {
		return transport.AssignmentResultResponse{}, apperr.Validation("reps", "no active representatives")
	}

	result := transport.AssignmentResultResponse{}
	candidates := make([]uuid.UUID, 0, len(req.ClientIDs))
	for _, clientID := range req.ClientIDs {
		c, ok := s.clients.Get(clientID)
		if !ok {
			result.Skipped = append(result.Skipped, transport.SkippedEntry{ClientID: clientID, Reason: "client not found"})
			continue
		}
		if domain.IsTerminal(c.Status) {
			result.Skipped = append(result.Skipped, transport.SkippedEntry{ClientID: clientID, Reason: "lead is closed"})
			continue
		}
		candidates = append(candidates, clientID)
	}

	loads := domain.OpenLeadCounts(s.clients.Where(nil), reps)
	for _, d := range domain.AutoAssign(candidates, reps, loads) {
		if _, err := s.assignLocked(ctx, actor, d.ClientID, d.RepID, true); err != nil {
			result.Skipped = append(result.Skipped, transport.SkippedEntry{ClientID: d.ClientID, Reason: err.Error()})
			continue
		}
		result.Assigned = append(result.Assigned, transport.AssignmentEntry{
			ClientID: d.ClientID,
			RepID:    d.RepID,
		})
	}

	return result, nil
}

// assignLocked performs one assignment. Callers hold assignMu.
func (s *Service) assignLocked(ctx context.Context, actor domain.Actor, clientID, repID uuid.UUID, auto bool) (domain.Client, error) {
	rep, ok := s.reps.Get(repID)
	if !ok {
		return domain.Client{}, apperr.Validation("repId", "unknown representative")
	}
	if _, ok := s.clients.Get(clientID); !ok {
		return domain.Client{}, apperr.NotFound("client not found")
	}

	updated, _ := s.clients.Update(clientID, func(c domain.Client) domain.Client {
		c.AssignedTo = &rep.ID
		c.UpdatedAt = s.now()
		return c
	}, map[string]any{"assigned_to": rep.ID})

	s.appendActivity(domain.Activity{
		ID:          uuid.New(),
		ClientID:    clientID,
		Type:        domain.ActivityAssignment,
		Timestamp:   s.now(),
		Description: fmt.Sprintf("Assigned to %s", rep.Name),
		ActorID:     actor.ID,
		ActorName:   actor.Name,
	})

	s.bus.Publish(ctx, events.LeadAssigned{
		BaseEvent: events.NewBaseEvent(),
		ClientID:  clientID,
		RepID:     rep.ID,
		ActorID:   actor.ID,
		Auto:      auto,
	})

	return updated, nil
}

// ListReps returns all representatives with their open-lead loads.
func (s *Service) ListReps(actor domain.Actor) ([]transport.RepResponse, error) {
	if actor.Role != domain.RoleAdmin {
		return nil, apperr.Forbidden("admin only")
	}

	reps := s.reps.Where(nil)
	loads := s.openLeadCounts(reps)

	out := make([]transport.RepResponse, 0, len(reps))
	for _, r := range reps {
		out = append(out, transport.ToRepResponse(r, loads[r.ID]))
	}
	return out, nil
}

// RepLoads returns the per-rep open-lead summary for the dashboard.
func (s *Service) RepLoads(actor domain.Actor) ([]transport.RepLoadResponse, error) {
	if actor.Role != domain.RoleAdmin {
		return nil, apperr.Forbidden("admin only")
	}

	reps := s.reps.Where(func(r domain.Representative) bool {
		return r.Status == domain.RepStatusActive
	})
	loads := s.openLeadCounts(reps)

	out := make([]transport.RepLoadResponse, 0, len(reps))
	for _, r := range reps {
		out = append(out, transport.RepLoadResponse{
			RepID:     r.ID,
			Name:      r.Name,
			OpenLeads: loads[r.ID],
		})
	}
	return out, nil
}

// RepContact resolves a representative's name and email from the cache.
// Satisfies the notification module's lookup interface.
func (s *Service) RepContact(_ context.Context, repID uuid.UUID) (string, string, bool) {
	rep, ok := s.reps.Get(repID)
	if !ok {
		return "", "", false
	}
	return rep.Name, rep.Email, true
}

// openLeadCounts computes rep loads over the full client cache. Concurrent
// dashboard requests collapse into one computation.
func (s *Service) openLeadCounts(reps []domain.Representative) map[uuid.UUID]int {
	v, _, _ := s.loadGroup.Do("open-lead-counts", func() (any, error) {
		return domain.OpenLeadCounts(s.clients.Where(nil), s.reps.Where(nil)), nil
	})
	counts := v.(map[uuid.UUID]int)

	out := make(map[uuid.UUID]int, len(reps))
	for _, r := range reps {
		out[r.ID] = counts[r.ID]
	}
	return out
}
