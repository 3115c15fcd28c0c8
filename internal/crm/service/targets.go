package service

import (
	"context"

	"salescrm_backend/internal/crm/domain"
	"salescrm_backend/internal/crm/transport"
	"salescrm_backend/platform/apperr"

	"github.com/google/uuid"
)

// UpsertTarget creates or replaces the monthly target for one member and
// period. The (memberId, month, year) key is unique; re-issuing a target for
// the same period overwrites it.
func (s *Service) UpsertTarget(_ context.Context, actor domain.Actor, req transport.UpsertTargetRequest) (transport.TargetResponse, error) {
	if actor.Role != domain.RoleAdmin {
		return transport.TargetResponse{}, apperr.Forbidden("admin only")
	}
	if _, ok := s.reps.Get(req.MemberID); !ok {
		return transport.TargetResponse{}, apperr.Validation("memberId", "unknown member")
	}

	existing, found := s.targets.Find(func(t domain.MonthlyTarget) bool {
		return t.MemberID == req.MemberID && t.Month == req.Month && t.Year == req.Year
	})

	var target domain.MonthlyTarget
	if found {
		target, _ = s.targets.Update(existing.ID, func(t domain.MonthlyTarget) domain.MonthlyTarget {
			t.DealsTarget = req.DealsTarget
			t.VisitsTarget = req.VisitsTarget
			return t
		}, map[string]any{
			"deals_target":  req.DealsTarget,
			"visits_target": req.VisitsTarget,
		})
	} else {
		target = s.targets.Create(domain.MonthlyTarget{
			ID:           uuid.New(),
			MemberID:     req.MemberID,
			Month:        req.Month,
			Year:         req.Year,
			DealsTarget:  req.DealsTarget,
			VisitsTarget: req.VisitsTarget,
		})
	}

	return transport.ToTargetResponse(target), nil
}

// GetTarget fetches one member's target for a period. Reps may read their
// own; admins may read anyone's.
func (s *Service) GetTarget(actor domain.Actor, memberID uuid.UUID, month, year int) (transport.TargetResponse, error) {
	if actor.Role != domain.RoleAdmin && actor.ID != memberID {
		return transport.TargetResponse{}, apperr.Forbidden("you may only read your own target")
	}

	target, found := s.targets.Find(func(t domain.MonthlyTarget) bool {
		return t.MemberID == memberID && t.Month == month && t.Year == year
	})
	if !found {
		return transport.TargetResponse{}, apperr.NotFound("no target for this period")
	}

	return transport.ToTargetResponse(target), nil
}
