package service

import (
	"sort"

	"salescrm_backend/internal/crm/domain"
	"salescrm_backend/internal/crm/transport"
)

// PipelineSummary returns the display-bucket counts over the actor's visible
// leads. Bucketing is the pure projection: unassigned, non-terminal leads
// count as "new" whatever their stored status says.
func (s *Service) PipelineSummary(actor domain.Actor) transport.PipelineSummaryResponse {
	visible := s.actorView(actor)
	counts := domain.BucketCounts(visible)

	buckets := make(map[string]int, len(counts))
	for status, n := range counts {
		buckets[string(status)] = n
	}

	return transport.PipelineSummaryResponse{
		Buckets: buckets,
		Total:   len(visible),
	}
}

// BrandOptions returns the brands the actor may select when creating a lead,
// honoring the brand allow-list. An empty allow-list means no restriction.
func (s *Service) BrandOptions(actor domain.Actor) []domain.Brand {
	out := make([]domain.Brand, 0, len(s.brands))
	for _, b := range s.brands {
		if domain.BrandAllowed(actor, b.ID) {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
