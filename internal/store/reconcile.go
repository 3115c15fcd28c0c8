package store

import (
	"context"

	"github.com/google/uuid"
)

// ReconcileReport summarizes one reconciliation pass.
type ReconcileReport struct {
	EntityType string
	Remote     int
	Cached     int
	// Diverged counts ids present on only one side before the cache was
	// replaced. Non-zero means write-behind ops were lost or are in flight.
	Diverged int
}

// Reconcile replaces the cache with the remote store's view of one entity
// type. It should run while the write-behind queue is idle; queued ops for
// this entity type would otherwise be overwritten locally and then re-applied
// remotely.
func Reconcile[T Entity](ctx context.Context, entityType string, s *Store[T], p Persister[T]) (ReconcileReport, error) {
	remote, err := p.ListAll(ctx)
	if err != nil {
		return ReconcileReport{}, err
	}

	cached := s.Where(nil)
	report := ReconcileReport{
		EntityType: entityType,
		Remote:     len(remote),
		Cached:     len(cached),
	}

	remoteIDs := make(map[uuid.UUID]struct{}, len(remote))
	for _, item := range remote {
		remoteIDs[item.EntityID()] = struct{}{}
	}
	for _, item := range cached {
		if _, ok := remoteIDs[item.EntityID()]; !ok {
			report.Diverged++
		}
	}
	cachedIDs := make(map[uuid.UUID]struct{}, len(cached))
	for _, item := range cached {
		cachedIDs[item.EntityID()] = struct{}{}
	}
	for _, item := range remote {
		if _, ok := cachedIDs[item.EntityID()]; !ok {
			report.Diverged++
		}
	}

	s.Load(remote)
	return report, nil
}
