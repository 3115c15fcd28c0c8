package domain

import "github.com/google/uuid"

// AssignmentDecision pairs one candidate lead with the rep chosen for it.
type AssignmentDecision struct {
	ClientID uuid.UUID
	RepID    uuid.UUID
}

// OpenLeadCounts computes each rep's current load: the number of leads
// assigned to them whose status is not terminal.
func OpenLeadCounts(clients []Client, reps []Representative) map[uuid.UUID]int {
	counts := make(map[uuid.UUID]int, len(reps))
	for _, r := range reps {
		counts[r.ID] = 0
	}
	for _, c := range clients {
		if c.AssignedTo == nil || IsTerminal(c.Status) {
			continue
		}
		if _, tracked := counts[*c.AssignedTo]; tracked {
			counts[*c.AssignedTo]++
		}
	}
	return counts
}

// AutoAssign distributes the candidate leads across the active reps using
// greedy least-loaded balancing. For each candidate, in input order, the rep
// with the strictly smallest current load wins; ties break toward the rep
// that appears earliest in the reps slice. The chosen rep's load is
// incremented before the next candidate is considered, so this is not
// round-robin: it always levels the least-loaded rep first.
//
// The caller must invoke this with candidates processed as one serialized
// command; interleaving another assignment over the same pool breaks the
// leveling guarantee.
func AutoAssign(candidates []uuid.UUID, reps []Representative, loads map[uuid.UUID]int) []AssignmentDecision {
	active := make([]Representative, 0, len(reps))
	for _, r := range reps {
		if r.Status == RepStatusActive {
			active = append(active, r)
		}
	}
	if len(active) == 0 {
		return nil
	}

	working := make(map[uuid.UUID]int, len(active))
	for _, r := range active {
		working[r.ID] = loads[r.ID]
	}

	decisions := make([]AssignmentDecision, 0, len(candidates))
	for _, clientID := range candidates {
		best := active[0]
		for _, r := range active[1:] {
			if working[r.ID] < working[best.ID] {
				best = r
			}
		}
		decisions = append(decisions, AssignmentDecision{ClientID: clientID, RepID: best.ID})
		working[best.ID]++
	}

	return decisions
}
