package domain

var knownStatuses = map[Status]struct{}{
	StatusNew:        {},
	StatusQualifying: {},
	StatusProposal:   {},
	StatusWon:        {},
	StatusLost:       {},
}

var knownLossReasons = map[LossReason]struct{}{
	LossReasonPrice:      {},
	LossReasonCompetitor: {},
	LossReasonTiming:     {},
	LossReasonFeatures:   {},
	LossReasonOther:      {},
}

// IsKnownStatus reports whether the status is one of the five pipeline stages.
func IsKnownStatus(s Status) bool {
	_, ok := knownStatuses[s]
	return ok
}

// IsKnownLossReason reports whether the reason is in the loss-reason taxonomy.
func IsKnownLossReason(r LossReason) bool {
	_, ok := knownLossReasons[r]
	return ok
}

// IsTerminal reports whether the status ends the pipeline. Terminal leads are
// excluded from rep load counts and from the "new" display bucket.
func IsTerminal(s Status) bool {
	return s == StatusWon || s == StatusLost
}

// PipelineBucket is the pure view projection for dashboard bucketing: an
// unassigned lead presents as "new" regardless of its stored status, as long
// as the stored status is not terminal. Storage is never changed by this.
func PipelineBucket(c Client) Status {
	if c.AssignedTo == nil && !IsTerminal(c.Status) {
		return StatusNew
	}
	return c.Status
}

// BucketCounts tallies clients per display bucket.
func BucketCounts(clients []Client) map[Status]int {
	counts := make(map[Status]int, len(knownStatuses))
	for _, c := range clients {
		counts[PipelineBucket(c)]++
	}
	return counts
}
