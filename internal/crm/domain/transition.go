package domain

import (
	"salescrm_backend/platform/apperr"
)

// TransitionInput carries everything a status change needs atomically:
// the target status, the loss reason/note when moving to lost, and the
// current brand price when moving to won.
type TransitionInput struct {
	To         Status
	LossReason LossReason
	LossNote   string
	BrandPrice *float64
}

// ApplyTransition validates and applies a status transition, returning the
// updated client. Any status may move to any other status; the rules below
// only constrain what must accompany the move:
//
//   - to lost: a loss reason from the known taxonomy must be supplied with
//     the transition, otherwise the transition is rejected with no change.
//   - to won: the deal value snapshot is finalized from the current brand
//     price in the same mutation.
//   - leaving lost: the loss reason and note are cleared, so the invariant
//     "loss reason set only while lost" holds after a re-target.
func ApplyTransition(c Client, in TransitionInput) (Client, error) {
	if !IsKnownStatus(in.To) {
		return c, apperr.Validation("status", "unknown status")
	}

	switch in.To {
	case StatusLost:
		if in.LossReason == "" {
			return c, apperr.Validation("lossReason", "loss reason is required when marking a lead as lost")
		}
		if !IsKnownLossReason(in.LossReason) {
			return c, apperr.Validation("lossReason", "unknown loss reason")
		}
		c.LossReason = in.LossReason
		c.LossNote = in.LossNote

	case StatusWon:
		if in.BrandPrice != nil {
			price := *in.BrandPrice
			c.DealValue = &price
		}
	}

	if c.Status == StatusLost && in.To != StatusLost {
		c.LossReason = ""
		c.LossNote = ""
	}

	c.Status = in.To
	return c, nil
}
