package domain

import (
	"time"

	"salescrm_backend/platform/apperr"
)

// TaskOutcome is the result a rep records when completing a follow-up task.
type TaskOutcome string

const (
	OutcomeInterested    TaskOutcome = "interested"
	OutcomeBusy          TaskOutcome = "busy"
	OutcomeNotInterested TaskOutcome = "not-interested"
	OutcomeDone          TaskOutcome = "done"
)

// lossNoteNotInterested records the task-completion origin of the loss while
// keeping the loss reason inside the known taxonomy.
const lossNoteNotInterested = "Not Interested (Task Completion)"

// dateOf truncates a time to its calendar date, ignoring time of day.
func dateOf(t time.Time) (int, time.Month, int) {
	return t.Date()
}

func beforeDay(a, b time.Time) bool {
	ay, am, ad := dateOf(a)
	by, bm, bd := dateOf(b)
	if ay != by {
		return ay < by
	}
	if am != bm {
		return am < bm
	}
	return ad < bd
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := dateOf(a)
	by, bm, bd := dateOf(b)
	return ay == by && am == bm && ad == bd
}

// Overdue reports whether the lead's follow-up date is strictly before today.
func Overdue(c Client, today time.Time) bool {
	return c.FollowUpAt != nil && beforeDay(*c.FollowUpAt, today)
}

// DueToday reports whether the lead's follow-up date falls on today.
func DueToday(c Client, today time.Time) bool {
	return c.FollowUpAt != nil && sameDay(*c.FollowUpAt, today)
}

// Due reports whether the lead needs attention: overdue or due today.
func Due(c Client, today time.Time) bool {
	return Overdue(c, today) || DueToday(c, today)
}

// CompleteTask applies the follow-up task-completion workflow as one
// mutation. The current follow-up is always cleared first; depending on the
// outcome a new one may be opened or the lead may be lost:
//
//   - interested / busy with a next date: the new follow-up replaces the old
//     one in the same mutation, never as two sequential writes.
//   - not-interested: the lead is marked lost with reason "other" and a note
//     recording the origin; any supplied next date is discarded.
//   - done: the follow-up is cleared and nothing else changes.
func CompleteTask(c Client, outcome TaskOutcome, note string, next *time.Time) (Client, error) {
	c.FollowUpAt = nil
	c.FollowUpNote = ""

	switch outcome {
	case OutcomeInterested, OutcomeBusy:
		if next != nil {
			at := *next
			c.FollowUpAt = &at
			c.FollowUpNote = note
		}
	case OutcomeNotInterested:
		return ApplyTransition(c, TransitionInput{
			To:         StatusLost,
			LossReason: LossReasonOther,
			LossNote:   lossNoteNotInterested,
		})
	case OutcomeDone:
		// clear only
	default:
		return c, apperr.Validation("outcome", "unknown task outcome")
	}

	return c, nil
}
